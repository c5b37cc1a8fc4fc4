package outcome

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/course-outcomes-api/internal/models"
)

// RawAttainment is the unrounded weighted average Σ(score×w)/Σw over components that are
// both graded for the student and weighted toward the outcome. ok is false when nothing contributes.
func RawAttainment(studentID, outcomeID string, components []models.Component, scores *ScoreStore, weights *WeightStore) (decimal.Decimal, bool) {
	sum := decimal.Zero
	totalWeight := int64(0)
	for _, component := range components {
		score, graded := scores.Score(studentID, component.ID)
		if !graded {
			continue
		}
		w := weights.ComponentOutcome(component.ID, outcomeID)
		if w <= 0 {
			continue
		}
		sum = sum.Add(score.Mul(decimal.NewFromInt(int64(w))))
		totalWeight += int64(w)
	}
	if totalWeight == 0 {
		return decimal.Zero, false
	}
	return sum.Div(decimal.NewFromInt(totalWeight)), true
}

// Attainment is RawAttainment quantized to two digits; nil means no score yet.
func Attainment(studentID, outcomeID string, components []models.Component, scores *ScoreStore, weights *WeightStore) *models.Fixed2 {
	return models.QuantizePtr(RawAttainment(studentID, outcomeID, components, scores, weights))
}

// CourseAttainments evaluates every learning outcome of a course for one student, in outcome order.
func CourseAttainments(s *Snapshot, studentID, courseID string) []models.OutcomeAttainment {
	components := s.Components(courseID)
	outcomes := s.Outcomes(courseID)
	result := make([]models.OutcomeAttainment, 0, len(outcomes))
	for _, lo := range outcomes {
		result = append(result, models.OutcomeAttainment{
			StudentID: studentID,
			OutcomeID: lo.ID,
			Score:     Attainment(studentID, lo.ID, components, s.Scores, s.Weights),
		})
	}
	return result
}
