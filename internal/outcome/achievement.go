package outcome

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/course-outcomes-api/internal/models"
)

type attainmentResult struct {
	value   decimal.Decimal
	defined bool
}

// Aggregator rolls learning-outcome attainment up into program outcomes.
// Attainment per (student, outcome) is memoised for the life of the Aggregator,
// so one instance should serve one request and is not safe for concurrent use.
type Aggregator struct {
	snap  *Snapshot
	memo  map[pairKey]attainmentResult
	evals int
}

// NewAggregator binds an aggregator to a snapshot.
func NewAggregator(snap *Snapshot) *Aggregator {
	return &Aggregator{snap: snap, memo: make(map[pairKey]attainmentResult)}
}

// Evaluations reports how many distinct (student, outcome) attainments were computed.
func (a *Aggregator) Evaluations() int { return a.evals }

func (a *Aggregator) attainment(studentID, outcomeID, courseID string) (decimal.Decimal, bool) {
	key := pairKey{studentID, outcomeID}
	if r, ok := a.memo[key]; ok {
		return r.value, r.defined
	}
	v, ok := RawAttainment(studentID, outcomeID, a.snap.Components(courseID), a.snap.Scores, a.snap.Weights)
	a.memo[key] = attainmentResult{value: v, defined: ok}
	a.evals++
	return v, ok
}

// StudentProgramScore is the weighted average of the student's defined attainments over
// every learning outcome that feeds the program outcome in a course the student takes.
// ok is false when the student has no data point for the program outcome.
func (a *Aggregator) StudentProgramScore(studentID, programOutcomeID string) (decimal.Decimal, bool) {
	sum := decimal.Zero
	totalWeight := int64(0)
	for _, link := range a.snap.Weights.programLinks(programOutcomeID) {
		courseID, known := a.snap.outcomeCourse[link.outcomeID]
		if !known || !a.snap.Enrolled(studentID, courseID) {
			continue
		}
		att, defined := a.attainment(studentID, link.outcomeID, courseID)
		if !defined {
			continue
		}
		sum = sum.Add(att.Mul(decimal.NewFromInt(int64(link.weight))))
		totalWeight += int64(link.weight)
	}
	if totalWeight == 0 {
		return decimal.Zero, false
	}
	return sum.Div(decimal.NewFromInt(totalWeight)), true
}

// ProgramOutcomeStats computes average, min, max and count of per-student program outcome
// scores for every program outcome. A program outcome nobody contributes to reports zeros with
// StudentCount 0. The context is checked between rows; on cancellation no result is returned.
func (a *Aggregator) ProgramOutcomeStats(ctx context.Context) ([]models.ProgramOutcomeStats, error) {
	programs := a.snap.ProgramOutcomes()
	result := make([]models.ProgramOutcomeStats, 0, len(programs))
	for _, po := range programs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats := models.ProgramOutcomeStats{
			ProgramOutcomeID: po.ID,
			Code:             po.Code,
			Description:      po.Description,
			Average:          models.Quantize(decimal.Zero),
			Min:              models.Quantize(decimal.Zero),
			Max:              models.Quantize(decimal.Zero),
		}

		var sum, lo, hi decimal.Decimal
		count := 0
		for i, studentID := range a.snap.AllStudents() {
			if i%256 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			score, ok := a.StudentProgramScore(studentID, po.ID)
			if !ok {
				continue
			}
			if count == 0 {
				lo, hi = score, score
			} else {
				lo = decimal.Min(lo, score)
				hi = decimal.Max(hi, score)
			}
			sum = sum.Add(score)
			count++
		}

		if count > 0 {
			stats.Average = models.Quantize(sum.Div(decimal.NewFromInt(int64(count))))
			stats.Min = models.Quantize(lo)
			stats.Max = models.Quantize(hi)
			stats.StudentCount = count
		}
		result = append(result, stats)
	}
	return result, nil
}

// CourseProgramScores scores a student against every program outcome reachable from one course,
// using that course's attainments rounded to two digits. Program outcomes with weights from the
// course but no defined attainment are returned with a nil score.
func CourseProgramScores(s *Snapshot, studentID, courseID string) []models.ProgramOutcomeScore {
	components := s.Components(courseID)
	rounded := make(map[string]*models.Fixed2, len(s.Outcomes(courseID)))
	for _, lo := range s.Outcomes(courseID) {
		rounded[lo.ID] = Attainment(studentID, lo.ID, components, s.Scores, s.Weights)
	}

	var result []models.ProgramOutcomeScore
	for _, po := range s.ProgramOutcomes() {
		reachable := false
		sum := decimal.Zero
		totalWeight := int64(0)
		for _, lo := range s.Outcomes(courseID) {
			w := s.Weights.OutcomeProgram(lo.ID, po.ID)
			if w <= 0 {
				continue
			}
			reachable = true
			att := rounded[lo.ID]
			if att == nil {
				continue
			}
			sum = sum.Add(att.Mul(decimal.NewFromInt(int64(w))))
			totalWeight += int64(w)
		}
		if !reachable {
			continue
		}
		entry := models.ProgramOutcomeScore{ProgramOutcomeID: po.ID, Code: po.Code}
		if totalWeight > 0 {
			entry.Score = models.QuantizePtr(sum.Div(decimal.NewFromInt(totalWeight)), true)
		}
		result = append(result, entry)
	}
	return result
}
