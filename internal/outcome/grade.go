package outcome

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/course-outcomes-api/internal/models"
)

var hundred = decimal.NewFromInt(100)

// CourseGrade sums score × percentage/100 over the graded components.
// Ungraded components contribute nothing and the remaining percentages are not
// renormalised, so a student graded 80 on a 40% component alone gets 32.00.
func CourseGrade(studentID string, components []models.Component, scores *ScoreStore) models.Fixed2 {
	total := decimal.Zero
	for _, component := range components {
		score, ok := scores.Score(studentID, component.ID)
		if !ok {
			continue
		}
		pct := decimal.NewFromInt(int64(component.Percentage)).Div(hundred)
		total = total.Add(score.Mul(pct))
	}
	return models.Quantize(total)
}

// PercentageTotal sums the component percentages of a course.
func PercentageTotal(components []models.Component) int {
	total := 0
	for _, component := range components {
		total += component.Percentage
	}
	return total
}
