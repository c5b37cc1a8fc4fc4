package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Score is the recorded result of one student on one component. A null score means ungraded.
type Score struct {
	ID          string              `db:"id" json:"id"`
	StudentID   string              `db:"student_id" json:"student_id"`
	ComponentID string              `db:"component_id" json:"component_id"`
	Score       decimal.NullDecimal `db:"score" json:"score"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updated_at"`
}

// ScoreFilter scopes score listings. Empty fields do not filter.
type ScoreFilter struct {
	CourseIDs []string
	StudentID string
}
