package models

// ComponentOutcomeWeight states how much a component contributes to a learning outcome.
type ComponentOutcomeWeight struct {
	ID          string `db:"id" json:"id"`
	ComponentID string `db:"component_id" json:"component_id"`
	OutcomeID   string `db:"outcome_id" json:"outcome_id"`
	Weight      int    `db:"weight" json:"weight"`
}

// OutcomeProgramWeight states how much a learning outcome contributes to a program outcome.
type OutcomeProgramWeight struct {
	ID               string `db:"id" json:"id"`
	OutcomeID        string `db:"outcome_id" json:"outcome_id"`
	ProgramOutcomeID string `db:"program_outcome_id" json:"program_outcome_id"`
	Weight           int    `db:"weight" json:"weight"`
}
