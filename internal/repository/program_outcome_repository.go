package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-outcomes-api/internal/models"
)

// ProgramOutcomeRepository reads the department-wide program outcomes.
type ProgramOutcomeRepository struct {
	db *sqlx.DB
}

// NewProgramOutcomeRepository creates a repository instance.
func NewProgramOutcomeRepository(db *sqlx.DB) *ProgramOutcomeRepository {
	return &ProgramOutcomeRepository{db: db}
}

// List returns every program outcome ordered by code.
func (r *ProgramOutcomeRepository) List(ctx context.Context) ([]models.ProgramOutcome, error) {
	const query = `SELECT id, code, description FROM program_outcomes ORDER BY code, id`
	var outcomes []models.ProgramOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query); err != nil {
		return nil, fmt.Errorf("list program outcomes: %w", err)
	}
	return outcomes, nil
}
