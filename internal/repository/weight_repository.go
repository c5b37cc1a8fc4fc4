package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-outcomes-api/internal/models"
)

// WeightRepository persists the two weighting tables that drive outcome aggregation.
type WeightRepository struct {
	db *sqlx.DB
}

// NewWeightRepository creates a weight repository.
func NewWeightRepository(db *sqlx.DB) *WeightRepository {
	return &WeightRepository{db: db}
}

// ListComponentOutcomeWeights returns component→outcome weights for components of the given courses; nil lists all.
func (r *WeightRepository) ListComponentOutcomeWeights(ctx context.Context, courseIDs []string) ([]models.ComponentOutcomeWeight, error) {
	query := `SELECT w.id, w.component_id, w.outcome_id, w.weight
        FROM component_outcome_weights w
        JOIN course_components cc ON cc.id = w.component_id
        WHERE 1=1`
	query, args := anyFilter(query, nil, "cc.course_id", courseIDs)
	query += " ORDER BY w.component_id, w.outcome_id"
	var weights []models.ComponentOutcomeWeight
	if err := r.db.SelectContext(ctx, &weights, query, args...); err != nil {
		return nil, fmt.Errorf("list component outcome weights: %w", err)
	}
	return weights, nil
}

// ListOutcomeProgramWeights returns outcome→program-outcome weights for the given outcomes; nil lists all.
func (r *WeightRepository) ListOutcomeProgramWeights(ctx context.Context, outcomeIDs []string) ([]models.OutcomeProgramWeight, error) {
	query, args := anyFilter("SELECT id, outcome_id, program_outcome_id, weight FROM outcome_program_weights WHERE 1=1", nil, "outcome_id", outcomeIDs)
	query += " ORDER BY outcome_id, program_outcome_id"
	var weights []models.OutcomeProgramWeight
	if err := r.db.SelectContext(ctx, &weights, query, args...); err != nil {
		return nil, fmt.Errorf("list outcome program weights: %w", err)
	}
	return weights, nil
}

// ApplyComponentOutcomeWeights upserts and removes weights of one component in a single transaction.
func (r *WeightRepository) ApplyComponentOutcomeWeights(ctx context.Context, componentID string, upserts []models.ComponentOutcomeWeight, deleteOutcomeIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin weight tx: %w", err)
	}
	const upsert = `INSERT INTO component_outcome_weights (id, component_id, outcome_id, weight)
        VALUES (:id, :component_id, :outcome_id, :weight)
        ON CONFLICT (component_id, outcome_id) DO UPDATE SET weight = EXCLUDED.weight`
	for i := range upserts {
		upserts[i].ComponentID = componentID
		if upserts[i].ID == "" {
			upserts[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, upsert, &upserts[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert component outcome weight: %w", err)
		}
	}
	for _, outcomeID := range deleteOutcomeIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM component_outcome_weights WHERE component_id = $1 AND outcome_id = $2`, componentID, outcomeID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete component outcome weight: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit weight tx: %w", err)
	}
	return nil
}

// ApplyOutcomeProgramWeights upserts and removes weights of one learning outcome in a single transaction.
func (r *WeightRepository) ApplyOutcomeProgramWeights(ctx context.Context, outcomeID string, upserts []models.OutcomeProgramWeight, deleteProgramOutcomeIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin weight tx: %w", err)
	}
	const upsert = `INSERT INTO outcome_program_weights (id, outcome_id, program_outcome_id, weight)
        VALUES (:id, :outcome_id, :program_outcome_id, :weight)
        ON CONFLICT (outcome_id, program_outcome_id) DO UPDATE SET weight = EXCLUDED.weight`
	for i := range upserts {
		upserts[i].OutcomeID = outcomeID
		if upserts[i].ID == "" {
			upserts[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, upsert, &upserts[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert outcome program weight: %w", err)
		}
	}
	for _, poID := range deleteProgramOutcomeIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM outcome_program_weights WHERE outcome_id = $1 AND program_outcome_id = $2`, outcomeID, poID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete outcome program weight: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit weight tx: %w", err)
	}
	return nil
}
