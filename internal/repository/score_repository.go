package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-outcomes-api/internal/models"
)

// ScoreRepository handles component score persistence.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// List returns scores matching the filter, ungraded rows included.
func (r *ScoreRepository) List(ctx context.Context, filter models.ScoreFilter) ([]models.Score, error) {
	query := `SELECT s.id, s.student_id, s.component_id, s.score, s.updated_at
        FROM component_scores s
        JOIN course_components cc ON cc.id = s.component_id
        WHERE 1=1`
	var args []interface{}
	query, args = anyFilter(query, args, "cc.course_id", filter.CourseIDs)
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		query += fmt.Sprintf(" AND s.student_id = $%d", len(args))
	}
	query += " ORDER BY s.student_id, s.component_id"
	var scores []models.Score
	if err := r.db.SelectContext(ctx, &scores, query, args...); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return scores, nil
}

const upsertScoreQuery = `INSERT INTO component_scores (id, student_id, component_id, score, updated_at)
        VALUES (:id, :student_id, :component_id, :score, :updated_at)
        ON CONFLICT (student_id, component_id)
        DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at`

func prepareScore(score *models.Score, now time.Time) {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	score.UpdatedAt = now
}

// Upsert inserts or updates the score of one student on one component.
func (r *ScoreRepository) Upsert(ctx context.Context, score *models.Score) error {
	prepareScore(score, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, upsertScoreQuery, score); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// BulkUpsert writes several scores atomically.
func (r *ScoreRepository) BulkUpsert(ctx context.Context, scores []models.Score) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin score tx: %w", err)
	}
	now := time.Now().UTC()
	for i := range scores {
		prepareScore(&scores[i], now)
		if _, err := tx.NamedExecContext(ctx, upsertScoreQuery, &scores[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bulk upsert score: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit score tx: %w", err)
	}
	return nil
}
