package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-outcomes-api/internal/models"
)

// CourseRepository reads courses together with their components and learning outcomes.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a repository instance.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses; nil ids lists every course.
func (r *CourseRepository) List(ctx context.Context, ids []string) ([]models.Course, error) {
	query, args := anyFilter("SELECT id, code, name FROM courses WHERE 1=1", nil, "id", ids)
	query += " ORDER BY code, id"
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, code, name FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListComponents returns components of the given courses in creation order; nil lists all.
func (r *CourseRepository) ListComponents(ctx context.Context, courseIDs []string) ([]models.Component, error) {
	query, args := anyFilter("SELECT id, course_id, name, percentage FROM course_components WHERE 1=1", nil, "course_id", courseIDs)
	query += " ORDER BY course_id, created_at, id"
	var components []models.Component
	if err := r.db.SelectContext(ctx, &components, query, args...); err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	return components, nil
}

// FindComponent returns a component by its ID.
func (r *CourseRepository) FindComponent(ctx context.Context, id string) (*models.Component, error) {
	const query = `SELECT id, course_id, name, percentage FROM course_components WHERE id = $1`
	var component models.Component
	if err := r.db.GetContext(ctx, &component, query, id); err != nil {
		return nil, err
	}
	return &component, nil
}

// ListOutcomes returns learning outcomes of the given courses; nil lists all.
func (r *CourseRepository) ListOutcomes(ctx context.Context, courseIDs []string) ([]models.LearningOutcome, error) {
	query, args := anyFilter("SELECT id, course_id, description FROM learning_outcomes WHERE 1=1", nil, "course_id", courseIDs)
	query += " ORDER BY course_id, created_at, id"
	var outcomes []models.LearningOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query, args...); err != nil {
		return nil, fmt.Errorf("list learning outcomes: %w", err)
	}
	return outcomes, nil
}

// FindOutcome returns a learning outcome by its ID.
func (r *CourseRepository) FindOutcome(ctx context.Context, id string) (*models.LearningOutcome, error) {
	const query = `SELECT id, course_id, description FROM learning_outcomes WHERE id = $1`
	var outcome models.LearningOutcome
	if err := r.db.GetContext(ctx, &outcome, query, id); err != nil {
		return nil, err
	}
	return &outcome, nil
}
