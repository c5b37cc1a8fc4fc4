package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-outcomes-api/internal/models"
)

// EnrollmentRepository reads course membership.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByCourses returns enrollments of the given courses; nil lists all.
func (r *EnrollmentRepository) ListByCourses(ctx context.Context, courseIDs []string) ([]models.Enrollment, error) {
	query, args := anyFilter("SELECT course_id, student_id FROM course_enrollments WHERE 1=1", nil, "course_id", courseIDs)
	query += " ORDER BY course_id, student_id"
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByStudent returns the enrollments of one student.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT course_id, student_id FROM course_enrollments WHERE student_id = $1 ORDER BY course_id`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ListStudentIDs returns the IDs of students enrolled in a course.
func (r *EnrollmentRepository) ListStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	const query = `SELECT student_id FROM course_enrollments WHERE course_id = $1 ORDER BY student_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, courseID); err != nil {
		return nil, fmt.Errorf("list course students: %w", err)
	}
	return ids, nil
}

// IsEnrolled reports whether a student belongs to a course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM course_enrollments WHERE student_id = $1 AND course_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}
