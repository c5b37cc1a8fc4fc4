package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/noah-isme/course-outcomes-api/internal/models"
	"github.com/noah-isme/course-outcomes-api/internal/outcome"
	appErrors "github.com/noah-isme/course-outcomes-api/pkg/errors"
)

type courseReader interface {
	List(ctx context.Context, ids []string) ([]models.Course, error)
	ListComponents(ctx context.Context, courseIDs []string) ([]models.Component, error)
	ListOutcomes(ctx context.Context, courseIDs []string) ([]models.LearningOutcome, error)
}

type enrollmentLister interface {
	ListByCourses(ctx context.Context, courseIDs []string) ([]models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
}

type scoreReader interface {
	List(ctx context.Context, filter models.ScoreFilter) ([]models.Score, error)
}

type weightReader interface {
	ListComponentOutcomeWeights(ctx context.Context, courseIDs []string) ([]models.ComponentOutcomeWeight, error)
	ListOutcomeProgramWeights(ctx context.Context, outcomeIDs []string) ([]models.OutcomeProgramWeight, error)
}

type programOutcomeReader interface {
	List(ctx context.Context) ([]models.ProgramOutcome, error)
}

// SnapshotSource builds computation snapshots for the three supported scopes.
type SnapshotSource interface {
	LoadCourse(ctx context.Context, courseID string) (*outcome.Snapshot, error)
	LoadStudent(ctx context.Context, studentID string) (*outcome.Snapshot, error)
	LoadDepartment(ctx context.Context) (*outcome.Snapshot, error)
}

// SnapshotLoader issues one bulk query per table and indexes the result.
type SnapshotLoader struct {
	courses     courseReader
	enrollments enrollmentLister
	scores      scoreReader
	weights     weightReader
	programs    programOutcomeReader
	metrics     *MetricsService
}

// NewSnapshotLoader wires the repositories used to assemble snapshots.
func NewSnapshotLoader(courses courseReader, enrollments enrollmentLister, scores scoreReader, weights weightReader, programs programOutcomeReader, metrics *MetricsService) *SnapshotLoader {
	return &SnapshotLoader{courses: courses, enrollments: enrollments, scores: scores, weights: weights, programs: programs, metrics: metrics}
}

// LoadCourse loads everything needed to evaluate one course. Unknown courses yield NOT_FOUND.
func (l *SnapshotLoader) LoadCourse(ctx context.Context, courseID string) (*outcome.Snapshot, error) {
	scope := []string{courseID}
	var in outcome.Input
	var err error
	if in.Courses, err = timed(l, "courses", func() ([]models.Course, error) { return l.courses.List(ctx, scope) }); err != nil {
		return nil, storeError(err, "failed to load course")
	}
	if len(in.Courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	if in.Enrollments, err = timed(l, "enrollments", func() ([]models.Enrollment, error) { return l.enrollments.ListByCourses(ctx, scope) }); err != nil {
		return nil, storeError(err, "failed to load enrollments")
	}
	if err := l.fill(ctx, &in, scope, ""); err != nil {
		return nil, err
	}
	return outcome.NewSnapshot(in), nil
}

// LoadStudent loads the courses a student is enrolled in, restricted to that student's scores.
func (l *SnapshotLoader) LoadStudent(ctx context.Context, studentID string) (*outcome.Snapshot, error) {
	var in outcome.Input
	var err error
	if in.Enrollments, err = timed(l, "student_enrollments", func() ([]models.Enrollment, error) { return l.enrollments.ListByStudent(ctx, studentID) }); err != nil {
		return nil, storeError(err, "failed to load enrollments")
	}
	scope := make([]string, 0, len(in.Enrollments))
	for _, e := range in.Enrollments {
		scope = append(scope, e.CourseID)
	}
	if len(scope) == 0 {
		return outcome.NewSnapshot(in), nil
	}
	if in.Courses, err = timed(l, "courses", func() ([]models.Course, error) { return l.courses.List(ctx, scope) }); err != nil {
		return nil, storeError(err, "failed to load courses")
	}
	if err := l.fill(ctx, &in, scope, studentID); err != nil {
		return nil, err
	}
	return outcome.NewSnapshot(in), nil
}

// LoadDepartment loads every course, enrollment and weight in the department.
func (l *SnapshotLoader) LoadDepartment(ctx context.Context) (*outcome.Snapshot, error) {
	var in outcome.Input
	var err error
	if in.Enrollments, err = timed(l, "enrollments", func() ([]models.Enrollment, error) { return l.enrollments.ListByCourses(ctx, nil) }); err != nil {
		return nil, storeError(err, "failed to load enrollments")
	}
	if err := l.fill(ctx, &in, nil, ""); err != nil {
		return nil, err
	}
	return outcome.NewSnapshot(in), nil
}

// fill loads components, outcomes, scores, weights and program outcomes for the course scope.
// A nil scope means the whole department.
func (l *SnapshotLoader) fill(ctx context.Context, in *outcome.Input, scope []string, studentID string) error {
	var err error
	if in.Components, err = timed(l, "components", func() ([]models.Component, error) { return l.courses.ListComponents(ctx, scope) }); err != nil {
		return storeError(err, "failed to load components")
	}
	if in.Outcomes, err = timed(l, "learning_outcomes", func() ([]models.LearningOutcome, error) { return l.courses.ListOutcomes(ctx, scope) }); err != nil {
		return storeError(err, "failed to load learning outcomes")
	}
	filter := models.ScoreFilter{CourseIDs: scope, StudentID: studentID}
	if in.Scores, err = timed(l, "scores", func() ([]models.Score, error) { return l.scores.List(ctx, filter) }); err != nil {
		return storeError(err, "failed to load scores")
	}
	if in.ComponentOutcomeWeights, err = timed(l, "component_outcome_weights", func() ([]models.ComponentOutcomeWeight, error) {
		return l.weights.ListComponentOutcomeWeights(ctx, scope)
	}); err != nil {
		return storeError(err, "failed to load component weights")
	}

	var outcomeIDs []string
	if scope != nil {
		outcomeIDs = make([]string, 0, len(in.Outcomes))
		for _, lo := range in.Outcomes {
			outcomeIDs = append(outcomeIDs, lo.ID)
		}
	}
	if scope == nil || len(outcomeIDs) > 0 {
		if in.OutcomeProgramWeights, err = timed(l, "outcome_program_weights", func() ([]models.OutcomeProgramWeight, error) {
			return l.weights.ListOutcomeProgramWeights(ctx, outcomeIDs)
		}); err != nil {
			return storeError(err, "failed to load program weights")
		}
	}
	if in.ProgramOutcomes, err = timed(l, "program_outcomes", func() ([]models.ProgramOutcome, error) { return l.programs.List(ctx) }); err != nil {
		return storeError(err, "failed to load program outcomes")
	}
	return nil
}

func timed[T any](l *SnapshotLoader, label string, fetch func() ([]T, error)) ([]T, error) {
	start := time.Now()
	rows, err := fetch()
	l.metrics.ObserveDBQuery(label, time.Since(start))
	return rows, err
}

// storeError maps a repository failure to STORE_UNAVAILABLE. A client that went away is
// reported as REQUEST_CANCELED instead, and context errors stay in the chain so callers
// can tell a blown budget from a dead database.
func storeError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	if errors.Is(err, context.Canceled) {
		return canceledError(err)
	}
	return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, message)
}

func canceledError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrRequestCanceled.Code, appErrors.ErrRequestCanceled.Status, appErrors.ErrRequestCanceled.Message)
}
