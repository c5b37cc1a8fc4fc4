package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/course-outcomes-api/internal/models"
	appErrors "github.com/noah-isme/course-outcomes-api/pkg/errors"
)

type scoreWriter interface {
	Upsert(ctx context.Context, score *models.Score) error
	BulkUpsert(ctx context.Context, scores []models.Score) error
}

type componentFinder interface {
	FindComponent(ctx context.Context, id string) (*models.Component, error)
	ListComponents(ctx context.Context, courseIDs []string) ([]models.Component, error)
}

type enrollmentChecker interface {
	IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
	ListStudentIDs(ctx context.Context, courseID string) ([]string, error)
}

// achievementInvalidator is notified when data feeding the achievement roll-up changes.
type achievementInvalidator interface {
	Invalidate(ctx context.Context) error
}

// RecordScoreRequest sets or clears the score of one student on one component. A null score clears it.
type RecordScoreRequest struct {
	StudentID   string   `json:"student_id" validate:"required"`
	ComponentID string   `json:"component_id" validate:"required"`
	Score       *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
}

// RecordScoresRequest carries a gradebook sheet for one course.
type RecordScoresRequest struct {
	Mode  string               `json:"mode" validate:"omitempty,oneof=atomic partialOnError"`
	Items []RecordScoreRequest `json:"items" validate:"required,min=1"`
}

// RecordScoresResult summarises a bulk write.
type RecordScoresResult struct {
	Written  int                  `json:"written"`
	Failures []RecordScoreFailure `json:"failures,omitempty"`
}

// RecordScoreFailure explains why one item of a bulk write was rejected.
type RecordScoreFailure struct {
	Index       int    `json:"index"`
	StudentID   string `json:"student_id"`
	ComponentID string `json:"component_id"`
	Reason      string `json:"reason"`
}

// ScoreService is the write boundary for component scores.
type ScoreService struct {
	scores      scoreWriter
	components  componentFinder
	enrollments enrollmentChecker
	invalidator achievementInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScoreService constructs ScoreService.
func NewScoreService(scores scoreWriter, components componentFinder, enrollments enrollmentChecker, invalidator achievementInvalidator, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{
		scores:      scores,
		components:  components,
		enrollments: enrollments,
		invalidator: invalidator,
		validator:   validate,
		logger:      logger,
	}
}

// RecordScore validates and stores a single score.
func (s *ScoreService) RecordScore(ctx context.Context, req RecordScoreRequest) (*models.Score, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, describeValidation(err))
	}
	component, err := s.components.FindComponent(ctx, req.ComponentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "component not found")
		}
		return nil, storeError(err, "failed to load component")
	}
	enrolled, err := s.enrollments.IsEnrolled(ctx, req.StudentID, component.CourseID)
	if err != nil {
		return nil, storeError(err, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not enrolled in the component's course")
	}

	score := newScore(req)
	if err := s.scores.Upsert(ctx, score); err != nil {
		return nil, storeError(err, "failed to save score")
	}
	s.invalidate(ctx)
	return score, nil
}

// RecordScores writes a sheet of scores for one course in a single transaction.
// In atomic mode any invalid item rejects the whole sheet; in partialOnError mode
// (the default) valid items are written and the rest are reported.
func (s *ScoreService) RecordScores(ctx context.Context, courseID string, req RecordScoresRequest) (*RecordScoresResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, describeValidation(err))
	}
	components, err := s.components.ListComponents(ctx, []string{courseID})
	if err != nil {
		return nil, storeError(err, "failed to load components")
	}
	inCourse := make(map[string]struct{}, len(components))
	for _, c := range components {
		inCourse[c.ID] = struct{}{}
	}
	students, err := s.enrollments.ListStudentIDs(ctx, courseID)
	if err != nil {
		return nil, storeError(err, "failed to load enrollment")
	}
	enrolled := make(map[string]struct{}, len(students))
	for _, id := range students {
		enrolled[id] = struct{}{}
	}

	atomic := req.Mode == "atomic"
	result := &RecordScoresResult{}
	valid := make([]models.Score, 0, len(req.Items))
	for i, item := range req.Items {
		reason := s.rejectReason(item, inCourse, enrolled)
		if reason != "" {
			if atomic {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("item %d: %s", i, reason))
			}
			result.Failures = append(result.Failures, RecordScoreFailure{Index: i, StudentID: item.StudentID, ComponentID: item.ComponentID, Reason: reason})
			continue
		}
		valid = append(valid, *newScore(item))
	}

	if len(valid) > 0 {
		if err := s.scores.BulkUpsert(ctx, valid); err != nil {
			return nil, storeError(err, "failed to save scores")
		}
		s.invalidate(ctx)
	}
	result.Written = len(valid)
	if len(result.Failures) > 0 {
		s.logger.Info("score sheet partially rejected", zap.String("course_id", courseID), zap.Int("written", result.Written), zap.Int("rejected", len(result.Failures)))
	}
	return result, nil
}

func (s *ScoreService) rejectReason(item RecordScoreRequest, inCourse, enrolled map[string]struct{}) string {
	if err := s.validator.Struct(item); err != nil {
		return describeValidation(err)
	}
	if _, ok := inCourse[item.ComponentID]; !ok {
		return "component does not belong to course"
	}
	if _, ok := enrolled[item.StudentID]; !ok {
		return "student is not enrolled in course"
	}
	return ""
}

func (s *ScoreService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate achievement cache", zap.Error(err))
	}
}

func newScore(req RecordScoreRequest) *models.Score {
	score := &models.Score{StudentID: req.StudentID, ComponentID: req.ComponentID}
	if req.Score != nil {
		score.Score = decimal.NewNullDecimal(models.Quantize(decimal.NewFromFloat(*req.Score)).Decimal)
	}
	return score
}
