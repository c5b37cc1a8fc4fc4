package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-outcomes-api/internal/models"
	appErrors "github.com/noah-isme/course-outcomes-api/pkg/errors"
)

type weightWriter interface {
	ApplyComponentOutcomeWeights(ctx context.Context, componentID string, upserts []models.ComponentOutcomeWeight, deleteOutcomeIDs []string) error
	ApplyOutcomeProgramWeights(ctx context.Context, outcomeID string, upserts []models.OutcomeProgramWeight, deleteProgramOutcomeIDs []string) error
}

type outcomeFinder interface {
	FindComponent(ctx context.Context, id string) (*models.Component, error)
	FindOutcome(ctx context.Context, id string) (*models.LearningOutcome, error)
	ListOutcomes(ctx context.Context, courseIDs []string) ([]models.LearningOutcome, error)
}

// WeightsRequest maps target IDs to weights. A null weight removes the link.
type WeightsRequest struct {
	Weights map[string]*int `json:"weights" validate:"required,dive,omitempty,gte=1"`
}

// WeightsResult reports how many links were written and removed.
type WeightsResult struct {
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}

// WeightService edits the component→outcome and outcome→program outcome weight tables.
type WeightService struct {
	weights     weightWriter
	outcomes    outcomeFinder
	programs    programOutcomeReader
	invalidator achievementInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewWeightService constructs WeightService.
func NewWeightService(weights weightWriter, outcomes outcomeFinder, programs programOutcomeReader, invalidator achievementInvalidator, validate *validator.Validate, logger *zap.Logger) *WeightService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeightService{weights: weights, outcomes: outcomes, programs: programs, invalidator: invalidator, validator: validate, logger: logger}
}

// SetComponentOutcomeWeights updates how a component feeds the learning outcomes of its own course.
func (s *WeightService) SetComponentOutcomeWeights(ctx context.Context, componentID string, req WeightsRequest) (*WeightsResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	component, err := s.outcomes.FindComponent(ctx, componentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "component not found")
		}
		return nil, storeError(err, "failed to load component")
	}
	outcomes, err := s.outcomes.ListOutcomes(ctx, []string{component.CourseID})
	if err != nil {
		return nil, storeError(err, "failed to load learning outcomes")
	}
	allowed := make(map[string]struct{}, len(outcomes))
	for _, lo := range outcomes {
		allowed[lo.ID] = struct{}{}
	}

	var upserts []models.ComponentOutcomeWeight
	var removals []string
	for _, outcomeID := range sortedKeys(req.Weights) {
		if _, ok := allowed[outcomeID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("learning outcome %s does not belong to the component's course", outcomeID))
		}
		if w := req.Weights[outcomeID]; w != nil {
			upserts = append(upserts, models.ComponentOutcomeWeight{ComponentID: componentID, OutcomeID: outcomeID, Weight: *w})
		} else {
			removals = append(removals, outcomeID)
		}
	}
	if err := s.weights.ApplyComponentOutcomeWeights(ctx, componentID, upserts, removals); err != nil {
		return nil, storeError(err, "failed to save component weights")
	}
	s.invalidate(ctx)
	return &WeightsResult{Updated: len(upserts), Removed: len(removals)}, nil
}

// SetOutcomeProgramWeights updates how a learning outcome feeds program outcomes.
func (s *WeightService) SetOutcomeProgramWeights(ctx context.Context, outcomeID string, req WeightsRequest) (*WeightsResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if _, err := s.outcomes.FindOutcome(ctx, outcomeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learning outcome not found")
		}
		return nil, storeError(err, "failed to load learning outcome")
	}
	programs, err := s.programs.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load program outcomes")
	}
	known := make(map[string]struct{}, len(programs))
	for _, po := range programs {
		known[po.ID] = struct{}{}
	}

	var upserts []models.OutcomeProgramWeight
	var removals []string
	for _, poID := range sortedKeys(req.Weights) {
		if _, ok := known[poID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("program outcome %s not found", poID))
		}
		if w := req.Weights[poID]; w != nil {
			upserts = append(upserts, models.OutcomeProgramWeight{OutcomeID: outcomeID, ProgramOutcomeID: poID, Weight: *w})
		} else {
			removals = append(removals, poID)
		}
	}
	if err := s.weights.ApplyOutcomeProgramWeights(ctx, outcomeID, upserts, removals); err != nil {
		return nil, storeError(err, "failed to save program weights")
	}
	s.invalidate(ctx)
	return &WeightsResult{Updated: len(upserts), Removed: len(removals)}, nil
}

func (s *WeightService) validate(req WeightsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "gte" {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "weights must be positive integers")
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, describeValidation(err))
	}
	return nil
}

func (s *WeightService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate achievement cache", zap.Error(err))
	}
}

func sortedKeys(m map[string]*int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
