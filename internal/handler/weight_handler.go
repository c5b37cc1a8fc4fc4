package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-outcomes-api/internal/service"
	appErrors "github.com/noah-isme/course-outcomes-api/pkg/errors"
	"github.com/noah-isme/course-outcomes-api/pkg/response"
)

type weightService interface {
	SetComponentOutcomeWeights(ctx context.Context, componentID string, req service.WeightsRequest) (*service.WeightsResult, error)
	SetOutcomeProgramWeights(ctx context.Context, outcomeID string, req service.WeightsRequest) (*service.WeightsResult, error)
}

// WeightHandler edits the weight tables.
type WeightHandler struct {
	service weightService
}

// NewWeightHandler constructs the handler.
func NewWeightHandler(service weightService) *WeightHandler {
	return &WeightHandler{service: service}
}

// ComponentOutcomes godoc
// @Summary Set component to learning outcome weights
// @Description Map of learning outcome ID to positive weight; null removes the link
// @Tags Weights
// @Accept json
// @Produce json
// @Param id path string true "Component ID"
// @Param payload body service.WeightsRequest true "Weights"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /components/{id}/outcome-weights [put]
func (h *WeightHandler) ComponentOutcomes(c *gin.Context) {
	h.apply(c, h.service.SetComponentOutcomeWeights)
}

// OutcomePrograms godoc
// @Summary Set learning outcome to program outcome weights
// @Description Map of program outcome ID to positive weight; null removes the link
// @Tags Weights
// @Accept json
// @Produce json
// @Param id path string true "Learning outcome ID"
// @Param payload body service.WeightsRequest true "Weights"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /outcomes/{id}/program-weights [put]
func (h *WeightHandler) OutcomePrograms(c *gin.Context) {
	h.apply(c, h.service.SetOutcomeProgramWeights)
}

func (h *WeightHandler) apply(c *gin.Context, set func(context.Context, string, service.WeightsRequest) (*service.WeightsResult, error)) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	var req service.WeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	result, err := set(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
