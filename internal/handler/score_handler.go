package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-outcomes-api/internal/models"
	"github.com/noah-isme/course-outcomes-api/internal/service"
	appErrors "github.com/noah-isme/course-outcomes-api/pkg/errors"
	"github.com/noah-isme/course-outcomes-api/pkg/response"
)

type scoreService interface {
	RecordScore(ctx context.Context, req service.RecordScoreRequest) (*models.Score, error)
	RecordScores(ctx context.Context, courseID string, req service.RecordScoresRequest) (*service.RecordScoresResult, error)
}

// ScoreHandler accepts score entry.
type ScoreHandler struct {
	service scoreService
}

// NewScoreHandler constructs the handler.
func NewScoreHandler(service scoreService) *ScoreHandler {
	return &ScoreHandler{service: service}
}

// Record godoc
// @Summary Record a component score
// @Description A null score clears the entry
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.RecordScoreRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /scores [put]
func (h *ScoreHandler) Record(c *gin.Context) {
	var req service.RecordScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	score, err := h.service.RecordScore(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, score)
}

// RecordSheet godoc
// @Summary Record a sheet of scores for a course
// @Tags Scores
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.RecordScoresRequest true "Score sheet"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses/{id}/scores [put]
func (h *ScoreHandler) RecordSheet(c *gin.Context) {
	courseID, ok := pathParam(c, "id")
	if !ok {
		return
	}
	var req service.RecordScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	result, err := h.service.RecordScores(c.Request.Context(), courseID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
