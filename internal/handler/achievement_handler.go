package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-outcomes-api/internal/middleware"
	"github.com/noah-isme/course-outcomes-api/internal/models"
	"github.com/noah-isme/course-outcomes-api/internal/service"
	"github.com/noah-isme/course-outcomes-api/pkg/response"
)

type achievementService interface {
	ProgramOutcomeAchievement(ctx context.Context) ([]models.ProgramOutcomeStats, bool, error)
}

type achievementExporter interface {
	ExportAchievement(ctx context.Context, format string) (*service.ExportResult, error)
}

// AchievementHandler serves department-wide program outcome statistics.
type AchievementHandler struct {
	service  achievementService
	exporter achievementExporter
}

// NewAchievementHandler constructs the handler.
func NewAchievementHandler(service achievementService, exporter achievementExporter) *AchievementHandler {
	return &AchievementHandler{service: service, exporter: exporter}
}

// ProgramOutcomes godoc
// @Summary Program outcome achievement
// @Description Average, min, max and contributing student count per program outcome, ordered by code
// @Tags Achievement
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Failure 504 {object} response.Envelope
// @Router /program-outcomes/achievement [get]
func (h *AchievementHandler) ProgramOutcomes(c *gin.Context) {
	stats, cacheHit, err := h.service.ProgramOutcomeAchievement(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetMeta(c, "program_outcomes", len(stats))
	response.JSON(c, http.StatusOK, stats, middleware.Meta(c))
}

// Export godoc
// @Summary Export program outcome achievement
// @Tags Achievement
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /program-outcomes/achievement/export [get]
func (h *AchievementHandler) Export(c *gin.Context) {
	result, err := h.exporter.ExportAchievement(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}
