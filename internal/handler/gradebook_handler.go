package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-outcomes-api/internal/dto"
	"github.com/noah-isme/course-outcomes-api/internal/service"
	appErrors "github.com/noah-isme/course-outcomes-api/pkg/errors"
	"github.com/noah-isme/course-outcomes-api/pkg/response"
)

type gradebookService interface {
	CourseGradebook(ctx context.Context, courseID string) (*dto.CourseGradebook, error)
	StudentDashboard(ctx context.Context, studentID string) (*dto.StudentDashboard, error)
	StudentCourseDetail(ctx context.Context, studentID, courseID string) (*dto.StudentCourseDetail, error)
}

type gradebookExporter interface {
	ExportGradebook(ctx context.Context, courseID, format string) (*service.ExportResult, error)
}

// GradebookHandler serves course and student result views.
type GradebookHandler struct {
	service  gradebookService
	exporter gradebookExporter
}

// NewGradebookHandler constructs the handler.
func NewGradebookHandler(service gradebookService, exporter gradebookExporter) *GradebookHandler {
	return &GradebookHandler{service: service, exporter: exporter}
}

// Course godoc
// @Summary Course gradebook
// @Description Component scores, final grade and learning outcome attainment for every enrolled student
// @Tags Gradebook
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/gradebook [get]
func (h *GradebookHandler) Course(c *gin.Context) {
	courseID, ok := pathParam(c, "id")
	if !ok {
		return
	}
	book, err := h.service.CourseGradebook(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book)
}

// ExportCourse godoc
// @Summary Export course gradebook
// @Tags Gradebook
// @Produce octet-stream
// @Param id path string true "Course ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /courses/{id}/gradebook/export [get]
func (h *GradebookHandler) ExportCourse(c *gin.Context) {
	courseID, ok := pathParam(c, "id")
	if !ok {
		return
	}
	result, err := h.exporter.ExportGradebook(c.Request.Context(), courseID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}

// StudentDashboard godoc
// @Summary Student dashboard
// @Description Final grade and learning outcome attainment per enrolled course
// @Tags Gradebook
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/dashboard [get]
func (h *GradebookHandler) StudentDashboard(c *gin.Context) {
	studentID, ok := pathParam(c, "id")
	if !ok {
		return
	}
	dashboard, err := h.service.StudentDashboard(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard)
}

// StudentCourse godoc
// @Summary Student course detail
// @Description Course summary plus the student's program outcome scores in that course
// @Tags Gradebook
// @Produce json
// @Param id path string true "Student ID"
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/courses/{courseId} [get]
func (h *GradebookHandler) StudentCourse(c *gin.Context) {
	studentID, ok := pathParam(c, "id")
	if !ok {
		return
	}
	courseID, ok := pathParam(c, "courseId")
	if !ok {
		return
	}
	detail, err := h.service.StudentCourseDetail(c.Request.Context(), studentID, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

func pathParam(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Param(name))
	if value == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, name+" is required"))
		return "", false
	}
	return value, true
}
