package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler served by the API.
type Handlers struct {
	Gradebook   *GradebookHandler
	Achievement *AchievementHandler
	Scores      *ScoreHandler
	Weights     *WeightHandler
	Metrics     *MetricsHandler
}

// Register mounts the operational endpoints at the root and the domain endpoints under prefix.
func Register(r *gin.Engine, prefix string, h Handlers) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	api := r.Group(prefix)
	if h.Gradebook != nil {
		api.GET("/courses/:id/gradebook", h.Gradebook.Course)
		api.GET("/courses/:id/gradebook/export", h.Gradebook.ExportCourse)
		api.GET("/students/:id/dashboard", h.Gradebook.StudentDashboard)
		api.GET("/students/:id/courses/:courseId", h.Gradebook.StudentCourse)
	}
	if h.Achievement != nil {
		api.GET("/program-outcomes/achievement", h.Achievement.ProgramOutcomes)
		api.GET("/program-outcomes/achievement/export", h.Achievement.Export)
	}
	if h.Scores != nil {
		api.PUT("/scores", h.Scores.Record)
		api.PUT("/courses/:id/scores", h.Scores.RecordSheet)
	}
	if h.Weights != nil {
		api.PUT("/components/:id/outcome-weights", h.Weights.ComponentOutcomes)
		api.PUT("/outcomes/:id/program-weights", h.Weights.OutcomePrograms)
	}
}
