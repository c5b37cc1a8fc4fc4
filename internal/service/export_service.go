package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/course-outcomes-api/internal/dto"
	"github.com/noah-isme/course-outcomes-api/internal/models"
	appErrors "github.com/noah-isme/course-outcomes-api/pkg/errors"
	"github.com/noah-isme/course-outcomes-api/pkg/export"
)

const undefinedCell = "-"

type renderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type achievementProvider interface {
	ProgramOutcomeAchievement(ctx context.Context) ([]models.ProgramOutcomeStats, bool, error)
}

type gradebookProvider interface {
	CourseGradebook(ctx context.Context, courseID string) (*dto.CourseGradebook, error)
}

// ExportResult is a rendered report ready to be served as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders achievement and gradebook reports.
type ExportService struct {
	achievement achievementProvider
	gradebook   gradebookProvider
	renderers   map[export.Format]renderer
	title       string
	logger      *zap.Logger
}

// NewExportService constructs an ExportService with the CSV, PDF and XLSX renderers.
func NewExportService(achievement achievementProvider, gradebook gradebookProvider, title string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		achievement: achievement,
		gradebook:   gradebook,
		renderers: map[export.Format]renderer{
			export.FormatCSV:  export.NewCSVExporter(),
			export.FormatPDF:  export.NewPDFExporter(),
			export.FormatXLSX: export.NewXLSXExporter(),
		},
		title:  title,
		logger: logger,
	}
}

// ExportAchievement renders the program outcome statistics table.
// Program outcomes without contributors show "-" instead of zero figures.
func (s *ExportService) ExportAchievement(ctx context.Context, format string) (*ExportResult, error) {
	f, r, err := s.resolve(format)
	if err != nil {
		return nil, err
	}
	stats, _, err := s.achievement.ProgramOutcomeAchievement(ctx)
	if err != nil {
		return nil, err
	}
	data := AchievementDataset(stats)
	return s.render(f, r, data, s.title, "program-outcome-achievement")
}

// ExportGradebook renders the instructor gradebook of a course.
func (s *ExportService) ExportGradebook(ctx context.Context, courseID, format string) (*ExportResult, error) {
	f, r, err := s.resolve(format)
	if err != nil {
		return nil, err
	}
	book, err := s.gradebook.CourseGradebook(ctx, courseID)
	if err != nil {
		return nil, err
	}
	data := GradebookDataset(book)
	title := fmt.Sprintf("%s %s Gradebook", book.Course.Code, book.Course.Name)
	return s.render(f, r, data, title, "gradebook-"+book.Course.Code)
}

func (s *ExportService) resolve(format string) (export.Format, renderer, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, "format must be one of csv, pdf, xlsx")
	}
	r, ok := s.renderers[f]
	if !ok {
		return "", nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("format %s is not available", f))
	}
	return f, r, nil
}

func (s *ExportService) render(f export.Format, r renderer, data export.Dataset, title, basename string) (*ExportResult, error) {
	payload, err := r.Render(data, title)
	if err != nil {
		s.logger.Error("render export", zap.String("format", string(f)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("%s.%s", basename, f),
		ContentType: f.ContentType(),
		Payload:     payload,
	}, nil
}

// AchievementDataset flattens program outcome statistics into export rows.
func AchievementDataset(stats []models.ProgramOutcomeStats) export.Dataset {
	data := export.Dataset{Headers: []string{"Code", "Description", "Average", "Min", "Max", "Students"}}
	for _, st := range stats {
		row := map[string]string{
			"Code":        st.Code,
			"Description": st.Description,
			"Average":     undefinedCell,
			"Min":         undefinedCell,
			"Max":         undefinedCell,
			"Students":    fmt.Sprintf("%d", st.StudentCount),
		}
		if st.StudentCount > 0 {
			row["Average"] = st.Average.String()
			row["Min"] = st.Min.String()
			row["Max"] = st.Max.String()
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// GradebookDataset flattens a gradebook: one column per component, the final grade, then one column per learning outcome.
// Cells are keyed by component and outcome ID since display headers may repeat.
func GradebookDataset(book *dto.CourseGradebook) export.Dataset {
	headers := []string{"Student"}
	keys := []string{"student"}
	for _, c := range book.Components {
		headers = append(headers, fmt.Sprintf("%s (%d%%)", c.Name, c.Percentage))
		keys = append(keys, "component:"+c.ID)
	}
	headers = append(headers, "Final Grade")
	keys = append(keys, "final")
	for i, lo := range book.Outcomes {
		headers = append(headers, fmt.Sprintf("LO%d", i+1))
		keys = append(keys, "outcome:"+lo.ID)
	}

	data := export.Dataset{Headers: headers, Keys: keys}
	for _, student := range book.Students {
		row := map[string]string{"student": student.StudentID, "final": student.FinalGrade.String()}
		for _, cell := range student.Scores {
			row["component:"+cell.ComponentID] = fixedOrDash(cell.Score)
		}
		for _, att := range student.Attainments {
			row["outcome:"+att.OutcomeID] = fixedOrDash(att.Score)
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

func fixedOrDash(v *models.Fixed2) string {
	if v == nil {
		return undefinedCell
	}
	return v.String()
}
