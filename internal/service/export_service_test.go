package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/course-outcomes-api/internal/dto"
	"github.com/noah-isme/course-outcomes-api/internal/models"
	appErrors "github.com/noah-isme/course-outcomes-api/pkg/errors"
	"github.com/noah-isme/course-outcomes-api/pkg/export"
)

func newExportServiceForTest() *ExportService {
	snapshots := &fakeSnapshots{in: fixture()}
	achievement := NewAchievementService(snapshots, nil, nil, nil, 0, 0)
	gradebook := NewGradebookService(snapshots, nil)
	return NewExportService(achievement, gradebook, "Program Outcome Achievement", zap.NewNop())
}

func TestExportServiceAchievementCSV(t *testing.T) {
	svc := newExportServiceForTest()

	result, err := svc.ExportAchievement(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "program-outcome-achievement.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)

	lines := strings.Split(strings.TrimSpace(string(result.Payload)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Code,Description,Average,Min,Max,Students", lines[0])
	assert.Equal(t, "PO1,Programming,63.20,50.00,76.40,2", lines[1])
	assert.Equal(t, "PO3,Ethics,-,-,-,0", lines[3])
}

func TestExportServiceGradebookXLSX(t *testing.T) {
	svc := newExportServiceForTest()

	result, err := svc.ExportGradebook(context.Background(), "cs101", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, "gradebook-CS101.xlsx", result.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(result.Payload))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Student", "Midterm (40%)", "Final (60%)", "Final Grade", "LO1", "LO2"}, rows[0])
	assert.Equal(t, []string{"s1", "80.00", "90.00", "86.00", "86.00", "90.00"}, rows[1])
	assert.Equal(t, []string{"s2", "50.00", "-", "20.00", "50.00", "-"}, rows[2])
}

func TestExportServiceGradebookPDF(t *testing.T) {
	svc := newExportServiceForTest()

	result, err := svc.ExportGradebook(context.Background(), "cs101", "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Payload, []byte("%PDF-")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest()

	_, err := svc.ExportAchievement(context.Background(), "docx")
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedFormat)
}

func TestExportServiceGradebookUnknownCourse(t *testing.T) {
	svc := newExportServiceForTest()

	_, err := svc.ExportGradebook(context.Background(), "missing", "csv")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestGradebookDatasetKeepsRepeatedHeadersApart(t *testing.T) {
	quiz1 := models.Quantize(decimal.NewFromInt(40))
	quiz2 := models.Quantize(decimal.NewFromInt(95))
	book := &dto.CourseGradebook{
		Components: []models.Component{
			{ID: "k1", Name: "Quiz", Percentage: 50},
			{ID: "k2", Name: "Quiz", Percentage: 50},
		},
		Students: []dto.GradebookRow{{
			StudentID: "s1",
			Scores: []dto.ComponentScore{
				{ComponentID: "k1", Name: "Quiz", Percentage: 50, Score: &quiz1},
				{ComponentID: "k2", Name: "Quiz", Percentage: 50, Score: &quiz2},
			},
			FinalGrade: models.Quantize(decimal.RequireFromString("67.5")),
		}},
	}

	data := GradebookDataset(book)
	assert.Equal(t, []string{"Student", "Quiz (50%)", "Quiz (50%)", "Final Grade"}, data.Headers)

	out, err := export.NewCSVExporter().Render(data, "")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "s1,40.00,95.00,67.50", lines[1])
}
