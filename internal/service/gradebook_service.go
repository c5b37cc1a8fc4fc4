package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/course-outcomes-api/internal/dto"
	"github.com/noah-isme/course-outcomes-api/internal/models"
	"github.com/noah-isme/course-outcomes-api/internal/outcome"
	appErrors "github.com/noah-isme/course-outcomes-api/pkg/errors"
)

// GradebookService serves the instructor and student views of course results.
type GradebookService struct {
	snapshots SnapshotSource
	logger    *zap.Logger
}

// NewGradebookService constructs a GradebookService.
func NewGradebookService(snapshots SnapshotSource, logger *zap.Logger) *GradebookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradebookService{snapshots: snapshots, logger: logger}
}

// CourseGradebook returns component scores, final grade and outcome attainment for every enrolled student.
func (s *GradebookService) CourseGradebook(ctx context.Context, courseID string) (*dto.CourseGradebook, error) {
	snap, err := s.snapshots.LoadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	course, ok := snap.Course(courseID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	components := snap.Components(courseID)
	book := &dto.CourseGradebook{
		Course:          course,
		Components:      nonNil(components),
		Outcomes:        nonNil(snap.Outcomes(courseID)),
		PercentageTotal: outcome.PercentageTotal(components),
		Students:        make([]dto.GradebookRow, 0, len(snap.Students(courseID))),
	}
	for _, studentID := range snap.Students(courseID) {
		book.Students = append(book.Students, dto.GradebookRow{
			StudentID:   studentID,
			Scores:      componentScores(snap, studentID, courseID),
			FinalGrade:  outcome.CourseGrade(studentID, components, snap.Scores),
			Attainments: outcome.CourseAttainments(snap, studentID, courseID),
		})
	}
	if book.PercentageTotal != 100 {
		s.logger.Debug("course percentages do not sum to 100", zap.String("course_id", courseID), zap.Int("total", book.PercentageTotal))
	}
	return book, nil
}

// StudentDashboard summarises every course the student is enrolled in.
func (s *GradebookService) StudentDashboard(ctx context.Context, studentID string) (*dto.StudentDashboard, error) {
	snap, err := s.snapshots.LoadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	courses := snap.StudentCourses(studentID)
	dashboard := &dto.StudentDashboard{StudentID: studentID, Courses: make([]dto.StudentCourseSummary, 0, len(courses))}
	for _, courseID := range courses {
		dashboard.Courses = append(dashboard.Courses, courseSummary(snap, studentID, courseID))
	}
	return dashboard, nil
}

// StudentCourseDetail returns one course summary plus the student's program outcome scores in that course.
func (s *GradebookService) StudentCourseDetail(ctx context.Context, studentID, courseID string) (*dto.StudentCourseDetail, error) {
	snap, err := s.snapshots.LoadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !snap.Enrolled(studentID, courseID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student is not enrolled in course")
	}
	return &dto.StudentCourseDetail{
		StudentID:            studentID,
		StudentCourseSummary: courseSummary(snap, studentID, courseID),
		ProgramOutcomes:      nonNil(outcome.CourseProgramScores(snap, studentID, courseID)),
	}, nil
}

func courseSummary(snap *outcome.Snapshot, studentID, courseID string) dto.StudentCourseSummary {
	course, _ := snap.Course(courseID)
	components := snap.Components(courseID)
	return dto.StudentCourseSummary{
		Course:          course,
		PercentageTotal: outcome.PercentageTotal(components),
		Scores:          componentScores(snap, studentID, courseID),
		FinalGrade:      outcome.CourseGrade(studentID, components, snap.Scores),
		Outcomes:        nonNil(snap.Outcomes(courseID)),
		Attainments:     outcome.CourseAttainments(snap, studentID, courseID),
	}
}

func componentScores(snap *outcome.Snapshot, studentID, courseID string) []dto.ComponentScore {
	components := snap.Components(courseID)
	cells := make([]dto.ComponentScore, 0, len(components))
	for _, component := range components {
		cell := dto.ComponentScore{ComponentID: component.ID, Name: component.Name, Percentage: component.Percentage}
		if score, ok := snap.Scores.Score(studentID, component.ID); ok {
			q := models.Quantize(score)
			cell.Score = &q
		}
		cells = append(cells, cell)
	}
	return cells
}

// nonNil keeps empty collections rendering as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
