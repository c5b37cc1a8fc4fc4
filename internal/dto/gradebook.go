package dto

import "github.com/noah-isme/course-outcomes-api/internal/models"

// ComponentScore is one cell of a gradebook row. A nil Score means the component is ungraded.
type ComponentScore struct {
	ComponentID string         `json:"component_id"`
	Name        string         `json:"name"`
	Percentage  int            `json:"percentage"`
	Score       *models.Fixed2 `json:"score"`
}

// GradebookRow is one student's standing in a course.
type GradebookRow struct {
	StudentID   string                     `json:"student_id"`
	Scores      []ComponentScore           `json:"scores"`
	FinalGrade  models.Fixed2              `json:"final_grade"`
	Attainments []models.OutcomeAttainment `json:"attainments"`
}

// CourseGradebook is the instructor view of a course.
type CourseGradebook struct {
	Course          models.Course            `json:"course"`
	Components      []models.Component       `json:"components"`
	Outcomes        []models.LearningOutcome `json:"outcomes"`
	PercentageTotal int                      `json:"percentage_total"`
	Students        []GradebookRow           `json:"students"`
}

// StudentCourseSummary is a student's view of one enrolled course.
type StudentCourseSummary struct {
	Course          models.Course              `json:"course"`
	PercentageTotal int                        `json:"percentage_total"`
	Scores          []ComponentScore           `json:"scores"`
	FinalGrade      models.Fixed2              `json:"final_grade"`
	Outcomes        []models.LearningOutcome   `json:"outcomes"`
	Attainments     []models.OutcomeAttainment `json:"attainments"`
}

// StudentDashboard lists every course a student is enrolled in.
type StudentDashboard struct {
	StudentID string                 `json:"student_id"`
	Courses   []StudentCourseSummary `json:"courses"`
}

// StudentCourseDetail adds program outcome scores to a course summary.
type StudentCourseDetail struct {
	StudentID string `json:"student_id"`
	StudentCourseSummary
	ProgramOutcomes []models.ProgramOutcomeScore `json:"program_outcomes"`
}
