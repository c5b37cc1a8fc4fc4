package models

// Course is a catalogue entry that owns components and learning outcomes.
type Course struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Component is a graded activity of a course. Percentages of a course should total 100 but are not forced to.
type Component struct {
	ID         string `db:"id" json:"id"`
	CourseID   string `db:"course_id" json:"course_id"`
	Name       string `db:"name" json:"name"`
	Percentage int    `db:"percentage" json:"percentage"`
}

// LearningOutcome is a course-level competency statement.
type LearningOutcome struct {
	ID          string `db:"id" json:"id"`
	CourseID    string `db:"course_id" json:"course_id"`
	Description string `db:"description" json:"description"`
}

// ProgramOutcome is a department-wide competency shared across courses.
type ProgramOutcome struct {
	ID          string `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description"`
}

// Enrollment links a student to a course.
type Enrollment struct {
	CourseID  string `db:"course_id" json:"course_id"`
	StudentID string `db:"student_id" json:"student_id"`
}
