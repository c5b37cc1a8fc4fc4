package models

// CourseGrade is the weighted final grade of a student in a course.
type CourseGrade struct {
	StudentID  string `json:"student_id"`
	CourseID   string `json:"course_id"`
	FinalGrade Fixed2 `json:"final_grade"`
}

// OutcomeAttainment is a student's attainment of one learning outcome. A nil Score means no score yet.
type OutcomeAttainment struct {
	StudentID string  `json:"student_id"`
	OutcomeID string  `json:"outcome_id"`
	Score     *Fixed2 `json:"score"`
}

// ProgramOutcomeScore is a student's score toward a program outcome within one course.
type ProgramOutcomeScore struct {
	ProgramOutcomeID string  `json:"program_outcome_id"`
	Code             string  `json:"code"`
	Score            *Fixed2 `json:"score"`
}

// ProgramOutcomeStats aggregates program outcome scores across students.
// When StudentCount is zero the other figures are zero and carry no meaning.
type ProgramOutcomeStats struct {
	ProgramOutcomeID string `json:"program_outcome_id"`
	Code             string `json:"code"`
	Description      string `json:"description"`
	Average          Fixed2 `json:"average"`
	Min              Fixed2 `json:"min"`
	Max              Fixed2 `json:"max"`
	StudentCount     int    `json:"student_count"`
}
