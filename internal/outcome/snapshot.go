package outcome

import (
	"sort"

	"github.com/noah-isme/course-outcomes-api/internal/models"
)

// Input carries the rows fetched for one computation pass.
type Input struct {
	Courses                 []models.Course
	Components              []models.Component
	Outcomes                []models.LearningOutcome
	Enrollments             []models.Enrollment
	ProgramOutcomes         []models.ProgramOutcome
	Scores                  []models.Score
	ComponentOutcomeWeights []models.ComponentOutcomeWeight
	OutcomeProgramWeights   []models.OutcomeProgramWeight
}

// Snapshot is an immutable, indexed view of one Input.
type Snapshot struct {
	Scores  *ScoreStore
	Weights *WeightStore

	courseByID      map[string]models.Course
	components      map[string][]models.Component
	outcomes        map[string][]models.LearningOutcome
	outcomeCourse   map[string]string
	students        map[string][]string
	studentCourses  map[string][]string
	membership      map[pairKey]struct{}
	allStudents     []string
	programOutcomes []models.ProgramOutcome
}

// NewSnapshot indexes the input. Row order inside a course is preserved for components and outcomes;
// students and program outcomes are sorted so results do not depend on fetch order.
func NewSnapshot(in Input) *Snapshot {
	s := &Snapshot{
		Scores:         NewScoreStore(in.Scores),
		Weights:        NewWeightStore(in.ComponentOutcomeWeights, in.OutcomeProgramWeights),
		courseByID:     make(map[string]models.Course, len(in.Courses)),
		components:     make(map[string][]models.Component),
		outcomes:       make(map[string][]models.LearningOutcome),
		outcomeCourse:  make(map[string]string, len(in.Outcomes)),
		students:       make(map[string][]string),
		studentCourses: make(map[string][]string),
		membership:     make(map[pairKey]struct{}, len(in.Enrollments)),
	}

	for _, course := range in.Courses {
		if _, dup := s.courseByID[course.ID]; dup {
			continue
		}
		s.courseByID[course.ID] = course
	}
	for _, component := range in.Components {
		s.components[component.CourseID] = append(s.components[component.CourseID], component)
	}
	for _, lo := range in.Outcomes {
		s.outcomes[lo.CourseID] = append(s.outcomes[lo.CourseID], lo)
		s.outcomeCourse[lo.ID] = lo.CourseID
	}

	for _, e := range in.Enrollments {
		key := pairKey{e.StudentID, e.CourseID}
		if _, dup := s.membership[key]; dup {
			continue
		}
		s.membership[key] = struct{}{}
		s.students[e.CourseID] = append(s.students[e.CourseID], e.StudentID)
		s.studentCourses[e.StudentID] = append(s.studentCourses[e.StudentID], e.CourseID)
	}
	for course := range s.students {
		sort.Strings(s.students[course])
	}
	for student := range s.studentCourses {
		sort.Strings(s.studentCourses[student])
		s.allStudents = append(s.allStudents, student)
	}
	sort.Strings(s.allStudents)

	s.programOutcomes = append([]models.ProgramOutcome(nil), in.ProgramOutcomes...)
	sort.SliceStable(s.programOutcomes, func(i, j int) bool {
		if s.programOutcomes[i].Code != s.programOutcomes[j].Code {
			return s.programOutcomes[i].Code < s.programOutcomes[j].Code
		}
		return s.programOutcomes[i].ID < s.programOutcomes[j].ID
	})

	return s
}

// Course looks up a course by ID.
func (s *Snapshot) Course(courseID string) (models.Course, bool) {
	c, ok := s.courseByID[courseID]
	return c, ok
}

// Components returns the components of a course.
func (s *Snapshot) Components(courseID string) []models.Component { return s.components[courseID] }

// Outcomes returns the learning outcomes of a course.
func (s *Snapshot) Outcomes(courseID string) []models.LearningOutcome { return s.outcomes[courseID] }

// Students returns the students enrolled in a course, sorted by ID.
func (s *Snapshot) Students(courseID string) []string { return s.students[courseID] }

// StudentCourses returns the IDs of the courses a student is enrolled in, sorted.
func (s *Snapshot) StudentCourses(studentID string) []string { return s.studentCourses[studentID] }

// AllStudents returns every enrolled student, sorted by ID.
func (s *Snapshot) AllStudents() []string { return s.allStudents }

// ProgramOutcomes returns program outcomes ordered by code.
func (s *Snapshot) ProgramOutcomes() []models.ProgramOutcome { return s.programOutcomes }

// Enrolled reports whether the student is enrolled in the course.
func (s *Snapshot) Enrolled(studentID, courseID string) bool {
	_, ok := s.membership[pairKey{studentID, courseID}]
	return ok
}
