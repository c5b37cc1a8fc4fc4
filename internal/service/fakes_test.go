package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/course-outcomes-api/internal/models"
	"github.com/noah-isme/course-outcomes-api/internal/outcome"
	appErrors "github.com/noah-isme/course-outcomes-api/pkg/errors"
)

// fixture is a two-course department:
//
//	CS101: Midterm 40%, Final 60%; LO-A fed by both (2, 3); LO-B fed by Final (1).
//	CS102: Project 100%; LO-C fed by Project (1).
//	LO-A → PO1 (4), LO-C → PO1 (6), LO-B → PO2 (1). PO3 has no links.
func fixture() outcome.Input {
	return outcome.Input{
		Courses: []models.Course{
			{ID: "cs101", Code: "CS101", Name: "Programming"},
			{ID: "cs102", Code: "CS102", Name: "Data Structures"},
		},
		Components: []models.Component{
			{ID: "mid", CourseID: "cs101", Name: "Midterm", Percentage: 40},
			{ID: "fin", CourseID: "cs101", Name: "Final", Percentage: 60},
			{ID: "prj", CourseID: "cs102", Name: "Project", Percentage: 100},
		},
		Outcomes: []models.LearningOutcome{
			{ID: "lo-a", CourseID: "cs101", Description: "Write programs"},
			{ID: "lo-b", CourseID: "cs101", Description: "Debug programs"},
			{ID: "lo-c", CourseID: "cs102", Description: "Use data structures"},
		},
		Enrollments: []models.Enrollment{
			{CourseID: "cs101", StudentID: "s1"},
			{CourseID: "cs101", StudentID: "s2"},
			{CourseID: "cs102", StudentID: "s1"},
		},
		ProgramOutcomes: []models.ProgramOutcome{
			{ID: "po2", Code: "PO2", Description: "Debugging"},
			{ID: "po1", Code: "PO1", Description: "Programming"},
			{ID: "po3", Code: "PO3", Description: "Ethics"},
		},
		Scores: []models.Score{
			{StudentID: "s1", ComponentID: "mid", Score: dec("80")},
			{StudentID: "s1", ComponentID: "fin", Score: dec("90")},
			{StudentID: "s1", ComponentID: "prj", Score: dec("70")},
			{StudentID: "s2", ComponentID: "mid", Score: dec("50")},
			{StudentID: "s2", ComponentID: "fin"},
		},
		ComponentOutcomeWeights: []models.ComponentOutcomeWeight{
			{ComponentID: "mid", OutcomeID: "lo-a", Weight: 2},
			{ComponentID: "fin", OutcomeID: "lo-a", Weight: 3},
			{ComponentID: "fin", OutcomeID: "lo-b", Weight: 1},
			{ComponentID: "prj", OutcomeID: "lo-c", Weight: 1},
		},
		OutcomeProgramWeights: []models.OutcomeProgramWeight{
			{OutcomeID: "lo-a", ProgramOutcomeID: "po1", Weight: 4},
			{OutcomeID: "lo-c", ProgramOutcomeID: "po1", Weight: 6},
			{OutcomeID: "lo-b", ProgramOutcomeID: "po2", Weight: 1},
		},
	}
}

func dec(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

// fakeSnapshots scopes the fixture the same way SnapshotLoader scopes queries.
type fakeSnapshots struct {
	in    outcome.Input
	err   error
	delay time.Duration
	calls int
	// loaded runs after a department snapshot is built, before it is returned.
	loaded func()
}

func (f *fakeSnapshots) wait(ctx context.Context) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *fakeSnapshots) LoadCourse(ctx context.Context, courseID string) (*outcome.Snapshot, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	for _, c := range f.in.Courses {
		if c.ID == courseID {
			return outcome.NewSnapshot(f.in), nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
}

func (f *fakeSnapshots) LoadStudent(ctx context.Context, studentID string) (*outcome.Snapshot, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	in := f.in
	in.Enrollments = nil
	for _, e := range f.in.Enrollments {
		if e.StudentID == studentID {
			in.Enrollments = append(in.Enrollments, e)
		}
	}
	return outcome.NewSnapshot(in), nil
}

func (f *fakeSnapshots) LoadDepartment(ctx context.Context) (*outcome.Snapshot, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	snap := outcome.NewSnapshot(f.in)
	if f.loaded != nil {
		f.loaded()
	}
	return snap, nil
}

type memoryCache struct {
	items map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{items: make(map[string][]byte)} }

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	removed := 0
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryCache) Ping(ctx context.Context) error { return nil }

// fakeStore backs the repository interfaces used by the write services and the loader.
type fakeStore struct {
	in          outcome.Input
	upserts     []models.Score
	coApplied   []models.ComponentOutcomeWeight
	coRemoved   []string
	opApplied   []models.OutcomeProgramWeight
	opRemoved   []string
	failWrites  error
	failReads   error
	scoreFilter models.ScoreFilter
	coScope     []string
	opScope     []string
}

func (s *fakeStore) List(ctx context.Context, ids []string) ([]models.Course, error) {
	if s.failReads != nil {
		return nil, s.failReads
	}
	var out []models.Course
	for _, c := range s.in.Courses {
		if ids == nil || contains(ids, c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) ListComponents(ctx context.Context, courseIDs []string) ([]models.Component, error) {
	var out []models.Component
	for _, c := range s.in.Components {
		if courseIDs == nil || contains(courseIDs, c.CourseID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) FindComponent(ctx context.Context, id string) (*models.Component, error) {
	for _, c := range s.in.Components {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStore) ListOutcomes(ctx context.Context, courseIDs []string) ([]models.LearningOutcome, error) {
	var out []models.LearningOutcome
	for _, lo := range s.in.Outcomes {
		if courseIDs == nil || contains(courseIDs, lo.CourseID) {
			out = append(out, lo)
		}
	}
	return out, nil
}

func (s *fakeStore) FindOutcome(ctx context.Context, id string) (*models.LearningOutcome, error) {
	for _, lo := range s.in.Outcomes {
		if lo.ID == id {
			lo := lo
			return &lo, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStore) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	for _, e := range s.in.Enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ListStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	var out []string
	for _, e := range s.in.Enrollments {
		if e.CourseID == courseID {
			out = append(out, e.StudentID)
		}
	}
	return out, nil
}

func (s *fakeStore) ListByCourses(ctx context.Context, courseIDs []string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range s.in.Enrollments {
		if courseIDs == nil || contains(courseIDs, e.CourseID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range s.in.Enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) Upsert(ctx context.Context, score *models.Score) error {
	if s.failWrites != nil {
		return s.failWrites
	}
	s.upserts = append(s.upserts, *score)
	return nil
}

func (s *fakeStore) BulkUpsert(ctx context.Context, scores []models.Score) error {
	if s.failWrites != nil {
		return s.failWrites
	}
	s.upserts = append(s.upserts, scores...)
	return nil
}

func (s *fakeStore) ApplyComponentOutcomeWeights(ctx context.Context, componentID string, upserts []models.ComponentOutcomeWeight, deleteOutcomeIDs []string) error {
	if s.failWrites != nil {
		return s.failWrites
	}
	s.coApplied = append(s.coApplied, upserts...)
	s.coRemoved = append(s.coRemoved, deleteOutcomeIDs...)
	return nil
}

func (s *fakeStore) ApplyOutcomeProgramWeights(ctx context.Context, outcomeID string, upserts []models.OutcomeProgramWeight, deleteProgramOutcomeIDs []string) error {
	if s.failWrites != nil {
		return s.failWrites
	}
	s.opApplied = append(s.opApplied, upserts...)
	s.opRemoved = append(s.opRemoved, deleteProgramOutcomeIDs...)
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Score and weight readers are separate types because their List signatures collide with the course reader.
type fakeScores struct{ store *fakeStore }

func (f fakeScores) List(ctx context.Context, filter models.ScoreFilter) ([]models.Score, error) {
	f.store.scoreFilter = filter
	var out []models.Score
	for _, sc := range f.store.in.Scores {
		if filter.StudentID != "" && sc.StudentID != filter.StudentID {
			continue
		}
		out = append(out, sc)
	}
	return out, nil
}

type fakeWeights struct{ store *fakeStore }

func (f fakeWeights) ListComponentOutcomeWeights(ctx context.Context, courseIDs []string) ([]models.ComponentOutcomeWeight, error) {
	f.store.coScope = courseIDs
	return f.store.in.ComponentOutcomeWeights, nil
}

func (f fakeWeights) ListOutcomeProgramWeights(ctx context.Context, outcomeIDs []string) ([]models.OutcomeProgramWeight, error) {
	f.store.opScope = outcomeIDs
	var out []models.OutcomeProgramWeight
	for _, w := range f.store.in.OutcomeProgramWeights {
		if outcomeIDs == nil || contains(outcomeIDs, w.OutcomeID) {
			out = append(out, w)
		}
	}
	return out, nil
}

type fakePrograms struct{ store *fakeStore }

func (f fakePrograms) List(ctx context.Context) ([]models.ProgramOutcome, error) {
	return f.store.in.ProgramOutcomes, nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	return nil
}
