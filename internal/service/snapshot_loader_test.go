package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/course-outcomes-api/pkg/errors"
)

func newLoaderForTest() (*SnapshotLoader, *fakeStore) {
	store := &fakeStore{in: fixture()}
	return NewSnapshotLoader(store, store, fakeScores{store: store}, fakeWeights{store: store}, fakePrograms{store: store}, NewMetricsService()), store
}

func TestSnapshotLoaderLoadCourseScopesQueries(t *testing.T) {
	loader, store := newLoaderForTest()

	snap, err := loader.LoadCourse(context.Background(), "cs101")
	require.NoError(t, err)

	assert.Equal(t, []string{"cs101"}, store.scoreFilter.CourseIDs)
	assert.Empty(t, store.scoreFilter.StudentID)
	assert.Equal(t, []string{"cs101"}, store.coScope)
	assert.ElementsMatch(t, []string{"lo-a", "lo-b"}, store.opScope)

	assert.Equal(t, []string{"s1", "s2"}, snap.Students("cs101"))
	assert.Empty(t, snap.Students("cs102"))
	assert.Len(t, snap.Components("cs101"), 2)
	assert.Len(t, snap.ProgramOutcomes(), 3)
}

func TestSnapshotLoaderLoadCourseUnknown(t *testing.T) {
	loader, _ := newLoaderForTest()

	_, err := loader.LoadCourse(context.Background(), "nope")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSnapshotLoaderLoadStudent(t *testing.T) {
	loader, store := newLoaderForTest()

	snap, err := loader.LoadStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", store.scoreFilter.StudentID)
	assert.ElementsMatch(t, []string{"cs101", "cs102"}, store.scoreFilter.CourseIDs)
	assert.Equal(t, []string{"cs101", "cs102"}, snap.StudentCourses("s1"))
	assert.False(t, snap.Enrolled("s2", "cs101"))
}

func TestSnapshotLoaderLoadStudentWithoutEnrollments(t *testing.T) {
	loader, store := newLoaderForTest()

	snap, err := loader.LoadStudent(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, snap.StudentCourses("ghost"))
	assert.Nil(t, store.scoreFilter.CourseIDs)
}

func TestSnapshotLoaderLoadDepartmentIsUnscoped(t *testing.T) {
	loader, store := newLoaderForTest()

	snap, err := loader.LoadDepartment(context.Background())
	require.NoError(t, err)
	assert.Nil(t, store.scoreFilter.CourseIDs)
	assert.Nil(t, store.coScope)
	assert.Nil(t, store.opScope)
	assert.Equal(t, []string{"s1", "s2"}, snap.AllStudents())
}

func TestSnapshotLoaderStoreFailure(t *testing.T) {
	loader, store := newLoaderForTest()
	store.failReads = errors.New("connection reset")

	_, err := loader.LoadCourse(context.Background(), "cs101")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
}

func TestSnapshotLoaderCanceledRequest(t *testing.T) {
	loader, store := newLoaderForTest()
	store.failReads = fmt.Errorf("list courses: %w", context.Canceled)

	_, err := loader.LoadCourse(context.Background(), "cs101")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrRequestCanceled)
	assert.False(t, errors.Is(err, appErrors.ErrStoreUnavailable))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 499, appErrors.FromError(err).Status)
}
