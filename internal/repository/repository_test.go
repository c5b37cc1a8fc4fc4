package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-outcomes-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAnyFilter(t *testing.T) {
	query, args := anyFilter("SELECT 1 WHERE 1=1", nil, "course_id", nil)
	assert.Equal(t, "SELECT 1 WHERE 1=1", query)
	assert.Empty(t, args)

	query, args = anyFilter("SELECT 1 WHERE x = $1", []interface{}{"a"}, "course_id", []string{"c1", "c2"})
	assert.Equal(t, "SELECT 1 WHERE x = $1 AND course_id = ANY($2)", query)
	require.Len(t, args, 2)
	assert.Equal(t, pq.Array([]string{"c1", "c2"}), args[1])
}

func TestCourseRepositoryListComponentsScoped(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "name", "percentage"}).
		AddRow("cmp-1", "crs-1", "Midterm", 40).
		AddRow("cmp-2", "crs-1", "Final", 60)
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_components WHERE 1=1 AND course_id = ANY($1) ORDER BY course_id, created_at, id")).
		WillReturnRows(rows)

	components, err := repo.ListComponents(context.Background(), []string{"crs-1"})
	require.NoError(t, err)
	require.Len(t, components, 2)
	assert.Equal(t, 60, components[1].Percentage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryIsEnrolled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM course_enrollments WHERE student_id = $1 AND course_id = $2)")).
		WithArgs("stu-1", "crs-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsEnrolled(context.Background(), "stu-1", "crs-1")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListStudentIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id FROM course_enrollments WHERE course_id = $1")).
		WithArgs("crs-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("stu-1").AddRow("stu-2"))

	ids, err := repo.ListStudentIDs(context.Background(), "crs-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"stu-1", "stu-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryListReadsNullScores(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "component_id", "score", "updated_at"}).
		AddRow("sc-1", "stu-1", "cmp-1", "80.50", now).
		AddRow("sc-2", "stu-1", "cmp-2", nil, now)
	mock.ExpectQuery(regexp.QuoteMeta("AND cc.course_id = ANY($1) AND s.student_id = $2")).
		WillReturnRows(rows)

	scores, err := repo.List(context.Background(), models.ScoreFilter{CourseIDs: []string{"crs-1"}, StudentID: "stu-1"})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.True(t, scores[0].Score.Valid)
	assert.True(t, scores[0].Score.Decimal.Equal(decimal.RequireFromString("80.5")))
	assert.False(t, scores[1].Score.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO component_scores")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	score := &models.Score{StudentID: "stu-1", ComponentID: "cmp-1", Score: decimal.NewNullDecimal(decimal.NewFromInt(90))}
	require.NoError(t, repo.Upsert(context.Background(), score))
	assert.NotEmpty(t, score.ID)
	assert.False(t, score.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryBulkUpsertRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO component_scores")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO component_scores")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.BulkUpsert(context.Background(), []models.Score{
		{StudentID: "stu-1", ComponentID: "cmp-1"},
		{StudentID: "stu-2", ComponentID: "cmp-1"},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeightRepositoryListOutcomeProgramWeights(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeightRepository(db)

	rows := sqlmock.NewRows([]string{"id", "outcome_id", "program_outcome_id", "weight"}).
		AddRow("w-1", "lo-1", "po-1", 3)
	mock.ExpectQuery(regexp.QuoteMeta("FROM outcome_program_weights WHERE 1=1 AND outcome_id = ANY($1)")).
		WillReturnRows(rows)

	weights, err := repo.ListOutcomeProgramWeights(context.Background(), []string{"lo-1"})
	require.NoError(t, err)
	require.Len(t, weights, 1)
	assert.Equal(t, 3, weights[0].Weight)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeightRepositoryApplyComponentOutcomeWeights(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeightRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO component_outcome_weights")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM component_outcome_weights WHERE component_id = $1 AND outcome_id = $2")).
		WithArgs("cmp-1", "lo-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	upserts := []models.ComponentOutcomeWeight{{OutcomeID: "lo-1", Weight: 2}}
	err := repo.ApplyComponentOutcomeWeights(context.Background(), "cmp-1", upserts, []string{"lo-2"})
	require.NoError(t, err)
	assert.Equal(t, "cmp-1", upserts[0].ComponentID)
	assert.NotEmpty(t, upserts[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramOutcomeRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgramOutcomeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "code", "description"}).
		AddRow("po-1", "PO1", "Apply mathematics").
		AddRow("po-2", "PO2", "Design systems")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, description FROM program_outcomes ORDER BY code, id")).
		WillReturnRows(rows)

	outcomes, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "PO2", outcomes[1].Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
