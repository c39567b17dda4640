package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/courshub/courshub-api/internal/models"
)

func newDistributionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestDistributionRepositoryReplaceIsTransactional(t *testing.T) {
	db, mock, cleanup := newDistributionRepoMock(t)
	defer cleanup()

	repo := NewDistributionRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM distributions WHERE course_id = $1")).
		WithArgs("course-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO distributions")).
		WithArgs("course-1", "group-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO distributions")).
		WithArgs("course-1", "group-2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Replace(context.Background(), "course-1", []string{"group-1", "group-2"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDistributionRepositoryReplaceEmptySetClearsAll(t *testing.T) {
	db, mock, cleanup := newDistributionRepoMock(t)
	defer cleanup()

	repo := NewDistributionRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM distributions WHERE course_id = $1")).
		WithArgs("course-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.Replace(context.Background(), "course-1", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDistributionRepositoryFindMissingPair(t *testing.T) {
	db, mock, cleanup := newDistributionRepoMock(t)
	defer cleanup()

	repo := NewDistributionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id, group_id, open_at, close_at FROM distributions")).
		WithArgs("course-1", "group-9").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "course-1", "group-9")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDistributionRepositoryUpdateWindow(t *testing.T) {
	db, mock, cleanup := newDistributionRepoMock(t)
	defer cleanup()

	repo := NewDistributionRepository(db)
	openAt := time.Now().UTC()
	closeAt := openAt.Add(48 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE distributions SET open_at = $3, close_at = $4")).
		WithArgs("course-1", "group-1", openAt, closeAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateWindow(context.Background(), models.Distribution{
		CourseID: "course-1",
		GroupID:  "group-1",
		OpenAt:   &openAt,
		CloseAt:  &closeAt,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE distributions SET open_at = $3, close_at = $4")).
		WithArgs("course-1", "group-missing", openAt, closeAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateWindow(context.Background(), models.Distribution{
		CourseID: "course-1",
		GroupID:  "group-missing",
		OpenAt:   &openAt,
		CloseAt:  &closeAt,
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
}
