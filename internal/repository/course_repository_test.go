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

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{
		Title:      "Graph Theory",
		Kind:       models.KindLecture,
		StorageKey: "courses/graphs.pdf",
		Published:  true,
	}
	require.NoError(t, repo.Create(context.Background(), course))
	require.NotEmpty(t, course.ID)
	require.False(t, course.CreatedAt.IsZero())

	rows := sqlmock.NewRows([]string{"id", "title", "description", "storage_key", "kind", "published", "validated", "created_at", "updated_at"}).
		AddRow(course.ID, "Graph Theory", "", "courses/graphs.pdf", "LECTURE", true, false, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, storage_key")).
		WithArgs(course.ID).
		WillReturnRows(rows)

	found, err := repo.FindByID(context.Background(), course.ID)
	require.NoError(t, err)
	require.Equal(t, course.ID, found.ID)
	require.True(t, found.Published)
	require.False(t, found.Validated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryValidateSetsBothFlags(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET validated = TRUE, published = TRUE")).
		WithArgs("course-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Validate(context.Background(), "course-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryValidateUnknownCourse(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET validated = TRUE, published = TRUE")).
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Validate(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCourseRepositoryUpdateLeavesLifecycleAlone(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET title = ?, description = ?, kind = ?, updated_at = ? WHERE id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	course := &models.Course{ID: "course-1", Title: "Renamed", Kind: models.KindTutorial}
	require.NoError(t, repo.Update(context.Background(), course))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListForGroupIncludesWindow(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	openAt := time.Now().Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"id", "title", "description", "storage_key", "kind", "published", "validated", "created_at", "updated_at", "open_at", "close_at"}).
		AddRow("course-1", "Graph Theory", "", "courses/graphs.pdf", "LECTURE", true, true, time.Now(), time.Now(), openAt, nil)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN distributions d ON d.course_id = c.id")).
		WithArgs("group-1").
		WillReturnRows(rows)

	courses, err := repo.ListForGroup(context.Background(), "group-1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.NotNil(t, courses[0].OpenAt)
	require.Nil(t, courses[0].CloseAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDeleteUnknownCourse(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
}
