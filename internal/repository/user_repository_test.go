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

func newUserRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUserRepositoryCreateWithStudentProfile(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_profiles")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user := &models.User{FullName: "Sam Student", Email: "sam@example.com", PasswordHash: "hash", Role: models.RoleStudent}
	student := &models.StudentProfile{RegistrationNo: "REG-001", GroupID: "group-1"}
	require.NoError(t, repo.CreateWithProfile(context.Background(), user, student, nil))

	require.NotEmpty(t, user.ID)
	require.NotEmpty(t, student.ID)
	require.Equal(t, user.ID, student.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateRollsBackOnProfileFailure(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teacher_profiles")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	user := &models.User{FullName: "Tina Teacher", Email: "tina@example.com", PasswordHash: "hash", Role: models.RoleTeacher}
	teacher := &models.TeacherProfile{Active: true}
	err := repo.CreateWithProfile(context.Background(), user, nil, teacher)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE email = $1")).
		WithArgs("taken@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "taken@example.com", "")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE email = $1 AND id <> $2")).
		WithArgs("mine@example.com", "user-1").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsByEmail(context.Background(), "mine@example.com", "user-1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindStudentProfileJoinsGroupAndProgram(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "registration_no", "group_id", "enrolled_at", "phone", "address", "created_at", "updated_at", "group_name", "program_id", "program_name"}).
		AddRow("sp-1", "user-1", "REG-001", "group-1", now, nil, nil, now, now, "G1", "program-1", "Computer Science")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN groups g ON g.id = sp.group_id")).
		WithArgs("user-1").
		WillReturnRows(rows)

	detail, err := repo.FindStudentProfileByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "REG-001", detail.RegistrationNo)
	require.NotNil(t, detail.ProgramName)
	require.Equal(t, "Computer Science", *detail.ProgramName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeleteUnknownUser(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
}
