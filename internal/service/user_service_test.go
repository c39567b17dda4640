package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/courshub/courshub-api/internal/models"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

type stubUserRepo struct {
	users       map[string]*models.User
	students    map[string]*models.StudentProfileDetail
	teachers    map[string]*models.TeacherProfile
	emails      map[string]bool
	regNos      map[string]bool
	createdUser *models.User
	deleted     []string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:    make(map[string]*models.User),
		students: make(map[string]*models.StudentProfileDetail),
		teachers: make(map[string]*models.TeacherProfile),
		emails:   make(map[string]bool),
		regNos:   make(map[string]bool),
	}
}

func (s *stubUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *stubUserRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return s.emails[email], nil
}

func (s *stubUserRepo) ExistsByRegistrationNo(ctx context.Context, registrationNo string) (bool, error) {
	return s.regNos[registrationNo], nil
}

func (s *stubUserRepo) CreateWithProfile(ctx context.Context, user *models.User, student *models.StudentProfile, teacher *models.TeacherProfile) error {
	if user.ID == "" {
		user.ID = "new-user"
	}
	s.users[user.ID] = user
	s.createdUser = user
	if student != nil {
		s.students[user.ID] = &models.StudentProfileDetail{StudentProfile: *student}
	}
	if teacher != nil {
		s.teachers[user.ID] = teacher
	}
	return nil
}

func (s *stubUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var all []models.User
	for _, u := range s.users {
		all = append(all, *u)
	}
	return all, len(all), nil
}

func (s *stubUserRepo) FindStudentProfileByUserID(ctx context.Context, userID string) (*models.StudentProfileDetail, error) {
	detail, ok := s.students[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return detail, nil
}

func (s *stubUserRepo) FindTeacherProfileByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	profile, ok := s.teachers[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return profile, nil
}

func (s *stubUserRepo) UpdateIdentity(ctx context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *stubUserRepo) UpdateStudentProfile(ctx context.Context, profile *models.StudentProfile) error {
	for id, detail := range s.students {
		if detail.ID == profile.ID {
			s.students[id] = &models.StudentProfileDetail{StudentProfile: *profile}
		}
	}
	return nil
}

func (s *stubUserRepo) UpdateTeacherProfile(ctx context.Context, profile *models.TeacherProfile) error {
	return nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.users, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func newUserService(repo *stubUserRepo, groups *stubGroupLookup) *UserService {
	return NewUserService(repo, groups, validator.New(), zap.NewNop())
}

func studentCreateRequest() CreateUserRequest {
	return CreateUserRequest{
		FullName:       "Sam Student",
		Email:          "sam@example.com",
		Password:       "supersecret",
		Role:           models.RoleStudent,
		RegistrationNo: "REG-001",
		GroupID:        "11111111-1111-1111-1111-111111111111",
	}
}

func TestUserCreateStudentWithProfile(t *testing.T) {
	repo := newStubUserRepo()
	groups := &stubGroupLookup{known: map[string]bool{"11111111-1111-1111-1111-111111111111": true}}
	svc := newUserService(repo, groups)

	detail, err := svc.Create(context.Background(), studentCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, models.RoleStudent, detail.Role)
	require.NotNil(t, detail.StudentProfile)
	assert.Equal(t, "REG-001", detail.StudentProfile.RegistrationNo)

	err = bcrypt.CompareHashAndPassword([]byte(repo.createdUser.PasswordHash), []byte("supersecret"))
	assert.NoError(t, err)
}

func TestUserCreateStudentRequiresRegistrationAndGroup(t *testing.T) {
	repo := newStubUserRepo()
	groups := &stubGroupLookup{known: map[string]bool{}}
	svc := newUserService(repo, groups)

	noReg := studentCreateRequest()
	noReg.RegistrationNo = ""
	_, err := svc.Create(context.Background(), noReg)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	noGroup := studentCreateRequest()
	noGroup.GroupID = ""
	_, err = svc.Create(context.Background(), noGroup)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	unknownGroup := studentCreateRequest()
	_, err = svc.Create(context.Background(), unknownGroup)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestUserCreateRejectsDuplicates(t *testing.T) {
	repo := newStubUserRepo()
	repo.emails["sam@example.com"] = true
	groups := &stubGroupLookup{known: map[string]bool{"11111111-1111-1111-1111-111111111111": true}}
	svc := newUserService(repo, groups)

	_, err := svc.Create(context.Background(), studentCreateRequest())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	repo.emails["sam@example.com"] = false
	repo.regNos["REG-001"] = true
	_, err = svc.Create(context.Background(), studentCreateRequest())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestUserCreateTeacherDefaultsActive(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo, &stubGroupLookup{})

	detail, err := svc.Create(context.Background(), CreateUserRequest{
		FullName: "Tina Teacher",
		Email:    "tina@example.com",
		Password: "supersecret",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	require.NotNil(t, detail.TeacherProfile)
	assert.True(t, detail.TeacherProfile.Active)
}

func TestUserDeleteRefusesSelf(t *testing.T) {
	repo := newStubUserRepo()
	repo.users["a1"] = &models.User{ID: "a1", Role: models.RoleAdmin}
	svc := newUserService(repo, &stubGroupLookup{})

	err := svc.Delete(context.Background(), models.Principal{UserID: "a1", Role: models.RoleAdmin}, "a1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	repo.users["u2"] = &models.User{ID: "u2", Role: models.RoleStudent}
	require.NoError(t, svc.Delete(context.Background(), models.Principal{UserID: "a1"}, "u2"))
	assert.Equal(t, []string{"u2"}, repo.deleted)
}
