package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/courshub/courshub-api/internal/models"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	ExistsByRegistrationNo(ctx context.Context, registrationNo string) (bool, error)
	CreateWithProfile(ctx context.Context, user *models.User, student *models.StudentProfile, teacher *models.TeacherProfile) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindStudentProfileByUserID(ctx context.Context, userID string) (*models.StudentProfileDetail, error)
	FindTeacherProfileByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error)
	UpdateIdentity(ctx context.Context, user *models.User) error
	UpdateStudentProfile(ctx context.Context, profile *models.StudentProfile) error
	UpdateTeacherProfile(ctx context.Context, profile *models.TeacherProfile) error
	Delete(ctx context.Context, id string) error
}

type userGroupRepository interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

// CreateUserRequest provisions a login identity together with the profile the
// role demands.
type CreateUserRequest struct {
	FullName string          `json:"full_name" validate:"required,min=2,max=150"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	Role     models.UserRole `json:"role" validate:"required,oneof=ADMIN TEACHER STUDENT"`

	// Student fields, required when Role is STUDENT.
	RegistrationNo string `json:"registration_no,omitempty" validate:"omitempty,min=3,max=50"`
	GroupID        string `json:"group_id,omitempty" validate:"omitempty,uuid"`

	// Teacher fields, optional when Role is TEACHER.
	Specialty *string    `json:"specialty,omitempty"`
	HiredAt   *time.Time `json:"hired_at,omitempty"`

	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// UpdateUserRequest modifies identity and profile fields. The role itself is
// immutable after provisioning.
type UpdateUserRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=150"`
	Email    string `json:"email" validate:"required,email"`

	GroupID   *string `json:"group_id,omitempty" validate:"omitempty,uuid"`
	Specialty *string `json:"specialty,omitempty"`
	Active    *bool   `json:"active,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
}

// UserService handles admin-side account provisioning and management.
type UserService struct {
	repo      userRepository
	groups    userGroupRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, groups userGroupRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, groups: groups, validator: validate, logger: logger}
}

// Create provisions a user. Students must bring a unique registration number
// and an existing group; the identity and profile rows land atomically.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.UserDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	taken, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email is already in use")
	}

	var student *models.StudentProfile
	var teacher *models.TeacherProfile

	switch req.Role {
	case models.RoleStudent:
		if req.RegistrationNo == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "registration_no is required for students")
		}
		if req.GroupID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "group_id is required for students")
		}
		regTaken, err := s.repo.ExistsByRegistrationNo(ctx, req.RegistrationNo)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration number")
		}
		if regTaken {
			return nil, appErrors.Clone(appErrors.ErrValidation, "registration number is already in use")
		}
		if _, err := s.groups.FindByID(ctx, req.GroupID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "group does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group")
		}
		student = &models.StudentProfile{
			RegistrationNo: req.RegistrationNo,
			GroupID:        req.GroupID,
			EnrolledAt:     time.Now().UTC(),
			Phone:          req.Phone,
			Address:        req.Address,
		}
	case models.RoleTeacher:
		teacher = &models.TeacherProfile{
			Specialty: req.Specialty,
			HiredAt:   req.HiredAt,
			Active:    true,
			Phone:     req.Phone,
			Address:   req.Address,
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}

	if err := s.repo.CreateWithProfile(ctx, user, student, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user provisioned",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return s.Get(ctx, user.ID)
}

// List returns users matching the filter with pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get loads a user together with its role profile.
func (s *UserService) Get(ctx context.Context, id string) (*models.UserDetail, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	detail := &models.UserDetail{User: *user}

	switch user.Role {
	case models.RoleStudent:
		profile, err := s.repo.FindStudentProfileByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student profile")
		}
		detail.StudentProfile = profile
	case models.RoleTeacher:
		profile, err := s.repo.FindTeacherProfileByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teacher profile")
		}
		detail.TeacherProfile = profile
	}

	return detail, nil
}

// Update modifies a user's identity and mutable profile fields.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*models.UserDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if req.Email != user.Email {
		taken, err := s.repo.ExistsByEmail(ctx, req.Email, user.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrValidation, "email is already in use")
		}
	}

	user.FullName = req.FullName
	user.Email = req.Email
	if err := s.repo.UpdateIdentity(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	switch user.Role {
	case models.RoleStudent:
		detail, err := s.repo.FindStudentProfileByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				break
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student profile")
		}
		profile := detail.StudentProfile
		if req.GroupID != nil {
			if _, err := s.groups.FindByID(ctx, *req.GroupID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, appErrors.Clone(appErrors.ErrValidation, "group does not exist")
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group")
			}
			profile.GroupID = *req.GroupID
		}
		if req.Phone != nil {
			profile.Phone = req.Phone
		}
		if req.Address != nil {
			profile.Address = req.Address
		}
		if err := s.repo.UpdateStudentProfile(ctx, &profile); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student profile")
		}
	case models.RoleTeacher:
		profile, err := s.repo.FindTeacherProfileByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				break
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teacher profile")
		}
		if req.Specialty != nil {
			profile.Specialty = req.Specialty
		}
		if req.Active != nil {
			profile.Active = *req.Active
		}
		if req.Phone != nil {
			profile.Phone = req.Phone
		}
		if req.Address != nil {
			profile.Address = req.Address
		}
		if err := s.repo.UpdateTeacherProfile(ctx, profile); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher profile")
		}
	}

	return s.Get(ctx, id)
}

// Delete removes a user account. Admins cannot delete themselves, which also
// keeps the platform from ever losing its last administrator by accident.
func (s *UserService) Delete(ctx context.Context, principal models.Principal, id string) error {
	if principal.UserID == id {
		return appErrors.Clone(appErrors.ErrConflict, "cannot delete your own account")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}

	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}
