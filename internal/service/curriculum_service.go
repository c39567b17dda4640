package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/courshub/courshub-api/internal/models"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

type curriculumRepository interface {
	UpsertProgramModule(ctx context.Context, pivot models.ProgramModule) error
	DetachProgramModule(ctx context.Context, programID, moduleID string) error
	ListByProgram(ctx context.Context, programID string) ([]models.ProgramModuleDetail, error)
	UpsertTeachingAssignment(ctx context.Context, pivot models.TeachingAssignment) error
	DetachTeachingAssignment(ctx context.Context, teacherID, moduleID string) error
	ListAssignmentsByModule(ctx context.Context, moduleID string) ([]models.TeachingAssignment, error)
}

type curriculumProgramRepository interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

type curriculumModuleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Module, error)
}

type curriculumUserRepository interface {
	FindTeacherProfileByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error)
}

// AttachModuleRequest attaches a module to a program's curriculum. Re-attaching
// an existing pair updates the semester and coefficient in place.
type AttachModuleRequest struct {
	ModuleID    string `json:"module_id" validate:"required,uuid"`
	Semester    int    `json:"semester" validate:"required,min=1,max=6"`
	Coefficient int    `json:"coefficient" validate:"required,min=1"`
}

// AssignTeacherRequest links a teacher to a module for an academic year.
type AssignTeacherRequest struct {
	TeacherUserID string `json:"teacher_user_id" validate:"required,uuid"`
	AcademicYear  string `json:"academic_year" validate:"required,min=4,max=20"`
	Coordinator   bool   `json:"coordinator"`
}

// CurriculumService manages the program↔module and teacher↔module pivots.
type CurriculumService struct {
	repo      curriculumRepository
	programs  curriculumProgramRepository
	modules   curriculumModuleRepository
	users     curriculumUserRepository
	cache     structureCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCurriculumService constructs a CurriculumService instance.
func NewCurriculumService(repo curriculumRepository, programs curriculumProgramRepository, modules curriculumModuleRepository, users curriculumUserRepository, cache structureCache, validate *validator.Validate, logger *zap.Logger) *CurriculumService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CurriculumService{repo: repo, programs: programs, modules: modules, users: users, cache: cache, validator: validate, logger: logger}
}

// AttachModule adds a module to a program's curriculum, or updates the pivot
// attributes if the pair already exists. Other attached modules are untouched.
func (s *CurriculumService) AttachModule(ctx context.Context, programID string, req AttachModuleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid curriculum payload")
	}

	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check program")
	}
	if _, err := s.modules.FindByID(ctx, req.ModuleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "module does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check module")
	}

	pivot := models.ProgramModule{
		ProgramID:   programID,
		ModuleID:    req.ModuleID,
		Semester:    req.Semester,
		Coefficient: req.Coefficient,
	}
	if err := s.repo.UpsertProgramModule(ctx, pivot); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach module")
	}

	s.invalidate(ctx)
	s.logger.Info("module attached to program",
		zap.String("program_id", programID),
		zap.String("module_id", req.ModuleID),
		zap.Int("semester", req.Semester))
	return nil
}

// DetachModule removes a module from a program's curriculum. Detaching an
// absent pair succeeds quietly.
func (s *CurriculumService) DetachModule(ctx context.Context, programID, moduleID string) error {
	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check program")
	}

	if err := s.repo.DetachProgramModule(ctx, programID, moduleID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to detach module")
	}

	s.invalidate(ctx)
	return nil
}

// ListCurriculum returns the modules attached to a program with pivot data.
func (s *CurriculumService) ListCurriculum(ctx context.Context, programID string) ([]models.ProgramModuleDetail, error) {
	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check program")
	}

	rows, err := s.repo.ListByProgram(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list curriculum")
	}
	return rows, nil
}

// AssignTeacher links a teacher to a module. Re-assigning an existing pair
// updates the academic year and coordinator flag.
func (s *CurriculumService) AssignTeacher(ctx context.Context, moduleID string, req AssignTeacherRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.modules.FindByID(ctx, moduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check module")
	}

	profile, err := s.users.FindTeacherProfileByUserID(ctx, req.TeacherUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "user is not a teacher")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher")
	}

	pivot := models.TeachingAssignment{
		TeacherID:    profile.ID,
		ModuleID:     moduleID,
		AcademicYear: req.AcademicYear,
		Coordinator:  req.Coordinator,
	}
	if err := s.repo.UpsertTeachingAssignment(ctx, pivot); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign teacher")
	}

	s.logger.Info("teacher assigned to module",
		zap.String("teacher_id", profile.ID),
		zap.String("module_id", moduleID))
	return nil
}

// UnassignTeacher removes the teacher↔module link; absent pairs succeed.
func (s *CurriculumService) UnassignTeacher(ctx context.Context, moduleID, teacherUserID string) error {
	profile, err := s.users.FindTeacherProfileByUserID(ctx, teacherUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "user is not a teacher")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher")
	}

	if err := s.repo.DetachTeachingAssignment(ctx, profile.ID, moduleID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign teacher")
	}
	return nil
}

// ListAssignments returns the teacher assignments on a module.
func (s *CurriculumService) ListAssignments(ctx context.Context, moduleID string) ([]models.TeachingAssignment, error) {
	if _, err := s.modules.FindByID(ctx, moduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check module")
	}

	rows, err := s.repo.ListAssignmentsByModule(ctx, moduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return rows, nil
}

func (s *CurriculumService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, cachePatternStructure); err != nil {
		s.logger.Warn("failed to invalidate structure cache", zap.Error(err))
	}
}
