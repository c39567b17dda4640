package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/courshub/courshub-api/internal/models"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

type groupRepository interface {
	List(ctx context.Context) ([]models.GroupDetail, error)
	FindByID(ctx context.Context, id string) (*models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	CountStudents(ctx context.Context, groupID string) (int, error)
	Delete(ctx context.Context, id string) error
}

type groupProgramRepository interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

// GroupRequest carries the mutable fields of a group.
type GroupRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	AcademicYear string `json:"academic_year" validate:"required,min=4,max=20"`
	MaxCapacity  int    `json:"max_capacity" validate:"required,min=1,max=500"`
	ProgramID    string `json:"program_id" validate:"required,uuid"`
}

// GroupService manages student groups.
type GroupService struct {
	repo      groupRepository
	programs  groupProgramRepository
	cache     structureCache
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewGroupService constructs a GroupService instance.
func NewGroupService(repo groupRepository, programs groupProgramRepository, cache structureCache, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultStructureTTL
	}
	return &GroupService{repo: repo, programs: programs, cache: cache, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// List returns every group with its program name.
func (s *GroupService) List(ctx context.Context) ([]models.GroupDetail, error) {
	if s.cache != nil {
		var cached []models.GroupDetail
		if err := s.cache.Get(ctx, cacheKeyGroups, &cached); err == nil {
			return cached, nil
		}
	}

	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyGroups, groups, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache groups", zap.Error(err))
		}
	}
	return groups, nil
}

// Get fetches a single group.
func (s *GroupService) Get(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch group")
	}
	return group, nil
}

// Create adds a group under an existing program.
func (s *GroupService) Create(ctx context.Context, req GroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}

	if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "program does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check program")
	}

	group := &models.Group{
		Name:         req.Name,
		AcademicYear: req.AcademicYear,
		MaxCapacity:  req.MaxCapacity,
		ProgramID:    req.ProgramID,
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}

	s.invalidate(ctx)
	s.logger.Info("group created", zap.String("group_id", group.ID), zap.String("program_id", group.ProgramID))
	return group, nil
}

// Update modifies a group, including moving it to another program.
func (s *GroupService) Update(ctx context.Context, id string, req GroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}

	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ProgramID != group.ProgramID {
		if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "program does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check program")
		}
	}

	group.Name = req.Name
	group.AcademicYear = req.AcademicYear
	group.MaxCapacity = req.MaxCapacity
	group.ProgramID = req.ProgramID
	if err := s.repo.Update(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update group")
	}

	s.invalidate(ctx)
	return group, nil
}

// Delete removes a group. Groups with enrolled students cannot be deleted;
// the students must be reassigned first.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	count, err := s.repo.CountStudents(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count group students")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "group still has students enrolled")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete group")
	}

	s.invalidate(ctx)
	s.logger.Info("group deleted", zap.String("group_id", id))
	return nil
}

func (s *GroupService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, cachePatternStructure); err != nil {
		s.logger.Warn("failed to invalidate structure cache", zap.Error(err))
	}
	if err := s.cache.DeleteByPattern(ctx, cachePatternDashboard); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
