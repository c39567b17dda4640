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

// Cache keys for org-structure read paths. Mutations flush the whole
// structure namespace rather than tracking individual keys.
const (
	cacheKeyPrograms      = "structure:programs"
	cacheKeyGroups        = "structure:groups"
	cacheKeyModules       = "structure:modules"
	cachePatternStructure = "structure:*"
	cacheKeyDashboard     = "dashboard:stats"
	cachePatternDashboard = "dashboard:*"
	defaultStructureTTL   = 5 * time.Minute
	defaultDashboardTTL   = 1 * time.Minute
)

type structureCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type programRepository interface {
	List(ctx context.Context) ([]models.Program, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
	CountGroups(ctx context.Context, programID string) (int, error)
	Delete(ctx context.Context, id string) error
}

// ProgramRequest carries the mutable fields of a program.
type ProgramRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=150"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// ProgramService manages academic programs.
type ProgramService struct {
	repo      programRepository
	cache     structureCache
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewProgramService constructs a ProgramService instance.
func NewProgramService(repo programRepository, cache structureCache, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *ProgramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultStructureTTL
	}
	return &ProgramService{repo: repo, cache: cache, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// List returns every program, served from cache when warm.
func (s *ProgramService) List(ctx context.Context) ([]models.Program, error) {
	if s.cache != nil {
		var cached []models.Program
		if err := s.cache.Get(ctx, cacheKeyPrograms, &cached); err == nil {
			return cached, nil
		}
	}

	programs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyPrograms, programs, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache programs", zap.Error(err))
		}
	}
	return programs, nil
}

// Get fetches a single program.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch program")
	}
	return program, nil
}

// Create adds a program. Program names are unique across the platform.
func (s *ProgramService) Create(ctx context.Context, req ProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}

	taken, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check program name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrValidation, "program name is already in use")
	}

	program := &models.Program{Name: req.Name, Description: req.Description}
	if err := s.repo.Create(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}

	s.invalidate(ctx)
	s.logger.Info("program created", zap.String("program_id", program.ID))
	return program, nil
}

// Update modifies a program.
func (s *ProgramService) Update(ctx context.Context, id string, req ProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}

	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != program.Name {
		taken, err := s.repo.ExistsByName(ctx, req.Name, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check program name")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrValidation, "program name is already in use")
		}
	}

	program.Name = req.Name
	program.Description = req.Description
	if err := s.repo.Update(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}

	s.invalidate(ctx)
	return program, nil
}

// Delete removes a program. A program that still owns groups cannot be
// deleted; the groups must be moved or removed first.
func (s *ProgramService) Delete(ctx context.Context, id string) error {
	count, err := s.repo.CountGroups(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count program groups")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "program still has groups attached")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete program")
	}

	s.invalidate(ctx)
	s.logger.Info("program deleted", zap.String("program_id", id))
	return nil
}

func (s *ProgramService) invalidate(ctx context.Context) {
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
