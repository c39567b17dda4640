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

type moduleRepository interface {
	List(ctx context.Context) ([]models.Module, error)
	FindByID(ctx context.Context, id string) (*models.Module, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, module *models.Module) error
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id string) error
}

// ModuleRequest carries the mutable fields of a module.
type ModuleRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=150"`
	Code    string `json:"code" validate:"required,min=2,max=20"`
	Credits int    `json:"credits" validate:"required,min=1,max=60"`
}

// ModuleService manages course subjects.
type ModuleService struct {
	repo      moduleRepository
	cache     structureCache
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewModuleService constructs a ModuleService instance.
func NewModuleService(repo moduleRepository, cache structureCache, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *ModuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultStructureTTL
	}
	return &ModuleService{repo: repo, cache: cache, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// List returns every module ordered by code.
func (s *ModuleService) List(ctx context.Context) ([]models.Module, error) {
	if s.cache != nil {
		var cached []models.Module
		if err := s.cache.Get(ctx, cacheKeyModules, &cached); err == nil {
			return cached, nil
		}
	}

	modules, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyModules, modules, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache modules", zap.Error(err))
		}
	}
	return modules, nil
}

// Get fetches a single module.
func (s *ModuleService) Get(ctx context.Context, id string) (*models.Module, error) {
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch module")
	}
	return module, nil
}

// Create adds a module. Module codes are unique across the platform.
func (s *ModuleService) Create(ctx context.Context, req ModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}

	taken, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check module code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrValidation, "module code is already in use")
	}

	module := &models.Module{Name: req.Name, Code: req.Code, Credits: req.Credits}
	if err := s.repo.Create(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}

	s.invalidate(ctx)
	s.logger.Info("module created", zap.String("module_id", module.ID), zap.String("code", module.Code))
	return module, nil
}

// Update modifies a module.
func (s *ModuleService) Update(ctx context.Context, id string, req ModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}

	module, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != module.Code {
		taken, err := s.repo.ExistsByCode(ctx, req.Code, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check module code")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrValidation, "module code is already in use")
		}
	}

	module.Name = req.Name
	module.Code = req.Code
	module.Credits = req.Credits
	if err := s.repo.Update(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update module")
	}

	s.invalidate(ctx)
	return module, nil
}

// Delete removes a module. Curriculum and teaching pivot rows go with it.
func (s *ModuleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete module")
	}

	s.invalidate(ctx)
	s.logger.Info("module deleted", zap.String("module_id", id))
	return nil
}

func (s *ModuleService) invalidate(ctx context.Context) {
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
