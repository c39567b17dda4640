package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/courshub/courshub-api/internal/models"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

const courseUploadFolder = "courses"

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]models.Course, error)
	GroupsForCourse(ctx context.Context, courseID string) ([]models.CourseGroup, error)
}

type distributionRepository interface {
	Replace(ctx context.Context, courseID string, groupIDs []string) error
	Find(ctx context.Context, courseID, groupID string) (*models.Distribution, error)
	UpdateWindow(ctx context.Context, dist models.Distribution) error
}

type courseGroupRepository interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

type courseModuleRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Module, error)
}

type fileStore interface {
	Save(folder string, filename string, r io.Reader) (string, error)
	Exists(key string) bool
	Open(key string) (*os.File, error)
	Delete(key string) error
}

// UploadPolicy limits what teachers may upload.
type UploadPolicy struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// Allows reports whether a file of the given size and content type is
// acceptable. An empty MIME allowlist accepts anything.
func (p UploadPolicy) Allows(size int64, contentType string) error {
	if p.MaxFileSizeBytes > 0 && size > p.MaxFileSizeBytes {
		return appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum allowed size")
	}
	if len(p.AllowedMIMEs) == 0 {
		return nil
	}
	base := contentType
	if idx := strings.Index(base, ";"); idx >= 0 {
		base = base[:idx]
	}
	base = strings.TrimSpace(strings.ToLower(base))
	for _, allowed := range p.AllowedMIMEs {
		if base == strings.ToLower(allowed) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "file type is not allowed")
}

// CreateCourseRequest carries the metadata and file stream of an upload.
type CreateCourseRequest struct {
	Title       string              `validate:"required,min=2,max=200"`
	Description *string             `validate:"omitempty,max=2000"`
	Kind        models.DocumentKind `validate:"required"`
	GroupIDs    []string            `validate:"required,min=1,dive,uuid"`

	Filename    string `validate:"required"`
	ContentType string
	Size        int64
	File        io.Reader `validate:"required"`
}

// UpdateCourseRequest modifies course metadata. The lifecycle flags are not
// touched; an already validated course stays validated after an edit.
type UpdateCourseRequest struct {
	Title       string              `validate:"required,min=2,max=200"`
	Description *string             `validate:"omitempty,max=2000"`
	Kind        models.DocumentKind `validate:"required"`
}

// DistributionRequest replaces the full set of groups a course is shared with.
type DistributionRequest struct {
	GroupIDs []string `json:"group_ids" validate:"required,min=1,dive,uuid"`
}

// CourseService covers the teacher-facing side of course material: uploads,
// edits, distribution to groups and availability windows.
type CourseService struct {
	courses       courseRepository
	distributions distributionRepository
	groups        courseGroupRepository
	modules       courseModuleRepository
	store         fileStore
	policy        UploadPolicy
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courses courseRepository, distributions distributionRepository, groups courseGroupRepository, modules courseModuleRepository, store fileStore, policy UploadPolicy, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{
		courses:       courses,
		distributions: distributions,
		groups:        groups,
		modules:       modules,
		store:         store,
		policy:        policy,
		validator:     validate,
		logger:        logger,
	}
}

// Create stores the uploaded file and inserts the course. A fresh upload is
// immediately published (submitted for moderation) but not validated, so it
// stays invisible to students until an admin approves it. The initial group
// distribution lands in the same call.
func (s *CourseService) Create(ctx context.Context, principal models.Principal, req CreateCourseRequest) (*models.CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if !models.ValidKind(req.Kind) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown document kind")
	}
	if err := s.policy.Allows(req.Size, req.ContentType); err != nil {
		return nil, err
	}
	if err := s.checkGroups(ctx, req.GroupIDs); err != nil {
		return nil, err
	}

	key, err := s.store.Save(courseUploadFolder, req.Filename, req.File)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		StorageKey:  key,
		Kind:        req.Kind,
		Published:   true,
		Validated:   false,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		if delErr := s.store.Delete(key); delErr != nil {
			s.logger.Warn("failed to clean up orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	if err := s.distributions.Replace(ctx, course.ID, req.GroupIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to distribute course")
	}

	s.logger.Info("course uploaded",
		zap.String("course_id", course.ID),
		zap.String("uploader_id", principal.UserID),
		zap.String("kind", string(course.Kind)),
		zap.Int("groups", len(req.GroupIDs)))

	return s.Get(ctx, course.ID)
}

// Get returns a course with the groups it is distributed to.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	groups, err := s.courses.GroupsForCourse(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course groups")
	}
	if groups == nil {
		groups = []models.CourseGroup{}
	}

	return &models.CourseDetail{Course: *course, Groups: groups}, nil
}

// List returns every course with its distribution, newest first. Teachers
// share one catalogue; uploads are not scoped to their author.
func (s *CourseService) List(ctx context.Context) ([]models.CourseDetail, error) {
	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return s.hydrateGroups(ctx, courses)
}

// Update edits course metadata. Validation status survives the edit.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if !models.ValidKind(req.Kind) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown document kind")
	}

	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Kind = req.Kind
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	return s.Get(ctx, id)
}

// Delete removes a course row and then its stored file. A failed file removal
// is logged but does not undo the database delete.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	if err := s.store.Delete(course.StorageKey); err != nil {
		s.logger.Warn("failed to delete stored file", zap.String("course_id", id), zap.Error(err))
	}

	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

// SetDistribution replaces the full set of groups a course is shared with.
// Groups missing from the new set lose access, windows included.
func (s *CourseService) SetDistribution(ctx context.Context, id string, req DistributionRequest) (*models.CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid distribution payload")
	}
	if err := s.checkGroups(ctx, req.GroupIDs); err != nil {
		return nil, err
	}

	if _, err := s.courses.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	if err := s.distributions.Replace(ctx, id, req.GroupIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to distribute course")
	}

	s.logger.Info("course distribution replaced",
		zap.String("course_id", id),
		zap.Int("groups", len(req.GroupIDs)))

	return s.Get(ctx, id)
}

// SetWindow sets or clears the availability window of one course/group pair.
func (s *CourseService) SetWindow(ctx context.Context, dist models.Distribution) error {
	if dist.OpenAt != nil && dist.CloseAt != nil && !dist.OpenAt.Before(*dist.CloseAt) {
		return appErrors.Clone(appErrors.ErrValidation, "open_at must be before close_at")
	}

	if _, err := s.distributions.Find(ctx, dist.CourseID, dist.GroupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course is not distributed to this group")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch distribution")
	}

	if err := s.distributions.UpdateWindow(ctx, dist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course is not distributed to this group")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update window")
	}

	return nil
}

// MyModules returns the modules the teacher principal is assigned to.
func (s *CourseService) MyModules(ctx context.Context, principal models.Principal) ([]models.Module, error) {
	if principal.Teacher == nil {
		return []models.Module{}, nil
	}
	modules, err := s.modules.ListByTeacher(ctx, principal.Teacher.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher modules")
	}
	if modules == nil {
		modules = []models.Module{}
	}
	return modules, nil
}

func (s *CourseService) checkGroups(ctx context.Context, groupIDs []string) error {
	for _, id := range groupIDs {
		if _, err := s.groups.FindByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, "group does not exist: "+id)
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group")
		}
	}
	return nil
}

func (s *CourseService) hydrateGroups(ctx context.Context, courses []models.Course) ([]models.CourseDetail, error) {
	details := make([]models.CourseDetail, 0, len(courses))
	for _, course := range courses {
		groups, err := s.courses.GroupsForCourse(ctx, course.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course groups")
		}
		if groups == nil {
			groups = []models.CourseGroup{}
		}
		details = append(details, models.CourseDetail{Course: course, Groups: groups})
	}
	return details, nil
}
