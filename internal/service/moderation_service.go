package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/courshub/courshub-api/internal/models"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

type moderationCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Validate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]models.Course, error)
	ListPending(ctx context.Context) ([]models.Course, error)
	GroupsForCourse(ctx context.Context, courseID string) ([]models.CourseGroup, error)
}

type moderationFileStore interface {
	Delete(key string) error
}

// ModerationService covers the admin moderation queue: reviewing uploads,
// validating them for student access, and rejecting them outright.
type ModerationService struct {
	courses moderationCourseRepository
	store   moderationFileStore
	logger  *zap.Logger
}

// NewModerationService constructs a ModerationService instance.
func NewModerationService(courses moderationCourseRepository, store moderationFileStore, logger *zap.Logger) *ModerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{courses: courses, store: store, logger: logger}
}

// Pending returns the uploads waiting for review, newest first.
func (s *ModerationService) Pending(ctx context.Context) ([]models.CourseDetail, error) {
	courses, err := s.courses.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending courses")
	}
	return s.hydrate(ctx, courses)
}

// All returns the complete catalogue regardless of lifecycle state.
func (s *ModerationService) All(ctx context.Context) ([]models.CourseDetail, error) {
	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return s.hydrate(ctx, courses)
}

// Validate approves an upload, making it eligible for student access. The
// published flag is re-asserted in the same statement, and validating an
// already validated course succeeds without changing anything.
func (s *ModerationService) Validate(ctx context.Context, id string) (*models.Course, error) {
	if err := s.courses.Validate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate course")
	}

	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	s.logger.Info("course validated", zap.String("course_id", id))
	return course, nil
}

// Reject removes a rejected upload entirely: the row, its distribution and
// its stored file. There is no rejected state to appeal; the teacher uploads
// again after fixing the material.
func (s *ModerationService) Reject(ctx context.Context, id string) error {
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
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject course")
	}

	if err := s.store.Delete(course.StorageKey); err != nil {
		s.logger.Warn("failed to delete rejected file", zap.String("course_id", id), zap.Error(err))
	}

	s.logger.Info("course rejected", zap.String("course_id", id))
	return nil
}

func (s *ModerationService) hydrate(ctx context.Context, courses []models.Course) ([]models.CourseDetail, error) {
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
