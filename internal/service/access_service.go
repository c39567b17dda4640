package service

import (
	"context"
	"database/sql"
	"errors"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/courshub/courshub-api/internal/models"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

// notificationHorizon bounds how far back "new course" notifications reach.
const notificationHorizon = 7 * 24 * time.Hour

type accessCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListForGroup(ctx context.Context, groupID string) ([]models.CourseWithWindow, error)
	GroupsForCourse(ctx context.Context, courseID string) ([]models.CourseGroup, error)
}

type accessDistributionRepository interface {
	Find(ctx context.Context, courseID, groupID string) (*models.Distribution, error)
}

type accessUserRepository interface {
	FindStudentProfileByUserID(ctx context.Context, userID string) (*models.StudentProfileDetail, error)
}

type accessFileStore interface {
	Exists(key string) bool
	Open(key string) (*os.File, error)
}

// Download is a resolved file stream ready to be served.
type Download struct {
	File        *os.File
	Filename    string
	ContentType string
	Size        int64
	Kind        models.DocumentKind
}

// Notification tells a student about recently available material.
type Notification struct {
	CourseID  string              `json:"course_id"`
	Title     string              `json:"title"`
	Kind      models.DocumentKind `json:"kind"`
	CreatedAt time.Time           `json:"created_at"`
}

// SearchFilter narrows the visible catalogue for a student.
type SearchFilter struct {
	Query string
	Kind  *models.DocumentKind
}

// AccessService is the visibility engine: one predicate decides what a
// student may see, and both the listing and the download path run through it
// so they can never disagree.
type AccessService struct {
	courses       accessCourseRepository
	distributions accessDistributionRepository
	users         accessUserRepository
	store         accessFileStore
	logger        *zap.Logger
	now           func() time.Time
}

// NewAccessService constructs an AccessService instance.
func NewAccessService(courses accessCourseRepository, distributions accessDistributionRepository, users accessUserRepository, store accessFileStore, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{
		courses:       courses,
		distributions: distributions,
		users:         users,
		store:         store,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate decides whether a student principal may access a distributed
// course right now. It returns nil to grant access, or the specific denial.
// The checks run in a fixed order so a course failing several conditions
// always reports the same reason:
//
//  1. the principal must be a student with a group,
//  2. the course must be published,
//  3. the course must be validated,
//  4. the group's window must have opened,
//  5. the group's window must not have closed.
//
// Distribution itself is checked by the callers: Evaluate only ever sees
// courses already joined with a distribution row for the student's group.
func Evaluate(principal models.Principal, course models.Course, openAt, closeAt *time.Time, now time.Time) error {
	if !principal.IsStudent() || principal.GroupID() == "" {
		return appErrors.ErrProfileIncomplete
	}
	if !course.Published {
		return appErrors.ErrNotPublished
	}
	if !course.Validated {
		return appErrors.ErrNotValidated
	}
	if openAt != nil && now.Before(*openAt) {
		return appErrors.ErrWindowNotOpen
	}
	if closeAt != nil && now.After(*closeAt) {
		return appErrors.ErrWindowClosed
	}
	return nil
}

// ListVisible returns the courses the student may access right now, newest
// first. Rows failing any visibility condition are silently dropped from the
// listing rather than surfaced as denials. Surviving rows are projected to the
// catalogue shape with their full distribution embedded.
func (s *AccessService) ListVisible(ctx context.Context, principal models.Principal) ([]models.CourseListing, error) {
	if !principal.IsStudent() || principal.GroupID() == "" {
		return nil, appErrors.Clone(appErrors.ErrProfileIncomplete, "")
	}

	rows, err := s.courses.ListForGroup(ctx, principal.GroupID())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group courses")
	}

	now := s.now()
	visible := make([]models.CourseListing, 0, len(rows))
	for _, row := range rows {
		if Evaluate(principal, row.Course, row.OpenAt, row.CloseAt, now) != nil {
			continue
		}
		groups, err := s.courses.GroupsForCourse(ctx, row.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course groups")
		}
		if groups == nil {
			groups = []models.CourseGroup{}
		}
		visible = append(visible, models.CourseListing{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			Kind:        row.Kind,
			CreatedAt:   row.CreatedAt,
			Groups:      groups,
		})
	}
	return visible, nil
}

// ResolveDownload re-runs the full visibility check for one course and opens
// the underlying file. A course row whose file is gone from storage reports
// STORAGE_INCONSISTENT, never a permission denial.
func (s *AccessService) ResolveDownload(ctx context.Context, principal models.Principal, courseID string) (*Download, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	if principal.Role == models.RoleStudent {
		// The lifecycle flags come before the distribution lookup so the
		// denial reason follows the same order the listing predicate uses:
		// profile, published, validated, distributed, window.
		if principal.GroupID() == "" {
			return nil, appErrors.Clone(appErrors.ErrProfileIncomplete, "")
		}
		if !course.Published {
			return nil, appErrors.ErrNotPublished
		}
		if !course.Validated {
			return nil, appErrors.ErrNotValidated
		}

		dist, err := s.distributions.Find(ctx, courseID, principal.GroupID())
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotDistributed, "")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch distribution")
		}

		if err := Evaluate(principal, *course, dist.OpenAt, dist.CloseAt, s.now()); err != nil {
			return nil, err
		}
	}

	if !s.store.Exists(course.StorageKey) {
		s.logger.Error("course file missing from storage",
			zap.String("course_id", course.ID),
			zap.String("storage_key", course.StorageKey))
		return nil, appErrors.Clone(appErrors.ErrStorageInconsistent, "")
	}

	file, err := s.store.Open(course.StorageKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageInconsistent.Code, appErrors.ErrStorageInconsistent.Status, "failed to open stored file")
	}

	size := int64(0)
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	return &Download{
		File:        file,
		Filename:    downloadFilename(course),
		ContentType: contentTypeFor(course.StorageKey),
		Size:        size,
		Kind:        course.Kind,
	}, nil
}

// Search filters the visible catalogue by a case-insensitive title and
// description match, and optionally by document kind.
func (s *AccessService) Search(ctx context.Context, principal models.Principal, filter SearchFilter) ([]models.CourseListing, error) {
	visible, err := s.ListVisible(ctx, principal)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	results := make([]models.CourseListing, 0, len(visible))
	for _, row := range visible {
		if filter.Kind != nil && row.Kind != *filter.Kind {
			continue
		}
		if query != "" && !matchesQuery(row, query) {
			continue
		}
		results = append(results, row)
	}
	return results, nil
}

// Notifications lists the visible courses that appeared recently, so
// students notice new material without polling the full catalogue.
func (s *AccessService) Notifications(ctx context.Context, principal models.Principal) ([]Notification, error) {
	visible, err := s.ListVisible(ctx, principal)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-notificationHorizon)
	notifications := make([]Notification, 0, len(visible))
	for _, row := range visible {
		if row.CreatedAt.Before(cutoff) {
			continue
		}
		notifications = append(notifications, Notification{
			CourseID:  row.ID,
			Title:     row.Title,
			Kind:      row.Kind,
			CreatedAt: row.CreatedAt,
		})
	}
	return notifications, nil
}

// Profile returns the student's own profile with group and program context.
func (s *AccessService) Profile(ctx context.Context, principal models.Principal) (*models.StudentProfileDetail, error) {
	detail, err := s.users.FindStudentProfileByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrProfileIncomplete, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch profile")
	}
	return detail, nil
}

func matchesQuery(row models.CourseListing, query string) bool {
	if strings.Contains(strings.ToLower(row.Title), query) {
		return true
	}
	if row.Description != nil && strings.Contains(strings.ToLower(*row.Description), query) {
		return true
	}
	return false
}

func downloadFilename(course *models.Course) string {
	ext := filepath.Ext(course.StorageKey)
	name := strings.TrimSpace(course.Title)
	if name == "" {
		name = course.ID
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	return name + ext
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
