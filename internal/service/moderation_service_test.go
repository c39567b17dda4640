package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/courshub/courshub-api/internal/models"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

type stubModCourses struct {
	courses map[string]*models.Course
	deleted []string
}

func newStubModCourses(courses ...*models.Course) *stubModCourses {
	m := &stubModCourses{courses: make(map[string]*models.Course)}
	for _, c := range courses {
		m.courses[c.ID] = c
	}
	return m
}

func (s *stubModCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := s.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func (s *stubModCourses) Validate(ctx context.Context, id string) error {
	course, ok := s.courses[id]
	if !ok {
		return sql.ErrNoRows
	}
	course.Validated = true
	course.Published = true
	return nil
}

func (s *stubModCourses) Delete(ctx context.Context, id string) error {
	if _, ok := s.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.courses, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubModCourses) ListAll(ctx context.Context) ([]models.Course, error) {
	var all []models.Course
	for _, c := range s.courses {
		all = append(all, *c)
	}
	return all, nil
}

func (s *stubModCourses) ListPending(ctx context.Context) ([]models.Course, error) {
	var pending []models.Course
	for _, c := range s.courses {
		if !c.Validated {
			pending = append(pending, *c)
		}
	}
	return pending, nil
}

func (s *stubModCourses) GroupsForCourse(ctx context.Context, courseID string) ([]models.CourseGroup, error) {
	return []models.CourseGroup{{ID: "g1", Name: "Group A"}}, nil
}

type stubModStore struct {
	deletedKeys []string
}

func (s *stubModStore) Delete(key string) error {
	s.deletedKeys = append(s.deletedKeys, key)
	return nil
}

func pendingCourse(id string) *models.Course {
	return &models.Course{
		ID:         id,
		Title:      "Pending upload",
		StorageKey: "courses/" + id + ".pdf",
		Kind:       models.KindLecture,
		Published:  true,
		Validated:  false,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestModerationValidateSetsBothFlags(t *testing.T) {
	repo := newStubModCourses(pendingCourse("c1"))
	svc := NewModerationService(repo, &stubModStore{}, zap.NewNop())

	course, err := svc.Validate(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, course.Validated)
	assert.True(t, course.Published)
}

func TestModerationValidateIsIdempotent(t *testing.T) {
	repo := newStubModCourses(pendingCourse("c1"))
	svc := NewModerationService(repo, &stubModStore{}, zap.NewNop())

	first, err := svc.Validate(context.Background(), "c1")
	require.NoError(t, err)
	second, err := svc.Validate(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, first.Validated, second.Validated)
	assert.Equal(t, first.Published, second.Published)
}

func TestModerationValidateUnknownCourse(t *testing.T) {
	svc := NewModerationService(newStubModCourses(), &stubModStore{}, zap.NewNop())

	_, err := svc.Validate(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestModerationRejectRemovesRowAndFile(t *testing.T) {
	repo := newStubModCourses(pendingCourse("c1"))
	store := &stubModStore{}
	svc := NewModerationService(repo, store, zap.NewNop())

	require.NoError(t, svc.Reject(context.Background(), "c1"))
	assert.Equal(t, []string{"c1"}, repo.deleted)
	assert.Equal(t, []string{"courses/c1.pdf"}, store.deletedKeys)

	err := svc.Reject(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestModerationPendingExcludesValidated(t *testing.T) {
	validated := pendingCourse("c2")
	validated.Validated = true
	repo := newStubModCourses(pendingCourse("c1"), validated)
	svc := NewModerationService(repo, &stubModStore{}, zap.NewNop())

	pending, err := svc.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c1", pending[0].ID)
	assert.Len(t, pending[0].Groups, 1)
}
