package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/courshub/courshub-api/internal/models"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

type stubAccessCourses struct {
	course *models.Course
	rows   []models.CourseWithWindow
	groups map[string][]models.CourseGroup
}

func (s *stubAccessCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if s.course == nil || s.course.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.course, nil
}

func (s *stubAccessCourses) ListForGroup(ctx context.Context, groupID string) ([]models.CourseWithWindow, error) {
	return s.rows, nil
}

func (s *stubAccessCourses) GroupsForCourse(ctx context.Context, courseID string) ([]models.CourseGroup, error) {
	return s.groups[courseID], nil
}

type stubAccessDists struct {
	dist *models.Distribution
}

func (s *stubAccessDists) Find(ctx context.Context, courseID, groupID string) (*models.Distribution, error) {
	if s.dist == nil || s.dist.CourseID != courseID || s.dist.GroupID != groupID {
		return nil, sql.ErrNoRows
	}
	return s.dist, nil
}

type stubAccessUsers struct {
	detail *models.StudentProfileDetail
}

func (s *stubAccessUsers) FindStudentProfileByUserID(ctx context.Context, userID string) (*models.StudentProfileDetail, error) {
	if s.detail == nil {
		return nil, sql.ErrNoRows
	}
	return s.detail, nil
}

type stubAccessStore struct {
	path    string
	present bool
}

func (s *stubAccessStore) Exists(key string) bool {
	return s.present
}

func (s *stubAccessStore) Open(key string) (*os.File, error) {
	return os.Open(s.path)
}

func studentPrincipal(groupID string) models.Principal {
	return models.Principal{
		UserID: "u1",
		Role:   models.RoleStudent,
		Student: &models.StudentProfile{
			ID:      "sp1",
			UserID:  "u1",
			GroupID: groupID,
		},
	}
}

func visibleCourse(id string) models.Course {
	return models.Course{
		ID:         id,
		Title:      "Algorithms lecture " + id,
		StorageKey: "courses/" + id + ".pdf",
		Kind:       models.KindLecture,
		Published:  true,
		Validated:  true,
		CreatedAt:  time.Now().UTC(),
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestEvaluateGrantsValidatedDistributedCourse(t *testing.T) {
	now := time.Now().UTC()
	err := Evaluate(studentPrincipal("g1"), visibleCourse("c1"), nil, nil, now)
	assert.NoError(t, err)
}

func TestEvaluateDenialOrder(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name      string
		principal models.Principal
		course    models.Course
		openAt    *time.Time
		closeAt   *time.Time
		want      *appErrors.Error
	}{
		{
			name:      "no profile",
			principal: models.Principal{UserID: "u1", Role: models.RoleStudent},
			course:    visibleCourse("c1"),
			want:      appErrors.ErrProfileIncomplete,
		},
		{
			name:      "empty group",
			principal: studentPrincipal(""),
			course:    visibleCourse("c1"),
			want:      appErrors.ErrProfileIncomplete,
		},
		{
			name:      "unpublished wins over unvalidated",
			principal: studentPrincipal("g1"),
			course:    models.Course{ID: "c1", Published: false, Validated: false},
			want:      appErrors.ErrNotPublished,
		},
		{
			name:      "not validated",
			principal: studentPrincipal("g1"),
			course:    models.Course{ID: "c1", Published: true, Validated: false},
			want:      appErrors.ErrNotValidated,
		},
		{
			name:      "window not open",
			principal: studentPrincipal("g1"),
			course:    visibleCourse("c1"),
			openAt:    timePtr(now.Add(time.Hour)),
			want:      appErrors.ErrWindowNotOpen,
		},
		{
			name:      "window closed",
			principal: studentPrincipal("g1"),
			course:    visibleCourse("c1"),
			closeAt:   timePtr(now.Add(-time.Hour)),
			want:      appErrors.ErrWindowClosed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Evaluate(tc.principal, tc.course, tc.openAt, tc.closeAt, now)
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, tc.want), "expected %s, got %v", tc.want.Code, err)
		})
	}
}

func TestListVisibleFiltersAndKeepsOrder(t *testing.T) {
	now := time.Now().UTC()
	pending := visibleCourse("c2")
	pending.Validated = false
	closed := visibleCourse("c3")

	courses := &stubAccessCourses{rows: []models.CourseWithWindow{
		{Course: visibleCourse("c1")},
		{Course: pending},
		{Course: closed, CloseAt: timePtr(now.Add(-time.Minute))},
		{Course: visibleCourse("c4"), OpenAt: timePtr(now.Add(-time.Minute))},
	}}

	svc := NewAccessService(courses, &stubAccessDists{}, &stubAccessUsers{}, &stubAccessStore{}, zap.NewNop())
	svc.now = func() time.Time { return now }

	visible, err := svc.ListVisible(context.Background(), studentPrincipal("g1"))
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "c1", visible[0].ID)
	assert.Equal(t, "c4", visible[1].ID)
}

func TestListVisibleRowShape(t *testing.T) {
	courses := &stubAccessCourses{
		rows:   []models.CourseWithWindow{{Course: visibleCourse("c1")}},
		groups: map[string][]models.CourseGroup{"c1": {{ID: "g1", Name: "L3 Informatique A"}}},
	}
	svc := NewAccessService(courses, &stubAccessDists{}, &stubAccessUsers{}, &stubAccessStore{}, zap.NewNop())

	visible, err := svc.ListVisible(context.Background(), studentPrincipal("g1"))
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Len(t, visible[0].Groups, 1)
	assert.Equal(t, "L3 Informatique A", visible[0].Groups[0].Name)

	payload, err := json.Marshal(visible[0])
	require.NoError(t, err)
	var row map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &row))

	assert.Equal(t, "c1", row["id"])
	assert.Contains(t, row, "title")
	assert.Contains(t, row, "kind")
	assert.Contains(t, row, "created_at")
	assert.Contains(t, row, "groups")
	assert.NotContains(t, row, "published")
	assert.NotContains(t, row, "validated")
	assert.NotContains(t, row, "updated_at")
}

func TestListVisibleRequiresProfile(t *testing.T) {
	svc := NewAccessService(&stubAccessCourses{}, &stubAccessDists{}, &stubAccessUsers{}, &stubAccessStore{}, zap.NewNop())

	_, err := svc.ListVisible(context.Background(), models.Principal{UserID: "u1", Role: models.RoleStudent})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrProfileIncomplete))
}

func TestResolveDownloadNotDistributed(t *testing.T) {
	course := visibleCourse("c1")
	svc := NewAccessService(&stubAccessCourses{course: &course}, &stubAccessDists{}, &stubAccessUsers{}, &stubAccessStore{present: true}, zap.NewNop())

	_, err := svc.ResolveDownload(context.Background(), studentPrincipal("g1"), "c1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotDistributed))
}

func TestResolveDownloadDenialOrderBeforeDistribution(t *testing.T) {
	course := visibleCourse("c1")
	course.Published = false
	course.Validated = false
	svc := NewAccessService(&stubAccessCourses{course: &course}, &stubAccessDists{}, &stubAccessUsers{}, &stubAccessStore{present: true}, zap.NewNop())

	_, err := svc.ResolveDownload(context.Background(), studentPrincipal("g1"), "c1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotPublished))

	course.Published = true
	_, err = svc.ResolveDownload(context.Background(), studentPrincipal("g1"), "c1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotValidated))
}

func TestResolveDownloadMissingFile(t *testing.T) {
	course := visibleCourse("c1")
	dists := &stubAccessDists{dist: &models.Distribution{CourseID: "c1", GroupID: "g1"}}
	svc := NewAccessService(&stubAccessCourses{course: &course}, dists, &stubAccessUsers{}, &stubAccessStore{present: false}, zap.NewNop())

	_, err := svc.ResolveDownload(context.Background(), studentPrincipal("g1"), "c1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrStorageInconsistent))
}

func TestResolveDownloadSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.pdf")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	course := visibleCourse("c1")
	course.Title = "Graph Theory: Intro"
	dists := &stubAccessDists{dist: &models.Distribution{CourseID: "c1", GroupID: "g1"}}
	store := &stubAccessStore{path: path, present: true}
	svc := NewAccessService(&stubAccessCourses{course: &course}, dists, &stubAccessUsers{}, store, zap.NewNop())

	download, err := svc.ResolveDownload(context.Background(), studentPrincipal("g1"), "c1")
	require.NoError(t, err)
	defer download.File.Close()

	assert.Equal(t, "Graph Theory_ Intro.pdf", download.Filename)
	assert.Equal(t, int64(7), download.Size)
	assert.Equal(t, models.KindLecture, download.Kind)
}

func TestResolveDownloadAdminBypassesWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.pdf")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	course := visibleCourse("c1")
	course.Validated = false
	store := &stubAccessStore{path: path, present: true}
	svc := NewAccessService(&stubAccessCourses{course: &course}, &stubAccessDists{}, &stubAccessUsers{}, store, zap.NewNop())

	download, err := svc.ResolveDownload(context.Background(), models.Principal{UserID: "a1", Role: models.RoleAdmin}, "c1")
	require.NoError(t, err)
	download.File.Close()
}

func TestSearchFiltersByQueryAndKind(t *testing.T) {
	video := visibleCourse("c2")
	video.Kind = models.KindVideo
	video.Title = "Sorting networks recording"

	courses := &stubAccessCourses{rows: []models.CourseWithWindow{
		{Course: visibleCourse("c1")},
		{Course: video},
	}}
	svc := NewAccessService(courses, &stubAccessDists{}, &stubAccessUsers{}, &stubAccessStore{}, zap.NewNop())

	kind := models.KindVideo
	results, err := svc.Search(context.Background(), studentPrincipal("g1"), SearchFilter{Query: "sorting", Kind: &kind})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c2", results[0].ID)

	results, err = svc.Search(context.Background(), studentPrincipal("g1"), SearchFilter{Query: "nothing matches"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNotificationsSkipOldCourses(t *testing.T) {
	now := time.Now().UTC()
	old := visibleCourse("c1")
	old.CreatedAt = now.Add(-30 * 24 * time.Hour)
	fresh := visibleCourse("c2")
	fresh.CreatedAt = now.Add(-time.Hour)

	courses := &stubAccessCourses{rows: []models.CourseWithWindow{
		{Course: old},
		{Course: fresh},
	}}
	svc := NewAccessService(courses, &stubAccessDists{}, &stubAccessUsers{}, &stubAccessStore{}, zap.NewNop())
	svc.now = func() time.Time { return now }

	notifications, err := svc.Notifications(context.Background(), studentPrincipal("g1"))
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "c2", notifications[0].CourseID)
}

func TestProfileMissingReportsIncomplete(t *testing.T) {
	svc := NewAccessService(&stubAccessCourses{}, &stubAccessDists{}, &stubAccessUsers{}, &stubAccessStore{}, zap.NewNop())

	_, err := svc.Profile(context.Background(), studentPrincipal("g1"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrProfileIncomplete))
}
