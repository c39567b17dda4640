package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/courshub/courshub-api/internal/models"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

type stubCurriculumRepo struct {
	programModules map[string]models.ProgramModule
	assignments    map[string]models.TeachingAssignment
	detached       []string
}

func newStubCurriculumRepo() *stubCurriculumRepo {
	return &stubCurriculumRepo{
		programModules: make(map[string]models.ProgramModule),
		assignments:    make(map[string]models.TeachingAssignment),
	}
}

func (s *stubCurriculumRepo) UpsertProgramModule(ctx context.Context, pivot models.ProgramModule) error {
	s.programModules[pivot.ProgramID+"/"+pivot.ModuleID] = pivot
	return nil
}

func (s *stubCurriculumRepo) DetachProgramModule(ctx context.Context, programID, moduleID string) error {
	delete(s.programModules, programID+"/"+moduleID)
	s.detached = append(s.detached, programID+"/"+moduleID)
	return nil
}

func (s *stubCurriculumRepo) ListByProgram(ctx context.Context, programID string) ([]models.ProgramModuleDetail, error) {
	var rows []models.ProgramModuleDetail
	for _, pivot := range s.programModules {
		if pivot.ProgramID == programID {
			rows = append(rows, models.ProgramModuleDetail{ProgramModule: pivot})
		}
	}
	return rows, nil
}

func (s *stubCurriculumRepo) UpsertTeachingAssignment(ctx context.Context, pivot models.TeachingAssignment) error {
	s.assignments[pivot.TeacherID+"/"+pivot.ModuleID] = pivot
	return nil
}

func (s *stubCurriculumRepo) DetachTeachingAssignment(ctx context.Context, teacherID, moduleID string) error {
	delete(s.assignments, teacherID+"/"+moduleID)
	return nil
}

func (s *stubCurriculumRepo) ListAssignmentsByModule(ctx context.Context, moduleID string) ([]models.TeachingAssignment, error) {
	var rows []models.TeachingAssignment
	for _, pivot := range s.assignments {
		if pivot.ModuleID == moduleID {
			rows = append(rows, pivot)
		}
	}
	return rows, nil
}

type stubModuleLookup struct {
	known map[string]bool
}

func (s *stubModuleLookup) FindByID(ctx context.Context, id string) (*models.Module, error) {
	if !s.known[id] {
		return nil, sql.ErrNoRows
	}
	return &models.Module{ID: id, Name: "Module", Code: "M1"}, nil
}

type stubTeacherLookup struct {
	profiles map[string]*models.TeacherProfile
}

func (s *stubTeacherLookup) FindTeacherProfileByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return profile, nil
}

const (
	testModuleID      = "33333333-3333-3333-3333-333333333333"
	testTeacherUserID = "44444444-4444-4444-4444-444444444444"
)

func newCurriculumService(repo *stubCurriculumRepo, teachers *stubTeacherLookup) *CurriculumService {
	programs := &stubProgramLookup{known: map[string]bool{"p1": true}}
	modules := &stubModuleLookup{known: map[string]bool{testModuleID: true}}
	return NewCurriculumService(repo, programs, modules, teachers, nil, validator.New(), zap.NewNop())
}

func TestAttachModuleUpsertsPivot(t *testing.T) {
	repo := newStubCurriculumRepo()
	svc := newCurriculumService(repo, &stubTeacherLookup{})

	req := AttachModuleRequest{ModuleID: testModuleID, Semester: 2, Coefficient: 3}
	require.NoError(t, svc.AttachModule(context.Background(), "p1", req))

	req.Semester = 4
	require.NoError(t, svc.AttachModule(context.Background(), "p1", req))

	pivot := repo.programModules["p1/"+testModuleID]
	assert.Equal(t, 4, pivot.Semester)
	assert.Len(t, repo.programModules, 1)
}

func TestAttachModuleRejectsBadSemester(t *testing.T) {
	svc := newCurriculumService(newStubCurriculumRepo(), &stubTeacherLookup{})

	err := svc.AttachModule(context.Background(), "p1", AttachModuleRequest{
		ModuleID:    testModuleID,
		Semester:    9,
		Coefficient: 1,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestDetachAbsentModuleSucceeds(t *testing.T) {
	repo := newStubCurriculumRepo()
	svc := newCurriculumService(repo, &stubTeacherLookup{})

	require.NoError(t, svc.DetachModule(context.Background(), "p1", testModuleID))
	assert.Len(t, repo.detached, 1)
}

func TestAssignTeacherResolvesProfile(t *testing.T) {
	repo := newStubCurriculumRepo()
	teachers := &stubTeacherLookup{profiles: map[string]*models.TeacherProfile{
		testTeacherUserID: {ID: "tp-1", UserID: testTeacherUserID},
	}}
	svc := newCurriculumService(repo, teachers)

	err := svc.AssignTeacher(context.Background(), testModuleID, AssignTeacherRequest{
		TeacherUserID: testTeacherUserID,
		AcademicYear:  "2025-2026",
		Coordinator:   true,
	})
	require.NoError(t, err)

	pivot := repo.assignments["tp-1/"+testModuleID]
	assert.True(t, pivot.Coordinator)
	assert.Equal(t, "tp-1", pivot.TeacherID)
}

func TestAssignTeacherRejectsNonTeacher(t *testing.T) {
	svc := newCurriculumService(newStubCurriculumRepo(), &stubTeacherLookup{})

	err := svc.AssignTeacher(context.Background(), testModuleID, AssignTeacherRequest{
		TeacherUserID: testTeacherUserID,
		AcademicYear:  "2025-2026",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
