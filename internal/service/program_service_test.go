package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/courshub/courshub-api/internal/models"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

type stubProgramRepo struct {
	programs   map[string]*models.Program
	names      map[string]bool
	groupCount map[string]int
}

func newStubProgramRepo() *stubProgramRepo {
	return &stubProgramRepo{
		programs:   make(map[string]*models.Program),
		names:      make(map[string]bool),
		groupCount: make(map[string]int),
	}
}

func (s *stubProgramRepo) List(ctx context.Context) ([]models.Program, error) {
	var all []models.Program
	for _, p := range s.programs {
		all = append(all, *p)
	}
	return all, nil
}

func (s *stubProgramRepo) FindByID(ctx context.Context, id string) (*models.Program, error) {
	program, ok := s.programs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return program, nil
}

func (s *stubProgramRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return s.names[name], nil
}

func (s *stubProgramRepo) Create(ctx context.Context, program *models.Program) error {
	if program.ID == "" {
		program.ID = "new-program"
	}
	s.programs[program.ID] = program
	s.names[program.Name] = true
	return nil
}

func (s *stubProgramRepo) Update(ctx context.Context, program *models.Program) error {
	s.programs[program.ID] = program
	return nil
}

func (s *stubProgramRepo) CountGroups(ctx context.Context, programID string) (int, error) {
	return s.groupCount[programID], nil
}

func (s *stubProgramRepo) Delete(ctx context.Context, id string) error {
	if _, ok := s.programs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.programs, id)
	return nil
}

type stubCache struct {
	values  map[string][]byte
	flushes []string
}

func (s *stubCache) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (s *stubCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (s *stubCache) DeleteByPattern(ctx context.Context, pattern string) error {
	s.flushes = append(s.flushes, pattern)
	return nil
}

func TestProgramCreateRejectsDuplicateName(t *testing.T) {
	repo := newStubProgramRepo()
	repo.names["Computer Science"] = true
	svc := NewProgramService(repo, nil, validator.New(), zap.NewNop(), 0)

	_, err := svc.Create(context.Background(), ProgramRequest{Name: "Computer Science"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestProgramDeleteWithGroupsConflicts(t *testing.T) {
	repo := newStubProgramRepo()
	repo.programs["p1"] = &models.Program{ID: "p1", Name: "CS"}
	repo.groupCount["p1"] = 2
	svc := NewProgramService(repo, nil, validator.New(), zap.NewNop(), 0)

	err := svc.Delete(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	repo.groupCount["p1"] = 0
	require.NoError(t, svc.Delete(context.Background(), "p1"))
}

func TestProgramMutationsFlushCaches(t *testing.T) {
	repo := newStubProgramRepo()
	cache := &stubCache{}
	svc := NewProgramService(repo, cache, validator.New(), zap.NewNop(), 0)

	_, err := svc.Create(context.Background(), ProgramRequest{Name: "Mathematics"})
	require.NoError(t, err)
	assert.Contains(t, cache.flushes, "structure:*")
	assert.Contains(t, cache.flushes, "dashboard:*")
}

func TestProgramGetUnknown(t *testing.T) {
	svc := NewProgramService(newStubProgramRepo(), nil, validator.New(), zap.NewNop(), 0)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
