package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

type recordingCacheMetrics struct {
	hits   int
	misses int
}

func (m *recordingCacheMetrics) RecordCacheOperation(hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func TestCacheRepositoryWithoutClientReportsMiss(t *testing.T) {
	metrics := &recordingCacheMetrics{}
	repo := NewCacheRepository(nil, zap.NewNop(), metrics)

	var dest string
	err := repo.Get(context.Background(), "structure:programs", &dest)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCacheMiss))
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 0, metrics.hits)

	require.NoError(t, repo.Set(context.Background(), "structure:programs", "ignored", 0))
	require.NoError(t, repo.DeleteByPattern(context.Background(), "structure:*"))
}

func TestCacheRepositoryNilMetricsIsSafe(t *testing.T) {
	repo := NewCacheRepository(nil, zap.NewNop(), nil)

	var dest string
	err := repo.Get(context.Background(), "dashboard:stats", &dest)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCacheMiss))
}
