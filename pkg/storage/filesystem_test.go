package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "courses/a.pdf", Normalize("courses/a.pdf"))
	assert.Equal(t, "courses/a.pdf", Normalize("storage/courses/a.pdf"))
	assert.Equal(t, "courses/a.pdf", Normalize("/storage/courses/a.pdf"))
	assert.Equal(t, "courses/a.pdf", Normalize("/courses/a.pdf"))
}

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key, err := store.Save("courses", "lecture.pdf", strings.NewReader("content"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "courses/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	assert.True(t, store.Exists(key))
	assert.True(t, store.Exists("storage/"+key))

	file, err := store.Open(key)
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, "content", string(data))

	require.NoError(t, store.Delete(key))
	assert.False(t, store.Exists(key))

	// deleting a missing file is a no-op
	require.NoError(t, store.Delete(key))
}
