package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage persists uploaded course files on disk under a base directory.
//
// Keys are relative paths such as "courses/<uuid>.pdf". Rows migrated from the
// legacy system may carry a "storage/" or "/storage/" prefix; Normalize strips
// it so both spellings resolve to the same file.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Normalize strips a legacy storage path prefix and any leading slash.
func Normalize(key string) string {
	key = strings.TrimPrefix(key, "/")
	key = strings.TrimPrefix(key, "storage/")
	return key
}

// Save copies from reader into a freshly named file under folder and returns
// the storage key.
func (s *LocalStorage) Save(folder string, filename string, r io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	key := filepath.Join(folder, uuid.NewString()+ext)
	path := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return filepath.ToSlash(key), nil
}

// Exists reports whether a file is present for the given key.
func (s *LocalStorage) Exists(key string) bool {
	info, err := os.Stat(s.resolve(Normalize(key)))
	return err == nil && !info.IsDir()
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(key string) (*os.File, error) {
	file, err := os.Open(s.resolve(Normalize(key)))
	if err != nil {
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *LocalStorage) Delete(key string) error {
	if err := os.Remove(s.resolve(Normalize(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete stored file: %w", err)
	}
	return nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *LocalStorage) Path(key string) string {
	return s.resolve(Normalize(key))
}

func (s *LocalStorage) resolve(key string) string {
	if filepath.IsAbs(key) {
		return key
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}
