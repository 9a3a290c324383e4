package photostore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore implements Store on the local filesystem, for development
// and tests. Keys map directly to paths under the base directory.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a filesystem photo store rooted at baseDir.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) Put(_ context.Context, userID int64, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyPhoto
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	key := newKey(userID, mimeType)
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Join(ErrStorageFailure, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Join(ErrStorageFailure, err)
	}
	return key, nil
}

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	if !validKey(key) {
		return nil, ErrInvalidKey
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStorageFailure, err)
	}
	return data, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}

	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}
