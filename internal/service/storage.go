package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const UploadsPrefix = "/uploads/"

type StoredObject struct {
	Path       string
	ExternalID string
}

// MediaStorage is where uploaded files end up. Exactly one backend is used
// per deployment.
type MediaStorage interface {
	Store(ctx context.Context, name, contentType string, data []byte) (*StoredObject, error)
	Delete(ctx context.Context, externalID string) error
}

type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (l *LocalStorage) Dir() string {
	return l.dir
}

func (l *LocalStorage) Store(ctx context.Context, name, contentType string, data []byte) (*StoredObject, error) {
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid file name %q", name)
	}

	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &StoredObject{Path: UploadsPrefix + name}, nil
}

// Delete is a no-op for local files, which never carry an external id.
// Unreferenced files are removed by the upload sweeper.
func (l *LocalStorage) Delete(ctx context.Context, externalID string) error {
	return nil
}
