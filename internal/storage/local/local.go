// Package local implements the local filesystem storage backend. This backend
// is intended for development and single-node deployments only. Images are
// served back through the API's /images/ route, so the returned URLs point at
// the server's own base URL.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cookbook/cookbook-backend/internal/config"
	"github.com/cookbook/cookbook-backend/internal/storage"
)

func init() {
	// Register local storage backend
	storage.Register("local", func(cfg *config.Config) (storage.Storage, error) {
		return New(&cfg.Storage.Local, cfg.Server.BaseURL)
	})
}

// LocalStorage implements the Storage interface for local filesystem storage
type LocalStorage struct {
	basePath string
	baseURL  string
}

// New creates a new local filesystem storage backend
func New(cfg *config.LocalStorageConfig, serverBaseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.BasePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: cfg.BasePath,
		baseURL:  strings.TrimSuffix(serverBaseURL, "/"),
	}, nil
}

// BasePath returns the directory images are written to, for static serving.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// Upload stores an object in the local filesystem
func (s *LocalStorage) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (*storage.Object, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(name))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		// Clean up partial file
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &storage.Object{
		Name:        name,
		URL:         fmt.Sprintf("%s/images/%s", s.baseURL, name),
		ContentType: contentType,
		Size:        written,
	}, nil
}

// Open retrieves an object from the local filesystem
func (s *LocalStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(name))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object not found: %s", name)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes an object from the local filesystem
func (s *LocalStorage) Delete(ctx context.Context, name string) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(name))

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil // already gone
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	// Try to remove empty parent directories (best effort)
	dir := filepath.Dir(fullPath)
	for dir != s.basePath {
		if err := os.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}

	return nil
}

// Exists checks if an object is present under the given name
func (s *LocalStorage) Exists(ctx context.Context, name string) (bool, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(name))

	_, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}

	return true, nil
}
