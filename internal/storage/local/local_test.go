package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cookbook/cookbook-backend/internal/config"
)

// newTestStorage creates a LocalStorage backed by a temporary directory.
// The temp dir is cleaned up when the test ends.
func newTestStorage(t *testing.T, baseURL string) *LocalStorage {
	t.Helper()
	dir, err := os.MkdirTemp("", "local-storage-test-*")
	if err != nil {
		t.Fatal("MkdirTemp:", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := &config.LocalStorageConfig{BasePath: dir}
	s, err := New(cfg, baseURL)
	if err != nil {
		t.Fatal("New:", err)
	}
	return s
}

// ---------------------------------------------------------------------------
// New
// ---------------------------------------------------------------------------

func TestNew_CreatesDirectory(t *testing.T) {
	dir, err := os.MkdirTemp("", "new-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	subDir := filepath.Join(dir, "a", "b", "c")
	cfg := &config.LocalStorageConfig{BasePath: subDir}
	_, err = New(cfg, "http://localhost")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := os.Stat(subDir); os.IsNotExist(err) {
		t.Error("New() did not create base directory")
	}
}

// ---------------------------------------------------------------------------
// Upload
// ---------------------------------------------------------------------------

func TestUpload(t *testing.T) {
	s := newTestStorage(t, "http://localhost:8080")
	ctx := context.Background()

	content := "not really a png"
	obj, err := s.Upload(ctx, "recipes/abc/photo.png", strings.NewReader(content), int64(len(content)), "image/png")
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	if obj.Name != "recipes/abc/photo.png" {
		t.Errorf("Name = %q, want recipes/abc/photo.png", obj.Name)
	}
	if obj.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", obj.Size, len(content))
	}
	if obj.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", obj.ContentType)
	}
	want := "http://localhost:8080/images/recipes/abc/photo.png"
	if obj.URL != want {
		t.Errorf("URL = %q, want %q", obj.URL, want)
	}
}

func TestUpload_CreatesSubdirectories(t *testing.T) {
	s := newTestStorage(t, "")
	ctx := context.Background()

	_, err := s.Upload(ctx, "deep/nested/path/img.jpg", strings.NewReader("data"), 4, "image/jpeg")
	if err != nil {
		t.Fatalf("Upload() error for deep path: %v", err)
	}

	fullPath := filepath.Join(s.basePath, "deep", "nested", "path", "img.jpg")
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		t.Error("Upload() did not create file at nested path")
	}
}

func TestUpload_TrimsTrailingSlashFromBaseURL(t *testing.T) {
	s := newTestStorage(t, "http://cookbook.example.com/")
	ctx := context.Background()

	obj, err := s.Upload(ctx, "x.png", strings.NewReader("x"), 1, "image/png")
	if err != nil {
		t.Fatal("Upload:", err)
	}
	want := "http://cookbook.example.com/images/x.png"
	if obj.URL != want {
		t.Errorf("URL = %q, want %q", obj.URL, want)
	}
}

// ---------------------------------------------------------------------------
// Open
// ---------------------------------------------------------------------------

func TestOpen(t *testing.T) {
	s := newTestStorage(t, "")
	ctx := context.Background()

	want := "image bytes"
	if _, err := s.Upload(ctx, "dl.png", strings.NewReader(want), int64(len(want)), "image/png"); err != nil {
		t.Fatal("Upload:", err)
	}

	rc, err := s.Open(ctx, "dl.png")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != want {
		t.Errorf("Open() content = %q, want %q", string(data), want)
	}
}

func TestOpen_NotFound(t *testing.T) {
	s := newTestStorage(t, "")
	ctx := context.Background()

	_, err := s.Open(ctx, "nonexistent.png")
	if err == nil {
		t.Error("Open() expected error for missing object, got nil")
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestDelete(t *testing.T) {
	s := newTestStorage(t, "")
	ctx := context.Background()

	if _, err := s.Upload(ctx, "to-delete.png", strings.NewReader("bye"), 3, "image/png"); err != nil {
		t.Fatal("Upload:", err)
	}

	if err := s.Delete(ctx, "to-delete.png"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	exists, _ := s.Exists(ctx, "to-delete.png")
	if exists {
		t.Error("Delete() object still exists after deletion")
	}
}

func TestDelete_NonExistentObject(t *testing.T) {
	s := newTestStorage(t, "")
	ctx := context.Background()

	// Deleting an object that doesn't exist should be a no-op (no error).
	if err := s.Delete(ctx, "does-not-exist.png"); err != nil {
		t.Errorf("Delete() error for non-existent object: %v (want nil)", err)
	}
}

func TestDelete_CleansUpEmptyParentDirs(t *testing.T) {
	s := newTestStorage(t, "")
	ctx := context.Background()

	// Upload to a subdirectory, then delete and confirm the empty subdir is cleaned.
	if _, err := s.Upload(ctx, "sub/leaf.png", strings.NewReader("x"), 1, "image/png"); err != nil {
		t.Fatal("Upload:", err)
	}

	if err := s.Delete(ctx, "sub/leaf.png"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	subDir := filepath.Join(s.basePath, "sub")
	if _, err := os.Stat(subDir); !os.IsNotExist(err) {
		t.Error("Delete() should clean up empty parent directory 'sub'")
	}
}

// ---------------------------------------------------------------------------
// Exists
// ---------------------------------------------------------------------------

func TestExists(t *testing.T) {
	s := newTestStorage(t, "")
	ctx := context.Background()

	ok, err := s.Exists(ctx, "no-such.png")
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if ok {
		t.Error("Exists() = true for non-existent object, want false")
	}

	if _, err := s.Upload(ctx, "yes.png", strings.NewReader("data"), 4, "image/png"); err != nil {
		t.Fatal("Upload:", err)
	}

	ok, err = s.Exists(ctx, "yes.png")
	if err != nil {
		t.Fatalf("Exists() error after upload: %v", err)
	}
	if !ok {
		t.Error("Exists() = false for existing object, want true")
	}
}
