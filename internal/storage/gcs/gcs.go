// Package gcs implements the Google Cloud Storage backend for recipe images.
// Uploaded objects carry their content type and are addressed through the
// public storage.googleapis.com URL scheme, so the bucket is expected to allow
// public reads (uniform bucket-level access with allUsers objectViewer).
// Supports Application Default Credentials and service account JSON keys.
package gcs

import (
	"context"
	"fmt"
	"io"
	"net/url"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/cookbook/cookbook-backend/internal/config"
	"github.com/cookbook/cookbook-backend/internal/storage"
)

func init() {
	// Register GCS storage backend
	storage.Register("gcs", func(cfg *config.Config) (storage.Storage, error) {
		return New(&cfg.Storage.GCS)
	})
}

// GCSStorage implements the Storage interface for Google Cloud Storage
type GCSStorage struct {
	client   *gstorage.Client
	bucket   string
	endpoint string
}

// New creates a new Google Cloud Storage backend
//
// Authentication methods:
//   - "default" or empty: Uses Application Default Credentials (ADC)
//     This automatically supports:
//   - GOOGLE_APPLICATION_CREDENTIALS environment variable
//   - GCE/GKE metadata service
//   - Cloud Run/Cloud Functions service account
//   - gcloud auth application-default login
//   - "service_account": Uses a service account key file or JSON
func New(cfg *config.GCSStorageConfig) (*GCSStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket name is required")
	}

	ctx := context.Background()
	var opts []option.ClientOption

	// Set custom endpoint for GCS emulators or compatible services
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	authMethod := cfg.AuthMethod
	if authMethod == "" {
		if cfg.CredentialsFile != "" || cfg.CredentialsJSON != "" {
			authMethod = "service_account"
		} else {
			authMethod = "default"
		}
	}

	switch authMethod {
	case "service_account":
		if cfg.CredentialsJSON != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
		} else if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		} else {
			return nil, fmt.Errorf("credentials_file or credentials_json is required for service_account auth")
		}

	case "default":
		// Application Default Credentials; the client resolves them itself

	default:
		return nil, fmt.Errorf("unsupported auth_method: %s (must be 'default' or 'service_account')", authMethod)
	}

	client, err := gstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
	}, nil
}

// Close closes the GCS client
func (s *GCSStorage) Close() error {
	return s.client.Close()
}

// publicURL builds the public address of an object. Emulator endpoints take
// precedence over the canonical storage.googleapis.com scheme.
func (s *GCSStorage) publicURL(name string) string {
	base := "https://storage.googleapis.com"
	if s.endpoint != "" {
		base = s.endpoint
	}
	return fmt.Sprintf("%s/%s/%s", base, s.bucket, url.PathEscape(name))
}

// Upload stores an object in GCS
func (s *GCSStorage) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (*storage.Object, error) {
	obj := s.client.Bucket(s.bucket).Object(name)

	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType

	written, err := io.Copy(writer, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return &storage.Object{
		Name:        name,
		URL:         s.publicURL(name),
		ContentType: contentType,
		Size:        written,
	}, nil
}

// Open retrieves an object from GCS
func (s *GCSStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj := s.client.Bucket(s.bucket).Object(name)

	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read from GCS: %w", err)
	}

	return reader, nil
}

// Delete removes an object from GCS
func (s *GCSStorage) Delete(ctx context.Context, name string) error {
	obj := s.client.Bucket(s.bucket).Object(name)

	if err := obj.Delete(ctx); err != nil {
		// A missing object is already deleted
		if err == gstorage.ErrObjectNotExist {
			return nil
		}
		return fmt.Errorf("failed to delete from GCS: %w", err)
	}

	return nil
}

// Exists checks if an object is present under the given name
func (s *GCSStorage) Exists(ctx context.Context, name string) (bool, error) {
	obj := s.client.Bucket(s.bucket).Object(name)

	_, err := obj.Attrs(ctx)
	if err != nil {
		if err == gstorage.ErrObjectNotExist {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *GCSStorage) EnsureBucket(ctx context.Context, projectID string) error {
	bucket := s.client.Bucket(s.bucket)

	_, err := bucket.Attrs(ctx)
	if err == nil {
		return nil
	}

	if err != gstorage.ErrBucketNotExist {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if projectID == "" {
		return fmt.Errorf("project_id is required to create a bucket")
	}

	if err := bucket.Create(ctx, projectID, nil); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}
