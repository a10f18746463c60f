// Package s3 implements the AWS S3-compatible storage backend for recipe
// images. It supports AWS S3, MinIO, DigitalOcean Spaces, and other
// S3-compatible services via a configurable endpoint. Uploaded objects are
// addressed by their public object URL; the bucket is expected to allow
// public reads. Authentication uses either the default AWS credential chain
// (recommended for EC2/EKS with IAM roles) or static key/secret.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cookbook/cookbook-backend/internal/config"
	"github.com/cookbook/cookbook-backend/internal/storage"
)

func init() {
	// Register S3 storage backend
	storage.Register("s3", func(cfg *config.Config) (storage.Storage, error) {
		return New(&cfg.Storage.S3)
	})
}

// S3Storage implements the Storage interface for S3-compatible storage
type S3Storage struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

// New creates a new S3-compatible storage backend
//
// Authentication methods:
//   - "default" or empty: Uses AWS default credential chain (env vars, shared config, IAM role, IMDS)
//   - "static": Uses explicit access key and secret key
func New(cfg *config.S3StorageConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket name is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3 region is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	authMethod := cfg.AuthMethod
	if authMethod == "" {
		if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
			authMethod = "static"
		} else {
			authMethod = "default"
		}
	}

	switch authMethod {
	case "static":
		if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
			return nil, fmt.Errorf("access_key_id and secret_access_key are required for static auth")
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))

	case "default":
		// Default credential chain; nothing extra to configure

	default:
		return nil, fmt.Errorf("unsupported auth_method: %s (must be 'default' or 'static')", authMethod)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// S3-compatible services need path-style addressing
			o.UsePathStyle = true
		})
	}

	return &S3Storage{
		client:   s3.NewFromConfig(awsCfg, s3Opts...),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
	}, nil
}

// publicURL builds the public address of an object. Custom endpoints use
// path-style addressing; plain AWS uses the virtual-hosted-style URL.
func (s *S3Storage) publicURL(name string) string {
	escaped := url.PathEscape(name)
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}

// Upload stores an object in S3
func (s *S3Storage) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (*storage.Object, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          reader,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &storage.Object{
		Name:        name,
		URL:         s.publicURL(name),
		ContentType: contentType,
		Size:        size,
	}, nil
}

// Open retrieves an object from S3
func (s *S3Storage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}

	return result.Body, nil
}

// Delete removes an object from S3
func (s *S3Storage) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// Exists checks if an object is present under the given name
func (s *S3Storage) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		// AWS SDK v2 surfaces missing objects as a generic API error
		return false, nil
	}

	return true, nil
}
