// Package objectstore stores product images in an S3-compatible bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/jerseyretro/storefront/internal/ports"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var _ ports.ObjectStore = (*Store)(nil)

// bucketAPI is the subset of *minio.Client used by Store.
type bucketAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	SetBucketPolicy(ctx context.Context, bucket, policy string) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

// Config configures the object store connection.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	Bucket    string
	// PublicURL is the base URL objects are served from. Defaults to the endpoint.
	PublicURL string
}

// Store uploads objects to one public-read bucket.
type Store struct {
	api       bucketAPI
	bucket    string
	region    string
	publicURL string
}

// New connects to the configured endpoint.
func New(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("storage endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return newStore(client, cfg), nil
}

func newStore(api bucketAPI, cfg Config) *Store {
	base := cfg.PublicURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}
	return &Store{
		api:       api,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		publicURL: strings.TrimRight(base, "/"),
	}
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string { return s.bucket }

// EnsureBucket creates the bucket with a public-read policy when it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) (bool, error) {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return false, fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		// Lost a race with another creator.
		if exists, existsErr := s.api.BucketExists(ctx, s.bucket); existsErr == nil && exists {
			return false, nil
		}
		return false, fmt.Errorf("make bucket: %w", err)
	}
	if err := s.api.SetBucketPolicy(ctx, s.bucket, PublicReadPolicy(s.bucket)); err != nil {
		return true, fmt.Errorf("set bucket policy: %w", err)
	}
	return true, nil
}

// Put uploads an object and returns its public URL.
func (s *Store) Put(ctx context.Context, in ports.PutObjectInput) (string, error) {
	if in.Key == "" || in.Body == nil {
		return "", errors.New("object key and body are required")
	}
	if _, err := s.api.PutObject(ctx, s.bucket, in.Key, in.Body, in.Size, minio.PutObjectOptions{
		ContentType: in.ContentType,
	}); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return s.ObjectURL(in.Key), nil
}

// Delete removes the object stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("object key is required")
	}
	if err := s.api.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// ObjectURL returns the public URL for key.
func (s *Store) ObjectURL(key string) string {
	return s.publicURL + "/" + url.PathEscape(s.bucket) + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// PublicReadPolicy returns an S3 bucket policy granting anonymous GetObject.
func PublicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}
