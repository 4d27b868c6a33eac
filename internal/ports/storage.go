package ports

import (
	"context"
	"io"
)

// PutObjectInput describes an upload to the object store.
type PutObjectInput struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ObjectStore holds product images in a single public bucket.
type ObjectStore interface {
	// EnsureBucket creates the bucket with a public-read policy when missing
	// and reports whether it was created.
	EnsureBucket(ctx context.Context) (created bool, err error)
	// Put uploads an object and returns its public URL.
	Put(ctx context.Context, in PutObjectInput) (url string, err error)
	// Delete removes an object. Removing a missing key succeeds.
	Delete(ctx context.Context, key string) error
	// Bucket returns the bucket name.
	Bucket() string
}
