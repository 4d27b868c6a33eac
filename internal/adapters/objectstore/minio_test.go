package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jerseyretro/storefront/internal/ports"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucketAPI struct {
	exists    bool
	makeErr   error
	policy    string
	putKey    string
	putType   string
	putBody   string
	makeCalls int
	removed   []string
	removeErr error
}

func (f *fakeBucketAPI) BucketExists(context.Context, string) (bool, error) { return f.exists, nil }

func (f *fakeBucketAPI) MakeBucket(context.Context, string, minio.MakeBucketOptions) error {
	f.makeCalls++
	if f.makeErr != nil {
		return f.makeErr
	}
	f.exists = true
	return nil
}

func (f *fakeBucketAPI) SetBucketPolicy(_ context.Context, _, policy string) error {
	f.policy = policy
	return nil
}

func (f *fakeBucketAPI) PutObject(_ context.Context, _, key string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	b, _ := io.ReadAll(r)
	f.putKey, f.putType, f.putBody = key, opts.ContentType, string(b)
	return minio.UploadInfo{Key: key}, nil
}

func (f *fakeBucketAPI) RemoveObject(_ context.Context, _, key string, _ minio.RemoveObjectOptions) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, key)
	return nil
}

func TestStore_EnsureBucket(t *testing.T) {
	api := &fakeBucketAPI{}
	s := newStore(api, Config{Endpoint: "localhost:9000", Bucket: "jersey-images"})

	created, err := s.EnsureBucket(context.Background())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, api.policy, "arn:aws:s3:::jersey-images/*")

	created, err = s.EnsureBucket(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, api.makeCalls)
}

func TestStore_EnsureBucketMakeFails(t *testing.T) {
	api := &fakeBucketAPI{makeErr: errors.New("access denied")}
	s := newStore(api, Config{Endpoint: "localhost:9000", Bucket: "b"})

	_, err := s.EnsureBucket(context.Background())
	assert.ErrorContains(t, err, "access denied")
}

func TestStore_Put(t *testing.T) {
	api := &fakeBucketAPI{}
	s := newStore(api, Config{Endpoint: "cdn.local:9000", UseSSL: true, Bucket: "jersey-images"})

	url, err := s.Put(context.Background(), ports.PutObjectInput{
		Key: "products/p1/a b.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.local:9000/jersey-images/products/p1/a%20b.png", url)
	assert.Equal(t, "image/png", api.putType)
	assert.Equal(t, "png", api.putBody)

	_, err = s.Put(context.Background(), ports.PutObjectInput{Key: "x"})
	assert.Error(t, err)
}

func TestStore_Delete(t *testing.T) {
	api := &fakeBucketAPI{}
	s := newStore(api, Config{Endpoint: "localhost:9000", Bucket: "jersey-images"})

	require.NoError(t, s.Delete(context.Background(), "products/p1/a.png"))
	assert.Equal(t, []string{"products/p1/a.png"}, api.removed)

	assert.Error(t, s.Delete(context.Background(), ""))

	api.removeErr = errors.New("access denied")
	assert.ErrorContains(t, s.Delete(context.Background(), "k"), "access denied")
}

func TestStore_PublicURLOverride(t *testing.T) {
	s := newStore(&fakeBucketAPI{}, Config{Endpoint: "minio:9000", Bucket: "b", PublicURL: "http://localhost:9000/"})
	assert.Equal(t, "http://localhost:9000/b/k.png", s.ObjectURL("k.png"))
	assert.Equal(t, "b", s.Bucket())
}

func TestPublicReadPolicy_IsJSON(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(PublicReadPolicy("jersey-images")), &doc))
	assert.Equal(t, "2012-10-17", doc["Version"])
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Bucket: "b"})
	assert.Error(t, err)
	_, err = New(Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	s, err := New(Config{Endpoint: "localhost:9000", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/b/k", s.ObjectURL("k"))
}
