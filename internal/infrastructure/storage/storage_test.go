package storage

import (
	"context"
	"os"
	"testing"

	"github.com/propcore/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, &config.StorageConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("half a key pair returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, &config.StorageConfig{Bucket: "b", AccessKeyID: "key"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be set together")
	})

	t.Run("valid config creates storage", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, &config.StorageConfig{
			Bucket:          "dead-letters",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			Endpoint:        "localhost:9000",
			UsePathStyle:    true,
		}, WithLogger(zap.NewNop()))
		require.NoError(t, err)
		assert.Equal(t, "dead-letters", s.Bucket())
	})
}

func TestS3ObjectStorage_RejectsEmptyKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewS3ObjectStorage(ctx, &config.StorageConfig{
		Bucket:          "b",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Endpoint:        "http://localhost:9000",
	})
	require.NoError(t, err)

	assert.Error(t, s.Put(ctx, "", []byte("x"), "text/plain"))
	_, err = s.Exists(ctx, "")
	assert.Error(t, err)
}

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryObjectStorage()

	data := []byte(`{"id":1}`)
	require.NoError(t, s.Put(ctx, "b/2.jsonl", data, "application/x-ndjson"))
	require.NoError(t, s.Put(ctx, "a/1.jsonl", []byte("{}"), "application/x-ndjson"))
	data[0] = 'X'

	got, ok := s.Get("b/2.jsonl")
	require.True(t, ok)
	assert.Equal(t, `{"id":1}`, string(got), "stored bytes are copied")

	exists, err := s.Exists(ctx, "a/1.jsonl")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, []string{"a/1.jsonl", "b/2.jsonl"}, s.Keys())
	assert.Error(t, s.Put(ctx, "", nil, ""))
}

// Runs against MinIO/LocalStack when STORAGE_TEST_ENDPOINT is set
func TestIntegration_S3PutAndExists(t *testing.T) {
	endpoint := os.Getenv("STORAGE_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("Skipping integration test. Set STORAGE_TEST_ENDPOINT to run it.")
	}
	ctx := context.Background()
	s, err := NewS3ObjectStorage(ctx, &config.StorageConfig{
		Bucket:          "propcore-test",
		AccessKeyID:     os.Getenv("STORAGE_TEST_ACCESS_KEY"),
		SecretAccessKey: os.Getenv("STORAGE_TEST_SECRET_KEY"),
		Endpoint:        endpoint,
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, s.EnsureBucket(ctx))
	require.NoError(t, s.EnsureBucket(ctx))

	require.NoError(t, s.Put(ctx, "it/object.jsonl", []byte("{}\n"), "application/x-ndjson"))
	exists, err := s.Exists(ctx, "it/object.jsonl")
	require.NoError(t, err)
	assert.True(t, exists)
}
