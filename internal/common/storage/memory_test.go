package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-tracker/internal/common/config"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Put(ctx, "u1/cv/a.pdf", strings.NewReader("%PDF"), 4, "application/pdf"))
	ok, err := m.Exists(ctx, "u1/cv/a.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	url, err := m.PresignedURL(ctx, "u1/cv/a.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "expires=900")

	_, err = m.PresignedURL(ctx, "u1/cv/missing.pdf", time.Minute)
	assert.Error(t, err)

	require.NoError(t, m.Remove(ctx, "u1/cv/a.pdf"))
	assert.Equal(t, 0, m.Len())

	m.FailPut = func(path string) error {
		if strings.HasPrefix(path, "u2/") {
			return errors.New("bucket unavailable")
		}
		return nil
	}
	assert.Error(t, m.Put(ctx, "u2/lor/b.pdf", strings.NewReader("x"), 1, "text/plain"))
	assert.NoError(t, m.Put(ctx, "u1/lor/b.pdf", strings.NewReader("x"), 1, "text/plain"))
}

func TestNewMinio(t *testing.T) {
	store, err := NewMinio(config.MinioConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "user-documents",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-documents", store.bucket)

	_, err = NewMinio(config.MinioConfig{Endpoint: "http://bad endpoint"})
	assert.Error(t, err)
}
