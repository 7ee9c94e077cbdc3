package minio

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationMinioStore(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	bucket := os.Getenv("MINIO_BUCKET")
	if endpoint == "" || bucket == "" {
		t.Skip("Skipping MinIO integration test: MINIO_ENDPOINT or MINIO_BUCKET not set")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			os.Getenv("MINIO_ACCESS_KEY"),
			os.Getenv("MINIO_SECRET_KEY"),
			"",
		),
		Secure: os.Getenv("MINIO_SECURE") == "true",
	})
	require.NoError(t, err)

	ctx := context.Background()
	prefix := fmt.Sprintf("test-recgo-%d/", time.Now().UnixNano())
	store := NewStore(client, bucket, prefix)

	name := "rec.recg"
	data := make([]byte, 256*1024)
	_, _ = rand.Read(data)

	w, err := store.Create(ctx, name)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	defer func() {
		_ = store.Delete(ctx, name)
	}()

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, name)

	b, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, int64(len(data)), b.Size())

	buf := make([]byte, 1024)
	_, err = b.ReadAt(ctx, buf, 4096)
	require.NoError(t, err)
	assert.Equal(t, data[4096:4096+1024], buf)

	require.NoError(t, store.Delete(ctx, name))
	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
