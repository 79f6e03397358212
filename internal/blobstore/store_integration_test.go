//go:build integration_test || all_tests

package blobstore

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UploadDelete(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	t.Logf("using minio endpoint: %s", endpoint)

	store, err := NewStore(NewStoreParams{
		Endpoint:        endpoint,
		AccessKeyID:     os.Getenv("MINIO_ACCESS_KEY"),
		SecretAccessKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:          "blog-images-test",
		PublicBaseURL:   "http://" + endpoint,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, store.EnsureBucket(ctx))

	imageBytes := []byte("not-really-a-jpeg")
	blobURL, err := store.Upload(ctx, bytes.NewReader(imageBytes), int64(len(imageBytes)), "image/jpeg")
	require.NoError(t, err)
	assert.Contains(t, blobURL, "blog-images-test/user-")

	resp, err := http.Get(blobURL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, store.Delete(ctx, blobURL))
}
