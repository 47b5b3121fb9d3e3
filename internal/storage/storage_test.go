package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"alcyxob/liftlog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testS3Config(endpoint string) config.S3Config {
	return config.S3Config{
		Endpoint:        endpoint,
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		BucketName:      "exports",
	}
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "", endpointURL("", true))
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	assert.Equal(t, "http://already:1", endpointURL("http://already:1", true))
}

func TestS3PresignedDownloadURL(t *testing.T) {
	s, err := NewS3Storage(context.Background(), testS3Config("http://localhost:9000"))
	require.NoError(t, err)

	raw, err := s.GeneratePresignedDownloadURL(context.Background(), "exports/u1/a.json", 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/exports/exports/u1/a.json", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestS3PutAndDelete(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []string
		body     string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			b, _ := io.ReadAll(r.Body)
			body = string(b)
		}
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewS3Storage(context.Background(), testS3Config(srv.URL))
	require.NoError(t, err)

	require.NoError(t, s.PutObject(context.Background(), "k.json", "application/json", strings.NewReader(`{"ok":true}`)))
	require.NoError(t, s.DeleteObject(context.Background(), "k.json"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"PUT /exports/k.json", "DELETE /exports/k.json"}, requests)
	assert.Contains(t, body, `{"ok":true}`)
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	cfg := testS3Config("")
	cfg.BucketName = ""
	_, err := NewS3Storage(context.Background(), cfg)
	assert.Error(t, err)
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage("exports")

	_, err := m.GeneratePresignedDownloadURL(ctx, "missing", 0)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, m.PutObject(ctx, "a/b.json", "application/json", strings.NewReader("[]")))
	obj, ok := m.Get("a/b.json")
	require.True(t, ok)
	assert.Equal(t, "[]", string(obj.Data))
	assert.Equal(t, "application/json", obj.ContentType)

	raw, err := m.GeneratePresignedDownloadURL(ctx, "a/b.json", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "memory://exports/a/b.json?expires=1m0s", raw)

	require.NoError(t, m.DeleteObject(ctx, "a/b.json"))
	_, ok = m.Get("a/b.json")
	assert.False(t, ok)
}
