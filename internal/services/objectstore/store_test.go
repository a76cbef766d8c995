package objectstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karaoke/internal/logging"
)

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "video.mp4")
	require.NoError(t, os.WriteFile(path, []byte("fake mp4 bytes"), 0o644))
	return path
}

func newTestStore(t *testing.T, handler http.HandlerFunc) Publisher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)

	pub, err := New(Config{
		Endpoint:        parsed.Host,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "karaoke-assets",
		PublicURL:       "https://cdn.example.com/",
	}, logging.NewNop())
	require.NoError(t, err)
	return pub
}

func TestPublishUploadsAndReturnsPublicURL(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
	)
	pub := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path = r.Method, r.URL.Path
		mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	})
	video := writeVideo(t)

	got, ok := pub.Publish(context.Background(), video, "job-1")
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/jobs/job-1/video.mp4", got)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/karaoke-assets/jobs/job-1/video.mp4", path)
}

func TestPublishFallsBackToLocalPathOnError(t *testing.T) {
	pub := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	})
	video := writeVideo(t)

	got, ok := pub.Publish(context.Background(), video, "job-2")
	assert.False(t, ok)
	assert.Equal(t, video, got)
}

func TestNewWithoutCredentialsIsLocal(t *testing.T) {
	pub, err := New(Config{Bucket: "b"}, nil)
	require.NoError(t, err)
	_, isLocal := pub.(Local)
	assert.True(t, isLocal)

	got, ok := pub.Publish(context.Background(), "/tmp/v.mp4", "job")
	assert.False(t, ok)
	assert.Equal(t, "/tmp/v.mp4", got)
}

func TestKeyAndURL(t *testing.T) {
	assert.Equal(t, "jobs/abc/out.mp4", Key("abc", "/work/jobs/abc/out.mp4"))
	s := &Store{cfg: Config{Endpoint: "acct.r2.cloudflarestorage.com", Bucket: "b", UseSSL: true}}
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com/b/jobs/abc/out.mp4", s.URL("jobs/abc/out.mp4"))
}
