package gallery_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harry7799/heng-studio/internal/gallery"
	"github.com/harry7799/heng-studio/internal/models"
)

func TestRemoteManifest_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/gallery/manifest", r.URL.Path)
		w.Header().Set("ETag", `"abc123"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"name":"b","url":"/b","number":2},{"name":"a","url":"/a","number":1}]`)
	}))
	defer server.Close()

	entries, version, err := gallery.NewRemoteManifest(server.URL, "").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(entries))
	assert.Equal(t, "abc123", version)
}

func TestRemoteManifest_SaveSendsTokenAndIfMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/save-gallery", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Admin-Token"))
		assert.Equal(t, `"v1"`, r.Header.Get("If-Match"))

		var entries []models.GalleryEntry
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&entries))
		_ = json.NewEncoder(w).Encode(models.SaveGalleryResponse{Success: true, Count: len(entries), Version: "v2"})
	}))
	defer server.Close()

	version, err := gallery.NewRemoteManifest(server.URL, " secret ").Save(context.Background(), makeEntries(2), "v1")
	require.NoError(t, err)
	assert.Equal(t, "v2", version)
}

func TestRemoteManifest_SaveMapsStatuses(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusPreconditionFailed, models.ErrStaleManifest},
		{http.StatusUnauthorized, models.ErrUnauthorized},
		{http.StatusServiceUnavailable, models.ErrNotConfigured},
	}
	for _, tt := range tests {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(tt.status)
		}))

		_, err := gallery.NewRemoteManifest(server.URL, "t").WithBackoffs(0, 0).Save(context.Background(), makeEntries(1), "")
		assert.ErrorIs(t, err, tt.want)
		assert.Equal(t, int32(1), calls.Load(), "status %d must not be retried", tt.status)
		server.Close()
	}
}

func TestRemoteManifest_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))
	defer server.Close()

	entries, _, err := gallery.NewRemoteManifest(server.URL, "").WithBackoffs(0, 0, 0).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRemoteManifest_GivesUpAfterBackoffs(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, _, err := gallery.NewRemoteManifest(server.URL, "").WithBackoffs(0).Load(context.Background())
	assert.ErrorContains(t, err, "failed after 2 attempts")
	assert.Equal(t, int32(2), calls.Load())
}
