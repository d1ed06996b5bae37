package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "session=abc", r.Header.Get("Cookie"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Write([]byte("<html>hello</html>"))
	}))
	defer srv.Close()

	c := NewClient("test-agent", "session=abc", 5*time.Second)
	body, err := c.GetString(context.Background(), srv.URL, map[string]string{"Cache-Control": "no-cache"})

	require.NoError(t, err)
	assert.Equal(t, "<html>hello</html>", body)
}

func TestClient_GetString_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("test-agent", "", 5*time.Second)
	_, err := c.GetString(context.Background(), srv.URL, nil)
	assert.Error(t, err)
}

func TestClient_ResolveRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://www.xiaohongshu.com/discovery/item/abc123", http.StatusFound)
	}))
	defer srv.Close()

	c := NewClient("test-agent", "", 5*time.Second)
	target, err := c.ResolveRedirect(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "https://www.xiaohongshu.com/discovery/item/abc123", target)
}

func TestClient_ResolveRedirect_SingleHopOnly(t *testing.T) {
	// Only the first Location is taken; the chain is not followed.
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Redirect(w, r, "/next", http.StatusFound)
	}))
	defer srv.Close()

	c := NewClient("test-agent", "", 5*time.Second)
	target, err := c.ResolveRedirect(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "/next", target)
	assert.Equal(t, 1, hits)
}

func TestClient_ResolveRedirect_NoRedirectReturnsInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain page"))
	}))
	defer srv.Close()

	c := NewClient("test-agent", "", 5*time.Second)
	target, err := c.ResolveRedirect(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, srv.URL, target)
}

func TestClient_Stream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg; charset=utf-8")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	c := NewClient("test-agent", "", 5*time.Second)
	stream, err := c.Stream(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	defer stream.Body.Close()

	assert.Equal(t, http.StatusOK, stream.StatusCode)
	assert.Equal(t, "image/jpeg", stream.ContentType, "media type parameters are stripped")

	body, err := io.ReadAll(stream.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(body))
}

func TestClient_Stream_NonOKIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient("test-agent", "", 5*time.Second)
	stream, err := c.Stream(context.Background(), srv.URL, nil)
	require.NoError(t, err, "status handling is the caller's decision")
	defer stream.Body.Close()

	assert.Equal(t, http.StatusNotFound, stream.StatusCode)
}
