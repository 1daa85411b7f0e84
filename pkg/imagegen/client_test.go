package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/generate", r.URL.Path)
		assert.Equal(t, "Bearer k-123", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://cdn/x.jpg", req.ImageURL)
		assert.Equal(t, "lamp on a desk", req.Prompt)
		assert.Equal(t, "playful", req.Tone)

		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("webp-bytes"))
	}))
	defer srv.Close()

	c := New(srv.URL, "k-123", time.Second)
	img, contentType, err := c.Generate(context.Background(), Request{
		ImageURL: "https://cdn/x.jpg",
		Prompt:   "lamp on a desk",
		Tone:     "playful",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("webp-bytes"), img)
	assert.Equal(t, "image/webp", contentType)
}

func TestGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	_, _, err := c.Generate(context.Background(), Request{ImageURL: "x", Prompt: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestGenerateEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	_, _, err := c.Generate(context.Background(), Request{ImageURL: "x", Prompt: "y"})
	assert.Error(t, err)
}

func TestGenerateTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, "", 50*time.Millisecond)
	start := time.Now()
	_, _, err := c.Generate(context.Background(), Request{ImageURL: "x", Prompt: "y"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGenerateDefaultsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Suppress the automatic Content-Type sniffing.
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	_, contentType, err := c.Generate(context.Background(), Request{ImageURL: "x", Prompt: "y"})
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
}
