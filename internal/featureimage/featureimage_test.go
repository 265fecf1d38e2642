package featureimage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TotalLag/developer-docs/internal/config"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

func testConfig(endpoint string, retries int) config.FeatureImageConfig {
	return config.FeatureImageConfig{
		Endpoint: endpoint,
		Timeout:  config.Duration(200 * time.Millisecond),
		Retry: config.RetryConfig{
			Mode:       config.RetryBackoffFixed,
			Initial:    config.Duration(time.Millisecond),
			Max:        config.Duration(time.Millisecond),
			MaxRetries: &retries,
		},
	}
}

func TestLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/media/42", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":42,"source_url":"https://cdn.example.org/a.jpg"}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL+"/", 1))
	got, err := c.Lookup(context.Background(), "wp-json/wp/v2/media/42")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.org/a.jpg", got)
}

func TestLookup_EmptySourceMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	got, err := New(testConfig(srv.URL, 1)).Lookup(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, calls.Load())
}

func TestLookup_RetriesOnceOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"source_url":"https://cdn.example.org/b.png"}`))
	}))
	defer srv.Close()

	got, err := New(testConfig(srv.URL, 1)).Lookup(context.Background(), "media/1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.org/b.png", got)
	assert.EqualValues(t, 2, calls.Load())
}

func TestLookup_GivesUpAfterOneRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL, 1)).Lookup(context.Background(), "media/1")
	require.Error(t, err)
	assert.True(t, foundation.HasCategory(err, foundation.CategoryNetwork))
	assert.EqualValues(t, 2, calls.Load())
}

func TestLookup_PermanentFailures(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"not found": func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
		"bad json":  func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html>")) },
		"no field":  func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"id":1}`)) },
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				h(w, r)
			}))
			defer srv.Close()

			_, err := New(testConfig(srv.URL, 1)).Lookup(context.Background(), "media/1")
			require.Error(t, err)
			ce, ok := foundation.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, foundation.CategoryNetwork, ce.Category())
			assert.False(t, ce.CanRetry())
			assert.EqualValues(t, 1, calls.Load(), "permanent failures are not retried")
		})
	}
}

func TestLookup_TimeoutPerAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := New(testConfig(srv.URL, 0)).Lookup(context.Background(), "media/slow")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLookup_Memoized(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"source_url":"https://cdn.example.org/c.jpg"}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, 0))
	for range 3 {
		_, err := c.Lookup(context.Background(), "media/7")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestShortcode_OmitsOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	fn := New(testConfig(srv.URL, 0)).Shortcode(context.Background())
	assert.Equal(t, "", fn("media/1"))
}

func TestJoinEndpoint(t *testing.T) {
	assert.Equal(t, "https://localhost/media/1", joinEndpoint("https://localhost/", "media/1"))
	assert.Equal(t, "https://localhost/media/1", joinEndpoint("https://localhost", "/media/1"))
	assert.Equal(t, "https://other.example/x", joinEndpoint("https://localhost/", "https://other.example/x"))
}
