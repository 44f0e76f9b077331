package services

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytbeets/internal/shared"
)

func TestTransport(t *testing.T) {
	t.Run("Chain order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.RoundTripper) http.RoundTripper {
				return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
					order = append(order, name)
					return next.RoundTrip(r)
				})
			}
		}

		final := RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		})

		req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
		if _, err := Chain(mark("a"), mark("b"), mark("c"))(final).RoundTrip(req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Join(order, "") != "abc" {
			t.Errorf("expected abc, got %v", order)
		}
	})

	t.Run("WithUserAgent", func(t *testing.T) {
		var got string
		final := RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			got = r.Header.Get("User-Agent")
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		})

		req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
		WithUserAgent("ytbeets/test")(final).RoundTrip(req)
		if got != "ytbeets/test" {
			t.Errorf("expected user agent to be set, got %q", got)
		}
		if req.Header.Get("User-Agent") != "" {
			t.Error("original request should not be mutated")
		}
	})

	t.Run("WithRateLimit", func(t *testing.T) {
		final := RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		})
		rt := WithRateLimit(50 * time.Millisecond)(final)

		start := time.Now()
		for range 3 {
			req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			if _, err := rt.RoundTrip(req); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
			t.Errorf("expected requests to be spaced out, took %s", elapsed)
		}
	})

	t.Run("NewHTTPClient caches responses", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Cache-Control", "max-age=60")
			fmt.Fprint(w, `[]`)
		}))
		defer server.Close()

		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)
		logger.SetLevel(log.DebugLevel)

		cfg := shared.MetadataConfig{UserAgent: "ytbeets/test", Cache: true, Timeout: 5 * time.Second}
		client := NewHTTPClient(cfg, logger)

		for range 2 {
			resp, err := client.Get(server.URL + "/api/search?q=x")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if hits.Load() != 1 {
			t.Errorf("expected second request to be served from cache, server saw %d", hits.Load())
		}
		if !strings.Contains(buf.String(), "cached=true") {
			t.Errorf("expected cache hit to be logged, got %q", buf.String())
		}
	})
}
