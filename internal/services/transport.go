package services

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gregjones/httpcache"
	"golang.org/x/time/rate"

	"github.com/desertthunder/ytbeets/internal/shared"
)

// Middleware wraps an [http.RoundTripper].
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain composes middlewares so the first one sees the request first.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.RoundTripper) http.RoundTripper {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// RoundTripFunc adapts a function to [http.RoundTripper].
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Passthrough is the identity middleware.
func Passthrough(next http.RoundTripper) http.RoundTripper {
	return next
}

// WithCache caches responses in memory according to their cache headers.
func WithCache(cache httpcache.Cache) Middleware {
	if cache == nil {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		transport := httpcache.NewTransport(cache)
		transport.Transport = next
		return transport
	}
}

// WithRateLimit allows at most one request per interval.
func WithRateLimit(interval time.Duration) Middleware {
	if interval <= 0 {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		limiter := rate.NewLimiter(rate.Every(interval), 1)
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			if err := limiter.Wait(r.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(r)
		})
	}
}

// WithLogging logs status and latency of every request at debug level.
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			if err != nil {
				logger.Debug("request failed", "url", r.URL.String(), "err", err)
				return nil, err
			}
			logger.Debug("response",
				"status", resp.StatusCode,
				"took", time.Since(start).Truncate(time.Millisecond),
				"cached", resp.Header.Get(httpcache.XFromCache) != "",
				"url", r.URL.String(),
			)
			return resp, nil
		})
	}
}

// WithUserAgent sets the User-Agent header on outgoing requests.
func WithUserAgent(userAgent string) Middleware {
	if userAgent == "" {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())
			r.Header.Set("User-Agent", userAgent)
			return next.RoundTrip(r)
		})
	}
}

// NewHTTPClient builds the metadata client from cfg.
//
// The cache sits outside the rate limiter so cached responses are served immediately.
func NewHTTPClient(cfg shared.MetadataConfig, logger *log.Logger) *http.Client {
	var cache httpcache.Cache
	if cfg.Cache {
		cache = httpcache.NewMemoryCache()
	}

	mw := Chain(
		WithLogging(logger),
		WithCache(cache),
		WithUserAgent(cfg.UserAgent),
		WithRateLimit(cfg.RateLimit),
	)

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: mw(http.DefaultTransport),
	}
}
