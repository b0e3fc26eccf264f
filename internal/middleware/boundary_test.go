package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/storefront-gate/internal/audit"
	"github.com/serroba/storefront-gate/internal/auth"
	"github.com/serroba/storefront-gate/internal/boundary"
	"github.com/serroba/storefront-gate/internal/middleware"
	"github.com/serroba/storefront-gate/internal/ratelimit"
	"github.com/serroba/storefront-gate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type okOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func okHandler(_ context.Context, _ *struct{}) (*okOutput, error) {
	resp := &okOutput{}
	resp.Body.OK = true

	return resp, nil
}

type collectionInput struct {
	Handle string `query:"handle"`
}

func setupRouter(cfg middleware.BoundaryConfig) *chi.Mux {
	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.Boundary(api, cfg))

	huma.Register(api, huma.Operation{
		Method: http.MethodPost, Path: "/api/checkout",
	}, okHandler)
	huma.Register(api, huma.Operation{
		Method: http.MethodPost, Path: "/api/subscribe",
	}, okHandler)
	huma.Register(api, huma.Operation{
		Method: http.MethodGet, Path: "/api/countdown",
	}, okHandler)
	huma.Register(api, huma.Operation{
		Method: http.MethodGet, Path: "/api/collections",
	}, func(_ context.Context, _ *collectionInput) (*okOutput, error) {
		resp := &okOutput{}
		resp.Body.OK = true

		return resp, nil
	})
	huma.Get(api, "/health", okHandler)

	return router
}

func defaultConfig(limiter ratelimit.Limiter, gate *auth.Gate) middleware.BoundaryConfig {
	return middleware.BoundaryConfig{
		Table:    boundary.DefaultTable(),
		Limiter:  limiter,
		Gate:     gate,
		FailMode: ratelimit.FailOpen,
		Logger:   zap.NewNop(),
	}
}

func memoryLimiter(policy ratelimit.Policy) *ratelimit.BucketLimiter {
	return ratelimit.NewBucketLimiter(store.NewRateLimitMemoryStore(), policy)
}

func openGate() *auth.Gate {
	return auth.NewGate(auth.Config{})
}

func closedGate() *auth.Gate {
	return auth.NewGate(auth.Config{Password: "abc123", Secret: "topsecret"})
}

func do(router *chi.Mux, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestBoundary_CheckoutAbuse(t *testing.T) {
	policy := ratelimit.Policy{
		ratelimit.BucketCheckout: {Max: 10, Window: time.Minute},
	}
	router := setupRouter(defaultConfig(memoryLimiter(policy), openGate()))

	for i := 1; i <= 10; i++ {
		w := do(router, http.MethodPost, "/api/checkout", nil)

		require.Equal(t, http.StatusOK, w.Code, "request %d should be allowed", i)
		assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(10-i), w.Header().Get("X-RateLimit-Remaining"))
	}

	w := do(router, http.MethodPost, "/api/checkout", nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))

	retryAfter := w.Header().Get("Retry-After")
	require.NotEmpty(t, retryAfter)
	assert.NotEqual(t, "0", retryAfter)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate limit exceeded", body.Error)
}

func TestBoundary_PerClientIndependence(t *testing.T) {
	policy := ratelimit.Policy{
		ratelimit.BucketCheckout: {Max: 1, Window: time.Minute},
	}
	router := setupRouter(defaultConfig(memoryLimiter(policy), openGate()))

	w := do(router, http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	w = do(router, http.MethodPost, "/api/checkout", map[string]string{
		"X-Forwarded-For": "198.51.100.7",
	})
	assert.Equal(t, http.StatusOK, w.Code, "a different client must not be affected")
}

func TestBoundary_RateLimitRunsBeforeGate(t *testing.T) {
	policy := ratelimit.Policy{
		ratelimit.BucketCheckout: {Max: 1, Window: time.Minute},
	}
	router := setupRouter(defaultConfig(memoryLimiter(policy), closedGate()))

	w := do(router, http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code, "first attempt hits the gate")

	w = do(router, http.MethodPost, "/api/checkout", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code,
		"retries against the gate must be throttled, not just rejected")
}

func TestBoundary_AuthGate(t *testing.T) {
	gate := closedGate()
	policy := ratelimit.DefaultPolicy()

	t.Run("rejects gated request without session", func(t *testing.T) {
		router := setupRouter(defaultConfig(memoryLimiter(policy), gate))

		w := do(router, http.MethodGet, "/api/collections?handle=shop", nil)

		require.Equal(t, http.StatusUnauthorized, w.Code)

		var body struct {
			Error            string `json:"error"`
			RequiresPassword bool   `json:"requiresPassword"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.RequiresPassword)
		assert.Equal(t, "password required", body.Error)
	})

	t.Run("rejects tampered session cookie", func(t *testing.T) {
		router := setupRouter(defaultConfig(memoryLimiter(policy), gate))

		w := do(router, http.MethodGet, "/api/collections?handle=shop", map[string]string{
			"Cookie": auth.CookieName + "=forged",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("allows gated request with valid session", func(t *testing.T) {
		router := setupRouter(defaultConfig(memoryLimiter(policy), gate))
		cookie := gate.IssueCookie()

		w := do(router, http.MethodGet, "/api/collections?handle=shop", map[string]string{
			"Cookie": cookie.Name + "=" + cookie.Value,
		})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("other collections bypass the gate", func(t *testing.T) {
		router := setupRouter(defaultConfig(memoryLimiter(policy), gate))

		w := do(router, http.MethodGet, "/api/collections?handle=lookbook", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("open gate never blocks", func(t *testing.T) {
		router := setupRouter(defaultConfig(memoryLimiter(policy), openGate()))

		w := do(router, http.MethodGet, "/api/collections?handle=shop", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestBoundary_FailModes(t *testing.T) {
	t.Run("fails open when the store errors", func(t *testing.T) {
		cfg := defaultConfig(&failingLimiter{}, openGate())
		router := setupRouter(cfg)

		w := do(router, http.MethodPost, "/api/checkout", nil)

		assert.Equal(t, http.StatusOK, w.Code, "availability wins over strict enforcement")
	})

	t.Run("fails closed when configured", func(t *testing.T) {
		cfg := defaultConfig(&failingLimiter{}, openGate())
		cfg.FailMode = ratelimit.FailClosed
		router := setupRouter(cfg)

		w := do(router, http.MethodPost, "/api/checkout", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestBoundary_Exemptions(t *testing.T) {
	t.Run("countdown polling never counts against the general bucket", func(t *testing.T) {
		policy := ratelimit.Policy{
			ratelimit.BucketGeneral: {Max: 2, Window: time.Minute},
		}
		router := setupRouter(defaultConfig(memoryLimiter(policy), openGate()))

		for i := range 10 {
			w := do(router, http.MethodGet, "/api/countdown", nil)

			assert.Equal(t, http.StatusOK, w.Code, "poll %d should pass", i)
			assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
		}

		// The general budget is still intact for other reads.
		w := do(router, http.MethodGet, "/api/collections?handle=lookbook", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-API paths are never inspected", func(t *testing.T) {
		cfg := defaultConfig(&failingLimiter{}, closedGate())
		cfg.FailMode = ratelimit.FailClosed
		router := setupRouter(cfg)

		w := do(router, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestBoundary_GeneralBucket(t *testing.T) {
	policy := ratelimit.Policy{
		ratelimit.BucketGeneral: {Max: 2, Window: time.Minute},
	}
	router := setupRouter(defaultConfig(memoryLimiter(policy), openGate()))

	for range 2 {
		w := do(router, http.MethodGet, "/api/collections?handle=lookbook", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(router, http.MethodGet, "/api/collections?handle=lookbook", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestBoundary_PublishesRateLimitEvents(t *testing.T) {
	policy := ratelimit.Policy{
		ratelimit.BucketForm: {Max: 1, Window: time.Minute},
	}

	var events []*audit.RateLimitExceededEvent

	cfg := defaultConfig(memoryLimiter(policy), openGate())
	cfg.PublishRateLimited = func(event *audit.RateLimitExceededEvent) error {
		events = append(events, event)

		return nil
	}
	router := setupRouter(cfg)

	do(router, http.MethodPost, "/api/subscribe", nil)
	w := do(router, http.MethodPost, "/api/subscribe", nil)

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Len(t, events, 1)
	assert.Equal(t, string(ratelimit.BucketForm), events[0].Bucket)
	assert.Equal(t, "203.0.113.9", events[0].ClientIP)
	assert.Equal(t, "/api/subscribe", events[0].Path)
	assert.Equal(t, int64(1), events[0].Limit)
}

type failingLimiter struct{}

func (f *failingLimiter) Allow(_ context.Context, _ ratelimit.Bucket, _ string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("store unavailable")
}

