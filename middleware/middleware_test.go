package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/sessionview/internal/domain"
	"github.com/studyhub/sessionview/internal/session"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	t.Run("generates_when_missing", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(HeaderXRequestID))
	})

	t.Run("keeps_incoming", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, "req-1")
		rec := httptest.NewRecorder()
		RequestID(ok).ServeHTTP(rec, req)
		assert.Equal(t, "req-1", rec.Header().Get(HeaderXRequestID))
	})

	t.Run("replaces_malformed", func(t *testing.T) {
		for _, bad := range []string{"two words", "line\nbreak", strings.Repeat("r", 129)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderXRequestID, bad)
			rec := httptest.NewRecorder()
			RequestID(ok).ServeHTTP(rec, req)

			got := rec.Header().Get(HeaderXRequestID)
			assert.NotEqual(t, bad, got)
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
		}
	})
}

func TestMetrics_ScopeLabels(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/calendar/view", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	r.Get("/api/notifications", func(w http.ResponseWriter, r *http.Request) {})

	calendarBefore := testutil.ToFloat64(viewRequests.WithLabelValues("calendar", "GET", "/api/calendar/view", "401"))
	rejectedBefore := testutil.ToFloat64(anonymousRejected.WithLabelValues("calendar"))
	feedBefore := testutil.ToFloat64(viewRequests.WithLabelValues("notifications", "GET", "/api/notifications", "200"))
	unmatchedBefore := testutil.ToFloat64(viewRequests.WithLabelValues("unmatched", "GET", "unmatched", "404"))

	for _, path := range []string{"/api/calendar/view", "/api/notifications", "/api/calendar/123456"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, calendarBefore+1, testutil.ToFloat64(viewRequests.WithLabelValues("calendar", "GET", "/api/calendar/view", "401")))
	assert.Equal(t, rejectedBefore+1, testutil.ToFloat64(anonymousRejected.WithLabelValues("calendar")))
	assert.Equal(t, feedBefore+1, testutil.ToFloat64(viewRequests.WithLabelValues("notifications", "GET", "/api/notifications", "200")))
	assert.Equal(t, unmatchedBefore+1, testutil.ToFloat64(viewRequests.WithLabelValues("unmatched", "GET", "unmatched", "404")))
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestAuth(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	parser := session.NewParser("secret").WithClock(func() time.Time { return now })

	var got *session.Session
	protected := Authenticate(parser)(RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) domain.APIError {
		var body domain.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	t.Run("valid", func(t *testing.T) {
		rec := serve("Bearer " + signed(t, jwt.MapClaims{"uid": "u-7", "exp": now.Add(time.Hour).Unix()}))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, "u-7", got.UserID)
	})

	t.Run("missing", func(t *testing.T) {
		rec := serve("")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", decode(rec).Error.Code)
	})

	t.Run("expired", func(t *testing.T) {
		rec := serve("Bearer " + signed(t, jwt.MapClaims{"uid": "u-7", "exp": now.Add(-time.Hour).Unix()}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "token_expired", decode(rec).Error.Code)
	})

	t.Run("garbage", func(t *testing.T) {
		rec := serve("Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "token_invalid", decode(rec).Error.Code)
	})
}

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	limiter := NewRedisRateLimiter(rdb)
	h := limiter.Middleware(RateLimitConfig{Limit: 2, Window: time.Minute, KeyFn: KeyByUser})(ok)

	hit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(session.WithSession(req.Context(), &session.Session{Token: "t", UserID: "u-1"}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, hit().Code)
	assert.Equal(t, http.StatusOK, hit().Code)

	rec := hit()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.True(t, mr.Exists("rl:sessionview:user:u-1"))
}

func TestRedisRateLimiter_FailOpen(t *testing.T) {
	limiter := NewRedisRateLimiter(nil)
	rec := httptest.NewRecorder()
	limiter.Middleware(RateLimitConfig{Limit: 1, Window: time.Second, KeyFn: KeyByIP})(ok).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestKeyByUser_FallsBackToIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	assert.Equal(t, "ip:10.0.0.1", KeyByUser(req))
}
