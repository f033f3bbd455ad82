package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flowspace/server/internal/shared/logger"
	"github.com/flowspace/server/internal/shared/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	userID uuid.UUID
	err    error
}

func (s stubVerifier) Verify(token string) (uuid.UUID, string, error) {
	if s.err != nil {
		return uuid.Nil, "", s.err
	}
	return s.userID, "ada@example.com", nil
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates new request ID when not provided", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		headerID := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, headerID)
		assert.Equal(t, headerID, w.Body.String())
	})

	t.Run("uses existing request ID from header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "existing-request-id-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "existing-request-id-123", w.Body.String())
	})
}

func TestAuth(t *testing.T) {
	userID := uuid.New()

	newRouter := func(v TokenVerifier, cfg AuthConfig) *gin.Engine {
		r := gin.New()
		r.Use(Auth(v, cfg))
		r.GET("/me", func(c *gin.Context) {
			c.String(http.StatusOK, GetUserID(c).String())
		})
		return r
	}

	tests := []struct {
		name       string
		verifier   TokenVerifier
		cfg        AuthConfig
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"valid bearer", stubVerifier{userID: userID}, AuthConfig{}, "Bearer tok", "", http.StatusOK, userID.String()},
		{"missing header", stubVerifier{userID: userID}, AuthConfig{}, "", "", http.StatusUnauthorized, ""},
		{"wrong scheme", stubVerifier{userID: userID}, AuthConfig{}, "Basic tok", "", http.StatusUnauthorized, ""},
		{"extra parts", stubVerifier{userID: userID}, AuthConfig{}, "Bearer a b", "", http.StatusUnauthorized, ""},
		{"invalid token", stubVerifier{err: errors.New("expired")}, AuthConfig{}, "Bearer tok", "", http.StatusUnauthorized, ""},
		{"optional without token", stubVerifier{userID: userID}, AuthConfig{Optional: true}, "", "", http.StatusOK, uuid.Nil.String()},
		{"query token allowed", stubVerifier{userID: userID}, AuthConfig{AllowQueryToken: true}, "", "tok", http.StatusOK, userID.String()},
		{"query token ignored", stubVerifier{userID: userID}, AuthConfig{}, "", "tok", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/me"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set(AuthorizationHeader, tt.header)
			}
			w := httptest.NewRecorder()
			newRouter(tt.verifier, tt.cfg).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	buf := &bytes.Buffer{}
	router := gin.New()
	router.Use(Recovery(logger.New(&logger.Config{Output: buf})))
	router.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
	assert.Contains(t, buf.String(), "kaboom")
}

func TestLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	router := gin.New()
	router.Use(RequestID(), Logging(logger.New(&logger.Config{Output: buf})))
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"request_id"`)
}

type erroringLimiter struct{}

func (erroringLimiter) Allow(context.Context, string, int, time.Duration) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis down")
}

func TestRateLimitByUser(t *testing.T) {
	newRouter := func(l ratelimit.Limiter) *gin.Engine {
		r := gin.New()
		r.Use(RateLimitByUser(l, nil, "invite", 1, time.Hour))
		r.POST("/invite", func(c *gin.Context) { c.Status(http.StatusCreated) })
		return r
	}

	t.Run("rejects over limit", func(t *testing.T) {
		r := newRouter(ratelimit.NewLocalLimiter())

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invite", nil))
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invite", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "3600", w.Header().Get(RetryAfter))
	})

	t.Run("fails open on limiter error", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(erroringLimiter{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invite", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("nil limiter passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invite", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
