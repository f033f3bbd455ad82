package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdempotencyRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, *int, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	calls := 0
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(UserIDKey, userID) })
	r.Use(Idempotency(rdb, DefaultIdempotencyConfig()))
	r.POST("/boards", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})
	r.POST("/fail", func(c *gin.Context) {
		calls++
		c.Status(http.StatusInternalServerError)
	})
	return r, &calls, mr
}

func post(r http.Handler, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	t.Run("replays stored response", func(t *testing.T) {
		r, calls, _ := newIdempotencyRouter(t, uuid.New())

		first := post(r, "/boards", "k1", `{"title":"Roadmap"}`)
		require.Equal(t, http.StatusCreated, first.Code)

		second := post(r, "/boards", "k1", `{"title":"Roadmap"}`)
		assert.Equal(t, http.StatusCreated, second.Code)
		assert.Equal(t, first.Body.String(), second.Body.String())
		assert.Equal(t, "true", second.Header().Get(IdempotencyReplayedHeader))
		assert.Equal(t, 1, *calls)
	})

	t.Run("different body is rejected", func(t *testing.T) {
		r, calls, _ := newIdempotencyRouter(t, uuid.New())

		post(r, "/boards", "k1", `{"title":"Roadmap"}`)
		w := post(r, "/boards", "k1", `{"title":"Other"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "idempotency_key_reused")
		assert.Equal(t, 1, *calls)
	})

	t.Run("no key passes through", func(t *testing.T) {
		r, calls, _ := newIdempotencyRouter(t, uuid.New())
		for i := 0; i < 3; i++ {
			post(r, "/boards", "", `{}`)
		}
		assert.Equal(t, 3, *calls)
	})

	t.Run("server errors are not stored", func(t *testing.T) {
		r, calls, _ := newIdempotencyRouter(t, uuid.New())
		post(r, "/fail", "k2", `{}`)
		post(r, "/fail", "k2", `{}`)
		assert.Equal(t, 2, *calls)
	})

	t.Run("request in progress", func(t *testing.T) {
		userID := uuid.New()
		r, _, mr := newIdempotencyRouter(t, userID)

		// Simulate a concurrent request holding the lock.
		probe := gin.New()
		var lockKey string
		probe.POST("/boards", func(c *gin.Context) {
			c.Set(UserIDKey, userID)
			lockKey = idempotencyCacheKey(c, "k3") + ":lock"
		})
		post(probe, "/boards", "", "")
		require.NoError(t, mr.Set(lockKey, "1"))

		w := post(r, "/boards", "k3", `{}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("keys are per user", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		defer mr.Close()
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		calls := 0
		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set(UserIDKey, uuid.MustParse(c.GetHeader("X-User"))) })
		r.Use(Idempotency(rdb, IdempotencyConfig{}))
		r.POST("/boards", func(c *gin.Context) {
			calls++
			c.String(http.StatusCreated, strconv.Itoa(calls))
		})

		for _, user := range []string{uuid.NewString(), uuid.NewString()} {
			req := httptest.NewRequest(http.MethodPost, "/boards", strings.NewReader(`{}`))
			req.Header.Set("X-User", user)
			req.Header.Set(IdempotencyKeyHeader, "same")
			r.ServeHTTP(httptest.NewRecorder(), req)
		}
		assert.Equal(t, 2, calls)
	})

	t.Run("nil client passes through", func(t *testing.T) {
		r := gin.New()
		r.Use(Idempotency(nil, DefaultIdempotencyConfig()))
		r.POST("/boards", func(c *gin.Context) { c.Status(http.StatusCreated) })
		assert.Equal(t, http.StatusCreated, post(r, "/boards", "k", `{}`).Code)
	})
}
