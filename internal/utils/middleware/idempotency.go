package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/flowspace/server/internal/shared/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyKeyHeader is the header for idempotency key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the cache.
	IdempotencyReplayedHeader = "Idempotent-Replayed"

	idempotencyKeyPrefix  = "flowspace:idempotency:"
	defaultIdempotencyTTL = 24 * time.Hour
	idempotencyLockTTL    = 30 * time.Second
)

// IdempotencyConfig holds idempotency middleware configuration.
type IdempotencyConfig struct {
	// TTL is how long a stored response is replayed.
	TTL time.Duration
	// Methods the middleware applies to. Default: POST, PUT, PATCH.
	Methods []string
}

// DefaultIdempotencyConfig returns the default idempotency configuration.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     defaultIdempotencyTTL,
		Methods: []string{http.MethodPost, http.MethodPut, http.MethodPatch},
	}
}

type storedResponse struct {
	StatusCode  int    `json:"statusCode"`
	ContentType string `json:"contentType"`
	BodyHash    string `json:"bodyHash"`
	Body        []byte `json:"body"`
}

type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a mutation retried with the
// same Idempotency-Key by the same user. Keys are scoped to user, route
// and method. Reusing a key with a different body is rejected with 422.
// Requests without the header pass through, as does everything when Redis
// fails.
func Idempotency(rdb redis.Cmdable, cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultIdempotencyTTL
	}
	if len(cfg.Methods) == 0 {
		cfg.Methods = DefaultIdempotencyConfig().Methods
	}
	methods := make(map[string]bool, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods[m] = true
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if rdb == nil || key == "" || !methods[c.Request.Method] {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := idempotencyCacheKey(c, key)
		bodyHash, err := hashBody(c)
		if err != nil {
			response.AbortWithCode(c, http.StatusBadRequest, "validation_error", "unreadable request body")
			return
		}

		if stored, err := loadResponse(ctx, rdb, cacheKey); err == nil {
			if stored.BodyHash != bodyHash {
				response.AbortWithCode(c, http.StatusUnprocessableEntity, "idempotency_key_reused",
					"Idempotency-Key was already used with a different request body")
				return
			}
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(stored.StatusCode, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		locked, err := rdb.SetNX(ctx, cacheKey+":lock", "1", idempotencyLockTTL).Result()
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}
		if !locked {
			response.AbortWithCode(c, http.StatusConflict, "request_in_progress",
				"A request with this Idempotency-Key is already being processed")
			return
		}
		defer rdb.Del(context.WithoutCancel(ctx), cacheKey+":lock")

		w := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Next()

		// Server errors are not stored so the client can retry them.
		status := w.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		stored := &storedResponse{
			StatusCode:  status,
			ContentType: w.Header().Get("Content-Type"),
			BodyHash:    bodyHash,
			Body:        w.body.Bytes(),
		}
		if err := storeResponse(context.WithoutCancel(ctx), rdb, cacheKey, stored, cfg.TTL); err != nil {
			_ = c.Error(err)
		}
	}
}

func idempotencyCacheKey(c *gin.Context, key string) string {
	scope := "ip:" + c.ClientIP()
	if id := GetUserID(c); id != uuid.Nil {
		scope = "user:" + id.String()
	}
	sum := sha256.Sum256([]byte(scope + "|" + c.Request.Method + "|" + c.Request.URL.Path + "|" + key))
	return idempotencyKeyPrefix + hex.EncodeToString(sum[:])
}

// hashBody reads the body and puts it back for the handler.
func hashBody(c *gin.Context) (string, error) {
	if c.Request.Body == nil {
		return "", nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func loadResponse(ctx context.Context, rdb redis.Cmdable, key string) (*storedResponse, error) {
	data, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var resp storedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func storeResponse(ctx context.Context, rdb redis.Cmdable, key string, resp *storedResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, data, ttl).Err()
}
