package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/interfaces/http/response"
	"payroll-chain.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// lockDuration bounds how long a key stays locked while the first
	// request is still processing.
	lockDuration = 30 * time.Second
	// retentionDuration is how long a captured response is replayed.
	retentionDuration = 24 * time.Hour

	processingMarker = "processing"
)

type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the captured response for a repeated
// Idempotency-Key instead of re-running the mutation. A request without the
// header passes through untouched. Keys are scoped per admin.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		adminID, _ := GetAdminID(c)
		storageKey := fmt.Sprintf("idempotency:%s:%s", adminID, key)
		ctx := c.Request.Context()

		val, err := redis.Get(ctx, storageKey)
		switch {
		case err == nil && val == processingMarker:
			response.AbortError(c, domainerrors.Conflict("request with this idempotency key is already in progress"))
			return
		case err == nil:
			status, body := splitStoredResponse(val)
			c.Header("Content-Type", "application/json")
			c.Header("X-Idempotency-Hit", "true")
			c.String(status, body)
			c.Abort()
			return
		case !errors.Is(err, goredis.Nil):
			// Redis unavailable: serve without the guarantee rather than
			// refuse the request.
			c.Next()
			return
		}

		acquired, err := redis.SetNX(ctx, storageKey, processingMarker, lockDuration)
		if err != nil || !acquired {
			response.AbortError(c, domainerrors.Conflict("request with this idempotency key is already in progress"))
			return
		}

		w := &captureWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			stored := strconv.Itoa(status) + "\n" + w.body.String()
			_ = redis.Set(ctx, storageKey, stored, retentionDuration)
		} else {
			// Failed attempts release the key so the caller can retry.
			_ = redis.Del(ctx, storageKey)
		}
	}
}

func splitStoredResponse(val string) (int, string) {
	parts := strings.SplitN(val, "\n", 2)
	if len(parts) == 2 {
		if status, err := strconv.Atoi(parts[0]); err == nil {
			return status, parts[1]
		}
	}
	return http.StatusOK, val
}
