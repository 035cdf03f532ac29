package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	redispkg "payroll-chain.backend/pkg/redis"
)

func setupIdempotencyRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv := miniredis.RunT(t)
	cli := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	redispkg.SetClient(cli)
	t.Cleanup(func() { _ = cli.Close() })
	return srv
}

func idempotentRouter(calls *int32, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyMiddleware())
	r.POST("/runs", func(c *gin.Context) {
		atomic.AddInt32(calls, 1)
		c.JSON(status, gin.H{"success": true, "data": gin.H{"attempt": atomic.LoadInt32(calls)}})
	})
	return r
}

func TestIdempotencyMiddleware_NoHeaderPassthrough(t *testing.T) {
	setupIdempotencyRedis(t)
	var calls int32
	r := idempotentRouter(&calls, http.StatusCreated)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/runs", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	require.Equal(t, int32(2), calls)
}

func TestIdempotencyMiddleware_ReplaysCapturedResponse(t *testing.T) {
	setupIdempotencyRedis(t)
	var calls int32
	r := idempotentRouter(&calls, http.StatusCreated)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/runs", nil)
	req.Header.Set(IdempotencyHeader, "idem-1")
	r.ServeHTTP(first, req)
	require.Equal(t, http.StatusCreated, first.Code)
	require.Empty(t, first.Header().Get("X-Idempotency-Hit"))

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/runs", nil)
	req.Header.Set(IdempotencyHeader, "idem-1")
	r.ServeHTTP(second, req)

	// The handler did not run again; the stored body was replayed.
	require.Equal(t, int32(1), calls)
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	require.Equal(t, first.Body.String(), second.Body.String())
}

func TestIdempotencyMiddleware_InFlightConflict(t *testing.T) {
	srv := setupIdempotencyRedis(t)
	require.NoError(t, srv.Set("idempotency:00000000-0000-0000-0000-000000000000:idem-2", "processing"))

	var calls int32
	r := idempotentRouter(&calls, http.StatusCreated)

	req := httptest.NewRequest(http.MethodPost, "/runs", nil)
	req.Header.Set(IdempotencyHeader, "idem-2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "already in progress")
	require.Equal(t, int32(0), calls)
}

func TestIdempotencyMiddleware_FailuresAreNotCached(t *testing.T) {
	setupIdempotencyRedis(t)
	var calls int32
	r := idempotentRouter(&calls, http.StatusBadGateway)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/runs", nil)
		req.Header.Set(IdempotencyHeader, "idem-3")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadGateway, w.Code)
	}
	// The key was released after the first failure, so both attempts ran.
	require.Equal(t, int32(2), calls)
}

func TestIdempotencyMiddleware_RedisDownPassthrough(t *testing.T) {
	cli := redisv9.NewClient(&redisv9.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
	})
	redispkg.SetClient(cli)
	t.Cleanup(func() { _ = cli.Close() })

	var calls int32
	r := idempotentRouter(&calls, http.StatusCreated)

	req := httptest.NewRequest(http.MethodPost, "/runs", nil)
	req.Header.Set(IdempotencyHeader, "idem-4")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, int32(1), calls)
}
