package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRateLimitedHandler(t *testing.T, limit int) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	config := RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            time.Minute,
		KeyPrefix:         "test_rate_limit",
	}
	return RateLimitMiddleware(client, config, zap.NewNop())(okHandler()), mr
}

func hit(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/checkout?id=1&stock=1", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// Feature: storefront, Property: rate limiting blocks excessive requests
func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("excessive requests are blocked with 429", prop.ForAll(
		func(requestsPerWindow int, excessRequests int) bool {
			handler, _ := newRateLimitedHandler(t, requestsPerWindow)

			successCount, blockedCount := 0, 0
			for i := 0; i < requestsPerWindow+excessRequests; i++ {
				switch hit(handler, "192.168.1.100:5000").Code {
				case http.StatusOK:
					successCount++
				case http.StatusTooManyRequests:
					blockedCount++
				}
			}
			return successCount == requestsPerWindow && blockedCount == excessRequests
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimit_PortsShareOneBucket(t *testing.T) {
	handler, _ := newRateLimitedHandler(t, 2)

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:2222").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "10.0.0.1:3333").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.2:1111").Code)
}

func TestRateLimit_HeadersAndWindowReset(t *testing.T) {
	handler, mr := newRateLimitedHandler(t, 1)

	w := hit(handler, "10.0.0.9:80")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = hit(handler, "10.0.0.9:80")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.9:80").Code)
}

func TestRateLimit_FailsOpenWithoutRedis(t *testing.T) {
	handler, mr := newRateLimitedHandler(t, 1)
	mr.Close()

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.3:80").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.3:80").Code)
}
