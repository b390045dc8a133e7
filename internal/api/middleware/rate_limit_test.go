package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMemoryLimiter_RefillsOverWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewMemoryLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := rl.Allow(ctx, "1.2.3.4")
	assert.False(t, ok, "bucket should be empty")

	// 其他用戶端不受影響
	ok, _ = rl.Allow(ctx, "5.6.7.8")
	assert.True(t, ok)

	now = now.Add(30 * time.Second)
	ok, _ = rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "one token refilled after half a window")
	ok, _ = rl.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)
}

func TestMemoryLimiter_EvictsIdleBuckets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewMemoryLimiter(1, time.Second)
	rl.now = func() time.Time { return now }

	for i := 0; i < maxIdleBuckets; i++ {
		_, _ = rl.Allow(context.Background(), fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	require.Len(t, rl.buckets, maxIdleBuckets)

	now = now.Add(2 * time.Second)
	_, _ = rl.Allow(context.Background(), "fresh")
	assert.Len(t, rl.buckets, 1)
}

type erroringLimiter struct{}

func (erroringLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func newLimitedEngine(limiter Limiter) *gin.Engine {
	r := gin.New()
	r.Use(RateLimit(limiter, time.Minute))
	r.POST("/api/generate", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRateLimit_RejectsWith429(t *testing.T) {
	r := newLimitedEngine(NewMemoryLimiter(1, time.Minute))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "Trop de requêtes, réessayez plus tard.", w.Body.String())
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := newLimitedEngine(erroringLimiter{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	rl := NewRedisLimiter(client, 2, time.Minute)
	rl.prefix = "chefbot:test:" + t.Name() + ":"
	fixed := time.Now()
	rl.now = func() time.Time { return fixed }

	key := "10.0.0.1"
	redisKey := fmt.Sprintf("%s%s:%d", rl.prefix, key, fixed.UnixNano()/int64(time.Minute))
	defer client.Del(ctx, redisKey)

	ok, err := rl.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = rl.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = rl.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.TTL(ctx, redisKey).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
