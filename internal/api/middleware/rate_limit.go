package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chefbot/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Limiter 限流器介面，key 通常為用戶端 IP
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// bucket 令牌桶
type bucket struct {
	tokens   float64
	lastTime time.Time
}

// MemoryLimiter 單機令牌桶限流器，每個 key 各自一個桶
type MemoryLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity float64
	rate     float64 // 每秒補充的令牌數
	window   time.Duration
	now      func() time.Time
}

// maxIdleBuckets 超過此數量時清除閒置的桶
const maxIdleBuckets = 10000

// NewMemoryLimiter 創建新的限流器
func NewMemoryLimiter(requests int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		buckets:  make(map[string]*bucket),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		window:   window,
		now:      time.Now,
	}
}

// Allow 檢查是否允許請求
func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		if len(rl.buckets) >= maxIdleBuckets {
			rl.evictIdle(now)
		}
		b = &bucket{tokens: rl.capacity, lastTime: now}
		rl.buckets[key] = b
	}

	// 添加新令牌
	elapsed := now.Sub(b.lastTime).Seconds()
	b.tokens = min(rl.capacity, b.tokens+elapsed*rl.rate)
	b.lastTime = now

	// 檢查是否有可用令牌
	if b.tokens >= 1 {
		b.tokens--
		return true, nil
	}
	return false, nil
}

// evictIdle 移除超過一個視窗未使用的桶（此時桶必定已補滿）
func (rl *MemoryLimiter) evictIdle(now time.Time) {
	for k, b := range rl.buckets {
		if now.Sub(b.lastTime) > rl.window {
			delete(rl.buckets, k)
		}
	}
}

// RedisLimiter 以 Redis 固定視窗計數的共享限流器，多個實例共用額度
type RedisLimiter struct {
	client   *redis.Client
	requests int64
	window   time.Duration
	prefix   string
	now      func() time.Time
}

// NewRedisLimiter 創建 Redis 限流器
func NewRedisLimiter(client *redis.Client, requests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		requests: int64(requests),
		window:   window,
		prefix:   "chefbot:ratelimit:",
		now:      time.Now,
	}
}

// Allow 檢查是否允許請求
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := rl.now().UnixNano() / int64(rl.window)
	redisKey := fmt.Sprintf("%s%s:%d", rl.prefix, key, slot)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to update rate limit counter: %w", err)
	}

	return incr.Val() <= rl.requests, nil
}

// RateLimit 限流中間件；限流器本身出錯時放行請求
func RateLimit(limiter Limiter, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 以用戶端 IP 計算額度
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			common.LogWarn("Rate limiter unavailable, allowing request",
				zap.Error(err),
				zap.String("ip", c.ClientIP()),
			)
			c.Next()
			return
		}

		// 超過額度
		if !allowed {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			common.WriteErrorText(c, common.ErrTooManyRequests.Status, common.ErrTooManyRequests.Message)
			return
		}

		c.Next()
	}
}
