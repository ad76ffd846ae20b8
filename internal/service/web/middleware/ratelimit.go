package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solutions/job-portal/internal/common/utils"
	"github.com/solutions/job-portal/internal/protodef/model"
)

// Limiter 固定窗口计数限流。
type Limiter interface {
	Allow(key string, limit int, window time.Duration) bool
}

// MemoryLimiter 单进程内的限流计数。
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	now     func() time.Time
}

type rateBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*rateBucket), now: time.Now}
}

func (r *MemoryLimiter) Allow(key string, limit int, window time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	bucket, ok := r.buckets[key]
	if !ok || now.After(bucket.windowEnd) {
		r.buckets[key] = &rateBucket{count: 1, windowEnd: now.Add(window)}
		r.evict(now)
		return true
	}
	if bucket.count >= limit {
		return false
	}
	bucket.count++
	return true
}

// evict 清理已过期的窗口。
func (r *MemoryLimiter) evict(now time.Time) {
	if len(r.buckets) < 1024 {
		return
	}
	for key, bucket := range r.buckets {
		if now.After(bucket.windowEnd) {
			delete(r.buckets, key)
		}
	}
}

// NewLimiter 按配置创建限流器，未配置时返回 nil（不限流）。
func NewLimiter(conf *utils.RateLimitConfig) Limiter {
	if conf == nil {
		return nil
	}
	switch conf.Provider {
	case utils.RateLimitProviderMemory:
		return NewMemoryLimiter()
	case utils.RateLimitProviderRedis:
		if conf.Redis == nil || conf.Redis.Addr == "" {
			return NewMemoryLimiter()
		}
		return NewRedisLimiter(NewRedisClient(conf.Redis))
	}
	return nil
}

// RateLimit 按客户端 IP 与路由限流，超过限制返回 429。
func RateLimit(limiter Limiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 || window <= 0 {
			return
		}
		// ClientIP 只在请求来自可信代理时采用 X-Forwarded-For，可信代理由 engine.SetTrustedProxies 配置。
		key := "ratelimit:" + c.FullPath() + ":" + c.ClientIP()
		if !limiter.Allow(key, limit, window) {
			Logger(c).Infof("rate limited %s", key)
			abortWith(c, model.NewResponseErrorTooManyRequests())
		}
	}
}
