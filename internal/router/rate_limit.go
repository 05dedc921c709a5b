package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/desi-etsy/internal/http/response"
	"github.com/desi-etsy/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

// RateLimiter 限流判定，返回是否放行以及需要等待的秒数
type RateLimiter interface {
	Allow(ctx context.Context, key string, rule RateLimitRule) (bool, int, error)
}

var errRateLimitResult = errors.New("unexpected rate limit script result")

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RedisRateLimiter 基于 Redis 的固定窗口限流，多实例共享计数
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter 创建 Redis 限流器
func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client}
}

// Allow 计数并判断是否超限
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, int, error) {
	result, err := rateLimitScript.Run(ctx, l.client, []string{key}, rule.WindowSeconds).Result()
	if err != nil {
		return false, 0, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return false, 0, errRateLimitResult
	}
	count, ok := toInt64(values[0])
	if !ok {
		return false, 0, errRateLimitResult
	}
	ttlSeconds, _ := toInt64(values[1])
	if count <= int64(rule.MaxRequests) {
		return true, 0, nil
	}
	waitSeconds := int(ttlSeconds)
	if waitSeconds < 1 {
		waitSeconds = rule.WindowSeconds
	}
	return false, waitSeconds, nil
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalRateLimiter 进程内令牌桶限流，未启用 Redis 时使用
type LocalRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*localBucket
	now     func() time.Time
	calls   int
}

const localRateLimiterPruneEvery = 1024

// NewLocalRateLimiter 创建进程内限流器
func NewLocalRateLimiter() *LocalRateLimiter {
	return &LocalRateLimiter{
		buckets: make(map[string]*localBucket),
		now:     time.Now,
	}
}

// Allow 每个 key 一个令牌桶：窗口内最多 MaxRequests 次，按均匀速率回填
func (l *LocalRateLimiter) Allow(_ context.Context, key string, rule RateLimitRule) (bool, int, error) {
	now := l.now()
	window := time.Duration(rule.WindowSeconds) * time.Second

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%localRateLimiterPruneEvery == 0 {
		l.prune(now, window)
	}

	bucket, ok := l.buckets[key]
	if !ok {
		every := window / time.Duration(rule.MaxRequests)
		bucket = &localBucket{limiter: rate.NewLimiter(rate.Every(every), rule.MaxRequests)}
		l.buckets[key] = bucket
	}
	bucket.lastSeen = now

	reservation := bucket.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, rule.WindowSeconds, nil
	}
	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return true, 0, nil
	}
	reservation.CancelAt(now)
	return false, int(math.Ceil(delay.Seconds())), nil
}

// prune 清理长时间未访问的 key
func (l *LocalRateLimiter) prune(now time.Time, window time.Duration) {
	for key, bucket := range l.buckets {
		if now.Sub(bucket.lastSeen) > 2*window {
			delete(l.buckets, key)
		}
	}
}

// RateLimitMiddleware 频率限制中间件
func RateLimitMiddleware(limiter RateLimiter, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !rule.enabled() {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		allowed, waitSeconds, err := limiter.Allow(c.Request.Context(), key, rule)
		if err != nil {
			// 限流存储不可用时放行
			logger.Warnw("rate_limit_unavailable", "key", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", waitSeconds))
			response.Message(c, response.CodeTooManyRequests, fmt.Sprintf("Too many requests, retry in %ds", waitSeconds))
			c.Abort()
			return
		}

		c.Next()
	}
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
