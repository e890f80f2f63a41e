package lock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotAcquired = errors.New("资源正在被其他操作占用，请稍后重试")

// 只有持有者才能释放锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker 使用 SET NX PX 实现的互斥锁，TTL 到期后自动释放
type RedisLocker struct {
	client   redis.UniversalClient
	ttl      time.Duration
	wait     time.Duration
	interval time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		client:   client,
		ttl:      ttl,
		wait:     wait,
		interval: 50 * time.Millisecond,
	}
}

// Acquire 在 wait 时间内反复尝试加锁，超时返回 ErrNotAcquired
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if ok {
			return func() {
				// 请求的 ctx 可能已经结束，释放锁使用独立的 ctx
				releaseCtx, cancel := context.WithTimeout(context.Background(), l.wait)
				defer cancel()
				released, err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Int()
				if err != nil {
					slog.Warn("释放锁失败", "key", key, "error", err)
					return
				}
				if released == 0 {
					// 锁已过期或被其他请求持有
					slog.Warn("锁在释放前已失效", "key", key, "ttl", l.ttl)
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrNotAcquired
		case <-ticker.C:
		}
	}
}

// NopLocker 用于单进程单操作员部署，不提供任何互斥
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}
