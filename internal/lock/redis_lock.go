package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mealbasket/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisPollInterval = 50 * time.Millisecond

// releaseScript 持有者一致时才删除，比较与删除在同一次调用内完成
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisStore RedisLocker 依赖的最小命令集
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ReleaseIfOwner(ctx context.Context, key, owner string) (bool, error)
}

// RedisLocker 基于 SETNX + TTL 的分布式锁，多实例部署时使用
type RedisLocker struct {
	store  redisStore
	prefix string
	opts   Options
}

// NewRedisLocker 创建分布式锁
func NewRedisLocker(client *redis.Client, prefix string, opts Options) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	return newRedisLocker(&clientStore{client: client}, prefix, opts), nil
}

func newRedisLocker(store redisStore, prefix string, opts Options) *RedisLocker {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "mb"
	}
	return &RedisLocker{store: store, prefix: prefix, opts: opts.normalize()}
}

// Lock 轮询 SETNX 直到拿到锁
func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrLockKeyRequired
	}
	fullKey := fmt.Sprintf("%s:lock:%s", l.prefix, key)
	owner := uuid.NewString()

	waitCtx, cancel := waitContext(ctx, l.opts.Wait)
	defer cancel()

	ticker := time.NewTicker(redisPollInterval)
	defer ticker.Stop()
	for {
		ok, err := l.store.SetNX(waitCtx, fullKey, owner, l.opts.TTL)
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("setnx: %w", err)
		}
		if ok {
			return l.unlockFunc(fullKey, owner), nil
		}
		select {
		case <-waitCtx.Done():
			if ctx != nil && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) unlockFunc(fullKey, owner string) Unlock {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		if err := l.release(context.Background(), fullKey, owner); err != nil {
			logger.Warnw("lock_release_failed", "key", fullKey, "error", err)
		}
	}
}

// release 仅在持有者一致时删除；锁已过期或被他人持有时不做任何事
func (l *RedisLocker) release(ctx context.Context, fullKey, owner string) error {
	released, err := l.store.ReleaseIfOwner(ctx, fullKey, owner)
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if !released {
		logger.Debugw("lock_release_skipped_not_owner", "key", fullKey)
	}
	return nil
}

type clientStore struct {
	client *redis.Client
}

func (s *clientStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *clientStore) ReleaseIfOwner(ctx context.Context, key, owner string) (bool, error) {
	deleted, err := releaseScript.Run(ctx, s.client, []string{key}, owner).Int64()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}
