package lock

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrLockTimeout 等待锁超时
	ErrLockTimeout = errors.New("lock wait timeout")
	// ErrLockKeyRequired 锁键为空
	ErrLockKeyRequired = errors.New("lock key is required")
)

const (
	defaultTTL  = 15 * time.Second
	defaultWait = 5 * time.Second
)

// Unlock 释放锁，重复调用无副作用
type Unlock func()

// Locker 按键互斥
// 同一键在持有期间，其他调用方阻塞等待，直到拿到锁、ctx 结束或等待超时
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// Options 锁参数
type Options struct {
	TTL  time.Duration // 持锁上限，仅分布式实现使用
	Wait time.Duration // 最长等待时间
}

func (o Options) normalize() Options {
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	if o.Wait <= 0 {
		o.Wait = defaultWait
	}
	return o
}

func waitContext(ctx context.Context, wait time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= wait {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, wait)
}
