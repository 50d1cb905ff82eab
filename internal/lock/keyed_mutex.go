package lock

import (
	"context"
	"strings"
	"sync"
)

// KeyedMutex 进程内按键互斥
// 每个键对应一个容量为 1 的通道，无人引用时回收
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
	opts    Options
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex 创建进程内锁
func NewKeyedMutex(opts Options) *KeyedMutex {
	return &KeyedMutex{
		entries: make(map[string]*keyedEntry),
		opts:    opts.normalize(),
	}
}

// Lock 获取键锁
func (m *KeyedMutex) Lock(ctx context.Context, key string) (Unlock, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrLockKeyRequired
	}
	entry := m.acquireEntry(key)

	waitCtx, cancel := waitContext(ctx, m.opts.Wait)
	defer cancel()

	select {
	case entry.ch <- struct{}{}:
	case <-waitCtx.Done():
		m.releaseEntry(key, entry)
		if ctx != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.ch
			m.releaseEntry(key, entry)
		})
	}, nil
}

func (m *KeyedMutex) acquireEntry(key string) *keyedEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		entry = &keyedEntry{ch: make(chan struct{}, 1)}
		m.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (m *KeyedMutex) releaseEntry(key string, entry *keyedEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.refs--
	if entry.refs <= 0 {
		delete(m.entries, key)
	}
}

// size 当前持有或等待中的键数量
func (m *KeyedMutex) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
