package redis

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Blacklist Token 黑名单
type Blacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// NewBlacklist Redis 可用时以 Redis 为主、进程内存兜底；client 为 nil 时仅使用内存
func NewBlacklist(client *Client, logger *zap.Logger) Blacklist {
	mem := NewMemoryBlacklist()
	if client == nil {
		return mem
	}
	return &fallbackBlacklist{primary: client, memory: mem, logger: logger}
}

// ── 内存黑名单 ──

// MemoryBlacklist 进程内黑名单，过期条目在读写时顺带清理
type MemoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryBlacklist 创建内存黑名单
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	m.entries[jti] = m.now().Add(ttl)
	return nil
}

func (m *MemoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if !m.now().Before(exp) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

func (m *MemoryBlacklist) sweepLocked() {
	now := m.now()
	for k, exp := range m.entries {
		if !now.Before(exp) {
			delete(m.entries, k)
		}
	}
}

// ── Redis + 内存兜底 ──

type fallbackBlacklist struct {
	primary *Client
	memory  *MemoryBlacklist
	logger  *zap.Logger
}

func (f *fallbackBlacklist) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := f.primary.BlacklistToken(ctx, jti, ttl); err != nil {
		f.logger.Warn("Redis 写入黑名单失败，降级为内存黑名单", zap.Error(err))
		return f.memory.BlacklistToken(ctx, jti, ttl)
	}
	return nil
}

func (f *fallbackBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	if hit, _ := f.memory.IsBlacklisted(ctx, jti); hit {
		return true, nil
	}
	hit, err := f.primary.IsBlacklisted(ctx, jti)
	if err != nil {
		f.logger.Warn("Redis 查询黑名单失败", zap.Error(err))
		return false, nil
	}
	return hit, nil
}
