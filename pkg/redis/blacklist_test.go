package redis

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestMemoryBlacklist_RoundTrip(t *testing.T) {
	bl := NewMemoryBlacklist()
	ctx := context.Background()

	if err := bl.BlacklistToken(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("BlacklistToken 失败: %v", err)
	}

	hit, _ := bl.IsBlacklisted(ctx, "jti-1")
	if !hit {
		t.Error("期望 jti-1 在黑名单中")
	}
	hit, _ = bl.IsBlacklisted(ctx, "jti-2")
	if hit {
		t.Error("jti-2 不应在黑名单中")
	}
}

func TestMemoryBlacklist_Expiry(t *testing.T) {
	bl := NewMemoryBlacklist()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bl.now = func() time.Time { return now }
	ctx := context.Background()

	_ = bl.BlacklistToken(ctx, "jti-1", time.Minute)
	now = now.Add(2 * time.Minute)

	hit, _ := bl.IsBlacklisted(ctx, "jti-1")
	if hit {
		t.Error("过期条目不应命中")
	}
	if len(bl.entries) != 0 {
		t.Errorf("过期条目应被清理，剩余 %d", len(bl.entries))
	}
}

func TestMemoryBlacklist_NonPositiveTTL(t *testing.T) {
	bl := NewMemoryBlacklist()
	_ = bl.BlacklistToken(context.Background(), "jti-1", 0)
	if len(bl.entries) != 0 {
		t.Error("TTL<=0 时不应写入")
	}
}

func TestNewBlacklist_NilClientUsesMemory(t *testing.T) {
	bl := NewBlacklist(nil, zap.NewNop())
	if _, ok := bl.(*MemoryBlacklist); !ok {
		t.Errorf("期望 *MemoryBlacklist，实际 %T", bl)
	}
}
