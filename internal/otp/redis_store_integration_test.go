//go:build integration
// +build integration

package otp

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// setupRedisIntegrationStore 初始化 Redis 集成测试存储。
func setupRedisIntegrationStore(t *testing.T) *RedisStore {
	t.Helper()

	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("skip redis integration test: TEST_REDIS_ADDR is empty")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping redis failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "otp-it-"+uuid.NewString(), nil)
}

func TestRedisStoreIntegration(t *testing.T) {
	store := setupRedisIntegrationStore(t)
	ctx := context.Background()
	now := time.Now()

	record := Record{Identity: "a@x.com", Code: "012345", IssuedAt: now, ExpiresAt: now.Add(time.Minute)}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := store.Get(ctx, "a@x.com")
	if err != nil || got == nil || got.Code != "012345" {
		t.Fatalf("get want code 012345 got %+v err=%v", got, err)
	}

	ttl, err := store.client.PTTL(ctx, store.key("a@x.com")).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("key ttl should follow record expiry, got %v err=%v", ttl, err)
	}

	removed, err := store.DeleteIfMatch(ctx, "a@x.com", "999999")
	if err != nil || removed {
		t.Fatalf("mismatched delete want false got %v err=%v", removed, err)
	}
	removed, err = store.DeleteIfMatch(ctx, "a@x.com", "012345")
	if err != nil || !removed {
		t.Fatalf("matched delete want true got %v err=%v", removed, err)
	}
	if got, _ := store.Get(ctx, "a@x.com"); got != nil {
		t.Fatalf("record should be deleted, got %+v", got)
	}
}

func TestRedisStoreIntegrationServiceFlow(t *testing.T) {
	store := setupRedisIntegrationStore(t)
	mailer := &recordingMailer{}
	svc := NewService(store, mailer, NoopPurger{}, Options{TTL: time.Minute, Codes: sequenceCodes("654321")})
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "a@x.com"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if err := svc.Verify(ctx, "a@x.com", "654321"); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if err := svc.Verify(ctx, "a@x.com", "654321"); err == nil {
		t.Fatalf("second verify should fail")
	}
}
