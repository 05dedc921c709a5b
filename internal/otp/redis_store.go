package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// 记录以 JSON 保存，比较 code 字段后再删除
var deleteIfMatchScript = redis.NewScript(`
local raw = redis.call("GET", KEYS[1])
if not raw then
	return 0
end
local record = cjson.decode(raw)
if record["code"] == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// RedisStore 基于 Redis 的共享存储，多实例部署使用。
// 键的过期时间等于记录有效期，因此 Redis 自身完成清理。
type RedisStore struct {
	client *redis.Client
	prefix string
	clock  Clock
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client, prefix string, clock Clock) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "desi"
	}
	if clock == nil {
		clock = SystemClock
	}
	return &RedisStore{client: client, prefix: prefix, clock: clock}
}

func (s *RedisStore) key(identity string) string {
	return fmt.Sprintf("%s:otp:email:%s", s.prefix, identity)
}

// Put 写入记录（SET PX 覆盖旧值）
func (s *RedisStore) Put(ctx context.Context, record Record) error {
	ttl := record.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return s.Delete(ctx, record.Identity)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(record.Identity), payload, ttl).Err()
}

// Get 读取记录
func (s *RedisStore) Get(ctx context.Context, identity string) (*Record, error) {
	raw, err := s.client.Get(ctx, s.key(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode otp record: %w", err)
	}
	return &record, nil
}

// Delete 删除记录
func (s *RedisStore) Delete(ctx context.Context, identity string) error {
	return s.client.Del(ctx, s.key(identity)).Err()
}

// DeleteIfMatch 通过 Lua 脚本原子地比较并删除
func (s *RedisStore) DeleteIfMatch(ctx context.Context, identity, code string) (bool, error) {
	n, err := deleteIfMatchScript.Run(ctx, s.client, []string{s.key(identity)}, code).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
