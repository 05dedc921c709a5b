package otp

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const memoryShardCount = 32

type memoryShard struct {
	mu      sync.Mutex
	records map[string]Record
}

// MemoryStore 进程内分片存储，单实例部署与测试使用
type MemoryStore struct {
	shards [memoryShardCount]*memoryShard
}

// NewMemoryStore 创建进程内存储
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i] = &memoryShard{records: make(map[string]Record)}
	}
	return s
}

func (s *MemoryStore) shard(identity string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	return s.shards[h.Sum32()%memoryShardCount]
}

// Put 写入记录
func (s *MemoryStore) Put(_ context.Context, record Record) error {
	sh := s.shard(record.Identity)
	sh.mu.Lock()
	sh.records[record.Identity] = record
	sh.mu.Unlock()
	return nil
}

// Get 读取记录副本
func (s *MemoryStore) Get(_ context.Context, identity string) (*Record, error) {
	sh := s.shard(identity)
	sh.mu.Lock()
	record, ok := sh.records[identity]
	sh.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Delete 删除记录
func (s *MemoryStore) Delete(_ context.Context, identity string) error {
	sh := s.shard(identity)
	sh.mu.Lock()
	delete(sh.records, identity)
	sh.mu.Unlock()
	return nil
}

// DeleteIfMatch 验证码一致时删除
func (s *MemoryStore) DeleteIfMatch(_ context.Context, identity, code string) (bool, error) {
	sh := s.shard(identity)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	record, ok := sh.records[identity]
	if !ok || record.Code != code {
		return false, nil
	}
	delete(sh.records, identity)
	return true, nil
}

// Sweep 清理所有在 now 时刻已过期的记录
func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	for _, sh := range s.shards {
		sh.mu.Lock()
		for identity, record := range sh.records {
			if record.Expired(now) {
				delete(sh.records, identity)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed, nil
}

// Len 当前记录数（含尚未清理的过期记录）
func (s *MemoryStore) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += len(sh.records)
		sh.mu.Unlock()
	}
	return total
}
