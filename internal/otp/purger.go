package otp

import (
	"context"
	"errors"
	"time"

	"github.com/desi-etsy/internal/logger"
)

// Purger 在记录到期后安排一次清理。
// 清理是纯优化：晚到或丢失都不影响正确性，读取时的过期判断才是权威。
type Purger interface {
	SchedulePurge(ctx context.Context, record Record) error
}

// NoopPurger 不做任何事，用于自带过期机制的存储（如 Redis）
type NoopPurger struct{}

// SchedulePurge 空实现
func (NoopPurger) SchedulePurge(context.Context, Record) error { return nil }

// TimerPurger 进程内定时器清理
type TimerPurger struct {
	store     Store
	afterFunc func(time.Duration, func())
}

// NewTimerPurger 创建定时器清理器
func NewTimerPurger(store Store) *TimerPurger {
	return &TimerPurger{
		store: store,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// SchedulePurge 到期后删除该条记录；若已被新签发覆盖则保持不动
func (p *TimerPurger) SchedulePurge(_ context.Context, record Record) error {
	if p == nil || p.store == nil {
		return nil
	}
	identity, code := record.Identity, record.Code
	p.afterFunc(record.TTL(), func() {
		purgeRecord(context.Background(), p.store, identity, code)
	})
	return nil
}

// PurgeEnqueuer 延迟清理任务的投递方
type PurgeEnqueuer interface {
	EnqueueOTPPurge(identity, code string, delay time.Duration) error
}

// QueuePurger 通过异步队列投递延迟清理任务，由 worker 执行
type QueuePurger struct {
	enqueuer PurgeEnqueuer
}

// NewQueuePurger 创建队列清理器
func NewQueuePurger(enqueuer PurgeEnqueuer) *QueuePurger {
	return &QueuePurger{enqueuer: enqueuer}
}

// SchedulePurge 投递延迟任务
func (p *QueuePurger) SchedulePurge(_ context.Context, record Record) error {
	if p == nil || p.enqueuer == nil {
		return errors.New("otp purge queue unavailable")
	}
	return p.enqueuer.EnqueueOTPPurge(record.Identity, record.Code, record.TTL())
}

// Purge 执行一次清理，供 worker 消费延迟任务时调用
func Purge(ctx context.Context, store Store, identity, code string) {
	purgeRecord(ctx, store, identity, code)
}

func purgeRecord(ctx context.Context, store Store, identity, code string) {
	removed, err := store.DeleteIfMatch(ctx, identity, code)
	if err != nil {
		logger.Warnw("otp_purge_failed", "identity", identity, "error", err)
		return
	}
	logger.Debugw("otp_purge_done", "identity", identity, "removed", removed)
}
