package otp

import (
	"context"
	"errors"
	"time"

	"github.com/desi-etsy/internal/logger"
)

// Janitor 周期性清理过期记录，作为定时器清理之外的兜底
type Janitor struct {
	sweeper  Sweeper
	interval time.Duration
	clock    Clock
	done     chan struct{}
}

// NewJanitor 创建清理服务
func NewJanitor(sweeper Sweeper, interval time.Duration, clock Clock) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Janitor{sweeper: sweeper, interval: interval, clock: clock, done: make(chan struct{})}
}

// Name 服务名称
func (j *Janitor) Name() string {
	return "otp_janitor"
}

// Start 阻塞运行直到 ctx 取消或 Stop 被调用
func (j *Janitor) Start(ctx context.Context) error {
	if j == nil || j.sweeper == nil {
		return errors.New("otp janitor not initialized")
	}
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-j.done:
			return nil
		case <-ticker.C:
			j.SweepOnce(ctx)
		}
	}
}

// Stop 停止服务
func (j *Janitor) Stop(context.Context) error {
	if j == nil {
		return nil
	}
	select {
	case <-j.done:
	default:
		close(j.done)
	}
	return nil
}

// SweepOnce 执行一次清理
func (j *Janitor) SweepOnce(ctx context.Context) int64 {
	removed, err := j.sweeper.Sweep(ctx, j.clock.Now())
	if err != nil {
		logger.Warnw("otp_janitor_sweep_failed", "error", err)
		return 0
	}
	if removed > 0 {
		logger.Debugw("otp_janitor_sweep_done", "removed", removed)
	}
	return removed
}
