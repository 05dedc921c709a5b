package worker

import (
	"context"
	"fmt"

	"github.com/desi-etsy/internal/logger"
	"github.com/desi-etsy/internal/otp"
	"github.com/desi-etsy/internal/provider"
	"github.com/desi-etsy/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOTPPurge, c.handleOTPPurge)
}

func (c *Consumer) handleOTPPurge(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_otp_purge_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOTPPurgePayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_otp_purge_invalid_payload", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if c.OTPStore == nil {
		logger.Warnw("worker_otp_purge_store_missing", "identity", payload.Identity)
		return nil
	}
	otp.Purge(ctx, c.OTPStore, payload.Identity, payload.Code)
	return nil
}
