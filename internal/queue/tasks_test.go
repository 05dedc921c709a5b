package queue

import (
	"testing"
	"time"

	"github.com/desi-etsy/internal/config"
)

func TestOTPPurgeTaskRoundTrip(t *testing.T) {
	task, err := NewOTPPurgeTask(OTPPurgePayload{Identity: "a@x.com", Code: "012345"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskOTPPurge {
		t.Fatalf("task type want %s got %s", TaskOTPPurge, task.Type())
	}
	payload, err := ParseOTPPurgePayload(task.Payload())
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.Identity != "a@x.com" || payload.Code != "012345" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestParseOTPPurgePayloadRejectsIncomplete(t *testing.T) {
	cases := []string{`{}`, `{"identity":"a@x.com"}`, `{"code":"1"}`, `not-json`}
	for _, raw := range cases {
		if _, err := ParseOTPPurgePayload([]byte(raw)); err == nil {
			t.Fatalf("payload %s should be rejected", raw)
		}
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueOTPPurge("a@x.com", "1", time.Minute); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("addr want 127.0.0.1:6379 got %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected server config %+v", cfg)
	}
	if cfg.Logger == nil || cfg.ErrorHandler == nil || cfg.ShutdownTimeout != workerShutdownTimeout {
		t.Fatalf("server config should carry logger, error handler and shutdown timeout")
	}
}

func TestBuildServerConfigOverrides(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{
		Host:        "redis.internal",
		Port:        6380,
		Password:    "secret",
		DB:          2,
		Concurrency: 3,
		Queues:      map[string]int{"critical": 6, DefaultQueue: 1},
	})
	if opt.Addr != "redis.internal:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt %+v", opt)
	}
	if cfg.Concurrency != 3 || cfg.Queues["critical"] != 6 {
		t.Fatalf("unexpected server config %+v", cfg)
	}
}
