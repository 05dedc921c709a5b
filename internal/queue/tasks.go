package queue

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/desi-etsy/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOTPPurge 验证码到期清理任务
	TaskOTPPurge = constants.TaskOTPPurge

	otpPurgeMaxRetry = 3
	otpPurgeTimeout  = 10 * time.Second
)

// OTPPurgePayload 验证码清理任务载荷，仅当记录仍为该 code 时才删除
type OTPPurgePayload struct {
	Identity string `json:"identity"`
	Code     string `json:"code"`
}

// NewOTPPurgeTask 创建验证码清理任务
func NewOTPPurgeTask(payload OTPPurgePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOTPPurge, body), nil
}

// ParseOTPPurgePayload 解析验证码清理任务载荷
func ParseOTPPurgePayload(body []byte) (OTPPurgePayload, error) {
	var payload OTPPurgePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	if strings.TrimSpace(payload.Identity) == "" || payload.Code == "" {
		return payload, errors.New("otp purge payload is incomplete")
	}
	return payload, nil
}
