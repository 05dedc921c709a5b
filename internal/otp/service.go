package otp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desi-etsy/internal/constants"
	"github.com/desi-etsy/internal/logger"
	"github.com/desi-etsy/internal/mail"
)

// Options 签发参数
type Options struct {
	TTL          time.Duration
	SendInterval time.Duration
	From         string
	BrandName    string
	Clock        Clock
	Codes        CodeGenerator
}

// IssueResult 签发结果
type IssueResult struct {
	Dispatched bool
	ExpiresAt  time.Time
}

// Service 验证码签发与校验
type Service struct {
	store  Store
	mailer mail.Mailer
	purger Purger
	opts   Options
}

// NewService 创建验证码服务
func NewService(store Store, mailer mail.Mailer, purger Purger, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = constants.OTPDefaultTTLSeconds * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Codes == nil {
		opts.Codes = RandomCode
	}
	if strings.TrimSpace(opts.BrandName) == "" {
		opts.BrandName = constants.OTPDefaultBrandName
	}
	if purger == nil {
		purger = NoopPurger{}
	}
	return &Service{store: store, mailer: mailer, purger: purger, opts: opts}
}

// TTL 验证码有效期
func (s *Service) TTL() time.Duration {
	return s.opts.TTL
}

// Issue 生成验证码并投递，投递成功后才写入存储。
// 开始签发后不再跟随调用方取消，避免邮件已送达而验证码未落库
func (s *Service) Issue(ctx context.Context, identity string) (*IssueResult, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, ErrInvalidIdentity
	}
	ctx = context.WithoutCancel(ctx)
	now := s.opts.Clock.Now()

	if s.opts.SendInterval > 0 {
		existing, err := s.store.Get(ctx, identity)
		if err != nil {
			return nil, err
		}
		if existing != nil && !existing.Expired(now) && now.Sub(existing.IssuedAt) < s.opts.SendInterval {
			return nil, ErrIssueTooFrequent
		}
	}

	code, err := s.opts.Codes()
	if err != nil {
		return nil, err
	}
	msg, err := buildMessage(s.opts.From, s.opts.BrandName, identity, code, s.opts.TTL)
	if err != nil {
		return nil, fmt.Errorf("render otp email: %w", err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Warnw("otp_dispatch_failed", "identity", identity, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrDispatch, err)
	}

	record := Record{
		Identity:  identity,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.opts.TTL),
	}
	if err := s.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}
	if err := s.purger.SchedulePurge(ctx, record); err != nil {
		logger.Warnw("otp_schedule_purge_failed", "identity", identity, "error", err)
	}
	logger.Infow("otp_issued", "identity", identity, "expires_at", record.ExpiresAt)
	return &IssueResult{Dispatched: true, ExpiresAt: record.ExpiresAt}, nil
}

// Verify 校验验证码，成功即消费
func (s *Service) Verify(ctx context.Context, identity, code string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ErrNotFound
	}
	record, err := s.store.Get(ctx, identity)
	if err != nil {
		return err
	}
	if record.Expired(s.opts.Clock.Now()) {
		logger.Infow("otp_verify_not_found", "identity", identity)
		return ErrNotFound
	}
	if record.Code != code {
		logger.Infow("otp_verify_mismatch", "identity", identity)
		return ErrMismatch
	}
	removed, err := s.store.DeleteIfMatch(ctx, identity, code)
	if err != nil {
		return err
	}
	if !removed {
		logger.Infow("otp_verify_consumed_concurrently", "identity", identity)
		return ErrNotFound
	}
	logger.Infow("otp_verified", "identity", identity)
	return nil
}
