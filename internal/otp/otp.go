// Package otp 实现邮箱一次性验证码的签发与校验。
//
// 每个身份（邮箱）同一时刻至多存在一条有效记录；新的签发会覆盖旧记录，
// 校验成功后记录立即删除。过期以读取时的时间判断为准，后台清理只是优化。
package otp

import (
	"context"
	"errors"
	"time"
)

// CodeLength 验证码位数
const CodeLength = 6

var (
	// ErrInvalidIdentity 身份为空
	ErrInvalidIdentity = errors.New("otp identity is required")
	// ErrDispatch 邮件投递失败，此时不会写入任何记录
	ErrDispatch = errors.New("otp dispatch failed")
	// ErrNotFound 记录不存在、已过期或已被消费
	ErrNotFound = errors.New("otp not found or expired")
	// ErrMismatch 记录有效但验证码不一致
	ErrMismatch = errors.New("otp code mismatch")
	// ErrIssueTooFrequent 同一身份签发过于频繁
	ErrIssueTooFrequent = errors.New("otp issued too frequently")
)

// IsVerificationError 判断是否为校验类失败（不存在或不匹配）
func IsVerificationError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrMismatch)
}

// Record 一条待校验的验证码
type Record struct {
	Identity  string    `json:"identity"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired 判断记录在 now 时刻是否已不可用
func (r *Record) Expired(now time.Time) bool {
	return r == nil || !now.Before(r.ExpiresAt)
}

// TTL 记录的完整有效期
func (r *Record) TTL() time.Duration {
	if r == nil {
		return 0
	}
	return r.ExpiresAt.Sub(r.IssuedAt)
}

// Store 验证码存储。
// 同一身份上的写入与删除必须是原子的，不同身份之间互不阻塞。
type Store interface {
	// Put 写入记录，无条件替换该身份已有的记录
	Put(ctx context.Context, record Record) error
	// Get 读取记录，不存在时返回 nil
	Get(ctx context.Context, identity string) (*Record, error)
	// Delete 删除该身份的记录
	Delete(ctx context.Context, identity string) error
	// DeleteIfMatch 仅当当前记录的验证码等于 code 时删除，返回是否删除
	DeleteIfMatch(ctx context.Context, identity, code string) (bool, error)
}

// Sweeper 支持批量清理过期记录的存储
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

// Clock 时间来源，测试中可替换
type Clock interface {
	Now() time.Time
}

// ClockFunc 函数形式的 Clock
type ClockFunc func() time.Time

// Now 返回当前时间
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock 系统时钟
var SystemClock Clock = ClockFunc(time.Now)
