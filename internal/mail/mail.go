// Package mail 封装外部邮件投递。
package mail

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrMailerDisabled 邮件服务未启用
	ErrMailerDisabled = errors.New("mailer disabled")
	// ErrMailerNotConfigured 邮件服务缺少必要配置
	ErrMailerNotConfigured = errors.New("mailer not configured")
	// ErrRecipientRejected 收件人被服务器拒绝
	ErrRecipientRejected = errors.New("mail recipient rejected")
	// ErrNoRecipient 未指定收件人
	ErrNoRecipient = errors.New("mail recipient is required")
)

// Message 待投递的邮件
type Message struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
}

// Mailer 邮件投递方，Send 返回 nil 表示已交给中继
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailerFunc 函数形式的 Mailer
type MailerFunc func(ctx context.Context, msg Message) error

// Send 调用函数本身
func (f MailerFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// normalizeSendError 将中继返回的收件人错误归一化
func normalizeSendError(err error) error {
	if err == nil {
		return nil
	}
	if isRecipientRejected(err) {
		return errors.Join(ErrRecipientRejected, err)
	}
	return err
}

func isRecipientRejected(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	for _, keyword := range []string{
		"no such recipient",
		"no such user",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown mailbox",
		"mailbox unavailable",
	} {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		for _, hint := range []string{"recipient", "user", "mailbox", "rcpt"} {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
