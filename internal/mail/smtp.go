package mail

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/desi-etsy/internal/config"
	"github.com/desi-etsy/internal/logger"

	"gopkg.in/gomail.v2"
)

const defaultSendTimeout = 15 * time.Second

type sender interface {
	Send(ctx context.Context, m ...*gomail.Message) error
}

// SMTPMailer 基于 gomail 的 SMTP 投递实现
type SMTPMailer struct {
	cfg    config.EmailConfig
	dialer sender
}

// NewSMTPMailer 创建 SMTP 投递器；默认使用 Gmail 中继 + STARTTLS
func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	timeout := time.Duration(cfg.TimeoutS) * time.Second
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &SMTPMailer{
		cfg: cfg,
		dialer: &deadlineDialer{
			host:      cfg.Host,
			port:      cfg.Port,
			username:  cfg.Username,
			password:  cfg.Password,
			ssl:       cfg.UseSSL || cfg.Port == 465,
			tlsConfig: &tls.Config{ServerName: cfg.Host},
			timeout:   timeout,
		},
	}
}

// Send 投递邮件并等待中继返回结果，超时由连接截止时间控制
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.cfg.Enabled {
		return ErrMailerDisabled
	}
	if strings.TrimSpace(m.cfg.Host) == "" || m.cfg.Port == 0 {
		return ErrMailerNotConfigured
	}
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return ErrNoRecipient
	}
	from := strings.TrimSpace(msg.From)
	if from == "" {
		from = m.cfg.From
	}
	if from == "" {
		return ErrMailerNotConfigured
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", gm.FormatAddress(from, m.cfg.FromName))
	gm.SetHeader("To", to)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTMLBody)

	return normalizeSendError(m.dialer.Send(ctx, gm))
}

// deadlineDialer 整个 SMTP 会话共用一个连接截止时间，
// ctx 只作用于建连阶段，连接建立后的投递不会被中途放弃
type deadlineDialer struct {
	host      string
	port      int
	username  string
	password  string
	ssl       bool
	tlsConfig *tls.Config
	timeout   time.Duration
}

func (d *deadlineDialer) Send(ctx context.Context, msgs ...*gomail.Message) error {
	netDialer := net.Dialer{Timeout: d.timeout}
	conn, err := netDialer.DialContext(ctx, "tcp", net.JoinHostPort(d.host, strconv.Itoa(d.port)))
	if err != nil {
		return err
	}
	if err := conn.SetDeadline(time.Now().Add(d.timeout)); err != nil {
		_ = conn.Close()
		return err
	}
	if d.ssl {
		conn = tls.Client(conn, d.tlsConfig)
	}

	client, err := smtp.NewClient(conn, d.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer client.Close()

	if !d.ssl {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(d.tlsConfig); err != nil {
				return err
			}
		}
	}
	if d.username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", d.username, d.password, d.host)); err != nil {
				return err
			}
		}
	}

	send := gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		if err := client.Mail(from); err != nil {
			return err
		}
		for _, addr := range to {
			if err := client.Rcpt(addr); err != nil {
				return err
			}
		}
		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := msg.WriteTo(w); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	})
	if err := gomail.Send(send, msgs...); err != nil {
		return err
	}
	return client.Quit()
}

// LogMailer 仅记录日志不真正投递，供本地调试使用
type LogMailer struct{}

// Send 输出邮件摘要
func (LogMailer) Send(_ context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	logger.Infow("mail_debug_send",
		"to", msg.To,
		"subject", msg.Subject,
		"html_body", msg.HTMLBody,
	)
	return nil
}
