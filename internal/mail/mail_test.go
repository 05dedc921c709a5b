package mail

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/desi-etsy/internal/config"

	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	err      error
	delay    time.Duration
	messages []*gomail.Message
}

func (f *fakeSender) Send(_ context.Context, m ...*gomail.Message) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.messages = append(f.messages, m...)
	return f.err
}

func newTestMailer(sender *fakeSender) *SMTPMailer {
	m := NewSMTPMailer(config.EmailConfig{
		Enabled:  true,
		Host:     "smtp.example.com",
		Port:     587,
		Username: "shop@example.com",
		From:     "shop@example.com",
		FromName: "Desi-Etsy",
	})
	m.dialer = sender
	return m
}

func TestSMTPMailerSend(t *testing.T) {
	sender := &fakeSender{}
	m := newTestMailer(sender)

	err := m.Send(context.Background(), Message{To: "a@x.com", Subject: "OTP", HTMLBody: "<p>123456</p>"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("messages want 1 got %d", len(sender.messages))
	}
	gm := sender.messages[0]
	if got := gm.GetHeader("To"); len(got) != 1 || got[0] != "a@x.com" {
		t.Fatalf("to header want a@x.com got %v", got)
	}
	if got := gm.GetHeader("From"); len(got) != 1 || !strings.Contains(got[0], "shop@example.com") {
		t.Fatalf("from header should default to configured sender, got %v", got)
	}
}

func TestSMTPMailerConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.EmailConfig
		msg  Message
		want error
	}{
		{
			name: "disabled",
			cfg:  config.EmailConfig{Enabled: false, Host: "h", Port: 25, From: "f@x.com"},
			msg:  Message{To: "a@x.com"},
			want: ErrMailerDisabled,
		},
		{
			name: "missing_host",
			cfg:  config.EmailConfig{Enabled: true, Port: 25, From: "f@x.com"},
			msg:  Message{To: "a@x.com"},
			want: ErrMailerNotConfigured,
		},
		{
			name: "missing_sender",
			cfg:  config.EmailConfig{Enabled: true, Host: "h", Port: 25},
			msg:  Message{To: "a@x.com"},
			want: ErrMailerNotConfigured,
		},
		{
			name: "missing_recipient",
			cfg:  config.EmailConfig{Enabled: true, Host: "h", Port: 25, From: "f@x.com"},
			msg:  Message{To: "  "},
			want: ErrNoRecipient,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewSMTPMailer(tc.cfg)
			m.dialer = &fakeSender{}
			if err := m.Send(context.Background(), tc.msg); !errors.Is(err, tc.want) {
				t.Fatalf("error want %v got %v", tc.want, err)
			}
		})
	}
}

func TestSMTPMailerRecipientRejected(t *testing.T) {
	sender := &fakeSender{err: errors.New("550 5.1.1 Recipient address rejected: user unknown")}
	m := newTestMailer(sender)

	err := m.Send(context.Background(), Message{To: "ghost@x.com"})
	if !errors.Is(err, ErrRecipientRejected) {
		t.Fatalf("error want ErrRecipientRejected got %v", err)
	}
}

func TestSMTPMailerWaitsForRelayAfterContextDone(t *testing.T) {
	sender := &fakeSender{delay: 100 * time.Millisecond}
	m := newTestMailer(sender)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := m.Send(ctx, Message{To: "a@x.com"}); err != nil {
		t.Fatalf("delivered message should not report failure, got %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("messages want 1 got %d", len(sender.messages))
	}
}

// stalledRelay 接受连接但从不发送问候语
func stalledRelay(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	var conns []net.Conn
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		<-done
		for _, conn := range conns {
			_ = conn.Close()
		}
	})
	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func TestDeadlineDialerStalledRelayTimesOut(t *testing.T) {
	host, port := stalledRelay(t)
	d := &deadlineDialer{host: host, port: port, timeout: 100 * time.Millisecond}

	start := time.Now()
	err := d.Send(context.Background(), gomail.NewMessage())
	if err == nil {
		t.Fatalf("stalled relay should fail")
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Fatalf("error want net timeout got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("send should stop at the connection deadline, took %s", elapsed)
	}
}

func TestDeadlineDialerCanceledBeforeDial(t *testing.T) {
	host, port := stalledRelay(t)
	d := &deadlineDialer{host: host, port: port, timeout: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Send(ctx, gomail.NewMessage()); !errors.Is(err, context.Canceled) {
		t.Fatalf("error want context canceled got %v", err)
	}
}

func TestNewSMTPMailerDialerSettings(t *testing.T) {
	m := NewSMTPMailer(config.EmailConfig{Enabled: true, Host: "smtp.gmail.com", Port: 465})
	d, ok := m.dialer.(*deadlineDialer)
	if !ok {
		t.Fatalf("dialer want *deadlineDialer got %T", m.dialer)
	}
	if !d.ssl || d.timeout != defaultSendTimeout || d.tlsConfig.ServerName != "smtp.gmail.com" {
		t.Fatalf("unexpected dialer settings %+v", d)
	}

	m = NewSMTPMailer(config.EmailConfig{Enabled: true, Host: "smtp.gmail.com", Port: 587, TimeoutS: 3})
	d = m.dialer.(*deadlineDialer)
	if d.ssl || d.timeout != 3*time.Second {
		t.Fatalf("starttls dialer unexpected settings %+v", d)
	}
}

func TestIsRecipientRejected(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{msg: "550 mailbox unavailable", want: true},
		{msg: "550 5.1.1 rcpt refused", want: true},
		{msg: "no such user here", want: true},
		{msg: "421 service not available", want: false},
		{msg: "dial tcp: i/o timeout", want: false},
	}
	for _, tc := range cases {
		if got := isRecipientRejected(errors.New(tc.msg)); got != tc.want {
			t.Fatalf("isRecipientRejected(%q) want %v got %v", tc.msg, tc.want, got)
		}
	}
}

func TestLogMailer(t *testing.T) {
	if err := (LogMailer{}).Send(context.Background(), Message{To: "a@x.com", Subject: "s"}); err != nil {
		t.Fatalf("log mailer send failed: %v", err)
	}
	if err := (LogMailer{}).Send(context.Background(), Message{}); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("log mailer without recipient want ErrNoRecipient got %v", err)
	}
}
