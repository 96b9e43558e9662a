// Package mail delivers the rendered chronicle over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/elvenpost/chronicle/internal/retry"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string

	// Timeout bounds one delivery attempt end to end: dial, TLS, auth, and
	// message transfer all share a single connection deadline.
	Timeout time.Duration
}

type Mailer struct {
	cfg      Config
	attempts int
	delay    time.Duration

	// send is swapped in tests; defaults to sendSMTP.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func New(cfg Config, attempts int, delay time.Duration) *Mailer {
	if attempts < 1 {
		attempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	m := &Mailer{
		cfg:      cfg,
		attempts: attempts,
		delay:    delay,
	}
	m.send = m.sendSMTP
	return m
}

// Send delivers one HTML message. Only the send step is retried; the caller
// never re-gathers content for a failed delivery.
func (m *Mailer) Send(ctx context.Context, subject, htmlBody string) error {
	msg := BuildMessage(m.cfg.From, m.cfg.To, subject, htmlBody)

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	return retry.WithRetry(ctx, retry.RetryConfig{
		MaxAttempts: m.attempts,
		Delay:       m.delay,
		Backoff:     true,
	}, func() error {
		return m.send(addr, auth, m.cfg.From, []string{m.cfg.To}, []byte(msg))
	})
}

// sendSMTP speaks the SMTP session by hand instead of calling smtp.SendMail,
// which dials without a timeout and sets no deadlines. A server that accepts
// the connection and then goes silent fails the attempt at the deadline
// instead of blocking the run forever.
func (m *Mailer) sendSMTP(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	dialer := net.Dialer{Timeout: m.cfg.Timeout}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(m.cfg.Timeout)); err != nil {
		return fmt.Errorf("setting deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}

	return client.Quit()
}

// BuildMessage assembles the raw RFC 822 message with HTML headers.
func BuildMessage(from, to, subject, htmlBody string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.String()
}
