// Package mail sends HTML email over SMTP.
//
//	m := mail.FromConfig()
//	err := m.Send(ctx, mail.Message{
//	    To:      []string{"user@example.com"},
//	    Subject: "Your order",
//	    HTML:    body,
//	})
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

// Mailer delivers a message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one email. HTML wins over Text when both are set.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// SMTP holds connection credentials (populated from env/config).
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func configSMTP() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", "smtp.mailtrap.io"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "orders@sweetshop.local"),
		FromName: config.Get("MAIL_FROM_NAME", "Sweet Shop"),
	}
}

// FromConfig returns an SMTP mailer, or a LogMailer when MAIL_USERNAME is
// unset so development setups do not need a mail server.
func FromConfig() Mailer {
	cfg := configSMTP()
	if cfg.Username == "" {
		return LogMailer{}
	}
	return NewSMTP(cfg)
}

// ------------------- SMTP -------------------

type SMTPMailer struct {
	cfg SMTP
}

func NewSMTP(cfg SMTP) *SMTPMailer { return &SMTPMailer{cfg: cfg} }

// Send delivers msg. Port 465 uses implicit TLS; other ports use STARTTLS
// when the server offers it.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: no recipients")
	}

	cfg := m.cfg
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	raw := buildRaw(fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From), msg)
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	var (
		conn net.Conn
		err  error
	)
	if cfg.Port == "465" {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: cfg.Host}}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mail: handshake: %w", err)
	}
	defer client.Close()

	if cfg.Port != "465" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				return fmt.Errorf("mail: starttls: %w", err)
			}
		}
	}
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("mail: auth: %w", err)
	}
	if err := client.Mail(cfg.From); err != nil {
		return fmt.Errorf("mail: from: %w", err)
	}
	for _, to := range msg.To {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("mail: rcpt %s: %w", to, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("mail: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mail: close data: %w", err)
	}
	return client.Quit()
}

func buildRaw(from string, msg Message) []byte {
	contentType, body := "text/html", msg.HTML
	if body == "" {
		contentType, body = "text/plain", msg.Text
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// ------------------- Log -------------------

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.WithCtx(ctx).Info("mail not sent (MAIL_USERNAME unset)",
		"to", strings.Join(msg.To, ","), "subject", msg.Subject)
	return nil
}

// ------------------- Templates -------------------

// Render executes tmpl with data.
func Render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
