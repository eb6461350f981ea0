// Package notification routes a notification to the channels it asks for.
//
//	type OrderShipped struct{ Order models.Purchase }
//	func (n OrderShipped) Via() []string { return []string{"mail"} }
//	func (n OrderShipped) ToMail() (notification.MailData, error) { ... }
//
//	err := sender.Send(ctx, "user@example.com", OrderShipped{...})
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpclient "github.com/shashiranjanraj/sweetshop/pkg/http"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/mail"
)

const (
	ChannelMail    = "mail"
	ChannelWebhook = "webhook"
)

// ------------------- Channel data structs -------------------

// MailData carries the data needed to send an email notification.
type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	Body    string // HTML
	Text    string // plain-text fallback
}

// WebhookData carries an arbitrary JSON payload to POST to a URL.
type WebhookData struct {
	URL     string
	Payload interface{}
	Headers map[string]string
}

// ------------------- Notification interface -------------------

// Notification is the interface every notification must satisfy.
type Notification interface {
	// Via returns the channel names: "mail", "webhook".
	Via() []string
}

// Mailable can be implemented to support the mail channel.
type Mailable interface {
	ToMail() (MailData, error)
}

// Webhookable can be implemented to support the webhook channel.
type Webhookable interface {
	ToWebhook() WebhookData
}

// ------------------- Sender -------------------

// Sender delivers notifications over mail and outgoing webhooks.
type Sender struct {
	mailer   mail.Mailer
	webhooks *httpclient.Client
}

const (
	webhookAttempts = 3
	webhookBackoff  = 250 * time.Millisecond
)

// NewSender builds a sender. A nil client gets a 10 second timeout.
// Webhooks are retried on network errors and 5xx.
func NewSender(mailer mail.Mailer, client *http.Client) *Sender {
	return &Sender{mailer: mailer, webhooks: httpclient.New(client)}
}

// Send dispatches n through every channel returned by Via(). address is the
// recipient for the mail channel. Channel failures are joined.
func (s *Sender) Send(ctx context.Context, address string, n Notification) error {
	var errs []error
	for _, channel := range n.Via() {
		if err := s.dispatch(ctx, address, channel, n); err != nil {
			logger.WithCtx(ctx).Error("notification: channel failed",
				"channel", channel, "notification", fmt.Sprintf("%T", n), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Sender) dispatch(ctx context.Context, address, channel string, n Notification) error {
	switch channel {
	case ChannelMail:
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		d, err := m.ToMail()
		if err != nil {
			return fmt.Errorf("notification: build mail: %w", err)
		}
		return s.sendMail(ctx, address, d)

	case ChannelWebhook:
		wh, ok := n.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Webhookable", n)
		}
		return s.sendWebhook(ctx, wh.ToWebhook())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

// ------------------- Mail channel -------------------

func (s *Sender) sendMail(ctx context.Context, address string, d MailData) error {
	if s.mailer == nil {
		return fmt.Errorf("notification: no mailer configured")
	}
	to := d.To
	if to == "" {
		to = address
	}
	if to == "" {
		return fmt.Errorf("notification: mail has no recipient")
	}

	return s.mailer.Send(ctx, mail.Message{
		To:      []string{to},
		Subject: d.Subject,
		HTML:    d.Body,
		Text:    d.Text,
	})
}

// ------------------- Webhook channel -------------------

func (s *Sender) sendWebhook(ctx context.Context, d WebhookData) error {
	if d.URL == "" {
		return fmt.Errorf("notification: webhook URL is empty")
	}

	req := s.webhooks.Post(d.URL).Body(d.Payload).Retry(webhookAttempts, webhookBackoff)
	for k, v := range d.Headers {
		req.Header(k, v)
	}
	if _, err := req.Send(ctx); err != nil {
		return fmt.Errorf("notification: webhook: %w", err)
	}
	return nil
}
