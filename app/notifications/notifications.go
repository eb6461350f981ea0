// Package notifications holds the messages the shop sends to customers and
// to the admin webhook.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/mail"
	"github.com/shashiranjanraj/sweetshop/pkg/notification"
	"github.com/shashiranjanraj/sweetshop/pkg/workerpool"
)

func formatINR(v float64) string {
	return "₹" + decimal.NewFromFloat(v).StringFixed(2)
}

// ------------------- Purchase confirmation -------------------

// PurchaseConfirmation is mailed to the buyer after a committed purchase.
type PurchaseConfirmation struct {
	User     models.User
	Purchase models.Purchase
}

func (PurchaseConfirmation) Via() []string { return []string{notification.ChannelMail} }

func (n PurchaseConfirmation) ToMail() (notification.MailData, error) {
	body, err := mail.Render(purchaseTmpl, struct {
		Username, SweetName, Date, PurchaseID string
		Quantity                              int
		Price, Total                          float64
	}{
		Username:   n.User.Username,
		SweetName:  n.Purchase.SweetName,
		Date:       n.Purchase.Timestamp.Format("January 02, 2006"),
		PurchaseID: n.Purchase.ID,
		Quantity:   n.Purchase.Quantity,
		Price:      n.Purchase.Price,
		Total:      n.Purchase.Total,
	})
	if err != nil {
		return notification.MailData{}, err
	}
	return notification.MailData{
		Subject: "Sweet Shop Purchase Confirmation",
		Body:    body,
		Text: fmt.Sprintf("Hi %s, you bought %d x %s for %s.",
			n.User.Username, n.Purchase.Quantity, n.Purchase.SweetName, formatINR(n.Purchase.Total)),
	}, nil
}

// ------------------- Admin sale webhook -------------------

// SaleRecorded is posted to ADMIN_WEBHOOK_URL for every purchase.
type SaleRecorded struct {
	URL      string
	User     models.User
	Purchase models.Purchase
}

func (SaleRecorded) Via() []string { return []string{notification.ChannelWebhook} }

func (n SaleRecorded) ToWebhook() notification.WebhookData {
	return notification.WebhookData{
		URL:     n.URL,
		Headers: map[string]string{"X-Sweetshop-Event": "purchase.created"},
		Payload: map[string]interface{}{
			"event":       "purchase.created",
			"purchase_id": n.Purchase.ID,
			"user_id":     n.User.ID,
			"username":    n.User.Username,
			"sweet_id":    n.Purchase.SweetID,
			"sweet_name":  n.Purchase.SweetName,
			"quantity":    n.Purchase.Quantity,
			"price":       n.Purchase.Price,
			"total":       n.Purchase.Total,
			"timestamp":   n.Purchase.Timestamp.Format(time.RFC3339),
		},
	}
}

// ------------------- Welcome -------------------

// Welcome is mailed once after registration.
type Welcome struct {
	User models.User
}

func (Welcome) Via() []string { return []string{notification.ChannelMail} }

func (n Welcome) ToMail() (notification.MailData, error) {
	body, err := mail.Render(welcomeTmpl, n.User)
	if err != nil {
		return notification.MailData{}, err
	}
	return notification.MailData{Subject: "Welcome to Sweet Shop!", Body: body}, nil
}

// ------------------- Notifier -------------------

// Notifier sends purchase confirmations. The buyer's mail decides the
// outcome; the admin webhook is best-effort and only logged.
type Notifier struct {
	sender     *notification.Sender
	webhookURL string
	pool       *workerpool.Pool
}

type NotifierOption func(*Notifier)

// WithWebhookPool posts the admin webhook from pool instead of the request
// goroutine. A full pool drops the webhook.
func WithWebhookPool(pool *workerpool.Pool) NotifierOption {
	return func(n *Notifier) { n.pool = pool }
}

func NewNotifier(sender *notification.Sender, adminWebhookURL string, opts ...NotifierOption) *Notifier {
	n := &Notifier{sender: sender, webhookURL: adminWebhookURL}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) PurchaseConfirmed(ctx context.Context, user models.User, purchase models.Purchase) error {
	if n.webhookURL != "" {
		n.postSale(ctx, SaleRecorded{URL: n.webhookURL, User: user, Purchase: purchase})
	}
	return n.sender.Send(ctx, user.Email, PurchaseConfirmation{User: user, Purchase: purchase})
}

func (n *Notifier) postSale(ctx context.Context, sale SaleRecorded) {
	log := logger.WithCtx(ctx).With("purchase_id", sale.Purchase.ID)
	send := func(ctx context.Context) {
		if err := n.sender.Send(ctx, "", sale); err != nil {
			log.Warn("admin sale webhook failed", "error", err)
		}
	}
	if n.pool == nil {
		send(ctx)
		return
	}
	if err := n.pool.Submit(send); err != nil {
		log.Warn("admin sale webhook dropped", "error", err)
	}
}

// SendWelcome mails the welcome message to user.
func (n *Notifier) SendWelcome(ctx context.Context, user models.User) error {
	return n.sender.Send(ctx, user.Email, Welcome{User: user})
}
