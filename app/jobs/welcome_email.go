// Package jobs holds the background jobs the shop queues.
package jobs

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/pkg/queue"
)

const WelcomeEmailName = "welcome_email"

// WelcomeSender is the part of notifications.Notifier the job needs.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, user models.User) error
}

// WelcomeEmail mails a new user. It carries the username and address so the
// worker does not need the credential store.
type WelcomeEmail struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`

	sender WelcomeSender
}

func (j *WelcomeEmail) Name() string { return WelcomeEmailName }

func (j *WelcomeEmail) Handle(ctx context.Context) error {
	if j.sender == nil {
		return fmt.Errorf("jobs: %s has no sender", WelcomeEmailName)
	}
	return j.sender.SendWelcome(ctx, models.User{ID: j.UserID, Username: j.Username, Email: j.Email})
}

// Register binds every job type to q.
func Register(q *queue.Manager, sender WelcomeSender) {
	q.Register(WelcomeEmailName, func() queue.Job { return &WelcomeEmail{sender: sender} })
}

// Welcomer queues a WelcomeEmail for each registration.
type Welcomer struct {
	q *queue.Manager
}

func NewWelcomer(q *queue.Manager) *Welcomer { return &Welcomer{q: q} }

func (w *Welcomer) Welcome(ctx context.Context, user models.User) error {
	return w.q.Dispatch(ctx, &WelcomeEmail{UserID: user.ID, Username: user.Username, Email: user.Email})
}
