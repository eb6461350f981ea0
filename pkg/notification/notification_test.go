package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/pkg/mail"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type restocked struct {
	url string
}

func (n restocked) Via() []string { return []string{ChannelMail, ChannelWebhook} }

func (n restocked) ToMail() (MailData, error) {
	return MailData{Subject: "Back in stock", Body: "<p>Ladoo</p>"}, nil
}

func (n restocked) ToWebhook() WebhookData {
	return WebhookData{URL: n.url, Payload: map[string]int{"quantity": 6}, Headers: map[string]string{"X-Event": "restock"}}
}

func TestSendFansOutToEveryChannel(t *testing.T) {
	var got map[string]int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "restock", r.Header.Get("X-Event"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := &mockMailer{}
	m.On("Send", mock.Anything, mail.Message{
		To:      []string{"fan@example.com"},
		Subject: "Back in stock",
		HTML:    "<p>Ladoo</p>",
	}).Return(nil).Once()

	err := NewSender(m, srv.Client()).Send(context.Background(), "fan@example.com", restocked{url: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"quantity": 6}, got)
	m.AssertExpectations(t)
}

func TestSendJoinsChannelErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	smtpDown := errors.New("smtp down")
	m := &mockMailer{}
	m.On("Send", mock.Anything, mock.Anything).Return(smtpDown)

	err := NewSender(m, nil).Send(context.Background(), "fan@example.com", restocked{url: srv.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, smtpDown)
	assert.Contains(t, err.Error(), "returned 502")
}

type noWebhook struct{}

func (noWebhook) Via() []string { return []string{ChannelWebhook} }

func TestSendRejectsUnsupportedChannel(t *testing.T) {
	err := NewSender(nil, nil).Send(context.Background(), "", noWebhook{})
	assert.ErrorContains(t, err, "does not implement Webhookable")
}
