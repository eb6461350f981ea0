package mail

import (
	"context"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRawPrefersHTML(t *testing.T) {
	raw := string(buildRaw("Shop <shop@example.com>", Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Order",
		HTML:    "<b>hi</b>",
		Text:    "hi",
	}))

	assert.Contains(t, raw, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, raw, "Subject: Order\r\n")
	assert.Contains(t, raw, `Content-Type: text/html; charset="UTF-8"`)
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n<b>hi</b>"))
}

func TestBuildRawFallsBackToText(t *testing.T) {
	raw := string(buildRaw("x", Message{To: []string{"a@example.com"}, Text: "plain"}))
	assert.Contains(t, raw, "text/plain")
	assert.True(t, strings.HasSuffix(raw, "plain"))
}

func TestRenderEscapes(t *testing.T) {
	tmpl := template.Must(template.New("t").Parse(`<p>{{.}}</p>`))
	out, err := Render(tmpl, "<script>")
	require.NoError(t, err)
	assert.Equal(t, "<p>&lt;script&gt;</p>", out)
}

func TestSMTPRequiresRecipients(t *testing.T) {
	err := NewSMTP(SMTP{Host: "localhost", Port: "2525"}).Send(context.Background(), Message{})
	assert.Error(t, err)
}

func TestLogMailerNeverFails(t *testing.T) {
	assert.NoError(t, LogMailer{}.Send(context.Background(), Message{To: []string{"a@example.com"}}))
}
