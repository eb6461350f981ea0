package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCtxFallsBackToBaseLogger(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))
}

func TestWithCtxReturnsInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	reqLog := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc123")

	ctx := InjectLogger(context.Background(), reqLog)
	WithCtx(ctx).Info("purchase recorded", "quantity", 2)

	assert.Contains(t, buf.String(), "request_id=abc123")
	assert.Contains(t, buf.String(), "quantity=2")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	log := slog.New(h).With("component", "inventory")

	log.Info("restocked")
	log.Warn("low stock")

	assert.Contains(t, a.String(), "restocked")
	assert.Contains(t, a.String(), "low stock")
	assert.NotContains(t, b.String(), "restocked")
	assert.Contains(t, b.String(), "component=inventory")
}
