package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "input %q", tt.in)
	}
}

func TestExtractorHandler(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}

	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, nil)
	log := slog.New(newExtractorHandler(base, func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := ctx.Value(ctxKey{}).(string); ok {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}))

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-42")
	log.InfoContext(ctx, "handled")
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)

	buf.Reset()
	log.InfoContext(context.Background(), "no id")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestExtractorHandlerNoExtractors(t *testing.T) {
	t.Parallel()

	base := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	// Without extractors the base handler is returned unwrapped.
	assert.Equal(t, slog.Handler(base), newExtractorHandler(base))
	assert.Equal(t, slog.Handler(base), newExtractorHandler(base, nil, nil))
}

func TestMultiHandler(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	log := slog.New(newMultiHandler(
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	log.Info("routine")
	log.Error("broken")

	assert.Contains(t, a.String(), "routine")
	assert.Contains(t, a.String(), "broken")
	assert.NotContains(t, b.String(), "routine")
	assert.Contains(t, b.String(), "broken")
}

func TestNoop(t *testing.T) {
	t.Parallel()

	log := Noop()
	require.NotNil(t, log)
	log.Info("goes nowhere")
}
