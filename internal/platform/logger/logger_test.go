package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmelnik/taskboard-api/internal/config"
)

func TestSetupLevels(t *testing.T) {
	cases := []struct {
		configured string
		want       slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo}, // invalid falls back to info
	}

	for _, tc := range cases {
		t.Run(tc.configured, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{LogLevel: tc.configured})
			require.NoError(t, err)
			require.NotNil(t, logger)

			assert.True(t, logger.Enabled(context.Background(), tc.want))
			assert.False(t, logger.Enabled(context.Background(), tc.want-1))
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	// Without a stored logger, FromContext falls back to the default.
	assert.Equal(t, slog.Default(), FromContext(ctx))

	var buf bytes.Buffer
	stored := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx = WithLogger(ctx, stored)

	assert.Same(t, stored, FromContext(ctx))
	assert.Same(t, stored, FromContextOrDefault(ctx, slog.Default()))

	// FromContextOrDefault prefers the provided fallback over the process
	// default when the context carries nothing.
	fallback := slog.New(slog.NewJSONHandler(&buf, nil))
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Equal(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
}
