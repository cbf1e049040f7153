package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSetupWriter_WithModule(t *testing.T) { //nolint:paralleltest // mutates the default logger
	previous := slog.Default()
	defer slog.SetDefault(previous)

	var buf bytes.Buffer

	SetupWriter(&buf, "warn")

	WithModule("canvas").Info("hidden")
	WithModule("canvas").Warn("shown", "node", "approval-1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "module=canvas")
	assert.Contains(t, out, "node=approval-1")
}
