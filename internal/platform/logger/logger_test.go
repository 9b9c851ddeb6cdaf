package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/spellcheck/internal/config"
	"github.com/phrazzld/spellcheck/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefault(t *testing.T) {
	t.Helper()
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
}

func TestSetup_JSON(t *testing.T) {
	restoreDefault(t)

	var buf bytes.Buffer
	log, err := logger.Setup(config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	require.NotNil(t, log)

	log.Debug("hidden")
	log.Info("spelling check finished", "misspelled", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug is filtered at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "spelling check finished", entry["msg"])
	assert.Equal(t, float64(2), entry["misspelled"])
	assert.Same(t, log, slog.Default())
}

func TestSetup_Text(t *testing.T) {
	restoreDefault(t)

	var buf bytes.Buffer
	log, err := logger.Setup(config.LogConfig{Level: "DEBUG", Format: "text"}, &buf)
	require.NoError(t, err)

	log.Debug("queue closed", "remaining", 0)
	assert.Contains(t, buf.String(), "msg=\"queue closed\"")
	assert.Contains(t, buf.String(), "remaining=0")
}

func TestSetup_InvalidLevelFallsBack(t *testing.T) {
	restoreDefault(t)

	var buf bytes.Buffer
	log, err := logger.Setup(config.LogConfig{Level: "invalid_level", Format: "json"}, &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "invalid log level configured")
	assert.Contains(t, output, "invalid_level")

	buf.Reset()
	log.Debug("debug test message")
	log.Info("info test message")
	assert.NotContains(t, buf.String(), "debug test message")
	assert.Contains(t, buf.String(), "info test message")
}

func TestSetup_InvalidFormat(t *testing.T) {
	_, err := logger.Setup(config.LogConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"Info", slog.LevelInfo, true},
		{"WARN", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"fatal", slog.LevelInfo, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := logger.ParseLevel(tc.name)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestFromContextOrDefault(t *testing.T) {
	defaultLogger := slog.Default()
	customLogger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tests := []struct {
		name     string
		ctx      context.Context
		expected *slog.Logger
	}{
		{
			name:     "nil_context_returns_default",
			ctx:      nil,
			expected: defaultLogger,
		},
		{
			name:     "context_without_logger_returns_default",
			ctx:      context.Background(),
			expected: defaultLogger,
		},
		{
			name:     "context_with_logger_returns_context_logger",
			ctx:      logger.WithLogger(context.Background(), customLogger),
			expected: customLogger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			//nolint:staticcheck // nil context is part of the contract
			result := logger.FromContextOrDefault(tt.ctx, defaultLogger)
			assert.Same(t, tt.expected, result)
		})
	}
}

func TestWithLogger(t *testing.T) {
	customLogger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := logger.WithLogger(context.Background(), customLogger)
	assert.Same(t, customLogger, logger.FromContextOrDefault(ctx, slog.Default()))

	assert.Panics(t, func() {
		logger.WithLogger(context.Background(), nil)
	})
}
