package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIHandler_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     slog.Level
		log       func(*slog.Logger)
		shouldLog bool
		color     string
	}{
		{"info logs info", slog.LevelInfo, func(l *slog.Logger) { l.Info("test") }, true, colorGreen},
		{"info filters debug", slog.LevelInfo, func(l *slog.Logger) { l.Debug("test") }, false, ""},
		{"debug logs debug", slog.LevelDebug, func(l *slog.Logger) { l.Debug("test") }, true, colorGreen},
		{"warn is yellow", slog.LevelInfo, func(l *slog.Logger) { l.Warn("test") }, true, colorYellow},
		{"error is red", slog.LevelInfo, func(l *slog.Logger) { l.Error("test") }, true, colorRed},
		{"error filters info", slog.LevelError, func(l *slog.Logger) { l.Info("test") }, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(slog.New(NewCLIHandler(&buf, tt.level)))

			assert.Equal(t, tt.shouldLog, buf.Len() > 0)
			if tt.shouldLog {
				assert.Contains(t, buf.String(), tt.color)
				assert.Contains(t, buf.String(), colorReset)
			}
		})
	}
}

func TestCLIHandler_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo).WithoutColor())

	logger.With("source", "mock").Info("scan", "records", 6)

	assert.Equal(t, "scan: source=mock records=6\n", buf.String())
}

func TestCLIHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := NewCLIHandler(&buf, slog.LevelInfo)

	assert.Equal(t, handler, handler.WithAttrs(nil))

	child := handler.WithAttrs([]slog.Attr{slog.String("key", "value")})
	require.NotEqual(t, handler, child)

	slog.New(handler).Info("parent")
	assert.NotContains(t, buf.String(), "key=value")

	buf.Reset()
	slog.New(child).Info("child")
	assert.Contains(t, buf.String(), "key=value")
}

func TestCLIHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo).WithoutColor()).WithGroup("server")

	logger.Info("hello", "port", 8080)

	assert.Equal(t, "[server] hello: server.port=8080\n", buf.String())
}

func TestCLIHandler_WithGroup_Empty(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewCLIHandler(&buf, slog.LevelInfo).WithGroup("")).Info("no prefix")

	assert.NotContains(t, buf.String(), "] no prefix")
	assert.Contains(t, buf.String(), "no prefix")
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "debug", "JSON").Debug("evaluated", "score", 95)

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "evaluated", m["msg"])
	assert.Equal(t, "DEBUG", m["level"])
	assert.InDelta(t, 95, m["score"], 0)
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "warn", "").Info("hidden")
	assert.Zero(t, buf.Len())
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	l := Setup("debug", FormatText)
	require.NotNil(t, l)
	assert.Equal(t, l, slog.Default())

	SetDefaultCLILogger("info")
	assert.NotEqual(t, l, slog.Default())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"  debug  ", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.input))
		})
	}
}
