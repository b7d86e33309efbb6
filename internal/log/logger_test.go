package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewTextToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Options{Level: "warn", Writer: &buf})
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "k=v")
	assert.Contains(t, out, "app=quill")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Options{Level: "debug", Format: "JSON", Writer: &buf})
	logger.Debug("hello", slog.Int("n", 3))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, float64(3), rec["n"])
}

func TestFileLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.log")
	logger, closer := New(Options{Format: "json", File: path})

	logger.Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestInitSetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		_ = Close()
		slog.SetDefault(prev)
	})

	var buf bytes.Buffer
	Init(Options{Writer: &buf})
	WithComponent("test").Info("via default")

	assert.True(t, strings.Contains(buf.String(), "component=test"), buf.String())
	assert.NoError(t, Close())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("QUILL_LOG_LEVEL", "debug")
	t.Setenv("QUILL_LOG_FORMAT", "json")
	t.Setenv("QUILL_LOG_FILE", "/tmp/q.log")
	t.Setenv("QUILL_LOG_SOURCE", "true")

	opts := FromEnv()
	assert.Equal(t, Options{Level: "debug", Format: "json", File: "/tmp/q.log", AddSource: true}, opts)
}
