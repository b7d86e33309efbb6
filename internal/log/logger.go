// Package log configures the process-wide slog logger.
//
// Logs go to stderr, or to a size-rotated file when File is set.
// Library packages accept a *slog.Logger and fall back to slog.Default,
// which Init replaces.
package log

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization.
// Values can be provided directly or via environment variables:
//   - QUILL_LOG_LEVEL=debug|info|warn|error
//   - QUILL_LOG_FORMAT=text|json
//   - QUILL_LOG_FILE=<path> (enables file logging with rotation)
//   - QUILL_LOG_SOURCE=true|false
type Options struct {
	Level     string
	Format    string // "text" or "json"
	AddSource bool

	// File enables rotated file logging instead of Writer.
	File       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days

	// Writer receives logs when File is empty. Defaults to os.Stderr.
	Writer io.Writer
}

var (
	mu      sync.Mutex
	current io.Closer
)

// New builds a logger. The returned closer releases the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer) {
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level), AddSource: opts.AddSource}

	var (
		w      = opts.Writer
		closer io.Closer = nopCloser{}
	)
	if strings.TrimSpace(opts.File) != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSize, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAge, 28),
			Compress:   true,
		}
		w, closer = lj, lj
	}
	if w == nil {
		w = os.Stderr
	}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}
	return slog.New(h).With(slog.String("app", "quill")), closer
}

// Init installs a logger built from opts as slog.Default, closing the
// file of any previous Init.
func Init(opts Options) *slog.Logger {
	logger, closer := New(opts)

	mu.Lock()
	if current != nil {
		_ = current.Close()
	}
	current = closer
	mu.Unlock()

	slog.SetDefault(logger)
	return logger
}

// Close releases the file opened by Init.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return nil
	}
	err := current.Close()
	current = nil
	return err
}

// FromEnv builds Options from QUILL_LOG_* environment variables.
func FromEnv() Options {
	source, _ := strconv.ParseBool(os.Getenv("QUILL_LOG_SOURCE"))
	return Options{
		Level:     getenv("QUILL_LOG_LEVEL", "info"),
		Format:    getenv("QUILL_LOG_FORMAT", "text"),
		File:      os.Getenv("QUILL_LOG_FILE"),
		AddSource: source,
	}
}

// WithComponent returns the default logger with the component attribute set.
func WithComponent(name string) *slog.Logger {
	return slog.Default().With(slog.String("component", name))
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
