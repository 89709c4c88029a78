package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogFileName is the file created under log_path when file logging is enabled
const LogFileName = "gtkup.log"

type preLogEntry struct {
	level slog.Level
	msg   string
}

var (
	mu          sync.RWMutex
	level       = new(slog.LevelVar)
	logger      = slog.New(newHandler(os.Stderr, false))
	logFile     *os.File
	initialized bool

	preLogs     []preLogEntry
	preLogLevel = slog.LevelDebug
)

// ParseLevel converts a configuration log level into a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (expected debug, info, warn or error)", s)
	}
}

func newHandler(w io.Writer, json bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	// Timestamps are already added by CI log viewers
	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	}
	return slog.NewTextHandler(w, opts)
}

// InitLogger configures the global logger and flushes messages captured by PreLog.
// When logPath is set, output is also appended to logPath/gtkup.log.
func InitLogger(logPath, logLevel string, json bool) error {
	lvl, err := ParseLevel(logLevel)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stderr
	var file *os.File
	if logPath != "" {
		if err := os.MkdirAll(logPath, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err = os.OpenFile(filepath.Join(logPath, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, file)
	}

	mu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = file
	level.Set(lvl)
	logger = slog.New(newHandler(out, json))
	initialized = true
	pending := preLogs
	preLogs = nil
	threshold := preLogLevel
	mu.Unlock()

	for _, entry := range pending {
		if entry.level >= threshold {
			current().Log(context.Background(), entry.level, entry.msg)
		}
	}
	return nil
}

// SetOutput replaces the logger destination. Used by tests.
func SetOutput(w io.Writer, logLevel string, json bool) error {
	lvl, err := ParseLevel(logLevel)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	level.Set(lvl)
	logger = slog.New(newHandler(w, json))
	initialized = true
	return nil
}

// Close releases the log file opened by InitLogger, if any
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// SetPreLogLevel filters PreLog messages that are flushed by InitLogger
func SetPreLogLevel(logLevel string) {
	lvl, err := ParseLevel(logLevel)
	if err != nil {
		return
	}
	mu.Lock()
	preLogLevel = lvl
	mu.Unlock()
}

// PreLog records a message emitted before the logger is configured.
// Once InitLogger has run it behaves like the regular Log functions.
func PreLog(levelName, format string, args ...any) {
	lvl, err := ParseLevel(levelName)
	if err != nil {
		lvl = slog.LevelInfo
	}
	msg := fmt.Sprintf(format, args...)

	mu.Lock()
	if !initialized {
		preLogs = append(preLogs, preLogEntry{level: lvl, msg: msg})
		mu.Unlock()
		return
	}
	mu.Unlock()
	current().Log(context.Background(), lvl, msg)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// With returns the configured logger annotated with the given attributes
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// LogDebug logs a formatted debug message
func LogDebug(format string, args ...any) {
	current().Debug(fmt.Sprintf(format, args...))
}

// LogInfo logs a formatted info message
func LogInfo(format string, args ...any) {
	current().Info(fmt.Sprintf(format, args...))
}

// LogWarn logs a formatted warning
func LogWarn(format string, args ...any) {
	current().Warn(fmt.Sprintf(format, args...))
}

// LogError logs a formatted error message
func LogError(format string, args ...any) {
	current().Error(fmt.Sprintf(format, args...))
}
