// Package debuglog writes leveled diagnostics to a file. The terminal
// belongs to the interface, so nothing is ever written to stdout or stderr.
package debuglog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF", "":
		return LevelOff
	default:
		return LevelInfo
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelError + 100
	}
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	levelVar     slog.LevelVar
	logger       = slog.New(slog.DiscardHandler)
	logFile      *os.File
)

// DefaultPath is the log file used when Setup is given none.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".kbsearch", "kbsearch.log")
}

// Setup configures the logging system with the specified level and optional file path.
func Setup(level LogLevel, filePath ...string) error {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = level
	levelVar.Set(level.slogLevel())

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	if level == LevelOff {
		logger = slog.New(slog.DiscardHandler)
		return nil
	}

	logPath := DefaultPath()
	if len(filePath) > 0 && filePath[0] != "" {
		logPath = filePath[0]
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger = slog.New(slog.DiscardHandler)
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	logFile = f
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: &levelVar})).With("app", "kbsearch")
	return nil
}

// SetLevel changes the current logging level
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
	levelVar.Set(level.slogLevel())
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Logger returns the structured logger for injection into components.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Close closes the log file if open
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.DiscardHandler)
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

func logf(l *slog.Logger, level LogLevel, format string, args ...any) {
	if !l.Enabled(context.Background(), level.slogLevel()) {
		return
	}
	l.Log(context.Background(), level.slogLevel(), fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...any) {
	logf(Logger(), LevelDebug, format, args...)
}

func Infof(format string, args ...any) {
	logf(Logger(), LevelInfo, format, args...)
}

func Warnf(format string, args ...any) {
	logf(Logger(), LevelWarn, format, args...)
}

func Errorf(format string, args ...any) {
	logf(Logger(), LevelError, format, args...)
}

// FieldLogger attaches key-value fields to every message.
type FieldLogger struct {
	fields map[string]any
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]any) *FieldLogger {
	return &FieldLogger{fields: fields}
}

func (fl *FieldLogger) logger() *slog.Logger {
	keys := make([]string, 0, len(fl.fields))
	for k := range fl.fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	args := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, fl.fields[k])
	}
	return Logger().With(args...)
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	logf(fl.logger(), LevelDebug, format, args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	logf(fl.logger(), LevelInfo, format, args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	logf(fl.logger(), LevelWarn, format, args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	logf(fl.logger(), LevelError, format, args...)
}
