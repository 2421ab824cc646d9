package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// LogLevel represents the available log levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Logger wraps slog with component tagging and intention helpers.
type Logger struct {
	*slog.Logger
}

// ParseLevel maps a LogLevel to slog; unknown values fall back to info.
func ParseLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger writing plain lines to stderr and structured
// lines to the relay log file.
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithConsoleWriter(level, os.Stderr)
}

// NewLoggerWithConsoleWriter builds a logger that writes console output to the given writer
func NewLoggerWithConsoleWriter(level LogLevel, consoleWriter io.Writer) *Logger {
	slogLevel := ParseLevel(level)

	if consoleWriter == nil {
		consoleWriter = os.Stderr
	}
	consoleHandler := newPlainHandler(consoleWriter, slogLevel)
	fileHandler := newFileTextHandler(slogLevel)

	return &Logger{Logger: slog.New(newMultiHandler(consoleHandler, fileHandler))}
}

// NewConsoleOnlyLogger skips the log file. Used by tests and CLI subcommands
// that should not touch the user's log directory.
func NewConsoleOnlyLogger(level LogLevel, consoleWriter io.Writer) *Logger {
	return &Logger{Logger: slog.New(newPlainHandler(consoleWriter, ParseLevel(level)))}
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() *Logger {
	return NewConsoleOnlyLogger(LogLevelError, io.Discard)
}

// WithComponent creates a logger with a component context for better tracing
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.With("component", component)}
}

// WithChannel tags log lines with the chat channel they concern.
func (l *Logger) WithChannel(channelID string) *Logger {
	return &Logger{Logger: l.With("channel", channelID)}
}

// LogWithIntention logs a message at the provided level with an intention tag.
func (l *Logger) LogWithIntention(level slog.Level, intention Intention, msg string, args ...any) {
	kv := append([]any{"intention", string(intention)}, args...)
	l.Log(context.Background(), level, msg, kv...)
}

func (l *Logger) InfoWithIntention(intention Intention, msg string, args ...any) {
	l.LogWithIntention(slog.LevelInfo, intention, msg, args...)
}

func (l *Logger) DebugWithIntention(intention Intention, msg string, args ...any) {
	l.LogWithIntention(slog.LevelDebug, intention, msg, args...)
}

// Default logger instance, replaced by SetGlobalLoggerWithConsoleWriter at startup
var Default = NewConsoleOnlyLogger(LogLevelInfo, os.Stderr)

// NewComponentLogger creates a new logger for a specific component
func NewComponentLogger(component string) *Logger {
	return Default.WithComponent(component)
}

// SetGlobalLoggerWithConsoleWriter replaces the global Default logger using the provided console writer
func SetGlobalLoggerWithConsoleWriter(level LogLevel, consoleWriter io.Writer) {
	Default = NewLoggerWithConsoleWriter(level, consoleWriter)
}

// LogFilePath returns ~/.klein/relay/logs/relay.log.
func LogFilePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".klein", "relay", "logs", "relay.log")
}

// newFileTextHandler opens the relay log file for append and returns a slog text handler
func newFileTextHandler(level slog.Level) slog.Handler {
	path := LogFilePath()
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{Key: "time", Value: slog.StringValue(a.Value.Time().Format("2006-01-02 15:04:05"))}
			}
			return a
		},
	}
	return slog.NewTextHandler(f, opts)
}
