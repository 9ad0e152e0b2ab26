package domain

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents logging severity
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// ParseLogLevel maps a config string to a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger is a printf-style facade over zerolog
type Logger struct {
	zl zerolog.Logger
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  LogLevel
	Format string // json or console
	Output io.Writer
}

// NewLogger creates a new logger instance
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithConfig(LogConfig{Level: level, Format: "console"})
}

// NewLoggerWithConfig builds a logger writing to cfg.Output (stderr when nil).
func NewLoggerWithConfig(cfg LogConfig) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var zl zerolog.Logger
	if cfg.Format == "json" {
		zl = zerolog.New(out)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	return &Logger{zl: zl.Level(cfg.Level.zerolog()).With().Timestamp().Logger()}
}

// Debug logs debug-level messages
func (l *Logger) Debug(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

// Info logs info-level messages
func (l *Logger) Info(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

// Warn logs warning-level messages
func (l *Logger) Warn(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

// Error logs error-level messages
func (l *Logger) Error(format string, v ...interface{}) {
	l.zl.Error().Msgf(format, v...)
}

// WithPrefix returns a new logger tagged with a component name
func (l *Logger) WithPrefix(prefix string) *Logger {
	return l.With("component", prefix)
}

// With returns a new logger carrying an extra string field.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// DefaultLogger is the default logger instance
var DefaultLogger = NewLogger(LogLevelInfo)

// SetDefaultLogger replaces DefaultLogger. Call it before constructing
// services, which capture the logger at creation time.
func SetDefaultLogger(l *Logger) {
	if l != nil {
		DefaultLogger = l
	}
}
