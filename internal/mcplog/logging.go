package mcplog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Level mirrors slog.Level with names that read naturally in mcpd's own
// call sites (Debug/Info/Warn/Error), matching the teacher's LogLevel type.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SlogLevel converts Level to the equivalent slog.Level.
func (l Level) SlogLevel() slog.Level {
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
		return slog.LevelInfo
	}
}

// ParseLevel parses a --log-level flag value, defaulting to Info on anything
// unrecognized rather than failing startup over a logging knob.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var defaultLogger *slog.Logger

// Init sets up the package-level logger. It must be called once from main
// before any backend is spawned or request is served; logging before Init
// falls back to a bare stderr writer at Info level.
func Init(level Level, out io.Writer) {
	defaultLogger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level.SlogLevel(),
	}))
}

func logger() *slog.Logger {
	if defaultLogger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return defaultLogger
}

func logInternal(level Level, subsystem string, err error, messageFmt string, args ...interface{}) {
	l := logger()
	if !l.Enabled(context.Background(), level.SlogLevel()) {
		return
	}
	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}
	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.LogAttrs(context.Background(), level.SlogLevel(), msg, attrs...)
}

// Debug logs a debug-level message tagged with subsystem.
func Debug(subsystem, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an info-level message tagged with subsystem.
func Info(subsystem, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warn-level message tagged with subsystem.
func Warn(subsystem, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error-level message tagged with subsystem, attaching err.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, err, messageFmt, args...)
}

// Logger is the seam the Registry, Backend Proxy, and Aggregator depend on
// instead of the package-level functions directly, so a caller can swap in
// a different sink (spec leaves the logging destination to the host
// application) without mcpd's core importing anything concrete.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(err error, format string, args ...interface{})
}

// subsystemLogger adapts the package-level functions to Logger for a fixed
// subsystem tag.
type subsystemLogger struct {
	subsystem string
}

// For returns a Logger that tags every record with subsystem.
func For(subsystem string) Logger {
	return subsystemLogger{subsystem: subsystem}
}

func (s subsystemLogger) Debugf(format string, args ...interface{}) { Debug(s.subsystem, format, args...) }
func (s subsystemLogger) Infof(format string, args ...interface{})  { Info(s.subsystem, format, args...) }
func (s subsystemLogger) Warnf(format string, args ...interface{})  { Warn(s.subsystem, format, args...) }
func (s subsystemLogger) Errorf(err error, format string, args ...interface{}) {
	Error(s.subsystem, err, format, args...)
}
