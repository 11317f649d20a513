// Package logger provides leveled diagnostic logging for certbot-runner.
//
// Diagnostics go to stderr, separate from the console output of the
// external tools (certbot, openssl) and the run banners printed by the
// output package on stdout. Container log collectors see both streams.
//
// # Log Levels
//
//   - Debug: Detailed information for debugging
//   - Info: General operational information
//   - Warn: Conditions that don't prevent operation
//   - Error: Conditions that affect operation
//
// By default only Warn and Error are shown. Init(true), driven by the
// --verbose flag or CERTBOT_VERBOSE, enables everything.
//
// # Usage
//
//	logger.Info("Next renewal at %s", next)
//	logger.InfoFields("Bundle written", logger.Fields{"domain": d, "bytes": n})
//
// Components can carry a name that is printed with each line:
//
//	log := logger.Named("scheduler")
//	log.Debug("Sleeping %s", wait)
//
// # Output Format
//
//	[INFO] 2026-02-03 03:00:00 scheduler: Renewal started
//	[DEBUG] 2026-02-03 03:00:02 Bundle written bytes=5120 domain=example.com
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents a logging severity level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
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

// ParseLevel converts a case-insensitive level name into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelWarn, fmt.Errorf("unknown log level %q", s)
	}
}

// Fields are key/value pairs appended to a log line, sorted by key.
type Fields map[string]interface{}

// sink is the shared destination of all loggers.
type sink struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
}

// Logger writes leveled lines to the shared sink, optionally prefixed by
// a component name.
type Logger struct {
	name string
	sink *sink
}

var std = &Logger{sink: &sink{level: LevelWarn, output: os.Stderr}}

// Init sets the global level from the verbose switch.
func Init(verbose bool) {
	if verbose {
		SetLevel(LevelDebug)
	} else {
		SetLevel(LevelWarn)
	}
}

// SetLevel sets the minimum log level.
func SetLevel(level Level) {
	std.sink.mu.Lock()
	defer std.sink.mu.Unlock()
	std.sink.level = level
}

// GetLevel returns the current log level.
func GetLevel() Level {
	std.sink.mu.Lock()
	defer std.sink.mu.Unlock()
	return std.sink.level
}

// SetOutput sets the output destination. A nil writer restores os.Stderr.
func SetOutput(w io.Writer) {
	std.sink.mu.Lock()
	defer std.sink.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	std.sink.output = w
}

// Named returns a logger that prefixes every message with name.
func Named(name string) *Logger {
	return &Logger{name: name, sink: std.sink}
}

func (l *Logger) write(level Level, msg string, fields Fields) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level < l.sink.level {
		return
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(" ")
	if l.name != "" {
		b.WriteString(l.name)
		b.WriteString(": ")
	}
	b.WriteString(msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	b.WriteString("\n")

	_, _ = io.WriteString(l.sink.output, b.String())
}

// Debug logs a formatted debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, fmt.Sprintf(format, args...), nil)
}

// Info logs a formatted informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Warn logs a formatted warning.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, fmt.Sprintf(format, args...), nil)
}

// Error logs a formatted error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, fmt.Sprintf(format, args...), nil)
}

// DebugFields logs msg at debug level with structured fields.
func (l *Logger) DebugFields(msg string, fields Fields) { l.write(LevelDebug, msg, fields) }

// InfoFields logs msg at info level with structured fields.
func (l *Logger) InfoFields(msg string, fields Fields) { l.write(LevelInfo, msg, fields) }

// WarnFields logs msg at warn level with structured fields.
func (l *Logger) WarnFields(msg string, fields Fields) { l.write(LevelWarn, msg, fields) }

// ErrorFields logs msg at error level with structured fields.
func (l *Logger) ErrorFields(msg string, fields Fields) { l.write(LevelError, msg, fields) }

// Package-level shortcuts on the unnamed logger.

func Debug(format string, args ...interface{}) { std.Debug(format, args...) }
func Info(format string, args ...interface{})  { std.Info(format, args...) }
func Warn(format string, args ...interface{})  { std.Warn(format, args...) }
func Error(format string, args ...interface{}) { std.Error(format, args...) }

func DebugFields(msg string, fields Fields) { std.DebugFields(msg, fields) }
func InfoFields(msg string, fields Fields)  { std.InfoFields(msg, fields) }
func WarnFields(msg string, fields Fields)  { std.WarnFields(msg, fields) }
func ErrorFields(msg string, fields Fields) { std.ErrorFields(msg, fields) }

// LogError logs err with a context message. Nil errors are ignored.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	std.Error("%s: %v", msg, err)
}
