package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// ParseLevel maps a configuration string to a LogLevel.
// Unknown values fall back to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ParseFormat maps a configuration string to a LogFormat.
// Unknown values fall back to human-readable output.
func ParseFormat(s string) LogFormat {
	if strings.ToLower(s) == "json" {
		return LogFormatJSON
	}
	return LogFormatHuman
}

// DefaultLogger writes structured pipeline logs via the standard log package.
type DefaultLogger struct {
	level  LogLevel
	format LogFormat
	now    func() time.Time
}

// NewDefaultLogger creates a logger with the specified level and format.
func NewDefaultLogger(level LogLevel, format LogFormat) *DefaultLogger {
	return &DefaultLogger{
		level:  level,
		format: format,
		now:    time.Now,
	}
}

// LogDebug logs a debug message with structured fields.
func (l *DefaultLogger) LogDebug(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelDebug {
		return
	}
	l.emit("debug", "[DEBUG]", message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *DefaultLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}
	l.emit("info", "[INFO]", message, fields)
}

// LogWarning logs a warning message with structured fields.
// Warnings are suppressed only at the error level.
func (l *DefaultLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}
	l.emit("warning", "[WARN]", message, fields)
}

// LogError logs an error message with structured fields.
func (l *DefaultLogger) LogError(ctx context.Context, message string, fields map[string]interface{}) {
	l.emit("error", "[ERROR]", message, fields)
}

func (l *DefaultLogger) emit(level, tag, message string, fields map[string]interface{}) {
	if l.format == LogFormatJSON {
		entry := map[string]interface{}{
			"level":     level,
			"message":   message,
			"timestamp": l.now().Format(time.RFC3339),
		}
		for k, v := range fields {
			entry[k] = v
		}
		encoded, err := json.Marshal(entry)
		if err != nil {
			log.Printf("%s %s (fields dropped: %v)", tag, message, err)
			return
		}
		log.Printf("%s", encoded)
		return
	}

	if len(fields) == 0 {
		log.Printf("%s %s", tag, message)
		return
	}
	log.Printf("%s %s (%s)", tag, message, formatFields(fields))
}

// formatFields renders fields as sorted key=value pairs for human output.
func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(pairs, ", ")
}

// NopLogger discards all log output. Used when logging is disabled.
type NopLogger struct{}

func (NopLogger) LogDebug(ctx context.Context, message string, fields map[string]interface{})   {}
func (NopLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{})    {}
func (NopLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {}
func (NopLogger) LogError(ctx context.Context, message string, fields map[string]interface{})   {}
