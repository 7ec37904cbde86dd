package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Logger is a deliberately small, framework-agnostic logging interface.
// Keep implementations here so callers can swap in any logger.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning.
	Warn(msg string, fields ...Field)

	// Error logs an error.
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value interface{}
}

// Level is the minimum severity a JSONLogger will emit.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// JSONLogger prints JSON lines to the given writer. Fetched page text owns
// stdout, so main wires this to stderr.
type JSONLogger struct {
	w         io.Writer
	component string
	min       Level
}

// NewJSONLogger creates a JSONLogger writing to w. component is optional and
// is carried on every entry.
func NewJSONLogger(w io.Writer, component string, min Level) *JSONLogger {
	return &JSONLogger{w: w, component: component, min: min}
}

func (l *JSONLogger) log(level Level, name string, msg string, fields ...Field) {
	if level < l.min {
		return
	}
	type outEntry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}
	m := make(map[string]any)
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	entry := outEntry{
		Level:     name,
		Msg:       msg,
		Component: l.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}
	enc, err := json.Marshal(entry)
	if err != nil {
		// Fallback simple formatting if JSON marshal fails
		fmt.Fprintf(l.w, "%s %s %v\n", name, msg, m)
		return
	}
	fmt.Fprintln(l.w, string(enc))
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, "debug", msg, fields...) }

func (l *JSONLogger) Info(msg string, fields ...Field) { l.log(LevelInfo, "info", msg, fields...) }

func (l *JSONLogger) Warn(msg string, fields ...Field) { l.log(LevelWarn, "warn", msg, fields...) }

func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(LevelError, "error", msg, fields...) }

func (l *JSONLogger) With(fields ...Field) Logger {
	child := &JSONLogger{w: l.w, component: l.component, min: l.min}
	// If fields include a component key, prefer that as the component name
	for _, f := range fields {
		if f.Key == "component" {
			if str, ok := f.Value.(string); ok {
				child.component = str
			}
		}
	}
	return child
}

// Nop is a Logger that discards everything. Handy as a default when callers
// pass nil.
type Nop struct{}

func (Nop) Debug(string, ...Field) {}
func (Nop) Info(string, ...Field)  {}
func (Nop) Warn(string, ...Field)  {}
func (Nop) Error(string, ...Field) {}
func (Nop) With(...Field) Logger   { return Nop{} }
