package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLogger_LevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, "test", LevelWarn)

	l.Debug("too quiet")
	l.Info("still too quiet")
	l.Warn("this one lands")
	l.Error("so does this")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}

	var entry struct {
		Level     string `json:"level"`
		Msg       string `json:"msg"`
		Component string `json:"component"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal %q: %v", lines[0], err)
	}
	if entry.Level != "warn" || entry.Msg != "this one lands" || entry.Component != "test" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestJSONLogger_FieldsAndWith(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, "parent", LevelDebug)

	child := l.With(Field{Key: "component", Value: "child"})
	child.Info("hello", Field{Key: "count", Value: 3})

	var entry struct {
		Component string         `json:"component"`
		Fields    map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.Component != "child" {
		t.Errorf("component = %q, want child", entry.Component)
	}
	if got, ok := entry.Fields["count"].(float64); !ok || got != 3 {
		t.Errorf("fields = %v", entry.Fields)
	}
}
