// Package testutil provides shared test doubles for use across package
// tests. All dummies implement the corresponding interfaces from the
// production code, allowing injection into components under test without real
// I/O or side effects.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minoru-f/yomu/internal/logging"
	"github.com/minoru-f/yomu/internal/urlutil"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── Transport ─────────────────────────────────────────────────────────

// ScriptedTransport implements transport.Transport. Each RoundTrip consumes
// the next scripted response in order; running past the script is an error.
// Requested targets and request bytes are recorded for assertions.
type ScriptedTransport struct {
	mu        sync.Mutex
	Responses [][]byte
	Err       error

	Targets  []*urlutil.Target
	Requests [][]byte
}

func (s *ScriptedTransport) RoundTrip(_ context.Context, target *urlutil.Target, req []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Targets = append(s.Targets, target)
	s.Requests = append(s.Requests, append([]byte(nil), req...))

	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Targets) > len(s.Responses) {
		return nil, fmt.Errorf("scripted transport exhausted after %d responses", len(s.Responses))
	}
	return s.Responses[len(s.Targets)-1], nil
}

func (s *ScriptedTransport) Close() error { return nil }

// Calls returns how many round trips were executed.
func (s *ScriptedTransport) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Targets)
}

// ─── Fixtures ──────────────────────────────────────────────────────────

// RawResponse builds raw HTTP/1.1 response bytes from a status line, header
// lines and a body, CRLF-joined the way a peer would send them.
func RawResponse(status string, headers []string, body string) []byte {
	var b strings.Builder
	b.WriteString(status)
	b.WriteString("\r\n")
	for _, h := range headers {
		b.WriteString(h)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// Redirect builds a raw redirect response pointing at location.
func Redirect(code int, location string) []byte {
	return RawResponse(
		fmt.Sprintf("HTTP/1.1 %d Redirect", code),
		[]string{"Location: " + location, "Content-Length: 0"},
		"",
	)
}

// OK builds a raw 200 response with the given content type and body.
func OK(contentType, body string) []byte {
	return RawResponse(
		"HTTP/1.1 200 OK",
		[]string{
			"Content-Type: " + contentType,
			fmt.Sprintf("Content-Length: %d", len(body)),
		},
		body,
	)
}
