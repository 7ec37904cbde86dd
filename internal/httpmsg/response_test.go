package httpmsg

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseResponse_RoundTrip(t *testing.T) {
	body := "hello, \x00binary\xffworld"
	raw := []byte("HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"X-Custom: one\r\n" +
		"\r\n" +
		body)

	resp, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if got := resp.Headers.Get("content-type"); got != "text/html; charset=utf-8" {
		t.Errorf("case-insensitive header lookup = %q", got)
	}
	if got := resp.Headers.Get("X-Custom"); got != "one" {
		t.Errorf("X-Custom = %q, want one", got)
	}
	if !bytes.Equal(resp.Body, []byte(body)) {
		t.Errorf("body = %q, want %q", resp.Body, body)
	}
}

func TestParseResponse_DuplicateHeaderLastWins(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\n" +
		"X-Thing: first\r\n" +
		"x-thing: second\r\n" +
		"\r\n")

	resp, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if got := resp.Headers.Get("X-Thing"); got != "second" {
		t.Errorf("duplicate header = %q, want second", got)
	}
}

func TestParseResponse_BareLFSeparator(t *testing.T) {
	raw := []byte("HTTP/1.0 404 Not Found\nContent-Type: text/plain\n\nmissing")

	resp, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", resp.StatusCode)
	}
	if string(resp.Body) != "missing" {
		t.Errorf("body = %q, want missing", resp.Body)
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no terminator", "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n"},
		{"non-numeric status", "HTTP/1.1 abc OK\r\n\r\nbody"},
		{"not a status line", "totally not http\r\n\r\nbody"},
		{"empty head", "\r\n\r\nbody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse([]byte(tt.raw))
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("ParseResponse(%q) error = %v, want ErrMalformedResponse", tt.raw, err)
			}
		})
	}
}

func TestResponse_IsRedirect(t *testing.T) {
	for code, want := range map[int]bool{
		200: false, 204: false, 301: true, 302: true, 303: true,
		304: false, 307: true, 308: false, 404: false,
	} {
		r := &Response{StatusCode: code}
		if got := r.IsRedirect(); got != want {
			t.Errorf("IsRedirect(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestExpectedTotal(t *testing.T) {
	head := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\n"

	total, ok := ExpectedTotal([]byte(head + "He"))
	if !ok {
		t.Fatal("expected a framed total once headers are complete")
	}
	if total != len(head)+5 {
		t.Errorf("total = %d, want %d", total, len(head)+5)
	}

	if _, ok := ExpectedTotal([]byte("HTTP/1.1 200 OK\r\nContent-Len")); ok {
		t.Error("incomplete headers must not report a total")
	}
	if _, ok := ExpectedTotal([]byte("HTTP/1.1 200 OK\r\n\r\nbody")); ok {
		t.Error("no Content-Length must not report a total")
	}
	if _, ok := ExpectedTotal([]byte("HTTP/1.1 200 OK\r\nContent-Length: nope\r\n\r\n")); ok {
		t.Error("unparseable Content-Length must not report a total")
	}
}
