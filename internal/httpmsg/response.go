package httpmsg

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ErrMalformedResponse is returned when a response (or a JSON body where JSON
// was required) cannot be parsed.
var ErrMalformedResponse = fmt.Errorf("malformed response")

// Response is one parsed HTTP response. Headers are case-insensitive; when a
// header name repeats, the last occurrence wins. Body is the raw bytes after
// the blank-line separator.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// ContentType returns the Content-Type header, or "" when absent.
func (r *Response) ContentType() string {
	return r.Headers.Get("Content-Type")
}

// Location returns the Location header, or "" when absent.
func (r *Response) Location() string {
	return r.Headers.Get("Location")
}

// IsRedirect reports whether the status code is one the redirect resolver
// follows.
func (r *Response) IsRedirect() bool {
	switch r.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect:
		return true
	}
	return false
}

// headerEnd locates the first blank-line separator in raw and returns the
// offset where the header block ends and the offset where the body begins.
// ok is false while the separator has not arrived yet.
func headerEnd(raw []byte) (head, body int, ok bool) {
	crlf := bytes.Index(raw, []byte("\r\n\r\n"))
	lf := bytes.Index(raw, []byte("\n\n"))

	switch {
	case crlf < 0 && lf < 0:
		return 0, 0, false
	case crlf < 0:
		return lf, lf + 2, true
	case lf < 0 || crlf <= lf:
		return crlf, crlf + 4, true
	default:
		return lf, lf + 2, true
	}
}

// ExpectedTotal reports the total framed message length once the header block
// and a Content-Length header are available. ok is false when the headers are
// incomplete or no usable Content-Length is present, in which case the caller
// reads to EOF.
func ExpectedTotal(raw []byte) (int, bool) {
	head, body, ok := headerEnd(raw)
	if !ok {
		return 0, false
	}
	for _, line := range splitLines(raw[:head]) {
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return 0, false
		}
		return body + n, true
	}
	return 0, false
}

// ParseResponse splits raw response bytes into status line, headers and body.
func ParseResponse(raw []byte) (*Response, error) {
	head, body, ok := headerEnd(raw)
	if !ok {
		return nil, fmt.Errorf("no header terminator: %w", ErrMalformedResponse)
	}

	lines := splitLines(raw[:head])
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty header block: %w", ErrMalformedResponse)
	}

	code, err := parseStatusLine(lines[0])
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	for _, line := range lines[1:] {
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		// Set, not Add: the later occurrence of a duplicate name wins
		headers.Set(name, strings.TrimSpace(value))
	}

	return &Response{
		StatusCode: code,
		Headers:    headers,
		Body:       raw[body:],
	}, nil
}

// parseStatusLine extracts the integer status code from a line shaped like
// "HTTP/1.1 200 OK".
func parseStatusLine(line string) (int, error) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "HTTP/") {
		return 0, fmt.Errorf("bad status line %q: %w", line, ErrMalformedResponse)
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("bad status code in %q: %w", line, ErrMalformedResponse)
	}
	return code, nil
}

func splitLines(head []byte) []string {
	var out []string
	for _, line := range strings.Split(string(head), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
