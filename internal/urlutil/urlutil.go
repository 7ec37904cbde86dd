// Package urlutil turns user-supplied URL strings into the normalized target
// form the rest of the client works with.
package urlutil

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalidURL is returned when no usable host can be determined from the
// input.
var ErrInvalidURL = fmt.Errorf("invalid url")

// Target is a URL decomposed into the pieces a raw-socket transaction needs.
// Scheme is always http or https, Host is lowercase (punycoded for IDN hosts)
// and non-empty, Port carries the scheme default when the input had none, and
// Path defaults to "/". Query is kept verbatim, without the leading "?".
type Target struct {
	Scheme string
	Host   string
	Port   int
	Path   string
	Query  string
}

// Normalize parses and repairs a raw URL string. Inputs without a scheme
// separator get "http://" prepended, so "example.com/x" is a valid input.
func Normalize(raw string) (*Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty input: %w", ErrInvalidURL)
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, ErrInvalidURL)
	}

	return fromURL(u)
}

func fromURL(u *url.URL) (*Target, error) {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q: %w", u.Scheme, ErrInvalidURL)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("missing host in %q: %w", u.String(), ErrInvalidURL)
	}
	// IDN hosts become punycode, best effort
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}

	port := defaultPort(scheme)
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("bad port %q: %w", p, ErrInvalidURL)
		}
		port = n
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	return &Target{
		Scheme: scheme,
		Host:   host,
		Port:   port,
		Path:   path,
		Query:  u.RawQuery,
	}, nil
}

func defaultPort(scheme string) int {
	if scheme == "https" {
		return 443
	}
	return 80
}

// IsDefaultPort reports whether Port is the well-known port for Scheme.
func (t *Target) IsDefaultPort() bool {
	return t.Port == defaultPort(t.Scheme)
}

// Addr returns the host:port dial address.
func (t *Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// HostHeader returns the Host header value: bare host on the default port,
// host:port otherwise.
func (t *Target) HostHeader() string {
	if t.IsDefaultPort() {
		return t.Host
	}
	return t.Addr()
}

// RequestTarget returns the origin-form request target for the request line.
func (t *Target) RequestTarget() string {
	if t.Query != "" {
		return t.Path + "?" + t.Query
	}
	return t.Path
}

// CanonicalKey returns the deterministic string form used to index the
// request cache. The port is always explicit so http://h/ and http://h:8080/
// never collide.
func (t *Target) CanonicalKey() string {
	key := fmt.Sprintf("%s://%s:%d%s", t.Scheme, t.Host, t.Port, t.Path)
	if t.Query != "" {
		key += "?" + t.Query
	}
	return key
}

// String returns a display form with default ports elided.
func (t *Target) String() string {
	s := t.Scheme + "://" + t.HostHeader() + t.Path
	if t.Query != "" {
		s += "?" + t.Query
	}
	return s
}

func (t *Target) url() *url.URL {
	return &url.URL{
		Scheme:   t.Scheme,
		Host:     t.HostHeader(),
		Path:     t.Path,
		RawQuery: t.Query,
	}
}

// Resolve resolves a Location header value against t. Absolute locations
// stand alone; relative ones reuse the current scheme/host/port and replace
// path and query.
func (t *Target) Resolve(location string) (*Target, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("empty location: %w", ErrInvalidURL)
	}

	ref, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse location %q: %w", location, ErrInvalidURL)
	}

	return fromURL(t.url().ResolveReference(ref))
}
