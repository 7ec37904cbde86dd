// Package transport performs one HTTP transaction over a raw TCP or TLS
// socket: dial, write the serialized request, read the full response bytes.
// No retries, no connection reuse.
package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minoru-f/yomu/internal/logging"
	"github.com/minoru-f/yomu/internal/urlutil"
)

// Error kinds. Failures are wrapped around one of these so callers can
// classify with errors.Is.
var (
	// ErrConnection covers DNS resolution failure, connection refusal and
	// socket I/O errors.
	ErrConnection = errors.New("connection error")

	// ErrTLS covers handshake and certificate verification failures.
	ErrTLS = errors.New("tls error")

	// ErrTimeout covers connect and read deadline expiry.
	ErrTimeout = errors.New("timeout")
)

// Transport executes one request/response round trip against a target.
type Transport interface {
	// RoundTrip writes req to target and returns the raw response bytes.
	RoundTrip(ctx context.Context, target *urlutil.Target, req []byte) ([]byte, error)

	Close() error
}

// Config holds the transport knobs.
type Config struct {
	// ConnectTimeout bounds dialing and the TLS handshake.
	ConnectTimeout time.Duration

	// ReadTimeout bounds each socket read; zero disables the deadline.
	ReadTimeout time.Duration

	// MaxResponseBytes is the framing limit; reading stops there even if the
	// peer keeps sending. Zero means the default of 10 MiB.
	MaxResponseBytes int

	// TLSConfig overrides the TLS client configuration. Leave nil outside of
	// tests; ServerName is filled from the target when empty.
	TLSConfig *tls.Config
}

// DefaultConfig returns the transport defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:   10 * time.Second,
		ReadTimeout:      30 * time.Second,
		MaxResponseBytes: 10 * 1024 * 1024,
	}
}

// Constructor builds a Transport given the config and logger.
type Constructor func(cfg Config, logger logging.Logger) (Transport, error)

var (
	mu       sync.RWMutex
	registry = map[string]Constructor{}
)

// Register registers a named transport constructor. Name is lower-cased
// internally; registering the same name again overwrites the previous
// constructor.
func Register(name string, ctor Constructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

// New constructs the named transport backend, defaulting to "socket".
func New(backend string, cfg Config, logger logging.Logger) (Transport, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = "socket"
	}

	mu.RLock()
	ctor, ok := registry[backend]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("transport backend %q not registered: available=%v", backend, List())
	}

	tr, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("construct transport backend %q: %w", backend, err)
	}
	return tr, nil
}

// List returns the registered backend names.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

func init() {
	Register("socket", func(cfg Config, logger logging.Logger) (Transport, error) {
		return NewSocketTransport(cfg, logger), nil
	})
}
