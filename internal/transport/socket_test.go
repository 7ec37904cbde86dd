package transport_test

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/minoru-f/yomu/internal/httpmsg"
	"github.com/minoru-f/yomu/internal/testutil"
	"github.com/minoru-f/yomu/internal/transport"
	"github.com/minoru-f/yomu/internal/urlutil"
)

// serveRaw starts a one-shot TCP server that consumes the request, writes
// payload and then either closes immediately or lingers before closing.
func serveRaw(t *testing.T, payload []byte, linger time.Duration) *urlutil.Target {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 4096)
		_, _ = conn.Read(buf)
		_, _ = conn.Write(payload)
		if linger > 0 {
			time.Sleep(linger)
		}
	}()

	return targetFor(t, ln.Addr().String())
}

func targetFor(t *testing.T, addr string) *urlutil.Target {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split %q: %v", addr, err)
	}
	port, _ := strconv.Atoi(portStr)
	return &urlutil.Target{Scheme: "http", Host: host, Port: port, Path: "/"}
}

func testConfig() transport.Config {
	cfg := transport.DefaultConfig()
	cfg.ConnectTimeout = 2 * time.Second
	cfg.ReadTimeout = 2 * time.Second
	return cfg
}

func TestSocketTransport_ReadsUntilClose(t *testing.T) {
	t.Parallel()
	payload := testutil.RawResponse("HTTP/1.1 200 OK", []string{"Content-Type: text/plain"}, "no content length here")
	target := serveRaw(t, payload, 0)

	tr := transport.NewSocketTransport(testConfig(), &testutil.DummyLogger{})
	raw, err := tr.RoundTrip(context.Background(), target, httpmsg.BuildRequest(target))
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	if string(raw) != string(payload) {
		t.Errorf("raw = %q, want %q", raw, payload)
	}
}

func TestSocketTransport_StopsAtContentLength(t *testing.T) {
	t.Parallel()
	// The peer sends trailing garbage and holds the connection open; the
	// framed total must be honored without waiting for EOF.
	payload := []byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nHelloEXTRA")
	target := serveRaw(t, payload, 1500*time.Millisecond)

	tr := transport.NewSocketTransport(testConfig(), &testutil.DummyLogger{})
	raw, err := tr.RoundTrip(context.Background(), target, httpmsg.BuildRequest(target))
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}

	resp, err := httpmsg.ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if string(resp.Body) != "Hello" {
		t.Errorf("body = %q, want Hello", resp.Body)
	}
}

func TestSocketTransport_ConnectionRefused(t *testing.T) {
	t.Parallel()
	target := &urlutil.Target{Scheme: "http", Host: "127.0.0.1", Port: 1, Path: "/"}

	tr := transport.NewSocketTransport(testConfig(), &testutil.DummyLogger{})
	_, err := tr.RoundTrip(context.Background(), target, httpmsg.BuildRequest(target))
	if !errors.Is(err, transport.ErrConnection) {
		t.Fatalf("error = %v, want ErrConnection", err)
	}
}

func TestSocketTransport_ReadTimeout(t *testing.T) {
	t.Parallel()
	// Peer accepts but never writes.
	target := serveRaw(t, nil, time.Second)

	cfg := testConfig()
	cfg.ReadTimeout = 150 * time.Millisecond
	tr := transport.NewSocketTransport(cfg, &testutil.DummyLogger{})

	_, err := tr.RoundTrip(context.Background(), target, httpmsg.BuildRequest(target))
	if !errors.Is(err, transport.ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
}

func TestSocketTransport_FramingLimit(t *testing.T) {
	t.Parallel()
	body := strings.Repeat("Y", 4096)
	payload := testutil.RawResponse("HTTP/1.1 200 OK", []string{"Content-Type: text/plain"}, body)
	target := serveRaw(t, payload, 0)

	cfg := testConfig()
	cfg.MaxResponseBytes = 512
	tr := transport.NewSocketTransport(cfg, &testutil.DummyLogger{})

	raw, err := tr.RoundTrip(context.Background(), target, httpmsg.BuildRequest(target))
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	if len(raw) > 512 {
		t.Errorf("read %d bytes past the framing limit", len(raw))
	}
}

// ─── TLS ───────────────────────────────────────────────────────────────

func tlsFixture(t *testing.T) (*urlutil.Target, *x509.CertPool) {
	t.Helper()

	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "over tls")
	}))
	t.Cleanup(ts.Close)

	target := targetFor(t, strings.TrimPrefix(ts.URL, "https://"))
	target.Scheme = "https"

	pool := x509.NewCertPool()
	pool.AddCert(ts.Certificate())
	return target, pool
}

func TestSocketTransport_TLSVerified(t *testing.T) {
	t.Parallel()
	target, pool := tlsFixture(t)

	cfg := testConfig()
	cfg.TLSConfig = &tls.Config{RootCAs: pool}
	tr := transport.NewSocketTransport(cfg, &testutil.DummyLogger{})

	raw, err := tr.RoundTrip(context.Background(), target, httpmsg.BuildRequest(target))
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}

	resp, err := httpmsg.ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if resp.StatusCode != 200 || string(resp.Body) != "over tls" {
		t.Errorf("got status %d body %q", resp.StatusCode, resp.Body)
	}
}

func TestSocketTransport_TLSUntrustedCert(t *testing.T) {
	t.Parallel()
	target, _ := tlsFixture(t)

	// No RootCAs override: verification against the system pool must reject
	// the self-signed fixture cert.
	tr := transport.NewSocketTransport(testConfig(), &testutil.DummyLogger{})
	_, err := tr.RoundTrip(context.Background(), target, httpmsg.BuildRequest(target))
	if !errors.Is(err, transport.ErrTLS) {
		t.Fatalf("error = %v, want ErrTLS", err)
	}
}

// ─── registry ──────────────────────────────────────────────────────────

func TestNew_DefaultsToSocket(t *testing.T) {
	tr, err := transport.New("", transport.DefaultConfig(), &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tr.Close()

	if _, ok := tr.(*transport.SocketTransport); !ok {
		t.Errorf("default backend = %T, want *SocketTransport", tr)
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	if _, err := transport.New("telepathy", transport.DefaultConfig(), &testutil.DummyLogger{}); err == nil {
		t.Fatal("expected error for unregistered backend")
	}
}
