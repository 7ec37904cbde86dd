package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/minoru-f/yomu/internal/httpmsg"
	"github.com/minoru-f/yomu/internal/logging"
	"github.com/minoru-f/yomu/internal/urlutil"
)

const readChunkSize = 32 * 1024

// SocketTransport is the raw-socket Transport. One dial per round trip, TLS
// layered on top for https targets, Connection: close framing on the way
// back.
type SocketTransport struct {
	cfg    Config
	logger logging.Logger
}

// NewSocketTransport creates a SocketTransport. A nil logger is replaced with
// a no-op one.
func NewSocketTransport(cfg Config, logger logging.Logger) *SocketTransport {
	if logger == nil {
		logger = logging.Nop{}
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultConfig().MaxResponseBytes
	}
	return &SocketTransport{
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "component", Value: "transport"}),
	}
}

// RoundTrip dials target, writes req and reads the response. The socket is
// closed on every exit path. Reading stops at the Content-Length frame when
// one is present, at the framing limit, or at EOF.
func (s *SocketTransport) RoundTrip(ctx context.Context, target *urlutil.Target, req []byte) ([]byte, error) {
	if target == nil {
		return nil, fmt.Errorf("nil target: %w", ErrConnection)
	}

	start := time.Now()
	s.logger.Debug("dialing",
		logging.Field{Key: "addr", Value: target.Addr()},
		logging.Field{Key: "scheme", Value: target.Scheme})

	dialer := &net.Dialer{Timeout: s.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", target.Addr())
	if err != nil {
		return nil, classify(fmt.Sprintf("dial %s", target.Addr()), err)
	}
	// conn is reassigned after the TLS upgrade; close whichever layer is
	// current on every exit path.
	defer func() { conn.Close() }()

	if target.Scheme == "https" {
		tlsConn, err := s.upgrade(ctx, conn, target.Host)
		if err != nil {
			return nil, err
		}
		conn = tlsConn
	}

	if s.cfg.ReadTimeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			return nil, classify("set deadline", err)
		}
	}

	if _, err := conn.Write(req); err != nil {
		return nil, classify("write request", err)
	}

	raw, err := s.readAll(conn)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("round trip complete",
		logging.Field{Key: "addr", Value: target.Addr()},
		logging.Field{Key: "bytes", Value: len(raw)},
		logging.Field{Key: "duration", Value: time.Since(start).String()})

	return raw, nil
}

// upgrade layers a TLS session over conn, verifying the certificate against
// host.
func (s *SocketTransport) upgrade(ctx context.Context, conn net.Conn, host string) (net.Conn, error) {
	tlsCfg := s.cfg.TLSConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{}
	} else {
		tlsCfg = tlsCfg.Clone()
	}
	if tlsCfg.ServerName == "" {
		tlsCfg.ServerName = host
	}

	tlsConn := tls.Client(conn, tlsCfg)
	hsCtx := ctx
	if s.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		hsCtx, cancel = context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		defer cancel()
	}
	if err := tlsConn.HandshakeContext(hsCtx); err != nil {
		return nil, fmt.Errorf("tls handshake with %s: %v: %w", host, err, ErrTLS)
	}
	return tlsConn, nil
}

// readAll accumulates response bytes until the Content-Length frame is
// satisfied, the framing limit is hit, or the peer closes the connection.
func (s *SocketTransport) readAll(conn net.Conn) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)

	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])

			if total, ok := httpmsg.ExpectedTotal(buf.Bytes()); ok && buf.Len() >= total {
				return buf.Bytes()[:total], nil
			}
			if buf.Len() >= s.cfg.MaxResponseBytes {
				s.logger.Warn("response hit framing limit",
					logging.Field{Key: "limit", Value: s.cfg.MaxResponseBytes})
				return buf.Bytes()[:s.cfg.MaxResponseBytes], nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf.Bytes(), nil
			}
			return nil, classify("read response", err)
		}
	}
}

func (s *SocketTransport) Close() error {
	return nil
}

// classify wraps a socket error with the matching error kind.
func classify(op string, err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%s: %v: %w", op, err, ErrTimeout)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %v: %w", op, err, ErrTimeout)
	}
	return fmt.Errorf("%s: %v: %w", op, err, ErrConnection)
}
