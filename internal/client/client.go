// Package client drives a full HTTP transaction chain: normalize the URL,
// build the request, run it through the transport, parse the response and
// follow redirects up to the hop budget.
package client

import (
	"context"
	"time"

	"github.com/minoru-f/yomu/internal/httpmsg"
	"github.com/minoru-f/yomu/internal/logging"
	"github.com/minoru-f/yomu/internal/transport"
	"github.com/minoru-f/yomu/internal/urlutil"
)

// DefaultMaxHops is the redirect hop budget. The initial request is not a
// hop.
const DefaultMaxHops = 5

// Hop describes one completed transport round trip, for the transaction
// history.
type Hop struct {
	URL         string
	StatusCode  int
	ContentType string
	BodyBytes   int
	Duration    time.Duration
	FetchedAt   time.Time
}

// Recorder receives one Hop per round trip. Implementations must tolerate
// being called between redirects; a recording failure never fails the fetch.
type Recorder interface {
	Record(ctx context.Context, hop Hop) error
}

// Result is the terminal outcome of a transaction chain. Target is where the
// chain ended up, Hops counts followed redirects.
type Result struct {
	Target   *urlutil.Target
	Response *httpmsg.Response
	Hops     int
}

// Client performs GET transactions over a Transport.
type Client struct {
	tr       transport.Transport
	logger   logging.Logger
	maxHops  int
	recorder Recorder
}

// New creates a Client. logger and recorder may be nil; maxHops <= 0 selects
// DefaultMaxHops.
func New(tr transport.Transport, logger logging.Logger, maxHops int, recorder Recorder) *Client {
	if logger == nil {
		logger = logging.Nop{}
	}
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	return &Client{
		tr:       tr,
		logger:   logger.With(logging.Field{Key: "component", Value: "client"}),
		maxHops:  maxHops,
		recorder: recorder,
	}
}

// Fetch runs the transaction chain for rawURL and returns the terminal
// response. A redirect with a missing or unusable Location, or one arriving
// after the hop budget is spent, terminates the chain with that redirect
// response rather than failing.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	target, err := urlutil.Normalize(rawURL)
	if err != nil {
		return nil, err
	}
	return c.FetchTarget(ctx, target)
}

// FetchTarget is Fetch for an already-normalized target.
func (c *Client) FetchTarget(ctx context.Context, target *urlutil.Target) (*Result, error) {
	hops := 0

	for {
		resp, err := c.roundTrip(ctx, target)
		if err != nil {
			return nil, err
		}

		if !resp.IsRedirect() {
			return &Result{Target: target, Response: resp, Hops: hops}, nil
		}

		loc := resp.Location()
		if loc == "" {
			c.logger.Warn("redirect without location header",
				logging.Field{Key: "url", Value: target.String()},
				logging.Field{Key: "status", Value: resp.StatusCode})
			return &Result{Target: target, Response: resp, Hops: hops}, nil
		}
		if hops >= c.maxHops {
			c.logger.Warn("redirect hop budget exhausted",
				logging.Field{Key: "url", Value: target.String()},
				logging.Field{Key: "hops", Value: hops})
			return &Result{Target: target, Response: resp, Hops: hops}, nil
		}

		next, err := target.Resolve(loc)
		if err != nil {
			// An unusable Location terminates the chain like a missing one
			c.logger.Warn("redirect location does not resolve",
				logging.Field{Key: "url", Value: target.String()},
				logging.Field{Key: "location", Value: loc},
				logging.Field{Key: "error", Value: err.Error()})
			return &Result{Target: target, Response: resp, Hops: hops}, nil
		}

		c.logger.Debug("following redirect",
			logging.Field{Key: "from", Value: target.String()},
			logging.Field{Key: "to", Value: next.String()},
			logging.Field{Key: "status", Value: resp.StatusCode})

		target = next
		hops++
	}
}

// roundTrip performs exactly one transport call and parses the result.
func (c *Client) roundTrip(ctx context.Context, target *urlutil.Target) (*httpmsg.Response, error) {
	req := httpmsg.BuildRequest(target)

	start := time.Now()
	raw, err := c.tr.RoundTrip(ctx, target, req)
	if err != nil {
		return nil, err
	}

	resp, err := httpmsg.ParseResponse(raw)
	if err != nil {
		return nil, err
	}

	if c.recorder != nil {
		hop := Hop{
			URL:         target.String(),
			StatusCode:  resp.StatusCode,
			ContentType: resp.ContentType(),
			BodyBytes:   len(resp.Body),
			Duration:    time.Since(start),
			FetchedAt:   start,
		}
		if err := c.recorder.Record(ctx, hop); err != nil {
			c.logger.Warn("recording hop failed",
				logging.Field{Key: "url", Value: hop.URL},
				logging.Field{Key: "error", Value: err.Error()})
		}
	}

	return resp, nil
}
