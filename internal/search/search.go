// Package search resolves free-text queries against the DuckDuckGo Instant
// Answer API and renders the topic list for the terminal.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minoru-f/yomu/internal/httpmsg"
	"github.com/minoru-f/yomu/internal/logging"
	"github.com/minoru-f/yomu/internal/transport"
	"github.com/minoru-f/yomu/internal/urlutil"
)

// ErrUnavailable is returned when the search endpoint cannot be reached or
// answers with a non-2xx status.
var ErrUnavailable = errors.New("search unavailable")

// Result is one search hit. Snippet may be empty.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Resolver runs queries through a Transport against a fixed endpoint.
type Resolver struct {
	tr       transport.Transport
	logger   logging.Logger
	endpoint *urlutil.Target
}

// New creates a Resolver against the DuckDuckGo endpoint. endpoint overrides
// the default when non-nil (used by tests and the demo server).
func New(tr transport.Transport, logger logging.Logger, endpoint *urlutil.Target) *Resolver {
	if logger == nil {
		logger = logging.Nop{}
	}
	if endpoint == nil {
		endpoint = DefaultEndpoint()
	}
	return &Resolver{
		tr:       tr,
		logger:   logger.With(logging.Field{Key: "component", Value: "search"}),
		endpoint: endpoint,
	}
}

// DefaultEndpoint returns the DuckDuckGo Instant Answer API target without a
// query attached.
func DefaultEndpoint() *urlutil.Target {
	return &urlutil.Target{
		Scheme: "https",
		Host:   "api.duckduckgo.com",
		Port:   443,
		Path:   "/",
	}
}

// Search runs one query and returns the parsed topic list in source order.
// Topics without a usable title or URL are skipped.
func (r *Resolver) Search(ctx context.Context, query string) ([]Result, error) {
	target := *r.endpoint
	target.Query = fmt.Sprintf("q=%s&format=json&no_html=1&skip_disambig=1", url.QueryEscape(query))

	r.logger.Debug("querying search endpoint",
		logging.Field{Key: "endpoint", Value: target.Host},
		logging.Field{Key: "query", Value: query})

	raw, err := r.tr.RoundTrip(ctx, &target, httpmsg.BuildRequest(&target))
	if err != nil {
		return nil, fmt.Errorf("query %s: %v: %w", target.Host, err, ErrUnavailable)
	}

	resp, err := httpmsg.ParseResponse(raw)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("endpoint %s returned status %d: %w", target.Host, resp.StatusCode, ErrUnavailable)
	}

	return parsePayload(resp.Body)
}

// topic mirrors one entry of the instant answer payload. Grouped entries
// carry no Text/FirstURL of their own and nest real topics under Topics.
type topic struct {
	Text     string  `json:"Text"`
	FirstURL string  `json:"FirstURL"`
	Topics   []topic `json:"Topics"`
}

type payload struct {
	RelatedTopics []topic `json:"RelatedTopics"`
}

func parsePayload(body []byte) ([]Result, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode search payload: %v: %w", err, httpmsg.ErrMalformedResponse)
	}

	var out []Result
	flatten(p.RelatedTopics, &out)
	return out, nil
}

func flatten(topics []topic, out *[]Result) {
	for _, t := range topics {
		if len(t.Topics) > 0 {
			flatten(t.Topics, out)
			continue
		}
		title, snippet := splitText(t.Text)
		if title == "" || t.FirstURL == "" {
			continue
		}
		*out = append(*out, Result{Title: title, URL: t.FirstURL, Snippet: snippet})
	}
}

// splitText splits an instant answer Text field into title and snippet. The
// API joins them with " - ".
func splitText(text string) (title, snippet string) {
	title, snippet, found := strings.Cut(text, " - ")
	title = strings.TrimSpace(title)
	if !found {
		return title, ""
	}
	return title, strings.TrimSpace(snippet)
}

// Format renders results as numbered "title — url" lines.
func Format(results []Result) string {
	var b strings.Builder
	for i, res := range results {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, res.Title, res.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}
