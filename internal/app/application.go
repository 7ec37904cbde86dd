// Package app wires the modules together and exposes the two invocation
// modes: fetch a URL, or resolve a search query. It never prints; rendered
// text and errors go back to the caller.
package app

import (
	"context"
	"fmt"

	"github.com/minoru-f/yomu/internal/cache"
	"github.com/minoru-f/yomu/internal/client"
	"github.com/minoru-f/yomu/internal/history"
	"github.com/minoru-f/yomu/internal/logging"
	"github.com/minoru-f/yomu/internal/render"
	"github.com/minoru-f/yomu/internal/search"
	"github.com/minoru-f/yomu/internal/transport"
	"github.com/minoru-f/yomu/internal/urlutil"
)

// Application owns the component graph for one process run.
type Application struct {
	cfg    *Config
	logger logging.Logger

	tr       transport.Transport
	client   *client.Client
	cache    *cache.Cache
	resolver *search.Resolver
	store    *history.Store
}

// New constructs an Application from cfg. A nil cfg selects DefaultConfig; a
// nil logger discards logs.
func New(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop{}
	}

	tr, err := transport.New(cfg.TransportBackend, cfg.TransportCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}

	var store *history.Store
	var recorder client.Recorder
	if cfg.EnableTrace {
		store, err = history.Open(logger)
		if err != nil {
			tr.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		recorder = store
	}

	return &Application{
		cfg:      cfg,
		logger:   logger,
		tr:       tr,
		client:   client.New(tr, logger, cfg.MaxHops, recorder),
		cache:    cache.New(),
		resolver: search.New(tr, logger, cfg.SearchEndpoint),
		store:    store,
	}, nil
}

// FetchURL resolves rawURL to rendered display text, read-through cached by
// canonical URL: a repeat fetch of the same canonical target within this
// process performs no transaction.
func (a *Application) FetchURL(ctx context.Context, rawURL string) (string, error) {
	target, err := urlutil.Normalize(rawURL)
	if err != nil {
		return "", err
	}

	key := target.CanonicalKey()
	if text, ok := a.cache.Get(key); ok {
		a.logger.Debug("cache hit", logging.Field{Key: "key", Value: key})
		return text, nil
	}

	result, err := a.client.FetchTarget(ctx, target)
	if err != nil {
		return "", err
	}

	text := render.Render(result.Response)
	a.cache.Put(key, text)

	a.logger.Info("fetched",
		logging.Field{Key: "url", Value: result.Target.String()},
		logging.Field{Key: "status", Value: result.Response.StatusCode},
		logging.Field{Key: "hops", Value: result.Hops})

	return text, nil
}

// SearchTopic resolves a free-text query to a numbered topic list.
func (a *Application) SearchTopic(ctx context.Context, query string) (string, error) {
	results, err := a.resolver.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return fmt.Sprintf("no results for %q", query), nil
	}
	return search.Format(results), nil
}

// History returns the recorded transaction log, or nil when tracing is off.
func (a *Application) History(ctx context.Context) ([]history.Entry, error) {
	if a.store == nil {
		return nil, nil
	}
	return a.store.List(ctx)
}

// Close releases the transport and, when tracing, the history store.
func (a *Application) Close() error {
	err := a.tr.Close()
	if a.store != nil {
		if cerr := a.store.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
