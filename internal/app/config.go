package app

import (
	"github.com/minoru-f/yomu/internal/client"
	"github.com/minoru-f/yomu/internal/transport"
	"github.com/minoru-f/yomu/internal/urlutil"
)

// Config contains the runtime configuration for one invocation. Keep this
// small; add fields as modules need them.
type Config struct {
	// TransportBackend names the registered transport; empty selects "socket".
	TransportBackend string

	// TransportCfg holds socket and TLS knobs.
	TransportCfg transport.Config

	// MaxHops is the redirect hop budget.
	MaxHops int

	// EnableTrace turns on the sqlite-backed transaction history.
	EnableTrace bool

	// SearchEndpoint overrides the search API target; nil selects the
	// default DuckDuckGo endpoint.
	SearchEndpoint *urlutil.Target
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		TransportBackend: "socket",
		TransportCfg:     transport.DefaultConfig(),
		MaxHops:          client.DefaultMaxHops,
	}
}
