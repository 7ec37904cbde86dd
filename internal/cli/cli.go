package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
)

// CLIArgs are the command-line arguments for a single invocation. Exactly one
// of URL and Search is set.
type CLIArgs struct {
	// URL is the target to fetch (fetch mode).
	URL string

	// Search is the free-text query (search mode).
	Search string

	// Trace enables the transaction history dump after the result.
	Trace bool

	// Verbose lowers the log threshold to debug.
	Verbose bool

	// Timeout overrides the transport read timeout; 0 means "use default".
	Timeout time.Duration

	// MaxHops overrides the redirect hop budget; 0 means "use default".
	MaxHops int

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by
// passing arbitrary slices. The function is deterministic and does not read
// os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("yomu", flag.ContinueOnError)
	var (
		url     = fs.String("url", "", "URL to fetch and render")
		query   = fs.String("search", "", "Free-text query for the search endpoint")
		trace   = fs.Bool("trace", false, "Print the transaction log after the result")
		verbose = fs.Bool("verbose", false, "Enable debug logging on stderr")
		timeout = fs.Duration("timeout", 0, "Read timeout for the transport (0=use default)")
		maxHops = fs.Int("max-hops", 0, "Redirect hop budget (0=use default)")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	u := strings.TrimSpace(*url)
	q := strings.TrimSpace(*query)
	switch {
	case u == "" && q == "":
		return nil, fmt.Errorf("one of -url or -search is required")
	case u != "" && q != "":
		return nil, fmt.Errorf("-url and -search are mutually exclusive")
	}

	return &CLIArgs{
		URL:     u,
		Search:  q,
		Trace:   *trace,
		Verbose: *verbose,
		Timeout: *timeout,
		MaxHops: *maxHops,
		RawArgs: args,
	}, nil
}
