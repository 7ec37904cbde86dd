package main

import (
	"context"
	"fmt"
	"os"

	"github.com/minoru-f/yomu/internal/app"
	"github.com/minoru-f/yomu/internal/cli"
	"github.com/minoru-f/yomu/internal/logging"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "yomu: %v\n", err)
		os.Exit(2)
	}

	// Page text owns stdout; logs go to stderr and stay quiet by default.
	min := logging.LevelWarn
	if args.Verbose {
		min = logging.LevelDebug
	}
	logger := logging.NewJSONLogger(os.Stderr, "yomu", min)

	cfg := app.DefaultConfig()
	cfg.EnableTrace = args.Trace
	if args.Timeout > 0 {
		cfg.TransportCfg.ReadTimeout = args.Timeout
	}
	if args.MaxHops > 0 {
		cfg.MaxHops = args.MaxHops
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "yomu: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()

	var out string
	if args.URL != "" {
		out, err = application.FetchURL(ctx, args.URL)
	} else {
		out, err = application.SearchTopic(ctx, args.Search)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "yomu: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(out)

	if args.Trace {
		entries, err := application.History(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "yomu: reading history: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "transactions:")
		for i, e := range entries {
			fmt.Fprintf(os.Stderr, "  %d. %d %s (%d bytes, %s)\n",
				i+1, e.StatusCode, e.URL, e.BodyBytes, e.Duration)
		}
	}
}
