// Package main is the entry point for the palimpsest history viewer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/palimpsest-editor/palimpsest/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, seedPath := parseFlags()

	if seedPath != "" {
		if err := app.Seed(seedPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: seeding %s: %v\n", seedPath, err)
			return 1
		}
		fmt.Printf("Wrote demo log to %s\n", seedPath)
		return 0
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure the terminal is restored on all exit paths
	defer application.Shutdown()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, string) {
	var opts app.Options
	var seedPath string
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&opts.NoFollow, "no-follow", false, "Do not auto-advance when the log grows")
	flag.StringVar(&seedPath, "seed", "", "Write a demo log to the given path and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Palimpsest - document history viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: palimpsest [options] log-file [log-file...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  left/h     rewind one edit      right/l    advance one edit\n")
		fmt.Fprintf(os.Stderr, "  home/g     jump to base         end/G      jump to latest\n")
		fmt.Fprintf(os.Stderr, "  tab        next file            q/esc      quit\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  palimpsest -seed demo.plog  Write a demo log\n")
		fmt.Fprintf(os.Stderr, "  palimpsest demo.plog        Scrub through its history\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Palimpsest %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	opts.LogPaths = flag.Args()
	return opts, seedPath
}
