package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"

	logcruncher "github.com/baditaflorin/go_log_cruncher"
	"github.com/baditaflorin/go_log_cruncher/internal/adapters/logger"
	"github.com/baditaflorin/go_log_cruncher/internal/ports"
	"github.com/baditaflorin/go_log_cruncher/internal/render"
)

// options holds the command-line flags
type options struct {
	path           string
	outputFormat   string
	chunkSize      int
	inFlightChunks int
	workers        int
	verbose        bool
	logFile        string
	profileMode    string
	profileDir     string
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var opts options

	fs.StringVar(&opts.path, "path", "", "Path to the NDJSON file (required)")
	fs.StringVar(&opts.path, "p", "", "Shorthand for -path")

	fs.StringVar(&opts.outputFormat, "output", "text", "Output format: 'text' or 'json'")
	fs.IntVar(&opts.chunkSize, "chunk-size", logcruncher.DefaultChunkSize, "Chunk size in bytes, also the largest accepted record")
	fs.IntVar(&opts.inFlightChunks, "in-flight", logcruncher.DefaultInFlightChunks, "Number of chunks queued for workers")
	fs.IntVar(&opts.workers, "workers", 0, "Number of workers (0 = derived from file size and CPUs)")

	fs.BoolVar(&opts.verbose, "verbose", false, "Enable logging and run statistics")
	fs.StringVar(&opts.logFile, "log-file", "", "Log file path (empty = stderr)")

	fs.StringVar(&opts.profileMode, "profile", "", "Profile the run: 'cpu' or 'mem'")
	fs.StringVar(&opts.profileDir, "profile-dir", ".", "Directory for profile output")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s -path <file> [options]\n", fs.Name())
		fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nExamples:\n")
		fmt.Fprintf(fs.Output(), "  %s -path events.ndjson\n", fs.Name())
		fmt.Fprintf(fs.Output(), "  %s -p events.ndjson -output json -verbose\n", fs.Name())
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, validate(opts)
}

// validate validates the command-line inputs
func validate(opts options) error {
	if opts.path == "" {
		return fmt.Errorf("the -path flag is required")
	}
	if opts.outputFormat != "text" && opts.outputFormat != "json" {
		return fmt.Errorf("invalid output format: %s. Must be 'text' or 'json'", opts.outputFormat)
	}
	if opts.chunkSize <= 0 {
		return fmt.Errorf("chunk-size must be greater than 0")
	}
	if opts.inFlightChunks <= 0 {
		return fmt.Errorf("in-flight must be greater than 0")
	}
	if opts.workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	switch opts.profileMode {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("invalid profile mode: %s. Must be 'cpu' or 'mem'", opts.profileMode)
	}
	return nil
}

// createLogger returns a quiet logger unless verbose output was requested
func createLogger(opts options) (ports.Logger, error) {
	if !opts.verbose {
		return logger.NewNopLogger(), nil
	}

	var output io.Writer = os.Stderr
	if opts.logFile != "" {
		file, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	cfg := logger.DefaultConfig(output)
	cfg.JsonFormat = opts.logFile != ""
	return logger.NewCustomStdLogger(cfg)
}

func startProfile(opts options) interface{ Stop() } {
	switch opts.profileMode {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(opts.profileDir), profile.Quiet)
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath(opts.profileDir), profile.Quiet)
	}
	return nil
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	log, err := createLogger(opts)
	if err != nil {
		return err
	}
	defer log.Close()

	if p := startProfile(opts); p != nil {
		defer p.Stop()
	}

	cruncher, err := logcruncher.New(
		logcruncher.WithLogger(log),
		logcruncher.WithChunkSize(opts.chunkSize),
		logcruncher.WithInFlightChunks(opts.inFlightChunks),
		logcruncher.WithWorkers(opts.workers),
	)
	if err != nil {
		return err
	}
	defer cruncher.Close()

	report, stats, err := cruncher.CrunchFile(ctx, opts.path)
	if err != nil {
		return err
	}

	if opts.outputFormat == "json" {
		var s *logcruncher.Stats
		if opts.verbose {
			s = &stats
		}
		return render.JSON(stdout, report, s)
	}

	if err := render.Table(stdout, report); err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(stdout, "\nWorkers: %d, chunks: %d, bytes read: %d, took: %v\n",
			stats.Workers, stats.Chunks, stats.BytesRead, stats.Duration)
	}
	return nil
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	opts, err := parseFlags(fs, os.Args[1:])
	if err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fs.Usage()
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
