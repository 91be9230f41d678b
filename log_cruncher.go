// log_cruncher.go
// Package logcruncher computes a histogram of newline-delimited JSON records.
// For every distinct value of a record's "type" field it reports how many records
// carry it and how many bytes those records occupy, plus the number of records
// that could not be parsed or had no "type".
//
// The input is read sequentially in line-aligned chunks that are tallied by a pool
// of workers and merged into one report. The result does not depend on the number
// of workers or on the chunk size.
//
// This version uses the functional options pattern to allow configuration of parameters
// like chunk size, number of workers, and logging.
package logcruncher

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/baditaflorin/go_log_cruncher/internal/adapters/jsonprocessor"
	"github.com/baditaflorin/go_log_cruncher/internal/core/domain"
	"github.com/baditaflorin/go_log_cruncher/internal/pipeline"
	"github.com/baditaflorin/go_log_cruncher/internal/ports"
)

// Report is the aggregated histogram of a run.
type Report = domain.Report

// Statistics are the counters of a single record type.
type Statistics = domain.Statistics

// Stats describes how a run went.
type Stats = pipeline.Stats

// Logger is the structured logger used by the cruncher.
type Logger = ports.Logger

// ChunkProcessor tallies a line-aligned chunk into a Report.
type ChunkProcessor = ports.ChunkProcessor

// ErrRecordTooLarge is returned when a single record does not fit into a chunk.
var ErrRecordTooLarge = domain.ErrRecordTooLarge

// Default configuration values.
const (
	DefaultChunkSize      = pipeline.DefaultChunkSize
	DefaultInFlightChunks = pipeline.DefaultInFlightChunks
)

// Config holds configuration options for the cruncher.
type Config struct {
	ChunkSize      int
	InFlightChunks int
	// Workers overrides the sizing policy when positive.
	Workers int
	// Processor replaces the JSON chunk processor.
	Processor ChunkProcessor
	// Logger for tracing runs.
	Logger Logger
}

// Option defines a functional option for configuring the cruncher.
type Option func(*Config)

// WithChunkSize sets the chunk size, which is also the largest accepted record.
func WithChunkSize(size int) Option {
	return func(cfg *Config) {
		cfg.ChunkSize = size
	}
}

// WithInFlightChunks sets how many chunks may wait for a worker.
func WithInFlightChunks(n int) Option {
	return func(cfg *Config) {
		cfg.InFlightChunks = n
	}
}

// WithWorkers sets a fixed number of workers.
func WithWorkers(n int) Option {
	return func(cfg *Config) {
		cfg.Workers = n
	}
}

// WithProcessor sets a custom chunk processor.
func WithProcessor(processor ChunkProcessor) Option {
	return func(cfg *Config) {
		cfg.Processor = processor
	}
}

// WithLogger sets a custom logger. The caller keeps ownership of it.
func WithLogger(logger Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

// Cruncher crunches NDJSON inputs with a fixed configuration.
// It is safe to run several crunches concurrently.
type Cruncher struct {
	config     Config
	pipeline   *pipeline.Pipeline
	ownsLogger bool
}

// New creates a new Cruncher with the provided functional options.
// If no logger is provided, a default logger is created and closed by Close.
func New(opts ...Option) (*Cruncher, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	ownsLogger := false
	if cfg.Logger == nil {
		logger, err := createDefaultLogger()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		cfg.Logger = logger
		ownsLogger = true
	}
	if cfg.Processor == nil {
		cfg.Processor = jsonprocessor.New()
	}

	p := pipeline.New(cfg.Logger, cfg.Processor, pipeline.Config{
		ChunkSize:      cfg.ChunkSize,
		InFlightChunks: cfg.InFlightChunks,
		Workers:        cfg.Workers,
	})
	effective := p.Config()
	cfg.ChunkSize = effective.ChunkSize
	cfg.InFlightChunks = effective.InFlightChunks

	return &Cruncher{config: cfg, pipeline: p, ownsLogger: ownsLogger}, nil
}

// Config returns the effective configuration.
func (c *Cruncher) Config() Config {
	return c.config
}

// CrunchFile opens path and crunches it. The file size drives the number of workers.
func (c *Cruncher) CrunchFile(ctx context.Context, path string) (*Report, Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("opening input: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("opening input: %w", err)
	}

	c.config.Logger.Debug("Crunching file", "path", path, "size", info.Size())
	return c.pipeline.Run(ctx, file, info.Size())
}

// CrunchReader crunches r, whose length is size bytes or negative when unknown.
func (c *Cruncher) CrunchReader(ctx context.Context, r io.Reader, size int64) (*Report, Stats, error) {
	return c.pipeline.Run(ctx, r, size)
}

// Close releases the default logger if New created one.
func (c *Cruncher) Close() error {
	if c.ownsLogger {
		return c.config.Logger.Close()
	}
	return nil
}

// Crunch reads the NDJSON file at path and returns its Report.
func Crunch(path string, opts ...Option) (*Report, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	report, _, err := c.CrunchFile(context.Background(), path)
	return report, err
}
