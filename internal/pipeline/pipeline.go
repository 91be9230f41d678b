// Package pipeline implements the concurrent chunking and reduction of
// newline-delimited records: a single reader cuts the input into line-aligned
// chunks, a pool of workers tallies them into private reports, and the caller
// merges those reports into the final one.
package pipeline

import (
	"context"
	"errors"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baditaflorin/go_log_cruncher/internal/core/domain"
	"github.com/baditaflorin/go_log_cruncher/internal/pool"
	"github.com/baditaflorin/go_log_cruncher/internal/ports"
)

// Pipeline runs the chunker, the worker pool and the reducer.
type Pipeline struct {
	logger    ports.Logger
	processor ports.ChunkProcessor
	buffers   *pool.BufferPool
	config    Config
}

// New creates a pipeline feeding chunks to processor.
func New(logger ports.Logger, processor ports.ChunkProcessor, config Config) *Pipeline {
	config = config.withDefaults()
	return &Pipeline{
		logger:    logger,
		processor: processor,
		buffers:   pool.NewBufferPool(config.ChunkSize),
		config:    config,
	}
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

func (p *Pipeline) workerCount(size int64) int {
	if p.config.Workers > 0 {
		return p.config.Workers
	}
	return WorkerCount(p.config.Parallelism, size, p.config.ChunkSize)
}

// Run crunches r, whose length is size bytes (negative if unknown), and returns
// the merged report of all workers. On any fatal error no report is returned;
// workers are always joined before Run returns.
func (p *Pipeline) Run(ctx context.Context, r io.Reader, size int64) (*domain.Report, Stats, error) {
	startTime := time.Now()
	stats := Stats{Workers: p.workerCount(size)}

	p.logger.Info("Pipeline started",
		"size", size,
		"workers", stats.Workers,
		"chunk_size", p.config.ChunkSize,
		"in_flight_chunks", p.config.InFlightChunks,
	)

	chunks := make(chan *[]byte, p.config.InFlightChunks)
	reports := make(chan *domain.Report, stats.Workers)

	g, gctx := errgroup.WithContext(ctx)
	for id := range stats.Workers {
		g.Go(func() error {
			return p.work(id, chunks, reports)
		})
	}

	workersDone := make(chan error, 1)
	go func() {
		workersDone <- g.Wait()
		close(reports)
	}()

	err := p.chunk(gctx, r, chunks, &stats)
	close(chunks)

	if err != nil {
		discard(reports)
		workerErr := <-workersDone
		// the reader was stopped by a failing worker rather than by the caller
		if workerErr != nil && ctx.Err() == nil && errors.Is(err, context.Canceled) {
			err = workerErr
		}
		stats.Duration = time.Since(startTime)
		p.logger.Error("Pipeline failed",
			"error", err,
			"chunks", stats.Chunks,
			"bytes_read", stats.BytesRead,
			"duration", stats.Duration,
		)
		return nil, stats, err
	}

	report := reduce(reports)
	if err := <-workersDone; err != nil {
		stats.Duration = time.Since(startTime)
		p.logger.Error("Pipeline failed", "error", err, "duration", stats.Duration)
		return nil, stats, err
	}

	stats.Duration = time.Since(startTime)
	p.logger.Info("Pipeline completed",
		"workers", stats.Workers,
		"chunks", stats.Chunks,
		"bytes_read", stats.BytesRead,
		"types", len(report.Histogram),
		"records", report.Records(),
		"errors", report.Errors,
		"duration", stats.Duration,
	)
	return report, stats, nil
}
