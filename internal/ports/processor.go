package ports

import "github.com/baditaflorin/go_log_cruncher/internal/core/domain"

// ChunkProcessor turns one line-aligned chunk into updates of a Report.
// Each worker calls it with its own Report, so implementations never see
// the same Report from two goroutines. The chunk must not be retained
// after Process returns.
type ChunkProcessor interface {
	Process(chunk []byte, report *domain.Report)
}

// ChunkProcessorFunc is an adapter to allow the use of ordinary functions as ChunkProcessor.
type ChunkProcessorFunc func(chunk []byte, report *domain.Report)

// Process calls f(chunk, report).
func (f ChunkProcessorFunc) Process(chunk []byte, report *domain.Report) { f(chunk, report) }
