package pipeline

import "runtime"

// Constants for the chunking pipeline
const (
	// DefaultChunkSize is the upper bound of a single chunk, and therefore of a single record
	DefaultChunkSize = 8 * 1024 * 1024 // 8MB

	// DefaultInFlightChunks limits the number of chunks queued between the reader and the workers
	DefaultInFlightChunks = 32

	// LineDelimiter terminates every record
	LineDelimiter = '\n'
)

// Config defines configuration for the pipeline. Zero values select the defaults.
type Config struct {
	// ChunkSize is the maximum size of a chunk in bytes.
	ChunkSize int
	// InFlightChunks is the capacity of the chunk channel.
	InFlightChunks int
	// Workers overrides the sizing policy when positive.
	Workers int
	// Parallelism is the available hardware parallelism, runtime.NumCPU() when zero.
	Parallelism int
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.InFlightChunks <= 0 {
		c.InFlightChunks = DefaultInFlightChunks
	}
	if c.Parallelism <= 0 {
		c.Parallelism = runtime.NumCPU()
	}
	return c
}
