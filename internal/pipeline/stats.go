package pipeline

import "time"

// Stats describes a single pipeline run.
type Stats struct {
	Workers   int           `json:"workers"`
	Chunks    int           `json:"chunks"`
	BytesRead int64         `json:"bytes_read"`
	Duration  time.Duration `json:"duration"`
}
