// logger.go
// Package logcruncher provides shared utilities for the go_log_cruncher package.
package logcruncher

import (
	"github.com/baditaflorin/go_log_cruncher/internal/adapters/logger"
	"github.com/baditaflorin/go_log_cruncher/internal/ports"
)

// createDefaultLogger creates and returns a default logger instance writing to stderr.
func createDefaultLogger() (ports.Logger, error) {
	return logger.NewStdLogger()
}
