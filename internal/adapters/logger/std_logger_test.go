package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig(&buf)
	assert.Equal(t, &buf, cfg.Output)
	assert.True(t, cfg.AsyncWrite)
	assert.False(t, cfg.JsonFormat)

	assert.NotNil(t, DefaultConfig(nil).Output)
}

func TestCustomStdLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig(&buf)
	cfg.AsyncWrite = false

	log, err := NewCustomStdLogger(cfg)
	require.NoError(t, err)
	log.Info("crunch started", "path", "records.ndjson")
	require.NoError(t, log.Close())

	assert.Contains(t, buf.String(), "crunch started")
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Debug("x")
	log.Info("x", "k", 1)
	log.Warn("x")
	log.Error("x")
	assert.NoError(t, log.Close())
}

func TestNewStdLogger(t *testing.T) {
	log, err := NewStdLogger()
	require.NoError(t, err)
	log.Debug("default logger ready")
	assert.NoError(t, log.Close())
}
