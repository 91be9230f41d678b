package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_log_cruncher/internal/render"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("logcruncher", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "long path", args: []string{"-path", "a.ndjson"}},
		{name: "short path", args: []string{"-p", "a.ndjson", "-output", "json"}},
		{name: "missing path", args: []string{}, wantErr: "-path flag is required"},
		{name: "bad output", args: []string{"-p", "a", "-output", "xml"}, wantErr: "invalid output format"},
		{name: "bad chunk size", args: []string{"-p", "a", "-chunk-size", "0"}, wantErr: "chunk-size"},
		{name: "bad in flight", args: []string{"-p", "a", "-in-flight", "-1"}, wantErr: "in-flight"},
		{name: "negative workers", args: []string{"-p", "a", "-workers", "-2"}, wantErr: "workers"},
		{name: "bad profile", args: []string{"-p", "a", "-profile", "block"}, wantErr: "invalid profile mode"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := parseFlags(newFlagSet(), tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a.ndjson", opts.path)
		})
	}
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.ndjson")
	content := `{"type":"a"}` + "\n" + `{"type":"b"}` + "\n" + `{"type":"a"}` + "\nnot json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_Text(t *testing.T) {
	opts, err := parseFlags(newFlagSet(), []string{"-p", writeInput(t)})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))
	assert.Contains(t, out.String(), "a                |                2 |               24|")
	assert.Contains(t, out.String(), "Number of erroneous objects: 1")
	assert.NotContains(t, out.String(), "Workers:")
}

func TestRun_JSON(t *testing.T) {
	opts, err := parseFlags(newFlagSet(), []string{"-p", writeInput(t), "-output", "json"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))

	var decoded render.Output
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Report.Histogram["a"].Cardinality)
	assert.Equal(t, 1, decoded.Report.Errors)
	assert.Nil(t, decoded.Stats)
}

func TestRun_MissingFile(t *testing.T) {
	opts, err := parseFlags(newFlagSet(), []string{"-p", filepath.Join(t.TempDir(), "nope")})
	require.NoError(t, err)

	var out bytes.Buffer
	err = run(context.Background(), opts, &out)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "opening input"))
	assert.Empty(t, out.String())
}
