package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_log_cruncher/internal/adapters/jsonprocessor"
	"github.com/baditaflorin/go_log_cruncher/internal/adapters/logger"
	"github.com/baditaflorin/go_log_cruncher/internal/core/domain"
	"github.com/baditaflorin/go_log_cruncher/internal/ports"
)

// generateRecords builds an NDJSON document with a mix of valid, type-less,
// broken and empty lines. It returns the document and the number of non-empty lines.
func generateRecords(seed int64, lines int) (string, int) {
	rnd := rand.New(rand.NewSource(seed))
	types := []string{"click", "view", "purchase", "signup", "logout"}

	var sb strings.Builder
	nonEmpty := 0
	for i := 0; i < lines; i++ {
		switch n := rnd.Intn(20); {
		case n == 0:
			sb.WriteString("not json")
			nonEmpty++
		case n == 1:
			fmt.Fprintf(&sb, `{"foo":%d}`, i)
			nonEmpty++
		case n == 2:
			// empty line
		default:
			fmt.Fprintf(&sb, `{"type":%q,"seq":%d,"payload":%q}`,
				types[rnd.Intn(len(types))], i, strings.Repeat("p", rnd.Intn(40)))
			nonEmpty++
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nonEmpty
}

// sequentialReport tallies the whole input as one chunk.
func sequentialReport(input string) *domain.Report {
	report := domain.NewReport()
	jsonprocessor.New().Process([]byte(input), report)
	return report
}

func run(t *testing.T, input string, cfg Config) (*domain.Report, Stats, error) {
	t.Helper()
	return newTestPipeline(cfg).Run(context.Background(), strings.NewReader(input), int64(len(input)))
}

func TestRun_Scenarios(t *testing.T) {
	a := `{"type":"a"}`
	b := `{"type":"b"}`

	t.Run("histogram of types", func(t *testing.T) {
		report, _, err := run(t, a+"\n"+b+"\n"+a+"\n", Config{})
		require.NoError(t, err)
		assert.Equal(t, domain.Statistics{Cardinality: 2, NumberOfBytes: 2 * len(a)}, report.Histogram["a"])
		assert.Equal(t, domain.Statistics{Cardinality: 1, NumberOfBytes: len(b)}, report.Histogram["b"])
		assert.Len(t, report.Histogram, 2)
		assert.Zero(t, report.Errors)
	})

	t.Run("not json", func(t *testing.T) {
		report, _, err := run(t, "not json\n", Config{})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Errors)
		assert.Empty(t, report.Histogram)
	})

	t.Run("missing type", func(t *testing.T) {
		report, _, err := run(t, `{"foo":1}`+"\n", Config{})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Errors)
		assert.Empty(t, report.Histogram)
	})

	t.Run("empty input", func(t *testing.T) {
		report, stats, err := run(t, "", Config{})
		require.NoError(t, err)
		assert.Empty(t, report.Histogram)
		assert.Zero(t, report.Errors)
		assert.Zero(t, stats.Chunks)
		assert.Equal(t, 1, stats.Workers)
	})

	t.Run("record larger than chunk", func(t *testing.T) {
		line := `{"type":"` + strings.Repeat("x", 100) + `"}`
		report, _, err := run(t, line+"\n", Config{ChunkSize: 64})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrRecordTooLarge)
		assert.Nil(t, report)
	})
}

func TestRun_Conservation(t *testing.T) {
	input, nonEmpty := generateRecords(1, 2000)

	report, stats, err := run(t, input, Config{ChunkSize: 512, Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, nonEmpty, report.Records()+report.Errors)
	assert.Equal(t, int64(len(input)), stats.BytesRead)
	assert.Equal(t, 4, stats.Workers)
	assert.Greater(t, stats.Chunks, 1)
}

func TestRun_ByteAccounting(t *testing.T) {
	input, _ := generateRecords(2, 500)

	expected := map[string]int{}
	for _, line := range strings.Split(input, "\n") {
		if typ, ok := jsonprocessor.RecordType([]byte(line)); ok {
			expected[typ] += len(line)
		}
	}

	report, _, err := run(t, input, Config{ChunkSize: 256, Workers: 3})
	require.NoError(t, err)
	require.Len(t, report.Histogram, len(expected))
	for typ, n := range expected {
		assert.Equal(t, n, report.Histogram[typ].NumberOfBytes, "type %s", typ)
	}
}

func TestRun_WorkerCountIndependence(t *testing.T) {
	input, _ := generateRecords(3, 3000)
	expected := sequentialReport(input)

	for _, workers := range []int{1, 2, 3, 8, 16} {
		report, _, err := run(t, input, Config{ChunkSize: 300, Workers: workers})
		require.NoError(t, err)
		assert.True(t, expected.Equal(report), "workers=%d", workers)
	}
}

func TestRun_ChunkBoundaryTransparency(t *testing.T) {
	input, _ := generateRecords(4, 1500)
	expected := sequentialReport(input)

	for _, size := range []int{128, 129, 200, 333, 1024, 4096, DefaultChunkSize} {
		for _, inFlight := range []int{1, 4, 32} {
			report, _, err := run(t, input, Config{ChunkSize: size, InFlightChunks: inFlight, Workers: 4})
			require.NoError(t, err)
			assert.True(t, expected.Equal(report), "chunk size %d, in flight %d", size, inFlight)
		}
	}
}

func TestRun_MissingTrailingDelimiter(t *testing.T) {
	input := `{"type":"a"}` + "\n" + `{"type":"a"}`
	report, _, err := run(t, input, Config{ChunkSize: 16})
	require.NoError(t, err)
	assert.Equal(t, domain.Statistics{Cardinality: 2, NumberOfBytes: 24}, report.Histogram["a"])
}

func TestRun_ReadError(t *testing.T) {
	errBoom := errors.New("disk on fire")
	input, _ := generateRecords(5, 200)
	r := io.MultiReader(strings.NewReader(input), iotest.ErrReader(errBoom))

	report, _, err := newTestPipeline(Config{ChunkSize: 128, Workers: 2}).Run(context.Background(), r, -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, report)
}

func TestRun_Cancelled(t *testing.T) {
	input, _ := generateRecords(6, 500)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, stats, err := newTestPipeline(Config{ChunkSize: 64, Workers: 2}).
		Run(ctx, strings.NewReader(input), int64(len(input)))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
	assert.Zero(t, stats.Chunks)
}

func TestRun_ProcessorPanic(t *testing.T) {
	input, _ := generateRecords(7, 2000)
	var calls sync.Mutex
	count := 0
	p := New(logger.NewNopLogger(), ports.ChunkProcessorFunc(func(chunk []byte, report *domain.Report) {
		calls.Lock()
		count++
		n := count
		calls.Unlock()
		if n == 3 {
			panic("bad chunk")
		}
		jsonprocessor.New().Process(chunk, report)
	}), Config{ChunkSize: 256, Workers: 2, InFlightChunks: 2})

	report, _, err := p.Run(context.Background(), strings.NewReader(input), int64(len(input)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic recovered: bad chunk")
	assert.Nil(t, report)
}

func TestRun_CustomProcessor(t *testing.T) {
	var mu sync.Mutex
	var seen bytes.Buffer
	counter := ports.ChunkProcessorFunc(func(chunk []byte, report *domain.Report) {
		mu.Lock()
		seen.Write(chunk)
		mu.Unlock()
		report.Update("lines", bytes.Count(chunk, []byte{'\n'}), len(chunk))
	})

	input := strings.Repeat("line\n", 100)
	p := New(logger.NewNopLogger(), counter, Config{ChunkSize: 32, Workers: 3})
	report, _, err := p.Run(context.Background(), strings.NewReader(input), int64(len(input)))
	require.NoError(t, err)

	assert.Equal(t, domain.Statistics{Cardinality: 100, NumberOfBytes: len(input)}, report.Histogram["lines"])
	assert.Equal(t, len(input), seen.Len())
}
