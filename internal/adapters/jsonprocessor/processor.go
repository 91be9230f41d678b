// Package jsonprocessor tallies newline-delimited JSON records by their "type" field.
package jsonprocessor

import (
	"bytes"
	"encoding/json"
	"io"
	"unicode/utf8"

	"github.com/baditaflorin/go_log_cruncher/internal/core/domain"
	"github.com/baditaflorin/go_log_cruncher/internal/ports"
)

// LineDelimiter terminates every record.
const LineDelimiter = '\n'

// TypeField is the only field of a record that is looked at.
const TypeField = "type"

// Processor implements ports.ChunkProcessor for NDJSON input.
type Processor struct{}

// New creates a JSON chunk processor.
func New() ports.ChunkProcessor {
	return Processor{}
}

// Process splits chunk on LineDelimiter and tallies every non-empty line.
// Lines that are not JSON objects, or have no string "type", are counted as errors.
func (Processor) Process(chunk []byte, report *domain.Report) {
	for len(chunk) > 0 {
		end := bytes.IndexByte(chunk, LineDelimiter)
		if end < 0 {
			end = len(chunk)
		}
		line := chunk[:end]
		if end < len(chunk) {
			chunk = chunk[end+1:]
		} else {
			chunk = nil
		}
		if len(line) == 0 {
			continue
		}

		typ, ok := RecordType(line)
		if !ok {
			report.OnError()
			continue
		}
		report.Update(typ, 1, len(line))
	}
}

// RecordType extracts the "type" of a single record. The line must be exactly one
// JSON object. The key match is exact, the key must not repeat, and the value must
// be a JSON string of valid UTF-8.
func RecordType(line []byte) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(line))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return "", false
	}

	var raw json.RawMessage
	seen := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		key, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return "", false
		}
		if key != TypeField {
			continue
		}
		if seen {
			return "", false
		}
		seen = true
		raw = value
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return "", false
	}
	// nothing may follow the object
	if _, err := dec.Token(); err != io.EOF {
		return "", false
	}

	if !seen || !utf8.Valid(raw) {
		return "", false
	}
	var typ *string
	if err := json.Unmarshal(raw, &typ); err != nil || typ == nil {
		return "", false
	}
	return *typ, true
}
