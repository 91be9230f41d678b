// Package render formats a final report for humans or machines.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/baditaflorin/go_log_cruncher/internal/core/domain"
	"github.com/baditaflorin/go_log_cruncher/internal/pipeline"
)

const (
	rowFormat = "%-16s | %16s | %16s|\n"
	ruler     = "-------------------------------------------------------\n"
)

// Table writes the report as a three column table sorted by type, followed by
// the number of erroneous records.
func Table(w io.Writer, report *domain.Report) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, rowFormat, "Type", "Cardinality", "Bytes")
	sb.WriteString(ruler)
	for _, typ := range report.Types() {
		s := report.Histogram[typ]
		fmt.Fprintf(&sb, rowFormat, typ, strconv.Itoa(s.Cardinality), strconv.Itoa(s.NumberOfBytes))
	}
	sb.WriteString(ruler)
	fmt.Fprintf(&sb, "\nNumber of erroneous objects: %d\n", report.Errors)

	_, err := io.WriteString(w, sb.String())
	return err
}

// Output is the machine readable form of a run.
type Output struct {
	Report *domain.Report  `json:"report"`
	Stats  *pipeline.Stats `json:"stats,omitempty"`
}

// JSON writes the report, and stats when given, as indented JSON.
func JSON(w io.Writer, report *domain.Report, stats *pipeline.Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Output{Report: report, Stats: stats})
}
