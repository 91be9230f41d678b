package domain

import (
	"sort"

	"golang.org/x/exp/maps"
)

// Statistics holds the per-type counters of a Report.
type Statistics struct {
	// Cardinality is the number of records of this type.
	Cardinality int `json:"cardinality"`
	// NumberOfBytes is the total raw length of those records, delimiters excluded.
	NumberOfBytes int `json:"number_of_bytes"`
}

// Report is the histogram of record types plus the count of erroneous records.
// A Report is owned by a single goroutine at a time and is not safe for concurrent use.
type Report struct {
	Errors    int                   `json:"errors"`
	Histogram map[string]Statistics `json:"histogram"`
}

// NewReport returns an empty Report, the identity element of Merge.
func NewReport() *Report {
	return &Report{Histogram: make(map[string]Statistics)}
}

// OnError counts one record that could not be tallied.
func (r *Report) OnError() {
	r.Errors++
}

// Update adds cardinality and numberOfBytes to the entry for typ, creating it if needed.
func (r *Report) Update(typ string, cardinality, numberOfBytes int) {
	s := r.Histogram[typ]
	s.Cardinality += cardinality
	s.NumberOfBytes += numberOfBytes
	r.Histogram[typ] = s
}

// Merge folds other into r and returns r. other is left untouched.
func (r *Report) Merge(other *Report) *Report {
	if other == nil {
		return r
	}
	r.Errors += other.Errors
	for typ, s := range other.Histogram {
		r.Update(typ, s.Cardinality, s.NumberOfBytes)
	}
	return r
}

// Records returns the number of successfully tallied records.
func (r *Report) Records() int {
	total := 0
	for _, s := range r.Histogram {
		total += s.Cardinality
	}
	return total
}

// Types returns the observed type names in lexical order.
func (r *Report) Types() []string {
	types := maps.Keys(r.Histogram)
	sort.Strings(types)
	return types
}

// Equal reports whether both reports hold the same histogram and error count.
func (r *Report) Equal(other *Report) bool {
	if r.Errors != other.Errors || len(r.Histogram) != len(other.Histogram) {
		return false
	}
	for typ, s := range r.Histogram {
		if o, ok := other.Histogram[typ]; !ok || o != s {
			return false
		}
	}
	return true
}
