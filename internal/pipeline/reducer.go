package pipeline

import "github.com/baditaflorin/go_log_cruncher/internal/core/domain"

// reduce folds every report received until reports is closed into a fresh Report.
func reduce(reports <-chan *domain.Report) *domain.Report {
	total := domain.NewReport()
	for report := range reports {
		total.Merge(report)
	}
	return total
}

// discard drains reports without merging them.
func discard(reports <-chan *domain.Report) {
	for range reports {
	}
}
