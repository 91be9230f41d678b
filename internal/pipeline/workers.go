package pipeline

import (
	"fmt"

	"github.com/baditaflorin/go_log_cruncher/internal/core/domain"
)

// work is the loop of a single worker. It drains chunks into a private Report and,
// once chunks is closed and empty, hands that Report off to reports.
// reports is buffered for every worker, so the hand-off never blocks.
// A panicking processor turns into an error and no Report is handed off.
func (p *Pipeline) work(id int, chunks <-chan *[]byte, reports chan<- *domain.Report) (err error) {
	report := domain.NewReport()
	processed := 0

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d: panic recovered: %v", id, r)
		}
	}()

	for buf := range chunks {
		p.processor.Process(*buf, report)
		p.buffers.Put(buf)
		processed++
	}

	reports <- report
	p.logger.Debug("Worker finished", "worker", id, "chunks", processed,
		"records", report.Records(), "errors", report.Errors)
	return nil
}
