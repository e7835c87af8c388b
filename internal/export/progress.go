package export

import "sync/atomic"

// Progress counts completed jobs. It is safe for concurrent use.
type Progress struct {
	total     int
	completed atomic.Int64
}

// NewProgress returns a counter for total jobs.
func NewProgress(total int) *Progress {
	return &Progress{total: total}
}

// Done records one completed job.
func (p *Progress) Done() {
	p.completed.Add(1)
}

// Completed returns the number of completed jobs.
func (p *Progress) Completed() int {
	return int(p.completed.Load())
}

// Total returns the number of jobs in the run.
func (p *Progress) Total() int {
	return p.total
}

// Reporter receives progress snapshots from the scheduler's supervisor.
// Calls come from a single goroutine.
type Reporter interface {
	Update(completed, total int)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(completed, total int)

// Update calls f.
func (f ReporterFunc) Update(completed, total int) {
	f(completed, total)
}
