package main

import (
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// progressReporter drives a terminal progress bar from export progress
// updates. The bar is created on the first update, once the total is known.
type progressReporter struct {
	mu      sync.Mutex
	out     io.Writer
	visible bool
	bar     *progressbar.ProgressBar
}

func newProgressReporter(out io.Writer) *progressReporter {
	return &progressReporter{out: out, visible: shouldColorize(out)}
}

func (p *progressReporter) Update(completed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetVisibility(p.visible),
			progressbar.OptionSetDescription("exporting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(completed)
}

// finish completes the bar so the next output starts on a clean line.
func (p *progressReporter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
