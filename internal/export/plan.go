package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"orxport/internal/destpath"
	"orxport/internal/exportcache"
	"orxport/internal/logging"
	"orxport/internal/manifest"
	"orxport/internal/services"
	"orxport/internal/svg"
)

// ErrNothingToExport is returned by Check when every emoji was filtered out.
var ErrNothingToExport = fmt.Errorf("%w: no emoji to export", services.ErrValidation)

// Output is one file an emoji produces.
type Output struct {
	Target
	// Path is the destination below the output directory.
	Path string
	// Cached reports whether the file is copied from the cache instead of
	// being rendered.
	Cached bool
}

// Job is the unit of work handed to a worker: one emoji and its outputs.
type Job struct {
	Emoji   *manifest.Emoji
	Source  []byte
	Outputs []Output
}

// Pending returns the outputs that must be rendered.
func (j *Job) Pending() []Output {
	var out []Output
	for _, o := range j.Outputs {
		if !o.Cached {
			out = append(out, o)
		}
	}
	return out
}

func (j *Job) cachedCount() int {
	n := 0
	for _, o := range j.Outputs {
		if o.Cached {
			n++
		}
	}
	return n
}

// Plan is the outcome of Check.
type Plan struct {
	Jobs []*Job
	// Skipped lists emoji excluded from every target.
	Skipped []*manifest.Emoji
	// Filtered counts excluded (emoji, target) pairs, including those of
	// skipped emoji.
	Filtered int
}

// Summary counts emoji by how their outputs are produced.
type Summary struct {
	Skipped  int
	Cached   int
	Partial  int
	Exported int
}

// Summary classifies each job: fully cached, partially cached or fully
// rendered.
func (p *Plan) Summary() Summary {
	s := Summary{Skipped: len(p.Skipped)}
	for _, job := range p.Jobs {
		cached := job.cachedCount()
		switch {
		case cached == len(job.Outputs):
			s.Cached++
		case cached > 0:
			s.Partial++
		default:
			s.Exported++
		}
	}
	return s
}

// Pending returns the jobs with at least one output to render, in plan
// order.
func (p *Plan) Pending() []*Job {
	var jobs []*Job
	for _, job := range p.Jobs {
		if job.cachedCount() < len(job.Outputs) {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

// Check builds the export plan for emoji and targets. It fails on the first
// emoji with a missing or mis-sized source or an unresolvable path, and
// with ErrNothingToExport when no emoji remains.
func (r *Runner) Check(ctx context.Context, emoji []*manifest.Emoji, targets []Target) (*Plan, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no export destinations", services.ErrValidation)
	}
	if r.opts.ForceDesc {
		if err := requireDesc(emoji); err != nil {
			return nil, err
		}
	}
	licenseEnabled := false
	for _, t := range targets {
		licenseEnabled = licenseEnabled || t.License
	}

	plan := &Plan{}
	for _, e := range emoji {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: check interrupted: %w", services.ErrCancelled, err)
		}
		outputs, filtered, err := r.resolveOutputs(e, targets)
		if err != nil {
			return nil, err
		}
		plan.Filtered += filtered
		if len(outputs) == 0 {
			plan.Skipped = append(plan.Skipped, e)
			r.logger.Debug("skipping emoji", logging.String(logging.FieldEmoji, e.Label()))
			continue
		}

		source, err := r.readSource(e)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			exportcache.KeysFor(e, r.manifest, source, licenseEnabled)
			for i := range outputs {
				mode := exportcache.Mode(outputs[i].Format, outputs[i].License)
				hit, err := r.cache.Exists(e, outputs[i].Format, mode)
				if err != nil {
					return nil, err
				}
				outputs[i].Cached = hit
			}
		}
		plan.Jobs = append(plan.Jobs, &Job{Emoji: e, Source: source, Outputs: outputs})
	}

	s := plan.Summary()
	r.logger.Info("output plan",
		logging.Int("skipped", s.Skipped),
		logging.Int("cached", s.Cached),
		logging.Int("partially_cached", s.Partial),
		logging.Int("exported", s.Exported),
	)
	if len(plan.Jobs) == 0 {
		return plan, ErrNothingToExport
	}
	return plan, nil
}

func (r *Runner) resolveOutputs(e *manifest.Emoji, targets []Target) ([]Output, int, error) {
	outputs := make([]Output, 0, len(targets))
	filtered := 0
	for _, t := range targets {
		path, err := destpath.Resolve(t.Structure, e, t.Format)
		if err != nil {
			if destpath.IsFiltered(err) {
				filtered++
				r.logger.Debug("filtered from target",
					logging.String(logging.FieldEmoji, e.Label()),
					logging.String("format", t.Format.Name),
					logging.Error(err),
				)
				continue
			}
			return nil, 0, err
		}
		outputs = append(outputs, Output{Target: t, Path: filepath.Join(r.opts.OutputDir, path)})
	}
	return outputs, filtered, nil
}

func (r *Runner) readSource(e *manifest.Emoji) ([]byte, error) {
	src := e.Src()
	if src == "" {
		return nil, fmt.Errorf("%w: missing attribute src in emoji %s", services.ErrValidation, e.Label())
	}
	path := filepath.Join(r.opts.InputDir, filepath.FromSlash(src))
	data, err := os.ReadFile(path)
	if err != nil {
		marker := services.ErrIO
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return nil, fmt.Errorf("%w: source of emoji %s: %w", marker, e.Label(), err)
	}
	if r.opts.SrcWidth > 0 && r.opts.SrcHeight > 0 {
		w, h, err := svg.ViewBoxSize(data)
		if err != nil {
			return nil, fmt.Errorf("%w: emoji %s (%s): %w", services.ErrValidation, e.Label(), src, err)
		}
		if w != r.opts.SrcWidth || h != r.opts.SrcHeight {
			return nil, fmt.Errorf("%w: emoji %s (%s) is %dx%d, expected %dx%d",
				services.ErrValidation, e.Label(), src, w, h, r.opts.SrcWidth, r.opts.SrcHeight)
		}
	}
	return data, nil
}

func requireDesc(emoji []*manifest.Emoji) error {
	var missing []string
	for _, e := range emoji {
		if desc, ok := e.String("desc"); !ok || strings.TrimSpace(desc) == "" {
			missing = append(missing, e.Label())
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d emoji have no description: %s",
		services.ErrValidation, len(missing), strings.Join(missing, ", "))
}
