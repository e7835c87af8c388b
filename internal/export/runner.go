package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"orxport/internal/exportcache"
	"orxport/internal/logging"
	"orxport/internal/manifest"
	"orxport/internal/render"
	"orxport/internal/services"
)

// RendererFactory returns a renderer whose temporary files live in dir.
type RendererFactory func(dir string) render.Renderer

// Options configures a Runner.
type Options struct {
	InputDir   string
	OutputDir  string
	ScratchDir string
	Threads    int
	MaxBatch   int
	// SrcWidth and SrcHeight, when set, are the required source viewBox size.
	SrcWidth  int
	SrcHeight int
	ForceDesc bool
	Reporter  Reporter
}

// Result summarizes a completed run.
type Result struct {
	Rendered int
	Copied   int
	Licensed int
	Filtered int
	Duration time.Duration
}

// Runner executes export plans for one manifest.
type Runner struct {
	manifest  *manifest.Manifest
	renderers RendererFactory
	cache     *exportcache.Cache
	opts      Options
	logger    *slog.Logger
}

// Option customizes New.
type Option func(*Runner)

// WithCache enables cache lookups and stores.
func WithCache(cache *exportcache.Cache) Option {
	return func(r *Runner) {
		r.cache = cache
	}
}

// WithLogger routes run diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "export")
	}
}

// New builds a Runner.
func New(m *manifest.Manifest, renderers RendererFactory, opts Options, options ...Option) *Runner {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	r := &Runner{
		manifest:  m,
		renderers: renderers,
		opts:      opts,
		logger:    logging.NewNop(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Run renders the pending outputs of plan, copies cache hits into place and
// embeds raster license metadata.
func (r *Runner) Run(ctx context.Context, plan *Plan) (Result, error) {
	start := time.Now()
	result := Result{Filtered: plan.Filtered}
	logger := logging.WithContext(ctx, r.logger)

	scratch, cleanup, err := r.scratchDir()
	if err != nil {
		return result, err
	}
	defer cleanup()

	pending := plan.Pending()
	if len(pending) > 0 {
		logger.Info("exporting emoji",
			logging.Int("emoji", len(pending)),
			logging.Int("threads", r.opts.Threads),
		)
		workers := make([]*worker, r.opts.Threads)
		for id := range workers {
			workers[id] = &worker{
				manifest: r.manifest,
				renderer: r.renderers(filepath.Join(scratch, "worker-"+strconv.Itoa(id))),
				cache:    r.cache,
				logger:   r.logger,
			}
		}
		scheduler := &Scheduler{
			Workers:  r.opts.Threads,
			Progress: NewProgress(len(pending)),
			Reporter: r.opts.Reporter,
			Logger:   r.logger,
		}
		err := scheduler.Run(ctx, pending, func(ctx context.Context, id int, job *Job) error {
			return workers[id].export(ctx, job)
		})
		if err != nil {
			return result, err
		}
		for _, job := range pending {
			result.Rendered += len(job.Pending())
		}
	}

	copied, err := r.copyCached(ctx, plan)
	result.Copied = copied
	if err != nil {
		return result, err
	}

	licensed, err := r.embedLicense(ctx, plan, filepath.Join(scratch, "metadata"))
	result.Licensed = licensed
	if err != nil {
		return result, err
	}

	result.Duration = time.Since(start)
	logger.Info("export complete",
		logging.Int("rendered", result.Rendered),
		logging.Int("copied", result.Copied),
		logging.Int("licensed", result.Licensed),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func (r *Runner) scratchDir() (string, func(), error) {
	if r.opts.ScratchDir == "" {
		dir, err := os.MkdirTemp("", "orxport-")
		if err != nil {
			return "", nil, services.Wrap(services.ErrIO, "export", "scratch", "create scratch directory", err)
		}
		return dir, func() { _ = os.RemoveAll(dir) }, nil
	}
	if err := os.MkdirAll(r.opts.ScratchDir, 0o755); err != nil {
		return "", nil, services.Wrap(services.ErrIO, "export", "scratch",
			fmt.Sprintf("create scratch directory %s", r.opts.ScratchDir), err)
	}
	dir, err := os.MkdirTemp(r.opts.ScratchDir, "run-")
	if err != nil {
		return "", nil, services.Wrap(services.ErrIO, "export", "scratch", "create scratch directory", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// copyCached copies every cache hit of plan to its output path.
func (r *Runner) copyCached(ctx context.Context, plan *Plan) (int, error) {
	if r.cache == nil {
		return 0, nil
	}
	copied := 0
	for _, job := range plan.Jobs {
		for _, out := range job.Outputs {
			if !out.Cached {
				continue
			}
			if err := ctx.Err(); err != nil {
				return copied, fmt.Errorf("%w: export interrupted: %w", services.ErrCancelled, err)
			}
			mode := exportcache.Mode(out.Format, out.License)
			if err := r.cache.Load(job.Emoji, out.Format, mode, out.Path); err != nil {
				return copied, err
			}
			copied++
		}
	}
	if copied > 0 {
		r.logger.Debug("copied cached exports", logging.Int("files", copied))
	}
	return copied, nil
}

// embedLicense writes the EXIF license into every licensed raster output
// that supports it.
func (r *Runner) embedLicense(ctx context.Context, plan *Plan, scratch string) (int, error) {
	license, ok := r.manifest.License(manifest.LicenseEXIF)
	if !ok || len(license.Fields) == 0 {
		return 0, nil
	}
	var paths []string
	for _, job := range plan.Jobs {
		for _, out := range job.Outputs {
			if out.License && out.Format.SupportsEXIF() {
				paths = append(paths, out.Path)
			}
		}
	}
	if len(paths) == 0 {
		return 0, nil
	}
	meta := make([]render.KV, 0, len(license.Fields))
	for _, field := range license.Fields {
		meta = append(meta, render.KV{Key: field.Tag, Value: field.Value})
	}
	r.logger.Info("adding license metadata", logging.Int("files", len(paths)))
	if err := r.renderers(scratch).EmbedMetadata(ctx, paths, meta, r.opts.MaxBatch); err != nil {
		return 0, fmt.Errorf("embed license metadata: %w", err)
	}
	return len(paths), nil
}
