package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"orxport/internal/catalog"
	"orxport/internal/config"
	"orxport/internal/deps"
	"orxport/internal/export"
	"orxport/internal/exportcache"
	"orxport/internal/filter"
	"orxport/internal/history"
	"orxport/internal/logging"
	"orxport/internal/manifest"
	"orxport/internal/preflight"
	"orxport/internal/render"
	"orxport/internal/services"
)

type exportOptions struct {
	manifest  string
	input     string
	output    string
	formats   []string
	naming    string
	renderer  string
	threads   int
	noLicense bool
	params    string
	filters   []string
	where     string
	srcSize   string
	maxBatch  int
	forceDesc bool
	noCache   bool
	jsonPath  string
	webPath   string
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the emoji described by a manifest",
		Long: `Export compiles the manifest, resolves every output path, reuses cached
exports where possible and renders the rest with a pool of workers.

Path templates accept %f (format), %i (codec family), %z (size), %s
(shortcode), %u / %U (codepoint filename), %c / %C (colormap), %d (source
directory) and %(attr) for any emoji attribute.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.manifest, "manifest", "m", "", "Manifest file")
	flags.StringVarP(&opts.input, "input", "i", "", "Directory containing source SVG images")
	flags.StringVarP(&opts.output, "output", "o", "", "Output directory")
	flags.StringSliceVarP(&opts.formats, "formats", "F", nil, "Comma separated export formats (svg, svgo, png-SIZE, pngc-SIZE, webp-SIZE, avif-SIZE, flif-SIZE)")
	flags.StringVarP(&opts.naming, "naming", "f", "", "Output path template")
	flags.StringVarP(&opts.renderer, "renderer", "r", "", "Rasterizer (inkscape, rendersvg, imagemagick)")
	flags.IntVarP(&opts.threads, "threads", "t", 0, "Number of export workers")
	flags.BoolVarP(&opts.noLicense, "no-license", "l", false, "Do not embed license metadata")
	flags.StringVarP(&opts.params, "params", "p", "", "Parameters file with dest statements (overrides --formats, --naming)")
	flags.StringArrayVarP(&opts.filters, "filter", "e", nil, "Only export emoji matching key=value1,value2 (repeatable; * matches any value, ! an absent one)")
	flags.StringVar(&opts.where, "where", "", "Only export emoji for which the expression is true")
	flags.StringVarP(&opts.srcSize, "src-size", "q", "", "Require source images to have this WIDTHxHEIGHT viewBox")
	flags.IntVarP(&opts.maxBatch, "max-batch", "b", 0, "Maximum files per exiftool invocation")
	flags.BoolVar(&opts.forceDesc, "force-desc", false, "Fail when an exported emoji has no desc")
	flags.BoolVar(&opts.noCache, "no-cache", false, "Neither read from nor write to the export cache")
	flags.StringVarP(&opts.jsonPath, "json", "j", "", "Also write the exported emoji as JSON to this file")
	flags.StringVarP(&opts.webPath, "web", "J", "", "Also write website metadata JSON to this file")

	return cmd
}

// applyExportFlags overrides config values with explicitly set flags.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config, opts exportOptions) error {
	flags := cmd.Flags()
	expand := func(name, value string, target *string) error {
		if !flags.Changed(name) {
			return nil
		}
		expanded, err := config.ExpandPath(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		*target = expanded
		return nil
	}
	if err := expand("manifest", opts.manifest, &cfg.Export.Manifest); err != nil {
		return err
	}
	if err := expand("input", opts.input, &cfg.Paths.InputDir); err != nil {
		return err
	}
	if err := expand("output", opts.output, &cfg.Paths.OutputDir); err != nil {
		return err
	}
	if err := expand("params", opts.params, &cfg.Export.Params); err != nil {
		return err
	}
	if flags.Changed("formats") {
		cfg.Export.Formats = opts.formats
	}
	if flags.Changed("naming") {
		cfg.Export.Naming = opts.naming
	}
	if flags.Changed("renderer") {
		cfg.Export.Renderer = strings.ToLower(strings.TrimSpace(opts.renderer))
	}
	if flags.Changed("threads") {
		cfg.Export.Threads = opts.threads
	}
	if flags.Changed("max-batch") {
		cfg.Export.MaxBatch = opts.maxBatch
	}
	if flags.Changed("src-size") {
		cfg.Export.SrcSize = strings.TrimSpace(opts.srcSize)
	}
	if opts.noLicense {
		cfg.Export.License = false
	}
	if opts.forceDesc {
		cfg.Export.ForceDesc = true
	}
	if opts.noCache {
		cfg.Cache.Enabled = false
	}
	return cfg.Validate()
}

func runExport(cmd *cobra.Command, ctx *commandContext, opts exportOptions) error {
	loaded, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg := *loaded
	if err := applyExportFlags(cmd, &cfg, opts); err != nil {
		return services.Wrap(services.ErrConfiguration, "export", "flags", "", err)
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	run := history.Run{
		ID:        history.NewRunID(),
		StartedAt: time.Now(),
		Manifest:  cfg.Export.Manifest,
		Renderer:  cfg.Export.Renderer,
	}
	runCtx := services.WithRunID(cmd.Context(), run.ID)
	logger = logging.WithContext(runCtx, logger)

	result, err := executeExport(runCtx, cmd, ctx, &cfg, opts, logger, &run)
	run.Duration = time.Since(run.StartedAt)
	run.Rendered = result.Rendered
	run.Copied = result.Copied
	run.Licensed = result.Licensed
	switch {
	case err == nil:
		run.Status = history.StatusCompleted
	case services.ExitCode(err) == 130:
		run.Status = history.StatusCancelled
		run.Error = err.Error()
	default:
		run.Status = history.StatusFailed
		run.Error = err.Error()
	}
	recordRun(runCtx, &cfg, run, logger)
	return err
}

func executeExport(ctx context.Context, cmd *cobra.Command, cmdCtx *commandContext, cfg *config.Config, opts exportOptions, logger *slog.Logger, run *history.Run) (export.Result, error) {
	var result export.Result
	out := cmd.OutOrStdout()

	if err := cfg.EnsureDirectories(); err != nil {
		return result, services.Wrap(services.ErrIO, "export", "prepare", "", err)
	}
	if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, check := range failed {
			details = append(details, check.Name+": "+check.Detail)
		}
		return result, services.Wrap(services.ErrConfiguration, "export", "preflight", strings.Join(details, "; "), nil)
	}

	m, err := manifest.Load(ctx, cfg.Export.Manifest, manifest.WithLogger(logger))
	if err != nil {
		return result, err
	}

	targets, err := loadTargets(ctx, cfg)
	if err != nil {
		return result, err
	}
	for _, target := range targets {
		run.Formats = append(run.Formats, target.Format.Name)
	}
	warnMissingTools(cfg, targets, logger)

	f, err := filter.New(opts.filters, opts.where)
	if err != nil {
		return result, err
	}
	emoji, err := f.Apply(m.Emoji)
	if err != nil {
		return result, err
	}
	run.Emoji = len(emoji)
	logger.Info("manifest loaded",
		logging.String("manifest", cfg.Export.Manifest),
		logging.Int("emoji", len(m.Emoji)),
		logging.Int("selected", len(emoji)),
	)

	if err := writeCatalogs(opts, emoji); err != nil {
		return result, err
	}

	runnerOpts := []export.Option{export.WithLogger(logger)}
	if cfg.Cache.Enabled {
		cache, err := exportcache.New(cfg.Paths.CacheDir,
			exportcache.WithLogger(logger),
			exportcache.WithUnlicensedVector(cfg.Cache.CacheUnlicensedVector),
		)
		if err != nil {
			return result, err
		}
		unlock, err := cache.Lock()
		if err != nil {
			return result, err
		}
		defer func() {
			if err := unlock(); err != nil {
				logger.Warn("release cache lock", logging.Error(err))
			}
		}()
		runnerOpts = append(runnerOpts, export.WithCache(cache))
	}

	renderer, err := render.NewCLI(cfg.Export.Renderer, renderTools(cfg.Tools), "", render.WithLogger(logger))
	if err != nil {
		return result, err
	}

	var srcWidth, srcHeight int
	if cfg.Export.SrcSize != "" {
		if srcWidth, srcHeight, err = config.ParseSize(cfg.Export.SrcSize); err != nil {
			return result, services.Wrap(services.ErrConfiguration, "export", "src-size", "", err)
		}
	}

	reporter := newProgressReporter(cmd.ErrOrStderr())
	runner := export.New(m, func(dir string) render.Renderer { return renderer.In(dir) }, export.Options{
		InputDir:   cfg.Paths.InputDir,
		OutputDir:  cfg.Paths.OutputDir,
		ScratchDir: cfg.Paths.ScratchDir,
		Threads:    cfg.Export.Threads,
		MaxBatch:   cfg.Export.MaxBatch,
		SrcWidth:   srcWidth,
		SrcHeight:  srcHeight,
		ForceDesc:  cfg.Export.ForceDesc,
		Reporter:   reporter,
	}, runnerOpts...)

	plan, err := runner.Check(ctx, emoji, targets)
	if err != nil {
		return result, err
	}
	run.Skipped = len(plan.Skipped)
	printPlan(out, plan, targets, cmdCtx.isVerbose())

	result, err = runner.Run(ctx, plan)
	reporter.finish()
	if err != nil {
		return result, err
	}
	fmt.Fprintf(out, "Exported %d files (%d from cache, %d licensed) in %s\n",
		result.Rendered+result.Copied, result.Copied, result.Licensed, result.Duration.Round(time.Millisecond))
	return result, nil
}

// loadTargets builds the export destinations from the parameters file when
// one is configured, or from the naming and formats settings otherwise.
func loadTargets(ctx context.Context, cfg *config.Config) ([]export.Target, error) {
	var (
		params *manifest.Parameters
		err    error
	)
	if cfg.Export.Params != "" {
		params, err = manifest.LoadParameters(ctx, cfg.Export.Params)
	} else {
		params, err = manifest.ParseParameters(ctx, manifest.DestStatement(cfg.Export.Naming, cfg.Export.Formats, cfg.Export.License))
	}
	if err != nil {
		return nil, err
	}
	targets, err := export.TargetsFromDests(params.Dests)
	if err != nil {
		return nil, err
	}
	if !cfg.Export.License {
		for i := range targets {
			targets[i].License = false
		}
	}
	return targets, nil
}

func warnMissingTools(cfg *config.Config, targets []export.Target, logger *slog.Logger) {
	formats := make([]string, 0, len(targets))
	for _, target := range targets {
		formats = append(formats, target.Format.Name)
	}
	for _, status := range deps.Missing(deps.CheckBinaries(preflight.Requirements(cfg, formats))) {
		logger.Warn("required tool not found",
			logging.String("tool", status.Name),
			logging.String("command", status.Command),
			logging.String("detail", status.Detail),
		)
	}
}

func writeCatalogs(opts exportOptions, emoji []*manifest.Emoji) error {
	if path := strings.TrimSpace(opts.jsonPath); path != "" {
		if err := catalog.WriteFile(path, func(w io.Writer) error {
			return catalog.WriteJSON(w, emoji)
		}); err != nil {
			return err
		}
	}
	if path := strings.TrimSpace(opts.webPath); path != "" {
		web, err := catalog.BuildWeb(emoji)
		if err != nil {
			return err
		}
		if err := catalog.WriteFile(path, func(w io.Writer) error {
			return catalog.WriteWeb(w, web)
		}); err != nil {
			return err
		}
	}
	return nil
}

func printPlan(out io.Writer, plan *export.Plan, targets []export.Target, verbose bool) {
	summary := plan.Summary()
	rows := [][]string{
		{"Skipped", fmt.Sprint(summary.Skipped)},
		{"Cached", fmt.Sprint(summary.Cached)},
		{"Partially cached", fmt.Sprint(summary.Partial)},
		{"To export", fmt.Sprint(summary.Exported)},
	}
	fmt.Fprintln(out, renderTable([]string{"Emoji", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, target.String())
	}
	fmt.Fprintf(out, "Targets: %s\n", strings.Join(names, ", "))

	if verbose && len(plan.Skipped) > 0 {
		skipped := make([]string, 0, len(plan.Skipped))
		for _, e := range plan.Skipped {
			skipped = append(skipped, e.Label())
		}
		fmt.Fprintf(out, "Skipped: %s\n", strings.Join(skipped, ", "))
	}
}

func renderTools(tools config.Tools) render.Tools {
	return render.Tools{
		Inkscape:   tools.Inkscape,
		Rendersvg:  tools.Rendersvg,
		Convert:    tools.Convert,
		Cwebp:      tools.Cwebp,
		Avif:       tools.Avif,
		Flif:       tools.Flif,
		Oxipng:     tools.Oxipng,
		Svgcleaner: tools.Svgcleaner,
		Exiftool:   tools.Exiftool,
	}
}

// recordRun appends run to the history ledger. Failures are only logged.
func recordRun(ctx context.Context, cfg *config.Config, run history.Run, logger *slog.Logger) {
	if !cfg.History.Enabled {
		return
	}
	ctx = context.WithoutCancel(ctx)
	store, err := history.Open(ctx, cfg.Paths.HistoryPath)
	if err != nil {
		logger.Warn("open history", logging.Error(err))
		return
	}
	defer store.Close()
	if _, err := store.Record(ctx, run); err != nil {
		logger.Warn("record run", logging.Error(err))
	}
}
