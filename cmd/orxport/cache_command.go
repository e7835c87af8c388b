package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"orxport/internal/exportcache"
	"orxport/internal/logging"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the export cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show export cache usage per format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, warn, err := openCache(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || cache == nil {
				return err
			}
			stats, err := cache.Stats()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache:   %s\n", stats.Root)
			fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
			fmt.Fprintf(out, "Size:    %s\n", humanBytes(stats.Bytes))
			if len(stats.Formats) == 0 {
				fmt.Fprintln(out, "Cached formats: none")
				return nil
			}
			rows := make([][]string, 0, len(stats.Formats))
			for _, format := range stats.Formats {
				rows = append(rows, []string{format.Format, fmt.Sprint(format.Entries), humanBytes(format.Bytes)})
			}
			fmt.Fprintln(out, renderTable([]string{"Format", "Entries", "Size"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [format...]",
		Short: "Remove cached exports, for every format or only the ones named",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, warn, err := openCache(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || cache == nil {
				return err
			}
			unlock, err := cache.Lock()
			if err != nil {
				return err
			}
			defer unlock()

			removed, err := cache.Clear(args...)
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cache entries removed")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", removed)
			return nil
		},
	}
}

func openCache(ctx *commandContext) (*exportcache.Cache, string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	if cfg == nil || !cfg.Cache.Enabled {
		return nil, "Export cache is disabled (set [cache] enabled = true in config.toml)", nil
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, "", err
	}
	cache, err := exportcache.New(cfg.Paths.CacheDir,
		exportcache.WithLogger(logger.With(logging.String(logging.FieldComponent, "cli-cache"))),
	)
	if err != nil {
		return nil, "", err
	}
	return cache, "", nil
}
