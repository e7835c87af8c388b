package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"orxport/internal/catalog"
	"orxport/internal/config"
	"orxport/internal/filter"
	"orxport/internal/manifest"
)

type manifestFlags struct {
	path    string
	filters []string
	where   string
}

func (f *manifestFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.path, "manifest", "m", "", "Manifest file (defaults to export.manifest)")
	cmd.PersistentFlags().StringArrayVarP(&f.filters, "filter", "e", nil, "Only include emoji matching key=value1,value2 (repeatable)")
	cmd.PersistentFlags().StringVar(&f.where, "where", "", "Only include emoji for which the expression is true")
}

func newManifestCommand(ctx *commandContext) *cobra.Command {
	var flags manifestFlags

	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect a compiled manifest",
	}
	flags.register(manifestCmd)

	manifestCmd.AddCommand(newManifestCheckCommand(ctx, &flags))
	manifestCmd.AddCommand(newManifestDumpCommand(ctx, &flags))
	manifestCmd.AddCommand(newManifestWebCommand(ctx, &flags))

	return manifestCmd
}

// loadManifest compiles the selected manifest and applies the filters.
func loadManifest(cmd *cobra.Command, ctx *commandContext, flags *manifestFlags) (*manifest.Manifest, []*manifest.Emoji, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	path := cfg.Export.Manifest
	if strings.TrimSpace(flags.path) != "" {
		if path, err = config.ExpandPath(strings.TrimSpace(flags.path)); err != nil {
			return nil, nil, fmt.Errorf("--manifest: %w", err)
		}
	}
	m, err := manifest.Load(cmd.Context(), path, manifest.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	f, err := filter.New(flags.filters, flags.where)
	if err != nil {
		return nil, nil, err
	}
	emoji, err := f.Apply(m.Emoji)
	if err != nil {
		return nil, nil, err
	}
	return m, emoji, nil
}

func newManifestCheckCommand(ctx *commandContext, flags *manifestFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compile the manifest and report what it declares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, emoji, err := loadManifest(cmd, ctx, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Manifest: %s\n", m.Path)
			fmt.Fprintf(out, "Emoji:     %d (%d selected)\n", len(m.Emoji), len(emoji))
			fmt.Fprintf(out, "Palettes:  %d\n", len(m.Palettes))
			fmt.Fprintf(out, "Colormaps: %d\n", len(m.Colormaps))
			fmt.Fprintf(out, "Classes:   %d\n", len(m.Classes))
			fmt.Fprintf(out, "Licenses:  %s\n", licenseSummary(m))

			categories := catalog.Categories(emoji)
			if len(categories) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(categories))
			for _, cat := range categories {
				rows = append(rows, []string{cat.Title, fmt.Sprint(cat.Count)})
			}
			fmt.Fprintln(out, renderTable([]string{"Category", "Emoji"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

func licenseSummary(m *manifest.Manifest) string {
	var kinds []string
	for _, kind := range []string{manifest.LicenseSVG, manifest.LicenseEXIF} {
		if _, ok := m.License(kind); ok {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) == 0 {
		return "none"
	}
	return strings.Join(kinds, ", ")
}

func newManifestDumpCommand(ctx *commandContext, flags *manifestFlags) *cobra.Command {
	var jsonPath, yamlPath string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the compiled emoji as JSON or YAML",
		Long: `Dump writes every selected emoji with its compiled attributes. Without
--json or --yaml the JSON form is written to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, emoji, err := loadManifest(cmd, ctx, flags)
			if err != nil {
				return err
			}
			if jsonPath == "" && yamlPath == "" {
				return catalog.WriteJSON(cmd.OutOrStdout(), emoji)
			}
			if jsonPath != "" {
				if err := catalog.WriteFile(jsonPath, func(w io.Writer) error {
					return catalog.WriteJSON(w, emoji)
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d emoji to %s\n", len(emoji), jsonPath)
			}
			if yamlPath != "" {
				if err := catalog.WriteFile(yamlPath, func(w io.Writer) error {
					return catalog.WriteYAML(w, emoji)
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d emoji to %s\n", len(emoji), yamlPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonPath, "json", "", "Write JSON to this file")
	cmd.Flags().StringVar(&yamlPath, "yaml", "", "Write YAML to this file")
	return cmd
}

func newManifestWebCommand(ctx *commandContext, flags *manifestFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "web FILE",
		Short: "Write website metadata (categories and variant roots) as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(args[0])
			if path == "" {
				return errors.New("output file is required")
			}
			_, emoji, err := loadManifest(cmd, ctx, flags)
			if err != nil {
				return err
			}
			web, err := catalog.BuildWeb(emoji)
			if err != nil {
				return err
			}
			if err := catalog.WriteFile(path, func(w io.Writer) error {
				return catalog.WriteWeb(w, web)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote website metadata for %d categories to %s\n", len(web.Cats), path)
			return nil
		},
	}
}
