package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"orxport/internal/config"
	"orxport/internal/deps"
	"orxport/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tool availability and directory health for the configured export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderStatusSections(collectStatus(cfg, ctx.configPath), shouldColorize(out)))
			return nil
		},
	}
}

func collectStatus(cfg *config.Config, configPath string) []statusSection {
	settings := statusSection{title: "Configuration", rows: []statusRow{
		{check: "Config", kind: statusInfo, detail: configPath},
		{check: "Manifest", kind: statusInfo, detail: cfg.Export.Manifest},
		{check: "Formats", kind: statusInfo, detail: strings.Join(cfg.Export.Formats, ", ")},
		{check: "Renderer", kind: statusInfo, detail: cfg.Export.Renderer},
		{check: "License", kind: statusInfo, detail: yesNo(cfg.Export.License)},
	}}

	tools := statusSection{title: "Tools"}
	statuses := preflight.CheckSystemDeps(cfg)
	if len(statuses) == 0 {
		tools.rows = append(tools.rows, statusRow{check: "Tools", kind: statusInfo, detail: "none required for these formats"})
	}
	for _, status := range statuses {
		tools.rows = append(tools.rows, toolRow(status))
	}

	dirs := statusSection{title: "Directories"}
	for _, result := range preflight.RunAll(cfg) {
		kind := statusOK
		if !result.Passed {
			kind = statusError
		}
		dirs.rows = append(dirs.rows, statusRow{check: result.Name, kind: kind, detail: result.Detail})
	}
	if !cfg.Cache.Enabled {
		dirs.rows = append(dirs.rows, statusRow{check: "Cache directory", kind: statusInfo, detail: "disabled"})
	}

	return []statusSection{settings, tools, dirs}
}

func toolRow(status deps.Status) statusRow {
	row := statusRow{check: status.Name}
	switch {
	case status.Available:
		row.kind, row.detail = statusOK, status.Path
	case status.Optional:
		row.kind, row.detail = statusWarn, status.Detail+" (optional)"
	default:
		row.kind, row.detail = statusError, status.Detail
	}
	if status.Description != "" {
		row.detail += " - " + status.Description
	}
	return row
}
