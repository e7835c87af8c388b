package main

import (
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

type statusRow struct {
	check  string
	kind   statusKind
	detail string
}

type statusSection struct {
	title string
	rows  []statusRow
}

var statusColors = map[statusKind]text.Colors{
	statusInfo:  {text.FgBlue},
	statusOK:    {text.FgGreen},
	statusWarn:  {text.FgYellow},
	statusError: {text.FgRed},
}

func (k statusKind) label() string {
	switch k {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusCell(kind statusKind, colorize bool) string {
	if !colorize {
		return kind.label()
	}
	return statusColors[kind].Sprint(kind.label())
}

// renderStatusSections draws one titled table per section.
func renderStatusSections(sections []statusSection, colorize bool) string {
	rendered := make([]string, 0, len(sections))
	for _, section := range sections {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.SetTitle(section.title)
		tw.AppendHeader(table.Row{"Check", "Status", "Detail"})
		for _, row := range section.rows {
			tw.AppendRow(table.Row{row.check, statusCell(row.kind, colorize), row.detail})
		}
		rendered = append(rendered, tw.Render())
	}
	return strings.Join(rendered, "\n")
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
