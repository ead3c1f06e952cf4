// Package report presents batch results on a terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/xob0t/covergen/pkg/batch"
)

var (
	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

// Headline is the one-line outcome of a run.
func Headline(r *batch.Report) string {
	if r.Failed > 0 {
		return fmt.Sprintf("some or all files failed (%d/%d)", r.Failed, r.Attempted)
	}
	if r.Attempted == 0 {
		return "no videos found"
	}
	if r.Skipped > 0 {
		return fmt.Sprintf("all %d videos done (%d covers written, %d already present)", r.Attempted, r.Attempted-r.Skipped, r.Skipped)
	}
	return fmt.Sprintf("all %d covers written", r.Attempted)
}

// FailureTable renders the failures of r, or "" when there are none.
func FailureTable(r *batch.Report) string {
	if len(r.Failures) == 0 {
		return ""
	}
	rows := make([][]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		rows = append(rows, []string{f.Name, f.Reason, f.Detail})
	}
	return renderTable([]string{"Video", "Reason", "Detail"}, rows)
}

// PlanTable renders the items a run would process.
func PlanTable(items []batch.Item) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.Name, it.Title, it.Output, fmt.Sprintf("%d", it.Render.FontSize)})
	}
	return renderTable([]string{"Video", "Title", "Cover", "Size"}, rows)
}

// Print writes the summary of r to w, styled when w is a terminal.
func Print(w io.Writer, r *batch.Report) error {
	colorize := shouldColorize(w)

	headline := Headline(r)
	if colorize {
		if r.Failed > 0 {
			headline = errorStyle.Render(headline)
		} else {
			headline = successStyle.Render(headline)
		}
	}

	var b strings.Builder
	b.WriteString(headline)
	b.WriteByte('\n')
	if t := FailureTable(r); t != "" {
		b.WriteString(t)
		b.WriteByte('\n')
	}

	footer := fmt.Sprintf("%d succeeded, %d failed, %d skipped in %s", r.Succeeded, r.Failed, r.Skipped, r.Duration.Round(time.Millisecond))
	if colorize {
		footer = dimStyle.Render(footer)
	}
	b.WriteString(footer)
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func renderTable(headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
			WidthMax:    60,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
