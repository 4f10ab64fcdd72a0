package app

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/quantmind-br/unitybackup-go/internal/domain"
	"github.com/quantmind-br/unitybackup-go/internal/patterns"
)

// Report is the result of a run
type Report struct {
	Mode        domain.Mode
	Name        string
	Root        string
	Patterns    []string
	Manifest    *domain.Manifest
	Destination string
	Compressed  bool
	NothingToDo bool
	Duration    time.Duration
}

// Summary returns the manifest counters
func (r *Report) Summary() domain.Summary {
	return r.Manifest.Summary()
}

// Headline returns a one-line summary of the selection
func (r *Report) Headline() string {
	if r.NothingToDo {
		return "Nothing to do: no file types configured."
	}
	s := r.Summary()
	return fmt.Sprintf("%d file(s), %d director(ies) and %d metafile(s) selected for backup. Raw backup size: %.2f MB",
		s.Files, s.Directories, s.Sidecars, float64(s.TotalBytes)/1048576.0)
}

// Render returns the report as a table
func (r *Report) Render() string {
	s := r.Summary()

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Item", "Value"})

	tw.AppendRow(table.Row{"Mode", string(r.Mode)})
	if r.Name != "" {
		tw.AppendRow(table.Row{"Backup", r.Name})
	}
	tw.AppendRow(table.Row{"File types", describeOrNone(r.Patterns)})
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"Files", strconv.Itoa(s.Files)})
	tw.AppendRow(table.Row{"Directories", strconv.Itoa(s.Directories)})
	tw.AppendRow(table.Row{"Metafiles", strconv.Itoa(s.Sidecars)})
	tw.AppendRow(table.Row{"Raw size", humanize.IBytes(uint64(s.TotalBytes))})
	if r.Destination != "" {
		tw.AppendSeparator()
		tw.AppendRow(table.Row{"Destination", r.Destination})
	}
	if r.Duration > 0 {
		tw.AppendRow(table.Row{"Duration", r.Duration.Round(time.Millisecond).String()})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}

func describeOrNone(pats []string) string {
	if len(pats) == 0 {
		return "none"
	}
	return patterns.Describe(pats)
}
