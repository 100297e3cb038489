package render

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"glint/internal/detect"
	"glint/internal/stats"
)

func newTable(headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	return tw
}

func rightAlign(tw table.Writer, columns ...int) {
	configs := make([]table.ColumnConfig, 0, len(columns))
	for _, n := range columns {
		configs = append(configs, table.ColumnConfig{
			Number:      n,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
}

// EntityTable lists every detected span of one text with its offsets.
func EntityTable(textSrc string, entities []detect.Entity) string {
	tw := newTable("#", "Type", "Text", "Start", "End", "Score")
	for i, e := range entities {
		surface := textSrc[e.Start:e.End]
		if len(surface) > 40 {
			surface = surface[:37] + "..."
		}
		tw.AppendRow(table.Row{i + 1, e.Type, surface, e.Start, e.End, fmt.Sprintf("%.2f", e.Score)})
	}
	rightAlign(tw, 1, 4, 5, 6)
	return tw.Render()
}

// SummaryTable shows per-type totals for the whole run.
func SummaryTable(s stats.Summary) string {
	tw := newTable("Type", "Count", "Avg score")
	for _, ts := range s.Types {
		tw.AppendRow(table.Row{ts.Type, ts.Count, fmt.Sprintf("%.2f", ts.AvgScore)})
	}
	tw.AppendFooter(table.Row{"total", s.Entities, ""})
	rightAlign(tw, 2, 3)
	return tw.Render()
}

// SummaryLine is the one-line run recap under the summary table.
func SummaryLine(s stats.Summary) string {
	return fmt.Sprintf("%d examples (%d chunked), %d entities in %s",
		s.Examples, s.Chunked, s.Entities, s.Duration.Round(time.Millisecond))
}
