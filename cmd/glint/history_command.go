package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"glint/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent extraction runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			runs, err := store.Recent(runCtx, limit)
			if err != nil {
				return err
			}

			if ctx.jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(os.Stdout, "no runs recorded yet")
				return nil
			}
			fmt.Fprintln(os.Stdout, renderHistoryTable(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to show")
	return cmd
}

func renderHistoryTable(runs []history.Run) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"When", "Model", "Examples", "Entities", "Duration", "Run"})
	for _, r := range runs {
		tw.AppendRow(table.Row{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Model,
			r.Examples,
			r.Entities,
			r.Duration.Round(time.Millisecond).String(),
			shortID(r.ID),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
