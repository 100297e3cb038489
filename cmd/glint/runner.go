package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"glint/internal/chunk"
	"glint/internal/corpus"
	"glint/internal/detect"
	"glint/internal/history"
	"glint/internal/logging"
	"glint/internal/render"
	"glint/internal/stats"
)

type exampleResult struct {
	Name     string          `json:"name"`
	Text     string          `json:"text"`
	Windows  int             `json:"windows"`
	Entities []detect.Entity `json:"entities"`
}

type runReport struct {
	RunID   string          `json:"run_id"`
	Model   string          `json:"model"`
	Results []exampleResult `json:"results"`
	Summary stats.Summary   `json:"summary"`
}

// runExamples is the pipeline behind demo and extract: chunked detection
// over every example, rendering, and a best-effort history record.
func (c *commandContext) runExamples(out io.Writer, examples []corpus.Example, withSummary bool) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	inner, modelName, err := c.detector()
	if err != nil {
		return err
	}

	size := cfg.ChunkSize
	if size <= 0 {
		size = chunk.DefaultSize
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 {
		overlap = chunk.DefaultOverlap
	}
	if overlap >= size {
		overlap = size - 1
	}
	detector := chunk.Chunked{Inner: inner, Size: size, Overlap: overlap}

	collector := stats.NewCollector()
	palette := render.NewPalette()
	colorize := render.ShouldColorize(cfg.Color, out)

	report := runReport{RunID: uuid.NewString(), Model: modelName}
	for _, ex := range examples {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
		entities, err := detector.Detect(ctx, ex.Text)
		cancel()
		if err != nil {
			if errors.Is(err, detect.ErrModelUnavailable) {
				return fmt.Errorf("%w\n\nInstall the model bundle first:\n  glint model download %s", err, modelName)
			}
			return fmt.Errorf("example %s: %w", ex.Name, err)
		}
		windows := chunk.Windows(ex.Text, size, overlap)
		collector.Record(windows, entities)
		report.Results = append(report.Results, exampleResult{
			Name:     ex.Name,
			Text:     ex.Text,
			Windows:  windows,
			Entities: entities,
		})
		if !c.jsonFlag {
			renderExample(out, palette, ex, entities, windows, colorize)
		}
	}

	report.Summary = collector.Summary()
	if c.jsonFlag {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else if withSummary {
		fmt.Fprintln(out, render.SummaryTable(report.Summary))
		fmt.Fprintln(out, render.SummaryLine(report.Summary))
	}

	c.recordRun(report)
	return nil
}

func renderExample(out io.Writer, palette *render.Palette, ex corpus.Example, entities []detect.Entity, windows int, colorize bool) {
	fmt.Fprintf(out, "== %s ==\n\n", ex.Name)
	fmt.Fprintln(out, palette.Highlight(ex.Text, entities, colorize))
	fmt.Fprintln(out)
	if len(entities) == 0 {
		fmt.Fprintln(out, "no entities detected")
		fmt.Fprintln(out)
		return
	}
	if legend := palette.Legend(entities, colorize); legend != "" {
		fmt.Fprintf(out, "legend: %s\n", legend)
	}
	if windows > 1 {
		fmt.Fprintf(out, "chunked into %d windows\n", windows)
	}
	fmt.Fprintln(out, render.EntityTable(ex.Text, entities))
	fmt.Fprintln(out)
}

// recordRun appends the run to history. Failures are logged, never fatal;
// a read-only home directory must not break the demo.
func (c *commandContext) recordRun(report runReport) {
	cfg, err := c.ensureConfig()
	if err != nil || cfg.HistoryPath == "" {
		return
	}
	if c.logger == nil {
		c.logger = logging.New(io.Discard, false)
	}
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		c.logger.Warn("history unavailable", "error", err)
		return
	}
	defer store.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := store.Append(ctx, report.RunID, report.Model, report.Summary); err != nil {
		c.logger.Warn("history append failed", "error", err)
	}
}
