package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"glint/internal/corpus"
	"glint/internal/detect"
	"glint/internal/logging"
	"glint/internal/render"
)

func TestRunExamples_MissingModel(t *testing.T) {
	tmp := t.TempDir()
	ctx := &commandContext{
		configFlag:       writeConfig(t, "history_path = \""+filepath.Join(tmp, "history.db")+"\"\n"),
		modelDirFlag:     filepath.Join(tmp, "no-such-bundle"),
		minScoreFlag:     -1,
		chunkOverlapFlag: -1,
	}
	ctx.logger = logging.New(&bytes.Buffer{}, false)

	var out bytes.Buffer
	err := ctx.runExamples(&out, []corpus.Example{{Name: "x", Text: "Jane Doe"}}, true)
	if !errors.Is(err, detect.ErrModelUnavailable) {
		t.Fatalf("err %v", err)
	}
	if !strings.Contains(err.Error(), "glint model download") {
		t.Fatalf("error must point at the download command: %v", err)
	}
}

func TestRenderExample_WithEntities(t *testing.T) {
	var out bytes.Buffer
	ex := corpus.Example{Name: "memo", Text: "Jane Doe works at Acme."}
	entities := []detect.Entity{
		{Type: "PERSON", Start: 0, End: 8, Score: 0.9},
		{Type: "ORG", Start: 18, End: 22, Score: 0.8},
	}
	renderExample(&out, render.NewPalette(), ex, entities, 1, false)
	got := out.String()
	for _, want := range []string{"== memo ==", "Jane Doe works at Acme.", "legend: ORG PERSON", "0.90"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "chunked into") {
		t.Fatal("single-window example must not report chunking")
	}
}

func TestRenderExample_NoEntities(t *testing.T) {
	var out bytes.Buffer
	renderExample(&out, render.NewPalette(), corpus.Example{Name: "empty", Text: "nothing here"}, nil, 1, false)
	if !strings.Contains(out.String(), "no entities detected") {
		t.Fatalf("output %q", out.String())
	}
}

func TestRenderExample_ReportsChunking(t *testing.T) {
	var out bytes.Buffer
	entities := []detect.Entity{{Type: "LOC", Start: 0, End: 4, Score: 0.7}}
	renderExample(&out, render.NewPalette(), corpus.Example{Name: "long", Text: "Oslo and more"}, entities, 3, false)
	if !strings.Contains(out.String(), "chunked into 3 windows") {
		t.Fatalf("output %q", out.String())
	}
}
