package render

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"glint/internal/detect"
	"glint/internal/stats"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestHighlight_StrippedEqualsInput(t *testing.T) {
	text := "Jane Doe works at Acme in Berlin."
	entities := []detect.Entity{
		{Type: "PERSON", Start: 0, End: 8, Score: 0.9},
		{Type: "ORG", Start: 18, End: 22, Score: 0.8},
		{Type: "LOC", Start: 26, End: 32, Score: 0.8},
	}
	got := NewPalette().Highlight(text, entities, true)
	if got == text {
		t.Fatal("expected color codes in output")
	}
	if stripped := ansiRE.ReplaceAllString(got, ""); stripped != text {
		t.Fatalf("stripped output %q != input", stripped)
	}
}

func TestHighlight_NoColorPassThrough(t *testing.T) {
	text := "Jane Doe"
	entities := []detect.Entity{{Type: "PERSON", Start: 0, End: 8}}
	if got := NewPalette().Highlight(text, entities, false); got != text {
		t.Fatalf("got %q", got)
	}
}

func TestHighlight_SkipsOutOfBoundsSpans(t *testing.T) {
	text := "short"
	entities := []detect.Entity{{Type: "PERSON", Start: 2, End: 99}}
	got := NewPalette().Highlight(text, entities, true)
	if stripped := ansiRE.ReplaceAllString(got, ""); stripped != text {
		t.Fatalf("stripped output %q", stripped)
	}
}

func TestPalette_StableFallbackColors(t *testing.T) {
	p := NewPalette()
	first := p.Color("GADGET")
	if p.Color("GADGET") != first {
		t.Fatal("fallback color must be stable per type")
	}
	if p.Color("WIDGET") == first {
		t.Fatal("distinct unknown types should differ while colors last")
	}
}

func TestLegend(t *testing.T) {
	entities := []detect.Entity{
		{Type: "ORG"}, {Type: "PERSON"}, {Type: "ORG"},
	}
	legend := NewPalette().Legend(entities, false)
	if legend != "ORG PERSON" {
		t.Fatalf("legend %q", legend)
	}
}

func TestShouldColorize(t *testing.T) {
	var buf bytes.Buffer
	if ShouldColorize("auto", &buf) {
		t.Fatal("buffer is not a terminal")
	}
	if !ShouldColorize("always", &buf) {
		t.Fatal("always must force color")
	}
	if ShouldColorize("never", &buf) {
		t.Fatal("never must disable color")
	}
}

func TestEntityTable(t *testing.T) {
	text := "Jane Doe works at Acme."
	entities := []detect.Entity{
		{Type: "PERSON", Start: 0, End: 8, Score: 0.91},
		{Type: "ORG", Start: 18, End: 22, Score: 0.77},
	}
	out := EntityTable(text, entities)
	for _, want := range []string{"PERSON", "Jane Doe", "0.91", "Acme"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryTable(t *testing.T) {
	s := stats.Summary{
		Examples: 2,
		Entities: 3,
		Types: []stats.TypeStat{
			{Type: "PERSON", Count: 2, AvgScore: 0.85},
			{Type: "LOC", Count: 1, AvgScore: 0.7},
		},
		Duration: 1500 * time.Millisecond,
	}
	out := SummaryTable(s)
	for _, want := range []string{"PERSON", "0.85", "total", "3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	line := SummaryLine(s)
	if !strings.Contains(line, "2 examples") || !strings.Contains(line, "3 entities") {
		t.Fatalf("summary line %q", line)
	}
}
