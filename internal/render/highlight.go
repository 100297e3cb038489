// Package render turns detection results into terminal output: entity
// spans highlighted in the source text, per-example tables and the run
// summary table.
package render

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"glint/internal/detect"
)

const ansiReset = "\x1b[0m"

// Background colors read better than foreground ones for span highlights.
var typeColors = map[string]string{
	"PERSON": "\x1b[42;30m", // green
	"ORG":    "\x1b[44;37m", // blue
	"LOC":    "\x1b[43;30m", // yellow
	"DATE":   "\x1b[45;37m", // magenta
	"MISC":   "\x1b[46;30m", // cyan
}

var fallbackColors = []string{
	"\x1b[41;37m", // red
	"\x1b[100;37m",
	"\x1b[47;30m",
}

// Palette assigns one color per entity type, stable within a run. Types
// outside the known set cycle through the fallback colors.
type Palette struct {
	assigned map[string]string
	next     int
}

func NewPalette() *Palette {
	return &Palette{assigned: map[string]string{}}
}

func (p *Palette) Color(typ string) string {
	if c, ok := typeColors[typ]; ok {
		return c
	}
	if c, ok := p.assigned[typ]; ok {
		return c
	}
	c := fallbackColors[p.next%len(fallbackColors)]
	p.next++
	p.assigned[typ] = c
	return c
}

// Highlight rebuilds text with every entity span wrapped in its type
// color. With colorize false the input comes back unchanged, so piped
// output stays clean. Entities must be sorted and non-overlapping, which
// is what chunk.Merge guarantees.
func (p *Palette) Highlight(text string, entities []detect.Entity, colorize bool) string {
	if !colorize || len(entities) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + len(entities)*16)
	pos := 0
	for _, e := range entities {
		if e.Start < pos || e.End > len(text) || e.Start > e.End {
			continue
		}
		b.WriteString(text[pos:e.Start])
		b.WriteString(p.Color(e.Type))
		b.WriteString(text[e.Start:e.End])
		b.WriteString(ansiReset)
		pos = e.End
	}
	b.WriteString(text[pos:])
	return b.String()
}

// Legend lists each detected type in its highlight color.
func (p *Palette) Legend(entities []detect.Entity, colorize bool) string {
	if len(entities) == 0 {
		return ""
	}
	seen := map[string]bool{}
	types := make([]string, 0, 4)
	for _, e := range entities {
		if !seen[e.Type] {
			seen[e.Type] = true
			types = append(types, e.Type)
		}
	}
	sort.Strings(types)
	parts := make([]string, 0, len(types))
	for _, typ := range types {
		if colorize {
			parts = append(parts, p.Color(typ)+typ+ansiReset)
		} else {
			parts = append(parts, typ)
		}
	}
	return strings.Join(parts, " ")
}

// ShouldColorize resolves the color mode (auto, always, never) against
// whether w is a terminal.
func ShouldColorize(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
