// Package stats accumulates per-example detection results into the run
// summary the demo prints at the end.
package stats

import (
	"sort"
	"time"

	"glint/internal/detect"
)

type TypeStat struct {
	Type     string  `json:"type"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

type Summary struct {
	Examples   int           `json:"examples"`
	Chunked    int           `json:"chunked"`
	Entities   int           `json:"entities"`
	Types      []TypeStat    `json:"types"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"duration_ms"`
}

type typeAccum struct {
	count    int
	scoreSum float64
}

type Collector struct {
	examples int
	chunked  int
	entities int
	byType   map[string]*typeAccum
	started  time.Time
}

func NewCollector() *Collector {
	return &Collector{byType: map[string]*typeAccum{}, started: time.Now()}
}

// Record adds one processed example. windows is how many chunks the text
// was split into; anything above one counts as a chunked example.
func (c *Collector) Record(windows int, entities []detect.Entity) {
	c.examples++
	if windows > 1 {
		c.chunked++
	}
	c.entities += len(entities)
	for _, e := range entities {
		acc := c.byType[e.Type]
		if acc == nil {
			acc = &typeAccum{}
			c.byType[e.Type] = acc
		}
		acc.count++
		acc.scoreSum += e.Score
	}
}

// Summary freezes the collected counts. Types come out ordered by count
// descending, ties broken by name, so the table is stable across runs.
func (c *Collector) Summary() Summary {
	out := Summary{
		Examples: c.examples,
		Chunked:  c.chunked,
		Entities: c.entities,
		Duration: time.Since(c.started),
	}
	out.DurationMs = out.Duration.Milliseconds()
	for typ, acc := range c.byType {
		out.Types = append(out.Types, TypeStat{
			Type:     typ,
			Count:    acc.count,
			AvgScore: acc.scoreSum / float64(acc.count),
		})
	}
	sort.Slice(out.Types, func(i, j int) bool {
		if out.Types[i].Count == out.Types[j].Count {
			return out.Types[i].Type < out.Types[j].Type
		}
		return out.Types[i].Count > out.Types[j].Count
	})
	return out
}
