// Package chunk splits long texts into overlapping windows small enough
// for a fixed-context model, and merges per-window detections back into
// coordinates of the full text.
package chunk

import (
	"context"
	"sort"

	"glint/internal/detect"
)

// Window is a slice of the original text. Start and End are byte offsets,
// so Text == original[Start:End].
type Window struct {
	Text       string
	Start, End int
}

const (
	DefaultSize    = 196
	DefaultOverlap = 32
)

// Split cuts text into windows of at most size words, with overlap words
// shared between neighbors. Cuts always fall between words. A text of at
// most size words comes back as a single window spanning the whole input.
func Split(text string, size, overlap int) []Window {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	words := detect.SplitWords(text)
	if len(words) <= size {
		return []Window{{Text: text, Start: 0, End: len(text)}}
	}

	step := size - overlap
	out := make([]Window, 0, (len(words)+step-1)/step)
	for i := 0; ; i += step {
		j := i + size
		last := false
		if j >= len(words) {
			j = len(words)
			last = true
		}
		ws := 0
		if i > 0 {
			ws = words[i].Start
		}
		we := len(text)
		if !last {
			if overlap > 0 {
				we = words[j-1].End
			} else {
				// No overlap: extend to the next window's start so the
				// whitespace between windows is not lost.
				we = words[j].Start
			}
		}
		out = append(out, Window{Text: text[ws:we], Start: ws, End: we})
		if last {
			break
		}
	}
	return out
}

// Merge sorts entities and drops overlapping duplicates, keeping for each
// contested region the widest span and, at equal width, the higher score.
// Duplicates are expected: an entity inside a window overlap is seen by
// both neighboring windows.
func Merge(all []detect.Entity) []detect.Entity {
	if len(all) == 0 {
		return nil
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Start == all[j].Start {
			if all[i].End == all[j].End {
				return all[i].Score > all[j].Score
			}
			return all[i].End > all[j].End
		}
		return all[i].Start < all[j].Start
	})
	kept := make([]detect.Entity, 0, len(all))
	for _, e := range all {
		if len(kept) == 0 {
			kept = append(kept, e)
			continue
		}
		last := &kept[len(kept)-1]
		if e.Start < last.End {
			if width(e) > width(*last) || (width(e) == width(*last) && e.Score > last.Score) {
				*last = e
			}
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func width(e detect.Entity) int { return e.End - e.Start }

// Chunked runs Inner over each window of the input and merges the results
// into full-text coordinates. Short texts pass straight through.
type Chunked struct {
	Inner   detect.Detector
	Size    int
	Overlap int
}

func (c Chunked) Detect(ctx context.Context, text string) ([]detect.Entity, error) {
	windows := Split(text, c.Size, c.Overlap)
	if len(windows) == 1 {
		return c.Inner.Detect(ctx, text)
	}
	all := make([]detect.Entity, 0)
	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entities, err := c.Inner.Detect(ctx, w.Text)
		if err != nil {
			return nil, err
		}
		for _, e := range entities {
			e.Start += w.Start
			e.End += w.Start
			all = append(all, e)
		}
	}
	return Merge(all), nil
}

// Windows reports how many windows Split would produce, for run summaries.
func Windows(text string, size, overlap int) int {
	return len(Split(text, size, overlap))
}
