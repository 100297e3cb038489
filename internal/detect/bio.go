package detect

import (
	"math"
	"strings"
)

type bioSpan struct {
	Type       string
	Start, End int
	Score      float64
}

// mergeBIO collapses per-word B-/I- labels into contiguous spans with the
// mean score of their words. "O", empty, and malformed labels end the
// current span.
func mergeBIO(words []Token, labels []string, scores []float64) []bioSpan {
	out := make([]bioSpan, 0)
	var cur *bioSpan
	count := 0.0
	flush := func() {
		if cur != nil {
			cur.Score /= math.Max(1, count)
			out = append(out, *cur)
			cur = nil
			count = 0
		}
	}
	for i := range words {
		label := labels[i]
		if label == "O" || label == "" {
			flush()
			continue
		}
		prefix, typ, ok := strings.Cut(label, "-")
		if !ok || (prefix != "B" && prefix != "I") {
			flush()
			continue
		}
		if prefix == "B" || cur == nil || cur.Type != typ {
			flush()
			cur = &bioSpan{Type: typ, Start: words[i].Start, End: words[i].End, Score: scores[i]}
			count = 1
			continue
		}
		cur.End = words[i].End
		cur.Score += scores[i]
		count++
	}
	flush()
	return out
}

// normalizeType maps model-specific tag names onto the canonical set the
// renderer knows about.
func normalizeType(t string) string {
	switch strings.ToUpper(t) {
	case "PER", "PERSON":
		return "PERSON"
	case "ORG", "ORGANIZATION":
		return "ORG"
	case "LOC", "GPE", "LOCATION":
		return "LOC"
	case "MISC":
		return "MISC"
	default:
		return strings.ToUpper(t)
	}
}

func spansToEntities(spans []bioSpan) []Entity {
	out := make([]Entity, 0, len(spans))
	for _, s := range spans {
		out = append(out, Entity{
			Type:   normalizeType(s.Type),
			Start:  s.Start,
			End:    s.End,
			Score:  s.Score,
			Source: "onnx",
		})
	}
	return out
}
