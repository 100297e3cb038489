package detect

import "context"

// Entity is a single detected span. Start and End are byte offsets into the
// text passed to Detect, so text[Start:End] is the matched surface form.
type Entity struct {
	Type   string  `json:"type"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

// Detector extracts entities from a single text. Implementations must be
// safe for reuse across calls.
type Detector interface {
	Detect(ctx context.Context, text string) ([]Entity, error)
}

// Token is a whitespace-free word with its byte offsets in the source text.
type Token struct {
	Text       string
	Start, End int
}
