package detect

import "testing"

func TestMergeBIO_Spans(t *testing.T) {
	words := []Token{
		{Text: "John", Start: 0, End: 4},
		{Text: "Smith", Start: 5, End: 10},
		{Text: "joined", Start: 11, End: 17},
		{Text: "Acme", Start: 18, End: 22},
	}
	labels := []string{"B-PERSON", "I-PERSON", "O", "B-ORG"}
	scores := []float64{0.9, 0.8, 0.99, 0.85}
	spans := mergeBIO(words, labels, scores)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Start != 0 || spans[0].End != 10 || spans[0].Type != "PERSON" {
		t.Fatalf("unexpected span %#v", spans[0])
	}
	if got := spans[0].Score; got < 0.849 || got > 0.851 {
		t.Fatalf("expected averaged score, got %f", got)
	}
}

func TestMergeBIO_ConsecutiveB(t *testing.T) {
	words := []Token{{Text: "Paris", Start: 0, End: 5}, {Text: "Berlin", Start: 6, End: 12}}
	spans := mergeBIO(words, []string{"B-LOC", "B-LOC"}, []float64{0.9, 0.9})
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
}

func TestMergeBIO_DanglingI(t *testing.T) {
	// An I- tag with no open span of the same type starts a new span.
	words := []Token{{Text: "Berlin", Start: 0, End: 6}}
	spans := mergeBIO(words, []string{"I-LOC"}, []float64{0.7})
	if len(spans) != 1 || spans[0].Type != "LOC" {
		t.Fatalf("spans %#v", spans)
	}
}

func TestMergeBIO_MalformedLabel(t *testing.T) {
	words := []Token{{Text: "x", Start: 0, End: 1}, {Text: "y", Start: 2, End: 3}}
	spans := mergeBIO(words, []string{"B-ORG", "WAT"}, []float64{0.9, 0.9})
	if len(spans) != 1 || spans[0].End != 1 {
		t.Fatalf("spans %#v", spans)
	}
}

func TestNormalizeType(t *testing.T) {
	cases := map[string]string{
		"PER": "PERSON", "person": "PERSON",
		"gpe": "LOC", "LOC": "LOC",
		"org": "ORG", "DATE": "DATE",
	}
	for in, want := range cases {
		if got := normalizeType(in); got != want {
			t.Errorf("normalizeType(%q)=%q, want %q", in, got, want)
		}
	}
}
