package detect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestONNXDetector_BundleNotFound(t *testing.T) {
	d := NewONNXDetector(Config{BundleDir: filepath.Join(t.TempDir(), "missing")})
	_, err := d.Detect(context.Background(), "John Smith lives in Berlin.")
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if d.loadErr == nil {
		t.Fatal("expected cached load error")
	}
}

func TestONNXDetector_InvalidLabelsJSON(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "model.onnx"), "x")
	mustWrite(t, filepath.Join(dir, "labels.json"), "{")
	mustWrite(t, filepath.Join(dir, "tokenizer.json"), testVocab)
	d := NewONNXDetector(Config{BundleDir: dir})
	_, err := d.Detect(context.Background(), "hello world")
	if err == nil || !strings.Contains(err.Error(), "load labels") {
		t.Fatalf("unexpected err %v", err)
	}
}

func TestONNXDetector_InvalidTokenizerJSON(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "model.onnx"), "x")
	mustWrite(t, filepath.Join(dir, "labels.json"), `{"0":"O"}`)
	mustWrite(t, filepath.Join(dir, "tokenizer.json"), "{")
	d := NewONNXDetector(Config{BundleDir: dir})
	_, err := d.Detect(context.Background(), "hello world")
	if err == nil || !strings.Contains(err.Error(), "load tokenizer") {
		t.Fatalf("unexpected err %v", err)
	}
}

func TestONNXDetector_ContextCancellation(t *testing.T) {
	d := NewONNXDetector(Config{BundleDir: filepath.Join(t.TempDir(), "missing")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Detect(ctx, "abc")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestONNXDetector_TextTooLarge(t *testing.T) {
	d := NewONNXDetector(Config{MaxBytes: 10})
	entities, err := d.Detect(context.Background(), strings.Repeat("a", 50))
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 0 {
		t.Fatal("expected no entities")
	}
}

type fakeSession struct {
	logits [][]float32
	err    error
}

func (f fakeSession) Run(ctx context.Context, inputIDs, attentionMask, tokenTypeIDs []int64) ([][]float32, error) {
	return f.logits, f.err
}

// primed builds a detector with the bundle already "loaded" so Detect can
// be exercised without a real model file.
func primed(t *testing.T, sess session, minScore float64) *ONNXDetector {
	t.Helper()
	tok, err := NewWordPieceTokenizer(writeTokenizer(t, testVocab))
	if err != nil {
		t.Fatal(err)
	}
	d := NewONNXDetector(Config{MinScore: minScore})
	d.once.Do(func() {})
	d.labels = map[int]string{0: "O", 1: "B-PERSON", 2: "I-PERSON", 3: "B-ORG"}
	d.tokenizer = tok
	d.sess = sess
	return d
}

func row(hot int) []float32 {
	r := make([]float32, 4)
	r[hot] = 12
	return r
}

func TestONNXDetector_EndToEnd(t *testing.T) {
	text := "Jane Doe works at Acme."
	// [CLS] jane doe works at acme [SEP]
	sess := fakeSession{logits: [][]float32{
		row(0), row(1), row(2), row(0), row(0), row(3), row(0),
	}}
	d := primed(t, sess, 0)
	entities, err := d.Detect(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 2 {
		t.Fatalf("entities %#v", entities)
	}
	if got := text[entities[0].Start:entities[0].End]; got != "Jane Doe" {
		t.Fatalf("first span %q", got)
	}
	if entities[0].Type != "PERSON" || entities[1].Type != "ORG" {
		t.Fatalf("types %s %s", entities[0].Type, entities[1].Type)
	}
	if got := text[entities[1].Start:entities[1].End]; got != "Acme" {
		t.Fatalf("second span %q", got)
	}
}

func TestONNXDetector_MinScoreFilters(t *testing.T) {
	// Weakly preferring B-PERSON keeps its softmax score near 0.26.
	weak := []float32{0, 0.1, 0, 0}
	d := primed(t, fakeSession{logits: [][]float32{weak, weak, weak}}, 0.5)
	entities, err := d.Detect(context.Background(), "jane")
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 0 {
		t.Fatalf("expected filtered output, got %#v", entities)
	}
}
