package detect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// ErrModelUnavailable reports a bundle that is missing or failed to load.
// Callers treat it as a setup problem, not a per-text failure.
var ErrModelUnavailable = errors.New("ner model unavailable")

type Config struct {
	// BundleDir holds model.onnx, labels.json and tokenizer.json.
	BundleDir string
	// MaxBytes caps input size; longer texts yield no entities.
	MaxBytes int
	// MinScore drops low-confidence spans before they leave the detector.
	MinScore float64
}

// ONNXDetector runs a pretrained token-classification model over a text
// and decodes BIO-tagged output into entity spans. The bundle is loaded
// lazily on first use and the load result is cached, success or failure.
type ONNXDetector struct {
	cfg     Config
	once    sync.Once
	loadErr error

	labels    map[int]string
	tokenizer *WordPieceTokenizer
	sess      session
}

func NewONNXDetector(cfg Config) *ONNXDetector {
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 64 * 1024
	}
	return &ONNXDetector{cfg: cfg}
}

func (d *ONNXDetector) init() error {
	d.once.Do(func() {
		modelPath := filepath.Join(d.cfg.BundleDir, "model.onnx")
		if _, err := os.Stat(modelPath); err != nil {
			d.loadErr = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
			return
		}
		labels, err := loadLabels(filepath.Join(d.cfg.BundleDir, "labels.json"))
		if err != nil {
			d.loadErr = err
			return
		}
		tok, err := NewWordPieceTokenizer(filepath.Join(d.cfg.BundleDir, "tokenizer.json"))
		if err != nil {
			d.loadErr = err
			return
		}
		sess, err := newSession(modelPath)
		if err != nil {
			d.loadErr = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
			return
		}
		d.labels = labels
		d.tokenizer = tok
		d.sess = sess
	})
	return d.loadErr
}

func loadLabels(path string) (map[int]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	byName := map[string]string{}
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	labels := make(map[int]string, len(byName))
	for k, v := range byName {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("load labels: bad index %q", k)
		}
		labels[idx] = v
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("load labels: empty label map")
	}
	return labels, nil
}

// Labels returns the model's tag set, loading the bundle if needed.
func (d *ONNXDetector) Labels() (map[int]string, error) {
	if err := d.init(); err != nil {
		return nil, err
	}
	return d.labels, nil
}

func (d *ONNXDetector) Detect(ctx context.Context, text string) ([]Entity, error) {
	if len(text) == 0 || len(text) > d.cfg.MaxBytes {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	enc := d.tokenizer.Encode(text)
	if len(enc.Words) == 0 {
		return nil, nil
	}
	logits, err := d.sess.Run(ctx, enc.InputIDs, enc.AttentionMask, enc.TokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	labels, scores, err := decodeLogits(logits, enc, d.labels)
	if err != nil {
		return nil, err
	}
	entities := spansToEntities(mergeBIO(enc.Words, labels, scores))
	if d.cfg.MinScore <= 0 {
		return entities, nil
	}
	kept := entities[:0]
	for _, e := range entities {
		if e.Score >= d.cfg.MinScore {
			kept = append(kept, e)
		}
	}
	return kept, nil
}
