package detect

import (
	"context"
	"fmt"
	"math"
)

// session is one loaded ONNX model. Implementations run a single sequence
// and return per-piece logits with shape [len(inputIDs)][numLabels].
type session interface {
	Run(ctx context.Context, inputIDs, attentionMask, tokenTypeIDs []int64) ([][]float32, error)
}

func softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	probs := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		probs[i] = math.Exp(float64(v - max))
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// decodeLogits turns per-piece logits into one label and confidence per
// word. The first piece of each word decides; continuation pieces are
// skipped, matching how the model was trained.
func decodeLogits(logits [][]float32, enc *Encoding, labels map[int]string) ([]string, []float64, error) {
	if len(logits) < len(enc.InputIDs) {
		return nil, nil, fmt.Errorf("decode logits: got %d rows for %d pieces", len(logits), len(enc.InputIDs))
	}
	wordLabels := make([]string, len(enc.Words))
	wordScores := make([]float64, len(enc.Words))
	for i := range wordLabels {
		wordLabels[i] = "O"
	}
	seen := make(map[int]bool, len(enc.Words))
	for pi, wi := range enc.PieceToWord {
		if wi < 0 || seen[wi] {
			continue
		}
		seen[wi] = true
		probs := softmax(logits[pi])
		best, bestScore := 0, 0.0
		for li, p := range probs {
			if p > bestScore {
				best, bestScore = li, p
			}
		}
		label, ok := labels[best]
		if !ok {
			label = "O"
		}
		wordLabels[wi] = label
		wordScores[wi] = bestScore
	}
	return wordLabels, wordScores, nil
}
