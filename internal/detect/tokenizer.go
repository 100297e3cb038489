package detect

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// WordPieceTokenizer reproduces the subword tokenization the model bundle
// was exported with. Only the pieces the ONNX export needs are read from
// tokenizer.json: the vocab and the lowercase normalizer flag.
type WordPieceTokenizer struct {
	vocab      map[string]int
	unkID      int
	clsID      int
	sepID      int
	maxWordLen int
	maxSeqLen  int
	lowercase  bool
}

// Encoding is the model-ready view of one text: padded-free id sequences
// plus the mapping from each subword piece back to its source word.
type Encoding struct {
	InputIDs      []int64
	AttentionMask []int64
	TokenTypeIDs  []int64
	PieceToWord   []int
	Words         []Token
}

type tokenizerJSON struct {
	Model struct {
		Vocab map[string]int `json:"vocab"`
	} `json:"model"`
	Normalizer struct {
		Lowercase *bool `json:"lowercase"`
	} `json:"normalizer"`
}

func NewWordPieceTokenizer(path string) (*WordPieceTokenizer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	var cfg tokenizerJSON
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	if len(cfg.Model.Vocab) == 0 {
		return nil, fmt.Errorf("load tokenizer: model.vocab is empty")
	}
	lowercase := true
	if cfg.Normalizer.Lowercase != nil {
		lowercase = *cfg.Normalizer.Lowercase
	}
	t := &WordPieceTokenizer{
		vocab:      cfg.Model.Vocab,
		maxWordLen: 100,
		maxSeqLen:  512,
		lowercase:  lowercase,
	}
	for name, dst := range map[string]*int{"[UNK]": &t.unkID, "[CLS]": &t.clsID, "[SEP]": &t.sepID} {
		id, ok := cfg.Model.Vocab[name]
		if !ok {
			return nil, fmt.Errorf("load tokenizer: vocab is missing %s", name)
		}
		*dst = id
	}
	return t, nil
}

// Encode wraps the text in [CLS]...[SEP] and maps every word to its subword
// pieces. Words that would push the sequence past maxSeqLen are dropped;
// chunking upstream keeps inputs short enough that this is a safety net.
func (t *WordPieceTokenizer) Encode(text string) *Encoding {
	words := SplitWords(text)
	enc := &Encoding{
		InputIDs:      []int64{int64(t.clsID)},
		AttentionMask: []int64{1},
		TokenTypeIDs:  []int64{0},
		PieceToWord:   []int{-1},
		Words:         words,
	}
	for wi, word := range words {
		for _, id := range t.pieces(word.Text) {
			if len(enc.InputIDs) >= t.maxSeqLen-1 {
				break
			}
			enc.InputIDs = append(enc.InputIDs, int64(id))
			enc.AttentionMask = append(enc.AttentionMask, 1)
			enc.TokenTypeIDs = append(enc.TokenTypeIDs, 0)
			enc.PieceToWord = append(enc.PieceToWord, wi)
		}
		if len(enc.InputIDs) >= t.maxSeqLen-1 {
			break
		}
	}
	enc.InputIDs = append(enc.InputIDs, int64(t.sepID))
	enc.AttentionMask = append(enc.AttentionMask, 1)
	enc.TokenTypeIDs = append(enc.TokenTypeIDs, 0)
	enc.PieceToWord = append(enc.PieceToWord, -1)
	return enc
}

// pieces runs greedy longest-match WordPiece over one word. A word with any
// unmatchable remainder collapses to a single [UNK].
func (t *WordPieceTokenizer) pieces(word string) []int {
	if word == "" {
		return []int{t.unkID}
	}
	if t.lowercase {
		word = strings.ToLower(word)
	}
	runes := []rune(word)
	if len(runes) > t.maxWordLen {
		return []int{t.unkID}
	}
	if id, ok := t.vocab[string(runes)]; ok {
		return []int{id}
	}
	ids := make([]int, 0, 4)
	start := 0
	for start < len(runes) {
		matched := -1
		end := len(runes)
		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab[piece]; ok {
				matched = id
				break
			}
			end--
		}
		if matched == -1 {
			return []int{t.unkID}
		}
		ids = append(ids, matched)
		start = end
	}
	return ids
}

// SplitWords breaks text into letter/digit runs, keeping byte offsets.
func SplitWords(text string) []Token {
	tokens := make([]Token, 0)
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, Token{Text: text[start:i], Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, Token{Text: text[start:], Start: start, End: len(text)})
	}
	return tokens
}
