//go:build onnxruntime

package detect

import (
	"context"
	"fmt"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var ortInitOnce sync.Once
var ortInitErr error

// nativeSession drives ONNX Runtime in-process through its C library.
// Built with the onnxruntime tag; requires libonnxruntime on the host.
type nativeSession struct {
	sess       *ort.DynamicAdvancedSession
	inputNames []string
}

func newSession(modelPath string) (session, error) {
	ortInitOnce.Do(func() {
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", ortInitErr)
	}
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model: %w", err)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("inspect model: no outputs")
	}
	s := &nativeSession{}
	for _, in := range inputs {
		s.inputNames = append(s.inputNames, in.Name)
	}
	s.sess, err = ort.NewDynamicAdvancedSession(modelPath, s.inputNames, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return s, nil
}

func (s *nativeSession) Run(ctx context.Context, inputIDs, attentionMask, tokenTypeIDs []int64) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seqLen := int64(len(inputIDs))
	shape := ort.NewShape(1, seqLen)

	feed := make([]ort.Value, 0, len(s.inputNames))
	for _, name := range s.inputNames {
		var data []int64
		switch {
		case strings.Contains(name, "input_ids"):
			data = inputIDs
		case strings.Contains(name, "attention_mask"):
			data = attentionMask
		case strings.Contains(name, "token_type_ids"):
			data = tokenTypeIDs
		default:
			data = make([]int64, seqLen)
		}
		tensor, err := ort.NewTensor(shape, data)
		if err != nil {
			for _, v := range feed {
				v.Destroy()
			}
			return nil, fmt.Errorf("build input %s: %w", name, err)
		}
		feed = append(feed, tensor)
	}
	defer func() {
		for _, v := range feed {
			v.Destroy()
		}
	}()

	outputs := []ort.Value{nil}
	if err := s.sess.Run(feed, outputs); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}
	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		outputs[0].Destroy()
		return nil, fmt.Errorf("unexpected output type %T", outputs[0])
	}
	defer out.Destroy()

	dims := out.GetShape()
	if len(dims) != 3 || dims[0] != 1 {
		return nil, fmt.Errorf("unexpected logits shape %v", dims)
	}
	rows, cols := int(dims[1]), int(dims[2])
	flat := out.GetData()
	if len(flat) < rows*cols {
		return nil, fmt.Errorf("short logits buffer: %d < %d", len(flat), rows*cols)
	}
	logits := make([][]float32, rows)
	for i := 0; i < rows; i++ {
		row := make([]float32, cols)
		copy(row, flat[i*cols:(i+1)*cols])
		logits[i] = row
	}
	return logits, nil
}
