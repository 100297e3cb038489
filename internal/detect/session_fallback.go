//go:build !onnxruntime

package detect

// Without the onnxruntime build tag, inference goes through a python3
// subprocess. Slower, but it needs no shared library on the host.
func newSession(modelPath string) (session, error) {
	return newPythonSession(modelPath), nil
}
