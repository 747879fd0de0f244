//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

// ONNXModel stub type when built without CGO (see onnx.go for the real one).
type ONNXModel struct{}

// NewONNXModel returns an error when built without CGO.
func NewONNXModel(_, _ string, _, _, _ int) (*ONNXModel, error) {
	return nil, errors.New("ONNX model requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

func (m *ONNXModel) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("ONNX model not available")
}

func (m *ONNXModel) Dimensions() int { return 0 }
func (m *ONNXModel) Name() string    { return "onnx" }
func (m *ONNXModel) Close() error    { return nil }
