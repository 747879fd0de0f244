//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXModel runs a local sentence-transformer exported to ONNX. It requires
// CGO and the onnxruntime shared library; without CGO the stub in
// onnx_stub.go takes its place.
type ONNXModel struct {
	session   *ort.AdvancedSession
	name      string
	dims      int
	maxTokens int
	cache     *Cache
	tokenizer Tokenizer
	// Tensors are allocated once and reused; Run() reads and writes them in
	// place, so inference is serialized by mu.
	inputIDsTensor      *ort.Tensor[int64]
	attentionMaskTensor *ort.Tensor[int64]
	tokenTypeIDsTensor  *ort.Tensor[int64]
	outputTensor        *ort.Tensor[float32]
	mu                  sync.Mutex
}

// NewONNXModel loads the model at modelPath and prepares a reusable session.
func NewONNXModel(name, modelPath string, dims, maxTokens, cacheSize int) (*ONNXModel, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	tokenizer := &WordTokenizer{}
	inputIDs, attentionMask, tokenTypeIDs := tokenizer.Tokenize("", maxTokens)

	inputIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	attentionMaskTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), attentionMask)
	if err != nil {
		inputIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	tokenTypeIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), tokenTypeIDs)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	outputData := make([]float32, dims)
	outputTensor, err := ort.NewTensor(ort.NewShape(1, int64(dims)), outputData)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		[]ort.ArbitraryTensor{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor},
		[]ort.ArbitraryTensor{outputTensor},
		nil,
	)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	m := &ONNXModel{
		session:             session,
		name:                name,
		dims:                dims,
		maxTokens:           maxTokens,
		tokenizer:           tokenizer,
		inputIDsTensor:      inputIDsTensor,
		attentionMaskTensor: attentionMaskTensor,
		tokenTypeIDsTensor:  tokenTypeIDsTensor,
		outputTensor:        outputTensor,
	}
	if cacheSize > 0 {
		m.cache = NewCache(cacheSize)
	}
	return m, nil
}

// EmbedBatch embeds each text in order, serializing inference on the session.
func (m *ONNXModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.embed(text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func (m *ONNXModel) embed(text string) ([]float32, error) {
	if m.cache != nil {
		if cached, ok := m.cache.Get(text); ok {
			return cached, nil
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	inputIDs, attentionMask, tokenTypeIDs := m.tokenizer.Tokenize(text, m.maxTokens)
	copy(m.inputIDsTensor.GetData(), inputIDs)
	copy(m.attentionMaskTensor.GetData(), attentionMask)
	copy(m.tokenTypeIDsTensor.GetData(), tokenTypeIDs)

	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	vec := make([]float32, m.dims)
	copy(vec, m.outputTensor.GetData()[:m.dims])
	normalizeL2(vec)
	if m.cache != nil {
		m.cache.Set(text, vec)
	}
	return vec, nil
}

// Dimensions returns the embedding dimension.
func (m *ONNXModel) Dimensions() int { return m.dims }

// Name returns the model identifier.
func (m *ONNXModel) Name() string { return m.name }

// Close destroys the session and tensors.
func (m *ONNXModel) Close() error {
	var err error
	if m.session != nil {
		err = m.session.Destroy()
		m.session = nil
	}
	if m.inputIDsTensor != nil {
		_ = m.inputIDsTensor.Destroy()
		m.inputIDsTensor = nil
	}
	if m.attentionMaskTensor != nil {
		_ = m.attentionMaskTensor.Destroy()
		m.attentionMaskTensor = nil
	}
	if m.tokenTypeIDsTensor != nil {
		_ = m.tokenTypeIDsTensor.Destroy()
		m.tokenTypeIDsTensor = nil
	}
	if m.outputTensor != nil {
		_ = m.outputTensor.Destroy()
		m.outputTensor = nil
	}
	return err
}

func normalizeL2(x []float32) {
	var sum float32
	for _, v := range x {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range x {
		x[i] *= norm
	}
}
