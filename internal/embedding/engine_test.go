package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// recordingModel wraps HashModel and records batch sizes it receives.
type recordingModel struct {
	*HashModel
	mu      sync.Mutex
	batches []int
	failOn  string
}

func (m *recordingModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, len(texts))
	m.mu.Unlock()
	for _, t := range texts {
		if m.failOn != "" && t == m.failOn {
			return nil, errors.New("model failure")
		}
	}
	return m.HashModel.EmbedBatch(ctx, texts)
}

func TestEmbedPreservesOrder(t *testing.T) {
	model := &recordingModel{HashModel: NewHashModel("test", 32)}
	engine := NewEngine(model, WithWorkers(4), WithMinBatch(4), WithParallelThreshold(10))

	texts := make([]string, 50)
	for i := range texts {
		texts[i] = fmt.Sprintf("document text number %d", i)
	}
	got, err := engine.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(got) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(got), len(texts))
	}

	// Each output position must match a direct single-text embedding of the
	// same input, regardless of which worker produced it.
	for i, text := range texts {
		want, err := model.HashModel.EmbedBatch(context.Background(), []string{text})
		if err != nil {
			t.Fatal(err)
		}
		for j := range want[0] {
			if got[i][j] != want[0][j] {
				t.Fatalf("vector %d does not match direct embedding of %q", i, text)
			}
		}
	}

	model.mu.Lock()
	defer model.mu.Unlock()
	if len(model.batches) < 2 {
		t.Errorf("expected parallel batching, got batches %v", model.batches)
	}
}

func TestEmbedSmallInputInline(t *testing.T) {
	model := &recordingModel{HashModel: NewHashModel("test", 8)}
	engine := NewEngine(model, WithParallelThreshold(10))

	texts := []string{"one", "two", "three"}
	got, err := engine.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d vectors, want 3", len(got))
	}
	model.mu.Lock()
	defer model.mu.Unlock()
	if len(model.batches) != 1 || model.batches[0] != 3 {
		t.Errorf("expected one inline batch of 3, got %v", model.batches)
	}
}

func TestEmbedBatchSize(t *testing.T) {
	model := &recordingModel{HashModel: NewHashModel("test", 8)}
	engine := NewEngine(model, WithWorkers(4), WithMinBatch(16), WithParallelThreshold(10))

	// 20 texts over 4 workers would be 5 per batch, but min batch 16 wins.
	texts := make([]string, 20)
	for i := range texts {
		texts[i] = fmt.Sprintf("t%d", i)
	}
	if _, err := engine.Embed(context.Background(), texts); err != nil {
		t.Fatal(err)
	}
	model.mu.Lock()
	defer model.mu.Unlock()
	if len(model.batches) != 2 {
		t.Fatalf("expected 2 batches (16+4), got %v", model.batches)
	}
}

func TestEmbedFailureIsTotal(t *testing.T) {
	model := &recordingModel{HashModel: NewHashModel("test", 8), failOn: "poison"}
	engine := NewEngine(model, WithWorkers(2), WithMinBatch(4), WithParallelThreshold(5))

	texts := make([]string, 12)
	for i := range texts {
		texts[i] = fmt.Sprintf("ok %d", i)
	}
	texts[7] = "poison"

	got, err := engine.Embed(context.Background(), texts)
	if err == nil {
		t.Fatal("expected error when a batch fails")
	}
	if got != nil {
		t.Errorf("expected nil result on failure, got %d vectors", len(got))
	}
	if !strings.Contains(err.Error(), "model failure") {
		t.Errorf("error should wrap the model failure, got: %v", err)
	}
}

func TestEmbedEmpty(t *testing.T) {
	engine := NewEngine(NewHashModel("test", 8))
	got, err := engine.Embed(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}
