package embedding

import (
	"testing"

	"github.com/bunkolab/bunko/internal/config"
)

func TestCatalogSharesInstances(t *testing.T) {
	c := NewCatalog(config.EmbeddingConfig{Provider: "hash", Model: "all-minilm", Dimensions: 64})

	a, err := c.Get("all-minilm")
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Get("all-minilm")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("same model id should share one instance")
	}

	other, err := c.Get("other-model")
	if err != nil {
		t.Fatal(err)
	}
	if other == a {
		t.Error("different model ids should get distinct instances")
	}

	// Empty id resolves to the configured default.
	def, err := c.Get("")
	if err != nil {
		t.Fatal(err)
	}
	if def != a {
		t.Error("empty id should resolve to the default model instance")
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestCatalogUnknownProvider(t *testing.T) {
	c := NewCatalog(config.EmbeddingConfig{Provider: "bogus", Model: "m"})
	if _, err := c.Get("m"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestCatalogCountsBuilds(t *testing.T) {
	builds := 0
	c := NewCatalog(config.EmbeddingConfig{Provider: "hash", Model: "m", Dimensions: 8})
	c.build = func(cfg config.EmbeddingConfig, id string) (Model, error) {
		builds++
		return NewHashModel(id, cfg.Dimensions), nil
	}
	for i := 0; i < 5; i++ {
		if _, err := c.Get("m"); err != nil {
			t.Fatal(err)
		}
	}
	if builds != 1 {
		t.Errorf("model built %d times, want 1", builds)
	}
}
