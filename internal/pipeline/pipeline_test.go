package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/bunkolab/bunko/internal/artifact"
	"github.com/bunkolab/bunko/internal/config"
	"github.com/bunkolab/bunko/internal/embedding"
	"github.com/bunkolab/bunko/internal/store"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Embedding.Provider = "hash"
	cfg.Embedding.Model = "hash-model"
	cfg.Embedding.Dimensions = 32
	config.ApplyDefaults(cfg)
	return cfg
}

func newTestPipeline(t *testing.T, backends ...store.VectorStore) (*Pipeline, *artifact.Store) {
	t.Helper()
	files, err := artifact.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	catalog := embedding.NewCatalog(cfg.Embedding)
	return New(files, catalog, backends, cfg), files
}

func TestRunIndexesDocument(t *testing.T) {
	mem := store.NewMemoryStore()
	p, files := newTestPipeline(t, mem)
	ctx := context.Background()

	body := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)
	if err := files.SaveOriginal("fox.txt", strings.NewReader(body)); err != nil {
		t.Fatal(err)
	}

	req := Request{Name: "fox.txt", Org: "default", ChunkSize: 20, Overlap: 3}
	if err := p.Run(ctx, req); err != nil {
		t.Fatalf("Run: %v", err)
	}

	chunks, vectors, err := mem.Get(ctx, "fox.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("no chunks stored")
	}
	if len(chunks) != len(vectors) {
		t.Errorf("chunk count %d != vector count %d", len(chunks), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != 32 {
			t.Fatalf("vector %d has %d dimensions, want 32", i, len(v))
		}
	}

	// Raw and normalized artifacts must both exist.
	if _, err := files.ReadText("fox.txt", artifact.RawText); err != nil {
		t.Errorf("raw text artifact missing: %v", err)
	}
	norm, err := files.ReadText("fox.txt", artifact.NormalizedText)
	if err != nil {
		t.Errorf("normalized text artifact missing: %v", err)
	}
	if strings.Contains(norm, "\n") {
		t.Errorf("normalized text should be collapsed, got %q", norm)
	}
}

func TestRunWritesAllBackends(t *testing.T) {
	a := store.NewMemoryStore()
	b := store.NewMemoryStore()
	p, files := newTestPipeline(t, a, b)
	ctx := context.Background()

	if err := files.SaveOriginal("doc.txt", strings.NewReader("Some sentences. More text here.")); err != nil {
		t.Fatal(err)
	}
	if err := p.Run(ctx, Request{Name: "doc.txt", Org: "default", ChunkSize: 50, Overlap: 5}); err != nil {
		t.Fatal(err)
	}

	for i, s := range []*store.MemoryStore{a, b} {
		if _, _, err := s.Get(ctx, "doc.txt"); err != nil {
			t.Errorf("backend %d missing document: %v", i, err)
		}
	}
}

func TestRunExtractionFailureIndexesEmpty(t *testing.T) {
	mem := store.NewMemoryStore()
	p, files := newTestPipeline(t, mem)
	ctx := context.Background()

	// An unsupported extension fails extraction but the run still records
	// the document with zero chunks.
	if err := files.SaveOriginal("blob.bin", strings.NewReader("\x00\x01\x02")); err != nil {
		t.Fatal(err)
	}
	if err := p.Run(ctx, Request{Name: "blob.bin", Org: "default", ChunkSize: 10, Overlap: 2}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	chunks, vectors, err := mem.Get(ctx, "blob.bin")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 || len(vectors) != 0 {
		t.Errorf("expected zero chunks, got %d/%d", len(chunks), len(vectors))
	}
}

func TestRunMissingOriginal(t *testing.T) {
	p, _ := newTestPipeline(t, store.NewMemoryStore())
	if err := p.Run(context.Background(), Request{Name: "ghost.txt", Org: "default", ChunkSize: 10, Overlap: 2}); err == nil {
		t.Fatal("expected error for missing original")
	}
}

func TestRunOverwrites(t *testing.T) {
	mem := store.NewMemoryStore()
	p, files := newTestPipeline(t, mem)
	ctx := context.Background()

	if err := files.SaveOriginal("v.txt", strings.NewReader("Version one text.")); err != nil {
		t.Fatal(err)
	}
	if err := p.Run(ctx, Request{Name: "v.txt", Org: "default", ChunkSize: 10, Overlap: 2}); err != nil {
		t.Fatal(err)
	}
	if err := files.SaveOriginal("v.txt", strings.NewReader("Completely different second version of the document text.")); err != nil {
		t.Fatal(err)
	}
	if err := p.Run(ctx, Request{Name: "v.txt", Org: "default", ChunkSize: 10, Overlap: 2}); err != nil {
		t.Fatal(err)
	}

	chunks, _, err := mem.Get(ctx, "v.txt")
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(chunks, " ")
	if !strings.Contains(joined, "second version") {
		t.Errorf("expected second version content, got %q", joined)
	}
}

func TestSchedulerRunsInBackground(t *testing.T) {
	mem := store.NewMemoryStore()
	p, files := newTestPipeline(t, mem)

	if err := files.SaveOriginal("bg.txt", strings.NewReader("Background indexing works.")); err != nil {
		t.Fatal(err)
	}

	s := NewScheduler(p, nil)
	jobID := s.Schedule(Request{Name: "bg.txt", Org: "default", ChunkSize: 10, Overlap: 2})
	if jobID == "" {
		t.Error("Schedule returned an empty job id")
	}
	s.Wait()

	if _, _, err := mem.Get(context.Background(), "bg.txt"); err != nil {
		t.Errorf("document not indexed after Wait: %v", err)
	}
}
