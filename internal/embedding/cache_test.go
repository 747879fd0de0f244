package embedding

import "testing"

func TestCacheSetGet(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1, 2})
	got, ok := c.Get("a")
	if !ok {
		t.Fatal("expected hit for a")
	}
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("got %v", got)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Get("a") // a is now most recent
	c.Set("c", []float32{3})

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive, it was used most recently")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be present")
	}
}

func TestCacheUpdate(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("a", []float32{9})
	got, ok := c.Get("a")
	if !ok || got[0] != 9 {
		t.Errorf("got %v, %v", got, ok)
	}
}
