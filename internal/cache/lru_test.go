package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a should survive, got %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Second)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expired entry returned")
	}

	c.Set("x", "y")
	c.Set("z", "w")
	now = now.Add(2 * time.Second)
	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("expected 2 cleaned, got %d", n)
	}
}

func TestLRUCacheGenerations(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	gen := c.Generation()
	c.Set("a", 1)
	c.Clear()

	if c.Size() != 0 {
		t.Fatalf("clear should empty the cache")
	}
	if c.SetIfGeneration(gen, "stale", 42) {
		t.Fatalf("stale generation must not be stored")
	}
	if _, ok := c.Get("stale"); ok {
		t.Fatalf("stale value found")
	}
	if !c.SetIfGeneration(c.Generation(), "fresh", 7) {
		t.Fatalf("current generation must be stored")
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager()
	m.Register(NewLRUCache[int](1, time.Second))
	m.Stop()

	m.StartCleanup(time.Millisecond)
	m.Stop()
}
