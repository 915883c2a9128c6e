package cache

import (
	"context"
	"testing"
	"time"
)

func TestDetailCache_HitAfterPut(t *testing.T) {
	ctx := context.Background()
	c := NewDetailCache(NewMemoryStore(), time.Hour)

	if _, ok := c.Get(ctx, "event", "e1"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	c.Put(ctx, "event", "e1", []byte(`{"id":"e1"}`))

	got, ok := c.Get(ctx, "event", "e1")
	if !ok {
		t.Fatalf("expected hit after put")
	}
	if string(got) != `{"id":"e1"}` {
		t.Fatalf("unexpected representation: %s", got)
	}
}

func TestDetailCache_InvalidateRemovesEntry(t *testing.T) {
	ctx := context.Background()
	c := NewDetailCache(NewMemoryStore(), time.Hour)

	c.Put(ctx, "event", "e1", []byte("v1"))
	c.Invalidate(ctx, "event", "e1")

	if _, ok := c.Get(ctx, "event", "e1"); ok {
		t.Fatalf("expected miss immediately after invalidation")
	}

	// a fresh representation can be cached again afterwards
	c.Put(ctx, "event", "e1", []byte("v2"))
	got, ok := c.Get(ctx, "event", "e1")
	if !ok || string(got) != "v2" {
		t.Fatalf("expected v2 after re-put, got %q ok=%v", got, ok)
	}
}

func TestDetailCache_InvalidateMissingIsNoOp(t *testing.T) {
	ctx := context.Background()
	c := NewDetailCache(NewMemoryStore(), time.Hour)

	// must not panic or create an entry
	c.Invalidate(ctx, "ticket", "missing")

	if _, ok := c.Get(ctx, "ticket", "missing"); ok {
		t.Fatalf("invalidation must not create entries")
	}
}

func TestDetailCache_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	c := NewDetailCache(NewMemoryStore(), time.Hour)

	c.Put(ctx, "event", "e1", []byte("event-1"))
	c.Put(ctx, "ticket", "e1", []byte("ticket-1"))

	c.Invalidate(ctx, "event", "e1")

	if _, ok := c.Get(ctx, "event", "e1"); ok {
		t.Fatalf("event entry should be gone")
	}
	if got, ok := c.Get(ctx, "ticket", "e1"); !ok || string(got) != "ticket-1" {
		t.Fatalf("ticket entry must survive event invalidation")
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.SetTTL(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("SetTTL: %v", err)
	}

	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after expiry")
	}
}
