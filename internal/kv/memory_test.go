package kv

import (
	"context"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(v) != `{"a":1}` {
		t.Fatalf("Get() = %q, ok=%v, err=%v", v, ok, err)
	}

	// Returned slice is a copy; mutating it must not affect the store.
	v[0] = 'X'
	v2, _, _ := s.Get(ctx, "k")
	if string(v2) != `{"a":1}` {
		t.Fatalf("stored value mutated through returned slice: %q", v2)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("key should be gone after Delete")
	}
}
