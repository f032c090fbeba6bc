package memory

import (
	"context"
	"testing"
)

func TestStoreGetSet(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "transactions", `[]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, "transactions")
	if err != nil || !ok || v != `[]` {
		t.Fatalf("get = %q ok=%v err=%v", v, ok, err)
	}

	// Replace-on-write
	if err := s.Set(ctx, "transactions", `[{"id":"a"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, _, _ = s.Get(ctx, "transactions")
	if v != `[{"id":"a"}]` {
		t.Fatalf("get after replace = %q", v)
	}
}
