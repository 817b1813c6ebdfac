package runid

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	if !ok || got != id {
		t.Fatalf("expected %d from context, got %d ok=%v", id, got, ok)
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("unexpected id in empty context")
	}
}

func TestEnsure(t *testing.T) {
	ctx, id := NewContext(context.Background())
	same, got := Ensure(ctx)
	if got != id || same != ctx {
		t.Fatalf("expected existing id %d, got %d", id, got)
	}
	_, fresh := Ensure(context.Background())
	if fresh == id {
		t.Fatalf("expected a new id, got %d again", fresh)
	}
}
