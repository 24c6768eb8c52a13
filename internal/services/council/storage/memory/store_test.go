package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/consequence"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return NewStore()
	})
}

func TestStoreHonorsCanceledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.GetAllFavor(ctx, "p"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if _, err := store.UpdateDivineFavor(ctx, "p", "g", pantheon.Valdris, 1, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestStoreEffectIDFailure(t *testing.T) {
	store := NewStore()
	boom := errors.New("boom")
	store.newID = func() (string, error) { return "", boom }

	_, err := store.ApplyDivineEffect(context.Background(), "p", "g", consequence.Effect{Name: "x", Duration: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected id error, got %v", err)
	}
}

func TestListActiveEffectsReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	if _, err := store.ApplyDivineEffect(ctx, "p", "g", consequence.Effect{Name: "x", Duration: 2, Mechanics: map[string]int{"a": 1}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	active, _ := store.ListActiveEffects(ctx, "p")
	active[0].Effect.Mechanics["a"] = 99

	again, _ := store.ListActiveEffects(ctx, "p")
	if again[0].Effect.Mechanics["a"] != 1 {
		t.Fatalf("expected stored mechanics unchanged, got %d", again[0].Effect.Mechanics["a"])
	}
}
