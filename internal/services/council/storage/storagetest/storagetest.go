// Package storagetest holds contract tests shared by every council store.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/louisbranch/arcane-codex/internal/platform/errors"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/consequence"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/verdict"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) storage.Store

// Run exercises the storage contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	tests := []struct {
		name string
		fn   func(*testing.T, storage.Store)
	}{
		{"favor defaults to zero", testFavorDefaults},
		{"favor update clamps", testFavorClamps},
		{"favor is per player", testFavorPerPlayer},
		{"favor rejects unknown god", testFavorUnknownGod},
		{"favor history newest first", testFavorHistory},
		{"effects tick and expire", testEffectsTick},
		{"effects keep mechanics", testEffectMechanics},
		{"council record write once", testCouncilRecord},
		{"council record missing", testCouncilRecordMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			t.Cleanup(func() {
				if err := store.Close(); err != nil {
					t.Errorf("close store: %v", err)
				}
			})
			tt.fn(t, store)
		})
	}
}

func testFavorDefaults(t *testing.T, store storage.Store) {
	favor, err := store.GetAllFavor(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get favor: %v", err)
	}
	if len(favor) != pantheon.Size {
		t.Fatalf("expected %d entries, got %d", pantheon.Size, len(favor))
	}
	for god, value := range favor {
		if value != 0 {
			t.Fatalf("expected zero favor for %s, got %d", god, value)
		}
	}
}

func testFavorClamps(t *testing.T, store storage.Store) {
	ctx := context.Background()
	got, err := store.UpdateDivineFavor(ctx, "p1", "g1", pantheon.Korvan, 70, "test")
	if err != nil {
		t.Fatalf("update favor: %v", err)
	}
	if got != 70 {
		t.Fatalf("expected 70, got %d", got)
	}
	got, err = store.UpdateDivineFavor(ctx, "p1", "g1", pantheon.Korvan, 70, "test")
	if err != nil {
		t.Fatalf("update favor: %v", err)
	}
	if got != pantheon.MaxFavor {
		t.Fatalf("expected clamp to %d, got %d", pantheon.MaxFavor, got)
	}
	got, err = store.UpdateDivineFavor(ctx, "p1", "g1", pantheon.Korvan, -250, "test")
	if err != nil {
		t.Fatalf("update favor: %v", err)
	}
	if got != pantheon.MinFavor {
		t.Fatalf("expected clamp to %d, got %d", pantheon.MinFavor, got)
	}

	favor, err := store.GetAllFavor(ctx, "p1")
	if err != nil {
		t.Fatalf("get favor: %v", err)
	}
	if favor[pantheon.Korvan] != pantheon.MinFavor {
		t.Fatalf("expected stored favor %d, got %d", pantheon.MinFavor, favor[pantheon.Korvan])
	}
}

func testFavorPerPlayer(t *testing.T, store storage.Store) {
	ctx := context.Background()
	if _, err := store.UpdateDivineFavor(ctx, "p1", "g1", pantheon.Athena, 15, "test"); err != nil {
		t.Fatalf("update favor: %v", err)
	}
	favor, err := store.GetAllFavor(ctx, "p2")
	if err != nil {
		t.Fatalf("get favor: %v", err)
	}
	if favor[pantheon.Athena] != 0 {
		t.Fatalf("expected p2 untouched, got %d", favor[pantheon.Athena])
	}
}

func testFavorUnknownGod(t *testing.T, store storage.Store) {
	_, err := store.UpdateDivineFavor(context.Background(), "p1", "g1", "LOKI", 5, "test")
	if !apperrors.HasCode(err, apperrors.CodeUnknownVoter) {
		t.Fatalf("expected %s, got %v", apperrors.CodeUnknownVoter, err)
	}
}

func testFavorHistory(t *testing.T, store storage.Store) {
	ctx := context.Background()
	deltas := []int{5, -3, 10}
	for _, d := range deltas {
		if _, err := store.UpdateDivineFavor(ctx, "p1", "g1", pantheon.Mercus, d, "council:DEADLOCK"); err != nil {
			t.Fatalf("update favor: %v", err)
		}
	}

	entries, err := store.ListFavorHistory(ctx, "p1", 2)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Delta != 10 || entries[0].FavorAfter != 12 {
		t.Fatalf("expected newest entry first, got %+v", entries[0])
	}
	if entries[1].Delta != -3 || entries[1].FavorAfter != 2 {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
	if entries[0].God != pantheon.Mercus || entries[0].GameID != "g1" || entries[0].Reason != "council:DEADLOCK" {
		t.Fatalf("unexpected entry metadata %+v", entries[0])
	}

	all, err := store.ListFavorHistory(ctx, "p1", 0)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(all) != len(deltas) {
		t.Fatalf("expected %d entries with default limit, got %d", len(deltas), len(all))
	}
}

func testEffectsTick(t *testing.T, store storage.Store) {
	ctx := context.Background()
	short := consequence.Effect{Name: "Faint Approval", Mechanics: map[string]int{"next_roll": 1}, Duration: 1, Kind: consequence.KindBuff}
	long := consequence.Effect{Name: "Blessed Path", Mechanics: map[string]int{"skill_checks": 2}, Duration: 2, Kind: consequence.KindBuff}

	shortID, err := store.ApplyDivineEffect(ctx, "p1", "g1", short)
	if err != nil {
		t.Fatalf("apply effect: %v", err)
	}
	longID, err := store.ApplyDivineEffect(ctx, "p1", "g1", long)
	if err != nil {
		t.Fatalf("apply effect: %v", err)
	}
	if shortID == "" || shortID == longID {
		t.Fatalf("expected distinct ids, got %q and %q", shortID, longID)
	}

	active, err := store.ListActiveEffects(ctx, "p1")
	if err != nil {
		t.Fatalf("list effects: %v", err)
	}
	if len(active) != 2 || active[0].ID != shortID || active[0].Remaining != 1 {
		t.Fatalf("unexpected active effects %+v", active)
	}

	expired, err := store.TickEffects(ctx, "p1")
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != shortID || expired[0].Remaining != 0 {
		t.Fatalf("expected short effect to expire, got %+v", expired)
	}

	active, err = store.ListActiveEffects(ctx, "p1")
	if err != nil {
		t.Fatalf("list effects: %v", err)
	}
	if len(active) != 1 || active[0].ID != longID || active[0].Remaining != 1 {
		t.Fatalf("expected long effect with one turn left, got %+v", active)
	}

	if _, err := store.TickEffects(ctx, "p1"); err != nil {
		t.Fatalf("tick: %v", err)
	}
	expired, err = store.TickEffects(ctx, "p1")
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(expired) != 0 {
		t.Fatalf("expected nothing left to expire, got %+v", expired)
	}
	active, err = store.ListActiveEffects(ctx, "p1")
	if err != nil {
		t.Fatalf("list effects: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active effects, got %+v", active)
	}
}

func testEffectMechanics(t *testing.T, store storage.Store) {
	ctx := context.Background()
	effect := consequence.Effect{
		Name:        "Heavens' Displeasure",
		Description: "The gods turn their faces from you.",
		Mechanics:   map[string]int{"all_rolls": -2, "healing_received": -25},
		Duration:    5,
		Kind:        consequence.KindDebuff,
	}
	if _, err := store.ApplyDivineEffect(ctx, "p1", "g1", effect); err != nil {
		t.Fatalf("apply effect: %v", err)
	}
	active, err := store.ListActiveEffects(ctx, "p1")
	if err != nil {
		t.Fatalf("list effects: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected one effect, got %d", len(active))
	}
	got := active[0]
	if got.Effect.Name != effect.Name || got.Effect.Description != effect.Description || got.Effect.Kind != effect.Kind {
		t.Fatalf("unexpected effect %+v", got.Effect)
	}
	if got.Effect.Duration != 5 || got.Remaining != 5 || got.GameID != "g1" || got.PlayerID != "p1" {
		t.Fatalf("unexpected effect bookkeeping %+v", got)
	}
	if got.Effect.Mechanics["all_rolls"] != -2 || got.Effect.Mechanics["healing_received"] != -25 {
		t.Fatalf("unexpected mechanics %v", got.Effect.Mechanics)
	}
	if got.AppliedAt.IsZero() {
		t.Fatal("expected applied timestamp")
	}
}

func testCouncilRecord(t *testing.T, store storage.Store) {
	ctx := context.Background()
	record := storage.CouncilRecord{
		ID:              "council-1",
		PlayerID:        "p1",
		GameID:          "g1",
		Turn:            4,
		Action:          "swear an oath",
		Outcome:         verdict.StrongSupport,
		VotesJSON:       []byte(`[{"god":"VALDRIS"}]`),
		TestimoniesJSON: []byte(`["VALDRIS supports."]`),
		ImpactJSON:      []byte(`{"impact_level":"major"}`),
		CreatedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.PutCouncilRecord(ctx, record); err != nil {
		t.Fatalf("put record: %v", err)
	}

	err := store.PutCouncilRecord(ctx, record)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	got, err := store.GetCouncilRecord(ctx, "council-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if got.PlayerID != "p1" || got.GameID != "g1" || got.Turn != 4 || got.Action != record.Action {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.Outcome != verdict.StrongSupport {
		t.Fatalf("expected outcome %s, got %s", verdict.StrongSupport, got.Outcome)
	}
	if string(got.VotesJSON) != string(record.VotesJSON) || string(got.ImpactJSON) != string(record.ImpactJSON) {
		t.Fatalf("unexpected json payloads %s %s", got.VotesJSON, got.ImpactJSON)
	}
	if !got.CreatedAt.Equal(record.CreatedAt) {
		t.Fatalf("expected created at %v, got %v", record.CreatedAt, got.CreatedAt)
	}
}

func testCouncilRecordMissing(t *testing.T, store storage.Store) {
	_, err := store.GetCouncilRecord(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
