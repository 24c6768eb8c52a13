// Package memory provides a mutex-guarded in-process council store.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/louisbranch/arcane-codex/internal/platform/id"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/consequence"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage"
)

// Store keeps all council state in maps. The zero value is not usable; use NewStore.
type Store struct {
	mu sync.RWMutex

	favor   map[string]map[pantheon.GodID]int
	history map[string][]storage.FavorHistoryEntry
	effects map[string][]storage.ActiveEffect
	records map[string]storage.CouncilRecord

	now   func() time.Time
	newID func() (string, error)
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		favor:   make(map[string]map[pantheon.GodID]int),
		history: make(map[string][]storage.FavorHistoryEntry),
		effects: make(map[string][]storage.ActiveEffect),
		records: make(map[string]storage.CouncilRecord),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   id.NewID,
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) GetAllFavor(ctx context.Context, playerID string) (map[pantheon.GodID]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[pantheon.GodID]int, pantheon.Size)
	for _, god := range pantheon.IDs() {
		out[god] = s.favor[playerID][god]
	}
	return out, nil
}

func (s *Store) UpdateDivineFavor(ctx context.Context, playerID, gameID string, god pantheon.GodID, delta int, reason string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !god.Valid() {
		return 0, storage.UnknownGodError(god)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	levels, ok := s.favor[playerID]
	if !ok {
		levels = make(map[pantheon.GodID]int, pantheon.Size)
		s.favor[playerID] = levels
	}
	next := pantheon.ClampFavor(levels[god] + delta)
	levels[god] = next
	s.history[playerID] = append(s.history[playerID], storage.FavorHistoryEntry{
		PlayerID:   playerID,
		GameID:     gameID,
		God:        god,
		Delta:      delta,
		FavorAfter: next,
		Reason:     reason,
		CreatedAt:  s.now(),
	})
	return next, nil
}

func (s *Store) ListFavorHistory(ctx context.Context, playerID string, limit int) ([]storage.FavorHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = storage.NormalizeHistoryLimit(limit)
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[playerID]
	out := make([]storage.FavorHistoryEntry, 0, min(limit, len(entries)))
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (s *Store) ApplyDivineEffect(ctx context.Context, playerID, gameID string, effect consequence.Effect) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	effectID, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate effect id: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.effects[playerID] = append(s.effects[playerID], storage.ActiveEffect{
		ID:        effectID,
		PlayerID:  playerID,
		GameID:    gameID,
		Effect:    cloneEffect(effect),
		Remaining: effect.Duration,
		AppliedAt: s.now(),
	})
	return effectID, nil
}

func (s *Store) ListActiveEffects(ctx context.Context, playerID string) ([]storage.ActiveEffect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.ActiveEffect
	for _, e := range s.effects[playerID] {
		if e.Remaining > 0 {
			e.Effect = cloneEffect(e.Effect)
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) TickEffects(ctx context.Context, playerID string) ([]storage.ActiveEffect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []storage.ActiveEffect
	kept := s.effects[playerID][:0]
	for _, e := range s.effects[playerID] {
		if e.Remaining <= 0 {
			continue
		}
		e.Remaining--
		if e.Remaining == 0 {
			expired = append(expired, e)
			continue
		}
		kept = append(kept, e)
	}
	s.effects[playerID] = kept
	return expired, nil
}

func (s *Store) PutCouncilRecord(ctx context.Context, record storage.CouncilRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.ID == "" {
		return fmt.Errorf("council record id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; ok {
		return storage.ErrAlreadyExists
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	s.records[record.ID] = record
	return nil
}

func (s *Store) GetCouncilRecord(ctx context.Context, councilID string) (storage.CouncilRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CouncilRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[councilID]
	if !ok {
		return storage.CouncilRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func cloneEffect(e consequence.Effect) consequence.Effect {
	mech := make(map[string]int, len(e.Mechanics))
	for k, v := range e.Mechanics {
		mech[k] = v
	}
	e.Mechanics = mech
	return e
}

var _ storage.Store = (*Store)(nil)
