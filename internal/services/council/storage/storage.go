package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/arcane-codex/internal/platform/errors"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/consequence"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/verdict"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrAlreadyExists indicates a council record id was already written.
var ErrAlreadyExists = apperrors.New(apperrors.CodeCouncilAlreadyApplied, "council record already exists")

// DefaultHistoryLimit caps favor history reads when no limit is given.
const DefaultHistoryLimit = 50

// FavorHistoryEntry is one persisted favor change.
type FavorHistoryEntry struct {
	PlayerID   string
	GameID     string
	God        pantheon.GodID
	Delta      int
	FavorAfter int
	Reason     string
	CreatedAt  time.Time
}

// ActiveEffect is a divine effect registered for a player.
type ActiveEffect struct {
	ID        string
	PlayerID  string
	GameID    string
	Effect    consequence.Effect
	Remaining int
	AppliedAt time.Time
}

// CouncilRecord is the write-once log entry for a convening whose
// consequences were applied. JSON fields are opaque to the store.
type CouncilRecord struct {
	ID              string
	PlayerID        string
	GameID          string
	Turn            int
	Action          string
	Outcome         verdict.Outcome
	VotesJSON       []byte
	TestimoniesJSON []byte
	ImpactJSON      []byte
	CreatedAt       time.Time
}

// FavorStore owns per-player favor and its history.
type FavorStore interface {
	// GetAllFavor returns favor for every god; gods never touched read as 0.
	GetAllFavor(ctx context.Context, playerID string) (map[pantheon.GodID]int, error)
	// UpdateDivineFavor adds delta, clamps to the favor bounds, appends a
	// history entry and returns the new value.
	UpdateDivineFavor(ctx context.Context, playerID, gameID string, god pantheon.GodID, delta int, reason string) (int, error)
	// ListFavorHistory returns the newest entries first.
	ListFavorHistory(ctx context.Context, playerID string, limit int) ([]FavorHistoryEntry, error)
}

// EffectStore owns timed divine effects.
type EffectStore interface {
	ApplyDivineEffect(ctx context.Context, playerID, gameID string, effect consequence.Effect) (string, error)
	// ListActiveEffects returns effects with turns remaining, oldest first.
	ListActiveEffects(ctx context.Context, playerID string) ([]ActiveEffect, error)
	// TickEffects spends one turn of every active effect and returns those
	// that expired.
	TickEffects(ctx context.Context, playerID string) ([]ActiveEffect, error)
}

// RecordStore owns council records.
type RecordStore interface {
	// PutCouncilRecord returns ErrAlreadyExists when the id was written before.
	PutCouncilRecord(ctx context.Context, record CouncilRecord) error
	GetCouncilRecord(ctx context.Context, id string) (CouncilRecord, error)
}

// Store is the full persistence surface of the council service.
type Store interface {
	FavorStore
	EffectStore
	RecordStore
	Close() error
}

// NormalizeHistoryLimit applies DefaultHistoryLimit to non-positive limits.
func NormalizeHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}

// UnknownGodError builds the error stores return for favor writes naming a
// god outside the registry.
func UnknownGodError(god pantheon.GodID) error {
	return apperrors.WithMetadata(apperrors.CodeUnknownVoter, "unknown god", map[string]string{"god": string(god)})
}
