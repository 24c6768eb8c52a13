package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage"
)

// GetAllFavor returns favor for every god, 0 for gods with no row.
func (s *Store) GetAllFavor(ctx context.Context, playerID string) (map[pantheon.GodID]int, error) {
	rows, err := s.sqlDB.QueryContext(ctx, s.rebind(`SELECT god_id, favor FROM divine_favor WHERE player_id = ?`), playerID)
	if err != nil {
		return nil, fmt.Errorf("query favor: %w", err)
	}
	defer rows.Close()

	out := make(map[pantheon.GodID]int, pantheon.Size)
	for _, god := range pantheon.IDs() {
		out[god] = 0
	}
	for rows.Next() {
		var god string
		var favor int
		if err := rows.Scan(&god, &favor); err != nil {
			return nil, fmt.Errorf("scan favor: %w", err)
		}
		if pantheon.GodID(god).Valid() {
			out[pantheon.GodID(god)] = favor
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read favor: %w", err)
	}
	return out, nil
}

// UpdateDivineFavor clamps inside a single UPDATE so concurrent writers never
// observe an out-of-range value.
func (s *Store) UpdateDivineFavor(ctx context.Context, playerID, gameID string, god pantheon.GodID, delta int, reason string) (int, error) {
	if !god.Valid() {
		return 0, storage.UnknownGodError(god)
	}
	now := toMillis(s.now())

	var next int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		seed := s.rebind(`INSERT INTO divine_favor (player_id, god_id, favor, updated_at) VALUES (?, ?, 0, ?)
ON CONFLICT (player_id, god_id) DO NOTHING`)
		if _, err := tx.ExecContext(ctx, seed, playerID, string(god), now); err != nil {
			return fmt.Errorf("seed favor row: %w", err)
		}

		update := s.rebind(`UPDATE divine_favor SET
    favor = CASE
        WHEN favor + ? > ? THEN ?
        WHEN favor + ? < ? THEN ?
        ELSE favor + ?
    END,
    updated_at = ?
WHERE player_id = ? AND god_id = ?
RETURNING favor`)
		row := tx.QueryRowContext(ctx, update,
			delta, pantheon.MaxFavor, pantheon.MaxFavor,
			delta, pantheon.MinFavor, pantheon.MinFavor,
			delta, now, playerID, string(god),
		)
		if err := row.Scan(&next); err != nil {
			return fmt.Errorf("update favor: %w", err)
		}

		insert := s.rebind(`INSERT INTO favor_history (player_id, game_id, god_id, delta, favor_after, reason, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, insert, playerID, gameID, string(god), delta, next, reason, now); err != nil {
			return fmt.Errorf("append favor history: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// ListFavorHistory returns the newest entries first.
func (s *Store) ListFavorHistory(ctx context.Context, playerID string, limit int) ([]storage.FavorHistoryEntry, error) {
	limit = storage.NormalizeHistoryLimit(limit)
	query := s.rebind(`SELECT player_id, game_id, god_id, delta, favor_after, reason, created_at
FROM favor_history WHERE player_id = ? ORDER BY seq DESC LIMIT ?`)
	rows, err := s.sqlDB.QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query favor history: %w", err)
	}
	defer rows.Close()

	var out []storage.FavorHistoryEntry
	for rows.Next() {
		var entry storage.FavorHistoryEntry
		var god string
		var createdAt int64
		if err := rows.Scan(&entry.PlayerID, &entry.GameID, &god, &entry.Delta, &entry.FavorAfter, &entry.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan favor history: %w", err)
		}
		entry.God = pantheon.GodID(god)
		entry.CreatedAt = fromMillis(createdAt)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read favor history: %w", err)
	}
	return out, nil
}
