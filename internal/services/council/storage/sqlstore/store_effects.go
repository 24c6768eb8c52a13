package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/consequence"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage"
)

const effectColumns = `id, player_id, game_id, name, description, mechanics_json, kind, duration, remaining, applied_at`

// ApplyDivineEffect registers effect with its full duration remaining.
func (s *Store) ApplyDivineEffect(ctx context.Context, playerID, gameID string, effect consequence.Effect) (string, error) {
	effectID, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate effect id: %w", err)
	}
	mechanics := effect.Mechanics
	if mechanics == nil {
		mechanics = map[string]int{}
	}
	mechanicsJSON, err := json.Marshal(mechanics)
	if err != nil {
		return "", fmt.Errorf("encode mechanics: %w", err)
	}

	insert := s.rebind(`INSERT INTO divine_effects (` + effectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = s.sqlDB.ExecContext(ctx, insert,
		effectID, playerID, gameID, effect.Name, effect.Description, string(mechanicsJSON),
		string(effect.Kind), effect.Duration, effect.Duration, toMillis(s.now()),
	)
	if err != nil {
		return "", fmt.Errorf("insert effect: %w", err)
	}
	return effectID, nil
}

// ListActiveEffects returns effects with turns remaining, oldest first.
func (s *Store) ListActiveEffects(ctx context.Context, playerID string) ([]storage.ActiveEffect, error) {
	query := s.rebind(`SELECT ` + effectColumns + ` FROM divine_effects
WHERE player_id = ? AND remaining > 0 ORDER BY seq`)
	rows, err := s.sqlDB.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("query effects: %w", err)
	}
	defer rows.Close()
	return scanEffects(rows)
}

// TickEffects spends one turn of every active effect and marks those that
// reach zero as expired.
func (s *Store) TickEffects(ctx context.Context, playerID string) ([]storage.ActiveEffect, error) {
	var expired []storage.ActiveEffect
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		tick := s.rebind(`UPDATE divine_effects SET remaining = remaining - 1 WHERE player_id = ? AND remaining > 0`)
		if _, err := tx.ExecContext(ctx, tick, playerID); err != nil {
			return fmt.Errorf("tick effects: %w", err)
		}

		query := s.rebind(`SELECT ` + effectColumns + ` FROM divine_effects
WHERE player_id = ? AND remaining = 0 AND expired_at IS NULL ORDER BY seq`)
		rows, err := tx.QueryContext(ctx, query, playerID)
		if err != nil {
			return fmt.Errorf("query expired effects: %w", err)
		}
		expired, err = scanEffects(rows)
		rows.Close()
		if err != nil {
			return err
		}

		mark := s.rebind(`UPDATE divine_effects SET expired_at = ? WHERE player_id = ? AND remaining = 0 AND expired_at IS NULL`)
		if _, err := tx.ExecContext(ctx, mark, toMillis(s.now()), playerID); err != nil {
			return fmt.Errorf("mark expired effects: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

func scanEffects(rows *sql.Rows) ([]storage.ActiveEffect, error) {
	var out []storage.ActiveEffect
	for rows.Next() {
		var e storage.ActiveEffect
		var mechanicsJSON, kind string
		var appliedAt int64
		if err := rows.Scan(
			&e.ID, &e.PlayerID, &e.GameID, &e.Effect.Name, &e.Effect.Description,
			&mechanicsJSON, &kind, &e.Effect.Duration, &e.Remaining, &appliedAt,
		); err != nil {
			return nil, fmt.Errorf("scan effect: %w", err)
		}
		if err := json.Unmarshal([]byte(mechanicsJSON), &e.Effect.Mechanics); err != nil {
			return nil, fmt.Errorf("decode mechanics for %s: %w", e.ID, err)
		}
		e.Effect.Kind = consequence.Kind(kind)
		e.AppliedAt = fromMillis(appliedAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read effects: %w", err)
	}
	return out, nil
}
