package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/verdict"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage"
)

// PutCouncilRecord inserts record once; a repeated id yields ErrAlreadyExists.
func (s *Store) PutCouncilRecord(ctx context.Context, record storage.CouncilRecord) error {
	if record.ID == "" {
		return fmt.Errorf("council record id is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	insert := s.rebind(`INSERT INTO council_records
    (council_id, game_id, player_id, turn, action, votes_json, testimonies_json, outcome, impact_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (council_id) DO NOTHING`)
	res, err := s.sqlDB.ExecContext(ctx, insert,
		record.ID, record.GameID, record.PlayerID, record.Turn, record.Action,
		jsonText(record.VotesJSON, "[]"), jsonText(record.TestimoniesJSON, "[]"),
		record.Outcome.String(), jsonText(record.ImpactJSON, "{}"), toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert council record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("council record rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrAlreadyExists
	}
	return nil
}

// GetCouncilRecord loads a council record by id.
func (s *Store) GetCouncilRecord(ctx context.Context, councilID string) (storage.CouncilRecord, error) {
	query := s.rebind(`SELECT council_id, game_id, player_id, turn, action, votes_json, testimonies_json, outcome, impact_json, created_at
FROM council_records WHERE council_id = ?`)

	var record storage.CouncilRecord
	var votes, testimonies, outcome, impact string
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx, query, councilID).Scan(
		&record.ID, &record.GameID, &record.PlayerID, &record.Turn, &record.Action,
		&votes, &testimonies, &outcome, &impact, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CouncilRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CouncilRecord{}, fmt.Errorf("get council record: %w", err)
	}

	record.Outcome, err = verdict.ParseOutcome(outcome)
	if err != nil {
		return storage.CouncilRecord{}, fmt.Errorf("council record %s: %w", councilID, err)
	}
	record.VotesJSON = []byte(votes)
	record.TestimoniesJSON = []byte(testimonies)
	record.ImpactJSON = []byte(impact)
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func jsonText(raw []byte, empty string) string {
	if len(raw) == 0 {
		return empty
	}
	return string(raw)
}
