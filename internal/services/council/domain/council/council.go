// Package council runs one Divine Council convening: read favor, poll each
// god in registry order, classify the aggregate, and narrate every vote.
//
// Convening is read-only. Consequences are applied separately so callers can
// narrate or confirm before committing.
package council

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	apperrors "github.com/louisbranch/arcane-codex/internal/platform/errors"
	"github.com/louisbranch/arcane-codex/internal/platform/id"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/ballot"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/consequence"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/verdict"
)

var (
	// ErrPlayerRequired is returned when a request names no player.
	ErrPlayerRequired = apperrors.New(apperrors.CodeInvalidArgument, "player id is required")
	// ErrActionRequired is returned when a request carries no action text.
	ErrActionRequired = apperrors.New(apperrors.CodeInvalidArgument, "action is required")
)

// FavorReader supplies a player's current favor with every god.
type FavorReader interface {
	GetAllFavor(ctx context.Context, playerID string) (map[pantheon.GodID]int, error)
}

// Request describes the action put before the council.
type Request struct {
	// ID and ConvenedAt are generated when empty.
	ID         string
	PlayerID   string
	GameID     string
	Turn       int
	Action     string
	Context    ballot.ActionContext
	ConvenedAt time.Time
}

// Vote is one god's ballot.
type Vote struct {
	God       pantheon.GodID  `json:"god"`
	Position  ballot.Position `json:"position"`
	Weight    float64         `json:"weight"`
	Alignment int             `json:"alignment"`
	Zone      ballot.Zone     `json:"zone"`
	Reasoning string          `json:"reasoning"`
	// FavorAfter equals FavorBefore until consequences are applied.
	FavorBefore int `json:"favor_before"`
	FavorAfter  int `json:"favor_after"`
}

// Council is the full result of one convening.
type Council struct {
	ID          string
	PlayerID    string
	GameID      string
	Turn        int
	Action      string
	Context     ballot.ActionContext
	Votes       []Vote
	Outcome     verdict.VoteOutcome
	FavorLevels map[pantheon.GodID]int
	ConvenedAt  time.Time
}

// Positions returns each god's discrete vote.
func (c Council) Positions() map[pantheon.GodID]ballot.Position {
	out := make(map[pantheon.GodID]ballot.Position, len(c.Votes))
	for _, v := range c.Votes {
		out[v.God] = v.Position
	}
	return out
}

// Testimonies returns each god's reasoning in vote order.
func (c Council) Testimonies() []string {
	out := make([]string, len(c.Votes))
	for i, v := range c.Votes {
		out[i] = v.Reasoning
	}
	return out
}

// RecordFavorAfter copies applied favor values onto the matching votes.
func (c *Council) RecordFavorAfter(changes []consequence.AppliedFavor) {
	after := make(map[pantheon.GodID]int, len(changes))
	for _, ch := range changes {
		after[ch.God] = ch.NewFavor
	}
	for i := range c.Votes {
		if v, ok := after[c.Votes[i].God]; ok {
			c.Votes[i].FavorAfter = v
		}
	}
}

// Convene polls every god on req and classifies the result. rng is drawn only
// for gods whose tendency falls in the ambiguous zone.
func Convene(ctx context.Context, favor FavorReader, rng *rand.Rand, req Request) (Council, error) {
	if favor == nil {
		return Council{}, fmt.Errorf("favor reader is required")
	}
	if rng == nil {
		return Council{}, fmt.Errorf("random source is required")
	}
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	if req.PlayerID == "" {
		return Council{}, ErrPlayerRequired
	}
	if strings.TrimSpace(req.Action) == "" {
		return Council{}, ErrActionRequired
	}

	levels, err := favor.GetAllFavor(ctx, req.PlayerID)
	if err != nil {
		return Council{}, fmt.Errorf("get favor: %w", err)
	}

	if req.ID == "" {
		req.ID, err = id.NewID()
		if err != nil {
			return Council{}, fmt.Errorf("generate council id: %w", err)
		}
	}
	if req.ConvenedAt.IsZero() {
		req.ConvenedAt = time.Now().UTC()
	}

	c := Council{
		ID:          req.ID,
		PlayerID:    req.PlayerID,
		GameID:      req.GameID,
		Turn:        req.Turn,
		Action:      req.Action,
		Context:     req.Context,
		FavorLevels: make(map[pantheon.GodID]int, pantheon.Size),
		ConvenedAt:  req.ConvenedAt,
	}
	for g, f := range levels {
		c.FavorLevels[g] = f
	}

	positions := make(map[pantheon.GodID]ballot.Position, pantheon.Size)
	for _, god := range pantheon.All() {
		current := c.FavorLevels[god.ID]
		c.FavorLevels[god.ID] = current

		d := ballot.Judge(rng, god, req.Action, req.Context, current)
		positions[god.ID] = d.Position
		c.Votes = append(c.Votes, Vote{
			God:         god.ID,
			Position:    d.Position,
			Weight:      ballot.Weight(current, d.Position),
			Alignment:   d.Alignment.Score,
			Zone:        d.Zone,
			Reasoning:   Testimony(god, d),
			FavorBefore: current,
			FavorAfter:  current,
		})
	}

	outcome, err := verdict.Classify(positions, c.FavorLevels)
	if err != nil {
		var unknown *verdict.UnknownVoterError
		if errors.As(err, &unknown) {
			return Council{}, apperrors.WrapWithMetadata(apperrors.CodeUnknownVoter, "favor names an unknown god",
				map[string]string{"god": string(unknown.God)}, err)
		}
		return Council{}, err
	}
	c.Outcome = outcome
	return c, nil
}
