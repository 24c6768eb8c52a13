package consequence

import (
	"context"
	"fmt"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/ballot"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/verdict"
)

// Collaborator persists favor and effects. UpdateDivineFavor clamps and
// returns the new favor.
type Collaborator interface {
	UpdateDivineFavor(ctx context.Context, playerID, gameID string, god pantheon.GodID, delta int, reason string) (int, error)
	ApplyDivineEffect(ctx context.Context, playerID, gameID string, effect Effect) (string, error)
}

// FavorChange is one god's planned delta.
type FavorChange struct {
	God   pantheon.GodID
	Delta int
}

// Plan is the fully resolved set of writes for one outcome.
type Plan struct {
	Outcome      verdict.Outcome
	FavorChanges []FavorChange
	Effects      []Effect
	Impact       string
	Rarity       string
}

// NewPlan resolves the favor deltas and effects for outcome given each god's
// vote. Gods missing from votes are treated as abstaining.
func NewPlan(outcome verdict.Outcome, votes map[pantheon.GodID]ballot.Position) (Plan, error) {
	tier, err := TierFor(outcome)
	if err != nil {
		return Plan{}, err
	}
	if err := verdict.ValidateVotes(votes); err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Outcome: outcome,
		Effects: tier.Effects,
		Impact:  tier.Impact,
		Rarity:  tier.Rarity,
	}
	for _, god := range pantheon.IDs() {
		delta := tier.Deltas.For(votes[god])
		if tier.Fixed != nil {
			delta = *tier.Fixed
		}
		plan.FavorChanges = append(plan.FavorChanges, FavorChange{God: god, Delta: delta})
	}
	return plan, nil
}

// AppliedFavor is a favor change after persistence.
type AppliedFavor struct {
	God      pantheon.GodID `json:"god"`
	Delta    int            `json:"delta"`
	NewFavor int            `json:"new_favor"`
}

// AppliedEffect summarizes a registered effect for the caller.
type AppliedEffect struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Kind        Kind   `json:"type"`
}

// Result is what Apply wrote.
type Result struct {
	FavorChanges   []AppliedFavor
	AppliedEffects []AppliedEffect
	ImpactLevel    string
}

// Apply writes plan through c. The first collaborator failure aborts and is
// returned; earlier writes are not undone.
func Apply(ctx context.Context, c Collaborator, playerID, gameID string, plan Plan) (Result, error) {
	if c == nil {
		return Result{}, fmt.Errorf("consequence collaborator is required")
	}
	result := Result{ImpactLevel: plan.Impact}
	reason := "council:" + plan.Outcome.String()

	for _, change := range plan.FavorChanges {
		newFavor, err := c.UpdateDivineFavor(ctx, playerID, gameID, change.God, change.Delta, reason)
		if err != nil {
			return result, fmt.Errorf("update favor for %s: %w", change.God, err)
		}
		result.FavorChanges = append(result.FavorChanges, AppliedFavor{
			God:      change.God,
			Delta:    change.Delta,
			NewFavor: newFavor,
		})
	}
	for _, effect := range plan.Effects {
		id, err := c.ApplyDivineEffect(ctx, playerID, gameID, effect)
		if err != nil {
			return result, fmt.Errorf("apply effect %q: %w", effect.Name, err)
		}
		result.AppliedEffects = append(result.AppliedEffects, AppliedEffect{
			ID:          id,
			Name:        effect.Name,
			Description: effect.Description,
			Duration:    effect.Duration,
			Kind:        effect.Kind,
		})
	}
	return result, nil
}

// ApplyConsequences plans and applies in one step.
func ApplyConsequences(ctx context.Context, c Collaborator, playerID, gameID string, outcome verdict.Outcome, votes map[pantheon.GodID]ballot.Position) (Result, error) {
	plan, err := NewPlan(outcome, votes)
	if err != nil {
		return Result{}, err
	}
	return Apply(ctx, c, playerID, gameID, plan)
}
