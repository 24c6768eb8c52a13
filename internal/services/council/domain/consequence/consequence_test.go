package consequence

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/ballot"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/verdict"
)

type fakeCollaborator struct {
	favor     map[pantheon.GodID]int
	effects   []Effect
	reasons   []string
	favorErr  error
	effectErr error
	failAfter int
	calls     int
}

func newFakeCollaborator() *fakeCollaborator {
	return &fakeCollaborator{favor: map[pantheon.GodID]int{}, failAfter: -1}
}

func (f *fakeCollaborator) UpdateDivineFavor(_ context.Context, _, _ string, god pantheon.GodID, delta int, reason string) (int, error) {
	f.calls++
	if f.favorErr != nil && f.failAfter >= 0 && f.calls > f.failAfter {
		return 0, f.favorErr
	}
	f.favor[god] = pantheon.ClampFavor(f.favor[god] + delta)
	f.reasons = append(f.reasons, reason)
	return f.favor[god], nil
}

func (f *fakeCollaborator) ApplyDivineEffect(_ context.Context, _, _ string, effect Effect) (string, error) {
	if f.effectErr != nil {
		return "", f.effectErr
	}
	f.effects = append(f.effects, effect)
	return fmt.Sprintf("eff-%d", len(f.effects)), nil
}

func allVotes(p ballot.Position) map[pantheon.GodID]ballot.Position {
	votes := make(map[pantheon.GodID]ballot.Position, pantheon.Size)
	for _, id := range pantheon.IDs() {
		votes[id] = p
	}
	return votes
}

func TestEveryOutcomeHasATier(t *testing.T) {
	for _, o := range verdict.Outcomes() {
		tier, err := TierFor(o)
		if err != nil {
			t.Fatalf("%s: %v", o, err)
		}
		if len(tier.Effects) == 0 {
			t.Fatalf("%s: expected at least one effect", o)
		}
		if tier.Impact == "" || tier.Rarity == "" {
			t.Fatalf("%s: expected impact and rarity labels", o)
		}
	}
}

func TestTierForUnknownOutcome(t *testing.T) {
	_, err := TierFor(verdict.OutcomeUnspecified)
	var unknown *UnknownOutcomeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected unknown outcome error, got %v", err)
	}
}

func TestTierForReturnsIndependentCopies(t *testing.T) {
	first, _ := TierFor(verdict.StrongSupport)
	first.Effects[0].Mechanics["skill_checks"] = 99

	second, _ := TierFor(verdict.StrongSupport)
	if second.Effects[0].Mechanics["skill_checks"] != 2 {
		t.Fatalf("expected table to be unchanged, got %d", second.Effects[0].Mechanics["skill_checks"])
	}
}

func TestNewPlanUnanimousTiersUseFixedDelta(t *testing.T) {
	tests := []struct {
		outcome verdict.Outcome
		vote    ballot.Position
		want    int
	}{
		{verdict.UnanimousBlessing, ballot.Support, 20},
		{verdict.UnanimousCurse, ballot.Oppose, -25},
	}
	for _, tt := range tests {
		plan, err := NewPlan(tt.outcome, allVotes(tt.vote))
		if err != nil {
			t.Fatalf("%s: %v", tt.outcome, err)
		}
		if len(plan.FavorChanges) != pantheon.Size {
			t.Fatalf("%s: expected %d changes, got %d", tt.outcome, pantheon.Size, len(plan.FavorChanges))
		}
		for _, c := range plan.FavorChanges {
			if c.Delta != tt.want {
				t.Fatalf("%s: expected %d for %s, got %d", tt.outcome, tt.want, c.God, c.Delta)
			}
		}
		if len(plan.Effects) != 2 || plan.Impact != "legendary" {
			t.Fatalf("%s: unexpected plan %+v", tt.outcome, plan)
		}
	}
}

func TestNewPlanDynamicDeltas(t *testing.T) {
	votes := map[pantheon.GodID]ballot.Position{
		pantheon.Valdris: ballot.Support,
		pantheon.Kaitha:  ballot.Abstain,
		pantheon.Morvane: ballot.Oppose,
	}
	tests := []struct {
		outcome verdict.Outcome
		support int
		abstain int
		oppose  int
	}{
		{verdict.StrongSupport, 15, 5, -5},
		{verdict.NarrowSupport, 10, 2, -3},
		{verdict.Deadlock, 2, 0, -2},
		{verdict.NarrowOpposition, 3, -2, -10},
		{verdict.StrongOpposition, 5, -5, -15},
	}
	for _, tt := range tests {
		plan, err := NewPlan(tt.outcome, votes)
		if err != nil {
			t.Fatalf("%s: %v", tt.outcome, err)
		}
		got := map[pantheon.GodID]int{}
		for _, c := range plan.FavorChanges {
			got[c.God] = c.Delta
		}
		if got[pantheon.Valdris] != tt.support || got[pantheon.Kaitha] != tt.abstain || got[pantheon.Morvane] != tt.oppose {
			t.Fatalf("%s: unexpected deltas %v", tt.outcome, got)
		}
		// Gods absent from votes are treated as abstaining.
		if got[pantheon.Mercus] != tt.abstain {
			t.Fatalf("%s: expected missing vote to use abstain delta, got %d", tt.outcome, got[pantheon.Mercus])
		}
	}
}

func TestNewPlanRejectsUnknownVoter(t *testing.T) {
	votes := allVotes(ballot.Support)
	votes["LOKI"] = ballot.Support
	_, err := NewPlan(verdict.StrongSupport, votes)
	var unknown *verdict.UnknownVoterError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected unknown voter error, got %v", err)
	}
}

func TestNewPlanRejectsInvalidPosition(t *testing.T) {
	votes := allVotes(ballot.Support)
	votes[pantheon.Valdris] = ballot.Position(5)
	_, err := NewPlan(verdict.StrongSupport, votes)
	var invalid *verdict.InvalidPositionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected invalid position error, got %v", err)
	}
	if invalid.God != pantheon.Valdris {
		t.Fatalf("expected VALDRIS, got %s", invalid.God)
	}

	fake := newFakeCollaborator()
	if _, err := ApplyConsequences(context.Background(), fake, "player-1", "game-1", verdict.StrongSupport, votes); !errors.As(err, &invalid) {
		t.Fatalf("expected apply to reject invalid position, got %v", err)
	}
	if len(fake.effects) != 0 || len(fake.reasons) != 0 {
		t.Fatalf("expected nothing written, got %d effects and %d favor writes", len(fake.effects), len(fake.reasons))
	}
}

func TestApplyWritesFavorAndEffects(t *testing.T) {
	fake := newFakeCollaborator()
	votes := allVotes(ballot.Support)
	votes[pantheon.Kaitha] = ballot.Oppose

	result, err := ApplyConsequences(context.Background(), fake, "player-1", "game-1", verdict.StrongSupport, votes)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.ImpactLevel != "major" {
		t.Fatalf("expected impact major, got %q", result.ImpactLevel)
	}
	if len(result.FavorChanges) != pantheon.Size {
		t.Fatalf("expected %d favor changes, got %d", pantheon.Size, len(result.FavorChanges))
	}
	if fake.favor[pantheon.Valdris] != 15 || fake.favor[pantheon.Kaitha] != -5 {
		t.Fatalf("unexpected favor %v", fake.favor)
	}
	if len(result.AppliedEffects) != 1 {
		t.Fatalf("expected one effect, got %d", len(result.AppliedEffects))
	}
	applied := result.AppliedEffects[0]
	if applied.ID != "eff-1" || applied.Name != "Blessed Path" || applied.Duration != 5 || applied.Kind != KindBuff {
		t.Fatalf("unexpected effect summary %+v", applied)
	}
	if fake.reasons[0] != "council:STRONG_SUPPORT" {
		t.Fatalf("unexpected reason %q", fake.reasons[0])
	}
}

func TestApplyTwiceDoubleApplies(t *testing.T) {
	fake := newFakeCollaborator()
	votes := allVotes(ballot.Support)
	votes[pantheon.Athena] = ballot.Abstain

	if _, err := ApplyConsequences(context.Background(), fake, "p", "g", verdict.StrongSupport, votes); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	once := fake.favor[pantheon.Valdris]

	if _, err := ApplyConsequences(context.Background(), fake, "p", "g", verdict.StrongSupport, votes); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	twice := fake.favor[pantheon.Valdris]

	if once == twice {
		t.Fatalf("expected second apply to change favor, stayed at %d", once)
	}
	if twice != 30 {
		t.Fatalf("expected favor 30 after two applies, got %d", twice)
	}
	if len(fake.effects) != 2 {
		t.Fatalf("expected effects applied twice, got %d", len(fake.effects))
	}
}

func TestApplyReturnsClampedFavor(t *testing.T) {
	fake := newFakeCollaborator()
	fake.favor[pantheon.Valdris] = 90

	result, err := ApplyConsequences(context.Background(), fake, "p", "g", verdict.UnanimousBlessing, allVotes(ballot.Support))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.FavorChanges[0].God != pantheon.Valdris || result.FavorChanges[0].NewFavor != pantheon.MaxFavor {
		t.Fatalf("expected VALDRIS clamped to %d, got %+v", pantheon.MaxFavor, result.FavorChanges[0])
	}
}

func TestApplyPropagatesCollaboratorErrors(t *testing.T) {
	boom := errors.New("boom")

	fake := newFakeCollaborator()
	fake.favorErr = boom
	fake.failAfter = 2
	result, err := ApplyConsequences(context.Background(), fake, "p", "g", verdict.Deadlock, allVotes(ballot.Abstain))
	if !errors.Is(err, boom) {
		t.Fatalf("expected favor error, got %v", err)
	}
	if len(result.FavorChanges) != 2 {
		t.Fatalf("expected two writes before failure, got %d", len(result.FavorChanges))
	}
	if len(fake.effects) != 0 {
		t.Fatal("expected no effects after favor failure")
	}

	fake = newFakeCollaborator()
	fake.effectErr = boom
	_, err = ApplyConsequences(context.Background(), fake, "p", "g", verdict.Deadlock, allVotes(ballot.Abstain))
	if !errors.Is(err, boom) {
		t.Fatalf("expected effect error, got %v", err)
	}
}

func TestApplyRequiresCollaborator(t *testing.T) {
	plan, err := NewPlan(verdict.Deadlock, nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if _, err := Apply(context.Background(), nil, "p", "g", plan); err == nil {
		t.Fatal("expected error for nil collaborator")
	}
}
