// Package consequence turns a council outcome into favor deltas and timed
// mechanical effects, and applies them through the persistence collaborator.
//
// Planning is pure; Apply performs the writes. Applying the same plan twice
// applies it twice.
package consequence

import (
	"fmt"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/ballot"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/verdict"
)

// Kind classifies an effect for display and stacking.
type Kind string

const (
	KindBuff    Kind = "buff"
	KindDebuff  Kind = "debuff"
	KindNeutral Kind = "neutral"
)

// Effect is a timed mechanical modifier granted by a council outcome.
type Effect struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Mechanics   map[string]int `json:"mechanics"`
	Duration    int            `json:"duration"`
	Kind        Kind           `json:"type"`
}

// Deltas maps a god's vote to its favor change under a non-unanimous tier.
type Deltas struct {
	Support int
	Abstain int
	Oppose  int
}

// For returns the delta for one vote.
func (d Deltas) For(p ballot.Position) int {
	switch p {
	case ballot.Support:
		return d.Support
	case ballot.Oppose:
		return d.Oppose
	default:
		return d.Abstain
	}
}

// Tier is the static consequence row for one outcome.
type Tier struct {
	Outcome verdict.Outcome
	// Fixed is applied to every god when set; otherwise Deltas is consulted
	// per vote.
	Fixed   *int
	Deltas  Deltas
	Effects []Effect
	Impact  string
	Rarity  string
}

// UnknownOutcomeError reports an outcome with no consequence tier.
type UnknownOutcomeError struct {
	Outcome verdict.Outcome
}

func (e *UnknownOutcomeError) Error() string {
	return fmt.Sprintf("no consequence tier for outcome %s", e.Outcome)
}

func fixed(v int) *int { return &v }

var tiers = map[verdict.Outcome]Tier{
	verdict.UnanimousBlessing: {
		Outcome: verdict.UnanimousBlessing,
		Fixed:   fixed(20),
		Effects: []Effect{
			{
				Name:        "Pantheon's Blessing",
				Description: "All seven gods stand behind you. Fortune bends in your favor.",
				Mechanics:   map[string]int{"all_rolls": 3, "max_hp": 20},
				Duration:    10,
				Kind:        KindBuff,
			},
			{
				Name:        "Divine Aura",
				Description: "A faint radiance marks you as favored by the heavens.",
				Mechanics:   map[string]int{"npc_reaction": 2},
				Duration:    5,
				Kind:        KindBuff,
			},
		},
		Impact: "legendary",
		Rarity: "legendary",
	},
	verdict.StrongSupport: {
		Outcome: verdict.StrongSupport,
		Deltas:  Deltas{Support: 15, Abstain: 5, Oppose: -5},
		Effects: []Effect{{
			Name:        "Blessed Path",
			Description: "The council approves. Your skills are sharpened.",
			Mechanics:   map[string]int{"skill_checks": 2},
			Duration:    5,
			Kind:        KindBuff,
		}},
		Impact: "major",
		Rarity: "uncommon",
	},
	verdict.NarrowSupport: {
		Outcome: verdict.NarrowSupport,
		Deltas:  Deltas{Support: 10, Abstain: 2, Oppose: -3},
		Effects: []Effect{{
			Name:        "Faint Approval",
			Description: "A slim majority smiles on you, for now.",
			Mechanics:   map[string]int{"next_roll": 1},
			Duration:    2,
			Kind:        KindBuff,
		}},
		Impact: "minor",
		Rarity: "common",
	},
	verdict.Deadlock: {
		Outcome: verdict.Deadlock,
		Deltas:  Deltas{Support: 2, Abstain: 0, Oppose: -2},
		Effects: []Effect{{
			Name:        "Divine Uncertainty",
			Description: "The heavens are divided. Strange things may happen.",
			Mechanics:   map[string]int{"random_event_chance": 10},
			Duration:    3,
			Kind:        KindNeutral,
		}},
		Impact: "neutral",
		Rarity: "common",
	},
	verdict.NarrowOpposition: {
		Outcome: verdict.NarrowOpposition,
		Deltas:  Deltas{Support: 3, Abstain: -2, Oppose: -10},
		Effects: []Effect{{
			Name:        "Divine Disapproval",
			Description: "The council frowns upon your deed.",
			Mechanics:   map[string]int{"skill_checks": -1},
			Duration:    3,
			Kind:        KindDebuff,
		}},
		Impact: "minor",
		Rarity: "common",
	},
	verdict.StrongOpposition: {
		Outcome: verdict.StrongOpposition,
		Deltas:  Deltas{Support: 5, Abstain: -5, Oppose: -15},
		Effects: []Effect{{
			Name:        "Heavens' Displeasure",
			Description: "The gods turn their faces from you. Wounds close slowly.",
			Mechanics:   map[string]int{"all_rolls": -2, "healing_received": -25},
			Duration:    5,
			Kind:        KindDebuff,
		}},
		Impact: "major",
		Rarity: "uncommon",
	},
	verdict.UnanimousCurse: {
		Outcome: verdict.UnanimousCurse,
		Fixed:   fixed(-25),
		Effects: []Effect{
			{
				Name:        "Pantheon's Curse",
				Description: "Every god has condemned you. The world itself resists your hand.",
				Mechanics:   map[string]int{"all_rolls": -5, "max_hp": -20},
				Duration:    10,
				Kind:        KindDebuff,
			},
			{
				Name:        "Marked by the Gods",
				Description: "Mortals sense the divine judgment upon you and keep their distance.",
				Mechanics:   map[string]int{"npc_reaction": -3},
				Duration:    10,
				Kind:        KindDebuff,
			},
		},
		Impact: "legendary",
		Rarity: "legendary",
	},
}

// TierFor returns the consequence row for outcome. Every valid outcome has one.
func TierFor(outcome verdict.Outcome) (Tier, error) {
	t, ok := tiers[outcome]
	if !ok {
		return Tier{}, &UnknownOutcomeError{Outcome: outcome}
	}
	t.Effects = cloneEffects(t.Effects)
	return t, nil
}

func cloneEffects(in []Effect) []Effect {
	out := make([]Effect, len(in))
	for i, e := range in {
		mech := make(map[string]int, len(e.Mechanics))
		for k, v := range e.Mechanics {
			mech[k] = v
		}
		e.Mechanics = mech
		out[i] = e
	}
	return out
}
