package ballot

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
)

// Alignment score bounds and keyword weights.
const (
	MinAlignment = -100
	MaxAlignment = 100

	CoreValueBonus      = 20
	OpposedValuePenalty = 25
)

// ActionContext carries the boolean flags the game layer attaches to an action.
type ActionContext struct {
	InvolvesOath     bool `json:"involves_oath,omitempty" yaml:"involves_oath"`
	BreaksLaw        bool `json:"breaks_law,omitempty" yaml:"breaks_law"`
	RestrictsFreedom bool `json:"restricts_freedom,omitempty" yaml:"restricts_freedom"`
	HarmsNature      bool `json:"harms_nature,omitempty" yaml:"harms_nature"`
	SeeksKnowledge   bool `json:"seeks_knowledge,omitempty" yaml:"seeks_knowledge"`
	InvolvesCombat   bool `json:"involves_combat,omitempty" yaml:"involves_combat"`
	Profitable       bool `json:"profitable,omitempty" yaml:"profitable"`
}

// ContextRule grants one god a fixed adjustment when a flag is set.
type ContextRule struct {
	Flag  string
	God   pantheon.GodID
	Delta int
	isSet func(ActionContext) bool
}

var contextRules = []ContextRule{
	{Flag: "involves_oath", God: pantheon.Valdris, Delta: 30, isSet: func(c ActionContext) bool { return c.InvolvesOath }},
	{Flag: "breaks_law", God: pantheon.Valdris, Delta: -40, isSet: func(c ActionContext) bool { return c.BreaksLaw }},
	{Flag: "restricts_freedom", God: pantheon.Kaitha, Delta: -35, isSet: func(c ActionContext) bool { return c.RestrictsFreedom }},
	{Flag: "harms_nature", God: pantheon.Sylara, Delta: -40, isSet: func(c ActionContext) bool { return c.HarmsNature }},
	{Flag: "seeks_knowledge", God: pantheon.Athena, Delta: 25, isSet: func(c ActionContext) bool { return c.SeeksKnowledge }},
	{Flag: "involves_combat", God: pantheon.Korvan, Delta: 20, isSet: func(c ActionContext) bool { return c.InvolvesCombat }},
	{Flag: "profitable", God: pantheon.Mercus, Delta: 25, isSet: func(c ActionContext) bool { return c.Profitable }},
}

// ContextRules returns the context flag table.
func ContextRules() []ContextRule {
	out := make([]ContextRule, len(contextRules))
	copy(out, contextRules)
	return out
}

// Alignment explains how a score was reached.
type Alignment struct {
	God         pantheon.GodID
	CoreHits    []string
	OpposedHits []string
	Rules       []ContextRule
	// Raw is the running total before clamping.
	Raw   int
	Score int
}

// Explain scores action against god's values and records every match.
// Every hit accumulates; the clamp is applied once at the end.
func Explain(god pantheon.God, action string, actx ActionContext) Alignment {
	text := normalize(action)
	result := Alignment{God: god.ID}

	for _, kw := range god.CoreValues {
		if strings.Contains(text, normalize(kw)) {
			result.CoreHits = append(result.CoreHits, kw)
			result.Raw += CoreValueBonus
		}
	}
	for _, kw := range god.OpposedValues {
		if strings.Contains(text, normalize(kw)) {
			result.OpposedHits = append(result.OpposedHits, kw)
			result.Raw -= OpposedValuePenalty
		}
	}
	for _, rule := range contextRules {
		if rule.God == god.ID && rule.isSet(actx) {
			result.Rules = append(result.Rules, rule)
			result.Raw += rule.Delta
		}
	}

	result.Score = clampInt(result.Raw, MinAlignment, MaxAlignment)
	return result
}

// Score returns the clamped alignment of action with god's values.
func Score(god pantheon.God, action string, actx ActionContext) int {
	return Explain(god, action, actx).Score
}

func normalize(s string) string {
	// A Caser carries state, so each call gets its own.
	return cases.Lower(language.Und).String(s)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
