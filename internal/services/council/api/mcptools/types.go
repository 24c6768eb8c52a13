package mcptools

import (
	"time"

	"github.com/louisbranch/arcane-codex/internal/services/council/app"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/ballot"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/council"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage"
)

// ActionContextInput mirrors the boolean context flags of an action.
type ActionContextInput struct {
	InvolvesOath     bool `json:"involves_oath,omitempty" jsonschema:"the action swears or keeps an oath"`
	BreaksLaw        bool `json:"breaks_law,omitempty" jsonschema:"the action breaks a law"`
	RestrictsFreedom bool `json:"restricts_freedom,omitempty" jsonschema:"the action restricts someone's freedom"`
	HarmsNature      bool `json:"harms_nature,omitempty" jsonschema:"the action harms nature"`
	SeeksKnowledge   bool `json:"seeks_knowledge,omitempty" jsonschema:"the action seeks knowledge"`
	InvolvesCombat   bool `json:"involves_combat,omitempty" jsonschema:"the action involves combat"`
	Profitable       bool `json:"profitable,omitempty" jsonschema:"the action is profitable"`
}

func (in ActionContextInput) toDomain() ballot.ActionContext {
	return ballot.ActionContext{
		InvolvesOath:     in.InvolvesOath,
		BreaksLaw:        in.BreaksLaw,
		RestrictsFreedom: in.RestrictsFreedom,
		HarmsNature:      in.HarmsNature,
		SeeksKnowledge:   in.SeeksKnowledge,
		InvolvesCombat:   in.InvolvesCombat,
		Profitable:       in.Profitable,
	}
}

// CouncilConveneInput represents the MCP tool input for convening a council.
type CouncilConveneInput struct {
	PlayerID string             `json:"player_id" jsonschema:"player whose action is judged"`
	GameID   string             `json:"game_id,omitempty" jsonschema:"game the action happens in"`
	Turn     int                `json:"turn,omitempty" jsonschema:"game turn of the action"`
	Action   string             `json:"action" jsonschema:"free-text description of the action"`
	Context  ActionContextInput `json:"context,omitempty" jsonschema:"context flags attached to the action"`
}

// VoteResult is one god's vote.
type VoteResult struct {
	God         string  `json:"god" jsonschema:"god identifier"`
	Position    int     `json:"position" jsonschema:"vote: 1 support, 0 abstain, -1 oppose"`
	Label       string  `json:"label" jsonschema:"vote label (support, abstain, oppose)"`
	Weight      float64 `json:"weight" jsonschema:"favor-weighted vote"`
	Alignment   int     `json:"alignment" jsonschema:"alignment score between -100 and 100"`
	Reasoning   string  `json:"reasoning" jsonschema:"the god's testimony"`
	FavorBefore int     `json:"favor_before" jsonschema:"favor before consequences"`
	FavorAfter  int     `json:"favor_after" jsonschema:"favor after consequences; equals favor_before until applied"`
}

// CouncilResult represents the MCP tool output for a convened council.
type CouncilResult struct {
	CouncilID     string         `json:"council_id" jsonschema:"council identifier; pass to council_apply"`
	PlayerID      string         `json:"player_id" jsonschema:"player identifier"`
	GameID        string         `json:"game_id,omitempty" jsonschema:"game identifier"`
	Turn          int            `json:"turn,omitempty" jsonschema:"game turn"`
	Outcome       string         `json:"outcome" jsonschema:"outcome tier"`
	WeightedScore float64        `json:"weighted_score" jsonschema:"sum of weighted votes"`
	Margin        float64        `json:"margin" jsonschema:"absolute weighted score"`
	Support       int            `json:"support" jsonschema:"raw supporting votes"`
	Oppose        int            `json:"oppose" jsonschema:"raw opposing votes"`
	Abstain       int            `json:"abstain" jsonschema:"raw abstentions"`
	DecisiveGods  []string       `json:"decisive_gods" jsonschema:"the two gods with the largest weighted votes"`
	SwingGods     []string       `json:"swing_gods" jsonschema:"gods who abstained despite strong favor"`
	Votes         []VoteResult   `json:"votes" jsonschema:"votes in registry order"`
	FavorLevels   map[string]int `json:"favor_levels" jsonschema:"favor used for the vote"`
	ConvenedAt    string         `json:"convened_at" jsonschema:"RFC3339 timestamp of the convening"`
}

// NewCouncilResult flattens a council for tool output.
func NewCouncilResult(c council.Council) CouncilResult {
	out := CouncilResult{
		CouncilID:     c.ID,
		PlayerID:      c.PlayerID,
		GameID:        c.GameID,
		Turn:          c.Turn,
		Outcome:       c.Outcome.Outcome.String(),
		WeightedScore: c.Outcome.WeightedScore,
		Margin:        c.Outcome.Margin,
		Support:       c.Outcome.Support,
		Oppose:        c.Outcome.Oppose,
		Abstain:       c.Outcome.Abstain,
		DecisiveGods:  godNames(c.Outcome.DecisiveGods),
		SwingGods:     godNames(c.Outcome.SwingGods),
		FavorLevels:   FavorMap(c.FavorLevels),
		ConvenedAt:    formatTime(c.ConvenedAt),
	}
	for _, v := range c.Votes {
		out.Votes = append(out.Votes, VoteResult{
			God:         string(v.God),
			Position:    int(v.Position),
			Label:       v.Position.String(),
			Weight:      v.Weight,
			Alignment:   v.Alignment,
			Reasoning:   v.Reasoning,
			FavorBefore: v.FavorBefore,
			FavorAfter:  v.FavorAfter,
		})
	}
	return out
}

// CouncilApplyInput represents the MCP tool input for applying a council.
type CouncilApplyInput struct {
	CouncilID string `json:"council_id" jsonschema:"council identifier returned by council_convene"`
}

// FavorChangeResult is one applied favor change.
type FavorChangeResult struct {
	God      string `json:"god" jsonschema:"god identifier"`
	Delta    int    `json:"delta" jsonschema:"favor delta"`
	NewFavor int    `json:"new_favor" jsonschema:"favor after clamping"`
}

// AppliedEffectResult summarizes an applied effect.
type AppliedEffectResult struct {
	ID          string `json:"id" jsonschema:"effect identifier"`
	Name        string `json:"name" jsonschema:"effect name"`
	Description string `json:"description" jsonschema:"effect description"`
	Duration    int    `json:"duration" jsonschema:"duration in turns"`
	Type        string `json:"type" jsonschema:"buff, debuff or neutral"`
}

// CouncilApplyResult represents the MCP tool output for applied consequences.
type CouncilApplyResult struct {
	Council        CouncilResult         `json:"council" jsonschema:"the council with favor_after filled in"`
	FavorChanges   []FavorChangeResult   `json:"favor_changes" jsonschema:"favor changes per god"`
	AppliedEffects []AppliedEffectResult `json:"applied_effects" jsonschema:"effects registered for the player"`
	ImpactLevel    string                `json:"impact_level" jsonschema:"narrative impact of the outcome"`
	Rarity         string                `json:"rarity" jsonschema:"rarity of the outcome"`
}

// NewApplyResult flattens applied consequences for tool output.
func NewApplyResult(applied app.ApplyResult) CouncilApplyResult {
	result := CouncilApplyResult{
		Council:        NewCouncilResult(applied.Council),
		FavorChanges:   make([]FavorChangeResult, 0, len(applied.FavorChanges)),
		AppliedEffects: make([]AppliedEffectResult, 0, len(applied.AppliedEffects)),
		ImpactLevel:    applied.ImpactLevel,
		Rarity:         applied.Rarity,
	}
	for _, change := range applied.FavorChanges {
		result.FavorChanges = append(result.FavorChanges, FavorChangeResult{
			God:      string(change.God),
			Delta:    change.Delta,
			NewFavor: change.NewFavor,
		})
	}
	for _, effect := range applied.AppliedEffects {
		result.AppliedEffects = append(result.AppliedEffects, AppliedEffectResult{
			ID:          effect.ID,
			Name:        effect.Name,
			Description: effect.Description,
			Duration:    effect.Duration,
			Type:        string(effect.Kind),
		})
	}
	return result
}

// CouncilVotersInput is empty; the registry is static.
type CouncilVotersInput struct{}

// VoterResult describes one god.
type VoterResult struct {
	ID                string   `json:"id" jsonschema:"god identifier"`
	Domain            string   `json:"domain" jsonschema:"god's domain"`
	CoreValues        []string `json:"core_values" jsonschema:"keywords the god favors"`
	OpposedValues     []string `json:"opposed_values" jsonschema:"keywords the god opposes"`
	AbstainLikelihood float64  `json:"abstain_likelihood" jsonschema:"chance of abstaining when ambivalent"`
}

// ContextRuleResult describes one context flag rule.
type ContextRuleResult struct {
	Flag  string `json:"flag" jsonschema:"context flag name"`
	God   string `json:"god" jsonschema:"god affected"`
	Delta int    `json:"delta" jsonschema:"alignment adjustment"`
}

// CouncilVotersResult lists the council and its context rules.
type CouncilVotersResult struct {
	Voters       []VoterResult       `json:"voters" jsonschema:"gods in registry order"`
	ContextRules []ContextRuleResult `json:"context_rules" jsonschema:"context flag rules"`
}

// NewVotersResult describes the static council registry.
func NewVotersResult() CouncilVotersResult {
	var result CouncilVotersResult
	for _, god := range pantheon.All() {
		result.Voters = append(result.Voters, VoterResult{
			ID:                string(god.ID),
			Domain:            god.Domain,
			CoreValues:        god.CoreValues,
			OpposedValues:     god.OpposedValues,
			AbstainLikelihood: god.AbstainLikelihood,
		})
	}
	for _, rule := range ballot.ContextRules() {
		result.ContextRules = append(result.ContextRules, ContextRuleResult{
			Flag:  rule.Flag,
			God:   string(rule.God),
			Delta: rule.Delta,
		})
	}
	return result
}

// PlayerInput names a player.
type PlayerInput struct {
	PlayerID string `json:"player_id" jsonschema:"player identifier"`
}

// FavorGetResult represents the MCP tool output for a favor read.
type FavorGetResult struct {
	PlayerID string         `json:"player_id" jsonschema:"player identifier"`
	Favor    map[string]int `json:"favor" jsonschema:"favor with every god, -100 to 100"`
}

// FavorHistoryInput selects a player's favor history.
type FavorHistoryInput struct {
	PlayerID string `json:"player_id" jsonschema:"player identifier"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum entries to return (default 50)"`
}

// FavorHistoryEntryResult is one favor change.
type FavorHistoryEntryResult struct {
	GameID     string `json:"game_id,omitempty" jsonschema:"game identifier"`
	God        string `json:"god" jsonschema:"god identifier"`
	Delta      int    `json:"delta" jsonschema:"favor delta"`
	FavorAfter int    `json:"favor_after" jsonschema:"favor after the change"`
	Reason     string `json:"reason,omitempty" jsonschema:"why favor changed"`
	CreatedAt  string `json:"created_at" jsonschema:"RFC3339 timestamp"`
}

// FavorHistoryResult represents the MCP tool output for favor history.
type FavorHistoryResult struct {
	PlayerID string                    `json:"player_id" jsonschema:"player identifier"`
	Entries  []FavorHistoryEntryResult `json:"entries" jsonschema:"newest first"`
}

// NewFavorHistoryResult flattens favor history for tool output.
func NewFavorHistoryResult(playerID string, entries []storage.FavorHistoryEntry) FavorHistoryResult {
	result := FavorHistoryResult{PlayerID: playerID, Entries: make([]FavorHistoryEntryResult, 0, len(entries))}
	for _, e := range entries {
		result.Entries = append(result.Entries, FavorHistoryEntryResult{
			GameID:     e.GameID,
			God:        string(e.God),
			Delta:      e.Delta,
			FavorAfter: e.FavorAfter,
			Reason:     e.Reason,
			CreatedAt:  formatTime(e.CreatedAt),
		})
	}
	return result
}

// EffectResult is a registered divine effect.
type EffectResult struct {
	ID          string         `json:"id" jsonschema:"effect identifier"`
	GameID      string         `json:"game_id,omitempty" jsonschema:"game identifier"`
	Name        string         `json:"name" jsonschema:"effect name"`
	Description string         `json:"description" jsonschema:"effect description"`
	Mechanics   map[string]int `json:"mechanics" jsonschema:"mechanical modifiers"`
	Type        string         `json:"type" jsonschema:"buff, debuff or neutral"`
	Duration    int            `json:"duration" jsonschema:"total duration in turns"`
	Remaining   int            `json:"remaining" jsonschema:"turns remaining"`
	AppliedAt   string         `json:"applied_at" jsonschema:"RFC3339 timestamp"`
}

// NewEffectResults flattens stored effects for tool output.
func NewEffectResults(effects []storage.ActiveEffect) []EffectResult {
	out := make([]EffectResult, 0, len(effects))
	for _, e := range effects {
		out = append(out, EffectResult{
			ID:          e.ID,
			GameID:      e.GameID,
			Name:        e.Effect.Name,
			Description: e.Effect.Description,
			Mechanics:   e.Effect.Mechanics,
			Type:        string(e.Effect.Kind),
			Duration:    e.Effect.Duration,
			Remaining:   e.Remaining,
			AppliedAt:   formatTime(e.AppliedAt),
		})
	}
	return out
}

// EffectsListResult represents the MCP tool output for active effects.
type EffectsListResult struct {
	PlayerID string         `json:"player_id" jsonschema:"player identifier"`
	Effects  []EffectResult `json:"effects" jsonschema:"active effects, oldest first"`
}

// AdvanceTurnResult represents the MCP tool output for advancing a turn.
type AdvanceTurnResult struct {
	PlayerID string         `json:"player_id" jsonschema:"player identifier"`
	Expired  []EffectResult `json:"expired" jsonschema:"effects that ran out this turn"`
	Active   []EffectResult `json:"active" jsonschema:"effects still active"`
}

func godNames(ids []pantheon.GodID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

// FavorMap keys favor by god name.
func FavorMap(levels map[pantheon.GodID]int) map[string]int {
	out := make(map[string]int, len(levels))
	for god, v := range levels {
		out[string(god)] = v
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
