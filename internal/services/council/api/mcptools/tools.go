package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apperrors "github.com/louisbranch/arcane-codex/internal/platform/errors"
	"github.com/louisbranch/arcane-codex/internal/services/council/app"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/council"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage"
)

// CouncilService is the slice of app.Service the tools call.
type CouncilService interface {
	Convene(ctx context.Context, req council.Request) (council.Council, error)
	ApplyConsequences(ctx context.Context, req app.ApplyRequest) (app.ApplyResult, error)
	Favor(ctx context.Context, playerID string) (map[pantheon.GodID]int, error)
	FavorHistory(ctx context.Context, playerID string, limit int) ([]storage.FavorHistoryEntry, error)
	ActiveEffects(ctx context.Context, playerID string) ([]storage.ActiveEffect, error)
	AdvanceTurn(ctx context.Context, playerID string) ([]storage.ActiveEffect, error)
	CouncilRecord(ctx context.Context, councilID string) (storage.CouncilRecord, error)
}

var errCouncilIDRequired = apperrors.New(apperrors.CodeInvalidArgument, "council id is required")

// CouncilConveneTool defines the MCP tool schema for convening a council.
func CouncilConveneTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "council_convene",
		Description: "Convenes the Divine Council to vote on a player action without changing favor",
	}
}

// CouncilApplyTool defines the MCP tool schema for applying consequences.
func CouncilApplyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "council_apply",
		Description: "Applies the favor changes and effects of a convened council exactly once",
	}
}

// CouncilVotersTool defines the MCP tool schema for the voter registry.
func CouncilVotersTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "council_voters",
		Description: "Lists the seven gods, their values and the context flag rules",
	}
}

// FavorGetTool defines the MCP tool schema for reading favor.
func FavorGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "divine_favor_get",
		Description: "Returns a player's favor with every god",
	}
}

// FavorHistoryTool defines the MCP tool schema for favor history.
func FavorHistoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "divine_favor_history",
		Description: "Lists a player's favor changes, newest first",
	}
}

// EffectsListTool defines the MCP tool schema for active effects.
func EffectsListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "divine_effects_list",
		Description: "Lists a player's active divine effects",
	}
}

// AdvanceTurnTool defines the MCP tool schema for advancing a turn.
func AdvanceTurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "divine_effects_advance_turn",
		Description: "Spends one turn of every active effect and reports what expired",
	}
}

// CouncilConveneHandler convenes a council and holds it for council_apply.
func CouncilConveneHandler(svc CouncilService, pending *Pending) mcp.ToolHandlerFor[CouncilConveneInput, CouncilResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CouncilConveneInput) (*mcp.CallToolResult, CouncilResult, error) {
		c, err := svc.Convene(ctx, council.Request{
			PlayerID: input.PlayerID,
			GameID:   input.GameID,
			Turn:     input.Turn,
			Action:   input.Action,
			Context:  input.Context.toDomain(),
		})
		if err != nil {
			return nil, CouncilResult{}, fmt.Errorf("convene council failed: %w", err)
		}
		pending.Put(c)
		return &mcp.CallToolResult{}, NewCouncilResult(c), nil
	}
}

// CouncilApplyHandler applies a pending council keyed by its id.
func CouncilApplyHandler(svc CouncilService, pending *Pending) mcp.ToolHandlerFor[CouncilApplyInput, CouncilApplyResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CouncilApplyInput) (*mcp.CallToolResult, CouncilApplyResult, error) {
		councilID := strings.TrimSpace(input.CouncilID)
		if councilID == "" {
			return nil, CouncilApplyResult{}, errCouncilIDRequired
		}

		c, ok := pending.Get(councilID)
		if !ok {
			return nil, CouncilApplyResult{}, missingCouncilError(ctx, svc, councilID)
		}

		applied, err := svc.ApplyConsequences(ctx, app.ApplyRequest{Council: c, IdempotencyKey: councilID})
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeCouncilAlreadyApplied) {
				pending.Remove(councilID)
			}
			return nil, CouncilApplyResult{}, fmt.Errorf("apply council failed: %w", err)
		}
		pending.Remove(councilID)
		return &mcp.CallToolResult{}, NewApplyResult(applied), nil
	}
}

// missingCouncilError tells an already-applied council apart from one that
// was never convened here or was evicted.
func missingCouncilError(ctx context.Context, svc CouncilService, councilID string) error {
	meta := map[string]string{"council_id": councilID}
	_, err := svc.CouncilRecord(ctx, councilID)
	switch {
	case err == nil:
		return apperrors.WithMetadata(apperrors.CodeCouncilAlreadyApplied, "council already applied", meta)
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.WithMetadata(apperrors.CodeCouncilNotPending, "council is not pending", meta)
	default:
		return fmt.Errorf("lookup council record: %w", err)
	}
}

// CouncilVotersHandler lists the static council registry.
func CouncilVotersHandler() mcp.ToolHandlerFor[CouncilVotersInput, CouncilVotersResult] {
	return func(context.Context, *mcp.CallToolRequest, CouncilVotersInput) (*mcp.CallToolResult, CouncilVotersResult, error) {
		return &mcp.CallToolResult{}, NewVotersResult(), nil
	}
}

// FavorGetHandler reads a player's favor.
func FavorGetHandler(svc CouncilService) mcp.ToolHandlerFor[PlayerInput, FavorGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlayerInput) (*mcp.CallToolResult, FavorGetResult, error) {
		favor, err := svc.Favor(ctx, input.PlayerID)
		if err != nil {
			return nil, FavorGetResult{}, fmt.Errorf("get favor failed: %w", err)
		}
		return &mcp.CallToolResult{}, FavorGetResult{PlayerID: input.PlayerID, Favor: FavorMap(favor)}, nil
	}
}

// FavorHistoryHandler lists a player's favor history.
func FavorHistoryHandler(svc CouncilService) mcp.ToolHandlerFor[FavorHistoryInput, FavorHistoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input FavorHistoryInput) (*mcp.CallToolResult, FavorHistoryResult, error) {
		entries, err := svc.FavorHistory(ctx, input.PlayerID, input.Limit)
		if err != nil {
			return nil, FavorHistoryResult{}, fmt.Errorf("list favor history failed: %w", err)
		}
		return &mcp.CallToolResult{}, NewFavorHistoryResult(input.PlayerID, entries), nil
	}
}

// EffectsListHandler lists a player's active effects.
func EffectsListHandler(svc CouncilService) mcp.ToolHandlerFor[PlayerInput, EffectsListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlayerInput) (*mcp.CallToolResult, EffectsListResult, error) {
		effects, err := svc.ActiveEffects(ctx, input.PlayerID)
		if err != nil {
			return nil, EffectsListResult{}, fmt.Errorf("list effects failed: %w", err)
		}
		return &mcp.CallToolResult{}, EffectsListResult{PlayerID: input.PlayerID, Effects: NewEffectResults(effects)}, nil
	}
}

// AdvanceTurnHandler ticks a player's effects and returns the remainder.
func AdvanceTurnHandler(svc CouncilService) mcp.ToolHandlerFor[PlayerInput, AdvanceTurnResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlayerInput) (*mcp.CallToolResult, AdvanceTurnResult, error) {
		expired, err := svc.AdvanceTurn(ctx, input.PlayerID)
		if err != nil {
			return nil, AdvanceTurnResult{}, fmt.Errorf("advance turn failed: %w", err)
		}
		active, err := svc.ActiveEffects(ctx, input.PlayerID)
		if err != nil {
			return nil, AdvanceTurnResult{}, fmt.Errorf("list effects failed: %w", err)
		}
		return &mcp.CallToolResult{}, AdvanceTurnResult{
			PlayerID: input.PlayerID,
			Expired:  NewEffectResults(expired),
			Active:   NewEffectResults(active),
		}, nil
	}
}
