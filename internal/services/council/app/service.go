// Package app hosts the council service: it convenes councils, applies their
// consequences behind an idempotency guard, and serves favor and effect
// queries over the configured store.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/arcane-codex/internal/platform/errors"
	"github.com/louisbranch/arcane-codex/internal/platform/random"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/consequence"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/council"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/verdict"
	"github.com/louisbranch/arcane-codex/internal/services/council/observability/metrics"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage"
)

const tracerName = "github.com/louisbranch/arcane-codex/internal/services/council/app"

// ErrPlayerRequired is returned by queries that name no player.
var ErrPlayerRequired = apperrors.New(apperrors.CodeInvalidArgument, "player id is required")

// Options configures a Service. Zero values pick defaults.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
	// Seed fixes the vote random source; 0 draws a crypto seed.
	Seed int64
}

// Service is safe for concurrent use. Councils for the same player are not
// serialized; callers own per-player ordering.
type Service struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	rngMu sync.Mutex
	rng   *rand.Rand
	seed  int64
}

// NewService builds a Service over store.
func NewService(store storage.Store, opts Options) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("council store is required")
	}
	rng, seed, err := random.NewRand(opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("seed vote rng: %w", err)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Service{
		store:   store,
		logger:  ResolveLogger(opts.Logger),
		metrics: opts.Metrics,
		tracer:  tracer,
		rng:     rng,
		seed:    seed,
	}, nil
}

// Seed reports the seed of the vote random source.
func (s *Service) Seed() int64 {
	return s.seed
}

// Convene runs the read-only voting phase for req.
func (s *Service) Convene(ctx context.Context, req council.Request) (council.Council, error) {
	ctx, span := s.tracer.Start(ctx, "council.convene", trace.WithAttributes(
		attribute.String("player_id", req.PlayerID),
		attribute.String("game_id", req.GameID),
		attribute.Int("turn", req.Turn),
	))
	defer span.End()

	s.rngMu.Lock()
	c, err := council.Convene(ctx, s.store, s.rng, req)
	s.rngMu.Unlock()
	if err != nil {
		recordSpanError(span, err)
		s.logger.Warn("council convene failed",
			"event", "council_convene_failed",
			"module", logModule,
			"player_id", req.PlayerID,
			"error", err.Error(),
		)
		return council.Council{}, err
	}

	outcome := c.Outcome.Outcome.String()
	span.SetAttributes(
		attribute.String("council_id", c.ID),
		attribute.String("outcome", outcome),
		attribute.Float64("weighted_score", c.Outcome.WeightedScore),
	)
	positions := make(map[string]string, len(c.Votes))
	for _, v := range c.Votes {
		positions[string(v.God)] = v.Position.String()
	}
	s.metrics.ObserveConvened(outcome, c.Outcome.WeightedScore, positions)
	s.logger.Info("council convened",
		"event", "council_convened",
		"module", logModule,
		"council_id", c.ID,
		"player_id", c.PlayerID,
		"game_id", c.GameID,
		"outcome", outcome,
		"weighted_score", c.Outcome.WeightedScore,
		"support", c.Outcome.Support,
		"oppose", c.Outcome.Oppose,
		"abstain", c.Outcome.Abstain,
	)
	return c, nil
}

// ApplyRequest asks for a convened council's consequences to be written.
type ApplyRequest struct {
	Council council.Council
	// IdempotencyKey, when set, is recorded before any write; a repeated key
	// is rejected with COUNCIL_ALREADY_APPLIED. Empty means no guard.
	IdempotencyKey string
}

// ApplyResult is what ApplyConsequences wrote.
type ApplyResult struct {
	// Council carries favor_after on every vote.
	Council        council.Council
	FavorChanges   []consequence.AppliedFavor
	AppliedEffects []consequence.AppliedEffect
	ImpactLevel    string
	Rarity         string
}

// ApplyConsequences writes the favor changes and effects of req.Council.
// Collaborator failures abort without rollback.
func (s *Service) ApplyConsequences(ctx context.Context, req ApplyRequest) (ApplyResult, error) {
	c := req.Council
	c.PlayerID = strings.TrimSpace(c.PlayerID)
	outcome := c.Outcome.Outcome
	ctx, span := s.tracer.Start(ctx, "council.apply", trace.WithAttributes(
		attribute.String("council_id", c.ID),
		attribute.String("player_id", c.PlayerID),
		attribute.String("outcome", outcome.String()),
		attribute.Bool("idempotent", req.IdempotencyKey != ""),
	))
	defer span.End()

	if c.PlayerID == "" {
		recordSpanError(span, ErrPlayerRequired)
		return ApplyResult{}, ErrPlayerRequired
	}

	plan, err := consequence.NewPlan(outcome, c.Positions())
	if err != nil {
		err = classifyPlanError(err)
		recordSpanError(span, err)
		return ApplyResult{}, err
	}

	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		if err := s.guard(ctx, key, c, plan); err != nil {
			recordSpanError(span, err)
			return ApplyResult{}, err
		}
	}

	applied, err := consequence.Apply(ctx, s.store, c.PlayerID, c.GameID, plan)
	for _, change := range applied.FavorChanges {
		s.metrics.ObserveFavorDelta(string(change.God), change.Delta)
	}
	if err != nil {
		err = apperrors.Wrap(apperrors.CodeStorageFailure, "apply consequences", err)
		recordSpanError(span, err)
		s.logger.Error("council consequences failed",
			"event", "council_apply_failed",
			"module", logModule,
			"council_id", c.ID,
			"player_id", c.PlayerID,
			"favor_written", len(applied.FavorChanges),
			"effects_written", len(applied.AppliedEffects),
			"error", err.Error(),
		)
		return ApplyResult{}, err
	}

	c.RecordFavorAfter(applied.FavorChanges)
	s.metrics.ObserveApplied(outcome.String())
	s.logger.Info("council consequences applied",
		"event", "council_applied",
		"module", logModule,
		"council_id", c.ID,
		"player_id", c.PlayerID,
		"outcome", outcome.String(),
		"impact", plan.Impact,
		"effects", len(applied.AppliedEffects),
	)
	return ApplyResult{
		Council:        c,
		FavorChanges:   applied.FavorChanges,
		AppliedEffects: applied.AppliedEffects,
		ImpactLevel:    applied.ImpactLevel,
		Rarity:         plan.Rarity,
	}, nil
}

// recordImpact is the impact_json payload of a council record.
type recordImpact struct {
	ImpactLevel  string                    `json:"impact_level"`
	Rarity       string                    `json:"rarity"`
	FavorChanges []consequence.FavorChange `json:"favor_changes"`
	Effects      []consequence.Effect      `json:"effects"`
}

// guard writes the council record keyed by key before any consequence lands.
func (s *Service) guard(ctx context.Context, key string, c council.Council, plan consequence.Plan) error {
	votesJSON, err := json.Marshal(c.Votes)
	if err != nil {
		return fmt.Errorf("encode votes: %w", err)
	}
	testimoniesJSON, err := json.Marshal(c.Testimonies())
	if err != nil {
		return fmt.Errorf("encode testimonies: %w", err)
	}
	impactJSON, err := json.Marshal(recordImpact{
		ImpactLevel:  plan.Impact,
		Rarity:       plan.Rarity,
		FavorChanges: plan.FavorChanges,
		Effects:      plan.Effects,
	})
	if err != nil {
		return fmt.Errorf("encode impact: %w", err)
	}

	err = s.store.PutCouncilRecord(ctx, storage.CouncilRecord{
		ID:              key,
		PlayerID:        c.PlayerID,
		GameID:          c.GameID,
		Turn:            c.Turn,
		Action:          c.Action,
		Outcome:         c.Outcome.Outcome,
		VotesJSON:       votesJSON,
		TestimoniesJSON: testimoniesJSON,
		ImpactJSON:      impactJSON,
		CreatedAt:       time.Now().UTC(),
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		s.metrics.ObserveDuplicateApply()
		s.logger.Warn("council consequences already applied",
			"event", "council_apply_duplicate",
			"module", logModule,
			"council_id", c.ID,
			"idempotency_key", key,
		)
		return apperrors.WithMetadata(apperrors.CodeCouncilAlreadyApplied, "council consequences already applied",
			map[string]string{"idempotency_key": key})
	}
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageFailure, "record council", err)
	}
	return nil
}

func classifyPlanError(err error) error {
	var unknownOutcome *consequence.UnknownOutcomeError
	if errors.As(err, &unknownOutcome) {
		return apperrors.Wrap(apperrors.CodeUnknownOutcome, "council has no outcome tier", err)
	}
	var invalidPosition *verdict.InvalidPositionError
	if errors.As(err, &invalidPosition) {
		return apperrors.WrapWithMetadata(apperrors.CodeInvalidVote, "council carries an invalid vote",
			map[string]string{"god": string(invalidPosition.God)}, err)
	}
	return apperrors.Wrap(apperrors.CodeUnknownVoter, "council names an unknown god", err)
}

// Favor returns the player's favor with every god.
func (s *Service) Favor(ctx context.Context, playerID string) (map[pantheon.GodID]int, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, ErrPlayerRequired
	}
	favor, err := s.store.GetAllFavor(ctx, playerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "get favor", err)
	}
	return favor, nil
}

// FavorHistory returns the player's newest favor changes first.
func (s *Service) FavorHistory(ctx context.Context, playerID string, limit int) ([]storage.FavorHistoryEntry, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, ErrPlayerRequired
	}
	entries, err := s.store.ListFavorHistory(ctx, playerID, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "list favor history", err)
	}
	return entries, nil
}

// ActiveEffects returns the player's effects with turns remaining.
func (s *Service) ActiveEffects(ctx context.Context, playerID string) ([]storage.ActiveEffect, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, ErrPlayerRequired
	}
	effects, err := s.store.ListActiveEffects(ctx, playerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "list effects", err)
	}
	return effects, nil
}

// AdvanceTurn spends one turn of every active effect and returns the expired ones.
func (s *Service) AdvanceTurn(ctx context.Context, playerID string) ([]storage.ActiveEffect, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, ErrPlayerRequired
	}
	expired, err := s.store.TickEffects(ctx, playerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "tick effects", err)
	}
	s.metrics.ObserveExpired(len(expired))
	if len(expired) > 0 {
		s.logger.Info("divine effects expired",
			"event", "council_effects_expired",
			"module", logModule,
			"player_id", playerID,
			"count", len(expired),
		)
	}
	return expired, nil
}

// CouncilRecord loads the record written when a council was applied.
func (s *Service) CouncilRecord(ctx context.Context, councilID string) (storage.CouncilRecord, error) {
	record, err := s.store.GetCouncilRecord(ctx, councilID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storage.CouncilRecord{}, apperrors.Wrap(apperrors.CodeStorageFailure, "get council record", err)
	}
	return record, err
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
}
