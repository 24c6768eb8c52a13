package councilctl

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/louisbranch/arcane-codex/internal/services/council/api/mcptools"
	"github.com/louisbranch/arcane-codex/internal/services/council/app"
)

func votersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "voters",
		Short: "List the gods and the context flag rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.render(mcptools.NewVotersResult())
		},
	}
}

func conveneCommand(opts *rootOptions) *cobra.Command {
	var (
		file  string
		apply bool
	)
	cmd := &cobra.Command{
		Use:   "convene -f action.yaml",
		Short: "Convene the council on an action file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			af, err := LoadActionFile(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			svc, closeStore, err := opts.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			c, err := svc.Convene(cmd.Context(), af.Request())
			if err != nil {
				return fmt.Errorf("convene council: %w", err)
			}
			if !apply {
				return opts.render(mcptools.NewCouncilResult(c))
			}
			applied, err := svc.ApplyConsequences(cmd.Context(), app.ApplyRequest{Council: c, IdempotencyKey: c.ID})
			if err != nil {
				return fmt.Errorf("apply council %s: %w", c.ID, err)
			}
			return opts.render(mcptools.NewApplyResult(applied))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "action file, or - for stdin")
	cmd.Flags().BoolVar(&apply, "apply", false, "write favor changes and effects")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func favorCommand(opts *rootOptions) *cobra.Command {
	var player string
	cmd := &cobra.Command{
		Use:   "favor --player ID",
		Short: "Show a player's favor with every god",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := opts.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			favor, err := svc.Favor(cmd.Context(), player)
			if err != nil {
				return err
			}
			return opts.render(mcptools.FavorGetResult{PlayerID: player, Favor: mcptools.FavorMap(favor)})
		},
	}
	playerFlag(cmd, &player)
	return cmd
}

func historyCommand(opts *rootOptions) *cobra.Command {
	var (
		player string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history --player ID",
		Short: "Show a player's favor changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := opts.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := svc.FavorHistory(cmd.Context(), player, limit)
			if err != nil {
				return err
			}
			return opts.render(mcptools.NewFavorHistoryResult(player, entries))
		},
	}
	playerFlag(cmd, &player)
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum entries (default 50)")
	return cmd
}

func effectsCommand(opts *rootOptions) *cobra.Command {
	var player string
	cmd := &cobra.Command{
		Use:   "effects --player ID",
		Short: "List a player's active divine effects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := opts.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			effects, err := svc.ActiveEffects(cmd.Context(), player)
			if err != nil {
				return err
			}
			return opts.render(mcptools.EffectsListResult{PlayerID: player, Effects: mcptools.NewEffectResults(effects)})
		},
	}
	playerFlag(cmd, &player)
	return cmd
}

func tickCommand(opts *rootOptions) *cobra.Command {
	var player string
	cmd := &cobra.Command{
		Use:   "tick --player ID",
		Short: "Advance one turn and expire finished effects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := opts.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			expired, err := svc.AdvanceTurn(cmd.Context(), player)
			if err != nil {
				return err
			}
			active, err := svc.ActiveEffects(cmd.Context(), player)
			if err != nil {
				return err
			}
			return opts.render(mcptools.AdvanceTurnResult{
				PlayerID: player,
				Expired:  mcptools.NewEffectResults(expired),
				Active:   mcptools.NewEffectResults(active),
			})
		},
	}
	playerFlag(cmd, &player)
	return cmd
}

func playerFlag(cmd *cobra.Command, player *string) {
	cmd.Flags().StringVarP(player, "player", "p", "", "player identifier")
	_ = cmd.MarkFlagRequired("player")
}
