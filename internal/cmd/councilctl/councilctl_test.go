package councilctl

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/arcane-codex/internal/services/council/api/mcptools"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, &out, &errOut)
	return out.String(), err
}

func decodeJSON(t *testing.T, data string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(data), v); err != nil {
		t.Fatalf("decode output %q: %v", data, err)
	}
}

func writeActionFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "action.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write action file: %v", err)
	}
	return path
}

const actionYAML = `player_id: player-1
game_id: game-1
turn: 4
action: I swear an oath to protect the forest
context:
  involves_oath: true
`

func TestVoters(t *testing.T) {
	out, err := execute(t, "voters", "--store", "memory", "-o", "json")
	if err != nil {
		t.Fatalf("voters: %v", err)
	}
	var result mcptools.CouncilVotersResult
	decodeJSON(t, out, &result)
	if len(result.Voters) != pantheon.Size {
		t.Fatalf("expected %d voters, got %d", pantheon.Size, len(result.Voters))
	}
	if len(result.ContextRules) != 7 {
		t.Fatalf("expected 7 context rules, got %d", len(result.ContextRules))
	}
}

func TestExecuteHonorsTelemetryOptOut(t *testing.T) {
	t.Setenv("ARCANE_CODEX_OTEL_ENDPOINT", "http://127.0.0.1:1")
	t.Setenv("ARCANE_CODEX_OTEL_ENABLED", "false")
	out, err := execute(t, "voters", "--store", "memory", "-o", "json")
	if err != nil {
		t.Fatalf("voters: %v", err)
	}
	var result mcptools.CouncilVotersResult
	decodeJSON(t, out, &result)
	if len(result.Voters) != pantheon.Size {
		t.Fatalf("expected %d voters, got %d", pantheon.Size, len(result.Voters))
	}
}

func TestVotersYAML(t *testing.T) {
	out, err := execute(t, "voters", "--store", "memory")
	if err != nil {
		t.Fatalf("voters: %v", err)
	}
	if !strings.Contains(out, "voters:") || !strings.Contains(out, "context_rules:") {
		t.Fatalf("expected yaml keys in output, got %q", out)
	}
	if strings.Contains(out, "{") {
		t.Fatalf("expected block style yaml, got %q", out)
	}
}

func TestConveneApplyAndInspect(t *testing.T) {
	dir := t.TempDir()
	action := writeActionFile(t, dir, actionYAML)
	store := []string{"--store", "sqlite", "--sqlite-path", filepath.Join(dir, "council.db"), "-o", "json"}

	out, err := execute(t, append([]string{"convene", "-f", action, "--apply", "--seed", "5"}, store...)...)
	if err != nil {
		t.Fatalf("convene: %v", err)
	}
	var applied mcptools.CouncilApplyResult
	decodeJSON(t, out, &applied)
	if applied.Council.PlayerID != "player-1" || applied.Council.Turn != 4 {
		t.Fatalf("unexpected council %+v", applied.Council)
	}
	if len(applied.FavorChanges) != pantheon.Size {
		t.Fatalf("expected %d favor changes, got %d", pantheon.Size, len(applied.FavorChanges))
	}

	out, err = execute(t, append([]string{"favor", "--player", "player-1"}, store...)...)
	if err != nil {
		t.Fatalf("favor: %v", err)
	}
	var favor mcptools.FavorGetResult
	decodeJSON(t, out, &favor)
	for _, change := range applied.FavorChanges {
		if favor.Favor[change.God] != change.NewFavor {
			t.Fatalf("expected %s favor %d, got %d", change.God, change.NewFavor, favor.Favor[change.God])
		}
	}

	out, err = execute(t, append([]string{"history", "--player", "player-1", "--limit", "3"}, store...)...)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var history mcptools.FavorHistoryResult
	decodeJSON(t, out, &history)
	if len(history.Entries) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history.Entries))
	}

	out, err = execute(t, append([]string{"effects", "--player", "player-1"}, store...)...)
	if err != nil {
		t.Fatalf("effects: %v", err)
	}
	var effects mcptools.EffectsListResult
	decodeJSON(t, out, &effects)
	if len(effects.Effects) != len(applied.AppliedEffects) {
		t.Fatalf("expected %d effects, got %d", len(applied.AppliedEffects), len(effects.Effects))
	}

	out, err = execute(t, append([]string{"tick", "--player", "player-1"}, store...)...)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	var ticked mcptools.AdvanceTurnResult
	decodeJSON(t, out, &ticked)
	if len(ticked.Expired)+len(ticked.Active) != len(effects.Effects) {
		t.Fatalf("expected every effect to be expired or active, got %+v", ticked)
	}
	for _, e := range ticked.Active {
		if e.Remaining >= e.Duration {
			t.Fatalf("expected effect %s to lose a turn, got %+v", e.Name, e)
		}
	}
}

func TestConveneWithoutApplyLeavesFavor(t *testing.T) {
	dir := t.TempDir()
	action := writeActionFile(t, dir, actionYAML)
	store := []string{"--store", "sqlite", "--sqlite-path", filepath.Join(dir, "council.db"), "-o", "json"}

	out, err := execute(t, append([]string{"convene", "-f", action}, store...)...)
	if err != nil {
		t.Fatalf("convene: %v", err)
	}
	var convened mcptools.CouncilResult
	decodeJSON(t, out, &convened)
	if len(convened.Votes) != pantheon.Size {
		t.Fatalf("expected %d votes, got %d", pantheon.Size, len(convened.Votes))
	}

	out, err = execute(t, append([]string{"favor", "--player", "player-1"}, store...)...)
	if err != nil {
		t.Fatalf("favor: %v", err)
	}
	var favor mcptools.FavorGetResult
	decodeJSON(t, out, &favor)
	for god, v := range favor.Favor {
		if v != 0 {
			t.Fatalf("expected untouched favor for %s, got %d", god, v)
		}
	}
}

func TestConveneReadsStdin(t *testing.T) {
	rootCmd, err := NewRootCommand(&bytes.Buffer{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("new root: %v", err)
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(actionYAML))
	rootCmd.SetArgs([]string{"convene", "-f", "-", "--store", "memory", "-o", "json"})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("convene: %v", err)
	}
}

func TestCommandErrors(t *testing.T) {
	cases := map[string][]string{
		"missing player":   {"favor", "--store", "memory"},
		"missing file":     {"convene", "--store", "memory"},
		"unknown store":    {"favor", "--player", "p", "--store", "redis"},
		"bad output":       {"voters", "--store", "memory", "-o", "xml"},
		"unreadable file":  {"convene", "-f", filepath.Join(t.TempDir(), "missing.yaml"), "--store", "memory"},
		"unexpected arg":   {"voters", "extra"},
		"unknown command":  {"summon"},
		"blank player id":  {"effects", "--player", " ", "--store", "memory"},
		"history no store": {"history", "--player", "p", "--store", "sqlite", "--sqlite-path", ""},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := execute(t, args...); err == nil {
				t.Fatalf("expected error for %v", args)
			}
		})
	}
}

func TestDecodeActionFile(t *testing.T) {
	af, err := DecodeActionFile(strings.NewReader(actionYAML))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	req := af.Request()
	if req.PlayerID != "player-1" || req.GameID != "game-1" || req.Turn != 4 {
		t.Fatalf("unexpected request %+v", req)
	}
	if !req.Context.InvolvesOath || req.Context.BreaksLaw {
		t.Fatalf("unexpected context %+v", req.Context)
	}

	bad := map[string]string{
		"empty":          "",
		"unknown key":    "player_id: p\naction: a\nmood: grim\n",
		"unknown flag":   "player_id: p\naction: a\ncontext:\n  cursed: true\n",
		"missing player": "action: a\n",
		"missing action": "player_id: p\n",
	}
	for name, body := range bad {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeActionFile(strings.NewReader(body)); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
}

func TestRenderJSONAndYAMLAgree(t *testing.T) {
	v := mcptools.FavorGetResult{PlayerID: "p1", Favor: map[string]int{"VALDRIS": 10}}

	var jsonOut bytes.Buffer
	if err := render(&jsonOut, OutputJSON, v); err != nil {
		t.Fatalf("render json: %v", err)
	}
	var decoded mcptools.FavorGetResult
	decodeJSON(t, jsonOut.String(), &decoded)
	if decoded.Favor["VALDRIS"] != 10 {
		t.Fatalf("expected favor 10, got %+v", decoded)
	}

	var yamlOut bytes.Buffer
	if err := render(&yamlOut, OutputYAML, v); err != nil {
		t.Fatalf("render yaml: %v", err)
	}
	if !strings.Contains(yamlOut.String(), "VALDRIS: 10") {
		t.Fatalf("expected favor in yaml, got %q", yamlOut.String())
	}
}
