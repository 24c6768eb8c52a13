package councilctl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/ballot"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/council"
)

// ActionFile is the YAML document councilctl convene reads.
//
//	player_id: player-1
//	game_id: game-1
//	turn: 4
//	action: I swear an oath to protect the forest
//	context:
//	  involves_oath: true
type ActionFile struct {
	PlayerID string               `yaml:"player_id"`
	GameID   string               `yaml:"game_id"`
	Turn     int                  `yaml:"turn"`
	Action   string               `yaml:"action"`
	Context  ballot.ActionContext `yaml:"context"`
}

// LoadActionFile reads an action file; "-" reads stdin.
func LoadActionFile(path string, stdin io.Reader) (ActionFile, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return ActionFile{}, fmt.Errorf("open action file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return DecodeActionFile(r)
}

// DecodeActionFile parses one action document. Unknown keys are rejected.
func DecodeActionFile(r io.Reader) (ActionFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var af ActionFile
	if err := dec.Decode(&af); err != nil {
		if err == io.EOF {
			return ActionFile{}, fmt.Errorf("action file is empty")
		}
		return ActionFile{}, fmt.Errorf("decode action file: %w", err)
	}
	if strings.TrimSpace(af.PlayerID) == "" {
		return ActionFile{}, fmt.Errorf("action file: player_id is required")
	}
	if strings.TrimSpace(af.Action) == "" {
		return ActionFile{}, fmt.Errorf("action file: action is required")
	}
	return af, nil
}

// Request converts the file into a council request.
func (af ActionFile) Request() council.Request {
	return council.Request{
		PlayerID: af.PlayerID,
		GameID:   af.GameID,
		Turn:     af.Turn,
		Action:   af.Action,
		Context:  af.Context,
	}
}
