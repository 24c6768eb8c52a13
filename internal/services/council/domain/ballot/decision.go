package ballot

import (
	"math/rand"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
)

// Position is a god's discrete vote.
type Position int

const (
	Oppose  Position = -1
	Abstain Position = 0
	Support Position = 1
)

// Valid reports whether p is one of Support, Abstain or Oppose.
func (p Position) Valid() bool {
	return p == Support || p == Abstain || p == Oppose
}

// String returns the lower-case label used in records and narration.
func (p Position) String() string {
	switch p {
	case Support:
		return "support"
	case Oppose:
		return "oppose"
	case Abstain:
		return "abstain"
	default:
		return "unknown"
	}
}

// Decision thresholds on tendency.
const (
	FavorLean          = 0.3
	DecisiveThreshold  = 30.0
	AmbiguousThreshold = 10.0
)

// Zone names the branch of the decision table that produced a vote.
type Zone string

const (
	ZoneDecisive  Zone = "decisive"
	ZoneAmbiguous Zone = "ambiguous"
	ZoneModerate  Zone = "moderate"
)

// Decision is a god's vote together with the inputs that produced it.
type Decision struct {
	Position  Position
	Alignment Alignment
	Tendency  float64
	Zone      Zone
}

// Judge runs the full decision table for one god. rng is consulted only in
// the ambiguous zone and must not be nil.
func Judge(rng *rand.Rand, god pantheon.God, action string, actx ActionContext, currentFavor int) Decision {
	alignment := Explain(god, action, actx)
	tendency := float64(alignment.Score) + float64(currentFavor)*FavorLean

	d := Decision{Alignment: alignment, Tendency: tendency}
	switch {
	case tendency >= DecisiveThreshold:
		d.Position, d.Zone = Support, ZoneDecisive
	case tendency <= -DecisiveThreshold:
		d.Position, d.Zone = Oppose, ZoneDecisive
	case tendency >= -AmbiguousThreshold && tendency <= AmbiguousThreshold:
		d.Zone = ZoneAmbiguous
		if rng.Float64() < god.AbstainLikelihood {
			d.Position = Abstain
		} else if currentFavor > 0 {
			d.Position = Support
		} else {
			// Zero favor leans against the action.
			d.Position = Oppose
		}
	default:
		d.Zone = ZoneModerate
		if tendency > 0 {
			d.Position = Support
		} else {
			d.Position = Oppose
		}
	}
	return d
}

// Decide returns only the discrete vote of Judge.
func Decide(rng *rand.Rand, god pantheon.God, action string, actx ActionContext, currentFavor int) Position {
	return Judge(rng, god, action, actx, currentFavor).Position
}
