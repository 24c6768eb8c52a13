package verdict

import (
	"fmt"
	"math"
	"sort"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/ballot"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
)

// Weighted score thresholds. Lower bounds are inclusive for support tiers
// and exclusive for the deadlock and narrow opposition tiers.
const (
	StrongThreshold = 5.0
	NarrowThreshold = 2.0
)

// SwingFavor is the minimum |favor| for an abstaining god to count as a swing.
const SwingFavor = 50

// DecisiveCount is how many gods are reported as decisive.
const DecisiveCount = 2

// VoteOutcome is the aggregate result of one convening.
type VoteOutcome struct {
	Support       int
	Oppose        int
	Abstain       int
	WeightedScore float64
	Outcome       Outcome
	Margin        float64
	DecisiveGods  []pantheon.GodID
	SwingGods     []pantheon.GodID
}

// UnknownVoterError reports a vote or favor entry for a god outside the registry.
type UnknownVoterError struct {
	God pantheon.GodID
}

func (e *UnknownVoterError) Error() string {
	return fmt.Sprintf("unknown voter %q", string(e.God))
}

// InvalidPositionError reports a vote that is not support, abstain or oppose.
type InvalidPositionError struct {
	God      pantheon.GodID
	Position ballot.Position
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid vote %d from %s", int(e.Position), string(e.God))
}

// ValidateVotes rejects gods outside the registry and positions outside
// {-1, 0, 1}.
func ValidateVotes(votes map[pantheon.GodID]ballot.Position) error {
	for god, p := range votes {
		if !god.Valid() {
			return &UnknownVoterError{God: god}
		}
		if !p.Valid() {
			return &InvalidPositionError{God: god, Position: p}
		}
	}
	return nil
}

// Classify tallies votes, sums their favor weights and assigns a tier.
// Gods missing from votes are treated as abstaining; missing favor reads as 0.
func Classify(votes map[pantheon.GodID]ballot.Position, favor map[pantheon.GodID]int) (VoteOutcome, error) {
	if err := ValidateVotes(votes); err != nil {
		return VoteOutcome{}, err
	}
	for god := range favor {
		if !god.Valid() {
			return VoteOutcome{}, &UnknownVoterError{God: god}
		}
	}

	var result VoteOutcome
	weights := make(map[pantheon.GodID]float64, pantheon.Size)
	for _, god := range pantheon.IDs() {
		vote := votes[god]
		switch vote {
		case ballot.Support:
			result.Support++
		case ballot.Oppose:
			result.Oppose++
		default:
			result.Abstain++
		}
		w := ballot.Weight(favor[god], vote)
		weights[god] = w
		result.WeightedScore += w
	}

	result.Outcome = Tier(result.Support, result.Oppose, result.WeightedScore)
	result.Margin = math.Abs(result.WeightedScore)
	result.DecisiveGods = DecisiveGods(weights)
	result.SwingGods = SwingGods(votes, favor)
	return result, nil
}

// Tier applies the classification order: raw unanimity first, then the
// weighted thresholds.
func Tier(support, oppose int, weightedScore float64) Outcome {
	switch {
	case support == pantheon.Size:
		return UnanimousBlessing
	case oppose == pantheon.Size:
		return UnanimousCurse
	case weightedScore >= StrongThreshold:
		return StrongSupport
	case weightedScore >= NarrowThreshold:
		return NarrowSupport
	case weightedScore > -NarrowThreshold:
		return Deadlock
	case weightedScore > -StrongThreshold:
		return NarrowOpposition
	default:
		return StrongOpposition
	}
}

// DecisiveGods returns the two gods with the largest |weight|, largest first.
// Ties keep registry order. Gods absent from weights count as 0.
func DecisiveGods(weights map[pantheon.GodID]float64) []pantheon.GodID {
	ranked := pantheon.IDs()
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(weights[ranked[i]]) > math.Abs(weights[ranked[j]])
	})
	return ranked[:DecisiveCount]
}

// SwingGods returns, in registry order, the gods who abstained while
// holding |favor| >= SwingFavor.
func SwingGods(votes map[pantheon.GodID]ballot.Position, favor map[pantheon.GodID]int) []pantheon.GodID {
	var swing []pantheon.GodID
	for _, god := range pantheon.IDs() {
		if votes[god] != ballot.Abstain {
			continue
		}
		f := favor[god]
		if f >= SwingFavor || f <= -SwingFavor {
			swing = append(swing, god)
		}
	}
	return swing
}
