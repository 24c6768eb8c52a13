// Package verdict aggregates the seven votes into a council outcome tier.
package verdict

import "fmt"

// Outcome is the closed set of council outcome tiers.
type Outcome int

const (
	OutcomeUnspecified Outcome = iota
	UnanimousBlessing
	StrongSupport
	NarrowSupport
	Deadlock
	NarrowOpposition
	StrongOpposition
	UnanimousCurse
)

var outcomeNames = map[Outcome]string{
	UnanimousBlessing: "UNANIMOUS_BLESSING",
	StrongSupport:     "STRONG_SUPPORT",
	NarrowSupport:     "NARROW_SUPPORT",
	Deadlock:          "DEADLOCK",
	NarrowOpposition:  "NARROW_OPPOSITION",
	StrongOpposition:  "STRONG_OPPOSITION",
	UnanimousCurse:    "UNANIMOUS_CURSE",
}

// Outcomes returns every tier from most to least favorable.
func Outcomes() []Outcome {
	return []Outcome{
		UnanimousBlessing, StrongSupport, NarrowSupport, Deadlock,
		NarrowOpposition, StrongOpposition, UnanimousCurse,
	}
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "OUTCOME_UNSPECIFIED"
}

// Valid reports whether o is one of the seven tiers.
func (o Outcome) Valid() bool {
	_, ok := outcomeNames[o]
	return ok
}

// ParseOutcome maps a stored tier name back to its Outcome.
func ParseOutcome(name string) (Outcome, error) {
	for o, n := range outcomeNames {
		if n == name {
			return o, nil
		}
	}
	return OutcomeUnspecified, fmt.Errorf("unknown outcome %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("unknown outcome %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
