// Package pantheon defines the seven gods who sit on the Divine Council.
//
// The registry is static. Aggregate rules elsewhere (unanimity, consequence
// tables) are written against exactly Size gods in registry order.
package pantheon

// GodID identifies one council voter.
type GodID string

const (
	Valdris GodID = "VALDRIS"
	Kaitha  GodID = "KAITHA"
	Morvane GodID = "MORVANE"
	Sylara  GodID = "SYLARA"
	Korvan  GodID = "KORVAN"
	Athena  GodID = "ATHENA"
	Mercus  GodID = "MERCUS"
)

// Size is the number of gods on the council.
const Size = 7

// Favor bounds enforced by the persistence layer.
const (
	MinFavor = -100
	MaxFavor = 100
)

// God is one voter's static value table.
type God struct {
	ID     GodID
	Domain string
	// CoreValues and OpposedValues are lower-case keywords matched as
	// substrings of the action text.
	CoreValues        []string
	OpposedValues     []string
	AbstainLikelihood float64
}

var gods = [Size]God{
	{
		ID:                Valdris,
		Domain:            "Order, law, justice",
		CoreValues:        []string{"law", "order", "justice", "oath", "duty", "honor", "rule"},
		OpposedValues:     []string{"chaos", "steal", "lie", "betray", "rebel", "anarchy"},
		AbstainLikelihood: 0.10,
	},
	{
		ID:                Kaitha,
		Domain:            "Chaos, freedom, change",
		CoreValues:        []string{"freedom", "change", "rebel", "wild", "chaos", "liberate", "trick"},
		OpposedValues:     []string{"law", "order", "cage", "restrict", "obey", "tradition"},
		AbstainLikelihood: 0.30,
	},
	{
		ID:                Morvane,
		Domain:            "Survival, pragmatism",
		CoreValues:        []string{"survive", "pragmatic", "endure", "sacrifice", "protect", "adapt"},
		OpposedValues:     []string{"reckless", "waste", "foolish", "naive"},
		AbstainLikelihood: 0.20,
	},
	{
		ID:                Sylara,
		Domain:            "Nature, balance, life",
		CoreValues:        []string{"nature", "balance", "heal", "grow", "forest", "animal"},
		OpposedValues:     []string{"destroy", "burn", "poison", "pollute", "corrupt"},
		AbstainLikelihood: 0.25,
	},
	{
		ID:                Korvan,
		Domain:            "War, courage, glory",
		CoreValues:        []string{"fight", "battle", "courage", "strength", "duel", "glory"},
		OpposedValues:     []string{"coward", "flee", "surrender", "retreat"},
		AbstainLikelihood: 0.05,
	},
	{
		ID:                Athena,
		Domain:            "Knowledge, wisdom, truth",
		CoreValues:        []string{"learn", "study", "knowledge", "wisdom", "research", "truth"},
		OpposedValues:     []string{"ignorance", "deceive", "censor", "forget"},
		AbstainLikelihood: 0.35,
	},
	{
		ID:                Mercus,
		Domain:            "Commerce, wealth, bargains",
		CoreValues:        []string{"trade", "gold", "profit", "bargain", "deal", "wealth"},
		OpposedValues:     []string{"charity", "squander", "cheat", "default"},
		AbstainLikelihood: 0.15,
	},
}

// All returns the gods in registry order. The slice is a copy.
func All() []God {
	out := make([]God, Size)
	copy(out, gods[:])
	return out
}

// IDs returns the god identifiers in registry order.
func IDs() []GodID {
	ids := make([]GodID, Size)
	for i, g := range gods {
		ids[i] = g.ID
	}
	return ids
}

// Lookup returns the god with the given id.
func Lookup(id GodID) (God, bool) {
	for _, g := range gods {
		if g.ID == id {
			return g, true
		}
	}
	return God{}, false
}

// Index returns the registry position of id, or -1.
func Index(id GodID) int {
	for i, g := range gods {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// Valid reports whether id names a council god.
func (id GodID) Valid() bool {
	return Index(id) >= 0
}

// ClampFavor bounds a favor value to [MinFavor, MaxFavor].
func ClampFavor(value int) int {
	if value < MinFavor {
		return MinFavor
	}
	if value > MaxFavor {
		return MaxFavor
	}
	return value
}
