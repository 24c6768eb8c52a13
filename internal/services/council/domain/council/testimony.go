package council

import (
	"fmt"
	"strings"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/ballot"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
)

var verbs = map[ballot.Position]string{
	ballot.Support: "supports",
	ballot.Oppose:  "opposes",
	ballot.Abstain: "abstains",
}

// Testimony narrates why god voted as it did.
func Testimony(god pantheon.God, d ballot.Decision) string {
	var reasons []string
	a := d.Alignment
	if len(a.CoreHits) > 0 {
		reasons = append(reasons, "the deed speaks of "+joinWords(a.CoreHits))
	}
	if len(a.OpposedHits) > 0 {
		reasons = append(reasons, "it reeks of "+joinWords(a.OpposedHits))
	}
	for _, rule := range a.Rules {
		reasons = append(reasons, fmt.Sprintf("it %s (%+d)", strings.ReplaceAll(rule.Flag, "_", " "), rule.Delta))
	}

	switch d.Zone {
	case ballot.ZoneAmbiguous:
		switch d.Position {
		case ballot.Abstain:
			reasons = append(reasons, "the deed stirs neither hope nor wrath")
		default:
			reasons = append(reasons, "past favor tips the scale")
		}
	case ballot.ZoneModerate:
		reasons = append(reasons, "though not without doubt")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "favor alone decides")
	}
	return fmt.Sprintf("%s %s: %s.", god.ID, verbs[d.Position], strings.Join(reasons, "; "))
}

func joinWords(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
	}
}
