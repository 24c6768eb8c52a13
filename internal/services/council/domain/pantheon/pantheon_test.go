package pantheon

import (
	"strings"
	"testing"
)

func TestRegistryHasSevenDistinctGods(t *testing.T) {
	all := All()
	if len(all) != Size {
		t.Fatalf("expected %d gods, got %d", Size, len(all))
	}
	seen := map[GodID]bool{}
	for _, g := range all {
		if seen[g.ID] {
			t.Fatalf("duplicate god %s", g.ID)
		}
		seen[g.ID] = true
		if g.AbstainLikelihood < 0 || g.AbstainLikelihood > 1 {
			t.Fatalf("%s: abstain likelihood %v out of range", g.ID, g.AbstainLikelihood)
		}
		if len(g.CoreValues) == 0 || len(g.OpposedValues) == 0 {
			t.Fatalf("%s: expected both value lists", g.ID)
		}
	}
}

func TestKeywordsAreLowerCase(t *testing.T) {
	for _, g := range All() {
		for _, kw := range append(append([]string{}, g.CoreValues...), g.OpposedValues...) {
			if kw != strings.ToLower(kw) {
				t.Fatalf("%s: keyword %q is not lower-case", g.ID, kw)
			}
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].ID = "MUTATED"
	if All()[0].ID != Valdris {
		t.Fatal("expected registry to be immutable through All")
	}
}

func TestLookupAndIndex(t *testing.T) {
	g, ok := Lookup(Athena)
	if !ok || g.ID != Athena {
		t.Fatalf("expected to find ATHENA, got %+v ok=%v", g, ok)
	}
	if _, ok := Lookup("LOKI"); ok {
		t.Fatal("expected unknown god lookup to fail")
	}
	if Index(Valdris) != 0 || Index(Mercus) != Size-1 {
		t.Fatal("unexpected registry order")
	}
	if GodID("LOKI").Valid() {
		t.Fatal("expected LOKI to be invalid")
	}
}

func TestClampFavor(t *testing.T) {
	tests := []struct{ in, want int }{
		{-250, -100}, {-100, -100}, {0, 0}, {99, 99}, {101, 100},
	}
	for _, tt := range tests {
		if got := ClampFavor(tt.in); got != tt.want {
			t.Fatalf("ClampFavor(%d): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}
