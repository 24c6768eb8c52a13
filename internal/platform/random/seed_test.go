package random

import "testing"

func TestNewRandIsDeterministicForSeed(t *testing.T) {
	first, seed, err := NewRand(42)
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	if seed != 42 {
		t.Fatalf("expected seed 42, got %d", seed)
	}
	second, _, err := NewRand(42)
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	for i := 0; i < 5; i++ {
		a, b := first.Float64(), second.Float64()
		if a != b {
			t.Fatalf("draw %d: expected %v, got %v", i, a, b)
		}
	}
}

func TestNewRandGeneratesSeedWhenZero(t *testing.T) {
	rng, seed, err := NewRand(0)
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	if rng == nil {
		t.Fatal("expected generator")
	}
	if seed == 0 {
		t.Fatal("expected non-zero generated seed")
	}
}
