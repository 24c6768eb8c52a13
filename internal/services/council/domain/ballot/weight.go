package ballot

// Weight multiplier bounds.
const (
	MinMultiplier = 0.5
	MaxMultiplier = 2.0
)

// Multiplier maps favor to vote influence: -100 gives 0.5, 0 gives 1.0,
// +100 gives 2.0. Out-of-range favor is clamped through the multiplier.
func Multiplier(currentFavor int) float64 {
	m := (200 + float64(currentFavor)*2) / 200.0
	if m < MinMultiplier {
		return MinMultiplier
	}
	if m > MaxMultiplier {
		return MaxMultiplier
	}
	return m
}

// Weight scales a discrete vote by the favor multiplier. Abstentions and
// positions other than Support or Oppose weigh 0.
func Weight(currentFavor int, vote Position) float64 {
	if vote != Support && vote != Oppose {
		return 0.0
	}
	return float64(vote) * Multiplier(currentFavor)
}
