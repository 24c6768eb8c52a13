// Package ballot turns one god's reading of an action into a weighted vote.
//
// It holds the three per-voter steps of a convening: the alignment scorer
// (keyword and context-flag matching), the vote decision (alignment plus favor
// lean, with a seeded abstention draw in the ambiguous zone), and the favor
// weight multiplier. Everything here is pure apart from the injected RNG.
package ballot
