// Package random provides seed helpers for the council's injected RNG.
//
// Council convenings draw from an explicit *rand.Rand so tests and replays can
// pin the abstention branch; production seeds come from crypto/rand.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a generator seeded with seed, or with a fresh crypto seed
// when seed is zero. The seed actually used is returned for logging.
func NewRand(seed int64) (*rand.Rand, int64, error) {
	if seed == 0 {
		fresh, err := NewSeed()
		if err != nil {
			return nil, 0, err
		}
		seed = fresh
	}
	return rand.New(rand.NewSource(seed)), seed, nil
}
