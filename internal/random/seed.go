// Package random provides seeds for the pseudo-random generators used by
// computer players.
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

// New returns a generator seeded by NewSeed.
func New() (*rand.Rand, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}
