package local

import (
	"crypto/rand"
	"fmt"
)

// SeedOracle is a local stand-in for a public randomness beacon: Fresh
// returns 32 bytes of process-local randomness rather than a committed
// blockchain block hash, and Validate accepts any seed of the expected
// length. It exists so tests and the bundled demo can exercise
// subset-selection without a real beacon dependency.
type SeedOracle struct{}

func (SeedOracle) Validate(seed []byte) bool {
	return len(seed) == 32
}

func (SeedOracle) Fresh() ([]byte, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("transport/local: generating seed: %w", err)
	}
	return seed, nil
}
