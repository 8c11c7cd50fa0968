package generation

import (
	"math/rand"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"dungeon-spawn/errors"
)

// SeededRoller is a deterministic dice.Roller. Each generation owns one, so
// floors built from the same seed are identical and generators running in
// parallel never share random state.
type SeededRoller struct {
	rng *rand.Rand
}

// NewSeededRoller creates a roller seeded with seed
func NewSeededRoller(seed int64) *SeededRoller {
	return &SeededRoller{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a value in [1, size]
func (r *SeededRoller) Roll(size int) (int, error) {
	if size <= 0 {
		return 0, errors.InvalidArgumentf("die size must be positive, got %d", size)
	}
	return r.rng.Intn(size) + 1, nil
}

// RollN rolls count dice of the given size
func (r *SeededRoller) RollN(count, size int) ([]int, error) {
	if count < 0 {
		return nil, errors.InvalidArgumentf("dice count must not be negative, got %d", count)
	}
	results := make([]int, count)
	for i := range results {
		v, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

// Intn draws a zero-based index in [0, n) from any roller
func Intn(roller dice.Roller, n int) (int, error) {
	v, err := roller.Roll(n)
	if err != nil {
		return 0, err
	}
	return v - 1, nil
}
