package random

import "math/rand"

// Random provides random number generation that can be mocked for testing.
// Ball resets are the only place randomness enters the simulation, so tests
// substitute a deterministic source and assert exact post-reset velocities.
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Float64 returns a random float64 in [0, 1)
	Float64() float64
}

// MathRandom implements Random using math/rand
type MathRandom struct{}

// New creates a new MathRandom
func New() *MathRandom {
	return &MathRandom{}
}

// Intn returns a random int in [0, n)
func (r *MathRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.Intn(n)
}

// Float64 returns a random float64 in [0, 1)
func (r *MathRandom) Float64() float64 {
	return rand.Float64()
}
