package game

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the single random source behind winner and face selection.
type Source interface {
	// IntN returns a uniform value in [0, n). n must be > 0.
	IntN(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a seeded Source safe for concurrent use.
// A zero seed is replaced by the current time.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
