// Package display produces cosmetic, presentation-only figures such as the
// "+7 to +9 points" range shown next to a recommendation. Nothing here feeds
// back into score projection.
package display

import (
	"math/rand"
	"sync"
	"time"
)

// Range is an inclusive point range shown to the user.
type Range struct {
	Low  int
	High int
}

// Jitter is an independently seeded random source safe for concurrent use.
type Jitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewJitter returns a Jitter seeded with seed; zero seeds from the clock.
func NewJitter(seed int64) *Jitter {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Jitter{rng: rand.New(rand.NewSource(seed))}
}

// GainRange spreads impact into a small range around it. Non-positive impacts yield {0, 0}.
func (j *Jitter) GainRange(impact int) Range {
	if impact <= 0 {
		return Range{}
	}

	j.mu.Lock()
	below := j.rng.Intn(3)
	above := j.rng.Intn(3)
	j.mu.Unlock()

	return Range{
		Low:  max(1, impact-below),
		High: impact + above,
	}
}
