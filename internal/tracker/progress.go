package tracker

import (
	"math"
	"sync"
)

// Progress is the rounded percentage of completed habits, 0 for none.
func Progress(habits []Habit) int {
	if len(habits) == 0 {
		return 0
	}
	done := 0
	for _, h := range habits {
		if h.Completed {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(habits))))
}

// Celebration fires once each time progress reaches 100 from below.
type Celebration struct {
	mu   sync.Mutex
	last int
	fire func()
}

// NewCelebration calls fire on every rising edge to 100%.
func NewCelebration(fire func()) *Celebration {
	return &Celebration{fire: fire}
}

// Observe records the collection's progress and reports whether it fired.
func (c *Celebration) Observe(habits []Habit) bool {
	p := Progress(habits)

	c.mu.Lock()
	prev := c.last
	c.last = p
	c.mu.Unlock()

	if prev < 100 && p == 100 && len(habits) > 0 {
		if c.fire != nil {
			c.fire()
		}
		return true
	}
	return false
}

func (c *Celebration) reset() {
	c.mu.Lock()
	c.last = 0
	c.mu.Unlock()
}
