package idgen

import (
	"sync"
	"time"
)

// MillisGenerator issues ids from the wall clock in milliseconds. Two ids
// requested in the same millisecond, or after the clock stepped back, are
// bumped past the previous one so ids stay strictly increasing.
type MillisGenerator struct {
	mu   sync.Mutex
	last int64
}

// NewMillisGenerator creates a new MillisGenerator.
func NewMillisGenerator() *MillisGenerator {
	return &MillisGenerator{}
}

// Generate returns the next id for a record created at now.
func (g *MillisGenerator) Generate(now time.Time) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := now.UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Seed raises the floor so later ids exceed maxID.
func (g *MillisGenerator) Seed(maxID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if maxID > g.last {
		g.last = maxID
	}
}
