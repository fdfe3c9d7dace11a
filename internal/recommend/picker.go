// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package recommend

import (
	"math/rand"
	"sync"
)

// Picker selects one index from a candidate pool. The ranking step is
// deterministic; the pick is the only randomness in the engine, isolated
// here so tests can pin it.
type Picker interface {
	Pick(n int) int
}

// RandomPicker picks uniformly at random. The mutex makes it safe for
// concurrent requests; rand.Rand itself is not.
type RandomPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPicker creates a picker seeded from seed. Pass a varying seed
// in production; a fixed seed pins the sequence for tests.
func NewRandomPicker(seed int64) *RandomPicker {
	return &RandomPicker{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPicker) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}

// FirstPicker always picks the head of the pool. Used by tests that need
// a fully deterministic engine.
type FirstPicker struct{}

func (FirstPicker) Pick(int) int { return 0 }
