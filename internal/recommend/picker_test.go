// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package recommend

import "testing"

func TestRandomPicker_StaysInRange(t *testing.T) {
	p := NewRandomPicker(42)
	for i := 0; i < 1000; i++ {
		got := p.Pick(7)
		if got < 0 || got >= 7 {
			t.Fatalf("Pick(7) = %d, out of range", got)
		}
	}
}

func TestRandomPicker_SingleElement(t *testing.T) {
	p := NewRandomPicker(42)
	if got := p.Pick(1); got != 0 {
		t.Errorf("Pick(1) = %d, want 0", got)
	}
}

func TestRandomPicker_SameSeedSameSequence(t *testing.T) {
	a := NewRandomPicker(7)
	b := NewRandomPicker(7)
	for i := 0; i < 100; i++ {
		if x, y := a.Pick(10), b.Pick(10); x != y {
			t.Fatalf("sequence diverged at %d: %d != %d", i, x, y)
		}
	}
}

func TestFirstPicker(t *testing.T) {
	var p FirstPicker
	for _, n := range []int{1, 2, 50} {
		if got := p.Pick(n); got != 0 {
			t.Errorf("Pick(%d) = %d, want 0", n, got)
		}
	}
}
