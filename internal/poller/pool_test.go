package poller

import (
	"testing"
	"time"
)

// TestHillClimb_scenario6 is spec's literal scenario 6: current pool size
// 10, cycle A took 4.0s, cycle B at size 11 took 3.6s; the next cycle
// must attempt pool size 12.
func TestHillClimb_scenario6(t *testing.T) {
	h := &HillClimb{Size: 10, direction: 1}

	next := h.Next(4*time.Second, 20)
	if next != 11 {
		t.Fatalf("after cycle A: size = %d, want 11", next)
	}

	next = h.Next(3600*time.Millisecond, 20)
	if next != 12 {
		t.Fatalf("after cycle B: size = %d, want 12", next)
	}
}

func TestHillClimb_reversesDirectionOnRegression(t *testing.T) {
	h := &HillClimb{Size: 10, direction: 1}

	h.Next(4*time.Second, 20) // -> 11, baseline ratio recorded
	h.Next(5*time.Second, 20) // worse -> reverse direction, -> 10

	if h.direction != -1 {
		t.Errorf("direction = %d, want -1 after regression", h.direction)
	}
}

func TestHillClimb_firstCycleAlwaysIncrements(t *testing.T) {
	h := NewHillClimb(5)
	next := h.Next(10*time.Second, 5)
	if next != 6 {
		t.Errorf("first cycle size = %d, want 6", next)
	}
}

func TestHillClimb_boundsClampedLow(t *testing.T) {
	h := &HillClimb{Size: 1, direction: -1, hasPrev: true, lastRatio: 1.0}
	next := h.Next(2*time.Second, 1) // worse ratio reverses direction to +1, so Size moves from 1 to 2
	if next < minPoolSize {
		t.Errorf("size = %d, want >= %d", next, minPoolSize)
	}
}

func TestNewHillClimb_clampsSeed(t *testing.T) {
	if h := NewHillClimb(0); h.Size != minPoolSize {
		t.Errorf("seed 0 -> Size %d, want %d", h.Size, minPoolSize)
	}
	if h := NewHillClimb(500); h.Size != maxPoolSize {
		t.Errorf("seed 500 -> Size %d, want %d", h.Size, maxPoolSize)
	}
}
