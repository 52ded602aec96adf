// services/servo/motion_test.go
package servo

import (
	"testing"
	"time"
)

func TestRunForBlocksAndStops(t *testing.T) {
	c, f := newTestChannel(t, nil, false)

	start := time.Now()
	if !c.RunFor(50, 250) {
		t.Fatal("RunFor rejected")
	}
	if elapsed := time.Since(start); elapsed < 250*time.Millisecond {
		t.Errorf("RunFor returned after %v, want >= 250ms", elapsed)
	}

	log := f.log()
	if len(log) != 2 {
		t.Fatalf("pulse log = %v, want run then stop", log)
	}
	if log[0] != 1750 || log[1] != 1500 {
		t.Errorf("pulse log = %v, want [1750 1500]", log)
	}
}

func TestRunForFloorsWeakSpeeds(t *testing.T) {
	cases := []struct {
		speed int
		pulse uint32
	}{
		{2, 1525},  // floored to +5
		{4, 1525},  // floored to +5
		{-3, 1475}, // floored to -5
		{0, 1475},  // zero floors negative
	}
	for _, tc := range cases {
		c, f := newTestChannel(t, nil, false)
		if !c.RunFor(tc.speed, 20) {
			t.Fatalf("RunFor(%d) rejected", tc.speed)
		}
		if got := f.log()[0]; got != tc.pulse {
			t.Errorf("RunFor(%d) first pulse = %d, want %d", tc.speed, got, tc.pulse)
		}
	}
}

func TestRunForRejectsBadDuration(t *testing.T) {
	c, f := newTestChannel(t, nil, false)
	if c.RunFor(50, 0) || c.RunFor(50, -10) {
		t.Fatal("non-positive durations must be rejected")
	}
	if len(f.log()) != 0 {
		t.Fatalf("rejected run wrote pulses: %v", f.log())
	}
}

func TestQuickActionReturnsImmediately(t *testing.T) {
	c, f := newTestChannel(t, nil, false)

	start := time.Now()
	if !c.QuickAction(60, 1000) {
		t.Fatal("QuickAction rejected")
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("QuickAction blocked for %v", elapsed)
	}
	if got := f.last(t); got != 1800 {
		t.Errorf("pulse = %d, want 1800", got)
	}

	// the grace timer stops it regardless of the requested duration
	time.Sleep(200 * time.Millisecond)
	if got := f.last(t); got != 1500 {
		t.Errorf("pulse after grace = %d, want 1500", got)
	}
}

func TestQuickActionRejectsBadDuration(t *testing.T) {
	c, f := newTestChannel(t, nil, false)
	if c.QuickAction(60, 0) || c.QuickAction(60, -5) {
		t.Fatal("non-positive durations must be rejected")
	}
	if len(f.log()) != 0 {
		t.Fatalf("rejected quick action wrote pulses: %v", f.log())
	}
}

func TestQuickActionTimerReuse(t *testing.T) {
	c, f := newTestChannel(t, nil, false)

	c.QuickAction(60, 100)
	time.Sleep(50 * time.Millisecond)
	c.QuickAction(-60, 100) // resets the pending timer

	time.Sleep(200 * time.Millisecond)
	log := f.log()
	if log[len(log)-1] != 1500 {
		t.Fatalf("pulse log = %v, want trailing stop", log)
	}
	// exactly one stop: the first grace window was superseded
	stops := 0
	for _, p := range log {
		if p == 1500 {
			stops++
		}
	}
	if stops != 1 {
		t.Errorf("pulse log = %v, want a single stop", log)
	}
}
