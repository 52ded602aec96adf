// services/servo/coordinator_test.go
package servo

import (
	"testing"
	"time"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *fakePWM, *fakePWM) {
	t.Helper()
	ff := newFakeFactory()
	left := NewChannel("left", 16, ff, nil, false)
	right := NewChannel("right", 17, ff, nil, false)
	if err := left.Configure(); err != nil {
		t.Fatalf("configure left: %v", err)
	}
	if err := right.Configure(); err != nil {
		t.Fatalf("configure right: %v", err)
	}
	lf, rf := ff.get(16), ff.get(17)
	for _, f := range []*fakePWM{lf, rf} {
		f.mu.Lock()
		f.pulses = nil
		f.mu.Unlock()
	}
	return NewCoordinator(left, right), lf, rf
}

func TestNormalizeTarget(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"left", TargetLeft, true},
		{"LEFT", TargetLeft, true},
		{"left_arm", TargetLeft, true},
		{"left_hand", TargetLeft, true},
		{"right", TargetRight, true},
		{"right_arm", TargetRight, true},
		{"arm", TargetBoth, true},
		{"hand", TargetBoth, true},
		{"both", TargetBoth, true},
		{"both_arms", TargetBoth, true},
		{"both_hands", TargetBoth, true},
		{"foo", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeTarget(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("NormalizeTarget(%q) = (%q,%v), want (%q,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDispatchInvalidTarget(t *testing.T) {
	co, lf, rf := newTestCoordinator(t)
	if co.Dispatch("foo", OpSet, Params{Speed: 50}) {
		t.Fatal("invalid target must be rejected")
	}
	if len(lf.log())+len(rf.log()) != 0 {
		t.Fatal("rejected dispatch reached hardware")
	}
}

func TestDispatchValidatesBeforeMotion(t *testing.T) {
	co, lf, rf := newTestCoordinator(t)
	if co.Dispatch("left", OpWave, Params{Speed: 80, DurationMs: 100, Count: 0}) {
		t.Fatal("zero count must be rejected")
	}
	if co.Dispatch("left", OpCalibratePulse, Params{PulseUs: 900}) {
		t.Fatal("pulse outside 1000..2000 must be rejected")
	}
	if co.Dispatch("left", "no_such_op", Params{}) {
		t.Fatal("unknown op must be rejected")
	}
	if co.Dispatch("left", OpBackAndForth, Params{Speed: 0, DurationMs: 100, Count: 2}) {
		t.Fatal("zero-speed back_and_forth must be rejected")
	}
	if co.Dispatch("both", OpMirror, Params{Speed: 0, DurationMs: 100, Count: 2}) {
		t.Fatal("zero-speed mirror must be rejected")
	}
	if len(lf.log())+len(rf.log()) != 0 {
		t.Fatal("rejected dispatch reached hardware")
	}
}

func TestDispatchSingleTargetBlocks(t *testing.T) {
	co, lf, _ := newTestCoordinator(t)

	start := time.Now()
	if !co.Dispatch("left", OpRaise, Params{Speed: 50, DurationMs: 200}) {
		t.Fatal("dispatch rejected")
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("single-target dispatch returned after %v, want >= 200ms", elapsed)
	}
	if got := lf.last(t); got != 1500 {
		t.Errorf("last pulse = %d, want stop", got)
	}
}

func TestDispatchBothRunsConcurrently(t *testing.T) {
	co, lf, rf := newTestCoordinator(t)

	start := time.Now()
	if !co.Dispatch("both", OpRaise, Params{Speed: 50, DurationMs: 300}) {
		t.Fatal("dispatch rejected")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("both dispatch blocked for %v, want immediate return", elapsed)
	}

	// both motions run in parallel: after one leg's worth of time plus
	// slack, both channels are back at stop
	time.Sleep(500 * time.Millisecond)
	if got := lf.last(t); got != 1500 {
		t.Errorf("left last pulse = %d, want 1500", got)
	}
	if got := rf.last(t); got != 1500 {
		t.Errorf("right last pulse = %d, want 1500", got)
	}
}

func TestMirrorOpposedDirections(t *testing.T) {
	co, lf, rf := newTestCoordinator(t)

	if !co.Dispatch("both", OpMirror, Params{Speed: 50, DurationMs: 20, Count: 1}) {
		t.Fatal("mirror rejected")
	}
	time.Sleep(200 * time.Millisecond)

	llog, rlog := lf.log(), rf.log()
	if len(llog) == 0 || len(rlog) == 0 {
		t.Fatal("mirror wrote no pulses")
	}
	if llog[0] != 1750 {
		t.Errorf("left first pulse = %d, want 1750", llog[0])
	}
	if rlog[0] != 1250 {
		t.Errorf("right first pulse = %d, want 1250", rlog[0])
	}
}

func TestAlternateBlocksAndStopsAll(t *testing.T) {
	co, lf, rf := newTestCoordinator(t)

	start := time.Now()
	if !co.Dispatch("both", OpAlternate, Params{Speed: 50, DurationMs: 50, Count: 1}) {
		t.Fatal("alternate rejected")
	}
	// two channels, one round, 50ms each plus pauses
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("alternate returned after %v, want blocking run", elapsed)
	}
	if got := lf.last(t); got != 1500 {
		t.Errorf("left last pulse = %d, want 1500", got)
	}
	if got := rf.last(t); got != 1500 {
		t.Errorf("right last pulse = %d, want 1500", got)
	}
}

func TestComboRaiseWave(t *testing.T) {
	co, lf, rf := newTestCoordinator(t)

	start := time.Now()
	if !co.Dispatch("both", OpCombo, Params{Speed: 50, DurationMs: 100}) {
		t.Fatal("combo rejected")
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("combo blocked for %v, want immediate return", elapsed)
	}

	// left raises once; right waves two half-duration cycles
	time.Sleep(800 * time.Millisecond)
	llog, rlog := lf.log(), rf.log()
	if len(llog) != 2 || llog[0] != 1750 || llog[1] != 1500 {
		t.Errorf("left pulse log = %v, want raise then stop", llog)
	}
	if len(rlog) != 8 {
		t.Errorf("right pulse log = %v, want two wave cycles", rlog)
	}
	if len(rlog) >= 3 && rlog[2] != 1250 {
		t.Errorf("right pulse log = %v, want a reverse leg", rlog)
	}
}

func TestComboWaveRaiseSwapsArms(t *testing.T) {
	co, lf, rf := newTestCoordinator(t)

	if !co.Dispatch("both", OpCombo, Params{Speed: 50, DurationMs: 100, Action: "wave_raise"}) {
		t.Fatal("combo rejected")
	}
	time.Sleep(800 * time.Millisecond)
	if llog := lf.log(); len(llog) != 8 {
		t.Errorf("left pulse log = %v, want two wave cycles", llog)
	}
	if rlog := rf.log(); len(rlog) != 2 {
		t.Errorf("right pulse log = %v, want raise then stop", rlog)
	}
}

func TestComboValidation(t *testing.T) {
	co, lf, rf := newTestCoordinator(t)

	if co.Dispatch("both", OpCombo, Params{Speed: 0, DurationMs: 100}) {
		t.Fatal("zero-speed combo must be rejected")
	}
	if co.Dispatch("both", OpCombo, Params{Speed: 50, DurationMs: 100, Action: "cartwheel"}) {
		t.Fatal("unknown combo action must be rejected")
	}
	if len(lf.log())+len(rf.log()) != 0 {
		t.Fatal("rejected combo reached hardware")
	}

	ff := newFakeFactory()
	left := NewChannel("left", 16, ff, nil, false)
	if err := left.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	single := NewCoordinator(left, nil)
	if single.Dispatch("both", OpCombo, Params{Speed: 50, DurationMs: 100}) {
		t.Fatal("combo with one channel must be rejected")
	}
}

func TestDispatchMissingChannel(t *testing.T) {
	ff := newFakeFactory()
	left := NewChannel("left", 16, ff, nil, false)
	if err := left.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	co := NewCoordinator(left, nil)

	if co.Dispatch("right", OpSet, Params{Speed: 50}) {
		t.Fatal("dispatch to a missing channel must fail")
	}
	if !co.Dispatch("both", OpSet, Params{Speed: 50}) {
		t.Fatal("both with one channel present should still launch")
	}
}
