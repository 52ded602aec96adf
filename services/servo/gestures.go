// services/servo/gestures.go
package servo

import (
	"time"

	"armservo-go/x/timex"
)

// Gestures are blocking compositions of the motion primitives. They run on
// the calling goroutine; the coordinator decides which goroutine that is.

const wavePause = 100 // ms between wave legs

// Wave swings forward and back count times with a short pause between legs.
func (c *Channel) Wave(speed, durationMs, count int) bool {
	if !c.initialized {
		println("[servo]", c.name, "not initialized, ignoring wave")
		return false
	}
	if speed == 0 || durationMs <= 0 || count <= 0 {
		println("[servo]", c.name, "bad wave params:", speed, durationMs, count)
		return false
	}
	for i := 0; i < count; i++ {
		c.RunFor(speed, durationMs)
		sleepSliced(wavePause)
		c.RunFor(-speed, durationMs)
		sleepSliced(wavePause)
	}
	c.Stop()
	return true
}

// RaiseArm lifts for the given duration and stops.
func (c *Channel) RaiseArm(speed, durationMs int) bool {
	return c.RunFor(speed, durationMs)
}

// Salute is a raise with an extra settling stop.
func (c *Channel) Salute(speed, durationMs int) bool {
	if !c.RunFor(speed, durationMs) {
		return false
	}
	c.Stop()
	return true
}

// BackAndForth alternates direction without the stop between legs that Wave
// inserts, so the arm sweeps continuously. Uses SetSpeed directly; the
// deadband applies to each reversal.
func (c *Channel) BackAndForth(speed, durationMs, count int) bool {
	if !c.initialized {
		println("[servo]", c.name, "not initialized, ignoring back_and_forth")
		return false
	}
	if speed == 0 || durationMs <= 0 || count <= 0 {
		println("[servo]", c.name, "bad back_and_forth params:", speed, durationMs, count)
		return false
	}
	d := timex.Ms(durationMs)
	for i := 0; i < count; i++ {
		c.SetSpeed(speed)
		time.Sleep(d)
		c.SetSpeed(-speed)
		time.Sleep(d)
	}
	c.Stop()
	return true
}

// TestDirection runs forward then reverse so the operator can check wiring
// and the reverse flag.
func (c *Channel) TestDirection(speed, durationMs int) bool {
	if !c.RunFor(speed, durationMs) {
		return false
	}
	sleepSliced(wavePause)
	return c.RunFor(-speed, durationMs)
}
