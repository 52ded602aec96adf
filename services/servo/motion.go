// services/servo/motion.go
package servo

import (
	"time"

	"armservo-go/x/mathx"
	"armservo-go/x/timex"
)

// Speeds below this are too weak to move the arm reliably; RunFor floors
// them to the minimum effective magnitude.
const minEffectiveSpeed = 5

// RunFor drives at the given speed for durationMs and then stops. It blocks
// the caller for the whole duration, sleeping in 100 ms slices, and always
// ends with a stop even if the set was rejected.
func (c *Channel) RunFor(speed, durationMs int) bool {
	if !c.initialized {
		println("[servo]", c.name, "not initialized, ignoring run")
		return false
	}
	if durationMs <= 0 {
		println("[servo]", c.name, "run duration must be positive:", durationMs)
		return false
	}
	speed = mathx.Clamp(speed, -100, 100)
	if mathx.Abs(speed) < minEffectiveSpeed {
		if speed > 0 {
			speed = minEffectiveSpeed
		} else {
			speed = -minEffectiveSpeed
		}
	}
	c.SetSpeed(speed)
	sleepSliced(durationMs)
	c.Stop()
	return true
}

// QuickAction kicks the servo and returns immediately; a channel-owned timer
// stops it after a short fixed grace. durationMs must be positive but does
// not change the grace window.
func (c *Channel) QuickAction(speed, durationMs int) bool {
	if !c.initialized {
		println("[servo]", c.name, "not initialized, ignoring quick action")
		return false
	}
	if durationMs <= 0 {
		println("[servo]", c.name, "quick action duration must be positive:", durationMs)
		return false
	}
	if !c.SetSpeed(speed) {
		return false
	}
	if c.quickTimer == nil {
		c.quickTimer = time.AfterFunc(quickGrace, c.Stop)
	} else {
		c.quickTimer.Stop()
		c.quickTimer.Reset(quickGrace)
	}
	return true
}

// sleepSliced blocks for durationMs in 100 ms slices plus the remainder.
func sleepSliced(durationMs int) {
	const slice = 100
	for durationMs >= slice {
		time.Sleep(timex.Ms(slice))
		durationMs -= slice
	}
	if durationMs > 0 {
		time.Sleep(timex.Ms(durationMs))
	}
}
