// services/servo/channel.go
package servo

import (
	"time"

	"armservo-go/errcode"
	"armservo-go/types"
	"armservo-go/x/mathx"
)

var errNoPWM error = errcode.Unsupported

const (
	// Speed deltas below this never reach the hardware.
	deadband = 3
	// Raw pulse commands outside this window are rejected outright.
	rawPulseMinUs = 1000
	rawPulseMaxUs = 2000
	// QuickAction lets the servo coast this long before the grace stop.
	quickGrace = 100 * time.Millisecond
)

// Channel drives one continuous-rotation servo through a PWMChannel.
//
// No internal locking: a channel expects a single writer at a time. The
// coordinator upholds that by running left/right motions on the calling
// goroutine and giving each channel its own goroutine on "both".
type Channel struct {
	name    string
	pin     int
	factory PWMFactory
	rng     types.PWMRange
	reverse bool

	pwm         PWMChannel
	initialized bool
	speed       int // last speed confirmed on hardware

	quickTimer *time.Timer // grace stop for QuickAction; nil until first use
}

// NewChannel builds an unconfigured channel. nil rng selects the default
// 1000/1500/2000 band.
func NewChannel(name string, pin int, f PWMFactory, rng *types.PWMRange, reverse bool) *Channel {
	r := types.DefaultPWMRange()
	if rng != nil {
		r = *rng
	}
	return &Channel{name: name, pin: pin, factory: f, rng: r, reverse: reverse}
}

func (c *Channel) Name() string      { return c.name }
func (c *Channel) Pin() int          { return c.pin }
func (c *Channel) CurrentSpeed() int { return c.speed }
func (c *Channel) Initialized() bool { return c.initialized }

// Configure claims the pulse output and arms it at the stop pulse. A failure
// leaves the channel permanently uninitialized; later ops warn and do nothing.
func (c *Channel) Configure() error {
	pwm, ok := c.factory.ByPin(c.pin)
	if !ok {
		println("[servo]", c.name, "no pwm output on pin", c.pin)
		return errNoPWM
	}
	if err := pwm.Configure(); err != nil {
		println("[servo]", c.name, "pwm configure failed:", err.Error())
		pwm.Release()
		return err
	}
	if err := pwm.SetPulseWidth(c.rng.StopUs); err != nil {
		println("[servo]", c.name, "initial stop pulse failed:", err.Error())
		pwm.Release()
		return err
	}
	c.pwm = pwm
	c.initialized = true
	c.speed = 0
	return nil
}

// SetSpeed commands a speed in [-100,100]. Out-of-range values clamp; deltas
// inside the deadband skip the hardware write. Reports whether the command
// was accepted (a deadband skip counts as accepted).
func (c *Channel) SetSpeed(speed int) bool {
	if !c.initialized {
		println("[servo]", c.name, "not initialized, ignoring set_speed")
		return false
	}
	if c.reverse {
		speed = -speed
	}
	speed = mathx.Clamp(speed, -100, 100)
	if mathx.Abs(speed-c.speed) < deadband {
		return true
	}
	pulse := c.mapSpeedToPulse(speed)
	if err := c.pwm.SetPulseWidth(pulse); err != nil {
		println("[servo]", c.name, "pulse write failed:", err.Error())
		return false
	}
	c.speed = speed
	return true
}

// Stop is always safe to call, even repeatedly.
func (c *Channel) Stop() { c.SetSpeed(0) }

// SetRawPulseWidth writes a pulse directly, bypassing the deadband. Used for
// calibration. The reported speed is re-derived from the pulse so later
// deadband checks stay meaningful.
func (c *Channel) SetRawPulseWidth(us uint32) bool {
	if !c.initialized {
		println("[servo]", c.name, "not initialized, ignoring raw pulse")
		return false
	}
	if !mathx.Between(us, uint32(rawPulseMinUs), uint32(rawPulseMaxUs)) {
		println("[servo]", c.name, "raw pulse out of range:", us)
		return false
	}
	if err := c.pwm.SetPulseWidth(us); err != nil {
		println("[servo]", c.name, "pulse write failed:", err.Error())
		return false
	}
	c.speed = c.mapPulseToSpeed(us)
	return true
}

// Close stops any pending grace timer, parks the servo and releases the
// output. The channel cannot be reused afterwards.
func (c *Channel) Close() {
	if c.quickTimer != nil {
		c.quickTimer.Stop()
		c.quickTimer = nil
	}
	if c.initialized {
		c.Stop()
		c.pwm.Release()
		c.initialized = false
	}
}

func (c *Channel) mapSpeedToPulse(speed int) uint32 {
	stop := int(c.rng.StopUs)
	switch {
	case speed > 0:
		return uint32(stop + (int(c.rng.MaxFwdUs)-stop)*speed/100)
	case speed < 0:
		return uint32(stop - (stop-int(c.rng.MaxRevUs))*(-speed)/100)
	default:
		return c.rng.StopUs
	}
}

func (c *Channel) mapPulseToSpeed(us uint32) int {
	stop := int(c.rng.StopUs)
	p := int(us)
	switch {
	case p > stop:
		return (p - stop) * 100 / (int(c.rng.MaxFwdUs) - stop)
	case p < stop:
		return -((stop - p) * 100 / (stop - int(c.rng.MaxRevUs)))
	default:
		return 0
	}
}
