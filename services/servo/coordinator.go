// services/servo/coordinator.go
package servo

import (
	"strings"
	"time"

	"armservo-go/x/mathx"
	"armservo-go/x/timex"
)

// Coordinator routes motion ops onto one or two channels. Single-target ops
// run on the calling goroutine and block until the motion finishes; "both"
// forks one goroutine per channel and returns as soon as they are launched.
// Nothing joins the forked goroutines.
type Coordinator struct {
	left  *Channel
	right *Channel
}

func NewCoordinator(left, right *Channel) *Coordinator {
	return &Coordinator{left: left, right: right}
}

func (co *Coordinator) Left() *Channel  { return co.left }
func (co *Coordinator) Right() *Channel { return co.right }

// Channels returns the configured channels, left first.
func (co *Coordinator) Channels() []*Channel {
	var out []*Channel
	if co.left != nil {
		out = append(out, co.left)
	}
	if co.right != nil {
		out = append(out, co.right)
	}
	return out
}

// NormalizeTarget folds the accepted target aliases onto left/right/both.
// Unqualified "arm" and "hand" mean both channels.
func NormalizeTarget(target string) (string, bool) {
	switch strings.ToLower(target) {
	case "arm", "hand", "both", "both_arms", "both_hands":
		return TargetBoth, true
	case "left", "left_arm", "left_hand":
		return TargetLeft, true
	case "right", "right_arm", "right_hand":
		return TargetRight, true
	default:
		return "", false
	}
}

// Dispatch validates and routes one op. Validation happens before any motion
// so a rejected request has no side effects. Returns false for an invalid
// target, unknown op, bad params, or a missing channel.
func (co *Coordinator) Dispatch(target, op string, p Params) bool {
	tgt, ok := NormalizeTarget(target)
	if !ok {
		println("[servo] invalid target:", target)
		return false
	}
	if !validParams(op, p) {
		println("[servo] invalid params for op:", op)
		return false
	}

	switch op {
	case OpQuery:
		for _, c := range co.Channels() {
			println("[servo]", c.Name(), "pin", c.Pin(), "speed", c.CurrentSpeed())
		}
		return true
	case OpMirror:
		return co.mirror(p)
	case OpAlternate:
		return co.alternate(p)
	case OpCombo:
		return co.combo(p)
	}

	action := opAction(op, p)
	if action == nil {
		println("[servo] unknown op:", op)
		return false
	}

	switch tgt {
	case TargetLeft:
		return co.runOn(co.left, action)
	case TargetRight:
		return co.runOn(co.right, action)
	default:
		launched := false
		for _, c := range co.Channels() {
			c := c
			go action(c)
			launched = true
		}
		return launched
	}
}

func (co *Coordinator) runOn(c *Channel, action func(*Channel) bool) bool {
	if c == nil {
		println("[servo] no channel for target")
		return false
	}
	return action(c)
}

// validParams rejects requests that would otherwise start a motion and then
// fail partway.
func validParams(op string, p Params) bool {
	switch op {
	case OpSet, OpQuickSet, OpQuery:
		return true
	case OpRaise, OpSalute, OpTestDirection:
		return p.DurationMs > 0
	case OpWave, OpBackAndForth, OpMirror:
		return p.Speed != 0 && p.DurationMs > 0 && p.Count > 0
	case OpAlternate:
		return p.DurationMs > 0 && p.Count > 0
	case OpCombo:
		return p.Speed != 0 && p.DurationMs > 0 && validComboAction(p.Action)
	case OpCalibratePulse:
		return mathx.Between(p.PulseUs, rawPulseMinUs, rawPulseMaxUs)
	default:
		return false
	}
}

// opAction binds an op to a per-channel closure over its params.
func opAction(op string, p Params) func(*Channel) bool {
	switch op {
	case OpSet:
		return func(c *Channel) bool { return c.SetSpeed(p.Speed) }
	case OpQuickSet:
		return func(c *Channel) bool { return c.QuickAction(p.Speed, p.DurationMs) }
	case OpWave:
		return func(c *Channel) bool { return c.Wave(p.Speed, p.DurationMs, p.Count) }
	case OpRaise:
		return func(c *Channel) bool { return c.RaiseArm(p.Speed, p.DurationMs) }
	case OpSalute:
		return func(c *Channel) bool { return c.Salute(p.Speed, p.DurationMs) }
	case OpBackAndForth:
		return func(c *Channel) bool { return c.BackAndForth(p.Speed, p.DurationMs, p.Count) }
	case OpTestDirection:
		return func(c *Channel) bool { return c.TestDirection(p.Speed, p.DurationMs) }
	case OpCalibratePulse:
		return func(c *Channel) bool { return c.SetRawPulseWidth(uint32(p.PulseUs)) }
	default:
		return nil
	}
}

// mirror sweeps the two channels in opposite directions at once. With a
// single channel it degrades to a plain sweep.
func (co *Coordinator) mirror(p Params) bool {
	chans := co.Channels()
	if len(chans) == 0 {
		println("[servo] no channels for mirror")
		return false
	}
	sign := 1
	for _, c := range chans {
		c, s := c, sign
		go c.BackAndForth(s*p.Speed, p.DurationMs, p.Count)
		sign = -sign
	}
	return true
}

func validComboAction(action string) bool {
	switch action {
	case "", "combo", "raise_wave", "wave_raise", "wave", "raise":
		return true
	default:
		return false
	}
}

// combo runs a different gesture on each arm at once. Both channels must be
// configured. The wave side runs two half-duration cycles so the arms settle
// around the same time; fork-without-join like "both" dispatch.
func (co *Coordinator) combo(p Params) bool {
	if co.left == nil || co.right == nil {
		println("[servo] combo needs both channels")
		return false
	}
	waveLeg, waveCount := p.DurationMs/2, 2
	switch p.Action {
	case "", "combo", "raise_wave":
		go co.left.RaiseArm(p.Speed, p.DurationMs)
		go co.right.Wave(p.Speed, waveLeg, waveCount)
	case "wave_raise":
		go co.left.Wave(p.Speed, waveLeg, waveCount)
		go co.right.RaiseArm(p.Speed, p.DurationMs)
	case "wave":
		go co.left.Wave(p.Speed, waveLeg, waveCount)
		go co.right.Wave(p.Speed, waveLeg, waveCount)
	case "raise":
		go co.left.RaiseArm(p.Speed, p.DurationMs)
		go co.right.RaiseArm(p.Speed, p.DurationMs)
	default:
		// screened by validParams
		return false
	}
	return true
}

// alternate raises each channel in turn, count rounds, blocking the caller.
func (co *Coordinator) alternate(p Params) bool {
	chans := co.Channels()
	if len(chans) == 0 {
		println("[servo] no channels for alternate")
		return false
	}
	for i := 0; i < p.Count; i++ {
		for _, c := range chans {
			c.RaiseArm(p.Speed, p.DurationMs)
			time.Sleep(timex.Ms(wavePause))
		}
	}
	for _, c := range chans {
		c.Stop()
	}
	return true
}
