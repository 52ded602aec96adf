//go:build rp2040

// RP2040 provider: pulse outputs on the PWM slices via the servo driver.
package platform

import (
	"machine"
	"sync"

	"armservo-go/errcode"
	"armservo-go/services/servo"

	sdrv "tinygo.org/x/drivers/servo"
)

// Each RP2040 PWM slice carries two pins and one timer base. The servo
// driver's Array owns the slice at the 50 Hz servo period; we create it on
// first use and count users so Release never tears down a shared slice that
// still drives the other pin.
type sliceState struct {
	arr   sdrv.Array
	users int
	ready bool
}

var (
	sliceMu sync.Mutex
	slices  [8]sliceState
)

func sliceForPin(pin int) uint8 { return uint8((pin >> 1) & 7) }

func pwmBySlice(slice uint8) sdrv.PWM {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

type rp2PWM struct {
	pin   machine.Pin
	slice uint8
	s     sdrv.Servo
	ready bool
}

func (r *rp2PWM) Configure() error {
	sliceMu.Lock()
	defer sliceMu.Unlock()

	st := &slices[r.slice]
	if !st.ready {
		arr, err := sdrv.NewArray(pwmBySlice(r.slice))
		if err != nil {
			return &errcode.E{C: errcode.Conflict, Op: "pwm_configure", Err: err}
		}
		st.arr = arr
		st.ready = true
	}
	s, err := st.arr.Add(r.pin)
	if err != nil {
		return &errcode.E{C: errcode.Conflict, Op: "pwm_add", Err: err}
	}
	r.s = s
	st.users++
	r.ready = true
	return nil
}

func (r *rp2PWM) SetPulseWidth(us uint32) error {
	if !r.ready {
		return errcode.NotInitialized
	}
	r.s.SetMicroseconds(int16(us))
	return nil
}

// Release drops this pin's claim. The slice timer keeps running while the
// sibling pin still uses it; the hardware has no per-pin teardown worth doing.
func (r *rp2PWM) Release() {
	sliceMu.Lock()
	defer sliceMu.Unlock()
	if r.ready {
		slices[r.slice].users--
		r.ready = false
	}
}

type rp2Factory struct{}

func (rp2Factory) ByPin(pin int) (servo.PWMChannel, bool) {
	if pin < 0 || pin > 29 {
		return nil, false
	}
	return &rp2PWM{pin: machine.Pin(pin), slice: sliceForPin(pin)}, true
}

func DefaultPWMFactory() servo.PWMFactory { return rp2Factory{} }
