//go:build !rp2040 && !rp2350

// Host provider: fake pulse outputs for demos and tests.
package platform

import (
	"sync"

	"armservo-go/services/servo"
)

// FakePWM records everything a channel does to it. Tests preload error
// fields to exercise failure paths.
type FakePWM struct {
	mu sync.Mutex

	PinNum     int
	Configured bool
	Released   bool
	Pulses     []uint32

	ConfigureErr error
	WriteErr     error
}

func (f *FakePWM) Configure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ConfigureErr != nil {
		return f.ConfigureErr
	}
	f.Configured = true
	return nil
}

func (f *FakePWM) SetPulseWidth(us uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.Pulses = append(f.Pulses, us)
	return nil
}

func (f *FakePWM) Release() {
	f.mu.Lock()
	f.Released = true
	f.mu.Unlock()
}

// LastPulse returns the most recent pulse written, if any.
func (f *FakePWM) LastPulse() (uint32, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Pulses) == 0 {
		return 0, false
	}
	return f.Pulses[len(f.Pulses)-1], true
}

// PulseLog returns a copy of every pulse written so far.
func (f *FakePWM) PulseLog() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint32, len(f.Pulses))
	copy(out, f.Pulses)
	return out
}

// HostFactory hands out one FakePWM per pin, created on first use. Get lets
// tests reach the fake before or after the channel does.
type HostFactory struct {
	mu   sync.Mutex
	pwms map[int]*FakePWM
}

func NewHostFactory() *HostFactory {
	return &HostFactory{pwms: map[int]*FakePWM{}}
}

func (h *HostFactory) ByPin(pin int) (servo.PWMChannel, bool) {
	if pin < 0 {
		return nil, false
	}
	return h.Get(pin), true
}

func (h *HostFactory) Get(pin int) *FakePWM {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.pwms[pin]
	if !ok {
		f = &FakePWM{PinNum: pin}
		h.pwms[pin] = f
	}
	return f
}

// DefaultPWMFactory is what mains wire in when they do not care about the
// platform.
func DefaultPWMFactory() servo.PWMFactory { return NewHostFactory() }
