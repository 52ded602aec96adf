// services/servo/helpers_test.go
package servo

import (
	"sync"
	"testing"

	"armservo-go/errcode"
	"armservo-go/types"
)

// In-package fakes so the engine tests stay independent of the platform
// providers.

type fakePWM struct {
	mu sync.Mutex

	configured bool
	released   bool
	pulses     []uint32

	configureErr error
	writeErr     error
}

func (f *fakePWM) Configure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.configureErr != nil {
		return f.configureErr
	}
	f.configured = true
	return nil
}

func (f *fakePWM) SetPulseWidth(us uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.pulses = append(f.pulses, us)
	return nil
}

func (f *fakePWM) Release() {
	f.mu.Lock()
	f.released = true
	f.mu.Unlock()
}

func (f *fakePWM) log() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint32, len(f.pulses))
	copy(out, f.pulses)
	return out
}

func (f *fakePWM) last(t *testing.T) uint32 {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pulses) == 0 {
		t.Fatal("no pulses written")
	}
	return f.pulses[len(f.pulses)-1]
}

type fakeFactory struct {
	mu   sync.Mutex
	pwms map[int]*fakePWM
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{pwms: map[int]*fakePWM{}}
}

func (ff *fakeFactory) ByPin(pin int) (PWMChannel, bool) {
	if pin < 0 {
		return nil, false
	}
	return ff.get(pin), true
}

func (ff *fakeFactory) get(pin int) *fakePWM {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	f, ok := ff.pwms[pin]
	if !ok {
		f = &fakePWM{}
		ff.pwms[pin] = f
	}
	return f
}

// newTestChannel returns a configured channel and its fake output.
func newTestChannel(t *testing.T, rng *types.PWMRange, reverse bool) (*Channel, *fakePWM) {
	t.Helper()
	ff := newFakeFactory()
	c := NewChannel("left", 16, ff, rng, reverse)
	if err := c.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	f := ff.get(16)
	f.mu.Lock()
	f.pulses = nil // drop the arming stop pulse
	f.mu.Unlock()
	return c, f
}

var errWrite = errcode.Error
