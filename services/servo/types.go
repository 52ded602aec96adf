// services/servo/types.go
package servo

// ------------------------
// Platform contracts
// ------------------------

// PWMChannel is one hardware pulse output. Providers hand these out per pin;
// several channels may share a timer base, so Configure must tolerate the
// period already being set by an earlier user of the same base.
type PWMChannel interface {
	Configure() error
	SetPulseWidth(us uint32) error
	Release()
}

// PWMFactory injects the platform's PWM provider. ByPin returns false when
// the pin cannot carry a pulse output on this board.
type PWMFactory interface {
	ByPin(pin int) (PWMChannel, bool)
}

// ------------------------
// Operations
// ------------------------

// Op names accepted by the coordinator and on servo/control/<op>.
const (
	OpSet            = "set"
	OpQuickSet       = "quick_set"
	OpWave           = "wave"
	OpRaise          = "raise"
	OpSalute         = "salute"
	OpBackAndForth   = "back_and_forth"
	OpTestDirection  = "test_direction"
	OpCalibratePulse = "calibrate_pulse"
	OpQuery          = "query"
	OpMirror         = "mirror"
	OpAlternate      = "alternate"
	OpCombo          = "combo"
)

// Targets after normalization.
const (
	TargetLeft  = "left"
	TargetRight = "right"
	TargetBoth  = "both"
)

// Params carries the per-op arguments through the coordinator. A copy is
// handed to each goroutine on a "both" dispatch.
type Params struct {
	Speed      int
	DurationMs int
	Count      int
	PulseUs    int
	Action     string // combo variant selector
}
