package types

// ------------------------
// PWM range (continuous-rotation servo)
// ------------------------

// PWMRange holds the pulse widths a continuous-rotation servo understands.
// Stop is the neutral pulse; MaxFwd/MaxRev are the full-speed endpoints.
type PWMRange struct {
	StopUs   uint32 `json:"stop_us"`
	MaxFwdUs uint32 `json:"max_fwd_us"`
	MaxRevUs uint32 `json:"max_rev_us"`
}

// DefaultPWMRange covers the common 1000..2000 µs continuous-rotation band.
func DefaultPWMRange() PWMRange {
	return PWMRange{StopUs: 1500, MaxFwdUs: 2000, MaxRevUs: 1000}
}

// ------------------------
// Motion control payloads
// ------------------------

// MotionRequest is the control payload on servo/control/<op>.
// Fields beyond Target are op-specific; unused ones stay zero.
type MotionRequest struct {
	Target     string `json:"target"`                // "left","right","both",...
	Speed      int    `json:"speed,omitempty"`       // -100..100
	DurationMs int    `json:"duration_ms,omitempty"` // per-leg duration
	Count      int    `json:"count,omitempty"`       // repeat count
	Degrees    int    `json:"degrees,omitempty"`     // degree-based ops
	PulseUs    int    `json:"pulse_us,omitempty"`    // raw pulse ops
	Action     string `json:"action,omitempty"`      // combo variant
}

// ServiceState is published retained under servo/state.
type ServiceState struct {
	Level  string `json:"level"`  // "idle", "ready", "stopped"
	Status string `json:"status"` // freeform short code
	TS     int64  `json:"ts_ms"`
}

// ChannelState is published retained under servo/channel/<name>/state.
type ChannelState struct {
	Name        string `json:"name"`
	Pin         int    `json:"pin"`
	Speed       int    `json:"speed"`
	Initialized bool   `json:"initialized"`
	TS          int64  `json:"ts_ms"`
}

// QueryReply answers the "query" op with a snapshot of every channel.
type QueryReply struct {
	OK       bool           `json:"ok"`
	Channels []ChannelState `json:"channels"`
}

// Generic replies
type OKReply struct {
	OK bool `json:"ok"`
}
type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ------------------------
// Degree calibration
// ------------------------

// Calibration maps arm degrees onto (speed, duration) motion parameters.
// DegreeToDuration overrides the proportional rule for exact angles.
type Calibration struct {
	Speed            int         `json:"speed"`
	FullCircleTimeMs int         `json:"full_circle_time_ms"`
	DegreeToDuration map[int]int `json:"degree_to_duration,omitempty"`
}
