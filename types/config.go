package types

// Servo configuration supplied on topic "config/servo".

type ServoConfig struct {
	Channels    []ChannelConfig        `json:"channels"`
	Calibration map[string]Calibration `json:"calibration,omitempty"`
}

type ChannelConfig struct {
	Name    string    `json:"name"` // "left" or "right"
	Pin     int       `json:"pin"`
	Reverse bool      `json:"reverse,omitempty"`
	Range   *PWMRange `json:"range,omitempty"` // nil => defaults
}
