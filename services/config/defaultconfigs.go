package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPicoArm = `{
  "servo": {
    "channels": [
      { "name": "left",  "pin": 16 },
      { "name": "right", "pin": 17, "reverse": true }
    ],
    "calibration": {
      "default": { "speed": 80, "full_circle_time_ms": 2000 }
    }
  },
  "heartbeat": {
    "interval": 2
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico-arm": []byte(cfgPicoArm),
}
