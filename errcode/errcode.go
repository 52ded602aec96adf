package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK              Code = "ok"
	Unsupported     Code = "unsupported"
	InvalidTarget   Code = "invalid_target"
	InvalidParams   Code = "invalid_params"
	InvalidPayload  Code = "invalid_payload"
	InvalidDuration Code = "invalid_duration"
	PulseOutOfRange Code = "pulse_out_of_range"
	NotInitialized  Code = "not_initialized"
	UnknownChannel  Code = "unknown_channel"
	Conflict        Code = "conflict"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
