package errcode

// Code is a stable, short error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes.
const (
	OK            Code = "ok"
	InvalidParams Code = "invalid_params"
	InvalidPeriod Code = "invalid_period"
	UnknownPin    Code = "unknown_pin"
	PinInUse      Code = "pin_in_use"
	RefreshBudget Code = "refresh_budget" // rows x row time exceeds the chip's refresh interval
	Cancelled     Code = "cancelled"

	Error Code = "error" // generic fallback
)

// E keeps an operation name, a message and an optional cause with a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
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
