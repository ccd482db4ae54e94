package vm

import "github.com/zephyrtronium/minijs/value"

// Signal is the control-flow outcome of evaluating one statement or
// expression, grounded on the teacher's Stop enum (control.go): every
// eval-shaped function returns a (value.Var, Signal) pair instead of
// unwinding via panic/recover for ordinary control flow, matching the
// teacher's `(result Interface, stop Stop)` convention.
type Signal int

const (
	// SigNone indicates normal completion; execution continues.
	SigNone Signal = iota
	// SigBreak requests exiting the nearest (or a named) loop/switch.
	SigBreak
	// SigContinue requests restarting the nearest (or a named) loop.
	SigContinue
	// SigReturn requests exiting the current function call.
	SigReturn
	// SigThrow indicates an uncaught (so far) JavaScript exception is in
	// flight; the carried value.Var is the thrown value.
	SigThrow
)

func (s Signal) String() string {
	switch s {
	case SigNone:
		return "none"
	case SigBreak:
		return "break"
	case SigContinue:
		return "continue"
	case SigReturn:
		return "return"
	case SigThrow:
		return "throw"
	}
	return "signal(?)"
}

// Outcome pairs a Signal with the label it targets (for labeled break/
// continue, spec.md §4.2 "Loop-label injection") and, for SigReturn/
// SigThrow, the carried value.
type Outcome struct {
	Sig   Signal
	Label string
	Value value.Var
}

var none = Outcome{Sig: SigNone}
