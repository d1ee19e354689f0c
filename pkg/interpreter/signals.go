package interpreter

import "github.com/latticelang/evaluator/pkg/runtime"

// Signals are control-flow non-local transfers (spec.md §3, C5), represented
// as Go errors returned up the evaluator's call stack rather than raised as
// host-language panics — every evaluator call inspects the signal it gets
// back instead of unwinding through a recover().

type returnSignal struct {
	Value runtime.Value
}

func (returnSignal) Error() string { return "return outside function" }

type breakSignal struct {
	Label string
}

func (s breakSignal) Error() string {
	if s.Label == "" {
		return "break outside loop"
	}
	return "break outside loop: label " + s.Label
}

type continueSignal struct {
	Label string
}

func (s continueSignal) Error() string {
	if s.Label == "" {
		return "continue outside loop"
	}
	return "continue outside loop: label " + s.Label
}

// throwSignal carries a thrown value up the stack. Value is always
// non-nil; Fault, when set, is the *runtime.ErrorValue view of it (either
// Value itself, when it already is one, or a synthesized TypeError wrapper
// — spec.md §7: "surfaces as a TypeError only if x is not already an
// error").
type throwSignal struct {
	Value runtime.Value
	Fault *runtime.ErrorValue
}

func (s throwSignal) Error() string {
	if s.Fault != nil {
		return s.Fault.Error()
	}
	return "uncaught throw"
}

// newThrow wraps an arbitrary thrown value into a throwSignal, synthesizing
// a TypeError fault view when the value isn't already an ErrorValue (spec.md
// §7: "surfaces as a TypeError only if x is not already an error; otherwise
// it passes through").
func newThrow(v runtime.Value) throwSignal {
	if ev, ok := v.(*runtime.ErrorValue); ok {
		return throwSignal{Value: v, Fault: ev}
	}
	return throwSignal{
		Value: v,
		Fault: &runtime.ErrorValue{
			ErrKind: runtime.ErrType,
			Message: "uncaught non-error value thrown",
			Payload: v,
		},
	}
}

// fault is a convenience constructor for raising a taxonomy error directly
// (ReferenceError, TypeError, Unsupported) as a throwSignal.
func fault(kind runtime.ErrorKind, message string) throwSignal {
	ev := runtime.NewError(kind, message)
	return throwSignal{Value: ev, Fault: ev}
}
