package interpreter

import (
	"strings"
	"testing"

	"github.com/latticelang/evaluator/pkg/parser"
	"github.com/latticelang/evaluator/pkg/runtime"
)

func TestDiagnosticFormatterAttachesSourceWindowAndCaret(t *testing.T) {
	source := "let x = 1;\nlet y = x.missingCall();\n"
	interp := New()
	_, err := interp.Evaluate(parser.New(), map[string]runtime.Value{}, source).Await()
	if err == nil {
		t.Fatalf("expected a TypeError calling a non-function value")
	}
	ts, ok := err.(throwSignal)
	if !ok || ts.Fault == nil {
		t.Fatalf("expected a throwSignal carrying a fault, got %#v", err)
	}
	ev := ts.Fault
	if ev.Line != 2 {
		t.Fatalf("expected the fault to be attached to line 2, got %d", ev.Line)
	}
	if !strings.Contains(ev.Formatted, "^") {
		t.Fatalf("expected a caret in the formatted diagnostic, got %q", ev.Formatted)
	}
	if !strings.Contains(ev.Formatted, "let y = x.missingCall();") {
		t.Fatalf("expected the faulting line rendered in the diagnostic, got %q", ev.Formatted)
	}
}

func TestDiagnosticFormatterStampsOnlyTheInnermostPosition(t *testing.T) {
	// The fault originates on the inner statement's line; as it bubbles
	// through the enclosing if/block, attachPosition must not overwrite the
	// coordinates already stamped closest to the fault.
	source := "if (true) {\n  let z = undefinedName;\n}\n"
	interp := New()
	_, err := interp.Evaluate(parser.New(), map[string]runtime.Value{}, source).Await()
	if err == nil {
		t.Fatalf("expected a ReferenceError for the undeclared identifier")
	}
	ts, ok := err.(throwSignal)
	if !ok || ts.Fault == nil {
		t.Fatalf("expected a throwSignal carrying a fault, got %#v", err)
	}
	if ts.Fault.Line != 2 {
		t.Fatalf("expected the innermost faulting line (2), got %d", ts.Fault.Line)
	}
}

func TestAwaitResolvesAPromiseValue(t *testing.T) {
	p := runtime.NewPromise()
	p.Resolve(runtime.NumberValue{Val: 7})

	source := "async function f() { return await pending; } f();"
	interp := New()
	globals := map[string]runtime.Value{"pending": p}
	result, err := interp.Evaluate(parser.New(), globals, source).Await()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolved, ok := result.(runtime.Awaitable)
	if !ok {
		t.Fatalf("expected an async function call to return an Awaitable, got %#v", result)
	}
	inner, err := resolved.Await()
	if err != nil {
		t.Fatalf("unexpected error awaiting the returned promise: %v", err)
	}
	if nv, ok := inner.(runtime.NumberValue); !ok || nv.Val != 7 {
		t.Fatalf("expected 7, got %#v", inner)
	}
}

func TestAwaitPropagatesRejectionAsThrow(t *testing.T) {
	// An await on a rejected promise raises the rejection as an ordinary
	// throw inside the function body (spec.md §5: "await" surfaces a
	// rejection as a thrown fault) — it does not silently become a
	// rejected promise one level up.
	p := runtime.NewPromise()
	p.Reject(runtime.NewError(runtime.ErrType, "network down"))

	source := "async function f() { return await pending; } f();"
	interp := New()
	globals := map[string]runtime.Value{"pending": p}
	_, err := interp.Evaluate(parser.New(), globals, source).Await()
	if err == nil {
		t.Fatalf("expected the rejected promise's error to surface as an uncaught throw")
	}
	ts, ok := err.(throwSignal)
	if !ok || ts.Fault == nil || ts.Fault.ErrKind != runtime.ErrType {
		t.Fatalf("expected the original TypeError to propagate, got %#v", err)
	}
}
