package interpreter

import (
	"fmt"
	"strings"

	"github.com/latticelang/evaluator/pkg/ast"
	"github.com/latticelang/evaluator/pkg/runtime"
)

// formatFault implements the diagnostic formatter (spec.md §4.7). It is
// given the original source, the error bubbling out of program evaluation,
// and attaches a two-line source window ending at the faulting line plus a
// caret at the faulting column — but only once: "faults from the parser
// already carry their own position... faults without positions pass
// through unmodified" (the formatter never overwrites an already-attached
// position).
func (i *Interpreter) formatFault(err error, program *ast.Program) error {
	ts, ok := err.(throwSignal)
	if !ok || ts.Fault == nil {
		return err
	}
	if ts.Fault.Formatted != "" {
		return err
	}
	if ts.Fault.Line == 0 {
		// No position was ever attached while walking the tree (can
		// happen for a fault synthesized without a source node); pass
		// through unmodified per spec.md §4.7.
		return err
	}
	ts.Fault.Formatted = renderDiagnostic(i.source, ts.Fault)
	return ts
}

// attachPosition stamps fault with node's starting line/column the first
// time a throwSignal crosses a statement boundary (spec.md §4.4: "at the
// statement boundary, a bubbled fault is passed to the diagnostic
// formatter"). Re-entrant calls as the signal continues bubbling through
// enclosing statements are no-ops, since Line is already set.
func attachPosition(err error, node ast.Node) error {
	ts, ok := err.(throwSignal)
	if !ok || ts.Fault == nil || node == nil {
		return err
	}
	if ts.Fault.Line != 0 {
		return err
	}
	span := node.Span()
	if span.IsZero() {
		return err
	}
	ts.Fault.Line = span.Start.Line
	ts.Fault.Column = span.Start.Column
	return ts
}

func renderDiagnostic(source string, fault *runtime.ErrorValue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", fault.ErrKind, fault.Message)

	lines := strings.Split(source, "\n")
	line := fault.Line
	if line >= 1 && line <= len(lines) {
		b.WriteString("\n")
		if line >= 2 {
			fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
		}
		fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
		col := fault.Column
		if col < 1 {
			col = 1
		}
		b.WriteString("       " + strings.Repeat(" ", col-1) + "^")
	}
	return b.String()
}
