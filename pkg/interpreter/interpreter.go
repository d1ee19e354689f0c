// Package interpreter implements the tree-walking evaluator (spec.md §4,
// C6): a mutually recursive traversal of an externally-parsed syntax tree
// that never performs its own parsing, I/O, or scheduling.
package interpreter

import (
	"github.com/latticelang/evaluator/pkg/ast"
	"github.com/latticelang/evaluator/pkg/runtime"
)

// classContext is the call-scoped receiver/superclass pair threaded through
// method activations (spec.md §4.6). It is passed explicitly through the
// evaluator's call graph, never stored in a process-wide mutable slot, so
// nested or re-entrant evaluation stays safe.
type classContext struct {
	this  runtime.Value
	class *runtime.ClassValue // the class that lexically defines the executing method
}

// Interpreter walks an AST against a root environment. Source is retained
// only so the diagnostic formatter (C8) can render a caret window; the
// evaluator itself never re-reads or re-parses it.
type Interpreter struct {
	global *runtime.Environment
	source string

	// labels is the stack of enclosing labelled-statement names, innermost
	// last, pushed and popped by evalLabeled (spec.md §4.4:
	// LabeledStatement). A labelled break/continue finds its target by the
	// label evalLabeled passes to the loop or block, not by reading this.
	labels []string
}

// New creates an interpreter with a fresh, strictly empty root environment
// (SPEC_FULL.md Open Questions decision (a) — callers opt into convenience
// globals with runtime.SeedConvenience, never automatically).
func New() *Interpreter {
	return &Interpreter{global: runtime.NewEnvironment(nil)}
}

// GlobalEnvironment exposes the root environment so a caller can seed it
// before Evaluate, or inspect mirrored-back top-level bindings after.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Parser is the external collaborator spec.md §1/§6 describes as
// out-of-core: "source parsing... the evaluator never re-parses." Evaluate
// depends on this interface, not a concrete parser package, so the
// reference parser in pkg/parser stays swappable.
type Parser interface {
	Parse(source string) (*ast.Program, error)
}

// Evaluate is the public entry point (spec.md §6: `evaluate(globals,
// source) -> promise<Value>`). It parses source with p, walks the
// resulting tree against a root environment seeded from globals, and on
// completion mirrors every top-level definition back into globals (the
// caller retains ownership of the map; the environment only borrows its
// values, per §9's "module-level globals" guidance).
//
// The returned Awaitable is a runtime.ResolvedPromise: evaluation itself is
// synchronous (suspension only ever happens at an AwaitExpression, handled
// inline against the argument's own Awaitable), so by the time Evaluate
// returns there is nothing left to suspend on.
func (i *Interpreter) Evaluate(p Parser, globals map[string]runtime.Value, source string) runtime.Awaitable {
	i.source = source
	program, err := p.Parse(source)
	if err != nil {
		return &runtime.ResolvedPromise{Err: err}
	}
	return i.EvaluateProgram(globals, program)
}

// EvaluateProgram runs an already-parsed tree against the root
// environment. Tests use this directly, hand-assembling trees with the
// pkg/ast builder helpers instead of going through a parser.
func (i *Interpreter) EvaluateProgram(globals map[string]runtime.Value, program *ast.Program) runtime.Awaitable {
	for name, v := range globals {
		i.global.Define(name, v)
	}

	val, err := i.evaluateProgram(program)
	if err != nil {
		formatted := i.formatFault(err, program)
		return &runtime.ResolvedPromise{Err: formatted}
	}

	for _, stmt := range program.Body {
		for _, name := range topLevelBindingNames(stmt) {
			if bound, ok := i.global.Lookup(name); ok {
				globals[name] = bound
			}
		}
	}

	return &runtime.ResolvedPromise{Value: val}
}

// topLevelBindingNames reports every name a top-level statement binds in
// the root environment — used to mirror definitions back into globals. A
// `let`/`const` declarator's target can itself be a destructuring pattern
// (`let {a, b} = obj`, `let [x, ...rest] = arr`), so this walks the same
// pattern shapes bindPattern does rather than handling only a bare
// identifier.
func topLevelBindingNames(stmt ast.Statement) []string {
	switch s := stmt.(type) {
	case *ast.FunctionDeclaration:
		if s.ID != nil {
			return []string{s.ID.Name}
		}
	case *ast.ClassDeclaration:
		if s.ID != nil {
			return []string{s.ID.Name}
		}
	case *ast.VariableDeclaration:
		var names []string
		for _, decl := range s.Declarations {
			collectPatternNames(decl.ID, &names)
		}
		return names
	}
	return nil
}

// collectPatternNames appends every identifier a declaration pattern binds
// to out, recursing into object/array destructuring (including rest
// targets), the same shapes patterns.go's bindPattern recognizes.
func collectPatternNames(pattern ast.Pattern, out *[]string) {
	switch p := pattern.(type) {
	case nil:
	case *ast.Identifier:
		*out = append(*out, p.Name)
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			collectPatternNames(prop.Value, out)
		}
		if p.Rest != nil {
			*out = append(*out, p.Rest.Name)
		}
	case *ast.ArrayPattern:
		for _, elem := range p.Elements {
			collectPatternNames(elem, out)
		}
		if p.Rest != nil {
			collectPatternNames(p.Rest, out)
		}
	case *ast.AssignmentPattern:
		collectPatternNames(p.Left, out)
	case *ast.RestElement:
		collectPatternNames(p.Argument, out)
	}
}

func (i *Interpreter) evaluateProgram(program *ast.Program) (runtime.Value, error) {
	var last runtime.Value = runtime.UndefinedValue{}
	for _, stmt := range program.Body {
		v, err := i.evalStatement(stmt, i.global, nil)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}
