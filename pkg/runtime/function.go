package runtime

import (
	"sync"

	"github.com/latticelang/evaluator/pkg/ast"
)

// ParamDescriptor describes one declared parameter (spec.md §4.1, C3):
// a plain name, a rest parameter (`...name`), or a destructuring pattern.
type ParamDescriptor struct {
	Name    string     // set when Pattern is nil and this is a plain identifier param
	Rest    bool       // true for a trailing `...name` parameter
	Pattern ast.Pattern // set for a destructured parameter ({a, b} or [a, b])
}

// FunctionValue is a callable closure (spec.md §4.1, C3): captured
// environment, declared parameters, body, and an async flag. Functions are
// destroyed at most once; destruction releases the captured environment,
// which is how closures participate in the environment's refcounted
// lifetime instead of requiring a tracing collector.
type FunctionValue struct {
	Name    string
	Params  []ParamDescriptor
	Body    ast.Node // *ast.BlockStatement, or an expression for arrow-expression bodies
	IsArrow bool
	IsAsync bool
	Closure *Environment

	// This, when non-nil, is the bound receiver for a method created via
	// class instantiation (spec.md §4.6); arrow functions never set this
	// and instead resolve `this` through their Closure at call time.
	This Value
	// Super, when non-nil, is the explicit superclass handle methods
	// resolve `super.m` against — not the receiver's runtime prototype
	// (SPEC_FULL.md Open Questions decision (c)).
	Super *ClassValue

	mu    sync.Mutex
	alive bool
}

func (*FunctionValue) Kind() Kind { return KindFunction }

// NewFunction constructs a function value whose closure is env, incrementing
// env's refcount and registering the function with env's tracking set so it
// is destroyed deterministically even if never bound to a variable.
func NewFunction(name string, params []ParamDescriptor, body ast.Node, isArrow, isAsync bool, env *Environment) *FunctionValue {
	env.AddRef()
	fn := &FunctionValue{
		Name:    name,
		Params:  params,
		Body:    body,
		IsArrow: isArrow,
		IsAsync: isAsync,
		Closure: env,
		alive:   true,
	}
	if env.tracker != nil {
		env.tracker.fnCreated()
	}
	env.Track(fn)
	return fn
}

// Bind returns a lightweight wrapper around fn with This/Super set, used
// when a method is fetched off a class instance (spec.md §4.6). It shares
// fn's closure (adding a reference, since the wrapper is itself a distinct
// tracked handle) rather than duplicating it in the environment graph.
func (fn *FunctionValue) Bind(this Value, super *ClassValue) *FunctionValue {
	fn.Closure.AddRef()
	bound := &FunctionValue{
		Name:    fn.Name,
		Params:  fn.Params,
		Body:    fn.Body,
		IsArrow: fn.IsArrow,
		IsAsync: fn.IsAsync,
		Closure: fn.Closure,
		This:    this,
		Super:   super,
		alive:   true,
	}
	if fn.Closure.tracker != nil {
		fn.Closure.tracker.fnCreated()
	}
	fn.Closure.Track(bound)
	return bound
}

// destroy is idempotent: it releases the closure at most once, which is
// what lets a self-referential closure (a function stored in the very
// environment it captured) terminate cleanly instead of looping.
func (fn *FunctionValue) destroy() {
	fn.mu.Lock()
	if !fn.alive {
		fn.mu.Unlock()
		return
	}
	fn.alive = false
	closure := fn.Closure
	tracker := closure.tracker
	fn.mu.Unlock()

	if tracker != nil {
		tracker.fnDestroyed()
	}
	closure.Release()
}
