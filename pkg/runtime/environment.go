package runtime

import "sync"

// binding holds a single variable slot plus the functions it currently
// references, so releasing the environment can destroy those functions in
// turn (spec.md §4.1, C2: "releasing an environment whose refcount reaches
// zero destroys any function values defined directly in it, after first
// releasing the environments those functions captured").
type binding struct {
	value Value
}

// Environment is a reference-counted lexical scope (spec.md §4.1, C2).
// Scopes form a parent chain; lookup/assign walk outward, define always
// targets the current scope. Refcounting exists so closures that outlive
// their defining block keep that block's environment alive, and so a
// function no longer reachable from anywhere releases the environments (and
// nested function values) it alone was keeping alive.
type Environment struct {
	mu       sync.Mutex
	parent   *Environment
	vars     map[string]*binding
	tracked  []*FunctionValue
	refs     int
	tracker  *MemoryTracker
	released bool
}

// NewEnvironment creates a fresh scope with refcount 1, chained to parent
// (nil for a root/global scope).
func NewEnvironment(parent *Environment) *Environment {
	return newEnvironmentWithTracker(parent, DefaultTracker)
}

func newEnvironmentWithTracker(parent *Environment, tracker *MemoryTracker) *Environment {
	env := &Environment{
		parent:  parent,
		vars:    make(map[string]*binding),
		refs:    1,
		tracker: tracker,
	}
	if tracker != nil {
		tracker.envCreated()
	}
	if parent != nil {
		parent.AddRef()
	}
	return env
}

// AddRef increments the environment's refcount. Call once per closure or
// other structure that stores a pointer to this environment beyond the
// lexical scope that created it.
func (e *Environment) AddRef() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refs++
}

// Release decrements the refcount; at zero it tears the environment down,
// destroying any function values it directly defines and releasing the
// parent chain — breaking what would otherwise be a parent/child reference
// cycle between an environment and the closures it contains.
func (e *Environment) Release() {
	e.mu.Lock()
	e.refs--
	if e.refs > 0 {
		e.mu.Unlock()
		return
	}
	if e.released {
		e.mu.Unlock()
		return
	}
	e.released = true
	vars := e.vars
	e.vars = nil
	tracked := e.tracked
	e.tracked = nil
	parent := e.parent
	tracker := e.tracker
	e.mu.Unlock()

	// Tracked functions first (transitively destroys any still-live
	// function whose only reference was this environment, including the
	// case where a function's closure is this very environment — its
	// destroy() call re-enters Release on an already-released env, which
	// the released guard above turns into a no-op).
	for _, fn := range tracked {
		fn.destroy()
	}
	for _, b := range vars {
		if fn, ok := b.value.(*FunctionValue); ok {
			fn.destroy()
		}
	}
	if tracker != nil {
		tracker.envDestroyed()
	}
	if parent != nil {
		parent.Release()
	}
}

// Track registers fn as created directly in this environment, so Release
// guarantees fn is destroyed even if it is never bound to a name here (e.g.
// an immediately-invoked function expression, or a function value nested
// inside an array/object rather than a variable slot).
func (e *Environment) Track(fn *FunctionValue) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.released {
		return
	}
	e.tracked = append(e.tracked, fn)
}

// Define creates (or overwrites) a binding in this scope only. Overwriting a
// binding that held a function value destroys that outgoing function
// (spec.md §4.1 invariant: "redefining a name that held a function releases
// that function's claim on its captured environment immediately, not at
// scope teardown").
func (e *Environment) Define(name string, v Value) {
	e.mu.Lock()
	var outgoing *FunctionValue
	if old, ok := e.vars[name]; ok {
		if fn, ok := old.value.(*FunctionValue); ok {
			outgoing = fn
		}
	}
	e.vars[name] = &binding{value: v}
	e.mu.Unlock()

	// destroy may re-enter Release on this same environment, so it runs
	// only after e.mu is released.
	if outgoing != nil {
		outgoing.destroy()
	}
}

// Lookup walks from this scope outward, returning the first binding found.
func (e *Environment) Lookup(name string) (Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		b, ok := cur.vars[name]
		cur.mu.Unlock()
		if ok {
			return b.value, true
		}
	}
	return nil, false
}

// Assign walks from this scope outward and overwrites the nearest existing
// binding for name, applying the same outgoing-function-destroy rule as
// Define. It reports false if name is not bound anywhere in the chain,
// leaving the caller (the evaluator) to raise a ReferenceError.
func (e *Environment) Assign(name string, v Value) bool {
	for cur := e; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		b, ok := cur.vars[name]
		if ok {
			if fn, isFn := b.value.(*FunctionValue); isFn {
				cur.mu.Unlock()
				fn.destroy()
				cur.mu.Lock()
			}
			b.value = v
			cur.mu.Unlock()
			return true
		}
		cur.mu.Unlock()
	}
	return false
}

// Has reports whether name is bound in this scope only (not the chain).
func (e *Environment) Has(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.vars[name]
	return ok
}

// Child creates a new scope nested under e, retaining a reference to e.
func (e *Environment) Child() *Environment {
	return NewEnvironment(e)
}

// SeedConvenience populates a handful of host-agnostic numeric/scalar
// constants (NaN, Infinity, undefined) that many embedded script engines
// inject by default. This evaluator does not do so automatically (see
// SPEC_FULL.md's Open Questions decision (a)): root environments start
// strictly empty, and callers that want these bindings opt in by calling
// this explicitly on their root environment before evaluating.
//
// It stops at these three; it does not build console- or Math-shaped host
// objects. Doing so would need a value stringifier, and the only one this
// repo has lives in pkg/interpreter, downstream of pkg/runtime in the
// import graph — reaching for it here would be an import cycle. A caller
// that wants those can build them with *HostOpaque the same way any other
// host value is supplied through globals.
func SeedConvenience(root *Environment) {
	root.Define("NaN", NumberValue{Val: nan()})
	root.Define("Infinity", NumberValue{Val: inf()})
	root.Define("undefined", UndefinedValue{})
}
