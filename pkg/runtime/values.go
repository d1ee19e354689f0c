package runtime

import "fmt"

// Kind identifies a runtime value's category (spec.md §3).
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindFunction
	KindNativeFunction
	KindClass
	KindError
	KindHostOpaque
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindClass:
		return "class"
	case KindError:
		return "error"
	case KindHostOpaque:
		return "host"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for every runtime value (spec.md §3, C1).
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type UndefinedValue struct{}

func (UndefinedValue) Kind() Kind { return KindUndefined }

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type BoolValue struct{ Val bool }

func (BoolValue) Kind() Kind { return KindBool }

// NumberValue is the sole numeric type: IEEE-754 double, matching spec.md's
// Number(f64) (unlike the teacher's i8..u128/f32/f64 zoo, which this
// language's value model does not carry).
type NumberValue struct{ Val float64 }

func (NumberValue) Kind() Kind { return KindNumber }

type StringValue struct{ Val string }

func (StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Containers
//-----------------------------------------------------------------------------

// ArrayValue is an ordered sequence; holes are UndefinedValue{} entries.
type ArrayValue struct {
	Elements []Value
}

func (*ArrayValue) Kind() Kind { return KindArray }

// ObjectValue preserves first-insertion key order (spec.md §3 invariant:
// "overwriting a key does not reorder it"). Proto, when non-nil, is consulted
// by member lookup after Keys/Values miss (used for class instances, whose
// Proto points at the owning class's instance-method table).
type ObjectValue struct {
	keys   []string
	values map[string]Value
	Proto  *ObjectValue
}

func NewObject(proto *ObjectValue) *ObjectValue {
	return &ObjectValue{values: make(map[string]Value), Proto: proto}
}

func (*ObjectValue) Kind() Kind { return KindObject }

// Get looks up key on this object only (no prototype walk).
func (o *ObjectValue) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Resolve looks up key on this object, then its prototype chain.
func (o *ObjectValue) Resolve(key string) (Value, bool) {
	for cur := o; cur != nil; cur = cur.Proto {
		if v, ok := cur.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set inserts or overwrites key, preserving first-insertion order.
func (o *ObjectValue) Set(key string, v Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key, if present, shifting it out of the insertion order.
func (o *ObjectValue) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for idx, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:idx], o.keys[idx+1:]...)
			break
		}
	}
}

// Keys returns own keys in insertion order.
func (o *ObjectValue) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// OwnThenInherited returns own keys followed by inherited keys not already
// seen, each in insertion order — the enumeration order for...in uses.
func (o *ObjectValue) OwnThenInherited() []string {
	seen := make(map[string]struct{}, len(o.keys))
	var out []string
	for cur := o; cur != nil; cur = cur.Proto {
		for _, k := range cur.keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// Clone returns a shallow, prototype-less copy — used for object rest
// patterns (spec.md §4.5: "a terminal ...rest element captures a shallow
// copy of the source with all explicitly named keys removed").
func (o *ObjectValue) Clone() *ObjectValue {
	clone := NewObject(nil)
	for _, k := range o.keys {
		clone.Set(k, o.values[k])
	}
	return clone
}

//-----------------------------------------------------------------------------
// Errors & host values
//-----------------------------------------------------------------------------

// ErrorKind is the taxonomy from spec.md §7.
type ErrorKind string

const (
	ErrReference   ErrorKind = "ReferenceError"
	ErrType        ErrorKind = "TypeError"
	ErrSyntax      ErrorKind = "SyntaxError"
	ErrUnsupported ErrorKind = "Unsupported"
)

// ErrorValue is the runtime representation of a fault; it is also what a
// `throw` statement carries when the thrown value isn't itself an ErrorValue
// (spec.md §7: a non-Error thrown value surfaces as a TypeError; an already-
// thrown ErrorValue passes through with its own kind unchanged).
type ErrorValue struct {
	ErrKind ErrorKind
	Message string
	Payload Value // the original thrown value, when it wasn't itself an ErrorValue

	// Line/Column are 1-indexed source coordinates of the faulting
	// statement, attached by the diagnostic formatter (spec.md §4.7) the
	// first time this fault bubbles past a statement boundary. Zero means
	// unattached — e.g. a fault synthesized outside any parsed source.
	Line, Column int
	// Formatted holds the two-line source window + caret the diagnostic
	// formatter produced, once attached.
	Formatted string
}

func (*ErrorValue) Kind() Kind { return KindError }

func (e *ErrorValue) Error() string {
	if e == nil {
		return ""
	}
	if e.Formatted != "" {
		return e.Formatted
	}
	return string(e.ErrKind) + ": " + e.Message
}

func NewError(kind ErrorKind, message string) *ErrorValue {
	return &ErrorValue{ErrKind: kind, Message: message}
}

// HostOpaque carries a caller-supplied global (spec.md §3: "carrier for
// caller-supplied globals... whose internals are invisible to the
// evaluator"). The evaluator only ever inspects it through the Awaitable
// interface (for `await`) and generic Value operations (equality, truthiness,
// stringification); Native, when set, allows calling it as a function.
type HostOpaque struct {
	Label  string
	Native any
}

func (*HostOpaque) Kind() Kind { return KindHostOpaque }
