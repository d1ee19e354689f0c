package runtime

// ClassValue is a class object (spec.md §4.1/§4.3, C4): an optional
// superclass handle, an optional constructor function, and instance/static
// method tables. Instances are plain ObjectValues whose Proto points at the
// class's instance-method table, chained through the superclass's table —
// but `super.m` resolution never walks that runtime prototype chain; it
// always goes through Super, the class that lexically defined the method
// currently executing (SPEC_FULL.md Open Questions decision (c)).
type ClassValue struct {
	Name        string
	Super       *ClassValue
	Constructor *FunctionValue
	Instance    *ObjectValue // method table; Proto chained to Super.Instance
	Static      *ObjectValue // method table; Proto chained to Super.Static
}

func (*ClassValue) Kind() Kind { return KindClass }

// NewClass wires up the instance/static method table prototype chain to
// super, if present.
func NewClass(name string, super *ClassValue) *ClassValue {
	c := &ClassValue{Name: name, Super: super}
	if super != nil {
		c.Instance = NewObject(super.Instance)
		c.Static = NewObject(super.Static)
	} else {
		c.Instance = NewObject(nil)
		c.Static = NewObject(nil)
	}
	return c
}

// LookupInstanceMethod resolves name on c's instance table, walking the
// superclass chain. Used for ordinary (non-super) method dispatch.
func (c *ClassValue) LookupInstanceMethod(name string) (*FunctionValue, bool) {
	v, ok := c.Instance.Resolve(name)
	if !ok {
		return nil, false
	}
	fn, ok := v.(*FunctionValue)
	return fn, ok
}

// LookupStaticMethod resolves name on c's static table, walking the
// superclass chain.
func (c *ClassValue) LookupStaticMethod(name string) (*FunctionValue, bool) {
	v, ok := c.Static.Resolve(name)
	if !ok {
		return nil, false
	}
	fn, ok := v.(*FunctionValue)
	return fn, ok
}

// SuperMethod resolves name directly on definingClass.Super's instance
// table (spec.md §4.3: "resolves m on the instance-method table two
// prototype links above the current method's table, i.e. the parent
// class"). definingClass is the class whose method body is currently
// executing, taken from the call-scoped class context, never the runtime
// class of the receiver.
func (c *ClassValue) SuperMethod(name string) (*FunctionValue, bool) {
	if c.Super == nil {
		return nil, false
	}
	return c.Super.LookupInstanceMethod(name)
}

// NewInstance allocates a bare instance object whose prototype is c's
// instance-method table. Field initialization and constructor invocation
// are the caller's (interpreter's) responsibility.
func (c *ClassValue) NewInstance() *ObjectValue {
	return NewObject(c.Instance)
}
