package interpreter

import (
	"github.com/latticelang/evaluator/pkg/ast"
	"github.com/latticelang/evaluator/pkg/runtime"
)

// paramDescriptors translates parsed parameter patterns into runtime
// ParamDescriptors (spec.md §4.1, C3). A bare Identifier becomes a plain
// named parameter; a terminal RestElement becomes Rest; anything else is a
// destructuring parameter bound through the pattern binder at call time.
func paramDescriptors(params []ast.Pattern) []runtime.ParamDescriptor {
	out := make([]runtime.ParamDescriptor, len(params))
	for idx, p := range params {
		switch pt := p.(type) {
		case *ast.Identifier:
			out[idx] = runtime.ParamDescriptor{Name: pt.Name}
		case *ast.RestElement:
			out[idx] = runtime.ParamDescriptor{Rest: true, Pattern: pt.Argument}
		default:
			out[idx] = runtime.ParamDescriptor{Pattern: p}
		}
	}
	return out
}

func (i *Interpreter) makeFunction(name string, params []ast.Pattern, body ast.Node, isArrow, isAsync bool, env *runtime.Environment) *runtime.FunctionValue {
	return runtime.NewFunction(name, paramDescriptors(params), body, isArrow, isAsync, env)
}

// callFunction implements the Call contract (spec.md §4.2). The receiver
// comes from fn itself: a bound method carries This/Super, which become the
// call's `this` and class context. outerCtx is the caller's class context:
// parameters are bound under it, and an arrow function's body runs in it.
func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value, outerCtx *classContext) (runtime.Value, error) {
	activation := fn.Closure.Child()
	defer activation.Release()

	if err := i.bindParams(fn.Params, args, activation, outerCtx); err != nil {
		return nil, err
	}

	var callCtx *classContext
	if fn.This != nil || fn.Super != nil {
		activation.Define("this", fn.This)
		callCtx = &classContext{this: fn.This, class: fn.Super}
	} else if !fn.IsArrow {
		// Plain unbound function call: `this` is unbound for a bare call
		// expression (spec.md §4.4 CallExpression: "otherwise the
		// receiver is unbound").
		activation.Define("this", runtime.UndefinedValue{})
	} else {
		// Arrow functions never establish a fresh `this` binding; they
		// resolve it through their Closure/outer ctx.
		callCtx = outerCtx
	}

	var result runtime.Value
	var err error
	if fn.IsArrow && fn.Body != nil {
		if block, ok := fn.Body.(*ast.BlockStatement); ok {
			result, err = i.evalStatementsIn(block.Body, activation, callCtx)
		} else if expr, ok := fn.Body.(ast.Expression); ok {
			result, err = i.evalExpression(expr, activation, callCtx)
		}
	} else if block, ok := fn.Body.(*ast.BlockStatement); ok {
		result, err = i.evalStatementsIn(block.Body, activation, callCtx)
	}

	if err != nil {
		if rs, ok := err.(returnSignal); ok {
			result, err = rs.Value, nil
		}
	} else if result == nil {
		result = runtime.UndefinedValue{}
	}
	if err != nil {
		return nil, err
	}

	if fn.IsAsync {
		if awaitable, ok := result.(runtime.Awaitable); ok {
			result, err = awaitable.Await()
			if err != nil {
				return nil, err
			}
		}
		return &runtime.ResolvedPromise{Value: result}, nil
	}
	return result, nil
}

// bindParams binds positional/rest/destructured parameters against args
// (spec.md §4.2 step 2). Missing args bind Undefined; extra positional
// args are silently discarded unless captured by a rest parameter.
func (i *Interpreter) bindParams(params []runtime.ParamDescriptor, args []runtime.Value, env *runtime.Environment, ctx *classContext) error {
	for idx, p := range params {
		if p.Rest {
			var rest []runtime.Value
			if idx < len(args) {
				rest = append(rest, args[idx:]...)
			}
			return i.bindPattern(p.Pattern, &runtime.ArrayValue{Elements: rest}, env, ctx, bindDefine)
		}
		var v runtime.Value = runtime.UndefinedValue{}
		if idx < len(args) {
			v = args[idx]
		}
		if p.Pattern != nil {
			if err := i.bindPattern(p.Pattern, v, env, ctx, bindDefine); err != nil {
				return err
			}
			continue
		}
		env.Define(p.Name, v)
	}
	return nil
}

//-----------------------------------------------------------------------------
// Classes (spec.md §4.3, C4)
//-----------------------------------------------------------------------------

func (i *Interpreter) evalClassDefinition(name string, superExpr ast.Expression, methods []*ast.MethodDefinition, env *runtime.Environment, ctx *classContext) (*runtime.ClassValue, error) {
	var super *runtime.ClassValue
	if superExpr != nil {
		superVal, err := i.evalExpression(superExpr, env, ctx)
		if err != nil {
			return nil, err
		}
		sc, ok := superVal.(*runtime.ClassValue)
		if !ok {
			return nil, fault(runtime.ErrType, "superclass expression must evaluate to a class")
		}
		super = sc
	}

	cls := runtime.NewClass(name, super)

	for _, m := range methods {
		fnName := ""
		if id, ok := m.Key.(*ast.Identifier); ok {
			fnName = id.Name
		}
		fn := i.makeFunction(fnName, m.Value.Params, m.Value.Body, false, m.Value.Async, env)
		// A method's Super is always the class that lexically defines it
		// (SPEC_FULL.md Open Questions decision (c)) — bound once here,
		// not re-derived from the receiver at call time.
		fn.Super = cls

		switch {
		case m.Kind == "constructor":
			cls.Constructor = fn
		case m.Static:
			cls.Static.Set(fnName, fn)
		default:
			cls.Instance.Set(fnName, fn)
		}
	}

	return cls, nil
}

// construct implements `new C(args)` (spec.md §4.3: creates an instance,
// invokes the constructor with it as receiver, returns the constructor's
// explicit object return if any, else the receiver).
func (i *Interpreter) construct(cls *runtime.ClassValue, args []runtime.Value, ctx *classContext) (runtime.Value, error) {
	instance := cls.NewInstance()
	if cls.Constructor == nil {
		return instance, nil
	}
	bound := cls.Constructor.Bind(instance, cls)
	result, err := i.callFunction(bound, args, ctx)
	if err != nil {
		return nil, err
	}
	if obj, ok := result.(*runtime.ObjectValue); ok {
		return obj, nil
	}
	return instance, nil
}

// invokeSuperConstructor implements `super(...)` inside a subclass
// constructor (spec.md §4.3): applies ctx.class.Super's constructor to
// the current `this` with the given arguments.
func (i *Interpreter) invokeSuperConstructor(args []runtime.Value, ctx *classContext) (runtime.Value, error) {
	if ctx == nil || ctx.class == nil || ctx.class.Super == nil {
		return nil, fault(runtime.ErrType, "super() used in a class with no superclass")
	}
	superCls := ctx.class.Super
	if superCls.Constructor == nil {
		return runtime.UndefinedValue{}, nil
	}
	bound := superCls.Constructor.Bind(ctx.this, superCls)
	return i.callFunction(bound, args, ctx)
}

// resolveSuperMethod implements `super.m` (spec.md §4.3: resolves m on the
// instance-method table two prototype links above the current method's
// table, via the defining class's explicit superclass handle — never the
// receiver's runtime prototype, per Open Questions decision (c)).
func (i *Interpreter) resolveSuperMethod(name string, ctx *classContext) (*runtime.FunctionValue, error) {
	if ctx == nil || ctx.class == nil {
		return nil, fault(runtime.ErrType, "super used outside a method")
	}
	fn, ok := ctx.class.SuperMethod(name)
	if !ok {
		return nil, fault(runtime.ErrType, "super has no method named "+name)
	}
	return fn.Bind(ctx.this, ctx.class.Super), nil
}
