package interpreter

import (
	"github.com/latticelang/evaluator/pkg/ast"
	"github.com/latticelang/evaluator/pkg/runtime"
)

func (i *Interpreter) evalExpression(node ast.Expression, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return literalToValue(n), nil

	case *ast.Identifier:
		v, ok := env.Lookup(n.Name)
		if !ok {
			return nil, fault(runtime.ErrReference, n.Name+" is not defined")
		}
		return v, nil

	case *ast.ThisExpression:
		v, ok := env.Lookup("this")
		if !ok {
			if ctx != nil {
				return ctx.this, nil
			}
			return runtime.UndefinedValue{}, nil
		}
		return v, nil

	case *ast.Super:
		return nil, fault(runtime.ErrUnsupported, "super is only valid as the target of a member or call expression")

	case *ast.BinaryExpression:
		left, err := i.evalExpression(n.Left, env, ctx)
		if err != nil {
			return nil, err
		}
		right, err := i.evalExpression(n.Right, env, ctx)
		if err != nil {
			return nil, err
		}
		return evalBinary(n.Operator, left, right)

	case *ast.LogicalExpression:
		return i.evalLogical(n, env, ctx)

	case *ast.UnaryExpression:
		v, err := i.evalExpression(n.Argument, env, ctx)
		if err != nil {
			return nil, err
		}
		return evalUnary(n.Operator, v)

	case *ast.UpdateExpression:
		return i.evalUpdate(n, env, ctx)

	case *ast.MemberExpression:
		return i.evalMember(n, env, ctx)

	case *ast.CallExpression:
		return i.evalCall(n, env, ctx)

	case *ast.NewExpression:
		return i.evalNew(n, env, ctx)

	case *ast.AssignmentExpression:
		return i.evalAssignment(n, env, ctx)

	case *ast.ArrayExpression:
		return i.evalArray(n, env, ctx)

	case *ast.ObjectExpression:
		return i.evalObject(n, env, ctx)

	case *ast.SpreadElement:
		return nil, fault(runtime.ErrUnsupported, "spread is only valid inside a call, array, or object")

	case *ast.FunctionExpression:
		name := ""
		if n.ID != nil {
			name = n.ID.Name
		}
		return i.makeFunction(name, n.Params, n.Body, false, n.Async, env), nil

	case *ast.ArrowFunctionExpression:
		var body ast.Node = n.Body
		return i.makeFunction("", n.Params, body, true, n.Async, env), nil

	case *ast.ClassExpression:
		return i.evalClassDefinition(classExprName(n), n.SuperClass, n.Body, env, ctx)

	case *ast.TemplateLiteral:
		return i.evalTemplateLiteral(n, env, ctx)

	case *ast.ConditionalExpression:
		test, err := i.evalExpression(n.Test, env, ctx)
		if err != nil {
			return nil, err
		}
		if truthy(test) {
			return i.evalExpression(n.Consequent, env, ctx)
		}
		return i.evalExpression(n.Alternate, env, ctx)

	case *ast.SequenceExpression:
		var last runtime.Value = runtime.UndefinedValue{}
		for _, e := range n.Expressions {
			v, err := i.evalExpression(e, env, ctx)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil

	case *ast.ChainExpression:
		v, err := i.evalExpression(n.Expression, env, ctx)
		if err != nil {
			if _, isThrow := err.(throwSignal); isThrow {
				return runtime.UndefinedValue{}, nil
			}
			return nil, err
		}
		return v, nil

	case *ast.AwaitExpression:
		return i.evalAwait(n, env, ctx)

	default:
		return nil, fault(runtime.ErrUnsupported, "unsupported expression node")
	}
}

func classExprName(n *ast.ClassExpression) string {
	if n.ID != nil {
		return n.ID.Name
	}
	return ""
}

func (i *Interpreter) evalLogical(n *ast.LogicalExpression, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	left, err := i.evalExpression(n.Left, env, ctx)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "&&":
		if !truthy(left) {
			return left, nil
		}
		return i.evalExpression(n.Right, env, ctx)
	case "||":
		if truthy(left) {
			return left, nil
		}
		return i.evalExpression(n.Right, env, ctx)
	case "??":
		if !isNullish(left) {
			return left, nil
		}
		return i.evalExpression(n.Right, env, ctx)
	default:
		return nil, fault(runtime.ErrUnsupported, "unsupported logical operator: "+n.Operator)
	}
}

func (i *Interpreter) evalUpdate(n *ast.UpdateExpression, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	old, err := i.evalExpression(n.Argument, env, ctx)
	if err != nil {
		return nil, err
	}
	oldNum := toNumber(old)
	var newNum float64
	switch n.Operator {
	case "++":
		newNum = oldNum + 1
	case "--":
		newNum = oldNum - 1
	default:
		return nil, fault(runtime.ErrUnsupported, "unsupported update operator: "+n.Operator)
	}
	newVal := runtime.NumberValue{Val: newNum}

	switch target := n.Argument.(type) {
	case *ast.Identifier:
		if !env.Assign(target.Name, newVal) {
			return nil, fault(runtime.ErrReference, target.Name+" is not defined")
		}
	case *ast.MemberExpression:
		if err := i.assignMember(target, newVal, env, ctx); err != nil {
			return nil, err
		}
	default:
		return nil, fault(runtime.ErrUnsupported, "invalid update target")
	}

	if n.Prefix {
		return newVal, nil
	}
	return runtime.NumberValue{Val: oldNum}, nil
}

func (i *Interpreter) evalAssignment(n *ast.AssignmentExpression, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	if n.Operator == "=" {
		v, err := i.evalExpression(n.Right, env, ctx)
		if err != nil {
			return nil, err
		}
		switch target := n.Left.(type) {
		case ast.Pattern:
			if err := i.bindPattern(target, v, env, ctx, bindAssign); err != nil {
				return nil, err
			}
		default:
			return nil, fault(runtime.ErrUnsupported, "invalid assignment target")
		}
		return v, nil
	}

	// Compound operator: read-modify-write using the operator's binary
	// semantics (spec.md §4.4 AssignmentExpression).
	binOp := n.Operator[:len(n.Operator)-1]
	switch target := n.Left.(type) {
	case *ast.Identifier:
		old, ok := env.Lookup(target.Name)
		if !ok {
			return nil, fault(runtime.ErrReference, target.Name+" is not defined")
		}
		rhs, err := i.evalExpression(n.Right, env, ctx)
		if err != nil {
			return nil, err
		}
		result, err := evalBinary(binOp, old, rhs)
		if err != nil {
			return nil, err
		}
		if !env.Assign(target.Name, result) {
			return nil, fault(runtime.ErrReference, target.Name+" is not defined")
		}
		return result, nil
	case *ast.MemberExpression:
		objVal, err := i.evalExpression(target.Object, env, ctx)
		if err != nil {
			return nil, err
		}
		key, err := i.propertyKey(target.Property, target.Computed, env, ctx)
		if err != nil {
			return nil, err
		}
		old, err := i.getMember(objVal, key)
		if err != nil {
			return nil, err
		}
		rhs, err := i.evalExpression(n.Right, env, ctx)
		if err != nil {
			return nil, err
		}
		result, err := evalBinary(binOp, old, rhs)
		if err != nil {
			return nil, err
		}
		if err := i.setMember(objVal, key, result); err != nil {
			return nil, err
		}
		return result, nil
	default:
		return nil, fault(runtime.ErrUnsupported, "invalid compound assignment target")
	}
}

// evalArgs evaluates a call/new argument list left-to-right, flattening
// SpreadElements into their iterable's elements (spec.md §4.4).
func (i *Interpreter) evalArgs(args []ast.Expression, env *runtime.Environment, ctx *classContext) ([]runtime.Value, error) {
	out := make([]runtime.Value, 0, len(args))
	for _, a := range args {
		if spread, ok := a.(*ast.SpreadElement); ok {
			v, err := i.evalExpression(spread.Argument, env, ctx)
			if err != nil {
				return nil, err
			}
			elems, err := iterableElements(v)
			if err != nil {
				return nil, err
			}
			out = append(out, elems...)
			continue
		}
		v, err := i.evalExpression(a, env, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (i *Interpreter) evalArray(n *ast.ArrayExpression, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	var out []runtime.Value
	for _, elem := range n.Elements {
		if elem == nil {
			out = append(out, runtime.UndefinedValue{})
			continue
		}
		if spread, ok := elem.(*ast.SpreadElement); ok {
			v, err := i.evalExpression(spread.Argument, env, ctx)
			if err != nil {
				return nil, err
			}
			elems, err := iterableElements(v)
			if err != nil {
				return nil, err
			}
			out = append(out, elems...)
			continue
		}
		v, err := i.evalExpression(elem, env, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return &runtime.ArrayValue{Elements: out}, nil
}

func (i *Interpreter) evalObject(n *ast.ObjectExpression, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	obj := runtime.NewObject(nil)
	for _, member := range n.Properties {
		switch m := member.(type) {
		case *ast.Property:
			key, err := i.propertyKey(m.Key, m.Computed, env, ctx)
			if err != nil {
				return nil, err
			}
			v, err := i.evalExpression(m.Value, env, ctx)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		case *ast.SpreadElement:
			v, err := i.evalExpression(m.Argument, env, ctx)
			if err != nil {
				return nil, err
			}
			src, ok := v.(*runtime.ObjectValue)
			if !ok {
				return nil, fault(runtime.ErrType, "object spread requires an object")
			}
			for _, k := range src.Keys() {
				val, _ := src.Get(k)
				obj.Set(k, val)
			}
		}
	}
	return obj, nil
}

// evalCall implements CallExpression dispatch, including `super(...)`
// (spec.md §4.3/§4.4).
func (i *Interpreter) evalCall(n *ast.CallExpression, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	if _, ok := n.Callee.(*ast.Super); ok {
		args, err := i.evalArgs(n.Arguments, env, ctx)
		if err != nil {
			return nil, err
		}
		return i.invokeSuperConstructor(args, ctx)
	}

	if member, ok := n.Callee.(*ast.MemberExpression); ok {
		if _, isSuper := member.Object.(*ast.Super); isSuper {
			if ctx == nil || ctx.class == nil {
				return nil, fault(runtime.ErrType, "super used outside a method")
			}
			key, err := i.propertyKey(member.Property, member.Computed, env, ctx)
			if err != nil {
				return nil, err
			}
			fn, err := i.resolveSuperMethod(key, ctx)
			if err != nil {
				return nil, err
			}
			args, err := i.evalArgs(n.Arguments, env, ctx)
			if err != nil {
				return nil, err
			}
			return i.callFunction(fn, args, ctx)
		}

		objVal, err := i.evalExpression(member.Object, env, ctx)
		if err != nil {
			return nil, err
		}
		key, err := i.propertyKey(member.Property, member.Computed, env, ctx)
		if err != nil {
			return nil, err
		}
		calleeVal, err := i.getMember(objVal, key)
		if err != nil {
			return nil, err
		}
		args, err := i.evalArgs(n.Arguments, env, ctx)
		if err != nil {
			return nil, err
		}
		return i.callValue(calleeVal, args, ctx)
	}

	calleeVal, err := i.evalExpression(n.Callee, env, ctx)
	if err != nil {
		return nil, err
	}
	args, err := i.evalArgs(n.Arguments, env, ctx)
	if err != nil {
		return nil, err
	}
	return i.callValue(calleeVal, args, ctx)
}

func (i *Interpreter) callValue(calleeVal runtime.Value, args []runtime.Value, ctx *classContext) (runtime.Value, error) {
	switch callee := calleeVal.(type) {
	case *runtime.FunctionValue:
		return i.callFunction(callee, args, ctx)
	case *runtime.HostOpaque:
		if native, ok := callee.Native.(func([]runtime.Value) (runtime.Value, error)); ok {
			return native(args)
		}
		return nil, fault(runtime.ErrType, "calling a non-callable host value")
	default:
		return nil, fault(runtime.ErrType, "calling a non-function value")
	}
}

func (i *Interpreter) evalNew(n *ast.NewExpression, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	calleeVal, err := i.evalExpression(n.Callee, env, ctx)
	if err != nil {
		return nil, err
	}
	cls, ok := calleeVal.(*runtime.ClassValue)
	if !ok {
		return nil, fault(runtime.ErrType, "constructing a non-function value")
	}
	args, err := i.evalArgs(n.Arguments, env, ctx)
	if err != nil {
		return nil, err
	}
	return i.construct(cls, args, ctx)
}

// evalAwait implements AwaitExpression (spec.md §4.4/§5): the argument is
// evaluated; if it exposes Awaitable, the evaluator blocks on it and
// yields the resolved value or propagates its error as a throw; any other
// value passes through unchanged.
func (i *Interpreter) evalAwait(n *ast.AwaitExpression, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	v, err := i.evalExpression(n.Argument, env, ctx)
	if err != nil {
		return nil, err
	}
	awaitable, ok := v.(runtime.Awaitable)
	if !ok {
		return v, nil
	}
	result, awaitErr := awaitable.Await()
	if awaitErr != nil {
		if ev, ok := awaitErr.(*runtime.ErrorValue); ok {
			return nil, newThrow(ev)
		}
		return nil, newThrow(runtime.NewError(runtime.ErrType, awaitErr.Error()))
	}
	return result, nil
}
