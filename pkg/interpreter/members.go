package interpreter

import (
	"github.com/latticelang/evaluator/pkg/ast"
	"github.com/latticelang/evaluator/pkg/runtime"
)

// evalMember resolves a MemberExpression (spec.md §4.4): non-computed uses
// the property name literally; computed evaluates and stringifies the
// index expression. Faults on access against null/undefined.
func (i *Interpreter) evalMember(n *ast.MemberExpression, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	if _, ok := n.Object.(*ast.Super); ok {
		if ctx == nil || ctx.class == nil {
			return nil, fault(runtime.ErrType, "super used outside a method")
		}
		key, err := i.propertyKey(n.Property, n.Computed, env, ctx)
		if err != nil {
			return nil, err
		}
		fn, err := i.resolveSuperMethod(key, ctx)
		if err != nil {
			return nil, err
		}
		return fn, nil
	}

	objVal, err := i.evalExpression(n.Object, env, ctx)
	if err != nil {
		return nil, err
	}
	key, err := i.propertyKey(n.Property, n.Computed, env, ctx)
	if err != nil {
		return nil, err
	}
	return i.getMember(objVal, key)
}

func (i *Interpreter) getMember(objVal runtime.Value, key string) (runtime.Value, error) {
	switch obj := objVal.(type) {
	case runtime.UndefinedValue:
		return nil, fault(runtime.ErrType, "cannot read property '"+key+"' of undefined")
	case runtime.NullValue:
		return nil, fault(runtime.ErrType, "cannot read property '"+key+"' of null")
	case *runtime.ObjectValue:
		v, ok := obj.Resolve(key)
		if !ok {
			return runtime.UndefinedValue{}, nil
		}
		if fn, ok := v.(*runtime.FunctionValue); ok && !fn.IsArrow {
			return fn.Bind(obj, fn.Super), nil
		}
		return v, nil
	case *runtime.ArrayValue:
		if key == "length" {
			return runtime.NumberValue{Val: float64(len(obj.Elements))}, nil
		}
		if idx, ok := arrayIndex(key); ok && idx >= 0 && idx < len(obj.Elements) {
			return obj.Elements[idx], nil
		}
		return runtime.UndefinedValue{}, nil
	case runtime.StringValue:
		if key == "length" {
			return runtime.NumberValue{Val: float64(len([]rune(obj.Val)))}, nil
		}
		if idx, ok := arrayIndex(key); ok {
			runes := []rune(obj.Val)
			if idx >= 0 && idx < len(runes) {
				return runtime.StringValue{Val: string(runes[idx])}, nil
			}
		}
		return runtime.UndefinedValue{}, nil
	case *runtime.ClassValue:
		fn, ok := obj.LookupStaticMethod(key)
		if !ok {
			return runtime.UndefinedValue{}, nil
		}
		return fn.Bind(obj, fn.Super), nil
	default:
		return runtime.UndefinedValue{}, nil
	}
}

func arrayIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	n := 0
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// setMember writes a property (used by AssignmentExpression when the
// target is a non-computed/computed MemberExpression).
func (i *Interpreter) setMember(objVal runtime.Value, key string, v runtime.Value) error {
	switch obj := objVal.(type) {
	case runtime.UndefinedValue:
		return fault(runtime.ErrType, "cannot set property '"+key+"' of undefined")
	case runtime.NullValue:
		return fault(runtime.ErrType, "cannot set property '"+key+"' of null")
	case *runtime.ObjectValue:
		obj.Set(key, v)
		return nil
	case *runtime.ArrayValue:
		if idx, ok := arrayIndex(key); ok {
			for len(obj.Elements) <= idx {
				obj.Elements = append(obj.Elements, runtime.UndefinedValue{})
			}
			obj.Elements[idx] = v
			return nil
		}
		return fault(runtime.ErrType, "invalid array index: "+key)
	default:
		return fault(runtime.ErrType, "cannot set property on this value kind")
	}
}

// assignMember evaluates the object and key of a MemberExpression
// assignment target and writes through setMember.
func (i *Interpreter) assignMember(n *ast.MemberExpression, v runtime.Value, env *runtime.Environment, ctx *classContext) error {
	objVal, err := i.evalExpression(n.Object, env, ctx)
	if err != nil {
		return err
	}
	key, err := i.propertyKey(n.Property, n.Computed, env, ctx)
	if err != nil {
		return err
	}
	return i.setMember(objVal, key, v)
}
