package interpreter

import (
	"github.com/latticelang/evaluator/pkg/ast"
	"github.com/latticelang/evaluator/pkg/runtime"
)

// bindMode parameterizes the pattern binder between declaring a fresh name
// and writing through to an existing one (spec.md §9: "implement the
// pattern binder as one recursive function parameterised by define vs
// assign; share the logic between variable declarations, assignment
// expressions, function parameters, and for-each bindings").
type bindMode int

const (
	bindDefine bindMode = iota
	bindAssign
)

func (i *Interpreter) bindOne(name string, v runtime.Value, env *runtime.Environment, mode bindMode) error {
	if mode == bindDefine {
		env.Define(name, v)
		return nil
	}
	if !env.Assign(name, v) {
		return fault(runtime.ErrReference, "assignment to undeclared variable: "+name)
	}
	return nil
}

// bindPattern recursively binds value against pattern (spec.md §4.5, C7).
// ctx is threaded through so computed keys that reference `this`/`super`
// resolve correctly inside a method activation.
func (i *Interpreter) bindPattern(pattern ast.Pattern, value runtime.Value, env *runtime.Environment, ctx *classContext, mode bindMode) error {
	switch p := pattern.(type) {
	case *ast.Identifier:
		return i.bindOne(p.Name, value, env, mode)

	case *ast.MemberExpression:
		if mode != bindAssign {
			return fault(runtime.ErrUnsupported, "member expression is not a valid declaration target")
		}
		return i.assignMember(p, value, env, ctx)

	case *ast.ObjectPattern:
		return i.bindObjectPattern(p, value, env, ctx, mode)

	case *ast.ArrayPattern:
		return i.bindArrayPattern(p, value, env, ctx, mode)

	case *ast.AssignmentPattern:
		return fault(runtime.ErrUnsupported, "default values in patterns are not supported")

	case *ast.RestElement:
		return fault(runtime.ErrUnsupported, "rest element is only valid as a pattern's terminal entry")

	default:
		return fault(runtime.ErrUnsupported, "unsupported pattern node")
	}
}

func (i *Interpreter) bindObjectPattern(p *ast.ObjectPattern, value runtime.Value, env *runtime.Environment, ctx *classContext, mode bindMode) error {
	obj, ok := value.(*runtime.ObjectValue)
	if !ok {
		if _, isUndef := value.(runtime.UndefinedValue); isUndef {
			return fault(runtime.ErrType, "cannot destructure undefined")
		}
		if _, isNull := value.(runtime.NullValue); isNull {
			return fault(runtime.ErrType, "cannot destructure null")
		}
		return fault(runtime.ErrType, "object pattern requires an object")
	}

	named := make(map[string]bool, len(p.Properties))
	for _, prop := range p.Properties {
		key, err := i.propertyKey(prop.Key, prop.Computed, env, ctx)
		if err != nil {
			return err
		}
		named[key] = true
		v, ok := obj.Resolve(key)
		if !ok {
			v = runtime.UndefinedValue{}
		}
		if err := i.bindPattern(prop.Value, v, env, ctx, mode); err != nil {
			return err
		}
	}
	if p.Rest != nil {
		rest := obj.Clone()
		for key := range named {
			rest.Delete(key)
		}
		if err := i.bindOne(p.Rest.Name, rest, env, mode); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) bindArrayPattern(p *ast.ArrayPattern, value runtime.Value, env *runtime.Environment, ctx *classContext, mode bindMode) error {
	elements, err := iterableElements(value)
	if err != nil {
		return err
	}

	for idx, elemPattern := range p.Elements {
		if elemPattern == nil {
			continue // hole: skip one source element
		}
		var v runtime.Value = runtime.UndefinedValue{}
		if idx < len(elements) {
			v = elements[idx]
		}
		if err := i.bindPattern(elemPattern, v, env, ctx, mode); err != nil {
			return err
		}
	}

	if p.Rest != nil {
		start := len(p.Elements)
		var tail []runtime.Value
		if start < len(elements) {
			tail = append(tail, elements[start:]...)
		}
		if err := i.bindPattern(p.Rest, &runtime.ArrayValue{Elements: tail}, env, ctx, mode); err != nil {
			return err
		}
	}
	return nil
}

// propertyKey resolves an object/pattern property key to its string form:
// non-computed identifiers use their literal name; computed keys (and
// non-identifier literal keys) are evaluated then stringified.
func (i *Interpreter) propertyKey(key ast.Expression, computed bool, env *runtime.Environment, ctx *classContext) (string, error) {
	if !computed {
		if id, ok := key.(*ast.Identifier); ok {
			return id.Name, nil
		}
		if lit, ok := key.(*ast.Literal); ok {
			return stringifyLiteralKey(lit), nil
		}
	}
	v, err := i.evalExpression(key, env, ctx)
	if err != nil {
		return "", err
	}
	return toStringKey(v), nil
}

func stringifyLiteralKey(lit *ast.Literal) string {
	switch lit.Value.(type) {
	case string:
		return lit.Value.(string)
	default:
		return toStringKey(literalToValue(lit))
	}
}
