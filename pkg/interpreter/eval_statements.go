package interpreter

import (
	"github.com/latticelang/evaluator/pkg/ast"
	"github.com/latticelang/evaluator/pkg/runtime"
)

// Every evaluator entry point threads ctx, the call-scoped class context
// (spec.md §4.6, §9: "pass as an explicit current class context parameter
// through the evaluator's call graph rather than a process-wide mutable
// slot"), explicitly through the recursive descent instead of stashing it
// on the Interpreter. ctx is nil outside any method activation.

// evalStatement dispatches on node kind (spec.md §4.4). Every error
// returned from the inner switch is run through attachPosition so the
// innermost faulting statement stamps the diagnostic coordinates once,
// before the signal keeps bubbling.
func (i *Interpreter) evalStatement(node ast.Statement, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	v, err := i.dispatchStatement(node, env, ctx)
	if err != nil {
		return nil, attachPosition(err, node)
	}
	return v, nil
}

func (i *Interpreter) dispatchStatement(node ast.Statement, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		return i.evalExpression(n.Expression, env, ctx)

	case *ast.BlockStatement:
		return i.evalBlock(n, env, ctx)

	case *ast.VariableDeclaration:
		return i.evalVariableDeclaration(n, env, ctx)

	case *ast.FunctionDeclaration:
		fn := i.makeFunction(n.ID.Name, n.Params, n.Body, false, n.Async, env)
		env.Define(n.ID.Name, fn)
		return runtime.UndefinedValue{}, nil

	case *ast.ClassDeclaration:
		cls, err := i.evalClassDefinition(n.ID.Name, n.SuperClass, n.Body, env, ctx)
		if err != nil {
			return nil, err
		}
		env.Define(n.ID.Name, cls)
		return runtime.UndefinedValue{}, nil

	case *ast.ReturnStatement:
		var v runtime.Value = runtime.UndefinedValue{}
		if n.Argument != nil {
			var err error
			v, err = i.evalExpression(n.Argument, env, ctx)
			if err != nil {
				return nil, err
			}
		}
		return nil, returnSignal{Value: v}

	case *ast.BreakStatement:
		label := ""
		if n.Label != nil {
			label = n.Label.Name
		}
		return nil, breakSignal{Label: label}

	case *ast.ContinueStatement:
		label := ""
		if n.Label != nil {
			label = n.Label.Name
		}
		return nil, continueSignal{Label: label}

	case *ast.ThrowStatement:
		v, err := i.evalExpression(n.Argument, env, ctx)
		if err != nil {
			return nil, err
		}
		return nil, newThrow(v)

	case *ast.IfStatement:
		return i.evalIf(n, env, ctx)

	case *ast.WhileStatement:
		return i.evalWhile(n, env, ctx, "")

	case *ast.ForStatement:
		return i.evalFor(n, env, ctx, "")

	case *ast.ForInStatement:
		return i.evalForIn(n, env, ctx, "")

	case *ast.ForOfStatement:
		return i.evalForOf(n, env, ctx, "")

	case *ast.SwitchStatement:
		return i.evalSwitch(n, env, ctx, "")

	case *ast.TryStatement:
		return i.evalTry(n, env, ctx)

	case *ast.LabeledStatement:
		return i.evalLabeled(n, env, ctx)

	case *ast.Import, *ast.Export:
		return nil, fault(runtime.ErrUnsupported, "module nodes are not supported")

	default:
		return nil, fault(runtime.ErrUnsupported, "unsupported statement node")
	}
}

// evalBlock runs body in a fresh child environment, releasing it on every
// exit path (spec.md §4.1: "every activation frame must release its
// environment on all exit paths, including when propagating a control-flow
// signal").
func (i *Interpreter) evalBlock(block *ast.BlockStatement, parent *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	env := parent.Child()
	defer env.Release()
	return i.evalStatementsIn(block.Body, env, ctx)
}

func (i *Interpreter) evalStatementsIn(body []ast.Statement, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	var last runtime.Value = runtime.UndefinedValue{}
	for _, stmt := range body {
		v, err := i.evalStatement(stmt, env, ctx)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (i *Interpreter) evalVariableDeclaration(decl *ast.VariableDeclaration, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	for _, d := range decl.Declarations {
		var v runtime.Value = runtime.UndefinedValue{}
		if d.Init != nil {
			var err error
			v, err = i.evalExpression(d.Init, env, ctx)
			if err != nil {
				return nil, err
			}
		}
		if err := i.bindPattern(d.ID, v, env, ctx, bindDefine); err != nil {
			return nil, err
		}
	}
	return runtime.UndefinedValue{}, nil
}

func (i *Interpreter) evalIf(n *ast.IfStatement, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	test, err := i.evalExpression(n.Test, env, ctx)
	if err != nil {
		return nil, err
	}
	if truthy(test) {
		return i.evalStatement(n.Consequent, env, ctx)
	}
	if n.Alternate != nil {
		return i.evalStatement(n.Alternate, env, ctx)
	}
	return runtime.UndefinedValue{}, nil
}

// matchesLabel reports whether a break/continue signal targets the loop
// currently catching it: unlabelled signals always match; labelled signals
// match only the loop directly wrapped by a LabeledStatement of that name.
func matchesLabel(signalLabel, loopLabel string) bool {
	if signalLabel == "" {
		return true
	}
	return signalLabel == loopLabel
}

func (i *Interpreter) evalWhile(n *ast.WhileStatement, env *runtime.Environment, ctx *classContext, label string) (runtime.Value, error) {
	var last runtime.Value = runtime.UndefinedValue{}
	for {
		test, err := i.evalExpression(n.Test, env, ctx)
		if err != nil {
			return nil, err
		}
		if !truthy(test) {
			return last, nil
		}
		v, err := i.evalStatement(n.Body, env, ctx)
		if err != nil {
			if bs, ok := err.(breakSignal); ok && matchesLabel(bs.Label, label) {
				return last, nil
			}
			if cs, ok := err.(continueSignal); ok && matchesLabel(cs.Label, label) {
				continue
			}
			return nil, err
		}
		last = v
	}
}

func (i *Interpreter) evalFor(n *ast.ForStatement, parent *runtime.Environment, ctx *classContext, label string) (runtime.Value, error) {
	env := parent.Child()
	defer env.Release()

	if n.Init != nil {
		switch init := n.Init.(type) {
		case *ast.VariableDeclaration:
			if _, err := i.evalVariableDeclaration(init, env, ctx); err != nil {
				return nil, err
			}
		case ast.Expression:
			if _, err := i.evalExpression(init, env, ctx); err != nil {
				return nil, err
			}
		}
	}

	var last runtime.Value = runtime.UndefinedValue{}
	for {
		if n.Test != nil {
			test, err := i.evalExpression(n.Test, env, ctx)
			if err != nil {
				return nil, err
			}
			if !truthy(test) {
				return last, nil
			}
		}

		v, err := i.evalStatement(n.Body, env, ctx)
		if err != nil {
			if bs, ok := err.(breakSignal); ok && matchesLabel(bs.Label, label) {
				return last, nil
			}
			if cs, ok := err.(continueSignal); !ok || !matchesLabel(cs.Label, label) {
				return nil, err
			}
		} else {
			last = v
		}

		if n.Update != nil {
			if _, err := i.evalExpression(n.Update, env, ctx); err != nil {
				return nil, err
			}
		}
	}
}

func (i *Interpreter) evalForIn(n *ast.ForInStatement, parent *runtime.Environment, ctx *classContext, label string) (runtime.Value, error) {
	rightVal, err := i.evalExpression(n.Right, parent, ctx)
	if err != nil {
		return nil, err
	}
	obj, ok := rightVal.(*runtime.ObjectValue)
	if !ok {
		return nil, fault(runtime.ErrType, "for...in requires an object")
	}

	var last runtime.Value = runtime.UndefinedValue{}
	for _, key := range obj.OwnThenInherited() {
		env := parent.Child()
		if err := i.bindForEachTarget(n.Left, runtime.StringValue{Val: key}, env, ctx); err != nil {
			env.Release()
			return nil, err
		}
		v, err := i.evalStatement(n.Body, env, ctx)
		env.Release()
		if err != nil {
			if bs, ok := err.(breakSignal); ok && matchesLabel(bs.Label, label) {
				return last, nil
			}
			if cs, ok := err.(continueSignal); ok && matchesLabel(cs.Label, label) {
				continue
			}
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (i *Interpreter) evalForOf(n *ast.ForOfStatement, parent *runtime.Environment, ctx *classContext, label string) (runtime.Value, error) {
	rightVal, err := i.evalExpression(n.Right, parent, ctx)
	if err != nil {
		return nil, err
	}
	elements, err := iterableElements(rightVal)
	if err != nil {
		return nil, err
	}

	var last runtime.Value = runtime.UndefinedValue{}
	for _, elem := range elements {
		env := parent.Child()
		if err := i.bindForEachTarget(n.Left, elem, env, ctx); err != nil {
			env.Release()
			return nil, err
		}
		v, err := i.evalStatement(n.Body, env, ctx)
		env.Release()
		if err != nil {
			if bs, ok := err.(breakSignal); ok && matchesLabel(bs.Label, label) {
				return last, nil
			}
			if cs, ok := err.(continueSignal); ok && matchesLabel(cs.Label, label) {
				continue
			}
			return nil, err
		}
		last = v
	}
	return last, nil
}

// bindForEachTarget binds one iteration's value per n.Left, which is either
// a single-declarator VariableDeclaration or a bare assignment-target
// pattern (spec.md §6: "Left is one of *VariableDeclaration (single
// declarator) or a bare Pattern").
func (i *Interpreter) bindForEachTarget(left ast.Node, v runtime.Value, env *runtime.Environment, ctx *classContext) error {
	switch l := left.(type) {
	case *ast.VariableDeclaration:
		if len(l.Declarations) != 1 {
			return fault(runtime.ErrUnsupported, "for-each declaration must declare exactly one binding")
		}
		return i.bindPattern(l.Declarations[0].ID, v, env, ctx, bindDefine)
	case ast.Pattern:
		return i.bindPattern(l, v, env, ctx, bindAssign)
	default:
		return fault(runtime.ErrUnsupported, "unsupported for-each target")
	}
}

// evalSwitch implements signal-based fallthrough (SPEC_FULL.md Open
// Questions decision (b)): once a case test matches, every subsequent case
// body runs in source order until an unlabelled Break signal is caught —
// not an early return on the first Break seen.
func (i *Interpreter) evalSwitch(n *ast.SwitchStatement, parent *runtime.Environment, ctx *classContext, label string) (runtime.Value, error) {
	disc, err := i.evalExpression(n.Discriminant, parent, ctx)
	if err != nil {
		return nil, err
	}
	env := parent.Child()
	defer env.Release()

	matchIdx := -1
	defaultIdx := -1
	for idx, c := range n.Cases {
		if c.Test == nil {
			defaultIdx = idx
			continue
		}
		testVal, err := i.evalExpression(c.Test, env, ctx)
		if err != nil {
			return nil, err
		}
		if strictEquals(disc, testVal) {
			matchIdx = idx
			break
		}
	}
	if matchIdx == -1 {
		matchIdx = defaultIdx
	}
	if matchIdx == -1 {
		return runtime.UndefinedValue{}, nil
	}

	var last runtime.Value = runtime.UndefinedValue{}
	for idx := matchIdx; idx < len(n.Cases); idx++ {
		v, err := i.evalStatementsIn(n.Cases[idx].Consequent, env, ctx)
		if err != nil {
			if bs, ok := err.(breakSignal); ok && matchesLabel(bs.Label, label) {
				return last, nil
			}
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (i *Interpreter) evalTry(n *ast.TryStatement, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	result, tryErr := i.evalBlock(n.Block, env, ctx)

	if tryErr != nil {
		if ts, ok := tryErr.(throwSignal); ok && n.Handler != nil {
			handlerEnv := env.Child()
			if n.Handler.Param != nil {
				if err := i.bindPattern(n.Handler.Param, ts.Value, handlerEnv, ctx, bindDefine); err != nil {
					handlerEnv.Release()
					return nil, err
				}
			}
			result, tryErr = i.evalStatementsIn(n.Handler.Body.Body, handlerEnv, ctx)
			handlerEnv.Release()
		}
	}

	if n.Finalizer != nil {
		finResult, finErr := i.evalBlock(n.Finalizer, env, ctx)
		if finErr != nil {
			// "signals from the finaliser supersede any pending signal
			// from try/handler" (spec.md §4.4).
			return nil, finErr
		}
		_ = finResult
	}

	return result, tryErr
}

func (i *Interpreter) evalLabeled(n *ast.LabeledStatement, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	label := n.Label.Name
	i.labels = append(i.labels, label)
	defer func() { i.labels = i.labels[:len(i.labels)-1] }()

	switch body := n.Body.(type) {
	case *ast.WhileStatement:
		return i.evalWhile(body, env, ctx, label)
	case *ast.ForStatement:
		return i.evalFor(body, env, ctx, label)
	case *ast.ForInStatement:
		return i.evalForIn(body, env, ctx, label)
	case *ast.ForOfStatement:
		return i.evalForOf(body, env, ctx, label)
	case *ast.SwitchStatement:
		return i.evalSwitch(body, env, ctx, label)
	default:
		v, err := i.evalStatement(n.Body, env, ctx)
		if err != nil {
			if bs, ok := err.(breakSignal); ok && bs.Label == label {
				return v, nil
			}
			return nil, err
		}
		return v, nil
	}
}
