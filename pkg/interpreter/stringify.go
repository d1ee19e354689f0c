package interpreter

import (
	"github.com/latticelang/evaluator/pkg/ast"
	"github.com/latticelang/evaluator/pkg/runtime"
)

// literalToValue converts a parsed Literal node to its runtime Value.
func literalToValue(lit *ast.Literal) runtime.Value {
	switch lit.Kind {
	case ast.LiteralString:
		return runtime.StringValue{Val: lit.Value.(string)}
	case ast.LiteralNumber:
		return runtime.NumberValue{Val: lit.Value.(float64)}
	case ast.LiteralBoolean:
		return runtime.BoolValue{Val: lit.Value.(bool)}
	case ast.LiteralNull:
		return runtime.NullValue{}
	default:
		return runtime.UndefinedValue{}
	}
}

// evalTemplateLiteral concatenates static chunks with stringified
// expression results in source order (spec.md §4.4: TemplateLiteral).
func (i *Interpreter) evalTemplateLiteral(n *ast.TemplateLiteral, env *runtime.Environment, ctx *classContext) (runtime.Value, error) {
	out := n.Quasis[0]
	for idx, expr := range n.Expressions {
		v, err := i.evalExpression(expr, env, ctx)
		if err != nil {
			return nil, err
		}
		out += toStringValue(v)
		out += n.Quasis[idx+1]
	}
	return runtime.StringValue{Val: out}, nil
}
