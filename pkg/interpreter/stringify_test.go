package interpreter

import (
	"testing"

	"github.com/latticelang/evaluator/pkg/ast"
	"github.com/latticelang/evaluator/pkg/runtime"
)

func TestTemplateLiteralInterleavesQuasisAndStringifiedExpressions(t *testing.T) {
	// `count: ${1 + 2} items, active: ${true}`
	tpl := &ast.TemplateLiteral{
		Quasis:      []string{"count: ", " items, active: ", ""},
		Expressions: []ast.Expression{ast.Bin("+", ast.Num(1), ast.Num(2)), ast.Bool(true)},
	}
	prog := ast.Prog(ast.ExprStmt(tpl))
	result := evalProgram(t, prog, nil)
	sv, ok := result.(runtime.StringValue)
	if !ok || sv.Val != "count: 3 items, active: true" {
		t.Fatalf("expected 'count: 3 items, active: true', got %#v", result)
	}
}

func TestTemplateLiteralWithNoExpressionsReturnsFirstQuasi(t *testing.T) {
	tpl := &ast.TemplateLiteral{Quasis: []string{"plain text"}}
	prog := ast.Prog(ast.ExprStmt(tpl))
	result := evalProgram(t, prog, nil)
	sv, ok := result.(runtime.StringValue)
	if !ok || sv.Val != "plain text" {
		t.Fatalf("expected 'plain text', got %#v", result)
	}
}

func TestLiteralToValueConvertsEachKind(t *testing.T) {
	cases := []struct {
		lit  *ast.Literal
		want runtime.Value
	}{
		{&ast.Literal{Kind: ast.LiteralString, Value: "hi"}, runtime.StringValue{Val: "hi"}},
		{&ast.Literal{Kind: ast.LiteralNumber, Value: 3.5}, runtime.NumberValue{Val: 3.5}},
		{&ast.Literal{Kind: ast.LiteralBoolean, Value: true}, runtime.BoolValue{Val: true}},
		{&ast.Literal{Kind: ast.LiteralNull}, runtime.NullValue{}},
	}
	for _, c := range cases {
		if got := literalToValue(c.lit); got != c.want {
			t.Errorf("literalToValue(%#v) = %#v, want %#v", c.lit, got, c.want)
		}
	}
}
