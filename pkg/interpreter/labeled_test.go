package interpreter

import (
	"testing"

	"github.com/latticelang/evaluator/pkg/ast"
	"github.com/latticelang/evaluator/pkg/runtime"
)

func TestLabeledContinueResumesTheOuterLoop(t *testing.T) {
	// outer: for (let i = 0; i < 3; i = i + 1) {
	//   for (let j = 0; j < 3; j = j + 1) {
	//     if (j == 1) { continue outer; }
	//     count = count + 1;
	//   }
	// }
	innerFor := &ast.ForStatement{
		Init:   ast.Let("j", ast.Num(0)),
		Test:   ast.Bin("<", ast.ID("j"), ast.Num(3)),
		Update: ast.AssignExpr(ast.ID("j"), ast.Bin("+", ast.ID("j"), ast.Num(1))),
		Body: ast.Block(
			ast.If(
				ast.Bin("==", ast.ID("j"), ast.Num(1)),
				ast.Block(&ast.ContinueStatement{Label: ast.ID("outer")}),
				nil,
			),
			ast.ExprStmt(ast.AssignExpr(ast.ID("count"), ast.Bin("+", ast.ID("count"), ast.Num(1)))),
		),
	}
	outerFor := &ast.ForStatement{
		Init:   ast.Let("i", ast.Num(0)),
		Test:   ast.Bin("<", ast.ID("i"), ast.Num(3)),
		Update: ast.AssignExpr(ast.ID("i"), ast.Bin("+", ast.ID("i"), ast.Num(1))),
		Body:   ast.Block(innerFor),
	}
	labeled := &ast.LabeledStatement{Label: ast.ID("outer"), Body: outerFor}

	prog := ast.Prog(ast.Let("count", ast.Num(0)), labeled, ast.ExprStmt(ast.ID("count")))
	result := evalProgram(t, prog, nil)
	nv, ok := result.(runtime.NumberValue)
	if !ok || nv.Val != 3 {
		t.Fatalf("expected one increment per outer iteration (3), got %#v", result)
	}
}

func TestLabeledBreakExitsTheLabeledLoopFromNestedBody(t *testing.T) {
	// outer: for (let i = 0; i < 5; i = i + 1) {
	//   for (let j = 0; j < 5; j = j + 1) {
	//     if (i == 2) { break outer; }
	//     count = count + 1;
	//   }
	// }
	innerFor := &ast.ForStatement{
		Init:   ast.Let("j", ast.Num(0)),
		Test:   ast.Bin("<", ast.ID("j"), ast.Num(5)),
		Update: ast.AssignExpr(ast.ID("j"), ast.Bin("+", ast.ID("j"), ast.Num(1))),
		Body: ast.Block(
			ast.If(
				ast.Bin("==", ast.ID("i"), ast.Num(2)),
				ast.Block(&ast.BreakStatement{Label: ast.ID("outer")}),
				nil,
			),
			ast.ExprStmt(ast.AssignExpr(ast.ID("count"), ast.Bin("+", ast.ID("count"), ast.Num(1)))),
		),
	}
	outerFor := &ast.ForStatement{
		Init:   ast.Let("i", ast.Num(0)),
		Test:   ast.Bin("<", ast.ID("i"), ast.Num(5)),
		Update: ast.AssignExpr(ast.ID("i"), ast.Bin("+", ast.ID("i"), ast.Num(1))),
		Body:   ast.Block(innerFor),
	}
	labeled := &ast.LabeledStatement{Label: ast.ID("outer"), Body: outerFor}

	prog := ast.Prog(ast.Let("count", ast.Num(0)), labeled, ast.ExprStmt(ast.ID("count")))
	result := evalProgram(t, prog, nil)
	// i=0: j=0..4 all increment (5); i=1: same (5); i=2: j=0 breaks outer immediately.
	nv, ok := result.(runtime.NumberValue)
	if !ok || nv.Val != 10 {
		t.Fatalf("expected count == 10 (5 per outer pass for i=0,1, then break), got %#v", result)
	}
}
