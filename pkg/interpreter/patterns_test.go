package interpreter

import (
	"testing"

	"github.com/latticelang/evaluator/pkg/ast"
	"github.com/latticelang/evaluator/pkg/runtime"
)

func TestBindObjectPatternBindsNamedKeysAndRest(t *testing.T) {
	// let { a, b, ...rest } = { a: 1, b: 2, c: 3, d: 4 };
	pattern := &ast.ObjectPattern{
		Properties: []*ast.ObjectPatternProperty{
			{Key: ast.ID("a"), Value: ast.ID("a")},
			{Key: ast.ID("b"), Value: ast.ID("b")},
		},
		Rest: ast.ID("rest"),
	}
	obj := runtime.NewObject(nil)
	obj.Set("a", runtime.NumberValue{Val: 1})
	obj.Set("b", runtime.NumberValue{Val: 2})
	obj.Set("c", runtime.NumberValue{Val: 3})
	obj.Set("d", runtime.NumberValue{Val: 4})

	interp := New()
	env := runtime.NewEnvironment(nil)
	defer env.Release()
	if err := interp.bindPattern(pattern, obj, env, nil, bindDefine); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := env.Lookup("a")
	if nv, ok := a.(runtime.NumberValue); !ok || nv.Val != 1 {
		t.Fatalf("expected a == 1, got %#v", a)
	}
	restVal, _ := env.Lookup("rest")
	restObj, ok := restVal.(*runtime.ObjectValue)
	if !ok {
		t.Fatalf("expected rest to bind an object, got %#v", restVal)
	}
	if _, has := restObj.Get("a"); has {
		t.Fatalf("expected rest to exclude the named key 'a'")
	}
	if v, has := restObj.Get("c"); !has {
		t.Fatalf("expected rest to include unnamed key 'c'")
	} else if nv, ok := v.(runtime.NumberValue); !ok || nv.Val != 3 {
		t.Fatalf("expected rest.c == 3, got %#v", v)
	}
}

func TestBindObjectPatternOnUndefinedIsTypeError(t *testing.T) {
	pattern := &ast.ObjectPattern{Properties: []*ast.ObjectPatternProperty{{Key: ast.ID("a"), Value: ast.ID("a")}}}
	interp := New()
	env := runtime.NewEnvironment(nil)
	defer env.Release()
	err := interp.bindPattern(pattern, runtime.UndefinedValue{}, env, nil, bindDefine)
	if err == nil {
		t.Fatalf("expected a TypeError destructuring undefined")
	}
	ts, ok := err.(throwSignal)
	if !ok || ts.Fault.ErrKind != runtime.ErrType {
		t.Fatalf("expected a throwSignal carrying an ErrType fault, got %#v", err)
	}
}

func TestBindArrayPatternBindsElementsHolesAndRest(t *testing.T) {
	// let [a, , ...rest] = [1, 2, 3, 4];
	pattern := &ast.ArrayPattern{
		Elements: []ast.Pattern{ast.ID("a"), nil},
		Rest:     ast.ID("rest"),
	}
	arr := &runtime.ArrayValue{Elements: []runtime.Value{
		runtime.NumberValue{Val: 1},
		runtime.NumberValue{Val: 2},
		runtime.NumberValue{Val: 3},
		runtime.NumberValue{Val: 4},
	}}

	interp := New()
	env := runtime.NewEnvironment(nil)
	defer env.Release()
	if err := interp.bindPattern(pattern, arr, env, nil, bindDefine); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := env.Lookup("a")
	if nv, ok := a.(runtime.NumberValue); !ok || nv.Val != 1 {
		t.Fatalf("expected a == 1, got %#v", a)
	}
	restVal, _ := env.Lookup("rest")
	restArr, ok := restVal.(*runtime.ArrayValue)
	if !ok || len(restArr.Elements) != 2 {
		t.Fatalf("expected rest == [3, 4], got %#v", restVal)
	}
	if nv, ok := restArr.Elements[0].(runtime.NumberValue); !ok || nv.Val != 3 {
		t.Fatalf("expected rest[0] == 3, got %#v", restArr.Elements[0])
	}
}

func TestBindArrayPatternShortOnElementsBindsUndefined(t *testing.T) {
	pattern := &ast.ArrayPattern{Elements: []ast.Pattern{ast.ID("a"), ast.ID("b")}}
	arr := &runtime.ArrayValue{Elements: []runtime.Value{runtime.NumberValue{Val: 1}}}

	interp := New()
	env := runtime.NewEnvironment(nil)
	defer env.Release()
	if err := interp.bindPattern(pattern, arr, env, nil, bindDefine); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := env.Lookup("b")
	if _, ok := b.(runtime.UndefinedValue); !ok {
		t.Fatalf("expected b == undefined when the source array is short, got %#v", b)
	}
}

func TestBindMemberExpressionPatternRequiresAssignMode(t *testing.T) {
	target := ast.Member(ast.This(), "x")
	interp := New()
	env := runtime.NewEnvironment(nil)
	defer env.Release()
	err := interp.bindPattern(target, runtime.NumberValue{Val: 1}, env, nil, bindDefine)
	if err == nil {
		t.Fatalf("expected a member expression to be rejected as a declaration target")
	}
}

func TestSpreadInArrayLiteralFlattensIterable(t *testing.T) {
	// let a = [1, 2]; let b = [0, ...a, 3];
	prog := ast.Prog(
		ast.Let("a", ast.Arr(ast.Num(1), ast.Num(2))),
		ast.Let("b", &ast.ArrayExpression{Elements: []ast.Expression{
			ast.Num(0),
			&ast.SpreadElement{Argument: ast.ID("a")},
			ast.Num(3),
		}}),
		ast.ExprStmt(ast.Member(ast.ID("b"), "length")),
	)
	result := evalProgram(t, prog, nil)
	nv, ok := result.(runtime.NumberValue)
	if !ok || nv.Val != 4 {
		t.Fatalf("expected spread to flatten to length 4, got %#v", result)
	}
}

func TestSpreadInCallArgumentsFlattensIterable(t *testing.T) {
	// function sum3(a, b, c) { return a + b + c; } let nums = [1, 2, 3]; sum3(...nums)
	fnDecl := ast.Fn("sum3", []ast.Pattern{ast.ID("a"), ast.ID("b"), ast.ID("c")}, ast.Block(
		ast.Ret(ast.Bin("+", ast.Bin("+", ast.ID("a"), ast.ID("b")), ast.ID("c"))),
	))
	prog := ast.Prog(
		fnDecl,
		ast.Let("nums", ast.Arr(ast.Num(1), ast.Num(2), ast.Num(3))),
		ast.ExprStmt(&ast.CallExpression{
			Callee:    ast.ID("sum3"),
			Arguments: []ast.Expression{&ast.SpreadElement{Argument: ast.ID("nums")}},
		}),
	)
	result := evalProgram(t, prog, nil)
	nv, ok := result.(runtime.NumberValue)
	if !ok || nv.Val != 6 {
		t.Fatalf("expected 1+2+3=6, got %#v", result)
	}
}
