package ast

// Builder helpers for hand-assembling trees in tests without a parser,
// mirroring the teacher corpus's ast.Str/ast.Int/ast.Block convention.

func Prog(body ...Statement) *Program {
	return &Program{Body: body}
}

func ExprStmt(e Expression) *ExpressionStatement {
	return &ExpressionStatement{Expression: e}
}

func Block(body ...Statement) *BlockStatement {
	return &BlockStatement{Body: body}
}

func Str(v string) *Literal {
	return &Literal{Kind: LiteralString, Value: v}
}

func Num(v float64) *Literal {
	return &Literal{Kind: LiteralNumber, Value: v}
}

func Bool(v bool) *Literal {
	return &Literal{Kind: LiteralBoolean, Value: v}
}

func Null() *Literal {
	return &Literal{Kind: LiteralNull, Value: nil}
}

func ID(name string) *Identifier {
	return &Identifier{Name: name}
}

func This() *ThisExpression { return &ThisExpression{} }

func Bin(op string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{Operator: op, Left: left, Right: right}
}

func Logical(op string, left, right Expression) *LogicalExpression {
	return &LogicalExpression{Operator: op, Left: left, Right: right}
}

func Unary(op string, arg Expression) *UnaryExpression {
	return &UnaryExpression{Operator: op, Argument: arg, Prefix: true}
}

// Let declares a single binding and wraps it as a statement.
func Let(name string, init Expression) *VariableDeclaration {
	return &VariableDeclaration{
		Kind: "let",
		Declarations: []*VariableDeclarator{
			{ID: ID(name), Init: init},
		},
	}
}

// AssignExpr builds a plain `target = value` assignment expression.
func AssignExpr(target Node, value Expression) *AssignmentExpression {
	return &AssignmentExpression{Operator: "=", Left: target, Right: value}
}

func Call(callee Expression, args ...Expression) *CallExpression {
	return &CallExpression{Callee: callee, Arguments: args}
}

func New(callee Expression, args ...Expression) *NewExpression {
	return &NewExpression{Callee: callee, Arguments: args}
}

func Member(object Expression, name string) *MemberExpression {
	return &MemberExpression{Object: object, Property: ID(name), Computed: false}
}

func Index(object, index Expression) *MemberExpression {
	return &MemberExpression{Object: object, Property: index, Computed: true}
}

func Arr(elements ...Expression) *ArrayExpression {
	return &ArrayExpression{Elements: elements}
}

func Obj(props ...ObjectMember) *ObjectExpression {
	return &ObjectExpression{Properties: props}
}

func Prop(key string, value Expression) *Property {
	return &Property{Key: ID(key), Value: value}
}

func Spread(arg Expression) *SpreadElement {
	return &SpreadElement{Argument: arg}
}

func Rest(p Pattern) *RestElement {
	return &RestElement{Argument: p}
}

func Fn(name string, params []Pattern, body *BlockStatement) *FunctionDeclaration {
	var id *Identifier
	if name != "" {
		id = ID(name)
	}
	return &FunctionDeclaration{ID: id, Params: params, Body: body}
}

func Arrow(params []Pattern, body Expression) *ArrowFunctionExpression {
	return &ArrowFunctionExpression{Params: params, Body: body, ExpressionBody: true}
}

func Ret(arg Expression) *ReturnStatement { return &ReturnStatement{Argument: arg} }

func If(test Expression, then Statement, alt Statement) *IfStatement {
	return &IfStatement{Test: test, Consequent: then, Alternate: alt}
}

func While(test Expression, body Statement) *WhileStatement {
	return &WhileStatement{Test: test, Body: body}
}

func Mod(body ...Statement) *Program { return Prog(body...) }
