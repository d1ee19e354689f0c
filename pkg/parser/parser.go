// Package parser is the reference recursive-descent parser feeding
// pkg/interpreter's Parser interface. It has no dependency on the
// evaluator; it only produces pkg/ast trees.
package parser

import (
	"fmt"

	"github.com/latticelang/evaluator/pkg/ast"
	"github.com/latticelang/evaluator/pkg/lexer"
)

// Parser consumes a flat token slice produced by pkg/lexer and builds an
// *ast.Program. Precedence climbing handles binary/logical operators; a
// small set of mutually recursive methods (statement/expression/pattern)
// otherwise drives the grammar, in the conventional hand-written style.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// Parse lexes and parses source into a program. It is a plain function;
// the value returned by New is what satisfies interpreter.Parser.
func Parse(source string) (*ast.Program, error) {
	toks, err := lexer.New(source).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	return p.parseProgram()
}

// thisParser implements interpreter.Parser as a value so callers who want
// the interface shape (rather than the bare function) can use parser.New().
type thisParser struct{}

func New() thisParser { return thisParser{} }

func (thisParser) Parse(source string) (*ast.Program, error) { return Parse(source) }

//-----------------------------------------------------------------------------
// token cursor helpers
//-----------------------------------------------------------------------------

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) at(tt lexer.TokenType) bool { return p.cur().Type == tt }

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt lexer.TokenType, what string) (lexer.Token, error) {
	if !p.at(tt) {
		return lexer.Token{}, p.errorf("expected %s", what)
	}
	return p.advance(), nil
}

func (p *Parser) match(tt lexer.TokenType) bool {
	if p.at(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorf(format string, args ...any) error {
	t := p.cur()
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("parse error at %d:%d: %s (found %q)", t.Line, t.Col, msg, t.Lexeme)
}

func span(startTok lexer.Token) ast.Span {
	return ast.Span{Start: ast.Position{Line: startTok.Line, Column: startTok.Col}}
}

func withSpan[N ast.Node](n N, start lexer.Token) N {
	n.SetSpan(span(start))
	return n
}

//-----------------------------------------------------------------------------
// Program & statements
//-----------------------------------------------------------------------------

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.at(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, stmt)
	}
	return prog, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	start := p.cur()
	switch start.Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.LET, lexer.CONST:
		return p.parseVariableDeclaration()
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration(false)
	case lexer.ASYNC:
		if p.toks[p.pos+1].Type == lexer.FUNCTION {
			p.advance()
			return p.parseFunctionDeclaration(true)
		}
	case lexer.CLASS:
		return p.parseClassDeclaration()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.BREAK:
		return p.parseBreak()
	case lexer.CONTINUE:
		return p.parseContinue()
	case lexer.THROW:
		return p.parseThrow()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.SWITCH:
		return p.parseSwitch()
	case lexer.TRY:
		return p.parseTry()
	case lexer.IMPORT:
		p.advance()
		for !p.at(lexer.SEMI) && !p.at(lexer.EOF) {
			p.advance()
		}
		p.match(lexer.SEMI)
		return withSpan(&ast.Import{}, start), nil
	case lexer.EXPORT:
		p.advance()
		decl, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return withSpan(&ast.Export{Declaration: decl}, start), nil
	case lexer.SEMI:
		p.advance()
		return withSpan(&ast.BlockStatement{}, start), nil
	}

	if id, ok := p.tryLabeledStatement(); ok {
		return id, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.match(lexer.SEMI)
	return withSpan(&ast.ExpressionStatement{Expression: expr}, start), nil
}

func (p *Parser) tryLabeledStatement() (ast.Statement, bool) {
	if !p.at(lexer.IDENT) {
		return nil, false
	}
	save := p.pos
	start := p.cur()
	name := p.advance().Lexeme
	if !p.at(lexer.COLON) {
		p.pos = save
		return nil, false
	}
	p.advance()
	body, err := p.parseStatement()
	if err != nil {
		p.pos = save
		return nil, false
	}
	return withSpan(&ast.LabeledStatement{Label: ast.ID(name), Body: body}, start), true
}

func (p *Parser) parseBlock() (*ast.BlockStatement, error) {
	start, err := p.expect(lexer.LBRACE, "'{'")
	if err != nil {
		return nil, err
	}
	blk := &ast.BlockStatement{}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		blk.Body = append(blk.Body, stmt)
	}
	if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return withSpan(blk, start), nil
}

func (p *Parser) parseVariableDeclaration() (*ast.VariableDeclaration, error) {
	start := p.advance()
	kind := start.Lexeme
	decl := &ast.VariableDeclaration{Kind: kind}
	for {
		pattern, err := p.parseBindingTarget()
		if err != nil {
			return nil, err
		}
		var init ast.Expression
		if p.match(lexer.ASSIGN) {
			init, err = p.parseAssignmentExpr()
			if err != nil {
				return nil, err
			}
		}
		decl.Declarations = append(decl.Declarations, &ast.VariableDeclarator{ID: pattern, Init: init})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.match(lexer.SEMI)
	return withSpan(decl, start), nil
}

func (p *Parser) parseFunctionDeclaration(async bool) (*ast.FunctionDeclaration, error) {
	start, err := p.expect(lexer.FUNCTION, "'function'")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.IDENT, "function name")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return withSpan(&ast.FunctionDeclaration{ID: ast.ID(nameTok.Lexeme), Params: params, Body: body, Async: async}, start), nil
}

func (p *Parser) parseParamList() ([]ast.Pattern, error) {
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var params []ast.Pattern
	for !p.at(lexer.RPAREN) {
		if p.match(lexer.ELLIPSIS) {
			target, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			params = append(params, &ast.RestElement{Argument: target})
		} else {
			target, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			if p.at(lexer.ASSIGN) {
				return nil, p.errorf("default parameter values are not supported")
			}
			params = append(params, target)
		}
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseClassDeclaration() (*ast.ClassDeclaration, error) {
	start, id, super, body, err := p.parseClassCore()
	if err != nil {
		return nil, err
	}
	return withSpan(&ast.ClassDeclaration{ID: id, SuperClass: super, Body: body}, start), nil
}

func (p *Parser) parseClassCore() (lexer.Token, *ast.Identifier, ast.Expression, []*ast.MethodDefinition, error) {
	start, err := p.expect(lexer.CLASS, "'class'")
	if err != nil {
		return start, nil, nil, nil, err
	}
	var id *ast.Identifier
	if p.at(lexer.IDENT) {
		id = ast.ID(p.advance().Lexeme)
	}
	var super ast.Expression
	if p.match(lexer.EXTENDS) {
		super, err = p.parseUnaryExpr()
		if err != nil {
			return start, nil, nil, nil, err
		}
	}
	if _, err := p.expect(lexer.LBRACE, "'{'"); err != nil {
		return start, nil, nil, nil, err
	}
	var methods []*ast.MethodDefinition
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.match(lexer.SEMI) {
			continue
		}
		m, err := p.parseMethodDefinition()
		if err != nil {
			return start, nil, nil, nil, err
		}
		methods = append(methods, m)
	}
	if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
		return start, nil, nil, nil, err
	}
	return start, id, super, methods, nil
}

func (p *Parser) parseMethodDefinition() (*ast.MethodDefinition, error) {
	start := p.cur()

	isStatic := false
	if p.at(lexer.IDENT) && p.cur().Lexeme == "static" {
		isStatic = true
		p.advance()
	}
	async := p.match(lexer.ASYNC)

	keyTok := p.cur()
	var key ast.Expression
	computed := false
	if p.match(lexer.LBRACKET) {
		computed = true
		k, err := p.parseAssignmentExpr()
		if err != nil {
			return nil, err
		}
		key = k
		if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
			return nil, err
		}
	} else {
		name, err := p.parsePropertyName()
		if err != nil {
			return nil, err
		}
		key = ast.ID(name)
	}

	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	kind := "method"
	if !computed && !isStatic {
		if id, ok := key.(*ast.Identifier); ok && id.Name == "constructor" {
			kind = "constructor"
		}
	}

	fn := withSpan(&ast.FunctionExpression{Params: params, Body: body, Async: async}, keyTok)
	return withSpan(&ast.MethodDefinition{Key: key, Computed: computed, Kind: kind, Static: isStatic, Value: fn}, start), nil
}

func (p *Parser) parsePropertyName() (string, error) {
	switch {
	case p.at(lexer.IDENT):
		return p.advance().Lexeme, nil
	case p.at(lexer.STRING):
		return p.advance().Literal.(string), nil
	default:
		// allow keywords as property names (e.g. `class: C`)
		t := p.advance()
		if t.Lexeme == "" {
			return "", p.errorf("expected property name")
		}
		return t.Lexeme, nil
	}
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	start := p.advance()
	var arg ast.Expression
	if !p.at(lexer.SEMI) && !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		a, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		arg = a
	}
	p.match(lexer.SEMI)
	return withSpan(&ast.ReturnStatement{Argument: arg}, start), nil
}

func (p *Parser) parseBreak() (ast.Statement, error) {
	start := p.advance()
	var label *ast.Identifier
	if p.at(lexer.IDENT) {
		label = ast.ID(p.advance().Lexeme)
	}
	p.match(lexer.SEMI)
	return withSpan(&ast.BreakStatement{Label: label}, start), nil
}

func (p *Parser) parseContinue() (ast.Statement, error) {
	start := p.advance()
	var label *ast.Identifier
	if p.at(lexer.IDENT) {
		label = ast.ID(p.advance().Lexeme)
	}
	p.match(lexer.SEMI)
	return withSpan(&ast.ContinueStatement{Label: label}, start), nil
}

func (p *Parser) parseThrow() (ast.Statement, error) {
	start := p.advance()
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.match(lexer.SEMI)
	return withSpan(&ast.ThrowStatement{Argument: arg}, start), nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	start := p.advance()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	cons, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var alt ast.Statement
	if p.match(lexer.ELSE) {
		alt, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return withSpan(&ast.IfStatement{Test: test, Consequent: cons, Alternate: alt}, start), nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	start := p.advance()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return withSpan(&ast.WhileStatement{Test: test, Body: body}, start), nil
}

// parseFor disambiguates ForStatement/ForInStatement/ForOfStatement by
// scanning past the Init clause for `in`/`of`.
func (p *Parser) parseFor() (ast.Statement, error) {
	start := p.advance()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}

	if p.at(lexer.SEMI) {
		p.advance()
		return p.finishPlainFor(start, nil)
	}

	if p.at(lexer.LET) || p.at(lexer.CONST) {
		kind := p.advance().Lexeme
		target, err := p.parseBindingTarget()
		if err != nil {
			return nil, err
		}
		if p.at(lexer.IN) || p.at(lexer.OF) {
			isOf := p.at(lexer.OF)
			p.advance()
			right, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
				return nil, err
			}
			body, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			left := &ast.VariableDeclaration{Kind: kind, Declarations: []*ast.VariableDeclarator{{ID: target}}}
			if isOf {
				return withSpan(&ast.ForOfStatement{Left: left, Right: right, Body: body}, start), nil
			}
			return withSpan(&ast.ForInStatement{Left: left, Right: right, Body: body}, start), nil
		}
		decl := &ast.VariableDeclaration{Kind: kind}
		var init ast.Expression
		if p.match(lexer.ASSIGN) {
			init, err = p.parseAssignmentExpr()
			if err != nil {
				return nil, err
			}
		}
		decl.Declarations = append(decl.Declarations, &ast.VariableDeclarator{ID: target, Init: init})
		for p.match(lexer.COMMA) {
			t2, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			var i2 ast.Expression
			if p.match(lexer.ASSIGN) {
				i2, err = p.parseAssignmentExpr()
				if err != nil {
					return nil, err
				}
			}
			decl.Declarations = append(decl.Declarations, &ast.VariableDeclarator{ID: t2, Init: i2})
		}
		if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
			return nil, err
		}
		return p.finishPlainFor(start, decl)
	}

	initExpr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.IN) || p.at(lexer.OF) {
		isOf := p.at(lexer.OF)
		p.advance()
		right, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		target, err := exprToPattern(initExpr)
		if err != nil {
			return nil, err
		}
		if isOf {
			return withSpan(&ast.ForOfStatement{Left: target, Right: right, Body: body}, start), nil
		}
		return withSpan(&ast.ForInStatement{Left: target, Right: right, Body: body}, start), nil
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}
	return p.finishPlainFor(start, initExpr)
}

func (p *Parser) finishPlainFor(start lexer.Token, init ast.Node) (ast.Statement, error) {
	var test ast.Expression
	if !p.at(lexer.SEMI) {
		t, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		test = t
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}
	var update ast.Expression
	if !p.at(lexer.RPAREN) {
		u, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		update = u
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return withSpan(&ast.ForStatement{Init: init, Test: test, Update: update, Body: body}, start), nil
}

func (p *Parser) parseSwitch() (ast.Statement, error) {
	start := p.advance()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	disc, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var cases []*ast.SwitchCase
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		caseStart := p.cur()
		var test ast.Expression
		if p.match(lexer.CASE) {
			t, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			test = t
		} else if _, err := p.expect(lexer.DEFAULT, "'case' or 'default'"); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON, "':'"); err != nil {
			return nil, err
		}
		var body []ast.Statement
		for !p.at(lexer.CASE) && !p.at(lexer.DEFAULT) && !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			s, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			body = append(body, s)
		}
		cases = append(cases, withSpan(&ast.SwitchCase{Test: test, Consequent: body}, caseStart))
	}
	if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return withSpan(&ast.SwitchStatement{Discriminant: disc, Cases: cases}, start), nil
}

func (p *Parser) parseTry() (ast.Statement, error) {
	start := p.advance()
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var handler *ast.CatchClause
	if p.match(lexer.CATCH) {
		catchStart := p.toks[p.pos-1]
		var param ast.Pattern
		if p.match(lexer.LPAREN) {
			param, err = p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
				return nil, err
			}
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		handler = withSpan(&ast.CatchClause{Param: param, Body: body}, catchStart)
	}
	var finalizer *ast.BlockStatement
	if p.match(lexer.FINALLY) {
		finalizer, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return withSpan(&ast.TryStatement{Block: block, Handler: handler, Finalizer: finalizer}, start), nil
}

//-----------------------------------------------------------------------------
// Patterns (binding targets)
//-----------------------------------------------------------------------------

func (p *Parser) parseBindingTarget() (ast.Pattern, error) {
	switch {
	case p.at(lexer.IDENT):
		return ast.ID(p.advance().Lexeme), nil
	case p.at(lexer.LBRACE):
		return p.parseObjectPattern()
	case p.at(lexer.LBRACKET):
		return p.parseArrayPattern()
	default:
		return nil, p.errorf("expected binding target")
	}
}

func (p *Parser) parseObjectPattern() (ast.Pattern, error) {
	start := p.advance() // '{'
	pat := &ast.ObjectPattern{}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.match(lexer.ELLIPSIS) {
			name, err := p.expect(lexer.IDENT, "rest binding name")
			if err != nil {
				return nil, err
			}
			pat.Rest = ast.ID(name.Lexeme)
			break
		}
		computed := false
		var key ast.Expression
		if p.match(lexer.LBRACKET) {
			computed = true
			k, err := p.parseAssignmentExpr()
			if err != nil {
				return nil, err
			}
			key = k
			if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
				return nil, err
			}
		} else {
			name, err := p.parsePropertyName()
			if err != nil {
				return nil, err
			}
			key = ast.ID(name)
		}
		shorthand := false
		var valuePattern ast.Pattern
		if p.match(lexer.COLON) {
			target, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			valuePattern = target
		} else {
			id, ok := key.(*ast.Identifier)
			if !ok {
				return nil, p.errorf("shorthand pattern requires an identifier key")
			}
			valuePattern = id
			shorthand = true
		}
		if p.at(lexer.ASSIGN) {
			return nil, p.errorf("default values in destructuring patterns are not supported")
		}
		pat.Properties = append(pat.Properties, &ast.ObjectPatternProperty{
			Key: key, Value: valuePattern, Computed: computed, Shorthand: shorthand,
		})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return withSpan(pat, start), nil
}

func (p *Parser) parseArrayPattern() (ast.Pattern, error) {
	start := p.advance() // '['
	pat := &ast.ArrayPattern{}
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		if p.match(lexer.COMMA) {
			pat.Elements = append(pat.Elements, nil)
			continue
		}
		if p.match(lexer.ELLIPSIS) {
			rest, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			pat.Rest = rest
			break
		}
		elem, err := p.parseBindingTarget()
		if err != nil {
			return nil, err
		}
		if p.at(lexer.ASSIGN) {
			return nil, p.errorf("default values in destructuring patterns are not supported")
		}
		pat.Elements = append(pat.Elements, elem)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return withSpan(pat, start), nil
}

// exprToPattern reinterprets an already-parsed expression as an assignment
// target, used by for-in/for-of heads whose left side looked like a plain
// expression until the `in`/`of` keyword disambiguated it.
func exprToPattern(e ast.Expression) (ast.Node, error) {
	switch e.(type) {
	case *ast.Identifier, *ast.MemberExpression:
		return e, nil
	default:
		return nil, fmt.Errorf("invalid for-in/for-of left-hand side")
	}
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

func (p *Parser) parseExpression() (ast.Expression, error) {
	first, err := p.parseAssignmentExpr()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.COMMA) {
		return first, nil
	}
	seq := &ast.SequenceExpression{Expressions: []ast.Expression{first}}
	for p.match(lexer.COMMA) {
		next, err := p.parseAssignmentExpr()
		if err != nil {
			return nil, err
		}
		seq.Expressions = append(seq.Expressions, next)
	}
	return seq, nil
}

var assignOps = map[lexer.TokenType]string{
	lexer.ASSIGN:     "=",
	lexer.PLUS_EQ:    "+=",
	lexer.MINUS_EQ:   "-=",
	lexer.STAR_EQ:    "*=",
	lexer.SLASH_EQ:   "/=",
	lexer.PERCENT_EQ: "%=",
}

func (p *Parser) parseAssignmentExpr() (ast.Expression, error) {
	left, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if op, ok := assignOps[p.cur().Type]; ok {
		p.advance()
		right, err := p.parseAssignmentExpr()
		if err != nil {
			return nil, err
		}
		target, err := toAssignmentTarget(left)
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpression{Operator: op, Left: target, Right: right}, nil
	}
	return left, nil
}

// toAssignmentTarget reinterprets an expression parsed through the normal
// precedence chain (ArrayExpression/ObjectExpression included, so `[a, b] =
// x` and `{a} = x` parse without a dedicated pattern grammar on the left of
// `=`) as a pattern or member target.
func toAssignmentTarget(e ast.Expression) (ast.Node, error) {
	switch n := e.(type) {
	case *ast.Identifier, *ast.MemberExpression:
		return n, nil
	case *ast.ArrayExpression:
		return arrayExprToPattern(n)
	case *ast.ObjectExpression:
		return objectExprToPattern(n)
	default:
		return nil, fmt.Errorf("invalid assignment target")
	}
}

func arrayExprToPattern(n *ast.ArrayExpression) (*ast.ArrayPattern, error) {
	pat := &ast.ArrayPattern{}
	for _, elem := range n.Elements {
		if elem == nil {
			pat.Elements = append(pat.Elements, nil)
			continue
		}
		if spread, ok := elem.(*ast.SpreadElement); ok {
			target, err := exprToPatternGeneral(spread.Argument)
			if err != nil {
				return nil, err
			}
			pat.Rest = target
			continue
		}
		target, err := exprToPatternGeneral(elem)
		if err != nil {
			return nil, err
		}
		pat.Elements = append(pat.Elements, target)
	}
	return pat, nil
}

func objectExprToPattern(n *ast.ObjectExpression) (*ast.ObjectPattern, error) {
	pat := &ast.ObjectPattern{}
	for _, member := range n.Properties {
		switch m := member.(type) {
		case *ast.Property:
			target, err := exprToPatternGeneral(m.Value)
			if err != nil {
				return nil, err
			}
			pat.Properties = append(pat.Properties, &ast.ObjectPatternProperty{
				Key: m.Key, Value: target, Computed: m.Computed, Shorthand: m.Shorthand,
			})
		case *ast.SpreadElement:
			id, ok := m.Argument.(*ast.Identifier)
			if !ok {
				return nil, fmt.Errorf("object pattern rest target must be an identifier")
			}
			pat.Rest = id
		}
	}
	return pat, nil
}

func exprToPatternGeneral(e ast.Expression) (ast.Pattern, error) {
	switch n := e.(type) {
	case *ast.Identifier:
		return n, nil
	case *ast.ArrayExpression:
		return arrayExprToPattern(n)
	case *ast.ObjectExpression:
		return objectExprToPattern(n)
	default:
		return nil, fmt.Errorf("invalid destructuring target")
	}
}

func (p *Parser) parseConditional() (ast.Expression, error) {
	test, err := p.parseNullish()
	if err != nil {
		return nil, err
	}
	if !p.match(lexer.QUESTION) {
		return test, nil
	}
	cons, err := p.parseAssignmentExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON, "':'"); err != nil {
		return nil, err
	}
	alt, err := p.parseAssignmentExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ConditionalExpression{Test: test, Consequent: cons, Alternate: alt}, nil
}

func (p *Parser) parseNullish() (ast.Expression, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.NULLISH) {
		right, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpression{Operator: "??", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseLogicalOr() (ast.Expression, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.OR_OR) {
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpression{Operator: "||", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expression, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.AND_AND) {
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpression{Operator: "&&", Left: left, Right: right}
	}
	return left, nil
}

var equalityOps = map[lexer.TokenType]string{
	lexer.EQ: "==", lexer.NEQ: "!=", lexer.SEQ: "===", lexer.SNEQ: "!==",
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := equalityOps[p.cur().Type]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Operator: op, Left: left, Right: right}
	}
}

var relationalOps = map[lexer.TokenType]string{
	lexer.LT: "<", lexer.LTE: "<=", lexer.GT: ">", lexer.GTE: ">=",
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		if p.at(lexer.IN) {
			p.advance()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &ast.BinaryExpression{Operator: "in", Left: left, Right: right}
			continue
		}
		op, ok := relationalOps[p.cur().Type]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Operator: op, Left: left, Right: right}
	}
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.PLUS) || p.at(lexer.MINUS) {
		op := "+"
		if p.at(lexer.MINUS) {
			op = "-"
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Operator: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.STAR) || p.at(lexer.SLASH) || p.at(lexer.PERCENT) {
		var op string
		switch p.advance().Type {
		case lexer.STAR:
			op = "*"
		case lexer.SLASH:
			op = "/"
		case lexer.PERCENT:
			op = "%"
		}
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Operator: op, Left: left, Right: right}
	}
	return left, nil
}

// parseExponent is right-associative.
func (p *Parser) parseExponent() (ast.Expression, error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	if p.match(lexer.STAR_STAR) {
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpression{Operator: "**", Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseUnaryExpr() (ast.Expression, error) {
	switch p.cur().Type {
	case lexer.BANG:
		p.advance()
		arg, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Operator: "!", Argument: arg, Prefix: true}, nil
	case lexer.MINUS:
		p.advance()
		arg, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Operator: "-", Argument: arg, Prefix: true}, nil
	case lexer.PLUS:
		p.advance()
		arg, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Operator: "+", Argument: arg, Prefix: true}, nil
	case lexer.PLUS_PLUS, lexer.MINUS_MINUS:
		op := "++"
		if p.cur().Type == lexer.MINUS_MINUS {
			op = "--"
		}
		p.advance()
		arg, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UpdateExpression{Operator: op, Argument: arg, Prefix: true}, nil
	case lexer.AWAIT:
		p.advance()
		arg, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AwaitExpression{Argument: arg}, nil
	case lexer.IDENT:
		if p.cur().Lexeme == "typeof" {
			p.advance()
			arg, err := p.parseUnaryExpr()
			if err != nil {
				return nil, err
			}
			return &ast.UnaryExpression{Operator: "typeof", Argument: arg, Prefix: true}, nil
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parseCallMemberNew()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.PLUS_PLUS) || p.at(lexer.MINUS_MINUS) {
		op := "++"
		if p.cur().Type == lexer.MINUS_MINUS {
			op = "--"
		}
		p.advance()
		return &ast.UpdateExpression{Operator: op, Argument: expr, Prefix: false}, nil
	}
	return expr, nil
}

func (p *Parser) parseCallMemberNew() (ast.Expression, error) {
	var expr ast.Expression
	var err error
	if p.at(lexer.NEW) {
		expr, err = p.parseNewExpr()
	} else {
		expr, err = p.parsePrimary()
	}
	if err != nil {
		return nil, err
	}
	return p.parseCallTail(expr)
}

func (p *Parser) parseNewExpr() (ast.Expression, error) {
	start := p.advance() // 'new'
	var callee ast.Expression
	var err error
	if p.at(lexer.NEW) {
		callee, err = p.parseNewExpr()
	} else {
		callee, err = p.parsePrimary()
		if err != nil {
			return nil, err
		}
		callee, err = p.parseMemberTail(callee)
	}
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	if p.at(lexer.LPAREN) {
		args, err = p.parseArgList()
		if err != nil {
			return nil, err
		}
	}
	return withSpan(&ast.NewExpression{Callee: callee, Arguments: args}, start), nil
}

// parseMemberTail consumes only `.` / `[...]` accessors (no calls), used
// while still inside a `new` callee so that `new a.b.C()` binds correctly.
func (p *Parser) parseMemberTail(expr ast.Expression) (ast.Expression, error) {
	for {
		switch {
		case p.at(lexer.DOT):
			p.advance()
			name, err := p.parsePropertyName()
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Object: expr, Property: ast.ID(name), Computed: false}
		case p.at(lexer.LBRACKET):
			p.advance()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Object: expr, Property: idx, Computed: true}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseCallTail(expr ast.Expression) (ast.Expression, error) {
	for {
		switch {
		case p.at(lexer.DOT):
			p.advance()
			name, err := p.parsePropertyName()
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Object: expr, Property: ast.ID(name), Computed: false}
		case p.at(lexer.QUESTION_DOT):
			p.advance()
			if p.at(lexer.LPAREN) {
				args, err := p.parseArgList()
				if err != nil {
					return nil, err
				}
				expr = &ast.ChainExpression{Expression: &ast.CallExpression{Callee: expr, Arguments: args, Optional: true}}
				continue
			}
			name, err := p.parsePropertyName()
			if err != nil {
				return nil, err
			}
			expr = &ast.ChainExpression{Expression: &ast.MemberExpression{Object: expr, Property: ast.ID(name), Computed: false, Optional: true}}
		case p.at(lexer.LBRACKET):
			p.advance()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Object: expr, Property: idx, Computed: true}
		case p.at(lexer.LPAREN):
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpression{Callee: expr, Arguments: args}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgList() ([]ast.Expression, error) {
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var args []ast.Expression
	for !p.at(lexer.RPAREN) {
		if p.match(lexer.ELLIPSIS) {
			arg, err := p.parseAssignmentExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, &ast.SpreadElement{Argument: arg})
		} else {
			arg, err := p.parseAssignmentExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	start := p.cur()
	switch start.Type {
	case lexer.NUMBER:
		p.advance()
		return withSpan(&ast.Literal{Kind: ast.LiteralNumber, Value: start.Literal.(float64), Raw: start.Lexeme}, start), nil
	case lexer.STRING:
		p.advance()
		return withSpan(&ast.Literal{Kind: ast.LiteralString, Value: start.Literal.(string), Raw: start.Lexeme}, start), nil
	case lexer.TEMPLATE_STRING:
		p.advance()
		return p.buildTemplateLiteral(start)
	case lexer.TRUE:
		p.advance()
		return withSpan(&ast.Literal{Kind: ast.LiteralBoolean, Value: true}, start), nil
	case lexer.FALSE:
		p.advance()
		return withSpan(&ast.Literal{Kind: ast.LiteralBoolean, Value: false}, start), nil
	case lexer.NULL:
		p.advance()
		return withSpan(&ast.Literal{Kind: ast.LiteralNull, Value: nil}, start), nil
	case lexer.UNDEFINED:
		p.advance()
		return withSpan(&ast.Identifier{Name: "undefined"}, start), nil
	case lexer.THIS:
		p.advance()
		return withSpan(&ast.ThisExpression{}, start), nil
	case lexer.SUPER:
		p.advance()
		return withSpan(&ast.Super{}, start), nil
	case lexer.IDENT:
		p.advance()
		return withSpan(&ast.Identifier{Name: start.Lexeme}, start), nil
	case lexer.LPAREN:
		return p.parseParenOrArrow()
	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	case lexer.LBRACE:
		return p.parseObjectLiteral()
	case lexer.FUNCTION:
		return p.parseFunctionExpr(false)
	case lexer.ASYNC:
		if p.toks[p.pos+1].Type == lexer.FUNCTION {
			p.advance()
			return p.parseFunctionExpr(true)
		}
		p.advance()
		arrow, err := p.tryParseArrowFrom(start, true)
		if err != nil {
			return nil, err
		}
		if arrow != nil {
			return arrow, nil
		}
		return nil, p.errorf("expected arrow function after 'async'")
	case lexer.CLASS:
		_, id, super, body, err := p.parseClassCore()
		if err != nil {
			return nil, err
		}
		return withSpan(&ast.ClassExpression{ID: id, SuperClass: super, Body: body}, start), nil
	default:
		return nil, p.errorf("unexpected token in expression")
	}
}

func (p *Parser) parseFunctionExpr(async bool) (ast.Expression, error) {
	start := p.advance() // 'function'
	var id *ast.Identifier
	if p.at(lexer.IDENT) {
		id = ast.ID(p.advance().Lexeme)
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return withSpan(&ast.FunctionExpression{ID: id, Params: params, Body: body, Async: async}, start), nil
}

// parseParenOrArrow disambiguates `(expr)` from `(params) => body` by
// speculatively parsing a parameter list and checking for `=>`; on
// mismatch it rewinds and parses a parenthesized expression instead.
func (p *Parser) parseParenOrArrow() (ast.Expression, error) {
	start := p.cur()
	arrow, err := p.tryParseArrowFrom(start, false)
	if err != nil {
		return nil, err
	}
	if arrow != nil {
		return arrow, nil
	}
	p.advance() // '('
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) tryParseArrowFrom(start lexer.Token, async bool) (ast.Expression, error) {
	save := p.pos
	if async {
		// already consumed 'async'; current token should be '('
	}
	if !p.at(lexer.LPAREN) {
		if async {
			p.pos = save
			return nil, nil
		}
		return nil, nil
	}
	params, perr := p.tryParseParamListSpeculative()
	if perr != nil || !p.match(lexer.ARROW) {
		p.pos = save
		return nil, nil
	}
	if p.at(lexer.LBRACE) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return withSpan(&ast.ArrowFunctionExpression{Params: params, Body: body, Async: async, ExpressionBody: false}, start), nil
	}
	body, err := p.parseAssignmentExpr()
	if err != nil {
		return nil, err
	}
	return withSpan(&ast.ArrowFunctionExpression{Params: params, Body: body, Async: async, ExpressionBody: true}, start), nil
}

// tryParseParamListSpeculative parses a parameter list; the caller rewinds
// the cursor on error and falls back to parenthesized-expression parsing.
func (p *Parser) tryParseParamListSpeculative() ([]ast.Pattern, error) {
	return p.parseParamList()
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	start := p.advance() // '['
	arr := &ast.ArrayExpression{}
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		if p.match(lexer.COMMA) {
			arr.Elements = append(arr.Elements, nil)
			continue
		}
		if p.match(lexer.ELLIPSIS) {
			e, err := p.parseAssignmentExpr()
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, &ast.SpreadElement{Argument: e})
		} else {
			e, err := p.parseAssignmentExpr()
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, e)
		}
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return withSpan(arr, start), nil
}

func (p *Parser) parseObjectLiteral() (ast.Expression, error) {
	start := p.advance() // '{'
	obj := &ast.ObjectExpression{}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.match(lexer.ELLIPSIS) {
			e, err := p.parseAssignmentExpr()
			if err != nil {
				return nil, err
			}
			obj.Properties = append(obj.Properties, &ast.SpreadElement{Argument: e})
			if !p.match(lexer.COMMA) {
				break
			}
			continue
		}
		computed := false
		var key ast.Expression
		if p.match(lexer.LBRACKET) {
			computed = true
			k, err := p.parseAssignmentExpr()
			if err != nil {
				return nil, err
			}
			key = k
			if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
				return nil, err
			}
		} else if p.at(lexer.STRING) {
			key = &ast.Literal{Kind: ast.LiteralString, Value: p.advance().Literal.(string)}
		} else if p.at(lexer.NUMBER) {
			key = &ast.Literal{Kind: ast.LiteralNumber, Value: p.advance().Literal.(float64)}
		} else {
			name, err := p.parsePropertyName()
			if err != nil {
				return nil, err
			}
			key = ast.ID(name)
		}

		if p.at(lexer.LPAREN) {
			// method shorthand: `key(...) { ... }`
			params, err := p.parseParamList()
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			fn := &ast.FunctionExpression{Params: params, Body: body}
			obj.Properties = append(obj.Properties, &ast.Property{Key: key, Value: fn, Computed: computed})
		} else if p.match(lexer.COLON) {
			v, err := p.parseAssignmentExpr()
			if err != nil {
				return nil, err
			}
			obj.Properties = append(obj.Properties, &ast.Property{Key: key, Value: v, Computed: computed})
		} else {
			id, ok := key.(*ast.Identifier)
			if !ok {
				return nil, p.errorf("expected ':' in object literal")
			}
			obj.Properties = append(obj.Properties, &ast.Property{Key: key, Value: id, Shorthand: true})
		}
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return withSpan(obj, start), nil
}

// buildTemplateLiteral re-lexes and re-parses each `${...}` chunk produced
// by the lexer's single-pass template scan.
func (p *Parser) buildTemplateLiteral(tok lexer.Token) (ast.Expression, error) {
	parts := tok.Literal.([]lexer.TemplatePart)
	tpl := &ast.TemplateLiteral{}
	for _, part := range parts {
		if !part.IsExpr {
			tpl.Quasis = append(tpl.Quasis, part.Text)
			continue
		}
		expr, err := Parse("(" + part.Text + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid template expression: %w", err)
		}
		if len(expr.Body) != 1 {
			return nil, fmt.Errorf("invalid template expression")
		}
		stmt, ok := expr.Body[0].(*ast.ExpressionStatement)
		if !ok {
			return nil, fmt.Errorf("invalid template expression")
		}
		tpl.Expressions = append(tpl.Expressions, stmt.Expression)
	}
	if len(tpl.Quasis) == len(tpl.Expressions) {
		tpl.Quasis = append(tpl.Quasis, "")
	}
	return withSpan(tpl, tok), nil
}
