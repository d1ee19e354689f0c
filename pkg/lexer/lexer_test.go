package lexer

import "testing"

func tokenTypes(t *testing.T, source string) []TokenType {
	t.Helper()
	toks, err := New(source).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", source, err)
	}
	types := make([]TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestTokenizePunctuationAndOperators(t *testing.T) {
	got := tokenTypes(t, "( ) [ ] { } : ; , . ?. ?? => ...")
	want := []TokenType{
		LPAREN, RPAREN, LBRACKET, RBRACKET, LBRACE, RBRACE, COLON, SEMI,
		COMMA, DOT, QUESTION_DOT, NULLISH, ARROW, ELLIPSIS, EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestTokenizeCompoundOperatorsDisambiguateFromSingleChar(t *testing.T) {
	cases := []struct {
		source string
		want   TokenType
	}{
		{"+", PLUS}, {"++", PLUS_PLUS}, {"+=", PLUS_EQ},
		{"-", MINUS}, {"--", MINUS_MINUS}, {"-=", MINUS_EQ},
		{"*", STAR}, {"**", STAR_STAR}, {"*=", STAR_EQ},
		{"=", ASSIGN}, {"==", EQ}, {"===", SEQ},
		{"!", BANG}, {"!=", NEQ}, {"!==", SNEQ},
		{"<", LT}, {"<=", LTE}, {">", GT}, {">=", GTE},
		{"&&", AND_AND}, {"||", OR_OR},
	}
	for _, c := range cases {
		toks, err := New(c.source).Tokenize()
		if err != nil {
			t.Fatalf("Tokenize(%q) error: %v", c.source, err)
		}
		if len(toks) < 1 || toks[0].Type != c.want {
			t.Fatalf("Tokenize(%q): expected first token %v, got %v", c.source, c.want, toks[0].Type)
		}
	}
}

func TestTokenizeKeywordsVsIdentifiers(t *testing.T) {
	got := tokenTypes(t, "let x = function")
	want := []TokenType{LET, IDENT, ASSIGN, FUNCTION, EOF}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestTokenizeNumberLiteral(t *testing.T) {
	toks, err := New("3.14 1e10 42").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	expected := []float64{3.14, 1e10, 42}
	var nums []Token
	for _, tok := range toks {
		if tok.Type == NUMBER {
			nums = append(nums, tok)
		}
	}
	if len(nums) != len(expected) {
		t.Fatalf("expected %d number tokens, got %d", len(expected), len(nums))
	}
	for i, exp := range expected {
		if nums[i].Literal.(float64) != exp {
			t.Fatalf("number %d: expected %v, got %v", i, exp, nums[i].Literal)
		}
	}
}

func TestTokenizeStringLiteralWithEscapes(t *testing.T) {
	toks, err := New(`"hello\nworld"`).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if len(toks) < 1 || toks[0].Type != STRING {
		t.Fatalf("expected a STRING token, got %v", toks)
	}
	if toks[0].Literal.(string) != "hello\nworld" {
		t.Fatalf("expected escaped newline, got %q", toks[0].Literal)
	}
}

func TestTokenizeTemplateLiteralSplitsStaticAndExpressionChunks(t *testing.T) {
	toks, err := New("`hi ${name}!`").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if len(toks) < 1 || toks[0].Type != TEMPLATE_STRING {
		t.Fatalf("expected a TEMPLATE_STRING token, got %v", toks)
	}
	parts := toks[0].Literal.([]TemplatePart)
	if len(parts) != 3 {
		t.Fatalf("expected 3 interleaved parts, got %d: %+v", len(parts), parts)
	}
	if parts[0].IsExpr || parts[0].Text != "hi " {
		t.Fatalf("expected leading static chunk 'hi ', got %+v", parts[0])
	}
	if !parts[1].IsExpr || parts[1].Text != "name" {
		t.Fatalf("expected expression chunk 'name', got %+v", parts[1])
	}
	if parts[2].IsExpr || parts[2].Text != "!" {
		t.Fatalf("expected trailing static chunk '!', got %+v", parts[2])
	}
}

func TestTokenizeLineComment(t *testing.T) {
	got := tokenTypes(t, "let x // comment to end of line\n = 1")
	want := []TokenType{LET, IDENT, ASSIGN, NUMBER, EOF}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
}

func TestTokenizeBlockComment(t *testing.T) {
	got := tokenTypes(t, "let /* skip this */ x = 1")
	want := []TokenType{LET, IDENT, ASSIGN, NUMBER, EOF}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
}

func TestUnterminatedStringIsAnError(t *testing.T) {
	if _, err := New(`"unterminated`).Tokenize(); err == nil {
		t.Fatalf("expected an error for an unterminated string literal")
	}
}

func TestUnterminatedTemplateLiteralIsAnError(t *testing.T) {
	if _, err := New("`unterminated").Tokenize(); err == nil {
		t.Fatalf("expected an error for an unterminated template literal")
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	toks, err := New("let\nx").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if toks[0].Line != 1 {
		t.Fatalf("expected 'let' on line 1, got %d", toks[0].Line)
	}
	if toks[1].Line != 2 {
		t.Fatalf("expected 'x' on line 2, got %d", toks[1].Line)
	}
}
