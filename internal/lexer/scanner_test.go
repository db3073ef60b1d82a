package lexer

import "testing"

func tokenTypes(t *testing.T, toks []Token) []TokenType {
	t.Helper()
	out := make([]TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestScanTokensKeywordsAndOperators(t *testing.T) {
	toks, err := ScanTokens("<test>", `var x = 1 + 2 >= 3 ? true : false;`)
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	want := []TokenType{
		TokenVar, TokenIdent, TokenAssign, TokenInteger, TokenPlus, TokenInteger,
		TokenGe, TokenInteger, TokenQuestion, TokenTrue, TokenColon, TokenFalse,
		TokenSemicolon, TokenEOF,
	}
	got := tokenTypes(t, toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanNumberLiterals(t *testing.T) {
	tests := []struct {
		src     string
		typ     TokenType
		literal string
	}{
		{"123", TokenInteger, "123"},
		{"0x1A", TokenInteger, "26"},
		{"017", TokenInteger, "15"},
		{"1.5", TokenReal, "1.5"},
		{"1.5e2", TokenReal, "150"},
	}
	for _, tt := range tests {
		toks, err := ScanTokens("<test>", tt.src)
		if err != nil {
			t.Fatalf("%s: ScanTokens: %v", tt.src, err)
		}
		if len(toks) < 1 || toks[0].Type != tt.typ {
			t.Fatalf("%s: got token type %v, want %v", tt.src, toks[0].Type, tt.typ)
		}
		if toks[0].StringValue != tt.literal {
			t.Errorf("%s: got value %q, want %q", tt.src, toks[0].StringValue, tt.literal)
		}
	}
}

func TestScanNumberOverflowFails(t *testing.T) {
	if _, err := ScanTokens("<test>", "9223372036854775808"); err == nil {
		t.Fatal("expected a malformed integer literal failure for a magnitude beyond int64")
	}
}

func TestScanStringEscapes(t *testing.T) {
	toks, err := ScanTokens("<test>", `"a\nb\"c"`)
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	if toks[0].StringValue != "a\nb\"c" {
		t.Errorf("got %q, want %q", toks[0].StringValue, "a\nb\"c")
	}
}

func TestScanStringUnterminatedFails(t *testing.T) {
	if _, err := ScanTokens("<test>", `"abc`); err == nil {
		t.Fatal("expected unterminated string literal failure")
	}
}

func TestScanSkipsLineComments(t *testing.T) {
	toks, err := ScanTokens("<test>", "1 // a comment\n+ 2")
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	got := tokenTypes(t, toks)
	want := []TokenType{TokenInteger, TokenPlus, TokenInteger, TokenEOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
