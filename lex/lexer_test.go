package lex

import (
	"testing"

	"github.com/zephyrtronium/minijs/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	lx := New(src, "<test>", 0, 0)
	var toks []token.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("lexing %q: %v", src, err)
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestNextKinds(t *testing.T) {
	tests := []struct {
		source string
		want   []token.Kind
	}{
		{"var a = 1;", []token.Kind{token.Var, token.Ident, token.Assign, token.Int, token.Semi, token.EOF}},
		{"a+b", []token.Kind{token.Ident, token.Add, token.Ident, token.EOF}},
		{"a === b", []token.Kind{token.Ident, token.StrictEq, token.Ident, token.EOF}},
		{"a instanceof b", []token.Kind{token.Ident, token.Instanceof, token.Ident, token.EOF}},
		{`"a\nb"`, []token.Kind{token.String, token.EOF}},
		{"/abc/gi", []token.Kind{token.Regexp, token.EOF}},
		{"a / b", []token.Kind{token.Ident, token.Div, token.Ident, token.EOF}},
		{"0x7B", []token.Kind{token.Int, token.EOF}},
		{"1.5e10", []token.Kind{token.Float, token.EOF}},
	}
	for _, tt := range tests {
		toks := scanAll(t, tt.source)
		if len(toks) != len(tt.want) {
			t.Fatalf("%q: got %d tokens, want %d (%v)", tt.source, len(toks), len(tt.want), toks)
		}
		for i, k := range tt.want {
			if toks[i].Kind != k {
				t.Errorf("%q: token %d = %v, want %v", tt.source, i, toks[i].Kind, k)
			}
		}
	}
}

// TestRegexVsDivide covers spec.md §4.1's disambiguation rule: '/' opens a
// regex unless the previous significant token could end an expression.
func TestRegexVsDivide(t *testing.T) {
	tests := []struct {
		source   string
		wantKind token.Kind
	}{
		{"(/x/)", token.Regexp},
		{"a/2", token.Div},
		{"1/2", token.Div},
		{"return /x/", token.Regexp},
	}
	for _, tt := range tests {
		toks := scanAll(t, tt.source)
		var found token.Kind
		for _, tok := range toks {
			if tok.Kind == token.Regexp || tok.Kind == token.Div {
				found = tok.Kind
				break
			}
		}
		if found != tt.wantKind {
			t.Errorf("%q: got %v, want %v", tt.source, found, tt.wantKind)
		}
	}
}

// TestLineBreakBefore exercises the ASI bookkeeping the tokenizer relies on
// (spec.md §8 invariant 7).
func TestLineBreakBefore(t *testing.T) {
	toks := scanAll(t, "a\nb")
	if len(toks) < 2 {
		t.Fatalf("expected at least 2 tokens, got %d", len(toks))
	}
	if toks[0].LineBreakBefore {
		t.Errorf("first token should not report a preceding line break")
	}
	if !toks[1].LineBreakBefore {
		t.Errorf("second token should report a preceding line break")
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`"a\nb"`, "a\nb"},
		{`"\x41"`, "A"},
		{`"\101"`, "A"},
		{`'it\'s'`, "it's"},
	}
	for _, tt := range tests {
		toks := scanAll(t, tt.source)
		if len(toks) == 0 || toks[0].Kind != token.String {
			t.Fatalf("%q: did not lex to a string token: %v", tt.source, toks)
		}
		if toks[0].Str != tt.want {
			t.Errorf("%q: got %q, want %q", tt.source, toks[0].Str, tt.want)
		}
	}
}

func TestUnterminatedStringIsSyntaxError(t *testing.T) {
	lx := New(`"abc`, "<test>", 0, 0)
	_, err := lx.Next()
	if err == nil {
		t.Fatalf("expected an error for an unterminated string literal")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Errorf("got %T, want *SyntaxError", err)
	}
}
