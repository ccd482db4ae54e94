package token

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{Var, "var"},
		{StrictEq, "==="},
		{LBrace, "{"},
		{Illegal, "illegal"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		word string
		want Kind
	}{
		{"function", Function},
		{"instanceof", Instanceof},
		{"foo", Ident},
		{"_bar$", Ident},
	}
	for _, tt := range tests {
		if got := LookupIdent(tt.word); got != tt.want {
			t.Errorf("LookupIdent(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestPosString(t *testing.T) {
	p := Pos{Line: 3, Col: 14}
	if got, want := p.String(), "3:14"; got != want {
		t.Errorf("Pos.String() = %q, want %q", got, want)
	}
}
