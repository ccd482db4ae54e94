package compile

import "testing"

// TestParseAccepts exercises the concrete end-to-end scenarios spec.md §8
// declares as binding acceptance tests, at the tokenizer level: each must
// parse without error and produce a non-empty buffer.
func TestParseAccepts(t *testing.T) {
	sources := []string{
		"var a = 0; for (var i=0; i<5; i++) a += i; a",
		"function f(n){return n<2?n:f(n-1)+f(n-2)} f(10)",
		"var o = {get x(){return 42}}; o.x",
		"try { throw {m:1}; } catch(e if e.m==2) { \"a\" } catch(e) { \"b\" } finally { \"c\" }",
		"var [a,b,[c,d]] = [1,2,[3,4]]; a+b+c+d",
		"outer: for (var i=0;i<3;i++) for (var j=0;j<3;j++) { if (j==1) break outer; } [i,j]",
		"NaN === NaN",
	}
	for _, src := range sources {
		buf, err := Parse(src, "<test>", 1, 1)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", src, err)
			continue
		}
		if buf.Len() == 0 {
			t.Errorf("Parse(%q) produced an empty buffer", src)
		}
	}
}

func TestParseExpression(t *testing.T) {
	buf, err := ParseExpression(`{"a":1,"b":[2,3]}`, "<test>", 1, 1)
	if err != nil {
		t.Fatalf("ParseExpression failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("ParseExpression produced an empty buffer")
	}
}

// TestVarAfterLetRedeclarationIsTypeError covers spec.md §4.2's
// redeclaration rule (also spec.md §8 invariant 3): a var whose name
// collides with a let in an enclosing block within the same function is a
// TypeError raised at tokenization, not at evaluation.
func TestVarAfterLetRedeclarationIsTypeError(t *testing.T) {
	src := "{ let x = 1; { var x = 2; } }"
	_, err := Parse(src, "<test>", 1, 1)
	if err == nil {
		t.Fatalf("expected a TypeError for var/let collision, got none")
	}
	if _, ok := err.(*TypeError); !ok {
		t.Errorf("got %T (%v), want *TypeError", err, err)
	}
}

// TestDuplicateLetAtFunctionRootIsPermitted covers spec.md §9's stated
// resolution of the duplicate-let-at-function-root Open Question.
func TestDuplicateLetAtFunctionRootIsPermitted(t *testing.T) {
	src := "let x = 1; let x = 2; x"
	if _, err := Parse(src, "<test>", 1, 1); err != nil {
		t.Errorf("Parse(%q) = %v, want no error", src, err)
	}
}

// TestDuplicateLetInBlockIsTypeError covers the ordinary (non-function-root)
// same-block redeclaration case.
func TestDuplicateLetInBlockIsTypeError(t *testing.T) {
	src := "{ let x = 1; let x = 2; }"
	_, err := Parse(src, "<test>", 1, 1)
	if err == nil {
		t.Fatalf("expected a TypeError for duplicate let in the same block")
	}
	if _, ok := err.(*TypeError); !ok {
		t.Errorf("got %T (%v), want *TypeError", err, err)
	}
}

func TestUnterminatedBlockIsSyntaxError(t *testing.T) {
	_, err := Parse("{ var a = 1;", "<test>", 1, 1)
	if err == nil {
		t.Fatalf("expected a SyntaxError for an unterminated block")
	}
}
