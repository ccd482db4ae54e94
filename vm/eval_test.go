package vm_test

import (
	"testing"

	"github.com/zephyrtronium/minijs/builtin"
	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

func newContext() *vm.Context {
	ctx := vm.NewContext()
	builtin.Install(ctx)
	return ctx
}

// TestEndToEndScenarios covers spec.md §8's concrete end-to-end scenarios
// (a)-(d) and (g), the ones whose completion value is a primitive directly
// comparable with value.StrictEquals.
func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   value.Var
	}{
		{"a: accumulate in a for loop", "var a = 0; for (var i=0; i<5; i++) a += i; a", value.Number64(10)},
		{"b: recursive fibonacci", "function f(n){return n<2?n:f(n-1)+f(n-2)} f(10)", value.Number64(55)},
		{"c.1: getter read", "var o = {get x(){return 42}}; o.x", value.Number64(42)},
		{"c.2: getter-only assignment is a no-op", "var o = {get x(){return 42}}; o.x = 7; o.x", value.Number64(42)},
		{"d: guarded catch falls through to the unconditional catch", `try { throw {m:1}; } catch(e if e.m==2) { "a" } catch(e) { "b" } finally { "c" }`, value.Str("b")},
		{"g.1: NaN !== NaN", "NaN === NaN", value.VFalse},
		{"g.2: NaN !== NaN is true", "NaN !== NaN", value.VTrue},
	}
	for _, tt := range tests {
		ctx := newContext()
		got, err := ctx.EvalComplex(tt.source)
		if err != nil {
			t.Errorf("%s: EvalComplex(%q) error: %v", tt.name, tt.source, err)
			continue
		}
		if !value.StrictEquals(got, tt.want) {
			t.Errorf("%s: EvalComplex(%q) = %v, want %v", tt.name, tt.source, got, tt.want)
		}
	}
}

// TestDestructuringAssignment covers spec.md §8 scenario (e).
func TestDestructuringAssignment(t *testing.T) {
	ctx := newContext()
	got, err := ctx.EvalComplex("var [a,b,[c,d]] = [1,2,[3,4]]; a+b+c+d")
	if err != nil {
		t.Fatalf("EvalComplex error: %v", err)
	}
	if !value.StrictEquals(got, value.Number64(10)) {
		t.Errorf("got %v, want 10", got)
	}
}

// TestLabeledBreak covers spec.md §8 scenario (f): a labeled break out of a
// nested loop leaves the outer loop's induction variable at the value it
// held when the inner loop broke.
func TestLabeledBreak(t *testing.T) {
	ctx := newContext()
	got, err := ctx.EvalComplex("outer: for (var i=0;i<3;i++) for (var j=0;j<3;j++) { if (j==1) break outer; } [i,j]")
	if err != nil {
		t.Fatalf("EvalComplex error: %v", err)
	}
	if got.Kind != value.ObjectKind || got.Obj.Class != "Array" {
		t.Fatalf("got %v, want an Array", got)
	}
	i, _ := got.Obj.Get("0")
	j, _ := got.Obj.Get("1")
	if !value.StrictEquals(i, value.Number64(0)) || !value.StrictEquals(j, value.Number64(1)) {
		t.Errorf("got [%v, %v], want [0, 1]", i, j)
	}
}

// TestJSONRoundTrip covers spec.md §8 invariant 6:
// JSON.parse(stringify(v)) equals v, checked by re-stringifying: a value
// that survives parse/stringify unchanged stringifies identically both
// times.
func TestJSONRoundTrip(t *testing.T) {
	tests := []string{
		`null`,
		`true`,
		`42`,
		`"hello"`,
		`[1,2,3]`,
		`{"a":1,"b":[2,3],"c":{"d":null}}`,
	}
	for _, src := range tests {
		ctx := newContext()
		v := "(" + src + ")"
		once, err := ctx.EvalComplex("JSON.stringify" + v)
		if err != nil {
			t.Errorf("%s: stringify error: %v", src, err)
			continue
		}
		twice, err := ctx.EvalComplex("JSON.stringify(JSON.parse(JSON.stringify" + v + "))")
		if err != nil {
			t.Errorf("%s: stringify-parse-stringify error: %v", src, err)
			continue
		}
		if !value.StrictEquals(once, twice) {
			t.Errorf("%s: JSON.parse(stringify(v)) changed the value: %v vs %v", src, once, twice)
		}
	}
}

// TestUncaughtThrowIsScriptError covers spec.md §7's error-handling design:
// an uncaught throw surfaces to the host as a *vm.ScriptError carrying the
// thrown value.
func TestUncaughtThrowIsScriptError(t *testing.T) {
	ctx := newContext()
	_, err := ctx.EvalComplex(`throw new TypeError("boom")`)
	if err == nil {
		t.Fatalf("expected an error")
	}
	se, ok := err.(*vm.ScriptError)
	if !ok {
		t.Fatalf("got %T, want *vm.ScriptError", err)
	}
	if se.Value.Kind != value.ObjectKind {
		t.Fatalf("thrown value is not an object: %v", se.Value)
	}
	name, _ := se.Value.Obj.Get("name")
	if value.ToStr(name) != "TypeError" {
		t.Errorf("thrown value name = %v, want TypeError", name)
	}
}
