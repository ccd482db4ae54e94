package builtin

import (
	"testing"

	"github.com/zephyrtronium/minijs/vm"
)

func newContext(t *testing.T) *vm.Context {
	t.Helper()
	ctx := vm.NewContext()
	Install(ctx)
	return ctx
}

// eval runs source and fails the test on any error, returning the
// completion value's string form for comparison against a table's want
// field, matching the teacher's table-driven `source string; want string`
// testing convention.
func eval(t *testing.T, ctx *vm.Context, source string) string {
	t.Helper()
	s, err := ctx.Eval(source)
	if err != nil {
		t.Fatalf("Eval(%q) error: %v", source, err)
	}
	return s
}

func TestArrayMethods(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"[1,2,3].map(function(x){return x*2}).join(',')", "2,4,6"},
		{"[1,2,3,4].filter(function(x){return x%2==0}).join(',')", "2,4"},
		{"[1,2,3].reduce(function(a,b){return a+b}, 0)", "6"},
		{"[1,2,3].reverse().join(',')", "3,2,1"},
		{"[3,1,2].sort().join(',')", "1,2,3"},
		{"[1,[2,3],[4,[5]]].flat(2).join(',')", "1,2,3,4,5"},
		{"Array.isArray([1,2])", "true"},
		{"Array.isArray({})", "false"},
		{"Array.of(1,2,3).length", "3"},
		{"[1,2,3].includes(2)", "true"},
		{"[1,2,3].indexOf(2)", "1"},
		{"var a=[1,2,3]; a.push(4); a.join(',')", "1,2,3,4"},
		{"var a=[1,2,3]; a.pop(); a.join(',')", "1,2"},
	}
	for _, tt := range tests {
		ctx := newContext(t)
		if got := eval(t, ctx, tt.source); got != tt.want {
			t.Errorf("%q = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestStringMethods(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`"hello".toUpperCase()`, "HELLO"},
		{`"HELLO".toLowerCase()`, "hello"},
		{`"  hi  ".trim()`, "hi"},
		{`"abc".charAt(1)`, "b"},
		{`"abcabc".indexOf("c")`, "2"},
		{`"abcabc".lastIndexOf("c")`, "5"},
		{`"a,b,c".split(",").join("-")`, "a-b-c"},
		{`"abc".slice(1)`, "bc"},
		{`"abc".startsWith("ab")`, "true"},
		{`"abc".endsWith("bc")`, "true"},
		{`"ab".repeat(3)`, "ababab"},
		{`"5".padStart(3, "0")`, "005"},
		{`"x".padEnd(3, "0")`, "x00"},
		{`"abcabc".replace("a", "Z")`, "Zbcabc"},
		{`"abcabc".replaceAll("a", "Z")`, "ZbcZbc"},
	}
	for _, tt := range tests {
		ctx := newContext(t)
		if got := eval(t, ctx, tt.source); got != tt.want {
			t.Errorf("%q = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestMathAndNumber(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"Math.max(1,5,3)", "5"},
		{"Math.min(1,5,3)", "1"},
		{"Math.abs(-4)", "4"},
		{"Math.floor(1.7)", "1"},
		{"Math.ceil(1.2)", "2"},
		{"Math.pow(2,10)", "1024"},
		{"(255).toString(16)", "ff"},
		{"(3.14159).toFixed(2)", "3.14"},
		{"Number.isInteger(4)", "true"},
		{"Number.isInteger(4.5)", "false"},
		{"Number.parseInt('42px')", "42"},
	}
	for _, tt := range tests {
		ctx := newContext(t)
		if got := eval(t, ctx, tt.source); got != tt.want {
			t.Errorf("%q = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestObjectMethods(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`Object.keys({a:1,b:2}).join(',')`, "a,b"},
		{`Object.values({a:1,b:2}).join(',')`, "1,2"},
		{`var o={}; o.hasOwnProperty('x')`, "false"},
		{`var o={x:1}; o.hasOwnProperty('x')`, "true"},
		{`var a={}; var b=Object.create(a); Object.getPrototypeOf(b)===a`, "true"},
		{`Object.assign({a:1},{b:2}).b`, "2"},
	}
	for _, tt := range tests {
		ctx := newContext(t)
		if got := eval(t, ctx, tt.source); got != tt.want {
			t.Errorf("%q = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestJSONParseAndStringify(t *testing.T) {
	ctx := newContext(t)
	got := eval(t, ctx, `JSON.stringify(JSON.parse('{"a":1,"b":[2,3]}'))`)
	want := `{"a":1,"b":[2,3]}`
	if got != want {
		t.Errorf("round trip = %q, want %q", got, want)
	}
}

// TestJSONParseSyntaxErrorIsCatchable covers spec.md §7's carve-out: a
// malformed JSON.parse argument raises a catchable SyntaxError rather than
// an unrecoverable host error.
func TestJSONParseSyntaxErrorIsCatchable(t *testing.T) {
	ctx := newContext(t)
	got := eval(t, ctx, `try { JSON.parse("{not json"); "no error" } catch (e) { e.name }`)
	if got != "SyntaxError" {
		t.Errorf("got %q, want %q", got, "SyntaxError")
	}
}

func TestEvalGlobal(t *testing.T) {
	ctx := newContext(t)
	if got := eval(t, ctx, `eval("1+2")`); got != "3" {
		t.Errorf("eval('1+2') = %q, want 3", got)
	}
	got := eval(t, ctx, `try { eval("1+"); "no error" } catch (e) { e.name }`)
	if got != "SyntaxError" {
		t.Errorf("got %q, want SyntaxError", got)
	}
}

func TestDateBasics(t *testing.T) {
	ctx := newContext(t)
	got := eval(t, ctx, "var d = new Date(0); d.getTime()")
	if got != "0" {
		t.Errorf("new Date(0).getTime() = %q, want 0", got)
	}
}

func TestRegExpBasics(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`/ab+c/.test("abbbc")`, "true"},
		{`/xyz/.test("abc")`, "false"},
		{`/a/i.test("A")`, "true"},
	}
	for _, tt := range tests {
		ctx := newContext(t)
		if got := eval(t, ctx, tt.source); got != tt.want {
			t.Errorf("%q = %q, want %q", tt.source, got, tt.want)
		}
	}
}

// TestGCCollectsUnreachableFromScript mirrors spec.md §8 invariant 5 at the
// builtin-installed-context level: a cyclic structure built purely from
// script and then dropped is freed by the next Collect pass.
func TestGCCollectsUnreachableFromScript(t *testing.T) {
	ctx := newContext(t)
	before := ctx.GC.Live()
	_, err := ctx.EvalComplex(`var a={}; var b={}; a.b=b; b.a=a; a=undefined; b=undefined;`)
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	freed := ctx.Collect()
	if freed == 0 {
		t.Errorf("expected Collect to free the dropped reference cycle")
	}
	if ctx.GC.Live() > before {
		t.Errorf("Live() grew across a Collect pass: before=%d after=%d", before, ctx.GC.Live())
	}
}

func TestTypeOfBoxedPrimitivesAreObjects(t *testing.T) {
	// spec.md §8 invariant 4: boxed primitives return "object" from typeof.
	ctx := newContext(t)
	if got := eval(t, ctx, "typeof new String('x')"); got != "object" {
		t.Errorf("typeof new String('x') = %q, want object", got)
	}
	if got := eval(t, ctx, "typeof 'x'"); got != "string" {
		t.Errorf("typeof 'x' = %q, want string", got)
	}
}
