// Package vm implements the tree-walking evaluator (spec.md §4, GLOSSARY
// "Evaluator"): it walks a compile.TokenBuffer with a cursor against the
// value package's object heap and scope chain.
//
// Grounded on the teacher's Message.Eval / VM plumbing (eval.go, vm.go):
// iolang recursively evaluates a Message tree against an Interface
// receiver and a locals Object; this package instead walks a flat,
// already-postfix-compiled buffer, but keeps the teacher's separation
// between "the thing that owns global state" (iolang's VM) and "the thing
// that walks code" (a per-call frame) as Context and frame below.
package vm

import (
	"fmt"

	"github.com/zephyrtronium/minijs/compile"
	"github.com/zephyrtronium/minijs/value"
)

// Context is one interpreter heap: object prototypes, the global scope,
// and the collector, matching spec.md §5 "one heap per Context" (formerly
// "interpreter context"). Grounded on the teacher's VM struct (vm.go),
// which likewise bundles the core protos and a Lobby (root locals) object.
type Context struct {
	GC *value.Collector

	// ObjectProto, FunctionProto, ArrayProto, etc. are populated by the
	// builtin package's bootstrap (spec.md §4 "Component Design", builtin
	// bootstrap order). vm itself only needs ObjectProto, to give every
	// plain object literal and the arguments object a prototype.
	ObjectProto   *value.Object
	FunctionProto *value.Object
	ArrayProto    *value.Object
	ErrorProto    *value.Object
	StringProto   *value.Object
	NumberProto   *value.Object
	BooleanProto  *value.Object
	RegExpProto   *value.Object
	DateProto     *value.Object

	// Global is the `this` binding at the root scope and the conventional
	// receiver for a bare (non-member) function call in this module's
	// sloppy-mode-only dialect (spec.md has no strict-mode Non-goal
	// carve-out, so `this` in a bare call is always an object, never
	// undefined). It is not synchronized with root-scope variable cells;
	// declared globals live as Scope cells on RootScope, matching the
	// teacher's single Lobby-as-locals convention rather than ECMAScript's
	// global-object-as-variable-environment duality (documented in
	// DESIGN.md as an Open Question resolution).
	Global *value.Object

	root *value.Scope

	// pendingThrow carries a thrown value across a Object.Call boundary
	// (spec.md §7 "Error Handling Design"): value.CallFunc returns only a
	// plain Var, so Throw stashes the exception here for call/construct to
	// pick up immediately after invoking the callee. Never read except
	// right after a Call, and always cleared there.
	pendingThrow *value.Var

	// Print is the sink for the `print`/`console.log` native (spec.md
	// §6.3 "console.log/print global"): routes through one seam instead
	// of a bare fmt.Println, matching the teacher's io.Writer-based
	// Println hookup (vm.go's Stdout).
	Print func(string)
}

// NewContext allocates an empty heap: a collector, a root scope, and a
// Global object with no prototype yet (the builtin package's bootstrap
// fills in ObjectProto and reparents Global to it).
func NewContext() *Context {
	gc := value.NewCollector()
	ctx := &Context{
		GC:     gc,
		Global: value.NewObject(gc, nil, "global"),
		Print:  func(s string) { fmt.Println(s) },
	}
	ctx.root = value.NewScope(value.RootScope, nil)
	ctx.root.This = value.Object64(ctx.Global)
	return ctx
}

// RootScope exposes the global variable environment for the builtin
// package's bootstrap to populate (Math, JSON, global functions, etc.).
func (c *Context) RootScope() *value.Scope { return c.root }

// Collect runs one mark-and-sweep pass rooted at the global object and
// every top-level binding, freeing everything unreachable from either
// (spec.md §9 "cyclic-graph GC strategy"). Returns the number of objects
// freed. Nothing calls this automatically; a host runs it between
// statements or on a timer, matching the teacher's explicit
// runtime.GC()-on-demand convention (cmd/io's profiled) rather than a
// stop-the-world trigger embedded in the evaluator.
func (c *Context) Collect() int {
	roots := []value.Var{value.Object64(c.Global)}
	for _, cell := range c.root.Vars {
		roots = append(roots, cell.V)
	}
	return c.GC.Collect(roots)
}

// protoFor returns the prototype object backing property access on a
// primitive value (spec.md §3 "primitive method lookup falls through to
// String.prototype/Number.prototype/Boolean.prototype"), or nil for
// undefined/null, which own no properties.
func (c *Context) protoFor(v value.Var) *value.Object {
	switch v.Kind {
	case value.String:
		return c.StringProto
	case value.Number:
		return c.NumberProto
	case value.Bool:
		return c.BooleanProto
	}
	return nil
}

// EvalOption configures Eval/EvalComplex (spec.md §6 "EvalOption"): file
// name and starting position, replacing the sentinel-byte expression mode
// spec.md §6/§9 describes with an explicit flag.
type EvalOption func(*evalOptions)

type evalOptions struct {
	file       string
	line, col  int
	expression bool
}

// WithFile sets the source name reported in error positions.
func WithFile(name string) EvalOption { return func(o *evalOptions) { o.file = name } }

// WithPos sets the starting line/column (1-based) for position tracking,
// used when evaluating a fragment embedded in a larger host document.
func WithPos(line, col int) EvalOption {
	return func(o *evalOptions) { o.line, o.col = line, col }
}

// AsExpression parses code as a single expression rather than a program,
// used by the JSON.parse built-in (spec.md §6 "expression-only mode flag
// replacing the sentinel byte").
func AsExpression() EvalOption { return func(o *evalOptions) { o.expression = true } }

func resolveOptions(opts []EvalOption) evalOptions {
	o := evalOptions{file: "<minijs>", line: 1, col: 1}
	for _, f := range opts {
		f(&o)
	}
	return o
}

// ScriptError wraps an uncaught script-level exception (spec.md §7 "Error
// Handling Design"): the carried Var is whatever value the script threw,
// which need not itself be an Error object. Grounded on the teacher's
// exception.go convention that every host-surfaced script error also
// implements the standard error interface.
type ScriptError struct {
	Value value.Var
}

func (e *ScriptError) Error() string {
	return "uncaught exception: " + value.ToStr(e.Value)
}

// Eval compiles and runs code as a program, returning its completion
// value's string form (spec.md §6 "Context.Eval").
func (c *Context) Eval(code string, opts ...EvalOption) (string, error) {
	v, err := c.EvalComplex(code, opts...)
	if err != nil {
		return "", err
	}
	return value.ToStr(v), nil
}

// EvalComplex compiles and runs code, returning the completion value
// (spec.md §6 "Context.EvalComplex"; adapted to return value.Var directly
// rather than a *value.Link, since this module's value package represents
// Vars by value throughout rather than through addressable link handles —
// see DESIGN.md).
func (c *Context) EvalComplex(code string, opts ...EvalOption) (value.Var, error) {
	o := resolveOptions(opts)
	var buf *compile.TokenBuffer
	var err error
	if o.expression {
		buf, err = compile.ParseExpression(code, o.file, o.line, o.col)
	} else {
		buf, err = compile.Parse(code, o.file, o.line, o.col)
	}
	if err != nil {
		return value.VUndefined, err
	}
	f := &frame{ctx: c, buf: buf, scope: c.root}
	if o.expression {
		v, _, out := f.evalExprSelfTerminating(0)
		if out.Sig == SigThrow {
			return value.VUndefined, &ScriptError{Value: out.Value}
		}
		return v, nil
	}
	last, out := f.evalProgram()
	switch out.Sig {
	case SigThrow:
		return value.VUndefined, &ScriptError{Value: out.Value}
	case SigReturn:
		return out.Value, nil
	}
	return last, nil
}

// AddNative registers a native function under a dotted path (spec.md §6.3
// "CScriptVarFunction bound/native dual mode"): "Name.sub(a,b)" style
// signatures walk/create intermediate Object containers exactly as
// TinyJS's CTinyJS::addNative does, ignoring the parenthesized parameter
// list beyond its arity (informational only; native Go functions inspect
// args directly).
func (c *Context) AddNative(signature string, fn value.CallFunc) (value.Var, error) {
	name, path, err := parseNativeSignature(signature)
	if err != nil {
		return value.VUndefined, err
	}
	target := value.Object64(fn2var(c, fn).Obj)
	// Walk/create dotted containers as scope-rooted objects: "Console.log"
	// creates (or reuses) a global object bound to "Console" and defines
	// "log" on it; a bare "print" binds directly into the root scope.
	if len(path) == 0 {
		c.root.Declare(name).V = target
		return target, nil
	}
	cur := c.root.Declare(path[0])
	if cur.V.Kind != value.ObjectKind {
		cur.V = value.Object64(value.NewObject(c.GC, c.ObjectProto, "object"))
	}
	obj := cur.V.Obj
	for _, seg := range path[1:] {
		next, ok := obj.Get(seg)
		if !ok || next.Kind != value.ObjectKind {
			next = value.Object64(value.NewObject(c.GC, c.ObjectProto, "object"))
			obj.Set(seg, next)
		}
		obj = next.Obj
	}
	obj.Set(name, target)
	return target, nil
}

func fn2var(c *Context, fn value.CallFunc) value.Var {
	o := value.NewObject(c.GC, c.FunctionProto, "Function")
	o.Call = fn
	return value.Object64(o)
}

// parseNativeSignature splits "Outer.Inner.name(args)" into the leaf name
// and the dotted container path, discarding the parameter list.
func parseNativeSignature(sig string) (name string, path []string, err error) {
	if i := indexByte(sig, '('); i >= 0 {
		sig = sig[:i]
	}
	if sig == "" {
		return "", nil, fmt.Errorf("minijs: empty native signature")
	}
	parts := splitDot(sig)
	return parts[len(parts)-1], parts[:len(parts)-1], nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func splitDot(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// CallFunction invokes fn as a script function with the given this-binding
// and arguments (spec.md §6 "Context.CallFunction").
func (c *Context) CallFunction(fn value.Var, args []value.Var, this value.Var) (value.Var, error) {
	if !fn.IsCallable() {
		return value.VUndefined, fmt.Errorf("minijs: value is not callable")
	}
	v, out := c.call(fn, this, args, nil)
	if out.Sig == SigThrow {
		return value.VUndefined, &ScriptError{Value: out.Value}
	}
	return v, nil
}
