package vm

import (
	"strconv"

	"github.com/zephyrtronium/minijs/compile"
	"github.com/zephyrtronium/minijs/value"
)

// Throw records a pending exception for the nearest call boundary to pick
// up (spec.md §7 "Error Handling Design"). A native builtin that needs to
// signal a thrown value calls this and returns its result (normally
// value.VUndefined); call and every script-backed Object.Call closure check
// for a pending throw immediately after invoking a callee, which keeps
// value.CallFunc's signature a plain Var return while still letting natives
// and script functions raise exceptions identically.
func (c *Context) Throw(v value.Var) value.Var {
	c.pendingThrow = &v
	return value.VUndefined
}

// throwError builds and raises a plain Error-shaped object carrying msg,
// for the evaluator's own runtime errors (calling a non-function, etc.).
func (c *Context) throwError(msg string) Outcome {
	o := value.NewObject(c.GC, c.ErrorProto, "Error")
	o.DefineData("message", value.Str(msg), true, false, true)
	o.DefineData("name", value.Str("TypeError"), true, false, true)
	return Outcome{Sig: SigThrow, Value: value.Object64(o)}
}

// call invokes fn with the given this-binding and already-evaluated
// arguments (spec.md §4.3 "Function invocation"). caller is unused by the
// evaluator today but kept so a future stack-trace feature has a hook.
func (c *Context) call(fn value.Var, this value.Var, args []value.Var, caller *frame) (value.Var, Outcome) {
	if !fn.IsCallable() {
		return value.VUndefined, c.throwError(value.ToStr(fn) + " is not a function")
	}
	v := fn.Obj.Call(this, args)
	if c.pendingThrow != nil {
		pv := *c.pendingThrow
		c.pendingThrow = nil
		return value.VUndefined, Outcome{Sig: SigThrow, Value: pv}
	}
	return v, none
}

// construct implements `new callee(args...)` (spec.md §4.3 "new"): an
// explicit Construct hook takes priority (used by native wrapper
// constructors like String/Number/Array); otherwise the default protocol
// allocates a plain object whose prototype is callee's own "prototype"
// property, calls callee with that object as `this`, and keeps the
// allocated object unless the call itself returned an object.
func (c *Context) construct(callee value.Var, args []value.Var, caller *frame) (value.Var, Outcome) {
	if !callee.IsCallable() {
		return value.VUndefined, c.throwError(value.ToStr(callee) + " is not a constructor")
	}
	if callee.Obj.Construct != nil {
		v := callee.Obj.Construct(args)
		if c.pendingThrow != nil {
			pv := *c.pendingThrow
			c.pendingThrow = nil
			return value.VUndefined, Outcome{Sig: SigThrow, Value: pv}
		}
		return v, none
	}
	proto := c.ObjectProto
	if pv, ok := callee.Obj.Get("prototype"); ok && pv.Kind == value.ObjectKind {
		proto = pv.Obj
	}
	inst := value.NewObject(c.GC, proto, "Object")
	this := value.Object64(inst)
	v, out := c.call(callee, this, args, caller)
	if out.Sig != SigNone {
		return value.VUndefined, out
	}
	if v.Kind == value.ObjectKind {
		return v, none
	}
	return this, none
}

// paramArity counts a FuncLit's declared formal parameters for its
// "length" property (spec.md §6.3 "Function.prototype.length").
func paramArity(params []compile.Param) int { return len(params) }

// makeFunction allocates a Function object closing over f's current scope
// (spec.md §3 "Function data", §4 "Closures"): its Call hook runs the
// body against a fresh FunctionScope on every invocation, translating the
// body's completion Outcome into the plain-Var CallFunc contract via
// Context.Throw.
func (f *frame) makeFunction(fn *compile.FuncLit) value.Var {
	closure := f.scope
	ctx := f.ctx
	o := value.NewObject(ctx.GC, ctx.FunctionProto, "Function")
	o.Closure = closure
	proto := value.NewObject(ctx.GC, ctx.ObjectProto, "Object")
	proto.DefineData("constructor", value.Object64(o), true, false, true)
	o.DefineData("prototype", value.Object64(proto), true, false, false)
	o.DefineData("length", value.Number64(float64(paramArity(fn.Params))), false, false, true)
	o.DefineData("name", value.Str(fn.Name), false, false, true)
	o.Call = func(this value.Var, args []value.Var) value.Var {
		return ctx.invokeScript(fn, closure, this, args)
	}
	return value.Object64(o)
}

// invokeScript runs one call to a bytecode-backed function body (spec.md
// §4.3 "Function invocation"): binds parameters (including destructured
// ones) and `arguments` into a fresh FunctionScope linked to the function's
// closure, then runs the body either as a lambda's single completion
// expression or as an ordinary statement sequence.
func (c *Context) invokeScript(fn *compile.FuncLit, closure *value.Scope, this value.Var, args []value.Var) value.Var {
	scope := value.NewScope(value.FunctionScope, closure)
	scope.This = this

	argsObj := value.NewObject(c.GC, c.ObjectProto, "Arguments")
	for i, a := range args {
		argsObj.DefineData(strconv.Itoa(i), a, true, true, true)
	}
	argsObj.DefineData("length", value.Number64(float64(len(args))), true, false, true)
	scope.Arguments = argsObj
	scope.Declare("arguments").V = value.Object64(argsObj)

	body := &frame{ctx: c, buf: fn.Body, scope: scope}
	fwd := fn.Body.At(0)
	body.processForward(fwd.Forward)
	body.bindParams(fn.Params, args)

	if fn.IsLambda {
		v, _, out := body.evalExprSelfTerminating(1)
		if out.Sig == SigThrow {
			c.pendingThrow = &out.Value
			return value.VUndefined
		}
		return v
	}
	var last value.Var
	body.last = &last
	out := body.runStatements(1, fn.Body.Len(), nil)
	switch out.Sig {
	case SigThrow:
		c.pendingThrow = &out.Value
		return value.VUndefined
	case SigReturn:
		return out.Value
	}
	return value.VUndefined
}

// bindParams assigns already-evaluated call arguments into the current
// scope (spec.md §3 "Function data", §4.2 "Destructuring pre-parse"):
// plain-name parameters were already pre-declared at compile time by
// declareVar/the function's own forwarder, and destructured parameters
// reuse the same traversal walker as a `var`/`let` destructuring
// declaration.
func (f *frame) bindParams(params []compile.Param, args []value.Var) {
	for i, p := range params {
		var v value.Var
		if i < len(args) {
			v = args[i]
		} else {
			v = value.VUndefined
		}
		if p.Pattern != nil {
			f.runDestructureSteps(p.Pattern, v)
			continue
		}
		if p.Name != "" {
			f.scope.Declare(p.Name).V = v
		}
	}
}
