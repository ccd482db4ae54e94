package builtin

import (
	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

// installError wires Error.prototype and its five ECMAScript subtypes
// (spec.md §6 "Error object fields name/message/fileName/lineNumber/
// column", "Error subtypes share Error's prototype chain"). Grounded on the
// teacher's exception.go convention that a host-surfaced script error also
// implements Go's error interface (see vm.ScriptError).
func installError(ctx *vm.Context) {
	proto := value.NewObject(ctx.GC, ctx.ObjectProto, "Error")
	ctx.ErrorProto = proto
	proto.DefineData("name", value.Str("Error"), true, false, true)
	proto.DefineData("message", value.Str(""), true, false, true)

	method(ctx, proto, "toString", 0, func(this value.Var, args []value.Var) value.Var {
		o := asObject(this)
		if o == nil {
			return value.Str("Error")
		}
		name, _ := o.Get("name")
		msg, _ := o.Get("message")
		ns, ms := value.ToStr(name), value.ToStr(msg)
		if ms == "" {
			return value.Str(ns)
		}
		return value.Str(ns + ": " + ms)
	})

	base := installErrorConstructor(ctx, "Error", proto, value.VUndefined)

	for _, name := range []string{"EvalError", "RangeError", "ReferenceError", "SyntaxError", "TypeError"} {
		sub := value.NewObject(ctx.GC, proto, "Error")
		sub.DefineData("name", value.Str(name), true, false, true)
		installErrorConstructor(ctx, name, sub, base)
	}
}

// installErrorConstructor builds one Error-family constructor bound to
// subProto, chaining its "prototype" through parent's own prototype when
// parent is non-nil (EvalError etc. inherit the Error constructor's static
// surface as well as Error.prototype).
func installErrorConstructor(ctx *vm.Context, name string, subProto *value.Object, parent value.Var) value.Var {
	make := func(args []value.Var) value.Var {
		o := value.NewObject(ctx.GC, subProto, "Error")
		if len(args) > 0 && args[0].Kind != value.Undefined {
			o.DefineData("message", value.Str(value.ToStr(args[0])), true, false, true)
		}
		return value.Object64(o)
	}
	ctorFn := nativeFn(ctx, name, 1, func(this value.Var, args []value.Var) value.Var {
		return make(args)
	})
	ctorFn.Obj.Construct = make
	ctorFn.Obj.DefineData("prototype", value.Object64(subProto), false, false, false)
	subProto.DefineData("constructor", ctorFn, true, false, true)
	if parent.Kind == value.ObjectKind {
		ctorFn.Obj.Proto = parent.Obj
	}
	ctx.RootScope().Declare(name).V = ctorFn
	return ctorFn
}

// errVar builds a raw Error-shaped Var of the given name/message without
// going through the constructor lookup, for internal Throw call sites where
// a builtin fails before the Error globals could plausibly be shadowed.
func errVar(ctx *vm.Context, name, msg string) value.Var {
	o := value.NewObject(ctx.GC, ctx.ErrorProto, "Error")
	o.DefineData("name", value.Str(name), true, false, true)
	o.DefineData("message", value.Str(msg), true, false, true)
	return value.Object64(o)
}

// propagateErr converts a Go error surfaced by a Context method called from
// inside a native (Context.CallFunction, Context.EvalComplex) back into a
// pending script throw, since a native's CallFunc has no error return of
// its own (spec.md §7 "Error Handling Design").
func propagateErr(ctx *vm.Context, err error) value.Var {
	if se, ok := err.(*vm.ScriptError); ok {
		return ctx.Throw(se.Value)
	}
	return ctx.Throw(errVar(ctx, "Error", err.Error()))
}
