// Package builtin installs the global object graph a fresh vm.Context needs
// before it can run a script (spec.md §4 "Component Design", "builtin
// bootstrap order"): Object/Function/Array/String/Number/Boolean/Error/Date
// prototypes, the Math and JSON namespace objects, and the free-standing
// global functions (print, eval, parseInt, ...).
//
// Grounded on the teacher's protos.go / CoreInit-style package wiring
// (addons/*/init.go each register one family of slots onto a shared proto);
// this package instead exposes one Install entry point that does all of it
// in dependency order, since this module has no plugin/addon loading story.
package builtin

import (
	"strconv"

	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

// itoa is strconv.Itoa under a short local name, used throughout this
// package's array-index property access.
func itoa(i int) string { return strconv.Itoa(i) }

// Install populates every prototype field on ctx and registers the global
// functions and namespace objects into its root scope. Call this once on a
// freshly constructed vm.Context before running any script.
func Install(ctx *vm.Context) {
	// Object.prototype and Function.prototype bootstrap each other (every
	// function's own prototype chains through Function.prototype, whose own
	// prototype is Object.prototype), so both are allocated before either is
	// populated with methods.
	ctx.ObjectProto = value.NewObject(ctx.GC, nil, "Object")
	ctx.FunctionProto = value.NewObject(ctx.GC, ctx.ObjectProto, "Function")

	installObject(ctx)
	installFunction(ctx)
	installArray(ctx)
	installString(ctx)
	installNumber(ctx)
	installBoolean(ctx)
	installError(ctx)
	installRegExp(ctx)
	installDate(ctx)
	installMath(ctx)
	installJSON(ctx)
	installGlobals(ctx)

	ctx.Global.Proto = ctx.ObjectProto
}

// method defines a non-enumerable own method on proto, the attribute shape
// every built-in prototype method in this package shares (spec.md §6.3
// "built-in methods are writable, configurable, non-enumerable").
func method(ctx *vm.Context, proto *value.Object, name string, arity int, fn value.CallFunc) {
	o := value.NewObject(ctx.GC, ctx.FunctionProto, "Function")
	o.Call = fn
	o.DefineData("name", value.Str(name), false, false, true)
	o.DefineData("length", value.Number64(float64(arity)), false, false, true)
	proto.DefineData(name, value.Object64(o), true, false, true)
}

// nativeFn wraps a bare CallFunc as a callable Var, for globals and
// namespace members that are not attached to a prototype via method.
func nativeFn(ctx *vm.Context, name string, arity int, fn value.CallFunc) value.Var {
	o := value.NewObject(ctx.GC, ctx.FunctionProto, "Function")
	o.Call = fn
	o.DefineData("name", value.Str(name), false, false, true)
	o.DefineData("length", value.Number64(float64(arity)), false, false, true)
	return value.Object64(o)
}

// arg returns args[i], or undefined if the call was short on arguments
// (spec.md §4.3 "missing arguments coerce to undefined").
func arg(args []value.Var, i int) value.Var {
	if i < len(args) {
		return args[i]
	}
	return value.VUndefined
}

// newPlainObject is a helper so other files in this package do not need to
// thread ctx.GC/ctx.ObjectProto through every call site by hand.
func newPlainObject(ctx *vm.Context) *value.Object {
	return value.NewObject(ctx.GC, ctx.ObjectProto, "Object")
}
