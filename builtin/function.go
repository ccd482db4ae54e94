package builtin

import (
	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

// installFunction wires FunctionProto (spec.md §6.3 "Function.prototype.
// call/apply/bind", supplemented feature not excluded by any Non-goal).
// Grounded on the teacher's CFunction/Block Call dispatch (call.go) reduced
// to the narrower CallFunc contract this module's Object.Call carries.
func installFunction(ctx *vm.Context) {
	proto := ctx.FunctionProto

	method(ctx, proto, "call", 1, func(this value.Var, args []value.Var) value.Var {
		if !this.IsCallable() {
			return ctx.Throw(errVar(ctx, "TypeError", "Function.prototype.call called on non-callable"))
		}
		newThis := arg(args, 0)
		var rest []value.Var
		if len(args) > 1 {
			rest = args[1:]
		}
		v, err := ctx.CallFunction(this, rest, newThis)
		if err != nil {
			return propagateErr(ctx, err)
		}
		return v
	})
	method(ctx, proto, "apply", 2, func(this value.Var, args []value.Var) value.Var {
		if !this.IsCallable() {
			return ctx.Throw(errVar(ctx, "TypeError", "Function.prototype.apply called on non-callable"))
		}
		newThis := arg(args, 0)
		rest := arrayToSlice(arg(args, 1))
		v, err := ctx.CallFunction(this, rest, newThis)
		if err != nil {
			return propagateErr(ctx, err)
		}
		return v
	})
	method(ctx, proto, "bind", 1, func(this value.Var, args []value.Var) value.Var {
		if !this.IsCallable() {
			return ctx.Throw(errVar(ctx, "TypeError", "Function.prototype.bind called on non-callable"))
		}
		target := this
		boundThis := arg(args, 0)
		var bound []value.Var
		if len(args) > 1 {
			bound = append([]value.Var{}, args[1:]...)
		}
		o := value.NewObject(ctx.GC, ctx.FunctionProto, "Function")
		o.Call = func(_ value.Var, callArgs []value.Var) value.Var {
			all := append(append([]value.Var{}, bound...), callArgs...)
			v, err := ctx.CallFunction(target, all, boundThis)
			if err != nil {
				return propagateErr(ctx, err)
			}
			return v
		}
		if name, ok := target.Obj.Get("name"); ok {
			o.DefineData("name", value.Str("bound "+value.ToStr(name)), false, false, true)
		}
		return value.Object64(o)
	})
	method(ctx, proto, "toString", 0, func(this value.Var, args []value.Var) value.Var {
		name := "anonymous"
		if this.Kind == value.ObjectKind {
			if n, ok := this.Obj.Get("name"); ok && n.Str != "" {
				name = n.Str
			}
		}
		return value.Str("function " + name + "() { [native code] }")
	})

	ctorFn := nativeFn(ctx, "Function", 1, func(this value.Var, args []value.Var) value.Var {
		return ctx.Throw(errVar(ctx, "TypeError", "Function constructor is not supported"))
	})
	ctorFn.Obj.DefineData("prototype", value.Object64(proto), false, false, false)
	proto.DefineData("constructor", ctorFn, true, false, true)
	ctx.RootScope().Declare("Function").V = ctorFn
}

// arrayToSlice reads an array-like Var's indexed elements into a Go slice,
// the shape Function.prototype.apply's second argument needs.
func arrayToSlice(v value.Var) []value.Var {
	if v.Kind != value.ObjectKind {
		return nil
	}
	n := v.Obj.ArrayLength
	if ln, ok := v.Obj.Get("length"); ok && v.Obj.Class != "Array" {
		n = int(value.ToNumber(ln))
	}
	out := make([]value.Var, 0, n)
	for i := 0; i < n; i++ {
		e, _ := v.Obj.Get(itoa(i))
		out = append(out, e)
	}
	return out
}
