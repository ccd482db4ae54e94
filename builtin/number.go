package builtin

import (
	"math"
	"strconv"

	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

// installNumber wires NumberProto and the global Number constructor
// (spec.md §3 "Number", "Infinity arithmetic with signed zero").
func installNumber(ctx *vm.Context) {
	proto := value.NewObject(ctx.GC, ctx.ObjectProto, "Number")
	ctx.NumberProto = proto

	num := func(this value.Var) float64 {
		if this.Kind == value.Number {
			return this.Num
		}
		if o := asObject(this); o != nil && o.Prim != nil {
			return value.ToNumber(*o.Prim)
		}
		return value.ToNumber(this)
	}

	method(ctx, proto, "valueOf", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(num(this))
	})
	method(ctx, proto, "toString", 1, func(this value.Var, args []value.Var) value.Var {
		n := num(this)
		radix := 10
		if len(args) > 0 && args[0].Kind != value.Undefined {
			radix = int(value.ToNumber(args[0]))
		}
		if radix == 10 {
			return value.Str(value.Number64(n).String())
		}
		if n != math.Trunc(n) {
			return value.Str(value.Number64(n).String())
		}
		return value.Str(strconv.FormatInt(int64(n), radix))
	})
	method(ctx, proto, "toFixed", 1, func(this value.Var, args []value.Var) value.Var {
		digits := 0
		if len(args) > 0 {
			digits = int(value.ToNumber(args[0]))
		}
		return value.Str(strconv.FormatFloat(num(this), 'f', digits, 64))
	})
	method(ctx, proto, "toPrecision", 1, func(this value.Var, args []value.Var) value.Var {
		if len(args) == 0 || args[0].Kind == value.Undefined {
			return value.Str(value.Number64(num(this)).String())
		}
		prec := int(value.ToNumber(args[0]))
		return value.Str(strconv.FormatFloat(num(this), 'g', prec, 64))
	})

	ctorFn := nativeFn(ctx, "Number", 1, func(this value.Var, args []value.Var) value.Var {
		if len(args) == 0 {
			return value.Number64(0)
		}
		return value.Number64(value.ToNumber(args[0]))
	})
	ctorFn.Obj.Construct = func(args []value.Var) value.Var {
		o := value.NewObject(ctx.GC, proto, "Number")
		n := value.Number64(0)
		if len(args) > 0 {
			n = value.Number64(value.ToNumber(args[0]))
		}
		o.Prim = &n
		return value.Object64(o)
	}
	ctorFn.Obj.DefineData("prototype", value.Object64(proto), false, false, false)
	proto.DefineData("constructor", ctorFn, true, false, true)

	ctorFn.Obj.DefineData("MAX_SAFE_INTEGER", value.Number64(9007199254740991), false, false, false)
	ctorFn.Obj.DefineData("MIN_SAFE_INTEGER", value.Number64(-9007199254740991), false, false, false)
	ctorFn.Obj.DefineData("MAX_VALUE", value.Number64(math.MaxFloat64), false, false, false)
	ctorFn.Obj.DefineData("MIN_VALUE", value.Number64(math.SmallestNonzeroFloat64), false, false, false)
	ctorFn.Obj.DefineData("EPSILON", value.Number64(2.220446049250313e-16), false, false, false)
	ctorFn.Obj.DefineData("POSITIVE_INFINITY", value.Number64(math.Inf(1)), false, false, false)
	ctorFn.Obj.DefineData("NEGATIVE_INFINITY", value.Number64(math.Inf(-1)), false, false, false)
	ctorFn.Obj.DefineData("NaN", value.Number64(numNaN()), false, false, false)
	static(ctx, ctorFn.Obj, "isInteger", 1, func(this value.Var, args []value.Var) value.Var {
		v := arg(args, 0)
		return value.Boolean(v.Kind == value.Number && v.Num == math.Trunc(v.Num) && !math.IsInf(v.Num, 0))
	})
	static(ctx, ctorFn.Obj, "isFinite", 1, func(this value.Var, args []value.Var) value.Var {
		v := arg(args, 0)
		return value.Boolean(v.Kind == value.Number && !math.IsInf(v.Num, 0) && v.Num == v.Num)
	})
	static(ctx, ctorFn.Obj, "isNaN", 1, func(this value.Var, args []value.Var) value.Var {
		v := arg(args, 0)
		return value.Boolean(v.Kind == value.Number && v.Num != v.Num)
	})
	static(ctx, ctorFn.Obj, "parseFloat", 1, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(parseFloatPrefix(value.ToStr(arg(args, 0))))
	})
	static(ctx, ctorFn.Obj, "parseInt", 2, func(this value.Var, args []value.Var) value.Var {
		radix := 10
		if len(args) > 1 {
			radix = int(value.ToNumber(args[1]))
		}
		return value.Number64(parseIntRadix(value.ToStr(arg(args, 0)), radix))
	})

	ctx.RootScope().Declare("Number").V = ctorFn
}

func installBoolean(ctx *vm.Context) {
	proto := value.NewObject(ctx.GC, ctx.ObjectProto, "Boolean")
	ctx.BooleanProto = proto

	method(ctx, proto, "valueOf", 0, func(this value.Var, args []value.Var) value.Var {
		if this.Kind == value.Bool {
			return value.Boolean(this.B)
		}
		if o := asObject(this); o != nil && o.Prim != nil {
			return *o.Prim
		}
		return value.VFalse
	})
	method(ctx, proto, "toString", 0, func(this value.Var, args []value.Var) value.Var {
		if this.Kind == value.Bool {
			return value.Str(this.String())
		}
		if o := asObject(this); o != nil && o.Prim != nil {
			return value.Str(o.Prim.String())
		}
		return value.Str("false")
	})

	ctorFn := nativeFn(ctx, "Boolean", 1, func(this value.Var, args []value.Var) value.Var {
		return value.Boolean(arg(args, 0).Truthy())
	})
	ctorFn.Obj.Construct = func(args []value.Var) value.Var {
		o := value.NewObject(ctx.GC, proto, "Boolean")
		v := value.Boolean(arg(args, 0).Truthy())
		o.Prim = &v
		return value.Object64(o)
	}
	ctorFn.Obj.DefineData("prototype", value.Object64(proto), false, false, false)
	proto.DefineData("constructor", ctorFn, true, false, true)
	ctx.RootScope().Declare("Boolean").V = ctorFn
}
