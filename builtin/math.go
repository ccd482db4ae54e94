package builtin

import (
	"math"
	"math/rand"

	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

// installMath wires the Math namespace object (spec.md §6.3 "Math global
// object"). Grounded on the teacher's coreext Number helpers, adapted from
// receiver methods to namespace-object statics since Math has no instances.
func installMath(ctx *vm.Context) {
	m := newPlainObject(ctx)

	m.DefineData("PI", value.Number64(math.Pi), false, false, false)
	m.DefineData("E", value.Number64(math.E), false, false, false)
	m.DefineData("LN2", value.Number64(math.Ln2), false, false, false)
	m.DefineData("LN10", value.Number64(math.Log(10)), false, false, false)
	m.DefineData("SQRT2", value.Number64(math.Sqrt2), false, false, false)

	unary := func(name string, fn func(float64) float64) {
		static(ctx, m, name, 1, func(this value.Var, args []value.Var) value.Var {
			return value.Number64(fn(value.ToNumber(arg(args, 0))))
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sign", func(n float64) float64 {
		switch {
		case n > 0:
			return 1
		case n < 0:
			return -1
		default:
			return n
		}
	})
	unary("exp", math.Exp)
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("round", func(n float64) float64 { return math.Floor(n + 0.5) })

	static(ctx, m, "pow", 2, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(math.Pow(value.ToNumber(arg(args, 0)), value.ToNumber(arg(args, 1))))
	})
	static(ctx, m, "atan2", 2, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(math.Atan2(value.ToNumber(arg(args, 0)), value.ToNumber(arg(args, 1))))
	})
	static(ctx, m, "hypot", 2, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(math.Hypot(value.ToNumber(arg(args, 0)), value.ToNumber(arg(args, 1))))
	})
	static(ctx, m, "max", 2, func(this value.Var, args []value.Var) value.Var {
		if len(args) == 0 {
			return value.Number64(math.Inf(-1))
		}
		best := value.ToNumber(args[0])
		for _, a := range args[1:] {
			n := value.ToNumber(a)
			if n != n {
				return value.Number64(numNaN())
			}
			if n > best {
				best = n
			}
		}
		return value.Number64(best)
	})
	static(ctx, m, "min", 2, func(this value.Var, args []value.Var) value.Var {
		if len(args) == 0 {
			return value.Number64(math.Inf(1))
		}
		best := value.ToNumber(args[0])
		for _, a := range args[1:] {
			n := value.ToNumber(a)
			if n != n {
				return value.Number64(numNaN())
			}
			if n < best {
				best = n
			}
		}
		return value.Number64(best)
	})
	static(ctx, m, "random", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(rand.Float64())
	})

	ctx.RootScope().Declare("Math").V = value.Object64(m)
}
