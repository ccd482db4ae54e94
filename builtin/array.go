package builtin

import (
	"sort"

	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

// installArray wires ArrayProto and the global Array constructor (spec.md
// §3 "Array is an Object with numeric keys and a length"). Grounded on the
// teacher's List addon (list.go's slot table) reduced to this module's
// dense-index-object representation instead of a native Go slice payload.
func installArray(ctx *vm.Context) {
	proto := value.NewObject(ctx.GC, ctx.ObjectProto, "Array")
	ctx.ArrayProto = proto

	method(ctx, proto, "push", 1, func(this value.Var, args []value.Var) value.Var {
		o := asObject(this)
		if o == nil {
			return value.Number64(0)
		}
		n := o.ArrayLength
		for _, a := range args {
			o.DefineData(itoa(n), a, true, true, true)
			n++
		}
		setArrayLength(o, n)
		return value.Number64(float64(n))
	})
	method(ctx, proto, "pop", 0, func(this value.Var, args []value.Var) value.Var {
		o := asObject(this)
		if o == nil || o.ArrayLength == 0 {
			return value.VUndefined
		}
		n := o.ArrayLength - 1
		v, _ := o.Get(itoa(n))
		o.Delete(itoa(n))
		setArrayLength(o, n)
		return v
	})
	method(ctx, proto, "shift", 0, func(this value.Var, args []value.Var) value.Var {
		o := asObject(this)
		if o == nil || o.ArrayLength == 0 {
			return value.VUndefined
		}
		first, _ := o.Get("0")
		n := o.ArrayLength
		for i := 1; i < n; i++ {
			v, _ := o.Get(itoa(i))
			o.Set(itoa(i-1), v)
		}
		o.Delete(itoa(n - 1))
		setArrayLength(o, n-1)
		return first
	})
	method(ctx, proto, "unshift", 1, func(this value.Var, args []value.Var) value.Var {
		o := asObject(this)
		if o == nil {
			return value.Number64(0)
		}
		old := arrayElems(o)
		merged := append(append([]value.Var{}, args...), old...)
		rebuildArray(o, merged)
		return value.Number64(float64(len(merged)))
	})
	method(ctx, proto, "slice", 2, func(this value.Var, args []value.Var) value.Var {
		elems := arrayElems(asObject(this))
		start, end := sliceRange(len(elems), args)
		if start > end {
			start = end
		}
		return ctx.NewArray(append([]value.Var{}, elems[start:end]...))
	})
	method(ctx, proto, "splice", 2, func(this value.Var, args []value.Var) value.Var {
		o := asObject(this)
		elems := arrayElems(o)
		n := len(elems)
		start := clampIndex(n, arg(args, 0))
		delCount := n - start
		if len(args) > 1 {
			delCount = int(value.ToNumber(args[1]))
			if delCount < 0 {
				delCount = 0
			}
			if start+delCount > n {
				delCount = n - start
			}
		}
		removed := append([]value.Var{}, elems[start:start+delCount]...)
		var insert []value.Var
		if len(args) > 2 {
			insert = args[2:]
		}
		result := append([]value.Var{}, elems[:start]...)
		result = append(result, insert...)
		result = append(result, elems[start+delCount:]...)
		rebuildArray(o, result)
		return ctx.NewArray(removed)
	})
	method(ctx, proto, "concat", 1, func(this value.Var, args []value.Var) value.Var {
		out := arrayElems(asObject(this))
		for _, a := range args {
			if o := asObject(a); o != nil && o.Class == "Array" {
				out = append(out, arrayElems(o)...)
			} else {
				out = append(out, a)
			}
		}
		return ctx.NewArray(out)
	})
	method(ctx, proto, "join", 1, func(this value.Var, args []value.Var) value.Var {
		sep := ","
		if len(args) > 0 && args[0].Kind != value.Undefined {
			sep = value.ToStr(args[0])
		}
		elems := arrayElems(asObject(this))
		s := ""
		for i, e := range elems {
			if i > 0 {
				s += sep
			}
			if e.Kind != value.Undefined && e.Kind != value.Null {
				s += value.ToStr(e)
			}
		}
		return value.Str(s)
	})
	method(ctx, proto, "reverse", 0, func(this value.Var, args []value.Var) value.Var {
		o := asObject(this)
		elems := arrayElems(o)
		for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
			elems[i], elems[j] = elems[j], elems[i]
		}
		rebuildArray(o, elems)
		return this
	})
	method(ctx, proto, "indexOf", 1, func(this value.Var, args []value.Var) value.Var {
		elems := arrayElems(asObject(this))
		target := arg(args, 0)
		for i, e := range elems {
			if value.StrictEquals(e, target) {
				return value.Number64(float64(i))
			}
		}
		return value.Number64(-1)
	})
	method(ctx, proto, "includes", 1, func(this value.Var, args []value.Var) value.Var {
		elems := arrayElems(asObject(this))
		target := arg(args, 0)
		for _, e := range elems {
			if value.SameValueZero(e, target) {
				return value.VTrue
			}
		}
		return value.VFalse
	})
	method(ctx, proto, "find", 1, func(this value.Var, args []value.Var) value.Var {
		elems := arrayElems(asObject(this))
		fn := arg(args, 0)
		for i, e := range elems {
			if callPredicate(ctx, fn, e, i, this) {
				return e
			}
		}
		return value.VUndefined
	})
	method(ctx, proto, "findIndex", 1, func(this value.Var, args []value.Var) value.Var {
		elems := arrayElems(asObject(this))
		fn := arg(args, 0)
		for i, e := range elems {
			if callPredicate(ctx, fn, e, i, this) {
				return value.Number64(float64(i))
			}
		}
		return value.Number64(-1)
	})
	method(ctx, proto, "forEach", 1, func(this value.Var, args []value.Var) value.Var {
		elems := arrayElems(asObject(this))
		fn := arg(args, 0)
		for i, e := range elems {
			ctx.CallFunction(fn, []value.Var{e, value.Number64(float64(i)), this}, value.VUndefined)
		}
		return value.VUndefined
	})
	method(ctx, proto, "map", 1, func(this value.Var, args []value.Var) value.Var {
		elems := arrayElems(asObject(this))
		fn := arg(args, 0)
		out := make([]value.Var, len(elems))
		for i, e := range elems {
			v, _ := ctx.CallFunction(fn, []value.Var{e, value.Number64(float64(i)), this}, value.VUndefined)
			out[i] = v
		}
		return ctx.NewArray(out)
	})
	method(ctx, proto, "filter", 1, func(this value.Var, args []value.Var) value.Var {
		elems := arrayElems(asObject(this))
		fn := arg(args, 0)
		var out []value.Var
		for i, e := range elems {
			if callPredicate(ctx, fn, e, i, this) {
				out = append(out, e)
			}
		}
		return ctx.NewArray(out)
	})
	method(ctx, proto, "some", 1, func(this value.Var, args []value.Var) value.Var {
		elems := arrayElems(asObject(this))
		fn := arg(args, 0)
		for i, e := range elems {
			if callPredicate(ctx, fn, e, i, this) {
				return value.VTrue
			}
		}
		return value.VFalse
	})
	method(ctx, proto, "every", 1, func(this value.Var, args []value.Var) value.Var {
		elems := arrayElems(asObject(this))
		fn := arg(args, 0)
		for i, e := range elems {
			if !callPredicate(ctx, fn, e, i, this) {
				return value.VFalse
			}
		}
		return value.VTrue
	})
	method(ctx, proto, "reduce", 2, func(this value.Var, args []value.Var) value.Var {
		elems := arrayElems(asObject(this))
		fn := arg(args, 0)
		i := 0
		var acc value.Var
		if len(args) > 1 {
			acc = args[1]
		} else {
			if len(elems) == 0 {
				return ctx.Throw(errVar(ctx, "TypeError", "Reduce of empty array with no initial value"))
			}
			acc = elems[0]
			i = 1
		}
		for ; i < len(elems); i++ {
			acc, _ = ctx.CallFunction(fn, []value.Var{acc, elems[i], value.Number64(float64(i)), this}, value.VUndefined)
		}
		return acc
	})
	method(ctx, proto, "sort", 1, func(this value.Var, args []value.Var) value.Var {
		o := asObject(this)
		elems := arrayElems(o)
		cmp := arg(args, 0)
		sort.SliceStable(elems, func(i, j int) bool {
			if cmp.IsCallable() {
				r, _ := ctx.CallFunction(cmp, []value.Var{elems[i], elems[j]}, value.VUndefined)
				return value.ToNumber(r) < 0
			}
			return value.ToStr(elems[i]) < value.ToStr(elems[j])
		})
		rebuildArray(o, elems)
		return this
	})
	method(ctx, proto, "flat", 0, func(this value.Var, args []value.Var) value.Var {
		depth := 1
		if len(args) > 0 {
			depth = int(value.ToNumber(args[0]))
		}
		return ctx.NewArray(flatten(arrayElems(asObject(this)), depth))
	})
	method(ctx, proto, "toString", 0, func(this value.Var, args []value.Var) value.Var {
		elems := arrayElems(asObject(this))
		s := ""
		for i, e := range elems {
			if i > 0 {
				s += ","
			}
			if e.Kind != value.Undefined && e.Kind != value.Null {
				s += value.ToStr(e)
			}
		}
		return value.Str(s)
	})

	ctorFn := nativeFn(ctx, "Array", 1, func(this value.Var, args []value.Var) value.Var {
		return arrayFromArgs(ctx, args)
	})
	ctorFn.Obj.Construct = func(args []value.Var) value.Var { return arrayFromArgs(ctx, args) }
	ctorFn.Obj.DefineData("prototype", value.Object64(proto), false, false, false)
	proto.DefineData("constructor", ctorFn, true, false, true)

	static(ctx, ctorFn.Obj, "isArray", 1, func(this value.Var, args []value.Var) value.Var {
		o := asObject(arg(args, 0))
		return value.Boolean(o != nil && o.Class == "Array")
	})
	static(ctx, ctorFn.Obj, "of", 0, func(this value.Var, args []value.Var) value.Var {
		return ctx.NewArray(append([]value.Var{}, args...))
	})
	static(ctx, ctorFn.Obj, "from", 1, func(this value.Var, args []value.Var) value.Var {
		src := arg(args, 0)
		var elems []value.Var
		if src.Kind == value.String {
			for _, r := range src.Str {
				elems = append(elems, value.Str(string(r)))
			}
		} else {
			elems = arrayElems(asObject(src))
		}
		if fn := arg(args, 1); fn.IsCallable() {
			for i, e := range elems {
				elems[i], _ = ctx.CallFunction(fn, []value.Var{e, value.Number64(float64(i))}, value.VUndefined)
			}
		}
		return ctx.NewArray(elems)
	})

	ctx.RootScope().Declare("Array").V = ctorFn
}

// arrayFromArgs implements the Array constructor's dual signature: a single
// numeric argument creates a sparse-length array, anything else is treated
// as the element list (spec.md §6.3 "Array holes/length auto-extension").
func arrayFromArgs(ctx *vm.Context, args []value.Var) value.Var {
	if len(args) == 1 && args[0].Kind == value.Number {
		n := int(args[0].Num)
		v := ctx.NewArray(nil)
		setArrayLength(v.Obj, n)
		return v
	}
	return ctx.NewArray(append([]value.Var{}, args...))
}

// arrayElems reads every index in [0, ArrayLength) into a fresh slice.
func arrayElems(o *value.Object) []value.Var {
	if o == nil {
		return nil
	}
	n := o.ArrayLength
	out := make([]value.Var, n)
	for i := 0; i < n; i++ {
		out[i], _ = o.Get(itoa(i))
	}
	return out
}

// rebuildArray replaces o's indexed properties with elems and resets length,
// used by mutators (sort, splice, unshift, reverse) that change arity.
func rebuildArray(o *value.Object, elems []value.Var) {
	if o == nil {
		return
	}
	for i := 0; i < o.ArrayLength; i++ {
		o.Delete(itoa(i))
	}
	for i, v := range elems {
		o.DefineData(itoa(i), v, true, true, true)
	}
	setArrayLength(o, len(elems))
}

func setArrayLength(o *value.Object, n int) {
	o.ArrayLength = n
	o.DefineData("length", value.Number64(float64(n)), true, false, false)
}

func clampIndex(n int, v value.Var) int {
	i := int(value.ToNumber(v))
	if i < 0 {
		i += n
	}
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	return i
}

func sliceRange(n int, args []value.Var) (start, end int) {
	start, end = 0, n
	if len(args) > 0 {
		start = clampIndex(n, args[0])
	}
	if len(args) > 1 && args[1].Kind != value.Undefined {
		end = clampIndex(n, args[1])
	}
	return start, end
}

func callPredicate(ctx *vm.Context, fn, e value.Var, i int, this value.Var) bool {
	v, _ := ctx.CallFunction(fn, []value.Var{e, value.Number64(float64(i)), this}, value.VUndefined)
	return v.Truthy()
}

func flatten(elems []value.Var, depth int) []value.Var {
	var out []value.Var
	for _, e := range elems {
		if depth > 0 {
			if o := asObject(e); o != nil && o.Class == "Array" {
				out = append(out, flatten(arrayElems(o), depth-1)...)
				continue
			}
		}
		out = append(out, e)
	}
	return out
}
