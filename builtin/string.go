package builtin

import (
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

// installString wires StringProto (spec.md §6.3 "String.prototype
// coercion helpers"). Grounded on the teacher's sequence-string.go receiver-
// method idiom (dispatch through a bound method rather than free functions);
// case conversion stays on the standard library since golang.org/x/text at
// this module's pinned version predates the cases subpackage (documented in
// DESIGN.md), while normalize keeps the corpus's x/text dependency alive via
// unicode/norm, which the pinned version does carry.
func installString(ctx *vm.Context) {
	proto := value.NewObject(ctx.GC, ctx.ObjectProto, "String")
	ctx.StringProto = proto

	str := func(this value.Var) string {
		if this.Kind == value.String {
			return this.Str
		}
		if o := asObject(this); o != nil && o.Prim != nil {
			return value.ToStr(*o.Prim)
		}
		return value.ToStr(this)
	}

	method(ctx, proto, "toString", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Str(str(this))
	})
	method(ctx, proto, "valueOf", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Str(str(this))
	})
	method(ctx, proto, "charAt", 1, func(this value.Var, args []value.Var) value.Var {
		runes := []rune(str(this))
		i := int(value.ToNumber(arg(args, 0)))
		if i < 0 || i >= len(runes) {
			return value.Str("")
		}
		return value.Str(string(runes[i]))
	})
	method(ctx, proto, "charCodeAt", 1, func(this value.Var, args []value.Var) value.Var {
		units := utf16.Encode([]rune(str(this)))
		i := int(value.ToNumber(arg(args, 0)))
		if i < 0 || i >= len(units) {
			return value.Number64(numNaN())
		}
		return value.Number64(float64(units[i]))
	})
	method(ctx, proto, "codePointAt", 1, func(this value.Var, args []value.Var) value.Var {
		runes := []rune(str(this))
		i := int(value.ToNumber(arg(args, 0)))
		if i < 0 || i >= len(runes) {
			return value.VUndefined
		}
		return value.Number64(float64(runes[i]))
	})
	method(ctx, proto, "indexOf", 1, func(this value.Var, args []value.Var) value.Var {
		runes := []rune(str(this))
		sub := value.ToStr(arg(args, 0))
		start := 0
		if len(args) > 1 {
			start = clampIndex(len(runes), args[1])
		}
		hay := string(runes[start:])
		idx := strings.Index(hay, sub)
		if idx < 0 {
			return value.Number64(-1)
		}
		return value.Number64(float64(start + len([]rune(hay[:idx]))))
	})
	method(ctx, proto, "lastIndexOf", 1, func(this value.Var, args []value.Var) value.Var {
		s := str(this)
		sub := value.ToStr(arg(args, 0))
		idx := strings.LastIndex(s, sub)
		if idx < 0 {
			return value.Number64(-1)
		}
		return value.Number64(float64(len([]rune(s[:idx]))))
	})
	method(ctx, proto, "includes", 1, func(this value.Var, args []value.Var) value.Var {
		return value.Boolean(strings.Contains(str(this), value.ToStr(arg(args, 0))))
	})
	method(ctx, proto, "startsWith", 1, func(this value.Var, args []value.Var) value.Var {
		return value.Boolean(strings.HasPrefix(str(this), value.ToStr(arg(args, 0))))
	})
	method(ctx, proto, "endsWith", 1, func(this value.Var, args []value.Var) value.Var {
		return value.Boolean(strings.HasSuffix(str(this), value.ToStr(arg(args, 0))))
	})
	method(ctx, proto, "slice", 2, func(this value.Var, args []value.Var) value.Var {
		runes := []rune(str(this))
		start, end := sliceRange(len(runes), args)
		if start > end {
			start = end
		}
		return value.Str(string(runes[start:end]))
	})
	method(ctx, proto, "substring", 2, func(this value.Var, args []value.Var) value.Var {
		runes := []rune(str(this))
		n := len(runes)
		start := boundIndex(n, arg(args, 0))
		end := n
		if len(args) > 1 && args[1].Kind != value.Undefined {
			end = boundIndex(n, args[1])
		}
		if start > end {
			start, end = end, start
		}
		return value.Str(string(runes[start:end]))
	})
	method(ctx, proto, "split", 2, func(this value.Var, args []value.Var) value.Var {
		s := str(this)
		if len(args) == 0 || args[0].Kind == value.Undefined {
			return ctx.NewArray([]value.Var{value.Str(s)})
		}
		sep := value.ToStr(args[0])
		var parts []string
		if sep == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sep)
		}
		out := make([]value.Var, len(parts))
		for i, p := range parts {
			out[i] = value.Str(p)
		}
		return ctx.NewArray(out)
	})
	method(ctx, proto, "replace", 2, func(this value.Var, args []value.Var) value.Var {
		s := str(this)
		old := value.ToStr(arg(args, 0))
		repl := arg(args, 1)
		if repl.IsCallable() {
			idx := strings.Index(s, old)
			if idx < 0 {
				return value.Str(s)
			}
			r, _ := ctx.CallFunction(repl, []value.Var{value.Str(old), value.Number64(float64(idx)), value.Str(s)}, value.VUndefined)
			return value.Str(s[:idx] + value.ToStr(r) + s[idx+len(old):])
		}
		return value.Str(strings.Replace(s, old, value.ToStr(repl), 1))
	})
	method(ctx, proto, "replaceAll", 2, func(this value.Var, args []value.Var) value.Var {
		s := str(this)
		old := value.ToStr(arg(args, 0))
		return value.Str(strings.ReplaceAll(s, old, value.ToStr(arg(args, 1))))
	})
	method(ctx, proto, "trim", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Str(strings.TrimSpace(str(this)))
	})
	method(ctx, proto, "trimStart", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Str(strings.TrimLeft(str(this), " \t\n\r\v\f"))
	})
	method(ctx, proto, "trimEnd", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Str(strings.TrimRight(str(this), " \t\n\r\v\f"))
	})
	method(ctx, proto, "toLowerCase", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Str(strings.ToLower(str(this)))
	})
	method(ctx, proto, "toUpperCase", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Str(strings.ToUpper(str(this)))
	})
	method(ctx, proto, "normalize", 0, func(this value.Var, args []value.Var) value.Var {
		form := "NFC"
		if len(args) > 0 {
			form = value.ToStr(args[0])
		}
		var f norm.Form
		switch form {
		case "NFD":
			f = norm.NFD
		case "NFKC":
			f = norm.NFKC
		case "NFKD":
			f = norm.NFKD
		default:
			f = norm.NFC
		}
		return value.Str(f.String(str(this)))
	})
	method(ctx, proto, "repeat", 1, func(this value.Var, args []value.Var) value.Var {
		n := int(value.ToNumber(arg(args, 0)))
		if n < 0 {
			return ctx.Throw(errVar(ctx, "RangeError", "Invalid count value"))
		}
		return value.Str(strings.Repeat(str(this), n))
	})
	method(ctx, proto, "concat", 1, func(this value.Var, args []value.Var) value.Var {
		s := str(this)
		for _, a := range args {
			s += value.ToStr(a)
		}
		return value.Str(s)
	})
	method(ctx, proto, "padStart", 2, func(this value.Var, args []value.Var) value.Var {
		return value.Str(pad(str(this), args, true))
	})
	method(ctx, proto, "padEnd", 2, func(this value.Var, args []value.Var) value.Var {
		return value.Str(pad(str(this), args, false))
	})
	proto.DefineAccessor("length",
		accessorFn(ctx, func(this value.Var, args []value.Var) value.Var {
			return value.Number64(float64(len([]rune(str(this)))))
		}), nil, false, false)

	ctorFn := nativeFn(ctx, "String", 1, func(this value.Var, args []value.Var) value.Var {
		if len(args) == 0 {
			return value.Str("")
		}
		return value.Str(value.ToStr(args[0]))
	})
	ctorFn.Obj.Construct = func(args []value.Var) value.Var {
		o := value.NewObject(ctx.GC, proto, "String")
		v := value.Str("")
		if len(args) > 0 {
			v = value.Str(value.ToStr(args[0]))
		}
		o.Prim = &v
		return value.Object64(o)
	}
	ctorFn.Obj.DefineData("prototype", value.Object64(proto), false, false, false)
	proto.DefineData("constructor", ctorFn, true, false, true)
	static(ctx, ctorFn.Obj, "fromCharCode", 1, func(this value.Var, args []value.Var) value.Var {
		units := make([]uint16, len(args))
		for i, a := range args {
			units[i] = uint16(value.ToNumber(a))
		}
		return value.Str(string(utf16.Decode(units)))
	})

	ctx.RootScope().Declare("String").V = ctorFn
}

func boundIndex(n int, v value.Var) int {
	f := value.ToNumber(v)
	if f != f || f < 0 {
		return 0
	}
	i := int(f)
	if i > n {
		return n
	}
	return i
}

func pad(s string, args []value.Var, start bool) string {
	runes := []rune(s)
	target := len(runes)
	if len(args) > 0 {
		target = int(value.ToNumber(args[0]))
	}
	fill := " "
	if len(args) > 1 && args[1].Kind != value.Undefined {
		fill = value.ToStr(args[1])
	}
	if target <= len(runes) || fill == "" {
		return s
	}
	need := target - len(runes)
	fillRunes := []rune(fill)
	padding := make([]rune, 0, need)
	for len(padding) < need {
		padding = append(padding, fillRunes...)
	}
	padding = padding[:need]
	if start {
		return string(padding) + s
	}
	return s + string(padding)
}

func numNaN() float64 {
	var z float64
	return z / z
}
