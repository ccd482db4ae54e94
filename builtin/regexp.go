package builtin

import (
	"regexp"
	"strings"

	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

// installRegExp wires RegExpProto (spec.md §6.3 "RegExp.prototype"), backed
// by the standard library's RE2 engine, matching vm/literals.go's newRegexp
// (documented there and in DESIGN.md as a standard-library concern: no pack
// example wires a JS-syntax regex engine).
func installRegExp(ctx *vm.Context) {
	proto := value.NewObject(ctx.GC, ctx.ObjectProto, "RegExp")
	ctx.RegExpProto = proto

	compiled := func(this value.Var) *regexp.Regexp {
		o := asObject(this)
		if o == nil {
			return nil
		}
		src, _ := o.Get("source")
		flags, _ := o.Get("flags")
		pat := value.ToStr(src)
		if strings.Contains(value.ToStr(flags), "i") {
			pat = "(?i)" + pat
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil
		}
		return re
	}

	method(ctx, proto, "test", 1, func(this value.Var, args []value.Var) value.Var {
		re := compiled(this)
		if re == nil {
			return value.VFalse
		}
		return value.Boolean(re.MatchString(value.ToStr(arg(args, 0))))
	})
	method(ctx, proto, "exec", 1, func(this value.Var, args []value.Var) value.Var {
		re := compiled(this)
		if re == nil {
			return value.VNull
		}
		s := value.ToStr(arg(args, 0))
		m := re.FindStringSubmatch(s)
		if m == nil {
			return value.VNull
		}
		out := make([]value.Var, len(m))
		for i, g := range m {
			out[i] = value.Str(g)
		}
		return ctx.NewArray(out)
	})
	method(ctx, proto, "toString", 0, func(this value.Var, args []value.Var) value.Var {
		o := asObject(this)
		if o == nil {
			return value.Str("/(?:)/")
		}
		src, _ := o.Get("source")
		flags, _ := o.Get("flags")
		return value.Str("/" + value.ToStr(src) + "/" + value.ToStr(flags))
	})

	ctorFn := nativeFn(ctx, "RegExp", 2, func(this value.Var, args []value.Var) value.Var {
		return newRegExpFromArgs(ctx, args)
	})
	ctorFn.Obj.Construct = func(args []value.Var) value.Var { return newRegExpFromArgs(ctx, args) }
	ctorFn.Obj.DefineData("prototype", value.Object64(proto), false, false, false)
	proto.DefineData("constructor", ctorFn, true, false, true)
	ctx.RootScope().Declare("RegExp").V = ctorFn
}

func newRegExpFromArgs(ctx *vm.Context, args []value.Var) value.Var {
	pattern := value.ToStr(arg(args, 0))
	flags := ""
	if len(args) > 1 {
		flags = value.ToStr(args[1])
	}
	o := value.NewObject(ctx.GC, ctx.RegExpProto, "RegExp")
	o.DefineData("source", value.Str(pattern), false, false, false)
	o.DefineData("flags", value.Str(flags), false, false, false)
	o.DefineData("lastIndex", value.Number64(0), true, false, false)
	return value.Object64(o)
}
