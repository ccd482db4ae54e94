package builtin

import (
	"strconv"
	"strings"

	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

// installJSON wires the JSON namespace object (spec.md §6.2 "JSON support
// is added via hand-written JSON.parse/JSON.stringify ... rather than
// encoding/json for the script-visible surface"). JSON.parse reuses the
// expression-mode evaluator instead of a dedicated JSON grammar, since a
// JSON text is always a valid single-expression program in this module's
// syntax; JSON.stringify is a small recursive Var walker, grounded on
// other_examples/dop251-goja__object.go's thin-host-wrapper approach of
// walking the object model directly rather than reflecting over Go values.
func installJSON(ctx *vm.Context) {
	j := newPlainObject(ctx)

	static(ctx, j, "parse", 1, func(this value.Var, args []value.Var) value.Var {
		text := value.ToStr(arg(args, 0))
		v, err := ctx.EvalComplex(text, vm.AsExpression())
		if err != nil {
			if se, ok := err.(*vm.ScriptError); ok {
				return ctx.Throw(se.Value)
			}
			return ctx.Throw(errVar(ctx, "SyntaxError", "Unexpected token in JSON: "+err.Error()))
		}
		return v
	})
	static(ctx, j, "stringify", 3, func(this value.Var, args []value.Var) value.Var {
		v := arg(args, 0)
		indent := ""
		if len(args) > 2 {
			switch args[2].Kind {
			case value.Number:
				indent = strings.Repeat(" ", int(args[2].Num))
			case value.String:
				indent = args[2].Str
			}
		}
		var sb strings.Builder
		ok := jsonStringify(&sb, v, indent, "")
		if !ok {
			return value.VUndefined
		}
		return value.Str(sb.String())
	})

	ctx.RootScope().Declare("JSON").V = value.Object64(j)
}

// jsonStringify writes v's JSON text into sb, reporting false for values
// JSON.stringify must render as nothing (functions, undefined) so the
// caller can distinguish a real empty-string result from "no result".
func jsonStringify(sb *strings.Builder, v value.Var, indent, cur string) bool {
	switch v.Kind {
	case value.Undefined:
		return false
	case value.Null:
		sb.WriteString("null")
		return true
	case value.Bool:
		sb.WriteString(v.String())
		return true
	case value.Number:
		if v.Num != v.Num || v.Num > 1e308 || v.Num < -1e308 {
			sb.WriteString("null")
		} else {
			sb.WriteString(v.String())
		}
		return true
	case value.String:
		sb.WriteString(quoteJSON(v.Str))
		return true
	case value.ObjectKind:
		if v.IsCallable() {
			return false
		}
		if toJSON, ok := v.Obj.Get("toJSON"); ok && toJSON.IsCallable() {
			r := toJSON.Obj.Call(v, nil)
			return jsonStringify(sb, r, indent, cur)
		}
		if v.Obj.Class == "Array" {
			jsonStringifyArray(sb, v.Obj, indent, cur)
			return true
		}
		jsonStringifyObject(sb, v.Obj, indent, cur)
		return true
	}
	return false
}

func jsonStringifyArray(sb *strings.Builder, o *value.Object, indent, cur string) {
	next := cur + indent
	sb.WriteByte('[')
	n := o.ArrayLength
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		if indent != "" {
			sb.WriteByte('\n')
			sb.WriteString(next)
		}
		e, _ := o.Get(itoa(i))
		if !jsonStringify(sb, e, indent, next) {
			sb.WriteString("null")
		}
	}
	if indent != "" && n > 0 {
		sb.WriteByte('\n')
		sb.WriteString(cur)
	}
	sb.WriteByte(']')
}

func jsonStringifyObject(sb *strings.Builder, o *value.Object, indent, cur string) {
	next := cur + indent
	sb.WriteByte('{')
	first := true
	for _, k := range o.OwnEnumerableKeys() {
		v, _ := o.Get(k)
		var tmp strings.Builder
		if !jsonStringify(&tmp, v, indent, next) {
			continue
		}
		if !first {
			sb.WriteByte(',')
		}
		first = false
		if indent != "" {
			sb.WriteByte('\n')
			sb.WriteString(next)
		}
		sb.WriteString(quoteJSON(k))
		sb.WriteByte(':')
		if indent != "" {
			sb.WriteByte(' ')
		}
		sb.WriteString(tmp.String())
	}
	if indent != "" && !first {
		sb.WriteByte('\n')
		sb.WriteString(cur)
	}
	sb.WriteByte('}')
}

func quoteJSON(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				sb.WriteString(`\u`)
				sb.WriteString(strconv.FormatInt(int64(r), 16))
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
