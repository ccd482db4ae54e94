package builtin

import (
	"strconv"
	"strings"

	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

// installGlobals wires the free-standing global functions spec.md's
// general JS-subset scope implies even where SPEC_FULL.md's supplemented-
// features list does not name them individually: parseInt/parseFloat/
// isNaN/isFinite, plus console.log/print (routed through Context.Print,
// grounded on the teacher's io.Writer-based Println hookup) and eval
// (spec.md §6.3 "vm.evalBuiltin").
func installGlobals(ctx *vm.Context) {
	root := ctx.RootScope()

	printFn := nativeFn(ctx, "print", 1, func(this value.Var, args []value.Var) value.Var {
		var parts []string
		for _, a := range args {
			parts = append(parts, value.ToStr(a))
		}
		ctx.Print(strings.Join(parts, " "))
		return value.VUndefined
	})
	root.Declare("print").V = printFn

	console := newPlainObject(ctx)
	console.DefineData("log", printFn, true, false, true)
	console.DefineData("error", printFn, true, false, true)
	console.DefineData("warn", printFn, true, false, true)
	root.Declare("console").V = value.Object64(console)

	root.Declare("parseInt").V = nativeFn(ctx, "parseInt", 2, func(this value.Var, args []value.Var) value.Var {
		radix := 0 // unset: parseIntRadix honours a 0x prefix, else base 10
		if len(args) > 1 && args[1].Kind != value.Undefined {
			radix = int(value.ToNumber(args[1]))
		}
		return value.Number64(parseIntRadix(value.ToStr(arg(args, 0)), radix))
	})
	root.Declare("parseFloat").V = nativeFn(ctx, "parseFloat", 1, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(parseFloatPrefix(value.ToStr(arg(args, 0))))
	})
	root.Declare("isNaN").V = nativeFn(ctx, "isNaN", 1, func(this value.Var, args []value.Var) value.Var {
		n := value.ToNumber(arg(args, 0))
		return value.Boolean(n != n)
	})
	root.Declare("isFinite").V = nativeFn(ctx, "isFinite", 1, func(this value.Var, args []value.Var) value.Var {
		n := value.ToNumber(arg(args, 0))
		return value.Boolean(n == n && n-n == 0)
	})

	root.Declare("NaN").V = value.Number64(numNaN())
	root.Declare("Infinity").V = value.Number64(posInf())
	root.Declare("undefined").V = value.VUndefined

	root.Declare("eval").V = nativeFn(ctx, "eval", 1, func(this value.Var, args []value.Var) value.Var {
		src := arg(args, 0)
		if src.Kind != value.String {
			return src
		}
		v, err := ctx.EvalComplex(src.Str)
		if err != nil {
			if se, ok := err.(*vm.ScriptError); ok {
				return ctx.Throw(se.Value)
			}
			return ctx.Throw(errVar(ctx, "SyntaxError", err.Error()))
		}
		return v
	})
}

func posInf() float64 {
	var z float64
	return 1 / z
}

// parseIntRadix implements the parseInt global (spec.md §6.3 "parseInt"):
// skip leading whitespace, an optional sign, an optional "0x"/"0X" prefix
// when radix is 16 or unset, then the longest valid digit run for radix.
func parseIntRadix(s string, radix int) float64 {
	s = strings.TrimSpace(s)
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if (radix == 16 || radix == 0) && len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
		radix = 16
	}
	if radix == 0 {
		radix = 10
	}
	end := 0
	for end < len(s) {
		d := digitVal(s[end])
		if d < 0 || d >= radix {
			break
		}
		end++
	}
	if end == 0 {
		return numNaN()
	}
	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s[:end], 64)
		if ferr != nil {
			return numNaN()
		}
		if neg {
			return -f
		}
		return f
	}
	if neg {
		return -float64(n)
	}
	return float64(n)
}

func digitVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

// parseFloatPrefix implements the parseFloat global: the longest leading
// substring that parses as a float literal, or NaN if there is none.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
		return posInf()
	}
	if strings.HasPrefix(s, "-Infinity") {
		return -posInf()
	}
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == '+' || c == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			goto done
		}
		end++
	}
done:
	for end > 0 && (s[end-1] == 'e' || s[end-1] == 'E' || s[end-1] == '+' || s[end-1] == '-' || s[end-1] == '.') {
		end--
	}
	if !seenDigit || end == 0 {
		return numNaN()
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return numNaN()
	}
	return f
}
