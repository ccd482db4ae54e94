package vm

import (
	"strconv"

	"github.com/zephyrtronium/minijs/value"
)

// NewArray allocates an Array object from already-evaluated elements,
// exposed for the builtin package's constructors and prototype methods
// (Array.of, String.prototype.split, JSON.parse's array literals, ...) so
// they build arrays the same way literal evaluation does.
func (c *Context) NewArray(elems []value.Var) value.Var {
	return c.newArray(elems)
}

// newArray allocates an Array object from already-evaluated elements
// (spec.md §3 "Array is an Object with numeric keys and a length").
func (c *Context) newArray(elems []value.Var) value.Var {
	o := value.NewObject(c.GC, c.ArrayProto, "Array")
	for i, v := range elems {
		o.DefineData(strconv.Itoa(i), v, true, true, true)
	}
	o.DefineData("length", value.Number64(float64(len(elems))), true, false, false)
	o.ArrayLength = len(elems)
	return value.Object64(o)
}

// buildArrayLiteral pops n already-tagged elements off the stack (plain
// values or Ellipsis-wrapped spreads) and pushes the resulting array.
func (f *frame) buildArrayLiteral(stackp *[]item, n int) item {
	stack := *stackp
	raw := make([]item, n)
	for i := n - 1; i >= 0; i-- {
		raw[i] = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}
	*stackp = stack
	var elems []value.Var
	for _, it := range raw {
		if it.tag == "spread" {
			elems = append(elems, f.iterableValues(it.v)...)
		} else {
			elems = append(elems, it.v)
		}
	}
	return plain(f.ctx.newArray(elems))
}

// discardLiteralElements pops n stack items without using them: a literal
// resolved as a destructuring target (spec.md §4.2 "Object literal
// duality") still had its element expressions evaluated as ordinary
// expressions before the parser learned it was a pattern, so those pushed
// values must still be popped to keep the operand stack balanced even
// though the pattern itself is read from the closing entry, not the stack.
func (f *frame) discardLiteralElements(stackp *[]item, n int) {
	stack := *stackp
	stack = stack[:len(stack)-n]
	*stackp = stack
}

// tagLiteralElement converts the bare value just pushed by an object
// literal's property-value or accessor-function expression into a tagged
// construction item the closing LBrace entry consumes.
func (f *frame) tagLiteralElement(stackp *[]item, marker string) {
	stack := *stackp
	it := stack[len(stack)-1]
	it.tag = marker
	stack[len(stack)-1] = it
	*stackp = stack
}

// buildObjectLiteral pops n tagged elements (prop:/accessor:/spread) and
// assembles the resulting plain object (spec.md §4.2 "Object literal
// duality": this runs only once the literal is confirmed to be a value,
// not a destructuring target).
func (f *frame) buildObjectLiteral(stackp *[]item, n int) item {
	stack := *stackp
	raw := make([]item, n)
	for i := n - 1; i >= 0; i-- {
		raw[i] = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}
	*stackp = stack
	o := value.NewObject(f.ctx.GC, f.ctx.ObjectProto, "Object")
	for _, it := range raw {
		switch {
		case it.tag == "spread":
			if src := f.toObject(it.v); src != nil {
				for _, k := range src.OwnEnumerableKeys() {
					v, _ := src.Get(k)
					o.DefineData(k, v, true, true, true)
				}
			}
		case len(it.tag) > 5 && it.tag[:5] == "prop:":
			o.DefineData(it.tag[5:], it.v, true, true, true)
		case len(it.tag) > 9 && it.tag[:9] == "accessor:":
			kind, name := splitAccessorTag(it.tag)
			mergeAccessor(o, name, kind, it.v)
		}
	}
	return plain(value.Object64(o))
}

// splitAccessorTag splits "accessor:get:name" into ("get", "name").
func splitAccessorTag(tag string) (kind, name string) {
	rest := tag[len("accessor:"):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == ':' {
			return rest[:i], rest[i+1:]
		}
	}
	return rest, ""
}

// mergeAccessor defines or extends an accessor property, so that separate
// `get x(){}`/`set x(v){}` literal entries for the same name combine into
// one getter/setter pair instead of clobbering each other.
func mergeAccessor(o *value.Object, name, kind string, fn value.Var) {
	var getter, setter *value.Var
	if existing := o.Props[name]; existing != nil {
		getter, setter = existing.Getter, existing.Setter
	}
	switch kind {
	case "get":
		getter = &fn
	case "set":
		setter = &fn
	}
	o.DefineAccessor(name, getter, setter, true, true)
}

// iterableValues enumerates the elements spread (array literals, call
// arguments) and array destructuring pull from v: array indices for Array
// objects, code points for strings. Generic iterator-protocol objects are
// not supported (documented in DESIGN.md), and there is no for-of form.
func (f *frame) iterableValues(v value.Var) []value.Var {
	switch v.Kind {
	case value.String:
		runes := []rune(v.Str)
		out := make([]value.Var, len(runes))
		for i, r := range runes {
			out[i] = value.Str(string(r))
		}
		return out
	case value.ObjectKind:
		if v.Obj.Class == "Array" {
			n := v.Obj.ArrayLength
			out := make([]value.Var, n)
			for i := 0; i < n; i++ {
				out[i], _ = v.Obj.Get(strconv.Itoa(i))
			}
			return out
		}
	}
	return nil
}

// newRegexp builds a boxed RegExp object from a /pattern/flags literal
// token (spec.md §6.3 "RegExp.prototype"), backed by the standard
// library's RE2 engine: no pack example wires a JS-syntax regex engine,
// so this is documented in DESIGN.md as a standard-library concern.
func (f *frame) newRegexp(src string) value.Var {
	pattern, flags := splitRegexpLiteral(src)
	o := value.NewObject(f.ctx.GC, f.ctx.RegExpProto, "RegExp")
	o.DefineData("source", value.Str(pattern), false, false, false)
	o.DefineData("flags", value.Str(flags), false, false, false)
	o.DefineData("lastIndex", value.Number64(0), true, false, false)
	return value.Object64(o)
}

// splitRegexpLiteral splits a Regexp token's payload, which the lexer
// stores as the pattern text and the flags joined by a NUL byte.
func splitRegexpLiteral(src string) (pattern, flags string) {
	for i := len(src) - 1; i >= 0; i-- {
		if src[i] == 0 {
			return src[:i], src[i+1:]
		}
	}
	return src, ""
}
