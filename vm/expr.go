package vm

import (
	"math"

	"github.com/zephyrtronium/minijs/compile"
	"github.com/zephyrtronium/minijs/token"
	"github.com/zephyrtronium/minijs/value"
)

// refKind distinguishes the two settable-reference shapes the evaluator
// produces while walking an expression (spec.md §4.3 "Name resolution":
// assignment, delete, typeof, and ++/-- all need the referenced slot, not
// just its current value).
type refKind int

const (
	refVar refKind = iota
	refProp
)

// ref is the settable-reference payload carried alongside a value on the
// expression stack.
type ref struct {
	kind refKind

	// refVar fields.
	cell     *value.Cell
	declared bool
	withObj  *value.Object // set if resolved through a `with` scope
	name     string
	scope    *value.Scope // scope to create an implicit global cell in

	// refProp fields.
	base value.Var
}

// item is one operand-stack slot. Most of the time only v is meaningful;
// r is present for anything that can be assigned to, deleted, or probed
// by typeof; tag marks the transient construction wrappers array/object
// literals use internally.
type item struct {
	v   value.Var
	r   *ref
	tag string

	// destructure is set instead of v being meaningful when a literal's
	// closing entry resolved as a destructuring target rather than a
	// value (spec.md §4.2 "Object literal duality"): compile.resolvePattern
	// mutates the literal's own closing entry in place, so the entry that
	// would otherwise build an array/object value instead surfaces its
	// steps for the following Assign{Str:"destructure"} to consume.
	destructure []compile.DestructStep
}

func plain(v value.Var) item { return item{v: v} }

// isExprKind reports whether k can appear as part of a postfix expression
// run; anything else terminates evalExprSelfTerminating.
func isExprKind(k token.Kind) bool {
	switch k {
	case token.Int, token.Float, token.String, token.Regexp,
		token.True, token.False, token.Null, token.This, token.Ident,
		token.Dot, token.LBracket, token.LBrace, token.LParen, token.New,
		token.Comma, token.Skip, token.ObjectLiteral, token.Ellipsis,
		token.FunctionOperator, token.Let,
		token.Or, token.Xor, token.And, token.Eq, token.NotEq, token.StrictEq, token.StrictNEq,
		token.Lt, token.Gt, token.LtEq, token.GtEq, token.In, token.Instanceof,
		token.Shl, token.Shr, token.UShr, token.Add, token.Sub, token.Mul, token.Div, token.Mod,
		token.Not, token.BitNot, token.Typeof, token.Void, token.Delete, token.Inc, token.Dec,
		token.Assign:
		return true
	}
	return false
}

// evalExprSelfTerminating evaluates the postfix run starting at cursor,
// stopping at the first entry that is not part of the expression grammar.
// The returned Outcome is non-SigNone only if evaluating a call or a
// destructuring assignment threw.
func (f *frame) evalExprSelfTerminating(cursor int) (value.Var, int, Outcome) {
	var stack []item
	push := func(it item) { stack = append(stack, it) }
	pop := func() item {
		n := len(stack)
		it := stack[n-1]
		stack = stack[:n-1]
		return it
	}
	top := func() item { return stack[len(stack)-1] }

	for cursor < f.buf.Len() {
		e := f.buf.At(cursor)
		if !isExprKind(e.Kind) {
			break
		}
		switch e.Kind {
		case token.Int, token.Float:
			push(plain(value.Number64(e.Num)))
		case token.String:
			push(plain(value.Str(e.Str)))
		case token.Regexp:
			push(plain(f.newRegexp(e.Str)))
		case token.True:
			push(plain(value.VTrue))
		case token.False:
			push(plain(value.VFalse))
		case token.Null:
			push(plain(value.VNull))
		case token.This:
			push(plain(f.scope.EnclosingThis()))
		case token.Ident:
			push(f.resolveIdent(e.Str))
		case token.Dot:
			obj := pop()
			ownerObj := f.toObject(obj.v)
			var v value.Var
			if ownerObj != nil {
				v, _ = ownerObj.Get(e.Str)
			}
			push(item{v: v, r: &ref{kind: refProp, base: obj.v, name: e.Str}})
		case token.LBracket:
			if e.Str == "literal" {
				if e.ObjectMode == compile.ModeDestructuring {
					f.discardLiteralElements(&stack, int(e.Num))
					push(item{destructure: e.Destructure})
				} else {
					push(f.buildArrayLiteral(&stack, int(e.Num)))
				}
			} else {
				key := pop()
				obj := pop()
				keyStr := value.ToStr(key.v)
				ownerObj := f.toObject(obj.v)
				var v value.Var
				if ownerObj != nil {
					v, _ = ownerObj.Get(keyStr)
				}
				push(item{v: v, r: &ref{kind: refProp, base: obj.v, name: keyStr}})
			}
		case token.LBrace:
			if e.ObjectMode == compile.ModeDestructuring {
				f.discardLiteralElements(&stack, int(e.Num))
				push(item{destructure: e.Destructure})
			} else {
				push(f.buildObjectLiteral(&stack, int(e.Num)))
			}
		case token.ObjectLiteral:
			f.tagLiteralElement(&stack, e.Str)
		case token.Ellipsis:
			v := pop()
			push(item{v: v.v, tag: "spread"})
		case token.LParen:
			argc := int(e.Num)
			raw := make([]item, argc)
			for i := argc - 1; i >= 0; i-- {
				raw[i] = pop()
			}
			var args []value.Var
			for _, it := range raw {
				if it.tag == "spread" {
					args = append(args, f.iterableValues(it.v)...)
				} else {
					args = append(args, it.v)
				}
			}
			callee := pop()
			this := value.VUndefined
			if callee.r != nil && callee.r.kind == refProp {
				this = callee.r.base
			}
			v, out := f.ctx.call(callee.v, this, args, f)
			if out.Sig != SigNone {
				return value.VUndefined, cursor, out
			}
			push(plain(v))
		case token.New:
			argc := int(e.Num)
			args := make([]value.Var, argc)
			for i := argc - 1; i >= 0; i-- {
				args[i] = pop().v
			}
			callee := pop()
			v, out := f.ctx.construct(callee.v, args, f)
			if out.Sig != SigNone {
				return value.VUndefined, cursor, out
			}
			push(plain(v))
		case token.Comma:
			b := pop()
			pop()
			push(b)
		case token.Skip:
			switch e.Str {
			case "group":
				// no-op: the wrapped expression already left its value.
			case "jtrue": // logical ||
				if top().v.Truthy() {
					cursor = cursor + e.Skip + 1
					continue
				}
				pop()
			case "jfalse": // logical &&
				if !top().v.Truthy() {
					cursor = cursor + e.Skip + 1
					continue
				}
				pop()
			case "condfalse": // ternary condition
				c := pop()
				if !c.v.Truthy() {
					cursor = cursor + e.Skip + 1
					continue
				}
			case "jump":
				cursor = cursor + e.Skip + 1
				continue
			case "postfix++", "postfix--":
				operand := pop()
				old := value.Number64(value.ToNumber(operand.v))
				delta := 1.0
				if e.Str == "postfix--" {
					delta = -1
				}
				f.writeRef(operand.r, value.Number64(old.Num+delta))
				push(plain(old))
			}
		case token.FunctionOperator:
			push(plain(f.makeFunction(e.Func)))
		case token.Let:
			v := pop()
			f.scope.Declare(e.Str).V = v.v
			push(v)
		default:
			out := f.evalOperator(e, &stack)
			if out.Sig != SigNone {
				return value.VUndefined, cursor, out
			}
		}
		cursor++
	}
	if len(stack) == 0 {
		return value.VUndefined, cursor, none
	}
	return top().v, cursor, none
}

// evalOperator handles every binary/unary/assignment opcode that is not
// itself a jump.
func (f *frame) evalOperator(e compile.Entry, stackp *[]item) Outcome {
	stack := *stackp
	pop := func() item {
		n := len(stack)
		it := stack[n-1]
		stack = stack[:n-1]
		return it
	}
	push := func(it item) { stack = append(stack, it) }
	defer func() { *stackp = stack }()

	switch e.Kind {
	case token.Add, token.Sub, token.Mul, token.Div, token.Mod,
		token.Or, token.Xor, token.And, token.Shl, token.Shr, token.UShr,
		token.Eq, token.NotEq, token.StrictEq, token.StrictNEq,
		token.Lt, token.Gt, token.LtEq, token.GtEq, token.In, token.Instanceof:
		if e.Str == "unary+" || e.Str == "unary-" {
			operand := pop()
			n := value.ToNumber(operand.v)
			if e.Str == "unary-" {
				n = -n
			}
			push(plain(value.Number64(n)))
			return none
		}
		b := pop()
		a := pop()
		push(plain(binaryOp(e.Kind, a.v, b.v)))
	case token.Not:
		v := pop()
		push(plain(value.Boolean(!v.v.Truthy())))
	case token.BitNot:
		v := pop()
		push(plain(value.Number64(float64(^toInt32(value.ToNumber(v.v))))))
	case token.Typeof:
		v := pop()
		if v.r != nil && v.r.kind == refVar && !v.r.declared {
			push(plain(value.Str("undefined")))
			return none
		}
		push(plain(value.Str(value.TypeOf(v.v))))
	case token.Void:
		pop()
		push(plain(value.VUndefined))
	case token.Delete:
		v := pop()
		if v.r != nil && v.r.kind == refProp && v.r.base.Kind == value.ObjectKind {
			push(plain(value.Boolean(v.r.base.Obj.Delete(v.r.name))))
			return none
		}
		push(plain(value.VTrue))
	case token.Inc, token.Dec:
		v := pop()
		delta := 1.0
		if e.Kind == token.Dec {
			delta = -1
		}
		newV := value.Number64(value.ToNumber(v.v) + delta)
		f.writeRef(v.r, newV)
		push(plain(newV))
	case token.Assign:
		b := pop()
		a := pop()
		push(plain(f.doAssign(e.Str, a, b)))
	}
	return none
}

// doAssign applies an Assign entry: op is "=" for a plain assignment, one
// of the compound-assignment spellings, or "destructure" (spec.md §4.2
// "Object literal duality").
func (f *frame) doAssign(op string, target, val item) value.Var {
	if op == "destructure" {
		f.runDestructure(target, val.v)
		return val.v
	}
	newV := val.v
	if op != "=" {
		cur := target.v
		switch op {
		case "+=":
			newV = value.Add(cur, val.v)
		case "-=":
			newV = value.Number64(value.ToNumber(cur) - value.ToNumber(val.v))
		case "*=":
			newV = value.Number64(value.ToNumber(cur) * value.ToNumber(val.v))
		case "/=":
			newV = value.Number64(value.ToNumber(cur) / value.ToNumber(val.v))
		case "%=":
			newV = value.Number64(math.Mod(value.ToNumber(cur), value.ToNumber(val.v)))
		case "<<=":
			newV = value.Number64(float64(toInt32(value.ToNumber(cur)) << (toUint32(value.ToNumber(val.v)) & 31)))
		case ">>=":
			newV = value.Number64(float64(toInt32(value.ToNumber(cur)) >> (toUint32(value.ToNumber(val.v)) & 31)))
		case ">>>=":
			newV = value.Number64(float64(toUint32(value.ToNumber(cur)) >> (toUint32(value.ToNumber(val.v)) & 31)))
		case "&=":
			newV = value.Number64(float64(toInt32(value.ToNumber(cur)) & toInt32(value.ToNumber(val.v))))
		case "|=":
			newV = value.Number64(float64(toInt32(value.ToNumber(cur)) | toInt32(value.ToNumber(val.v))))
		case "^=":
			newV = value.Number64(float64(toInt32(value.ToNumber(cur)) ^ toInt32(value.ToNumber(val.v))))
		}
	}
	f.writeRef(target.r, newV)
	return newV
}

func (f *frame) writeRef(r *ref, v value.Var) {
	if r == nil {
		return
	}
	switch r.kind {
	case refVar:
		if r.withObj != nil {
			r.withObj.Set(r.name, v)
			return
		}
		if r.cell != nil {
			r.cell.V = v
			return
		}
		// Undeclared: sloppy-mode implicit global.
		r.scope.Declare(r.name).V = v
	case refProp:
		obj := f.toObject(r.base)
		if obj != nil {
			obj.Set(r.name, v)
		}
	}
}

// resolveIdent looks up name in the scope chain, producing a settable
// reference regardless of whether the name currently resolves.
func (f *frame) resolveIdent(name string) item {
	cell, withObj, found := f.scope.Lookup(name)
	if !found {
		return item{v: value.VUndefined, r: &ref{kind: refVar, name: name, declared: false, scope: f.rootFor()}}
	}
	if withObj != nil {
		v, _ := withObj.Get(name)
		return item{v: v, r: &ref{kind: refVar, name: name, declared: true, withObj: withObj}}
	}
	return item{v: cell.V, r: &ref{kind: refVar, name: name, declared: true, cell: cell}}
}

// rootFor picks the scope an implicit global declared while evaluating in
// f should live in: the outermost scope in the chain, matching sloppy-mode
// "assignment to an undeclared name creates a property visible everywhere"
// semantics.
func (f *frame) rootFor() *value.Scope {
	s := f.scope
	for s.Parent != nil {
		s = s.Parent
	}
	return s
}

// toObject returns the Object backing v for property access; reading a
// property off a primitive falls through to that kind's prototype.
func (f *frame) toObject(v value.Var) *value.Object {
	if v.Kind == value.ObjectKind {
		return v.Obj
	}
	return f.ctx.protoFor(v)
}

func toInt32(fl float64) int32 {
	if math.IsNaN(fl) || math.IsInf(fl, 0) {
		return 0
	}
	return int32(int64(fl))
}

func toUint32(fl float64) uint32 {
	return uint32(toInt32(fl))
}
