package vm

import (
	"math"

	"github.com/zephyrtronium/minijs/token"
	"github.com/zephyrtronium/minijs/value"
)

// binaryOp evaluates one non-assignment, non-short-circuit binary operator
// (spec.md §4.3 "arithmetic/comparison/bitwise/in/instanceof levels").
func binaryOp(k token.Kind, a, b value.Var) value.Var {
	switch k {
	case token.Add:
		return value.Add(a, b)
	case token.Sub:
		return value.Number64(value.ToNumber(a) - value.ToNumber(b))
	case token.Mul:
		return value.Number64(value.ToNumber(a) * value.ToNumber(b))
	case token.Div:
		return value.Number64(value.ToNumber(a) / value.ToNumber(b))
	case token.Mod:
		return value.Number64(math.Mod(value.ToNumber(a), value.ToNumber(b)))
	case token.Or:
		return value.Number64(float64(toInt32(value.ToNumber(a)) | toInt32(value.ToNumber(b))))
	case token.Xor:
		return value.Number64(float64(toInt32(value.ToNumber(a)) ^ toInt32(value.ToNumber(b))))
	case token.And:
		return value.Number64(float64(toInt32(value.ToNumber(a)) & toInt32(value.ToNumber(b))))
	case token.Shl:
		return value.Number64(float64(toInt32(value.ToNumber(a)) << (toUint32(value.ToNumber(b)) & 31)))
	case token.Shr:
		return value.Number64(float64(toInt32(value.ToNumber(a)) >> (toUint32(value.ToNumber(b)) & 31)))
	case token.UShr:
		return value.Number64(float64(toUint32(value.ToNumber(a)) >> (toUint32(value.ToNumber(b)) & 31)))
	case token.Eq:
		return value.Boolean(looseEquals(a, b))
	case token.NotEq:
		return value.Boolean(!looseEquals(a, b))
	case token.StrictEq:
		return value.Boolean(value.StrictEquals(a, b))
	case token.StrictNEq:
		return value.Boolean(!value.StrictEquals(a, b))
	case token.Lt, token.Gt, token.LtEq, token.GtEq:
		return compareOp(k, a, b)
	case token.In:
		if b.Kind != value.ObjectKind {
			return value.VFalse
		}
		return value.Boolean(b.Obj.HasProperty(value.ToStr(a)))
	case token.Instanceof:
		return value.Boolean(instanceOf(a, b))
	}
	return value.VUndefined
}

// looseEquals implements == (spec.md's dialect keeps the classic ECMAScript
// abstract-equality coercions rather than dropping them as a Non-goal).
func looseEquals(a, b value.Var) bool {
	if a.Kind == b.Kind {
		return value.StrictEquals(a, b)
	}
	if isNullish(a) && isNullish(b) {
		return true
	}
	if isNullish(a) || isNullish(b) {
		return false
	}
	if a.Kind == value.Number && b.Kind == value.String {
		return a.Num == value.ToNumber(b)
	}
	if a.Kind == value.String && b.Kind == value.Number {
		return value.ToNumber(a) == b.Num
	}
	if a.Kind == value.Bool {
		return looseEquals(value.Number64(value.ToNumber(a)), b)
	}
	if b.Kind == value.Bool {
		return looseEquals(a, value.Number64(value.ToNumber(b)))
	}
	if a.Kind == value.ObjectKind && (b.Kind == value.Number || b.Kind == value.String) {
		return looseEquals(value.ToPrimitive(a, "default"), b)
	}
	if b.Kind == value.ObjectKind && (a.Kind == value.Number || a.Kind == value.String) {
		return looseEquals(a, value.ToPrimitive(b, "default"))
	}
	return false
}

func isNullish(v value.Var) bool { return v.Kind == value.Undefined || v.Kind == value.Null }

func compareOp(k token.Kind, a, b value.Var) value.Var {
	pa := value.ToPrimitive(a, "number")
	pb := value.ToPrimitive(b, "number")
	if pa.Kind == value.String && pb.Kind == value.String {
		sa, sb := pa.Str, pb.Str
		switch k {
		case token.Lt:
			return value.Boolean(sa < sb)
		case token.Gt:
			return value.Boolean(sa > sb)
		case token.LtEq:
			return value.Boolean(sa <= sb)
		case token.GtEq:
			return value.Boolean(sa >= sb)
		}
	}
	na, nb := value.ToNumber(pa), value.ToNumber(pb)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return value.VFalse
	}
	switch k {
	case token.Lt:
		return value.Boolean(na < nb)
	case token.Gt:
		return value.Boolean(na > nb)
	case token.LtEq:
		return value.Boolean(na <= nb)
	case token.GtEq:
		return value.Boolean(na >= nb)
	}
	return value.VFalse
}

// instanceOf walks a's prototype chain looking for ctor's "prototype"
// property (spec.md §3 "prototype-based object model").
func instanceOf(a, ctor value.Var) bool {
	if ctor.Kind != value.ObjectKind || a.Kind != value.ObjectKind {
		return false
	}
	protoV, ok := ctor.Obj.Get("prototype")
	if !ok || protoV.Kind != value.ObjectKind {
		return false
	}
	p := a.Obj.Proto
	for p != nil {
		if p == protoV.Obj {
			return true
		}
		p = p.Proto
	}
	return false
}
