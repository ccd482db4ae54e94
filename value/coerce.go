package value

// ToPrimitive implements the ToPrimitive abstract operation (spec.md §3
// "Coercion"): objects convert via valueOf/toString, in an order set by
// hint ("number" tries valueOf first, "string" tries toString first,
// "default" behaves like "number").
func ToPrimitive(v Var, hint string) Var {
	if v.Kind != ObjectKind || v.Obj == nil {
		return v
	}
	methods := []string{"valueOf", "toString"}
	if hint == "string" {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		fn, _ := v.Obj.Get(name)
		if fn.IsCallable() && fn.Obj.Call != nil {
			result := fn.Obj.Call(v, nil)
			if result.Kind != ObjectKind {
				return result
			}
		}
	}
	return Str(v.Obj.Class)
}

// ToStr implements ToString (spec.md §3 "Coercion").
func ToStr(v Var) string {
	if v.Kind == ObjectKind {
		return ToPrimitive(v, "string").String()
	}
	return v.String()
}

// TypeOf implements the `typeof` operator (spec.md §4.3 "typeof"):
// distinguishes callable objects ("function") from other objects and from
// undeclared-reference lookups, which the evaluator handles separately.
func TypeOf(v Var) string {
	if v.IsCallable() {
		return "function"
	}
	return v.Kind.String()
}

// Add implements the `+` operator's ToPrimitive-then-either-concat-or-add
// rule (spec.md §3 "Coercion", "Arithmetic").
func Add(a, b Var) Var {
	pa := ToPrimitive(a, "default")
	pb := ToPrimitive(b, "default")
	if pa.Kind == String || pb.Kind == String {
		return Str(ToStr(pa) + ToStr(pb))
	}
	return Number64(ToNumber(pa) + ToNumber(pb))
}
