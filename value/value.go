// Package value implements the prototype-based object model (spec.md §3
// "Data Model"): a tagged Var value, property links carrying accessors and
// ownership, prototype-chain lookup, scope kinds, and a mark-and-sweep
// collector for reference cycles among objects.
//
// The shape is grounded on the teacher's Object/Slots/Protos/Interface
// design (object.go): a Var here plays the role Interface plays there, an
// Object plays the role of the teacher's *Object, and property links play
// the role the teacher's bare map entries play, extended with accessor and
// ownership bookkeeping the way TinyJS.cpp's CScriptVarLink does.
package value

import "fmt"

// Kind tags the variant a Var currently holds.
type Kind int

const (
	Undefined Kind = iota
	Null
	Bool
	Number
	String
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Null:
		return "object" // typeof null === "object", spec.md §3 "Coercion"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case ObjectKind:
		return "object"
	}
	return "undefined"
}

// Var is a single JavaScript-like value: a tagged variant over the
// primitive kinds plus a reference to an Object for objects, arrays, and
// functions (spec.md §3 "Var").
type Var struct {
	Kind Kind
	Num  float64
	Str  string
	B    bool
	Obj  *Object
}

var (
	VUndefined = Var{Kind: Undefined}
	VNull      = Var{Kind: Null}
	VTrue      = Var{Kind: Bool, B: true}
	VFalse     = Var{Kind: Bool, B: false}
)

func Number64(n float64) Var  { return Var{Kind: Number, Num: n} }
func Str(s string) Var        { return Var{Kind: String, Str: s} }
func Boolean(b bool) Var {
	if b {
		return VTrue
	}
	return VFalse
}
func Object64(o *Object) Var { return Var{Kind: ObjectKind, Obj: o} }

// IsCallable reports whether v can be the target of a call/new expression.
func (v Var) IsCallable() bool {
	return v.Kind == ObjectKind && v.Obj != nil && v.Obj.Call != nil
}

// Truthy implements ToBoolean (spec.md §3 "Coercion"): everything is
// truthy except undefined, null, false, 0, NaN, and "".
func (v Var) Truthy() bool {
	switch v.Kind {
	case Undefined, Null:
		return false
	case Bool:
		return v.B
	case Number:
		return v.Num != 0 && v.Num == v.Num // false for 0, -0, and NaN
	case String:
		return v.Str != ""
	case ObjectKind:
		return true
	}
	return false
}

func (v Var) String() string {
	switch v.Kind {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		if v.B {
			return "true"
		}
		return "false"
	case Number:
		return formatNumber(v.Num)
	case String:
		return v.Str
	case ObjectKind:
		return fmt.Sprintf("[object %s]", v.Obj.Class)
	}
	return "undefined"
}

// SameValueZero implements the equality Array.prototype.includes uses (NaN
// equals NaN, +0 equals -0), grounded on spec.md §3 "Equality"; === uses
// StrictEquals instead.
func SameValueZero(a, b Var) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Undefined, Null:
		return true
	case Bool:
		return a.B == b.B
	case Number:
		if a.Num != a.Num && b.Num != b.Num {
			return true // NaN
		}
		return a.Num == b.Num
	case String:
		return a.Str == b.Str
	case ObjectKind:
		return a.Obj == b.Obj
	}
	return false
}

// StrictEquals implements === (spec.md §3 "Equality"): like SameValueZero
// but NaN !== NaN and +0 === -0, matching ordinary IEEE-754 comparison.
func StrictEquals(a, b Var) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == Number {
		return a.Num == b.Num
	}
	return SameValueZero(a, b)
}
