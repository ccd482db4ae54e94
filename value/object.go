package value

import "github.com/zephyrtronium/minijs/internal/idset"

// Link is a single property slot on an Object: a value or an accessor
// pair, plus the attribute flags spec.md §3 "Property" describes.
// Grounded on the teacher's bare Slots map (object.go) extended with the
// accessor/attribute bookkeeping TinyJS.cpp's CScriptVarLink carries.
type Link struct {
	Value  Var
	Getter *Var // callable Var, non-nil only for accessor properties
	Setter *Var

	Writable     bool
	Enumerable   bool
	Configurable bool

	// Owner is the Object this Link is defined directly on, set by
	// DefineData/DefineAccessor when the Link is defined, so assignment through a prototype-
	// chain read can tell an inherited data property from an own one
	// (spec.md §3 "Assignment resolves against the object the property was
	// found on").
	Owner *Object
}

// CallFunc is a native or bytecode-backed callable body. this is the
// receiver Var (undefined for a bare function call, per spec.md §4.3
// "this binding"); args are already-evaluated arguments.
type CallFunc func(this Var, args []Var) Var

// Object is the reference type behind every non-primitive Var: plain
// objects, arrays, functions, and the wrapper objects for boxed String/
// Number/Boolean primitives. Grounded on the teacher's *Object
// (Slots/Protos), reduced to single-inheritance to match spec.md §3's
// prototype-chain model.
type Object struct {
	Props map[string]*Link
	Keys  []string // insertion order, for enumeration
	Proto *Object

	// Class is the internal [[Class]] tag used by Object.prototype.toString
	// and by typeof/instanceof plumbing (spec.md §6.3 "toString tag").
	Class string

	Extensible bool

	// Call is set for callable objects (functions, bound functions,
	// native builtins). Construct, if set, backs `new`; functions without
	// an explicit Construct fall back to the default object-allocating
	// protocol the evaluator implements (spec.md §4.3 "new").
	Call      CallFunc
	Construct func(args []Var) Var

	// Prim holds the boxed primitive for `new String(...)`-style wrapper
	// objects (spec.md §6.3 "wrapper objects").
	Prim *Var

	// Closure is the captured lexical scope for a user-defined function,
	// nil for native functions and non-function objects (spec.md §3
	// "Function data", §4 "Scope").
	Closure *Scope

	// ArrayLength caches the length own-property for Class=="Array"
	// objects so index writes can grow it without a Props round trip.
	ArrayLength int

	id      uint32
	markGen uint32
}

// NewObject allocates an object with the given prototype, registering it
// with gc for later collection.
func NewObject(gc *Collector, proto *Object, class string) *Object {
	o := &Object{
		Props:      map[string]*Link{},
		Proto:      proto,
		Class:      class,
		Extensible: true,
	}
	gc.register(o)
	return o
}

func (o *Object) sever() {
	o.Props = nil
	o.Keys = nil
	o.Proto = nil
	o.Prim = nil
	o.Closure = nil
}

// findOwn returns the Link directly on o, or nil.
func (o *Object) findOwn(name string) *Link {
	return o.Props[name]
}

// find walks the prototype chain, returning the first Link found and the
// Object it belongs to. The guard set prevents infinite recursion if a
// malformed __proto__ assignment created a cycle (spec.md §6.3 "__proto__
// reassignment"), mirroring the teacher's getSlotRecurse checked map, but
// backed by internal/idset instead of a map[*Object]struct{} built fresh
// on every call.
func (o *Object) find(name string) (*Link, *Object) {
	seen := idset.New()
	for cur := o; cur != nil; cur = cur.Proto {
		if !seen.Add(int(cur.id)) {
			return nil, nil
		}
		if l, ok := cur.Props[name]; ok {
			return l, cur
		}
	}
	return nil, nil
}

// Get implements the [[Get]] internal method (spec.md §3 "Property
// access"): walk the prototype chain, invoking a getter with the
// originating object as `this` if one is found, otherwise returning the
// data value or undefined.
func (o *Object) Get(name string) (Var, bool) {
	l, _ := o.find(name)
	if l == nil {
		return VUndefined, false
	}
	if l.Getter != nil {
		if l.Getter.IsCallable() {
			return l.Getter.Obj.Call(Object64(o), nil), true
		}
		return VUndefined, true
	}
	return l.Value, true
}

// Set implements the [[Set]] internal method (spec.md §3 "Assignment"):
// prefer an inherited setter/data property's owner for the write target,
// otherwise create a new own data property, unless the object has been
// made non-extensible.
func (o *Object) Set(name string, v Var) {
	l, owner := o.find(name)
	if l != nil {
		if l.Setter != nil {
			if l.Setter.IsCallable() {
				l.Setter.Obj.Call(Object64(o), []Var{v})
			}
			return
		}
		if l.Getter != nil {
			return // accessor with no setter: silent no-op (sloppy mode)
		}
		if owner == o {
			if l.Writable {
				l.Value = v
			}
			return
		}
		if !l.Writable {
			return
		}
	}
	if !o.Extensible {
		return
	}
	o.DefineData(name, v, true, true, true)
}

// DefineData defines (or replaces) an own data property.
func (o *Object) DefineData(name string, v Var, writable, enumerable, configurable bool) {
	if _, exists := o.Props[name]; !exists {
		o.Keys = append(o.Keys, name)
	}
	l := &Link{Value: v, Writable: writable, Enumerable: enumerable, Configurable: configurable, Owner: o}
	o.Props[name] = l
}

// DefineAccessor defines (or replaces) an own accessor property.
func (o *Object) DefineAccessor(name string, getter, setter *Var, enumerable, configurable bool) {
	if _, exists := o.Props[name]; !exists {
		o.Keys = append(o.Keys, name)
	}
	l := &Link{Getter: getter, Setter: setter, Enumerable: enumerable, Configurable: configurable, Owner: o}
	o.Props[name] = l
}

// Delete removes an own property. It returns false only for an existing
// non-configurable property, and true otherwise, including when the
// property is absent (spec.md §4.3 "delete").
func (o *Object) Delete(name string) bool {
	l, ok := o.Props[name]
	if !ok {
		return true
	}
	if !l.Configurable {
		return false
	}
	delete(o.Props, name)
	for i, k := range o.Keys {
		if k == name {
			o.Keys = append(o.Keys[:i], o.Keys[i+1:]...)
			break
		}
	}
	return true
}

// HasProperty reports whether name is found anywhere on the prototype
// chain (the `in` operator, spec.md §4.3).
func (o *Object) HasProperty(name string) bool {
	l, _ := o.find(name)
	return l != nil
}

// HasOwnProperty reports whether name is an own property.
func (o *Object) HasOwnProperty(name string) bool {
	_, ok := o.Props[name]
	return ok
}

// OwnEnumerableKeys returns own enumerable property names in the order
// spec.md §3 "Enumeration order" requires: ascending array-index-like
// keys first, then remaining keys in insertion order.
func (o *Object) OwnEnumerableKeys() []string {
	var idx []string
	var rest []string
	for _, k := range o.Keys {
		l := o.Props[k]
		if l == nil || !l.Enumerable {
			continue
		}
		if isArrayIndex(k) {
			idx = append(idx, k)
		} else {
			rest = append(rest, k)
		}
	}
	sortArrayIndexKeys(idx)
	return append(idx, rest...)
}

func isArrayIndex(s string) bool {
	if s == "" {
		return false
	}
	if s == "0" {
		return true
	}
	if s[0] < '1' || s[0] > '9' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func sortArrayIndexKeys(keys []string) {
	// Insertion sort by numeric value: array literals rarely exceed a few
	// dozen elements, and this runs only during for-in/Object.keys, not
	// on the hot indexing path.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && numericKeyLess(keys[j], keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}

func numericKeyLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
