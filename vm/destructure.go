package vm

import (
	"strconv"

	"github.com/zephyrtronium/minijs/compile"
	"github.com/zephyrtronium/minijs/value"
)

// runDestructure applies a destructuring assignment target's flattened
// steps against val. target carries the Destructure script on its own
// literal value (spec.md §4.2 "Object literal duality": the bare
// `{...} = expr` / `[...] = expr` forms attach their script to the
// literal's own closing entry, resolved at compile time by
// compile.resolvePattern).
func (f *frame) runDestructure(target item, val value.Var) {
	if target.destructure == nil {
		return
	}
	i := 0
	f.destructureWalk(target.destructure, &i, val)
}

// runDestructureSteps applies a `var`/`let` destructuring declaration's
// script (spec.md §4.2 "Destructuring pre-parse"), whose bindings were
// already hoisted into scope by the enclosing Forwarder.
func (f *frame) runDestructureSteps(steps []compile.DestructStep, val value.Var) {
	i := 0
	f.destructureWalk(steps, &i, val)
}

// destructureWalk recursively interprets one array-open/object-open group
// starting at *i, advancing *i past its matching close.
func (f *frame) destructureWalk(steps []compile.DestructStep, i *int, val value.Var) {
	if *i >= len(steps) {
		return
	}
	switch steps[*i].Kind {
	case "array-open":
		*i++
		idx := 0
		for steps[*i].Kind != "array-close" {
			s := steps[*i]
			switch s.Kind {
			case "elision":
				idx++
				*i++
			case "bind":
				if s.Rest {
					// Rest must be the last element in a valid array pattern,
					// so *i now sits exactly on "array-close"; fall through to
					// the loop condition instead of scanning further.
					f.bindName(s.Name, f.ctx.newArray(f.restArrayElems(val, idx)))
					*i++
					continue
				}
				f.bindName(s.Name, f.arrayElemAt(val, idx))
				idx++
				*i++
			case "array-open", "object-open":
				f.destructureWalk(steps, i, f.arrayElemAt(val, idx))
				idx++
			default:
				*i++
			}
		}
		*i++ // consume array-close
	case "object-open":
		*i++
		var consumed []string
		for steps[*i].Kind != "object-close" {
			s := steps[*i]
			switch s.Kind {
			case "bind":
				if s.Rest {
					f.bindName(s.Name, f.restObject(val, consumed))
					*i++
					continue
				}
				f.bindName(s.Name, f.propAt(val, s.Key))
				consumed = append(consumed, s.Key)
				*i++
			case "array-open", "object-open":
				key := steps[*i].Key
				f.destructureWalk(steps, i, f.propAt(val, key))
				consumed = append(consumed, key)
			default:
				*i++
			}
		}
		*i++ // consume object-close
	}
}

func (f *frame) arrayElemAt(val value.Var, idx int) value.Var {
	if val.Kind == value.ObjectKind {
		v, _ := val.Obj.Get(strconv.Itoa(idx))
		return v
	}
	elems := f.iterableValues(val)
	if idx < len(elems) {
		return elems[idx]
	}
	return value.VUndefined
}

func (f *frame) restArrayElems(val value.Var, from int) []value.Var {
	var elems []value.Var
	if val.Kind == value.ObjectKind && val.Obj.Class == "Array" {
		for i := from; i < val.Obj.ArrayLength; i++ {
			v, _ := val.Obj.Get(strconv.Itoa(i))
			elems = append(elems, v)
		}
		return elems
	}
	all := f.iterableValues(val)
	if from < len(all) {
		return all[from:]
	}
	return nil
}

func (f *frame) propAt(val value.Var, key string) value.Var {
	obj := f.toObject(val)
	if obj == nil {
		return value.VUndefined
	}
	v, _ := obj.Get(key)
	return v
}

func (f *frame) restObject(val value.Var, exclude []string) value.Var {
	o := value.NewObject(f.ctx.GC, f.ctx.ObjectProto, "Object")
	obj := f.toObject(val)
	if obj == nil {
		return value.Object64(o)
	}
outer:
	for _, k := range obj.OwnEnumerableKeys() {
		for _, ex := range exclude {
			if k == ex {
				continue outer
			}
		}
		v, _ := obj.Get(k)
		o.DefineData(k, v, true, true, true)
	}
	return value.Object64(o)
}

// bindName writes v into whatever cell name already resolves to via the
// scope chain, or creates an implicit global if it does not (spec.md §4.2
// "runtime destructuring unification": both the pre-hoisted var/let form
// and the bare assignment form resolve through the same scope-lookup
// write, since var/let targets are guaranteed already declared by the
// time this runs).
func (f *frame) bindName(name string, v value.Var) {
	if name == "" {
		return
	}
	if cell, withObj, found := f.scope.Lookup(name); found {
		if withObj != nil {
			withObj.Set(name, v)
			return
		}
		cell.V = v
		return
	}
	f.rootFor().Declare(name).V = v
}
