package builtin

import (
	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

// installObject wires ObjectProto and the global Object constructor
// (spec.md §3 "every object's prototype chain terminates at
// Object.prototype", §6.3 "Object.prototype", "__proto__ reassignment").
// Grounded on the teacher's Object addon (object.go's slot table) reduced to
// this module's single-inheritance model.
func installObject(ctx *vm.Context) {
	proto := ctx.ObjectProto

	method(ctx, proto, "hasOwnProperty", 1, func(this value.Var, args []value.Var) value.Var {
		o := thisObject(ctx, this)
		if o == nil {
			return value.VFalse
		}
		return value.Boolean(o.HasOwnProperty(value.ToStr(arg(args, 0))))
	})
	method(ctx, proto, "isPrototypeOf", 1, func(this value.Var, args []value.Var) value.Var {
		o := thisObject(ctx, this)
		v := arg(args, 0)
		if o == nil || v.Kind != value.ObjectKind {
			return value.VFalse
		}
		for cur := v.Obj.Proto; cur != nil; cur = cur.Proto {
			if cur == o {
				return value.VTrue
			}
		}
		return value.VFalse
	})
	method(ctx, proto, "propertyIsEnumerable", 1, func(this value.Var, args []value.Var) value.Var {
		o := thisObject(ctx, this)
		if o == nil {
			return value.VFalse
		}
		name := value.ToStr(arg(args, 0))
		for _, k := range o.OwnEnumerableKeys() {
			if k == name {
				return value.VTrue
			}
		}
		return value.VFalse
	})
	method(ctx, proto, "toString", 0, func(this value.Var, args []value.Var) value.Var {
		o := thisObject(ctx, this)
		if o == nil {
			return value.Str("[object Undefined]")
		}
		return value.Str("[object " + o.Class + "]")
	})
	method(ctx, proto, "valueOf", 0, func(this value.Var, args []value.Var) value.Var {
		return this
	})
	proto.DefineAccessor("__proto__",
		accessorFn(ctx, func(this value.Var, args []value.Var) value.Var {
			o := thisObject(ctx, this)
			if o == nil || o.Proto == nil {
				return value.VNull
			}
			return value.Object64(o.Proto)
		}),
		accessorFn(ctx, func(this value.Var, args []value.Var) value.Var {
			o := thisObject(ctx, this)
			v := arg(args, 0)
			if o == nil {
				return value.VUndefined
			}
			if v.Kind == value.ObjectKind {
				o.Proto = v.Obj
			} else if v.Kind == value.Null {
				o.Proto = nil
			}
			return value.VUndefined
		}),
		false, true)

	ctorFn := nativeFn(ctx, "Object", 1, func(this value.Var, args []value.Var) value.Var {
		v := arg(args, 0)
		if v.Kind == value.ObjectKind {
			return v
		}
		return value.Object64(newPlainObject(ctx))
	})
	ctorFn.Obj.Construct = func(args []value.Var) value.Var {
		v := arg(args, 0)
		if v.Kind == value.ObjectKind {
			return v
		}
		return value.Object64(newPlainObject(ctx))
	}
	ctorFn.Obj.DefineData("prototype", value.Object64(proto), false, false, false)
	proto.DefineData("constructor", ctorFn, true, false, true)

	static(ctx, ctorFn.Obj, "keys", 1, func(this value.Var, args []value.Var) value.Var {
		o := asObject(arg(args, 0))
		if o == nil {
			return ctx.NewArray(nil)
		}
		keys := o.OwnEnumerableKeys()
		out := make([]value.Var, len(keys))
		for i, k := range keys {
			out[i] = value.Str(k)
		}
		return ctx.NewArray(out)
	})
	static(ctx, ctorFn.Obj, "values", 1, func(this value.Var, args []value.Var) value.Var {
		o := asObject(arg(args, 0))
		if o == nil {
			return ctx.NewArray(nil)
		}
		keys := o.OwnEnumerableKeys()
		out := make([]value.Var, len(keys))
		for i, k := range keys {
			out[i], _ = o.Get(k)
		}
		return ctx.NewArray(out)
	})
	static(ctx, ctorFn.Obj, "entries", 1, func(this value.Var, args []value.Var) value.Var {
		o := asObject(arg(args, 0))
		if o == nil {
			return ctx.NewArray(nil)
		}
		keys := o.OwnEnumerableKeys()
		out := make([]value.Var, len(keys))
		for i, k := range keys {
			v, _ := o.Get(k)
			out[i] = ctx.NewArray([]value.Var{value.Str(k), v})
		}
		return ctx.NewArray(out)
	})
	static(ctx, ctorFn.Obj, "assign", 2, func(this value.Var, args []value.Var) value.Var {
		if len(args) == 0 {
			return value.VUndefined
		}
		target := asObject(args[0])
		if target == nil {
			return arg(args, 0)
		}
		for _, src := range args[1:] {
			so := asObject(src)
			if so == nil {
				continue
			}
			for _, k := range so.OwnEnumerableKeys() {
				v, _ := so.Get(k)
				target.Set(k, v)
			}
		}
		return value.Object64(target)
	})
	static(ctx, ctorFn.Obj, "getPrototypeOf", 1, func(this value.Var, args []value.Var) value.Var {
		o := asObject(arg(args, 0))
		if o == nil || o.Proto == nil {
			return value.VNull
		}
		return value.Object64(o.Proto)
	})
	static(ctx, ctorFn.Obj, "setPrototypeOf", 2, func(this value.Var, args []value.Var) value.Var {
		o := asObject(arg(args, 0))
		if o == nil {
			return arg(args, 0)
		}
		p := arg(args, 1)
		if p.Kind == value.ObjectKind {
			o.Proto = p.Obj
		} else if p.Kind == value.Null {
			o.Proto = nil
		}
		return value.Object64(o)
	})
	static(ctx, ctorFn.Obj, "create", 2, func(this value.Var, args []value.Var) value.Var {
		p := arg(args, 0)
		o := value.NewObject(ctx.GC, nil, "Object")
		if p.Kind == value.ObjectKind {
			o.Proto = p.Obj
		}
		if props := asObject(arg(args, 1)); props != nil {
			for _, k := range props.OwnEnumerableKeys() {
				desc, _ := props.Get(k)
				applyDescriptor(o, k, desc)
			}
		}
		return value.Object64(o)
	})
	static(ctx, ctorFn.Obj, "freeze", 1, func(this value.Var, args []value.Var) value.Var {
		if o := asObject(arg(args, 0)); o != nil {
			o.Extensible = false
			for _, l := range o.Props {
				l.Writable = false
				l.Configurable = false
			}
		}
		return arg(args, 0)
	})
	static(ctx, ctorFn.Obj, "isFrozen", 1, func(this value.Var, args []value.Var) value.Var {
		o := asObject(arg(args, 0))
		if o == nil {
			return value.VTrue
		}
		if o.Extensible {
			return value.VFalse
		}
		for _, l := range o.Props {
			if l.Writable || l.Configurable {
				return value.VFalse
			}
		}
		return value.VTrue
	})
	static(ctx, ctorFn.Obj, "defineProperty", 3, func(this value.Var, args []value.Var) value.Var {
		o := asObject(arg(args, 0))
		if o == nil {
			return arg(args, 0)
		}
		applyDescriptor(o, value.ToStr(arg(args, 1)), arg(args, 2))
		return arg(args, 0)
	})

	ctx.RootScope().Declare("Object").V = ctorFn
}

// applyDescriptor implements the subset of Object.defineProperty's property
// descriptor object spec.md §6.3 names: value/writable/enumerable/
// configurable for data properties, get/set for accessors.
func applyDescriptor(o *value.Object, name string, desc value.Var) {
	d := asObject(desc)
	if d == nil {
		return
	}
	get, hasGet := d.Get("get")
	set, hasSet := d.Get("set")
	if (hasGet && get.IsCallable()) || (hasSet && set.IsCallable()) {
		var gp, sp *value.Var
		if hasGet && get.IsCallable() {
			gp = &get
		}
		if hasSet && set.IsCallable() {
			sp = &set
		}
		o.DefineAccessor(name, gp, sp, truthyProp(d, "enumerable"), truthyProp(d, "configurable"))
		return
	}
	v, _ := d.Get("value")
	o.DefineData(name, v, truthyProp(d, "writable"), truthyProp(d, "enumerable"), truthyProp(d, "configurable"))
}

func truthyProp(o *value.Object, name string) bool {
	v, ok := o.Get(name)
	return ok && v.Truthy()
}

// static defines a non-enumerable own function on a constructor object
// itself (Object.keys, Array.isArray, and similar).
func static(ctx *vm.Context, target *value.Object, name string, arity int, fn value.CallFunc) {
	target.DefineData(name, nativeFn(ctx, name, arity, fn), true, false, true)
}

// accessorFn wraps a Go closure as a callable Var suitable for
// DefineAccessor's getter/setter slots.
func accessorFn(ctx *vm.Context, fn value.CallFunc) *value.Var {
	o := value.NewObject(ctx.GC, ctx.FunctionProto, "Function")
	o.Call = fn
	v := value.Object64(o)
	return &v
}

// thisObject returns a method receiver's *value.Object. Primitives are not
// boxed: a primitive receiver yields nil, which these methods treat like a
// missing object.
func thisObject(ctx *vm.Context, this value.Var) *value.Object {
	return asObject(this)
}

func asObject(v value.Var) *value.Object {
	if v.Kind == value.ObjectKind {
		return v.Obj
	}
	return nil
}
