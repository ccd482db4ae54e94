package builtin

import (
	"time"

	"github.com/darkerbit/datesaurus"
	"gitlab.com/variadico/lctime"

	"github.com/zephyrtronium/minijs/value"
	"github.com/zephyrtronium/minijs/vm"
)

// installDate wires DateProto and the global Date constructor (spec.md
// §6.3 "Date built-in"). Grounded on the teacher's coreext/date package:
// a Date wraps a time.Time, formats via lctime.Strftime, and (following
// this module's expansion) parses human date text via
// github.com/darkerbit/datesaurus rather than coreext/date's
// parenthetical longForm-from-lctime trick, since this module has no
// fromString(str, format) two-argument form to drive that trick with.
func installDate(ctx *vm.Context) {
	proto := value.NewObject(ctx.GC, ctx.ObjectProto, "Date")
	ctx.DateProto = proto

	get := func(this value.Var) time.Time {
		if o := asObject(this); o != nil {
			return getDateValue(o)
		}
		return time.Time{}
	}

	method(ctx, proto, "getTime", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(float64(get(this).UnixNano()) / 1e6)
	})
	method(ctx, proto, "getFullYear", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(float64(get(this).Year()))
	})
	method(ctx, proto, "getMonth", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(float64(get(this).Month() - 1))
	})
	method(ctx, proto, "getDate", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(float64(get(this).Day()))
	})
	method(ctx, proto, "getDay", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(float64(get(this).Weekday()))
	})
	method(ctx, proto, "getHours", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(float64(get(this).Hour()))
	})
	method(ctx, proto, "getMinutes", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(float64(get(this).Minute()))
	})
	method(ctx, proto, "getSeconds", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(float64(get(this).Second()))
	})
	method(ctx, proto, "toISOString", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Str(get(this).UTC().Format("2006-01-02T15:04:05.000Z"))
	})
	method(ctx, proto, "toString", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Str(lctime.Strftime("%a %b %d %Y %H:%M:%S %Z", get(this)))
	})
	method(ctx, proto, "toDateString", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Str(lctime.Strftime("%a %b %d %Y", get(this)))
	})
	method(ctx, proto, "toLocaleDateString", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Str(lctime.Strftime("%x", get(this)))
	})
	method(ctx, proto, "valueOf", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(float64(get(this).UnixNano()) / 1e6)
	})

	ctorFn := nativeFn(ctx, "Date", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Str(lctime.Strftime("%a %b %d %Y %H:%M:%S %Z", time.Now()))
	})
	ctorFn.Obj.Construct = func(args []value.Var) value.Var {
		o := value.NewObject(ctx.GC, proto, "Date")
		setDateValue(o, newDateFromArgs(args))
		return value.Object64(o)
	}
	ctorFn.Obj.DefineData("prototype", value.Object64(proto), false, false, false)
	proto.DefineData("constructor", ctorFn, true, false, true)
	static(ctx, ctorFn.Obj, "now", 0, func(this value.Var, args []value.Var) value.Var {
		return value.Number64(float64(time.Now().UnixNano()) / 1e6)
	})
	static(ctx, ctorFn.Obj, "parse", 1, func(this value.Var, args []value.Var) value.Var {
		t, err := datesaurus.Parse(value.ToStr(arg(args, 0)))
		if err != nil {
			return value.Number64(numNaN())
		}
		return value.Number64(float64(t.UnixNano()) / 1e6)
	})

	ctx.RootScope().Declare("Date").V = ctorFn
}

// newDateFromArgs implements `new Date(...)`'s overload set: no arguments
// means now, one string argument parses via datesaurus (spec.md §6.3 "Date
// constructor"), one number argument means epoch milliseconds, and 2+
// numeric arguments are year/month/day/hour/minute/second/ms components.
func newDateFromArgs(args []value.Var) time.Time {
	switch len(args) {
	case 0:
		return time.Now()
	case 1:
		if args[0].Kind == value.String {
			if t, err := datesaurus.Parse(args[0].Str); err == nil {
				return t
			}
			return time.Time{}
		}
		ms := value.ToNumber(args[0])
		return time.Unix(0, int64(ms*1e6))
	}
	get := func(i int, def int) int {
		if i < len(args) {
			return int(value.ToNumber(args[i]))
		}
		return def
	}
	year := get(0, 1970)
	month := time.Month(get(1, 0) + 1)
	day := get(2, 1)
	hour := get(3, 0)
	min := get(4, 0)
	sec := get(5, 0)
	ms := get(6, 0)
	return time.Date(year, month, day, hour, min, sec, ms*1e6, time.Local)
}

// dateEpochSlot is a hidden own property holding a Date object's moment as
// epoch milliseconds (spec.md §6.3 "Date built-in"): value.Object's Prim
// slot is typed for a single boxed Var and is already spoken for by the
// String/Number/Boolean wrappers, so Date keeps its payload as an ordinary,
// non-enumerable, non-configurable property instead, which also means the
// collector's usual object graph walk (not a side table) keeps it alive.
const dateEpochSlot = "@@epochMillis"

func getDateValue(o *value.Object) time.Time {
	v, ok := o.Get(dateEpochSlot)
	if !ok {
		return time.Time{}
	}
	ms := value.ToNumber(v)
	return time.Unix(0, int64(ms*1e6))
}

func setDateValue(o *value.Object, t time.Time) {
	ms := float64(t.UnixNano()) / 1e6
	if o.HasOwnProperty(dateEpochSlot) {
		o.Set(dateEpochSlot, value.Number64(ms))
		return
	}
	o.DefineData(dateEpochSlot, value.Number64(ms), true, false, false)
}
