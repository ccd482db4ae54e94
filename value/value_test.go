package value

import "testing"

// TestTypeOf covers spec.md §8 invariant 4.
func TestTypeOf(t *testing.T) {
	gc := NewCollector()
	obj := NewObject(gc, nil, "Object")
	fn := NewObject(gc, nil, "Function")
	fn.Call = func(this Var, args []Var) Var { return VUndefined }

	tests := []struct {
		name string
		v    Var
		want string
	}{
		{"undefined", VUndefined, "undefined"},
		{"null", VNull, "object"},
		{"bool", VTrue, "boolean"},
		{"number", Number64(1), "number"},
		{"string", Str("a"), "string"},
		{"object", Object64(obj), "object"},
		{"function", Object64(fn), "function"},
	}
	for _, tt := range tests {
		if got := TypeOf(tt.v); got != tt.want {
			t.Errorf("%s: TypeOf = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// TestNaNEquality covers spec.md §8 scenario (g).
func TestNaNEquality(t *testing.T) {
	nan := Number64(nan())
	if StrictEquals(nan, nan) {
		t.Errorf("NaN === NaN should be false")
	}
	if !SameValueZero(nan, nan) {
		t.Errorf("SameValueZero(NaN, NaN) should be true")
	}
}

func nan() float64 {
	var z float64
	return z / z
}

// TestOwnEnumerableKeysSortedNoDuplicates covers spec.md §8 invariant 1:
// property lists are sorted (array-index keys ascending, then insertion
// order) and contain no duplicate names.
func TestOwnEnumerableKeysSortedNoDuplicates(t *testing.T) {
	gc := NewCollector()
	o := NewObject(gc, nil, "Object")
	o.DefineData("b", Number64(2), true, true, true)
	o.DefineData("2", Number64(0), true, true, true)
	o.DefineData("a", Number64(1), true, true, true)
	o.DefineData("0", Number64(0), true, true, true)
	o.DefineData("a", Number64(3), true, true, true) // redefine, not a new key
	o.DefineData("1", Number64(0), true, true, true)

	keys := o.OwnEnumerableKeys()
	want := []string{"0", "1", "2", "b", "a"}
	if len(keys) != len(want) {
		t.Fatalf("OwnEnumerableKeys = %v, want %v", keys, want)
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("keys[%d] = %q, want %q (full: %v)", i, keys[i], k, keys)
		}
	}
	seen := map[string]bool{}
	for _, k := range keys {
		if seen[k] {
			t.Errorf("duplicate key %q in %v", k, keys)
		}
		seen[k] = true
	}
}

// TestPrototypeChainCycleGuardTerminates covers spec.md §8 invariant 2:
// prototype-chain walks terminate even through a malformed cycle.
func TestPrototypeChainCycleGuardTerminates(t *testing.T) {
	gc := NewCollector()
	a := NewObject(gc, nil, "Object")
	b := NewObject(gc, a, "Object")
	a.Proto = b // cycle: a -> b -> a

	if _, ok := a.Get("nonexistent"); ok {
		t.Errorf("expected Get to report not-found for a cyclic chain")
	}
}

// TestCollectSweepsUnreachable covers spec.md §8 invariant 5, including a
// reference cycle plain refcounting could not free.
func TestCollectSweepsUnreachable(t *testing.T) {
	gc := NewCollector()
	root := NewObject(gc, nil, "Object")

	kept := NewObject(gc, nil, "Object")
	root.DefineData("kept", Object64(kept), true, true, true)

	cycleA := NewObject(gc, nil, "Object")
	cycleB := NewObject(gc, nil, "Object")
	cycleA.DefineData("b", Object64(cycleB), true, true, true)
	cycleB.DefineData("a", Object64(cycleA), true, true, true)

	if got, want := gc.Live(), 4; got != want {
		t.Fatalf("Live() before Collect = %d, want %d", got, want)
	}

	freed := gc.Collect([]Var{Object64(root)})
	if freed != 2 {
		t.Errorf("Collect freed %d objects, want 2 (the unreachable cycle)", freed)
	}
	if got, want := gc.Live(), 2; got != want {
		t.Errorf("Live() after Collect = %d, want %d", got, want)
	}
}

func TestGetSetAccessors(t *testing.T) {
	gc := NewCollector()
	o := NewObject(gc, nil, "Object")
	backing := Number64(42)
	getter := Object64(NewObject(gc, nil, "Function"))
	getter.Obj.Call = func(this Var, args []Var) Var { return backing }
	o.DefineAccessor("x", &getter, nil, true, true)

	got, ok := o.Get("x")
	if !ok || !StrictEquals(got, Number64(42)) {
		t.Fatalf("Get(x) = %v, %v; want 42, true", got, ok)
	}

	// Scenario (c): assigning through a getter-only accessor is a silent
	// no-op in sloppy mode.
	o.Set("x", Number64(7))
	got, _ = o.Get("x")
	if !StrictEquals(got, Number64(42)) {
		t.Errorf("Get(x) after Set = %v, want unchanged 42", got)
	}
}
