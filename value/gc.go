package value

// Collector implements the mark-and-sweep garbage collector spec.md's
// cyclic-reference testable property requires: objects unreachable from
// any root are freed even across reference cycles, which plain reference
// counting (and the teacher's Go-runtime-wrapping Collector, collector.go)
// cannot demonstrate on demand. Grounded on TinyJS.cpp's temporaryID
// scheme (setTemporaryID_recursive / trace): each live Object carries a
// generation stamp; Collect walks the given roots stamping everything
// reachable with a fresh generation, then sweeps the registry for objects
// whose stamp is stale.
type Collector struct {
	registry map[uint32]*Object
	nextID   uint32
	gen      uint32
}

// NewCollector returns an empty Collector. A Context owns exactly one.
func NewCollector() *Collector {
	return &Collector{registry: map[uint32]*Object{}}
}

func (c *Collector) register(o *Object) {
	c.nextID++
	o.id = c.nextID
	c.registry[o.id] = o
}

// Collect marks every Object reachable from roots and frees everything
// else, severing freed objects' own outgoing references so cyclic garbage
// does not keep itself falsely reachable on a later pass. It returns the
// number of objects freed.
func (c *Collector) Collect(roots []Var) int {
	c.gen++
	for _, r := range roots {
		c.mark(r)
	}
	freed := 0
	for id, o := range c.registry {
		if o.markGen != c.gen {
			delete(c.registry, id)
			o.sever()
			freed++
		}
	}
	return freed
}

// Live reports how many objects the collector is currently tracking.
func (c *Collector) Live() int { return len(c.registry) }

func (c *Collector) mark(v Var) {
	if v.Kind != ObjectKind || v.Obj == nil {
		return
	}
	c.markObject(v.Obj)
}

func (c *Collector) markObject(o *Object) {
	if o.markGen == c.gen {
		return
	}
	o.markGen = c.gen
	if o.Proto != nil {
		c.markObject(o.Proto)
	}
	for _, k := range o.Keys {
		l := o.Props[k]
		if l == nil {
			continue
		}
		c.mark(l.Value)
		if l.Getter != nil {
			c.mark(*l.Getter)
		}
		if l.Setter != nil {
			c.mark(*l.Setter)
		}
	}
	if o.Prim != nil {
		c.mark(*o.Prim)
	}
	if o.Closure != nil {
		for _, v := range o.Closure.values() {
			c.mark(v)
		}
		if o.Closure.Parent != nil {
			c.markScope(o.Closure)
		}
	}
}

func (c *Collector) markScope(s *Scope) {
	for s != nil {
		for _, v := range s.values() {
			c.mark(v)
		}
		s = s.Parent
	}
}
