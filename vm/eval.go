package vm

import (
	"github.com/zephyrtronium/minijs/compile"
	"github.com/zephyrtronium/minijs/token"
	"github.com/zephyrtronium/minijs/value"
)

// frame is one cursor-walking activation against a TokenBuffer: a
// function body, the root program, or (conceptually) a nested block
// sharing the same buffer. Grounded on the teacher's split between VM
// (heap-wide state, here Context) and the thing that actually walks code
// (here frame), generalized from recursive Message.Eval to a cursor over
// a flat buffer.
type frame struct {
	ctx   *Context
	buf   *compile.TokenBuffer
	scope *value.Scope
	last  *value.Var // completion-value slot, shared by all frames of one evalProgram call
}

func (f *frame) child(scope *value.Scope) *frame {
	return &frame{ctx: f.ctx, buf: f.buf, scope: scope, last: f.last}
}

// evalProgram runs a whole TokenBuffer from its root Forward entry at
// index 0 (spec.md §4.2 "root Forward at index 0, statements until EOF").
func (f *frame) evalProgram() (value.Var, Outcome) {
	last := value.VUndefined
	f.last = &last
	fwd := f.buf.At(0)
	f.processForward(fwd.Forward)
	out := f.runStatements(1, f.buf.Len(), nil)
	return last, out
}

// runStatements evaluates statements starting at cursor until limit,
// stopping early on any non-SigNone Outcome.
func (f *frame) runStatements(cursor, limit int, labels []string) Outcome {
	for cursor < limit {
		next, out := f.evalStatement(cursor, labels)
		if out.Sig != SigNone {
			return out
		}
		cursor = next
	}
	return none
}

// enclosingVarScope returns the nearest FunctionScope/RootScope ancestor
// of s (spec.md §3 "var hoists to the enclosing function scope").
func enclosingVarScope(s *value.Scope) *value.Scope {
	for s.Parent != nil && s.Kind != value.FunctionScope && s.Kind != value.RootScope {
		s = s.Parent
	}
	return s
}

// processForward declares every name a Forwarder manifest names, into the
// appropriate scope, and materializes hoisted function declarations
// (spec.md §3 "Forwarder").
func (f *frame) processForward(fwd *compile.Forwarder) {
	if fwd == nil {
		return
	}
	varScope := enclosingVarScope(f.scope)
	for _, name := range fwd.Vars {
		varScope.Declare(name)
	}
	for _, name := range fwd.Lets {
		f.scope.Declare(name)
	}
	for name, fn := range fwd.Funcs {
		cell := f.scope.Declare(name)
		cell.V = f.makeFunction(fn)
	}
}

func labelsContain(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// evalStatement runs exactly one statement starting at cursor, returning
// the index just past it. Most constructs are reached by evaluating a
// leading expression to self-termination and dispatching on whatever
// marker Kind follows; a handful of bare-headed constructs are dispatched
// directly (spec.md §4.2/§4.3).
func (f *frame) evalStatement(cursor int, labels []string) (int, Outcome) {
	e := f.buf.At(cursor)
	switch e.Kind {
	case token.LBrace:
		// An empty object literal's closing entry is also an LBrace; only a
		// block head (no "literal" tag) opens a block.
		if e.Str != "literal" {
			return f.evalBlock(cursor, labels)
		}
	case token.Try:
		return f.evalTry(cursor, labels)
	case token.Break:
		return cursor + 1, Outcome{Sig: SigBreak, Label: e.Str}
	case token.Continue:
		return cursor + 1, Outcome{Sig: SigContinue, Label: e.Str}
	case token.FunctionPlaceholder:
		return cursor + 1, none
	case token.LoopLabel:
		return f.evalStatement(cursor+1, append(append([]string{}, e.Labels...), labels...))
	case token.Semi:
		return cursor + 1, none
	}

	v, after, out := f.evalExprSelfTerminating(cursor)
	if out.Sig != SigNone {
		return after, out
	}
	m := f.buf.At(after)
	switch m.Kind {
	case token.Semi:
		*f.last = v
		return after + 1, none
	case token.If:
		return f.evalIf(v, after, labels)
	case token.While:
		return f.evalWhile(v, after, labels)
	case token.Do:
		return f.evalDo(cursor, v, after, labels)
	case token.For:
		return f.evalFor(after, labels)
	case token.ForIn, token.ForEachIn:
		return f.evalForIn(v, after, labels)
	case token.Switch:
		return f.evalSwitch(v, after, labels)
	case token.With:
		return f.evalWith(v, after, labels)
	case token.Throw:
		return after + 1, Outcome{Sig: SigThrow, Value: v}
	case token.Return:
		return after + 1, Outcome{Sig: SigReturn, Value: v}
	case token.Var, token.Let:
		if cell, _, found := f.scope.Lookup(m.Str); found {
			cell.V = v
		}
		return after + 1, none
	case token.DestructuringVar:
		f.runDestructureSteps(m.Destructure, v)
		return after + 1, none
	}
	// Defensive fallback: treat as a completed no-op statement rather than
	// looping forever if the buffer ever has an unrecognized terminator.
	return after + 1, none
}

// evalBlock runs a `{ ... }` block in its own lexical scope (spec.md §3
// "lexical scopes (function, block, with)").
func (f *frame) evalBlock(head int, labels []string) (int, Outcome) {
	e := f.buf.At(head)
	tail := head + e.Skip
	fwd := f.buf.At(head + 1)
	child := f.child(value.NewScope(value.LetScope, f.scope))
	child.processForward(fwd.Forward)
	out := child.runStatements(head+2, tail, labels)
	return tail + 1, out
}

func (f *frame) evalIf(cond value.Var, head int, labels []string) (int, Outcome) {
	e := f.buf.At(head)
	if cond.Truthy() {
		return f.evalStatement(head+1, labels)
	}
	return head + e.Skip + 1, none
}

func (f *frame) evalWhile(cond value.Var, head int, labels []string) (int, Outcome) {
	e := f.buf.At(head)
	exit := head + e.Skip + 1
	condStart := int(e.Num)
	truthy := cond.Truthy()
	for truthy {
		_, out := f.evalStatement(head+1, nil)
		if stop, out2 := consumeLoopSignal(out, labels); stop {
			if out2.Sig != SigNone {
				return exit, out2
			}
			break
		}
		v, _, out := f.evalExprSelfTerminating(condStart)
		if out.Sig != SigNone {
			return exit, out
		}
		truthy = v.Truthy()
	}
	return exit, none
}

func (f *frame) evalDo(condStart int, cond value.Var, doHead int, labels []string) (int, Outcome) {
	e := f.buf.At(doHead)
	bodyStart := int(e.Num)
	exit := doHead + 1
	truthy := cond.Truthy()
	for truthy {
		_, out := f.evalStatement(bodyStart, nil)
		if stop, out2 := consumeLoopSignal(out, labels); stop {
			if out2.Sig != SigNone {
				return exit, out2
			}
			break
		}
		v, _, out := f.evalExprSelfTerminating(condStart)
		if out.Sig != SigNone {
			return exit, out
		}
		truthy = v.Truthy()
	}
	return exit, none
}

func (f *frame) evalFor(head int, labels []string) (int, Outcome) {
	e := f.buf.At(head)
	condStart := int(e.Num)
	iterStart := e.Aux
	bodyStart := head + 1
	exit := head + e.Skip + 1
	for {
		cv, _, out := f.evalExprSelfTerminating(condStart)
		if out.Sig != SigNone {
			return exit, out
		}
		if !cv.Truthy() {
			break
		}
		_, out = f.evalStatement(bodyStart, nil)
		if stop, out2 := consumeLoopSignal(out, labels); stop {
			if out2.Sig != SigNone {
				return exit, out2
			}
			break
		}
		_, _, out = f.evalExprSelfTerminating(iterStart)
		if out.Sig != SigNone {
			return exit, out
		}
	}
	return exit, none
}

// evalForIn handles both `for (x in obj)` and `for each (x in obj)`
// (spec.md §4.3 "for-in" / "for each in"): ForIn walks enumerable own+
// inherited keys by name; ForEachIn walks their values.
func (f *frame) evalForIn(obj value.Var, head int, labels []string) (int, Outcome) {
	e := f.buf.At(head)
	exit := head + e.Skip + 1
	if obj.Kind != value.ObjectKind {
		return exit, none
	}
	keys := enumerateKeys(obj.Obj)
	for _, k := range keys {
		var bound value.Var
		if e.Kind == token.ForEachIn {
			bound, _ = obj.Obj.Get(k)
		} else {
			bound = value.Str(k)
		}
		if cell, _, found := f.scope.Lookup(e.Str); found {
			cell.V = bound
		}
		_, out := f.evalStatement(head+1, nil)
		if stop, out2 := consumeLoopSignal(out, labels); stop {
			if out2.Sig != SigNone {
				return exit, out2
			}
			break
		}
	}
	return exit, none
}

// enumerateKeys walks the prototype chain collecting enumerable keys in
// spec.md §3 "Enumeration order", own object first, then ancestors, never
// repeating a name shadowed by a nearer one.
func enumerateKeys(o *value.Object) []string {
	seen := map[string]bool{}
	var out []string
	for cur := o; cur != nil; cur = cur.Proto {
		for _, k := range cur.OwnEnumerableKeys() {
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// consumeLoopSignal applies break/continue label matching for any loop
// construct: stop==true means exit the native Go loop; the accompanying
// Outcome is none if the loop should simply end (matched break) or a
// non-SigNone Outcome to propagate further up (unmatched/return/throw).
func consumeLoopSignal(out Outcome, labels []string) (stop bool, propagate Outcome) {
	switch out.Sig {
	case SigNone:
		return false, none
	case SigBreak:
		if out.Label == "" || labelsContain(labels, out.Label) {
			return true, none
		}
		return true, out
	case SigContinue:
		if out.Label == "" || labelsContain(labels, out.Label) {
			return false, none
		}
		return true, out
	default: // SigReturn, SigThrow
		return true, out
	}
}

// switchClause records one case/default clause's boundaries, computed
// during evalSwitch's search phase so its execution phase can fall
// through without re-evaluating already-matched tests.
type switchClause struct {
	isDefault bool
	testStart int
	bodyStart int
	bodyEnd   int
}

func (f *frame) evalSwitch(disc value.Var, head int, labels []string) (int, Outcome) {
	e := f.buf.At(head)
	exit := head + e.Skip + 1
	var clauses []switchClause
	matchIdx := -1
	defaultIdx := -1
	cursor := head + 1
	for cursor < exit {
		ce := f.buf.At(cursor)
		if ce.Kind == token.Default {
			bodyStart := cursor + 1
			bodyEnd := cursor + ce.Skip + 1
			clauses = append(clauses, switchClause{isDefault: true, bodyStart: bodyStart, bodyEnd: bodyEnd})
			if defaultIdx == -1 {
				defaultIdx = len(clauses) - 1
			}
			cursor = bodyEnd
			continue
		}
		testStart := cursor
		tv, after, out := f.evalExprSelfTerminating(cursor)
		if out.Sig != SigNone {
			return exit, out
		}
		ce2 := f.buf.At(after)
		bodyStart := after + 1
		bodyEnd := after + ce2.Skip + 1
		clauses = append(clauses, switchClause{testStart: testStart, bodyStart: bodyStart, bodyEnd: bodyEnd})
		if matchIdx == -1 && value.StrictEquals(disc, tv) {
			matchIdx = len(clauses) - 1
		}
		cursor = bodyEnd
	}
	startIdx := matchIdx
	if startIdx == -1 {
		startIdx = defaultIdx
	}
	if startIdx == -1 {
		return exit, none
	}
	for i := startIdx; i < len(clauses); i++ {
		out := f.runStatements(clauses[i].bodyStart, clauses[i].bodyEnd, labels)
		if out.Sig != SigNone {
			if out.Sig == SigBreak && (out.Label == "" || labelsContain(labels, out.Label)) {
				return exit, none
			}
			return exit, out
		}
	}
	return exit, none
}

func (f *frame) evalWith(obj value.Var, head int, labels []string) (int, Outcome) {
	e := f.buf.At(head)
	exit := head + e.Skip + 1
	if obj.Kind != value.ObjectKind {
		next, out := f.evalStatement(head+1, labels)
		_ = next
		return exit, out
	}
	withScope := value.NewScope(value.WithScope, f.scope)
	withScope.With = obj.Obj
	child := f.child(withScope)
	_, out := child.evalStatement(head+1, labels)
	return exit, out
}

// evalTry runs try/catch/finally (spec.md §4.3): a thrown value is
// matched against each catch clause in source order (bare, or guarded by
// an `if` expression evaluated with the exception bound), the first
// matching clause's block runs in a fresh scope, and any trailing
// finally always runs, its own outcome overriding whatever preceded it.
//
// A guarded catch compiles its guard expression directly before the
// Catch marker, but the guard's source text refers to the exception name
// that marker itself carries (`catch (e if e instanceof T)`); evalTry
// resolves this by scanning ahead for the Catch entry to learn the name
// before evaluating the guard, rather than needing it already bound.
func (f *frame) evalTry(head int, labels []string) (int, Outcome) {
	e := f.buf.At(head)
	exit := head + e.Skip + 1
	out := f.runOneBlock(head + 1)
	cursor := head + 1 + blockSpan(f, head+1)
	handled := false

	for cursor < exit && f.buf.At(cursor).Kind != token.Finally {
		chead, catchBodyIdx := f.catchClauseAt(cursor)
		hasGuard := chead.Num != 0
		needEval := !handled && out.Sig == SigThrow
		if needEval {
			matches := !hasGuard
			if hasGuard {
				guardScope := value.NewScope(value.LetScope, f.scope)
				guardScope.Declare(chead.Str).V = out.Value
				guardFrame := f.child(guardScope)
				val, _, gout := guardFrame.evalExprSelfTerminating(cursor)
				if gout.Sig != SigNone {
					return exit, gout
				}
				matches = val.Truthy()
			}
			if matches {
				bodyScope := value.NewScope(value.LetScope, f.scope)
				bodyScope.Declare(chead.Str).V = out.Value
				bodyFrame := f.child(bodyScope)
				out = bodyFrame.runOneBlock(catchBodyIdx)
				handled = true
			}
		}
		cursor = catchBodyIdx + blockSpan(f, catchBodyIdx)
	}

	if cursor < exit && f.buf.At(cursor).Kind == token.Finally {
		finBodyIdx := cursor + 1
		var saved value.Var
		if f.last != nil {
			saved = *f.last
		}
		finOut := f.runOneBlock(finBodyIdx)
		if finOut.Sig != SigNone {
			out = finOut
		} else if f.last != nil {
			// A finally block that completes normally leaves the
			// completion value of the try/catch part in place.
			*f.last = saved
		}
	}
	return exit, out
}

// catchClauseAt locates the Catch marker reachable from cursor (either
// cursor itself, for a bare catch, or after scanning past a guard
// expression that cannot itself contain a nested Catch entry) and returns
// it along with its block's start index.
func (f *frame) catchClauseAt(cursor int) (compile.Entry, int) {
	i := cursor
	for f.buf.At(i).Kind != token.Catch {
		i++
	}
	return f.buf.At(i), i + 1
}

// runOneBlock runs the single LBrace block starting at idx and returns
// its Outcome (discarding the cursor, since the caller already knows the
// block's span from the parser's Skip bookkeeping).
func (f *frame) runOneBlock(idx int) Outcome {
	_, out := f.evalBlock(idx, nil)
	return out
}

// blockSpan reports how many entries the LBrace block starting at idx
// occupies, including its own head and tail.
func blockSpan(f *frame, idx int) int {
	e := f.buf.At(idx)
	return e.Skip + 1
}
