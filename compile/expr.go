package compile

import (
	"fmt"

	"github.com/zephyrtronium/minijs/token"
)

// compileExpr compiles a full comma-expression. The leading parameter is
// unused by callers in this file (kept for symmetry with statement-level
// skip patching call sites) but documents that this is the lowest
// precedence entry point (spec.md §4.3 "Comma").
func (p *Parser) compileExpr(_ int) error {
	if err := p.compileAssignment(); err != nil {
		return err
	}
	for p.cur.Kind == token.Comma {
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.compileAssignment(); err != nil {
			return err
		}
		p.emit(Entry{Kind: token.Comma, Pos: p.cur.Pos})
	}
	return nil
}

// compileExprNoComma compiles a single assignment-or-lower expression
// without consuming a top-level comma operator; used where the grammar
// forbids bare commas (e.g. call arguments, for-head clauses).
func (p *Parser) compileExprNoComma() error {
	return p.compileAssignment()
}

var assignOps = map[token.Kind]bool{
	token.Assign: true, token.AddAssign: true, token.SubAssign: true,
	token.MulAssign: true, token.DivAssign: true, token.ModAssign: true,
	token.ShlAssign: true, token.ShrAssign: true, token.UShrAssign: true,
	token.AndAssign: true, token.OrAssign: true, token.XorAssign: true,
}

// compileAssignment implements the right-associative Assign level
// (spec.md §4.3). The left side was already compiled as a reference
// (Ident/member/index postfix entries always produce a work link on the
// evaluator's stack, per spec.md §4.3 "Name resolution"), so no special
// backtracking is needed to discover assignability: the evaluator raises
// ReferenceError at eval time if the left side did not resolve to a
// settable link.
func (p *Parser) compileAssignment() error {
	startPos := p.cur.Pos
	if err := p.compileConditional(); err != nil {
		return err
	}
	litIdx := p.buf.len() - 1
	last := p.buf.Entries[litIdx]
	isBareLiteral := (last.Kind == token.LBrace || last.Kind == token.LBracket) && last.Str == "literal"
	if isBareLiteral && p.cur.Kind == token.Assign {
		// Object literal duality (spec.md §4.2): a bare {...}/[...]
		// immediately followed by `=` is a destructuring-assignment target,
		// not a value literal. Flatten it into a DestructStep script now
		// that the trailing context has resolved the ambiguity.
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.compileAssignment(); err != nil {
			return err
		}
		p.resolvePattern(litIdx)
		p.emit(Entry{Kind: token.Assign, Str: "destructure", Pos: startPos})
		return nil
	}
	if assignOps[p.cur.Kind] {
		op := p.cur
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.compileAssignment(); err != nil {
			return err
		}
		p.emit(Entry{Kind: token.Assign, Str: op.Kind.String(), Pos: startPos})
		return nil
	}
	if isBareLiteral {
		// Resolved as an ordinary value literal: no pattern context ever
		// appeared, so commit ModeStructuring explicitly (the zero value
		// ModeUnresolved must not reach the evaluator).
		p.buf.Entries[litIdx].ObjectMode = ModeStructuring
	}
	return nil
}

// compileConditional implements `?:`, right-associative, via inline skip
// jumps (spec.md §9 "an implementation may instead build an AST" license
// exercised here: short-circuiting control flow cannot be expressed in
// pure postfix form, so ternary and the logical operators below use the
// same Skip-offset mechanism as statement-level branches).
func (p *Parser) compileConditional() error {
	if err := p.compileLogicalOr(); err != nil {
		return err
	}
	if p.cur.Kind == token.Question {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return err
		}
		// condfalse always pops the condition (unlike the logical jtrue/
		// jfalse below, whose short-circuit result is the tested value
		// itself): the ternary's own condition is never part of its result.
		jf := p.emit(Entry{Kind: token.Skip, Str: "condfalse", Pos: pos}) // jump to else-branch if falsy
		if err := p.compileAssignment(); err != nil {
			return err
		}
		jo := p.emit(Entry{Kind: token.Skip, Str: "jump", Pos: pos}) // jump over else-branch
		p.buf.patchSkip(jf)
		if err := p.expect(token.Colon, "':' in conditional expression"); err != nil {
			return err
		}
		if err := p.compileAssignment(); err != nil {
			return err
		}
		p.buf.patchSkip(jo)
	}
	return nil
}

// compileLogicalOr, unlike the ternary above, must leave the *tested*
// value itself as the result on a short circuit (`a || b` is `a` when `a`
// is truthy): its jtrue/jfalse jumps peek rather than pop, only discarding
// the value when evaluation continues into the right operand.
func (p *Parser) compileLogicalOr() error {
	if err := p.compileLogicalAnd(); err != nil {
		return err
	}
	for p.cur.Kind == token.LogicalOr {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return err
		}
		j := p.emit(Entry{Kind: token.Skip, Str: "jtrue", Pos: pos})
		if err := p.compileLogicalAnd(); err != nil {
			return err
		}
		p.buf.patchSkip(j)
	}
	return nil
}

func (p *Parser) compileLogicalAnd() error {
	if err := p.compileBitOr(); err != nil {
		return err
	}
	for p.cur.Kind == token.LogicalAnd {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return err
		}
		j := p.emit(Entry{Kind: token.Skip, Str: "jfalse", Pos: pos})
		if err := p.compileBitOr(); err != nil {
			return err
		}
		p.buf.patchSkip(j)
	}
	return nil
}

// leftAssocBinary compiles a standard left-associative binary level that
// always evaluates both operands (spec.md §4.3 levels Bit..Mul); ops maps
// the accepted token kinds, next compiles the next-higher-precedence
// level.
func (p *Parser) leftAssocBinary(ops map[token.Kind]bool, next func() error) error {
	if err := next(); err != nil {
		return err
	}
	for ops[p.cur.Kind] {
		op := p.cur
		if err := p.advance(); err != nil {
			return err
		}
		if err := next(); err != nil {
			return err
		}
		p.emit(Entry{Kind: op.Kind, Str: op.Kind.String(), Pos: op.Pos})
	}
	return nil
}

func (p *Parser) compileBitOr() error {
	return p.leftAssocBinary(map[token.Kind]bool{token.Or: true}, p.compileBitXor)
}
func (p *Parser) compileBitXor() error {
	return p.leftAssocBinary(map[token.Kind]bool{token.Xor: true}, p.compileBitAnd)
}
func (p *Parser) compileBitAnd() error {
	return p.leftAssocBinary(map[token.Kind]bool{token.And: true}, p.compileEquality)
}
func (p *Parser) compileEquality() error {
	ops := map[token.Kind]bool{token.Eq: true, token.NotEq: true, token.StrictEq: true, token.StrictNEq: true}
	return p.leftAssocBinary(ops, p.compileRelational)
}
func (p *Parser) compileRelational() error {
	ops := map[token.Kind]bool{token.Lt: true, token.LtEq: true, token.Gt: true, token.GtEq: true, token.In: true, token.Instanceof: true}
	return p.leftAssocBinary(ops, p.compileShift)
}
func (p *Parser) compileShift() error {
	ops := map[token.Kind]bool{token.Shl: true, token.Shr: true, token.UShr: true}
	return p.leftAssocBinary(ops, p.compileAdditive)
}
func (p *Parser) compileAdditive() error {
	ops := map[token.Kind]bool{token.Add: true, token.Sub: true}
	return p.leftAssocBinary(ops, p.compileMultiplicative)
}
func (p *Parser) compileMultiplicative() error {
	ops := map[token.Kind]bool{token.Mul: true, token.Div: true, token.Mod: true}
	return p.leftAssocBinary(ops, p.compileUnary)
}

var unaryOps = map[token.Kind]bool{
	token.Not: true, token.BitNot: true, token.Add: true, token.Sub: true,
	token.Typeof: true, token.Void: true, token.Delete: true, token.Inc: true, token.Dec: true,
}

// compileUnary implements the right-to-left Unary level (spec.md §4.3),
// including prefix ++/-- and typeof/delete/void, which all require their
// operand to be compiled as a work-link reference rather than a
// dereferenced value (spec.md §4.3 "Name resolution").
func (p *Parser) compileUnary() error {
	if unaryOps[p.cur.Kind] {
		op := p.cur
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.compileUnary(); err != nil {
			return err
		}
		// Unary +/- share a Kind with the binary additive operators
		// (leftAssocBinary above), which a pure postfix stream cannot
		// disambiguate by Kind alone; tag them distinctly so the evaluator
		// pops one operand instead of two.
		str := op.Kind.String()
		if op.Kind == token.Add || op.Kind == token.Sub {
			str = "unary" + str
		}
		p.emit(Entry{Kind: op.Kind, Str: str, Pos: op.Pos})
		return nil
	}
	return p.compilePostfix()
}

// compilePostfix implements no-line-break postfix ++/-- (spec.md §4.3).
func (p *Parser) compilePostfix() error {
	if err := p.compileCallMember(); err != nil {
		return err
	}
	if (p.cur.Kind == token.Inc || p.cur.Kind == token.Dec) && !p.cur.LineBreakBefore {
		op := p.cur
		if err := p.advance(); err != nil {
			return err
		}
		p.emit(Entry{Kind: token.Skip, Str: "postfix" + op.Kind.String(), Pos: op.Pos})
	}
	return nil
}

// compileCallMember implements the Member and Call levels: `.`, `[...]`,
// and `(...)`  chained left to right (spec.md §4.3). `new` is handled in
// compilePrimary, which itself calls back into this chain for the
// constructor's own member/call suffix per usual JS grammar.
func (p *Parser) compileCallMember() error {
	if err := p.compilePrimary(); err != nil {
		return err
	}
	for {
		switch p.cur.Kind {
		case token.Dot:
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return err
			}
			if p.cur.Kind != token.Ident {
				return &SyntaxError{Pos: p.cur.Pos, Message: "expected property name after '.'"}
			}
			name := p.cur.Str
			if err := p.advance(); err != nil {
				return err
			}
			p.emit(Entry{Kind: token.Dot, Str: name, Pos: pos})
		case token.LBracket:
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.compileExpr(0); err != nil {
				return err
			}
			if err := p.expect(token.RBracket, "']'"); err != nil {
				return err
			}
			p.emit(Entry{Kind: token.LBracket, Pos: pos})
		case token.LParen:
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return err
			}
			n := 0
			for p.cur.Kind != token.RParen {
				if n > 0 {
					if err := p.expect(token.Comma, "','"); err != nil {
						return err
					}
				}
				if p.cur.Kind == token.Ellipsis {
					spreadPos := p.cur.Pos
					if err := p.advance(); err != nil {
						return err
					}
					if err := p.compileExprNoComma(); err != nil {
						return err
					}
					p.emit(Entry{Kind: token.Ellipsis, Pos: spreadPos})
				} else if err := p.compileExprNoComma(); err != nil {
					return err
				}
				n++
			}
			if err := p.advance(); err != nil {
				return err
			}
			p.emit(Entry{Kind: token.LParen, Num: float64(n), Pos: pos})
		default:
			return nil
		}
	}
}

// compilePrimary implements literals, `this`, parenthesized groups,
// array/object literals, function expressions, and `new` (spec.md §4.3
// Primary level).
func (p *Parser) compilePrimary() error {
	t := p.cur
	switch t.Kind {
	case token.Int, token.Float:
		if err := p.advance(); err != nil {
			return err
		}
		p.emit(Entry{Kind: t.Kind, Num: t.Num, Pos: t.Pos})
		return nil
	case token.String:
		if err := p.advance(); err != nil {
			return err
		}
		p.emit(Entry{Kind: token.String, Str: t.Str, Pos: t.Pos})
		return nil
	case token.Regexp:
		if err := p.advance(); err != nil {
			return err
		}
		p.emit(Entry{Kind: token.Regexp, Str: t.Str, Pos: t.Pos})
		return nil
	case token.True, token.False, token.Null, token.This:
		if err := p.advance(); err != nil {
			return err
		}
		p.emit(Entry{Kind: t.Kind, Pos: t.Pos})
		return nil
	case token.Ident:
		if err := p.advance(); err != nil {
			return err
		}
		p.emit(Entry{Kind: token.Ident, Str: t.Str, Pos: t.Pos})
		return nil
	case token.LParen:
		if err := p.advance(); err != nil {
			return err
		}
		head := p.emit(Entry{Kind: token.Skip, Str: "group", Pos: t.Pos})
		if err := p.compileExpr(0); err != nil {
			return err
		}
		if err := p.expect(token.RParen, "')'"); err != nil {
			return err
		}
		p.buf.patchSkip(head)
		return nil
	case token.LBracket:
		return p.compileArrayLiteral()
	case token.LBrace:
		return p.compileObjectLiteral()
	case token.Function:
		return p.compileFunctionExpr()
	case token.New:
		return p.compileNew()
	case token.Let:
		return p.compileLetExpr()
	}
	return &SyntaxError{Pos: t.Pos, Message: fmt.Sprintf("unexpected token %q", t.Kind.String())}
}

// compileNew implements `new Callee(args)` (spec.md §4.3 Function call
// protocol, step 7).
func (p *Parser) compileNew() error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.compileCallMemberNoCall(); err != nil {
		return err
	}
	n := 0
	if p.cur.Kind == token.LParen {
		if err := p.advance(); err != nil {
			return err
		}
		for p.cur.Kind != token.RParen {
			if n > 0 {
				if err := p.expect(token.Comma, "','"); err != nil {
					return err
				}
			}
			if err := p.compileExprNoComma(); err != nil {
				return err
			}
			n++
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	p.emit(Entry{Kind: token.New, Num: float64(n), Pos: pos})
	return nil
}

// compileCallMemberNoCall compiles the callee expression of a `new`
// without consuming a top-level call (the `(args)` belongs to `new`
// itself, per spec.md's `new f(args)` grammar), but still allows member
// access (`new a.b.C()`).
func (p *Parser) compileCallMemberNoCall() error {
	if err := p.compilePrimary(); err != nil {
		return err
	}
	for p.cur.Kind == token.Dot || p.cur.Kind == token.LBracket {
		switch p.cur.Kind {
		case token.Dot:
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return err
			}
			name := p.cur.Str
			if err := p.expect(token.Ident, "property name"); err != nil {
				return err
			}
			p.emit(Entry{Kind: token.Dot, Str: name, Pos: pos})
		case token.LBracket:
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.compileExpr(0); err != nil {
				return err
			}
			if err := p.expect(token.RBracket, "']'"); err != nil {
				return err
			}
			p.emit(Entry{Kind: token.LBracket, Pos: pos})
		}
	}
	return nil
}

// compileArrayLiteral compiles `[a, b, ...]`, which is also a valid
// destructuring-assignment target (spec.md §4.2 "Destructuring
// pre-parse"); the array-literal buffer form doubles as a replay script
// when used on the left of `=` (resolved in destructure.go).
func (p *Parser) compileArrayLiteral() error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	n := 0
	var starts []int
	for p.cur.Kind != token.RBracket {
		if n > 0 {
			if err := p.expect(token.Comma, "','"); err != nil {
				return err
			}
		}
		starts = append(starts, p.buf.len())
		if p.cur.Kind == token.Comma || p.cur.Kind == token.RBracket {
			p.emit(Entry{Kind: token.Null, Pos: p.cur.Pos}) // elision
		} else if p.cur.Kind == token.Ellipsis {
			spreadPos := p.cur.Pos
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.compileExprNoComma(); err != nil {
				return err
			}
			p.emit(Entry{Kind: token.Ellipsis, Pos: spreadPos})
		} else {
			if err := p.compileExprNoComma(); err != nil {
				return err
			}
		}
		n++
	}
	if err := p.advance(); err != nil {
		return err
	}
	p.emit(Entry{Kind: token.LBracket, Str: "literal", Num: float64(n), Pos: pos, elemStarts: starts})
	return nil
}

// compileObjectLiteral compiles `{...}`. Per spec.md §4.2 "Object literal
// duality", the brace form is ambiguous between a value-producing object
// literal and a destructuring pattern until trailing context resolves
// it; ModeUnresolved is recorded here and compileAssignment or
// resolvePattern commits the interpretation once the parser sees what follows (`=` for
// a pattern, anything else for a literal).
func (p *Parser) compileObjectLiteral() error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	n := 0
	var starts []int
	for p.cur.Kind != token.RBrace {
		if n > 0 {
			if err := p.expect(token.Comma, "','"); err != nil {
				return err
			}
		}
		if p.cur.Kind == token.RBrace {
			break
		}
		starts = append(starts, p.buf.len())
		if p.cur.Kind == token.Ellipsis {
			// `{...rest}` as a destructuring target, or `{...src}` as an
			// own-enumerable-property spread in a value literal; which
			// applies is resolved once trailing context disambiguates the
			// enclosing literal (compileAssignment/resolvePattern).
			spreadPos := p.cur.Pos
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.compileExprNoComma(); err != nil {
				return err
			}
			p.emit(Entry{Kind: token.Ellipsis, Pos: spreadPos})
			n++
			continue
		}
		isAccessor := p.cur.Kind == token.Get || (p.cur.Kind == token.Ident && (p.cur.Str == "get" || p.cur.Str == "set"))
		if isAccessor {
			// Disambiguate `get`/`set` as an accessor introducer from a
			// property literally named "get"/"set" (`{get: 1}`): only the
			// former is followed directly by another property-key token,
			// never by `:`.
			nxt, err := p.peekN(0)
			if err == nil && nxt.Kind == token.Colon {
				isAccessor = false
			}
		}
		if isAccessor {
			kind := p.cur.Str
			if err := p.advance(); err != nil {
				return err
			}
			name := p.cur.Str
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.compileFunctionBody(name, false); err != nil {
				return err
			}
			p.emit(Entry{Kind: token.ObjectLiteral, Str: "accessor:" + kind + ":" + name, Pos: pos})
			n++
			continue
		}
		key := p.cur.Str
		if p.cur.Kind != token.String && p.cur.Kind != token.Ident && p.cur.Kind != token.Int {
			return &SyntaxError{Pos: p.cur.Pos, Message: "expected property key"}
		}
		keyPos := p.cur.Pos
		if err := p.advance(); err != nil {
			return err
		}
		if p.cur.Kind == token.Colon {
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.compileExprNoComma(); err != nil {
				return err
			}
		} else {
			// Shorthand `{a}` (value literal) / `{a}` (destructuring
			// pattern, binds `a`): the key doubles as the value expression.
			p.emit(Entry{Kind: token.Ident, Str: key, Pos: keyPos})
		}
		p.emit(Entry{Kind: token.ObjectLiteral, Str: "prop:" + key, Pos: pos})
		n++
	}
	if err := p.advance(); err != nil {
		return err
	}
	p.emit(Entry{Kind: token.LBrace, Str: "literal", Num: float64(n), Pos: pos, ObjectMode: ModeUnresolved, elemStarts: starts})
	return nil
}

// compileFunctionExpr compiles a `function [name](params) body` literal
// used in expression position (spec.md §3 "Function data").
func (p *Parser) compileFunctionExpr() error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	name := ""
	if p.cur.Kind == token.Ident {
		name = p.cur.Str
		if err := p.advance(); err != nil {
			return err
		}
	}
	if err := p.compileFunctionBody(name, false); err != nil {
		return err
	}
	_ = pos
	return nil
}

// compileLetExpr compiles the expression form `let (bindings) expr`
// (spec.md §4.3 Statements, "var/let"): a let-expression runs its
// initializers and body with a fresh let-scope active for both. The body
// is a single expression; a statement body is not accepted.
func (p *Parser) compileLetExpr() error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.expect(token.LParen, "'(' after let"); err != nil {
		return err
	}
	letScope := newScope(p.scope, false)
	p.scope = letScope
	fwdIdx := p.emit(Entry{Kind: token.Forward, Pos: pos})
	for p.cur.Kind != token.RParen {
		name := p.cur.Str
		if err := p.expect(token.Ident, "binding name"); err != nil {
			return err
		}
		if err := p.scope.declareLet(pos, name); err != nil {
			return err
		}
		if p.cur.Kind == token.Assign {
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.compileExprNoComma(); err != nil {
				return err
			}
		} else {
			p.emit(Entry{Kind: token.Null, Pos: pos})
		}
		p.emit(Entry{Kind: token.Let, Str: name, Pos: pos})
		if p.cur.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return err
			}
		}
	}
	if err := p.advance(); err != nil {
		return err
	}
	p.buf.Entries[fwdIdx].Forward = p.scope.forwarder
	if err := p.compileExprNoComma(); err != nil {
		return err
	}
	p.scope = letScope.parent
	return nil
}
