package compile

import (
	"github.com/zephyrtronium/minijs/token"
)

// parseStatement dispatches to the statement grammar of spec.md §4.3.
func (p *Parser) parseStatement() error {
	// Collect any labels prefixing this statement (spec.md §4.2
	// "Loop-label injection"): `label: statement`.
	for p.cur.Kind == token.Ident {
		pk, err := p.peek()
		if err != nil {
			return err
		}
		if pk.Kind != token.Colon {
			break
		}
		p.pendingLabels = append(p.pendingLabels, p.cur.Str)
		if err := p.advance(); err != nil { // ident
			return err
		}
		if err := p.advance(); err != nil { // colon
			return err
		}
	}

	switch p.cur.Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.Var, token.Let:
		if err := p.parseVarDecl(); err != nil {
			return err
		}
		return p.consumeSemi()
	case token.Function:
		return p.parseFunctionDecl()
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.Do:
		return p.parseDoWhile()
	case token.For:
		return p.parseFor()
	case token.Switch:
		return p.parseSwitch()
	case token.With:
		return p.parseWith()
	case token.Try:
		return p.parseTry()
	case token.Throw:
		return p.parseThrow()
	case token.Return:
		return p.parseReturn()
	case token.Break:
		return p.parseBreakContinue(token.Break)
	case token.Continue:
		return p.parseBreakContinue(token.Continue)
	case token.Semi:
		return p.advance()
	default:
		if err := p.compileExpr(0); err != nil {
			return err
		}
		p.emit(Entry{Kind: token.Semi})
		return p.consumeSemi()
	}
}

// injectLoopLabels emits a LoopLabel marker carrying any pending labels
// (spec.md §4.2): applies only to loop and try statements.
func (p *Parser) injectLoopLabels() {
	if len(p.pendingLabels) == 0 {
		return
	}
	p.emit(Entry{Kind: token.LoopLabel, Labels: p.pendingLabels})
	p.pendingLabels = nil
}

func (p *Parser) parseBlock() error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	parent := p.scope
	blockScope := newScope(parent, false)
	p.scope = blockScope
	head := p.emit(Entry{Kind: token.LBrace, Pos: pos})
	fwdIdx := p.emit(Entry{Kind: token.Forward, Pos: pos})
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	if err := p.expect(token.RBrace, "'}'"); err != nil {
		return err
	}
	tail := p.emit(Entry{Kind: token.RBrace, Pos: p.cur.Pos})
	p.buf.patchSkip(head)
	_ = tail
	p.buf.Entries[fwdIdx].Forward = blockScope.forwarder
	p.scope = parent
	return nil
}

// parseVarDecl handles `var`/`let` declaration lists, including
// destructuring targets (spec.md §4.2 "Destructuring pre-parse",
// §4.3 "var / let"). Hoisting itself already happened conceptually via
// the enclosing Forwarder; this only compiles the initializers.
func (p *Parser) parseVarDecl() error {
	isLet := p.cur.Kind == token.Let
	kw := p.cur.Kind
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	for {
		if p.cur.Kind == token.LBracket || p.cur.Kind == token.LBrace {
			steps, err := p.parseBindingPattern(isLet)
			if err != nil {
				return err
			}
			if err := p.expect(token.Assign, "'=' in destructuring declaration"); err != nil {
				return err
			}
			if err := p.compileExprNoComma(); err != nil {
				return err
			}
			p.emit(Entry{Kind: token.DestructuringVar, Destructure: steps, Pos: pos})
		} else {
			name := p.cur.Str
			if err := p.expect(token.Ident, "binding name"); err != nil {
				return err
			}
			if isLet {
				if err := p.scope.declareLet(pos, name); err != nil {
					return err
				}
			} else {
				if err := p.scope.declareVar(pos, name); err != nil {
					return err
				}
			}
			if p.cur.Kind == token.Assign {
				if err := p.advance(); err != nil {
					return err
				}
				if err := p.compileExprNoComma(); err != nil {
					return err
				}
				p.emit(Entry{Kind: kw, Str: name, Pos: pos})
			}
		}
		if p.cur.Kind != token.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// parseBindingPattern recursively pre-parses a `[...]`/`{...}`
// destructuring target into a flat traversal script (spec.md §4.2),
// declaring each bound leaf name in the current scope as it goes.
func (p *Parser) parseBindingPattern(isLet bool) ([]DestructStep, error) {
	var steps []DestructStep
	switch p.cur.Kind {
	case token.LBracket:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		steps = append(steps, DestructStep{Kind: "array-open"})
		idx := 0
		for p.cur.Kind != token.RBracket {
			if idx > 0 {
				if err := p.expect(token.Comma, "','"); err != nil {
					return nil, err
				}
			}
			if p.cur.Kind == token.Comma {
				steps = append(steps, DestructStep{Kind: "elision"})
			} else if p.cur.Kind == token.LBracket || p.cur.Kind == token.LBrace {
				inner, err := p.parseBindingPattern(isLet)
				if err != nil {
					return nil, err
				}
				steps = append(steps, inner...)
			} else {
				name := p.cur.Str
				if err := p.expect(token.Ident, "binding name"); err != nil {
					return nil, err
				}
				if err := p.declareBinding(isLet, pos, name); err != nil {
					return nil, err
				}
				steps = append(steps, DestructStep{Kind: "bind", Name: name})
			}
			idx++
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		steps = append(steps, DestructStep{Kind: "array-close"})
	case token.LBrace:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		steps = append(steps, DestructStep{Kind: "object-open"})
		idx := 0
		for p.cur.Kind != token.RBrace {
			if idx > 0 {
				if err := p.expect(token.Comma, "','"); err != nil {
					return nil, err
				}
			}
			key := p.cur.Str
			if err := p.expect(token.Ident, "property key"); err != nil {
				return nil, err
			}
			name := key
			if p.cur.Kind == token.Colon {
				if err := p.advance(); err != nil {
					return nil, err
				}
				name = p.cur.Str
				if err := p.expect(token.Ident, "binding name"); err != nil {
					return nil, err
				}
			}
			if err := p.declareBinding(isLet, pos, name); err != nil {
				return nil, err
			}
			steps = append(steps, DestructStep{Kind: "bind", Key: key, Name: name})
			idx++
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		steps = append(steps, DestructStep{Kind: "object-close"})
	default:
		return nil, &SyntaxError{Pos: p.cur.Pos, Message: "expected destructuring pattern"}
	}
	return steps, nil
}

func (p *Parser) declareBinding(isLet bool, pos token.Pos, name string) error {
	if isLet {
		return p.scope.declareLet(pos, name)
	}
	return p.scope.declareVar(pos, name)
}

// parseFunctionDecl handles a hoisted function declaration (spec.md §3
// "Forwarder", "hoisted function declarations").
func (p *Parser) parseFunctionDecl() error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	name := p.cur.Str
	if err := p.expect(token.Ident, "function name"); err != nil {
		return err
	}
	fn := &FuncLit{Name: name, File: p.file, Line: pos.Line}
	fnScope := p.enclosingFuncScope()
	fnScope.forwarder.Funcs[name] = fn
	if err := p.compileFunctionBodyInto(fn, false); err != nil {
		return err
	}
	p.emit(Entry{Kind: token.FunctionPlaceholder, Str: name, Func: fn, Pos: pos})
	return nil
}

func (p *Parser) enclosingFuncScope() *scopeInfo { return p.scope.enclosingFunc() }

// compileFunctionBody parses `(params) { body }` (or `(params) expr` for
// a lambda body) and emits a FunctionOperator entry carrying the parsed
// FuncLit, used for function expressions and object accessors.
func (p *Parser) compileFunctionBody(name string, isLambdaAllowed bool) error {
	fn := &FuncLit{Name: name, File: p.file, Line: p.cur.Pos.Line}
	if err := p.compileFunctionBodyInto(fn, isLambdaAllowed); err != nil {
		return err
	}
	p.emit(Entry{Kind: token.FunctionOperator, Func: fn, Pos: p.cur.Pos})
	return nil
}

func (p *Parser) compileFunctionBodyInto(fn *FuncLit, isLambdaAllowed bool) error {
	if err := p.expect(token.LParen, "'(' in function parameters"); err != nil {
		return err
	}
	sub := &Parser{lx: p.lx, file: p.file, buf: newBuffer(), cur: p.cur, queue: p.queue}
	funcScope := newScope(p.scope, true)
	sub.scope = funcScope
	n := 0
	for sub.cur.Kind != token.RParen {
		if n > 0 {
			if err := sub.expect(token.Comma, "','"); err != nil {
				return err
			}
		}
		if sub.cur.Kind == token.LBracket || sub.cur.Kind == token.LBrace {
			steps, err := sub.parseBindingPattern(false)
			if err != nil {
				return err
			}
			fn.Params = append(fn.Params, Param{Pattern: steps})
		} else {
			pname := sub.cur.Str
			if err := sub.expect(token.Ident, "parameter name"); err != nil {
				return err
			}
			if err := funcScope.declareVar(sub.cur.Pos, pname); err != nil {
				return err
			}
			fn.Params = append(fn.Params, Param{Name: pname})
		}
		n++
	}
	if err := sub.advance(); err != nil {
		return err
	}
	fwdIdx := sub.emit(Entry{Kind: token.Forward, Pos: sub.cur.Pos})
	if isLambdaAllowed && sub.cur.Kind != token.LBrace {
		fn.IsLambda = true
		if err := sub.compileExprNoComma(); err != nil {
			return err
		}
	} else {
		if err := sub.expect(token.LBrace, "'{' in function body"); err != nil {
			return err
		}
		for sub.cur.Kind != token.RBrace && sub.cur.Kind != token.EOF {
			if err := sub.parseStatement(); err != nil {
				return err
			}
		}
		if err := sub.expect(token.RBrace, "'}'"); err != nil {
			return err
		}
	}
	sub.buf.Entries[fwdIdx].Forward = funcScope.forwarder
	fn.Body = sub.buf
	// Resume the outer parser's lexer position where the sub-parser left
	// off (spec.md §4.2 "single pass, no backtracking except bounded
	// lookahead at for and function").
	p.cur = sub.cur
	p.queue = sub.queue
	return nil
}

func (p *Parser) parseIf() error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.expect(token.LParen, "'(' after if"); err != nil {
		return err
	}
	if err := p.compileExpr(0); err != nil {
		return err
	}
	if err := p.expect(token.RParen, "')'"); err != nil {
		return err
	}
	ifHead := p.emit(Entry{Kind: token.If, Pos: pos})
	if err := p.parseStatement(); err != nil {
		return err
	}
	if p.cur.Kind == token.Else {
		jumpOverElse := p.emit(Entry{Kind: token.Skip, Str: "endif", Pos: pos})
		p.buf.patchSkip(ifHead) // false-branch target: the else clause itself
		if err := p.advance(); err != nil {
			return err
		}
		elseHead := p.buf.len()
		_ = elseHead
		if err := p.parseStatement(); err != nil {
			return err
		}
		p.buf.patchSkip(jumpOverElse)
	} else {
		p.buf.patchSkip(ifHead)
	}
	return nil
}

func (p *Parser) parseWhile() error {
	pos := p.cur.Pos
	p.injectLoopLabels()
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.expect(token.LParen, "'(' after while"); err != nil {
		return err
	}
	condStart := p.buf.len()
	if err := p.compileExpr(0); err != nil {
		return err
	}
	if err := p.expect(token.RParen, "')'"); err != nil {
		return err
	}
	head := p.emit(Entry{Kind: token.While, Num: float64(condStart), Pos: pos})
	if err := p.parseStatement(); err != nil {
		return err
	}
	p.buf.patchSkip(head)
	return nil
}

func (p *Parser) parseDoWhile() error {
	pos := p.cur.Pos
	p.injectLoopLabels()
	if err := p.advance(); err != nil {
		return err
	}
	bodyStart := p.buf.len()
	if err := p.parseStatement(); err != nil {
		return err
	}
	if err := p.expect(token.While, "'while' after do-body"); err != nil {
		return err
	}
	if err := p.expect(token.LParen, "'('"); err != nil {
		return err
	}
	if err := p.compileExpr(0); err != nil {
		return err
	}
	if err := p.expect(token.RParen, "')'"); err != nil {
		return err
	}
	if err := p.consumeSemi(); err != nil {
		return err
	}
	p.emit(Entry{Kind: token.Do, Num: float64(bodyStart), Pos: pos})
	return nil
}

// parseFor handles the three-clause `for`, `for-in`, and `for each in`
// forms (spec.md §4.3). Disambiguating `for (x in y)` from
// `for (x; y; z)` requires the bounded lookahead spec.md §4.2 permits.
func (p *Parser) parseFor() error {
	pos := p.cur.Pos
	p.injectLoopLabels()
	if err := p.advance(); err != nil {
		return err
	}
	isEach := false
	if p.cur.Kind == token.Ident && p.cur.Str == "each" {
		isEach = true
		if err := p.advance(); err != nil {
			return err
		}
	}
	if err := p.expect(token.LParen, "'(' after for"); err != nil {
		return err
	}

	declKind := token.Illegal
	if p.cur.Kind == token.Var || p.cur.Kind == token.Let {
		declKind = p.cur.Kind
	}
	// Bounded lookahead (spec.md §4.2 "bounded lookahead at for and
	// function"): without consuming anything yet, look past an optional
	// var/let and a single identifier to see whether `in` follows. This
	// uses peekN's queue rather than snapshotting the Parser, since the
	// underlying lex.Lexer's byte cursor cannot be rewound.
	isDecl := declKind != token.Illegal
	identOffset := 0
	if isDecl {
		identOffset = 1
	}
	var identTok, afterIdent token.Token
	var err error
	if identOffset == 0 {
		identTok = p.cur
		afterIdent, err = p.peekN(0)
	} else {
		identTok, err = p.peekN(0)
		if err == nil {
			afterIdent, err = p.peekN(1)
		}
	}
	if err == nil && identTok.Kind == token.Ident && afterIdent.Kind == token.In {
		loopVarName := identTok.Str
		if isDecl {
			if err := p.advance(); err != nil { // var/let
				return err
			}
		}
		if err := p.advance(); err != nil { // ident
			return err
		}
		if err := p.advance(); err != nil { // in
			return err
		}
		if isDecl {
			if declKind == token.Let {
				if e := p.scope.declareLet(pos, loopVarName); e != nil {
					return e
				}
			} else {
				if e := p.scope.declareVar(pos, loopVarName); e != nil {
					return e
				}
			}
		}
		if err := p.compileExpr(0); err != nil {
			return err
		}
		if err := p.expect(token.RParen, "')'"); err != nil {
			return err
		}
		kind := token.ForIn
		if isEach {
			kind = token.ForEachIn
		}
		head := p.emit(Entry{Kind: kind, Str: loopVarName, Pos: pos})
		if err := p.parseStatement(); err != nil {
			return err
		}
		p.buf.patchSkip(head)
		return nil
	}

	// Not a for-in: parse the classic three-clause form. No tokens were
	// consumed above beyond what peekN buffered, so p.cur is untouched.
	// The whole loop is wrapped in a block so it runs as one statement
	// wherever a single statement is expected (a loop or if body): the
	// block runs the init clause, then a jump carries the cursor over the
	// condition and increment entries straight to the For head.
	blockHead := p.emit(Entry{Kind: token.LBrace, Pos: pos})
	p.emit(Entry{Kind: token.Forward, Pos: pos})
	if declKind != token.Illegal {
		if err := p.parseVarDecl(); err != nil {
			return err
		}
	} else if p.cur.Kind != token.Semi {
		if err := p.compileExpr(0); err != nil {
			return err
		}
		p.emit(Entry{Kind: token.Semi})
	}
	if err := p.expect(token.Semi, "';'"); err != nil {
		return err
	}
	jump := p.emit(Entry{Kind: token.Skip, Str: "jump", Pos: pos})
	condStart := p.buf.len()
	if p.cur.Kind != token.Semi {
		if err := p.compileExpr(0); err != nil {
			return err
		}
	} else {
		p.emit(Entry{Kind: token.True})
	}
	p.emit(Entry{Kind: token.Semi})
	if err := p.expect(token.Semi, "';'"); err != nil {
		return err
	}
	iterStart := p.buf.len()
	if p.cur.Kind != token.RParen {
		if err := p.compileExpr(0); err != nil {
			return err
		}
		p.emit(Entry{Kind: token.Semi})
	}
	if err := p.expect(token.RParen, "')'"); err != nil {
		return err
	}
	p.buf.patchSkip(jump) // lands on the For head emitted next
	// The increment clause's entries physically sit between the condition
	// and the body (they were compiled in source order), but must run
	// *after* the body on every iteration. The head's Num/Skip pair alone
	// (mirroring While) is not enough to locate them, so Aux records where
	// they begin; the evaluator evaluates [condStart,iterStart) as the
	// condition and [iterStart,bodyStart) as the increment, each ended by
	// its own Semi entry, jumping to whichever it needs directly instead of
	// relying on fallthrough.
	head := p.emit(Entry{Kind: token.For, Pos: pos})
	p.buf.Entries[head].Num = float64(condStart)
	p.buf.Entries[head].Aux = iterStart
	if err := p.parseStatement(); err != nil {
		return err
	}
	p.buf.patchSkip(head)
	p.emit(Entry{Kind: token.RBrace, Pos: pos})
	p.buf.patchSkip(blockHead)
	return nil
}

// parseWith handles `with (obj) statement` (spec.md §3 "lexical scopes
// (function, block, with)"): the object's own properties shadow the
// enclosing scope chain for the duration of the body.
func (p *Parser) parseWith() error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.expect(token.LParen, "'(' after with"); err != nil {
		return err
	}
	if err := p.compileExpr(0); err != nil {
		return err
	}
	if err := p.expect(token.RParen, "')'"); err != nil {
		return err
	}
	head := p.emit(Entry{Kind: token.With, Pos: pos})
	if err := p.parseStatement(); err != nil {
		return err
	}
	p.buf.patchSkip(head)
	return nil
}

// parseSwitch handles `switch`/`case`/`default` (spec.md §4.3): the
// discriminant evaluates once; cases are scanned top-to-bottom with `==`
// equality until a match, then execution falls through until `break`.
func (p *Parser) parseSwitch() error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.expect(token.LParen, "'(' after switch"); err != nil {
		return err
	}
	if err := p.compileExpr(0); err != nil {
		return err
	}
	if err := p.expect(token.RParen, "')'"); err != nil {
		return err
	}
	if err := p.expect(token.LBrace, "'{' after switch head"); err != nil {
		return err
	}
	head := p.emit(Entry{Kind: token.Switch, Pos: pos})
	sawDefault := false
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		switch p.cur.Kind {
		case token.Case:
			cpos := p.cur.Pos
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.compileExpr(0); err != nil {
				return err
			}
			if err := p.expect(token.Colon, "':' after case expression"); err != nil {
				return err
			}
			caseHead := p.emit(Entry{Kind: token.Case, Pos: cpos})
			for p.cur.Kind != token.Case && p.cur.Kind != token.Default && p.cur.Kind != token.RBrace {
				if err := p.parseStatement(); err != nil {
					return err
				}
			}
			p.buf.patchSkip(caseHead)
		case token.Default:
			if sawDefault {
				return &SyntaxError{Pos: p.cur.Pos, Message: "more than one default clause in switch"}
			}
			sawDefault = true
			dpos := p.cur.Pos
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.expect(token.Colon, "':' after default"); err != nil {
				return err
			}
			defHead := p.emit(Entry{Kind: token.Default, Pos: dpos})
			for p.cur.Kind != token.Case && p.cur.Kind != token.Default && p.cur.Kind != token.RBrace {
				if err := p.parseStatement(); err != nil {
					return err
				}
			}
			p.buf.patchSkip(defHead)
		default:
			return &SyntaxError{Pos: p.cur.Pos, Message: "expected 'case' or 'default'"}
		}
	}
	if err := p.expect(token.RBrace, "'}'"); err != nil {
		return err
	}
	p.buf.patchSkip(head)
	return nil
}

// parseTry handles `try`/`catch([e [if cond]])`/`finally` (spec.md §4.3).
func (p *Parser) parseTry() error {
	pos := p.cur.Pos
	p.injectLoopLabels()
	if err := p.advance(); err != nil {
		return err
	}
	head := p.emit(Entry{Kind: token.Try, Pos: pos})
	if err := p.parseBlock(); err != nil {
		return err
	}
	for p.cur.Kind == token.Catch {
		cpos := p.cur.Pos
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expect(token.LParen, "'(' after catch"); err != nil {
			return err
		}
		excName := p.cur.Str
		if err := p.expect(token.Ident, "exception binding name"); err != nil {
			return err
		}
		hasGuard := false
		if p.cur.Kind == token.If {
			hasGuard = true
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.compileExprNoComma(); err != nil {
				return err
			}
		}
		if err := p.expect(token.RParen, "')'"); err != nil {
			return err
		}
		catchHead := p.emit(Entry{Kind: token.Catch, Str: excName, Pos: cpos})
		p.buf.Entries[catchHead].Num = boolToNum(hasGuard)
		if err := p.parseBlock(); err != nil {
			return err
		}
		p.buf.patchSkip(catchHead)
	}
	if p.cur.Kind == token.Finally {
		if err := p.advance(); err != nil {
			return err
		}
		finHead := p.emit(Entry{Kind: token.Finally, Pos: p.cur.Pos})
		if err := p.parseBlock(); err != nil {
			return err
		}
		p.buf.patchSkip(finHead)
	}
	p.buf.patchSkip(head)
	return nil
}

func boolToNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (p *Parser) parseThrow() error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.compileExpr(0); err != nil {
		return err
	}
	p.emit(Entry{Kind: token.Throw, Pos: pos})
	return p.consumeSemi()
}

func (p *Parser) parseReturn() error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.Kind == token.Semi || p.cur.Kind == token.RBrace || p.cur.Kind == token.EOF || p.cur.LineBreakBefore {
		p.emit(Entry{Kind: token.Null, Pos: pos})
	} else {
		if err := p.compileExpr(0); err != nil {
			return err
		}
	}
	p.emit(Entry{Kind: token.Return, Pos: pos})
	return p.consumeSemi()
}

func (p *Parser) parseBreakContinue(kind token.Kind) error {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return err
	}
	label := ""
	if p.cur.Kind == token.Ident && !p.cur.LineBreakBefore {
		label = p.cur.Str
		if err := p.advance(); err != nil {
			return err
		}
	}
	p.emit(Entry{Kind: kind, Str: label, Pos: pos})
	return p.consumeSemi()
}
