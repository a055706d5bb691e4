package script

import (
	"strconv"
	"strings"
)

// Parser is a hand-written recursive-descent parser with two-token
// lookahead, with a Parser/Lexer pairing.
type Parser struct {
	lex  *Lexer
	cur  Token
	peek Token

	counter int // per-flow pre-order instruction index counter
	errs    []*ParseError
}

// NewParser creates a Parser over src and primes the two-token lookahead.
func NewParser(src string) *Parser {
	p := &Parser{lex: NewLexer(src)}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lex.Next()
}

func (p *Parser) curIs(tt TokenType) bool  { return p.cur.Type == tt }
func (p *Parser) peekIs(tt TokenType) bool { return p.peek.Type == tt }

func (p *Parser) expect(tt TokenType) (Token, *ParseError) {
	if !p.curIs(tt) {
		return Token{}, newErr(p.cur.Interval(), ErrUnexpectedToken,
			"expected %s, found %s %q", tt, p.cur.Type, p.cur.Literal)
	}
	tok := p.cur
	p.next()
	return tok, nil
}

func (p *Parser) expectIdent() (Identifier, *ParseError) {
	if !p.curIs(Ident) {
		return Identifier{}, newErr(p.cur.Interval(), ErrUnexpectedToken,
			"expected identifier, found %s %q", p.cur.Type, p.cur.Literal)
	}
	id := Identifier{Text: p.cur.Literal, IV: p.cur.Interval()}
	p.next()
	return id, nil
}

// ParseFlow parses one complete source file into a Flow AST. On a hard
// failure inside step N, parsing terminates: prior instructions remain
// in the returned Flow, and the failure is the last element of the
// returned error slice.
func ParseFlow(name, src string) (*Flow, []*ParseError) {
	p := NewParser(src)
	flow := &Flow{Name: name}

	stepSeen := map[string]Interval{}
	fnSeen := map[string]Interval{}

	for !p.curIs(EOF) {
		switch {
		case p.curIs(FN):
			inst, err := p.parseFunctionScope()
			if err != nil {
				p.errs = append(p.errs, err)
				return flow, p.errs
			}
			fs := inst.(*FunctionScope)
			if prev, dup := fnSeen[fs.Name.Text]; dup {
				flow.Instructions = append(flow.Instructions, &DuplicateInstruction{
					Kind: "function", Name: fs.Name.Text, IV: prev,
				})
			} else {
				fnSeen[fs.Name.Text] = fs.IV
				flow.Instructions = append(flow.Instructions, inst)
			}

		case p.curIs(IMPORT):
			inst, err := p.parseImportScope()
			if err != nil {
				p.errs = append(p.errs, err)
				return flow, p.errs
			}
			flow.Instructions = append(flow.Instructions, inst)

		case p.curIs(Ident) || p.curIs(END):
			inst, err := p.parseStepScope()
			if err != nil {
				p.errs = append(p.errs, err)
				return flow, p.errs
			}
			ss := inst.(*StepScope)
			if prev, dup := stepSeen[ss.Name.Text]; dup {
				flow.Instructions = append(flow.Instructions, &DuplicateInstruction{
					Kind: "step", Name: ss.Name.Text, IV: prev,
				})
			} else {
				stepSeen[ss.Name.Text] = ss.IV
				flow.Instructions = append(flow.Instructions, inst)
			}

		default:
			p.errs = append(p.errs, newErr(p.cur.Interval(), ErrUnexpectedToken,
				"unexpected token %s %q at top level", p.cur.Type, p.cur.Literal))
			return flow, p.errs
		}
	}

	return flow, p.errs
}

func (p *Parser) parseStepScope() (Instruction, *ParseError) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(Colon); err != nil {
		return nil, newErr(err.Interval, ErrMissingColonAfterStepName,
			"step %q must be followed by ':'", name.Text)
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &StepScope{Name: name, Body: body, IV: cover(name.IV, body.IV)}, nil
}

func (p *Parser) parseFunctionScope() (Instruction, *ParseError) {
	start := p.cur
	if _, err := p.expect(FN); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FunctionScope{Name: name, Params: params, Body: body, IV: cover(start.Interval(), body.IV)}, nil
}

func (p *Parser) parseParamList() ([]Identifier, *ParseError) {
	var params []Identifier
	for !p.curIs(RParen) {
		id, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if IsAssignationReserved(id.Text) {
			return nil, newErr(id.IV, ErrReservedIdentifier, "%q is a reserved name", id.Text)
		}
		params = append(params, id)
		if p.curIs(Comma) {
			p.next()
			continue
		}
		break
	}
	return params, nil
}

func (p *Parser) parseImportScope() (Instruction, *ParseError) {
	start := p.cur
	if _, err := p.expect(IMPORT); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	inst := &ImportScope{Name: name}
	if p.curIs(AS) {
		p.next()
		orig, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		inst.OriginalName = &orig
	}
	if p.curIs(FROM) {
		p.next()
		flowName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		inst.FromFlow = &flowName
	}
	inst.IV = cover(start.Interval(), p.cur.Interval())
	return inst, nil
}

// parseBlock parses '{' { stmt } '}', assigning pre-order instruction
// indices from the shared per-flow counter.
func (p *Parser) parseBlock() (*Block, *ParseError) {
	open, err := p.expect(LBrace)
	if err != nil {
		return nil, err
	}
	var items []BlockItem
	for !p.curIs(RBrace) {
		if p.curIs(EOF) {
			return nil, newErr(open.Interval(), ErrUnmatchedBrace, "unmatched '{'")
		}
		idx := p.counter
		p.counter++
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		items = append(items, BlockItem{Stmt: stmt, Index: idx, Total: p.counter - idx})
	}
	close, err := p.expect(RBrace)
	if err != nil {
		return nil, err
	}
	return &Block{Items: items, IV: cover(open.Interval(), close.Interval())}, nil
}

func (p *Parser) parseStatement() (Statement, *ParseError) {
	switch p.cur.Type {
	case SAY:
		start := p.cur
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &SayStmt{Expr: e, IV: cover(start.Interval(), e.Interval())}, nil

	case DEBUG:
		start := p.cur
		p.next()
		var args []Expr
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		for p.curIs(Comma) {
			p.next()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, e)
		}
		return &DebugStmt{Args: args, IV: start.Interval()}, nil

	case REMEMBER:
		start := p.cur
		p.next()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if IsAssignationReserved(name.Text) {
			return nil, newErr(name.IV, ErrReservedIdentifier, "%q is a reserved name", name.Text)
		}
		if _, err := p.expect(Assign); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &RememberStmt{Name: name.Text, Value: val, IV: cover(start.Interval(), val.Interval())}, nil

	case FORGET:
		return p.parseForget()

	case DO:
		return p.parseDo()

	case USE:
		start := p.cur
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &UseStmt{Expr: e, IV: cover(start.Interval(), e.Interval())}, nil

	case GOTO:
		return p.parseGoto()

	case PREVIOUS:
		tok := p.cur
		p.next()
		return &PreviousStmt{IV: tok.Interval()}, nil

	case HOLD:
		tok := p.cur
		p.next()
		return &HoldStmt{IV: tok.Interval()}, nil

	case BREAK:
		tok := p.cur
		p.next()
		return &BreakStmt{IV: tok.Interval()}, nil

	case CONTINUE:
		tok := p.cur
		p.next()
		return &ContinueStmt{IV: tok.Interval()}, nil

	case RETURN:
		start := p.cur
		p.next()
		if p.curIs(RBrace) {
			return &ReturnStmt{IV: start.Interval()}, nil
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Value: val, IV: cover(start.Interval(), val.Interval())}, nil

	case IF:
		return p.parseIf()

	case FOREACH:
		return p.parseForEach()

	case WHILE:
		return p.parseWhile()

	default:
		return p.parseAssignOrCall()
	}
}

func (p *Parser) parseForget() (Statement, *ParseError) {
	start := p.cur
	p.next() // consume FORGET
	if p.curIs(Star) {
		p.next()
		return &ForgetStmt{All: true, IV: start.Interval()}, nil
	}
	if p.curIs(LBracket) {
		p.next()
		var names []Identifier
		for !p.curIs(RBracket) {
			id, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			names = append(names, id)
			if p.curIs(Comma) {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expect(RBracket); err != nil {
			return nil, err
		}
		return &ForgetStmt{Names: names, IV: start.Interval()}, nil
	}
	id, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &ForgetStmt{Names: []Identifier{id}, IV: cover(start.Interval(), id.IV)}, nil
}

func (p *Parser) parseDo() (Statement, *ParseError) {
	start := p.cur
	p.next() // consume DO
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.curIs(Assign) {
		target, err := asPath(e)
		if err != nil {
			return nil, newErr(e.Interval(), ErrInvalidAssignTarget, "%s", err)
		}
		p.next()
		rhs, perr := p.parseExpr()
		if perr != nil {
			return nil, perr
		}
		return &DoStmt{Assign: target, Value: rhs, IV: cover(start.Interval(), rhs.Interval())}, nil
	}
	return &DoStmt{Value: e, IV: cover(start.Interval(), e.Interval())}, nil
}

// parseAssignOrCall parses the grammar's bare `assign | call` statement
// alternative: an expression, optionally followed by `= rhs`.
func (p *Parser) parseAssignOrCall() (Statement, *ParseError) {
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.curIs(Assign) {
		target, err := asPath(e)
		if err != nil {
			return nil, newErr(e.Interval(), ErrInvalidAssignTarget, "%s", err)
		}
		p.next()
		rhs, perr := p.parseExpr()
		if perr != nil {
			return nil, perr
		}
		return &AssignStmt{Target: target, Value: rhs, IV: cover(e.Interval(), rhs.Interval())}, nil
	}
	return &ExprStmt{Expr: e, IV: e.Interval()}, nil
}

// asPath coerces an already-parsed expression into an assignment
// target: a bare identifier is promoted to a zero-segment PathExpr.
func asPath(e Expr) (*PathExpr, error) {
	switch v := e.(type) {
	case *PathExpr:
		return v, nil
	case *IdentExpr:
		if IsUtilizationReserved(v.Name) {
			return nil, newErr(v.IV, ErrReservedIdentifier, "%q cannot be assigned", v.Name)
		}
		return &PathExpr{Base: v, IV: v.IV}, nil
	default:
		return nil, newErr(e.Interval(), ErrInvalidAssignTarget, "expression is not assignable")
	}
}

func (p *Parser) parseGoto() (Statement, *ParseError) {
	start := p.cur
	p.next() // consume GOTO
	target, err := p.parseGotoTarget()
	if err != nil {
		return nil, err
	}
	return &GotoStmt{Target: target, IV: start.Interval()}, nil
}

func (p *Parser) parseGotoTarget() (GotoTarget, *ParseError) {
	if p.curIs(END) {
		p.next()
		return GotoTarget{End: true}, nil
	}
	if p.curIs(STEP) {
		p.next()
		name, err := p.expectIdent()
		if err != nil {
			return GotoTarget{}, err
		}
		t := GotoTarget{Step: &name}
		if p.curIs(AT) {
			p.next()
			flow, err := p.expectIdent()
			if err != nil {
				return GotoTarget{}, err
			}
			t.Flow = &flow
		}
		return t, nil
	}
	if p.curIs(FLOW) {
		p.next()
		name, err := p.expectIdent()
		if err != nil {
			return GotoTarget{}, err
		}
		return GotoTarget{Flow: &name}, nil
	}
	name, err := p.expectIdent()
	if err != nil {
		return GotoTarget{}, err
	}
	t := GotoTarget{Step: &name}
	if p.curIs(AT) {
		p.next()
		flow, err := p.expectIdent()
		if err != nil {
			return GotoTarget{}, err
		}
		t.Flow = &flow
	}
	return t, nil
}

func (p *Parser) parseIf() (Statement, *ParseError) {
	start := p.cur
	p.next() // consume IF
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	stmt := &IfStmt{Cond: cond, Then: then, LastActionIndex: then.LastIndex(), IV: cover(start.Interval(), then.IV)}

	for p.curIs(ELSE) {
		p.next() // consume ELSE
		if p.curIs(IF) {
			p.next()
			if _, err := p.expect(LParen); err != nil {
				return nil, err
			}
			c, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RParen); err != nil {
				return nil, err
			}
			b, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.ElseIfs = append(stmt.ElseIfs, ElseIf{Cond: c, Body: b})
			stmt.IV = cover(start.Interval(), b.IV)
			continue
		}
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = b
		stmt.IV = cover(start.Interval(), b.IV)
		break
	}

	return stmt, nil
}

func (p *Parser) parseForEach() (Statement, *ParseError) {
	start := p.cur
	p.next() // consume FOREACH
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	item, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if IsAssignationReserved(item.Text) {
		return nil, newErr(item.IV, ErrReservedIdentifier, "%q is a reserved name", item.Text)
	}
	var idx *Identifier
	if p.curIs(Comma) {
		p.next()
		id, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if IsAssignationReserved(id.Text) {
			return nil, newErr(id.IV, ErrReservedIdentifier, "%q is a reserved name", id.Text)
		}
		idx = &id
	}
	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(IN); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForEachStmt{Item: item, Index: idx, Expr: e, Body: body, IV: cover(start.Interval(), body.IV)}, nil
}

func (p *Parser) parseWhile() (Statement, *ParseError) {
	start := p.cur
	p.next() // consume WHILE
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body, IV: cover(start.Interval(), body.IV)}, nil
}

// --- Expressions: expr -> and_expr -> cmp_expr -> item -> term -> basic -> atom ---

func (p *Parser) parseExpr() (Expr, *ParseError) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curIs(OrOr) {
		op := p.cur.Type
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &InfixExpr{Op: op, Left: left, Right: right, IV: cover(left.Interval(), right.Interval())}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, *ParseError) {
	left, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	for p.curIs(AndAnd) {
		op := p.cur.Type
		p.next()
		right, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		left = &InfixExpr{Op: op, Left: left, Right: right, IV: cover(left.Interval(), right.Interval())}
	}
	return left, nil
}

func (p *Parser) cmpOp() (tt TokenType, not bool, ok bool) {
	switch p.cur.Type {
	case Eq, NotEq, Lt, LtEq, Gt, GtEq, MATCH:
		return p.cur.Type, false, true
	case Bang:
		if p.peekIs(MATCH) {
			return MATCH, true, true
		}
	}
	return 0, false, false
}

func (p *Parser) parseCmp() (Expr, *ParseError) {
	left, err := p.parseItem()
	if err != nil {
		return nil, err
	}
	if tt, not, ok := p.cmpOp(); ok {
		if not {
			p.next() // consume '!'
		}
		p.next() // consume the operator/MATCH token
		right, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		return &InfixExpr{Op: tt, Not: not, Left: left, Right: right, IV: cover(left.Interval(), right.Interval())}, nil
	}
	return left, nil
}

func (p *Parser) parseItem() (Expr, *ParseError) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.curIs(Plus) || p.curIs(Minus) {
		op := p.cur.Type
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &InfixExpr{Op: op, Left: left, Right: right, IV: cover(left.Interval(), right.Interval())}
	}
	return left, nil
}

func (p *Parser) parseTerm() (Expr, *ParseError) {
	left, err := p.parseBasic()
	if err != nil {
		return nil, err
	}
	for p.curIs(Star) || p.curIs(Slash) || p.curIs(Percent) {
		op := p.cur.Type
		p.next()
		right, err := p.parseBasic()
		if err != nil {
			return nil, err
		}
		left = &InfixExpr{Op: op, Left: left, Right: right, IV: cover(left.Interval(), right.Interval())}
	}
	return left, nil
}

func (p *Parser) parseBasic() (Expr, *ParseError) {
	start := p.cur
	count := 0
	for p.curIs(Bang) {
		count++
		p.next()
	}
	atom, err := p.parseAtomWithPath()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return atom, nil
	}
	return &PrefixNot{Count: count, Operand: atom, IV: cover(start.Interval(), atom.Interval())}, nil
}

func (p *Parser) parseAtomWithPath() (Expr, *ParseError) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	return p.parseTrailingPath(atom)
}

func (p *Parser) parseTrailingPath(base Expr) (Expr, *ParseError) {
	var segs []PathSegment
	for p.curIs(Dot) || p.curIs(LBracket) {
		if p.curIs(Dot) {
			dot := p.cur
			p.next()
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			seg := PathSegment{Field: name.Text, IV: cover(dot.Interval(), name.IV)}
			if p.curIs(LParen) {
				p.next()
				args, err := p.parseArgList()
				if err != nil {
					return nil, err
				}
				close, err := p.expect(RParen)
				if err != nil {
					return nil, err
				}
				seg.Call = true
				seg.Args = args
				seg.IV = cover(dot.Interval(), close.Interval())
			}
			segs = append(segs, seg)
			continue
		}
		// '[' expr ']'
		open := p.cur
		p.next()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		close, err := p.expect(RBracket)
		if err != nil {
			return nil, err
		}
		segs = append(segs, PathSegment{Index: &idx, IV: cover(open.Interval(), close.Interval())})
	}
	if len(segs) == 0 {
		return base, nil
	}
	last := segs[len(segs)-1]
	return &PathExpr{Base: base, Segments: segs, IV: cover(base.Interval(), last.IV)}, nil
}

func (p *Parser) parseArgList() ([]Arg, *ParseError) {
	var args []Arg
	for !p.curIs(RParen) {
		if p.curIs(Ident) && p.peekIs(Assign) {
			name := p.cur.Literal
			p.next()
			p.next() // consume '='
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, Arg{Name: name, Value: val})
		} else {
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, Arg{Value: val})
		}
		if p.curIs(Comma) {
			p.next()
			continue
		}
		break
	}
	return args, nil
}

func (p *Parser) parseAtom() (Expr, *ParseError) {
	tok := p.cur
	switch tok.Type {
	case Int:
		p.next()
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, newErr(tok.Interval(), ErrInvalidNumberLiteral, "invalid integer %q", tok.Literal)
		}
		return &IntLit{Value: n, IV: tok.Interval()}, nil

	case Float:
		p.next()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, newErr(tok.Interval(), ErrInvalidNumberLiteral, "invalid float %q", tok.Literal)
		}
		return &FloatLit{Value: f, IV: tok.Interval()}, nil

	case String:
		p.next()
		return buildStringExpr(tok)

	case True:
		p.next()
		return &BoolLit{Value: true, IV: tok.Interval()}, nil

	case False:
		p.next()
		return &BoolLit{Value: false, IV: tok.Interval()}, nil

	case Null:
		p.next()
		return &NullLit{IV: tok.Interval()}, nil

	case LParen:
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RParen); err != nil {
			return nil, err
		}
		return e, nil

	case LBracket:
		return p.parseArrayLit()

	case LBrace:
		return p.parseObjectLit()

	case FN:
		return p.parseClosure()

	case Ident:
		p.next()
		ident := &IdentExpr{Name: tok.Literal, IV: tok.Interval()}
		if p.curIs(LParen) {
			// bare call: name(args) — modeled as a zero-base path with
			// a single Call segment.
			p.next()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			close, err := p.expect(RParen)
			if err != nil {
				return nil, err
			}
			seg := PathSegment{Field: tok.Literal, Call: true, Args: args, IV: cover(tok.Interval(), close.Interval())}
			return &PathExpr{Base: nil, Segments: []PathSegment{seg}, IV: seg.IV}, nil
		}
		return ident, nil

	default:
		return nil, newErr(tok.Interval(), ErrUnexpectedToken, "unexpected token %s %q", tok.Type, tok.Literal)
	}
}

func (p *Parser) parseArrayLit() (Expr, *ParseError) {
	open, err := p.expect(LBracket)
	if err != nil {
		return nil, err
	}
	var elems []Expr
	for !p.curIs(RBracket) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.curIs(Comma) {
			p.next()
			continue
		}
		break
	}
	close, err := p.expect(RBracket)
	if err != nil {
		return nil, err
	}
	return &ArrayLit{Elements: elems, IV: cover(open.Interval(), close.Interval())}, nil
}

func (p *Parser) parseObjectLit() (Expr, *ParseError) {
	open, err := p.expect(LBrace)
	if err != nil {
		return nil, err
	}
	var entries []ObjectEntry
	for !p.curIs(RBrace) {
		var key string
		switch p.cur.Type {
		case Ident:
			key = p.cur.Literal
			p.next()
		case String:
			key = p.cur.Literal
			p.next()
		default:
			return nil, newErr(p.cur.Interval(), ErrUnexpectedToken, "expected object key, found %s", p.cur.Type)
		}
		if _, err := p.expect(Colon); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ObjectEntry{Key: key, Value: val})
		if p.curIs(Comma) {
			p.next()
			continue
		}
		break
	}
	close, err := p.expect(RBrace)
	if err != nil {
		return nil, err
	}
	return &ObjectLit{Entries: entries, IV: cover(open.Interval(), close.Interval())}, nil
}

func (p *Parser) parseClosure() (Expr, *ParseError) {
	start := p.cur
	p.next() // consume FN
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ClosureExpr{Params: params, Body: body, IV: cover(start.Interval(), body.IV)}, nil
}

// buildStringExpr splits a raw string literal's content on "{{ ... }}"
// splices, recursively parsing each splice as a nested expression. A
// literal with no splices becomes a plain StringLit.
func buildStringExpr(tok Token) (Expr, *ParseError) {
	s := tok.Literal
	if !strings.Contains(s, "{{") {
		return &StringLit{Value: s, IV: tok.Interval()}, nil
	}

	var pieces []StringPiece
	rest := s
	for {
		i := strings.Index(rest, "{{")
		if i < 0 {
			if rest != "" {
				pieces = append(pieces, StringPiece{Text: rest})
			}
			break
		}
		if i > 0 {
			pieces = append(pieces, StringPiece{Text: rest[:i]})
		}
		rest = rest[i+2:]
		j := strings.Index(rest, "}}")
		if j < 0 {
			return nil, newErr(tok.Interval(), ErrUnterminatedString, "unterminated interpolation splice")
		}
		inner := rest[:j]
		rest = rest[j+2:]

		sp := NewParser(inner)
		expr, perr := sp.parseExpr()
		if perr != nil {
			return nil, perr
		}
		pieces = append(pieces, StringPiece{Expr: expr})
	}

	return &ComplexString{Pieces: pieces, IV: tok.Interval()}, nil
}
