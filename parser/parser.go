// Package parser builds the interp AST directly from source text with
// a conventional recursive-descent parser, grounded on the shape of
// the teacher's grammar_parser_wirth.go (a top-down parser driven by a
// fixed set of mutually-recursive rule methods) but without the
// teacher's PEG machinery: this grammar has no need for backtracking,
// memoisation or choice-ordering, so a plain descent suffices.
package parser

import (
	"fmt"

	"cint/interp"
	"cint/lexer"
)

// intrinsicReturnTypes seeds the return-type table every program
// implicitly declares, so a call to GET/PRINT/MALLOC/FREE type-checks
// even though no user FuncDecl exists for it.
var intrinsicReturnTypes = map[string]*interp.Type{
	"GET":    interp.IntType,
	"PRINT":  interp.VoidType,
	"MALLOC": interp.PointerTo(interp.VoidType),
	"FREE":   interp.VoidType,
}

// Parser holds the token stream and the symbol tables a single
// left-to-right descent needs: a pre-scanned table of every function's
// return type (so a function can call itself, or one defined later in
// the file, before its own body is parsed) and a stack of block scopes
// for local declarator resolution.
type Parser struct {
	toks []lexer.Token
	pos  int

	returnTypes map[string]*interp.Type
	globals     map[string]*interp.VarDecl
	scopes      []map[string]interp.Decl
}

// Parse lexes and parses src into a complete Program.
func Parse(src string) (*interp.Program, error) {
	toks, err := lexAll(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{
		toks:        toks,
		returnTypes: prescanReturnTypes(toks),
		globals:     make(map[string]*interp.VarDecl),
	}
	return p.parseProgram()
}

func lexAll(src string) ([]lexer.Token, error) {
	l := lexer.New(src)
	var toks []lexer.Token
	for {
		t, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Kind == lexer.EOF {
			return toks, nil
		}
	}
}

// ---- token cursor helpers ----

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k lexer.Kind) (lexer.Token, error) {
	if !p.at(k) {
		return lexer.Token{}, fmt.Errorf("%s: expected %s, found %s", p.cur().Span, k, p.cur())
	}
	return p.advance(), nil
}

func (p *Parser) span(start interp.Span) interp.Span {
	return interp.NewSpan(start.Start, p.toks[max(p.pos-1, 0)].Span.End)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func isTypeStart(k lexer.Kind) bool {
	return k == lexer.KwInt || k == lexer.KwChar || k == lexer.KwVoid
}

// ---- scopes ----

func (p *Parser) pushScope()   { p.scopes = append(p.scopes, map[string]interp.Decl{}) }
func (p *Parser) popScope()    { p.scopes = p.scopes[:len(p.scopes)-1] }
func (p *Parser) declare(name string, d interp.Decl) {
	p.scopes[len(p.scopes)-1][name] = d
}

func (p *Parser) resolve(name string) interp.Decl {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if d, ok := p.scopes[i][name]; ok {
			return d
		}
	}
	if g, ok := p.globals[name]; ok {
		return g
	}
	return nil
}

// ---- prescan ----

// prescanReturnTypes walks the token stream once just far enough to
// record every top-level function's name and return type, skipping
// over parameter lists and bodies by brace/paren counting rather than
// parsing them. This lets the main descent resolve a call's ExprType
// regardless of whether the callee is defined earlier or later in the
// file (spec.md §4.3 `call` requires recursive and mutually-recursive
// calls to work).
func prescanReturnTypes(toks []lexer.Token) map[string]*interp.Type {
	sigs := make(map[string]*interp.Type, len(intrinsicReturnTypes))
	for k, v := range intrinsicReturnTypes {
		sigs[k] = v
	}
	i := 0
	for i < len(toks) && toks[i].Kind != lexer.EOF {
		if !isTypeStart(toks[i].Kind) {
			i++
			continue
		}
		j := i + 1
		for j < len(toks) && toks[j].Kind == lexer.Star {
			j++
		}
		retType := scanTypeTokens(toks, i, j)
		if j >= len(toks) || toks[j].Kind != lexer.Ident {
			i++
			continue
		}
		name := toks[j].Text
		j++
		if j >= len(toks) || toks[j].Kind != lexer.LParen {
			i++
			continue
		}
		depth := 0
		for j < len(toks) {
			if toks[j].Kind == lexer.LParen {
				depth++
			} else if toks[j].Kind == lexer.RParen {
				depth--
				if depth == 0 {
					j++
					break
				}
			}
			j++
		}
		sigs[name] = retType
		if j < len(toks) && toks[j].Kind == lexer.LBrace {
			depth = 0
			for j < len(toks) {
				if toks[j].Kind == lexer.LBrace {
					depth++
				} else if toks[j].Kind == lexer.RBrace {
					depth--
					if depth == 0 {
						j++
						break
					}
				}
				j++
			}
		} else if j < len(toks) && toks[j].Kind == lexer.Semi {
			j++
		}
		i = j
	}
	return sigs
}

func scanTypeTokens(toks []lexer.Token, from, to int) *interp.Type {
	var t *interp.Type
	switch toks[from].Kind {
	case lexer.KwInt:
		t = interp.IntType
	case lexer.KwChar:
		t = interp.CharType
	default:
		t = interp.VoidType
	}
	for i := from + 1; i < to; i++ {
		t = interp.PointerTo(t)
	}
	return t
}

// ---- top level ----

func (p *Parser) parseProgram() (*interp.Program, error) {
	start := p.cur().Span
	var globals []*interp.VarDecl
	var funcs []*interp.FuncDecl

	for !p.at(lexer.EOF) {
		base, err := p.parseType()
		if err != nil {
			return nil, err
		}
		nameTok, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		if p.at(lexer.LParen) {
			fn, err := p.parseFuncRest(base, nameTok)
			if err != nil {
				return nil, err
			}
			funcs = append(funcs, fn)
			continue
		}
		decls, err := p.parseDeclaratorListRest(base, nameTok, true)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semi); err != nil {
			return nil, err
		}
		for _, d := range decls {
			p.globals[d.Name] = d
			globals = append(globals, d)
		}
	}
	return interp.NewProgram(globals, funcs, p.span(start)), nil
}

func (p *Parser) parseType() (*interp.Type, error) {
	var base *interp.Type
	switch p.cur().Kind {
	case lexer.KwInt:
		base = interp.IntType
	case lexer.KwChar:
		base = interp.CharType
	case lexer.KwVoid:
		base = interp.VoidType
	default:
		return nil, fmt.Errorf("%s: expected a type, found %s", p.cur().Span, p.cur())
	}
	p.advance()
	for p.at(lexer.Star) {
		p.advance()
		base = interp.PointerTo(base)
	}
	return base, nil
}

func (p *Parser) parseFuncRest(ret *interp.Type, name lexer.Token) (*interp.FuncDecl, error) {
	start := name.Span
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	p.pushScope()
	defer p.popScope()

	var params []*interp.ParamDecl
	if !p.at(lexer.RParen) {
		for {
			pt, err := p.parseType()
			if err != nil {
				return nil, err
			}
			pn, err := p.expect(lexer.Ident)
			if err != nil {
				return nil, err
			}
			pd := interp.NewParamDecl(pn.Text, pt, pn.Span)
			p.declare(pn.Text, pd)
			params = append(params, pd)
			if p.at(lexer.Comma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}

	if p.at(lexer.Semi) {
		p.advance()
		return interp.NewFuncDecl(name.Text, params, ret, nil, p.span(start)), nil
	}

	body, err := p.parseCompound()
	if err != nil {
		return nil, err
	}
	return interp.NewFuncDecl(name.Text, params, ret, body, p.span(start)), nil
}

// parseDeclaratorListRest parses the comma-separated declarator tail of
// a declaration statement whose base type and first identifier have
// already been consumed (spec.md §4.3 `decl`).
func (p *Parser) parseDeclaratorListRest(base *interp.Type, first lexer.Token, isGlobal bool) ([]*interp.VarDecl, error) {
	var decls []*interp.VarDecl
	d, err := p.parseDeclaratorTail(base, first, isGlobal)
	if err != nil {
		return nil, err
	}
	decls = append(decls, d)
	for p.at(lexer.Comma) {
		p.advance()
		nameTok, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		d, err := p.parseDeclaratorTail(base, nameTok, isGlobal)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

func (p *Parser) parseDeclaratorTail(base *interp.Type, name lexer.Token, isGlobal bool) (*interp.VarDecl, error) {
	t := base
	if p.at(lexer.LBracket) {
		p.advance()
		if p.at(lexer.RBracket) {
			return nil, fmt.Errorf("%s: array declarator requires a length", p.cur().Span)
		}
		if p.at(lexer.IntLit) {
			lit := p.advance()
			t = interp.ArrayOf(base, int(lit.Value))
		} else {
			sizeExpr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			t = interp.VarArrayOf(base, sizeExpr)
		}
		if _, err := p.expect(lexer.RBracket); err != nil {
			return nil, err
		}
	}
	var init interp.Expr
	if p.at(lexer.Assign) {
		p.advance()
		e, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		init = e
	}
	d := interp.NewVarDecl(name.Text, t, init, isGlobal, name.Span)
	if !isGlobal {
		p.declare(name.Text, d)
	}
	return d, nil
}

// ---- statements ----

func (p *Parser) parseCompound() (*interp.CompoundStmt, error) {
	start := p.cur().Span
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	p.pushScope()
	defer p.popScope()

	var stmts []interp.Stmt
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(lexer.RBrace); err != nil {
		return nil, err
	}
	return interp.NewCompoundStmt(stmts, p.span(start)), nil
}

func (p *Parser) parseStmt() (interp.Stmt, error) {
	switch p.cur().Kind {
	case lexer.LBrace:
		return p.parseCompound()
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwFor:
		return p.parseFor()
	case lexer.KwReturn:
		return p.parseReturn()
	}
	if isTypeStart(p.cur().Kind) {
		return p.parseDeclStmt()
	}
	return p.parseExprStmt()
}

func (p *Parser) parseDeclStmt() (*interp.DeclStmt, error) {
	start := p.cur().Span
	base, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	decls, err := p.parseDeclaratorListRest(base, name, false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semi); err != nil {
		return nil, err
	}
	return interp.NewDeclStmt(decls, p.span(start)), nil
}

func (p *Parser) parseExprStmt() (*interp.ExprStmt, error) {
	start := p.cur().Span
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semi); err != nil {
		return nil, err
	}
	return interp.NewExprStmt(x, p.span(start)), nil
}

func (p *Parser) parseIf() (*interp.IfStmt, error) {
	start := p.cur().Span
	p.advance()
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	var els interp.Stmt
	if p.at(lexer.KwElse) {
		p.advance()
		els, err = p.parseStmt()
		if err != nil {
			return nil, err
		}
	}
	return interp.NewIfStmt(cond, then, els, p.span(start)), nil
}

func (p *Parser) parseWhile() (*interp.WhileStmt, error) {
	start := p.cur().Span
	p.advance()
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return interp.NewWhileStmt(cond, body, p.span(start)), nil
}

func (p *Parser) parseFor() (*interp.ForStmt, error) {
	start := p.cur().Span
	p.advance()
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}

	p.pushScope()
	defer p.popScope()

	var init interp.Stmt
	if !p.at(lexer.Semi) {
		if isTypeStart(p.cur().Kind) {
			d, err := p.parseDeclStmt()
			if err != nil {
				return nil, err
			}
			init = d
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			init = interp.NewExprStmt(e, e.Span())
			if _, err := p.expect(lexer.Semi); err != nil {
				return nil, err
			}
		}
	} else {
		p.advance()
	}

	var cond interp.Expr
	if !p.at(lexer.Semi) {
		c, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cond = c
	}
	if _, err := p.expect(lexer.Semi); err != nil {
		return nil, err
	}

	var step interp.Expr
	if !p.at(lexer.RParen) {
		s, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		step = s
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}

	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return interp.NewForStmt(init, cond, step, body, p.span(start)), nil
}

func (p *Parser) parseReturn() (*interp.ReturnStmt, error) {
	start := p.cur().Span
	p.advance()
	var x interp.Expr
	if !p.at(lexer.Semi) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		x = e
	}
	if _, err := p.expect(lexer.Semi); err != nil {
		return nil, err
	}
	return interp.NewReturnStmt(x, p.span(start)), nil
}

// ---- expressions (precedence climbing, C-style) ----

func (p *Parser) parseExpr() (interp.Expr, error) { return p.parseAssignment() }

func (p *Parser) parseAssignment() (interp.Expr, error) {
	start := p.cur().Span
	lhs, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.Assign) {
		p.advance()
		rhs, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return interp.NewBinaryExpr(interp.BinAssign, lhs, rhs, p.span(start)), nil
	}
	return lhs, nil
}

func (p *Parser) parseEquality() (interp.Expr, error) {
	return p.parseBinaryLevel(p.parseRelational, map[lexer.Kind]interp.BinaryOp{
		lexer.Eq: interp.BinEq, lexer.Ne: interp.BinNe,
	})
}

func (p *Parser) parseRelational() (interp.Expr, error) {
	return p.parseBinaryLevel(p.parseAdditive, map[lexer.Kind]interp.BinaryOp{
		lexer.Lt: interp.BinLt, lexer.Le: interp.BinLe, lexer.Gt: interp.BinGt, lexer.Ge: interp.BinGe,
	})
}

func (p *Parser) parseAdditive() (interp.Expr, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, map[lexer.Kind]interp.BinaryOp{
		lexer.Plus: interp.BinAdd, lexer.Minus: interp.BinSub,
	})
}

func (p *Parser) parseMultiplicative() (interp.Expr, error) {
	return p.parseBinaryLevel(p.parseUnary, map[lexer.Kind]interp.BinaryOp{
		lexer.Star: interp.BinMul, lexer.Slash: interp.BinDiv, lexer.Percent: interp.BinMod,
	})
}

func (p *Parser) parseBinaryLevel(next func() (interp.Expr, error), ops map[lexer.Kind]interp.BinaryOp) (interp.Expr, error) {
	start := p.cur().Span
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.cur().Kind]
		if !ok {
			return lhs, nil
		}
		p.advance()
		rhs, err := next()
		if err != nil {
			return nil, err
		}
		lhs = interp.NewBinaryExpr(op, lhs, rhs, p.span(start))
	}
}

func (p *Parser) parseUnary() (interp.Expr, error) {
	start := p.cur().Span
	switch p.cur().Kind {
	case lexer.Minus:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return interp.NewUnaryExpr(interp.UnaryNeg, x, p.span(start)), nil
	case lexer.Star:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return interp.NewUnaryExpr(interp.UnaryDeref, x, p.span(start)), nil
	case lexer.LParen:
		if p.pos+1 < len(p.toks) && isTypeStart(p.toks[p.pos+1].Kind) {
			p.advance()
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RParen); err != nil {
				return nil, err
			}
			x, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return interp.NewCastExpr(t, x, p.span(start)), nil
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (interp.Expr, error) {
	start := p.cur().Span
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.LBracket) {
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBracket); err != nil {
			return nil, err
		}
		x = interp.NewArrSubExpr(x, idx, p.span(start))
	}
	return x, nil
}

func (p *Parser) parsePrimary() (interp.Expr, error) {
	start := p.cur().Span
	switch p.cur().Kind {
	case lexer.IntLit:
		t := p.advance()
		return interp.NewLiteral(t.Value, interp.IntType, t.Span), nil
	case lexer.CharLit:
		t := p.advance()
		return interp.NewLiteral(t.Value, interp.CharType, t.Span), nil
	case lexer.KwSizeof:
		p.advance()
		if _, err := p.expect(lexer.LParen); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return interp.NewSizeofExpr(t, p.span(start)), nil
	case lexer.LParen:
		p.advance()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return interp.NewParenExpr(x, p.span(start)), nil
	case lexer.Ident:
		name := p.advance()
		if p.at(lexer.LParen) {
			return p.parseCallRest(name)
		}
		d := p.resolve(name.Text)
		if d == nil {
			return nil, fmt.Errorf("%s: reference to undeclared name: %s", name.Span, name.Text)
		}
		return interp.NewDeclRef(name.Text, d, name.Span), nil
	}
	return nil, fmt.Errorf("%s: unexpected token %s", p.cur().Span, p.cur())
}

func (p *Parser) parseCallRest(name lexer.Token) (interp.Expr, error) {
	p.advance() // '('
	var args []interp.Expr
	if !p.at(lexer.RParen) {
		for {
			a, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.at(lexer.Comma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	retType, ok := p.returnTypes[name.Text]
	if !ok {
		return nil, fmt.Errorf("%s: call to undeclared function: %s", name.Span, name.Text)
	}
	return interp.NewCallExpr(name.Text, args, retType, p.span(name.Span)), nil
}
