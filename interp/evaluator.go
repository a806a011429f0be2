package interp

// Evaluator drives the post-order walk over an Environment (spec.md
// §4.4): expressions evaluate children before themselves so every
// operand is already cached by the time a parent primitive runs;
// statements run for effect and stop walking a sequence as soon as a
// `return` has fired anywhere beneath them (the "returned" flag).
//
// Grounded on the teacher's vm.go dispatch loop, reshaped from a
// bytecode fetch-execute cycle into a direct recursive tree walk, as
// spec.md §1 asks for.
type Evaluator struct {
	env *Environment
}

func NewEvaluator(env *Environment) *Evaluator { return &Evaluator{env: env} }

// Run evaluates main() to completion and returns its result word.
func (e *Evaluator) Run() (Word, error) {
	call := NewCallExpr(entryPointName, nil, e.env.main.ReturnType, Span{})
	if err := e.evalExpr(call); err != nil {
		return 0, err
	}
	w, _ := e.env.curFrame().LoadStmt(call)
	return w, nil
}

// evalExpr walks an expression post-order: children first, then the
// node's own primitive (spec.md §4.4 "Expressions... post-order").
func (e *Evaluator) evalExpr(x Expr) error {
	switch n := x.(type) {
	case *Literal:
		return e.env.evalLiteral(n)
	case *DeclRef:
		return e.env.evalDeclRef(n)
	case *UnaryExpr:
		if err := e.evalExpr(n.X); err != nil {
			return err
		}
		return e.env.evalUnary(n)
	case *BinaryExpr:
		if n.Op == BinAssign {
			if err := e.evalAssignOperands(n); err != nil {
				return err
			}
		} else {
			if err := e.evalExpr(n.L); err != nil {
				return err
			}
			if err := e.evalExpr(n.R); err != nil {
				return err
			}
		}
		return e.env.evalBinary(n)
	case *CastExpr:
		if err := e.evalExpr(n.X); err != nil {
			return err
		}
		return e.env.evalCast(n)
	case *ParenExpr:
		if err := e.evalExpr(n.X); err != nil {
			return err
		}
		return e.env.evalParen(n)
	case *ArrSubExpr:
		if err := e.evalExpr(n.Base); err != nil {
			return err
		}
		if err := e.evalExpr(n.Index); err != nil {
			return err
		}
		return e.env.evalArrSub(n)
	case *SizeofExpr:
		return e.env.evalSizeof(n)
	case *CallExpr:
		return e.evalCall(n)
	}
	return newEvalError(ErrUncachedNode, x.Span(), "unhandled expression node: %T", x)
}

// evalAssignOperands evaluates an assignment's operands in the order
// its left-hand side needs: a dereference or subscript target needs its
// address/base computed, a bare decl-ref needs nothing evaluated at all
// (it is never read, only written), and the right-hand side always
// evaluates.
func (e *Evaluator) evalAssignOperands(n *BinaryExpr) error {
	lhs := n.L
	for {
		if p, ok := lhs.(*ParenExpr); ok {
			lhs = p.X
			continue
		}
		break
	}
	switch l := lhs.(type) {
	case *UnaryExpr:
		if l.Op == UnaryDeref {
			if err := e.evalExpr(l.X); err != nil {
				return err
			}
		}
	case *ArrSubExpr:
		if err := e.evalExpr(l.Base); err != nil {
			return err
		}
		if err := e.evalExpr(l.Index); err != nil {
			return err
		}
	}
	return e.evalExpr(n.R)
}

// evalCall evaluates every argument, then either runs an intrinsic in
// place or walks the callee's body in its own fresh frame before
// popping back with the return word deposited on the call node itself
// (spec.md §4.3 `call`/`ret`).
func (e *Evaluator) evalCall(n *CallExpr) error {
	for _, a := range n.Args {
		if err := e.evalExpr(a); err != nil {
			return err
		}
	}
	fn, err := e.env.evalCall(n)
	if err != nil {
		return err
	}
	if fn == nil {
		return nil // intrinsic already produced its result
	}
	if fn.Body != nil {
		if _, err := e.evalCompound(fn.Body); err != nil {
			return err
		}
	}
	w, _ := e.env.curFrame().GetReturn() // false -> implicit `return 0;`
	return e.env.popFrame(w)
}

// evalStmt runs one statement for effect and reports whether a `return`
// fired anywhere within it, so an enclosing sequence or loop can stop
// (spec.md §4.4 "the returned flag").
func (e *Evaluator) evalStmt(s Stmt) (returned bool, err error) {
	switch n := s.(type) {
	case *DeclStmt:
		for _, d := range n.Decls {
			if d.Type.Kind == KindVarArray {
				if err := e.evalExpr(d.Type.SizeExpr); err != nil {
					return false, err
				}
			}
			if d.Init != nil {
				if err := e.evalExpr(d.Init); err != nil {
					return false, err
				}
			}
		}
		return false, e.env.evalDecl(n)
	case *ExprStmt:
		return false, e.evalExpr(n.X)
	case *CompoundStmt:
		return e.evalCompound(n)
	case *IfStmt:
		if err := e.evalExpr(n.Cond); err != nil {
			return false, err
		}
		cond, _ := e.env.curFrame().LoadStmt(n.Cond)
		if cond != 0 {
			return e.evalStmt(n.Then)
		}
		if n.Else != nil {
			return e.evalStmt(n.Else)
		}
		return false, nil
	case *WhileStmt:
		return e.evalWhile(n)
	case *ForStmt:
		return e.evalFor(n)
	case *ReturnStmt:
		if n.X != nil {
			if err := e.evalExpr(n.X); err != nil {
				return false, err
			}
		}
		w, err := e.env.evalReturn(n)
		if err != nil {
			return false, err
		}
		e.env.curFrame().SetReturn(w)
		return true, nil
	}
	return false, newEvalError(ErrUncachedNode, s.Span(), "unhandled statement node: %T", s)
}

func (e *Evaluator) evalCompound(n *CompoundStmt) (bool, error) {
	for _, s := range n.Stmts {
		returned, err := e.evalStmt(s)
		if err != nil {
			return false, err
		}
		if returned {
			return true, nil
		}
	}
	return false, nil
}

func (e *Evaluator) evalWhile(n *WhileStmt) (bool, error) {
	for {
		if err := e.evalExpr(n.Cond); err != nil {
			return false, err
		}
		cond, _ := e.env.curFrame().LoadStmt(n.Cond)
		if cond == 0 {
			return false, nil
		}
		returned, err := e.evalStmt(n.Body)
		if err != nil || returned {
			return returned, err
		}
	}
}

func (e *Evaluator) evalFor(n *ForStmt) (bool, error) {
	if n.Init != nil {
		if _, err := e.evalStmt(n.Init); err != nil {
			return false, err
		}
	}
	for {
		if n.Cond != nil {
			if err := e.evalExpr(n.Cond); err != nil {
				return false, err
			}
			cond, _ := e.env.curFrame().LoadStmt(n.Cond)
			if cond == 0 {
				return false, nil
			}
		}
		returned, err := e.evalStmt(n.Body)
		if err != nil || returned {
			return returned, err
		}
		if n.Step != nil {
			if err := e.evalExpr(n.Step); err != nil {
				return false, err
			}
		}
	}
}
