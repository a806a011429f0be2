package interp

// Environment is the evaluator's runtime: it owns the shared arena and
// the call stack, and hosts every primitive operation spec.md §4.3
// names (intliteral, paren, cast, declref, unop, binop, decl, arrsub,
// sizeof, call, ret). The Tree-Walk Evaluator (evaluator.go) drives the
// post-order traversal; Environment only ever looks at the node handed
// to it plus whatever is already cached on the current Frame.
//
// Grounded on the teacher's vm.go: a runtime struct pairing a value
// stack with a set of primitive operations the bytecode dispatch loop
// calls into one at a time.
type Environment struct {
	heap  *Heap
	stack callStack
	cfg   *Config

	funcs map[string]*FuncDecl
	main  *FuncDecl
}

const (
	intrinsicGet    = "GET"
	intrinsicPrint  = "PRINT"
	intrinsicMalloc = "MALLOC"
	intrinsicFree   = "FREE"
	entryPointName  = "main"
)

// NewEnvironment builds the runtime for prog: it records every declared
// function (intrinsics included), binds global variables, and pushes
// the root frame that the call to main is made from (main's own body
// runs in a fresh frame pushed by evalCall).
func NewEnvironment(prog *Program, cfg *Config) (*Environment, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	env := &Environment{
		heap:  NewHeap(cfg.InitialHeapBytes),
		cfg:   cfg,
		funcs: make(map[string]*FuncDecl, len(prog.Funcs)),
	}
	for _, fn := range prog.Funcs {
		env.funcs[fn.Name] = fn
		if fn.Name == entryPointName {
			env.main = fn
		}
	}
	if env.main == nil {
		return nil, newEvalError(ErrUnknownDecl, prog.Span(), "no entry function `%s` declared", entryPointName)
	}
	for _, g := range prog.Globals {
		env.bindGlobal(g)
	}
	env.stack.push(newFrame())
	return env, nil
}

// bindGlobal implements spec.md §4.3's global-initialisation rule: a
// scalar global with a literal initialiser is bound to that literal, any
// other scalar global is bound to zero. Array globals are not covered
// by that literal wording; this implementation extends it the only way
// that is well-defined — allocate Len×word_size bytes from the shared
// arena and bind the declaration to that address (Open Question,
// recorded in DESIGN.md).
func (env *Environment) bindGlobal(g *VarDecl) {
	if g.Type.IsArray() {
		addr := env.heap.Malloc(g.Type.Len * WordSize)
		env.heap.BindGlobalAddr(g, addr)
		return
	}
	var w Word
	if lit, ok := g.Init.(*Literal); ok {
		w = Word(lit.Value)
	}
	env.heap.BindGlobal(g, w)
}

func (env *Environment) curFrame() *Frame { return env.stack.top() }

func isGlobalDecl(d Decl) bool {
	vd, ok := d.(*VarDecl)
	return ok && vd.IsGlobal
}

// loadDeclWord reads a scalar or pointer decl's current value: the
// current frame's binding if it has one, otherwise the global slot
// (spec.md §4.2 two-level lookup: "current frame first, then globals").
func (env *Environment) loadDeclWord(d Decl) (Word, bool) {
	if w, ok := env.curFrame().LoadDecl(d); ok {
		return w, true
	}
	return env.heap.LoadGlobal(d)
}

// storeDeclWord writes a scalar or pointer decl's value, routing
// through the heap for globals and through the current frame otherwise
// (spec.md §4.2).
func (env *Environment) storeDeclWord(d Decl, w Word) {
	if isGlobalDecl(d) {
		env.heap.BindGlobal(d, w)
		return
	}
	env.curFrame().BindDecl(d, w)
}

// declAddress resolves an array declaration to its backing address:
// the frame binding itself for a frame-local array, or the global slot
// for a global one. Both are plain offsets into the one shared arena
// (SPEC_FULL.md §3), so nothing downstream needs to know which.
func (env *Environment) declAddress(d Decl) (Address, bool) {
	if w, ok := env.curFrame().LoadDecl(d); ok {
		return w, true
	}
	return env.heap.GlobalAddr(d)
}

// ---- expression primitives (spec.md §4.3) ----

func (env *Environment) evalLiteral(n *Literal) error {
	env.curFrame().BindStmt(n, Word(n.Value))
	return nil
}

func (env *Environment) evalParen(n *ParenExpr) error {
	v, ok := env.curFrame().LoadStmt(n.X)
	if !ok {
		return uncachedErr(n.X)
	}
	env.curFrame().BindStmt(n, v)
	return nil
}

// evalCast copies the child's cached word through unchanged — this
// evaluator has no representation conversion to perform, casts only
// steer how later nodes interpret the word (spec.md §4.3 `cast`). A
// cast of a not-yet-cached pointer expression is tolerated silently
// unless Config.StrictPointers asks for a fatal error (spec.md §7).
func (env *Environment) evalCast(n *CastExpr) error {
	v, ok := env.curFrame().LoadStmt(n.X)
	if !ok {
		if n.Type.IsPointer() && !env.cfg.StrictPointers {
			return nil
		}
		return newEvalError(ErrUnboundPointer, n.Span(), "cast of an expression with no cached value")
	}
	env.curFrame().BindStmt(n, v)
	return nil
}

// evalDeclRef resolves a name to its current value (spec.md §4.3
// `declref`): an array decl caches its address, a scalar or pointer
// decl caches its word.
func (env *Environment) evalDeclRef(n *DeclRef) error {
	f := env.curFrame()
	d := n.D
	if d == nil {
		return newEvalError(ErrUnknownDecl, n.Span(), "unresolved reference: %s", n.Name)
	}
	t := d.DeclType()
	if t.IsArray() {
		addr, ok := env.declAddress(d)
		if !ok {
			return newEvalError(ErrUnboundPointer, n.Span(), "array %s has no backing address", n.Name)
		}
		f.BindStmt(n, addr)
		return nil
	}
	w, ok := env.loadDeclWord(d)
	if !ok {
		if t.IsPointer() && !env.cfg.StrictPointers {
			return nil
		}
		return newEvalError(ErrUnboundPointer, n.Span(), "%s read before being bound", n.Name)
	}
	f.BindStmt(n, w)
	return nil
}

func (env *Environment) evalUnary(n *UnaryExpr) error {
	f := env.curFrame()
	x, ok := f.LoadStmt(n.X)
	if !ok {
		return uncachedErr(n.X)
	}
	switch n.Op {
	case UnaryNeg:
		f.BindStmt(n, -x)
	case UnaryDeref:
		elem := n.X.ExprType().Elem
		f.BindStmt(n, env.loadScalarAt(x, elem))
	}
	return nil
}

func (env *Environment) loadScalarAt(addr Address, t *Type) Word {
	return env.heap.loadScalar(addr, t)
}

func (env *Environment) storeScalarAt(addr Address, t *Type, w Word) {
	env.heap.storeScalar(addr, t, w)
}

// evalBinary implements spec.md §4.3 `binop`: assignment dispatches on
// the left-hand side's shape, additive operators scale by pointee size
// when either operand is a pointer, multiplicative/relational/equality
// operate on plain words.
func (env *Environment) evalBinary(n *BinaryExpr) error {
	f := env.curFrame()
	if n.Op == BinAssign {
		return env.evalAssign(n)
	}

	l, ok := f.LoadStmt(n.L)
	if !ok {
		return uncachedErr(n.L)
	}
	r, ok := f.LoadStmt(n.R)
	if !ok {
		return uncachedErr(n.R)
	}

	switch n.Op {
	case BinAdd, BinSub:
		lt, rt := n.L.ExprType(), n.R.ExprType()
		if lt.IsPointer() {
			r *= Word(lt.Elem.ScalarSize())
		} else if rt.IsPointer() {
			l *= Word(rt.Elem.ScalarSize())
		}
		if n.Op == BinAdd {
			f.BindStmt(n, l+r)
		} else {
			f.BindStmt(n, l-r)
		}
	case BinMul:
		f.BindStmt(n, l*r)
	case BinDiv:
		if r == 0 {
			return newEvalError(ErrDivByZero, n.Span(), "division by zero")
		}
		f.BindStmt(n, l/r)
	case BinMod:
		if r == 0 {
			return newEvalError(ErrDivByZero, n.Span(), "modulo by zero")
		}
		f.BindStmt(n, l%r)
	case BinLt:
		f.BindStmt(n, boolWord(l < r))
	case BinGt:
		f.BindStmt(n, boolWord(l > r))
	case BinLe:
		f.BindStmt(n, boolWord(l <= r))
	case BinGe:
		f.BindStmt(n, boolWord(l >= r))
	case BinEq:
		f.BindStmt(n, boolWord(l == r))
	case BinNe:
		f.BindStmt(n, boolWord(l != r))
	}
	return nil
}

func boolWord(b bool) Word {
	if b {
		return 1
	}
	return 0
}

// evalAssign handles the three left-hand-side shapes spec.md §4.3 names:
// a bare (optionally parenthesised) decl-ref, a dereferenced pointer, or
// an array subscript.
func (env *Environment) evalAssign(n *BinaryExpr) error {
	f := env.curFrame()
	r, ok := f.LoadStmt(n.R)
	if !ok {
		return uncachedErr(n.R)
	}

	lhs := n.L
	for {
		if p, isParen := lhs.(*ParenExpr); isParen {
			lhs = p.X
			continue
		}
		break
	}

	switch l := lhs.(type) {
	case *DeclRef:
		env.storeDeclWord(l.D, r)
	case *UnaryExpr:
		if l.Op != UnaryDeref {
			return newEvalError(ErrUncachedNode, n.Span(), "invalid assignment target")
		}
		addr, ok := f.LoadStmt(l.X)
		if !ok {
			return uncachedErr(l.X)
		}
		env.storeScalarAt(addr, l.X.ExprType().Elem, r)
	case *ArrSubExpr:
		base, ok := f.LoadStmt(l.Base)
		if !ok {
			return uncachedErr(l.Base)
		}
		idx, ok := f.LoadStmt(l.Index)
		if !ok {
			return uncachedErr(l.Index)
		}
		env.heap.StoreWord(base+idx*Word(WordSize), r)
	default:
		return newEvalError(ErrUncachedNode, n.Span(), "invalid assignment target")
	}

	f.BindStmt(n, r)
	return nil
}

// evalArrSub implements spec.md §4.3 `arrsub`: every array slot is one
// word wide regardless of element type, so indexing never needs the
// element's byte size, only its own word_size stride.
func (env *Environment) evalArrSub(n *ArrSubExpr) error {
	f := env.curFrame()
	base, ok := f.LoadStmt(n.Base)
	if !ok {
		return uncachedErr(n.Base)
	}
	idx, ok := f.LoadStmt(n.Index)
	if !ok {
		return uncachedErr(n.Index)
	}
	f.BindStmt(n, env.heap.LoadWord(base+idx*Word(WordSize)))
	return nil
}

func (env *Environment) evalSizeof(n *SizeofExpr) error {
	env.curFrame().BindStmt(n, Word(sizeofType(n.Type)))
	return nil
}

// sizeofType implements spec.md §4.3 `sizeof`: scalar types report
// their natural width, arrays report Len×word_size.
func sizeofType(t *Type) int {
	if t.IsArray() {
		return t.Len * WordSize
	}
	return t.ScalarSize()
}

// evalDecl implements spec.md §4.3 `decl`: each declarator in a
// DeclStmt is either a scalar (optionally initialised), a
// constant-or-variable-sized array (allocated fresh from the arena
// every time the statement executes), or a pointer (bound to its
// initialiser's value, or to 0 absent an initialiser).
func (env *Environment) evalDecl(n *DeclStmt) error {
	f := env.curFrame()
	for _, d := range n.Decls {
		if d.Type.IsArray() {
			size := sizeofType(d.Type)
			if d.Type.Kind == KindVarArray {
				lenW, ok := f.LoadStmt(d.Type.SizeExpr)
				if !ok {
					return uncachedErr(d.Type.SizeExpr)
				}
				size = int(lenW) * WordSize
			}
			addr := f.AllocLocal(env.heap, size)
			f.InitDecl(d, addr)
			continue
		}
		var w Word
		if d.Init != nil {
			v, ok := f.LoadStmt(d.Init)
			if !ok {
				return uncachedErr(d.Init)
			}
			w = v
		}
		f.InitDecl(d, w)
	}
	return nil
}

// ---- calls (spec.md §4.3 `call`) ----

// evalCall dispatches GET/PRINT/MALLOC/FREE directly, or pushes a fresh
// frame for a user-defined function: parameters are pre-bound via
// InitDecl before the callee's body runs.
func (env *Environment) evalCall(n *CallExpr) (*FuncDecl, error) {
	f := env.curFrame()
	f.SetPC(n)

	args := make([]Word, len(n.Args))
	for i, a := range n.Args {
		w, ok := f.LoadStmt(a)
		if !ok {
			return nil, uncachedErr(a)
		}
		args[i] = w
	}

	switch n.Callee {
	case intrinsicGet:
		return nil, env.callGet(n, args)
	case intrinsicPrint:
		return nil, env.callPrint(n, args)
	case intrinsicMalloc:
		return nil, env.callMalloc(n, args)
	case intrinsicFree:
		return nil, env.callFree(n, args)
	}

	fn, ok := env.funcs[n.Callee]
	if !ok {
		return nil, newEvalError(ErrUnknownIntrinsic, n.Span(), "call to undeclared function: %s", n.Callee)
	}
	if env.stack.len() >= env.cfg.MaxCallDepth {
		return nil, newEvalError(ErrStackUnderflow, n.Span(), "call depth exceeds %d", env.cfg.MaxCallDepth)
	}

	callee := newFrame()
	for i, p := range fn.Params {
		callee.InitDecl(p, args[i])
	}
	env.stack.push(callee)
	return fn, nil
}

// evalReturn reads the word a `return` statement yields (zero for a bare
// `return;`) from the current frame's cache. It does not pop the frame:
// popFrame does that, and deposits the word in the caller's cache, once
// the callee's body walk has finished (spec.md §4.3 `ret`).
func (env *Environment) evalReturn(n *ReturnStmt) (Word, error) {
	f := env.curFrame()
	var w Word
	if n.X != nil {
		v, ok := f.LoadStmt(n.X)
		if !ok {
			return 0, uncachedErr(n.X)
		}
		w = v
	}
	return w, nil
}

// popFrame releases a returning frame's locals, pops it, and deposits w
// into the caller's cache at the caller's pc (the CallExpr that invoked
// the just-finished frame).
func (env *Environment) popFrame(w Word) error {
	if env.stack.len() <= 1 {
		return newEvalError(ErrStackUnderflow, Span{}, "return with no active call")
	}
	done := env.stack.pop()
	done.ReleaseLocals(env.heap)
	caller := env.curFrame()
	if pc := caller.GetPC(); pc != nil {
		caller.BindStmt(pc, w)
	}
	return nil
}

func uncachedErr(n AstNode) error {
	return newEvalError(ErrUncachedNode, n.Span(), "node has no cached result: %s", n)
}
