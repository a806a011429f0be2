package interp

// Frame is one call activation record (spec.md §4.2): local bindings,
// a per-node result cache, the set of arena regions this frame owns
// (freed on pop, see the arena-ownership decision in SPEC_FULL.md §3),
// and the "program counter" anchor used to deposit a callee's return
// value back into the caller's cache (spec.md Glossary "pc").
//
// Grounded on the teacher's stack/frame pair (vm_stack.go): a small
// value-holding struct pushed and popped from a slice-backed stack.
type Frame struct {
	bindings map[Decl]Word
	cache    map[AstNode]Word
	locals   []Address // arena regions owned by this frame; freed at pop
	pc       AstNode

	retWord Word
	hasRet  bool
}

func newFrame() *Frame {
	return &Frame{
		bindings: make(map[Decl]Word),
		cache:    make(map[AstNode]Word),
	}
}

// InitDecl creates a binding unconditionally: used at frame entry to
// pre-bind parameters, and at a declaration statement's first visit.
func (f *Frame) InitDecl(d Decl, w Word) { f.bindings[d] = w }

// BindDecl updates an existing frame-local binding. Callers are
// responsible for routing global decls to the Heap instead (spec.md
// §4.2: "routes through the heap if the decl is not frame-local").
func (f *Frame) BindDecl(d Decl, w Word) { f.bindings[d] = w }

func (f *Frame) HasDecl(d Decl) bool {
	_, ok := f.bindings[d]
	return ok
}

func (f *Frame) LoadDecl(d Decl) (Word, bool) {
	w, ok := f.bindings[d]
	return w, ok
}

func (f *Frame) BindStmt(node AstNode, w Word) { f.cache[node] = w }

func (f *Frame) HasStmt(node AstNode) bool {
	_, ok := f.cache[node]
	return ok
}

func (f *Frame) LoadStmt(node AstNode) (Word, bool) {
	w, ok := f.cache[node]
	return w, ok
}

// AllocLocal allocates from the shared arena (first-fit, growing it on
// a miss) for an array declared in this frame and remembers the region so ReleaseLocals can free it when the
// frame pops (spec.md §4.2: "There is no intra-frame free").
func (f *Frame) AllocLocal(h *Heap, size int) Address {
	addr := h.Malloc(size)
	f.locals = append(f.locals, addr)
	return addr
}

func (f *Frame) StoreWordLocal(h *Heap, addr Address, w Word) { h.StoreWord(addr, w) }
func (f *Frame) LoadWordLocal(h *Heap, addr Address) Word     { return h.LoadWord(addr) }

// ReleaseLocals frees every arena region this frame owns. Called when
// the frame is popped (spec.md §3 Lifecycle: "Locals/parameters...die
// at frame pop").
func (f *Frame) ReleaseLocals(h *Heap) {
	for _, addr := range f.locals {
		_ = h.Free(addr)
	}
	f.locals = nil
}

func (f *Frame) SetPC(node AstNode) { f.pc = node }
func (f *Frame) GetPC() AstNode     { return f.pc }

// SetReturn records the word a `return` statement produced in this
// frame, for the caller to collect once the frame pops (spec.md §4.3
// `ret`). A frame that falls off its end without executing one reports
// ok=false from GetReturn, and the caller treats that as an implicit
// `return 0;`.
func (f *Frame) SetReturn(w Word) { f.retWord, f.hasRet = w, true }
func (f *Frame) GetReturn() (Word, bool) { return f.retWord, f.hasRet }

// callStack is the Environment's slice-backed stack of Frames.
type callStack []*Frame

func (s *callStack) push(f *Frame) { *s = append(*s, f) }

func (s *callStack) pop() *Frame {
	n := len(*s)
	f := (*s)[n-1]
	*s = (*s)[:n-1]
	return f
}

func (s *callStack) top() *Frame { return (*s)[len(*s)-1] }
func (s *callStack) len() int    { return len(*s) }
