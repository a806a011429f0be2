package interp

import "fmt"

// GET/PRINT/MALLOC/FREE are the four intrinsic functions spec.md §4.3
// reserves: the only point where the evaluator touches the host's I/O
// streams or the shared arena directly from a `call`. Dispatched by
// Environment.evalCall before it ever looks at env.funcs, so a program
// cannot shadow them with a user-defined function of the same name.
//
// Grounded on the teacher's builtin-handler pattern
// (grammar_builtin_handler.go): a fixed table of host-implemented names
// a call can resolve to instead of a user rule/function.

func (env *Environment) callGet(n *CallExpr, args []Word) error {
	if env.cfg.Stdin == nil {
		env.curFrame().BindStmt(n, 0)
		return nil
	}
	var v int64
	if _, err := fmt.Fscan(env.cfg.Stdin, &v); err != nil {
		return fmt.Errorf("GET: %w", err)
	}
	env.curFrame().BindStmt(n, Word(v))
	return nil
}

func (env *Environment) callPrint(n *CallExpr, args []Word) error {
	if env.cfg.Stdout != nil && len(args) > 0 {
		fmt.Fprintln(env.cfg.Stdout, int64(args[0]))
	}
	env.curFrame().BindStmt(n, 0)
	return nil
}

func (env *Environment) callMalloc(n *CallExpr, args []Word) error {
	size := 0
	if len(args) > 0 {
		size = int(args[0])
	}
	addr := env.heap.Malloc(size)
	env.curFrame().BindStmt(n, addr)
	return nil
}

func (env *Environment) callFree(n *CallExpr, args []Word) error {
	if len(args) == 0 {
		return newEvalError(ErrUnknownFree, n.Span(), "FREE called with no argument")
	}
	if err := env.heap.Free(args[0]); err != nil {
		return err
	}
	env.curFrame().BindStmt(n, 0)
	return nil
}
