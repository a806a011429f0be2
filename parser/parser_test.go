package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cint/interp"
)

func TestParseSimpleFunction(t *testing.T) {
	prog, err := Parse(`int main(){return 0;}`)
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 1)
	assert.Equal(t, "main", prog.Funcs[0].Name)
	assert.Equal(t, interp.IntType, prog.Funcs[0].ReturnType)
}

func TestParseResolvesParameterReferences(t *testing.T) {
	prog, err := Parse(`int square(int n){return n*n;}`)
	require.NoError(t, err)
	fn := prog.Funcs[0]
	require.Len(t, fn.Params, 1)

	ret := fn.Body.Stmts[0].(*interp.ReturnStmt)
	bin := ret.X.(*interp.BinaryExpr)
	lhs := bin.L.(*interp.DeclRef)
	assert.Same(t, fn.Params[0], lhs.D, "a parameter reference must resolve to the same Decl identity as its ParamDecl")
}

func TestParseSelfRecursiveCallResolvesReturnType(t *testing.T) {
	prog, err := Parse(`int fact(int n){if(n==0) return 1; return n*fact(n-1);}`)
	require.NoError(t, err)
	fn := prog.Funcs[0]
	ifStmt := fn.Body.Stmts[0].(*interp.IfStmt)
	_ = ifStmt
	ret := fn.Body.Stmts[1].(*interp.ReturnStmt)
	bin := ret.X.(*interp.BinaryExpr)
	call := bin.R.(*interp.CallExpr)
	assert.Equal(t, "fact", call.Callee)
	assert.Equal(t, interp.IntType, call.ExprType())
}

func TestParseArrayDeclaratorAndSubscript(t *testing.T) {
	prog, err := Parse(`int main(){int a[3]; a[0]=1; return a[0];}`)
	require.NoError(t, err)
	fn := prog.Funcs[0]
	decl := fn.Body.Stmts[0].(*interp.DeclStmt).Decls[0]
	assert.True(t, decl.Type.IsArray())
	assert.Equal(t, 3, decl.Type.Len)
}

func TestParseCastAndPointerType(t *testing.T) {
	prog, err := Parse(`int main(){int* p=(int*)MALLOC(8); return 0;}`)
	require.NoError(t, err)
	fn := prog.Funcs[0]
	decl := fn.Body.Stmts[0].(*interp.DeclStmt).Decls[0]
	assert.True(t, decl.Type.IsPointer())
	cast := decl.Init.(*interp.CastExpr)
	assert.True(t, cast.Type.IsPointer())
}

func TestParseUndeclaredReferenceFails(t *testing.T) {
	_, err := Parse(`int main(){return y;}`)
	require.Error(t, err)
}
