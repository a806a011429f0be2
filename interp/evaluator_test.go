package interp_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cint/interp"
	"cint/parser"
)

// run lexes, parses, and evaluates src, returning whatever PRINT wrote
// (one value per line) and the `main` return word.
func run(t *testing.T, src string) (string, interp.Word) {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	var out bytes.Buffer
	cfg := interp.NewConfig()
	cfg.Stdout = &out

	env, err := interp.NewEnvironment(prog, cfg)
	require.NoError(t, err)

	result, err := interp.NewEvaluator(env).Run()
	require.NoError(t, err)

	return strings.TrimRight(out.String(), "\n"), result
}

func TestEndToEndArithmeticAndBranching(t *testing.T) {
	out, ret := run(t, `int main(){int a=10,b=20; if(a<b) PRINT(a+b); else PRINT(a-b); return 0;}`)
	assert.Equal(t, "30", out)
	assert.Equal(t, interp.Word(0), ret)
}

func TestEndToEndLoopAndAccumulator(t *testing.T) {
	out, _ := run(t, `int main(){int i=0,s=0; while(i<5){s=s+i; i=i+1;} PRINT(s); return 0;}`)
	assert.Equal(t, "10", out)
}

func TestEndToEndRecursiveFactorial(t *testing.T) {
	out, _ := run(t, `int fact(int n){if(n==0) return 1; return n*fact(n-1);} int main(){PRINT(fact(5)); return 0;}`)
	assert.Equal(t, "120", out)
}

func TestEndToEndArrayIndexing(t *testing.T) {
	out, _ := run(t, `int main(){int a[3]; a[0]=7; a[1]=8; a[2]=9; PRINT(a[0]+a[1]+a[2]); return 0;}`)
	assert.Equal(t, "24", out)
}

func TestEndToEndHeapPointerArithmetic(t *testing.T) {
	out, _ := run(t, `int main(){int* p=(int*)MALLOC(2*sizeof(int)); *p=11; *(p+1)=31; PRINT(*p+*(p+1)); FREE(p); return 0;}`)
	assert.Equal(t, "42", out)
}

func TestEndToEndBytesThroughCharPointer(t *testing.T) {
	out, _ := run(t, `int main(){char* a=(char*)MALLOC(4); char* b=(char*)MALLOC(2); *a=42; *b=43; PRINT((int)*a); PRINT((int)*b); FREE(a); return 0;}`)
	assert.Equal(t, "42\n43", out)
}

func TestForLoopWithStepAndInitDeclaration(t *testing.T) {
	out, _ := run(t, `int main(){int s=0; for(int i=0;i<4;i=i+1){s=s+i;} PRINT(s); return 0;}`)
	assert.Equal(t, "6", out)
}

func TestDivisionByZeroIsFatal(t *testing.T) {
	prog, err := parser.Parse(`int main(){int z=0; return 1/z;}`)
	require.NoError(t, err)
	env, err := interp.NewEnvironment(prog, interp.NewConfig())
	require.NoError(t, err)
	_, err = interp.NewEvaluator(env).Run()
	require.Error(t, err)
	var evalErr interp.EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, interp.ErrDivByZero, evalErr.Kind)
}

func TestGlobalScalarInitialisation(t *testing.T) {
	out, _ := run(t, `int counter = 5; int main(){PRINT(counter); counter = counter + 1; PRINT(counter); return 0;}`)
	assert.Equal(t, "5\n6", out)
}

func TestRecursionDepthGuardIsFatal(t *testing.T) {
	prog, err := parser.Parse(`int loop(int n){return loop(n+1);} int main(){return loop(0);}`)
	require.NoError(t, err)
	cfg := interp.NewConfig()
	cfg.MaxCallDepth = 8
	env, err := interp.NewEnvironment(prog, cfg)
	require.NoError(t, err)
	_, err = interp.NewEvaluator(env).Run()
	require.Error(t, err)
}
