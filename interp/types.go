package interp

// Kind enumerates the resolvable type shapes the front end can produce
// (spec.md §6): char, int, pointer-to-T, constant-sized array, and
// variable-sized array. Void appears as a function return type and as
// the pointee of void*.
type Kind int

const (
	KindVoid Kind = iota
	KindChar
	KindInt
	KindPointer
	KindArray
	KindVarArray
)

// WordSize is the width, in bytes, of the evaluator's universal Word
// (spec.md §3: "a signed machine-word integer, >= 32 bits"). int64
// covers every host architecture tests run on.
const WordSize = 8

// Type is the resolved, AST-declared type of a declaration or
// expression node. The evaluator never infers types: it reads the one
// recorded on the producing node, per spec.md §3 ("discrimination...
// uses the AST-declared type of the producing node at the moment of
// use").
type Type struct {
	Kind Kind
	Elem *Type // element/pointee type, for Pointer, Array, VarArray
	Len  int   // array length, for Array (constant N)

	// SizeExpr is the length expression of a variable-sized array
	// declaration (`int a[n]`). It is evaluated each time the
	// declaration statement executes (spec.md §4.3 `decl`).
	SizeExpr Expr
}

var (
	CharType = &Type{Kind: KindChar}
	IntType  = &Type{Kind: KindInt}
	VoidType = &Type{Kind: KindVoid}
)

func PointerTo(elem *Type) *Type {
	return &Type{Kind: KindPointer, Elem: elem}
}

func ArrayOf(elem *Type, n int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Len: n}
}

func VarArrayOf(elem *Type, sizeExpr Expr) *Type {
	return &Type{Kind: KindVarArray, Elem: elem, SizeExpr: sizeExpr}
}

func (t *Type) IsPointer() bool { return t != nil && t.Kind == KindPointer }
func (t *Type) IsArray() bool {
	return t != nil && (t.Kind == KindArray || t.Kind == KindVarArray)
}
func (t *Type) IsScalar() bool {
	return t != nil && (t.Kind == KindChar || t.Kind == KindInt || t.Kind == KindPointer)
}

// ScalarSize reports the byte footprint of one value of t used as a
// scalar/pointee (spec.md §4.3 sizeof): byte=1, int=word, pointer=word.
func (t *Type) ScalarSize() int {
	switch t.Kind {
	case KindChar:
		return 1
	default:
		return WordSize
	}
}

func (t Type) String() string {
	switch t.Kind {
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindVoid:
		return "void"
	case KindPointer:
		return t.Elem.String() + "*"
	case KindArray:
		return t.Elem.String() + "[]"
	case KindVarArray:
		return t.Elem.String() + "[n]"
	default:
		return "?"
	}
}
