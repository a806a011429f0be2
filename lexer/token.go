// Package lexer turns source text into a flat token stream for the
// parser. Grounded on the cursor/line/column bookkeeping the teacher's
// BaseParser keeps (base_parser.go), reshaped into a conventional
// scan-ahead lexer instead of a backtracking PEG cursor, since this
// grammar's tokens are regular enough not to need one.
package lexer

import "cint/interp"

// Kind classifies a Token.
type Kind int

const (
	EOF Kind = iota
	Ident
	IntLit
	CharLit

	KwInt
	KwChar
	KwVoid
	KwIf
	KwElse
	KwWhile
	KwFor
	KwReturn
	KwSizeof

	Plus
	Minus
	Star
	Slash
	Percent
	Assign
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	Amp
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semi
)

var names = map[Kind]string{
	EOF: "EOF", Ident: "identifier", IntLit: "int-literal", CharLit: "char-literal",
	KwInt: "int", KwChar: "char", KwVoid: "void", KwIf: "if", KwElse: "else",
	KwWhile: "while", KwFor: "for", KwReturn: "return", KwSizeof: "sizeof",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Assign: "=",
	Eq: "==", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=", Amp: "&",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Comma: ",", Semi: ";",
}

func (k Kind) String() string { return names[k] }

var keywords = map[string]Kind{
	"int": KwInt, "char": KwChar, "void": KwVoid, "if": KwIf, "else": KwElse,
	"while": KwWhile, "for": KwFor, "return": KwReturn, "sizeof": KwSizeof,
}

// Token is one lexeme with its source span and, for literals, a
// resolved value.
type Token struct {
	Kind  Kind
	Text  string
	Value int64 // IntLit, CharLit
	Span  interp.Span
}

func (t Token) String() string {
	if t.Text != "" {
		return t.Text
	}
	return t.Kind.String()
}
