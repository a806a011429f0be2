package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(t *testing.T, src string) []Kind {
	t.Helper()
	l := New(src)
	var ks []Kind
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		ks = append(ks, tok.Kind)
		if tok.Kind == EOF {
			return ks
		}
	}
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	assert.Equal(t, []Kind{KwInt, Ident, Assign, IntLit, Semi, EOF}, kinds(t, "int x = 3;"))
}

func TestLexerTwoCharOperators(t *testing.T) {
	assert.Equal(t, []Kind{Ident, Eq, Ident, EOF}, kinds(t, "a==b"))
	assert.Equal(t, []Kind{Ident, Le, Ident, EOF}, kinds(t, "a<=b"))
}

func TestLexerSkipsComments(t *testing.T) {
	assert.Equal(t, []Kind{KwInt, Ident, Semi, EOF}, kinds(t, "int x; // trailing\n/* block */"))
}

func TestLexerCharLiteralEscape(t *testing.T) {
	l := New(`'\n'`)
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, CharLit, tok.Kind)
	assert.Equal(t, int64('\n'), tok.Value)
}
