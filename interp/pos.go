package interp

import "fmt"

// Location is a single point within the original source text, used to
// annotate AST nodes for error reporting. Line and Column are 1-based;
// Cursor is the 0-based offset in runes (the lexer scans a []rune).
type Location struct {
	Line   int
	Column int
	Cursor int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Span covers the half-open range [Start, End) of source text consumed
// by one AST node.
type Span struct {
	Start Location
	End   Location
}

func NewSpan(start, end Location) Span {
	return Span{Start: start, End: end}
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line && s.Start.Column == s.End.Column {
		return s.Start.String()
	}
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}
