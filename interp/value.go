package interp

// Word is the evaluator's universal runtime value (spec.md §3): bytes,
// integers, pointers, and array base addresses are all a Word.
// Discrimination between them is recovered from the AST-declared type
// of the producing node at each use site — the representation itself
// carries no tag.
type Word int64

// Address is a Word used as a byte offset into the shared arena
// (heap.go). A null pointer is Address(0); no allocator ever returns 0
// (spec.md §3).
type Address = Word

const NullAddress Address = 0

// byteWiden applies the evaluator's load-widening policy for a value
// read out of byte storage: sign-extend the low 8 bits. spec.md §3
// leaves sign- vs zero-widening to the implementer "applied
// consistently"; this implementation always sign-extends, matching C's
// signed `char`.
func byteWiden(b byte) Word {
	return Word(int64(int8(b)))
}
