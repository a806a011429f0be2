package interp

import "io"

// Config collects the knobs an Environment needs that spec.md leaves to
// the implementer: initial arena capacity, recursion guard, pointer
// strictness, and the I/O streams GET/PRINT bind to. Grounded on the
// teacher's Config (config.go), trimmed from a generic string-keyed
// store to a plain struct since this evaluator has a small, fixed set
// of settings known up front.
type Config struct {
	// InitialHeapBytes sizes the shared arena's backing buffer before
	// its first growth, purely to avoid repeated reallocation; it has
	// no semantic effect (spec.md §4.1 malloc still grows on miss).
	InitialHeapBytes int

	// MaxCallDepth guards the *host* Go call stack, not a modeled
	// language limit (spec.md §5 defines no such limit). Exceeding it
	// is reported the same way as any other fatal error.
	MaxCallDepth int

	// StrictPointers promotes the silent-tolerance case in spec.md §7
	// (reading an unbound pointer decl-ref/cast) to a fatal
	// ErrUnboundPointer, applied uniformly as the spec requires of any
	// implementer who chooses to do so.
	StrictPointers bool

	Stdin  io.Reader
	Stdout io.Writer
}

// NewConfig returns the default configuration: a modest initial arena,
// a call-depth ceiling generous enough for deep recursion tests without
// risking a host stack overflow, and the tolerant pointer-read policy
// spec.md §7 recommends.
func NewConfig() *Config {
	return &Config{
		InitialHeapBytes: 256,
		MaxCallDepth:     4096,
		StrictPointers:   false,
	}
}
