package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameReleaseLocalsFreesEveryAllocation(t *testing.T) {
	h := NewHeap(8)
	before := h.HighWaterMark()

	f := newFrame()
	f.AllocLocal(h, 8)
	f.AllocLocal(h, 16)
	f.ReleaseLocals(h)

	assert.Equal(t, before, h.HighWaterMark(), "a popped frame's arrays must not outlive it")
}

func TestFrameDeclBindingIsFrameLocal(t *testing.T) {
	f := newFrame()
	d := NewVarDecl("x", IntType, nil, false, Span{})

	_, ok := f.LoadDecl(d)
	assert.False(t, ok)

	f.InitDecl(d, 5)
	w, ok := f.LoadDecl(d)
	require.True(t, ok)
	assert.Equal(t, Word(5), w)
}

func TestCallStackPushPop(t *testing.T) {
	var s callStack
	root := newFrame()
	s.push(root)
	assert.Equal(t, 1, s.len())
	assert.Same(t, root, s.top())

	child := newFrame()
	s.push(child)
	assert.Same(t, child, s.pop())
	assert.Same(t, root, s.top())
}
