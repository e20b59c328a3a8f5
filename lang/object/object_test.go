package object_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/lang/object"
)

func TestInternStringUniqueness(t *testing.T) {
	h := object.NewHeap()
	a := h.InternString("hello")
	b := h.InternString("hello")
	require.Same(t, a, b)

	c := h.InternString("world")
	require.NotSame(t, a, c)
}

func TestValueEquality(t *testing.T) {
	h := object.NewHeap()
	require.True(t, object.Equal(object.Nil, object.Nil))
	require.True(t, object.Equal(object.Bool(true), object.Bool(true)))
	require.False(t, object.Equal(object.Bool(true), object.Bool(false)))
	require.True(t, object.Equal(object.Number(1), object.Number(1)))
	require.False(t, object.Equal(object.Number(1), object.Bool(true)))

	s1 := h.InternString("x")
	s2 := h.InternString("x")
	require.True(t, object.Equal(s1, s2))
}

func TestTruthy(t *testing.T) {
	require.False(t, object.Truthy(object.Nil))
	require.False(t, object.Truthy(object.Bool(false)))
	require.True(t, object.Truthy(object.Bool(true)))
	require.True(t, object.Truthy(object.Number(0)))
	h := object.NewHeap()
	require.True(t, object.Truthy(h.InternString("")))
}

func TestGCSweepsUnreachableStringsFromInternTable(t *testing.T) {
	h := object.NewHeap()
	kept := h.InternString("kept")
	_ = h.InternString("discarded")

	h.AddRootMarker(func(mark func(object.Value)) {
		mark(kept)
	})
	h.Collect()

	require.Same(t, kept, h.InternString("kept"))
	// "discarded" is gone from the table: re-interning allocates a fresh object.
	again := h.InternString("discarded")
	require.NotNil(t, again)
}

func TestGCKeepsReachableClosureGraph(t *testing.T) {
	h := object.NewHeap()
	name := h.InternString("f")
	fn := h.NewFunction(name)
	fn.Chunk.AddConstant(h.InternString("constant"))
	closure := h.NewClosure(fn, nil)

	h.AddRootMarker(func(mark func(object.Value)) {
		mark(closure)
	})
	h.Collect()

	require.Equal(t, "f", closure.Function.Name.Go())
	require.Equal(t, "constant", fn.Chunk.Constants[0].String())
}

func TestRemovedRootMarkerNoLongerProtectsItsRoots(t *testing.T) {
	h := object.NewHeap()
	kept := h.InternString("kept")

	remove := h.AddRootMarker(func(mark func(object.Value)) {
		mark(kept)
	})
	h.Collect()
	require.Same(t, kept, h.InternString("kept"))

	remove()
	h.Collect()
	// "kept" is no longer rooted by anything, so a fresh intern reallocates.
	again := h.InternString("kept")
	require.NotSame(t, kept, again)
}
