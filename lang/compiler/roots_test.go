package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/lang/object"
)

// This is an internal (white-box) test so it can reach into the
// Compiler's unexported fstate chain directly, rather than racing a real
// Compile call against the GC threshold to exercise the same path.
func TestMarkRootsProtectsInProgressFunctionChain(t *testing.T) {
	heap := object.NewHeap()
	c := &Compiler{heap: heap}
	remove := heap.AddRootMarker(c.markRoots)
	defer remove()

	c.pushFunction(typeScript, nil)
	outer := c.fstate.fn
	outer.Chunk.AddConstant(heap.InternString("outer-const"))

	c.pushFunction(typeFunction, heap.InternString("inner"))
	inner := c.fstate.fn

	// Neither function is reachable from anywhere but the compiler's own
	// in-progress fstate chain yet: outer hasn't been returned from
	// Compile, and inner hasn't even been emitted as a CLOSURE constant of
	// outer. Without the registered marker, this collection would sweep
	// both.
	heap.Collect()

	require.Same(t, outer, c.fstate.enclosing.fn)
	require.Equal(t, "outer-const", outer.Chunk.Constants[0].String())
	require.Equal(t, "inner", inner.Name.Go())
}

func TestRemovingCompilerRootMarkerStopsProtectingItsChain(t *testing.T) {
	heap := object.NewHeap()
	c := &Compiler{heap: heap}
	remove := heap.AddRootMarker(c.markRoots)

	c.pushFunction(typeScript, nil)
	c.fstate.fn.Chunk.AddConstant(heap.InternString("transient"))

	remove()
	heap.Collect()

	// Nothing roots the compiler's chain anymore, so "transient" was
	// swept from the intern table: re-interning the same content now
	// allocates a fresh, distinct String.
	transient := heap.InternString("transient")
	require.NotSame(t, c.fstate.fn.Chunk.Constants[0], transient)
}
