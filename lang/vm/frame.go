package vm

import "github.com/lumen-lang/lumen/lang/object"

// frame is one active call: the closure being executed, the instruction
// pointer into its chunk, and the base stack slot its locals start at
// (slot 0 holds the receiver for methods, or is unused otherwise).
type frame struct {
	closure *object.Closure
	ip      int
	slots   int
}

func (f *frame) chunk() *object.Chunk { return f.closure.Function.Chunk }

func (f *frame) line() int { return f.chunk().LineAt(f.ip - 1) }
