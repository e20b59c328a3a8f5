package object

// Function is an immutable, compiled function: its arity, the number of
// upvalues its closures must capture, its bytecode Chunk, and an optional
// name (nil for the implicit top-level script function).
type Function struct {
	header
	Name         *String
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
}

var _ Object = (*Function)(nil)

func (f *Function) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.Go() + ">"
}
func (f *Function) Type() string { return "function" }

func (f *Function) Trace(mark func(Value)) {
	if f.Name != nil {
		mark(f.Name)
	}
	for _, c := range f.Chunk.Constants {
		mark(c)
	}
}
