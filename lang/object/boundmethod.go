package object

// BoundMethod pairs a receiver value with the method Closure looked up on
// its class, produced by a GET_PROPERTY that resolves to a method rather
// than a field. Calling a BoundMethod calls the underlying Closure with the
// receiver reinstated as the callee's slot zero ("this").
type BoundMethod struct {
	header
	Receiver Value
	Method   *Closure
}

var _ Object = (*BoundMethod)(nil)

func (b *BoundMethod) String() string { return b.Method.String() }
func (b *BoundMethod) Type() string   { return "function" }

func (b *BoundMethod) Trace(mark func(Value)) {
	mark(b.Receiver)
	mark(b.Method)
}
