package object

// Object is implemented by every heap-allocated Value: String, Function,
// Native, Closure, Upvalue, Class, Instance, and BoundMethod. It is the
// intrusive-list node the garbage collector sweeps over.
type Object interface {
	Value
	isMarked() bool
	setMarked(bool)
	nextObject() Object
	setNextObject(Object)
}

// Traceable is implemented by Object variants that hold references to other
// Values; the garbage collector's mark phase visits them through Trace to
// blacken the object graph.
type Traceable interface {
	Object
	Trace(mark func(Value))
}

// header is embedded in every heap object to provide the common
// { kind (via the Go type itself), marked, next } structure described for
// the runtime object model: a mark bit and a link into the owning Heap's
// intrusive object list that is the GC's sweep domain.
type header struct {
	marked bool
	next   Object
}

func (h *header) isMarked() bool       { return h.marked }
func (h *header) setMarked(m bool)     { h.marked = m }
func (h *header) nextObject() Object   { return h.next }
func (h *header) setNextObject(o Object) { h.next = o }
