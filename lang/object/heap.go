package object

import "github.com/dolthub/swiss"

// MinHeapSize is the minimum and initial GC threshold in bytes, below which
// a collection is never triggered by the allocation heuristic.
const MinHeapSize = 1 << 20 // 1 MiB

// GCGrowthFactor is the multiplier applied to bytesAllocated, after a
// collection, to compute the next collection threshold.
const GCGrowthFactor = 2

// roughly estimates the number of bytes an allocation of a heap object of
// the given kind occupies, for the allocation heuristic of §4.5. This is
// deliberately approximate: the collector's correctness never depends on
// the exact figure, only on it being a stable, positive measure of
// allocation pressure.
const (
	sizeString      = 32
	sizeFunction    = 64
	sizeNative      = 32
	sizeClosure     = 48
	sizeUpvalue     = 24
	sizeClass       = 48
	sizeInstance    = 48
	sizeBoundMethod = 32
)

// Heap owns its own intrusive object list, the string intern
// table, and the bytes-allocated/next-GC bookkeeping that drives the
// mark-sweep collector. It is passed explicitly to both the compiler (for
// string interning during compilation) and the VM (for everything else),
// rather than living behind a global singleton, so independent VMs can
// coexist in the same process.
type Heap struct {
	objects Object
	strings *swiss.Map[string, *String]

	bytesAllocated int64
	nextGC         int64
	minHeapSize    int64
	growthFactor   int64

	gray []Object

	// rootMarkers are invoked, in registration order, at the start of a
	// collection to mark every externally-reachable root. A VM registers
	// one for its own lifetime (stack, frames, globals, open upvalues) via
	// AddRootMarker; a Compiler registers and later removes one around a
	// single Compile call, so the function chain it's still building stays
	// reachable if a collection happens mid-compile. A removed marker
	// leaves a nil hole rather than shifting indices.
	rootMarkers []func(mark func(Value))

	// initString is the interned "init" string, cached here because both
	// the compiler and the VM need to recognize constructors by name.
	initString *String

	// collections counts completed GC cycles, exposed for tests and metrics.
	collections int
}

// NewHeap returns an empty Heap with the initial GC threshold.
func NewHeap() *Heap {
	return NewHeapWithThresholds(MinHeapSize, GCGrowthFactor)
}

// NewHeapWithThresholds returns an empty Heap using minHeapSize as both the
// initial and the floor GC threshold, and growthFactor as the multiplier
// applied to bytesAllocated after each collection to compute the next one.
// Embedders that want the package defaults should call NewHeap instead.
func NewHeapWithThresholds(minHeapSize, growthFactor int64) *Heap {
	h := &Heap{
		strings:      swiss.NewMap[string, *String](64),
		nextGC:       minHeapSize,
		minHeapSize:  minHeapSize,
		growthFactor: growthFactor,
	}
	h.initString = h.InternString("init")
	return h
}

// AddRootMarker registers fn to be called at the start of every collection
// to mark a set of GC roots, and returns a remove function that deregisters
// it. Callers that live for the Heap's whole lifetime (a VM) may discard
// the returned func; callers with a shorter lifetime (a Compiler, for the
// duration of one Compile call) must call it once they're done, typically
// via defer.
func (h *Heap) AddRootMarker(fn func(mark func(Value))) (remove func()) {
	h.rootMarkers = append(h.rootMarkers, fn)
	idx := len(h.rootMarkers) - 1
	return func() { h.rootMarkers[idx] = nil }
}

// InitString returns the interned "init" string used to recognize
// constructors.
func (h *Heap) InitString() *String { return h.initString }

// Collections returns the number of completed GC cycles.
func (h *Heap) Collections() int { return h.collections }

// BytesAllocated returns the heap's current allocation-pressure counter.
func (h *Heap) BytesAllocated() int64 { return h.bytesAllocated }

// track links obj into the intrusive object list, charges size bytes
// against the allocation heuristic, and triggers a collection if the
// threshold is exceeded. Per the allocation invariant, callers must ensure
// obj is reachable from a root (e.g. already pushed on the VM stack) before
// making any further allocation, since this call may immediately sweep
// everything that wasn't.
func (h *Heap) track(obj Object, size int64) {
	obj.setNextObject(h.objects)
	h.objects = obj
	h.bytesAllocated += size
	if h.bytesAllocated > h.nextGC {
		h.Collect()
	}
}

// InternString returns the canonical String for s, allocating and
// registering a new one if no String with identical content already
// exists. Every call with byte-equal content returns the same object,
// which is the intern-uniqueness invariant of the runtime object model.
func (h *Heap) InternString(s string) *String {
	if existing, ok := h.strings.Get(s); ok {
		return existing
	}
	str := &String{s: s, hash: fnv1a(s)}
	h.strings.Put(s, str)
	h.track(str, sizeString+int64(len(s)))
	return str
}

// NewFunction allocates a new, empty Function. Callers fill in its Chunk,
// Arity, and UpvalueCount as compilation proceeds.
func (h *Heap) NewFunction(name *String) *Function {
	fn := &Function{Name: name, Chunk: &Chunk{}}
	h.track(fn, sizeFunction)
	return fn
}

// NewNative allocates a Native wrapping fn.
func (h *Heap) NewNative(name string, arity int, fn NativeFn) *Native {
	n := &Native{NameStr: name, Arity: arity, Fn: fn}
	h.track(n, sizeNative)
	return n
}

// NewClosure allocates a Closure over function with the given upvalues.
func (h *Heap) NewClosure(function *Function, upvalues []*Upvalue) *Closure {
	c := &Closure{Function: function, Upvalues: upvalues}
	h.track(c, sizeClosure)
	return c
}

// NewUpvalue allocates an open upvalue pointing at location.
func (h *Heap) NewUpvalue(location *Value) *Upvalue {
	uv := &Upvalue{Location: location}
	h.track(uv, sizeUpvalue)
	return uv
}

// NewClass allocates an empty class named name.
func (h *Heap) NewClass(name *String) *Class {
	c := &Class{Name: name, Methods: swiss.NewMap[*String, *Closure](8)}
	h.track(c, sizeClass)
	return c
}

// NewInstance allocates a field-less instance of class.
func (h *Heap) NewInstance(class *Class) *Instance {
	in := &Instance{Class: class, Fields: swiss.NewMap[*String, Value](4)}
	h.track(in, sizeInstance)
	return in
}

// NewBoundMethod allocates a BoundMethod pairing receiver with method.
func (h *Heap) NewBoundMethod(receiver Value, method *Closure) *BoundMethod {
	b := &BoundMethod{Receiver: receiver, Method: method}
	h.track(b, sizeBoundMethod)
	return b
}
