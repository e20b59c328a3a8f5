package object

// Collect runs one mark-sweep cycle: mark every root reachable value (the
// cached "init" string, then every marker registered via AddRootMarker), trace the
// object graph to blacken everything transitively reachable, then sweep the
// intrusive object list, freeing anything left unmarked and removing any
// freed String from the intern table. It is normally triggered automatically
// by the allocation heuristic, but embedders may call it directly (e.g.
// between REPL statements) to bound peak memory.
func (h *Heap) Collect() {
	h.mark(h.initString)
	for _, fn := range h.rootMarkers {
		if fn != nil {
			fn(h.mark)
		}
	}
	h.traceReferences()
	h.sweep()
	h.nextGC = h.bytesAllocated * h.growthFactor
	if h.nextGC < h.minHeapSize {
		h.nextGC = h.minHeapSize
	}
	h.collections++
}

// mark marks v if it is a heap Object and pushes it onto the gray worklist
// so its own references are traced later. Non-object values (Bool, Nil,
// Number) and already-marked objects are no-ops.
func (h *Heap) mark(v Value) {
	if v == nil {
		return
	}
	obj, ok := v.(Object)
	if !ok || obj.isMarked() {
		return
	}
	obj.setMarked(true)
	h.gray = append(h.gray, obj)
}

// traceReferences repeatedly pops the gray worklist and blackens each
// object: visiting its outgoing references (closure->function+upvalues,
// function->name+constants, class->name+methods, instance->class+fields,
// boundmethod->receiver+method, upvalue->closed) and marking each one.
func (h *Heap) traceReferences() {
	for len(h.gray) > 0 {
		n := len(h.gray) - 1
		obj := h.gray[n]
		h.gray = h.gray[:n]
		if tr, ok := obj.(Traceable); ok {
			tr.Trace(h.mark)
		}
	}
}

// sweep walks the object list, unlinking and discarding any unmarked node
// (clearing the mark bit on survivors for the next cycle) and removing any
// swept String from the intern table, so the table never points at a freed
// string - the §3 invariant that the intern table holds strings only by
// weak reference from the GC's point of view.
func (h *Heap) sweep() {
	var prev Object
	obj := h.objects
	for obj != nil {
		if obj.isMarked() {
			obj.setMarked(false)
			prev = obj
			obj = obj.nextObject()
			continue
		}

		unreached := obj
		obj = obj.nextObject()
		if prev != nil {
			prev.setNextObject(obj)
		} else {
			h.objects = obj
		}
		if str, ok := unreached.(*String); ok {
			h.strings.Delete(str.s)
		}
	}
}
