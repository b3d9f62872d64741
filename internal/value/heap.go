package value

// Kind distinguishes the (currently singular) variants of heap-allocated
// objects. The type is designed to grow further Kind values without
// touching Handle or Heap.
type Kind int

const (
	KindString Kind = iota
)

// Handle is an opaque, stable reference to a heap-resident Obj: an index
// into the Heap's backing slice. Unlike a raw pointer, a Handle survives
// the backing slice growing and being reallocated underneath it, at the
// cost of needing the owning Heap to dereference it. Modeled on the
// index-handle heap from the language's original implementation
// (an `OffsetHeap` that returns a `usize` "address").
type Handle int

// obj is the heap-resident payload. Only String exists in the core; Heap
// is built so a second Kind slots in without changing Handle's shape.
type obj struct {
	kind Kind
	str  string
}

// Heap owns every Obj allocated during a run. Allocation returns a stable
// Handle; Reset releases everything in one bulk free — there is no
// incremental collection.
type Heap struct {
	objects []obj
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// AllocString copies s onto the heap and returns a handle to it.
func (h *Heap) AllocString(s string) Handle {
	h.objects = append(h.objects, obj{kind: KindString, str: s})
	return Handle(len(h.objects) - 1)
}

// Kind reports the Kind of the object at handle.
func (h *Heap) Kind(handle Handle) Kind {
	return h.objects[handle].kind
}

// String returns the string contents of handle's object. In the core every
// object is a String, so this is also how Print renders an Object Value.
func (h *Heap) String(handle Handle) string {
	return h.objects[handle].str
}

// Equal compares the referenced objects' contents, not handle identity:
// two different allocations of the same string are equal.
func (h *Heap) Equal(a, b Handle) bool {
	oa, ob := h.objects[a], h.objects[b]
	if oa.kind != ob.kind {
		return false
	}
	switch oa.kind {
	case KindString:
		return oa.str == ob.str
	default:
		return false
	}
}

// Concat allocates a new string object holding the concatenation of the
// strings referenced by a and b, and returns its handle.
func (h *Heap) Concat(a, b Handle) Handle {
	return h.AllocString(h.objects[a].str + h.objects[b].str)
}

// Len reports how many objects are currently resident, for diagnostics
// (e.g. the CLI's --stats heap footprint line).
func (h *Heap) Len() int {
	return len(h.objects)
}

// Reset bulk-frees every object on the heap. The VM does not call it
// itself: a VM's objects stay resident for as long as that VM is in use.
func (h *Heap) Reset() {
	h.objects = h.objects[:0]
}
