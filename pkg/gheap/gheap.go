package gheap

// generic binary min heap
type Ordered[T any] interface {
	Less(T) bool
}

type Heap[T Ordered[T]] struct {
	s []T
}

func (h *Heap[T]) less(i, j int) bool { return h.s[i].Less(h.s[j]) }
func (h *Heap[T]) swap(i, j int)      { h.s[i], h.s[j] = h.s[j], h.s[i] }

func (h *Heap[T]) down(u int) {
	for {
		v := u
		if l := 2*u + 1; l < len(h.s) && h.less(l, v) {
			v = l
		}
		if r := 2*u + 2; r < len(h.s) && h.less(r, v) {
			v = r
		}
		if v == u {
			return
		}
		h.swap(u, v)
		u = v
	}
}

func (h *Heap[T]) up(u int) {
	for u > 0 && h.less(u, (u-1)/2) {
		h.swap(u, (u-1)/2)
		u = (u - 1) / 2
	}
}

func (h *Heap[T]) Len() int      { return len(h.s) }
func (h *Heap[T]) IsEmpty() bool { return len(h.s) == 0 }

func (h *Heap[T]) Push(e T) {
	h.s = append(h.s, e)
	h.up(len(h.s) - 1)
}

// Panics on an empty heap
func (h *Heap[T]) Pop() T {
	x := h.s[0]
	n := len(h.s) - 1
	h.swap(0, n)
	var zero T
	h.s[n] = zero
	h.s = h.s[:n]
	h.down(0)
	return x
}

// Panics on an empty heap
func (h *Heap[T]) Peek() T {
	return h.s[0]
}

// Pops the smallest elements as long as ok accepts them
func (h *Heap[T]) PopWhile(ok func(T) bool) []T {
	var popped []T
	for !h.IsEmpty() && ok(h.Peek()) {
		popped = append(popped, h.Pop())
	}
	return popped
}
