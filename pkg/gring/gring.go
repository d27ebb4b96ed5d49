package gring

import (
	"iter"
)

// Fixed size ring, pushing into a full ring overwrites the oldest element
type Ring[T any] struct {
	l   int
	s   []T
	pos int
}

func NewRing[T any](l int) *Ring[T] {
	return &Ring[T]{s: make([]T, max(1, l))}
}

func (r *Ring[T]) Size() int {
	return r.l
}

func (r *Ring[T]) Push(e T) {
	r.s[r.pos] = e
	r.pos = (r.pos + 1) % len(r.s)
	if r.l < len(r.s) {
		r.l++
	}
}

// Newest first
func (r *Ring[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range r.l {
			real_pos := (r.pos - 1 - i + len(r.s)) % len(r.s)
			if !yield(r.s[real_pos]) {
				return
			}
		}
	}
}

func (r *Ring[T]) Newest() (T, bool) {
	for e := range r.All() {
		return e, true
	}
	var zero T
	return zero, false
}
