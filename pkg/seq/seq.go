package seq

import (
	"cmp"
	"iter"

	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// floor, floor+delta, ... below ceiling. A non-positive delta yields floor only
func Seq[T Number](floor, ceiling, delta T) []T {
	if floor >= ceiling {
		return nil
	}
	if delta <= 0 {
		return []T{floor}
	}
	seq := make([]T, 0, int((ceiling-floor)/delta)+1)
	for value := floor; value < ceiling; value += delta {
		seq = append(seq, value)
	}
	return seq
}

// 0 .. n-1
func SeqN[T constraints.Integer](n T) []T {
	seq := make([]T, 0, int(n))
	for index := T(0); index < n; index++ {
		seq = append(seq, index)
	}
	return seq
}

// Index and value of the largest element, false for an empty sequence.
// The first of equal values wins
func MaxInd[I any, T cmp.Ordered](it iter.Seq2[I, T]) (I, T, bool) {
	var set bool
	var current_max T
	var current_max_ind I
	for i, v := range it {
		if !set || v > current_max {
			current_max_ind, current_max, set = i, v, true
		}
	}
	return current_max_ind, current_max, set
}

// Index and value of the smallest element, false for an empty sequence.
// The first of equal values wins
func MinInd[I any, T cmp.Ordered](it iter.Seq2[I, T]) (I, T, bool) {
	var set bool
	var current_min T
	var current_min_ind I
	for i, v := range it {
		if !set || v < current_min {
			current_min_ind, current_min, set = i, v, true
		}
	}
	return current_min_ind, current_min, set
}
