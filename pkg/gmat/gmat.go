package gmat

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"text/tabwriter"
)

type Direction bool

const (
	Vertical   Direction = true
	Horizontal Direction = false
)

// Matrix with the ability to quickly
// delete (mask) rows or columns
type Mat[T any] struct {
	s                        []T
	masked_rows, masked_cols []bool
	stride                   int
}

// Vector backed by the data of the
// underlying matrix
type Vector[T any] struct {
	m         *Mat[T]
	index     int
	direction Direction
}

// Returns a new matrix with pre-allocated
// backing slice
func NewMat[T any](r, c int) *Mat[T] {
	return &Mat[T]{
		s:           make([]T, r*c),
		masked_rows: make([]bool, r),
		masked_cols: make([]bool, c),
		stride:      c,
	}
}

// Total rows (Vertical) or columns (Horizontal), masked ones included
func (m *Mat[T]) Size(direction Direction) int {
	if direction == Vertical {
		return len(m.masked_rows)
	}
	return len(m.masked_cols)
}

func (m *Mat[T]) At(r, c int) T {
	return m.s[m.stride*r+c]
}

// Set the value of element (r, c) in matrix m
func (m *Mat[T]) Set(r, c int, v T) error {
	if r < 0 || c < 0 || r >= len(m.masked_rows) || c >= len(m.masked_cols) {
		return fmt.Errorf("Out of bounds: (%d, %d) of %dx%d", r, c, len(m.masked_rows), len(m.masked_cols))
	}
	m.s[m.stride*r+c] = v
	return nil
}

// Iterator over the unmasked rows (Horizontal) or
// columns (Vertical) of the receiver as vectors
func (m *Mat[T]) Vectors(direction Direction) iter.Seq2[int, Vector[T]] {
	return func(yield func(int, Vector[T]) bool) {
		iterate_over := m.masked_rows
		if direction == Vertical {
			iterate_over = m.masked_cols
		}
		for ind, masked := range iterate_over {
			if masked {
				continue
			}
			if !yield(ind, Vector[T]{m: m, index: ind, direction: direction}) {
				return
			}
		}
	}
}

// Returns element of the receiver
// at index
func (v Vector[T]) At(index int) T {
	if v.direction == Vertical {
		return v.m.At(index, v.index)
	}
	return v.m.At(v.index, index)
}

// Iterate over the unmasked values of vector
func (v Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		iterate_over := v.m.masked_cols
		if v.direction == Vertical {
			iterate_over = v.m.masked_rows
		}
		for ind, masked := range iterate_over {
			if masked {
				continue
			}
			if !yield(ind, v.At(ind)) {
				return
			}
		}
	}
}

// Maps an existing matrix into a new one via f, the mask is kept
func Map[T, E any](m *Mat[T], f func(e T, r, c int) E) *Mat[E] {
	new_mat := &Mat[E]{
		s:           make([]E, len(m.s)),
		masked_rows: slices.Clone(m.masked_rows),
		masked_cols: slices.Clone(m.masked_cols),
		stride:      m.stride,
	}
	for ind_r, vec := range m.Vectors(Horizontal) {
		for ind_c, value := range vec.All() {
			new_mat.Set(ind_r, ind_c, f(value, ind_r, ind_c))
		}
	}
	return new_mat
}

// Mask selected rows (Horizontal) or columns (Vertical). The returned
// matrix shares the data of the receiver
func (m *Mat[T]) Mask(direction Direction, indices ...int) *Mat[T] {
	new_mat := &Mat[T]{
		s:           m.s,
		masked_rows: slices.Clone(m.masked_rows),
		masked_cols: slices.Clone(m.masked_cols),
		stride:      m.stride,
	}
	for _, ind := range indices {
		if direction == Vertical {
			new_mat.masked_cols[ind] = true
		} else {
			new_mat.masked_rows[ind] = true
		}
	}
	return new_mat
}

// Dense copy of the unmasked part along with the original row and
// column index of every dense row and column
func (m *Mat[T]) To2d() (dense [][]T, rows, cols []int) {
	for ind_c, masked := range m.masked_cols {
		if !masked {
			cols = append(cols, ind_c)
		}
	}
	for ind_r, vec := range m.Vectors(Horizontal) {
		rows = append(rows, ind_r)
		row := make([]T, 0, len(cols))
		for _, value := range vec.All() {
			row = append(row, value)
		}
		dense = append(dense, row)
	}
	return dense, rows, cols
}

// Pretty print
func (m *Mat[T]) Sprintf(format string) string {
	b := new(strings.Builder)
	t := tabwriter.NewWriter(b, 3, 1, 1, ' ', 0)
	for _, vec := range m.Vectors(Horizontal) {
		for _, value := range vec.All() {
			fmt.Fprintf(t, format, value)
			fmt.Fprint(t, "\t")
		}
		fmt.Fprint(t, "\n")
	}
	t.Flush()
	return b.String()
}

func (m *Mat[T]) String() string {
	return m.Sprintf("%v")
}
