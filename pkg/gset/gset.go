package gset

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Ordered set kept as a sorted slice
type Set[T cmp.Ordered] struct {
	values []T
}

func (s *Set[T]) Add(values ...T) {
	for _, value := range values {
		if i, found := slices.BinarySearch(s.values, value); !found {
			s.values = slices.Insert(s.values, i, value)
		}
	}
}

func (s *Set[T]) Del(values ...T) {
	for _, value := range values {
		if i, found := slices.BinarySearch(s.values, value); found {
			s.values = slices.Delete(s.values, i, i+1)
		}
	}
}

func (s *Set[T]) Contains(value T) bool {
	_, exists := s.Index(value)
	return exists
}

// Rank of value in the set
func (s *Set[T]) Index(value T) (int, bool) {
	i, found := slices.BinarySearch(s.values, value)
	if !found {
		return 0, false
	}
	return i, true
}

func (s *Set[T]) Len() int { return len(s.values) }

func (s *Set[T]) All() iter.Seq[T] {
	return slices.Values(s.values)
}

func (s *Set[T]) Sprintf(format string) string {
	b := new(strings.Builder)
	b.WriteString("[ ")
	for _, e := range s.values {
		b.WriteString(fmt.Sprintf(format, e))
	}
	b.WriteString("]")
	return b.String()
}

func (s *Set[T]) String() string {
	return s.Sprintf("%v ")
}
