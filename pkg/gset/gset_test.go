package gset

import (
	"slices"
	"testing"
)

func TestSet(t *testing.T) {
	s := Set[int]{}
	s.Add(5, 3, 9, 3, 1)
	if got := slices.Collect(s.All()); !slices.Equal(got, []int{1, 3, 5, 9}) {
		t.Fatalf("Unexpected set %v", got)
	}
	if i, ok := s.Index(5); !ok || i != 2 {
		t.Fatalf("Expected 5 at 2, got %d %v", i, ok)
	}
	s.Del(3, 7)
	if s.Contains(3) || s.Len() != 3 {
		t.Fatalf("Unexpected set after delete %s", &s)
	}
	if s.String() != "[ 1 5 9 ]" {
		t.Fatalf("Unexpected string %q", s.String())
	}
}
