package gsma

import (
	"errors"
	"fmt"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/seq"
)

var (
	ERR_VALUE = errors.New("Bad value")
)

// Simple moving average over the last capacity values
type SMA[T seq.Number] struct {
	data         []T
	buffer_index int
	average      float64
}

func NewSMA[T seq.Number](capacity uint) (*SMA[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("Invalid capacity: %d. Error: %w", capacity, ERR_VALUE)
	}
	return &SMA[T]{data: make([]T, 0, capacity)}, nil
}

// Adds new_value, dropping the oldest one once full, and returns the average
func (s *SMA[T]) Recalc(new_value T) float64 {
	l, c := len(s.data), cap(s.data)
	if l < c {
		s.average += (float64(new_value) - s.average) / float64(l+1)
		s.data = append(s.data, new_value)
		return s.average
	}
	oldest_value := s.data[s.buffer_index]
	s.average += (float64(new_value) - float64(oldest_value)) / float64(c)
	s.data[s.buffer_index] = new_value
	s.buffer_index = (s.buffer_index + 1) % c
	return s.average
}

func (s *SMA[T]) Show() float64 {
	return s.average
}

func (s *SMA[T]) Len() int {
	return len(s.data)
}
