package gsma

import (
	"errors"
	"math"
	"testing"
)

func TestCapacity(t *testing.T) {
	if _, err := NewSMA[int](0); !errors.Is(err, ERR_VALUE) {
		t.Fatalf("Expected ERR_VALUE, got %v", err)
	}
}

func TestWindow(t *testing.T) {
	sma, err := NewSMA[int](3)
	if err != nil {
		t.Fatal(err)
	}
	expected := []float64{3, 4.5, 5, 7, 9}
	for i, v := range []int{3, 6, 6, 9, 12} {
		got := sma.Recalc(v)
		if math.Abs(got-expected[i]) > 1e-9 {
			t.Fatalf("Step %d: expected %v, got %v", i, expected[i], got)
		}
		t.Logf("SMA: %v, Len: %d", got, sma.Len())
	}
	if sma.Len() != 3 || sma.Show() != 9 {
		t.Fatalf("Expected a full window averaging 9, got %d values at %v", sma.Len(), sma.Show())
	}
}
