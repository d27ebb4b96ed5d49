package intervals

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const undef = 0

func threeSegments() *List[int] {
	l := New(undef)
	l.Insert(0, 10)
	l.Insert(5, 20)
	l.Insert(10, 30)
	return l
}

func TestSimpleInsert(t *testing.T) {
	l := New(undef)
	require.Equal(t, 0, l.Size())
	require.True(t, l.Empty())

	l.Insert(0, 10)
	assert.Equal(t, 10, l.Value(0))
	assert.Equal(t, 10, l.Value(5))
	assert.Equal(t, 10, l.Value(9))
	assert.Equal(t, 0, l.Minimum())
	assert.Equal(t, undef, l.Value(-1))
	assert.Equal(t, 1, l.Size())
	assert.False(t, l.Empty())
}

func TestReplacing(t *testing.T) {
	l := New(undef)
	l.Insert(1, 10)
	l.Insert(10, 20)
	t.Logf("List: %s", l)

	assert.Equal(t, undef, l.Value(0))
	assert.Equal(t, 10, l.Value(1))
	assert.Equal(t, 10, l.Value(9))
	assert.Equal(t, 20, l.Value(10))
	assert.Equal(t, 20, l.Value(50))
	assert.Equal(t, 1, l.Minimum())

	l.Insert(10, 30)
	require.Equal(t, 30, l.Value(10))
	require.Equal(t, 30, l.Value(50))
	require.Equal(t, 10, l.Value(9))
}

func TestCompact(t *testing.T) {
	l := New(undef)
	l.Insert(0, 10)
	l.Insert(5, 10)
	require.Equal(t, 1, l.Size(), l.String())

	l.Insert(10, 20)
	l.Insert(5, 10)
	require.Equal(t, 2, l.Size(), l.String())

	l.Insert(0, 30)
	require.Equal(t, 2, l.Size(), l.String())
	l.Insert(5, 10)
	require.Equal(t, 3, l.Size(), l.String())
}

func TestCenterRemove(t *testing.T) {
	l := threeSegments()
	require.Equal(t, 3, l.Size())
	assert.Equal(t, 20, l.Value(7))
	assert.Equal(t, 30, l.Value(10))

	l.Remove(6)
	assert.Equal(t, 10, l.Value(4))
	assert.Equal(t, 20, l.Value(5))
	for pos := 6; pos < 10; pos++ {
		assert.Equal(t, undef, l.Value(pos))
	}
	assert.Equal(t, 30, l.Value(10))
	require.Equal(t, 4, l.Size())

	// both gaps merge into one
	l.Remove(5)
	assert.Equal(t, undef, l.Value(5))
	require.Equal(t, 3, l.Size())
}

func TestRemoveInFirstEntry(t *testing.T) {
	l := threeSegments()
	l.Remove(2)
	require.Equal(t, 4, l.Size())
	assert.Equal(t, 10, l.Value(1))
	assert.Equal(t, undef, l.Value(2))
}

func TestRightRemove(t *testing.T) {
	l := threeSegments()

	l.Remove(15)
	assert.Equal(t, undef, l.Value(15))
	assert.Equal(t, undef, l.Value(16))
	assert.Equal(t, 30, l.Value(14))
	require.Equal(t, 4, l.Size())

	l.Remove(20)
	require.Equal(t, 4, l.Size())

	l.Remove(10)
	require.Equal(t, 3, l.Size())

	l.Remove(5)
	require.Equal(t, 2, l.Size())

	l.Remove(0)
	require.Equal(t, 0, l.Size())
}

func TestLeftRemove(t *testing.T) {
	l := threeSegments()

	l.Remove(0)
	assert.Equal(t, undef, l.Value(3))
	assert.Equal(t, undef, l.Value(4))
	assert.Equal(t, 20, l.Value(5))
	require.Equal(t, 2, l.Size())

	l.Remove(5)
	require.Equal(t, 1, l.Size())

	l.Remove(10)
	require.Equal(t, 0, l.Size())
	require.Equal(t, []Entry[int]{{0, undef}}, l.Entries())
}

func TestIndexOf(t *testing.T) {
	l := New(undef)
	l.Insert(5, 10)
	l.Insert(15, 20)
	l.Insert(100, 30)
	l.Insert(70, 40)
	require.Equal(t, 4, l.Size())

	cases := map[int]int{
		0: -1, 1: -1, 4: -1, -10: -1,
		5: 0, 10: 0, 14: 0,
		15: 1, 30: 1, 69: 1,
		70: 2, 80: 2, 99: 2,
		100: 3, 101: 3, 1000: 3,
	}
	for pos, expected := range cases {
		assert.Equal(t, expected, l.IndexOf(pos), "position %d", pos)
	}
	assert.False(t, l.Contains(4))
	assert.True(t, l.Contains(5))
}

func TestRetrieveValue(t *testing.T) {
	l := New(undef)
	l.Insert(0, 10)
	l.Insert(5, 20)
	l.Insert(15, 30)
	l.Remove(10)
	l.Remove(40)
	l.Remove(0)
	require.Equal(t, 4, l.Size(), l.String())

	expected := map[int]int{
		-1: undef, 0: undef, 4: undef,
		5: 20, 9: 20,
		10: undef, 14: undef,
		15: 30, 30: 30, 39: 30,
		40: undef,
	}
	for pos, value := range expected {
		assert.Equal(t, value, l.Value(pos), "position %d", pos)
	}
}

func TestRetrieveEntry(t *testing.T) {
	l := New(undef)
	l.Insert(0, 10)
	l.Insert(5, 20)
	l.Insert(15, 30)
	l.Remove(20)
	l.Remove(40)
	l.Remove(0)

	entry, err := l.Entry(5)
	require.NoError(t, err)
	assert.Equal(t, 20, entry.Data)
	assert.Equal(t, 5, entry.Start)

	entry.Data = 100
	assert.Equal(t, 100, l.Value(6))

	_, err = l.Entry(0)
	require.True(t, errors.Is(err, ERR_OUT_OF_RANGE))
	// Value does not fail for the same position
	assert.Equal(t, undef, l.Value(0))
	assert.Panics(t, func() { l.MustEntry(0) })
}

func TestString(t *testing.T) {
	l := threeSegments()
	assert.Equal(t, "(0, 10) - (5, 20) - (10, 30)", l.String())
}

func TestInsertIdempotent(t *testing.T) {
	l := threeSegments()
	l.Insert(7, 40)
	size, entries := l.Size(), l.Entries()
	l.Insert(7, 40)
	assert.Equal(t, size, l.Size())
	assert.Equal(t, entries, l.Entries())
}

func TestLeadingGapKeepsLaterEntries(t *testing.T) {
	l := New(-1)
	l.Insert(0, 1)
	l.Insert(5, 2)
	// clearing the first segment leaves a leading undefined entry
	l.Insert(0, -1)
	require.Equal(t, 0, l.Size())
	l.Insert(10, 3)
	assert.Equal(t, 2, l.Value(7))
	assert.Equal(t, 3, l.Value(12))
	l.Remove(7)
	assert.Equal(t, -1, l.Value(7))
}

// Reference model: explicit per frame values
func TestRandomAgainstModel(t *testing.T) {
	const frames = 60
	for round := range 200 {
		l := New(undef)
		model := make([]int, frames)
		for range 30 {
			pos := rand.IntN(frames)
			entries := l.Entries()
			bare := len(entries) == 1 && entries[0].Data == undef
			if rand.IntN(3) == 0 {
				if !bare && pos >= entries[0].Start {
					fill(model, pos, nextStart(entries, pos, frames), undef)
				}
				l.Remove(pos)
			} else {
				value := 1 + rand.IntN(3)
				if bare {
					fill(model, pos, frames, value)
				} else {
					fill(model, pos, nextStart(entries, pos, frames), value)
				}
				l.Insert(pos, value)
			}
			for pos := range frames {
				if got := l.Value(pos); got != model[pos] {
					t.Fatalf("Round %d: value at %d is %d, expected %d. List: %s, model: %v", round, pos, got, model[pos], l, model)
				}
			}
			entries = l.Entries()
			for i := 1; i < len(entries); i++ {
				if entries[i-1].Data == entries[i].Data {
					t.Fatalf("Round %d: adjacent equal entries in %s", round, l)
				}
				if entries[i-1].Start >= entries[i].Start {
					t.Fatalf("Round %d: starts not increasing in %s", round, l)
				}
			}
		}
	}
}

func nextStart(entries []Entry[int], pos, frames int) int {
	for _, entry := range entries {
		if entry.Start > pos {
			return min(entry.Start, frames)
		}
	}
	return frames
}

func fill(model []int, from, to, value int) {
	for i := from; i < to; i++ {
		model[i] = value
	}
}
