package intervals

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ERR_OUT_OF_RANGE = errors.New("Can't access entry before the first interval")
)

type Entry[T comparable] struct {
	Start int
	Data  T
}

// Run length encoded timeline: an entry's data holds from its
// start until the start of the next entry. Never literally empty,
// the logical empty state is a single entry holding the undefined value
type List[T comparable] struct {
	entries   []Entry[T]
	undefined T
}

func New[T comparable](undefined T) *List[T] {
	l := &List[T]{undefined: undefined}
	l.Clear()
	return l
}

func (l *List[T]) Undefined() T { return l.undefined }

func (l *List[T]) Clear() {
	l.entries = []Entry[T]{{Start: 0, Data: l.undefined}}
}

// Upsert followed by compaction
func (l *List[T]) Insert(pos int, value T) {
	defer l.Compact()

	if l.bare() {
		l.entries = []Entry[T]{{Start: pos, Data: value}}
		return
	}

	for i := range l.entries {
		switch {
		case l.entries[i].Start == pos:
			l.entries[i].Data = value
			return
		case pos < l.entries[i].Start:
			l.entries = slices.Insert(l.entries, i, Entry[T]{Start: pos, Data: value})
			return
		}
	}
	l.entries = append(l.entries, Entry[T]{Start: pos, Data: value})
}

// Reverts pos to the undefined value. Removing at the first
// entry's start drops that entry instead of leaving a gap
func (l *List[T]) Remove(pos int) {
	if l.bare() {
		return
	}
	index := l.IndexOf(pos)
	if index == -1 {
		return
	}
	if index == 0 && l.entries[0].Start == pos {
		l.entries = slices.Delete(l.entries, 0, 1)
		if len(l.entries) == 0 {
			l.Clear()
		}
		return
	}
	l.Insert(pos, l.undefined)
}

// Index of the last entry starting at or before pos, -1 if pos
// precedes the first entry
func (l *List[T]) IndexOf(pos int) int {
	if len(l.entries) == 0 || pos < l.entries[0].Start {
		return -1
	}
	index := 0
	for i, entry := range l.entries {
		if entry.Start > pos {
			break
		}
		index = i
	}
	return index
}

func (l *List[T]) Value(pos int) T {
	index := l.IndexOf(pos)
	if index == -1 {
		return l.undefined
	}
	return l.entries[index].Data
}

// Mutable access to the entry covering pos
func (l *List[T]) Entry(pos int) (*Entry[T], error) {
	index := l.IndexOf(pos)
	if index == -1 {
		return nil, fmt.Errorf("Position %d: %w", pos, ERR_OUT_OF_RANGE)
	}
	return &l.entries[index], nil
}

func (l *List[T]) MustEntry(pos int) *Entry[T] {
	entry, err := l.Entry(pos)
	if err != nil {
		panic(err)
	}
	return entry
}

// Merges adjacent entries holding equal data, the later one goes
func (l *List[T]) Compact() {
	for i := len(l.entries) - 1; i > 0; i-- {
		if l.entries[i-1].Data == l.entries[i].Data {
			l.entries = slices.Delete(l.entries, i, i+1)
		}
	}
}

// 0 when the first entry holds the undefined value, even if
// later entries exist
func (l *List[T]) Size() int {
	if len(l.entries) == 0 || l.entries[0].Data == l.undefined {
		return 0
	}
	return len(l.entries)
}

func (l *List[T]) Empty() bool { return l.Size() == 0 }

// Only the undefined entry is left. A list whose first entry is
// undefined but continues with defined entries is empty by Size
// and still keeps its later entries on insert and remove
func (l *List[T]) bare() bool {
	return len(l.entries) == 1 && l.entries[0].Data == l.undefined
}

func (l *List[T]) Contains(pos int) bool { return l.IndexOf(pos) != -1 }

// Start of the first entry
func (l *List[T]) Minimum() int { return l.entries[0].Start }

func (l *List[T]) Entries() []Entry[T] { return slices.Clone(l.entries) }

func (l *List[T]) String() string {
	b := new(strings.Builder)
	for i, entry := range l.entries {
		if i > 0 {
			b.WriteString(" - ")
		}
		fmt.Fprintf(b, "(%d, %v)", entry.Start, entry.Data)
	}
	return b.String()
}
