package groups

import (
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/gset"
)

type Event uint8

const (
	GroupsChanged Event = iota + 1
	TrajectoryAssignmentChanged
	VisualizationChanged
)

func (e Event) String() string {
	switch e {
	case GroupsChanged:
		return "groups changed"
	case TrajectoryAssignmentChanged:
		return "trajectory assignment changed"
	case VisualizationChanged:
		return "visualization changed"
	default:
		return "unknown"
	}
}

// Notify after mutate. While a batch is open events are
// collected and delivered once per kind when it closes
type notifier struct {
	subscribers []func(Event)
	pending     []Event
	depth       int
	batched     gset.Set[Event]
}

func (n *notifier) emit(e Event) {
	if n.depth > 0 {
		n.batched.Add(e)
		return
	}
	n.deliver(e)
}

func (n *notifier) deliver(e Event) {
	n.pending = append(n.pending, e)
	for _, subscriber := range n.subscribers {
		subscriber(e)
	}
}

// Registers f for every delivered event
func (m *Manager) Subscribe(f func(Event)) {
	m.notifier.subscribers = append(m.notifier.subscribers, f)
}

// Drains the queue of delivered events
func (m *Manager) Events() []Event {
	events := m.notifier.pending
	m.notifier.pending = nil
	return events
}

func (m *Manager) BeginBatch() {
	m.notifier.depth++
}

func (m *Manager) EndBatch() {
	if m.notifier.depth == 0 {
		return
	}
	m.notifier.depth--
	if m.notifier.depth > 0 {
		return
	}
	batched := m.notifier.batched
	m.notifier.batched = gset.Set[Event]{}
	for e := range batched.All() {
		m.notifier.deliver(e)
	}
}
