package groups

import (
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/intervals"
)

// Per trajectory group timelines owned by the trajectory store.
// Mutations must come from a single writer
type TrajectoryStore interface {
	Len() int
	GroupList(trajectory int) *intervals.List[int]
}

type Trajectories struct {
	lists []*intervals.List[int]
}

func NewTrajectories(n int) *Trajectories {
	t := &Trajectories{lists: make([]*intervals.List[int], 0, n)}
	for range n {
		t.Add()
	}
	return t
}

func (t *Trajectories) Len() int { return len(t.lists) }

func (t *Trajectories) GroupList(trajectory int) *intervals.List[int] {
	return t.lists[trajectory]
}

// Returns the index of the new trajectory
func (t *Trajectories) Add() int {
	t.lists = append(t.lists, intervals.New(NoGroupID))
	return len(t.lists) - 1
}

func (t *Trajectories) Delete(trajectory int) {
	t.lists = append(t.lists[:trajectory], t.lists[trajectory+1:]...)
}
