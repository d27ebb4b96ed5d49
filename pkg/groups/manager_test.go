package groups

import (
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/intervals"
)

func newTestManager(t *testing.T, trajectories int) (*Manager, *Trajectories) {
	t.Helper()
	store := NewTrajectories(trajectories)
	return NewManager(store, nil), store
}

func TestCreateGroup(t *testing.T) {
	m, _ := newTestManager(t, 0)

	assert.Equal(t, NoGroupID, m.CreateGroup(NewGroup("", "walker")))

	first := m.CreateGroup(NewGroup("A", "walker"))
	second := m.CreateGroup(NewGroup("B", "runner"))
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
	assert.True(t, m.IsValidGroupID(first))
	assert.False(t, m.IsValidGroupID(3))

	assert.Equal(t, "A", m.Group(first).Name)
	assert.Equal(t, NoGroup(), m.Group(42))
}

func TestCreateGroupInvalidTLG(t *testing.T) {
	m, _ := newTestManager(t, 0)

	group := NewGroup("A", "")
	group.TLG = 7
	id := m.CreateGroup(group)
	assert.Equal(t, NoTLG, m.Group(id).TLG)

	group.TLG = 2
	id = m.CreateGroup(group)
	assert.Equal(t, 2, m.Group(id).TLG)
	assert.Len(t, m.GroupsOfTLG(2), 1)
}

func TestCreateGroupAdvancesTLGColor(t *testing.T) {
	m, _ := newTestManager(t, 0)

	first, ok := m.NextTLGColor(0, color.RGBA{})
	require.True(t, ok)

	group := NewGroup("A", "")
	group.TLG = 0
	group.Color = first
	m.CreateGroup(group)

	second, _ := m.NextTLGColor(0, color.RGBA{})
	assert.NotEqual(t, first, second)

	// a color that isn't the next one leaves the cursor alone
	group.Color = color.RGBA{A: 0xff}
	m.CreateGroup(group)
	third, _ := m.NextTLGColor(0, color.RGBA{})
	assert.Equal(t, second, third)

	fallback := color.RGBA{R: 1, A: 0xff}
	col, ok := m.NextTLGColor(9, fallback)
	assert.False(t, ok)
	assert.Equal(t, fallback, col)
}

func TestCreateGroupWithIDPanicsOnDuplicate(t *testing.T) {
	m, _ := newTestManager(t, 0)
	m.createGroupWithID(5, "A", "")
	assert.Panics(t, func() { m.createGroupWithID(5, "B", "") })
}

func TestCreateGroupSkipsUsedIDs(t *testing.T) {
	m, _ := newTestManager(t, 0)
	m.createGroupWithID(1, "A", "")
	m.createGroupWithID(2, "B", "")
	assert.Equal(t, 3, m.CreateGroup(NewGroup("C", "")))
}

func TestAssignments(t *testing.T) {
	m, store := newTestManager(t, 2)
	a := m.CreateGroup(NewGroup("A", ""))
	b := m.CreateGroup(NewGroup("B", ""))

	assert.False(t, m.AddTrajectoryToGroup(0, 99, 0))
	assert.False(t, m.AddTrajectoryToGroup(5, a, 0))
	assert.False(t, m.RemoveTrajectoryAssignment(-1, 0))

	require.True(t, m.AddTrajectoryToGroup(0, a, 0))
	require.True(t, m.AddTrajectoryToGroup(0, b, 10))
	require.True(t, m.AddTrajectoryToGroup(1, a, 5))
	require.True(t, m.RemoveTrajectoryAssignment(1, 20))

	assert.Equal(t, a, store.GroupList(0).Value(9))
	assert.Equal(t, b, store.GroupList(0).Value(100))
	assert.Equal(t, NoGroupID, store.GroupList(1).Value(4))
	assert.Equal(t, NoGroupID, store.GroupList(1).Value(20))

	want := []TrajectoryGroupEntry{
		{GroupID: a, Trajectory: 0, FrameBegin: 0, FrameEnd: 9},
		{GroupID: a, Trajectory: 1, FrameBegin: 5, FrameEnd: 19},
	}
	if diff := cmp.Diff(want, m.TrajectoriesOfGroup(a)); diff != "" {
		t.Fatalf("TrajectoriesOfGroup mismatch (-want +got):\n%s", diff)
	}

	want = []TrajectoryGroupEntry{{GroupID: b, Trajectory: 0, FrameBegin: 10, FrameEnd: -1}}
	if diff := cmp.Diff(want, m.TrajectoriesOfGroup(b)); diff != "" {
		t.Fatalf("TrajectoriesOfGroup mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteGroup(t *testing.T) {
	m, store := newTestManager(t, 3)
	a := m.CreateGroup(NewGroup("A", ""))
	b := m.CreateGroup(NewGroup("B", ""))

	m.AddTrajectoryToGroup(0, a, 0)
	m.AddTrajectoryToGroup(0, b, 10)
	m.AddTrajectoryToGroup(0, a, 20)
	m.AddTrajectoryToGroup(1, a, 3)
	m.AddTrajectoryToGroup(2, b, 0)

	m.DeleteGroup(a)

	assert.False(t, m.IsValidGroupID(a))
	assert.Empty(t, m.TrajectoriesOfGroup(a))
	for trajectory := range store.Len() {
		for _, entry := range store.GroupList(trajectory).Entries() {
			assert.NotEqual(t, a, entry.Data, "trajectory %d still references deleted group", trajectory)
		}
	}

	assert.Equal(t, NoGroupID, store.GroupList(0).Value(5))
	assert.Equal(t, b, store.GroupList(0).Value(15))
	assert.Equal(t, NoGroupID, store.GroupList(0).Value(25))
	assert.Equal(t, NoGroupID, store.GroupList(1).Value(3))
	assert.Equal(t, b, store.GroupList(2).Value(3))

	// compacted, no adjacent duplicates left behind
	for trajectory := range store.Len() {
		entries := store.GroupList(trajectory).Entries()
		for i := 1; i < len(entries); i++ {
			assert.NotEqual(t, entries[i-1].Data, entries[i].Data)
		}
	}

	// no-op on unknown ids
	m.DeleteGroup(a)
	m.DeleteGroup(NoGroupID)
	assert.True(t, m.IsValidGroupID(b))
}

func TestUpdateAndMoveGroup(t *testing.T) {
	m, _ := newTestManager(t, 0)
	id := m.CreateGroup(NewGroup("A", ""))

	group := m.Group(id)
	group.Name = "renamed"
	assert.True(t, m.UpdateGroup(group))
	assert.Equal(t, "renamed", m.Group(id).Name)
	assert.False(t, m.UpdateGroup(Group{ID: 77, Name: "x"}))

	m.AddGroupToTopLevelGroup(id, 1)
	assert.Equal(t, 1, m.Group(id).TLG)
	m.AddGroupToTopLevelGroup(id, 12)
	assert.Equal(t, 1, m.Group(id).TLG)
}

func TestTopLevelGroups(t *testing.T) {
	m, _ := newTestManager(t, 0)

	tlgs := m.TopLevelGroups()
	require.Len(t, tlgs, 3)
	assert.Equal(t, "Large Action Groups", tlgs[0].Name)
	assert.Equal(t, "Individuals", tlgs[2].Name)

	_, err := m.TopLevelGroup(3)
	assert.ErrorIs(t, err, ERR_NO_SUCH_TLG)
	tlg, err := m.TopLevelGroup(1)
	require.NoError(t, err)
	assert.Equal(t, "Small Action Groups", tlg.Name)
}

func TestKnownTypes(t *testing.T) {
	m, _ := newTestManager(t, 0)
	assert.Equal(t, []string{NoType}, m.KnownTypes())

	m.CreateGroup(NewGroup("A", "walker"))
	m.CreateGroup(NewGroup("B", "runner"))
	m.CreateGroup(NewGroup("C", "walker"))
	assert.Equal(t, []string{NoType, "runner", "walker"}, m.KnownTypes())
}

func TestEvents(t *testing.T) {
	m, _ := newTestManager(t, 1)

	seen := make([]Event, 0)
	m.Subscribe(func(e Event) { seen = append(seen, e) })

	id := m.CreateGroup(NewGroup("A", ""))
	m.AddTrajectoryToGroup(0, id, 0)
	m.SetVisualization(true)
	m.SetVisualization(true)
	m.SetVisualizationRadius(50)
	m.SetVisualizationRadius(20)

	want := []Event{GroupsChanged, TrajectoryAssignmentChanged, VisualizationChanged, VisualizationChanged}
	assert.Equal(t, want, m.Events())
	assert.Equal(t, want, seen)
	assert.Empty(t, m.Events())

	m.BeginBatch()
	m.CreateGroup(NewGroup("B", ""))
	m.CreateGroup(NewGroup("C", ""))
	assert.Empty(t, m.Events())
	m.EndBatch()
	assert.Equal(t, []Event{GroupsChanged}, m.Events())
}

func TestLoadConfigSkipsUnknownTrajectories(t *testing.T) {
	m, store := newTestManager(t, 2)

	cfg := Configuration{
		Version:        ConfigurationVersion,
		Groups:         []Group{{ID: 4, Name: "A", TLG: 0, Color: color.RGBA{R: 10, A: 0xff}}},
		TopLevelGroups: defaultTopLevelGroups,
		Assignments: map[int][]Assignment{
			0: {{Start: 30, GroupID: NoGroupID}, {Start: 10, GroupID: 4}},
			1: {{Start: 0, GroupID: 99}},
			7: {{Start: 0, GroupID: 4}},
		},
	}

	skipped := m.LoadConfig(cfg)
	assert.Equal(t, []int{7}, skipped)
	assert.Equal(t, []Event{GroupsChanged, TrajectoryAssignmentChanged}, m.Events())

	assert.Equal(t, NoGroupID, store.GroupList(0).Value(5))
	assert.Equal(t, 4, store.GroupList(0).Value(20))
	assert.Equal(t, NoGroupID, store.GroupList(0).Value(30))
	assert.Equal(t, NoGroupID, store.GroupList(1).Value(0))

	// ids continue after the loaded ones
	assert.Equal(t, 5, m.CreateGroup(NewGroup("B", "")))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, _ := newTestManager(t, 3)
	a := NewGroup("A", "walker")
	a.TLG = 0
	a.Color, _ = m.NextTLGColor(0, color.RGBA{})
	ia := m.CreateGroup(a)
	ib := m.CreateGroup(NewGroup("B", "runner"))

	m.AddTrajectoryToGroup(0, ia, 0)
	m.AddTrajectoryToGroup(0, ib, 40)
	m.AddTrajectoryToGroup(2, ib, 12)
	m.RemoveTrajectoryAssignment(2, 50)

	saved := m.SaveConfig()

	data, err := Marshal(saved)
	require.NoError(t, err)
	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	if diff := cmp.Diff(saved, decoded); diff != "" {
		t.Fatalf("json round trip mismatch (-want +got):\n%s", diff)
	}

	other, _ := newTestManager(t, 3)
	assert.Empty(t, other.LoadConfig(decoded))
	if diff := cmp.Diff(saved, other.SaveConfig()); diff != "" {
		t.Fatalf("load/save mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, m.Groups(), other.Groups())
}

func TestRoundTripWithEmptyStore(t *testing.T) {
	m, _ := newTestManager(t, 0)
	m.CreateGroup(NewGroup("A", ""))

	other, _ := newTestManager(t, 0)
	other.LoadConfig(m.SaveConfig())
	assert.Equal(t, m.Groups(), other.Groups())
	assert.Equal(t, m.TopLevelGroups(), other.TopLevelGroups())
}

func TestTrajectoriesStore(t *testing.T) {
	store := NewTrajectories(2)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 2, store.Add())
	store.GroupList(2).Insert(0, 3)
	store.Delete(0)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 3, store.GroupList(1).Value(0))
	assert.Equal(t, NoGroupID, store.GroupList(0).Undefined())
	var _ TrajectoryStore = store
	var _ *intervals.List[int] = store.GroupList(0)
}
