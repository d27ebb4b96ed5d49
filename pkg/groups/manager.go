package groups

import (
	"fmt"
	"image/color"
	"log/slog"
	"maps"
	"slices"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/gset"
)

// Owns the group catalogs and edits the group timelines of the
// trajectories in store. Not safe for concurrent use
type Manager struct {
	logger *slog.Logger
	store  TrajectoryStore

	next_group_id    int
	groups           map[int]Group
	top_level_groups map[int]TopLevelGroup
	default_colors   map[int]*ColorList

	visualization        bool
	visualization_radius uint

	notifier notifier
}

func NewManager(store TrajectoryStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		logger:               logger,
		store:                store,
		next_group_id:        1,
		groups:               make(map[int]Group),
		top_level_groups:     make(map[int]TopLevelGroup),
		visualization_radius: 50,
	}
	for _, tlg := range defaultTopLevelGroups {
		m.top_level_groups[tlg.ID] = tlg
	}
	m.default_colors = map[int]*ColorList{
		0: RedColorList(),
		1: YellowColorList(),
		2: GreenColorList(),
	}
	return m
}

func (m *Manager) IsValidGroupID(id int) bool {
	_, ok := m.groups[id]
	return ok
}

func (m *Manager) IsValidTopLevelGroupID(id int) bool {
	_, ok := m.top_level_groups[id]
	return ok
}

// NoGroup for unknown ids
func (m *Manager) Group(id int) Group {
	if group, ok := m.groups[id]; ok {
		return group
	}
	return NoGroup()
}

func (m *Manager) TopLevelGroup(id int) (TopLevelGroup, error) {
	tlg, ok := m.top_level_groups[id]
	if !ok {
		return TopLevelGroup{}, fmt.Errorf("Id %d: %w", id, ERR_NO_SUCH_TLG)
	}
	return tlg, nil
}

// Ordered by id
func (m *Manager) Groups() []Group {
	groups := make([]Group, 0, len(m.groups))
	for _, id := range slices.Sorted(maps.Keys(m.groups)) {
		groups = append(groups, m.groups[id])
	}
	return groups
}

func (m *Manager) GroupsOfTLG(tlg int) []Group {
	groups := make([]Group, 0)
	for _, group := range m.Groups() {
		if group.TLG == tlg {
			groups = append(groups, group)
		}
	}
	return groups
}

func (m *Manager) TopLevelGroups() []TopLevelGroup {
	tlgs := make([]TopLevelGroup, 0, len(m.top_level_groups))
	for _, id := range slices.Sorted(maps.Keys(m.top_level_groups)) {
		tlgs = append(tlgs, m.top_level_groups[id])
	}
	return tlgs
}

// Creates a group from a copy of group, its id is ignored.
// Returns the new id or -1 if group has no name
func (m *Manager) CreateGroup(group Group) int {
	if group.Name == "" {
		return NoGroupID
	}

	for m.IsValidGroupID(m.next_group_id) {
		m.next_group_id++
	}

	if group.TLG >= 0 {
		if m.IsValidTopLevelGroupID(group.TLG) {
			if next, ok := m.NextTLGColor(group.TLG, color.RGBA{}); ok && next == group.Color {
				m.default_colors[group.TLG].Next()
			}
		} else {
			group.TLG = NoTLG
		}
	}

	group.ID = m.next_group_id
	m.groups[group.ID] = group
	m.next_group_id++

	m.notifier.emit(GroupsChanged)
	return group.ID
}

// Panics on a duplicate id, callers own the id space
func (m *Manager) createGroupWithID(id int, name, group_type string) *Group {
	if m.IsValidGroupID(id) {
		panic(fmt.Errorf("Id %d: %w", id, ERR_DUPLICATE_GROUP))
	}
	m.groups[id] = Group{ID: id, Name: name, Type: group_type, TLG: NoTLG}
	m.notifier.emit(GroupsChanged)
	group := m.groups[id]
	return &group
}

// Overwrites all fields but the id
func (m *Manager) UpdateGroup(group Group) bool {
	if !m.IsValidGroupID(group.ID) {
		return false
	}
	m.groups[group.ID] = group
	m.notifier.emit(GroupsChanged)
	return true
}

// Every interval assigned to the group reverts to NoGroupID
// before the group is erased
func (m *Manager) DeleteGroup(id int) {
	if id < 0 || !m.IsValidGroupID(id) {
		return
	}

	touched := gset.Set[int]{}
	for _, entry := range m.TrajectoriesOfGroup(id) {
		m.store.GroupList(entry.Trajectory).Remove(entry.FrameBegin)
		touched.Add(entry.Trajectory)
	}

	delete(m.groups, id)

	for trajectory := range touched.All() {
		m.store.GroupList(trajectory).Compact()
	}
	m.notifier.emit(GroupsChanged)
}

func (m *Manager) AddGroupToTopLevelGroup(group_id, tlg_id int) {
	if !m.IsValidGroupID(group_id) || !m.IsValidTopLevelGroupID(tlg_id) {
		return
	}
	group := m.groups[group_id]
	if group.TLG != tlg_id {
		group.TLG = tlg_id
		m.groups[group_id] = group
		m.notifier.emit(GroupsChanged)
	}
}

// Keeps the assignment from frame on until a different one is set
func (m *Manager) AddTrajectoryToGroup(trajectory, group_id, frame int) bool {
	if !m.IsValidGroupID(group_id) {
		return false
	}
	if trajectory < 0 || trajectory >= m.store.Len() {
		return false
	}
	m.store.GroupList(trajectory).Insert(frame, group_id)
	m.notifier.emit(TrajectoryAssignmentChanged)
	return true
}

func (m *Manager) RemoveTrajectoryAssignment(trajectory, frame int) bool {
	if trajectory < 0 || trajectory >= m.store.Len() {
		return false
	}
	m.store.GroupList(trajectory).Insert(frame, NoGroupID)
	m.notifier.emit(TrajectoryAssignmentChanged)
	return true
}

func (m *Manager) TrajectoriesOfGroup(group_id int) []TrajectoryGroupEntry {
	trajectories := make([]TrajectoryGroupEntry, 0)
	for trajectory := range m.store.Len() {
		entries := m.store.GroupList(trajectory).Entries()
		for k, entry := range entries {
			if entry.Data != group_id {
				continue
			}
			frame_end := -1
			if k+1 < len(entries) {
				frame_end = entries[k+1].Start - 1
			}
			trajectories = append(trajectories, TrajectoryGroupEntry{
				GroupID:    group_id,
				Trajectory: trajectory,
				FrameBegin: entry.Start,
				FrameEnd:   frame_end,
			})
		}
	}
	return trajectories
}

// Sorted distinct group types, always including NoType
func (m *Manager) KnownTypes() []string {
	types := gset.Set[string]{}
	types.Add(NoType)
	for _, group := range m.groups {
		types.Add(group.Type)
	}
	return slices.Collect(types.All())
}

// Next color of the top level group's color list without advancing it
func (m *Manager) NextTLGColor(tlg int, fallback color.RGBA) (color.RGBA, bool) {
	colors, ok := m.default_colors[tlg]
	if !ok {
		return fallback, false
	}
	return colors.PeekNext(), true
}

func (m *Manager) SetVisualization(value bool) {
	if m.visualization != value {
		m.visualization = value
		m.notifier.emit(VisualizationChanged)
	}
}

func (m *Manager) SetVisualizationRadius(radius uint) {
	if m.visualization_radius != radius {
		m.visualization_radius = radius
		m.notifier.emit(VisualizationChanged)
	}
}

func (m *Manager) IsVisualizationEnabled() bool { return m.visualization }
func (m *Manager) VisualizationRadius() uint    { return m.visualization_radius }

func (m *Manager) SaveConfig() Configuration {
	lists := make(map[int][]Assignment, m.store.Len())
	for trajectory := range m.store.Len() {
		entries := m.store.GroupList(trajectory).Entries()
		assignments := make([]Assignment, 0, len(entries))
		for _, entry := range entries {
			assignments = append(assignments, Assignment{Start: entry.Start, GroupID: entry.Data})
		}
		lists[trajectory] = assignments
	}
	return Configuration{
		Version:        ConfigurationVersion,
		Groups:         m.Groups(),
		TopLevelGroups: m.TopLevelGroups(),
		Assignments:    lists,
	}
}

// Replaces all groups and assignments. Assignments of trajectories
// missing from the store are skipped; their ids are returned
func (m *Manager) LoadConfig(cfg Configuration) []int {
	m.BeginBatch()
	defer m.EndBatch()

	m.groups = make(map[int]Group)
	m.top_level_groups = make(map[int]TopLevelGroup)
	m.next_group_id = cfg.NextGroupID()

	for trajectory := range m.store.Len() {
		m.store.GroupList(trajectory).Clear()
	}

	for _, tlg := range cfg.TopLevelGroups {
		m.top_level_groups[tlg.ID] = tlg
	}

	for _, entry := range cfg.Groups {
		group := m.createGroupWithID(entry.ID, entry.Name, entry.Type)
		group.Color = entry.Color
		group.TLG = entry.TLG
		m.groups[entry.ID] = *group
	}

	skipped := make([]int, 0)
	for _, trajectory := range slices.Sorted(maps.Keys(cfg.Assignments)) {
		if trajectory < 0 || trajectory >= m.store.Len() {
			m.logger.Warn(
				"Can't load group assignment, trajectory does not exist. Skipping",
				"trajectory", trajectory)
			skipped = append(skipped, trajectory)
			continue
		}

		// ascending frames, out of order inserts could be swallowed by compaction
		assignments := slices.SortedFunc(slices.Values(cfg.Assignments[trajectory]), func(a, b Assignment) int {
			return a.Start - b.Start
		})
		for _, assignment := range assignments {
			if !m.AddTrajectoryToGroup(trajectory, assignment.GroupID, assignment.Start) {
				m.RemoveTrajectoryAssignment(trajectory, assignment.Start)
			}
		}
	}

	if len(skipped) > 0 {
		m.logger.Warn(
			"Group configuration not fully loaded. Import the trajectories before the groups",
			"skipped trajectories", skipped)
	}

	m.notifier.emit(GroupsChanged)
	return skipped
}
