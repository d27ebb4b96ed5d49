package groups

import (
	"errors"
	"image/color"
)

const (
	// Never stored in the catalog
	NoGroupID = -1
	NoTLG     = -1

	NoType = "No Type"
)

var (
	ERR_NO_SUCH_TLG     = errors.New("Can't find top level group")
	ERR_DUPLICATE_GROUP = errors.New("Can't create group: id already exists")
)

type Group struct {
	ID    int
	Name  string
	Type  string
	Color color.RGBA
	TLG   int
}

func NewGroup(name, group_type string) Group {
	return Group{ID: NoGroupID, Name: name, Type: group_type, TLG: NoTLG}
}

func NoGroup() Group {
	return Group{ID: NoGroupID, Name: "no group", TLG: NoTLG}
}

type TopLevelGroup struct {
	ID   int
	Name string
}

var defaultTopLevelGroups = []TopLevelGroup{
	{0, "Large Action Groups"},
	{1, "Small Action Groups"},
	{2, "Individuals"},
}

// One continuous assignment of a trajectory to a group,
// FrameEnd is -1 for an open ended one
type TrajectoryGroupEntry struct {
	GroupID    int
	Trajectory int
	FrameBegin int
	FrameEnd   int
}
