package groups

const ConfigurationVersion = "0.2"

type Assignment struct {
	Start   int
	GroupID int
}

// Serializable snapshot of a manager. Assignments maps the
// trajectory index to its frame ascending (start, group) list
type Configuration struct {
	Version        string
	Groups         []Group
	TopLevelGroups []TopLevelGroup
	Assignments    map[int][]Assignment
}

// Highest used group id + 1
func (c Configuration) NextGroupID() int {
	next := 1
	for _, group := range c.Groups {
		if group.ID+1 > next {
			next = group.ID + 1
		}
	}
	return next
}
