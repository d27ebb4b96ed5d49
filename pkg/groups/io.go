package groups

import (
	"encoding/json"
	"fmt"
	"image/color"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

var ERR_BAD_COLOR = errors.New("Can't parse color")

type jsonGroup struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	TLG   int    `json:"tlgId"`
	Color string `json:"color"`
}

type jsonTopLevelGroup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type jsonInterval struct {
	Start   int `json:"start"`
	GroupID int `json:"groupId"`
}

type jsonAssignment struct {
	Trajectory int            `json:"trackPersonId"`
	Intervals  []jsonInterval `json:"intervals"`
}

type jsonConfiguration struct {
	Version        string              `json:"version"`
	Groups         []jsonGroup         `json:"groups"`
	TopLevelGroups []jsonTopLevelGroup `json:"topLevelGroups"`
	Assignments    []jsonAssignment    `json:"assignments"`
}

// #rrggbb for opaque colors, #aarrggbb otherwise
func encodeColor(col color.RGBA) string {
	if col.A == 0xff {
		c, _ := colorful.MakeColor(col)
		return c.Hex()
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", col.A, col.R, col.G, col.B)
}

func decodeColor(code string) (color.RGBA, error) {
	alpha := uint8(0xff)
	if len(code) == 9 {
		a, err := strconv.ParseUint(code[1:3], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%s: %w", code, ERR_BAD_COLOR)
		}
		alpha = uint8(a)
		code = "#" + code[3:]
	}
	c, err := colorful.Hex(code)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%s: %w", code, ERR_BAD_COLOR)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
}

func (c Configuration) MarshalJSON() ([]byte, error) {
	out := jsonConfiguration{
		Version:        c.Version,
		Groups:         make([]jsonGroup, 0, len(c.Groups)),
		TopLevelGroups: make([]jsonTopLevelGroup, 0, len(c.TopLevelGroups)),
		Assignments:    make([]jsonAssignment, 0, len(c.Assignments)),
	}
	for _, group := range c.Groups {
		out.Groups = append(out.Groups, jsonGroup{
			ID:    group.ID,
			Name:  group.Name,
			Type:  group.Type,
			TLG:   group.TLG,
			Color: encodeColor(group.Color),
		})
	}
	for _, tlg := range c.TopLevelGroups {
		out.TopLevelGroups = append(out.TopLevelGroups, jsonTopLevelGroup(tlg))
	}
	for _, trajectory := range slices.Sorted(maps.Keys(c.Assignments)) {
		intervals := make([]jsonInterval, 0, len(c.Assignments[trajectory]))
		for _, assignment := range c.Assignments[trajectory] {
			intervals = append(intervals, jsonInterval(assignment))
		}
		out.Assignments = append(out.Assignments, jsonAssignment{
			Trajectory: trajectory,
			Intervals:  intervals,
		})
	}
	return json.Marshal(out)
}

func (c *Configuration) UnmarshalJSON(data []byte) error {
	var in jsonConfiguration
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	c.Version = in.Version
	c.Groups = make([]Group, 0, len(in.Groups))
	c.TopLevelGroups = make([]TopLevelGroup, 0, len(in.TopLevelGroups))
	c.Assignments = make(map[int][]Assignment, len(in.Assignments))

	seen := make(map[int]bool, len(in.Groups))
	for _, group := range in.Groups {
		if seen[group.ID] {
			return errors.Wrapf(ERR_DUPLICATE_GROUP, "group %d", group.ID)
		}
		seen[group.ID] = true
		col, err := decodeColor(group.Color)
		if err != nil {
			return errors.Wrapf(err, "group %d", group.ID)
		}
		c.Groups = append(c.Groups, Group{
			ID:    group.ID,
			Name:  group.Name,
			Type:  group.Type,
			TLG:   group.TLG,
			Color: col,
		})
	}
	for _, tlg := range in.TopLevelGroups {
		c.TopLevelGroups = append(c.TopLevelGroups, TopLevelGroup(tlg))
	}
	for _, assignment := range in.Assignments {
		list := c.Assignments[assignment.Trajectory]
		for _, interval := range assignment.Intervals {
			list = append(list, Assignment(interval))
		}
		c.Assignments[assignment.Trajectory] = list
	}
	return nil
}

func Marshal(cfg Configuration) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}

func Unmarshal(data []byte) (Configuration, error) {
	var cfg Configuration
	err := json.Unmarshal(data, &cfg)
	return cfg, err
}

func ReadFile(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, errors.Wrapf(err, "Unable to read group configuration %s", path)
	}
	cfg, err := Unmarshal(data)
	if err != nil {
		return Configuration{}, errors.Wrapf(err, "Unable to parse group configuration %s", path)
	}
	return cfg, nil
}

func WriteFile(path string, cfg Configuration) error {
	data, err := Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "Unable to encode group configuration")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "Unable to write group configuration %s", path)
	}
	return nil
}
