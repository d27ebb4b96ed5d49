package groups

import (
	"errors"
	"image/color"

	"github.com/muesli/gamut"
)

var ERR_EMPTY_COLOR_LIST = errors.New("Can't create color list without colors")

// Cyclic list of colors, next of the last entry wraps to the first
type ColorList struct {
	colors []color.RGBA
	index  int
}

func NewColorList(colors []color.RGBA) (*ColorList, error) {
	if len(colors) == 0 {
		return nil, ERR_EMPTY_COLOR_LIST
	}
	return &ColorList{colors: colors}, nil
}

func (c *ColorList) Next() color.RGBA {
	col := c.PeekNext()
	c.index = (c.index + 1) % len(c.colors)
	return col
}

func (c *ColorList) PeekNext() color.RGBA {
	return c.colors[c.index]
}

func (c *ColorList) Previous() color.RGBA {
	if c.index > 0 {
		c.index--
	} else {
		c.index = len(c.colors) - 1
	}
	return c.colors[c.index]
}

func fromHex(codes ...string) *ColorList {
	colors := make([]color.RGBA, 0, len(codes))
	for _, code := range codes {
		colors = append(colors, color.RGBAModel.Convert(gamut.Hex(code)).(color.RGBA))
	}
	return &ColorList{colors: colors}
}

// Shades from https://coolors.co/palette/641220-6e1423-85182a-a11d33-a71e34-b21e35-bd1f36-c71f37-da1e37-e01e37
func RedColorList() *ColorList {
	return fromHex(
		"#641220", "#da1e37", "#85182a", "#bd1f36", "#a11d33",
		"#b21e35", "#a71e34", "#c71f37", "#6e1423", "#e01e37")
}

func YellowColorList() *ColorList {
	return fromHex(
		"#ffe169", "#b69121", "#fad643", "#a47e1b", "#edc531",
		"#ad881e", "#dbb42c", "#926c15", "#c9a227", "#805b10")
}

func GreenColorList() *ColorList {
	return fromHex(
		"#004b23", "#38b000", "#006400", "#70e000",
		"#007200", "#9ef01a", "#008000", "#ccff33")
}
