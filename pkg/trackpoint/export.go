package trackpoint

import (
	"fmt"
)

type ExportedPoint struct {
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Quality  int       `json:"quality"`
	ColorX   *float64  `json:"color_x,omitempty"`
	ColorY   *float64  `json:"color_y,omitempty"`
	Color    string    `json:"color,omitempty"`
	MarkerID *int      `json:"marker_id,omitempty"`
	Orient   []float64 `json:"orientation,omitempty"`
}

func (tp TrackPoint) Export() *ExportedPoint {
	exported := &ExportedPoint{
		X:       tp.pixel.X,
		Y:       tp.pixel.Y,
		Quality: tp.quality,
	}
	if cp, ok := tp.ColorPoint(); ok {
		exported.ColorX, exported.ColorY = &cp.X, &cp.Y
	}
	if c, ok := tp.Color(); ok {
		exported.Color = fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	if tp.HasMarkerID() {
		id := tp.marker_id
		exported.MarkerID = &id
	}
	if o, ok := tp.Orientation(); ok {
		exported.Orient = []float64{o.X, o.Y, o.Z}
	}
	return exported
}

func ExportAll(points []TrackPoint) []*ExportedPoint {
	exported := make([]*ExportedPoint, 0, len(points))
	for _, p := range points {
		exported = append(exported, p.Export())
	}
	return exported
}
