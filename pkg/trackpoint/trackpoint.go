package trackpoint

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	QualityBest     = 100
	QualityProbable = 90
	QualityWorst    = 0

	NoMarkerID = -1
)

// Detection handed to the tracker. Coordinates are image
// absolute once the recognizer shifted them by the ROI offset
type TrackPoint struct {
	pixel       r2.Vec
	quality     int
	color_point *r2.Vec
	color       *color.RGBA
	marker_id   int
	orientation *r3.Vec
}

func New(pixel r2.Vec, quality int) TrackPoint {
	return TrackPoint{
		pixel:     pixel,
		quality:   quality,
		marker_id: NoMarkerID,
	}
}

func NewWithColor(pixel r2.Vec, quality int, color_point r2.Vec, col color.RGBA) TrackPoint {
	tp := New(pixel, quality)
	tp.color_point = &color_point
	tp.color = &col
	return tp
}

func NewWithColorPoint(pixel r2.Vec, quality int, color_point r2.Vec) TrackPoint {
	tp := New(pixel, quality)
	tp.color_point = &color_point
	return tp
}

func (tp TrackPoint) Pixel() r2.Vec { return tp.pixel }
func (tp TrackPoint) X() float64    { return tp.pixel.X }
func (tp TrackPoint) Y() float64    { return tp.pixel.Y }
func (tp TrackPoint) Quality() int  { return tp.quality }
func (tp TrackPoint) MarkerID() int { return tp.marker_id }

func (tp TrackPoint) HasColor() bool       { return tp.color != nil }
func (tp TrackPoint) HasColorPoint() bool  { return tp.color_point != nil }
func (tp TrackPoint) HasMarkerID() bool    { return tp.marker_id != NoMarkerID }
func (tp TrackPoint) HasOrientation() bool { return tp.orientation != nil }

func (tp TrackPoint) ColorPoint() (r2.Vec, bool) {
	if tp.color_point == nil {
		return r2.Vec{}, false
	}
	return *tp.color_point, true
}

func (tp TrackPoint) Color() (color.RGBA, bool) {
	if tp.color == nil {
		return color.RGBA{}, false
	}
	return *tp.color, true
}

func (tp TrackPoint) Orientation() (r3.Vec, bool) {
	if tp.orientation == nil {
		return r3.Vec{}, false
	}
	return *tp.orientation, true
}

func (tp *TrackPoint) SetQuality(q int)      { tp.quality = q }
func (tp *TrackPoint) SetMarkerID(id int)    { tp.marker_id = id }
func (tp *TrackPoint) SetPixel(p r2.Vec)     { tp.pixel = p }
func (tp *TrackPoint) SetColor(c color.RGBA) { tp.color = &c }
func (tp *TrackPoint) SetOrientation(o r3.Vec) {
	tp.orientation = &o
}

// Moves the point and the color point
func (tp *TrackPoint) Shift(v r2.Vec) {
	tp.pixel = r2.Add(tp.pixel, v)
	if tp.color_point != nil {
		shifted := r2.Add(*tp.color_point, v)
		tp.color_point = &shifted
	}
}

func (tp TrackPoint) Distance(other TrackPoint) float64 {
	return r2.Norm(r2.Sub(tp.pixel, other.pixel))
}

func (tp TrackPoint) String() string {
	s := fmt.Sprintf("(%.2f, %.2f) q=%d", tp.pixel.X, tp.pixel.Y, tp.quality)
	if tp.color_point != nil {
		s += fmt.Sprintf(" col=(%.2f, %.2f)", tp.color_point.X, tp.color_point.Y)
	}
	if tp.HasMarkerID() {
		s += fmt.Sprintf(" id=%d", tp.marker_id)
	}
	return s
}
