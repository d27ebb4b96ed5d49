package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/muesli/gamut"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/gring"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

const (
	point_radius  = 6
	trail_radius  = 2
	code_hue_step = 47
)

var (
	roi_color   = rgba(gamut.Hex("#00c8ff"))
	trail_color = rgba(gamut.Hex("#c0c0c0"))
	best_color  = rgba(gamut.Hex("#00ff00"))
	prob_color  = rgba(gamut.Hex("#ffd700"))
	worst_color = rgba(gamut.Hex("#ff0000"))
	code_base   = gamut.Hex("#ff00ff")
)

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func pt(v r2.Vec) image.Point {
	return image.Pt(int(math.Round(v.X)), int(math.Round(v.Y)))
}

// Color of a point by marker id, detected color or quality in this order
func PointColor(p trackpoint.TrackPoint) color.RGBA {
	if p.HasMarkerID() {
		return rgba(gamut.HueOffset(code_base, (p.MarkerID()*code_hue_step)%360))
	}
	if c, ok := p.Color(); ok {
		return c
	}
	switch {
	case p.Quality() >= trackpoint.QualityBest:
		return best_color
	case p.Quality() >= trackpoint.QualityProbable:
		return prob_color
	}
	return worst_color
}

// Positions of earlier frames, newest first
type Trail = gring.Ring[[]r2.Vec]

func NewTrail(frames int) *Trail {
	return gring.NewRing[[]r2.Vec](frames)
}

func Pixels(points []trackpoint.TrackPoint) []r2.Vec {
	pixels := make([]r2.Vec, 0, len(points))
	for _, p := range points {
		pixels = append(pixels, p.Pixel())
	}
	return pixels
}

// Draws the search region, the trail and the points onto img
func Draw(img *gocv.Mat, roi image.Rectangle, points []trackpoint.TrackPoint, trail *Trail) {
	if !roi.Empty() {
		gocv.Rectangle(img, roi, roi_color, 1)
	}
	if trail != nil {
		for pixels := range trail.All() {
			for _, p := range pixels {
				gocv.Circle(img, pt(p), trail_radius, trail_color, -1)
			}
		}
	}
	for _, p := range points {
		c := PointColor(p)
		center := pt(p.Pixel())
		gocv.Circle(img, center, point_radius, c, 2)
		if cp, ok := p.ColorPoint(); ok {
			gocv.Line(img, center, pt(cp), c, 1)
		}
		if p.HasMarkerID() {
			gocv.PutText(img, fmt.Sprint(p.MarkerID()), center.Add(image.Pt(point_radius+2, -point_radius)),
				gocv.FontHersheyPlain, 1, c, 1)
		}
	}
}
