package blob

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	gocvcommon "github.com/ped-dyn-emp/PeTrack-sub002/pkg/gocv-common"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

// Extra margin around the crop windows
const cropBorder = 4

// Scene geometry known from the camera calibration
type Scene interface {
	CmPerPixel(p r2.Vec) float64
	// 90 is looking straight down
	AngleToGround(p r2.Vec) float64
}

// Camera looking straight down with a uniform scale
type FlatScene struct {
	Scale float64
}

func (s FlatScene) CmPerPixel(r2.Vec) float64    { return s.Scale }
func (s FlatScene) AngleToGround(r2.Vec) float64 { return 90 }

type BlackDotOptions struct {
	IgnoreWithoutMarker bool
	// dot diameter in cm
	DotSize float64
	// weights of the gray conversion, MidHue of the blob's range
	MidHue           color.RGBA
	RestrictPosition bool
	BorderSize       int
	Scene            Scene
	Correction       Correction
}

func round(v float64) int { return int(math.Floor(v + .5)) }

// Axis aligned window around the blob, widths are rounded down to even sizes
func DotCropRect(blob ColorBlob, cols, rows int) image.Rectangle {
	box := blob.Box
	x := max(1, round(box.Center.X-box.Width/2-cropBorder))
	y := max(1, round(box.Center.Y-box.Height/2-cropBorder))
	side := 2*cropBorder + (round(blob.MaxExpansion) &^ 1)
	w := min(cols-x-1, side)
	h := min(rows-y-1, side)
	return image.Rect(x, y, x+w, y+h)
}

// Shrinks the crop window toward the side of the head facing the camera
// axis. On oblique views the dot sits off the blob center and the far
// part of the window only holds hair or shoulders
func RestrictPosition(rect image.Rectangle, blob ColorBlob, border int, scene Scene) image.Rectangle {
	at := func(dx, dy float64) float64 {
		return scene.AngleToGround(r2.Add(blob.ImageCenter, r2.Vec{X: float64(border) + dx, Y: float64(border) + dy}))
	}
	xy := at(0, 0)
	x1, x2 := at(10, 0), at(-10, 0)
	y1, y2 := at(0, 10), at(0, -10)

	big := 1 - .75*(90-xy)/90
	const small = .85

	x, y, w, h := rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy()
	shift := func(v, size int, factor float64) int { return int(float64(v) + float64(size)*(1-factor)) }
	scale := func(size int, factor float64) int { return int(float64(size) * factor) }

	// the factor pair cutting width / height, and whether x and y move
	var fw, fh float64
	move_x, move_y := false, false
	switch {
	case x1 > x2 && y1 > y2:
		if x1 > y1 {
			fw, fh = big, small
		} else {
			fw, fh = small, big
		}
	case x1 > x2:
		move_y = true
		if x1 > y2 {
			fw, fh = big, small
		} else {
			fw, fh = small, big
		}
	case y1 > y2:
		move_x = true
		if x2 > y1 {
			fw, fh = big, small
		} else {
			fw, fh = small, big
		}
	default:
		move_x, move_y = true, true
		if x2 > y2 {
			fw, fh = big, small
		} else {
			fw, fh = small, big
		}
	}
	if move_x {
		x = shift(x, w, fw)
	}
	if move_y {
		y = shift(y, h, fh)
	}
	w, h = scale(w, fw), scale(h, fh)
	return image.Rect(x, y, x+w, y+h)
}

// Gray conversion weighted by the marker hue. A plain conversion turns
// red plates nearly as dark as the dot
func CustomGray(sub gocv.Mat, mid color.RGBA) gocv.Mat {
	r, g, b := float64(mid.R)/255, float64(mid.G)/255, float64(mid.B)/255
	sum := r + g + b
	if sum == 0 {
		r, g, b, sum = 1, 1, 1, 3
	}

	weights := gocv.NewMatWithSize(1, 3, gocv.MatTypeCV64F)
	defer weights.Close()
	weights.SetDoubleAt(0, 0, b/sum)
	weights.SetDoubleAt(0, 1, g/sum)
	weights.SetDoubleAt(0, 2, r/sum)

	gray := gocv.NewMat()
	gocv.Transform(sub, &gray, weights)
	return gray
}

// Row major 8 bit single channel pixels
type grayPixels struct {
	data       []byte
	cols, rows int
}

func newGrayPixels(m gocv.Mat) grayPixels {
	return grayPixels{data: m.ToBytes(), cols: m.Cols(), rows: m.Rows()}
}

func (g grayPixels) at(x, y int) int {
	x = max(0, min(g.cols-1, x))
	y = max(0, min(g.rows-1, y))
	return int(g.data[y*g.cols+x])
}

const (
	noDot      = 300
	dotFound   = 260
	dotRatio   = 1.8
	dotMinGray = 150.
)

// Darkest dot of the expected size inside the blob contour. Positions are
// ROI coordinates, false when there is none
func findBlackDot(blob ColorBlob, img gocv.Mat, rect image.Rectangle, opts BlackDotOptions) (r2.Vec, bool) {
	sub := img.Region(rect)
	defer sub.Close()
	gray := CustomGray(sub, opts.MidHue)
	defer gray.Close()
	pixels := newGrayPixels(gray)

	max_threshold := max(
		pixels.at(pixels.cols/2, pixels.rows/2),
		pixels.at(pixels.cols/4, pixels.rows/2),
		pixels.at(3*pixels.cols/4, pixels.rows/2))
	step := max(1, (max_threshold-5)/5)
	dark_limit := math.Min(dotMinGray, 2*float64(max_threshold)/3)

	outline := gocv.NewPointVectorFromPoints(blob.Contour)
	defer outline.Close()

	corner := r2.Vec{X: float64(rect.Min.X), Y: float64(rect.Min.Y)}
	min_gray := noDot
	var center r2.Vec

	bw := gocv.NewMat()
	defer bw.Close()
	for threshold := 5; threshold < max_threshold; threshold += step {
		gocv.Threshold(gray, &bw, float32(threshold), 255, gocv.ThresholdBinary)

		contours := gocv.FindContours(bw, gocv.RetrievalList, gocv.ChainApproxSimple)
		for i := 0; i < contours.Size(); i++ {
			contour := contours.At(i)
			if contour.Size() <= 5 {
				continue
			}
			box := boxOf(gocv.MinAreaRect2(contour))
			ratio, expansion := box.Ratio()

			p := r2.Add(corner, box.Center)
			marker_size := opts.DotSize / opts.Scene.CmPerPixel(p)
			if ratio >= dotRatio || expansion >= marker_size*1.5 || expansion <= marker_size/2 {
				continue
			}
			if gocvcommon.OrientedArea(contour.ToPoints()) <= 0 {
				continue
			}
			value := pixels.at(round(box.Center.X), round(box.Center.Y))
			if float64(value) >= dark_limit {
				continue
			}
			if gocv.PointPolygonTest(outline, image.Pt(round(p.X), round(p.Y)), false) <= 0 {
				continue
			}
			if value < min_gray {
				min_gray, center = value, p
			}
		}
		contours.Close()
	}
	return center, min_gray < dotFound
}

// Moves each blob's point onto its black dot. Blobs without a dot stay
// at probable quality unless IgnoreWithoutMarker drops them
func RefineWithBlackDot(blobs []ColorBlob, img gocv.Mat, opts BlackDotOptions) []trackpoint.TrackPoint {
	if opts.Scene == nil {
		opts.Scene = FlatScene{Scale: 1}
	}
	points := make([]trackpoint.TrackPoint, 0, len(blobs))
	for _, blob := range blobs {
		rect := DotCropRect(blob, img.Cols(), img.Rows())
		if opts.RestrictPosition {
			rect = RestrictPosition(rect, blob, opts.BorderSize, opts.Scene)
		}
		rect = rect.Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))
		if rect.Empty() {
			continue
		}

		if dot, ok := findBlackDot(blob, img, rect, opts); ok {
			points = append(points, trackpoint.NewWithColor(dot, trackpoint.QualityBest, blob.Center(), blob.Color))
			continue
		}
		if opts.IgnoreWithoutMarker {
			continue
		}
		if opts.Correction != nil {
			points = append(points,
				trackpoint.NewWithColor(shifted(blob, opts.Correction), trackpoint.QualityBest, blob.Center(), blob.Color))
		} else {
			points = append(points,
				trackpoint.NewWithColor(blob.Center(), trackpoint.QualityProbable, blob.Center(), blob.Color))
		}
	}
	return points
}
