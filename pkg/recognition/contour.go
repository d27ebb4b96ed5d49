package recognition

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/ellipse"
	gocvcommon "github.com/ped-dyn-emp/PeTrack-sub002/pkg/gocv-common"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/marker"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/seq"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

var ERR_CHANNELS = errors.New("Can't threshold image with this number of channels")

const (
	thresholdStart = 60
	thresholdStep  = (250 - 72) / 10
	thresholdEnd   = 251

	// fitted ellipses must stay this far inside the image
	ellipseBorder = 10

	quadrangleEpsilon = .08
)

var (
	quadrangleArea   = marker.Bounds{Min: 1500, Max: 10000}
	quadrangleLength = marker.Bounds{Min: 150, Max: 500}
)

type ContourOptions struct {
	Family marker.Family
	// added to the first threshold of the sweep
	Brightness          int
	IgnoreWithoutMarker bool
	AutoWB              bool
	// expected head size in pixels, Japan markers only
	HeadSize float64
	// also look for square plates around the heads
	Quadrangles bool
}

// Ellipse for a contour with more than 5 points, false when it comes
// closer than ellipseBorder to the image border
func fitEllipse(contour gocv.PointVector, points []image.Point, cols, rows int) (ellipse.Ellipse, bool) {
	box := gocv.FitEllipse(contour)
	w, h := float64(box.Width), float64(box.Height)

	center := r2.Vec{X: float64(box.Center.X), Y: float64(box.Center.Y)}
	if c, ok := gocvcommon.Centroid(points); ok {
		center = c
	}

	expansion := float64(int(math.Floor(math.Max(w, h)*.5 + .5)))
	if center.X-expansion <= ellipseBorder || center.X+expansion >= float64(cols-ellipseBorder) ||
		center.Y-expansion <= ellipseBorder || center.Y+expansion >= float64(rows-ellipseBorder) {
		return ellipse.Ellipse{}, false
	}

	angle := box.Angle / 180 * math.Pi
	if w < h {
		angle -= math.Pi / 2
	}
	return ellipse.New(center, w*.5, h*.5, angle), true
}

func quadrangle(contour gocv.PointVector) ([4]r2.Vec, bool) {
	var v [4]r2.Vec
	approx := gocv.ApproxPolyDP(contour, quadrangleEpsilon*gocv.ArcLength(contour, true), false)
	defer approx.Close()
	if approx.Size() != 4 {
		return v, false
	}
	if !quadrangleArea.Contains(gocv.ContourArea(approx)) || !quadrangleLength.Contains(gocv.ArcLength(approx, false)) {
		return v, false
	}
	for i, p := range approx.ToPoints() {
		v[i] = r2.Vec{X: float64(p.X), Y: float64(p.Y)}
	}
	return v, true
}

// Feeds the contours of one thresholded image into the list, last
// contour first
func addContours(list *marker.List, bw gocv.Mat, opts ContourOptions) {
	contours := gocv.FindContours(bw, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer contours.Close()

	size := gocvcommon.Size(bw)
	for i := contours.Size() - 1; i >= 0; i-- {
		contour := contours.At(i)
		if contour.Size() <= 5 {
			continue
		}
		points := contour.ToPoints()
		if e, ok := fitEllipse(contour, points, size.X, size.Y); ok {
			list.MayAddEllipse(size, e, gocvcommon.OrientedArea(points) > 0)
		}
		if opts.Quadrangles {
			if v, ok := quadrangle(contour); ok {
				list.MayAddQuadrangle(v)
			}
		}
	}
}

// Casern, Hermes and Japan markers: a sweep of binary thresholds collects
// dark spots and bright heads which are organized into markers afterwards
func FindContourMarkers(img gocv.Mat, opts ContourOptions, logger *slog.Logger) ([]trackpoint.TrackPoint, error) {
	if ch := img.Channels(); ch != 1 && ch != 3 {
		return nil, fmt.Errorf("%w: %d", ERR_CHANNELS, ch)
	}
	gray := gocvcommon.ToGray(img, gocv.ColorRGBToGray)
	defer gray.Close()

	list := marker.NewList(marker.PolicyFor(opts.Family, opts.HeadSize), logger)

	bw := gocv.NewMat()
	defer bw.Close()
	for _, threshold := range seq.Seq(thresholdStart+opts.Brightness, thresholdEnd, thresholdStep) {
		gocv.Threshold(gray, &bw, float32(threshold), 255, gocv.ThresholdBinary)
		addContours(list, bw, opts)
	}

	frame, err := img.ToImage()
	if err != nil {
		return nil, fmt.Errorf("Can't convert frame for marker organization: %w", err)
	}
	list.Organize(frame, opts.AutoWB)
	return list.ToCrossList(opts.IgnoreWithoutMarker), nil
}
