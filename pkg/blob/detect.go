package blob

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

// Contours closer than this to the image border are dropped
const edgeBand = 2

// Oriented bounding box of a blob in ROI coordinates
type Box struct {
	Center        r2.Vec
	Width, Height float64
	Angle         float64
	Bounds        image.Rectangle
}

func boxOf(r gocv.RotatedRect2f) Box {
	return Box{
		Center: r2.Vec{X: float64(r.Center.X), Y: float64(r.Center.Y)},
		Width:  float64(r.Width),
		Height: float64(r.Height),
		Angle:  r.Angle,
		Bounds: r.BoundingRect,
	}
}

// Long to short side ratio and the long side. A box without area
// has an infinite ratio
func (b Box) Ratio() (float64, float64) {
	long, short := math.Max(b.Width, b.Height), math.Min(b.Width, b.Height)
	if short <= 0 {
		return math.Inf(1), long
	}
	return long / short, long
}

type ColorBlob struct {
	Box Box
	// center in whole frame coordinates
	ImageCenter  r2.Vec
	Color        color.RGBA
	Contour      []image.Point
	MaxExpansion float64
}

func (b ColorBlob) Center() r2.Vec { return b.Box.Center }

// Shift of a color marker center caused by the oblique view of the
// camera. Provided by the calibration, nil disables the correction
type Correction func(image_center r2.Vec) r2.Vec

type DetectionParams struct {
	Range    ColorRange
	MinArea  float64
	MaxArea  float64
	MaxRatio float64

	UseClose    bool
	RadiusClose int
	UseOpen     bool
	RadiusOpen  int

	// top left corner of the ROI in the frame
	Offset r2.Vec

	// receives the binary mask when set
	Mask *gocv.Mat
}

func kernel(radius int) gocv.Mat {
	return gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(2*radius+1, 2*radius+1))
}

// Thresholds img with the color range and cleans the mask: close fills holes
// smaller than the close radius, open removes specks smaller than the open radius
func binarize(img gocv.Mat, params DetectionParams) gocv.Mat {
	binary := gocv.NewMat()
	ThresholdHSV(img, &binary, params.Range.Params())

	if params.UseClose {
		k := kernel(params.RadiusClose)
		gocv.MorphologyEx(binary, &binary, gocv.MorphClose, k)
		k.Close()
	}
	if params.UseOpen {
		k := kernel(params.RadiusOpen)
		gocv.MorphologyEx(binary, &binary, gocv.MorphOpen, k)
		k.Close()
	}
	if params.Mask != nil {
		binary.CopyTo(params.Mask)
	}
	return binary
}

func atEdge(contour []image.Point, cols, rows int) bool {
	for _, p := range contour {
		if p.X < edgeBand || p.X >= cols-edgeBand || p.Y < edgeBand || p.Y >= rows-edgeBand {
			return true
		}
	}
	return false
}

// Connected regions of the color range in img, filtered by area, side
// ratio and distance to the image border
func FindColorBlobs(img gocv.Mat, params DetectionParams) []ColorBlob {
	binary := binarize(img, params)
	defer binary.Close()

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	marker_color := params.Range.MarkerColor()
	blobs := make([]ColorBlob, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		points := contour.ToPoints()
		if atEdge(points, img.Cols(), img.Rows()) {
			continue
		}
		area := gocv.ContourArea(contour)
		if area < params.MinArea || area > params.MaxArea {
			continue
		}
		box := boxOf(gocv.MinAreaRect2(contour))
		ratio, max_expansion := box.Ratio()
		if ratio > params.MaxRatio {
			continue
		}
		blobs = append(blobs, ColorBlob{
			Box:          box,
			ImageCenter:  r2.Add(params.Offset, box.Center),
			Color:        marker_color,
			Contour:      points,
			MaxExpansion: max_expansion,
		})
	}
	return blobs
}

func shifted(blob ColorBlob, correct Correction) r2.Vec {
	if correct == nil {
		return blob.Center()
	}
	return r2.Add(blob.Center(), correct(blob.ImageCenter))
}

// Plain color marker reading: one best quality point per blob
func BlobsToTrackPoints(blobs []ColorBlob, correct Correction) []trackpoint.TrackPoint {
	points := make([]trackpoint.TrackPoint, 0, len(blobs))
	for _, blob := range blobs {
		points = append(points,
			trackpoint.NewWithColor(shifted(blob, correct), trackpoint.QualityBest, blob.Center(), blob.Color))
	}
	return points
}

// Single color marker method, the color is sampled at the blob center
func FindColorMarkers(img gocv.Mat, params DetectionParams) ([]trackpoint.TrackPoint, error) {
	frame, err := img.ToImage()
	if err != nil {
		return nil, err
	}
	blobs := FindColorBlobs(img, params)
	points := make([]trackpoint.TrackPoint, 0, len(blobs))
	for _, blob := range blobs {
		x, y := int(math.Floor(blob.Box.Center.X+.5)), int(math.Floor(blob.Box.Center.Y+.5))
		col := color.RGBAModel.Convert(frame.At(x, y)).(color.RGBA)
		points = append(points,
			trackpoint.NewWithColor(blob.Center(), trackpoint.QualityBest, blob.Center(), col))
	}
	return points, nil
}
