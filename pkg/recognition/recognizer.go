package recognition

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/blob"
	gocvcommon "github.com/ped-dyn-emp/PeTrack-sub002/pkg/gocv-common"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

var ERR_NO_RANGES = errors.New("Can't run multicolor recognition without color ranges")

type MultiColorOptions struct {
	Ranges []blob.ColorRange
	// range edited last, it is searched after all others
	Current int

	MinArea  float64
	MaxArea  float64
	MaxRatio float64

	UseClose    bool
	RadiusClose int
	UseOpen     bool
	RadiusOpen  int

	UseDot           bool
	DotSize          float64
	RestrictPosition bool
	UseCode          bool

	IgnoreWithoutMarker bool
	// move points by the oblique view correction of the scene
	AutoCorrect bool
	// apply the correction on export only, recognition keeps raw points
	AutoCorrectOnlyExport bool
}

type Options struct {
	Method     Method
	Contour    ContourOptions
	Color      blob.DetectionParams
	MultiColor MultiColorOptions
	Code       blob.CodeOptions

	// cm per pixel and view angles, a flat scene of scale 1 when nil
	Scene      blob.Scene
	Correction blob.Correction
	BorderSize int
}

type Recognizer struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) (*Recognizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Scene == nil {
		opts.Scene = blob.FlatScene{Scale: 1}
	}
	if family, ok := opts.Method.Family(); ok {
		opts.Contour.Family = family
	}
	if opts.Method == MultiColor && len(opts.MultiColor.Ranges) == 0 {
		return nil, ERR_NO_RANGES
	}
	if opts.Method == Code || (opts.Method == MultiColor && opts.MultiColor.UseCode && !opts.MultiColor.UseDot) {
		if err := opts.Code.Params.Validate(); err != nil {
			return nil, err
		}
	}
	if int(opts.Method) >= len(method_names) {
		return nil, fmt.Errorf("%w: %d", ERR_UNKNOWN_METHOD, opts.Method)
	}
	return &Recognizer{opts: opts, logger: logger}, nil
}

func (r *Recognizer) Method() Method   { return r.opts.Method }
func (r *Recognizer) Options() Options { return r.opts }

// Marker positions inside roi in coordinates of the frame without border
func (r *Recognizer) MarkerPositions(img gocv.Mat, roi image.Rectangle) ([]trackpoint.TrackPoint, error) {
	rect := gocvcommon.ClampRect(roi, img.Cols(), img.Rows(), r.opts.Method.IsContour())
	if rect.Empty() {
		return nil, nil
	}
	sub := img.Region(rect)
	defer sub.Close()

	offset := r2.Vec{X: float64(rect.Min.X - r.opts.BorderSize), Y: float64(rect.Min.Y - r.opts.BorderSize)}

	var points []trackpoint.TrackPoint
	var err error
	switch r.opts.Method {
	case MultiColor:
		points, err = r.findMultiColorMarkers(sub, rect, offset)
	case Color:
		points, err = blob.FindColorMarkers(sub, r.opts.Color)
	case Code:
		points, err = blob.FindCodeMarkers(sub, r.codeOptions(rect), false)
	default:
		points, err = FindContourMarkers(sub, r.opts.Contour, r.logger)
	}
	if err != nil {
		return nil, err
	}

	for i := range points {
		points[i].Shift(offset)
	}
	return points, nil
}

// Scale range of the scene over the ROI corners
func (r *Recognizer) codeOptions(rect image.Rectangle) blob.CodeOptions {
	opts := r.opts.Code
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range []image.Point{rect.Min, {rect.Max.X, rect.Min.Y}, {rect.Min.X, rect.Max.Y}, rect.Max} {
		cm := r.opts.Scene.CmPerPixel(r2.Vec{X: float64(p.X), Y: float64(p.Y)})
		lo, hi = math.Min(lo, cm), math.Max(hi, cm)
	}
	opts.CmPerPixelMin, opts.CmPerPixelMax = lo, hi
	return opts
}

func (r *Recognizer) correction() blob.Correction {
	mc := r.opts.MultiColor
	if mc.AutoCorrect && !mc.AutoCorrectOnlyExport {
		return r.opts.Correction
	}
	return nil
}

// Range order with the current range moved to the end
func (mc MultiColorOptions) order() []int {
	n := len(mc.Ranges)
	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != mc.Current {
			order = append(order, i)
		}
	}
	if mc.Current >= 0 && mc.Current < n {
		order = append(order, mc.Current)
	}
	return order
}

func (r *Recognizer) findMultiColorMarkers(img gocv.Mat, rect image.Rectangle, offset r2.Vec) ([]trackpoint.TrackPoint, error) {
	mc := r.opts.MultiColor
	correct := r.correction()

	var points []trackpoint.TrackPoint
	for _, nr := range mc.order() {
		color_range := mc.Ranges[nr]
		blobs := blob.FindColorBlobs(img, blob.DetectionParams{
			Range:       color_range,
			MinArea:     mc.MinArea,
			MaxArea:     mc.MaxArea,
			MaxRatio:    mc.MaxRatio,
			UseClose:    mc.UseClose,
			RadiusClose: mc.RadiusClose,
			UseOpen:     mc.UseOpen,
			RadiusOpen:  mc.RadiusOpen,
			Offset:      offset,
		})
		r.logger.Debug("Color blobs", "range", nr, "count", len(blobs))

		switch {
		case mc.UseDot:
			points = append(points, blob.RefineWithBlackDot(blobs, img, blob.BlackDotOptions{
				IgnoreWithoutMarker: mc.IgnoreWithoutMarker,
				DotSize:             mc.DotSize,
				MidHue:              color_range.MidHue(),
				RestrictPosition:    mc.RestrictPosition,
				BorderSize:          r.opts.BorderSize,
				Scene:               r.opts.Scene,
				Correction:          correct,
			})...)
		case mc.UseCode:
			opts := r.codeOptions(rect)
			opts.IgnoreWithoutMarker = mc.IgnoreWithoutMarker
			opts.Correction = correct
			refined, err := blob.RefineWithAruco(blobs, img, opts)
			if err != nil {
				return nil, err
			}
			points = append(points, refined...)
		default:
			points = append(points, blob.BlobsToTrackPoints(blobs, correct)...)
		}
	}
	return points, nil
}
