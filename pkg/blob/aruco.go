package blob

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

var (
	ERR_UNSUPPORTED_DICTIONARY = errors.New("Can't use the mip 36h12 dictionary")
	ERR_BAD_DICTIONARY         = errors.New("Can't find aruco dictionary")
	ERR_BAD_CODE_PARAMS        = errors.New("Can't use aruco detector parameters")
)

const (
	// predefined OpenCV dictionaries 4x4_50 up to the original aruco one
	lastPredefinedDictionary = 16
	mip36h12Dictionary       = 17
	cornerRefineSubpix       = 1
)

// Detector parameters. Perimeters are marker side lengths in cm
type CodeParams struct {
	MinMarkerPerimeter float64 `toml:"min_marker_perimeter"`
	MaxMarkerPerimeter float64 `toml:"max_marker_perimeter"`
	MinCornerDistance  float64 `toml:"min_corner_distance"`
	MinMarkerDistance  float64 `toml:"min_marker_distance"`

	AdaptiveThreshWinSizeMin  int `toml:"adaptive_thresh_win_size_min"`
	AdaptiveThreshWinSizeMax  int `toml:"adaptive_thresh_win_size_max"`
	AdaptiveThreshWinSizeStep int `toml:"adaptive_thresh_win_size_step"`
	AdaptiveThreshConstant    int `toml:"adaptive_thresh_constant"`

	PolygonalApproxAccuracyRate float64 `toml:"polygonal_approx_accuracy_rate"`
	MinDistanceToBorder         int     `toml:"min_distance_to_border"`

	DoCornerRefinement            bool    `toml:"do_corner_refinement"`
	CornerRefinementWinSize       int     `toml:"corner_refinement_win_size"`
	CornerRefinementMaxIterations int     `toml:"corner_refinement_max_iterations"`
	CornerRefinementMinAccuracy   float64 `toml:"corner_refinement_min_accuracy"`

	MarkerBorderBits                      int     `toml:"marker_border_bits"`
	PerspectiveRemovePixelPerCell         int     `toml:"perspective_remove_pixel_per_cell"`
	PerspectiveRemoveIgnoredMarginPerCell float64 `toml:"perspective_remove_ignored_margin_per_cell"`
	MaxErroneousBitsInBorderRate          float64 `toml:"max_erroneous_bits_in_border_rate"`
	MinOtsuStdDev                         float64 `toml:"min_otsu_std_dev"`
	ErrorCorrectionRate                   float64 `toml:"error_correction_rate"`
}

func DefaultCodeParams() CodeParams {
	return CodeParams{
		MinMarkerPerimeter:                    5,
		MaxMarkerPerimeter:                    15,
		MinCornerDistance:                     0.05,
		MinMarkerDistance:                     0.05,
		AdaptiveThreshWinSizeMin:              3,
		AdaptiveThreshWinSizeMax:              23,
		AdaptiveThreshWinSizeStep:             10,
		AdaptiveThreshConstant:                7,
		PolygonalApproxAccuracyRate:           0.03,
		MinDistanceToBorder:                   3,
		CornerRefinementWinSize:               5,
		CornerRefinementMaxIterations:         30,
		CornerRefinementMinAccuracy:           0.1,
		MarkerBorderBits:                      1,
		PerspectiveRemovePixelPerCell:         4,
		PerspectiveRemoveIgnoredMarginPerCell: 0.13,
		MaxErroneousBitsInBorderRate:          0.35,
		MinOtsuStdDev:                         5,
		ErrorCorrectionRate:                   0.6,
	}
}

func (p CodeParams) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ERR_BAD_CODE_PARAMS, fmt.Sprintf(format, args...))
	}
	switch {
	case p.MinMarkerPerimeter <= 0:
		return bad("min marker perimeter must be larger than 0")
	case p.MaxMarkerPerimeter < p.MinMarkerPerimeter:
		return bad("max perimeter %v is below min perimeter %v", p.MaxMarkerPerimeter, p.MinMarkerPerimeter)
	case p.MinCornerDistance < 0:
		return bad("min corner distance cannot be negative")
	case p.MinMarkerDistance < 0:
		return bad("min marker distance cannot be negative")
	case p.AdaptiveThreshWinSizeMin < 3:
		return bad("min window size must be at least 3")
	case p.AdaptiveThreshWinSizeMax < p.AdaptiveThreshWinSizeMin:
		return bad("max window size %d is below min window size %d", p.AdaptiveThreshWinSizeMax, p.AdaptiveThreshWinSizeMin)
	case p.AdaptiveThreshWinSizeStep <= 0:
		return bad("window size step must be larger than 0")
	case p.MinDistanceToBorder < 0:
		return bad("min distance to border cannot be negative")
	case p.CornerRefinementWinSize < 1:
		return bad("corner refinement window size must be at least 1")
	case p.CornerRefinementMaxIterations < 1:
		return bad("corner refinement iterations must be at least 1")
	case p.CornerRefinementMinAccuracy <= 0:
		return bad("corner refinement accuracy must be larger than 0")
	case p.MarkerBorderBits < 1:
		return bad("marker border bits must be at least 1")
	case p.MinOtsuStdDev <= 0:
		return bad("min otsu std dev must be larger than 0")
	}
	return nil
}

type CodeOptions struct {
	Dictionary int
	Params     CodeParams
	// scale range over the searched image
	CmPerPixelMin       float64
	CmPerPixelMax       float64
	IgnoreWithoutMarker bool
	Correction          Correction
}

// Marker perimeter bounds relative to the longer image side of side pixels
func PerimeterRates(params CodeParams, cm_min, cm_max float64, side int) (float64, float64) {
	s := float64(side)
	return params.MinMarkerPerimeter * 4 / cm_max / s, params.MaxMarkerPerimeter * 4 / cm_min / s
}

func dictionary(index int) (gocv.ArucoDictionary, error) {
	switch {
	case index == mip36h12Dictionary:
		return gocv.ArucoDictionary{}, ERR_UNSUPPORTED_DICTIONARY
	case index < 0 || index > lastPredefinedDictionary:
		return gocv.ArucoDictionary{}, fmt.Errorf("%w: %d", ERR_BAD_DICTIONARY, index)
	}
	return gocv.GetPredefinedDictionary(gocv.ArucoDictionaryCode(index)), nil
}

func detectorParameters(p CodeParams, min_rate, max_rate float64) gocv.ArucoDetectorParameters {
	params := gocv.NewArucoDetectorParameters()
	params.SetAdaptiveThreshWinSizeMin(p.AdaptiveThreshWinSizeMin)
	params.SetAdaptiveThreshWinSizeMax(p.AdaptiveThreshWinSizeMax)
	params.SetAdaptiveThreshWinSizeStep(p.AdaptiveThreshWinSizeStep)
	params.SetAdaptiveThreshConstant(float64(p.AdaptiveThreshConstant))
	params.SetMinMarkerPerimeterRate(min_rate)
	params.SetMaxMarkerPerimeterRate(max_rate)
	params.SetPolygonalApproxAccuracyRate(p.PolygonalApproxAccuracyRate)
	params.SetMinCornerDistanceRate(p.MinCornerDistance)
	params.SetMinDistanceToBorder(p.MinDistanceToBorder)
	params.SetMinMarkerDistanceRate(p.MinMarkerDistance)
	if p.DoCornerRefinement {
		params.SetCornerRefinementMethod(cornerRefineSubpix)
	}
	params.SetCornerRefinementWinSize(p.CornerRefinementWinSize)
	params.SetCornerRefinementMaxIterations(p.CornerRefinementMaxIterations)
	params.SetCornerRefinementMinAccuracy(p.CornerRefinementMinAccuracy)
	params.SetMarkerBorderBits(p.MarkerBorderBits)
	params.SetPerspectiveRemovePixelPerCell(p.PerspectiveRemovePixelPerCell)
	params.SetPerspectiveRemoveIgnoredMarginPerCell(p.PerspectiveRemoveIgnoredMarginPerCell)
	params.SetMaxErroneousBitsInBorderRate(p.MaxErroneousBitsInBorderRate)
	params.SetMinOtsuStdDev(p.MinOtsuStdDev)
	params.SetErrorCorrectionRate(p.ErrorCorrectionRate)
	return params
}

func cornerCenter(corners []gocv.Point2f) r2.Vec {
	var c r2.Vec
	for _, p := range corners {
		c = r2.Add(c, r2.Vec{X: float64(p.X), Y: float64(p.Y)})
	}
	return r2.Scale(1/float64(len(corners)), c)
}

// Decoded codes at their corner center with marker id, followed by the
// rejected candidates without id when append_rejected is set
func FindCodeMarkers(img gocv.Mat, opts CodeOptions, append_rejected bool) ([]trackpoint.TrackPoint, error) {
	dict, err := dictionary(opts.Dictionary)
	if err != nil {
		return nil, err
	}
	min_rate, max_rate := PerimeterRates(opts.Params, opts.CmPerPixelMin, opts.CmPerPixelMax, max(img.Cols(), img.Rows()))

	detector := gocv.NewArucoDetectorWithParams(dict, detectorParameters(opts.Params, min_rate, max_rate))
	defer detector.Close()

	corners, ids, rejected := detector.DetectMarkers(img)

	points := make([]trackpoint.TrackPoint, 0, len(corners)+len(rejected))
	for i, c := range corners {
		if len(c) == 0 {
			continue
		}
		tp := trackpoint.New(cornerCenter(c), trackpoint.QualityBest)
		if i < len(ids) {
			tp.SetMarkerID(ids[i])
		}
		points = append(points, tp)
	}
	if append_rejected {
		for _, c := range rejected {
			if len(c) == 0 {
				continue
			}
			points = append(points, trackpoint.New(cornerCenter(c), trackpoint.QualityBest))
		}
	}
	return points, nil
}

// Search window for codes: larger than the blob since tilted heads
// show the code sticking out of the colored region
func CodeCropRect(blob ColorBlob, cols, rows int) image.Rectangle {
	bounds := blob.Box.Bounds
	extend := round(2 * blob.MaxExpansion)
	side := 2*cropBorder + ((round(blob.MaxExpansion) + extend) &^ 1)

	x := max(1, bounds.Min.X-cropBorder-side/2)
	y := max(1, bounds.Min.Y-cropBorder-side/2)
	w := min(cols-x-1, side)
	h := min(rows-y-1, side)
	return image.Rect(x, y, x+w, y+h)
}

// Codes whose position moved by offset lies in bound
func FilterCodesByBoundingRect(codes []trackpoint.TrackPoint, bound image.Rectangle, offset r2.Vec) []trackpoint.TrackPoint {
	inside := make([]trackpoint.TrackPoint, 0, len(codes))
	for _, code := range codes {
		p := r2.Add(code.Pixel(), offset)
		if image.Pt(round(p.X), round(p.Y)).In(bound) {
			inside = append(inside, code)
		}
	}
	return inside
}

// Candidate nearest to reference, codes must not be empty
func ResolveCandidates(codes []trackpoint.TrackPoint, reference r2.Vec) trackpoint.TrackPoint {
	best, best_distance := codes[0], math.Inf(1)
	for _, code := range codes {
		if d := r2.Norm(r2.Sub(code.Pixel(), reference)); d < best_distance {
			best, best_distance = code, d
		}
	}
	return best
}

// Replaces each blob by the code found on it. A decoded code wins over rejected
// candidates, of those the one nearest to the blob center is taken
func RefineWithAruco(blobs []ColorBlob, img gocv.Mat, opts CodeOptions) ([]trackpoint.TrackPoint, error) {
	points := make([]trackpoint.TrackPoint, 0, len(blobs))
	for _, blob := range blobs {
		rect := CodeCropRect(blob, img.Cols(), img.Rows())
		if rect.Empty() {
			continue
		}
		corner := r2.Vec{X: float64(rect.Min.X), Y: float64(rect.Min.Y)}

		sub := img.Region(rect)
		codes, err := FindCodeMarkers(sub, opts, true)
		sub.Close()
		if err != nil {
			return nil, err
		}
		codes = FilterCodesByBoundingRect(codes, blob.Box.Bounds, corner)

		var move r2.Vec
		if opts.Correction != nil {
			move = opts.Correction(blob.ImageCenter)
		}

		if len(codes) == 0 {
			if !opts.IgnoreWithoutMarker {
				points = append(points, trackpoint.NewWithColor(
					r2.Add(blob.Center(), move), trackpoint.QualityProbable, blob.Center(), blob.Color))
			}
			continue
		}

		code := codes[0]
		if !code.HasMarkerID() {
			code = ResolveCandidates(codes, r2.Sub(blob.Center(), corner))
			code.SetQuality(trackpoint.QualityBest)
		}
		code.SetColor(blob.Color)
		code.Shift(r2.Add(corner, move))
		points = append(points, code)
	}
	return points, nil
}
