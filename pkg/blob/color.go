package blob

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"
)

// Hue in degrees 0..359, saturation and value 0..255
type HSV struct {
	H, S, V int
}

func HSVFromColor(c color.Color) HSV {
	col, _ := colorful.MakeColor(c)
	h, s, v := col.Hsv()
	return HSV{H: int(math.Round(h)) % 360, S: int(math.Round(s * 255)), V: int(math.Round(v * 255))}
}

func ParseHSV(hex string) (HSV, error) {
	col, err := colorful.Hex(hex)
	if err != nil {
		return HSV{}, err
	}
	h, s, v := col.Hsv()
	return HSV{H: int(math.Round(h)) % 360, S: int(math.Round(s * 255)), V: int(math.Round(v * 255))}, nil
}

func (c HSV) RGBA() color.RGBA {
	r, g, b := colorful.Hsv(float64(c.H), float64(c.S)/255, float64(c.V)/255).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Range of colors a marker is thresholded with. InvertHue selects
// every hue outside From..To, for bands wrapping through red
type ColorRange struct {
	From      HSV
	To        HSV
	InvertHue bool
}

// Bounds in OpenCV's 8 bit HSV space, hue is halved to 0..179
type HSVParams struct {
	HLow, HHigh int
	SLow, SHigh int
	VLow, VHigh int
	InvertHue   bool
}

func sorted(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

func (r ColorRange) Params() HSVParams {
	var p HSVParams
	p.HLow, p.HHigh = sorted(r.From.H, r.To.H)
	p.HLow /= 2
	p.HHigh /= 2
	p.SLow, p.SHigh = sorted(r.From.S, r.To.S)
	p.VLow, p.VHigh = sorted(r.From.V, r.To.V)
	p.InvertHue = r.InvertHue
	return p
}

func (p HSVParams) midHue() int {
	mid := p.HLow + (p.HHigh-p.HLow)/2
	if p.InvertHue {
		mid = (mid + 90) % 180
	}
	return 2 * mid
}

// Fully saturated middle hue of the range
func (r ColorRange) MidHue() color.RGBA {
	return HSV{H: r.Params().midHue(), S: 255, V: 255}.RGBA()
}

// Middle of the range, reported as color of the blobs found with it
func (r ColorRange) MarkerColor() color.RGBA {
	p := r.Params()
	return HSV{H: p.midHue(), S: (p.SHigh + p.SLow) / 2, V: (p.VHigh + p.VLow) / 2}.RGBA()
}

// Binarizes the BGR image src into dst: 255 where hue, saturation and value
// are in range, 0 everywhere else
func ThresholdHSV(src gocv.Mat, dst *gocv.Mat, p HSVParams) {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)

	if !p.InvertHue {
		gocv.InRangeWithScalar(hsv,
			gocv.NewScalar(float64(p.HLow), float64(p.SLow), float64(p.VLow), 0),
			gocv.NewScalar(float64(p.HHigh), float64(p.SHigh), float64(p.VHigh), 0),
			dst)
		return
	}

	below := gocv.NewMat()
	defer below.Close()
	above := gocv.NewMat()
	defer above.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(0, float64(p.SLow), float64(p.VLow), 0),
		gocv.NewScalar(float64(p.HLow-1), float64(p.SHigh), float64(p.VHigh), 0),
		&below)
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(float64(p.HHigh+1), float64(p.SLow), float64(p.VLow), 0),
		gocv.NewScalar(255, float64(p.SHigh), float64(p.VHigh), 0),
		&above)
	gocv.BitwiseOr(below, above, dst)
}
