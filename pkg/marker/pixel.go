package marker

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

func round(v float64) int { return int(math.Floor(v + .5)) }

// Pixel at x, y clamped to the frame
func pixel(frame image.Image, x, y int) color.RGBA {
	b := frame.Bounds()
	x = min(max(x, b.Min.X), b.Max.X-1)
	y = min(max(y, b.Min.Y), b.Max.Y-1)
	return color.RGBAModel.Convert(frame.At(x, y)).(color.RGBA)
}

func inFrame(frame image.Image, x, y int) bool {
	return image.Pt(x, y).In(frame.Bounds())
}

// HSV value
func value(c color.RGBA) int {
	return int(max(c.R, c.G, c.B))
}

func hue(c color.RGBA) float64 {
	h, _, _ := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hsv()
	return h
}

// Darkest value in the square of side 2r+1 around x, y
func minValue(frame image.Image, x, y, r int) int {
	darkest := 256
	for j := -r; j <= r; j++ {
		for k := -r; k <= r; k++ {
			darkest = min(darkest, value(pixel(frame, x+j, y+k)))
		}
	}
	return darkest
}

// Brightest value in the square of side 2r+1 around x, y,
// pixels outside the frame are skipped
func maxValue(frame image.Image, x, y, r int) int {
	brightest := 0
	for j := -r; j <= r; j++ {
		for k := -r; k <= r; k++ {
			if inFrame(frame, x+j, y+k) {
				brightest = max(brightest, value(pixel(frame, x+j, y+k)))
			}
		}
	}
	return brightest
}
