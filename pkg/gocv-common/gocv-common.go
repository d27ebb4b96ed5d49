package gocvcommon

import (
	"image"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
)

// Trims rect to an image of cols x rows. With even the width and height
// are rounded down to even numbers
func ClampRect(rect image.Rectangle, cols, rows int, even bool) image.Rectangle {
	x, y, w, h := rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy()

	if x < 0 {
		w += x
		x = 0
	} else if x > cols {
		w = 0
		x = cols
	}
	if x+w > cols {
		w = cols - x
	}
	if y < 0 {
		h += y
		y = 0
	} else if y > rows {
		h = 0
		y = rows
	}
	if y+h > rows {
		h = rows - y
	}

	w = max(0, w)
	h = max(0, h)
	if even {
		w -= w % 2
		h -= h % 2
	}
	return image.Rect(x, y, x+w, y+h)
}

// Single channel gray copy of img, 3 channel input is converted with code
func ToGray(img gocv.Mat, code gocv.ColorConversionCode) gocv.Mat {
	gray := gocv.NewMat()
	if img.Channels() == 3 {
		gocv.CvtColor(img, &gray, code)
	} else {
		img.CopyTo(&gray)
	}
	return gray
}

func Size(img gocv.Mat) image.Point {
	return image.Pt(img.Cols(), img.Rows())
}

// Signed contour area, positive for clockwise contours in image
// coordinates which findContours yields for holes
func OrientedArea(contour []image.Point) float64 {
	if len(contour) < 3 {
		return 0
	}
	var sum float64
	prev := contour[len(contour)-1]
	for _, p := range contour {
		sum += float64(prev.X)*float64(p.Y) - float64(prev.Y)*float64(p.X)
		prev = p
	}
	return sum / 2
}

// Area centroid of the contour polygon, false for degenerate contours
func Centroid(contour []image.Point) (r2.Vec, bool) {
	a := OrientedArea(contour)
	if a == 0 {
		return r2.Vec{}, false
	}
	var cx, cy float64
	prev := contour[len(contour)-1]
	for _, p := range contour {
		cross := float64(prev.X)*float64(p.Y) - float64(prev.Y)*float64(p.X)
		cx += float64(prev.X+p.X) * cross
		cy += float64(prev.Y+p.Y) * cross
		prev = p
	}
	return r2.Vec{X: cx / (6 * a), Y: cy / (6 * a)}, true
}
