package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

func TestPointColor(t *testing.T) {
	assert.Equal(t, best_color, PointColor(trackpoint.New(r2.Vec{}, trackpoint.QualityBest)))
	assert.Equal(t, prob_color, PointColor(trackpoint.New(r2.Vec{}, trackpoint.QualityProbable)))
	assert.Equal(t, worst_color, PointColor(trackpoint.New(r2.Vec{}, trackpoint.QualityWorst)))

	red := color.RGBA{R: 255, A: 255}
	assert.Equal(t, red, PointColor(trackpoint.NewWithColor(r2.Vec{}, trackpoint.QualityWorst, r2.Vec{}, red)))

	a, b := trackpoint.New(r2.Vec{}, trackpoint.QualityBest), trackpoint.New(r2.Vec{}, trackpoint.QualityBest)
	a.SetMarkerID(1)
	b.SetMarkerID(2)
	assert.NotEqual(t, PointColor(a), PointColor(b))
	assert.NotEqual(t, best_color, PointColor(a))
}

func TestDraw(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 100, 100, gocv.MatTypeCV8UC3)
	defer img.Close()

	trail := NewTrail(2)
	trail.Push([]r2.Vec{{X: 20, Y: 20}})
	points := []trackpoint.TrackPoint{trackpoint.New(r2.Vec{X: 50, Y: 50}, trackpoint.QualityBest)}
	Draw(&img, image.Rect(5, 5, 95, 95), points, trail)

	// BGR layout: the point circle is green, the trail dot gray
	ring := img.GetVecbAt(50, 50+point_radius)
	require.Len(t, ring, 3)
	assert.Equal(t, uint8(255), ring[1])
	assert.Equal(t, uint8(0), ring[2])

	dot := img.GetVecbAt(20, 20)
	assert.Equal(t, uint8(0xc0), dot[0])
	assert.Equal(t, uint8(0), img.GetVecbAt(50, 50)[1], "circle is not filled")
	assert.Equal(t, roi_color.B, img.GetVecbAt(5, 50)[0])
}
