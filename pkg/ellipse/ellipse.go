package ellipse

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Ellipse fitted to a contour. r1 is always the larger radius,
// angle points from the positive x axis to the r1 axis and lies in [0, pi)
type Ellipse struct {
	center r2.Vec
	r1, r2 float64
	angle  float64
}

func New(center r2.Vec, radius1, radius2, angle float64) Ellipse {
	radius1, radius2 = math.Abs(radius1), math.Abs(radius2)
	if radius1 < radius2 {
		radius1, radius2 = radius2, radius1
		angle += math.Pi / 2
	}
	return Ellipse{
		center: center,
		r1:     radius1,
		r2:     radius2,
		angle:  normalizeAngle(angle),
	}
}

func NewXY(x, y, radius1, radius2, angle float64) Ellipse {
	return New(r2.Vec{X: x, Y: y}, radius1, radius2, angle)
}

func normalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, math.Pi)
	if angle < 0 {
		angle += math.Pi
	}
	// Mod of a tiny negative number can round up to pi itself
	if angle >= math.Pi {
		angle = 0
	}
	return angle
}

func (e Ellipse) Center() r2.Vec  { return e.center }
func (e Ellipse) X() float64      { return e.center.X }
func (e Ellipse) Y() float64      { return e.center.Y }
func (e Ellipse) R1() float64     { return e.r1 }
func (e Ellipse) R2() float64     { return e.r2 }
func (e Ellipse) Angle() float64  { return e.angle }
func (e Ellipse) MeanR() float64  { return (e.r1 + e.r2) / 2 }
func (e Ellipse) Area() float64   { return math.Pi * e.r1 * e.r2 }
func (e Ellipse) IsValid() bool   { return e.r1 > 0 && e.r2 > 0 }
func (e Ellipse) String() string {
	return fmt.Sprintf("(%.2f, %.2f) r1=%.2f r2=%.2f a=%.3f", e.center.X, e.center.Y, e.r1, e.r2, e.angle)
}

// Ramanujan's first approximation of the circumference.
// Monotonic in both radii, unlike pi*(1.5(a+b) - sqrt(ab)) which
// decreases in r2 for ratios above 9
func (e Ellipse) Outline() float64 {
	return math.Pi * (3*(e.r1+e.r2) - math.Sqrt((3*e.r1+e.r2)*(e.r1+3*e.r2)))
}

// Always >= 1
func (e Ellipse) Ratio() float64 {
	if e.r2 == 0 {
		if e.r1 == 0 {
			return 1
		}
		return math.Inf(1)
	}
	return e.r1 / e.r2
}

func (e Ellipse) IsNearlyCircle() bool {
	return e.Ratio() < 1.3
}

func (e Ellipse) FocalDistance() float64 {
	return math.Sqrt(e.r1*e.r1 - e.r2*e.r2)
}

func (e Ellipse) Focus1() r2.Vec {
	f := e.FocalDistance()
	return r2.Add(e.center, r2.Vec{X: f * math.Cos(e.angle), Y: f * math.Sin(e.angle)})
}

func (e Ellipse) Focus2() r2.Vec {
	f := e.FocalDistance()
	return r2.Sub(e.center, r2.Vec{X: f * math.Cos(e.angle), Y: f * math.Sin(e.angle)})
}

// Point on or inside the boundary. A degenerate ellipse
// only contains its exact center
func (e Ellipse) IsInside(p r2.Vec) bool {
	d := r2.Sub(p, e.center)
	if e.r2 == 0 {
		return d.X == 0 && d.Y == 0
	}
	cos, sin := math.Cos(e.angle), math.Sin(e.angle)
	u := (d.X*cos + d.Y*sin) / e.r1
	v := (-d.X*sin + d.Y*cos) / e.r2
	return u*u+v*v <= 1
}

func (e Ellipse) IsPointInside(x, y float64) bool {
	return e.IsInside(r2.Vec{X: x, Y: y})
}

// Mutual center containment, not region intersection
func (e Ellipse) Overlaps(other Ellipse) bool {
	return e.IsInside(other.center) || other.IsInside(e.center)
}

// Both centers lie inside the other ellipse
func (e Ellipse) MutuallyContains(other Ellipse) bool {
	return e.IsInside(other.center) && other.IsInside(e.center)
}

func (e Ellipse) Distance(other Ellipse) float64 {
	return r2.Norm(r2.Sub(e.center, other.center))
}
