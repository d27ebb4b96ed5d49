package ellipse

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

const eps = 1e-9

func TestNormalizeRadii(t *testing.T) {
	for range 1000 {
		a, b := rand.Float64()*50, rand.Float64()*50
		angle := (rand.Float64() - 0.5) * 4 * math.Pi
		e := NewXY(10, 10, a, b, angle)
		if e.R1() < e.R2() {
			t.Fatalf("r1 %f < r2 %f", e.R1(), e.R2())
		}
		if e.Ratio() < 1 {
			t.Fatalf("Ratio %f < 1 for %s", e.Ratio(), e)
		}
		if e.Angle() < 0 || e.Angle() >= math.Pi {
			t.Fatalf("Angle %f out of [0, pi)", e.Angle())
		}
	}
}

func TestSwapRotatesAngle(t *testing.T) {
	e := NewXY(0, 0, 2, 5, 0)
	if e.R1() != 5 || e.R2() != 2 {
		t.Fatalf("Radii not swapped: %s", e)
	}
	if math.Abs(e.Angle()-math.Pi/2) > eps {
		t.Fatalf("Expected angle pi/2, got %f", e.Angle())
	}
	// long axis is vertical now
	if !e.IsPointInside(0, 4.9) || e.IsPointInside(4.9, 0) {
		t.Fatalf("Swapped ellipse has wrong orientation: %s", e)
	}
}

func TestIsInside(t *testing.T) {
	e := NewXY(3, 4, 10, 2, math.Pi/4)
	if !e.IsInside(e.Center()) {
		t.Fatalf("Center not inside")
	}
	// along the long axis
	d := r2.Vec{X: math.Cos(math.Pi / 4), Y: math.Sin(math.Pi / 4)}
	if !e.IsInside(r2.Add(e.Center(), r2.Scale(9.9, d))) {
		t.Fatalf("Point on long axis not inside")
	}
	if e.IsInside(r2.Add(e.Center(), r2.Scale(10.1, d))) {
		t.Fatalf("Point beyond long axis inside")
	}
	// along the short axis
	n := r2.Vec{X: -d.Y, Y: d.X}
	if !e.IsInside(r2.Add(e.Center(), r2.Scale(1.9, n))) {
		t.Fatalf("Point on short axis not inside")
	}
	if e.IsInside(r2.Add(e.Center(), r2.Scale(2.1, n))) {
		t.Fatalf("Point beyond short axis inside")
	}
	for range 1000 {
		angle := rand.Float64() * 2 * math.Pi
		p := r2.Add(e.Center(), r2.Vec{X: 10.01 * math.Cos(angle), Y: 10.01 * math.Sin(angle)})
		if e.IsInside(p) {
			t.Fatalf("Point farther than r1 inside: %v", p)
		}
	}
}

func TestDegenerate(t *testing.T) {
	e := NewXY(1, 1, 5, 0, 0)
	if !e.IsPointInside(1, 1) {
		t.Fatalf("Degenerate ellipse must contain its center")
	}
	if e.IsPointInside(2, 1) {
		t.Fatalf("Degenerate ellipse contains a point other than center")
	}
	if !math.IsInf(e.Ratio(), 1) {
		t.Fatalf("Expected infinite ratio, got %f", e.Ratio())
	}
	p := NewXY(0, 0, 0, 0, 0)
	if p.Ratio() != 1 || p.Outline() != 0 || p.Area() != 0 {
		t.Fatalf("Point ellipse: ratio %f outline %f area %f", p.Ratio(), p.Outline(), p.Area())
	}
}

func TestOutline(t *testing.T) {
	circle := NewXY(0, 0, 3, 3, 0)
	if math.Abs(circle.Outline()-2*math.Pi*3) > eps {
		t.Fatalf("Circle outline %f, expected %f", circle.Outline(), 2*math.Pi*3)
	}
	prev := 0.0
	for r := 1.0; r < 20; r += 0.5 {
		o := NewXY(0, 0, r, 1, 0).Outline()
		if o <= prev {
			t.Fatalf("Outline not monotonic in r1 at %f", r)
		}
		prev = o
	}
	prev = 0
	for r := 0.0; r <= 20; r += 0.5 {
		o := NewXY(0, 0, 20, r, 0).Outline()
		if o <= prev {
			t.Fatalf("Outline not monotonic in r2 at %f", r)
		}
		prev = o
	}
}

func TestFoci(t *testing.T) {
	e := NewXY(0, 0, 5, 3, 0)
	if math.Abs(e.FocalDistance()-4) > eps {
		t.Fatalf("Focal distance %f", e.FocalDistance())
	}
	f1, f2 := e.Focus1(), e.Focus2()
	if math.Abs(f1.X-4) > eps || math.Abs(f2.X+4) > eps {
		t.Fatalf("Foci %v %v", f1, f2)
	}
}

func TestOverlaps(t *testing.T) {
	big := NewXY(0, 0, 10, 10, 0)
	small := NewXY(8, 0, 1, 1, 0)
	far := NewXY(30, 0, 1, 1, 0)
	if !big.Overlaps(small) || !small.Overlaps(big) {
		t.Fatalf("Overlap must be symmetric")
	}
	if big.MutuallyContains(small) {
		t.Fatalf("Small ellipse does not contain big center")
	}
	if big.Overlaps(far) {
		t.Fatalf("Far ellipse overlaps")
	}
	if !big.MutuallyContains(NewXY(0.5, 0, 2, 2, 0)) {
		t.Fatalf("Concentric ellipses must contain each other")
	}
}
