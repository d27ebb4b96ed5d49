package marker

import (
	"image"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/ellipse"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

type candidate struct {
	e     ellipse.Ellipse
	black bool
}

var frameSize = image.Pt(80, 60)

func feed(t *testing.T, l *List, candidates []candidate) {
	t.Helper()
	for _, c := range candidates {
		if !l.MayAddEllipse(frameSize, c.e, c.black) {
			t.Fatalf("Ellipse %v rejected", c.e)
		}
	}
}

func TestMayAddEllipseClassifies(t *testing.T) {
	l := NewList(CasernPolicy(), quiet())

	tests := []struct {
		e     ellipse.Ellipse
		black bool
		added bool
	}{
		{circle(30, 30, 3), true, true},
		{circle(30, 30, 20), false, true},
		// spot sized but white inside
		{circle(50, 30, 3), false, false},
		// head sized but black inside
		{circle(50, 30, 20), true, false},
		// too elongated for a spot
		{ellipse.NewXY(50, 30, 8, 3, 0), true, false},
		// spot too close to the border
		{circle(78, 30, 3), true, false},
		{circle(30, 30, 50), false, false},
	}
	for i, test := range tests {
		if added := l.MayAddEllipse(frameSize, test.e, test.black); added != test.added {
			t.Fatalf("Case %d: expected %v, got %v", i, test.added, added)
		}
	}
	if l.Len() != 1 {
		t.Fatalf("Expected one marker, got %d", l.Len())
	}
}

func casernCandidates() (head, s1, s2, s3, s1b, s2b candidate) {
	head = candidate{ellipse.NewXY(30, 30, 30, 20, 0), false}
	s1 = candidate{circle(20, 30, 3), true}
	s2 = candidate{circle(30, 30, 3), true}
	s3 = candidate{circle(40, 30, 3), true}
	s1b = candidate{circle(20, 30, 3.5), true}
	s2b = candidate{circle(30.5, 30, 3), true}
	return
}

func TestOrganizeOrderIndependent(t *testing.T) {
	img := frame(80, 60, dot{20, 30, 1, red}, dot{40, 30, 1, dark}, dot{30, 30, 1, dark})
	head, s1, s2, s3, s1b, s2b := casernCandidates()

	orders := [][]candidate{
		{head, s1, s2, s3, s1b, s2b},
		{s3, s1, head, s2, s2b, s1b},
		{head, s3, s1b, s2, s1, s2b},
	}

	var want []trackpoint.TrackPoint
	for i, order := range orders {
		l := NewList(CasernPolicy(), quiet())
		feed(t, l, order)
		l.Organize(img, false)

		points := l.ToCrossList(true)
		if len(points) != 1 {
			t.Fatalf("Order %d: expected one point, got %d", i, len(points))
		}
		if l.Markers()[0].SpotCount() != 3 {
			t.Fatalf("Order %d: expected 3 spots, got %d", i, l.Markers()[0].SpotCount())
		}
		if i == 0 {
			want = points
			continue
		}
		got_color, _ := points[0].ColorPoint()
		want_color, _ := want[0].ColorPoint()
		if points[0].Pixel() != want[0].Pixel() || got_color != want_color {
			t.Fatalf("Order %d: got %s, want %s", i, points[0], want[0])
		}
	}

	if want[0].Quality() != trackpoint.QualityBest {
		t.Fatalf("Expected best quality, got %d", want[0].Quality())
	}
	if col, _ := want[0].Color(); col != red {
		t.Fatalf("Expected red, got %v", col)
	}
	if cp, _ := want[0].ColorPoint(); cp != (r2.Vec{X: 20, Y: 30}) {
		t.Fatalf("Expected color point at the red spot, got %v", cp)
	}
}

func TestSpotOverlappingHeadJoinsMarker(t *testing.T) {
	l := NewList(CasernPolicy(), quiet())
	head, s1, _, _, _, _ := casernCandidates()
	feed(t, l, []candidate{head, s1})
	if l.Len() != 1 || l.Markers()[0].SpotCount() != 1 {
		t.Fatalf("Expected a single marker with one spot, got %d markers", l.Len())
	}
}

func TestHeadOnlyMarker(t *testing.T) {
	l := NewList(CasernPolicy(), quiet())
	feed(t, l, []candidate{{circle(30, 30, 20), false}, {circle(70, 10, 3), true}})
	l.Organize(frame(80, 60), false)

	if l.Len() != 1 {
		t.Fatalf("Expected the headless marker to be removed, got %d markers", l.Len())
	}
	if points := l.ToCrossList(true); len(points) != 0 {
		t.Fatalf("Expected no points when ignoring markers without spots, got %d", len(points))
	}
	points := l.ToCrossList(false)
	if len(points) != 1 || points[0].Quality() != trackpoint.QualityWorst || points[0].HasColor() {
		t.Fatalf("Expected one worst quality point without color, got %v", points)
	}
	if points[0].Pixel() != (r2.Vec{X: 30, Y: 30}) {
		t.Fatalf("Expected head center, got %v", points[0].Pixel())
	}
}

func TestOverlappingHeadsMerge(t *testing.T) {
	l := NewList(CasernPolicy(), quiet())

	// grown head reaching both other markers
	grown := newMarkerWithHead(&l.policy, l.logger, ellipse.NewXY(45, 30, 30, 20, 0))
	grown.AddSpot(circle(40, 30, 3))
	l.append(grown)

	left := newMarkerWithHead(&l.policy, l.logger, circle(30, 30, 14))
	left.AddSpot(circle(50, 30, 3))
	l.append(left)
	l.append(newMarkerWithHead(&l.policy, l.logger, circle(60, 30, 14)))

	l.mergeOverlapping()

	if l.Len() != 1 {
		t.Fatalf("Expected all markers merged into one, got %d", l.Len())
	}
	if l.Markers()[0].SpotCount() != 2 {
		t.Fatalf("Expected every spot transferred, got %d", l.Markers()[0].SpotCount())
	}
}

func TestJapanHeadCollectsSpots(t *testing.T) {
	l := NewList(JapanPolicy(40), quiet())

	// two spots far enough apart to start their own markers
	l.MayAddEllipse(image.Pt(100, 100), circle(45, 50, 4), true)
	l.MayAddEllipse(image.Pt(100, 100), circle(55, 50, 4), true)
	if l.Len() != 2 {
		t.Fatalf("Expected 2 headless markers, got %d", l.Len())
	}

	l.MayAddEllipse(image.Pt(100, 100), ellipse.NewXY(50, 50, 30, 21, 0), false)
	if l.Len() != 1 {
		t.Fatalf("Expected the head to collect both markers, got %d", l.Len())
	}
	if l.Markers()[0].SpotCount() != 2 {
		t.Fatalf("Expected 2 spots, got %d", l.Markers()[0].SpotCount())
	}

	l.Organize(frame(100, 100, dot{45, 50, 1, red}, dot{55, 50, 1, dark}), false)
	points := l.ToCrossList(false)
	if len(points) != 1 {
		t.Fatalf("Expected one point, got %d", len(points))
	}
	if points[0].Pixel() != (r2.Vec{X: 50, Y: 50}) {
		t.Fatalf("Expected the middle of both spots, got %v", points[0].Pixel())
	}
	if cp, ok := points[0].ColorPoint(); !ok || cp != (r2.Vec{X: 45, Y: 50}) {
		t.Fatalf("Expected color point at the red spot, got %v", cp)
	}
	if col, ok := points[0].Color(); !ok || col != red {
		t.Fatalf("Expected the red marker color, got %v", col)
	}
}

func TestJapanDropsDistantSpots(t *testing.T) {
	l := NewList(JapanPolicy(40), quiet())
	m := newMarkerWithHead(&l.policy, l.logger, ellipse.NewXY(50, 50, 39, 27, 0))
	m.AddSpot(circle(15, 50, 4))
	m.AddSpot(circle(85, 50, 4))
	l.append(m)

	l.Organize(frame(100, 100, dot{15, 50, 1, red}, dot{85, 50, 1, dark}), false)
	if l.Len() != 0 {
		t.Fatalf("Expected the marker to be dropped, got %d", l.Len())
	}
}

func TestHermesCrossList(t *testing.T) {
	l := NewList(HermesPolicy(), quiet())
	size := image.Pt(60, 60)
	l.MayAddEllipse(size, circle(30, 30, 15), false)
	l.MayAddEllipse(size, circle(30, 30, 3), true)
	l.Organize(frame(60, 60, dot{30, 30, 2, dark}), false)

	points := l.ToCrossList(true)
	if len(points) != 1 || points[0].Quality() != trackpoint.QualityBest {
		t.Fatalf("Expected one best quality point, got %v", points)
	}
	if points[0].HasColor() || points[0].HasColorPoint() {
		t.Fatalf("Hermes points carry no color")
	}
}

func TestMayAddQuadrangle(t *testing.T) {
	l := NewList(CasernPolicy(), quiet())
	l.MayAddEllipse(frameSize, circle(30, 30, 20), false)

	inside := [4]r2.Vec{{X: 25, Y: 25}, {X: 35, Y: 25}, {X: 35, Y: 35}, {X: 25, Y: 35}}
	outside := [4]r2.Vec{{X: 65, Y: 5}, {X: 75, Y: 5}, {X: 75, Y: 15}, {X: 65, Y: 15}}
	if !l.MayAddQuadrangle(inside) {
		t.Fatalf("Expected quadrangle inside the head to be added")
	}
	if l.MayAddQuadrangle(outside) {
		t.Fatalf("Expected quadrangle outside every head to be rejected")
	}
	if _, ok := l.Markers()[0].Quadrangle(); !ok {
		t.Fatalf("Expected the marker to hold a quadrangle")
	}
}

func TestPolicyFor(t *testing.T) {
	if PolicyFor(Japan, 40).Head != (Bounds{20, 40}) {
		t.Fatalf("Japan head bounds must scale with the head size")
	}
	if PolicyFor(Hermes, 0).TargetSpots != 1 || PolicyFor(Casern, 0).TargetSpots != 3 {
		t.Fatalf("Unexpected target spot counts")
	}
}
