package marker

import (
	"image"
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/ellipse"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/trackpoint"
)

// Markers of one frame. Ellipses are fed in threshold order with
// MayAddEllipse, Organize finalizes the frame
type List struct {
	policy  Policy
	logger  *slog.Logger
	markers []*Marker
}

func NewList(policy Policy, logger *slog.Logger) *List {
	if logger == nil {
		logger = slog.Default()
	}
	return &List{policy: policy, logger: logger}
}

func (l *List) Policy() Policy     { return l.policy }
func (l *List) Len() int           { return len(l.markers) }
func (l *List) Markers() []*Marker { return l.markers }

func (l *List) append(m *Marker) { l.markers = append(l.markers, m) }

// Sorts e into the markers as spot or head. size is the size of the
// thresholded frame e was fitted in. False if e is neither
func (l *List) MayAddEllipse(size image.Point, e ellipse.Ellipse, black_inside bool) bool {
	switch {
	case l.policy.IsSpot(e, black_inside, size):
		l.addSpot(e)
		return true
	case l.policy.IsHead(e, black_inside):
		l.addHead(e)
		return true
	default:
		return false
	}
}

func (l *List) addSpot(e ellipse.Ellipse) {
	for _, m := range l.markers {
		if id, ok := m.OverlappingSpot(e); ok {
			m.ModifySpot(id, e)
			return
		}
		if m.OverlapsHead(e) {
			m.AddSpot(e)
			return
		}
	}
	m := newMarker(&l.policy, l.logger)
	m.AddSpot(e)
	l.append(m)
}

func (l *List) addHead(e ellipse.Ellipse) {
	var adopter *Marker
	for _, m := range l.markers {
		if m.OverlapsHead(e) {
			m.ModifyHead(e)
			adopter = m
			break
		}
		if !m.HasHead() && spotInside(m, e) {
			m.ModifyHead(e)
			adopter = m
			break
		}
	}

	if adopter == nil {
		l.append(newMarkerWithHead(&l.policy, l.logger, e))
		return
	}

	if l.policy.Family != Japan {
		return
	}

	// spots of the Japan plate may have started markers of their own
	for _, m := range l.markers {
		if m == adopter || m.HasHead() {
			continue
		}
		for _, spot := range m.Spots() {
			if e.IsInside(spot.Ellipse.Center()) {
				adopter.addSpot(spot.Ellipse, spot.Count)
				m.DeleteSpot(spot.ID)
			}
		}
	}
	l.markers = slices.DeleteFunc(l.markers, func(m *Marker) bool {
		return m != adopter && !m.HasHead() && !m.HasSpots()
	})
}

func spotInside(m *Marker, e ellipse.Ellipse) bool {
	for _, spot := range m.Spots() {
		if e.IsInside(spot.Ellipse.Center()) {
			return true
		}
	}
	return false
}

// Assigns a plate outline to the first marker whose head contains its middle
func (l *List) MayAddQuadrangle(v [4]r2.Vec) bool {
	middle := r2.Scale(.25, r2.Add(r2.Add(v[0], v[1]), r2.Add(v[2], v[3])))
	for _, m := range l.markers {
		if m.IsInsideHead(middle) {
			m.ModifyQuadrangle(v)
			return true
		}
	}
	return false
}

// Moves the spots of from into to, merging spots that overlap
func transferSpots(to, from *Marker) {
	for _, spot := range from.Spots() {
		if id, ok := to.OverlappingSpot(spot.Ellipse); ok {
			to.mergeSpot(id, spot.Ellipse, spot.Count)
		} else {
			to.addSpot(spot.Ellipse, spot.Count)
		}
	}
}

// Heads grow over the threshold sweep, markers whose heads overlap
// now are merged until none do
func (l *List) mergeOverlapping() {
	for merged := true; merged; {
		merged = false
	search:
		for i, a := range l.markers {
			if !a.HasHead() {
				continue
			}
			for j := i + 1; j < len(l.markers); j++ {
				b := l.markers[j]
				if !b.HasHead() || !a.OverlapsHead(b.Head()) {
					continue
				}
				a.ModifyHead(b.Head())
				transferSpots(a, b)
				l.markers = slices.Delete(l.markers, j, j+1)
				merged = true
				break search
			}
		}
	}
}

// Merges, organizes every marker and drops the ones without head
func (l *List) Organize(frame image.Image, auto_wb bool) {
	l.markers = slices.DeleteFunc(l.markers, func(m *Marker) bool { return !m.HasHead() })
	l.mergeOverlapping()

	for _, m := range l.markers {
		m.Organize(frame, auto_wb)
	}

	if l.policy.Family == Japan {
		l.markers = slices.DeleteFunc(l.markers, func(m *Marker) bool {
			spots := m.Spots()
			if len(spots) < 2 {
				return true
			}
			return spots[0].Ellipse.Distance(spots[1].Ellipse) > l.policy.MaxSpotDistance
		})
	}
}

// One detection point per marker. Markers without spots give the head
// center at worst quality unless ignore_without_marker is set
func (l *List) ToCrossList(ignore_without_marker bool) []trackpoint.TrackPoint {
	points := make([]trackpoint.TrackPoint, 0, len(l.markers))
	for _, m := range l.markers {
		if !m.HasHead() {
			continue
		}
		if !m.HasSpots() {
			if !ignore_without_marker {
				points = append(points, trackpoint.New(m.Center(), trackpoint.QualityWorst))
			}
			continue
		}
		switch l.policy.Family {
		case Hermes:
			points = append(points, trackpoint.New(m.Center(), trackpoint.QualityBest))
		default:
			col, _ := m.Color()
			points = append(points,
				trackpoint.NewWithColor(m.Center(), trackpoint.QualityBest, m.ColorSpot().Center(), col))
		}
	}
	return points
}
