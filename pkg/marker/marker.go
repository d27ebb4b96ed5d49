package marker

import (
	"image/color"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/ellipse"
)

// Stable handle of a spot, stays valid when other spots are deleted
type SpotID int

const NoSpot SpotID = -1

type slot struct {
	spot  ellipse.Ellipse
	count int
	live  bool
}

type Spot struct {
	ID      SpotID
	Ellipse ellipse.Ellipse
	Count   int
}

// One physical marker candidate: a head plate and the spots seen on it
type Marker struct {
	policy *Policy
	logger *slog.Logger

	head     ellipse.Ellipse
	has_head bool

	slots []slot

	center     SpotID
	color_spot SpotID
	other      SpotID

	color     color.RGBA
	has_color bool

	quadrangle     [4]r2.Vec
	has_quadrangle bool
}

func newMarker(policy *Policy, logger *slog.Logger) *Marker {
	return &Marker{
		policy:     policy,
		logger:     logger,
		center:     NoSpot,
		color_spot: NoSpot,
		other:      NoSpot,
	}
}

func newMarkerWithHead(policy *Policy, logger *slog.Logger, head ellipse.Ellipse) *Marker {
	m := newMarker(policy, logger)
	m.head, m.has_head = head, true
	return m
}

func (m *Marker) Family() Family { return m.policy.Family }

func (m *Marker) HasHead() bool         { return m.has_head }
func (m *Marker) Head() ellipse.Ellipse { return m.head }

func (m *Marker) OverlapsHead(e ellipse.Ellipse) bool {
	return m.has_head && m.head.Overlaps(e)
}

func (m *Marker) IsInsideHead(p r2.Vec) bool {
	return m.has_head && m.head.IsInside(p)
}

// Adopts head if there is none yet. An existing head is only replaced
// while its outline is in the preferred window and head is closer
// to the plate's aspect ratio
func (m *Marker) ModifyHead(head ellipse.Ellipse) {
	if !m.has_head {
		m.head, m.has_head = head, true
		return
	}
	if m.policy.HeadOutline.Contains(m.head.Outline()) &&
		math.Abs(m.head.Ratio()-m.policy.HeadRatio) > math.Abs(head.Ratio()-m.policy.HeadRatio) {
		m.head = head
	}
}

func (m *Marker) AddSpot(e ellipse.Ellipse) SpotID {
	return m.addSpot(e, 1)
}

func (m *Marker) addSpot(e ellipse.Ellipse, count int) SpotID {
	m.slots = append(m.slots, slot{spot: e, count: count, live: true})
	return SpotID(len(m.slots) - 1)
}

// Keeps the larger of both ellipses and counts the observation
func (m *Marker) ModifySpot(id SpotID, e ellipse.Ellipse) {
	m.mergeSpot(id, e, 1)
}

func (m *Marker) mergeSpot(id SpotID, e ellipse.Ellipse, count int) {
	if !m.valid(id) {
		return
	}
	s := &m.slots[id]
	if e.Outline() > s.spot.Outline() {
		s.spot = e
	}
	s.count += count
}

func (m *Marker) DeleteSpot(id SpotID) {
	if !m.valid(id) {
		return
	}
	m.slots[id].live = false
	for _, index := range []*SpotID{&m.center, &m.color_spot, &m.other} {
		if *index == id {
			*index = NoSpot
		}
	}
}

func (m *Marker) clearSpots() {
	for _, id := range m.spotIDs() {
		m.DeleteSpot(id)
	}
}

func (m *Marker) valid(id SpotID) bool {
	return id >= 0 && int(id) < len(m.slots) && m.slots[id].live
}

// First live spot, oldest first, whose center overlaps e's center
// and lies closer than the merge distance
func (m *Marker) OverlappingSpot(e ellipse.Ellipse) (SpotID, bool) {
	for _, id := range m.spotIDs() {
		spot := m.slots[id].spot
		if spot.Overlaps(e) && spot.Distance(e) < spotMergeDistance {
			return id, true
		}
	}
	return NoSpot, false
}

// First live spot containing p
func (m *Marker) SpotContaining(p r2.Vec) (SpotID, bool) {
	for _, id := range m.spotIDs() {
		if m.slots[id].spot.IsInside(p) {
			return id, true
		}
	}
	return NoSpot, false
}

func (m *Marker) spotIDs() []SpotID {
	ids := make([]SpotID, 0, len(m.slots))
	for i, s := range m.slots {
		if s.live {
			ids = append(ids, SpotID(i))
		}
	}
	return ids
}

// Live spots, oldest first
func (m *Marker) Spots() []Spot {
	spots := make([]Spot, 0, len(m.slots))
	for _, id := range m.spotIDs() {
		spots = append(spots, Spot{ID: id, Ellipse: m.slots[id].spot, Count: m.slots[id].count})
	}
	return spots
}

func (m *Marker) SpotCount() int {
	n := 0
	for _, s := range m.slots {
		if s.live {
			n++
		}
	}
	return n
}

func (m *Marker) HasSpots() bool { return m.SpotCount() > 0 }

func (m *Marker) Spot(id SpotID) (ellipse.Ellipse, bool) {
	if !m.valid(id) {
		return ellipse.Ellipse{}, false
	}
	return m.slots[id].spot, true
}

// Observation count, 0 for unknown spots
func (m *Marker) Count(id SpotID) int {
	if !m.valid(id) {
		return 0
	}
	return m.slots[id].count
}

func (m *Marker) CenterID() SpotID { return m.center }
func (m *Marker) ColorID() SpotID  { return m.color_spot }
func (m *Marker) OtherID() SpotID  { return m.other }

// Center spot, the head if there is none
func (m *Marker) CenterSpot() ellipse.Ellipse {
	if spot, ok := m.Spot(m.center); ok {
		return spot
	}
	return m.head
}

func (m *Marker) ColorSpot() ellipse.Ellipse {
	if spot, ok := m.Spot(m.color_spot); ok {
		return spot
	}
	return m.head
}

func (m *Marker) OtherSpot() ellipse.Ellipse {
	if spot, ok := m.Spot(m.other); ok {
		return spot
	}
	return m.head
}

func (m *Marker) Color() (color.RGBA, bool) { return m.color, m.has_color }

// Position reported to the tracker
func (m *Marker) Center() r2.Vec {
	if m.policy.Family == Japan {
		color_spot, ok_color := m.Spot(m.color_spot)
		other, ok_other := m.Spot(m.other)
		if ok_color && ok_other {
			return r2.Scale(.5, r2.Add(color_spot.Center(), other.Center()))
		}
		return m.head.Center()
	}
	return m.CenterSpot().Center()
}

func (m *Marker) Quadrangle() ([4]r2.Vec, bool) { return m.quadrangle, m.has_quadrangle }

// Keeps the quadrangle whose opposed corners are closer to right angles
func (m *Marker) ModifyQuadrangle(v [4]r2.Vec) {
	if !m.has_quadrangle || squareness(v) < squareness(m.quadrangle) {
		m.quadrangle, m.has_quadrangle = v, true
	}
}

func squareness(v [4]r2.Vec) float64 {
	return math.Abs(angleBetween(r2.Sub(v[3], v[2]), r2.Sub(v[0], v[3]))-math.Pi/2) +
		math.Abs(angleBetween(r2.Sub(v[1], v[0]), r2.Sub(v[2], v[1]))-math.Pi/2)
}

func angleBetween(a, b r2.Vec) float64 {
	n := r2.Norm(a) * r2.Norm(b)
	if n == 0 {
		return 0
	}
	return math.Acos(max(-1, min(1, r2.Dot(a, b)/n)))
}
