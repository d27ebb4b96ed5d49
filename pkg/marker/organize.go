package marker

import (
	"cmp"
	"image"
	"image/color"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Reduces the collected spots to the marker reading. Afterwards the marker
// holds either no spot or exactly the family's target count
func (m *Marker) Organize(frame image.Image, auto_wb bool) {
	if !m.HasSpots() {
		return
	}

	m.dedupSpots()

	if m.policy.Family == Hermes {
		m.organizeHermes(frame)
		return
	}

	m.pruneRare()
	if !m.HasSpots() {
		return
	}

	m.pruneBright(frame)

	if m.policy.Collinear {
		m.keepBestLine()
	}

	if m.SpotCount() < m.policy.TargetSpots {
		m.clearSpots()
		return
	}

	col, other := m.deriveColor(frame)

	if m.policy.HueGate != nil && !m.policy.HueGate.Contains(hue(col)) {
		m.clearSpots()
		return
	}

	if auto_wb && m.color_spot != NoSpot && m.other != NoSpot {
		col, other = m.whiteBalance(frame, col, other)
	}

	if math.Abs(float64(value(col)-value(other))) < m.policy.BrightnessTie {
		if m.policy.TieByRadius {
			col = m.repickByRadius(col, other)
		} else {
			center := m.Center()
			m.logger.Warn("Both spots have nearly the same color", "x", center.X, "y", center.Y)
		}
	}

	m.color, m.has_color = col, true
}

// Merges spots whose centers overlap until none do, the larger
// outline survives and the observations add up
func (m *Marker) dedupSpots() {
	for merged := true; merged; {
		merged = false
		ids := m.spotIDs()
	search:
		for a, i := range ids {
			for _, j := range ids[a+1:] {
				if m.slots[i].spot.Overlaps(m.slots[j].spot) {
					m.mergeSpot(i, m.slots[j].spot, m.slots[j].count)
					m.DeleteSpot(j)
					merged = true
					break search
				}
			}
		}
	}
}

// Drops rarely seen spots: the smallest threshold leaving at most
// maxPrune spots seen more often than it
func (m *Marker) pruneRare() {
	threshold := 0
	for count := maxPrune + 1; count > maxPrune; {
		threshold++
		count = 0
		for _, id := range m.spotIDs() {
			if m.slots[id].count > threshold {
				count++
			}
		}
	}
	for _, id := range m.spotIDs() {
		if m.slots[id].count < threshold {
			m.DeleteSpot(id)
		}
	}
}

func (m *Marker) darkness(frame image.Image, id SpotID) int {
	spot := m.slots[id].spot
	r := m.policy.DarkRadius
	if r == 0 {
		r = round(spot.MeanR())
	}
	return minValue(frame, round(spot.X()), round(spot.Y()), r)
}

// Keeps the DarkestN darkest spots, older spots win ties
func (m *Marker) pruneBright(frame image.Image) {
	ids := m.spotIDs()
	if len(ids) <= m.policy.DarkestN {
		return
	}
	values := make(map[SpotID]int, len(ids))
	for _, id := range ids {
		values[id] = m.darkness(frame, id)
	}
	slices.SortStableFunc(ids, func(a, b SpotID) int { return cmp.Compare(values[a], values[b]) })
	for _, id := range ids[m.policy.DarkestN:] {
		m.DeleteSpot(id)
	}
}

// Distance of p to the line through a and b
func distanceToLine(p, a, b r2.Vec) float64 {
	d := r2.Sub(b, a)
	n := r2.Norm(d)
	if n == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	v := r2.Sub(p, a)
	return math.Abs(d.X*v.Y-d.Y*v.X) / n
}

// Searches the spot triple lying best on a line with its middle spot in
// the middle of the ends. Every other spot is deleted, no line deletes all
func (m *Marker) keepBestLine() {
	ids := m.spotIDs()

	line := [3]SpotID{NoSpot, NoSpot, NoSpot}
	center := NoSpot
	best_line, best_middle := 1000., 1000.

	big := func(id SpotID) bool { return m.slots[id].spot.Outline() > minLineOutline }
	at := func(id SpotID) r2.Vec { return m.slots[id].spot.Center() }

	// candidate middle spot c between the ends a and b
	middle := func(a, b, c SpotID) bool {
		deviation := r2.Norm(r2.Sub(r2.Scale(.5, r2.Add(at(a), at(b))), at(c)))
		if deviation < maxLineError && deviation < best_middle &&
			r2.Norm(r2.Sub(at(a), at(b))) > minLineLength &&
			big(a) && big(b) {
			best_middle = deviation
			center = c
			return true
		}
		return false
	}

	for x, i := range ids {
		for y, j := range ids[x+1:] {
			for _, k := range ids[x+y+2:] {
				two_big := (big(i) && big(j)) || (big(i) && big(k)) || (big(j) && big(k))
				if !two_big {
					continue
				}
				residual := distanceToLine(at(i), at(j), at(k))
				if residual >= best_line || residual >= maxLineError {
					continue
				}
				found := middle(i, j, k)
				found = middle(j, k, i) || found
				found = middle(k, i, j) || found
				if found {
					line = [3]SpotID{i, j, k}
					best_line = residual
				}
			}
		}
	}

	for _, id := range ids {
		if !slices.Contains(line[:], id) {
			m.DeleteSpot(id)
		}
	}
	m.center = center
	if line[0] == NoSpot {
		m.center = NoSpot
	}
}

// Brightest spot apart from the center becomes the color spot. The
// 3x3 neighbourhood is weighted toward its middle since dark edges
// blur into the white plate
func (m *Marker) deriveColor(frame image.Image) (color.RGBA, color.RGBA) {
	var col, other color.RGBA
	color_set := false
	m.color_spot, m.other = NoSpot, NoSpot

	for _, id := range m.spotIDs() {
		if id == m.center {
			continue
		}
		spot := m.slots[id].spot
		cx, cy := round(spot.X()), round(spot.Y())
		if !color_set {
			color_set = true
			col, m.color_spot = pixel(frame, cx, cy), id
		} else {
			other, m.other = pixel(frame, cx, cy), id
		}
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				p := pixel(frame, cx+j, cy+k)
				weight := 1 + .5*float64(abs(j)+abs(k))
				if float64(value(p))/weight > float64(value(col)) {
					if id != m.color_spot {
						other, m.other = col, m.color_spot
					}
					col, m.color_spot = p, id
				}
			}
		}
	}
	return col, other
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Scales both colors so the plate beside the color spot turns white. The
// reference points sit perpendicular to the color to other spot baseline
func (m *Marker) whiteBalance(frame image.Image, col, other color.RGBA) (color.RGBA, color.RGBA) {
	c := m.slots[m.color_spot].spot.Center()
	o := m.slots[m.other].spot.Center()
	offset := r2.Scale(whiteOffset, r2.Vec{X: c.Y - o.Y, Y: o.X - c.X})

	var sum [3]int
	for _, ref := range []r2.Vec{r2.Add(c, offset), r2.Sub(c, offset)} {
		x, y := round(ref.X), round(ref.Y)
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				p := pixel(frame, x+j, y+k)
				sum[0] += int(p.R)
				sum[1] += int(p.G)
				sum[2] += int(p.B)
			}
		}
	}
	avg := [3]int{sum[0] / 18, sum[1] / 18, sum[2] / 18}
	if avg[0] == 0 || avg[1] == 0 || avg[2] == 0 {
		m.logger.Warn("White is too dark for white balance", "x", c.X, "y", c.Y)
		return col, other
	}

	scale := func(v uint8, white int) uint8 {
		return uint8(math.Min(255./float64(white)*float64(v), 255))
	}
	balance := func(c color.RGBA) color.RGBA {
		return color.RGBA{R: scale(c.R, avg[0]), G: scale(c.G, avg[1]), B: scale(c.B, avg[2]), A: c.A}
	}
	return balance(col), balance(other)
}

// Nearly equal colors hint at a monochrome marker, the spot with
// the larger radius is the color spot then
func (m *Marker) repickByRadius(col, other color.RGBA) color.RGBA {
	widest, widest_r := NoSpot, 0.
	for _, id := range m.spotIDs() {
		if id == m.center {
			continue
		}
		if r := m.slots[id].spot.MeanR(); r > widest_r {
			widest, widest_r = id, r
		}
	}
	if widest != NoSpot && widest != m.color_spot {
		m.other, m.color_spot = m.color_spot, widest
		return other
	}
	return col
}

// Only the most often seen, darkest spot with enough
// contrast to its surroundings remains
func (m *Marker) organizeHermes(frame image.Image) {
	most := 0
	for _, id := range m.spotIDs() {
		most = max(most, m.slots[id].count)
	}
	for _, id := range m.spotIDs() {
		if m.slots[id].count < most {
			m.DeleteSpot(id)
		}
	}

	m.pruneBright(frame)

	ids := m.spotIDs()
	if len(ids) != 1 {
		return
	}
	spot := m.slots[ids[0]].spot
	cx, cy, r := round(spot.X()), round(spot.Y()), round(spot.MeanR())
	if maxValue(frame, cx, cy, 2*r)-minValue(frame, cx, cy, r) < m.policy.MinContrast {
		m.DeleteSpot(ids[0])
		return
	}
	m.center = ids[0]
}
