package marker

import (
	"image"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/ellipse"
)

type Family uint8

const (
	// head plate with a line of three spots: bullet, cross and color
	Casern Family = iota
	// two dark spots on a plate sized relative to the head
	Japan
	// single black dot on a white plate
	Hermes
)

func (f Family) String() string {
	switch f {
	case Casern:
		return "casern"
	case Japan:
		return "japan"
	case Hermes:
		return "hermes"
	default:
		return "unknown"
	}
}

// Exclusive on both ends
type Bounds struct {
	Min, Max float64
}

func (b Bounds) Contains(v float64) bool { return v > b.Min && v < b.Max }

// Hue band in degrees, From > To wraps through 0
type HueBand struct {
	From, To float64
}

func (h HueBand) Contains(hue float64) bool {
	if h.From > h.To {
		return hue <= h.To || hue >= h.From
	}
	return hue >= h.From && hue <= h.To
}

// Everything the families differ in
type Policy struct {
	Family   Family
	HeadSize float64

	Head Bounds
	Spot Bounds

	// head replacement only happens while the current head's
	// outline is inside this window
	HeadOutline Bounds
	HeadRatio   float64

	TargetSpots int

	// keep the DarkestN darkest spots, sampled over a square of
	// DarkRadius or the spot's mean radius when DarkRadius is 0
	DarkestN   int
	DarkRadius int

	Collinear bool
	HueGate   *HueBand

	// value difference below which both color candidates count as the same color
	BrightnessTie float64
	// pick the color spot by radius on a tie, warn otherwise
	TieByRadius bool

	MinContrast int

	// Japan spot pairs farther apart than this are discarded
	MaxSpotDistance float64
}

const (
	maxSpotRatio = 2.
	maxHeadRatio = 3.
	// spot centers have to keep this distance to the frame border
	spotBorder = 3
	// merge distance for two spot candidates
	spotMergeDistance = 2.
	// line search: at least two members above minLineOutline,
	// ends farther apart than minLineLength
	minLineOutline = 12.
	minLineLength  = 13.
	maxLineError   = 2.
	// offset of the white reference points from the color spot,
	// relative to the color to other spot distance
	whiteOffset = 0.356
	maxPrune    = 4
)

func CasernPolicy() Policy {
	return Policy{
		Family:        Casern,
		Head:          Bounds{13, 37},
		Spot:          Bounds{1, 9},
		HeadOutline:   Bounds{260, 340},
		HeadRatio:     1.5,
		TargetSpots:   3,
		DarkestN:      4,
		Collinear:     true,
		BrightnessTie: 30,
		TieByRadius:   true,
	}
}

// Bounds scale with head_size, the head diameter in pixels
func JapanPolicy(head_size float64) Policy {
	return Policy{
		Family:          Japan,
		HeadSize:        head_size,
		Head:            Bounds{head_size / 2, head_size},
		Spot:            Bounds{head_size / 16, head_size / 4},
		HeadOutline:     Bounds{3.5 * head_size, 4.5 * head_size},
		HeadRatio:       1.43,
		TargetSpots:     2,
		DarkestN:        2,
		DarkRadius:      1,
		HueGate:         &HueBand{340, 20},
		BrightnessTie:   10,
		MaxSpotDistance: 0.8 * head_size,
	}
}

func HermesPolicy() Policy {
	return Policy{
		Family:      Hermes,
		Head:        Bounds{7, 30},
		Spot:        Bounds{1, 9},
		HeadOutline: Bounds{205, 268},
		HeadRatio:   1.5,
		TargetSpots: 1,
		DarkestN:    1,
		MinContrast: 100,
	}
}

func PolicyFor(family Family, head_size float64) Policy {
	switch family {
	case Japan:
		return JapanPolicy(head_size)
	case Hermes:
		return HermesPolicy()
	default:
		return CasernPolicy()
	}
}

// Black filled, small, nearly round and clear of the frame border
func (p *Policy) IsSpot(e ellipse.Ellipse, black_inside bool, size image.Point) bool {
	if !black_inside {
		return false
	}
	if !p.Spot.Contains(e.R1()) || !p.Spot.Contains(e.R2()) || e.Ratio() >= maxSpotRatio {
		return false
	}
	cx, cy := round(e.X()), round(e.Y())
	return cx > 1 && cx < size.X-spotBorder && cy > 1 && cy < size.Y-spotBorder
}

func (p *Policy) IsHead(e ellipse.Ellipse, black_inside bool) bool {
	return !black_inside &&
		p.Head.Contains(e.R1()) && p.Head.Contains(e.R2()) &&
		e.Ratio() < maxHeadRatio
}
