package assoc

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/functions"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/ghung"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/gmat"
)

type Assoc struct {
	Prev, Next int
	Distance   float64
}

// Matches detections of two frames one to one. Pairs further apart
// than max_dist are never matched
func Associate(prev, next []r2.Vec, max_dist float64) []Assoc {
	var assocs []Assoc
	if len(prev) < 1 || len(next) < 1 || max_dist <= 0 {
		return assocs
	}

	rows, cols := len(prev), len(next)
	distance_mat := gmat.NewMat[float64](rows, cols)
	for row := range rows {
		for col := range cols {
			distance_mat.Set(row, col, r2.Norm(r2.Sub(prev[row], next[col])))
		}
	}

	validity_mat := gmat.Map(distance_mat, func(v float64, r, c int) bool {
		return v <= max_dist
	})
	score_mat := gmat.Map(distance_mat, func(v float64, r, c int) float64 {
		return functions.Gaussian(1, v, max_dist)
	})

	for ind_r, vec := range validity_mat.Vectors(gmat.Horizontal) {
		if !anyValid(vec) {
			score_mat = score_mat.Mask(gmat.Horizontal, ind_r)
		}
	}
	for ind_c, vec := range validity_mat.Vectors(gmat.Vertical) {
		if !anyValid(vec) {
			score_mat = score_mat.Mask(gmat.Vertical, ind_c)
		}
	}

	for r, c := range ghung.Solve(score_mat, true) {
		if d := distance_mat.At(r, c); d <= max_dist {
			assocs = append(assocs, Assoc{Prev: r, Next: c, Distance: d})
		}
	}
	return assocs
}

func anyValid(vec gmat.Vector[bool]) bool {
	for _, valid := range vec.All() {
		if valid {
			return true
		}
	}
	return false
}
