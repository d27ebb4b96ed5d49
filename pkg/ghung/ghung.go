package ghung

import (
	hung "github.com/arthurkushman/go-hungarian"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/gmat"
)

// Optimal one to one assignment of the unmasked rows to the unmasked
// columns of m. The result maps row to column in the indices of m
func Solve(m *gmat.Mat[float64], maximize bool) map[int]int {
	dense, rows, cols := m.To2d()
	n := max(len(rows), len(cols))
	if n == 0 {
		return map[int]int{}
	}

	// minimization runs as maximization of the mirrored weights
	var top float64
	for _, row := range dense {
		for _, v := range row {
			top = max(top, v)
		}
	}

	// padded with zero weights to a square matrix
	square := make([][]float64, n)
	for r := range n {
		square[r] = make([]float64, n)
		if r >= len(dense) {
			continue
		}
		for c, v := range dense[r] {
			if maximize {
				square[r][c] = v
			} else {
				square[r][c] = top - v
			}
		}
	}

	solution := hung.SolveMax(square)

	assignment := make(map[int]int, min(len(rows), len(cols)))
	for r, assigned := range solution {
		for c := range assigned {
			if r < len(rows) && c < len(cols) {
				assignment[rows[r]] = cols[c]
			}
		}
	}
	return assignment
}
