// Package reference is a brute-force, unbanded forward-probability oracle:
// a full (lenX+1) x (lenY+1) dense DP grid, filled the same O(nm)-time,
// O(nm)-space way as a textbook Needleman-Wunsch matrix, generalized from a
// single int score per cell to a per-state log-probability vector. It
// exists to check the banded driver's total probability against ground
// truth on small test sequences; nothing in the core alignment path calls
// it.
package reference

import (
	"fmt"
	"math"

	"github.com/ArtRand/cPecan/cpecanerr"
	"github.com/ArtRand/cPecan/logspace"
	"github.com/ArtRand/cPecan/seqio"
	"github.com/ArtRand/cPecan/statemachine"
)

// ForwardLogProbability computes the total forward log-probability of
// aligning sx against sy under sm, considering every possible path through
// the full (unbanded) edit grid. stateNumber-sized vectors are kept for
// every (x,y) cell, so this is only suitable for short test sequences.
func ForwardLogProbability(sm statemachine.StateMachine, sx, sy seqio.View) (float64, error) {
	lenX, lenY := sx.Len(), sy.Len()
	if lenX == 0 || lenY == 0 {
		return 0, fmt.Errorf("%w: reference oracle needs non-empty sequences", cpecanerr.ErrBadInput)
	}
	states := sm.StateNumber()
	edges := sm.Edges()

	// grid[x][y] is the state vector at cell (x,y), 0-based over
	// [0,lenX] x [0,lenY].
	grid := make([][][]float64, lenX+1)
	for x := range grid {
		grid[x] = make([][]float64, lenY+1)
		for y := range grid[x] {
			vec := make([]float64, states)
			for s := range vec {
				vec[s] = logspace.LogZero
			}
			grid[x][y] = vec
		}
	}
	for s := 0; s < states; s++ {
		grid[0][0][s] = sm.StartStateProb(s)
	}

	for x := 0; x <= lenX; x++ {
		for y := 0; y <= lenY; y++ {
			if x == 0 && y == 0 {
				continue
			}
			cell := grid[x][y]
			for _, e := range edges {
				var from []float64
				var emission float64
				switch e.Category {
				case statemachine.Match:
					if x == 0 || y == 0 {
						continue
					}
					from = grid[x-1][y-1]
					emission = sm.MatchLogProb(sx.At(x-1), sy.At(y-1))
				case statemachine.GapX:
					if x == 0 {
						continue
					}
					from = grid[x-1][y]
					emission = sm.XGapLogProb(sx.At(x - 1))
				case statemachine.GapY:
					if x == 0 || y == 0 {
						continue
					}
					from = grid[x][y-1]
					emission = sm.YGapLogProb(sx.At(x-1), sy.At(y-1))
				}
				if from[e.From] == logspace.LogZero {
					continue
				}
				cell[e.To] = logspace.Add(cell[e.To], from[e.From]+e.LogProb+emission)
			}
		}
	}

	final := grid[lenX][lenY]
	total := logspace.LogZero
	for s, v := range final {
		total = logspace.Add(total, v+sm.EndStateProb(s))
	}
	if math.IsInf(total, -1) {
		return total, fmt.Errorf("%w: no path through the full matrix", cpecanerr.ErrAlignmentImpossible)
	}
	return total, nil
}
