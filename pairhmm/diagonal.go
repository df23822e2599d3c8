package pairhmm

import (
	"fmt"
	"math"

	"github.com/ArtRand/cPecan/band"
	"github.com/ArtRand/cPecan/dpmatrix"
	"github.com/ArtRand/cPecan/seqio"
	"github.com/ArtRand/cPecan/statemachine"
)

// elementKey stringifies a seqio.Element for use as an Hmm emission
// expectation table key, the same byte/string/fallback switch anchor.go
// uses to hash k-mer windows.
func elementKey(e seqio.Element) string {
	switch v := e.(type) {
	case byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// cellSymbols reports the string keys of the symbols consumed entering
// cell (x, y), for the categories that have them: match needs both,
// gapX needs only x, gapY needs both (it still reads x for context the
// way YGapLogProb does). hasX/hasY mark whether x/y falls inside its
// sequence at all.
func cellSymbols(x, y int64, sx, sy seqio.View) (xKey, yKey string, hasX, hasY bool) {
	if x >= 1 && x <= int64(sx.Len()) {
		xKey, hasX = elementKey(sx.At(int(x-1))), true
	}
	if y >= 1 && y <= int64(sy.Len()) {
		yKey, hasY = elementKey(sy.At(int(y-1))), true
	}
	return xKey, yKey, hasX, hasY
}

// cellEmissions computes the match/gapX/gapY emission log-probabilities
// for the cell at (x, y), where x and y are 1-based counts of symbols
// consumed from sx and sy respectively (x==0 or y==0 means no symbol has
// been consumed on that axis yet, so any emission needing it is LogZero).
func cellEmissions(sm statemachine.StateMachine, x, y int64, sx, sy seqio.View) emissions {
	em := emissions{match: math.Inf(-1), gapX: math.Inf(-1), gapY: math.Inf(-1)}
	if x >= 1 && x <= int64(sx.Len()) {
		xSym := sx.At(int(x - 1))
		em.gapX = sm.XGapLogProb(xSym)
		if y >= 1 && y <= int64(sy.Len()) {
			ySym := sy.At(int(y - 1))
			em.match = sm.MatchLogProb(xSym, ySym)
			em.gapY = sm.YGapLogProb(xSym, ySym)
		}
	}
	return em
}

// diagonalForward allocates diagonal d in mat and fills every legal cell's
// forward state vector from the two preceding resident diagonals.
func diagonalForward(sm statemachine.StateMachine, edges []statemachine.Edge, d band.Diagonal, mat *dpmatrix.Matrix, sx, sy seqio.View) *dpmatrix.DpDiagonal {
	cur := mat.CreateDiagonal(d)
	pred1 := mat.GetDiagonal(d.Xay - 1)
	pred2 := mat.GetDiagonal(d.Xay - 2)

	for xmy := d.XmyL; xmy <= d.XmyR; xmy += 2 {
		x, y := band.X(d.Xay, xmy), band.Y(d.Xay, xmy)
		var lower, middle, upper []float64
		if pred1 != nil {
			lower = pred1.Cell(xmy + 1)
			upper = pred1.Cell(xmy - 1)
		}
		if pred2 != nil {
			middle = pred2.Cell(xmy)
		}
		em := cellEmissions(sm, x, y, sx, sy)
		cellForward(edges, lower, middle, upper, em, cur.Cell(xmy))
	}
	return cur
}

// diagonalBackward allocates diagonal d in mat and fills every legal
// cell's backward state vector from the two succeeding resident
// diagonals.
func diagonalBackward(sm statemachine.StateMachine, edges []statemachine.Edge, d band.Diagonal, mat *dpmatrix.Matrix, sx, sy seqio.View) *dpmatrix.DpDiagonal {
	cur := mat.CreateDiagonal(d)
	succ1 := mat.GetDiagonal(d.Xay + 1)
	succ2 := mat.GetDiagonal(d.Xay + 2)

	for xmy := d.XmyL; xmy <= d.XmyR; xmy += 2 {
		x, y := band.X(d.Xay, xmy), band.Y(d.Xay, xmy)
		var lowerSucc, middleSucc, upperSucc []float64
		if succ1 != nil {
			upperSucc = succ1.Cell(xmy + 1)
			lowerSucc = succ1.Cell(xmy - 1)
		}
		if succ2 != nil {
			middleSucc = succ2.Cell(xmy)
		}
		// Backward emissions are evaluated at the successor cell's
		// coordinates: the symbol consumed entering the next cell.
		em := emissions{match: math.Inf(-1), gapX: math.Inf(-1), gapY: math.Inf(-1)}
		if x < int64(sx.Len()) {
			xSym := sx.At(int(x))
			em.gapX = sm.XGapLogProb(xSym)
			if y < int64(sy.Len()) {
				ySym := sy.At(int(y))
				em.match = sm.MatchLogProb(xSym, ySym)
			}
		}
		if y < int64(sy.Len()) && x >= 1 {
			ySym := sy.At(int(y))
			xSym := sx.At(int(x - 1))
			em.gapY = sm.YGapLogProb(xSym, ySym)
		}
		cellBackward(edges, lowerSucc, middleSucc, upperSucc, em, cur.Cell(xmy))
	}
	return cur
}

// totalProbability is the dot product of a forward and a backward
// diagonal at the same xay: it must agree across every xay once both
// passes have run to completion.
func totalProbability(fwd, bwd *dpmatrix.DpDiagonal) float64 {
	total := fwd.DotProduct(bwd)
	if total <= 0 {
		return math.Inf(-1)
	}
	return math.Log(total)
}
