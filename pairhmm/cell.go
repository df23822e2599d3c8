// Package pairhmm drives the banded forward-backward recurrence: the
// per-cell kernel, the per-diagonal kernel that calls it across a whole
// band row, and the top-level driver that slides a bounded window of
// diagonals across the full alignment.
package pairhmm

import (
	"github.com/ArtRand/cPecan/logspace"
	"github.com/ArtRand/cPecan/statemachine"
)

// emissions bundles the three precomputed emission log-probabilities a
// cell needs, one per transition category. The diagonal kernel computes
// these once (it knows which symbols the cell's coordinates imply) so the
// cell kernel itself never touches seqio.View.
type emissions struct {
	match, gapX, gapY float64
}

// cellRecurrence is the shared shape of the forward and backward cell
// recurrences: for every edge, pull the value out of whichever neighbor
// vector the edge's category selects, combine it with the edge's
// transition probability and the matching emission, and fold it into out.
// forward writes into out[edge.To] reading neighbor[edge.From]; backward
// writes into out[edge.From] reading neighbor[edge.To]. Any neighbor may
// be nil, meaning that predecessor/successor is out of band and
// contributes LogZero.
//
// Edges are first bucketed by which out slot they land in, then each
// bucket is reduced with foldLogAdd, which uses logspace.Add4 to combine
// candidate values four at a time rather than one logspace.Add call per
// edge.
func cellRecurrence(edges []statemachine.Edge, lower, middle, upper []float64, em emissions, out []float64, forward bool) {
	buckets := make([][]float64, len(out))
	for _, e := range edges {
		var neighbor []float64
		var emission float64
		switch e.Category {
		case statemachine.Match:
			neighbor, emission = middle, em.match
		case statemachine.GapX:
			neighbor, emission = upper, em.gapX
		case statemachine.GapY:
			neighbor, emission = lower, em.gapY
		}
		if neighbor == nil {
			continue
		}
		var slot, src int
		if forward {
			slot, src = e.To, e.From
		} else {
			slot, src = e.From, e.To
		}
		v := neighbor[src]
		if v == logspace.LogZero {
			continue
		}
		buckets[slot] = append(buckets[slot], v+e.LogProb+emission)
	}
	for i, vals := range buckets {
		out[i] = foldLogAdd(vals)
	}
}

// foldLogAdd reduces vals to a single log(sum(exp(vals))) via
// logspace.Add4, four candidates at a time: each batch of up to four
// values is split into two pairs, summed elementwise in one Add4 call,
// and the two partial sums are folded into the running accumulator.
// Unused slots are padded with logspace.LogZero, Add's identity element.
func foldLogAdd(vals []float64) float64 {
	acc := logspace.LogZero
	for i := 0; i < len(vals); i += 4 {
		xs := [4]float64{valOrLogZero(vals, i), valOrLogZero(vals, i+2), logspace.LogZero, logspace.LogZero}
		ys := [4]float64{valOrLogZero(vals, i+1), valOrLogZero(vals, i+3), logspace.LogZero, logspace.LogZero}
		sums := logspace.Add4(xs, ys)
		acc = logspace.Add(acc, logspace.Add(sums[0], sums[1]))
	}
	return acc
}

func valOrLogZero(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return logspace.LogZero
}

// cellForward computes the forward state vector for one cell.
func cellForward(edges []statemachine.Edge, lower, middle, upper []float64, em emissions, out []float64) {
	cellRecurrence(edges, lower, middle, upper, em, out, true)
}

// cellBackward computes the backward state vector for one cell.
func cellBackward(edges []statemachine.Edge, lowerSucc, middleSucc, upperSucc []float64, em emissions, out []float64) {
	cellRecurrence(edges, lowerSucc, middleSucc, upperSucc, em, out, false)
}
