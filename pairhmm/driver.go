package pairhmm

import (
	"fmt"
	"math"

	"github.com/lunny/log"

	"github.com/ArtRand/cPecan/band"
	"github.com/ArtRand/cPecan/cpecanerr"
	"github.com/ArtRand/cPecan/dpmatrix"
	"github.com/ArtRand/cPecan/hmm"
	"github.com/ArtRand/cPecan/logspace"
	"github.com/ArtRand/cPecan/posterior"
	"github.com/ArtRand/cPecan/seqio"
	"github.com/ArtRand/cPecan/statemachine"
)

// PosteriorSink is the sum type the banded driver's output is threaded
// through: either an aligned-pair emitter or an EM expectation
// accumulator. The unexported sink method closes the type over this
// package's two implementations.
type PosteriorSink interface {
	sink()
}

// EmitPairs collects aligned pairs whose posterior is at least Threshold into
// *Pairs. Multi selects the echelon-style multi-match variant, which
// extracts from every state a MultiStateProvider declares match-like
// instead of only the machine's single match state.
type EmitPairs struct {
	Pairs     *posterior.Pairs
	Threshold posterior.Prob
	Multi     bool
}

func (EmitPairs) sink() {}

// AccumulateExpectations routes every (from, to) edge's expected usage
// into hmm's transition and emission tables instead of emitting pairs,
// for EM training.
type AccumulateExpectations struct {
	Hmm *hmm.Hmm
}

func (AccumulateExpectations) sink() {}

// MultiStateProvider is an optional StateMachine capability: a state
// machine with more than one match-like state (an echelon-style variant)
// implements this so posterior extraction in Multi mode knows which
// states to sum over. Machines that don't implement it are treated as
// having exactly one match-like state, MatchState().
type MultiStateProvider interface {
	MatchLikeStates() []int
}

func matchLikeStates(sm statemachine.StateMachine) []int {
	if mp, ok := sm.(MultiStateProvider); ok {
		return mp.MatchLikeStates()
	}
	return []int{sm.MatchState()}
}

// Driver runs the banded forward-backward algorithm with bounded memory:
// it slides a fixed-size window of resident diagonals across the whole
// alignment rather than keeping every diagonal alive at once.
type Driver struct {
	MinDiagsBetweenTraceBack int64
	TraceBackDiagonals       int64
}

func (d Driver) window() int64 {
	return d.MinDiagsBetweenTraceBack + d.TraceBackDiagonals + 2
}

// Align runs the full banded alignment of sx against sy under state
// machine sm and band b, routing output through sink. raggedLeft/Right
// mark that the alignment may legitimately start/end mid-sequence (the
// caller's guide alignment didn't cover a prefix/suffix).
func (d Driver) Align(sm statemachine.StateMachine, sx, sy seqio.View, b *band.Band, raggedLeft, raggedRight bool, sink PosteriorSink) error {
	edges := sm.Edges()
	states := sm.StateNumber()
	totalLen := b.LX() + b.LY()
	window := d.window()

	fwdMat := dpmatrix.New(window, states)

	var xayAnchor int64
	for xayHead := int64(0); xayHead <= totalLen; xayHead++ {
		dHead, filled := b.At(xayHead)
		if !filled {
			log.Warnf("cpecan: diagonal %d has no legal cells, alignment impossible", xayHead)
			return fmt.Errorf("%w: diagonal %d is empty", cpecanerr.ErrAlignmentImpossible, xayHead)
		}

		if xayHead == 0 {
			cur := fwdMat.CreateDiagonal(dHead)
			prior := sm.StartStateProb
			if raggedLeft {
				prior = sm.RaggedStartStateProb
			}
			cur.Initialise(prior)
		} else {
			diagonalForward(sm, edges, dHead, fwdMat, sx, sy)
		}

		atEnd := xayHead == totalLen
		if !atEnd && xayHead-xayAnchor < d.MinDiagsBetweenTraceBack+d.TraceBackDiagonals {
			continue
		}

		log.Debugf("cpecan: running backward/posterior sweep for diagonals [%d,%d]", xayAnchor, xayHead)

		bwdMat := dpmatrix.New(window, states)
		curB := bwdMat.CreateDiagonal(dHead)
		endPrior := sm.EndStateProb
		if atEnd && raggedRight {
			endPrior = sm.RaggedEndStateProb
		}
		curB.Initialise(endPrior)

		extractFloor := xayAnchor + d.TraceBackDiagonals
		if atEnd {
			extractFloor = xayHead
		}

		for xay := xayHead; xay >= xayAnchor; xay-- {
			dd, filled := b.At(xay)
			if !filled {
				log.Warnf("cpecan: diagonal %d has no legal cells during backward sweep", xay)
				return fmt.Errorf("%w: diagonal %d is empty", cpecanerr.ErrAlignmentImpossible, xay)
			}
			if xay < xayHead {
				diagonalBackward(sm, edges, dd, bwdMat, sx, sy)
			}

			if xay > extractFloor {
				continue
			}
			fwdD := fwdMat.GetDiagonal(xay)
			bwdD := bwdMat.GetDiagonal(xay)
			if fwdD == nil || bwdD == nil {
				continue
			}
			total := totalProbability(fwdD, bwdD)
			if math.IsInf(total, -1) {
				if xay == totalLen {
					return fmt.Errorf("%w: no path reaches the end cell", cpecanerr.ErrAlignmentImpossible)
				}
				log.Warnf("cpecan: diagonal %d collapsed to zero total probability", xay)
				continue
			}
			if xay == totalLen {
				if em, ok := sink.(AccumulateExpectations); ok {
					em.Hmm.AddLikelihood(math.Exp(total))
				}
			}
			if err := apply(sm, fwdMat, fwdD, bwdD, total, sx, sy, sink); err != nil {
				return err
			}
		}

		newAnchor := xayAnchor + d.TraceBackDiagonals + 1
		if atEnd || newAnchor > xayHead {
			newAnchor = xayHead + 1
		}
		for xay := xayAnchor; xay < newAnchor; xay++ {
			fwdMat.DeleteDiagonal(xay)
		}
		xayAnchor = newAnchor
	}

	return nil
}

// apply extracts posterior match probabilities (EmitPairs) or folds
// expectations into an Hmm (AccumulateExpectations) for one diagonal.
// fwdMat must still hold the current diagonal's predecessors (xay-1,
// xay-2): the caller deletes old diagonals only after the whole backward
// sweep for this window has run.
func apply(sm statemachine.StateMachine, fwdMat *dpmatrix.Matrix, fwdD, bwdD *dpmatrix.DpDiagonal, total float64, sx, sy seqio.View, sink PosteriorSink) error {
	switch s := sink.(type) {
	case EmitPairs:
		states := []int{sm.MatchState()}
		if s.Multi {
			states = matchLikeStates(sm)
		}
		for xmy := fwdD.Diagonal.XmyL; xmy <= fwdD.Diagonal.XmyR; xmy += 2 {
			fc := fwdD.Cell(xmy)
			bc := bwdD.Cell(xmy)
			if fc == nil || bc == nil {
				continue
			}
			x, y := band.X(fwdD.Diagonal.Xay, xmy), band.Y(fwdD.Diagonal.Xay, xmy)
			if x < 1 || y < 1 {
				continue
			}
			logP := math.Inf(-1)
			for _, st := range states {
				logP = logspace.Add(logP, fc[st]+bc[st])
			}
			prob := posterior.NewProb(math.Exp(logP - total))
			if prob < s.Threshold {
				continue
			}
			*s.Pairs = append(*s.Pairs, posterior.AlignedPair{X: x - 1, Y: y - 1, Prob: prob})
		}
	case AccumulateExpectations:
		edges := sm.Edges()
		pred1 := fwdMat.GetDiagonal(fwdD.Diagonal.Xay - 1)
		pred2 := fwdMat.GetDiagonal(fwdD.Diagonal.Xay - 2)
		for xmy := fwdD.Diagonal.XmyL; xmy <= fwdD.Diagonal.XmyR; xmy += 2 {
			bc := bwdD.Cell(xmy)
			if bc == nil {
				continue
			}
			x, y := band.X(fwdD.Diagonal.Xay, xmy), band.Y(fwdD.Diagonal.Xay, xmy)
			em := cellEmissions(sm, x, y, sx, sy)
			xKey, yKey, hasX, hasY := cellSymbols(x, y, sx, sy)

			var lower, middle, upper []float64
			if pred1 != nil {
				lower = pred1.Cell(xmy + 1)
				upper = pred1.Cell(xmy - 1)
			}
			if pred2 != nil {
				middle = pred2.Cell(xmy)
			}

			for _, e := range edges {
				var predVec []float64
				var emission float64
				switch e.Category {
				case statemachine.Match:
					predVec, emission = middle, em.match
				case statemachine.GapX:
					predVec, emission = upper, em.gapX
				case statemachine.GapY:
					predVec, emission = lower, em.gapY
				}
				if predVec == nil {
					continue
				}
				from := predVec[e.From]
				if math.IsInf(from, -1) {
					continue
				}
				contribution := math.Exp(from + e.LogProb + emission + bc[e.To] - total)
				s.Hmm.AddTransitionExpectation(e.From, e.To, contribution)

				// Emissions are attributed to e.To, the state the
				// transition lands in and so the state understood to
				// have produced the symbol(s).
				switch e.Category {
				case statemachine.Match:
					if hasX && hasY {
						s.Hmm.AddMatchExpectation(e.To, xKey, yKey, contribution)
					}
				case statemachine.GapX:
					if hasX {
						s.Hmm.AddGapXExpectation(e.To, xKey, contribution)
					}
				case statemachine.GapY:
					if hasX && hasY {
						s.Hmm.AddGapYExpectation(e.To, xKey, yKey, contribution)
					}
				}
			}
		}
	}
	return nil
}
