package statemachine

import (
	"math"

	"github.com/ArtRand/cPecan/seqio"
)

// state indices for ThreeState.
const (
	threeMatch = iota
	threeGapX
	threeGapY
)

// ThreeState is the symmetric affine-gap topology: one match state and one
// gap state per sequence, each with its own open/extend/switch
// probabilities. This is the topology the cpecan align command uses.
type ThreeState struct {
	emissions Emissions

	matchContinue float64
	matchFromGapX float64
	matchFromGapY float64
	gapOpenX      float64
	gapOpenY      float64
	gapExtendX    float64
	gapExtendY    float64
	gapSwitchX    float64
	gapSwitchY    float64
}

// NewThreeState builds a ThreeState machine with the historical transition
// probabilities, paired with the supplied emission model.
func NewThreeState(e Emissions) *ThreeState {
	return &ThreeState{
		emissions:     e,
		matchContinue: 0.9703833696510062,
		matchFromGapX: 0.280026392297485,
		matchFromGapY: 0.280026392297485,
		gapOpenX:      0.0129868352330243,
		gapOpenY:      0.0129868352330243,
		gapExtendX:    0.7126062401851738,
		gapExtendY:    0.7126062401851738,
		gapSwitchX:    0.0073673675173412815,
		gapSwitchY:    0.0073673675173412815,
	}
}

func (s *ThreeState) StateNumber() int { return 3 }
func (s *ThreeState) MatchState() int  { return threeMatch }

func (s *ThreeState) StartStateProb(state int) float64 {
	if state == threeMatch {
		return 0
	}
	return math.Inf(-1)
}

func (s *ThreeState) EndStateProb(state int) float64 {
	if state == threeMatch {
		return 0
	}
	return math.Inf(-1)
}

// RaggedStartStateProb allows an alignment to begin inside a gap state, for
// reads whose prefix falls outside the guide alignment's span.
func (s *ThreeState) RaggedStartStateProb(int) float64 { return math.Log(1.0 / 3.0) }

// RaggedEndStateProb is the mirror of RaggedStartStateProb for alignments
// whose suffix runs past the guide.
func (s *ThreeState) RaggedEndStateProb(int) float64 { return math.Log(1.0 / 3.0) }

func (s *ThreeState) Edges() []Edge {
	return []Edge{
		{From: threeMatch, To: threeMatch, Category: Match, LogProb: math.Log(s.matchContinue)},
		{From: threeMatch, To: threeGapX, Category: GapX, LogProb: math.Log(s.gapOpenX)},
		{From: threeMatch, To: threeGapY, Category: GapY, LogProb: math.Log(s.gapOpenY)},

		{From: threeGapX, To: threeMatch, Category: Match, LogProb: math.Log(s.matchFromGapX)},
		{From: threeGapX, To: threeGapX, Category: GapX, LogProb: math.Log(s.gapExtendX)},
		{From: threeGapX, To: threeGapY, Category: GapY, LogProb: math.Log(s.gapSwitchX)},

		{From: threeGapY, To: threeMatch, Category: Match, LogProb: math.Log(s.matchFromGapY)},
		{From: threeGapY, To: threeGapY, Category: GapY, LogProb: math.Log(s.gapExtendY)},
		{From: threeGapY, To: threeGapX, Category: GapX, LogProb: math.Log(s.gapSwitchY)},
	}
}

func (s *ThreeState) MatchLogProb(x, y seqio.Element) float64 { return s.emissions.MatchLogProb(x, y) }
func (s *ThreeState) XGapLogProb(x seqio.Element) float64      { return s.emissions.XGapLogProb(x) }
func (s *ThreeState) YGapLogProb(x, y seqio.Element) float64   { return s.emissions.YGapLogProb(x, y) }
