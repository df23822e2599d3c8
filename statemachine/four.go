package statemachine

import (
	"math"

	"github.com/ArtRand/cPecan/seqio"
)

// state indices for FourState.
const (
	fourMatch = iota
	fourShortGapX
	fourLongGapX
	fourGapY
)

// FourState splits the X gap into a short (affine) and long (near-uniform)
// regime, while leaving Y with a single gap state. The historical model
// this is ported from defines a long-gap-Y regime too but never wires it
// up (its transition fields are present in the header but commented out);
// this is carried forward faithfully rather than invented symmetrically —
// see the note on FourState in DESIGN.md.
type FourState struct {
	emissions Emissions

	matchContinue      float64
	matchFromShortGapX float64
	matchFromLongGapX  float64
	matchFromGapY      float64

	shortGapOpenX   float64
	shortGapExtendX float64
	gapOpenY        float64
	gapExtendY      float64

	longGapOpenX    float64
	longGapExtendX  float64
	longGapSwitchX  float64
}

// NewFourState builds a FourState machine with the historical transition
// probabilities, paired with the supplied emission model.
func NewFourState(e Emissions) *FourState {
	return &FourState{
		emissions: e,

		matchContinue:      0.9703833696510062,
		matchFromShortGapX: 0.280026392297485,
		matchFromLongGapX:  0.00343657420938,
		matchFromGapY:      0.280026392297485,

		shortGapOpenX:   0.0129868352330243,
		shortGapExtendX: 0.7126062401851738,
		gapOpenY:        0.0129868352330243,
		gapExtendY:      0.7126062401851738,

		longGapOpenX:   0.001821479941473,
		longGapExtendX: 0.99656342579062,
		longGapSwitchX: 0.0073673675173412815,
	}
}

func (s *FourState) StateNumber() int { return 4 }
func (s *FourState) MatchState() int  { return fourMatch }

func (s *FourState) StartStateProb(state int) float64 {
	if state == fourMatch {
		return 0
	}
	return math.Inf(-1)
}

func (s *FourState) EndStateProb(state int) float64 {
	if state == fourMatch {
		return 0
	}
	return math.Inf(-1)
}

func (s *FourState) RaggedStartStateProb(int) float64 { return math.Log(1.0 / 4.0) }
func (s *FourState) RaggedEndStateProb(int) float64   { return math.Log(1.0 / 4.0) }

func (s *FourState) Edges() []Edge {
	return []Edge{
		{From: fourMatch, To: fourMatch, Category: Match, LogProb: math.Log(s.matchContinue)},
		{From: fourMatch, To: fourShortGapX, Category: GapX, LogProb: math.Log(s.shortGapOpenX)},
		{From: fourMatch, To: fourLongGapX, Category: GapX, LogProb: math.Log(s.longGapOpenX)},
		{From: fourMatch, To: fourGapY, Category: GapY, LogProb: math.Log(s.gapOpenY)},

		{From: fourShortGapX, To: fourMatch, Category: Match, LogProb: math.Log(s.matchFromShortGapX)},
		{From: fourShortGapX, To: fourShortGapX, Category: GapX, LogProb: math.Log(s.shortGapExtendX)},
		{From: fourShortGapX, To: fourLongGapX, Category: GapX, LogProb: math.Log(s.longGapSwitchX)},

		{From: fourLongGapX, To: fourMatch, Category: Match, LogProb: math.Log(s.matchFromLongGapX)},
		{From: fourLongGapX, To: fourLongGapX, Category: GapX, LogProb: math.Log(s.longGapExtendX)},
		{From: fourLongGapX, To: fourShortGapX, Category: GapX, LogProb: math.Log(s.longGapSwitchX)},

		{From: fourGapY, To: fourMatch, Category: Match, LogProb: math.Log(s.matchFromGapY)},
		{From: fourGapY, To: fourGapY, Category: GapY, LogProb: math.Log(s.gapExtendY)},
	}
}

func (s *FourState) MatchLogProb(x, y seqio.Element) float64 { return s.emissions.MatchLogProb(x, y) }
func (s *FourState) XGapLogProb(x seqio.Element) float64     { return s.emissions.XGapLogProb(x) }
func (s *FourState) YGapLogProb(x, y seqio.Element) float64  { return s.emissions.YGapLogProb(x, y) }
