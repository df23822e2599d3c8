package statemachine

import (
	"math"

	"github.com/ArtRand/cPecan/seqio"
)

// state indices for FiveState.
const (
	fiveMatch = iota
	fiveShortGapX
	fiveLongGapX
	fiveShortGapY
	fiveLongGapY
)

// FiveState is the fully symmetric long/short gap topology: both X and Y
// get a short affine gap state and a long near-uniform gap state. This is
// the richest of the three topologies and the one a full nanopore model
// typically trains against.
type FiveState struct {
	emissions Emissions

	matchContinue      float64
	matchFromShortGapX float64
	matchFromLongGapX  float64
	matchFromShortGapY float64
	matchFromLongGapY  float64

	shortGapOpenX   float64
	shortGapExtendX float64
	shortGapSwitchX float64
	longGapOpenX    float64
	longGapExtendX  float64
	longGapSwitchX  float64

	shortGapOpenY   float64
	shortGapExtendY float64
	shortGapSwitchY float64
	longGapOpenY    float64
	longGapExtendY  float64
	longGapSwitchY  float64
}

// NewFiveState builds a FiveState machine with the historical transition
// probabilities, paired with the supplied emission model.
func NewFiveState(e Emissions) *FiveState {
	return &FiveState{
		emissions: e,

		matchContinue:      0.9703833696510062,
		matchFromShortGapX: 0.280026392297485,
		matchFromLongGapX:  0.00343657420938,
		matchFromShortGapY: 0.280026392297485,
		matchFromLongGapY:  0.00343657420938,

		shortGapOpenX:   0.0129868352330243,
		shortGapExtendX: 0.7126062401851738,
		shortGapSwitchX: 0.0073673675173412815,
		longGapOpenX:    0.001821479941473,
		longGapExtendX:  0.99656342579062,
		longGapSwitchX:  0.0073673675173412815,

		shortGapOpenY:   0.0129868352330243,
		shortGapExtendY: 0.7126062401851738,
		shortGapSwitchY: 0.0073673675173412815,
		longGapOpenY:    0.001821479941473,
		longGapExtendY:  0.99656342579062,
		longGapSwitchY:  0.0073673675173412815,
	}
}

func (s *FiveState) StateNumber() int { return 5 }
func (s *FiveState) MatchState() int  { return fiveMatch }

func (s *FiveState) StartStateProb(state int) float64 {
	if state == fiveMatch {
		return 0
	}
	return math.Inf(-1)
}

func (s *FiveState) EndStateProb(state int) float64 {
	if state == fiveMatch {
		return 0
	}
	return math.Inf(-1)
}

func (s *FiveState) RaggedStartStateProb(int) float64 { return math.Log(1.0 / 5.0) }
func (s *FiveState) RaggedEndStateProb(int) float64   { return math.Log(1.0 / 5.0) }

func (s *FiveState) Edges() []Edge {
	return []Edge{
		{From: fiveMatch, To: fiveMatch, Category: Match, LogProb: math.Log(s.matchContinue)},
		{From: fiveMatch, To: fiveShortGapX, Category: GapX, LogProb: math.Log(s.shortGapOpenX)},
		{From: fiveMatch, To: fiveLongGapX, Category: GapX, LogProb: math.Log(s.longGapOpenX)},
		{From: fiveMatch, To: fiveShortGapY, Category: GapY, LogProb: math.Log(s.shortGapOpenY)},
		{From: fiveMatch, To: fiveLongGapY, Category: GapY, LogProb: math.Log(s.longGapOpenY)},

		{From: fiveShortGapX, To: fiveMatch, Category: Match, LogProb: math.Log(s.matchFromShortGapX)},
		{From: fiveShortGapX, To: fiveShortGapX, Category: GapX, LogProb: math.Log(s.shortGapExtendX)},
		{From: fiveShortGapX, To: fiveLongGapX, Category: GapX, LogProb: math.Log(s.shortGapSwitchX)},

		{From: fiveLongGapX, To: fiveMatch, Category: Match, LogProb: math.Log(s.matchFromLongGapX)},
		{From: fiveLongGapX, To: fiveLongGapX, Category: GapX, LogProb: math.Log(s.longGapExtendX)},
		{From: fiveLongGapX, To: fiveShortGapX, Category: GapX, LogProb: math.Log(s.longGapSwitchX)},

		{From: fiveShortGapY, To: fiveMatch, Category: Match, LogProb: math.Log(s.matchFromShortGapY)},
		{From: fiveShortGapY, To: fiveShortGapY, Category: GapY, LogProb: math.Log(s.shortGapExtendY)},
		{From: fiveShortGapY, To: fiveLongGapY, Category: GapY, LogProb: math.Log(s.shortGapSwitchY)},

		{From: fiveLongGapY, To: fiveMatch, Category: Match, LogProb: math.Log(s.matchFromLongGapY)},
		{From: fiveLongGapY, To: fiveLongGapY, Category: GapY, LogProb: math.Log(s.longGapExtendY)},
		{From: fiveLongGapY, To: fiveShortGapY, Category: GapY, LogProb: math.Log(s.longGapSwitchY)},
	}
}

func (s *FiveState) MatchLogProb(x, y seqio.Element) float64 { return s.emissions.MatchLogProb(x, y) }
func (s *FiveState) XGapLogProb(x seqio.Element) float64     { return s.emissions.XGapLogProb(x) }
func (s *FiveState) YGapLogProb(x, y seqio.Element) float64  { return s.emissions.YGapLogProb(x, y) }
