// Package statemachine implements the pluggable pair-HMM state machines the
// banded engine drives: a fixed transition topology (Transitions) paired
// with an emission model (Emissions) over either discrete symbols
// (nucleotides/k-mers) or continuous nanopore events.
//
// This mirrors the state-machine capability the original aligner expressed
// as a struct of function pointers (see design note in cPecan's
// stateMachine.h): here it is two small interfaces instead, so a variant is
// just a concrete type satisfying both.
package statemachine

import "github.com/ArtRand/cPecan/seqio"

// Category marks which sequence(s) an edge's transition consumes a symbol
// from, which in turn selects which of the cell kernel's three neighbor
// vectors (lower/middle/upper) it reads.
type Category int

const (
	// Match consumes one symbol from both X and Y; its predecessor is the
	// diagonal ("middle") neighbor.
	Match Category = iota
	// GapX consumes one symbol from X only (a gap in Y); its predecessor is
	// the "upper" neighbor.
	GapX
	// GapY consumes one symbol from Y only (a gap in X); its predecessor is
	// the "lower" neighbor.
	GapY
)

// Edge is one transition in the state machine's topology, with its
// log-probability precomputed at construction time (the machine is
// immutable once built).
type Edge struct {
	From, To int
	Category Category
	LogProb  float64
}

// Transitions is the topology half of a state machine: how many states it
// has, which is the match state, the edges between states, and the
// boundary priors for starting/ending an alignment.
type Transitions interface {
	StateNumber() int
	MatchState() int
	StartStateProb(state int) float64
	EndStateProb(state int) float64
	RaggedStartStateProb(state int) float64
	RaggedEndStateProb(state int) float64
	Edges() []Edge
}

// Emissions is the density half of a state machine: log-probability of
// emitting a match, an X-gap, or a Y-gap for a given pair of symbols.
// Variants may ignore arguments that don't apply to their category (an
// X-gap emission never looks at y).
type Emissions interface {
	MatchLogProb(x, y seqio.Element) float64
	XGapLogProb(x seqio.Element) float64
	YGapLogProb(x, y seqio.Element) float64
}

// StateMachine is the full pluggable capability the banded driver consumes.
type StateMachine interface {
	Transitions
	Emissions
}
