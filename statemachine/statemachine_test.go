package statemachine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtRand/cPecan/seqio"
)

func edgesByFrom(edges []Edge, from int) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.From == from {
			out = append(out, e)
		}
	}
	return out
}

func expSum(edges []Edge) float64 {
	total := 0.0
	for _, e := range edges {
		total += math.Exp(e.LogProb)
	}
	return total
}

func TestThreeStateTransitionsSumToOne(t *testing.T) {
	sm := NewThreeState(NewDiscreteEmissions(math.Log(0.9), math.Log(0.1/3), math.Log(0.25)))
	edges := sm.Edges()
	for s := 0; s < sm.StateNumber(); s++ {
		assert.InDelta(t, 1.0, expSum(edgesByFrom(edges, s)), 1e-9, "state %d", s)
	}
}

func TestFourStateTransitionsSumToOne(t *testing.T) {
	sm := NewFourState(NewDiscreteEmissions(math.Log(0.9), math.Log(0.1/3), math.Log(0.25)))
	edges := sm.Edges()
	for s := 0; s < sm.StateNumber(); s++ {
		assert.InDelta(t, 1.0, expSum(edgesByFrom(edges, s)), 1e-9, "state %d", s)
	}
}

func TestFiveStateTransitionsSumToOne(t *testing.T) {
	sm := NewFiveState(NewDiscreteEmissions(math.Log(0.9), math.Log(0.1/3), math.Log(0.25)))
	edges := sm.Edges()
	for s := 0; s < sm.StateNumber(); s++ {
		assert.InDelta(t, 1.0, expSum(edgesByFrom(edges, s)), 1e-9, "state %d", s)
	}
}

func TestDiscreteEmissionsIdentityVsMismatch(t *testing.T) {
	e := NewDiscreteEmissions(math.Log(0.9), math.Log(0.05), math.Log(0.25))
	assert.Equal(t, math.Log(0.9), e.MatchLogProb(seqio.Element(byte('A')), seqio.Element(byte('A'))))
	assert.Equal(t, math.Log(0.05), e.MatchLogProb(seqio.Element(byte('A')), seqio.Element(byte('C'))))

	e.SetSubstitution("A", "G", math.Log(0.2))
	assert.Equal(t, math.Log(0.2), e.MatchLogProb(seqio.Element(byte('A')), seqio.Element(byte('G'))))
}

func TestDiscreteEmissionsAmbiguityCharacters(t *testing.T) {
	e := NewDiscreteEmissions(math.Log(0.9), math.Log(0.05), math.Log(0.25))

	// Without AllowAmbiguityCharacters, N is treated as an ordinary
	// (always-mismatching) symbol.
	assert.Equal(t, math.Log(0.05), e.MatchLogProb(seqio.Element(byte('A')), seqio.Element(byte('N'))))

	e.AllowAmbiguityCharacters(true)
	assert.Equal(t, math.Log(0.9), e.MatchLogProb(seqio.Element(byte('A')), seqio.Element(byte('N'))))
	assert.Equal(t, math.Log(0.9), e.MatchLogProb(seqio.Element(byte('n')), seqio.Element(byte('C'))))
	// Identity still wins normally; ambiguity is only a fallback.
	assert.Equal(t, math.Log(0.9), e.MatchLogProb(seqio.Element(byte('A')), seqio.Element(byte('A'))))
}

func TestGaussianEmissionsScaleAffectsDensity(t *testing.T) {
	g := NewGaussianEmissions(math.Log(0.01))
	g.Set("AAAAA", 80.0, 2.0, 1.0, 0.5)

	unscaled := g.MatchLogProb(seqio.Element("AAAAA"), seqio.Element(seqio.Event{Mean: 80.0}))
	require.False(t, math.IsInf(unscaled, -1))

	g2 := NewGaussianEmissions(math.Log(0.01))
	g2.Set("AAAAA", 80.0, 2.0, 1.0, 0.5)
	g2.Scale(1.0, 10.0, 1.0)
	scaled := g2.MatchLogProb(seqio.Element("AAAAA"), seqio.Element(seqio.Event{Mean: 80.0}))
	assert.Less(t, scaled, unscaled)
}

func TestGaussianEmissionsUnknownKmerIsLogZero(t *testing.T) {
	g := NewGaussianEmissions(math.Log(0.01))
	g.Set("AAAAA", 80.0, 2.0, 1.0, 0.5)
	assert.True(t, math.IsInf(g.MatchLogProb(seqio.Element("CCCCC"), seqio.Element(seqio.Event{Mean: 80.0})), -1))
}

type stubOracle struct{}

func (stubOracle) MatchDensity(kmer string, event [3]float64) float64 { return math.Log(0.5) }
func (stubOracle) YGapDensity(kmer string, event [3]float64) float64  { return math.Log(0.1) }

func TestHDPEmissionsDelegatesToOracle(t *testing.T) {
	h := NewHDPEmissions(stubOracle{}, math.Log(0.01))
	assert.Equal(t, math.Log(0.5), h.MatchLogProb(seqio.Element("AAAAA"), seqio.Element(seqio.Event{Mean: 80})))
	assert.Equal(t, math.Log(0.1), h.YGapLogProb(seqio.Element("AAAAA"), seqio.Element(seqio.Event{Mean: 80})))
	assert.Equal(t, math.Log(0.01), h.XGapLogProb(seqio.Element("AAAAA")))
}
