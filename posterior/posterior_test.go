package posterior

import (
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProbRoundTrip(t *testing.T) {
	p := NewProb(0.5)
	assert.Equal(t, Prob(5_000_000), p)
	assert.InDelta(t, 0.5, p.Float(), 1e-9)
}

func TestPairsSort(t *testing.T) {
	ps := Pairs{{X: 2, Y: 0, Prob: 1}, {X: 0, Y: 5, Prob: 1}, {X: 0, Y: 1, Prob: 1}}
	sort.Sort(ps)
	assert.Equal(t, int64(0), ps[0].X)
	assert.Equal(t, int64(1), ps[0].Y)
	assert.Equal(t, int64(0), ps[1].X)
	assert.Equal(t, int64(5), ps[1].Y)
	assert.Equal(t, int64(2), ps[2].X)
}

func TestGetIndelProbabilities(t *testing.T) {
	pairs := Pairs{{X: 0, Y: 0, Prob: ProbOne}, {X: 1, Y: 1, Prob: ProbOne / 2}}
	indel := GetIndelProbabilities(pairs, 3, true)
	require.Len(t, indel, 3)
	assert.Equal(t, Prob(0), indel[0])
	assert.Equal(t, Prob(ProbOne/2), indel[1])
	assert.Equal(t, Prob(ProbOne), indel[2])
}

func TestReweightAlignedPairsDropsNonPositive(t *testing.T) {
	pairs := Pairs{{X: 0, Y: 0, Prob: ProbOne}, {X: 1, Y: 1, Prob: 10}}
	indelX := []Prob{0, ProbOne}
	indelY := []Prob{0, ProbOne}
	out := ReweightAlignedPairs(pairs, indelX, indelY, 0.5)
	require.Len(t, out, 1)
	assert.Equal(t, int64(0), out[0].X)
}

func TestReweightAlignedPairsPreservesUnaffectedPairs(t *testing.T) {
	pairs := Pairs{{X: 0, Y: 0, Prob: ProbOne}}
	indelX := []Prob{0}
	indelY := []Prob{0}
	out := ReweightAlignedPairs(pairs, indelX, indelY, 0.5)
	want := Pairs{{X: 0, Y: 0, Prob: ProbOne}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("ReweightAlignedPairs mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffProducesUnifiedFormat(t *testing.T) {
	a := Pairs{{X: 0, Y: 0, Prob: ProbOne}}
	b := Pairs{{X: 0, Y: 0, Prob: ProbOne}, {X: 1, Y: 1, Prob: ProbOne}}
	diff, err := a.Diff(b)
	require.NoError(t, err)
	assert.True(t, strings.Contains(diff, "+1\t1"))
}
