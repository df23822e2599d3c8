// Package posterior holds the fixed-point representation of an aligned
// pair's posterior probability and the post-processing steps that turn a
// raw pair list into a caller-facing alignment: indel-probability
// derivation and gap-penalty reweighting.
package posterior

import (
	"fmt"
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// ProbOne is the fixed-point scale aligned-pair posteriors are carried in.
// Using an integer keeps sort order and summation deterministic across
// platforms, which a raw float64 posterior would not guarantee at the bit
// level.
const ProbOne = 10_000_000

// Prob is a posterior probability scaled by ProbOne and rounded to the
// nearest integer.
type Prob int64

// NewProb rounds a [0,1] linear-space probability into fixed-point form.
func NewProb(p float64) Prob {
	return Prob(int64(p*ProbOne + 0.5))
}

// Float returns p as a [0,1] linear-space probability.
func (p Prob) Float() float64 { return float64(p) / ProbOne }

// AlignedPair is one emitted (x, y) correspondence with its posterior
// match probability.
type AlignedPair struct {
	X, Y  int64
	Prob  Prob
}

func (p AlignedPair) String() string {
	return fmt.Sprintf("%d\t%d\t%d", p.X, p.Y, p.Prob)
}

// Pairs is a list of AlignedPair sortable by (X, Y), with a unified-diff
// helper for comparing two alignments.
type Pairs []AlignedPair

func (ps Pairs) Len() int      { return len(ps) }
func (ps Pairs) Swap(i, j int) { ps[i], ps[j] = ps[j], ps[i] }
func (ps Pairs) Less(i, j int) bool {
	if ps[i].X != ps[j].X {
		return ps[i].X < ps[j].X
	}
	return ps[i].Y < ps[j].Y
}

var _ sort.Interface = Pairs(nil)

func (ps Pairs) lines() []string {
	lines := make([]string, len(ps))
	for i, p := range ps {
		lines[i] = p.String()
	}
	return lines
}

// Diff returns a unified diff between ps and other's string forms, for
// comparing two alignments of the same pair (e.g. split vs. un-split) in
// tests or debugging output.
func (ps Pairs) Diff(other Pairs) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        ps.lines(),
		B:        other.lines(),
		FromFile: "a",
		ToFile:   "b",
		Context:  1,
	}
	return difflib.GetUnifiedDiffString(diff)
}

// GetIndelProbabilities returns, for the side identified by onX, a vector
// of length seqLen where entry i is ProbOne minus the summed posterior
// mass of every pair projecting onto position i, clamped to [0, ProbOne].
// This is the per-position probability of being gapped rather than
// aligned.
func GetIndelProbabilities(pairs Pairs, seqLen int64, onX bool) []Prob {
	sums := make([]int64, seqLen)
	for _, p := range pairs {
		pos := p.Y
		if onX {
			pos = p.X
		}
		if pos < 0 || pos >= seqLen {
			continue
		}
		sums[pos] += int64(p.Prob)
	}
	out := make([]Prob, seqLen)
	for i, s := range sums {
		v := int64(ProbOne) - s
		if v < 0 {
			v = 0
		}
		if v > ProbOne {
			v = ProbOne
		}
		out[i] = Prob(v)
	}
	return out
}

// ReweightAlignedPairs replaces each pair's posterior with
// p - gapGamma*(indelX[x] + indelY[y]) and discards any pair whose
// adjusted weight is not strictly positive.
func ReweightAlignedPairs(pairs Pairs, indelX, indelY []Prob, gapGamma float64) Pairs {
	out := make(Pairs, 0, len(pairs))
	for _, p := range pairs {
		var ix, iy Prob
		if p.X >= 0 && int(p.X) < len(indelX) {
			ix = indelX[p.X]
		}
		if p.Y >= 0 && int(p.Y) < len(indelY) {
			iy = indelY[p.Y]
		}
		adjusted := float64(p.Prob) - gapGamma*(float64(ix)+float64(iy))
		if adjusted <= 0 {
			continue
		}
		out = append(out, AlignedPair{X: p.X, Y: p.Y, Prob: Prob(adjusted)})
	}
	return out
}
