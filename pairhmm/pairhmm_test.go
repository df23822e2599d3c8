package pairhmm

import (
	"math"
	"sort"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtRand/cPecan/anchor"
	"github.com/ArtRand/cPecan/band"
	"github.com/ArtRand/cPecan/hmm"
	"github.com/ArtRand/cPecan/posterior"
	"github.com/ArtRand/cPecan/reference"
	"github.com/ArtRand/cPecan/seqio"
	"github.com/ArtRand/cPecan/statemachine"
)

func identityMachine() statemachine.StateMachine {
	return statemachine.NewThreeState(statemachine.NewDiscreteEmissions(
		math.Log(0.95), math.Log(0.05/3), math.Log(0.25),
	))
}

// TestIdentityAlignmentRecoversDiagonal mirrors scenario S1: aligning a
// sequence to itself should recover the full diagonal with high-confidence
// posteriors.
func TestIdentityAlignmentRecoversDiagonal(t *testing.T) {
	x := seqio.NewNucleotides("AGCTT")
	y := seqio.NewNucleotides("AGCTT")

	anchors := []band.Anchor{{X: 2, Y: 2}}
	b, err := band.Construct(anchors, int64(x.Len()), int64(y.Len()), 4)
	require.NoError(t, err)

	sm := identityMachine()
	driver := Driver{MinDiagsBetweenTraceBack: 2, TraceBackDiagonals: 2}

	var pairs posterior.Pairs
	sink := EmitPairs{Pairs: &pairs, Threshold: posterior.NewProb(0.01)}

	err = driver.Align(sm, x, y, b, false, false, sink)
	require.NoError(t, err)

	seen := make(map[[2]int64]posterior.Prob)
	for _, p := range pairs {
		seen[[2]int64{p.X, p.Y}] = p.Prob
	}
	for i := int64(0); i < 5; i++ {
		p, ok := seen[[2]int64{i, i}]
		assert.True(t, ok, "expected pair (%d,%d)", i, i)
		assert.Greater(t, p.Float(), 0.9, "pair (%d,%d) posterior too low", i, i)
	}
}

// TestSingleInsertionInY mirrors scenario S2: a single extra base in y
// should produce a diagonal match run either side of one unmatched y
// position, with no pair emitted at that position.
func TestSingleInsertionInY(t *testing.T) {
	x := seqio.NewNucleotides("ACGT")
	y := seqio.NewNucleotides("ACCGT")

	anchors := []band.Anchor{{X: 1, Y: 1}}
	b, err := band.Construct(anchors, int64(x.Len()), int64(y.Len()), 4)
	require.NoError(t, err)

	sm := identityMachine()
	driver := Driver{MinDiagsBetweenTraceBack: 2, TraceBackDiagonals: 2}

	var pairs posterior.Pairs
	sink := EmitPairs{Pairs: &pairs, Threshold: posterior.NewProb(0.01)}
	err = driver.Align(sm, x, y, b, false, false, sink)
	require.NoError(t, err)

	seen := make(map[[2]int64]bool)
	for _, p := range pairs {
		seen[[2]int64{p.X, p.Y}] = true
	}
	for _, want := range [][2]int64{{0, 0}, {1, 1}, {2, 3}, {3, 4}} {
		assert.True(t, seen[want], "expected pair %v", want)
	}
	for _, p := range pairs {
		assert.NotEqual(t, int64(2), p.Y, "no pair should land on the inserted y position")
	}
}

// TestSingleDeletionInX mirrors scenario S3: a single extra base in x
// should produce the mirror image of S2, shifted across the x axis
// instead of y.
func TestSingleDeletionInX(t *testing.T) {
	x := seqio.NewNucleotides("ACCGT")
	y := seqio.NewNucleotides("ACGT")

	anchors := []band.Anchor{{X: 1, Y: 1}}
	b, err := band.Construct(anchors, int64(x.Len()), int64(y.Len()), 4)
	require.NoError(t, err)

	sm := identityMachine()
	driver := Driver{MinDiagsBetweenTraceBack: 2, TraceBackDiagonals: 2}

	var pairs posterior.Pairs
	sink := EmitPairs{Pairs: &pairs, Threshold: posterior.NewProb(0.01)}
	err = driver.Align(sm, x, y, b, false, false, sink)
	require.NoError(t, err)

	seen := make(map[[2]int64]bool)
	for _, p := range pairs {
		seen[[2]int64{p.X, p.Y}] = true
	}
	for _, want := range [][2]int64{{0, 0}, {1, 1}, {3, 2}, {4, 3}} {
		assert.True(t, seen[want], "expected pair %v", want)
	}
	for _, p := range pairs {
		assert.NotEqual(t, int64(2), p.X, "no pair should land on the deleted x position")
	}
}

// TestRaggedRightEndIgnoresTrailingBases mirrors scenario S5: a trailing
// run of unalignable bases in y, combined with hasRaggedRightEnd, should
// not depress the posteriors of the bases that do match relative to an
// alignment that never saw the trailing run at all.
func TestRaggedRightEndIgnoresTrailingBases(t *testing.T) {
	xPlain := seqio.NewNucleotides("ACGT")
	yPlain := seqio.NewNucleotides("ACGT")

	anchorsPlain := []band.Anchor{{X: 1, Y: 1}}
	bPlain, err := band.Construct(anchorsPlain, int64(xPlain.Len()), int64(yPlain.Len()), int64(xPlain.Len()+yPlain.Len()))
	require.NoError(t, err)

	sm := identityMachine()
	driver := Driver{MinDiagsBetweenTraceBack: 2, TraceBackDiagonals: 2}

	var plainPairs posterior.Pairs
	plainSink := EmitPairs{Pairs: &plainPairs, Threshold: posterior.NewProb(0.01)}
	require.NoError(t, driver.Align(sm, xPlain, yPlain, bPlain, false, false, plainSink))

	plainSeen := make(map[[2]int64]posterior.Prob)
	for _, p := range plainPairs {
		plainSeen[[2]int64{p.X, p.Y}] = p.Prob
	}

	xRagged := seqio.NewNucleotides("ACGT")
	yRagged := seqio.NewNucleotides("ACGTXXXX")

	anchorsRagged := []band.Anchor{{X: 1, Y: 1}}
	bRagged, err := band.Construct(anchorsRagged, int64(xRagged.Len()), int64(yRagged.Len()), int64(xRagged.Len()+yRagged.Len()))
	require.NoError(t, err)

	var raggedPairs posterior.Pairs
	raggedSink := EmitPairs{Pairs: &raggedPairs, Threshold: posterior.NewProb(0.01)}
	require.NoError(t, driver.Align(sm, xRagged, yRagged, bRagged, false, true, raggedSink))

	raggedSeen := make(map[[2]int64]posterior.Prob)
	for _, p := range raggedPairs {
		raggedSeen[[2]int64{p.X, p.Y}] = p.Prob
	}

	for i := int64(0); i < 4; i++ {
		key := [2]int64{i, i}
		want, ok := plainSeen[key]
		require.True(t, ok, "plain run missing pair %v", key)
		got, ok := raggedSeen[key]
		require.True(t, ok, "ragged run missing pair %v", key)
		assert.InDelta(t, want.Float(), got.Float(), 1e-3, "pair %v posterior diverged", key)
	}
}

// TestAlignSegmentedMatchesUnsplitAlignment mirrors scenario S4: splitting
// a long alignment into anchor-bounded sub-problems should recover
// (almost) the same pairs as running the whole thing through one band.
func TestAlignSegmentedMatchesUnsplitAlignment(t *testing.T) {
	var xb, yb []byte
	for i := 0; i < 250; i++ {
		xb = append(xb, "ACGT"[i%4])
		yb = append(yb, "ACGT"[i%4])
	}
	x := seqio.NewNucleotides(string(xb))
	y := seqio.NewNucleotides(string(yb))

	anchors := anchor.List{{X: 5, Y: 5}, {X: 200, Y: 200}}
	sm := identityMachine()
	driver := Driver{MinDiagsBetweenTraceBack: 4, TraceBackDiagonals: 4}

	// A wide expansion keeps every segment's band fully populated despite
	// the anchors being sparse relative to each sub-problem's own size,
	// so the only source of divergence from the unsplit run is the split
	// itself, not band pruning.
	wideExpansion := int64(x.Len() + y.Len())

	segmented, segments, err := driver.AlignSegmented(sm, x, y, anchors, wideExpansion, 10_000, false, false, posterior.NewProb(0.01))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(segments), 2, "expected the 250x250 matrix to be split into at least two sub-problems")

	b, err := band.Construct([]band.Anchor(anchors), int64(x.Len()), int64(y.Len()), wideExpansion)
	require.NoError(t, err)
	var unsplit posterior.Pairs
	sink := EmitPairs{Pairs: &unsplit, Threshold: posterior.NewProb(0.01)}
	require.NoError(t, driver.Align(sm, x, y, b, false, false, sink))

	sort.Sort(segmented)
	sort.Sort(unsplit)

	diffs := 0
	segSet := make(map[[2]int64]bool, len(segmented))
	for _, p := range segmented {
		segSet[[2]int64{p.X, p.Y}] = true
	}
	for _, p := range unsplit {
		if !segSet[[2]int64{p.X, p.Y}] {
			diffs++
		}
	}
	if diffs > 2 {
		diff, derr := unsplit.Diff(segmented)
		require.NoError(t, derr)
		t.Fatalf("segmented alignment diverged from unsplit reference in %d pairs:\n%s", diffs, diff)
	}
}

func TestAccumulateExpectationsAddsTransitionMass(t *testing.T) {
	x := seqio.NewNucleotides("AGCTT")
	y := seqio.NewNucleotides("AGCTT")

	anchors := []band.Anchor{{X: 2, Y: 2}}
	b, err := band.Construct(anchors, int64(x.Len()), int64(y.Len()), 4)
	require.NoError(t, err)

	sm := identityMachine()
	driver := Driver{MinDiagsBetweenTraceBack: 2, TraceBackDiagonals: 2}

	acc := hmm.New(sm.StateNumber())
	err = driver.Align(sm, x, y, b, false, false, AccumulateExpectations{Hmm: acc})
	require.NoError(t, err)

	assert.Greater(t, acc.TransitionExpectation(0, 0), 0.0)
	assert.Greater(t, acc.Likelihood, 0.0)
}

// TestAccumulateExpectationsLikelihoodMatchesReferenceOracle cross-checks
// the banded driver's accumulated likelihood against a brute-force,
// unbanded forward pass with a wide-enough band that nothing gets pruned.
// On mismatch, pretty-prints a diff of the two input sequences so a
// divergence caused by a typo'd fixture is obvious at a glance, rather than
// just a bare float comparison failure.
func TestAccumulateExpectationsLikelihoodMatchesReferenceOracle(t *testing.T) {
	x := seqio.NewNucleotides("AGCTT")
	y := seqio.NewNucleotides("AGCAT")

	anchors := []band.Anchor{{X: 2, Y: 2}}
	b, err := band.Construct(anchors, int64(x.Len()), int64(y.Len()), int64(x.Len()+y.Len()))
	require.NoError(t, err)

	sm := identityMachine()
	driver := Driver{MinDiagsBetweenTraceBack: 2, TraceBackDiagonals: 2}

	acc := hmm.New(sm.StateNumber())
	err = driver.Align(sm, x, y, b, false, false, AccumulateExpectations{Hmm: acc})
	require.NoError(t, err)

	want, err := reference.ForwardLogProbability(sm, x, y)
	require.NoError(t, err)

	got := math.Log(acc.Likelihood)
	if math.Abs(got-want) > 1e-6 {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(x.String(), y.String(), false)
		t.Fatalf("banded likelihood %f disagrees with reference oracle %f\nsequence diff:\n%s", got, want, dmp.DiffPrettyText(diffs))
	}
}
