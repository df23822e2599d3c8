package pairhmm

import (
	"github.com/lunny/log"

	"github.com/ArtRand/cPecan/anchor"
	"github.com/ArtRand/cPecan/band"
	"github.com/ArtRand/cPecan/posterior"
	"github.com/ArtRand/cPecan/seqio"
	"github.com/ArtRand/cPecan/statemachine"
)

// AlignSegmented bounds the banded matrix's memory by splitting sx/sy into
// however many sub-problems anchor.GetSplitPoints decides are needed to
// keep each one under maxMatrixSize cells, aligning every segment
// independently with its own band, and merging the emitted pairs back into
// one coordinate space. Sequences short enough to band in a single pass
// come back as exactly one segment, so callers never need to special-case
// small inputs.
func (d Driver) AlignSegmented(sm statemachine.StateMachine, sx, sy seqio.View, anchors anchor.List, expansion, maxMatrixSize int64, raggedLeft, raggedRight bool, threshold posterior.Prob) (posterior.Pairs, []anchor.Segment, error) {
	lX, lY := int64(sx.Len()), int64(sy.Len())
	segments := anchor.GetSplitPoints(anchors, lX, lY, maxMatrixSize, raggedLeft, raggedRight)

	var all posterior.Pairs
	for _, seg := range segments {
		segSX, err := sx.Slice(int(seg.XStart), int(seg.XEnd-seg.XStart))
		if err != nil {
			return nil, nil, err
		}
		segSY, err := sy.Slice(int(seg.YStart), int(seg.YEnd-seg.YStart))
		if err != nil {
			return nil, nil, err
		}

		// seg.Anchors of the first and last segments carry the
		// (-1,-1)/(lX,lY) bookkeeping sentinels of GetSplitPoints; band.Construct
		// adds its own local sentinels, so drop the global ones here
		// rather than re-offset them into something nonsensical.
		var localAnchors []band.Anchor
		for _, a := range seg.Anchors {
			if a.X < 0 || a.Y < 0 || a.X >= lX || a.Y >= lY {
				continue
			}
			localAnchors = append(localAnchors, band.Anchor{X: a.X - seg.XStart, Y: a.Y - seg.YStart})
		}

		b, err := band.Construct(localAnchors, int64(segSX.Len()), int64(segSY.Len()), expansion)
		if err != nil {
			return nil, nil, err
		}

		var pairs posterior.Pairs
		sink := EmitPairs{Pairs: &pairs, Threshold: threshold}
		// A sub-problem with no legal path through its own band (an
		// unreachable split point, say) doesn't invalidate the other
		// sub-problems: warn and move on rather than aborting the whole
		// alignment over one bad segment.
		if err := d.Align(sm, segSX, segSY, b, seg.RaggedLeft, seg.RaggedRight, sink); err != nil {
			log.Warnf("cpecan: segment [%d,%d)x[%d,%d) failed, skipping: %v", seg.XStart, seg.XEnd, seg.YStart, seg.YEnd, err)
			continue
		}

		for _, p := range pairs {
			all = append(all, posterior.AlignedPair{X: p.X + seg.XStart, Y: p.Y + seg.YStart, Prob: p.Prob})
		}
	}

	return all, segments, nil
}
