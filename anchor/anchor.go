// Package anchor derives the constraint pairs a band is built around: exact
// k-mer seed matches between two sequences, filtered down to a strictly
// monotonic chain, and (for sequences too long to band in one pass) split
// into sub-problems no larger than a configured matrix budget.
package anchor

import (
	"fmt"

	"github.com/spaolacci/murmur3"
	"golang.org/x/exp/slices"

	"github.com/ArtRand/cPecan/band"
	"github.com/ArtRand/cPecan/cpecanerr"
	"github.com/ArtRand/cPecan/guide"
	"github.com/ArtRand/cPecan/repeatmask"
	"github.com/ArtRand/cPecan/seqio"
)

// List is an ordered list of anchor pairs.
type List []band.Anchor

// GetBlastPairs seeds anchors by exact k-mer match between sx and sy,
// skipping any seed whose sx position falls inside mask (if mask is
// non-nil), then filters the raw hit list down to a strictly monotonic
// chain via FilterToRemoveOverlap. trim discards the first/last trim
// k-mers of sx from consideration, the way a real seeder avoids noisy
// read ends.
//
// The seed index is keyed by a 64-bit murmur3 hash of each k-mer window
// rather than the raw k-mer string, so seeding a long nanopore read stays
// allocation-light (one map entry per distinct hash instead of per
// distinct substring copy).
func GetBlastPairs(sx, sy seqio.View, trim int64, mask *repeatmask.Set) (List, error) {
	if sx.Len() == 0 || sy.Len() == 0 {
		return nil, fmt.Errorf("%w: cannot seed anchors from an empty sequence", cpecanerr.ErrBadInput)
	}

	index := make(map[uint64][]int64, sy.Len())
	for j := 0; j < sy.Len(); j++ {
		h := hashElement(sy.At(j))
		index[h] = append(index[h], int64(j))
	}

	var raw List
	lo, hi := trim, int64(sx.Len())-trim
	for i := lo; i < hi; i++ {
		if i < 0 || int(i) >= sx.Len() {
			continue
		}
		if mask != nil && mask.Get(i) {
			continue
		}
		h := hashElement(sx.At(int(i)))
		for _, j := range index[h] {
			raw = append(raw, band.Anchor{X: i, Y: j})
		}
	}

	return FilterToRemoveOverlap(raw), nil
}

func hashElement(e seqio.Element) uint64 {
	switch v := e.(type) {
	case byte:
		return murmur3.Sum64([]byte{v})
	case string:
		return murmur3.Sum64([]byte(v))
	default:
		return murmur3.Sum64([]byte(fmt.Sprintf("%v", v)))
	}
}

// FilterToRemoveOverlap sorts pairs by (x+y, x) and greedily keeps only
// those strictly increasing in both X and Y, dropping everything else.
// Ties on x+y are broken toward the smaller x, matching the original
// aligner's monotonic chain filter.
func FilterToRemoveOverlap(pairs List) List {
	sorted := make(List, len(pairs))
	copy(sorted, pairs)
	slices.SortFunc(sorted, func(a, b band.Anchor) bool {
		sa, sb := a.X+a.Y, b.X+b.Y
		if sa != sb {
			return sa < sb
		}
		return a.X < b.X
	})

	out := make(List, 0, len(sorted))
	var maxX, maxY int64 = -1, -1
	first := true
	for _, p := range sorted {
		if !first && (p.X <= maxX || p.Y <= maxY) {
			continue
		}
		out = append(out, p)
		maxX, maxY = p.X, p.Y
		first = false
	}
	return out
}

// Segment is one split-out sub-problem: the rectangle [XStart,XEnd) x
// [YStart,YEnd), the anchors that fall inside it (the first and last
// segments also carry the virtual (-1,-1) and (lX,lY) boundary anchors),
// and whether the segment is allowed a ragged start/end (only the
// first/last segment ever is).
type Segment struct {
	XStart, YStart, XEnd, YEnd int64
	Anchors                    List
	RaggedLeft, RaggedRight    bool
}

// GetSplitPoints walks anchors and breaks the full [0,lX) x [0,lY)
// rectangle into segments no larger than maxMatrixSize cells, splitting
// at the midpoint of any gap between consecutive anchors that would
// otherwise exceed the budget. raggedLeft/raggedRight propagate only to
// the first/last segment.
func GetSplitPoints(anchors List, lX, lY, maxMatrixSize int64, raggedLeft, raggedRight bool) []Segment {
	all := make(List, 0, len(anchors)+2)
	all = append(all, band.Anchor{X: -1, Y: -1})
	all = append(all, anchors...)
	all = append(all, band.Anchor{X: lX, Y: lY})

	var segments []Segment
	segStart := 0
	xStart, yStart := int64(0), int64(0)

	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		width, height := cur.X-prev.X, cur.Y-prev.Y
		if width*height > maxMatrixSize && i < len(all)-1 {
			midX := prev.X + width/2
			midY := prev.Y + height/2
			segments = append(segments, Segment{
				XStart: xStart, YStart: yStart, XEnd: midX, YEnd: midY,
				Anchors: append(List(nil), all[segStart:i]...),
			})
			xStart, yStart = midX, midY
			segStart = i
		}
	}
	segments = append(segments, Segment{
		XStart: xStart, YStart: yStart, XEnd: lX, YEnd: lY,
		Anchors: append(List(nil), all[segStart:]...),
	})

	if len(segments) > 0 {
		segments[0].RaggedLeft = raggedLeft
		segments[len(segments)-1].RaggedRight = raggedRight
	}
	return segments
}

// DeriveAnchorsFromGuide walks an already-parsed guide alignment's CIGAR
// operations and returns the (x, y) pairs its Match blocks imply, trimmed
// by trim positions at each Match run's edges. Indel operations simply
// advance one coordinate without producing an anchor.
func DeriveAnchorsFromGuide(pa guide.PairwiseAlignment, trim int64) (List, error) {
	var out List
	x, y := pa.Start1, pa.Start2
	for _, op := range pa.Operations {
		switch op.Kind {
		case guide.Match:
			for k := int64(0); k < op.Length; k++ {
				if k >= trim && k < op.Length-trim {
					out = append(out, band.Anchor{X: x + k, Y: y + k})
				}
			}
			x += op.Length
			y += op.Length
		case guide.Insert:
			x += op.Length
		case guide.Delete:
			y += op.Length
		default:
			return nil, fmt.Errorf("%w: unrecognised guide operation kind %v", cpecanerr.ErrBadInput, op.Kind)
		}
	}
	return out, nil
}
