// Package band builds the banded region of the DP matrix that the pair-HMM
// engine is allowed to visit, and provides forward/backward iterators over
// it. Cells outside the band are implicitly LogZero.
package band

import (
	"fmt"

	"github.com/ArtRand/cPecan/cpecanerr"
)

// Anchor is a constraint pair (x, y) the band is built around.
type Anchor struct {
	X, Y int64
}

// Diagonal is the immutable triple (xay, xmyL, xmyR) described in the data
// model: xay = x+y, and xmyL <= xmyR are the min/max of x-y on that
// diagonal.
type Diagonal struct {
	Xay, XmyL, XmyR int64
}

// Width returns the number of cells on the diagonal.
func (d Diagonal) Width() int64 {
	if d.XmyR < d.XmyL {
		return 0
	}
	return (d.XmyR-d.XmyL)/2 + 1
}

// X returns the x coordinate of the cell at xmy on this diagonal's xay.
func X(xay, xmy int64) int64 { return (xay + xmy) / 2 }

// Y returns the y coordinate of the cell at xmy on this diagonal's xay.
func Y(xay, xmy int64) int64 { return (xay - xmy) / 2 }

// Band is the set of legal (xay, xmy) cells for sequences of length lX, lY,
// one Diagonal per xay in [0, lX+lY].
type Band struct {
	lX, lY     int64
	diagonals  []Diagonal
	filled     []bool
}

// LX and LY return the sequence lengths this band was built for.
func (b *Band) LX() int64 { return b.lX }
func (b *Band) LY() int64 { return b.lY }

// legalRange returns the min/max xmy a cell on diagonal xay could ever have,
// i.e. the constraint that x in [0,lX] and y in [0,lY].
func legalRange(xay, lX, lY int64) (lo, hi int64) {
	lo = xay - 2*lY
	if -xay > lo {
		lo = -xay
	}
	hi = xay
	if 2*lX-xay < hi {
		hi = 2*lX - xay
	}
	return lo, hi
}

// Construct builds a Band for sequence lengths lX, lY given a monotonic
// anchor list and a ±expansion diamond around each anchor (plus the virtual
// anchors (-1,-1) and (lX,lY)). Diagonals with no anchor diamond covering
// them are left unfilled: the driver treats them as LogZero, which is
// exactly what should happen when the caller failed to pre-split a gap
// wider than the band can bridge.
func Construct(anchors []Anchor, lX, lY, expansion int64) (*Band, error) {
	if lX < 0 || lY < 0 {
		return nil, fmt.Errorf("%w: negative sequence length (lX=%d, lY=%d)", cpecanerr.ErrBadInput, lX, lY)
	}
	if expansion < 0 {
		return nil, fmt.Errorf("%w: negative diagonal expansion %d", cpecanerr.ErrBadInput, expansion)
	}

	all := make([]Anchor, 0, len(anchors)+2)
	all = append(all, Anchor{-1, -1})
	all = append(all, anchors...)
	all = append(all, Anchor{lX, lY})

	for i := 1; i < len(all); i++ {
		if all[i].X <= all[i-1].X || all[i].Y <= all[i-1].Y {
			return nil, fmt.Errorf("%w: anchors must be strictly increasing in both coordinates, got %v then %v", cpecanerr.ErrBadInput, all[i-1], all[i])
		}
	}

	n := lX + lY + 1
	lo := make([]int64, n)
	hi := make([]int64, n)
	filled := make([]bool, n)
	for i := range lo {
		lo[i] = 1
		hi[i] = -1
	}

	for _, a := range all {
		xay0 := a.X + a.Y
		xmy0 := a.X - a.Y
		for d := -expansion; d <= expansion; d++ {
			xay := xay0 + d
			if xay < 0 || xay >= n {
				continue
			}
			width := expansion - abs64(d)
			diamondLo, diamondHi := xmy0-width, xmy0+width
			legalLo, legalHi := legalRange(xay, lX, lY)
			if diamondLo < legalLo {
				diamondLo = legalLo
			}
			if diamondHi > legalHi {
				diamondHi = legalHi
			}
			// An odd expansion leaves the diamond's bounds off the
			// diagonal's parity; pull them inward onto real cells.
			if (diamondLo-xay)%2 != 0 {
				diamondLo++
			}
			if (diamondHi-xay)%2 != 0 {
				diamondHi--
			}
			if diamondLo > diamondHi {
				continue
			}
			if !filled[xay] || diamondLo < lo[xay] {
				lo[xay] = diamondLo
			}
			if !filled[xay] || diamondHi > hi[xay] {
				hi[xay] = diamondHi
			}
			filled[xay] = true
		}
	}

	diagonals := make([]Diagonal, n)
	for xay := int64(0); xay < n; xay++ {
		if filled[xay] {
			diagonals[xay] = Diagonal{Xay: xay, XmyL: lo[xay], XmyR: hi[xay]}
		} else {
			diagonals[xay] = Diagonal{Xay: xay, XmyL: 1, XmyR: -1}
		}
	}

	return &Band{lX: lX, lY: lY, diagonals: diagonals, filled: filled}, nil
}

// At returns the diagonal at xay and whether it is filled (non-empty).
func (b *Band) At(xay int64) (Diagonal, bool) {
	if xay < 0 || xay >= int64(len(b.diagonals)) {
		return Diagonal{}, false
	}
	return b.diagonals[xay], b.filled[xay]
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
