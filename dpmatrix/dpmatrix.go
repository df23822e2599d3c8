// Package dpmatrix holds the DP state for a banded alignment: one
// DpDiagonal per resident xay, stored in a fixed-capacity ring buffer so
// peak memory stays bounded by the sliding-window width rather than by
// sequence length.
package dpmatrix

import (
	"math"

	"github.com/ArtRand/cPecan/band"
)

// DpDiagonal is a Diagonal plus a dense array of per-cell state vectors, one
// vector of length S per legal xmy on the diagonal. Values are
// log-probabilities.
type DpDiagonal struct {
	Diagonal    band.Diagonal
	states      int
	cells       []float64 // flat: (xmy-XmyL)/2 * states + s
}

func newDpDiagonal(d band.Diagonal, states int) *DpDiagonal {
	width := d.Width()
	dd := &DpDiagonal{
		Diagonal: d,
		states:   states,
		cells:    make([]float64, int64(states)*width),
	}
	dd.Zero()
	return dd
}

// Zero sets every cell to LogZero.
func (dd *DpDiagonal) Zero() {
	for i := range dd.cells {
		dd.cells[i] = math.Inf(-1)
	}
}

// Cell returns the state vector for xmy, or nil if xmy is not legal on this
// diagonal.
func (dd *DpDiagonal) Cell(xmy int64) []float64 {
	if xmy < dd.Diagonal.XmyL || xmy > dd.Diagonal.XmyR || (xmy-dd.Diagonal.XmyL)%2 != 0 {
		return nil
	}
	idx := (xmy - dd.Diagonal.XmyL) / 2
	start := idx * int64(dd.states)
	return dd.cells[start : start+int64(dd.states)]
}

// Initialise sets every legal cell's state vector to stateValue(s) for each
// state s — used to seed start/end (or ragged-start/ragged-end) priors.
func (dd *DpDiagonal) Initialise(stateValue func(state int) float64) {
	for xmy := dd.Diagonal.XmyL; xmy <= dd.Diagonal.XmyR; xmy += 2 {
		cell := dd.Cell(xmy)
		for s := 0; s < dd.states; s++ {
			cell[s] = stateValue(s)
		}
	}
}

// DotProduct returns sum over (xmy, s) of exp(d1[xmy][s] + d2[xmy][s]),
// used for forward/backward total-probability cross-checks.
func (dd *DpDiagonal) DotProduct(other *DpDiagonal) float64 {
	total := 0.0
	for xmy := dd.Diagonal.XmyL; xmy <= dd.Diagonal.XmyR; xmy += 2 {
		a := dd.Cell(xmy)
		if a == nil {
			continue
		}
		b := other.Cell(xmy)
		if b == nil {
			continue
		}
		for s := range a {
			total += math.Exp(a[s] + b[s])
		}
	}
	return total
}

// Matrix is a bounded-capacity ring buffer of DpDiagonals keyed by xay. Only
// window distinct diagonals can be resident at once; creating a new
// diagonal whose slot is occupied by a different xay silently evicts it
// (the driver is responsible for calling DeleteDiagonal before that would
// happen).
type Matrix struct {
	window  int64
	states  int
	slots   []*DpDiagonal
	slotXay []int64
	active  int
}

// New returns a Matrix with room for `window` distinct diagonals, each
// diagonal carrying `states`-length state vectors per cell.
func New(window int64, states int) *Matrix {
	slotXay := make([]int64, window)
	for i := range slotXay {
		slotXay[i] = -1
	}
	return &Matrix{
		window:  window,
		states:  states,
		slots:   make([]*DpDiagonal, window),
		slotXay: slotXay,
	}
}

func (m *Matrix) slot(xay int64) int64 {
	s := xay % m.window
	if s < 0 {
		s += m.window
	}
	return s
}

// GetDiagonal returns the resident diagonal at xay, or nil.
func (m *Matrix) GetDiagonal(xay int64) *DpDiagonal {
	s := m.slot(xay)
	if m.slotXay[s] == xay {
		return m.slots[s]
	}
	return nil
}

// CreateDiagonal allocates a new DpDiagonal for d and makes it resident,
// evicting whatever diagonal currently occupies its ring slot.
func (m *Matrix) CreateDiagonal(d band.Diagonal) *DpDiagonal {
	s := m.slot(d.Xay)
	if m.slots[s] != nil {
		m.active--
	}
	dd := newDpDiagonal(d, m.states)
	m.slots[s] = dd
	m.slotXay[s] = d.Xay
	m.active++
	return dd
}

// DeleteDiagonal frees the diagonal at xay if it is resident.
func (m *Matrix) DeleteDiagonal(xay int64) {
	s := m.slot(xay)
	if m.slotXay[s] == xay {
		m.slots[s] = nil
		m.slotXay[s] = -1
		m.active--
	}
}

// ActiveDiagonalNumber returns how many diagonals are currently resident.
func (m *Matrix) ActiveDiagonalNumber() int { return m.active }

// States returns the per-cell state vector length this matrix was built for.
func (m *Matrix) States() int { return m.states }
