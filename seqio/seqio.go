// Package seqio provides a uniform random-access view over the three kinds
// of sequence the pair-HMM engine aligns against each other: raw
// nucleotides, the k-mers derived from them, and nanopore events. Each view
// exposes the same tiny contract so the cell kernel never needs to know
// which one it is reading from.
package seqio

import "fmt"

// Element is whatever a View hands back from At. Concrete views document
// the dynamic type they return (byte, string, Event); callers type
// assert to the type they know they asked for.
type Element interface{}

// View is a length, a stable element accessor, and a slice operation. The
// pointer/value returned by At is only guaranteed valid until the next call
// to At on the same View — the cell kernel always reads an emission before
// advancing to the next cell, so this is never a problem in practice.
type View interface {
	Len() int
	At(i int) Element
	Slice(start, length int) (View, error)
}

// Nucleotides is a View over a raw base string; At returns a byte.
type Nucleotides struct {
	bases string
}

// NewNucleotides wraps a raw base string for nucleotide-by-nucleotide access.
func NewNucleotides(bases string) Nucleotides {
	return Nucleotides{bases: bases}
}

func (n Nucleotides) Len() int { return len(n.bases) }

func (n Nucleotides) At(i int) Element {
	if i < 0 || i >= len(n.bases) {
		panic(fmt.Sprintf("seqio: nucleotide index %d out of range [0,%d)", i, len(n.bases)))
	}
	return n.bases[i]
}

func (n Nucleotides) Slice(start, length int) (View, error) {
	if start < 0 || length < 0 || start+length > len(n.bases) {
		return nil, fmt.Errorf("seqio: slice [%d,%d) out of range for nucleotide sequence of length %d", start, start+length, len(n.bases))
	}
	return Nucleotides{bases: n.bases[start : start+length]}, nil
}

// String returns the underlying base string.
func (n Nucleotides) String() string { return n.bases }

// Kmers is a View over the overlapping k-mers of a base string. Its virtual
// length is L-k+1, per the k-mer semantics in the data model: a k-mer
// sequence is one element shorter than its nucleotide length for every unit
// of k beyond 1.
type Kmers struct {
	bases string
	k     int
}

// NewKmers builds a Kmers view over bases with k-mer width k.
func NewKmers(bases string, k int) (Kmers, error) {
	if k <= 0 {
		return Kmers{}, fmt.Errorf("seqio: k-mer width must be positive, got %d", k)
	}
	if len(bases) < k {
		return Kmers{}, fmt.Errorf("seqio: sequence of length %d shorter than k-mer width %d", len(bases), k)
	}
	return Kmers{bases: bases, k: k}, nil
}

func (km Kmers) Len() int { return len(km.bases) - km.k + 1 }

// At returns the k-mer string starting at index i.
func (km Kmers) At(i int) Element {
	if i < 0 || i >= km.Len() {
		panic(fmt.Sprintf("seqio: k-mer index %d out of range [0,%d)", i, km.Len()))
	}
	return km.bases[i : i+km.k]
}

func (km Kmers) Slice(start, length int) (View, error) {
	if start < 0 || length < 0 || start+length > km.Len() {
		return nil, fmt.Errorf("seqio: slice [%d,%d) out of range for k-mer view of length %d", start, start+length, km.Len())
	}
	// The backing bases need to extend k-1 past the last requested k-mer so
	// its final k-mer is still fully readable.
	baseEnd := start + length + km.k - 1
	return Kmers{bases: km.bases[start:baseEnd], k: km.k}, nil
}

// K returns the k-mer width.
func (km Kmers) K() int { return km.k }

// NBEventParams is the stride of a flat nanopore event array: mean current
// level, a noise/variance term, and event duration.
const NBEventParams = 3

// Event is a single pore current measurement.
type Event struct {
	Mean, Noise, Length float64
}

// Events is a View over a flat, strided array of nanopore events.
type Events struct {
	data []float64
}

// NewEvents wraps a flat event array (length must be a multiple of
// NBEventParams).
func NewEvents(data []float64) (Events, error) {
	if len(data)%NBEventParams != 0 {
		return Events{}, fmt.Errorf("seqio: event array length %d is not a multiple of %d", len(data), NBEventParams)
	}
	return Events{data: data}, nil
}

func (e Events) Len() int { return len(e.data) / NBEventParams }

func (e Events) At(i int) Element {
	if i < 0 || i >= e.Len() {
		panic(fmt.Sprintf("seqio: event index %d out of range [0,%d)", i, e.Len()))
	}
	off := i * NBEventParams
	return Event{Mean: e.data[off], Noise: e.data[off+1], Length: e.data[off+2]}
}

func (e Events) Slice(start, length int) (View, error) {
	if start < 0 || length < 0 || start+length > e.Len() {
		return nil, fmt.Errorf("seqio: slice [%d,%d) out of range for event view of length %d", start, start+length, e.Len())
	}
	off := start * NBEventParams
	return Events{data: e.data[off : off+length*NBEventParams]}, nil
}
