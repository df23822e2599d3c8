// Package guide defines the thin record a caller's already-parsed guide
// alignment is handed to the core in: a coordinate span on each sequence
// plus a CIGAR-style operation list. FromSAM turns a parsed sam.Alignment's
// CIGAR text into this shape, so a guide alignment can come straight from a
// SAM/BAM mapper's output instead of needing to be hand-built.
package guide

import (
	"fmt"
	"strconv"

	"github.com/ArtRand/cPecan/cpecanerr"
	"github.com/ArtRand/cPecan/io/sam"
)

// OpKind is one CIGAR-style alignment operation kind.
type OpKind int

const (
	// Match consumes one symbol from both sequences.
	Match OpKind = iota
	// Insert consumes a symbol from sequence 1 only (a gap in sequence 2).
	Insert
	// Delete consumes a symbol from sequence 2 only (a gap in sequence 1).
	Delete
)

func (k OpKind) String() string {
	switch k {
	case Match:
		return "M"
	case Insert:
		return "I"
	case Delete:
		return "D"
	default:
		return "?"
	}
}

// Operation is one run-length-encoded CIGAR-style operation.
type Operation struct {
	Kind   OpKind
	Length int64
}

// PairwiseAlignment is the guide alignment the core consumes to derive
// anchors from: which contigs/strands, the span on each, and the
// operation list describing how they correspond over that span.
type PairwiseAlignment struct {
	Contig1, Strand1 string
	Start1, End1     int64
	Contig2, Strand2 string
	Start2, End2     int64
	Operations       []Operation
}

// FromSAM builds a PairwiseAlignment from a parsed SAM alignment record,
// treating the alignment's SEQ as sequence 1 (query) and RNAME as sequence
// 2 (reference). Only M/=/X (match), I (insert), and D (delete) CIGAR
// operations are understood; soft/hard clips and the other operation codes
// have no analogue in a two-sequence pairwise alignment and are rejected.
func FromSAM(a *sam.Alignment) (PairwiseAlignment, error) {
	ops, refSpan, querySpan, err := parseCIGAR(a.CIGAR)
	if err != nil {
		return PairwiseAlignment{}, err
	}
	start2 := int64(a.POS) - 1
	if start2 < 0 {
		start2 = 0
	}
	return PairwiseAlignment{
		Contig1:    a.QNAME,
		Start1:     0,
		End1:       querySpan,
		Contig2:    a.RNAME,
		Start2:     start2,
		End2:       start2 + refSpan,
		Operations: ops,
	}, nil
}

func parseCIGAR(cigar string) ([]Operation, int64, int64, error) {
	if cigar == "" || cigar == "*" {
		return nil, 0, 0, fmt.Errorf("%w: empty CIGAR string", cpecanerr.ErrBadInput)
	}
	var ops []Operation
	var refSpan, querySpan int64
	start := 0
	for i := 0; i < len(cigar); i++ {
		c := cigar[i]
		if c < '0' || c > '9' {
			length, err := strconv.ParseInt(cigar[start:i], 10, 64)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("%w: malformed CIGAR length in %q: %v", cpecanerr.ErrBadInput, cigar, err)
			}
			var kind OpKind
			switch c {
			case 'M', '=', 'X':
				kind = Match
				refSpan += length
				querySpan += length
			case 'I':
				kind = Insert
				querySpan += length
			case 'D':
				kind = Delete
				refSpan += length
			default:
				return nil, 0, 0, fmt.Errorf("%w: CIGAR operation %q has no pairwise-alignment analogue", cpecanerr.ErrUnsupported, string(c))
			}
			ops = append(ops, Operation{Kind: kind, Length: length})
			start = i + 1
		}
	}
	if start != len(cigar) {
		return nil, 0, 0, fmt.Errorf("%w: trailing characters in CIGAR %q", cpecanerr.ErrBadInput, cigar)
	}
	return ops, refSpan, querySpan, nil
}
