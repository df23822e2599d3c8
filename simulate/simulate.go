// Package simulate generates synthetic reads from a reference sequence by
// choosing, independently at each reference position, whether to emit a
// match, a mismatch, an insertion, or a deletion according to configured
// weights. It exists to produce test fixtures with a known ground-truth
// alignment for exercising the banded aligner, the same way a codon
// optimizer picks a weighted-random synonymous codon at each amino acid
// position.
package simulate

import (
	"math/rand"
	"strings"

	weightedrand "github.com/mroth/weightedrand"

	"github.com/ArtRand/cPecan/cpecanerr"
)

var bases = []byte{'A', 'C', 'G', 'T'}

// Rates weights the four per-position outcomes; any non-negative
// combination with at least one non-zero weight is accepted (Generate
// rejects all-zero rates), and Match need not dominate.
type Rates struct {
	Match    uint
	Mismatch uint
	Insert   uint
	Delete   uint
}

// Read is a simulated read against a known reference: the mutated sequence
// plus the ground-truth (x, y) pairs a perfect aligner should recover.
type Read struct {
	Sequence string
	Truth    []TruthPair
}

// TruthPair is one ground-truth reference/read position correspondence (a
// match or mismatch site; indels contribute no pair).
type TruthPair struct {
	RefPos, ReadPos int64
}

type op int

const (
	opMatch op = iota
	opMismatch
	opInsert
	opDelete
)

// Generate simulates a single read from ref using rates, driven by the
// package-level math/rand source (callers wanting reproducibility should
// call rand.Seed before calling Generate).
func Generate(ref string, rates Rates) (Read, error) {
	chooser, err := weightedrand.NewChooser(
		weightedrand.Choice{Item: opMatch, Weight: rates.Match},
		weightedrand.Choice{Item: opMismatch, Weight: rates.Mismatch},
		weightedrand.Choice{Item: opInsert, Weight: rates.Insert},
		weightedrand.Choice{Item: opDelete, Weight: rates.Delete},
	)
	if err != nil {
		return Read{}, cpecanerr.ErrBadInput
	}

	var out strings.Builder
	var truth []TruthPair
	var readPos int64

	for refPos := 0; refPos < len(ref); refPos++ {
		switch chooser.Pick().(op) {
		case opMatch:
			out.WriteByte(ref[refPos])
			truth = append(truth, TruthPair{RefPos: int64(refPos), ReadPos: readPos})
			readPos++
		case opMismatch:
			out.WriteByte(randomOtherBase(ref[refPos]))
			truth = append(truth, TruthPair{RefPos: int64(refPos), ReadPos: readPos})
			readPos++
		case opInsert:
			out.WriteByte(ref[refPos])
			out.WriteByte(bases[rand.Intn(len(bases))])
			truth = append(truth, TruthPair{RefPos: int64(refPos), ReadPos: readPos})
			readPos += 2
		case opDelete:
			// consumes the reference position, emits nothing
		}
	}

	return Read{Sequence: out.String(), Truth: truth}, nil
}

func randomOtherBase(b byte) byte {
	for {
		candidate := bases[rand.Intn(len(bases))]
		if candidate != b {
			return candidate
		}
	}
}
