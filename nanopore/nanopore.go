// Package nanopore adapts a raw nanopore signal read into the event-level
// view the pair-HMM aligns against a reference k-mer sequence, and carries
// the per-read scaling parameters used to calibrate a pore model's trained
// Gaussians against that read's current trace. Grounded on the slow5
// reader's Read record for raw signal layout.
package nanopore

import (
	"fmt"
	"math"

	"github.com/ArtRand/cPecan/cpecanerr"
	"github.com/ArtRand/cPecan/io/slow5"
	"github.com/ArtRand/cPecan/seqio"
)

// Read is one basecalled nanopore read's raw signal, converted to
// picoamps, plus the metadata needed to further calibrate it.
type Read struct {
	ReadID       string
	Digitisation float64
	Offset       float64
	Range        float64
	SamplingRate float64
	RawSignal    []int16
}

// FromSlow5 narrows a parsed slow5.Read down to the fields alignment cares
// about, dropping the channel/mux/end-reason bookkeeping a sequencer run
// needs but a pair-HMM does not.
func FromSlow5(r slow5.Read) Read {
	return Read{
		ReadID:       r.ReadId,
		Digitisation: r.Digitisation,
		Offset:       r.Offset,
		Range:        r.Range,
		SamplingRate: r.SamplingRate,
		RawSignal:    r.RawSignal,
	}
}

// ScalingParams are the affine scale/shift/variance-drift parameters a read
// applies to a pore model's trained level distributions before alignment,
// mirroring the original aligner's per-read model recalibration.
type ScalingParams struct {
	Scale   float64
	Shift   float64
	Var     float64
	ScaleSD float64
	VarSD   float64
}

// Identity returns scaling parameters that leave a model untouched, for
// reads that have not been recalibrated.
func Identity() ScalingParams {
	return ScalingParams{Scale: 1, Shift: 0, Var: 1, ScaleSD: 1, VarSD: 1}
}

// Picoamps converts RawSignal's ADC counts to picoamps: pA = (raw +
// offset) * (range / digitisation), the standard ONT signal calibration.
func (r Read) Picoamps() ([]float64, error) {
	if r.Digitisation == 0 {
		return nil, fmt.Errorf("%w: read %s has zero digitisation", cpecanerr.ErrBadInput, r.ReadID)
	}
	out := make([]float64, len(r.RawSignal))
	factor := r.Range / r.Digitisation
	for i, raw := range r.RawSignal {
		out[i] = (float64(raw) + r.Offset) * factor
	}
	return out, nil
}

// Segment collapses a picoamp trace into per-event (mean, noise, length)
// triples given pre-computed boundaries between consecutive basecalled
// k-mers, the way a basecaller's event table is built from its raw signal
// and move table. boundaries must be strictly increasing and span
// [0,len(signal)].
func Segment(signal []float64, boundaries []int) (seqio.Events, error) {
	if len(boundaries) < 2 {
		return seqio.Events{}, fmt.Errorf("%w: need at least 2 boundaries to form one event", cpecanerr.ErrBadInput)
	}
	data := make([]float64, 0, (len(boundaries)-1)*3)
	for i := 1; i < len(boundaries); i++ {
		lo, hi := boundaries[i-1], boundaries[i]
		if hi <= lo || lo < 0 || hi > len(signal) {
			return seqio.Events{}, fmt.Errorf("%w: event boundary [%d,%d) invalid for signal length %d", cpecanerr.ErrBadInput, lo, hi, len(signal))
		}
		mean, noise := meanAndStd(signal[lo:hi])
		data = append(data, mean, noise, float64(hi-lo))
	}
	return seqio.NewEvents(data)
}

func meanAndStd(xs []float64) (mean, std float64) {
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		d := x - mean
		std += d * d
	}
	std = math.Sqrt(std / float64(len(xs)))
	return mean, std
}

// Apply scales an event's mean current by p, the inverse of the
// calibration a pore model's Gaussian table undergoes in
// modelfile.Table.BuildGaussianEmissions followed by Scale: rather than
// rescale every trained k-mer, a caller may instead rescale the read once
// and leave the model fixed.
func (p ScalingParams) Apply(e seqio.Event) seqio.Event {
	return seqio.Event{
		Mean:   (e.Mean - p.Shift) / p.Scale,
		Noise:  e.Noise / p.VarSD,
		Length: e.Length,
	}
}
