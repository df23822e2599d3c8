// Package config loads the banding and posterior-decoding parameters that
// tune a pairhmm.Driver run, the way the original aligner's banding
// parameters struct was populated from a constructor with historical
// defaults and then selectively overridden from a settings file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/ArtRand/cPecan/cpecanerr"
)

// Parameters mirrors the historical PairwiseAlignmentParameters record:
// everything a caller needs to tune banding, the sliding window, and
// posterior-probability decisions, independent of which state machine or
// emission model is in play.
type Parameters struct {
	Threshold                      float64 `yaml:"threshold"`
	MinDiagsBetweenTraceBack       int64   `yaml:"minDiagsBetweenTraceBack"`
	TraceBackDiagonals             int64   `yaml:"traceBackDiagonals"`
	DiagonalExpansion              int64   `yaml:"diagonalExpansion"`
	ConstraintDiagonalTrim         int64   `yaml:"constraintDiagonalTrim"`
	AnchorMatrixBiggerThanThis     int64   `yaml:"anchorMatrixBiggerThanThis"`
	RepeatMaskMatrixBiggerThanThis int64   `yaml:"repeatMaskMatrixBiggerThanThis"`
	SplitMatrixBiggerThanThis      int64   `yaml:"splitMatrixBiggerThanThis"`
	AlignAmbiguityCharacters       bool    `yaml:"alignAmbiguityCharacters"`
	GapGamma                       float64 `yaml:"gapGamma"`
}

// Default returns the historical banding parameters, unchanged since the
// original C implementation.
func Default() Parameters {
	return Parameters{
		Threshold:                      0.01,
		MinDiagsBetweenTraceBack:       10,
		TraceBackDiagonals:             5,
		DiagonalExpansion:              10,
		ConstraintDiagonalTrim:         14,
		AnchorMatrixBiggerThanThis:     500 * 500,
		RepeatMaskMatrixBiggerThanThis: 1000 * 1000,
		SplitMatrixBiggerThanThis:      3000 * 3000,
		AlignAmbiguityCharacters:       false,
		GapGamma:                       0.5,
	}
}

// Load reads a YAML settings file and overlays it on top of Default,
// so a settings file only needs to name the fields it wants to change.
func Load(path string) (Parameters, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("%w: reading config %s: %v", cpecanerr.ErrBadInput, path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: parsing config %s: %v", cpecanerr.ErrBadInput, path, err)
	}
	return p, nil
}

// Validate checks the parameters are internally consistent enough to drive
// a Driver: a threshold within [0,1], and no negative trace-back window,
// band-construction or gap-gamma parameter. The matrix-size thresholds are
// not checked, and neither is whether the window leaves room for a trusted
// diagonal per sweep.
func (p Parameters) Validate() error {
	if p.Threshold < 0 || p.Threshold > 1 {
		return fmt.Errorf("%w: threshold %f out of range [0,1]", cpecanerr.ErrBadInput, p.Threshold)
	}
	if p.MinDiagsBetweenTraceBack < 0 || p.TraceBackDiagonals < 0 {
		return fmt.Errorf("%w: negative trace-back window parameter", cpecanerr.ErrBadInput)
	}
	if p.DiagonalExpansion < 0 || p.ConstraintDiagonalTrim < 0 {
		return fmt.Errorf("%w: negative band-construction parameter", cpecanerr.ErrBadInput)
	}
	if p.GapGamma < 0 {
		return fmt.Errorf("%w: negative gap gamma %f", cpecanerr.ErrBadInput, p.GapGamma)
	}
	return nil
}
