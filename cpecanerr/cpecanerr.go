// Package cpecanerr defines the error taxonomy shared by every stage of the
// aligner, so callers can branch on error kind with errors.Is instead of
// parsing messages.
package cpecanerr

import "errors"

var (
	// ErrBadInput marks a guide alignment mismatched to its sequences, or
	// anchors that are not strictly monotonic after filtering. Surfaced
	// before any DP runs.
	ErrBadInput = errors.New("cpecan: bad input")

	// ErrAlignmentImpossible marks a band with a diagonal that has no legal
	// cells, or an alignment in which no path reaches the end cell with
	// non-zero probability.
	ErrAlignmentImpossible = errors.New("cpecan: alignment impossible")

	// ErrOutOfMemory marks a DP matrix allocation that could not be
	// satisfied.
	ErrOutOfMemory = errors.New("cpecan: out of memory")

	// ErrIntegrityCheck marks forward and backward total probabilities that
	// disagree beyond tolerance.
	ErrIntegrityCheck = errors.New("cpecan: integrity check failed")

	// ErrUnsupported marks a state machine variant incompatible with the
	// requested posterior extractor.
	ErrUnsupported = errors.New("cpecan: unsupported state machine/extractor combination")
)
