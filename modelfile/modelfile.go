// Package modelfile loads per-kmer Gaussian emission parameters from a
// nanopore model file: one line per kmer, whitespace-delimited columns of
// level mean/SD and noise mean/SD. The scanning loop follows the same
// bufio.Scanner-over-split-lines shape as the slow5 reader, simplified to a
// single synchronous pass since model files are small enough (a few
// thousand kmers) to hold entirely in memory, unlike a run's raw reads.
package modelfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ArtRand/cPecan/cpecanerr"
	cpecanio "github.com/ArtRand/cPecan/io"
	"github.com/ArtRand/cPecan/statemachine"
)

// Load reads and parses the model file at path. For repeated alignments
// against the same model, prefer a Cache instead.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening model file %s: %v", cpecanerr.ErrBadInput, path, err)
	}
	defer f.Close()
	return Parse(f)
}

// KmerParams is one kmer's Gaussian emission parameters: the level (current)
// distribution and the noise (stdv-of-stdv) distribution, plus the noise
// model's lambda shape parameter.
type KmerParams struct {
	LevelMean   float64
	LevelSD     float64
	NoiseMean   float64
	NoiseSD     float64
	NoiseLambda float64
}

// Table maps a kmer string to its fitted parameters.
type Table map[string]KmerParams

// Parse reads a whitespace-delimited model file: kmer, level_mean, level_sd,
// noise_mean, noise_sd, and an optional noise_lambda column. Lines starting
// with '#' are comments and are skipped, matching the header convention of
// the original HDP model files.
func Parse(r io.Reader) (Table, error) {
	table := make(Table)
	scanner := bufio.NewScanner(cpecanio.NewNewlineNormalizingReader(r))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, fmt.Errorf("%w: model file line %d has %d fields, want at least 5", cpecanerr.ErrBadInput, lineNum, len(fields))
		}
		levelMean, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d level_mean: %v", cpecanerr.ErrBadInput, lineNum, err)
		}
		levelSD, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d level_sd: %v", cpecanerr.ErrBadInput, lineNum, err)
		}
		noiseMean, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d noise_mean: %v", cpecanerr.ErrBadInput, lineNum, err)
		}
		noiseSD, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d noise_sd: %v", cpecanerr.ErrBadInput, lineNum, err)
		}
		params := KmerParams{LevelMean: levelMean, LevelSD: levelSD, NoiseMean: noiseMean, NoiseSD: noiseSD}
		if len(fields) >= 6 {
			lambda, err := strconv.ParseFloat(fields[5], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d noise_lambda: %v", cpecanerr.ErrBadInput, lineNum, err)
			}
			params.NoiseLambda = lambda
		}
		table[fields[0]] = params
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanning model file: %v", cpecanerr.ErrBadInput, err)
	}
	return table, nil
}

// BuildGaussianEmissions registers every kmer in the table with a fresh
// statemachine.GaussianEmissions, ready for the caller to Scale once per
// read before alignment.
func (t Table) BuildGaussianEmissions(gapLog float64) *statemachine.GaussianEmissions {
	g := statemachine.NewGaussianEmissions(gapLog)
	for kmer, p := range t {
		g.Set(kmer, p.LevelMean, p.LevelSD, p.NoiseMean, p.NoiseSD)
	}
	return g
}
