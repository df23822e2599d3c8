package statemachine

import (
	"fmt"
	"math"

	"github.com/ArtRand/cPecan/seqio"
)

// DiscreteEmissions scores matches and mismatches between discrete symbols
// (nucleotides or k-mers) the way a substitution-matrix aligner does, just
// in log space: a flat match/mismatch log-probability by default, with
// per-pair overrides for anything that needs asymmetric treatment.
//
// Generalized from an integer match/mismatch substitution-matrix score to
// a log-probability substitution table.
type DiscreteEmissions struct {
	matchLog    float64
	mismatchLog float64
	gapLog      float64
	overrides   map[[2]string]float64
	ambiguity   bool
}

// NewDiscreteEmissions builds a flat substitution model: matchLog for
// identical symbols, mismatchLog otherwise, gapLog for any gap emission.
func NewDiscreteEmissions(matchLog, mismatchLog, gapLog float64) *DiscreteEmissions {
	return &DiscreteEmissions{matchLog: matchLog, mismatchLog: mismatchLog, gapLog: gapLog}
}

// SetSubstitution overrides the log-probability of aligning symbol x
// against symbol y, for models that need more than identity/non-identity.
func (d *DiscreteEmissions) SetSubstitution(x, y string, logProb float64) {
	if d.overrides == nil {
		d.overrides = make(map[[2]string]float64)
	}
	d.overrides[[2]string{x, y}] = logProb
}

// ambiguityWildcard is the IUPAC symbol for "any base". It is only
// honored when AllowAmbiguityCharacters has been set.
const ambiguityWildcard = "N"

func isAmbiguous(k string) bool {
	return k == ambiguityWildcard || k == "n"
}

// AllowAmbiguityCharacters toggles whether 'N'/'n' on either side of a
// match counts as an automatic match (matchLog) instead of falling
// through to identity comparison, the way config.Parameters.
// AlignAmbiguityCharacters is documented to behave. Returns d so it can
// be chained onto the constructor call.
func (d *DiscreteEmissions) AllowAmbiguityCharacters(enabled bool) *DiscreteEmissions {
	d.ambiguity = enabled
	return d
}

func elementKey(e seqio.Element) string {
	switch v := e.(type) {
	case byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (d *DiscreteEmissions) MatchLogProb(x, y seqio.Element) float64 {
	kx, ky := elementKey(x), elementKey(y)
	if d.overrides != nil {
		if p, ok := d.overrides[[2]string{kx, ky}]; ok {
			return p
		}
	}
	if kx == ky {
		return d.matchLog
	}
	if d.ambiguity && (isAmbiguous(kx) || isAmbiguous(ky)) {
		return d.matchLog
	}
	return d.mismatchLog
}

func (d *DiscreteEmissions) XGapLogProb(seqio.Element) float64      { return d.gapLog }
func (d *DiscreteEmissions) YGapLogProb(_, _ seqio.Element) float64 { return d.gapLog }

// kmerParams is the per-k-mer Gaussian emission distribution a model file
// supplies: a level (current) mean/sd and a noise mean/sd, matching
// modelfile.KmerParams without importing that package (modelfile imports
// statemachine itself, so a direct import would cycle).
type kmerParams struct {
	LevelMean, LevelSD float64
	NoiseMean, NoiseSD float64
}

// GaussianEmissions scores a nanopore event (mean, noise, length) against a
// k-mer's trained Gaussian parameters. It is a builder: construct with
// NewGaussianEmissions, register every k-mer's parameters, then call Scale
// once per read to fold in that read's drift/scale/shift before using it —
// after which the table is immutable.
type GaussianEmissions struct {
	table  map[string]kmerParams
	gapLog float64
	built  bool
}

// NewGaussianEmissions returns an empty, still-mutable emission table.
func NewGaussianEmissions(gapLog float64) *GaussianEmissions {
	return &GaussianEmissions{table: make(map[string]kmerParams), gapLog: gapLog}
}

// Set registers the trained parameters for one k-mer. Calling Set after
// Scale panics: the table is meant to be frozen once scaled.
func (g *GaussianEmissions) Set(kmer string, levelMean, levelSD, noiseMean, noiseSD float64) {
	if g.built {
		panic("statemachine: Set called on a GaussianEmissions table already Scale()d")
	}
	g.table[kmer] = kmerParams{LevelMean: levelMean, LevelSD: levelSD, NoiseMean: noiseMean, NoiseSD: noiseSD}
}

// Scale applies a per-read affine transform (scale, shift, drift-adjusted
// variance factor) to every k-mer's level distribution, the way a
// nanopore read's current trace is calibrated against the pore model
// before alignment, then freezes the table.
func (g *GaussianEmissions) Scale(scale, shift, varFactor float64) {
	for k, p := range g.table {
		p.LevelMean = p.LevelMean*scale + shift
		p.LevelSD = p.LevelSD * varFactor
		g.table[k] = p
	}
	g.built = true
}

func logNormalDensity(x, mean, sd float64) float64 {
	if sd <= 0 {
		return math.Inf(-1)
	}
	z := (x - mean) / sd
	return -0.5*z*z - math.Log(sd) - 0.5*math.Log(2*math.Pi)
}

// MatchLogProb treats x as the reference k-mer and y as the nanopore event;
// it looks up the k-mer's trained level distribution and scores the
// event's mean current against it.
func (g *GaussianEmissions) MatchLogProb(x, y seqio.Element) float64 {
	kmer, ok := x.(string)
	if !ok {
		return math.Inf(-1)
	}
	event, ok := y.(seqio.Event)
	if !ok {
		return math.Inf(-1)
	}
	p, ok := g.table[kmer]
	if !ok {
		return math.Inf(-1)
	}
	return logNormalDensity(event.Mean, p.LevelMean, p.LevelSD)
}

func (g *GaussianEmissions) XGapLogProb(seqio.Element) float64      { return g.gapLog }
func (g *GaussianEmissions) YGapLogProb(_, _ seqio.Element) float64 { return g.gapLog }

// HDPOracle is supplied by a caller that has already trained a
// hierarchical Dirichlet process density over (k-mer, event) pairs; the
// core never constructs or fits one, it only calls into it.
type HDPOracle interface {
	MatchDensity(kmer string, event [3]float64) float64
	YGapDensity(kmer string, event [3]float64) float64
}

// HDPEmissions adapts an HDPOracle to the Emissions interface.
type HDPEmissions struct {
	oracle HDPOracle
	gapLog float64
}

// NewHDPEmissions wraps oracle as an Emissions implementation. gapLog is
// used for X-gap emissions, which an HDP trained only on (kmer, event)
// match/skip densities does not otherwise model.
func NewHDPEmissions(oracle HDPOracle, gapLog float64) *HDPEmissions {
	return &HDPEmissions{oracle: oracle, gapLog: gapLog}
}

func eventTriple(e seqio.Event) [3]float64 { return [3]float64{e.Mean, e.Noise, e.Length} }

func (h *HDPEmissions) MatchLogProb(x, y seqio.Element) float64 {
	kmer, ok := x.(string)
	if !ok {
		return math.Inf(-1)
	}
	event, ok := y.(seqio.Event)
	if !ok {
		return math.Inf(-1)
	}
	return h.oracle.MatchDensity(kmer, eventTriple(event))
}

func (h *HDPEmissions) XGapLogProb(seqio.Element) float64 { return h.gapLog }

func (h *HDPEmissions) YGapLogProb(x, y seqio.Element) float64 {
	kmer, ok := x.(string)
	if !ok {
		return math.Inf(-1)
	}
	event, ok := y.(seqio.Event)
	if !ok {
		return math.Inf(-1)
	}
	return h.oracle.YGapDensity(kmer, eventTriple(event))
}
