package main

import (
	"fmt"
	"math"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/ArtRand/cPecan/anchor"
	"github.com/ArtRand/cPecan/config"
	"github.com/ArtRand/cPecan/cpecanerr"
	"github.com/ArtRand/cPecan/io/fasta"
	"github.com/ArtRand/cPecan/pairhmm"
	"github.com/ArtRand/cPecan/posterior"
	"github.com/ArtRand/cPecan/seqio"
	"github.com/ArtRand/cPecan/statemachine"
)

func alignCommand() *cli.Command {
	return &cli.Command{
		Name:    "align",
		Aliases: []string{"a"},
		Usage:   "align every query in a FASTA file against its corresponding reference",

		Flags: []cli.Flag{
			&cli.StringFlag{Name: "reference", Aliases: []string{"r"}, Required: true, Usage: "reference FASTA path"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Required: true, Usage: "query FASTA path"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML banding parameters file; defaults used if omitted"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "-", Usage: "output path for posterior aligned pairs, - for stdout"},
			&cli.Float64Flag{Name: "match", Value: 0.95, Usage: "flat match probability for the identity substitution model"},
		},

		Action: func(c *cli.Context) error {
			return runAlign(c)
		},
	}
}

func loadParameters(c *cli.Context) (config.Parameters, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}

// runAlign aligns every query sequence against the reference sequence of
// the same index, one goroutine per pair, fanned out with a
// sync.WaitGroup. Each goroutine writes into its own pre-sized result
// slot rather than appending directly, since posterior.Pairs is not safe
// for concurrent appends.
func runAlign(c *cli.Context) error {
	params, err := loadParameters(c)
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	refs, err := fasta.Read(c.String("reference"))
	if err != nil {
		return fmt.Errorf("%w: reading reference FASTA: %v", cpecanerr.ErrBadInput, err)
	}
	queries, err := fasta.Read(c.String("query"))
	if err != nil {
		return fmt.Errorf("%w: reading query FASTA: %v", cpecanerr.ErrBadInput, err)
	}
	if len(refs) != len(queries) {
		return fmt.Errorf("%w: %d reference sequences but %d query sequences", cpecanerr.ErrBadInput, len(refs), len(queries))
	}

	matchLog := math.Log(c.Float64("match"))
	mismatchLog := math.Log((1 - c.Float64("match")) / 3)
	gapLog := math.Log(0.25)

	type result struct {
		name  string
		pairs posterior.Pairs
		err   error
	}
	results := make([]result, len(refs))

	var wg sync.WaitGroup
	for i := range refs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pairs, err := alignOne(refs[i].Sequence, queries[i].Sequence, matchLog, mismatchLog, gapLog, params)
			results[i] = result{name: queries[i].Name, pairs: pairs, err: err}
		}(i)
	}
	wg.Wait()

	out, err := openOutput(c.String("output"))
	if err != nil {
		return err
	}
	defer out.Close()

	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(out, "# %s: error: %v\n", r.name, r.err)
			continue
		}
		fmt.Fprintf(out, "# %s\n", r.name)
		for _, p := range r.pairs {
			fmt.Fprintln(out, p.String())
		}
	}
	return nil
}

func alignOne(refSeq, querySeq string, matchLog, mismatchLog, gapLog float64, params config.Parameters) (posterior.Pairs, error) {
	sx := seqio.NewNucleotides(refSeq)
	sy := seqio.NewNucleotides(querySeq)

	seeds, err := anchor.GetBlastPairs(sx, sy, params.ConstraintDiagonalTrim, nil)
	if err != nil {
		return nil, err
	}

	emissions := statemachine.NewDiscreteEmissions(matchLog, mismatchLog, gapLog).
		AllowAmbiguityCharacters(params.AlignAmbiguityCharacters)
	sm := statemachine.NewThreeState(emissions)
	driver := pairhmm.Driver{
		MinDiagsBetweenTraceBack: params.MinDiagsBetweenTraceBack,
		TraceBackDiagonals:       params.TraceBackDiagonals,
	}

	pairs, _, err := driver.AlignSegmented(sm, sx, sy, seeds, params.DiagonalExpansion, params.SplitMatrixBiggerThanThis, false, false, posterior.NewProb(params.Threshold))
	if err != nil {
		return nil, err
	}
	return pairs, nil
}
