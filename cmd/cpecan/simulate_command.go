package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ArtRand/cPecan/io/fasta"
	"github.com/ArtRand/cPecan/simulate"
)

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:    "simulate",
		Aliases: []string{"sim"},
		Usage:   "generate a synthetic read from a reference FASTA for testing",

		Flags: []cli.Flag{
			&cli.StringFlag{Name: "reference", Aliases: []string{"r"}, Required: true, Usage: "reference FASTA path"},
			&cli.UintFlag{Name: "match", Value: 85, Usage: "relative weight of emitting a match"},
			&cli.UintFlag{Name: "mismatch", Value: 5, Usage: "relative weight of emitting a mismatch"},
			&cli.UintFlag{Name: "insert", Value: 5, Usage: "relative weight of emitting an insertion"},
			&cli.UintFlag{Name: "delete", Value: 5, Usage: "relative weight of emitting a deletion"},
		},

		Action: func(c *cli.Context) error {
			refs, err := fasta.Read(c.String("reference"))
			if err != nil {
				return err
			}
			rates := simulate.Rates{
				Match:    c.Uint("match"),
				Mismatch: c.Uint("mismatch"),
				Insert:   c.Uint("insert"),
				Delete:   c.Uint("delete"),
			}
			for _, ref := range refs {
				read, err := simulate.Generate(ref.Sequence, rates)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, ">%s_sim\n%s\n", ref.Name, read.Sequence)
			}
			return nil
		},
	}
}
