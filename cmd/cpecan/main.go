// Command cpecan is a command line front end for the banded pair-HMM
// aligner: given a reference FASTA and a query FASTA, it aligns every
// query against its corresponding reference and writes posterior aligned
// pairs. main (entry point, kept tiny for testability) is kept separate
// from commands (the actual argument wiring and business logic).
package main

import (
	"log"
	"os"

	"github.com/mitchellh/go-wordwrap"
	"github.com/urfave/cli/v2"
)

func main() {
	run(os.Args)
}

func run(args []string) {
	if err := application().Run(args); err != nil {
		log.Fatal(err)
	}
}

func application() *cli.App {
	description := wordwrap.WrapString(
		"cpecan aligns nucleotide or nanopore-event sequences to a reference "+
			"using a banded pair-HMM, guided by k-mer anchors and a sliding "+
			"forward-backward window so memory stays bounded on long reads.",
		76,
	)

	return &cli.App{
		Name:        "cpecan",
		Usage:       "banded pair-HMM sequence aligner",
		Description: description,
		Commands: []*cli.Command{
			alignCommand(),
			simulateCommand(),
		},
	}
}
