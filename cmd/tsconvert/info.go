package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/robert-malhotra/go-treeseq/legacy"
)

var removeDuplicatesFlag = &cli.BoolFlag{
	Name:  "remove-duplicate-positions",
	Usage: "keep only the first mutation at each repeated site position",
}

var cmdInfo = &cli.Command{
	Name:      "info",
	Usage:     "load a legacy tree sequence file and summarise it",
	ArgsUsage: `<file>`,
	Flags: []cli.Flag{
		removeDuplicatesFlag,
		&cli.BoolFlag{
			Name:  "indexes",
			Usage: "also print the edgeset insertion and removal orders",
		},
	},
	Action: runInfo,
}

func runInfo(cctx *cli.Context) error {
	args, err := argPaths(cctx, "<file>")
	if err != nil {
		return err
	}
	path := args[0]
	logger := configLogger(cctx, cctx.App.ErrWriter)

	major, minor, err := legacy.FormatVersion(path)
	if err != nil {
		return err
	}
	ts, err := legacy.Load(path, loadOptions(cctx, logger)...)
	if err != nil {
		return err
	}

	out := cctx.App.Writer
	fmt.Fprintf(out, "format version:  %d.%d\n", major, minor)
	fmt.Fprintf(out, "sequence length: %g\n", ts.SequenceLength())
	fmt.Fprintf(out, "sample size:     %d\n", ts.SampleSize())
	fmt.Fprintf(out, "nodes:           %d\n", ts.NumNodes())
	fmt.Fprintf(out, "edgesets:        %d\n", ts.NumEdgesets())
	fmt.Fprintf(out, "trees:           %d\n", ts.NumTrees())
	fmt.Fprintf(out, "sites:           %d\n", ts.NumSites())
	fmt.Fprintf(out, "mutations:       %d\n", ts.NumMutations())
	fmt.Fprintf(out, "provenance:      %d\n", len(ts.Provenance()))
	if cctx.Bool("indexes") {
		insertion, removal := ts.Indexes()
		fmt.Fprintf(out, "insertion order: %v\n", insertion)
		fmt.Fprintf(out, "removal order:   %v\n", removal)
	}
	return nil
}
