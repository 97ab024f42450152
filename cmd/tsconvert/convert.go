package main

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/robert-malhotra/go-treeseq/legacy"
)

var cmdConvert = &cli.Command{
	Name:      "convert",
	Usage:     "rewrite a legacy tree sequence file in format version 2 or 3",
	ArgsUsage: `<input> <output>`,
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "to",
			Usage: "format version to write (2 or 3)",
			Value: int(legacy.Version3),
		},
		&cli.BoolFlag{
			Name:  "compress",
			Usage: "store datasets with shuffle, zlib and fletcher32 filters",
		},
		removeDuplicatesFlag,
	},
	Action: runConvert,
}

func runConvert(cctx *cli.Context) error {
	args, err := argPaths(cctx, "<input>", "<output>")
	if err != nil {
		return err
	}
	in, out := args[0], args[1]
	logger := configLogger(cctx, cctx.App.ErrWriter)

	version := legacy.Version(cctx.Int("to"))
	if version != legacy.Version2 && version != legacy.Version3 {
		return fmt.Errorf("--to must be 2 or 3, got %d", version)
	}

	ts, err := legacy.Load(in, loadOptions(cctx, logger)...)
	if err != nil {
		return err
	}
	dumpOpts := []legacy.DumpOption{legacy.WithVersion(version), legacy.WithDumpLogger(logger)}
	if cctx.Bool("compress") {
		dumpOpts = append(dumpOpts, legacy.Compress())
	}
	if err := legacy.Dump(ts, out, dumpOpts...); err != nil {
		return err
	}
	logger.Info("converted tree sequence", "input", in, "output", out, "version", version)
	return nil
}

func loadOptions(cctx *cli.Context, logger *slog.Logger) []legacy.LoadOption {
	opts := []legacy.LoadOption{legacy.WithLogger(logger)}
	if cctx.Bool("remove-duplicate-positions") {
		opts = append(opts, legacy.RemoveDuplicatePositions())
	}
	return opts
}
