package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/robert-malhotra/go-treeseq/internal/hdf5"
)

var cmdInspect = &cli.Command{
	Name:      "inspect",
	Usage:     "print the group and dataset layout of an HDF5 file",
	ArgsUsage: `<file>`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "attrs",
			Usage: "also print attribute values",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "attrs-only",
			Usage: "print only attributes, one object@name = value line each",
		},
	},
	Action: runInspect,
}

func runInspect(cctx *cli.Context) error {
	args, err := argPaths(cctx, "<file>")
	if err != nil {
		return err
	}
	f, err := hdf5.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	out := cctx.App.Writer
	if cctx.Bool("attrs-only") {
		return f.WalkAttrs(func(info hdf5.AttrInfo) error {
			if info.Err != nil {
				fmt.Fprintf(out, "%s: %v\n", info.Path, info.Err)
				return nil
			}
			fmt.Fprintf(out, "%s = %v\n", info.Path, info.Value)
			return nil
		})
	}
	fmt.Fprintf(out, "superblock version: %d\n", f.Version())
	showAttrs := cctx.Bool("attrs")
	return hdf5.Walk(f.Root(), func(path string, obj interface{}, err error) error {
		indent := strings.Repeat("  ", depth(path))
		if err != nil {
			fmt.Fprintf(out, "%s%s: %v\n", indent, path, err)
			return nil
		}
		switch o := obj.(type) {
		case *hdf5.Group:
			fmt.Fprintf(out, "%s%s/\n", indent, strings.TrimSuffix(path, "/"))
			if showAttrs {
				printAttrs(out, indent, o.Attrs(), o.Attr)
			}
		case *hdf5.Dataset:
			fmt.Fprintf(out, "%s%s %s %v", indent, path, o.TypeName(), o.Shape())
			if filters := o.Filters(); len(filters) > 0 {
				fmt.Fprintf(out, " [%s]", strings.Join(filters, " "))
			}
			fmt.Fprintln(out)
			if showAttrs {
				printAttrs(out, indent, o.Attrs(), o.Attr)
			}
		}
		return nil
	})
}

func depth(path string) int {
	return len(hdf5.SplitPath(path))
}

func printAttrs(out io.Writer, indent string, names []string, attr func(string) *hdf5.Attribute) {
	for _, name := range names {
		a := attr(name)
		if a == nil {
			continue
		}
		v, err := a.Value()
		if err != nil {
			fmt.Fprintf(out, "%s  @%s: %v\n", indent, name, err)
			continue
		}
		fmt.Fprintf(out, "%s  @%s = %v\n", indent, name, v)
	}
}
