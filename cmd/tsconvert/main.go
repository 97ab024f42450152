// tsconvert inspects and converts legacy HDF5 tree sequence files.
package main

import (
	"fmt"
	"io"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(-1)
	}
}

func run(args []string) error {
	return newApp(os.Stdout, os.Stderr).Run(args)
}

func newApp(stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:      "tsconvert",
		Usage:     "inspect and convert legacy msprime HDF5 tree sequence files",
		Version:   versioninfo.Short(),
		Writer:    stdout,
		ErrWriter: stderr,
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "warn",
			EnvVars: []string{"TSCONVERT_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log output format: text or json",
			Value:   "text",
			EnvVars: []string{"TSCONVERT_LOG_FORMAT"},
		},
	}
	app.Commands = []*cli.Command{
		cmdInspect,
		cmdInfo,
		cmdConvert,
	}
	return app
}
