package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v2"
)

func configLogger(cctx *cli.Context, writer io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{
		Level: level,
	}
	var handler slog.Handler
	if strings.ToLower(cctx.String("log-format")) == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}
	return slog.New(handler)
}

// argPaths returns the positional arguments, which must match names one to
// one.
func argPaths(cctx *cli.Context, names ...string) ([]string, error) {
	if cctx.Args().Len() != len(names) {
		return nil, fmt.Errorf("expected arguments: %s", strings.Join(names, " "))
	}
	return cctx.Args().Slice(), nil
}
