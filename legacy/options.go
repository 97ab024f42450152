package legacy

import "log/slog"

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	removeDuplicates bool
	logger           *slog.Logger
}

func defaultLoadOptions() *loadOptions {
	return &loadOptions{logger: slog.Default()}
}

// RemoveDuplicatePositions keeps the first mutation at each position and
// discards later ones instead of failing with ErrDuplicatePositions.
func RemoveDuplicatePositions() LoadOption {
	return func(o *loadOptions) {
		o.removeDuplicates = true
	}
}

// WithLogger sets the logger that receives load progress and provenance
// warnings. The default is slog.Default().
func WithLogger(logger *slog.Logger) LoadOption {
	return func(o *loadOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// DumpOption configures Dump.
type DumpOption func(*dumpOptions)

type dumpOptions struct {
	version  Version
	logger   *slog.Logger
	compress bool
}

func defaultDumpOptions() *dumpOptions {
	return &dumpOptions{version: Version3, logger: slog.Default()}
}

// WithVersion selects the format version to write. The default is Version3.
func WithVersion(v Version) DumpOption {
	return func(o *dumpOptions) {
		o.version = v
	}
}

// WithDumpLogger sets the logger used by Dump.
func WithDumpLogger(logger *slog.Logger) DumpOption {
	return func(o *dumpOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Compress stores every dataset as a single chunk filtered with shuffle,
// zlib at level 9 and a fletcher32 checksum, as msprime did when built
// with compression enabled.
func Compress() DumpOption {
	return func(o *dumpOptions) {
		o.compress = true
	}
}
