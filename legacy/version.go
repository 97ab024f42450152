package legacy

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/robert-malhotra/go-treeseq/internal/hdf5"
	"github.com/robert-malhotra/go-treeseq/treeseq"
)

// Version is a legacy format major version.
type Version int

const (
	Version2 Version = 2
	Version3 Version = 3
)

func (v Version) String() string {
	return "v" + strconv.Itoa(int(v))
}

// formatVersion is the (major, minor) pair stored in /@format_version.
type formatVersion struct {
	major int
	minor int
}

// The minor version written by both dumpers.
const dumpMinorVersion = 999

// format is one legacy layout. The set of implementations is closed:
// formatFor is the only constructor.
type format interface {
	version() Version
	schema() manifest
	load(root *hdf5.Group, tag formatVersion, o *loadOptions) (*treeseq.TreeSequence, error)
	project(ts *treeseq.TreeSequence) (projection, error)
}

// projection is a tree sequence fully laid out for one format, ready to be
// written without further checks.
type projection interface {
	write(root *hdf5.Group) error
}

type v2Format struct{}

type v3Format struct{}

func formatFor(tag formatVersion) (format, error) {
	switch Version(tag.major) {
	case Version2:
		return v2Format{}, nil
	case Version3:
		return v3Format{}, nil
	default:
		return nil, &VersionError{Major: tag.major, Minor: tag.minor}
	}
}

// Load reads a tree sequence stored in format version 2 or 3.
func Load(path string, opts ...LoadOption) (*treeseq.TreeSequence, error) {
	o := defaultLoadOptions()
	for _, opt := range opts {
		opt(o)
	}

	f, err := hdf5.Open(path)
	if err != nil {
		if errors.Is(err, hdf5.ErrNotHDF5) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotTreeSequence)
		}
		return nil, err
	}
	defer f.Close()

	root := f.Root()
	tag, err := readFormatVersion(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	fm, err := formatFor(tag)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := fm.schema().check(root); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	o.logger.Debug("loading legacy tree sequence", "path", path, "version", fm.version(), "minor", tag.minor)
	ts, err := fm.load(root, tag, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	o.logger.Debug("loaded legacy tree sequence",
		"path", path,
		"nodes", ts.NumNodes(),
		"edgesets", ts.NumEdgesets(),
		"sites", ts.NumSites(),
	)
	return ts, nil
}

// Dump writes ts to path in a legacy format, Version3 unless WithVersion
// says otherwise. Every restriction of the format is checked before the
// file is touched, so a rejected tree sequence leaves an existing file at
// path as it was. Otherwise an existing file is truncated before writing,
// and if writing then fails nothing is left at path.
func Dump(ts *treeseq.TreeSequence, path string, opts ...DumpOption) error {
	o := defaultDumpOptions()
	for _, opt := range opts {
		opt(o)
	}

	fm, err := formatFor(formatVersion{major: int(o.version)})
	if err != nil {
		return err
	}
	p, err := fm.project(ts)
	if err != nil {
		return err
	}

	o.logger.Debug("dumping legacy tree sequence", "path", path, "version", fm.version())
	return writeFile(path, o, p.write)
}

// FormatVersion returns the (major, minor) version tag stored in the file
// at path without loading it.
func FormatVersion(path string) (major, minor int, err error) {
	f, err := hdf5.Open(path)
	if err != nil {
		if errors.Is(err, hdf5.ErrNotHDF5) {
			return 0, 0, fmt.Errorf("%s: %w", path, ErrNotTreeSequence)
		}
		return 0, 0, err
	}
	defer f.Close()

	tag, err := readFormatVersion(f.Root())
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", path, err)
	}
	return tag.major, tag.minor, nil
}

// readFormatVersion reads the two-integer version tag of the root group.
func readFormatVersion(root *hdf5.Group) (formatVersion, error) {
	attr := root.Attr("format_version")
	if attr == nil {
		return formatVersion{}, fmt.Errorf("%w: no format_version attribute", ErrNotTreeSequence)
	}
	if shape := attr.Shape(); len(shape) != 1 || shape[0] != 2 {
		return formatVersion{}, malformed("format_version has shape %v, want [2]", shape)
	}
	vals, err := attr.ReadInt64()
	if err != nil || len(vals) != 2 {
		return formatVersion{}, malformed("reading format_version: %v", err)
	}
	return formatVersion{major: int(vals[0]), minor: int(vals[1])}, nil
}

// writeFile creates path, lets write fill the root group, and closes the
// file. On any failure the partial file is removed.
func writeFile(path string, o *dumpOptions, write func(*hdf5.Group) error) (err error) {
	var opts []hdf5.FileOption
	if o.compress {
		opts = append(opts, hdf5.WithDatasetDefaults(hdf5.WithShuffle(), hdf5.WithDeflate(9), hdf5.WithFletcher32()))
	}
	f, err := hdf5.Create(path, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			o.logger.Warn("removing partial file", "path", path, "error", rmErr)
		}
	}()

	if err = write(f.Root()); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	stats := f.AllocStats()
	o.logger.Debug("wrote legacy tree sequence",
		"path", path,
		"bytes", stats.Bytes,
		"raw_data", stats.ByTag["raw data"],
		"compressed", o.compress,
	)
	return nil
}
