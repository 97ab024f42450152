package legacy

import (
	"errors"
	"fmt"
)

// Load errors
var (
	ErrNotTreeSequence    = errors.New("not a legacy tree sequence file")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrDuplicatePositions = errors.New("duplicate mutation positions")
	ErrMalformedFile      = errors.New("malformed legacy file")
)

// Dump restrictions, reported inside a *RestrictionError.
var (
	ErrNonBinaryRecord      = errors.New("record does not have exactly two children")
	ErrRecurrentMutation    = errors.New("site does not have exactly one 0->1 mutation")
	ErrNonContiguousSamples = errors.New("samples are not the nodes 0..n-1")
	ErrPopulationOutOfRange = errors.New("population id does not fit the stored type")
)

// VersionError reports a format version with no loader or dumper.
type VersionError struct {
	Major int
	Minor int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s: %d.%d", ErrUnsupportedVersion, e.Major, e.Minor)
}

func (e *VersionError) Unwrap() error {
	return ErrUnsupportedVersion
}

// DuplicatePositionsError reports how many mutations share a position with
// an earlier mutation.
type DuplicatePositionsError struct {
	Duplicates int
}

func (e *DuplicatePositionsError) Error() string {
	return fmt.Sprintf("%s: %d mutations repeat an earlier position", ErrDuplicatePositions, e.Duplicates)
}

func (e *DuplicatePositionsError) Unwrap() error {
	return ErrDuplicatePositions
}

// RestrictionError reports a row of a tree sequence that the target format
// version cannot represent.
type RestrictionError struct {
	Version Version
	Table   string
	Row     int
	Err     error
}

func (e *RestrictionError) Error() string {
	return fmt.Sprintf("format %s: %s row %d: %v", e.Version, e.Table, e.Row, e.Err)
}

func (e *RestrictionError) Unwrap() error {
	return e.Err
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedFile, fmt.Sprintf(format, args...))
}
