package treeseq

import (
	"errors"
	"fmt"
)

// ErrInvalidTables matches every error returned by New for tables that break
// a structural invariant.
var ErrInvalidTables = errors.New("invalid tables")

// Table construction errors
var (
	ErrColumnLength = errors.New("column lengths differ")
)

// Structural errors, each wrapped in a *ValidationError by New.
var (
	ErrNoEdgesets            = errors.New("no edgesets")
	ErrNodeOutOfBounds       = errors.New("node id out of bounds")
	ErrZeroChildren          = errors.New("edgeset has no children")
	ErrUnsortedChildren      = errors.New("children not in ascending order")
	ErrBadInterval           = errors.New("left coordinate not less than right")
	ErrBadEdgesetCoordinates = errors.New("edgeset coordinates do not tile the sequence")
	ErrBadTimeOrdering       = errors.New("child time not less than parent time")
	ErrRecordsNotTimeSorted  = errors.New("edgesets not sorted by parent time")
	ErrSampleInternal        = errors.New("sample node used as a parent")
	ErrInsufficientSamples   = errors.New("fewer than two samples")
	ErrUnsortedSites         = errors.New("site positions not strictly ascending")
	ErrBadSitePosition       = errors.New("site position outside the sequence")
	ErrSiteOutOfBounds       = errors.New("site id out of bounds")
	ErrUnsortedMutations     = errors.New("mutations not sorted by site")
)

// ValidationError reports the table and row that break an invariant.
type ValidationError struct {
	Table string
	Row   int
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("%s: %s: %v", ErrInvalidTables, e.Table, e.Err)
	}
	return fmt.Sprintf("%s: %s row %d: %v", ErrInvalidTables, e.Table, e.Row, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrInvalidTables as well as the wrapped cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidTables
}

func invalid(table string, row int, err error) error {
	return &ValidationError{Table: table, Row: row, Err: err}
}
