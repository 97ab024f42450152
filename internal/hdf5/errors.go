// Package hdf5 reads and writes the subset of the HDF5 container format that
// the legacy tree sequence schemas are stored in: groups, attributes and whole
// contiguous or chunked numeric and string arrays.
package hdf5

import "errors"

// Common errors
var (
	ErrNotHDF5     = errors.New("not an HDF5 file")
	ErrNotFound    = errors.New("object not found")
	ErrNotDataset  = errors.New("object is not a dataset")
	ErrNotGroup    = errors.New("object is not a group")
	ErrUnsupported = errors.New("unsupported feature")
	ErrInvalidPath = errors.New("invalid path")
	ErrClosed      = errors.New("file is closed")
	ErrReadOnly    = errors.New("file is not writable")
	ErrWriteOnly   = errors.New("file was created for writing and cannot be read")
	ErrExists      = errors.New("object already exists")
	ErrEmpty       = errors.New("zero-sized datasets are not written")
	ErrRagged      = errors.New("rows of a two-dimensional dataset differ in length")
)
