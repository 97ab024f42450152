package hdf5

import (
	"fmt"
	"path"

	"github.com/robert-malhotra/go-treeseq/internal/dtype"
	"github.com/robert-malhotra/go-treeseq/internal/filter"
	"github.com/robert-malhotra/go-treeseq/internal/layout"
	"github.com/robert-malhotra/go-treeseq/internal/message"
	"github.com/robert-malhotra/go-treeseq/internal/object"
)

// Dataset represents an HDF5 dataset.
type Dataset struct {
	file      *File
	path      string
	header    *object.Header
	dataspace *message.Dataspace
	datatype  *message.Datatype
	filters   *message.FilterPipeline
	layout    layout.Layout
}

// newDataset creates a Dataset from an object header.
func newDataset(f *File, path string, header *object.Header) (*Dataset, error) {
	ds := &Dataset{
		file:      f,
		path:      path,
		header:    header,
		dataspace: header.Dataspace(),
		datatype:  header.Datatype(),
		filters:   header.Filters(),
	}
	if ds.dataspace == nil {
		return nil, fmt.Errorf("dataset %s missing dataspace message", path)
	}
	if ds.datatype == nil {
		return nil, fmt.Errorf("dataset %s missing datatype message", path)
	}

	var err error
	ds.layout, err = layout.New(header.Layout(), ds.dataspace, ds.datatype, ds.filters, f.reader)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// Name returns the dataset name (last component of path).
func (d *Dataset) Name() string {
	return path.Base(d.path)
}

// Path returns the full path to this dataset.
func (d *Dataset) Path() string {
	return d.path
}

// Shape returns the dimensions of the dataset.
func (d *Dataset) Shape() []uint64 {
	if d.dataspace.IsScalar() {
		return nil
	}
	return d.dataspace.Dims
}

// Rank returns the number of dimensions.
func (d *Dataset) Rank() int {
	return d.dataspace.Rank()
}

// NumElements returns the total number of elements.
func (d *Dataset) NumElements() uint64 {
	return d.dataspace.NumElements()
}

// IsInteger reports whether elements are stored as fixed-point integers.
func (d *Dataset) IsInteger() bool {
	return dtype.IsInteger(d.datatype)
}

// TypeName describes the stored element type, e.g. "u4", "f8" or "vlen-str".
func (d *Dataset) TypeName() string {
	return d.datatype.Name()
}

// Filters names the filter pipeline stages in the order they were applied
// when writing.
func (d *Dataset) Filters() []string {
	if d.filters == nil {
		return nil
	}
	names := make([]string, len(d.filters.Filters))
	for i, f := range d.filters.Filters {
		names[i] = filter.Name(f)
	}
	return names
}

// Read reads all data from the dataset into dest, flattened in row-major
// order. dest should be a pointer to a slice of the appropriate type.
func (d *Dataset) Read(dest interface{}) error {
	if d.layout == nil {
		return ErrWriteOnly
	}
	raw, err := d.layout.Read()
	if err != nil {
		return fmt.Errorf("reading %s: %w", d.path, err)
	}
	if err := d.file.decoder().Convert(d.datatype, raw, d.dataspace.NumElements(), dest); err != nil {
		return fmt.Errorf("converting %s: %w", d.path, err)
	}
	return nil
}

func (d *Dataset) ReadFloat64() ([]float64, error) { return readAll[float64](d) }

func (d *Dataset) ReadInt64() ([]int64, error) { return readAll[int64](d) }

func (d *Dataset) ReadUint32() ([]uint32, error) { return readAll[uint32](d) }

func (d *Dataset) ReadString() ([]string, error) { return readAll[string](d) }

func readAll[T any](d *Dataset) ([]T, error) {
	var vals []T
	if err := d.Read(&vals); err != nil {
		return nil, err
	}
	return vals, nil
}

// Attrs returns the attribute names for this dataset.
func (d *Dataset) Attrs() []string {
	if d.header == nil {
		return nil
	}
	return attrNames(d.header)
}

// Attr returns an attribute by name, or nil if not found.
func (d *Dataset) Attr(name string) *Attribute {
	if d.header == nil {
		return nil
	}
	return findAttr(d.file, d.header, name)
}

// HasAttr returns true if the dataset has an attribute with the given name.
func (d *Dataset) HasAttr(name string) bool {
	return d.Attr(name) != nil
}
