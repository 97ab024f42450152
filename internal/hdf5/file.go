package hdf5

import (
	"fmt"
	"os"

	"github.com/robert-malhotra/go-treeseq/internal/alloc"
	"github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/dtype"
	"github.com/robert-malhotra/go-treeseq/internal/heap"
	"github.com/robert-malhotra/go-treeseq/internal/object"
	"github.com/robert-malhotra/go-treeseq/internal/superblock"
)

// File represents an open HDF5 file.
type File struct {
	path       string
	file       *os.File
	reader     *binary.Reader
	heap       *heap.Cache
	superblock *superblock.Superblock
	root       *Group
	closed     bool

	// Write support fields
	writable        bool
	cfg             binary.Config
	allocator       *alloc.Allocator
	datasetDefaults []DatasetOption
}

// Open opens an HDF5 file for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	sb, err := superblock.Read(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: reading superblock: %v", ErrNotHDF5, err)
	}

	hdf := &File{
		path:       path,
		file:       f,
		reader:     sb.Reader(f),
		superblock: sb,
		cfg:        sb.Config(),
	}
	hdf.heap = heap.NewCache(hdf.reader)

	header, err := object.Read(hdf.reader, sb.RootGroupAddress)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening root group: %w", err)
	}
	hdf.root = &Group{
		file:   hdf,
		path:   "/",
		header: header,
	}

	return hdf, nil
}

// Close closes the file. Files opened with Create are flushed first.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.writable {
		if err := f.flush(); err != nil {
			f.file.Close()
			return err
		}
	}

	return f.file.Close()
}

// Root returns the root group of the file.
func (f *File) Root() *Group {
	return f.root
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Version returns the superblock version.
func (f *File) Version() int {
	return int(f.superblock.Version)
}

// decoder converts elements read from this file.
func (f *File) decoder() dtype.Decoder {
	return dtype.Decoder{Config: f.cfg, Heap: f.heap}
}

// OpenGroup opens a group by absolute path.
func (f *File) OpenGroup(path string) (*Group, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenGroup(path)
}

// OpenDataset opens a dataset by absolute path.
func (f *File) OpenDataset(path string) (*Dataset, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenDataset(path)
}

// GetAttr returns an attribute by path.
// Path format: /group/object@attribute_name
//
// Examples:
//   - "/@format_version" - attribute on the root group
//   - "/trees@environment" - attribute on group 'trees'
func (f *File) GetAttr(path string) (*Attribute, error) {
	if f.closed {
		return nil, ErrClosed
	}

	objectPath, attrName, err := ParseAttrPath(path)
	if err != nil {
		return nil, err
	}

	obj, err := f.getAttributeHolder(objectPath)
	if err != nil {
		return nil, err
	}

	attr := obj.Attr(attrName)
	if attr == nil {
		return nil, fmt.Errorf("attribute %s: %w", path, ErrNotFound)
	}
	return attr, nil
}

// ReadAttr reads an attribute value by path.
// This is a convenience method that combines GetAttr and Attribute.Value().
func (f *File) ReadAttr(path string) (interface{}, error) {
	attr, err := f.GetAttr(path)
	if err != nil {
		return nil, err
	}
	return attr.Value()
}

// attributeHolder is an interface for objects that can have attributes.
type attributeHolder interface {
	Attr(name string) *Attribute
}

// getAttributeHolder returns the group or dataset at the given path.
func (f *File) getAttributeHolder(path string) (attributeHolder, error) {
	obj, err := f.root.open(path)
	if err != nil {
		return nil, fmt.Errorf("opening object %s: %w", path, err)
	}
	switch o := obj.(type) {
	case *Group:
		return o, nil
	case *Dataset:
		return o, nil
	}
	return nil, fmt.Errorf("object %s: %w", path, ErrNotFound)
}
