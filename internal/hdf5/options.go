package hdf5

import (
	"github.com/robert-malhotra/go-treeseq/internal/filter"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// FileOption configures file creation options.
type FileOption func(*fileOptions)

type fileOptions struct {
	offsetSize      int
	lengthSize      int
	datasetDefaults []DatasetOption
}

func defaultFileOptions() *fileOptions {
	return &fileOptions{
		offsetSize: 8,
		lengthSize: 8,
	}
}

// WithOffsetSize sets the size in bytes for file offsets (2, 4, or 8).
func WithOffsetSize(size int) FileOption {
	return func(o *fileOptions) {
		if size == 2 || size == 4 || size == 8 {
			o.offsetSize = size
		}
	}
}

// WithLengthSize sets the size in bytes for lengths (2, 4, or 8).
func WithLengthSize(size int) FileOption {
	return func(o *fileOptions) {
		if size == 2 || size == 4 || size == 8 {
			o.lengthSize = size
		}
	}
}

// WithDatasetDefaults applies opts to every dataset created in the file,
// before the options given to CreateDataset.
func WithDatasetDefaults(opts ...DatasetOption) FileOption {
	return func(o *fileOptions) {
		o.datasetDefaults = append(o.datasetDefaults, opts...)
	}
}

// DatasetOption configures dataset creation options.
type DatasetOption func(*datasetOptions)

// attrDef holds an attribute definition for creation.
type attrDef struct {
	name  string
	value interface{}
}

type datasetOptions struct {
	datatype   *message.Datatype
	attributes []attrDef

	shuffle      bool
	deflateLevel int
	fletcher32   bool
}

func defaultDatasetOptions() *datasetOptions {
	return &datasetOptions{deflateLevel: -1}
}

// chunked reports whether any filter was requested. Filtered datasets are
// stored as one chunk.
func (o *datasetOptions) chunked() bool {
	return o.shuffle || o.deflateLevel >= 0 || o.fletcher32
}

// filters returns the requested stages in the order they are applied:
// shuffle, deflate, then the checksum over the compressed bytes.
func (o *datasetOptions) filters(elementSize int) []filter.Encoder {
	var encs []filter.Encoder
	if o.shuffle && elementSize > 1 {
		encs = append(encs, filter.NewShuffle(elementSize))
	}
	if o.deflateLevel >= 0 {
		encs = append(encs, filter.NewDeflate(o.deflateLevel))
	}
	if o.fletcher32 {
		encs = append(encs, filter.Fletcher32{})
	}
	return encs
}

// WithDatatype stores numeric data with an explicit datatype instead of the
// one inferred from the Go element type, e.g. to narrow []uint32 values to
// single bytes on disk.
func WithDatatype(dt *message.Datatype) DatasetOption {
	return func(o *datasetOptions) {
		o.datatype = dt
	}
}

// Uint8 returns a little-endian unsigned 1-byte datatype for WithDatatype.
func Uint8() *message.Datatype {
	return message.NewFixedPoint(1, false)
}

// Uint32 returns a little-endian unsigned 4-byte datatype for WithDatatype.
func Uint32() *message.Datatype {
	return message.NewFixedPoint(4, false)
}

// WithAttribute adds an attribute to the dataset.
// The value can be a scalar or slice of: int, int8-64, uint, uint8-64, float32, float64, string.
// Multiple WithAttribute options can be used to add multiple attributes.
func WithAttribute(name string, value interface{}) DatasetOption {
	return func(o *datasetOptions) {
		o.attributes = append(o.attributes, attrDef{name: name, value: value})
	}
}

// WithDeflate compresses the dataset with zlib at level 0 to 9.
func WithDeflate(level int) DatasetOption {
	return func(o *datasetOptions) {
		o.deflateLevel = min(max(level, 0), 9)
	}
}

// WithShuffle groups the bytes of each element position together before
// compression. It has no effect on single-byte elements.
func WithShuffle() DatasetOption {
	return func(o *datasetOptions) {
		o.shuffle = true
	}
}

// WithFletcher32 stores a checksum after the (possibly compressed) data.
func WithFletcher32() DatasetOption {
	return func(o *datasetOptions) {
		o.fletcher32 = true
	}
}
