package hdf5

import (
	"fmt"
	"math"
	"path"
	"reflect"
	"slices"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/btree"
	"github.com/robert-malhotra/go-treeseq/internal/dtype"
	"github.com/robert-malhotra/go-treeseq/internal/filter"
	"github.com/robert-malhotra/go-treeseq/internal/heap"
	"github.com/robert-malhotra/go-treeseq/internal/message"
	"github.com/robert-malhotra/go-treeseq/internal/object"
)

// CreateDataset creates a new dataset with the given name. data is a
// one-dimensional slice of a numeric type, a slice of equal-length numeric
// slices (stored as a two-dimensional dataset), or a []string (stored as
// variable-length strings). The datatype is inferred from the element type
// unless WithDatatype is given.
//
// Datasets are contiguous unless a filter option is given, in which case
// the whole dataset is stored as a single filtered chunk.
func (g *Group) CreateDataset(name string, data interface{}, opts ...DatasetOption) (*Dataset, error) {
	if err := g.checkNewMember(name); err != nil {
		return nil, err
	}

	options := defaultDatasetOptions()
	for _, opt := range slices.Concat(g.file.datasetDefaults, opts) {
		opt(options)
	}

	if strs, ok := data.([]string); ok {
		return g.createStringDataset(name, strs, options)
	}

	flat, dims, err := flatten(reflect.ValueOf(data))
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}
	if flat.Len() == 0 {
		return nil, fmt.Errorf("dataset %q: %w", name, ErrEmpty)
	}

	datatype := options.datatype
	if datatype == nil {
		datatype, err = dtype.FromGoType(flat.Type().Elem(), g.file.cfg)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", name, err)
		}
	}

	raw, err := dtype.Encode(datatype, flat.Interface())
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}

	return g.writeDataset(name, dims, datatype, raw, options)
}

// createStringDataset stores values as variable-length strings whose bytes
// live in global heap collections written just before the elements.
func (g *Group) createStringDataset(name string, values []string, options *datasetOptions) (*Dataset, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("dataset %q: %w", name, ErrEmpty)
	}

	ids, err := g.file.writeStrings(values)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}
	next := 0
	raw := dtype.EncodeVarLen(g.file.cfg, values, func([]byte) heap.ID {
		id := ids[next]
		next++
		return id
	})

	datatype := message.NewVarLenString(message.CharsetUTF8, g.file.cfg.OffsetSize)
	return g.writeDataset(name, []uint64{uint64(len(values))}, datatype, raw, options)
}

// writeStrings stores the bytes of every non-empty value in global heap
// collections and returns their IDs in order. A collection indexes its
// objects with 16 bits, so long inputs span several collections.
func (f *File) writeStrings(values []string) ([]heap.ID, error) {
	var ids []heap.ID
	var coll heap.Collection
	var pending []uint32

	flushCollection := func() error {
		if coll.Len() == 0 {
			return nil
		}
		addr, err := f.write(coll.Encode(f.cfg), "global heap")
		if err != nil {
			return err
		}
		for _, idx := range pending {
			ids = append(ids, heap.ID{Collection: addr, Index: idx})
		}
		coll, pending = heap.Collection{}, nil
		return nil
	}

	for _, s := range values {
		if s == "" {
			continue
		}
		if coll.Len() == math.MaxUint16 {
			if err := flushCollection(); err != nil {
				return nil, err
			}
		}
		pending = append(pending, coll.Add([]byte(s)))
	}
	if err := flushCollection(); err != nil {
		return nil, err
	}
	return ids, nil
}

// writeDataset writes the raw element bytes, contiguous or as one filtered
// chunk, then the dataset object header, and links the dataset into g.
func (g *Group) writeDataset(name string, dims []uint64, datatype *message.Datatype, raw []byte, options *datasetOptions) (*Dataset, error) {
	f := g.file
	dataspace := message.NewDataspace(dims)

	var msgs []message.Encodable
	if options.chunked() {
		pipeline := filter.Describe(options.filters(int(datatype.Size))...)
		dataLayout, err := f.writeChunk(dims, datatype, pipeline, raw)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", name, err)
		}
		msgs = object.DatasetMessages(dataspace, datatype, dataLayout)
		if len(pipeline.Filters) > 0 {
			msgs = append(msgs, pipeline)
		}
	} else {
		addr, err := f.write(raw, "raw data")
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", name, err)
		}
		msgs = object.DatasetMessages(dataspace, datatype, message.NewContiguousLayout(addr, uint64(len(raw))))
	}

	for _, attr := range options.attributes {
		attrMsg, err := createAttributeMessage(attr.name, attr.value)
		if err != nil {
			return nil, fmt.Errorf("creating attribute %q: %w", attr.name, err)
		}
		msgs = append(msgs, attrMsg)
	}
	if err := checkMessageSizes(f, msgs); err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}

	headerAddr, err := f.write(object.Encode(f.cfg, msgs), "object header")
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}
	g.links = append(g.links, message.NewHardLink(name, headerAddr))

	return &Dataset{
		file:      f,
		path:      path.Join(g.path, name),
		dataspace: dataspace,
		datatype:  datatype,
	}, nil
}

// writeChunk filters raw as a single chunk covering the whole dataset and
// writes it with a one-leaf chunk B-tree indexing it.
func (f *File) writeChunk(dims []uint64, datatype *message.Datatype, pipeline *message.FilterPipeline, raw []byte) (*message.DataLayout, error) {
	stored, err := filter.NewPipeline(pipeline, int(datatype.Size)).Encode(raw)
	if err != nil {
		return nil, err
	}
	if uint64(len(stored)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d-byte chunk", ErrUnsupported, len(stored))
	}
	chunkAddr, err := f.write(stored, "raw data")
	if err != nil {
		return nil, err
	}

	entry := btree.ChunkEntry{
		Offset:  make([]uint64, len(dims)),
		Size:    uint32(len(stored)),
		Address: chunkAddr,
	}
	node, err := btree.EncodeChunkLeaf(f.cfg, []btree.ChunkEntry{entry}, dims)
	if err != nil {
		return nil, err
	}
	treeAddr, err := f.write(node, "chunk index")
	if err != nil {
		return nil, err
	}
	return message.NewChunkedLayout(treeAddr, dims, datatype.Size), nil
}

// checkMessageSizes rejects messages too large for the 16-bit size field
// of an object header message.
func checkMessageSizes(f *File, msgs []message.Encodable) error {
	for _, m := range msgs {
		if n := message.Size(m, f.cfg); n > math.MaxUint16 {
			return fmt.Errorf("%w: %d-byte %s message", ErrUnsupported, n, m.Type())
		}
	}
	return nil
}

// flatten returns a one-dimensional slice holding the elements of v in
// row-major order, together with the dimensions of v. v must be a slice of
// scalars or a slice of equal-length slices of scalars.
func flatten(v reflect.Value) (reflect.Value, []uint64, error) {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return reflect.Value{}, nil, fmt.Errorf("%w: dataset data must be a slice, got %v", ErrUnsupported, v.Kind())
	}

	elemType := v.Type().Elem()
	if elemType.Kind() != reflect.Slice && elemType.Kind() != reflect.Array {
		return v, []uint64{uint64(v.Len())}, nil
	}
	if k := elemType.Elem().Kind(); k == reflect.Slice || k == reflect.Array {
		return reflect.Value{}, nil, fmt.Errorf("%w: datasets of rank > 2", ErrUnsupported)
	}

	rows := v.Len()
	cols := 0
	if rows > 0 {
		cols = v.Index(0).Len()
	}
	flat := reflect.MakeSlice(reflect.SliceOf(elemType.Elem()), 0, rows*cols)
	for i := 0; i < rows; i++ {
		row := v.Index(i)
		if row.Len() != cols {
			return reflect.Value{}, nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrRagged, i, row.Len(), cols)
		}
		for j := 0; j < cols; j++ {
			flat = reflect.Append(flat, row.Index(j))
		}
	}
	return flat, []uint64{uint64(rows), uint64(cols)}, nil
}

// createAttributeMessage creates an attribute message from a name and value.
func createAttributeMessage(name string, value interface{}) (*message.Attribute, error) {
	val := reflect.ValueOf(value)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() == reflect.String {
		return createStringAttribute(name, val.String()), nil
	}

	var dataspace *message.Dataspace
	var elemType reflect.Type

	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		if val.Len() == 0 {
			return nil, fmt.Errorf("empty attribute %q: %w", name, ErrEmpty)
		}
		dataspace = message.NewDataspace([]uint64{uint64(val.Len())})
		elemType = val.Type().Elem()
	default:
		dataspace = message.NewScalarDataspace()
		elemType = val.Type()
	}

	if elemType.Kind() == reflect.String {
		return nil, fmt.Errorf("%w: string array attributes", ErrUnsupported)
	}

	// The widths only matter for strings, which are handled above.
	datatype, err := dtype.FromGoType(elemType, binary.DefaultConfig())
	if err != nil {
		return nil, err
	}

	data, err := dtype.Encode(datatype, val.Interface())
	if err != nil {
		return nil, fmt.Errorf("encoding attribute value: %w", err)
	}

	return message.NewAttribute(name, datatype, dataspace, data), nil
}

// createStringAttribute creates an attribute with a fixed-length,
// null-terminated string value.
func createStringAttribute(name string, s string) *message.Attribute {
	strLen := len(s) + 1
	datatype := message.NewString(uint32(strLen), message.PadNullTerm, message.CharsetASCII)

	data := make([]byte, strLen)
	copy(data, s)

	return message.NewAttribute(name, datatype, message.NewScalarDataspace(), data)
}
