package message

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

// LayoutClass says where the elements of a dataset are stored.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0
	LayoutContiguous LayoutClass = 1
	LayoutChunked    LayoutClass = 2
	LayoutVirtual    LayoutClass = 3
)

// ChunkIndex is the structure locating the chunks of a chunked dataset.
// Layouts before version 4 always use a version 1 B-tree.
type ChunkIndex uint8

const (
	IndexBTreeV1         ChunkIndex = 0
	IndexSingleChunk     ChunkIndex = 1
	IndexImplicit        ChunkIndex = 2
	IndexFixedArray      ChunkIndex = 3
	IndexExtensibleArray ChunkIndex = 4
	IndexBTreeV2         ChunkIndex = 5
)

var indexNames = [...]string{"v1 B-tree", "single chunk", "implicit", "fixed array", "extensible array", "v2 B-tree"}

func (i ChunkIndex) String() string {
	if int(i) < len(indexNames) {
		return indexNames[i]
	}
	return fmt.Sprintf("chunk index %d", uint8(i))
}

// DataLayout locates the raw data of a dataset.
type DataLayout struct {
	Version uint8
	Class   LayoutClass

	// Address is the contiguous data block, or the chunk index (for a
	// single chunk, the chunk itself).
	Address uint64
	// Size is the contiguous block size; zero when the file does not
	// record it.
	Size uint64

	CompactData []byte

	// ChunkDims excludes the trailing element-size dimension.
	ChunkDims   []uint64
	ElementSize uint32
	Index       ChunkIndex

	// A filtered single chunk records its stored size and filter mask.
	FilteredSize uint64
	FilterMask   uint32
}

func (m *DataLayout) Type() Type { return TypeDataLayout }

// NewContiguousLayout returns a version 3 contiguous layout.
func NewContiguousLayout(address, size uint64) *DataLayout {
	return &DataLayout{Version: 3, Class: LayoutContiguous, Address: address, Size: size}
}

// NewChunkedLayout returns a version 3 chunked layout indexed by the
// version 1 B-tree at btree.
func NewChunkedLayout(btree uint64, chunkDims []uint64, elementSize uint32) *DataLayout {
	return &DataLayout{
		Version:     3,
		Class:       LayoutChunked,
		Address:     btree,
		ChunkDims:   chunkDims,
		ElementSize: elementSize,
		Index:       IndexBTreeV1,
	}
}

func decodeDataLayout(r *binary.Reader) (*DataLayout, error) {
	version, err := readVersion(r, 1, 2, 3, 4)
	if err != nil {
		return nil, err
	}
	if version < 3 {
		return decodeDataLayoutV1(r, version)
	}

	class, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	m := &DataLayout{Version: version, Class: LayoutClass(class)}
	switch m.Class {
	case LayoutCompact:
		size, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		m.CompactData, err = r.Bytes(int(size))
		return m, err
	case LayoutContiguous:
		if m.Address, err = r.Offset(); err != nil {
			return nil, err
		}
		m.Size, err = r.Length()
		return m, err
	case LayoutChunked:
		if version == 3 {
			return m, m.decodeChunkedV3(r)
		}
		return m, m.decodeChunkedV4(r)
	}
	return nil, fmt.Errorf("%w: layout class %d", ErrUnsupported, class)
}

func decodeDataLayoutV1(r *binary.Reader, version uint8) (*DataLayout, error) {
	ndims, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	class, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	r.Skip(5)

	m := &DataLayout{Version: version, Class: LayoutClass(class)}
	if m.Class != LayoutCompact {
		if m.Address, err = r.Offset(); err != nil {
			return nil, err
		}
	}
	dims, err := readDims(r, int(ndims), 4)
	if err != nil {
		return nil, err
	}
	switch m.Class {
	case LayoutCompact:
		size, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		m.CompactData, err = r.Bytes(int(size))
		return m, err
	case LayoutChunked:
		if len(dims) == 0 {
			return nil, fmt.Errorf("chunked layout without dimensions")
		}
		m.ChunkDims = dims[:len(dims)-1]
		m.ElementSize = uint32(dims[len(dims)-1])
	}
	return m, nil
}

func (m *DataLayout) decodeChunkedV3(r *binary.Reader) error {
	ndims, err := r.Uint8()
	if err != nil {
		return err
	}
	if m.Address, err = r.Offset(); err != nil {
		return err
	}
	dims, err := readDims(r, int(ndims), 4)
	if err != nil {
		return err
	}
	if len(dims) == 0 {
		return fmt.Errorf("chunked layout without dimensions")
	}
	m.ChunkDims = dims[:len(dims)-1]
	m.ElementSize = uint32(dims[len(dims)-1])
	m.Index = IndexBTreeV1
	return nil
}

const layoutSingleChunkFiltered = 1 << 1

func (m *DataLayout) decodeChunkedV4(r *binary.Reader) error {
	flags, err := r.Uint8()
	if err != nil {
		return err
	}
	ndims, err := r.Uint8()
	if err != nil {
		return err
	}
	width, err := r.Uint8()
	if err != nil {
		return err
	}
	dims, err := readDims(r, int(ndims), int(width))
	if err != nil {
		return err
	}
	if len(dims) == 0 {
		return fmt.Errorf("chunked layout without dimensions")
	}
	m.ChunkDims = dims[:len(dims)-1]
	m.ElementSize = uint32(dims[len(dims)-1])

	index, err := r.Uint8()
	if err != nil {
		return err
	}
	m.Index = ChunkIndex(index)
	switch m.Index {
	case IndexSingleChunk:
		if flags&layoutSingleChunkFiltered != 0 {
			if m.FilteredSize, err = r.Length(); err != nil {
				return err
			}
			if m.FilterMask, err = r.Uint32(); err != nil {
				return err
			}
		}
	case IndexImplicit:
	case IndexFixedArray:
		r.Skip(1)
	case IndexExtensibleArray:
		r.Skip(5)
	case IndexBTreeV2:
		r.Skip(6)
	default:
		return fmt.Errorf("unknown chunk index type %d", index)
	}
	m.Address, err = r.Offset()
	return err
}

func readDims(r *binary.Reader, n, width int) ([]uint64, error) {
	dims := make([]uint64, n)
	for i := range dims {
		v, err := r.Uint(width)
		if err != nil {
			return nil, err
		}
		dims[i] = v
	}
	return dims, nil
}

// Encode writes a version 3 contiguous or chunked layout. Other layouts
// are never written.
func (m *DataLayout) Encode(e *binary.Encoder) {
	e.Uint8(3)
	e.Uint8(uint8(m.Class))
	if m.Class == LayoutChunked {
		e.Uint8(uint8(len(m.ChunkDims) + 1))
		e.Offset(m.Address)
		for _, d := range m.ChunkDims {
			e.Uint32(uint32(d))
		}
		e.Uint32(m.ElementSize)
		return
	}
	e.Offset(m.Address)
	e.Length(m.Size)
}
