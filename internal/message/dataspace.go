package message

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

// DataspaceKind distinguishes scalar, simple and null dataspaces.
type DataspaceKind uint8

const (
	DataspaceScalar DataspaceKind = 0
	DataspaceSimple DataspaceKind = 1
	DataspaceNull   DataspaceKind = 2
)

// Dataspace gives the shape of a dataset or attribute.
type Dataspace struct {
	Kind    DataspaceKind
	Dims    []uint64
	MaxDims []uint64
}

func (m *Dataspace) Type() Type { return TypeDataspace }

// NewDataspace returns a simple dataspace with fixed dimensions.
func NewDataspace(dims []uint64) *Dataspace {
	return &Dataspace{Kind: DataspaceSimple, Dims: dims}
}

// NewScalarDataspace returns a dataspace holding a single element.
func NewScalarDataspace() *Dataspace {
	return &Dataspace{Kind: DataspaceScalar}
}

// Rank returns the number of dimensions.
func (m *Dataspace) Rank() int { return len(m.Dims) }

// IsScalar reports whether the dataspace holds exactly one element with no
// dimensions.
func (m *Dataspace) IsScalar() bool { return m.Kind == DataspaceScalar }

// NumElements returns the product of the dimensions.
func (m *Dataspace) NumElements() uint64 {
	switch m.Kind {
	case DataspaceScalar:
		return 1
	case DataspaceNull:
		return 0
	}
	n := uint64(1)
	for _, d := range m.Dims {
		n *= d
	}
	return n
}

const (
	dataspaceHasMax  = 1 << 0
	dataspaceHasPerm = 1 << 1
)

func decodeDataspace(r *binary.Reader) (*Dataspace, error) {
	version, err := readVersion(r, 1, 2)
	if err != nil {
		return nil, err
	}
	rank, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	flags, err := r.Uint8()
	if err != nil {
		return nil, err
	}

	m := &Dataspace{Kind: DataspaceSimple}
	if version == 1 {
		// Reserved bytes.
		r.Skip(5)
		if rank == 0 {
			m.Kind = DataspaceScalar
		}
	} else {
		kind, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		if kind > uint8(DataspaceNull) {
			return nil, fmt.Errorf("unknown dataspace type %d", kind)
		}
		m.Kind = DataspaceKind(kind)
	}

	if m.Dims, err = readLengths(r, int(rank)); err != nil {
		return nil, err
	}
	if flags&dataspaceHasMax != 0 {
		if m.MaxDims, err = readLengths(r, int(rank)); err != nil {
			return nil, err
		}
	}
	if version == 1 && flags&dataspaceHasPerm != 0 {
		return nil, fmt.Errorf("%w: dimension permutations", ErrUnsupported)
	}
	return m, nil
}

func readLengths(r *binary.Reader, n int) ([]uint64, error) {
	if n == 0 {
		return nil, nil
	}
	out := make([]uint64, n)
	for i := range out {
		v, err := r.Length()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Encode writes a version 2 dataspace.
func (m *Dataspace) Encode(e *binary.Encoder) {
	e.Uint8(2)
	e.Uint8(uint8(len(m.Dims)))
	var flags uint8
	if len(m.MaxDims) > 0 {
		flags |= dataspaceHasMax
	}
	e.Uint8(flags)
	e.Uint8(uint8(m.Kind))
	for _, d := range m.Dims {
		e.Length(d)
	}
	for _, d := range m.MaxDims {
		e.Length(d)
	}
}
