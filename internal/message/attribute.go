package message

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

// Attribute is a small named value stored in an object header.
type Attribute struct {
	Name      string
	Datatype  *Datatype
	Dataspace *Dataspace
	Data      []byte
}

func (m *Attribute) Type() Type { return TypeAttribute }

// NewAttribute returns an attribute holding already encoded elements.
func NewAttribute(name string, dt *Datatype, ds *Dataspace, data []byte) *Attribute {
	return &Attribute{Name: name, Datatype: dt, Dataspace: ds, Data: data}
}

func decodeAttribute(r *binary.Reader) (*Attribute, error) {
	version, err := readVersion(r, 1, 2, 3)
	if err != nil {
		return nil, err
	}
	flags, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	if version >= 2 && flags&0x03 != 0 {
		return nil, fmt.Errorf("%w: shared attribute datatype or dataspace", ErrUnsupported)
	}

	var sizes [3]uint16
	for i := range sizes {
		if sizes[i], err = r.Uint16(); err != nil {
			return nil, err
		}
	}
	if version == 3 {
		// Name character set.
		r.Skip(1)
	}

	// Version 1 pads the name, datatype and dataspace to eight bytes.
	field := func(size uint16) ([]byte, error) {
		n := int(size)
		if version == 1 {
			n = (n + 7) &^ 7
		}
		b, err := r.Bytes(n)
		if err != nil {
			return nil, err
		}
		return b[:size], nil
	}

	m := &Attribute{}
	name, err := field(sizes[0])
	if err != nil {
		return nil, err
	}
	m.Name = cString(name)

	cfg := r.Config()
	raw, err := field(sizes[1])
	if err != nil {
		return nil, err
	}
	if m.Datatype, err = decodeDatatype(binary.FromBytes(raw, cfg)); err != nil {
		return nil, fmt.Errorf("attribute %q datatype: %w", m.Name, err)
	}
	if raw, err = field(sizes[2]); err != nil {
		return nil, err
	}
	if m.Dataspace, err = decodeDataspace(binary.FromBytes(raw, cfg)); err != nil {
		return nil, fmt.Errorf("attribute %q dataspace: %w", m.Name, err)
	}

	n := m.Dataspace.NumElements() * uint64(m.Datatype.Size)
	if m.Data, err = r.Bytes(int(n)); err != nil {
		return nil, fmt.Errorf("attribute %q data: %w", m.Name, err)
	}
	return m, nil
}

// Encode writes a version 3 attribute with a UTF-8 name.
func (m *Attribute) Encode(e *binary.Encoder) {
	cfg := e.Config()
	dt := binary.NewEncoder(cfg)
	m.Datatype.Encode(dt)
	ds := binary.NewEncoder(cfg)
	m.Dataspace.Encode(ds)

	e.Uint8(3)
	e.Uint8(0)
	e.Uint16(uint16(len(m.Name) + 1))
	e.Uint16(uint16(dt.Len()))
	e.Uint16(uint16(ds.Len()))
	e.Uint8(uint8(CharsetUTF8))
	e.Raw([]byte(m.Name))
	e.Uint8(0)
	e.Raw(dt.Bytes())
	e.Raw(ds.Bytes())
	e.Raw(m.Data)
}
