package message

import (
	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

// Filter identifiers registered with the HDF Group.
const (
	FilterDeflate     uint16 = 1
	FilterShuffle     uint16 = 2
	FilterFletcher32  uint16 = 3
	FilterSZIP        uint16 = 4
	FilterNBit        uint16 = 5
	FilterScaleOffset uint16 = 6
)

// Filter is one stage of a filter pipeline.
type Filter struct {
	ID         uint16
	Name       string
	Flags      uint16
	ClientData []uint32
}

// Optional reports whether chunks may skip the filter when it fails.
func (f Filter) Optional() bool { return f.Flags&1 != 0 }

// FilterPipeline lists the filters applied to each chunk, in the order
// they were applied when writing.
type FilterPipeline struct {
	Filters []Filter
}

func (m *FilterPipeline) Type() Type { return TypeFilterPipeline }

func decodeFilterPipeline(r *binary.Reader) (*FilterPipeline, error) {
	version, err := readVersion(r, 1, 2)
	if err != nil {
		return nil, err
	}
	n, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	if version == 1 {
		r.Skip(6)
	}

	m := &FilterPipeline{Filters: make([]Filter, n)}
	for i := range m.Filters {
		if m.Filters[i], err = decodeFilter(r, version); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func decodeFilter(r *binary.Reader, version uint8) (Filter, error) {
	var f Filter
	var err error
	if f.ID, err = r.Uint16(); err != nil {
		return f, err
	}

	// Version 2 drops the name of predefined filters and all padding.
	var nameLen uint16
	if version == 1 || f.ID >= 256 {
		if nameLen, err = r.Uint16(); err != nil {
			return f, err
		}
	}
	if f.Flags, err = r.Uint16(); err != nil {
		return f, err
	}
	nvalues, err := r.Uint16()
	if err != nil {
		return f, err
	}
	if nameLen > 0 {
		padded := int(nameLen)
		if version == 1 {
			padded = (padded + 7) &^ 7
		}
		name, err := r.Bytes(padded)
		if err != nil {
			return f, err
		}
		f.Name = cString(name)
	}
	f.ClientData = make([]uint32, nvalues)
	for j := range f.ClientData {
		if f.ClientData[j], err = r.Uint32(); err != nil {
			return f, err
		}
	}
	if version == 1 && nvalues%2 == 1 {
		r.Skip(4)
	}
	return f, nil
}

// Encode writes a version 2 pipeline. Only predefined filters, which
// carry no name, are written.
func (m *FilterPipeline) Encode(e *binary.Encoder) {
	e.Uint8(2)
	e.Uint8(uint8(len(m.Filters)))
	for _, f := range m.Filters {
		e.Uint16(f.ID)
		e.Uint16(f.Flags)
		e.Uint16(uint16(len(f.ClientData)))
		for _, v := range f.ClientData {
			e.Uint32(v)
		}
	}
}

// cString returns b up to its first NUL.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
