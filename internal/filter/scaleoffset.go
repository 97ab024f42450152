package filter

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// Client data slots filled in by the library when the dataset is created.
const (
	soElements    = 2
	soClass       = 3
	soSize        = 4
	soOrder       = 6
	soFillDefined = 7
	soParams      = 8

	soClassInteger = 0
	soOrderBE      = 1

	// Bytes before the packed values: minbits, minval width, minval.
	soHeaderSize = 21
)

// ScaleOffset unpacks integers stored as offsets from the chunk minimum,
// each in the fewest bits that hold the range. msprime applied it to every
// integer column.
type ScaleOffset struct {
	params []uint32
}

func (f *ScaleOffset) ID() uint16 { return message.FilterScaleOffset }

func (f *ScaleOffset) Decode(in []byte) ([]byte, error) {
	if len(f.params) < soParams {
		return nil, fmt.Errorf("%d client values, want at least %d", len(f.params), soParams)
	}
	if f.params[soClass] != soClassInteger {
		return nil, fmt.Errorf("%w: floating point scale-offset", ErrUnavailable)
	}
	if f.params[soFillDefined] != 0 {
		return nil, fmt.Errorf("%w: scale-offset with a fill value", ErrUnavailable)
	}
	n := int(f.params[soElements])
	size := int(f.params[soSize])
	if size < 1 || size > 8 {
		return nil, fmt.Errorf("element size %d", size)
	}
	var order binary.ByteOrder = binary.LittleEndian
	if f.params[soOrder] == soOrderBE {
		order = binary.BigEndian
	}
	if len(in) < soHeaderSize {
		return nil, fmt.Errorf("chunk of %d bytes", len(in))
	}

	minbits := int(binary.LittleEndian.Uint32(in))
	var minval uint64
	for i := range min(int(in[4]), 8) {
		minval |= uint64(in[5+i]) << (8 * i)
	}
	if minbits > size*8 {
		return nil, fmt.Errorf("%d bits per %d byte element", minbits, size)
	}

	packed := in[soHeaderSize:]
	out := make([]byte, n*size)
	if minbits == size*8 {
		if len(packed) < len(out) {
			return nil, fmt.Errorf("chunk holds %d of %d bytes", len(packed), len(out))
		}
		copy(out, packed)
		return out, nil
	}
	if need := (n*minbits + 7) / 8; len(packed) < need {
		return nil, fmt.Errorf("chunk holds %d of %d packed bytes", len(packed), need)
	}

	br := bitReader{data: packed}
	for i := range n {
		v := minval
		if minbits > 0 {
			v += br.read(minbits)
		}
		binpkg.PutUint(out[i*size:(i+1)*size], v, order)
	}
	return out, nil
}

// bitReader yields fields most significant bit first.
type bitReader struct {
	data []byte
	pos  int
}

func (r *bitReader) read(n int) uint64 {
	var v uint64
	for range n {
		bit := r.data[r.pos/8] >> (7 - r.pos%8) & 1
		v = v<<1 | uint64(bit)
		r.pos++
	}
	return v
}
