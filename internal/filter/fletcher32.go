package filter

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// Fletcher32 appends a checksum to each chunk and verifies it on reading.
type Fletcher32 struct{}

func (Fletcher32) ID() uint16 { return message.FilterFletcher32 }

func (Fletcher32) ClientData() []uint32 { return nil }

func (Fletcher32) Decode(in []byte) ([]byte, error) {
	if len(in) < 4 {
		return nil, fmt.Errorf("chunk of %d bytes has no checksum", len(in))
	}
	data := in[:len(in)-4]
	stored := binary.LittleEndian.Uint32(in[len(in)-4:])
	sum := binpkg.Fletcher32(data)
	// Libraries before 1.6.3 swapped the bytes of each half.
	legacy := (sum&0x00ff00ff)<<8 | (sum>>8)&0x00ff00ff
	if stored != sum && stored != legacy {
		return nil, fmt.Errorf("%w: stored %#08x, computed %#08x", ErrChecksum, stored, sum)
	}
	return data, nil
}

func (Fletcher32) Encode(in []byte) ([]byte, error) {
	return binary.LittleEndian.AppendUint32(append([]byte(nil), in...), binpkg.Fletcher32(in)), nil
}
