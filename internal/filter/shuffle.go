package filter

import (
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// Shuffle groups the bytes of each element by significance. Bytes past
// the last whole element are left in place.
type Shuffle struct {
	elementSize int
}

func NewShuffle(elementSize int) *Shuffle {
	return &Shuffle{elementSize: max(elementSize, 1)}
}

func (f *Shuffle) ID() uint16 { return message.FilterShuffle }

func (f *Shuffle) ClientData() []uint32 { return []uint32{uint32(f.elementSize)} }

func (f *Shuffle) Decode(in []byte) ([]byte, error) {
	return f.transpose(in, false), nil
}

func (f *Shuffle) Encode(in []byte) ([]byte, error) {
	return f.transpose(in, true), nil
}

func (f *Shuffle) transpose(in []byte, shuffle bool) []byte {
	size := f.elementSize
	n := len(in) / size
	if size == 1 || n <= 1 {
		return in
	}
	out := make([]byte, len(in))
	for i := range n {
		for b := range size {
			if shuffle {
				out[b*n+i] = in[i*size+b]
			} else {
				out[i*size+b] = in[b*n+i]
			}
		}
	}
	copy(out[n*size:], in[n*size:])
	return out
}
