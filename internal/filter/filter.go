package filter

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/message"
)

var (
	// ErrUnavailable is returned when a chunk needs a filter this package
	// does not implement.
	ErrUnavailable = errors.New("filter not available")
	ErrChecksum    = errors.New("fletcher32 checksum mismatch")
)

// Filter is one decoding stage.
type Filter interface {
	ID() uint16
	Decode(in []byte) ([]byte, error)
}

// Encoder is a Filter that can also be applied when writing.
type Encoder interface {
	Filter
	Encode(in []byte) ([]byte, error)
	// ClientData returns the values stored for the filter in the pipeline.
	ClientData() []uint32
}

var names = map[uint16]string{
	message.FilterDeflate:     "deflate",
	message.FilterShuffle:     "shuffle",
	message.FilterFletcher32:  "fletcher32",
	message.FilterSZIP:        "szip",
	message.FilterNBit:        "nbit",
	message.FilterScaleOffset: "scaleoffset",
}

// Name returns the registered name of a filter, falling back to the name
// stored in the pipeline.
func Name(f message.Filter) string {
	if name, ok := names[f.ID]; ok {
		return name
	}
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("filter %d", f.ID)
}

// New returns the implementation of f, or nil when there is none.
// elementSize is the datatype size, used when the client data omits it.
func New(f message.Filter, elementSize int) Filter {
	switch f.ID {
	case message.FilterDeflate:
		return NewDeflate(clientValue(f.ClientData, 0, DefaultLevel))
	case message.FilterShuffle:
		return NewShuffle(clientValue(f.ClientData, 0, elementSize))
	case message.FilterFletcher32:
		return Fletcher32{}
	case message.FilterScaleOffset:
		return &ScaleOffset{params: f.ClientData}
	}
	return nil
}

func clientValue(cd []uint32, i, fallback int) int {
	if i < len(cd) && cd[i] > 0 {
		return int(cd[i])
	}
	return fallback
}
