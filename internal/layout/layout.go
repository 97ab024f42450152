package layout

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/filter"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

var ErrUnsupported = errors.New("unsupported storage layout")

// Layout reads all elements of one dataset.
type Layout interface {
	Read() ([]byte, error)
	Class() message.LayoutClass
}

// New returns the reader for a dataset. fp may be nil.
func New(
	msg *message.DataLayout,
	ds *message.Dataspace,
	dt *message.Datatype,
	fp *message.FilterPipeline,
	r *binary.Reader,
) (Layout, error) {
	if msg == nil || ds == nil || dt == nil {
		return nil, fmt.Errorf("dataset lacks a layout, dataspace or datatype message")
	}
	size := ds.NumElements() * uint64(dt.Size)

	switch msg.Class {
	case message.LayoutCompact:
		return &Compact{data: msg.CompactData, size: size}, nil
	case message.LayoutContiguous:
		return &Contiguous{r: r, address: msg.Address, size: size}, nil
	case message.LayoutChunked:
		if len(msg.ChunkDims) != ds.Rank() {
			return nil, fmt.Errorf("chunk rank %d for a rank %d dataset", len(msg.ChunkDims), ds.Rank())
		}
		for _, d := range msg.ChunkDims {
			if d == 0 {
				return nil, fmt.Errorf("zero chunk dimension")
			}
		}
		return &Chunked{
			r:           r,
			msg:         msg,
			dims:        ds.Dims,
			elementSize: uint64(dt.Size),
			pipeline:    filter.NewPipeline(fp, int(dt.Size)),
		}, nil
	}
	return nil, fmt.Errorf("%w: class %d", ErrUnsupported, msg.Class)
}

// Compact storage keeps the bytes in the object header.
type Compact struct {
	data []byte
	size uint64
}

func (c *Compact) Class() message.LayoutClass { return message.LayoutCompact }

func (c *Compact) Read() ([]byte, error) {
	if uint64(len(c.data)) < c.size {
		return nil, fmt.Errorf("compact data holds %d of %d bytes", len(c.data), c.size)
	}
	return append([]byte(nil), c.data[:c.size]...), nil
}

// Contiguous storage is one block of the file.
type Contiguous struct {
	r       *binary.Reader
	address uint64
	size    uint64
}

func (c *Contiguous) Class() message.LayoutClass { return message.LayoutContiguous }

func (c *Contiguous) Read() ([]byte, error) {
	if c.size == 0 {
		return []byte{}, nil
	}
	if c.r.Config().IsUndefined(c.address) {
		return make([]byte, c.size), nil
	}
	data, err := c.r.At(int64(c.address)).Bytes(int(c.size))
	if err != nil {
		return nil, fmt.Errorf("contiguous data: %w", err)
	}
	return data, nil
}
