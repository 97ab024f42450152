package layout

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/btree"
	"github.com/robert-malhotra/go-treeseq/internal/filter"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// Chunked storage splits the dataset into equally shaped chunks. Chunks
// that were never written read as zeros.
type Chunked struct {
	r           *binary.Reader
	msg         *message.DataLayout
	dims        []uint64
	elementSize uint64
	pipeline    *filter.Pipeline
}

func (c *Chunked) Class() message.LayoutClass { return message.LayoutChunked }

func (c *Chunked) chunkBytes() uint64 {
	n := c.elementSize
	for _, d := range c.msg.ChunkDims {
		n *= d
	}
	return n
}

func (c *Chunked) Read() ([]byte, error) {
	total := c.elementSize
	for _, d := range c.dims {
		total *= d
	}
	out := make([]byte, total)
	if total == 0 {
		return out, nil
	}

	chunks, err := c.chunks()
	if err != nil {
		return nil, err
	}
	for _, entry := range chunks {
		data, err := c.r.At(int64(entry.Address)).Bytes(int(entry.Size))
		if err != nil {
			return nil, fmt.Errorf("chunk at %#x: %w", entry.Address, err)
		}
		if data, err = c.pipeline.Decode(data, entry.FilterMask); err != nil {
			return nil, fmt.Errorf("chunk at %v: %w", entry.Offset, err)
		}
		if uint64(len(data)) < c.chunkBytes() {
			return nil, fmt.Errorf("chunk at %v holds %d of %d bytes", entry.Offset, len(data), c.chunkBytes())
		}
		copyChunk(out, data, entry.Offset, c.dims, c.msg.ChunkDims, c.elementSize)
	}
	return out, nil
}

// chunks lists the stored chunks from the dataset's chunk index.
func (c *Chunked) chunks() ([]btree.ChunkEntry, error) {
	if c.r.Config().IsUndefined(c.msg.Address) {
		return nil, nil
	}
	rank := len(c.dims)
	switch c.msg.Index {
	case message.IndexBTreeV1:
		return btree.ReadChunks(c.r, c.msg.Address, rank)
	case message.IndexSingleChunk:
		size := c.msg.FilteredSize
		if size == 0 {
			size = c.chunkBytes()
		}
		return []btree.ChunkEntry{{
			Offset:     make([]uint64, rank),
			FilterMask: c.msg.FilterMask,
			Size:       uint32(size),
			Address:    c.msg.Address,
		}}, nil
	case message.IndexImplicit:
		return c.implicitChunks(), nil
	}
	return nil, fmt.Errorf("%w: %s chunk index", ErrUnsupported, c.msg.Index)
}

// implicitChunks enumerates unfiltered chunks stored back to back in row
// major chunk order.
func (c *Chunked) implicitChunks() []btree.ChunkEntry {
	rank := len(c.dims)
	counts := make([]uint64, rank)
	for d := range counts {
		counts[d] = (c.dims[d] + c.msg.ChunkDims[d] - 1) / c.msg.ChunkDims[d]
	}

	var chunks []btree.ChunkEntry
	addr := c.msg.Address
	forEachIndex(counts, func(idx []uint64) {
		offset := make([]uint64, rank)
		for d := range offset {
			offset[d] = idx[d] * c.msg.ChunkDims[d]
		}
		chunks = append(chunks, btree.ChunkEntry{Offset: offset, Size: uint32(c.chunkBytes()), Address: addr})
		addr += c.chunkBytes()
	})
	return chunks
}

// forEachIndex calls fn with every index below counts in row major order.
func forEachIndex(counts []uint64, fn func(idx []uint64)) {
	for _, n := range counts {
		if n == 0 {
			return
		}
	}
	idx := make([]uint64, len(counts))
	for {
		fn(idx)
		d := len(idx) - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < counts[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			return
		}
	}
}

// copyChunk copies the part of chunk lying inside the dataset into out,
// one innermost row at a time.
func copyChunk(out, chunk []byte, offset, dims, chunkDims []uint64, elementSize uint64) {
	rank := len(dims)
	extent := make([]uint64, rank)
	for d := range extent {
		if offset[d] >= dims[d] {
			return
		}
		extent[d] = min(chunkDims[d], dims[d]-offset[d])
	}
	row := extent[rank-1] * elementSize

	forEachIndex(extent[:rank-1], func(idx []uint64) {
		var outPos, inPos uint64
		outStride, inStride := elementSize, elementSize
		for d := rank - 1; d >= 0; d-- {
			var i uint64
			if d < rank-1 {
				i = idx[d]
			}
			outPos += (offset[d] + i) * outStride
			inPos += i * inStride
			outStride *= dims[d]
			inStride *= chunkDims[d]
		}
		copy(out[outPos:outPos+row], chunk[inPos:inPos+row])
	})
}
