package btree

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

// ChunkNodeCapacity is the number of children a chunk B-tree node holds
// in files without an explicit setting: twice the C library's default K.
const ChunkNodeCapacity = 64

// EncodeChunkLeaf returns a chunk B-tree of a single leaf node indexing
// chunks of a dataset whose chunks have shape chunkDims. The node is
// padded to its full capacity, which is what readers load.
func EncodeChunkLeaf(cfg binary.Config, chunks []ChunkEntry, chunkDims []uint64) ([]byte, error) {
	if len(chunks) > ChunkNodeCapacity {
		return nil, fmt.Errorf("%d chunks exceed a single node", len(chunks))
	}
	rank := len(chunkDims)
	keySize := 4 + 4 + 8*(rank+1)

	e := binary.NewEncoder(cfg)
	e.Raw([]byte("TREE"))
	e.Uint8(nodeChunk)
	e.Uint8(0)
	e.Uint16(uint16(len(chunks)))
	e.Undefined()
	e.Undefined()

	key := func(size, mask uint32, offset []uint64) {
		e.Uint32(size)
		e.Uint32(mask)
		for _, o := range offset {
			e.Uint64(o)
		}
		e.Uint64(0)
	}
	for _, c := range chunks {
		key(c.Size, c.FilterMask, c.Offset)
		e.Offset(c.Address)
	}
	// The closing key bounds the last chunk.
	end := make([]uint64, rank)
	if n := len(chunks); n > 0 {
		for d := range end {
			end[d] = chunks[n-1].Offset[d] + chunkDims[d]
		}
	}
	key(0, 0, end)

	full := 8 + 2*cfg.OffsetSize + ChunkNodeCapacity*cfg.OffsetSize + (ChunkNodeCapacity+1)*keySize
	e.Zeros(full - e.Len())
	return e.Bytes(), nil
}
