package btree

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

// ChunkEntry locates one stored chunk.
type ChunkEntry struct {
	// Offset is the element coordinate of the chunk's first element.
	Offset     []uint64
	FilterMask uint32
	Size       uint32
	Address    uint64
}

// ReadChunks returns the allocated chunks of a rank-dimensional dataset
// indexed by the chunk B-tree at addr.
func ReadChunks(r *binary.Reader, addr uint64, rank int) ([]ChunkEntry, error) {
	// Keys carry one extra offset for the element size dimension.
	keySize := 4 + 4 + 8*(rank+1)

	var chunks []ChunkEntry
	err := walk(r, addr, nodeChunk, keySize, func(key *binary.Reader, child uint64) error {
		size, err := key.Uint32()
		if err != nil {
			return err
		}
		mask, err := key.Uint32()
		if err != nil {
			return err
		}
		offset := make([]uint64, rank)
		for d := range offset {
			if offset[d], err = key.Uint64(); err != nil {
				return err
			}
		}
		if r.Config().IsUndefined(child) || size == 0 {
			return nil
		}
		chunks = append(chunks, ChunkEntry{Offset: offset, FilterMask: mask, Size: size, Address: child})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chunk index: %w", err)
	}
	return chunks, nil
}
