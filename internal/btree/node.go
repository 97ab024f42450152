package btree

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

const (
	nodeGroup = 0
	nodeChunk = 1

	// maxDepth bounds the walk on corrupt files.
	maxDepth = 32
)

// visitFunc receives the key to the left of each child of a leaf node.
type visitFunc func(key *binary.Reader, child uint64) error

// walk visits the leaf children of the tree rooted at addr in key order.
func walk(r *binary.Reader, addr uint64, kind uint8, keySize int, visit visitFunc) error {
	return walkNode(r, addr, kind, keySize, -1, visit)
}

func walkNode(r *binary.Reader, addr uint64, kind uint8, keySize int, parentLevel int, visit visitFunc) error {
	nr := r.At(int64(addr))
	if err := nr.Signature("TREE"); err != nil {
		return fmt.Errorf("b-tree node at %#x: %w", addr, err)
	}
	nodeType, err := nr.Uint8()
	if err != nil {
		return err
	}
	if nodeType != kind {
		return fmt.Errorf("b-tree node at %#x: type %d, want %d", addr, nodeType, kind)
	}
	level, err := nr.Uint8()
	if err != nil {
		return err
	}
	if parentLevel >= 0 && int(level) != parentLevel-1 || level > maxDepth {
		return fmt.Errorf("b-tree node at %#x: bad level %d", addr, level)
	}
	used, err := nr.Uint16()
	if err != nil {
		return err
	}
	// Sibling addresses.
	nr.Skip(2 * nr.OffsetSize())

	cfg := r.Config()
	for i := 0; i < int(used); i++ {
		key, err := nr.Bytes(keySize)
		if err != nil {
			return err
		}
		child, err := nr.Offset()
		if err != nil {
			return err
		}
		if level > 0 {
			err = walkNode(r, child, kind, keySize, int(level), visit)
		} else {
			err = visit(binary.FromBytes(key, cfg), child)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
