package superblock

import (
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-treeseq/internal/binary"
)

// symbolTableCache marks a symbol table entry whose scratch pad holds the
// B-tree and local heap addresses of a group.
const symbolTableCache = 1

// decodeV0 reads a version 0 or 1 superblock. Version 1 adds the indexed
// storage K and two reserved bytes after the consistency flags.
func decodeV0(src io.ReaderAt, loc int64, version uint8) (*Superblock, error) {
	sb := &Superblock{Version: version, Location: loc}
	r := binpkg.NewReader(src, binpkg.DefaultConfig()).At(loc + 9)

	// Free-space, root entry and shared header versions, then a reserved byte.
	r.Skip(4)
	if err := sb.readSizes(r); err != nil {
		return nil, err
	}
	r = binpkg.NewReader(src, sb.Config()).At(r.Pos())

	// Reserved byte, group leaf and internal K, consistency flags.
	r.Skip(1 + 2 + 2 + 4)
	if version == 1 {
		r.Skip(4)
	}

	var err error
	if sb.BaseAddress, err = r.Offset(); err != nil {
		return nil, err
	}
	// Free-space info address.
	r.Skip(r.OffsetSize())
	if sb.EOFAddress, err = r.Offset(); err != nil {
		return nil, err
	}
	// Driver info block address.
	r.Skip(r.OffsetSize())

	if err := sb.readRootEntry(r); err != nil {
		return nil, fmt.Errorf("root group symbol table entry: %w", err)
	}
	return sb, nil
}

func (sb *Superblock) readRootEntry(r *binpkg.Reader) error {
	// Link name offset.
	r.Skip(r.OffsetSize())

	var err error
	if sb.RootGroupAddress, err = r.Offset(); err != nil {
		return err
	}
	cacheType, err := r.Uint32()
	if err != nil {
		return err
	}
	r.Skip(4)
	if cacheType != symbolTableCache {
		return nil
	}
	if sb.RootGroupBTreeAddress, err = r.Offset(); err != nil {
		return err
	}
	sb.RootGroupLocalHeapAddress, err = r.Offset()
	return err
}
