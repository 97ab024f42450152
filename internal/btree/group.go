package btree

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/heap"
)

// GroupEntry is one member of an old-style group.
type GroupEntry struct {
	Name    string
	Address uint64
	// Soft entries carry a link target instead of an object address.
	Soft   bool
	Target string
}

// Symbol table entry cache types.
const (
	cacheNone        = 0
	cacheSymbolTable = 1
	cacheSoftLink    = 2
)

// ReadGroup returns the entries of the group B-tree at addr in name order.
func ReadGroup(r *binary.Reader, addr uint64, names *heap.LocalHeap) ([]GroupEntry, error) {
	var entries []GroupEntry
	err := walk(r, addr, nodeGroup, r.LengthSize(), func(_ *binary.Reader, child uint64) error {
		got, err := readSymbolNode(r, child, names)
		if err != nil {
			return err
		}
		entries = append(entries, got...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func readSymbolNode(r *binary.Reader, addr uint64, names *heap.LocalHeap) ([]GroupEntry, error) {
	nr := r.At(int64(addr))
	if err := nr.Signature("SNOD"); err != nil {
		return nil, fmt.Errorf("symbol table node at %#x: %w", addr, err)
	}
	version, err := nr.Uint8()
	if err != nil {
		return nil, err
	}
	if version != 1 {
		return nil, fmt.Errorf("symbol table node at %#x: unsupported version %d", addr, version)
	}
	nr.Skip(1)
	n, err := nr.Uint16()
	if err != nil {
		return nil, err
	}

	entries := make([]GroupEntry, 0, n)
	for i := 0; i < int(n); i++ {
		e, err := readSymbolEntry(nr, names)
		if err != nil {
			return nil, fmt.Errorf("symbol table node at %#x, entry %d: %w", addr, i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func readSymbolEntry(r *binary.Reader, names *heap.LocalHeap) (GroupEntry, error) {
	nameOffset, err := r.Offset()
	if err != nil {
		return GroupEntry{}, err
	}
	addr, err := r.Offset()
	if err != nil {
		return GroupEntry{}, err
	}
	cache, err := r.Uint32()
	if err != nil {
		return GroupEntry{}, err
	}
	r.Skip(4)
	scratch, err := r.Bytes(16)
	if err != nil {
		return GroupEntry{}, err
	}

	e := GroupEntry{Name: names.String(nameOffset), Address: addr}
	switch cache {
	case cacheNone, cacheSymbolTable:
	case cacheSoftLink:
		e.Soft = true
		e.Address = 0
		e.Target = names.String(binary.DecodeUint(scratch[:4], r.Config().ByteOrder))
	default:
		return GroupEntry{}, fmt.Errorf("unknown cache type %d", cache)
	}
	return e, nil
}
