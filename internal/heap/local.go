package heap

import (
	"bytes"
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

// LocalHeap is the name store of an old-style group.
type LocalHeap struct {
	DataAddress uint64
	data        []byte
}

// ReadLocal reads the local heap at addr together with its data segment.
func ReadLocal(r *binary.Reader, addr uint64) (*LocalHeap, error) {
	hr := r.At(int64(addr))
	if err := hr.Signature("HEAP"); err != nil {
		return nil, fmt.Errorf("local heap at %#x: %w", addr, err)
	}
	version, err := hr.Uint8()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("local heap at %#x: unsupported version %d", addr, version)
	}
	hr.Skip(3)

	size, err := hr.Length()
	if err != nil {
		return nil, err
	}
	// Free list head.
	if _, err := hr.Length(); err != nil {
		return nil, err
	}
	dataAddr, err := hr.Offset()
	if err != nil {
		return nil, err
	}

	data, err := r.At(int64(dataAddr)).Bytes(int(size))
	if err != nil {
		return nil, fmt.Errorf("local heap data at %#x: %w", dataAddr, err)
	}
	return &LocalHeap{DataAddress: dataAddr, data: data}, nil
}

// String returns the null-terminated string at offset, or "" when offset
// lies outside the data segment.
func (h *LocalHeap) String(offset uint64) string {
	if offset >= uint64(len(h.data)) {
		return ""
	}
	s := h.data[offset:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s)
}
