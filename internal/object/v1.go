package object

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// v1PrefixSize includes the four bytes that align the first message.
const v1PrefixSize = 16

func readV1(r *binary.Reader, addr uint64) (*Header, error) {
	pr := r.At(int64(addr))
	version, err := pr.Uint8()
	if err != nil {
		return nil, err
	}
	if version != 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	// Reserved byte, message count, reference count.
	pr.Skip(1 + 2 + 4)
	size, err := pr.Uint32()
	if err != nil {
		return nil, err
	}

	h := &Header{Version: 1, Address: addr}
	pending := []block{{addr: addr + v1PrefixSize, length: uint64(size)}}
	seen := map[uint64]bool{}
	for len(pending) > 0 {
		b := pending[0]
		pending = pending[1:]

		data, err := r.At(int64(b.addr)).Bytes(int(b.length))
		if err != nil {
			return nil, err
		}
		br := binary.FromBytes(data, r.Config())
		for int(br.Pos())+8 <= len(data) {
			typ, err := br.Uint16()
			if err != nil {
				return nil, err
			}
			n, err := br.Uint16()
			if err != nil {
				return nil, err
			}
			flags, err := br.Uint8()
			if err != nil {
				return nil, err
			}
			br.Skip(3)
			body, err := br.Bytes(int(n))
			if err != nil {
				return nil, err
			}

			m, err := message.Parse(message.Type(typ), flags, body, r.Config())
			if err != nil {
				return nil, err
			}
			if pending, err = h.add(m, pending, seen); err != nil {
				return nil, err
			}
		}
	}
	return h, nil
}
