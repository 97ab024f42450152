package object

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

const (
	v2Signature           = "OHDR"
	v2ContinuationSig     = "OCHK"
	v2ChunkSizeMask       = 0x03
	v2TracksCreationOrder = 1 << 2
	v2StoresPhaseChange   = 1 << 4
	v2StoresTimes         = 1 << 5
)

func readV2(r *binpkg.Reader, addr uint64) (*Header, error) {
	pr := r.At(int64(addr) + 4)
	version, err := pr.Uint8()
	if err != nil {
		return nil, err
	}
	if version != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	flags, err := pr.Uint8()
	if err != nil {
		return nil, err
	}
	if flags&v2StoresTimes != 0 {
		pr.Skip(16)
	}
	if flags&v2StoresPhaseChange != 0 {
		pr.Skip(4)
	}
	size, err := pr.Uint(1 << (flags & v2ChunkSizeMask))
	if err != nil {
		return nil, err
	}

	prefix := int(pr.Pos() - int64(addr))
	chunk, err := checkedBlock(r, addr, prefix+int(size)+4)
	if err != nil {
		return nil, err
	}

	h := &Header{Version: 2, Address: addr}
	seen := map[uint64]bool{}
	pending, err := h.readV2Messages(r.Config(), chunk[prefix:], flags, nil, seen)
	if err != nil {
		return nil, err
	}
	for len(pending) > 0 {
		b := pending[0]
		pending = pending[1:]

		chunk, err := checkedBlock(r, b.addr, int(b.length))
		if err != nil {
			return nil, err
		}
		if string(chunk[:4]) != v2ContinuationSig {
			return nil, fmt.Errorf("bad continuation signature %q at %#x", chunk[:4], b.addr)
		}
		if pending, err = h.readV2Messages(r.Config(), chunk[4:], flags, pending, seen); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// checkedBlock reads n bytes at addr and verifies the trailing checksum,
// returning the bytes without it.
func checkedBlock(r *binpkg.Reader, addr uint64, n int) ([]byte, error) {
	if n < 8 {
		return nil, fmt.Errorf("header block of %d bytes at %#x", n, addr)
	}
	raw, err := r.At(int64(addr)).Bytes(n)
	if err != nil {
		return nil, err
	}
	body := raw[:n-4]
	if stored := binary.LittleEndian.Uint32(raw[n-4:]); stored != binpkg.Lookup3(body) {
		return nil, fmt.Errorf("%w at %#x", ErrChecksum, addr)
	}
	return body, nil
}

func (h *Header) readV2Messages(cfg binpkg.Config, data []byte, flags uint8, pending []block, seen map[uint64]bool) ([]block, error) {
	headerSize := 4
	if flags&v2TracksCreationOrder != 0 {
		headerSize += 2
	}

	br := binpkg.FromBytes(data, cfg)
	// A gap shorter than a message header may end the block.
	for int(br.Pos())+headerSize <= len(data) {
		typ, err := br.Uint8()
		if err != nil {
			return nil, err
		}
		n, err := br.Uint16()
		if err != nil {
			return nil, err
		}
		mflags, err := br.Uint8()
		if err != nil {
			return nil, err
		}
		br.Skip(headerSize - 4)
		body, err := br.Bytes(int(n))
		if err != nil {
			return nil, err
		}

		m, err := message.Parse(message.Type(typ), mflags, body, cfg)
		if err != nil {
			return nil, err
		}
		if pending, err = h.add(m, pending, seen); err != nil {
			return nil, err
		}
	}
	return pending, nil
}
