package superblock

import (
	"encoding/binary"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-treeseq/internal/binary"
)

// New returns a version 2 superblock for a file with the given widths.
func New(cfg binpkg.Config) *Superblock {
	return &Superblock{
		Version:    2,
		OffsetSize: uint8(cfg.OffsetSize),
		LengthSize: uint8(cfg.LengthSize),
	}
}

// Size returns the encoded size of a version 2 or 3 superblock.
func (sb *Superblock) Size() int {
	return len(Signature) + 4 + 4*int(sb.OffsetSize) + 4
}

func decodeV2(src io.ReaderAt, loc int64, version uint8) (*Superblock, error) {
	sb := &Superblock{Version: version, Location: loc}
	r := binpkg.NewReader(src, binpkg.DefaultConfig()).At(loc + 9)
	if err := sb.readSizes(r); err != nil {
		return nil, err
	}

	raw, err := binpkg.NewReader(src, sb.Config()).At(loc).Bytes(sb.Size())
	if err != nil {
		return nil, err
	}
	body := raw[:len(raw)-4]
	if stored := binary.LittleEndian.Uint32(raw[len(body):]); stored != binpkg.Lookup3(body) {
		return nil, fmt.Errorf("%w: stored %#08x", ErrChecksum, stored)
	}

	// Skip signature, version, widths and consistency flags.
	r = binpkg.FromBytes(body, sb.Config()).At(int64(len(Signature) + 4))
	if sb.BaseAddress, err = r.Offset(); err != nil {
		return nil, err
	}
	// Superblock extension address.
	r.Skip(r.OffsetSize())
	if sb.EOFAddress, err = r.Offset(); err != nil {
		return nil, err
	}
	if sb.RootGroupAddress, err = r.Offset(); err != nil {
		return nil, err
	}
	return sb, nil
}

// Encode returns the superblock as a version 2 superblock. The superblock
// extension is always absent.
func (sb *Superblock) Encode() []byte {
	e := binpkg.NewEncoder(sb.Config())
	e.Raw(Signature)
	e.Uint8(2)
	e.Uint8(sb.OffsetSize)
	e.Uint8(sb.LengthSize)
	e.Uint8(0)
	e.Offset(sb.BaseAddress)
	e.Undefined()
	e.Offset(sb.EOFAddress)
	e.Offset(sb.RootGroupAddress)
	e.Checksum()
	return e.Bytes()
}
