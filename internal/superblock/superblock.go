package superblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-treeseq/internal/binary"
)

// Signature opens every superblock.
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

// maxSearch bounds the user block sizes probed for a signature.
const maxSearch = 1 << 20

var (
	ErrNotHDF5            = errors.New("HDF5 signature not found")
	ErrUnsupportedVersion = errors.New("unsupported superblock version")
	ErrChecksum           = errors.New("superblock checksum mismatch")
)

// Superblock holds the fields of any superblock version that the rest of
// the reader needs.
type Superblock struct {
	Version    uint8
	OffsetSize uint8
	LengthSize uint8

	// Location is the file position the signature was found at.
	Location int64

	BaseAddress      uint64
	EOFAddress       uint64
	RootGroupAddress uint64

	// Version 0 and 1 cache the root group's symbol table in the
	// superblock. Both are zero when the cache is absent.
	RootGroupBTreeAddress     uint64
	RootGroupLocalHeapAddress uint64
}

// Read finds the signature at offset 0 or at a power of two from 512 on,
// then decodes the superblock that follows it.
func Read(src io.ReaderAt) (*Superblock, error) {
	sig := make([]byte, len(Signature))
	for loc := int64(0); loc <= maxSearch; loc = nextLocation(loc) {
		if _, err := src.ReadAt(sig, loc); err != nil {
			break
		}
		if bytes.Equal(sig, Signature) {
			return decode(src, loc)
		}
	}
	return nil, ErrNotHDF5
}

func nextLocation(loc int64) int64 {
	if loc == 0 {
		return 512
	}
	return loc * 2
}

func decode(src io.ReaderAt, loc int64) (*Superblock, error) {
	r := binpkg.NewReader(src, binpkg.DefaultConfig()).At(loc + int64(len(Signature)))
	version, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	switch version {
	case 0, 1:
		return decodeV0(src, loc, version)
	case 2, 3:
		return decodeV2(src, loc, version)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
}

// Config returns the field widths of the file.
func (sb *Superblock) Config() binpkg.Config {
	return binpkg.Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: int(sb.OffsetSize),
		LengthSize: int(sb.LengthSize),
	}
}

// Reader returns a Reader over src that resolves addresses against the
// base address.
func (sb *Superblock) Reader(src io.ReaderAt) *binpkg.Reader {
	return binpkg.NewReader(src, sb.Config()).WithBase(int64(sb.BaseAddress))
}

// readSizes reads the offset and length widths and validates them.
func (sb *Superblock) readSizes(r *binpkg.Reader) error {
	var err error
	if sb.OffsetSize, err = r.Uint8(); err != nil {
		return err
	}
	if sb.LengthSize, err = r.Uint8(); err != nil {
		return err
	}
	return sb.Config().Validate()
}
