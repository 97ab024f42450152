package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidSize is returned for offset or length widths other than 2, 4 or 8.
var ErrInvalidSize = errors.New("offset and length sizes must be 2, 4 or 8 bytes")

// Config describes the field widths of one file.
type Config struct {
	ByteOrder  binary.ByteOrder
	OffsetSize int
	LengthSize int
}

// DefaultConfig is used before the superblock has been decoded, and for
// files this module creates.
func DefaultConfig() Config {
	return Config{ByteOrder: binary.LittleEndian, OffsetSize: 8, LengthSize: 8}
}

// Validate checks the offset and length widths.
func (c Config) Validate() error {
	for _, size := range []int{c.OffsetSize, c.LengthSize} {
		if size != 2 && size != 4 && size != 8 {
			return fmt.Errorf("%w: got %d", ErrInvalidSize, size)
		}
	}
	return nil
}

// Undefined returns the all-ones address that marks an unset offset.
func (c Config) Undefined() uint64 {
	if c.OffsetSize >= 8 {
		return ^uint64(0)
	}
	return 1<<(8*uint(c.OffsetSize)) - 1
}

// IsUndefined reports whether addr is the all-ones address at this width.
// Addresses read at a narrower width are zero-extended, so ^uint64(0) is
// treated as undefined at every width.
func (c Config) IsUndefined(addr uint64) bool {
	return addr == c.Undefined() || addr == ^uint64(0)
}

// Reader decodes fields from an io.ReaderAt. Positions are file addresses;
// the base address of the file is added on every access.
type Reader struct {
	src  io.ReaderAt
	cfg  Config
	base int64
	pos  int64
}

// NewReader returns a Reader positioned at address 0.
func NewReader(src io.ReaderAt, cfg Config) *Reader {
	return &Reader{src: src, cfg: cfg}
}

// FromBytes returns a Reader over an in-memory buffer.
func FromBytes(data []byte, cfg Config) *Reader {
	return NewReader(bytes.NewReader(data), cfg)
}

// WithBase returns a copy of r whose addresses are relative to base.
func (r *Reader) WithBase(base int64) *Reader {
	c := *r
	c.base = base
	return &c
}

// At returns an independent Reader positioned at addr.
func (r *Reader) At(addr int64) *Reader {
	c := *r
	c.pos = addr
	return &c
}

// Pos returns the current address.
func (r *Reader) Pos() int64 { return r.pos }

// Config returns the field widths.
func (r *Reader) Config() Config { return r.cfg }

// OffsetSize returns the width of an address.
func (r *Reader) OffsetSize() int { return r.cfg.OffsetSize }

// LengthSize returns the width of a length.
func (r *Reader) LengthSize() int { return r.cfg.LengthSize }

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int) { r.pos += int64(n) }

// Bytes reads the next n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read of %d bytes at %d", n, r.pos)
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := r.src.ReadAt(buf, r.base+r.pos); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading %d bytes at %d: %w", n, r.pos, err)
	}
	r.pos += int64(n)
	return buf, nil
}

// Uint8 reads one byte.
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads a two-byte integer.
func (r *Reader) Uint16() (uint16, error) {
	v, err := r.Uint(2)
	return uint16(v), err
}

// Uint32 reads a four-byte integer.
func (r *Reader) Uint32() (uint32, error) {
	v, err := r.Uint(4)
	return uint32(v), err
}

// Uint64 reads an eight-byte integer.
func (r *Reader) Uint64() (uint64, error) {
	return r.Uint(8)
}

// Offset reads an address.
func (r *Reader) Offset() (uint64, error) {
	return r.Uint(r.cfg.OffsetSize)
}

// Length reads a length.
func (r *Reader) Length() (uint64, error) {
	return r.Uint(r.cfg.LengthSize)
}

// Uint reads an unsigned integer of width 1 to 8 bytes.
func (r *Reader) Uint(width int) (uint64, error) {
	if width < 1 || width > 8 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidSize, width)
	}
	b, err := r.Bytes(width)
	if err != nil {
		return 0, err
	}
	return DecodeUint(b, r.cfg.ByteOrder), nil
}

// Signature reads len(want) bytes and checks them against want.
func (r *Reader) Signature(want string) error {
	b, err := r.Bytes(len(want))
	if err != nil {
		return err
	}
	if string(b) != want {
		return fmt.Errorf("bad signature at %d: got %q, want %q", r.pos-int64(len(want)), b, want)
	}
	return nil
}

// DecodeUint decodes an unsigned integer of any width up to eight bytes.
func DecodeUint(b []byte, order binary.ByteOrder) uint64 {
	var v uint64
	if order == binary.BigEndian {
		for _, x := range b {
			v = v<<8 | uint64(x)
		}
		return v
	}
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
