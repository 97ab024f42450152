package message

import (
	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

// LinkKind distinguishes hard, soft and external links.
type LinkKind uint8

const (
	LinkHard     LinkKind = 0
	LinkSoft     LinkKind = 1
	LinkExternal LinkKind = 64
)

// Link names a member of a new-style group.
type Link struct {
	Name    string
	Kind    LinkKind
	Address uint64
	// Target holds the path of a soft link.
	Target string
}

func (m *Link) Type() Type { return TypeLink }

// NewHardLink returns a link to the object header at addr.
func NewHardLink(name string, addr uint64) *Link {
	return &Link{Name: name, Kind: LinkHard, Address: addr}
}

// IsHard reports whether the link points at an object header.
func (m *Link) IsHard() bool { return m.Kind == LinkHard }

const (
	linkNameWidth  = 0x03
	linkHasOrder   = 1 << 2
	linkHasKind    = 1 << 3
	linkHasCharset = 1 << 4
)

func decodeLink(r *binary.Reader) (*Link, error) {
	if _, err := readVersion(r, 1); err != nil {
		return nil, err
	}
	flags, err := r.Uint8()
	if err != nil {
		return nil, err
	}

	m := &Link{}
	if flags&linkHasKind != 0 {
		kind, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		m.Kind = LinkKind(kind)
	}
	if flags&linkHasOrder != 0 {
		r.Skip(8)
	}
	if flags&linkHasCharset != 0 {
		r.Skip(1)
	}
	nameLen, err := r.Uint(1 << (flags & linkNameWidth))
	if err != nil {
		return nil, err
	}
	name, err := r.Bytes(int(nameLen))
	if err != nil {
		return nil, err
	}
	m.Name = string(name)

	switch m.Kind {
	case LinkHard:
		m.Address, err = r.Offset()
		return m, err
	case LinkSoft:
		n, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		target, err := r.Bytes(int(n))
		if err != nil {
			return nil, err
		}
		m.Target = string(target)
		return m, nil
	}
	// External and user-defined links are kept by name only.
	return m, nil
}

// Encode writes a hard link.
func (m *Link) Encode(e *binary.Encoder) {
	width := 0
	for n := len(m.Name); n >= 1<<(8<<width) && width < 3; {
		width++
	}
	e.Uint8(1)
	e.Uint8(uint8(width))
	e.Uint(uint64(len(m.Name)), 1<<width)
	e.Raw([]byte(m.Name))
	e.Offset(m.Address)
}

// LinkInfo marks a new-style group and locates its dense link storage.
type LinkInfo struct {
	FractalHeapAddress uint64
	NameIndexAddress   uint64
}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

// NewLinkInfo returns the link info of a group whose links are all stored
// in its object header.
func NewLinkInfo(cfg binary.Config) *LinkInfo {
	return &LinkInfo{FractalHeapAddress: cfg.Undefined(), NameIndexAddress: cfg.Undefined()}
}

// linkInfoTracksOrder adds a maximum creation index before the addresses.
const linkInfoTracksOrder = 1 << 0

func decodeLinkInfo(r *binary.Reader) (*LinkInfo, error) {
	if _, err := readVersion(r, 0); err != nil {
		return nil, err
	}
	flags, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	if flags&linkInfoTracksOrder != 0 {
		r.Skip(8)
	}
	m := &LinkInfo{}
	if m.FractalHeapAddress, err = r.Offset(); err != nil {
		return nil, err
	}
	if m.NameIndexAddress, err = r.Offset(); err != nil {
		return nil, err
	}
	return m, nil
}

// Dense reports whether links are stored outside the object header.
func (m *LinkInfo) Dense(cfg binary.Config) bool {
	return !cfg.IsUndefined(m.FractalHeapAddress)
}

func (m *LinkInfo) Encode(e *binary.Encoder) {
	e.Uint8(0)
	e.Uint8(0)
	e.Offset(m.FractalHeapAddress)
	e.Offset(m.NameIndexAddress)
}

// GroupInfo accompanies LinkInfo in a new-style group. No storage hints
// are written.
type GroupInfo struct{}

func (m *GroupInfo) Type() Type { return TypeGroupInfo }

func (m *GroupInfo) Encode(e *binary.Encoder) {
	e.Uint8(0)
	e.Uint8(0)
}
