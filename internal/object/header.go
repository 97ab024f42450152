package object

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

var (
	ErrUnsupportedVersion = errors.New("unsupported object header version")
	ErrChecksum           = errors.New("object header checksum mismatch")
)

// Header is a decoded object header. Nil messages and continuations are
// dropped.
type Header struct {
	Version  uint8
	Address  uint64
	Messages []message.Message
}

// Read decodes the object header at addr.
func Read(r *binary.Reader, addr uint64) (*Header, error) {
	sig, err := r.At(int64(addr)).Bytes(4)
	if err != nil {
		return nil, fmt.Errorf("object header at %#x: %w", addr, err)
	}
	var h *Header
	if string(sig) == v2Signature {
		h, err = readV2(r, addr)
	} else {
		h, err = readV1(r, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("object header at %#x: %w", addr, err)
	}
	return h, nil
}

// block is a run of header messages inside the file.
type block struct {
	addr   uint64
	length uint64
}

// add records m, returning any continuation it introduces.
func (h *Header) add(m message.Message, pending []block, seen map[uint64]bool) ([]block, error) {
	switch m := m.(type) {
	case *message.Continuation:
		if seen[m.Address] {
			return nil, fmt.Errorf("continuation loop at %#x", m.Address)
		}
		seen[m.Address] = true
		return append(pending, block{addr: m.Address, length: m.Length}), nil
	case *message.Unknown:
		if m.Kind == message.TypeNil {
			return pending, nil
		}
	}
	h.Messages = append(h.Messages, m)
	return pending, nil
}

// Find returns the first message of type t, or nil.
func (h *Header) Find(t message.Type) message.Message {
	for _, m := range h.Messages {
		if m.Type() == t {
			return m
		}
	}
	return nil
}

// FindAll returns every message of type t in header order.
func (h *Header) FindAll(t message.Type) []message.Message {
	var out []message.Message
	for _, m := range h.Messages {
		if m.Type() == t {
			out = append(out, m)
		}
	}
	return out
}

func find[T message.Message](h *Header, t message.Type) T {
	m, _ := h.Find(t).(T)
	return m
}

func findAll[T message.Message](h *Header, t message.Type) []T {
	var out []T
	for _, m := range h.FindAll(t) {
		out = append(out, m.(T))
	}
	return out
}

func (h *Header) Dataspace() *message.Dataspace {
	return find[*message.Dataspace](h, message.TypeDataspace)
}

func (h *Header) Datatype() *message.Datatype {
	return find[*message.Datatype](h, message.TypeDatatype)
}

func (h *Header) Layout() *message.DataLayout {
	return find[*message.DataLayout](h, message.TypeDataLayout)
}

func (h *Header) Filters() *message.FilterPipeline {
	return find[*message.FilterPipeline](h, message.TypeFilterPipeline)
}

func (h *Header) SymbolTable() *message.SymbolTable {
	return find[*message.SymbolTable](h, message.TypeSymbolTable)
}

func (h *Header) LinkInfo() *message.LinkInfo {
	return find[*message.LinkInfo](h, message.TypeLinkInfo)
}

func (h *Header) Links() []*message.Link {
	return findAll[*message.Link](h, message.TypeLink)
}

func (h *Header) Attributes() []*message.Attribute {
	return findAll[*message.Attribute](h, message.TypeAttribute)
}

// IsDataset reports whether the header describes a dataset rather than a
// group.
func (h *Header) IsDataset() bool {
	return h.Layout() != nil
}
