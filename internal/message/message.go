package message

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

// Type identifies a header message.
type Type uint16

const (
	TypeNil            Type = 0x0000
	TypeDataspace      Type = 0x0001
	TypeLinkInfo       Type = 0x0002
	TypeDatatype       Type = 0x0003
	TypeFillValueOld   Type = 0x0004
	TypeFillValue      Type = 0x0005
	TypeLink           Type = 0x0006
	TypeExternalFiles  Type = 0x0007
	TypeDataLayout     Type = 0x0008
	TypeBogus          Type = 0x0009
	TypeGroupInfo      Type = 0x000A
	TypeFilterPipeline Type = 0x000B
	TypeAttribute      Type = 0x000C
	TypeComment        Type = 0x000D
	TypeModTimeOld     Type = 0x000E
	TypeSharedTable    Type = 0x000F
	TypeContinuation   Type = 0x0010
	TypeSymbolTable    Type = 0x0011
	TypeModTime        Type = 0x0012
	TypeBTreeK         Type = 0x0013
	TypeDriverInfo     Type = 0x0014
	TypeAttributeInfo  Type = 0x0015
	TypeRefCount       Type = 0x0016
)

var typeNames = map[Type]string{
	TypeNil:            "nil",
	TypeDataspace:      "dataspace",
	TypeLinkInfo:       "link info",
	TypeDatatype:       "datatype",
	TypeFillValue:      "fill value",
	TypeLink:           "link",
	TypeDataLayout:     "data layout",
	TypeGroupInfo:      "group info",
	TypeFilterPipeline: "filter pipeline",
	TypeAttribute:      "attribute",
	TypeContinuation:   "continuation",
	TypeSymbolTable:    "symbol table",
	TypeAttributeInfo:  "attribute info",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("message type 0x%04x", uint16(t))
}

// Header message flags.
const (
	FlagConstant uint8 = 1 << 0
	FlagShared   uint8 = 1 << 1
)

// ErrUnsupported is returned for well-formed messages using features this
// package does not decode.
var ErrUnsupported = errors.New("unsupported message feature")

// Message is a decoded header message.
type Message interface {
	Type() Type
}

// Encodable is a message that can be written to a new object header.
type Encodable interface {
	Message
	Encode(e *binary.Encoder)
}

// Parse decodes the body of one header message.
func Parse(t Type, flags uint8, body []byte, cfg binary.Config) (Message, error) {
	if flags&FlagShared != 0 {
		switch t {
		case TypeDataspace, TypeDatatype, TypeFilterPipeline, TypeAttribute:
			return nil, fmt.Errorf("%w: shared %s message", ErrUnsupported, t)
		}
	}

	r := binary.FromBytes(body, cfg)
	var m Message
	var err error
	switch t {
	case TypeDataspace:
		m, err = decodeDataspace(r)
	case TypeDatatype:
		m, err = decodeDatatype(r)
	case TypeDataLayout:
		m, err = decodeDataLayout(r)
	case TypeFilterPipeline:
		m, err = decodeFilterPipeline(r)
	case TypeAttribute:
		m, err = decodeAttribute(r)
	case TypeLink:
		m, err = decodeLink(r)
	case TypeLinkInfo:
		m, err = decodeLinkInfo(r)
	case TypeSymbolTable:
		m, err = decodeSymbolTable(r)
	case TypeContinuation:
		m, err = decodeContinuation(r)
	default:
		return &Unknown{Kind: t, Body: body}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s message: %w", t, err)
	}
	return m, nil
}

// Unknown keeps the raw body of a message this package does not decode.
type Unknown struct {
	Kind Type
	Body []byte
}

func (m *Unknown) Type() Type { return m.Kind }

// Nil is padding inside an object header.
type Nil struct {
	Size int
}

func (m *Nil) Type() Type { return TypeNil }

func (m *Nil) Encode(e *binary.Encoder) { e.Zeros(m.Size) }

// Continuation points at a further block of header messages.
type Continuation struct {
	Address uint64
	Length  uint64
}

func (m *Continuation) Type() Type { return TypeContinuation }

func decodeContinuation(r *binary.Reader) (*Continuation, error) {
	var m Continuation
	var err error
	if m.Address, err = r.Offset(); err != nil {
		return nil, err
	}
	if m.Length, err = r.Length(); err != nil {
		return nil, err
	}
	return &m, nil
}

// SymbolTable locates the B-tree and local heap of an old-style group.
type SymbolTable struct {
	BTreeAddress     uint64
	LocalHeapAddress uint64
}

func (m *SymbolTable) Type() Type { return TypeSymbolTable }

func (m *SymbolTable) Encode(e *binary.Encoder) {
	e.Offset(m.BTreeAddress)
	e.Offset(m.LocalHeapAddress)
}

func decodeSymbolTable(r *binary.Reader) (*SymbolTable, error) {
	var m SymbolTable
	var err error
	if m.BTreeAddress, err = r.Offset(); err != nil {
		return nil, err
	}
	if m.LocalHeapAddress, err = r.Offset(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Size returns the encoded size of an Encodable message body.
func Size(m Encodable, cfg binary.Config) int {
	e := binary.NewEncoder(cfg)
	m.Encode(e)
	return e.Len()
}

func readVersion(r *binary.Reader, supported ...uint8) (uint8, error) {
	v, err := r.Uint8()
	if err != nil {
		return 0, err
	}
	for _, s := range supported {
		if v == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: version %d", ErrUnsupported, v)
}
