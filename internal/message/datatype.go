package message

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

// Class is the datatype class.
type Class uint8

const (
	ClassFixedPoint Class = 0
	ClassFloatPoint Class = 1
	ClassTime       Class = 2
	ClassString     Class = 3
	ClassBitfield   Class = 4
	ClassOpaque     Class = 5
	ClassCompound   Class = 6
	ClassReference  Class = 7
	ClassEnum       Class = 8
	ClassVarLen     Class = 9
	ClassArray      Class = 10
)

var classNames = [...]string{
	"fixed-point", "floating-point", "time", "string", "bitfield", "opaque",
	"compound", "reference", "enum", "variable-length", "array",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class %d", uint8(c))
}

// ByteOrder of numeric datatypes.
type ByteOrder uint8

const (
	OrderLE ByteOrder = 0
	OrderBE ByteOrder = 1
)

// StringPadding says how short strings are terminated.
type StringPadding uint8

const (
	PadNullTerm StringPadding = 0
	PadNullPad  StringPadding = 1
	PadSpacePad StringPadding = 2
)

// Charset of string datatypes.
type Charset uint8

const (
	CharsetASCII Charset = 0
	CharsetUTF8  Charset = 1
)

// Datatype describes the elements of a dataset or attribute. Only the
// fields of the datatype's class are meaningful.
type Datatype struct {
	Class   Class
	Version uint8
	Size    uint32

	// Fixed and floating point.
	ByteOrder ByteOrder
	Signed    bool
	BitOffset uint16
	Precision uint16

	// Floating point.
	ExponentLocation uint8
	ExponentSize     uint8
	MantissaLocation uint8
	MantissaSize     uint8
	ExponentBias     uint32
	SignLocation     uint8

	// Strings and variable-length strings.
	Padding StringPadding
	Charset Charset

	// Variable length. VarLenString distinguishes strings from sequences
	// of Base.
	VarLenString bool
	Base         *Datatype
}

func (m *Datatype) Type() Type { return TypeDatatype }

// NewFixedPoint returns a little-endian integer datatype.
func NewFixedPoint(size uint32, signed bool) *Datatype {
	return &Datatype{
		Class:     ClassFixedPoint,
		Version:   1,
		Size:      size,
		Signed:    signed,
		Precision: uint16(8 * size),
	}
}

// NewFloat returns a little-endian IEEE 754 datatype of 4 or 8 bytes.
func NewFloat(size uint32) *Datatype {
	dt := &Datatype{
		Class:     ClassFloatPoint,
		Version:   1,
		Size:      size,
		Precision: uint16(8 * size),
	}
	if size == 4 {
		dt.SignLocation = 31
		dt.ExponentLocation, dt.ExponentSize = 23, 8
		dt.MantissaSize = 23
		dt.ExponentBias = 127
	} else {
		dt.SignLocation = 63
		dt.ExponentLocation, dt.ExponentSize = 52, 11
		dt.MantissaSize = 52
		dt.ExponentBias = 1023
	}
	return dt
}

// NewString returns a fixed-length string datatype.
func NewString(size uint32, padding StringPadding, charset Charset) *Datatype {
	return &Datatype{Class: ClassString, Version: 1, Size: size, Padding: padding, Charset: charset}
}

// NewVarLenString returns a variable-length string datatype whose elements
// are global heap references in a file with the given offset width.
func NewVarLenString(charset Charset, offsetSize int) *Datatype {
	return &Datatype{
		Class:        ClassVarLen,
		Version:      1,
		Size:         uint32(4 + offsetSize + 4),
		VarLenString: true,
		Charset:      charset,
		Base:         &Datatype{Class: ClassFixedPoint, Version: 1, Size: 1, Precision: 8},
	}
}

// Fixed-point and floating-point class bits.
const (
	bitBigEndian = 1 << 0
	bitSigned    = 1 << 3
	// Floating point mantissas normalised with an implied leading one.
	bitImpliedMSB = 2 << 4
)

func decodeDatatype(r *binary.Reader) (*Datatype, error) {
	head, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	bits, err := r.Uint(3)
	if err != nil {
		return nil, err
	}
	size, err := r.Uint32()
	if err != nil {
		return nil, err
	}

	m := &Datatype{Class: Class(head & 0x0f), Version: head >> 4, Size: size}
	switch m.Class {
	case ClassFixedPoint:
		m.ByteOrder = ByteOrder(bits & bitBigEndian)
		m.Signed = bits&bitSigned != 0
		if m.BitOffset, err = r.Uint16(); err != nil {
			return nil, err
		}
		if m.Precision, err = r.Uint16(); err != nil {
			return nil, err
		}
	case ClassFloatPoint:
		m.ByteOrder = ByteOrder(bits & bitBigEndian)
		if bits&(1<<6) != 0 {
			return nil, fmt.Errorf("%w: VAX floating point", ErrUnsupported)
		}
		m.SignLocation = uint8(bits >> 8)
		if err := m.decodeFloatProperties(r); err != nil {
			return nil, err
		}
	case ClassString:
		m.Padding = StringPadding(bits & 0x0f)
		m.Charset = Charset(bits >> 4 & 0x0f)
	case ClassVarLen:
		m.VarLenString = bits&0x0f == 1
		m.Padding = StringPadding(bits >> 4 & 0x0f)
		m.Charset = Charset(bits >> 8 & 0x0f)
		if m.Base, err = decodeDatatype(r); err != nil {
			return nil, fmt.Errorf("variable-length base type: %w", err)
		}
	}
	// Properties of other classes are left unread; their elements cannot
	// be converted and nothing nests them inside a supported class.
	return m, nil
}

func (m *Datatype) decodeFloatProperties(r *binary.Reader) error {
	var err error
	if m.BitOffset, err = r.Uint16(); err != nil {
		return err
	}
	if m.Precision, err = r.Uint16(); err != nil {
		return err
	}
	b, err := r.Bytes(4)
	if err != nil {
		return err
	}
	m.ExponentLocation, m.ExponentSize = b[0], b[1]
	m.MantissaLocation, m.MantissaSize = b[2], b[3]
	m.ExponentBias, err = r.Uint32()
	return err
}

// Encode writes the datatype. Only fixed-point, floating-point, string and
// variable-length string datatypes are encoded.
func (m *Datatype) Encode(e *binary.Encoder) {
	var bits uint64
	switch m.Class {
	case ClassFixedPoint:
		bits = uint64(m.ByteOrder)
		if m.Signed {
			bits |= bitSigned
		}
	case ClassFloatPoint:
		bits = uint64(m.ByteOrder) | bitImpliedMSB | uint64(m.SignLocation)<<8
	case ClassString:
		bits = uint64(m.Padding) | uint64(m.Charset)<<4
	case ClassVarLen:
		if m.VarLenString {
			bits = 1
		}
		bits |= uint64(m.Padding)<<4 | uint64(m.Charset)<<8
	}

	version := m.Version
	if version == 0 {
		version = 1
	}
	e.Uint8(version<<4 | uint8(m.Class))
	e.Uint(bits, 3)
	e.Uint32(m.Size)

	switch m.Class {
	case ClassFixedPoint:
		e.Uint16(m.BitOffset)
		e.Uint16(m.Precision)
	case ClassFloatPoint:
		e.Uint16(m.BitOffset)
		e.Uint16(m.Precision)
		e.Raw([]byte{m.ExponentLocation, m.ExponentSize, m.MantissaLocation, m.MantissaSize})
		e.Uint32(m.ExponentBias)
	case ClassVarLen:
		m.Base.Encode(e)
	}
}

// Name describes the element type briefly, e.g. "u4", "f8" or "vlen-str".
func (m *Datatype) Name() string {
	switch m.Class {
	case ClassFixedPoint:
		if m.Signed {
			return fmt.Sprintf("i%d", m.Size)
		}
		return fmt.Sprintf("u%d", m.Size)
	case ClassFloatPoint:
		return fmt.Sprintf("f%d", m.Size)
	case ClassString:
		return fmt.Sprintf("S%d", m.Size)
	case ClassVarLen:
		if m.VarLenString {
			return "vlen-str"
		}
		if m.Base != nil {
			return "vlen-" + m.Base.Name()
		}
		return "vlen"
	}
	return m.Class.String()
}
