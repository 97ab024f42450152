package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"

	binpkg "github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/heap"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

var (
	// ErrOverflow is returned when a value does not fit the type it is
	// converted to.
	ErrOverflow = errors.New("value does not fit datatype")
	// ErrMismatch is returned when a stored class cannot be converted to
	// the requested Go type, e.g. floats into integers.
	ErrMismatch    = errors.New("datatype does not convert to destination")
	ErrUnsupported = errors.New("unsupported datatype")
)

// Heap resolves the global heap objects that variable-length elements
// point at. *heap.Cache implements it.
type Heap interface {
	Object(id heap.ID) ([]byte, error)
}

// ByteOrder returns the byte order of a fixed or floating point datatype.
func ByteOrder(dt *message.Datatype) binary.ByteOrder {
	if dt.ByteOrder == message.OrderBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func IsInteger(dt *message.Datatype) bool {
	return dt.Class == message.ClassFixedPoint
}

// IsString reports whether dt holds fixed or variable-length strings,
// including variable-length sequences of single bytes.
func IsString(dt *message.Datatype) bool {
	switch dt.Class {
	case message.ClassString:
		return true
	case message.ClassVarLen:
		return dt.VarLenString || isByteSequence(dt)
	}
	return false
}

func isByteSequence(dt *message.Datatype) bool {
	return dt.Base != nil && dt.Base.Class == message.ClassFixedPoint && dt.Base.Size == 1
}

// FromGoType returns the datatype that values of Go type t are stored
// with. Slice and pointer types resolve to their element type. Strings
// become variable-length UTF-8 strings referencing a global heap in a
// file with the widths of cfg.
func FromGoType(t reflect.Type, cfg binpkg.Config) (*message.Datatype, error) {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return message.NewFixedPoint(uint32(t.Size()), true), nil
	case reflect.Int:
		return message.NewFixedPoint(8, true), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return message.NewFixedPoint(uint32(t.Size()), false), nil
	case reflect.Uint:
		return message.NewFixedPoint(8, false), nil
	case reflect.Float32, reflect.Float64:
		return message.NewFloat(uint32(t.Size())), nil
	case reflect.String:
		return message.NewVarLenString(message.CharsetUTF8, cfg.OffsetSize), nil
	}
	return nil, fmt.Errorf("%w: Go type %v", ErrUnsupported, t)
}
