package dtype

import (
	"fmt"
	"math"
	"reflect"

	binpkg "github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/heap"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// Encode returns the stored form of src, a numeric or string scalar or a
// slice of them. Integers are written at the width of dt, which may be
// narrower than the Go type; a value that does not fit is an ErrOverflow.
func Encode(dt *message.Datatype, src any) ([]byte, error) {
	if dt == nil {
		return nil, fmt.Errorf("%w: nil datatype", ErrUnsupported)
	}
	v := reflect.ValueOf(src)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		one := reflect.MakeSlice(reflect.SliceOf(v.Type()), 1, 1)
		one.Index(0).Set(v)
		v = one
	}

	size := int(dt.Size)
	out := make([]byte, v.Len()*size)
	for i := 0; i < v.Len(); i++ {
		var err error
		b := out[i*size : (i+1)*size]
		switch dt.Class {
		case message.ClassFixedPoint:
			err = putFixed(dt, b, v.Index(i))
		case message.ClassFloatPoint:
			err = putFloat(dt, b, v.Index(i))
		case message.ClassString:
			err = putString(dt, b, v.Index(i))
		default:
			return nil, fmt.Errorf("%w: encoding %s", ErrUnsupported, dt.Name())
		}
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out, nil
}

func putFixed(dt *message.Datatype, b []byte, elem reflect.Value) error {
	if len(b) > 8 {
		return fmt.Errorf("%w: %d-byte integers", ErrUnsupported, len(b))
	}
	bits := uint(8 * len(b))
	var raw uint64
	switch elem.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := elem.Int()
		if dt.Signed {
			if bits < 64 && (v < -(1<<(bits-1)) || v >= 1<<(bits-1)) {
				return fmt.Errorf("%w: %d as %s", ErrOverflow, v, dt.Name())
			}
		} else if v < 0 || (bits < 64 && uint64(v) >= 1<<bits) {
			return fmt.Errorf("%w: %d as %s", ErrOverflow, v, dt.Name())
		}
		raw = uint64(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := elem.Uint()
		limit := bits
		if dt.Signed {
			limit--
		}
		if limit < 64 && v >= 1<<limit {
			return fmt.Errorf("%w: %d as %s", ErrOverflow, v, dt.Name())
		}
		raw = v
	default:
		return fmt.Errorf("%w: %s to %s", ErrMismatch, elem.Type(), dt.Name())
	}
	binpkg.PutUint(b, raw, ByteOrder(dt))
	return nil
}

func putFloat(dt *message.Datatype, b []byte, elem reflect.Value) error {
	var f float64
	switch elem.Kind() {
	case reflect.Float32, reflect.Float64:
		f = elem.Float()
	default:
		return fmt.Errorf("%w: %s to %s", ErrMismatch, elem.Type(), dt.Name())
	}
	order := ByteOrder(dt)
	switch len(b) {
	case 4:
		order.PutUint32(b, math.Float32bits(float32(f)))
	case 8:
		order.PutUint64(b, math.Float64bits(f))
	default:
		return fmt.Errorf("%w: %d-byte floats", ErrUnsupported, len(b))
	}
	return nil
}

func putString(dt *message.Datatype, b []byte, elem reflect.Value) error {
	if elem.Kind() != reflect.String {
		return fmt.Errorf("%w: %s to %s", ErrMismatch, elem.Type(), dt.Name())
	}
	s := elem.String()
	if len(s) > len(b) || (dt.Padding == message.PadNullTerm && len(s) == len(b)) {
		return fmt.Errorf("%w: %d-byte string as %s", ErrOverflow, len(s), dt.Name())
	}
	n := copy(b, s)
	if dt.Padding == message.PadSpacePad {
		for i := n; i < len(b); i++ {
			b[i] = ' '
		}
	}
	return nil
}

// EncodeVarLen returns the elements of a variable-length string dataset.
// store places the bytes of each non-empty string in a global heap and
// returns their ID; empty strings reference no object.
func EncodeVarLen(cfg binpkg.Config, values []string, store func([]byte) heap.ID) []byte {
	e := binpkg.NewEncoder(cfg)
	for _, s := range values {
		e.Uint32(uint32(len(s)))
		var id heap.ID
		if s != "" {
			id = store([]byte(s))
		}
		id.Encode(e)
	}
	return e.Bytes()
}
