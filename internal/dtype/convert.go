package dtype

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	binpkg "github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/heap"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// Decoder converts stored elements into Go slices.
type Decoder struct {
	// Config gives the offset width of variable-length references.
	Config binpkg.Config
	// Heap resolves variable-length elements. It may be nil when none are
	// expected.
	Heap Heap
}

// Convert decodes n elements of dt from raw into dest, which must point to
// a slice of integers, floats or strings. Integers convert to any integer
// or float type they fit; floats only to floats.
func Convert(dt *message.Datatype, raw []byte, n uint64, dest any) error {
	return Decoder{Config: binpkg.DefaultConfig()}.Convert(dt, raw, n, dest)
}

func (d Decoder) Convert(dt *message.Datatype, raw []byte, n uint64, dest any) error {
	if dt == nil {
		return fmt.Errorf("%w: nil datatype", ErrUnsupported)
	}
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("destination must be a pointer to a slice, got %T", dest)
	}
	size := uint64(dt.Size)
	if size == 0 {
		return fmt.Errorf("%w: zero-sized elements", ErrUnsupported)
	}
	if uint64(len(raw)) < n*size {
		return fmt.Errorf("%d bytes hold fewer than %d elements of %s", len(raw), n, dt.Name())
	}

	if f, ok := dest.(*[]float64); ok && isNativeFloat64(dt) {
		*f = decodeFloat64s(raw, n)
		return nil
	}

	out := reflect.MakeSlice(v.Elem().Type(), int(n), int(n))
	for i := uint64(0); i < n; i++ {
		if err := d.set(dt, raw[i*size:(i+1)*size], out.Index(int(i))); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	v.Elem().Set(out)
	return nil
}

func (d Decoder) set(dt *message.Datatype, b []byte, dst reflect.Value) error {
	switch dt.Class {
	case message.ClassFixedPoint:
		if dt.Signed {
			v, err := fixedInt(dt, b)
			if err != nil {
				return err
			}
			return setInt(dst, v)
		}
		v, err := fixedUint(dt, b)
		if err != nil {
			return err
		}
		return setUint(dst, v)
	case message.ClassFloatPoint:
		v, err := float(dt, b)
		if err != nil {
			return err
		}
		return setFloat(dst, v)
	case message.ClassString:
		return setString(dst, fixedString(dt, b))
	case message.ClassVarLen:
		if !IsString(dt) {
			return fmt.Errorf("%w: %s", ErrUnsupported, dt.Name())
		}
		s, err := d.varLen(b)
		if err != nil {
			return err
		}
		return setString(dst, s)
	}
	return fmt.Errorf("%w: class %s", ErrUnsupported, dt.Class)
}

// fixedUint returns the precision bits of an unsigned integer element.
func fixedUint(dt *message.Datatype, b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, fmt.Errorf("%w: %d-byte integers", ErrUnsupported, len(b))
	}
	return mask(dt, binpkg.DecodeUint(b, ByteOrder(dt))), nil
}

func fixedInt(dt *message.Datatype, b []byte) (int64, error) {
	u, err := fixedUint(dt, b)
	if err != nil {
		return 0, err
	}
	bits := precision(dt)
	if bits >= 64 {
		return int64(u), nil
	}
	// Sign extend from the top precision bit.
	shift := 64 - bits
	return int64(u<<shift) >> shift, nil
}

func precision(dt *message.Datatype) uint {
	p := uint(dt.Precision)
	if p == 0 || p > 8*uint(dt.Size) {
		p = 8 * uint(dt.Size)
	}
	return p
}

func mask(dt *message.Datatype, u uint64) uint64 {
	u >>= dt.BitOffset
	if bits := precision(dt); bits < 64 {
		u &= 1<<bits - 1
	}
	return u
}

func float(dt *message.Datatype, b []byte) (float64, error) {
	order := ByteOrder(dt)
	switch len(b) {
	case 4:
		return float64(math.Float32frombits(order.Uint32(b))), nil
	case 8:
		return math.Float64frombits(order.Uint64(b)), nil
	}
	return 0, fmt.Errorf("%w: %d-byte floats", ErrUnsupported, len(b))
}

func isNativeFloat64(dt *message.Datatype) bool {
	return dt.Class == message.ClassFloatPoint && dt.Size == 8 && dt.ByteOrder == message.OrderLE
}

func decodeFloat64s(raw []byte, n uint64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return out
}

// fixedString strips the padding of a fixed-length string element.
func fixedString(dt *message.Datatype, b []byte) string {
	if dt.Padding == message.PadSpacePad {
		return string(bytes.TrimRight(b, " "))
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// varLen resolves one variable-length element: a length, then the heap ID
// of the bytes.
func (d Decoder) varLen(b []byte) (string, error) {
	r := binpkg.FromBytes(b, d.Config)
	n, err := r.Uint32()
	if err != nil {
		return "", err
	}
	id, err := heap.ReadID(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	if d.Heap == nil {
		return "", fmt.Errorf("%w: variable-length data without a heap", ErrUnsupported)
	}
	data, err := d.Heap.Object(id)
	if err != nil {
		return "", err
	}
	if uint64(len(data)) < uint64(n) {
		return "", fmt.Errorf("heap object holds %d of %d bytes", len(data), n)
	}
	return string(data[:n]), nil
}

func setInt(dst reflect.Value, v int64) error {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if dst.OverflowInt(v) {
			return fmt.Errorf("%w: %d as %s", ErrOverflow, v, dst.Type())
		}
		dst.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v < 0 || dst.OverflowUint(uint64(v)) {
			return fmt.Errorf("%w: %d as %s", ErrOverflow, v, dst.Type())
		}
		dst.SetUint(uint64(v))
	case reflect.Float32, reflect.Float64:
		dst.SetFloat(float64(v))
	default:
		return fmt.Errorf("%w: integer to %s", ErrMismatch, dst.Type())
	}
	return nil
}

func setUint(dst reflect.Value, v uint64) error {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v > math.MaxInt64 || dst.OverflowInt(int64(v)) {
			return fmt.Errorf("%w: %d as %s", ErrOverflow, v, dst.Type())
		}
		dst.SetInt(int64(v))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if dst.OverflowUint(v) {
			return fmt.Errorf("%w: %d as %s", ErrOverflow, v, dst.Type())
		}
		dst.SetUint(v)
	case reflect.Float32, reflect.Float64:
		dst.SetFloat(float64(v))
	default:
		return fmt.Errorf("%w: integer to %s", ErrMismatch, dst.Type())
	}
	return nil
}

func setFloat(dst reflect.Value, v float64) error {
	switch dst.Kind() {
	case reflect.Float32, reflect.Float64:
		if dst.OverflowFloat(v) {
			return fmt.Errorf("%w: %g as %s", ErrOverflow, v, dst.Type())
		}
		dst.SetFloat(v)
		return nil
	}
	return fmt.Errorf("%w: float to %s", ErrMismatch, dst.Type())
}

func setString(dst reflect.Value, s string) error {
	if dst.Kind() != reflect.String {
		return fmt.Errorf("%w: string to %s", ErrMismatch, dst.Type())
	}
	dst.SetString(s)
	return nil
}
