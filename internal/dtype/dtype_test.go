package dtype

import (
	"encoding/binary"
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	binpkg "github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/heap"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// mapHeap is an in-memory Heap.
type mapHeap map[heap.ID][]byte

func (h mapHeap) Object(id heap.ID) ([]byte, error) {
	data, ok := h[id]
	if !ok {
		return nil, heap.ErrNoObject
	}
	return data, nil
}

func TestConvertIntegers(t *testing.T) {
	assert := assert.New(t)
	dt := message.NewFixedPoint(4, true)
	raw, err := Encode(dt, []int32{-1, 0, 7, math.MaxInt32})
	require.NoError(t, err)

	var wide []int64
	require.NoError(t, Convert(dt, raw, 4, &wide))
	assert.Equal([]int64{-1, 0, 7, math.MaxInt32}, wide)

	var floats []float64
	require.NoError(t, Convert(dt, raw, 4, &floats))
	assert.Equal([]float64{-1, 0, 7, math.MaxInt32}, floats)

	var unsigned []uint32
	err = Convert(dt, raw, 4, &unsigned)
	assert.ErrorIs(err, ErrOverflow)
	assert.ErrorContains(err, "element 0")

	var narrow []int8
	err = Convert(dt, raw, 4, &narrow)
	assert.ErrorIs(err, ErrOverflow)
	assert.ErrorContains(err, "element 3")
}

func TestConvertUnsignedIntoInt32(t *testing.T) {
	dt := message.NewFixedPoint(4, false)
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint32(raw, 5)
	binary.LittleEndian.PutUint32(raw[4:], math.MaxUint32)

	var vals []int32
	err := Convert(dt, raw, 2, &vals)
	assert.ErrorIs(t, err, ErrOverflow)

	require.NoError(t, Convert(dt, raw, 1, &vals))
	assert.Equal(t, []int32{5}, vals)
}

func TestConvertBigEndianAndPrecision(t *testing.T) {
	assert := assert.New(t)

	dt := message.NewFixedPoint(2, true)
	dt.ByteOrder = message.OrderBE
	var vals []int64
	require.NoError(t, Convert(dt, []byte{0xff, 0xfe, 0x01, 0x00}, 2, &vals))
	assert.Equal([]int64{-2, 256}, vals)

	// A 12-bit signed value stored four bits up in two bytes.
	dt = message.NewFixedPoint(2, true)
	dt.BitOffset, dt.Precision = 4, 12
	raw := make([]byte, 2)
	binary.LittleEndian.PutUint16(raw, 0xfff0)
	require.NoError(t, Convert(dt, raw, 1, &vals))
	assert.Equal([]int64{-1}, vals)
}

func TestConvertFloats(t *testing.T) {
	assert := assert.New(t)

	f8 := message.NewFloat(8)
	raw, err := Encode(f8, []float64{0, 2.5, -1e300})
	require.NoError(t, err)
	var vals []float64
	require.NoError(t, Convert(f8, raw, 3, &vals))
	assert.Equal([]float64{0, 2.5, -1e300}, vals)

	var small []float32
	assert.ErrorIs(Convert(f8, raw, 3, &small), ErrOverflow)

	var ints []int64
	assert.ErrorIs(Convert(f8, raw, 3, &ints), ErrMismatch)

	f4 := message.NewFloat(4)
	f4.ByteOrder = message.OrderBE
	raw, err = Encode(f4, []float32{1.5, -3})
	require.NoError(t, err)
	assert.Equal(math.Float32bits(1.5), binary.BigEndian.Uint32(raw))
	require.NoError(t, Convert(f4, raw, 2, &vals))
	assert.Equal([]float64{1.5, -3}, vals)
}

func TestConvertFixedStrings(t *testing.T) {
	assert := assert.New(t)

	dt := message.NewString(6, message.PadNullTerm, message.CharsetASCII)
	raw, err := Encode(dt, []string{"abc", "", "hello"})
	require.NoError(t, err)
	var vals []string
	require.NoError(t, Convert(dt, raw, 3, &vals))
	assert.Equal([]string{"abc", "", "hello"}, vals)

	_, err = Encode(dt, "sixsix")
	assert.ErrorIs(err, ErrOverflow)

	space := message.NewString(4, message.PadSpacePad, message.CharsetASCII)
	raw, err = Encode(space, "ab")
	require.NoError(t, err)
	assert.Equal([]byte("ab  "), raw)
	require.NoError(t, Convert(space, raw, 1, &vals))
	assert.Equal([]string{"ab"}, vals)
}

func TestVarLenStrings(t *testing.T) {
	assert := assert.New(t)
	cfg := binpkg.DefaultConfig()
	h := mapHeap{}

	next := uint32(0)
	raw := EncodeVarLen(cfg, []string{`{"a": 1}`, "", "second"}, func(data []byte) heap.ID {
		next++
		id := heap.ID{Collection: 4096, Index: next}
		h[id] = append(data, 0, 0)
		return id
	})
	dt := message.NewVarLenString(message.CharsetUTF8, cfg.OffsetSize)
	assert.Len(raw, 3*int(dt.Size))

	var vals []string
	require.NoError(t, Decoder{Config: cfg, Heap: h}.Convert(dt, raw, 3, &vals))
	assert.Equal([]string{`{"a": 1}`, "", "second"}, vals)

	err := Convert(dt, raw, 3, &vals)
	assert.ErrorIs(err, ErrUnsupported)

	delete(h, heap.ID{Collection: 4096, Index: 2})
	err = Decoder{Config: cfg, Heap: h}.Convert(dt, raw, 3, &vals)
	assert.ErrorIs(err, heap.ErrNoObject)
}

func TestVarLenByteSequenceReadsAsString(t *testing.T) {
	cfg := binpkg.Config{ByteOrder: binary.LittleEndian, OffsetSize: 4, LengthSize: 4}
	dt := message.NewVarLenString(message.CharsetASCII, cfg.OffsetSize)
	dt.VarLenString = false
	require.True(t, IsString(dt))

	id := heap.ID{Collection: 64, Index: 1}
	raw := EncodeVarLen(cfg, []string{"xyz"}, func([]byte) heap.ID { return id })
	var vals []string
	require.NoError(t, Decoder{Config: cfg, Heap: mapHeap{id: []byte("xyz")}}.Convert(dt, raw, 1, &vals))
	assert.Equal(t, []string{"xyz"}, vals)
}

func TestConvertErrors(t *testing.T) {
	assert := assert.New(t)
	dt := message.NewFixedPoint(4, false)

	var vals []int64
	assert.ErrorContains(Convert(dt, make([]byte, 7), 2, &vals), "fewer than 2 elements")
	assert.ErrorContains(Convert(dt, make([]byte, 8), 2, vals), "pointer to a slice")

	var strs []string
	assert.ErrorIs(Convert(dt, make([]byte, 8), 2, &strs), ErrMismatch)

	opaque := &message.Datatype{Class: message.ClassOpaque, Size: 4}
	assert.ErrorIs(Convert(opaque, make([]byte, 8), 2, &vals), ErrUnsupported)
}

func TestEncodeNarrowing(t *testing.T) {
	assert := assert.New(t)
	u1 := message.NewFixedPoint(1, false)

	raw, err := Encode(u1, []uint32{0, 1, 255})
	require.NoError(t, err)
	assert.Equal([]byte{0, 1, 255}, raw)

	_, err = Encode(u1, []uint32{256})
	assert.ErrorIs(err, ErrOverflow)
	_, err = Encode(u1, []int32{-1})
	assert.ErrorIs(err, ErrOverflow)

	i1 := message.NewFixedPoint(1, true)
	_, err = Encode(i1, []uint64{128})
	assert.ErrorIs(err, ErrOverflow)
	raw, err = Encode(i1, int64(-128))
	require.NoError(t, err)
	assert.Equal([]byte{0x80}, raw)

	_, err = Encode(u1, []float64{1})
	assert.ErrorIs(err, ErrMismatch)
}

func TestFromGoType(t *testing.T) {
	assert := assert.New(t)
	cfg := binpkg.DefaultConfig()

	tests := []struct {
		value any
		name  string
	}{
		{int8(0), "i1"},
		{[]int32{}, "i4"},
		{0, "i8"},
		{[]uint8{}, "u1"},
		{uint(0), "u8"},
		{float32(0), "f4"},
		{[][]float64{}, "f8"},
		{[]string{}, "vlen-str"},
	}
	for _, tt := range tests {
		dt, err := FromGoType(reflect.TypeOf(tt.value), cfg)
		require.NoError(t, err)
		assert.Equal(tt.name, dt.Name(), "%T", tt.value)
	}

	_, err := FromGoType(reflect.TypeOf(struct{}{}), cfg)
	assert.ErrorIs(err, ErrUnsupported)
}

func TestByteOrder(t *testing.T) {
	dt := message.NewFixedPoint(4, false)
	assert.Equal(t, binary.LittleEndian, ByteOrder(dt))
	dt.ByteOrder = message.OrderBE
	assert.Equal(t, binary.BigEndian, ByteOrder(dt))
	assert.True(t, IsInteger(dt))
	assert.False(t, IsString(dt))
}
