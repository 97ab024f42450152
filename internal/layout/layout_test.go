package layout

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	binpkg "github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/btree"
	"github.com/robert-malhotra/go-treeseq/internal/filter"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

var cfg = binpkg.DefaultConfig()

// file is an in-memory file grown by appending blocks.
type file struct {
	data []byte
}

func (f *file) add(b []byte) uint64 {
	addr := uint64(len(f.data))
	f.data = append(f.data, b...)
	return addr
}

func (f *file) reader() *binpkg.Reader {
	return binpkg.FromBytes(f.data, cfg)
}

func u32s(xs ...uint32) []byte {
	var b []byte
	for _, x := range xs {
		b = binary.LittleEndian.AppendUint32(b, x)
	}
	return b
}

func read(t *testing.T, f *file, msg *message.DataLayout, dims []uint64, fp *message.FilterPipeline) []byte {
	t.Helper()
	l, err := New(msg, message.NewDataspace(dims), message.NewFixedPoint(4, false), fp, f.reader())
	require.NoError(t, err)
	assert.Equal(t, msg.Class, l.Class())
	data, err := l.Read()
	require.NoError(t, err)
	return data
}

func TestCompact(t *testing.T) {
	f := &file{}
	msg := &message.DataLayout{Class: message.LayoutCompact, CompactData: u32s(7, 8)}
	assert.Equal(t, u32s(7, 8), read(t, f, msg, []uint64{2}, nil))

	l, err := New(msg, message.NewDataspace([]uint64{3}), message.NewFixedPoint(4, false), nil, f.reader())
	require.NoError(t, err)
	_, err = l.Read()
	assert.ErrorContains(t, err, "holds 8 of 12 bytes")
}

func TestContiguous(t *testing.T) {
	f := &file{}
	f.add(make([]byte, 100))
	addr := f.add(u32s(10, 20, 30))

	// The size is taken from the dataspace, not the message.
	msg := message.NewContiguousLayout(addr, 0)
	assert.Equal(t, u32s(10, 20, 30), read(t, f, msg, []uint64{3}, nil))
}

func TestContiguousUnallocated(t *testing.T) {
	msg := message.NewContiguousLayout(cfg.Undefined(), 0)
	assert.Equal(t, make([]byte, 8), read(t, &file{}, msg, []uint64{2}, nil))
}

func TestContiguousTruncated(t *testing.T) {
	f := &file{}
	addr := f.add(u32s(1))
	l, err := New(message.NewContiguousLayout(addr, 0), message.NewDataspace([]uint64{4}),
		message.NewFixedPoint(4, false), nil, f.reader())
	require.NoError(t, err)
	_, err = l.Read()
	assert.ErrorContains(t, err, "contiguous data")
}

// writeChunks stores chunks of a 5x3 dataset of uint32 with 2x2 chunks,
// element (i, j) holding 10*i+j.
func writeChunks(t *testing.T, f *file, p *filter.Pipeline) uint64 {
	t.Helper()
	dims := []uint64{5, 3}
	chunkDims := []uint64{2, 2}
	var entries []btree.ChunkEntry
	for ci := uint64(0); ci < 5; ci += 2 {
		for cj := uint64(0); cj < 3; cj += 2 {
			var values []uint32
			for i := ci; i < ci+2; i++ {
				for j := cj; j < cj+2; j++ {
					// Edge chunks are padded with garbage.
					v := uint32(99)
					if i < dims[0] && j < dims[1] {
						v = uint32(10*i + j)
					}
					values = append(values, v)
				}
			}
			stored, err := p.Encode(u32s(values...))
			require.NoError(t, err)
			addr := f.add(stored)
			entries = append(entries, btree.ChunkEntry{Offset: []uint64{ci, cj}, Size: uint32(len(stored)), Address: addr})
		}
	}
	node, err := btree.EncodeChunkLeaf(cfg, entries, chunkDims)
	require.NoError(t, err)
	return f.add(node)
}

func expected5x3() []byte {
	var values []uint32
	for i := uint32(0); i < 5; i++ {
		for j := uint32(0); j < 3; j++ {
			values = append(values, 10*i+j)
		}
	}
	return u32s(values...)
}

func TestChunkedBTree(t *testing.T) {
	f := &file{}
	fp := filter.Describe(filter.NewShuffle(4), filter.NewDeflate(9), filter.Fletcher32{})
	root := writeChunks(t, f, filter.NewPipeline(fp, 4))

	msg := message.NewChunkedLayout(root, []uint64{2, 2}, 4)
	assert.Equal(t, expected5x3(), read(t, f, msg, []uint64{5, 3}, fp))
}

func TestChunkedBTreeUnfiltered(t *testing.T) {
	f := &file{}
	root := writeChunks(t, f, filter.NewPipeline(nil, 4))

	msg := message.NewChunkedLayout(root, []uint64{2, 2}, 4)
	assert.Equal(t, expected5x3(), read(t, f, msg, []uint64{5, 3}, nil))
}

func TestChunkedChecksumFailure(t *testing.T) {
	f := &file{}
	fp := filter.Describe(filter.Fletcher32{})
	root := writeChunks(t, f, filter.NewPipeline(fp, 4))
	f.data[0] ^= 0xff

	l, err := New(message.NewChunkedLayout(root, []uint64{2, 2}, 4), message.NewDataspace([]uint64{5, 3}),
		message.NewFixedPoint(4, false), fp, f.reader())
	require.NoError(t, err)
	_, err = l.Read()
	assert.ErrorIs(t, err, filter.ErrChecksum)
}

func TestChunkedUnallocated(t *testing.T) {
	msg := message.NewChunkedLayout(cfg.Undefined(), []uint64{4}, 4)
	assert.Equal(t, make([]byte, 24), read(t, &file{}, msg, []uint64{6}, nil))
}

func TestChunkedSingleChunk(t *testing.T) {
	f := &file{}
	fp := filter.Describe(filter.NewDeflate(filter.DefaultLevel))
	stored, err := filter.NewPipeline(fp, 4).Encode(u32s(1, 2, 3))
	require.NoError(t, err)
	addr := f.add(stored)

	msg := &message.DataLayout{
		Version:      4,
		Class:        message.LayoutChunked,
		Address:      addr,
		ChunkDims:    []uint64{3},
		Index:        message.IndexSingleChunk,
		FilteredSize: uint64(len(stored)),
	}
	assert.Equal(t, u32s(1, 2, 3), read(t, f, msg, []uint64{3}, fp))
}

func TestChunkedImplicit(t *testing.T) {
	f := &file{}
	addr := f.add(u32s(1, 2, 3, 4, 5, 0))
	msg := &message.DataLayout{
		Version:   4,
		Class:     message.LayoutChunked,
		Address:   addr,
		ChunkDims: []uint64{2},
		Index:     message.IndexImplicit,
	}
	assert.Equal(t, u32s(1, 2, 3, 4, 5), read(t, f, msg, []uint64{5}, nil))
}

func TestChunkedUnsupportedIndex(t *testing.T) {
	msg := &message.DataLayout{Version: 4, Class: message.LayoutChunked, Address: 0, ChunkDims: []uint64{2}, Index: message.IndexBTreeV2}
	l, err := New(msg, message.NewDataspace([]uint64{4}), message.NewFixedPoint(4, false), nil, (&file{}).reader())
	require.NoError(t, err)
	_, err = l.Read()
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestNewErrors(t *testing.T) {
	ds := message.NewDataspace([]uint64{4})
	dt := message.NewFixedPoint(4, false)
	r := (&file{}).reader()

	_, err := New(nil, ds, dt, nil, r)
	assert.Error(t, err)

	_, err = New(message.NewChunkedLayout(0, []uint64{2, 2}, 4), ds, dt, nil, r)
	assert.ErrorContains(t, err, "chunk rank")

	_, err = New(message.NewChunkedLayout(0, []uint64{0}, 4), ds, dt, nil, r)
	assert.ErrorContains(t, err, "zero chunk")

	_, err = New(&message.DataLayout{Class: message.LayoutVirtual}, ds, dt, nil, r)
	assert.ErrorIs(t, err, ErrUnsupported)
}
