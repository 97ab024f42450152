package alloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlloc(t *testing.T) {
	assert := assert.New(t)
	a := New(48)

	assert.Equal(uint64(48), a.Alloc(100, "raw data"))
	assert.Equal(uint64(148), a.Alloc(20, "object header"))
	assert.Equal(uint64(168), a.EOF())

	assert.Equal([]Block{
		{Addr: 48, Size: 100, Tag: "raw data"},
		{Addr: 148, Size: 20, Tag: "object header"},
	}, a.Blocks())
	require.NoError(t, a.Validate())
}

func TestAllocZeroSize(t *testing.T) {
	a := New(10)
	assert.Equal(t, uint64(10), a.Alloc(0, "empty"))
	assert.Empty(t, a.Blocks())
	assert.Equal(t, uint64(10), a.EOF())
}

func TestStats(t *testing.T) {
	a := New(0)
	a.Alloc(100, "raw data")
	a.Alloc(300, "raw data")
	a.Alloc(50, "object header")

	s := a.Stats()
	assert.Equal(t, 3, s.Blocks)
	assert.Equal(t, uint64(450), s.Bytes)
	assert.Equal(t, uint64(300), s.Largest)
	assert.Equal(t, map[string]uint64{"raw data": 400, "object header": 50}, s.ByTag)
}

func TestValidateOverlap(t *testing.T) {
	a := New(0)
	a.Alloc(100, "raw data")
	a.blocks = append(a.blocks, Block{Addr: 50, Size: 10, Tag: "global heap"})
	assert.ErrorContains(t, a.Validate(), "global heap block at 0x32 overlaps raw data block")
}

func TestConcurrentAlloc(t *testing.T) {
	a := New(0)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				a.Alloc(8, "raw data")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(6400), a.EOF())
	assert.NoError(t, a.Validate())
}
