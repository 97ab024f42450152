package alloc

import (
	"fmt"
	"sort"
	"sync"
)

// Block is one allocation. Tag names what the block holds.
type Block struct {
	Addr uint64
	Size uint64
	Tag  string
}

// End returns the first address past the block.
func (b Block) End() uint64 { return b.Addr + b.Size }

// Stats summarises the allocations made so far.
type Stats struct {
	Blocks  int
	Bytes   uint64
	Largest uint64
	// ByTag sums the bytes allocated under each tag.
	ByTag map[string]uint64
}

// Allocator appends blocks from a base address.
type Allocator struct {
	mu     sync.Mutex
	eof    uint64
	blocks []Block
}

// New returns an Allocator whose first block starts at base.
func New(base uint64) *Allocator {
	return &Allocator{eof: base}
}

// Alloc reserves size bytes and returns their address. A zero size
// reserves nothing and returns the current end of file.
func (a *Allocator) Alloc(size uint64, tag string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	addr := a.eof
	if size == 0 {
		return addr
	}
	a.eof += size
	a.blocks = append(a.blocks, Block{Addr: addr, Size: size, Tag: tag})
	return addr
}

// EOF returns the address following the last block.
func (a *Allocator) EOF() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eof
}

// Blocks returns a copy of the allocations in address order.
func (a *Allocator) Blocks() []Block {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Block(nil), a.blocks...)
}

func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Stats{Blocks: len(a.blocks), ByTag: map[string]uint64{}}
	for _, b := range a.blocks {
		s.Bytes += b.Size
		s.Largest = max(s.Largest, b.Size)
		s.ByTag[b.Tag] += b.Size
	}
	return s
}

// Validate checks that no two blocks overlap.
func (a *Allocator) Validate() error {
	blocks := a.Blocks()
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Addr < blocks[j].Addr })
	for i := 1; i < len(blocks); i++ {
		prev, cur := blocks[i-1], blocks[i]
		if cur.Addr < prev.End() {
			return fmt.Errorf("%s block at %#x overlaps %s block ending at %#x", cur.Tag, cur.Addr, prev.Tag, prev.End())
		}
	}
	return nil
}
