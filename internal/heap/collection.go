package heap

import (
	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

// Collection accumulates objects for a new global heap collection.
type Collection struct {
	objects [][]byte
}

// Add appends data and returns its object index. Indices start at 1.
func (c *Collection) Add(data []byte) uint32 {
	c.objects = append(c.objects, data)
	return uint32(len(c.objects))
}

// Len returns the number of objects added.
func (c *Collection) Len() int {
	return len(c.objects)
}

// Size returns the encoded size of the collection, never less than
// MinCollectionSize.
func (c *Collection) Size(cfg binary.Config) int {
	n := collectionHeaderSize(cfg)
	for _, obj := range c.objects {
		n += objectHeaderSize(cfg) + len(obj) + padding(len(obj))
	}
	// Room for the closing free space object.
	n += objectHeaderSize(cfg)
	return max(n, MinCollectionSize)
}

// Encode returns the collection. Space past the last object is described by
// a free space object.
func (c *Collection) Encode(cfg binary.Config) []byte {
	size := c.Size(cfg)
	e := binary.NewEncoder(cfg)
	e.Raw([]byte(collectionSignature))
	e.Uint8(1)
	e.Zeros(3)
	e.Length(uint64(size))

	for j, obj := range c.objects {
		e.Uint16(uint16(j + 1))
		// Reference count.
		e.Uint16(1)
		e.Zeros(4)
		e.Length(uint64(len(obj)))
		e.Raw(obj)
		e.Zeros(padding(len(obj)))
	}

	free := size - e.Len()
	e.Uint16(0)
	e.Zeros(2 + 4)
	e.Length(uint64(free))
	e.Zeros(size - e.Len())
	return e.Bytes()
}
