package heap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/robert-malhotra/go-treeseq/internal/binary"
)

// ErrNoObject is returned for an ID that names no object in its collection.
var ErrNoObject = errors.New("no such global heap object")

const (
	collectionSignature = "GCOL"
	// MinCollectionSize is the smallest collection the C library accepts.
	MinCollectionSize = 4096
)

// ID locates one object in a global heap.
type ID struct {
	Collection uint64
	Index      uint32
}

// IDSize is the encoded size of an ID.
func IDSize(cfg binary.Config) int {
	return cfg.OffsetSize + 4
}

// ReadID decodes an ID.
func ReadID(r *binary.Reader) (ID, error) {
	var id ID
	var err error
	if id.Collection, err = r.Offset(); err != nil {
		return id, err
	}
	if id.Index, err = r.Uint32(); err != nil {
		return id, err
	}
	return id, nil
}

// Encode appends id to e.
func (id ID) Encode(e *binary.Encoder) {
	e.Offset(id.Collection)
	e.Uint32(id.Index)
}

// objectHeaderSize is the size of the fields preceding each object's data.
func objectHeaderSize(cfg binary.Config) int {
	return 2 + 2 + 4 + cfg.LengthSize
}

func collectionHeaderSize(cfg binary.Config) int {
	return 4 + 1 + 3 + cfg.LengthSize
}

// readCollection decodes every object of the collection at addr.
func readCollection(r *binary.Reader, addr uint64) (map[uint32][]byte, error) {
	cr := r.At(int64(addr))
	if err := cr.Signature(collectionSignature); err != nil {
		return nil, err
	}
	version, err := cr.Uint8()
	if err != nil {
		return nil, err
	}
	if version != 1 {
		return nil, fmt.Errorf("unsupported version %d", version)
	}
	cr.Skip(3)
	size, err := cr.Length()
	if err != nil {
		return nil, err
	}

	cfg := r.Config()
	objects := map[uint32][]byte{}
	end := int64(addr) + int64(size)
	for cr.Pos()+int64(objectHeaderSize(cfg)) <= end {
		index, err := cr.Uint16()
		if err != nil {
			return nil, err
		}
		// The free space object closes the collection.
		if index == 0 {
			break
		}
		// Reference count and reserved bytes.
		cr.Skip(2 + 4)
		n, err := cr.Length()
		if err != nil {
			return nil, err
		}
		data, err := cr.Bytes(int(n))
		if err != nil {
			return nil, err
		}
		objects[uint32(index)] = data
		cr.Skip(padding(int(n)))
	}
	return objects, nil
}

func padding(n int) int {
	return (8 - n%8) % 8
}

// Cache reads global heap objects, decoding each collection once.
type Cache struct {
	r           *binary.Reader
	mu          sync.Mutex
	collections map[uint64]map[uint32][]byte
}

func NewCache(r *binary.Reader) *Cache {
	return &Cache{r: r, collections: map[uint64]map[uint32][]byte{}}
}

// Object returns the data of the object id names. The result must not be
// modified.
func (c *Cache) Object(id ID) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	objects, ok := c.collections[id.Collection]
	if !ok {
		if id.Collection == 0 || c.r.Config().IsUndefined(id.Collection) {
			return nil, fmt.Errorf("%w: collection address %#x", ErrNoObject, id.Collection)
		}
		var err error
		if objects, err = readCollection(c.r, id.Collection); err != nil {
			return nil, fmt.Errorf("global heap at %#x: %w", id.Collection, err)
		}
		c.collections[id.Collection] = objects
	}
	data, ok := objects[id.Index]
	if !ok {
		return nil, fmt.Errorf("%w: index %d in collection %#x", ErrNoObject, id.Index, id.Collection)
	}
	return data, nil
}
