// Package heap reads and writes the two HDF5 heaps.
//
// # Local Heap
//
// A [LocalHeap] (signature "HEAP") holds the member names of an old-style
// group. Symbol table entries refer to names by their offset in the heap's
// data segment.
//
//	lh, err := heap.ReadLocal(r, addr)
//	name := lh.String(entry.NameOffset)
//
// # Global Heap
//
// A global heap collection (signature "GCOL") holds the bodies of
// variable-length values. A variable-length element stores its length and
// an [ID] naming the collection and the object within it. [Cache] reads
// each collection once:
//
//	c := heap.NewCache(r)
//	data, err := c.Object(id)
//
// [Collection] builds a new collection for the writer.
package heap
