// Package layout reads the raw bytes of a dataset from its storage.
//
// [New] picks the reader for the dataset's layout message:
//
//   - Compact: the bytes live in the layout message itself.
//   - Contiguous: one block in the file; unallocated storage reads as zeros.
//   - Chunked: chunks located by a version 1 B-tree, or by the single chunk
//     and implicit indexes of version 4 layouts, each passed back through
//     the dataset's filter pipeline and copied into place.
//
// The other version 4 chunk indexes return [ErrUnsupported].
package layout
