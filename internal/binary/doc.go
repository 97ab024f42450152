// Package binary decodes and encodes the fixed-width little-endian fields
// that every HDF5 structure is built from.
//
// Addresses ("offsets") and lengths have a per-file width recorded in the
// superblock, so both [Reader] and [Encoder] carry a [Config]. A Reader
// decodes from an io.ReaderAt at an explicit position; message bodies that
// have already been read into memory are decoded with [FromBytes]. An
// Encoder builds structures in memory so that checksums can be computed
// before the bytes reach the file.
//
// The package also provides the two checksums HDF5 uses: [Lookup3] for
// metadata and [Fletcher32] for the fletcher32 data filter.
package binary
