// Package dtype converts between stored HDF5 elements and Go values.
//
// Reading goes through a [Decoder], which range-checks every integer
// against the destination element type instead of truncating it:
//
//	var vals []int32
//	err := dtype.Decoder{Config: cfg, Heap: cache}.Convert(dt, raw, n, &vals)
//
// A Decoder needs a Heap only for variable-length strings, whose elements
// point into the file's global heap. Writing goes the other way with
// [Encode] for numeric and fixed-length string data and [EncodeVarLen]
// for variable-length strings. [FromGoType] picks the datatype a Go
// element type is stored with by default.
package dtype
