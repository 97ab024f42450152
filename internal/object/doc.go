// Package object reads HDF5 object headers and encodes new ones.
//
// [Read] accepts version 1 headers, which the C library writes by default
// and which legacy msprime files therefore contain, and version 2 headers
// (signature "OHDR"), following continuation blocks of either kind. New
// headers are always written as a single version 2 chunk by [Encode].
package object
