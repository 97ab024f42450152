// Package superblock locates and decodes the HDF5 superblock, and encodes
// the version 2 superblock written at the start of new files.
//
// Files written by msprime through the HDF5 C library with default settings
// carry a version 0 superblock whose root group is a symbol table, so the
// v0 and v1 layouts are decoded in full. Version 2 and 3 superblocks point
// straight at the root object header and end in a lookup3 checksum.
package superblock
