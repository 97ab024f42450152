// Package alloc hands out space in a file being written.
//
// Space is only ever appended: the writer never frees or reuses a block,
// so the end of the last block is the end of file recorded in the
// superblock.
package alloc
