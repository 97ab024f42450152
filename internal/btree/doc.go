// Package btree walks version 1 B-trees (signature "TREE").
//
// Old-style groups index their members with a group B-tree whose leaves
// point at symbol table nodes ("SNOD"); [ReadGroup] returns the entries of
// every node, with names resolved through the group's local heap. Chunked
// datasets written with the default layout index their chunks with a chunk
// B-tree; [ReadChunks] returns one [ChunkEntry] per allocated chunk.
package btree
