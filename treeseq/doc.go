// Package treeseq holds the canonical in-memory tree sequence model.
//
// A tree sequence encodes the genealogy of a set of sampled genomes along a
// sequence of length L as four tables:
//
//   - Nodes: one row per ancestral or sampled genome (flags, time, population).
//   - Edgesets: one row per parent/children relationship valid on [left, right).
//   - Sites: one row per variable position, with its ancestral state.
//   - Mutations: one row per state change, at a site, above a node.
//
// plus an ordered list of opaque provenance records describing how the data
// was produced.
//
// # Construction
//
// Tables are built in one step from complete column sets by [NewNodeTable],
// [NewEdgesetTable], [NewSiteTable] and [NewMutationTable]; a table whose
// columns disagree in length cannot be constructed. [New] then checks the
// structural invariants that relate the tables to each other and returns an
// immutable [TreeSequence]:
//
//   - edgesets reference existing nodes, have at least one child listed in
//     ascending order, cover a non-empty interval, and appear in
//     non-decreasing order of parent time;
//   - every child is younger than its parent, and no sample is a parent;
//   - the left-most coordinate is 0 and every right coordinate is either a
//     left coordinate or the sequence length;
//   - sites are strictly ascending within [0, L) and mutations are grouped
//     by ascending site.
//
// # Sweep Order
//
// Walking the local trees left to right requires two orderings of the
// edgesets, computed by [BuildIndexes]: insertion order (by left coordinate,
// then parent time ascending) and removal order (by right coordinate, then
// parent time descending). [TreeSequence.Trees] uses them to visit every
// local tree in a single pass.
package treeseq
