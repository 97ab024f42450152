// Package legacy reads and writes tree sequences stored in the HDF5 layouts
// of format versions 2 and 3.
//
// Neither layout records everything a [treeseq.TreeSequence] needs. The
// loaders re-derive the node count, the sample partition, breakpoint
// coordinates and provenance from conventions of the old formats. The
// dumpers refuse tree sequences the old formats cannot express.
//
// Loading:
//
//	ts, err := legacy.Load("old.hdf5", legacy.RemoveDuplicatePositions())
//	if errors.Is(err, legacy.ErrDuplicatePositions) {
//	    // positions in /mutations are not unique
//	}
//
// Dumping:
//
//	err := legacy.Dump(ts, "out.hdf5", legacy.WithVersion(legacy.Version2))
//
// Sample nodes are assumed to occupy the ids below the smallest parent id
// referenced by any record. The file formats do not store this partition; a
// file that breaks the convention loads with the wrong samples.
package legacy
