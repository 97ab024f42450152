// Package message decodes and encodes the header messages that describe
// every HDF5 object.
//
// Decoding covers what the legacy tree sequence files use, plus enough of
// the surrounding format to reject the rest cleanly: dataspaces, datatypes,
// data layouts (versions 1 to 4), filter pipelines, attributes, links, link
// and group info, symbol tables and header continuations. Messages of any
// other type come back as [Unknown].
//
// Encoding is limited to what new files need: simple dataspaces, numeric
// and string datatypes, contiguous layouts, version 3 attributes, hard
// links and the link info and group info messages of a new-style group.
package message
