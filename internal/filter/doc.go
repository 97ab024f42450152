// Package filter applies HDF5 filter pipelines to dataset chunks.
//
// Reading reverses the pipeline, skipping any stage whose bit is set in
// the chunk's filter mask:
//
//	p := filter.NewPipeline(msg, elementSize)
//	raw, err := p.Decode(stored, entry.FilterMask)
//
// The stages understood are deflate, shuffle, fletcher32 and the integer
// mode of scale-offset, which together cover what msprime wrote. Deflate,
// shuffle and fletcher32 also encode, so the writer can produce compressed
// chunks with [Pipeline.Encode] and record them with [Describe].
package filter
