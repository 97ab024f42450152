package filter

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// Pipeline is the filter pipeline of one dataset.
type Pipeline struct {
	infos   []message.Filter
	filters []Filter
}

// NewPipeline builds the pipeline described by msg, which may be nil.
// Stages without an implementation only fail when a chunk needs them.
func NewPipeline(msg *message.FilterPipeline, elementSize int) *Pipeline {
	p := &Pipeline{}
	if msg == nil {
		return p
	}
	for _, info := range msg.Filters {
		p.infos = append(p.infos, info)
		p.filters = append(p.filters, New(info, elementSize))
	}
	return p
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.filters)
}

// Decode undoes the pipeline. Bit i of mask marks stage i as skipped.
func (p *Pipeline) Decode(in []byte, mask uint32) ([]byte, error) {
	data := in
	for i := len(p.filters) - 1; i >= 0; i-- {
		if i < 32 && mask&(1<<uint(i)) != 0 {
			continue
		}
		f := p.filters[i]
		if f == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, Name(p.infos[i]))
		}
		var err error
		if data, err = f.Decode(data); err != nil {
			return nil, fmt.Errorf("%s: %w", Name(p.infos[i]), err)
		}
	}
	return data, nil
}

// Encode applies every stage in order.
func (p *Pipeline) Encode(in []byte) ([]byte, error) {
	data := in
	for i, f := range p.filters {
		enc, ok := f.(Encoder)
		if !ok {
			return nil, fmt.Errorf("%w for writing: %s", ErrUnavailable, Name(p.infos[i]))
		}
		var err error
		if data, err = enc.Encode(data); err != nil {
			return nil, fmt.Errorf("%s: %w", Name(p.infos[i]), err)
		}
	}
	return data, nil
}

// flagOptional lets a chunk skip a stage that failed when writing.
const flagOptional = 1

// Describe returns the pipeline message for encs, applied in order.
// Compression stages are optional, as the C library marks them.
func Describe(encs ...Encoder) *message.FilterPipeline {
	msg := &message.FilterPipeline{}
	for _, e := range encs {
		f := message.Filter{ID: e.ID(), ClientData: e.ClientData()}
		if e.ID() != message.FilterFletcher32 {
			f.Flags = flagOptional
		}
		msg.Filters = append(msg.Filters, f)
	}
	return msg
}
