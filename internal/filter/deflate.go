package filter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// DefaultLevel is the zlib level used when the pipeline records none.
const DefaultLevel = 6

// Deflate is zlib compression.
type Deflate struct {
	level int
}

func NewDeflate(level int) *Deflate {
	return &Deflate{level: level}
}

func (f *Deflate) ID() uint16 { return message.FilterDeflate }

// ClientData returns the client values recorded in the pipeline.
func (f *Deflate) ClientData() []uint32 { return []uint32{uint32(f.level)} }

func (f *Deflate) Decode(in []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, fmt.Errorf("zlib header: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	return out, nil
}

func (f *Deflate) Encode(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, f.level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(in); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
