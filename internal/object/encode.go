package object

import (
	"github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// Encode returns a version 2 object header holding msgs in one chunk.
func Encode(cfg binary.Config, msgs []message.Encodable) []byte {
	body := binary.NewEncoder(cfg)
	for _, m := range msgs {
		encodeMessage(body, m)
	}

	// Smallest chunk size field that fits: 1, 2, 4 or 8 bytes.
	code := 0
	for code < 3 && uint64(body.Len()) >= 1<<(8<<code) {
		code++
	}

	e := binary.NewEncoder(cfg)
	e.Raw([]byte(v2Signature))
	e.Uint8(2)
	e.Uint8(uint8(code))
	e.Uint(uint64(body.Len()), 1<<code)
	e.Raw(body.Bytes())
	e.Checksum()
	return e.Bytes()
}

func encodeMessage(e *binary.Encoder, m message.Encodable) {
	b := binary.NewEncoder(e.Config())
	m.Encode(b)

	var flags uint8
	if m.Type() == message.TypeDatatype {
		flags = message.FlagConstant
	}
	e.Uint8(uint8(m.Type()))
	e.Uint16(uint16(b.Len()))
	e.Uint8(flags)
	e.Raw(b.Bytes())
}

// GroupMessages returns the messages of a new-style group holding links.
func GroupMessages(cfg binary.Config, links []*message.Link) []message.Encodable {
	msgs := []message.Encodable{message.NewLinkInfo(cfg), &message.GroupInfo{}}
	for _, l := range links {
		msgs = append(msgs, l)
	}
	return msgs
}

// DatasetMessages returns the messages of a contiguous dataset.
func DatasetMessages(ds *message.Dataspace, dt *message.Datatype, layout *message.DataLayout) []message.Encodable {
	return []message.Encodable{ds, dt, layout}
}
