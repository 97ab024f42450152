package binary

// Encoder appends fields to an in-memory buffer.
type Encoder struct {
	cfg Config
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder(cfg Config) *Encoder {
	return &Encoder{cfg: cfg}
}

// Config returns the field widths.
func (e *Encoder) Config() Config { return e.cfg }

// Len returns the number of bytes encoded so far.
func (e *Encoder) Len() int { return len(e.buf) }

// Bytes returns the encoded buffer.
func (e *Encoder) Bytes() []byte { return e.buf }

// Raw appends b unchanged.
func (e *Encoder) Raw(b []byte) { e.buf = append(e.buf, b...) }

// Zeros appends n zero bytes.
func (e *Encoder) Zeros(n int) {
	for range n {
		e.buf = append(e.buf, 0)
	}
}

// Pad appends zero bytes until the length is a multiple of align.
func (e *Encoder) Pad(align int) {
	if rem := len(e.buf) % align; rem != 0 {
		e.Zeros(align - rem)
	}
}

// Uint8 appends one byte.
func (e *Encoder) Uint8(v uint8) { e.buf = append(e.buf, v) }

// Uint16 appends a two-byte integer.
func (e *Encoder) Uint16(v uint16) { e.Uint(uint64(v), 2) }

// Uint32 appends a four-byte integer.
func (e *Encoder) Uint32(v uint32) { e.Uint(uint64(v), 4) }

// Uint64 appends an eight-byte integer.
func (e *Encoder) Uint64(v uint64) { e.Uint(v, 8) }

// Offset appends an address.
func (e *Encoder) Offset(v uint64) { e.Uint(v, e.cfg.OffsetSize) }

// Length appends a length.
func (e *Encoder) Length(v uint64) { e.Uint(v, e.cfg.LengthSize) }

// Undefined appends the all-ones address.
func (e *Encoder) Undefined() { e.Offset(e.cfg.Undefined()) }

// Uint appends the low width bytes of v in the configured byte order.
func (e *Encoder) Uint(v uint64, width int) {
	start := len(e.buf)
	e.Zeros(width)
	PutUint(e.buf[start:], v, e.cfg.ByteOrder)
}

// Checksum appends the lookup3 checksum of everything encoded so far.
func (e *Encoder) Checksum() {
	e.Uint32(Lookup3(e.buf))
}
