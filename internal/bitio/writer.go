package bitio

// Writer accumulates bits LSB-first into a growing byte buffer.
type Writer struct {
	buf []byte
	n   int // bits written
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteBit appends one bit.
func (w *Writer) WriteBit(bit bool) {
	if w.n&7 == 0 {
		w.buf = append(w.buf, 0)
	}
	if bit {
		w.buf[w.n>>3] |= 1 << (uint(w.n) & 7)
	}
	w.n++
}

// WriteBits appends the low n bits of v (n <= 32).
func (w *Writer) WriteBits(v uint32, n int) {
	for i := 0; i < n; {
		if w.n&7 == 0 {
			w.buf = append(w.buf, 0)
		}
		shift := uint(w.n) & 7
		take := 8 - int(shift)
		if take > n-i {
			take = n - i
		}
		chunk := byte(v>>uint(i)) & byte(1<<uint(take)-1)
		w.buf[w.n>>3] |= chunk << shift
		i += take
		w.n += take
	}
}

// WriteSigned appends the low n bits of the two's complement form of v.
func (w *Writer) WriteSigned(v int32, n int) {
	w.WriteBits(uint32(v), n)
}

// WriteBytes appends whole bytes at the current bit position.
func (w *Writer) WriteBytes(p []byte) {
	if w.n&7 == 0 {
		w.buf = append(w.buf, p...)
		w.n += len(p) * 8
		return
	}
	for _, b := range p {
		w.WriteBits(uint32(b), 8)
	}
}

// Append copies every bit written to src onto w.
func (w *Writer) Append(src *Writer) {
	full := src.n >> 3
	w.WriteBytes(src.buf[:full])
	if rest := src.n & 7; rest != 0 {
		w.WriteBits(uint32(src.buf[full]), rest)
	}
}

// Align pads with zero bits to the next byte boundary.
func (w *Writer) Align() {
	w.n = (w.n + 7) &^ 7
}

// Len returns the number of bits written.
func (w *Writer) Len() int {
	return w.n
}

// Bytes returns the written bits, zero-padded to a whole byte.
func (w *Writer) Bytes() []byte {
	return w.buf
}
