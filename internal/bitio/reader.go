// Package bitio implements the LSB-first bit streams used by DCC directions.
//
// Bits are consumed from the least significant bit of each byte upward, and
// multi-bit fields are assembled little-endian: the first bit read becomes
// bit 0 of the result.
package bitio

import "errors"

// ErrUnexpectedEOF is returned when a read runs past the end of a stream.
var ErrUnexpectedEOF = errors.New("unexpected end of bit stream")

// ErrInvalidCount is returned for bit counts outside 0..32.
var ErrInvalidCount = errors.New("invalid bit count")

// Reader reads bits from a byte slice. A Reader may be bounded to a window of
// the slice (see Sub) or produce an endless run of zero bits (see Zero).
type Reader struct {
	data  []byte
	pos   int // absolute bit position
	limit int // absolute bit limit (exclusive)
	zeros bool
}

// NewReader creates a reader over all bits of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, limit: len(data) * 8}
}

// Zero returns a reader that yields zero bits forever.
func Zero() *Reader {
	return &Reader{zeros: true}
}

// ReadBit reads one bit.
func (r *Reader) ReadBit() (bool, error) {
	if r.zeros {
		return false, nil
	}
	if r.pos >= r.limit {
		return false, ErrUnexpectedEOF
	}

	bit := r.data[r.pos>>3]>>(uint(r.pos)&7)&1 != 0
	r.pos++
	return bit, nil
}

// ReadBits reads n bits (n <= 32) into the low bits of the result.
func (r *Reader) ReadBits(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, ErrInvalidCount
	}
	if r.zeros || n == 0 {
		return 0, nil
	}
	if r.limit-r.pos < n {
		r.pos = r.limit
		return 0, ErrUnexpectedEOF
	}

	var v uint32
	for i := 0; i < n; {
		shift := uint(r.pos) & 7
		take := 8 - int(shift)
		if take > n-i {
			take = n - i
		}
		chunk := uint32(r.data[r.pos>>3]>>shift) & (1<<uint(take) - 1)
		v |= chunk << uint(i)
		i += take
		r.pos += take
	}

	return v, nil
}

// ReadSigned reads an n-bit two's complement value and sign-extends it.
func (r *Reader) ReadSigned(n int) (int32, error) {
	v, err := r.ReadBits(n)
	if err != nil || n == 0 {
		return 0, err
	}
	if n == 32 {
		return int32(v), nil
	}
	if v&(1<<uint(n-1)) != 0 {
		v |= ^uint32(0) << uint(n)
	}
	return int32(v), nil
}

// Align skips to the next byte boundary.
func (r *Reader) Align() {
	if r.zeros {
		return
	}
	r.pos = (r.pos + 7) &^ 7
	if r.pos > r.limit {
		r.pos = r.limit
	}
}

// ReadBytes reads n whole bytes starting at the current bit position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrInvalidCount
	}
	if r.zeros {
		return make([]byte, n), nil
	}
	if (r.limit-r.pos)/8 < n {
		r.pos = r.limit
		return nil, ErrUnexpectedEOF
	}

	out := make([]byte, n)
	if r.pos&7 == 0 {
		start := r.pos >> 3
		copy(out, r.data[start:start+n])
		r.pos += n * 8
		return out, nil
	}

	for i := range out {
		b, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(b)
	}
	return out, nil
}

// Sub returns a reader over the next n bits and advances past them.
func (r *Reader) Sub(n int) (*Reader, error) {
	if n < 0 {
		return nil, ErrInvalidCount
	}
	if r.zeros {
		return Zero(), nil
	}
	if r.limit-r.pos < n {
		return nil, ErrUnexpectedEOF
	}

	sub := &Reader{data: r.data, pos: r.pos, limit: r.pos + n}
	r.pos += n
	return sub, nil
}

// Clone returns an independent reader positioned where r is.
func (r *Reader) Clone() *Reader {
	c := *r
	return &c
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	if r.zeros {
		return int(^uint(0) >> 1)
	}
	return r.limit - r.pos
}
