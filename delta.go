package dcc

import "github.com/woozymasta/dcc/internal/bitio"

// deltaNibble is the continuation value of a displacement chain.
const deltaNibble = 15

// encodeDelta writes d (d >= 0) as a chain of 4-bit nibbles. Every nibble of
// 15 is followed by another; the chain value is the sum of its nibbles.
func encodeDelta(w *bitio.Writer, d int) {
	for d >= deltaNibble {
		w.WriteBits(deltaNibble, 4)
		d -= deltaNibble
	}
	w.WriteBits(uint32(d), 4)
}

// decodeDelta reads one displacement chain and returns the sum of its nibbles.
func decodeDelta(r *bitio.Reader) (int, error) {
	sum := 0
	for {
		v, err := r.ReadBits(4)
		if err != nil {
			return 0, err
		}
		sum += int(v)
		if v != deltaNibble {
			return sum, nil
		}
	}
}

// deltaCost returns the bits encodeDelta spends on d.
func deltaCost(d int) int {
	return 4 * (1 + d/deltaNibble)
}
