package dcc

import "math/bits"

// sizeCodeWidths maps a 4-bit size code to the field width it selects.
var sizeCodeWidths = [16]int{0, 1, 2, 4, 6, 8, 10, 12, 14, 16, 20, 24, 26, 28, 30, 32}

// bitWidth returns the field width selected by a size code.
func bitWidth(code uint32) int {
	return sizeCodeWidths[code&0xf]
}

// sizeCode returns the smallest size code whose width holds n bits.
// n must not exceed 32.
func sizeCode(n int) uint32 {
	for code, width := range sizeCodeWidths {
		if width >= n {
			return uint32(code)
		}
	}
	return 15
}

// significantBits returns the bits needed to store v, signed or unsigned.
// A signed negative power of two fits one bit narrower than its magnitude
// suggests (3 bits hold -4..3).
func significantBits(v int64, signed bool) int {
	mag := v
	if mag < 0 {
		mag = -mag
	}
	n := bits.Len64(uint64(mag))
	if signed && (v >= 0 || bits.OnesCount64(uint64(mag)) != 1) {
		n++
	}
	return n
}

// fieldCode returns the size code needed to store v.
func fieldCode(v int64, signed bool) uint32 {
	return sizeCode(significantBits(v, signed))
}
