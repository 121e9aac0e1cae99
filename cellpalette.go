package dcc

import (
	"fmt"
	"math/bits"

	"github.com/woozymasta/dcc/internal/bitio"
)

// cellPalette holds the four palette indices a cell may reference in one
// frame. Opaque entries come first in descending order, transparent entries
// fill the tail.
type cellPalette [4]uint8

// distinct returns how many leading slots hold distinct samples.
func (p cellPalette) distinct() int {
	switch {
	case p[1] == p[0]:
		return 1
	case p[2] == p[1]:
		return 2
	case p[3] == p[2]:
		return 3
	default:
		return 4
	}
}

// opaque returns the number of leading slots that are not transparent.
func (p cellPalette) opaque(t uint8) int {
	n := 0
	for n < len(p) && p[n] != t {
		n++
	}
	return n
}

// find returns the first slot holding v.
func (p cellPalette) find(v uint8) (int, bool) {
	for i, s := range p {
		if s == v {
			return i, true
		}
	}
	return 0, false
}

// diffMask returns a 4-bit mask with bit i set where p differs from prior.
func (p cellPalette) diffMask(prior cellPalette) uint32 {
	var mask uint32
	for i := range p {
		if p[i] != prior[i] {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// sortSamples orders samples descending with transparent entries last.
func sortSamples(samples []uint8, t uint8) cellPalette {
	p := cellPalette{t, t, t, t}
	n := 0
	for _, s := range samples {
		if s == t || n == len(p) {
			continue
		}
		p[n] = s
		n++
	}
	for i := 1; i < n; i++ {
		for j := i; j > 0 && p[j] > p[j-1]; j-- {
			p[j], p[j-1] = p[j-1], p[j]
		}
	}
	return p
}

// rearrangeLike permutes the opaque prefix of p so that samples shared with
// prior sit in the same slots. Transparent slots stay at the tail.
func (p cellPalette) rearrangeLike(prior cellPalette, t uint8) cellPalette {
	n := max(min(p.opaque(t), prior.opaque(t)), 1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && prior[j] == p[i] {
				p[i], p[j] = p[j], p[i]
			}
		}
	}
	return p
}

// pixelKey is the per-direction bijection between palette indices and the
// dense pixel codes used on the wire. Codes are assigned in ascending index
// order.
type pixelKey struct {
	present [256]bool
	codes   [256]int   // index -> code
	values  [256]uint8 // code -> index
	count   int
}

// newPixelKey builds a key from the set of used indices.
func newPixelKey(used *[256]bool) *pixelKey {
	k := &pixelKey{present: *used}
	k.assign()
	return k
}

func (k *pixelKey) assign() {
	k.count = 0
	for i, ok := range k.present {
		if !ok {
			continue
		}
		k.codes[i] = k.count
		k.values[k.count] = uint8(i)
		k.count++
	}
}

// readPixelKey reads the 256-bit key bitmap.
func readPixelKey(r *bitio.Reader) (*pixelKey, error) {
	k := &pixelKey{}
	for i := range k.present {
		bit, err := r.ReadBit()
		if err != nil {
			return nil, err
		}
		k.present[i] = bit
	}
	k.assign()
	return k, nil
}

// write emits the 256-bit key bitmap.
func (k *pixelKey) write(w *bitio.Writer) {
	for _, ok := range k.present {
		w.WriteBit(ok)
	}
}

// paletteStreams are the sub-streams the cell palette codec reads.
type paletteStreams struct {
	equalCells   *bitio.Reader
	pixelMask    *bitio.Reader
	encodingType *bitio.Reader
	rawPixels    *bitio.Reader
	displacement *bitio.Reader
}

// decodeCellPalette reads the palette of one cell relative to prior, which is
// nil when the cell has not been seen before in this direction.
func decodeCellPalette(prior *cellPalette, s *paletteStreams, key *pixelKey) (cellPalette, error) {
	var p cellPalette
	mask := uint32(0xf)
	if prior != nil {
		p = *prior
		equal, err := s.equalCells.ReadBit()
		if err != nil {
			return p, fmt.Errorf("equal-cells stream: %w", err)
		}
		if equal {
			return p, nil
		}
		if mask, err = s.pixelMask.ReadBits(4); err != nil {
			return p, fmt.Errorf("pixel-mask stream: %w", err)
		}
	}
	if mask == 0 {
		return p, nil
	}

	raw, err := s.encodingType.ReadBit()
	if err != nil {
		return p, fmt.Errorf("encoding-type stream: %w", err)
	}

	var stack [4]uint8
	n := 0
	last := 0
	for want := bits.OnesCount32(mask); n < want; {
		before := last
		if raw {
			v, err := s.rawPixels.ReadBits(8)
			if err != nil {
				return p, fmt.Errorf("raw pixel stream: %w", err)
			}
			last = int(v)
		} else {
			d, err := decodeDelta(s.displacement)
			if err != nil {
				return p, fmt.Errorf("displacement: %w", err)
			}
			last = (last + d) % 256
		}
		if last == before {
			break
		}
		stack[n] = key.values[last]
		n++
	}

	for slot := 0; mask != 0; slot++ {
		if mask&1 != 0 {
			var v uint8
			if n > 0 {
				n--
				v = stack[n]
			}
			p[slot] = v
		}
		mask >>= 1
	}
	return p, nil
}

// paletteUpdate is the planned encoding of one cell palette.
type paletteUpdate struct {
	palette cellPalette
	mask    uint32
	raw     bool
	codes   []int // pixel codes in write order
	stop    bool  // a terminator follows the codes
}

// planCellPalette chooses how to move a cell from prior (nil on first use) to
// target. Raw coding is considered only when allowRaw is set and wins only
// when strictly cheaper than displacement.
func planCellPalette(target cellPalette, prior *cellPalette, key *pixelKey, t uint8, allowRaw bool) paletteUpdate {
	disp := newPaletteUpdate(target, prior, key, t)
	if !allowRaw || disp.mask == 0 {
		return disp
	}

	raw := disp
	if prior != nil {
		raw = newPaletteUpdate(target.rearrangeLike(*prior, t), prior, key, t)
	}
	raw.raw = true
	if raw.rawCost() < disp.displacementCost() {
		return raw
	}
	return disp
}

func newPaletteUpdate(p cellPalette, prior *cellPalette, key *pixelKey, t uint8) paletteUpdate {
	u := paletteUpdate{palette: p, mask: 0xf}
	if prior != nil {
		u.mask = p.diffMask(*prior)
	}

	opaque := p.opaque(t)
	for slot := opaque - 1; slot >= 0; slot-- {
		if u.mask&(1<<uint(slot)) != 0 {
			u.codes = append(u.codes, key.codes[p[slot]])
		}
	}
	u.stop = u.mask>>uint(opaque) != 0
	return u
}

func (u paletteUpdate) displacementCost() int {
	cost, last := 0, 0
	for _, c := range u.codes {
		cost += deltaCost(c - last)
		last = c
	}
	if u.stop {
		cost += deltaCost(0)
	}
	return cost
}

func (u paletteUpdate) rawCost() int {
	n := len(u.codes)
	if u.stop {
		n++
	}
	return 8 * n
}

// paletteWriters are the sub-streams the cell palette codec writes.
type paletteWriters struct {
	pixelMask    *bitio.Writer
	encodingType *bitio.Writer
	rawPixels    *bitio.Writer
	displacement *bitio.Writer
}

// write emits the update. The mask is written only for cells seen before and
// the encoding type only when the direction carries that stream.
func (u paletteUpdate) write(w *paletteWriters, seen, rawStreams bool) {
	if seen {
		w.pixelMask.WriteBits(u.mask, 4)
	}
	if u.mask == 0 {
		return
	}
	if rawStreams {
		w.encodingType.WriteBit(u.raw)
	}

	last := 0
	for _, c := range u.codes {
		if u.raw {
			w.rawPixels.WriteBits(uint32(c), 8)
		} else {
			encodeDelta(w.displacement, c-last)
		}
		last = c
	}
	if u.stop {
		if u.raw {
			w.rawPixels.WriteBits(uint32(last), 8)
		} else {
			encodeDelta(w.displacement, 0)
		}
	}
}
