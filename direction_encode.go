package dcc

import (
	"fmt"

	"github.com/woozymasta/dcc/internal/bitio"
)

// maxStreamBits is the longest sub-stream a length declaration can describe.
const maxStreamBits = 1<<streamLengthBits - 1

// Variant selects which optional streams an encoded direction carries.
type Variant struct {
	// EqualCells enables the equal-cells stream.
	EqualCells bool
	// RawPixels enables the encoding-type and raw pixel streams.
	RawPixels bool
}

// AllVariants lists every variant in the order they are tried. On equal
// sizes the earlier variant wins.
var AllVariants = []Variant{
	{EqualCells: true, RawPixels: true},
	{EqualCells: true, RawPixels: false},
	{EqualCells: false, RawPixels: true},
	{EqualCells: false, RawPixels: false},
}

// String returns a short name like "eq+raw".
func (v Variant) String() string {
	switch {
	case v.EqualCells && v.RawPixels:
		return "eq+raw"
	case v.EqualCells:
		return "eq"
	case v.RawPixels:
		return "raw"
	default:
		return "plain"
	}
}

// cellWriters are the sub-streams written by one encode variant.
type cellWriters struct {
	equalCells *bitio.Writer
	palette    paletteWriters
	pixels     *bitio.Writer
}

func newCellWriters() *cellWriters {
	return &cellWriters{
		equalCells: bitio.NewWriter(),
		palette: paletteWriters{
			pixelMask:    bitio.NewWriter(),
			encodingType: bitio.NewWriter(),
			rawPixels:    bitio.NewWriter(),
			displacement: bitio.NewWriter(),
		},
		pixels: bitio.NewWriter(),
	}
}

// encodeDirectionVariant encodes one direction with the streams v selects.
// The cache is only read; all other state is private to the call.
func encodeDirectionVariant(hdr *directionHeader, cache *ditherCache, v Variant, t uint8) ([]byte, error) {
	w := newCellWriters()
	hist := newCellHistory(cache.fb.rows, cache.fb.cols)
	grid := newPixelGrid(cache.fb.width, cache.fb.height, t)

	for i := range cache.frames {
		df := &cache.frames[i]
		if df.cells.empty() {
			continue
		}

		k := 0
		for row := df.cells.top; row <= df.cells.bottom; row++ {
			for col := df.cells.left; col <= df.cells.right; col++ {
				tg := &df.targets[k]
				k++

				seen := hist.visited(row, col)
				if v.EqualCells && seen {
					same := cellUnchanged(grid, hist, row, col, tg, t)
					w.equalCells.WriteBit(same)
					if same {
						continue
					}
				}

				u := planCellPalette(tg.palette, hist.palette(row, col), cache.key, t, v.RawPixels)
				u.write(&w.palette, seen, v.RawPixels)
				hist.setPalette(row, col, u.palette)

				if err := encodeCellPixels(w.pixels, grid, row, col, tg.geom, u.palette, tg.samples); err != nil {
					return nil, fmt.Errorf("frame %d cell %d,%d: %w", i, row, col, err)
				}
				hist.setGeometry(row, col, tg.geom)
				hist.visit(row, col)
			}
		}
	}

	return w.assemble(hdr, cache.key, v)
}

// cellUnchanged reports whether the decoder may skip a cell, updating the
// shared buffer the way the decoder will. A cell is unchanged when its
// geometry and samples match what the buffer holds, or when it is blank and
// fits the nominal cell, in which case the cell is cleared.
func cellUnchanged(grid *pixelGrid, hist *cellHistory, row, col int, tg *cellTarget, t uint8) bool {
	g := tg.geom
	if g == hist.lastGeometry(row, col) {
		x0 := col*cellSize + g.x
		y0 := row*cellSize + g.y
		for y := 0; y < g.h; y++ {
			for x := 0; x < g.w; x++ {
				if grid.at(x0+x, y0+y) != tg.samples[y*g.w+x] {
					return false
				}
			}
		}
		return true
	}

	if tg.blank && g.x+g.w <= cellSize && g.y+g.h <= cellSize {
		grid.clearCell(row, col, t)
		return true
	}
	return false
}

// assemble lays out the header, stream lengths, pixel key and streams.
func (w *cellWriters) assemble(hdr *directionHeader, key *pixelKey, v Variant) ([]byte, error) {
	h := *hdr
	h.equalCells = v.EqualCells
	h.rawStreams = v.RawPixels

	type stream struct {
		name    string
		present bool
		w       *bitio.Writer
	}
	declared := []stream{
		{"equal-cells", v.EqualCells, w.equalCells},
		{"pixel-mask", true, w.palette.pixelMask},
		{"encoding-type", v.RawPixels, w.palette.encodingType},
		{"raw pixel", v.RawPixels, w.palette.rawPixels},
	}

	out := bitio.NewWriter()
	h.write(out)
	for _, s := range declared {
		if !s.present {
			continue
		}
		if s.w.Len() > maxStreamBits {
			return nil, fmt.Errorf("%w: %s stream is %d bits", ErrSizeOverflow, s.name, s.w.Len())
		}
		out.WriteBits(uint32(s.w.Len()), streamLengthBits)
	}
	key.write(out)
	for _, s := range declared {
		if s.present {
			out.Append(s.w)
		}
	}
	out.Append(w.palette.displacement)
	out.Append(w.pixels)

	return out.Bytes(), nil
}
