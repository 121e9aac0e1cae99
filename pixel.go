package dcc

import (
	"fmt"

	"github.com/woozymasta/dcc/internal/bitio"
)

// colorBits returns the width of a pixel slot index for a palette with the
// given number of distinct samples.
func colorBits(distinct int) int {
	switch {
	case distinct <= 1:
		return 0
	case distinct == 2:
		return 1
	default:
		return 2
	}
}

// pixelGrid is a row-major raster of palette indices.
type pixelGrid struct {
	pix    []uint8
	stride int
}

func newPixelGrid(width, height int, fill uint8) *pixelGrid {
	g := &pixelGrid{pix: make([]uint8, width*height), stride: width}
	if fill != 0 {
		for i := range g.pix {
			g.pix[i] = fill
		}
	}
	return g
}

func (g *pixelGrid) at(x, y int) uint8 {
	return g.pix[y*g.stride+x]
}

func (g *pixelGrid) set(x, y int, v uint8) {
	g.pix[y*g.stride+x] = v
}

// clearCell fills the nominal cell at (row, col) with t, clipped to the grid.
func (g *pixelGrid) clearCell(row, col int, t uint8) {
	height := len(g.pix) / max(g.stride, 1)
	for y := row * cellSize; y < min((row+1)*cellSize, height); y++ {
		for x := col * cellSize; x < min((col+1)*cellSize, g.stride); x++ {
			g.set(x, y, t)
		}
	}
}

// decodeCellPixels reads the pixels of one frame cell into g.
func decodeCellPixels(r *bitio.Reader, g *pixelGrid, row, col int, geom cellGeometry, p cellPalette) error {
	n := colorBits(p.distinct())
	x0 := col*cellSize + geom.x
	y0 := row*cellSize + geom.y
	for y := 0; y < geom.h; y++ {
		for x := 0; x < geom.w; x++ {
			slot, err := r.ReadBits(n)
			if err != nil {
				return err
			}
			g.set(x0+x, y0+y, p[slot])
		}
	}
	return nil
}

// encodeCellPixels writes samples (geom.w × geom.h, row-major) as slot indices
// of p and mirrors them into g.
func encodeCellPixels(w *bitio.Writer, g *pixelGrid, row, col int, geom cellGeometry, p cellPalette, samples []uint8) error {
	n := colorBits(p.distinct())
	x0 := col*cellSize + geom.x
	y0 := row*cellSize + geom.y
	for y := 0; y < geom.h; y++ {
		for x := 0; x < geom.w; x++ {
			v := samples[y*geom.w+x]
			slot, ok := p.find(v)
			if !ok || slot >= 1<<uint(n) {
				return fmt.Errorf("sample %d not addressable in cell palette %v", v, p)
			}
			w.WriteBits(uint32(slot), n)
			g.set(x0+x, y0+y, v)
		}
	}
	return nil
}
