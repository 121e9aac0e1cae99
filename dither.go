package dcc

import (
	"cmp"
	"image"
	"slices"
)

// cellTarget is the quantized content of one frame cell.
type cellTarget struct {
	geom    cellGeometry
	palette cellPalette
	samples []uint8 // geom.w × geom.h, row-major
	blank   bool    // every sample is transparent
}

type ditheredFrame struct {
	cells   frameCells
	targets []cellTarget // row-major over the touched cells
}

// ditherCache holds the quantized cells of a whole direction. It is built
// once and shared read-only by every encode variant.
type ditherCache struct {
	fb     frameBuffer
	frames []ditheredFrame
	key    *pixelKey
}

// ditherDirection reduces every cell of every frame to at most four samples.
func ditherDirection(frames []*Frame, pal *Palette) *ditherCache {
	t := pal.TransparentIndex()

	rects := make([]image.Rectangle, len(frames))
	for i, f := range frames {
		rects[i] = f.Bounds()
	}

	c := &ditherCache{
		fb:     newFrameBuffer(rects),
		frames: make([]ditheredFrame, len(frames)),
	}

	var used [256]bool
	used[0] = true
	used[t] = true

	for i, f := range frames {
		cells := resolveGeometry(c.fb.origin, rects[i])
		df := ditheredFrame{cells: cells}
		if cells.empty() {
			c.frames[i] = df
			continue
		}

		ox := f.X - c.fb.origin.X
		oy := f.Y - c.fb.origin.Y
		for row := cells.top; row <= cells.bottom; row++ {
			for col := cells.left; col <= cells.right; col++ {
				geom := cells.cell(row, col)
				x0 := col*cellSize + geom.x - ox
				y0 := row*cellSize + geom.y - oy

				samples := make([]uint8, 0, geom.w*geom.h)
				for y := 0; y < geom.h; y++ {
					for x := 0; x < geom.w; x++ {
						samples = append(samples, f.IndexAt(x0+x, y0+y))
					}
				}

				p, q := quantizeCell(samples, pal)
				for _, v := range p {
					used[v] = true
				}

				blank := true
				for _, v := range q {
					if v != t {
						blank = false
						break
					}
				}
				df.targets = append(df.targets, cellTarget{geom: geom, palette: p, samples: q, blank: blank})
			}
		}
		c.frames[i] = df
	}

	c.key = newPixelKey(&used)
	return c
}

// quantizeCell reduces samples to at most four distinct indices and returns
// the sorted cell palette with the remapped samples. Transparency is kept as
// its own entry; surplus opaque samples map to the nearest kept color.
func quantizeCell(samples []uint8, pal *Palette) (cellPalette, []uint8) {
	t := pal.TransparentIndex()

	var counts [256]int
	var colors []uint8
	hasTransparent := false
	for _, s := range samples {
		if s == t {
			hasTransparent = true
			continue
		}
		if counts[s] == 0 {
			colors = append(colors, s)
		}
		counts[s]++
	}

	budget := 4
	if hasTransparent {
		budget = 3
	}
	if len(colors) <= budget {
		return sortSamples(colors, t), samples
	}

	slices.SortFunc(colors, func(a, b uint8) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	keep := []uint8{colors[0]}
	var kept [256]bool
	kept[colors[0]] = true
	for len(keep) < budget {
		best, bestScore := -1, -1
		for _, c := range colors {
			if kept[c] {
				continue
			}
			score := counts[c] * nearestDistance(pal, c, keep)
			if score > bestScore {
				best, bestScore = int(c), score
			}
		}
		keep = append(keep, uint8(best))
		kept[best] = true
	}

	out := make([]uint8, len(samples))
	for i, s := range samples {
		if s == t || kept[s] {
			out[i] = s
			continue
		}
		out[i] = nearestColor(pal, s, keep)
	}

	return sortSamples(keep, t), out
}

func nearestDistance(pal *Palette, c uint8, set []uint8) int {
	best := -1
	for _, s := range set {
		if d := pal.distance(c, s); best < 0 || d < best {
			best = d
		}
	}
	return best
}

func nearestColor(pal *Palette, c uint8, set []uint8) uint8 {
	best, bestDist := set[0], -1
	for _, s := range set {
		if d := pal.distance(c, s); bestDist < 0 || d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}
