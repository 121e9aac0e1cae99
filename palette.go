package dcc

import (
	"fmt"
	"image/color"
	"io"
	"os"
)

// PaletteDatSize is the size of an engine palette file: 256 BGR triples.
const PaletteDatSize = 256 * 3

// Palette is a 256-entry color table with a distinguished transparent index.
type Palette struct {
	Colors      color.Palette
	Transparent uint8

	reverse map[color.RGBA]uint8
}

// NewPalette builds a palette from colors. Missing entries are black.
func NewPalette(colors color.Palette, transparent uint8) *Palette {
	full := make(color.Palette, 256)
	for i := range full {
		if i < len(colors) && colors[i] != nil {
			full[i] = color.RGBAModel.Convert(colors[i])
		} else {
			full[i] = color.RGBA{A: 0xff}
		}
	}

	p := &Palette{Colors: full, Transparent: transparent}
	p.reverse = make(map[color.RGBA]uint8, 256)
	// lowest index wins for duplicate colors; the transparent entry never
	// matches an opaque color
	for i := len(full) - 1; i >= 0; i-- {
		if uint8(i) == transparent {
			continue
		}
		p.reverse[full[i].(color.RGBA)] = uint8(i)
	}
	return p
}

// DefaultPalette returns a grayscale palette with index 0 transparent.
func DefaultPalette() *Palette {
	colors := make(color.Palette, 256)
	for i := range colors {
		colors[i] = color.RGBA{R: uint8(i), G: uint8(i), B: uint8(i), A: 0xff}
	}
	return NewPalette(colors, 0)
}

// LoadPalette reads an engine palette (256 BGR triples). Index 0 is transparent.
func LoadPalette(r io.Reader) (*Palette, error) {
	var raw [PaletteDatSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadPalette, err)
	}

	colors := make(color.Palette, 256)
	for i := range colors {
		colors[i] = color.RGBA{R: raw[i*3+2], G: raw[i*3+1], B: raw[i*3], A: 0xff}
	}
	return NewPalette(colors, 0), nil
}

// ReadPalette loads an engine palette from a file.
func ReadPalette(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	return LoadPalette(f)
}

// TransparentIndex returns the index treated as transparent.
func (p *Palette) TransparentIndex() uint8 {
	return p.Transparent
}

// RGBA returns the color at index i. The transparent index has zero alpha.
func (p *Palette) RGBA(i uint8) color.RGBA {
	if i == p.Transparent {
		return color.RGBA{}
	}
	return color.RGBAModel.Convert(p.Colors[i]).(color.RGBA)
}

// Index returns the index of c: an exact match when one exists, the
// transparent index for fully transparent colors, otherwise the nearest entry.
func (p *Palette) Index(c color.Color) uint8 {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	if rgba.A == 0 {
		return p.Transparent
	}
	if p.reverse != nil {
		if i, ok := p.reverse[rgba]; ok {
			return i
		}
	}
	return p.nearest(rgba)
}

func (p *Palette) nearest(c color.RGBA) uint8 {
	best, bestDist := p.Transparent, -1
	for i, entry := range p.Colors {
		if uint8(i) == p.Transparent {
			continue
		}
		e := color.RGBAModel.Convert(entry).(color.RGBA)
		dr := int(c.R) - int(e.R)
		dg := int(c.G) - int(e.G)
		db := int(c.B) - int(e.B)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = uint8(i), d
		}
	}
	return best
}

// Model returns a color model that renders the transparent index as clear.
func (p *Palette) Model() color.Palette {
	out := make(color.Palette, len(p.Colors))
	copy(out, p.Colors)
	out[p.Transparent] = color.RGBA{}
	return out
}

// distance returns the squared RGB distance between two palette entries.
func (p *Palette) distance(a, b uint8) int {
	ca := color.RGBAModel.Convert(p.Colors[a]).(color.RGBA)
	cb := color.RGBAModel.Convert(p.Colors[b]).(color.RGBA)
	dr := int(ca.R) - int(cb.R)
	dg := int(ca.G) - int(cb.G)
	db := int(ca.B) - int(cb.B)
	return dr*dr + dg*dg + db*db
}
