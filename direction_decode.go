package dcc

import (
	"errors"
	"fmt"
	"image"

	"github.com/woozymasta/dcc/internal/bitio"
)

// streamLengthBits is the width of a sub-stream length declaration.
const streamLengthBits = 20

// directionStreams are the sub-streams of one direction.
type directionStreams struct {
	palette paletteStreams
	// equalPixels re-reads the equal-cells stream from its start for the
	// pixel pass.
	equalPixels *bitio.Reader
	pixels      *bitio.Reader
}

// decodeDirection decodes the direction that starts at the beginning of data.
// Soft findings are passed to warn.
func decodeDirection(data []byte, frames int, pal *Palette, warn func(string)) ([]*Frame, error) {
	r := bitio.NewReader(data)

	hdr, err := readDirectionHeader(r, frames, warn)
	if err != nil {
		return nil, streamError("header", err)
	}

	st, key, err := readDirectionStreams(r, hdr)
	if err != nil {
		return nil, err
	}

	rects := make([]image.Rectangle, len(hdr.frames))
	for i := range hdr.frames {
		rects[i] = hdr.frames[i].rect()
	}
	fb := newFrameBuffer(rects)
	if int64(fb.width)*int64(fb.height) > maxBufferPixels {
		return nil, fmt.Errorf("%w: frame buffer %dx%d", ErrInvalidFrameHeader, fb.width, fb.height)
	}

	palettes, err := decodePalettes(hdr, fb, st, key)
	if err != nil {
		return nil, err
	}

	return decodePixels(hdr, fb, st, palettes, pal)
}

// readDirectionStreams reads the stream length declarations and the pixel
// key, then splits the remaining bits into sub-streams. Absent streams read
// as zeros.
func readDirectionStreams(r *bitio.Reader, hdr *directionHeader) (*directionStreams, *pixelKey, error) {
	readLength := func(name string) (int, error) {
		n, err := r.ReadBits(streamLengthBits)
		if err != nil {
			return 0, streamError(name+" length", err)
		}
		return int(n), nil
	}

	var eqLen, maskLen, encLen, rawLen int
	var err error
	if hdr.equalCells {
		if eqLen, err = readLength("equal-cells"); err != nil {
			return nil, nil, err
		}
	}
	if maskLen, err = readLength("pixel-mask"); err != nil {
		return nil, nil, err
	}
	if hdr.rawStreams {
		if encLen, err = readLength("encoding-type"); err != nil {
			return nil, nil, err
		}
		if rawLen, err = readLength("raw pixel"); err != nil {
			return nil, nil, err
		}
	}

	key, err := readPixelKey(r)
	if err != nil {
		return nil, nil, streamError("pixel key", err)
	}

	sub := func(present bool, n int, name string) (*bitio.Reader, error) {
		if !present {
			return bitio.Zero(), nil
		}
		s, err := r.Sub(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %w: %s stream declares %d bits, %d left",
				ErrInvalidStreamLength, ErrUnexpectedEnd, name, n, r.Remaining())
		}
		return s, nil
	}

	st := &directionStreams{}
	if st.palette.equalCells, err = sub(hdr.equalCells, eqLen, "equal-cells"); err != nil {
		return nil, nil, err
	}
	if st.palette.pixelMask, err = sub(true, maskLen, "pixel-mask"); err != nil {
		return nil, nil, err
	}
	if st.palette.encodingType, err = sub(hdr.rawStreams, encLen, "encoding-type"); err != nil {
		return nil, nil, err
	}
	if st.palette.rawPixels, err = sub(hdr.rawStreams, rawLen, "raw pixel"); err != nil {
		return nil, nil, err
	}
	st.equalPixels = st.palette.equalCells.Clone()
	st.palette.displacement = r
	st.pixels = r

	return st, key, nil
}

// decodePalettes runs the palette pass. The result holds, per frame, the
// palette of every touched cell in row-major order.
func decodePalettes(hdr *directionHeader, fb frameBuffer, st *directionStreams, key *pixelKey) ([][]cellPalette, error) {
	hist := newCellHistory(fb.rows, fb.cols)
	out := make([][]cellPalette, len(hdr.frames))

	for i := range hdr.frames {
		cells := resolveGeometry(fb.origin, hdr.frames[i].rect())
		if cells.empty() {
			continue
		}

		pals := make([]cellPalette, 0, (cells.bottom-cells.top+1)*(cells.right-cells.left+1))
		for row := cells.top; row <= cells.bottom; row++ {
			for col := cells.left; col <= cells.right; col++ {
				p, err := decodeCellPalette(hist.palette(row, col), &st.palette, key)
				if err != nil {
					return nil, streamError(fmt.Sprintf("frame %d cell %d,%d palette", i, row, col), err)
				}
				hist.setPalette(row, col, p)
				pals = append(pals, p)
			}
		}
		out[i] = pals
	}

	return out, nil
}

// decodePixels runs the pixel pass and extracts every frame from the shared
// buffer.
func decodePixels(hdr *directionHeader, fb frameBuffer, st *directionStreams, palettes [][]cellPalette, pal *Palette) ([]*Frame, error) {
	t := pal.TransparentIndex()
	hist := newCellHistory(fb.rows, fb.cols)
	grid := newPixelGrid(fb.width, fb.height, t)
	frames := make([]*Frame, len(hdr.frames))

	for i := range hdr.frames {
		fh := &hdr.frames[i]
		cells := resolveGeometry(fb.origin, fh.rect())
		if !cells.empty() {
			k := 0
			for row := cells.top; row <= cells.bottom; row++ {
				for col := cells.left; col <= cells.right; col++ {
					geom := cells.cell(row, col)
					p := palettes[i][k]
					k++

					if hist.visited(row, col) {
						equal, err := st.equalPixels.ReadBit()
						if err != nil {
							return nil, streamError(fmt.Sprintf("frame %d cell %d,%d", i, row, col), err)
						}
						if equal {
							if geom != hist.lastGeometry(row, col) {
								grid.clearCell(row, col, t)
							}
							continue
						}
					}

					if err := decodeCellPixels(st.pixels, grid, row, col, geom, p); err != nil {
						return nil, streamError(fmt.Sprintf("frame %d cell %d,%d pixels", i, row, col), err)
					}
					hist.setGeometry(row, col, geom)
					hist.visit(row, col)
				}
			}
		}

		frames[i] = extractFrame(grid, fb, fh, pal)
	}

	return frames, nil
}

// extractFrame copies a frame's rectangle out of the shared buffer. Rows of
// bottom-up frames are stored from the bottom.
func extractFrame(grid *pixelGrid, fb frameBuffer, fh *frameHeader, pal *Palette) *Frame {
	img := image.NewPaletted(image.Rect(0, 0, fh.width, fh.height), pal.Model())
	frame := &Frame{Image: img, X: fh.x, Y: fh.y, OptionalData: fh.optional}
	// empty frames are not part of the buffer union
	if fh.width == 0 || fh.height == 0 {
		return frame
	}

	ox := fh.x - fb.origin.X
	oy := fh.y - fb.origin.Y
	for y := 0; y < fh.height; y++ {
		dst := y
		// flipped into top-down order, not read from the buffer bottom
		if fh.bottomUp {
			dst = fh.height - 1 - y
		}
		row := grid.pix[(oy+y)*grid.stride+ox : (oy+y)*grid.stride+ox+fh.width]
		copy(img.Pix[dst*img.Stride:], row)
	}

	return frame
}

// streamError wraps a bit stream failure with context. Running out of bits
// maps to ErrUnexpectedEnd.
func streamError(what string, err error) error {
	if errors.Is(err, bitio.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrUnexpectedEnd, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}
