package dcc

// DC6 row codes.
const (
	dc6EndOfRow = 0x80
	dc6Skip     = 0x80 // or'ed with a transparent run length
	dc6MaxRun   = 0x7f
)

// encodeDC6Frame RLE-encodes a frame the way DC6 stores it: rows bottom to
// top, transparent runs as skip codes, opaque runs as a count followed by the
// indices. Skips before a row end are dropped.
func encodeDC6Frame(f *Frame, t uint8) []byte {
	w, h := f.Width(), f.Height()
	out := make([]byte, 0, w*h+h)
	for y := h - 1; y >= 0; y-- {
		skip := 0
		for x := 0; x < w; {
			if skip > 0 {
				for ; skip > dc6MaxRun; skip -= dc6MaxRun {
					out = append(out, dc6Skip|dc6MaxRun)
				}
				out = append(out, dc6Skip|byte(skip))
				skip = 0
			}

			if f.IndexAt(x, y) == t {
				for x < w && f.IndexAt(x, y) == t {
					x++
					skip++
				}
				continue
			}

			start := len(out)
			out = append(out, 0)
			n := 0
			for x < w && n < dc6MaxRun {
				v := f.IndexAt(x, y)
				if v == t {
					break
				}
				out = append(out, v)
				x++
				n++
			}
			out[start] = byte(n)
		}
		out = append(out, dc6EndOfRow)
	}
	return out
}

// dc6FrameSize returns the DC6 encoded size of a frame. DCC headers carry it
// as a buffer size hint for the engine.
func dc6FrameSize(f *Frame, t uint8) int {
	return len(encodeDC6Frame(f, t))
}
