package dcc

// cellHistory is the cross-frame state of one direction's frame buffer: the
// most recent palette of every cell and the geometry it was last coded with.
type cellHistory struct {
	cols int

	palettes   []cellPalette
	hasPalette []bool

	geometry []cellGeometry
	coded    []bool
}

func newCellHistory(rows, cols int) *cellHistory {
	n := rows * cols
	h := &cellHistory{
		cols:       cols,
		palettes:   make([]cellPalette, n),
		hasPalette: make([]bool, n),
		geometry:   make([]cellGeometry, n),
		coded:      make([]bool, n),
	}
	for i := range h.geometry {
		h.geometry[i] = cellGeometry{w: cellSize, h: cellSize}
	}
	return h
}

// palette returns the latest palette of a cell, or nil before its first use.
func (h *cellHistory) palette(row, col int) *cellPalette {
	i := row*h.cols + col
	if !h.hasPalette[i] {
		return nil
	}
	p := h.palettes[i]
	return &p
}

func (h *cellHistory) setPalette(row, col int, p cellPalette) {
	i := row*h.cols + col
	h.palettes[i] = p
	h.hasPalette[i] = true
}

// visited reports whether the pixels of a cell were produced by an earlier frame.
func (h *cellHistory) visited(row, col int) bool {
	return h.coded[row*h.cols+col]
}

func (h *cellHistory) visit(row, col int) {
	h.coded[row*h.cols+col] = true
}

// lastGeometry returns the geometry a cell was last explicitly coded with.
func (h *cellHistory) lastGeometry(row, col int) cellGeometry {
	return h.geometry[row*h.cols+col]
}

func (h *cellHistory) setGeometry(row, col int, g cellGeometry) {
	h.geometry[row*h.cols+col] = g
}
