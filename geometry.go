package dcc

import "image"

// cellSize is the nominal edge length of a frame buffer cell.
const cellSize = 4

// cellGeometry is the sub-rectangle of a buffer cell that one frame covers.
type cellGeometry struct {
	w, h int // 1..5
	x, y int // offset inside the cell, 0..3
}

// frameCells lists the buffer cells a frame touches and the edge sizes.
type frameCells struct {
	left, top, right, bottom int // inclusive cell indices

	leftW, rightW int
	topH, bottomH int
	leftX, topY   int
	width, height int
}

// resolveGeometry maps a frame rectangle onto the cell grid of a frame
// buffer whose top-left corner is origin.
//
// The last cell in a row or column absorbs a trailing single pixel, so edge
// cells are 2..5 pixels wide unless the frame itself is narrower.
func resolveGeometry(origin image.Point, r image.Rectangle) frameCells {
	x := r.Min.X - origin.X
	y := r.Min.Y - origin.Y
	w, h := r.Dx(), r.Dy()

	c := frameCells{
		left:   x / cellSize,
		top:    y / cellSize,
		right:  (x + w - 2) / cellSize,
		bottom: (y + h - 2) / cellSize,
		leftX:  x % cellSize,
		topY:   y % cellSize,
		width:  w,
		height: h,
	}
	if c.right < c.left {
		c.right = c.left
	}
	if c.bottom < c.top {
		c.bottom = c.top
	}

	c.leftW = min(cellSize-c.leftX, w)
	c.topH = min(cellSize-c.topY, h)
	c.rightW = edgeRemainder(c.leftW, w)
	c.bottomH = edgeRemainder(c.topH, h)

	return c
}

// edgeRemainder returns the size of the closing edge cell given the size of
// the opening one and the full frame dimension. A remainder of 5 collapses to
// 1 when the whole dimension is under 5. Such a frame fits one cell, and
// cellWidth and cellHeight give a single cell the full dimension, so the
// collapsed value never sizes a cell.
func edgeRemainder(first, full int) int {
	rem := (6-first+full%cellSize)%cellSize + 2
	if rem == 5 && full < 5 {
		rem = 1
	}
	return min(rem, full)
}

// empty reports whether the frame covers no pixels.
func (c frameCells) empty() bool {
	return c.width <= 0 || c.height <= 0
}

// cellWidth returns the width of the frame cell in column col.
// A frame that fits in one column spans its full width.
func (c frameCells) cellWidth(col int) int {
	switch {
	case c.left == c.right:
		return c.width
	case col == c.right:
		return c.rightW
	case col == c.left:
		return c.leftW
	default:
		return cellSize
	}
}

// cellHeight returns the height of the frame cell in row row.
func (c frameCells) cellHeight(row int) int {
	switch {
	case c.top == c.bottom:
		return c.height
	case row == c.bottom:
		return c.bottomH
	case row == c.top:
		return c.topH
	default:
		return cellSize
	}
}

// cell returns the geometry of the frame cell at (row, col).
func (c frameCells) cell(row, col int) cellGeometry {
	g := cellGeometry{w: c.cellWidth(col), h: c.cellHeight(row)}
	if col == c.left {
		g.x = c.leftX
	}
	if row == c.top {
		g.y = c.topY
	}
	return g
}

// frameBuffer is the union of all frame rectangles in one direction.
type frameBuffer struct {
	origin        image.Point
	width, height int
	rows, cols    int
}

// newFrameBuffer sizes the buffer for a set of frame rectangles. Empty
// rectangles are ignored.
func newFrameBuffer(rects []image.Rectangle) frameBuffer {
	var union image.Rectangle
	first := true
	for _, r := range rects {
		if r.Empty() {
			continue
		}
		if first {
			union = r
			first = false
			continue
		}
		union = union.Union(r)
	}

	return frameBuffer{
		origin: union.Min,
		width:  union.Dx(),
		height: union.Dy(),
		rows:   (union.Dy() + cellSize - 1) / cellSize,
		cols:   (union.Dx() + cellSize - 1) / cellSize,
	}
}
