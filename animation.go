package dcc

import "image"

// Frame is one palette-indexed raster placed in a direction's virtual space.
type Frame struct {
	// Image holds palette indices; its bounds are expected to start at (0,0).
	Image *image.Paletted
	// X and Y locate the top-left corner of the frame.
	X, Y int
	// OptionalData is an opaque per-frame blob carried verbatim.
	OptionalData []byte
}

// NewFrame allocates a frame of the given size filled with index 0.
func NewFrame(width, height, x, y int, pal *Palette) *Frame {
	img := image.NewPaletted(image.Rect(0, 0, width, height), nil)
	if pal != nil {
		img.Palette = pal.Colors
	}
	return &Frame{Image: img, X: x, Y: y}
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	if f == nil || f.Image == nil {
		return 0
	}
	return f.Image.Rect.Dx()
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	if f == nil || f.Image == nil {
		return 0
	}
	return f.Image.Rect.Dy()
}

// Bounds returns the frame rectangle in virtual coordinates.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(f.X, f.Y, f.X+f.Width(), f.Y+f.Height())
}

// IndexAt returns the palette index at frame-local (x, y).
func (f *Frame) IndexAt(x, y int) uint8 {
	r := f.Image.Rect
	return f.Image.ColorIndexAt(r.Min.X+x, r.Min.Y+y)
}

// Animation is a direction × frame grid of frames.
type Animation struct {
	// Frames is indexed [direction][frame].
	Frames [][]*Frame
	// Warnings collects non-fatal findings from decoding.
	Warnings []string
}

// NewAnimation allocates an empty grid.
func NewAnimation(directions, frames int) *Animation {
	grid := make([][]*Frame, directions)
	for d := range grid {
		grid[d] = make([]*Frame, frames)
	}
	return &Animation{Frames: grid}
}

// DirectionCount returns the number of directions.
func (a *Animation) DirectionCount() int {
	return len(a.Frames)
}

// FrameCount returns the number of frames per direction.
func (a *Animation) FrameCount() int {
	if len(a.Frames) == 0 {
		return 0
	}
	return len(a.Frames[0])
}

// Frame returns the frame at (direction, frame).
func (a *Animation) Frame(direction, frame int) *Frame {
	return a.Frames[direction][frame]
}

// SetFrame replaces the frame at (direction, frame).
func (a *Animation) SetFrame(direction, frame int, f *Frame) {
	a.Frames[direction][frame] = f
}
