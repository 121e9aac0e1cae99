package dcc

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/bcn"
	"github.com/xfmoulet/qoi"
)

// ImageFormat selects the file format of an exported frame.
type ImageFormat int

const (
	// ImagePNG writes paletted PNG images.
	ImagePNG ImageFormat = iota
	// ImageQOI writes RGBA QOI images.
	ImageQOI
	// ImageDDS writes DDS textures.
	ImageDDS
)

// String returns the lower-case format name, which is also its extension.
func (f ImageFormat) String() string {
	switch f {
	case ImagePNG:
		return "png"
	case ImageQOI:
		return "qoi"
	case ImageDDS:
		return "dds"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseImageFormat maps a name or file extension to an ImageFormat.
func ParseImageFormat(name string) (ImageFormat, error) {
	name = strings.ToLower(strings.TrimPrefix(name, "."))
	for f := ImagePNG; f <= ImageDDS; f++ {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownImageFormat, name)
}

// ExportOptions configures frame image export.
type ExportOptions struct {
	// Format selects the image format.
	Format ImageFormat
	// DDSFormat is the DDS pixel format. FormatUnknown means BGRA8.
	DDSFormat bcn.Format
	// Mipmaps limits the DDS mip chain. 0 writes the base level only.
	Mipmaps int
}

// FrameImage renders a frame with the palette colors; the transparent index
// becomes fully transparent.
func FrameImage(f *Frame, pal *Palette) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width(), f.Height()))
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			c := pal.RGBA(f.IndexAt(x, y))
			img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
		}
	}
	return img
}

// EncodeFrame writes a frame image to w.
func EncodeFrame(w io.Writer, f *Frame, pal *Palette, opts *ExportOptions) error {
	if pal == nil {
		return ErrNilPalette
	}
	if opts == nil {
		opts = &ExportOptions{}
	}

	var err error
	switch opts.Format {
	case ImagePNG:
		img := image.NewPaletted(image.Rect(0, 0, f.Width(), f.Height()), pal.Model())
		for y := 0; y < f.Height(); y++ {
			for x := 0; x < f.Width(); x++ {
				img.SetColorIndex(x, y, f.IndexAt(x, y))
			}
		}
		err = png.Encode(w, img)
	case ImageQOI:
		err = qoi.Encode(w, FrameImage(f, pal))
	case ImageDDS:
		mipmaps := opts.Mipmaps
		if mipmaps == 0 {
			mipmaps = 1
		}
		err = writeDDS(w, FrameImage(f, pal), opts.DDSFormat, mipmaps)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownImageFormat, opts.Format)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncodeImage, opts.Format, err)
	}
	return nil
}

// DecodeFrame reads a frame image from r and maps its colors onto pal.
// Paletted images whose colors match pal keep their indices.
func DecodeFrame(r io.Reader, format ImageFormat, pal *Palette) (*image.Paletted, error) {
	if pal == nil {
		return nil, ErrNilPalette
	}

	var img image.Image
	var err error
	switch format {
	case ImagePNG:
		img, err = png.Decode(r)
	case ImageQOI:
		img, err = qoi.Decode(r)
	case ImageDDS:
		img, err = readDDS(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownImageFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeImage, format, err)
	}

	return toPaletted(img, pal), nil
}

// toPaletted converts img to palette indices anchored at (0,0).
func toPaletted(img image.Image, pal *Palette) *image.Paletted {
	b := img.Bounds()
	out := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal.Model())

	if p, ok := img.(*image.Paletted); ok && samePalette(p.Palette, pal) {
		for y := 0; y < b.Dy(); y++ {
			copy(out.Pix[y*out.Stride:(y+1)*out.Stride], p.Pix[p.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return out
	}

	cache := make(map[color.Color]uint8)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			i, ok := cache[c]
			if !ok {
				i = pal.Index(c)
				cache[c] = i
			}
			out.SetColorIndex(x, y, i)
		}
	}
	return out
}

func samePalette(p color.Palette, pal *Palette) bool {
	if len(p) != len(pal.Colors) {
		return false
	}
	for i, c := range p {
		want := pal.RGBA(uint8(i))
		got := color.RGBAModel.Convert(c).(color.RGBA)
		if got != want {
			return false
		}
	}
	return true
}

// ExportFrame writes a frame image to path.
func ExportFrame(path string, f *Frame, pal *Palette, opts *ExportOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrCreateFile, path, err)
	}

	if err := EncodeFrame(file, f, pal, opts); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrWriteFile, path, err)
	}
	return nil
}

// ImportFrame reads a frame image from path; the format follows the file
// extension. The frame is placed at (x, y).
func ImportFrame(path string, x, y int, pal *Palette) (*Frame, error) {
	format, err := ParseImageFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = file.Close() }()

	img, err := DecodeFrame(file, format, pal)
	if err != nil {
		return nil, err
	}
	return &Frame{Image: img, X: x, Y: y}, nil
}
