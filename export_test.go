package dcc

import (
	"bytes"
	"errors"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/woozymasta/bcn"
)

func exportTestFrame(pal *Palette) *Frame {
	f := NewFrame(8, 8, -4, -7, pal)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if (x+y)%3 != 0 {
				f.Image.SetColorIndex(x, y, uint8(20+x*8+y))
			}
		}
	}
	return f
}

func assertSameIndices(t *testing.T, want *Frame, got *Frame) {
	t.Helper()

	if got.Width() != want.Width() || got.Height() != want.Height() {
		t.Fatalf("size %dx%d, want %dx%d", got.Width(), got.Height(), want.Width(), want.Height())
	}
	for y := 0; y < want.Height(); y++ {
		for x := 0; x < want.Width(); x++ {
			if g, w := got.IndexAt(x, y), want.IndexAt(x, y); g != w {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, g, w)
			}
		}
	}
}

func TestEncodeDecodeFrame(t *testing.T) {
	t.Parallel()

	pal := DefaultPalette()
	src := exportTestFrame(pal)

	tests := []struct {
		name string
		opts *ExportOptions
	}{
		{name: "png", opts: &ExportOptions{Format: ImagePNG}},
		{name: "qoi", opts: &ExportOptions{Format: ImageQOI}},
		{name: "dds bgra8", opts: &ExportOptions{Format: ImageDDS, DDSFormat: bcn.FormatBGRA8}},
		{name: "dds unknown", opts: &ExportOptions{Format: ImageDDS, DDSFormat: bcn.FormatUnknown}},
		{name: "dds mipmaps", opts: &ExportOptions{Format: ImageDDS, DDSFormat: bcn.FormatBGRA8, Mipmaps: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := EncodeFrame(&buf, src, pal, tt.opts); err != nil {
				t.Fatalf("EncodeFrame: %v", err)
			}
			img, err := DecodeFrame(&buf, tt.opts.Format, pal)
			if err != nil {
				t.Fatalf("DecodeFrame: %v", err)
			}
			assertSameIndices(t, src, &Frame{Image: img})
		})
	}
}

func TestEncodeFrame_DXT5(t *testing.T) {
	t.Parallel()

	pal := DefaultPalette()
	var buf bytes.Buffer
	if err := EncodeFrame(&buf, exportTestFrame(pal), pal, &ExportOptions{Format: ImageDDS, DDSFormat: bcn.FormatDXT5}); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	img, err := DecodeFrame(&buf, ImageDDS, pal)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if img.Rect.Dx() != 8 || img.Rect.Dy() != 8 {
		t.Fatalf("decoded %v", img.Rect)
	}
}

func TestFrameImage(t *testing.T) {
	t.Parallel()

	pal := DefaultPalette()
	f := NewFrame(2, 1, 0, 0, pal)
	f.Image.SetColorIndex(1, 0, 200)

	img := FrameImage(f, pal)
	if c := img.NRGBAAt(0, 0); c.A != 0 {
		t.Fatalf("transparent pixel rendered as %v", c)
	}
	if c := img.NRGBAAt(1, 0); c != (color.NRGBA{R: 200, G: 200, B: 200, A: 255}) {
		t.Fatalf("pixel rendered as %v", c)
	}
}

func TestExportImportFrame(t *testing.T) {
	t.Parallel()

	pal := DefaultPalette()
	src := exportTestFrame(pal)
	dir := t.TempDir()

	for _, format := range []ImageFormat{ImagePNG, ImageQOI, ImageDDS} {
		path := filepath.Join(dir, "frame."+format.String())
		if err := ExportFrame(path, src, pal, &ExportOptions{Format: format, DDSFormat: bcn.FormatBGRA8}); err != nil {
			t.Fatalf("%s: ExportFrame: %v", format, err)
		}
		got, err := ImportFrame(path, src.X, src.Y, pal)
		if err != nil {
			t.Fatalf("%s: ImportFrame: %v", format, err)
		}
		if got.Bounds() != src.Bounds() {
			t.Fatalf("%s: bounds %v, want %v", format, got.Bounds(), src.Bounds())
		}
		assertSameIndices(t, src, got)
	}

	if _, err := ImportFrame(filepath.Join(dir, "frame.gif"), 0, 0, pal); !errors.Is(err, ErrUnknownImageFormat) {
		t.Fatalf("ImportFrame(gif) error = %v", err)
	}
}

func TestParseImageFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want ImageFormat
	}{
		{in: "png", want: ImagePNG},
		{in: ".PNG", want: ImagePNG},
		{in: "qoi", want: ImageQOI},
		{in: ".dds", want: ImageDDS},
	}
	for _, tt := range tests {
		got, err := ParseImageFormat(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("ParseImageFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseImageFormat("bmp"); !errors.Is(err, ErrUnknownImageFormat) {
		t.Fatalf("ParseImageFormat(bmp) error = %v", err)
	}
}

func TestLoadPalette(t *testing.T) {
	t.Parallel()

	raw := make([]byte, PaletteDatSize)
	for i := 0; i < 256; i++ {
		raw[i*3] = byte(i)       // blue
		raw[i*3+1] = byte(i / 2) // green
		raw[i*3+2] = 255 - byte(i)
	}

	pal, err := LoadPalette(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	if pal.TransparentIndex() != 0 {
		t.Fatalf("transparent index %d", pal.TransparentIndex())
	}
	if c := pal.RGBA(10); c != (color.RGBA{R: 245, G: 5, B: 10, A: 255}) {
		t.Fatalf("RGBA(10) = %v", c)
	}
	if c := pal.RGBA(0); c.A != 0 {
		t.Fatalf("transparent entry %v", c)
	}
	if i := pal.Index(color.RGBA{R: 245, G: 5, B: 10, A: 255}); i != 10 {
		t.Fatalf("Index exact = %d", i)
	}
	if i := pal.Index(color.RGBA{R: 246, G: 5, B: 10, A: 255}); i != 10 {
		t.Fatalf("Index nearest = %d", i)
	}
	if i := pal.Index(color.NRGBA{R: 9, A: 0}); i != 0 {
		t.Fatalf("Index clear = %d", i)
	}

	if _, err := LoadPalette(bytes.NewReader(raw[:100])); !errors.Is(err, ErrReadPalette) {
		t.Fatalf("short palette error = %v", err)
	}
	if _, err := ReadPalette(filepath.Join(t.TempDir(), "none.dat")); !errors.Is(err, ErrOpenFile) {
		t.Fatalf("ReadPalette missing error = %v", err)
	}
}
