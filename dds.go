package dcc

import (
	"fmt"
	"image"
	"io"

	"github.com/woozymasta/bcn"
)

// maxDDSMipmaps caps the mip chain of exported DDS frames.
const maxDDSMipmaps = 11

// writeDDS encodes img as a DDS file with up to mipmaps levels (0 means the
// full chain).
func writeDDS(w io.Writer, img image.Image, format bcn.Format, mipmaps int) error {
	if format == bcn.FormatUnknown {
		format = bcn.FormatBGRA8
	}

	bounds := img.Bounds()
	count, err := mipMapCount(bounds.Dx(), bounds.Dy())
	if err != nil {
		return err
	}
	if mipmaps > 0 && mipmaps < count {
		count = mipmaps
	}

	levels := []image.Image{img}
	if count > 1 {
		levels = levels[:0]
		for _, level := range bcn.GenerateMipmaps(img, false) {
			if len(levels) == count {
				break
			}
			levels = append(levels, level)
		}
	}

	w32, err := u32FromInt(bounds.Dx())
	if err != nil {
		return err
	}
	h32, err := u32FromInt(bounds.Dy())
	if err != nil {
		return err
	}
	n32, err := u32FromInt(len(levels))
	if err != nil {
		return err
	}
	header, err := makeDDSHeader(w32, h32, n32, format)
	if err != nil {
		return err
	}

	if err := bcn.WriteDDSMagic(w); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDDSHeader, err)
	}
	if err := bcn.WriteDDSHeader(w, header); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDDSHeader, err)
	}

	for i, level := range levels {
		data, _, _, err := bcn.EncodeImageWithOptions(level, format, nil)
		if err != nil {
			return fmt.Errorf("%w: mipmap %d: %v", ErrEncodeImage, i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("%w: mipmap %d: %v", ErrWriteFile, i, err)
		}
	}
	return nil
}

// readDDS decodes the largest level of a DDS file.
func readDDS(r io.Reader) (image.Image, error) {
	header, err := bcn.ReadDDSHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDDSHeaderRead, err)
	}
	dx10, err := bcn.ReadDDSHeaderDX10(r, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDDSDX10Read, err)
	}

	format, name := detectFormat(header, dx10)
	width, height := int(header.Width), int(header.Height)
	if width > maxFrameSide || height > maxFrameSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrSizeOverflow, width, height)
	}
	size := expectedDataLength(format, width, height)
	if size <= 0 {
		return nil, fmt.Errorf("%w: DDS %s", ErrUnknownImageFormat, name)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: expected %d bytes: %v", ErrDDSDataSize, size, err)
	}

	img, err := bcn.DecodeImageWithOptions(data, width, height, format, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}
	return img, nil
}

// detectFormat maps a DDS pixel format to a bcn format and a display name.
func detectFormat(header *bcn.DDSHeader, dx10 *bcn.DDSHeaderDX10) (bcn.Format, string) {
	if dx10 != nil {
		return dxgiFormat(dx10.DXGIFormat), fmt.Sprintf("DXGI %d", dx10.DXGIFormat)
	}

	pf := header.PixelFormat
	if pf.Flags&bcn.DDSPFFourCC != 0 {
		code := fourCCString(pf.FourCC)
		switch code {
		case "DXT1":
			return bcn.FormatDXT1, code
		case "DXT2", "DXT3":
			return bcn.FormatDXT3, code
		case "DXT4", "DXT5":
			return bcn.FormatDXT5, code
		case "ATI1", "BC4U", "BC4S":
			return bcn.FormatBC4, code
		case "ATI2", "BC5U", "BC5S":
			return bcn.FormatBC5, code
		default:
			return bcn.FormatUnknown, code
		}
	}

	if pf.Flags&bcn.DDSPFRGB != 0 && pf.Flags&bcn.DDSPFAlphaPixels != 0 && pf.RGBBitCount == 32 {
		switch {
		case pf.RBitMask == 0x000000ff && pf.BBitMask == 0x00ff0000:
			return bcn.FormatRGBA8, "RGBA8"
		case pf.RBitMask == 0x00ff0000 && pf.BBitMask == 0x000000ff:
			return bcn.FormatBGRA8, "BGRA8"
		}
	}

	return bcn.FormatUnknown, "UNKNOWN"
}

func dxgiFormat(v uint32) bcn.Format {
	switch v {
	case 71:
		return bcn.FormatDXT1
	case 74:
		return bcn.FormatDXT3
	case 77:
		return bcn.FormatDXT5
	case 80:
		return bcn.FormatBC4
	case 83:
		return bcn.FormatBC5
	case 87:
		return bcn.FormatBGRA8
	case 28:
		return bcn.FormatRGBA8
	default:
		return bcn.FormatUnknown
	}
}

func fourCCString(v uint32) string {
	return string([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func fourCC(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
}

// expectedDataLength returns the payload size of one level, or -1 for
// unsupported formats.
func expectedDataLength(format bcn.Format, width, height int) int {
	blocks := ((width + 3) / 4) * ((height + 3) / 4)
	switch format {
	case bcn.FormatDXT1, bcn.FormatBC4:
		return blocks * 8
	case bcn.FormatDXT3, bcn.FormatDXT5, bcn.FormatBC5:
		return blocks * 16
	case bcn.FormatRGBA8, bcn.FormatBGRA8:
		return width * height * 4
	default:
		return -1
	}
}

func makeDDSHeader(width, height, mipmaps uint32, format bcn.Format) (*bcn.DDSHeader, error) {
	hdr := &bcn.DDSHeader{
		Size:        bcn.DDSHeaderSize,
		Flags:       bcn.DDSFlagCaps | bcn.DDSFlagHeight | bcn.DDSFlagWidth | bcn.DDSFlagPixelFormat,
		Height:      height,
		Width:       width,
		Depth:       1,
		MipMapCount: mipmaps,
		Caps:        bcn.DDSCapsTexture,
	}
	if mipmaps > 1 {
		hdr.Flags |= bcn.DDSFlagMipmapCount
		hdr.Caps |= bcn.DDSCapsComplex | bcn.DDSCapsMipmap
	}
	hdr.PixelFormat.Size = bcn.DDSPixelFormatSize

	compressed := map[bcn.Format]string{
		bcn.FormatDXT1: "DXT1",
		bcn.FormatDXT3: "DXT3",
		bcn.FormatDXT5: "DXT5",
		bcn.FormatBC4:  "ATI1",
		bcn.FormatBC5:  "ATI2",
	}
	if cc, ok := compressed[format]; ok {
		hdr.Flags |= bcn.DDSFlagLinearSize
		hdr.PixelFormat.Flags = bcn.DDSPFFourCC
		hdr.PixelFormat.FourCC = fourCC(cc)
		hdr.PitchOrLinearSize = uint32(expectedDataLength(format, int(width), int(height)))
		return hdr, nil
	}

	hdr.Flags |= bcn.DDSFlagPitch
	hdr.PixelFormat.Flags = bcn.DDSPFRGB | bcn.DDSPFAlphaPixels
	hdr.PixelFormat.RGBBitCount = 32
	hdr.PixelFormat.GBitMask = 0x0000ff00
	hdr.PixelFormat.ABitMask = 0xff000000
	hdr.PitchOrLinearSize = width * 4
	switch format {
	case bcn.FormatRGBA8:
		hdr.PixelFormat.RBitMask = 0x000000ff
		hdr.PixelFormat.BBitMask = 0x00ff0000
	case bcn.FormatBGRA8:
		hdr.PixelFormat.RBitMask = 0x00ff0000
		hdr.PixelFormat.BBitMask = 0x000000ff
	default:
		return nil, fmt.Errorf("%w: DDS %s", ErrUnknownImageFormat, format)
	}
	return hdr, nil
}

// mipMapCount returns the number of levels in a full mip chain.
func mipMapCount(width, height int) (int, error) {
	w, err := u32FromInt(width)
	if err != nil {
		return 0, err
	}
	h, err := u32FromInt(height)
	if err != nil {
		return 0, err
	}

	count := 1
	for w > 1 || h > 1 {
		count++
		w = max(w/2, 1)
		h = max(h/2, 1)
	}
	return min(count, maxDDSMipmaps), nil
}
