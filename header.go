package dcc

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/woozymasta/dcc/internal/bitio"
)

const (
	// Signature is the first byte of every DCC file.
	Signature = 0x74
	// Version is the format version written by the encoder.
	Version = 6
	// Magic is the constant stored after the frame count.
	Magic = 1

	// MaxDirections is the most directions the header can describe.
	MaxDirections = 255
	// RecommendedMaxDirections is the engine's supported direction count.
	RecommendedMaxDirections = 32
	// RecommendedMaxFrames is the engine's supported frames per direction.
	RecommendedMaxFrames = 256

	headerSize      = 15
	frameHeaderHint = 35

	// decoder limits for hostile input
	maxFrameSide    = 1 << 15
	maxBufferPixels = 1 << 26
	maxFrameCount   = 1 << 20
)

// Header is the fixed container header of a DCC file.
type Header struct {
	Signature  uint8
	Version    uint8
	Directions int
	Frames     int
	Magic      uint32
	// SizeHint is the total size the engine uses to preallocate buffers.
	SizeHint uint32
	// Offsets holds the absolute byte offset of every direction.
	Offsets []uint32
}

// DecodeHeader parses the container header and offset table of data
// without decoding any direction.
func DecodeHeader(data []byte) (*Header, error) {
	if len(data) < 1 || data[0] != Signature {
		return nil, ErrInvalidSignature
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedHeader, len(data))
	}

	h := &Header{
		Signature:  data[0],
		Version:    data[1],
		Directions: int(data[2]),
		Frames:     int(binary.LittleEndian.Uint32(data[3:7])),
		Magic:      binary.LittleEndian.Uint32(data[7:11]),
		SizeHint:   binary.LittleEndian.Uint32(data[11:15]),
	}
	if h.Frames < 0 || h.Frames > maxFrameCount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameCount, h.Frames)
	}

	tableEnd := headerSize + 4*h.Directions
	if len(data) < tableEnd {
		return nil, fmt.Errorf("%w: offset table needs %d bytes, have %d", ErrTruncatedHeader, tableEnd, len(data))
	}

	h.Offsets = make([]uint32, h.Directions)
	for d := range h.Offsets {
		off := binary.LittleEndian.Uint32(data[headerSize+4*d:])
		if int64(off) < int64(tableEnd) || int64(off) >= int64(len(data)) {
			return nil, fmt.Errorf("%w: direction %d at %d", ErrInvalidOffset, d, off)
		}
		h.Offsets[d] = off
	}

	return h, nil
}

// warnings returns the soft findings about the header fields.
func (h *Header) warnings() []string {
	var out []string
	if h.Version != Version {
		out = append(out, fmt.Sprintf("header: version %d, expected %d", h.Version, Version))
	}
	if h.Directions > RecommendedMaxDirections {
		out = append(out, fmt.Sprintf("header: %d directions exceeds the supported %d", h.Directions, RecommendedMaxDirections))
	}
	if h.Frames > RecommendedMaxFrames {
		out = append(out, fmt.Sprintf("header: %d frames per direction exceeds the supported %d", h.Frames, RecommendedMaxFrames))
	}
	if h.Magic != Magic {
		out = append(out, fmt.Sprintf("header: magic %d, expected %d", h.Magic, Magic))
	}
	return out
}

// appendTo serializes the header and offset table.
func (h *Header) appendTo(buf []byte) []byte {
	buf = append(buf, h.Signature, h.Version, byte(h.Directions))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.Frames))
	buf = binary.LittleEndian.AppendUint32(buf, h.Magic)
	buf = binary.LittleEndian.AppendUint32(buf, h.SizeHint)
	for _, off := range h.Offsets {
		buf = binary.LittleEndian.AppendUint32(buf, off)
	}
	return buf
}

// Direction header field indices.
const (
	fieldReserved = iota
	fieldWidth
	fieldHeight
	fieldX
	fieldY
	fieldOptional
	fieldCodedBytes
	fieldCount
)

// frameHeader describes one frame of a direction. Y is the top edge; the
// bottom-edge wire convention is applied on read and write.
type frameHeader struct {
	width, height int
	x, y          int
	codedBytes    uint32
	bottomUp      bool
	optional      []byte
}

func (f *frameHeader) rect() image.Rectangle {
	return image.Rect(f.x, f.y, f.x+f.width, f.y+f.height)
}

// directionHeader is everything a direction stores before its cell streams.
type directionHeader struct {
	sizeHint   uint32
	rawStreams bool // encoding-type and raw pixel streams present
	equalCells bool // equal-cells stream present
	codes      [fieldCount]uint32
	frames     []frameHeader
}

// readDirectionHeader parses a direction header with n frames. Non-fatal
// findings are passed to warn.
func readDirectionHeader(r *bitio.Reader, n int, warn func(string)) (*directionHeader, error) {
	h := &directionHeader{frames: make([]frameHeader, n)}

	var err error
	if h.sizeHint, err = r.ReadBits(32); err != nil {
		return nil, err
	}
	if h.rawStreams, err = r.ReadBit(); err != nil {
		return nil, err
	}
	if h.equalCells, err = r.ReadBit(); err != nil {
		return nil, err
	}
	for i := range h.codes {
		if h.codes[i], err = r.ReadBits(4); err != nil {
			return nil, err
		}
	}

	width := func(field int) int { return bitWidth(h.codes[field]) }
	optional := make([]int, n)
	anyOptional := false
	for i := range h.frames {
		f := &h.frames[i]

		reserved, err := r.ReadBits(width(fieldReserved))
		if err != nil {
			return nil, err
		}
		if reserved != 0 {
			warn(fmt.Sprintf("frame %d: reserved field is %d", i, reserved))
		}

		w, err := r.ReadBits(width(fieldWidth))
		if err != nil {
			return nil, err
		}
		hgt, err := r.ReadBits(width(fieldHeight))
		if err != nil {
			return nil, err
		}
		x, err := r.ReadSigned(width(fieldX))
		if err != nil {
			return nil, err
		}
		y, err := r.ReadSigned(width(fieldY))
		if err != nil {
			return nil, err
		}
		opt, err := r.ReadBits(width(fieldOptional))
		if err != nil {
			return nil, err
		}
		if f.codedBytes, err = r.ReadBits(width(fieldCodedBytes)); err != nil {
			return nil, err
		}
		if f.bottomUp, err = r.ReadBit(); err != nil {
			return nil, err
		}

		if w > maxFrameSide || hgt > maxFrameSide {
			return nil, fmt.Errorf("%w: frame %d is %dx%d", ErrInvalidFrameHeader, i, w, hgt)
		}
		f.width, f.height = int(w), int(hgt)
		f.x, f.y = int(x), int(y)
		if !f.bottomUp {
			f.y = f.y - f.height + 1
		}
		optional[i] = int(opt)
		anyOptional = anyOptional || opt > 0
	}

	if anyOptional {
		r.Align()
		for i := range h.frames {
			if optional[i] == 0 {
				continue
			}
			if h.frames[i].optional, err = r.ReadBytes(optional[i]); err != nil {
				return nil, err
			}
		}
	}

	return h, nil
}

// write serializes the header. Frames are always stored top-down.
func (h *directionHeader) write(w *bitio.Writer) {
	w.WriteBits(h.sizeHint, 32)
	w.WriteBit(h.rawStreams)
	w.WriteBit(h.equalCells)
	for _, c := range h.codes {
		w.WriteBits(c, 4)
	}

	width := func(field int) int { return bitWidth(h.codes[field]) }
	anyOptional := false
	for i := range h.frames {
		f := &h.frames[i]
		w.WriteBits(0, width(fieldReserved))
		w.WriteBits(uint32(f.width), width(fieldWidth))
		w.WriteBits(uint32(f.height), width(fieldHeight))
		w.WriteSigned(int32(f.x), width(fieldX))
		w.WriteSigned(int32(f.y+f.height-1), width(fieldY))
		w.WriteBits(uint32(len(f.optional)), width(fieldOptional))
		w.WriteBits(f.codedBytes, width(fieldCodedBytes))
		w.WriteBit(false)
		anyOptional = anyOptional || len(f.optional) > 0
	}

	if anyOptional {
		w.Align()
		for i := range h.frames {
			w.WriteBytes(h.frames[i].optional)
		}
	}
}

// newDirectionHeader describes frames for encoding and picks the narrowest
// size code for every field. Frames must have passed validation.
func newDirectionHeader(frames []*Frame, t uint8) *directionHeader {
	h := &directionHeader{frames: make([]frameHeader, len(frames))}

	var hint uint32
	for i, fr := range frames {
		f := &h.frames[i]
		f.width, f.height = fr.Width(), fr.Height()
		f.x, f.y = fr.X, fr.Y
		f.optional = fr.OptionalData
		f.codedBytes = uint32(dc6FrameSize(fr, t))
		hint += f.codedBytes + frameHeaderHint

		h.codes[fieldWidth] = max(h.codes[fieldWidth], fieldCode(int64(f.width), false))
		h.codes[fieldHeight] = max(h.codes[fieldHeight], fieldCode(int64(f.height), false))
		h.codes[fieldX] = max(h.codes[fieldX], fieldCode(int64(f.x), true))
		h.codes[fieldY] = max(h.codes[fieldY], fieldCode(int64(f.y+f.height-1), true))
		h.codes[fieldOptional] = max(h.codes[fieldOptional], fieldCode(int64(len(f.optional)), false))
		h.codes[fieldCodedBytes] = max(h.codes[fieldCodedBytes], fieldCode(int64(f.codedBytes), false))
	}
	h.sizeHint = hint
	return h
}
