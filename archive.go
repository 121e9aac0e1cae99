package dcc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// ArchiveMagic starts every frame archive.
	ArchiveMagic = "DCCA"
	// ArchiveVersion is the frame archive layout written by WriteArchive.
	ArchiveVersion = 1

	archiveHeaderSize = 16
	maxArchiveBody    = 1 << 30
)

// ArchiveOptions configures frame archive writing.
type ArchiveOptions struct {
	// Compression selects the body compression. The zero value stores the
	// body uncompressed.
	Compression Compression
}

// archiveHeader precedes the archive body.
type archiveHeader struct {
	Magic       [4]byte
	Version     uint8
	Compression Compression
	Reserved    uint16
	RawSize     uint32
	StoredSize  uint32
}

func (h *archiveHeader) writeTo(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteArchiveHeader, err)
	}
	return nil
}

// EncodeArchive serializes the frame grid of a (indices, offsets and
// optional data) into a frame archive.
func EncodeArchive(a *Animation, opts *ArchiveOptions) ([]byte, error) {
	if a == nil {
		return nil, ErrEmptyAnimation
	}

	body, err := marshalFrames(a)
	if err != nil {
		return nil, err
	}

	method := CompressionNone
	if opts != nil {
		method = opts.Compression
	}
	stored, method, err := compressBody(body, method)
	if err != nil {
		return nil, err
	}

	raw, err := u32FromInt(len(body))
	if err != nil {
		return nil, err
	}
	size, err := u32FromInt(len(stored))
	if err != nil {
		return nil, err
	}

	h := archiveHeader{Version: ArchiveVersion, Compression: method, RawSize: raw, StoredSize: size}
	copy(h.Magic[:], ArchiveMagic)

	var buf bytes.Buffer
	buf.Grow(archiveHeaderSize + len(stored))
	if err := h.writeTo(&buf); err != nil {
		return nil, err
	}
	buf.Write(stored)
	return buf.Bytes(), nil
}

// DecodeArchive restores an animation from a frame archive. Frame images use
// the colors of pal when it is not nil.
func DecodeArchive(data []byte, pal *Palette) (*Animation, error) {
	var h archiveHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrArchiveTruncated, err)
	}
	if string(h.Magic[:]) != ArchiveMagic {
		return nil, fmt.Errorf("%w: %q", ErrArchiveMagic, h.Magic[:])
	}
	if h.Version != ArchiveVersion {
		return nil, fmt.Errorf("%w: %d", ErrArchiveVersion, h.Version)
	}
	if h.RawSize > maxArchiveBody {
		return nil, fmt.Errorf("%w: body of %d bytes", ErrSizeOverflow, h.RawSize)
	}

	stored := data[archiveHeaderSize:]
	if uint64(len(stored)) < uint64(h.StoredSize) {
		return nil, fmt.Errorf("%w: body needs %d bytes, have %d", ErrArchiveTruncated, h.StoredSize, len(stored))
	}

	body, err := decompressBody(stored[:h.StoredSize], h.Compression, int(h.RawSize))
	if err != nil {
		return nil, err
	}

	return unmarshalFrames(body, pal)
}

// WriteArchive writes a frame archive to path.
func WriteArchive(a *Animation, path string, opts *ArchiveOptions) error {
	data, err := EncodeArchive(a, opts)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// ReadArchive reads a frame archive from path.
func ReadArchive(path string, pal *Palette) (*Animation, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeArchive(data, pal)
}

// frameRecord is the fixed part of one archived frame.
type frameRecord struct {
	X, Y          int32
	Width, Height uint32
	OptionalSize  uint32
}

func marshalFrames(a *Animation) ([]byte, error) {
	dirs, err := u32FromInt(a.DirectionCount())
	if err != nil {
		return nil, err
	}
	frames, err := u32FromInt(a.FrameCount())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint32{dirs, frames})
	for d, dir := range a.Frames {
		if len(dir) != a.FrameCount() {
			return nil, fmt.Errorf("%w: direction %d", ErrFrameCountMismatch, d)
		}
		for _, f := range dir {
			if err := marshalFrame(&buf, f); err != nil {
				return nil, fmt.Errorf("direction %d: %w", d, err)
			}
		}
	}
	return buf.Bytes(), nil
}

func marshalFrame(buf *bytes.Buffer, f *Frame) error {
	var rec frameRecord
	if f != nil {
		x, err := i32FromInt(f.X)
		if err != nil {
			return err
		}
		y, err := i32FromInt(f.Y)
		if err != nil {
			return err
		}
		rec = frameRecord{X: x, Y: y, Width: uint32(f.Width()), Height: uint32(f.Height()), OptionalSize: uint32(len(f.OptionalData))}
	}
	_ = binary.Write(buf, binary.LittleEndian, &rec)
	if f == nil {
		return nil
	}

	buf.Write(f.OptionalData)
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			buf.WriteByte(f.IndexAt(x, y))
		}
	}
	return nil
}

func unmarshalFrames(body []byte, pal *Palette) (*Animation, error) {
	r := bytes.NewReader(body)

	var counts [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &counts); err != nil {
		return nil, fmt.Errorf("%w: counts: %v", ErrArchiveTruncated, err)
	}
	// every frame needs at least a record
	if uint64(counts[0])*uint64(counts[1])*20 > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %dx%d frames in %d bytes", ErrArchiveTruncated, counts[0], counts[1], r.Len())
	}

	a := NewAnimation(int(counts[0]), int(counts[1]))
	for d := range a.Frames {
		for i := range a.Frames[d] {
			f, err := unmarshalFrame(r, pal)
			if err != nil {
				return nil, fmt.Errorf("direction %d frame %d: %w", d, i, err)
			}
			a.Frames[d][i] = f
		}
	}
	return a, nil
}

func unmarshalFrame(r *bytes.Reader, pal *Palette) (*Frame, error) {
	var rec frameRecord
	if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveTruncated, err)
	}

	need := uint64(rec.OptionalSize) + uint64(rec.Width)*uint64(rec.Height)
	if need > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: frame needs %d bytes, have %d", ErrArchiveTruncated, need, r.Len())
	}

	f := NewFrame(int(rec.Width), int(rec.Height), int(rec.X), int(rec.Y), pal)
	if rec.OptionalSize > 0 {
		f.OptionalData = make([]byte, rec.OptionalSize)
		_, _ = io.ReadFull(r, f.OptionalData)
	}
	_, _ = io.ReadFull(r, f.Image.Pix)
	return f, nil
}
