package dcc

import (
	"fmt"
	"io"
	"os"
)

// DecodeOptions configures DCC decoding.
type DecodeOptions struct {
	// Progress receives one unit per decoded direction.
	Progress ProgressFunc
}

// Decode decodes a DCC file held in data.
func Decode(data []byte, pal *Palette) (*Animation, error) {
	return DecodeWithOptions(data, pal, nil)
}

// DecodeWithOptions decodes a DCC file with the given options.
// Nil opts uses defaults. Header mismatches that do not prevent decoding are
// reported in Animation.Warnings.
func DecodeWithOptions(data []byte, pal *Palette, opts *DecodeOptions) (*Animation, error) {
	if pal == nil {
		return nil, ErrNilPalette
	}

	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	var fn ProgressFunc
	if opts != nil {
		fn = opts.Progress
	}
	prog := newProgress(fn, h.Directions)

	anim := NewAnimation(h.Directions, h.Frames)
	anim.Warnings = h.warnings()
	for d, off := range h.Offsets {
		warn := func(msg string) {
			anim.Warnings = append(anim.Warnings, fmt.Sprintf("direction %d %s", d, msg))
		}

		frames, err := decodeDirection(data[off:], h.Frames, pal, warn)
		if err != nil {
			return nil, fmt.Errorf("%w: direction %d: %w", ErrDecodeDirection, d, err)
		}
		anim.Frames[d] = frames
		prog.step()
	}

	return anim, nil
}

// ReadHeader reads only the container header of a DCC file.
func ReadHeader(path string) (*Header, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeHeader(data)
}

// Read reads and decodes a DCC file.
func Read(path string, pal *Palette) (*Animation, error) {
	return ReadWithOptions(path, pal, nil)
}

// ReadWithOptions reads and decodes a DCC file with the given options.
func ReadWithOptions(path string, pal *Palette, opts *DecodeOptions) (*Animation, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeWithOptions(data, pal, opts)
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrReadFile, path, err)
	}
	return data, nil
}
