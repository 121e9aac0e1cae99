package dcc

import (
	"fmt"
	"os"
	"sync"
)

// EncodeOptions configures DCC encoding.
type EncodeOptions struct {
	// Progress receives one unit per dithered direction and one per encoded
	// variant.
	Progress ProgressFunc
	// Variants restricts the stream variants tried per direction.
	// Empty means AllVariants.
	Variants []Variant
	// Parallel encodes directions and their variants concurrently.
	// Output is identical to a sequential run.
	Parallel bool
}

// Encode encodes an animation into a DCC file, trying every variant per
// direction and keeping the smallest.
func Encode(a *Animation, pal *Palette) ([]byte, error) {
	return EncodeWithOptions(a, pal, nil)
}

// EncodeWithOptions encodes an animation with the given options.
// Nil opts uses defaults.
func EncodeWithOptions(a *Animation, pal *Palette, opts *EncodeOptions) ([]byte, error) {
	if err := validateAnimation(a, pal); err != nil {
		return nil, err
	}

	variants := AllVariants
	var fn ProgressFunc
	parallel := false
	if opts != nil {
		if len(opts.Variants) > 0 {
			variants = opts.Variants
		}
		fn = opts.Progress
		parallel = opts.Parallel
	}

	dirs := a.DirectionCount()
	frames := a.FrameCount()
	prog := newProgress(fn, dirs*(len(variants)+1))

	type result struct {
		data []byte
		hint uint32
		err  error
	}
	results := make([]result, dirs)
	encodeOne := func(d int) {
		r := &results[d]
		r.data, r.hint, r.err = encodeDirection(a.Frames[d], pal, variants, parallel, prog)
	}
	runAll(dirs, parallel, encodeOne)

	h := &Header{
		Signature:  Signature,
		Version:    Version,
		Directions: dirs,
		Frames:     frames,
		Magic:      Magic,
		Offsets:    make([]uint32, dirs),
	}

	offset := headerSize + 4*dirs
	total := 24 + 4*dirs*frames
	for d, r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("%w: direction %d: %w", ErrEncodeDirection, d, r.err)
		}
		off, err := u32FromInt(offset)
		if err != nil {
			return nil, err
		}
		h.Offsets[d] = off
		offset += len(r.data)
		total += int(r.hint)
	}

	hint, err := u32FromInt(total)
	if err != nil {
		return nil, err
	}
	h.SizeHint = hint

	out := h.appendTo(make([]byte, 0, offset))
	for _, r := range results {
		out = append(out, r.data...)
	}
	return out, nil
}

// encodeDirection dithers a direction once, encodes it with every variant
// and returns the smallest result with its size hint. Ties go to the
// earlier variant.
func encodeDirection(frames []*Frame, pal *Palette, variants []Variant, parallel bool, prog *progress) ([]byte, uint32, error) {
	t := pal.TransparentIndex()
	cache := ditherDirection(frames, pal)
	hdr := newDirectionHeader(frames, t)
	prog.step()

	outs := make([][]byte, len(variants))
	errs := make([]error, len(variants))
	runAll(len(variants), parallel, func(i int) {
		outs[i], errs[i] = encodeDirectionVariant(hdr, cache, variants[i], t)
		prog.step()
	})

	best := -1
	var firstErr error
	for i := range variants {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("variant %s: %w", variants[i], errs[i])
			}
			continue
		}
		if best < 0 || len(outs[i]) < len(outs[best]) {
			best = i
		}
	}
	if best < 0 {
		return nil, 0, firstErr
	}
	return outs[best], hdr.sizeHint, nil
}

// runAll calls fn for 0..n-1, concurrently when parallel is set.
func runAll(n int, parallel bool, fn func(int)) {
	if !parallel {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(i)
		}()
	}
	wg.Wait()
}

// validateAnimation rejects animations the format cannot represent.
func validateAnimation(a *Animation, pal *Palette) error {
	if pal == nil {
		return ErrNilPalette
	}
	if pal.TransparentIndex() != 0 {
		return fmt.Errorf("%w: got %d", ErrTransparentIndex, pal.TransparentIndex())
	}
	if a == nil || a.DirectionCount() == 0 || a.FrameCount() == 0 {
		return ErrEmptyAnimation
	}
	// the header stores the direction count in one byte
	if _, err := u8FromInt(a.DirectionCount()); err != nil {
		return fmt.Errorf("%w: %d > %d", ErrTooManyDirections, a.DirectionCount(), MaxDirections)
	}
	if _, err := u32FromInt(a.FrameCount()); err != nil {
		return fmt.Errorf("%w: %d frames", err, a.FrameCount())
	}

	frames := a.FrameCount()
	for d, dir := range a.Frames {
		if len(dir) != frames {
			return fmt.Errorf("%w: direction %d has %d frames, want %d", ErrFrameCountMismatch, d, len(dir), frames)
		}
		for i, f := range dir {
			if f.Width() == 0 || f.Height() == 0 {
				return fmt.Errorf("%w: direction %d frame %d", ErrEmptyFrame, d, i)
			}
			if err := checkFrameRange(f); err != nil {
				return fmt.Errorf("direction %d frame %d: %w", d, i, err)
			}
		}
	}
	return nil
}

// checkFrameRange verifies that a frame's header fields fit 32 bits.
func checkFrameRange(f *Frame) error {
	for _, v := range []int{f.X, f.Y, f.Y + f.Height() - 1, f.X + f.Width(), f.Y + f.Height()} {
		if _, err := i32FromInt(v); err != nil {
			return err
		}
	}
	if _, err := u32FromInt(len(f.OptionalData)); err != nil {
		return err
	}
	return nil
}

// Write encodes an animation and writes it to path.
func Write(a *Animation, path string, pal *Palette) error {
	return WriteWithOptions(a, path, pal, nil)
}

// WriteWithOptions encodes an animation with options and writes it to path.
// Nothing is written when encoding fails.
func WriteWithOptions(a *Animation, path string, pal *Palette, opts *EncodeOptions) error {
	data, err := EncodeWithOptions(a, pal, opts)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrCreateFile, path, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %q: %v", ErrWriteFile, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrWriteFile, path, err)
	}
	return nil
}
