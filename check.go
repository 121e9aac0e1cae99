package dcc

import "fmt"

// Severity grades an Advisory.
type Severity int

const (
	// SeverityWarning marks output the engine may reject or mishandle.
	SeverityWarning Severity = iota
	// SeverityFatal marks input the encoder cannot represent.
	SeverityFatal
)

// String returns "warning" or "fatal".
func (s Severity) String() string {
	if s == SeverityFatal {
		return "fatal"
	}
	return "warning"
}

// Advisory is one finding of Check.
type Advisory struct {
	Severity Severity
	Message  string
}

// String formats the advisory as "severity: message".
func (a Advisory) String() string {
	return a.Severity.String() + ": " + a.Message
}

// Check reports engine limits an animation exceeds and conditions Encode
// would reject. It never modifies a; the caller decides whether to encode.
func Check(a *Animation, pal *Palette) []Advisory {
	var out []Advisory
	add := func(s Severity, format string, args ...any) {
		out = append(out, Advisory{Severity: s, Message: fmt.Sprintf(format, args...)})
	}

	switch {
	case pal == nil:
		add(SeverityFatal, "no palette")
	case pal.TransparentIndex() != 0:
		add(SeverityFatal, "transparent index is %d, the format requires 0", pal.TransparentIndex())
	}

	if a == nil || a.DirectionCount() == 0 || a.FrameCount() == 0 {
		add(SeverityFatal, "animation has no frames")
		return out
	}

	dirs, frames := a.DirectionCount(), a.FrameCount()
	switch {
	case dirs > MaxDirections:
		add(SeverityFatal, "%d directions, the header holds at most %d", dirs, MaxDirections)
	case dirs > RecommendedMaxDirections:
		add(SeverityWarning, "%d directions, the engine supports %d", dirs, RecommendedMaxDirections)
	}
	if frames > RecommendedMaxFrames {
		add(SeverityWarning, "%d frames per direction, the engine supports %d", frames, RecommendedMaxFrames)
	}

	for d, dir := range a.Frames {
		if len(dir) != frames {
			add(SeverityFatal, "direction %d has %d frames, expected %d", d, len(dir), frames)
			continue
		}
		for i, f := range dir {
			switch {
			case f.Width() == 0 || f.Height() == 0:
				add(SeverityFatal, "direction %d frame %d is empty", d, i)
			case checkFrameRange(f) != nil:
				add(SeverityFatal, "direction %d frame %d offset or size exceeds 32 bits", d, i)
			}
		}
	}

	return out
}

// HasFatal reports whether any advisory is fatal.
func HasFatal(advisories []Advisory) bool {
	for _, a := range advisories {
		if a.Severity == SeverityFatal {
			return true
		}
	}
	return false
}
