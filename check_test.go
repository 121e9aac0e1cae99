package dcc

import (
	"strings"
	"testing"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	pal := DefaultPalette()
	grid := func(dirs, frames int) *Animation {
		a := NewAnimation(dirs, frames)
		for d := range a.Frames {
			for i := range a.Frames[d] {
				a.Frames[d][i] = NewFrame(1, 1, 0, 0, pal)
			}
		}
		return a
	}

	empty := grid(1, 2)
	empty.Frames[0][1] = nil

	tests := []struct {
		name  string
		a     *Animation
		pal   *Palette
		fatal bool
		want  []string
	}{
		{name: "clean", a: testAnimation(2, 3), pal: pal},
		{name: "no palette", a: grid(1, 1), fatal: true, want: []string{"no palette"}},
		{name: "transparent index", a: grid(1, 1), pal: NewPalette(pal.Colors, 3), fatal: true, want: []string{"transparent index is 3"}},
		{name: "empty", a: NewAnimation(0, 0), pal: pal, fatal: true, want: []string{"no frames"}},
		{name: "engine directions", a: grid(RecommendedMaxDirections+1, 1), pal: pal, want: []string{"33 directions"}},
		{name: "header directions", a: grid(MaxDirections+1, 1), pal: pal, fatal: true, want: []string{"at most 255"}},
		{name: "engine frames", a: grid(1, RecommendedMaxFrames+1), pal: pal, want: []string{"257 frames"}},
		{name: "empty frame", a: empty, pal: pal, fatal: true, want: []string{"frame 1 is empty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Check(tt.a, tt.pal)
			if HasFatal(got) != tt.fatal {
				t.Fatalf("HasFatal = %v, want %v (%v)", HasFatal(got), tt.fatal, got)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("advisories %v, want %d", got, len(tt.want))
			}
			for i, w := range tt.want {
				if !strings.Contains(got[i].Message, w) {
					t.Fatalf("advisory %q does not mention %q", got[i], w)
				}
			}
		})
	}
}

func TestCheck_WarningsStillEncode(t *testing.T) {
	t.Parallel()

	pal := DefaultPalette()
	a := NewAnimation(RecommendedMaxDirections+1, 1)
	for d := range a.Frames {
		f := NewFrame(2, 2, 0, 0, pal)
		f.Image.Pix[0] = uint8(d + 1)
		a.Frames[d][0] = f
	}

	if adv := Check(a, pal); HasFatal(adv) || len(adv) != 1 {
		t.Fatalf("advisories %v", adv)
	}
	data, err := Encode(a, pal)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data, pal)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Warnings) != 1 {
		t.Fatalf("decode warnings %v, want the direction count", got.Warnings)
	}
	assertSameAnimation(t, a, got)
}

func TestAdvisory_String(t *testing.T) {
	t.Parallel()

	a := Advisory{Severity: SeverityFatal, Message: "boom"}
	if got := a.String(); got != "fatal: boom" {
		t.Fatalf("String() = %q", got)
	}
	a.Severity = SeverityWarning
	if got := a.String(); got != "warning: boom" {
		t.Fatalf("String() = %q", got)
	}
}

func TestEncodeDC6Frame(t *testing.T) {
	t.Parallel()

	pal := DefaultPalette()
	f := NewFrame(5, 2, 0, 0, pal)
	// bottom row: 2 transparent, then 7 8 9
	f.Image.SetColorIndex(2, 1, 7)
	f.Image.SetColorIndex(3, 1, 8)
	f.Image.SetColorIndex(4, 1, 9)
	// top row: 4 then trailing transparency
	f.Image.SetColorIndex(0, 0, 4)

	got := encodeDC6Frame(f, 0)
	want := []byte{0x82, 3, 7, 8, 9, 0x80, 1, 4, 0x80}
	if string(got) != string(want) {
		t.Fatalf("encodeDC6Frame = %x, want %x", got, want)
	}

	wide := NewFrame(300, 1, 0, 0, pal)
	wide.Image.SetColorIndex(299, 0, 1)
	got = encodeDC6Frame(wide, 0)
	want = []byte{0xff, 0xff, 0x80 | 45, 1, 1, 0x80}
	if string(got) != string(want) {
		t.Fatalf("long skip = %x, want %x", got, want)
	}
}
