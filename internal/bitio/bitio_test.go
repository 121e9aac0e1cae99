package bitio

import (
	"bytes"
	"errors"
	"testing"
)

func TestReader_ReadBits(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		widths  []int
		want    []uint32
		wantErr bool
	}{
		{
			name:   "lsb first",
			data:   []byte{0x01},
			widths: []int{1, 7},
			want:   []uint32{1, 0},
		},
		{
			name:   "nibbles",
			data:   []byte{0xA5},
			widths: []int{4, 4},
			want:   []uint32{0x5, 0xA},
		},
		{
			name:   "little endian across bytes",
			data:   []byte{0x34, 0x12},
			widths: []int{16},
			want:   []uint32{0x1234},
		},
		{
			name:   "unaligned span",
			data:   []byte{0xF0, 0x0F},
			widths: []int{4, 8, 4},
			want:   []uint32{0x0, 0xFF, 0x0},
		},
		{
			name:   "full word",
			data:   []byte{0x78, 0x56, 0x34, 0x12},
			widths: []int{32},
			want:   []uint32{0x12345678},
		},
		{
			name:    "past end",
			data:    []byte{0xFF},
			widths:  []int{9},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.data)
			for i, n := range tt.widths {
				got, err := r.ReadBits(n)
				if tt.wantErr {
					if !errors.Is(err, ErrUnexpectedEOF) {
						t.Fatalf("ReadBits(%d): expected ErrUnexpectedEOF, got %v", n, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("ReadBits(%d): %v", n, err)
				}
				if got != tt.want[i] {
					t.Errorf("ReadBits(%d) #%d = %#x, want %#x", n, i, got, tt.want[i])
				}
			}
		})
	}
}

func TestReader_ReadSigned(t *testing.T) {
	tests := []struct {
		name string
		v    int32
		n    int
	}{
		{name: "zero width", v: 0, n: 0},
		{name: "minus one", v: -1, n: 1},
		{name: "negative", v: -4, n: 3},
		{name: "positive", v: 3, n: 3},
		{name: "wide negative", v: -123456, n: 24},
		{name: "full width", v: -2147483648, n: 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter()
			w.WriteSigned(tt.v, tt.n)

			got, err := NewReader(w.Bytes()).ReadSigned(tt.n)
			if err != nil {
				t.Fatalf("ReadSigned: %v", err)
			}
			if got != tt.v {
				t.Errorf("ReadSigned(%d) = %d, want %d", tt.n, got, tt.v)
			}
		})
	}
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteBit(true)
	w.WriteBits(0x15, 5)
	w.WriteBits(0xDEADBEEF, 32)
	w.Align()
	w.WriteBytes([]byte{0xAB, 0xCD})
	w.WriteBits(0x3, 2)

	if got, want := w.Len(), 8+32+16+2; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}

	r := NewReader(w.Bytes())
	if bit, _ := r.ReadBit(); !bit {
		t.Fatal("first bit should be set")
	}
	if v, _ := r.ReadBits(5); v != 0x15 {
		t.Fatalf("ReadBits(5) = %#x", v)
	}
	if v, _ := r.ReadBits(32); v != 0xDEADBEEF {
		t.Fatalf("ReadBits(32) = %#x", v)
	}
	r.Align()
	p, err := r.ReadBytes(2)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(p, []byte{0xAB, 0xCD}) {
		t.Fatalf("ReadBytes = %x", p)
	}
	if v, _ := r.ReadBits(2); v != 0x3 {
		t.Fatalf("ReadBits(2) = %#x", v)
	}
}

func TestWriterAppend(t *testing.T) {
	src := NewWriter()
	src.WriteBits(0x5A5, 11)

	dst := NewWriter()
	dst.WriteBits(0x1, 3)
	dst.Append(src)

	if dst.Len() != 14 {
		t.Fatalf("Len() = %d, want 14", dst.Len())
	}
	r := NewReader(dst.Bytes())
	if v, _ := r.ReadBits(3); v != 0x1 {
		t.Fatalf("prefix = %#x", v)
	}
	if v, _ := r.ReadBits(11); v != 0x5A5 {
		t.Fatalf("appended = %#x", v)
	}
}

func TestReaderSub(t *testing.T) {
	r := NewReader([]byte{0xFF, 0x00})
	sub, err := r.Sub(4)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if v, _ := sub.ReadBits(4); v != 0xF {
		t.Fatalf("sub ReadBits = %#x", v)
	}
	if _, err := sub.ReadBit(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected sub stream to be bounded, got %v", err)
	}
	if v, _ := r.ReadBits(4); v != 0xF {
		t.Fatalf("parent did not advance past sub stream: %#x", v)
	}
	if _, err := r.Sub(9); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF for oversized sub stream, got %v", err)
	}
}

func TestZeroReader(t *testing.T) {
	r := Zero()
	for i := 0; i < 100; i++ {
		v, err := r.ReadBits(32)
		if err != nil || v != 0 {
			t.Fatalf("Zero().ReadBits = %d, %v", v, err)
		}
	}
}
