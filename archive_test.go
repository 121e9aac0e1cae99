package dcc

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func TestCompressBody_RoundTrip(t *testing.T) {
	t.Parallel()

	// several LZ4 chunks of compressible data
	data := make([]byte, 3*lz4ChunkSize+517)
	for i := range data {
		data[i] = byte(i / 97 % 13)
	}

	for _, c := range []Compression{CompressionLZ4, CompressionZstd, CompressionZlib} {
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()

			stored, used, err := compressBody(data, c)
			if err != nil {
				t.Fatalf("compressBody: %v", err)
			}
			if used != c {
				t.Fatalf("method %s, want %s", used, c)
			}
			if len(stored) >= len(data) {
				t.Fatalf("stored %d bytes for %d", len(stored), len(data))
			}

			got, err := decompressBody(stored, used, len(data))
			if err != nil {
				t.Fatalf("decompressBody: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Fatal("round trip mismatch")
			}

			if _, err := decompressBody(stored, used, len(data)-1); err == nil {
				t.Fatal("short declared size accepted")
			}
		})
	}
}

func TestCompressBody_SmallStoredRaw(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte{1}, minCompressSize-1)
	stored, used, err := compressBody(data, CompressionZstd)
	if err != nil {
		t.Fatalf("compressBody: %v", err)
	}
	if used != CompressionNone || !bytes.Equal(stored, data) {
		t.Fatalf("small body compressed with %s", used)
	}
}

func TestParseCompression(t *testing.T) {
	t.Parallel()

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd, CompressionZlib} {
		got, err := ParseCompression(c.String())
		if err != nil || got != c {
			t.Fatalf("ParseCompression(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseCompression("brotli"); !errors.Is(err, ErrUnknownCompression) {
		t.Fatalf("ParseCompression(brotli) error = %v", err)
	}
}

func TestArchive_RoundTrip(t *testing.T) {
	t.Parallel()

	pal := DefaultPalette()
	src := testAnimation(3, 6)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd, CompressionZlib} {
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()

			data, err := EncodeArchive(src, &ArchiveOptions{Compression: c})
			if err != nil {
				t.Fatalf("EncodeArchive: %v", err)
			}
			if string(data[:4]) != ArchiveMagic {
				t.Fatalf("magic %q", data[:4])
			}

			got, err := DecodeArchive(data, pal)
			if err != nil {
				t.Fatalf("DecodeArchive: %v", err)
			}
			assertSameAnimation(t, src, got)
		})
	}
}

func TestArchive_NilFrame(t *testing.T) {
	t.Parallel()

	pal := DefaultPalette()
	a := testAnimation(1, 2)
	a.Frames[0][1] = nil

	data, err := EncodeArchive(a, nil)
	if err != nil {
		t.Fatalf("EncodeArchive: %v", err)
	}
	got, err := DecodeArchive(data, pal)
	if err != nil {
		t.Fatalf("DecodeArchive: %v", err)
	}
	if got.Frames[0][1].Width() != 0 {
		t.Fatalf("nil frame restored as %v", got.Frames[0][1].Bounds())
	}
	if !HasFatal(Check(got, pal)) {
		t.Fatal("archive with an empty frame passes Check")
	}
}

func TestArchive_Errors(t *testing.T) {
	t.Parallel()

	pal := DefaultPalette()
	data, err := EncodeArchive(testAnimation(1, 3), nil)
	if err != nil {
		t.Fatalf("EncodeArchive: %v", err)
	}

	badMagic := bytes.Clone(data)
	copy(badMagic, "XXXX")
	badVersion := bytes.Clone(data)
	badVersion[4] = ArchiveVersion + 1

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "short header", data: data[:archiveHeaderSize-1], want: ErrArchiveTruncated},
		{name: "short body", data: data[:len(data)-1], want: ErrArchiveTruncated},
		{name: "magic", data: badMagic, want: ErrArchiveMagic},
		{name: "version", data: badVersion, want: ErrArchiveVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeArchive(tt.data, pal); !errors.Is(err, tt.want) {
				t.Fatalf("DecodeArchive error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestArchive_File(t *testing.T) {
	t.Parallel()

	pal := DefaultPalette()
	src := testAnimation(2, 2)
	path := filepath.Join(t.TempDir(), "frames.dcca")

	if err := WriteArchive(src, path, &ArchiveOptions{Compression: CompressionLZ4}); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	got, err := ReadArchive(path, pal)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	assertSameAnimation(t, src, got)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestArchiveHeader_WriteError(t *testing.T) {
	t.Parallel()

	h := archiveHeader{Version: ArchiveVersion}
	copy(h.Magic[:], ArchiveMagic)
	if err := h.writeTo(failingWriter{}); !errors.Is(err, ErrWriteArchiveHeader) {
		t.Fatalf("writeTo error = %v, want ErrWriteArchiveHeader", err)
	}
	if errors.Is(h.writeTo(failingWriter{}), ErrCompress) {
		t.Fatal("header write failure reported as a compression failure")
	}
}
