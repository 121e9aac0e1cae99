package dcc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how a frame archive body is stored.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = iota
	// CompressionLZ4 stores the body as an LZ4 chunk stream.
	CompressionLZ4
	// CompressionZstd stores the body as one zstd frame.
	CompressionZstd
	// CompressionZlib stores the body as a zlib stream.
	CompressionZlib
)

// lz4ChunkSize is the uncompressed size of one LZ4 chunk.
const lz4ChunkSize = 64 * 1024

// minCompressSize is the body size below which compression is skipped.
const minCompressSize = 1024

// String returns the lower-case method name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	case CompressionZlib:
		return "zlib"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression maps a method name to a Compression.
func ParseCompression(name string) (Compression, error) {
	for c := CompressionNone; c <= CompressionZlib; c++ {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
}

// compressBody compresses data with c. Bodies that are small or that do not
// shrink below 85% are stored uncompressed; the method actually used is
// returned.
func compressBody(data []byte, c Compression) ([]byte, Compression, error) {
	if c == CompressionNone || len(data) < minCompressSize {
		return data, CompressionNone, nil
	}

	var out []byte
	var err error
	switch c {
	case CompressionLZ4:
		out, err = compressLZ4Chunks(data)
	case CompressionZstd:
		out, err = compressZstd(data)
	case CompressionZlib:
		out, err = compressZlib(data)
	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrCompress, c, err)
	}
	if out == nil || float64(len(out)) > float64(len(data))*0.85 {
		return data, CompressionNone, nil
	}
	return out, c, nil
}

// decompressBody restores a body of the given uncompressed size.
func decompressBody(data []byte, c Compression, size int) ([]byte, error) {
	var out []byte
	var err error
	switch c {
	case CompressionNone:
		out = make([]byte, len(data))
		copy(out, data)
	case CompressionLZ4:
		out, err = decompressLZ4Chunks(data, size)
	case CompressionZstd:
		out, err = decompressZstd(data, size)
	case CompressionZlib:
		out, err = decompressZlib(data, size)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecompress, c, err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDecodedSizeMismatch, size, len(out))
	}
	return out, nil
}

// compressLZ4Chunks encodes data as a sequence of chunks, each a 3-byte
// little-endian compressed size, a flag byte (0x80 on the last chunk) and an
// LZ4 block of up to 64 KiB input. Nil is returned when a chunk does not
// compress.
func compressLZ4Chunks(data []byte) ([]byte, error) {
	var stream bytes.Buffer
	buf := make([]byte, lz4.CompressBlockBound(lz4ChunkSize))

	for i := 0; i < len(data); i += lz4ChunkSize {
		end := min(i+lz4ChunkSize, len(data))
		chunk := data[i:end]

		n, err := lz4.CompressBlockHC(chunk, buf, 0, nil, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 || n > 0x7fffff {
			return nil, nil
		}

		flags := byte(0)
		if end == len(data) {
			flags = 0x80
		}
		stream.Write([]byte{byte(n), byte(n >> 8), byte(n >> 16), flags})
		stream.Write(buf[:n])
	}

	return stream.Bytes(), nil
}

// decompressLZ4Chunks inflates a chunk stream. Later chunks may reference
// the previous 64 KiB of output.
func decompressLZ4Chunks(data []byte, size int) ([]byte, error) {
	const dictCap = 64 * 1024

	target := make([]byte, size)
	out := 0
	r := bytes.NewReader(data)

	for {
		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: chunk header: %v", ErrChunkStreamTruncated, err)
		}

		n := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		flags := hdr[3]
		if flags&^0x80 != 0 {
			return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownLZ4Flags, flags)
		}
		if n <= 0 || n > r.Len() {
			return nil, fmt.Errorf("%w: %d (remaining %d)", ErrInvalidChunkSize, n, r.Len())
		}

		compressed := make([]byte, n)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChunkStreamTruncated, err)
		}

		want := min(lz4ChunkSize, size-out)
		if want <= 0 {
			return nil, fmt.Errorf("%w: output exceeds %d bytes", ErrDecodedSizeMismatch, size)
		}

		dict := target[max(0, out-dictCap):out]
		got, err := lz4.UncompressBlockWithDict(compressed, target[out:out+want], dict)
		if err != nil {
			return nil, err
		}
		out += got

		if flags&0x80 != 0 {
			break
		}
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes after last chunk", ErrInvalidChunkSize, r.Len())
	}
	return target[:out], nil
}

func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	defer func() { _ = enc.Close() }()

	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func decompressZstd(data []byte, size int) ([]byte, error) {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(size)+1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return dec.DecodeAll(data, make([]byte, 0, size))
}

func compressZlib(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressZlib(data []byte, size int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()

	// one byte past size exposes oversized streams
	out, err := io.ReadAll(io.LimitReader(zr, int64(size)+1))
	if err != nil {
		return nil, err
	}
	return out, nil
}
