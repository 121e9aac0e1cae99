package dcc

import "errors"

var (
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrNilPalette indicates a missing palette.
	ErrNilPalette = errors.New("nil palette")

	// ErrInvalidSignature indicates the data does not start with the DCC signature byte.
	ErrInvalidSignature = errors.New("not a DCC file")
	// ErrTruncatedHeader indicates the file header or offset table is cut short.
	ErrTruncatedHeader = errors.New("truncated DCC header")
	// ErrInvalidFrameCount indicates a negative or absurd frame count.
	ErrInvalidFrameCount = errors.New("invalid frame count")
	// ErrInvalidOffset indicates a direction offset outside the data.
	ErrInvalidOffset = errors.New("invalid direction offset")
	// ErrInvalidStreamLength indicates a stream length declaration that cannot be satisfied.
	ErrInvalidStreamLength = errors.New("invalid stream length")
	// ErrInvalidFrameHeader indicates a frame header with impossible geometry.
	ErrInvalidFrameHeader = errors.New("invalid frame header")
	// ErrUnexpectedEnd indicates a bit stream ended before decoding finished.
	ErrUnexpectedEnd = errors.New("unexpected end of bit stream")
	// ErrDecodeDirection indicates a direction failed to decode.
	ErrDecodeDirection = errors.New("decode direction failed")

	// ErrEmptyAnimation indicates an animation without directions or frames.
	ErrEmptyAnimation = errors.New("empty animation")
	// ErrEmptyFrame indicates a missing frame or a frame with a zero dimension.
	ErrEmptyFrame = errors.New("empty frame")
	// ErrFrameCountMismatch indicates directions with differing frame counts.
	ErrFrameCountMismatch = errors.New("frame count mismatch between directions")
	// ErrTooManyDirections indicates more directions than the header can store.
	ErrTooManyDirections = errors.New("too many directions")
	// ErrTransparentIndex indicates a palette whose transparent index is not 0.
	ErrTransparentIndex = errors.New("transparent index must be 0")
	// ErrEncodeDirection indicates a direction failed to encode.
	ErrEncodeDirection = errors.New("encode direction failed")

	// ErrOpenFile indicates a file open failed.
	ErrOpenFile = errors.New("open file failed")
	// ErrReadFile indicates a file read failed.
	ErrReadFile = errors.New("read file failed")
	// ErrCreateFile indicates file creation failed.
	ErrCreateFile = errors.New("create file failed")
	// ErrWriteFile indicates a file write failed.
	ErrWriteFile = errors.New("write file failed")
	// ErrReadPalette indicates a palette could not be read.
	ErrReadPalette = errors.New("read palette failed")

	// ErrArchiveMagic indicates an unknown frame archive signature.
	ErrArchiveMagic = errors.New("not a frame archive")
	// ErrArchiveVersion indicates an unsupported frame archive version.
	ErrArchiveVersion = errors.New("unsupported archive version")
	// ErrWriteArchiveHeader indicates the frame archive header could not be written.
	ErrWriteArchiveHeader = errors.New("writing archive header failed")
	// ErrArchiveTruncated indicates a frame archive body is cut short.
	ErrArchiveTruncated = errors.New("frame archive truncated")
	// ErrUnknownCompression indicates an unknown archive compression method.
	ErrUnknownCompression = errors.New("unknown compression")
	// ErrCompress indicates archive compression failed.
	ErrCompress = errors.New("compress archive failed")
	// ErrDecompress indicates archive decompression failed.
	ErrDecompress = errors.New("decompress archive failed")
	// ErrChunkStreamTruncated indicates an LZ4 chunk stream is truncated.
	ErrChunkStreamTruncated = errors.New("LZ4 chunk-stream truncated")
	// ErrUnknownLZ4Flags indicates unknown LZ4 chunk flags.
	ErrUnknownLZ4Flags = errors.New("unknown LZ4 flags")
	// ErrInvalidChunkSize indicates invalid LZ4 chunk size.
	ErrInvalidChunkSize = errors.New("invalid compressed chunk size")
	// ErrDecodedSizeMismatch indicates decompressed size differs from the declared size.
	ErrDecodedSizeMismatch = errors.New("decoded size mismatch")

	// ErrUnknownImageFormat indicates an unsupported frame image format.
	ErrUnknownImageFormat = errors.New("unknown image format")
	// ErrEncodeImage indicates a frame image could not be encoded.
	ErrEncodeImage = errors.New("encode image failed")
	// ErrDecodeImage indicates a frame image could not be decoded.
	ErrDecodeImage = errors.New("decode image failed")
	// ErrDDSHeaderRead indicates DDS header read failed.
	ErrDDSHeaderRead = errors.New("reading DDS header failed")
	// ErrDDSDX10Read indicates DDS DX10 header read failed.
	ErrDDSDX10Read = errors.New("reading DDS DX10 header failed")
	// ErrWriteDDSHeader indicates DDS header write failed.
	ErrWriteDDSHeader = errors.New("writing DDS header failed")
	// ErrDDSDataSize indicates DDS payload size does not match its header.
	ErrDDSDataSize = errors.New("DDS data size mismatch")
)
