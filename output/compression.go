// Package output implements the writer layer (C5/C6): segmented,
// interleaved, BAM and "none" output modes, streaming compression,
// chunk rotation with rename-on-width-increase, dual SHA-256 hashing,
// FIFO handling, and demultiplex-bucket routing. Grounded on
// compr.Compressor/compr.Decompressor (compr/compression.go) and
// blockfmt.MultiWriter's span/part bookkeeping (ion/blockfmt/multiwriter.go).
package output

import (
	"compress/gzip"
	"fmt"
	"io"
	"runtime"

	kzstd "github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// Codec names the compression algorithm applied to a text output
// stream (§4.5). BAM output is always BGZF and does not go through a
// Codec.
type Codec int

const (
	CodecNone Codec = iota
	CodecGzip
	CodecZstd
)

func (c Codec) String() string {
	switch c {
	case CodecGzip:
		return "gzip"
	case CodecZstd:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the filename suffix §6.2 appends for c (on top of
// the format's own extension, e.g. ".fastq.gz").
func (c Codec) Extension() string {
	switch c {
	case CodecGzip:
		return ".gz"
	case CodecZstd:
		return ".zst"
	default:
		return ""
	}
}

// CompressionOptions configures the compressor a Writer opens for one
// output stream.
type CompressionOptions struct {
	Codec Codec
	// Level is format-specific: gzip 1-9, zstd 1-22; 0 selects the
	// codec's default level (gzip's default, zstd 3), so gzip level 0
	// (no compression) is not selectable, and other out-of-range values
	// are clamped. Ignored for CodecNone.
	Level int
	// Threads enables klauspost/pgzip's multi-threaded gzip encoder
	// when Codec==CodecGzip and Threads>1 (§4.5); the teacher's own
	// compression family (klauspost/compress) is single-threaded, so
	// pgzip is the sibling dependency that fills this slot.
	Threads int
}

// nopWriteCloser adapts an io.Writer with no Close method (e.g. a
// *os.File already owned by the caller) to io.WriteCloser without
// double-closing the underlying writer.
type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewCompressWriter wraps dst with a streaming compressor per opts,
// returning an io.WriteCloser whose Close flushes and finalizes the
// compressed stream (trailer/footer) without closing dst itself.
// Incremental writing (rather than one EncodeAll call) is required
// here because molecules are written as they arrive in block order,
// unlike compr.Compressor's whole-buffer-at-once contract.
func NewCompressWriter(dst io.Writer, opts CompressionOptions) (io.WriteCloser, error) {
	switch opts.Codec {
	case CodecNone:
		return nopWriteCloser{dst}, nil
	case CodecGzip:
		level := clampGzipLevel(opts.Level)
		if opts.Threads > 1 {
			w, err := pgzip.NewWriterLevel(dst, level)
			if err != nil {
				return nil, fmt.Errorf("output: opening multi-threaded gzip writer: %w", err)
			}
			if err := w.SetConcurrency(1<<20, opts.Threads); err != nil {
				return nil, fmt.Errorf("output: configuring pgzip concurrency: %w", err)
			}
			return w, nil
		}
		w, err := gzip.NewWriterLevel(dst, level)
		if err != nil {
			return nil, fmt.Errorf("output: opening gzip writer: %w", err)
		}
		return w, nil
	case CodecZstd:
		level := clampZstdLevel(opts.Level)
		threads := opts.Threads
		if threads <= 0 {
			threads = runtime.GOMAXPROCS(0)
		}
		w, err := kzstd.NewWriter(dst,
			kzstd.WithEncoderLevel(kzstd.EncoderLevelFromZstd(level)),
			kzstd.WithEncoderConcurrency(threads))
		if err != nil {
			return nil, fmt.Errorf("output: opening zstd writer: %w", err)
		}
		return w, nil
	default:
		return nil, fmt.Errorf("output: unknown codec %v", opts.Codec)
	}
}

func clampGzipLevel(level int) int {
	switch {
	case level == 0:
		return gzip.DefaultCompression
	case level < gzip.BestSpeed:
		return gzip.BestSpeed
	case level > gzip.BestCompression:
		return gzip.BestCompression
	default:
		return level
	}
}

func clampZstdLevel(level int) int {
	switch {
	case level <= 0:
		return 3
	case level > 22:
		return 22
	default:
		return level
	}
}
