package parsers

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/fqerr"
)

// StdinMagicPath is the magic literal (§6.1) denoting standard input.
// It may appear in at most one segment's input list, which must then
// have exactly one file entry.
const StdinMagicPath = "--stdin--"

// magic-byte prefixes used to detect compression, per §6.1. Sniffed
// from a small peek buffer rather than the file extension so a
// misnamed file (or a FIFO/stdin stream with no extension at all)
// still decompresses correctly.
var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicBzip = []byte{0x42, 0x5a, 0x68} // "BZh"
	magicXz   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

func hasMagic(peek, magic []byte) bool {
	return len(peek) >= len(magic) && bytesEqual(peek[:len(magic)], magic)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// OpenInput opens path (or stdin, if path equals StdinMagicPath) and
// returns a reader transparently decompressed according to its magic
// bytes, along with a Closer that releases every resource the open
// chain allocated (file handle and/or decompressor). Grounded on
// blockfmt.convert.go's init()-time decompressor table keyed by
// filename suffix, adapted to a magic-byte sniff so detection doesn't
// depend on the caller naming files correctly.
func OpenInput(path string) (io.Reader, io.Closer, error) {
	var raw io.ReadCloser
	if path == StdinMagicPath {
		raw = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, &fqerr.InputError{Path: path, Msg: "opening input file", Err: err}
		}
		raw = f
	}

	br := bufio.NewReaderSize(raw, 1<<16)
	peek, _ := br.Peek(6)

	switch {
	case hasMagic(peek, magicGzip):
		zr, err := gzip.NewReader(br)
		if err != nil {
			raw.Close()
			return nil, nil, &fqerr.InputError{Path: path, Msg: "opening gzip stream", Err: err}
		}
		return zr, multiCloser{zr, raw}, nil
	case hasMagic(peek, magicZstd):
		zr, err := zstd.NewReader(br)
		if err != nil {
			raw.Close()
			return nil, nil, &fqerr.InputError{Path: path, Msg: "opening zstd stream", Err: err}
		}
		return zr.IOReadCloser(), multiCloser{zr.IOReadCloser(), raw}, nil
	case hasMagic(peek, magicBzip):
		return bzip2.NewReader(br), raw, nil
	case hasMagic(peek, magicXz):
		xr, err := xz.NewReader(br)
		if err != nil {
			raw.Close()
			return nil, nil, &fqerr.InputError{Path: path, Msg: "opening xz stream", Err: err}
		}
		return xr, raw, nil
	default:
		return br, raw, nil
	}
}

// multiCloser closes every listed closer, returning the first error
// encountered (if any), matching the compressed-reader-then-file close
// ordering convert.go's jsonConverter.Convert uses (decompressor
// closed before the underlying file).
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var agg fqerr.Aggregate
	for _, c := range m {
		if c != nil {
			agg.Add(c.Close())
		}
	}
	return agg.Err()
}

// BytesPerBaseFor returns the Estimator.BytesPerBase constant
// appropriate for path's detected compression, per §4.2.
func BytesPerBaseFor(path string, isBAM bool) float64 {
	if isBAM {
		return BytesPerBaseBAM
	}
	f, err := os.Open(path)
	if err != nil {
		return BytesPerBaseRawFastq
	}
	defer f.Close()
	peek := make([]byte, 6)
	n, _ := io.ReadFull(f, peek)
	peek = peek[:n]
	if hasMagic(peek, magicGzip) || hasMagic(peek, magicZstd) || hasMagic(peek, magicBzip) || hasMagic(peek, magicXz) {
		return BytesPerBaseGzipLike
	}
	return BytesPerBaseRawFastq
}
