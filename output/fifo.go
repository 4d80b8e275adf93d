package output

import (
	"fmt"
	"os"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/fqerr"
)

// IsFIFO reports whether path names an existing named pipe. No pack
// library covers POSIX file-mode classification (the teacher's only
// use of golang.org/x/sys is mmap/munmap for memory-mapped reads,
// which this streaming writer has no use for — see DESIGN.md), so this
// is plain stdlib os.FileMode inspection.
func IsFIFO(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeNamedPipe != 0
}

// OpenOutputFile opens path for writing, honoring the overwrite policy
// (§4.5): a FIFO skips existence checking entirely (the reader is
// expected to already be connected), and chunking is rejected outright
// for FIFOs since a pipe has no "next chunk" to rotate into. A regular
// file that already exists fails with fqerr.ErrOutputExists unless
// allowOverwrite is true.
func OpenOutputFile(path string, allowOverwrite, chunked bool) (*os.File, error) {
	if IsFIFO(path) {
		if chunked {
			return nil, &fqerr.OutputError{Path: path, Msg: "chunked output is not supported for named pipes"}
		}
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return nil, &fqerr.OutputError{Path: path, Msg: "opening FIFO for writing", Err: err}
		}
		return f, nil
	}
	if !allowOverwrite {
		if _, err := os.Stat(path); err == nil {
			return nil, &fqerr.OutputError{Path: path, Msg: "destination exists", Err: fqerr.ErrOutputExists}
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, &fqerr.OutputError{Path: path, Msg: "creating output file", Err: err}
	}
	return f, nil
}

// BaseName assembles the output filename prefix per §6.2:
// `<prefix>[<sep><infix>][<sep><segmentOrTag>]`, before the chunk
// index and extension (handled separately by ChunkWriter). Empty
// components are omitted along with their separator.
func BaseName(dir, prefix, sep, infix, segmentOrTag string) string {
	name := prefix
	if infix != "" {
		name += sep + infix
	}
	if segmentOrTag != "" {
		name += sep + segmentOrTag
	}
	if dir == "" {
		return name
	}
	return fmt.Sprintf("%s/%s", dir, name)
}
