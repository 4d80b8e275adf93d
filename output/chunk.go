package output

import (
	"fmt"
	"os"
	"strconv"
)

// FileOpener abstracts regular-file creation from a ChunkWriter so the
// overwrite policy and FIFO handling (fifo.go) stay in one place and
// tests can substitute an in-memory opener.
type FileOpener func(path string) (*os.File, error)

// ChunkWriter assembles the sequential `<base>.<k>.<ext>` filename
// series described in §4.5/§6.2 and owns the "rename every previously
// written chunk when k needs more digits than the current width" rule
// (scenario S5). Grounded on blockfmt.MultiWriter's span/part
// reassignment (multiwriter.go promote/nextpart): both reassign
// on-disk identifiers once a size assumption made up front turns out
// to be wrong.
type ChunkWriter struct {
	base string // full path minus ".<k>.<ext>"
	ext  string
	open FileOpener

	chunkSize int64 // molecules per chunk; 0 disables chunking
	width     int

	chunkIndex     int64
	writtenInChunk int64
	chunkPaths     []string // chunkPaths[k] is the filename currently on disk for chunk k

	cur *os.File
}

// NewChunkWriter builds a ChunkWriter. initialEstimate is the
// Estimator's total-molecule-count estimate (0 if unknown), used only
// to pick a starting width so the common case never needs a rename.
// chunkSize==0 means "no chunking": the writer produces exactly one
// file, `<base>.<ext>`, with no numeric infix at all.
func NewChunkWriter(base, ext string, chunkSize, initialEstimate int64, open FileOpener) *ChunkWriter {
	return &ChunkWriter{
		base:      base,
		ext:       ext,
		open:      open,
		chunkSize: chunkSize,
		width:     initialWidth(initialEstimate, chunkSize),
	}
}

func initialWidth(estimate, chunkSize int64) int {
	if chunkSize <= 0 || estimate <= 0 {
		return 1
	}
	chunks := estimate / chunkSize
	if chunks < 1 {
		chunks = 1
	}
	return len(strconv.FormatInt(chunks, 10))
}

func (c *ChunkWriter) pathFor(k int64) string {
	if c.chunkSize <= 0 {
		return fmt.Sprintf("%s.%s", c.base, c.ext)
	}
	return fmt.Sprintf("%s.%0*d.%s", c.base, c.width, k, c.ext)
}

// ensureOpen opens the current chunk's file if it isn't already open,
// growing width (and renaming every prior chunk) first if chunkIndex
// now needs more digits than width allows.
func (c *ChunkWriter) ensureOpen() error {
	if c.cur != nil {
		return nil
	}
	if c.chunkSize > 0 {
		needed := len(strconv.FormatInt(c.chunkIndex, 10))
		if needed > c.width {
			if err := c.growWidth(needed); err != nil {
				return err
			}
		}
	}
	path := c.pathFor(c.chunkIndex)
	f, err := c.open(path)
	if err != nil {
		return err
	}
	c.cur = f
	if c.chunkSize > 0 {
		for int64(len(c.chunkPaths)) <= c.chunkIndex {
			c.chunkPaths = append(c.chunkPaths, "")
		}
		c.chunkPaths[c.chunkIndex] = path
	}
	return nil
}

// growWidth widens the zero-padding and renames every chunk file
// already written under the old width to its new name (scenario S5).
// The current chunk (not yet opened at the old width) is excluded.
func (c *ChunkWriter) growWidth(newWidth int) error {
	c.width = newWidth
	for k, oldPath := range c.chunkPaths {
		if oldPath == "" {
			continue
		}
		newPath := c.pathFor(int64(k))
		if newPath == oldPath {
			continue
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			return fmt.Errorf("output: renaming chunk %d from %q to %q: %w", k, oldPath, newPath, err)
		}
		c.chunkPaths[k] = newPath
	}
	return nil
}

// Writer returns the currently open chunk's *os.File, opening it (or
// rotating to a new one, per AfterWrite) if necessary.
func (c *ChunkWriter) Writer() (*os.File, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	return c.cur, nil
}

// AfterWrite records that n additional molecules (or, for interleaved
// output, n rows — see Writer.effectiveChunkSize) were just written to
// the current chunk, rotating to the next chunk once the configured
// chunkSize has been reached. Rotation fires strictly after a chunk is
// full, never mid-chunk (§4.5: "chunk rotation fires after the
// configured number of molecules has been written").
func (c *ChunkWriter) AfterWrite(n int64) error {
	if c.chunkSize <= 0 {
		return nil
	}
	c.writtenInChunk += n
	if c.writtenInChunk < c.chunkSize {
		return nil
	}
	if err := c.closeCurrent(); err != nil {
		return err
	}
	c.chunkIndex++
	c.writtenInChunk = 0
	return nil
}

func (c *ChunkWriter) closeCurrent() error {
	if c.cur == nil {
		return nil
	}
	err := c.cur.Close()
	c.cur = nil
	return err
}

// Close closes the current chunk file, if any.
func (c *ChunkWriter) Close() error {
	return c.closeCurrent()
}

// Paths returns every filename this ChunkWriter has produced, in
// chunk order, reflecting the most recent rename (if any).
func (c *ChunkWriter) Paths() []string {
	if c.chunkSize <= 0 {
		return []string{c.pathFor(0)}
	}
	out := make([]string, 0, len(c.chunkPaths))
	for _, p := range c.chunkPaths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
