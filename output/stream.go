package output

import "io"

// Stream is one physical output destination (one segment's file, the
// single interleaved file, or one demultiplex bucket's file): it
// layers compression and dual SHA-256 hashing (§4.5) on top of a
// ChunkWriter's rotating sequence of *os.File destinations.
//
// Byte flow on Write: caller -> uncompressed hasher -> compressor ->
// compressed hasher -> current chunk file. Both hashers are reset each
// time a chunk rotates, since the hash sidecars are per-chunk-file,
// not per-stream.
type Stream struct {
	chunks  *ChunkWriter
	comp    CompressionOptions
	hashing bool

	compWriter   io.WriteCloser
	uncompHasher *hashingWriter
	compHasher   *hashingWriter
	dst          io.Writer // where Write() actually sends bytes
}

// NewStream builds a Stream over chunks, compressing with comp and
// optionally computing the §4.5 hash sidecars for every chunk file.
func NewStream(chunks *ChunkWriter, comp CompressionOptions, hashing bool) *Stream {
	return &Stream{chunks: chunks, comp: comp, hashing: hashing}
}

func (s *Stream) ensureOpen() error {
	if s.dst != nil {
		return nil
	}
	f, err := s.chunks.Writer()
	if err != nil {
		return err
	}
	var fileDst io.Writer = f
	if s.hashing {
		s.compHasher = newHashingWriter(f)
		fileDst = s.compHasher
	}
	cw, err := NewCompressWriter(fileDst, s.comp)
	if err != nil {
		return err
	}
	s.compWriter = cw
	var compDst io.Writer = cw
	if s.hashing {
		s.uncompHasher = newHashingWriter(cw)
		compDst = s.uncompHasher
	}
	s.dst = compDst
	return nil
}

// Write appends to the current chunk, opening it on first use.
func (s *Stream) Write(p []byte) (int, error) {
	if err := s.ensureOpen(); err != nil {
		return 0, err
	}
	return s.dst.Write(p)
}

// flush closes the active compressor (finalizing any trailer) and, if
// hashing is enabled, writes this chunk's hash sidecars, without
// touching the underlying chunk file's lifecycle (ChunkWriter owns
// that).
func (s *Stream) flush() error {
	if s.compWriter == nil {
		return nil
	}
	path := s.chunks.pathFor(s.chunks.chunkIndex)
	if err := s.compWriter.Close(); err != nil {
		return err
	}
	if s.hashing {
		if err := writeSidecar(path, UncompressedSidecarSuffix, s.uncompHasher.SumHex()); err != nil {
			return err
		}
		if err := writeSidecar(path, CompressedSidecarSuffix, s.compHasher.SumHex()); err != nil {
			return err
		}
	}
	s.compWriter = nil
	s.uncompHasher = nil
	s.compHasher = nil
	s.dst = nil
	return nil
}

// EndUnits tells the Stream that n units (molecules, or for
// interleaved output, rows — see Writer.effectiveChunkSize) were just
// written, rotating to the next chunk file if that reaches the
// configured chunk size (§4.5, scenario S5).
func (s *Stream) EndUnits(n int64) error {
	willRotate := s.chunks.chunkSize > 0 && s.chunks.writtenInChunk+n >= s.chunks.chunkSize
	if willRotate {
		if err := s.flush(); err != nil {
			return err
		}
	}
	return s.chunks.AfterWrite(n)
}

// Close finalizes the last (possibly partial) chunk and closes the
// underlying ChunkWriter.
func (s *Stream) Close() error {
	if err := s.flush(); err != nil {
		return err
	}
	return s.chunks.Close()
}

// Paths returns every chunk filename this Stream's ChunkWriter has
// produced.
func (s *Stream) Paths() []string { return s.chunks.Paths() }
