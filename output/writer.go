package output

import (
	"fmt"
	"os"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
)

// Format names the text record format a Writer emits. BAM output does
// not use Format; it is driven by bam.go instead.
type Format int

const (
	FormatFastq Format = iota
	FormatFasta
)

func (f Format) extension() string {
	if f == FormatFasta {
		return "fasta"
	}
	return "fastq"
}

// Mode selects the output file layout (§4.5): one file per segment, a
// single interleaved file, one BAM file, or no output at all.
type Mode int

const (
	ModeSegmented Mode = iota
	ModeInterleaved
	ModeBAM
	ModeNone
)

// StdoutPath is the magic destination naming standard output, mirroring
// parsers.StdinMagicPath. Only ModeInterleaved text output may use it
// (§4.5 "Stdout is supported only for interleaved text formats").
const StdoutPath = "--stdout--"

// Config describes one configured output destination. A pipeline run
// may have several Configs (e.g. one per demultiplex bucket, via
// BucketedWriter in bucket.go).
type Config struct {
	Mode   Mode
	Format Format

	Dir, Prefix, Sep, Infix string
	// SegmentNames names each segment for ModeSegmented filenames
	// (`<base>.<segment>.<ext>`), in segment order.
	SegmentNames []string
	// InterleaveOrder lists segment indices in the fixed round-robin
	// order ModeInterleaved writes them (§4.5).
	InterleaveOrder []int

	ChunkSize      int64
	Estimate       int64
	Compression    CompressionOptions
	Hashing        bool
	AllowOverwrite bool
}

// Writer consumes read.CombinedBlocks in parser order and fans them to
// the configured destination(s) (§4.5).
type Writer interface {
	WriteBlock(cb *read.CombinedBlock) error
	Close() error
	// Paths returns every output filename produced so far, across every
	// underlying Stream, for use by a final manifest/report.
	Paths() []string
}

// NewWriter builds the Writer described by cfg.
func NewWriter(cfg Config) (Writer, error) {
	switch cfg.Mode {
	case ModeNone:
		return noneWriter{}, nil
	case ModeSegmented:
		return newSegmentedWriter(cfg)
	case ModeInterleaved:
		return newInterleavedWriter(cfg)
	case ModeBAM:
		return newBAMWriter(cfg)
	default:
		return nil, fmt.Errorf("output: unknown mode %v", cfg.Mode)
	}
}

type noneWriter struct{}

func (noneWriter) WriteBlock(*read.CombinedBlock) error { return nil }
func (noneWriter) Close() error                         { return nil }
func (noneWriter) Paths() []string                      { return nil }

// opener returns a ChunkWriter FileOpener bound to cfg's overwrite
// policy and chunking, honoring FIFO destinations transparently.
func opener(cfg Config, chunked bool) FileOpener {
	return func(path string) (*os.File, error) {
		return OpenOutputFile(path, cfg.AllowOverwrite, chunked)
	}
}

// segmentedWriter opens one Stream per segment.
type segmentedWriter struct {
	format  Format
	streams []*Stream
}

func newSegmentedWriter(cfg Config) (Writer, error) {
	if len(cfg.SegmentNames) == 0 {
		return nil, fmt.Errorf("output: segmented mode requires at least one segment name")
	}
	chunked := cfg.ChunkSize > 0
	streams := make([]*Stream, len(cfg.SegmentNames))
	for i, name := range cfg.SegmentNames {
		base := BaseName(cfg.Dir, cfg.Prefix, cfg.Sep, cfg.Infix, name)
		ext := cfg.Format.extension() + cfg.Compression.Codec.Extension()
		cw := NewChunkWriter(base, ext, cfg.ChunkSize, cfg.Estimate, opener(cfg, chunked))
		streams[i] = NewStream(cw, cfg.Compression, cfg.Hashing)
	}
	return &segmentedWriter{format: cfg.Format, streams: streams}, nil
}

// WriteBlock writes each molecule's records, then immediately calls
// EndUnits(1) across every segment's stream, so chunk rotation fires
// mid-block at the configured molecule boundary instead of only once
// per whole block (§4.5: rotation is a function of molecules written,
// not of block size).
func (w *segmentedWriter) WriteBlock(cb *read.CombinedBlock) error {
	if len(cb.Segments) > len(w.streams) {
		return fmt.Errorf("output: block has %d segments, writer configured for %d", len(cb.Segments), len(w.streams))
	}
	n := cb.N()
	for i := 0; i < n; i++ {
		for segIdx, seg := range cb.Segments {
			if err := writeRecord(w.streams[segIdx], w.format, seg.Entries()[i]); err != nil {
				return err
			}
		}
		for _, s := range w.streams {
			if err := s.EndUnits(1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *segmentedWriter) Close() error {
	var first error
	for _, s := range w.streams {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (w *segmentedWriter) Paths() []string {
	var out []string
	for _, s := range w.streams {
		out = append(out, s.Paths()...)
	}
	return out
}

// interleavedWriter writes a single file, round-robining rows across
// InterleaveOrder's segments in that fixed order (§4.5).
type interleavedWriter struct {
	format Format
	order  []int
	stream *Stream
}

func newInterleavedWriter(cfg Config) (Writer, error) {
	if len(cfg.InterleaveOrder) == 0 {
		return nil, fmt.Errorf("output: interleaved mode requires at least one segment in InterleaveOrder")
	}
	ext := cfg.Format.extension() + cfg.Compression.Codec.Extension()
	base := BaseName(cfg.Dir, cfg.Prefix, cfg.Sep, cfg.Infix, "")
	// effective chunk size is multiplied by the number of interleaved
	// segments (§4.5): EndUnits below passes rows, not molecules, so
	// the configured ChunkSize (in molecules) must be scaled up front.
	effectiveChunkSize := cfg.ChunkSize * int64(len(cfg.InterleaveOrder))
	effectiveEstimate := cfg.Estimate * int64(len(cfg.InterleaveOrder))

	var cw *ChunkWriter
	if cfg.Dir == StdoutPath || cfg.Prefix == StdoutPath {
		cw = NewChunkWriter(base, ext, 0, 0, func(string) (*os.File, error) { return os.Stdout, nil })
	} else {
		chunked := cfg.ChunkSize > 0
		cw = NewChunkWriter(base, ext, effectiveChunkSize, effectiveEstimate, opener(cfg, chunked))
	}
	return &interleavedWriter{
		format: cfg.Format,
		order:  cfg.InterleaveOrder,
		stream: NewStream(cw, cfg.Compression, cfg.Hashing),
	}, nil
}

// WriteBlock rotates mid-block, calling EndUnits after every row's
// worth of interleaved segments rather than once for the whole block,
// matching segmentedWriter's per-molecule rotation granularity.
func (w *interleavedWriter) WriteBlock(cb *read.CombinedBlock) error {
	n := cb.N()
	for i := 0; i < n; i++ {
		for _, segIdx := range w.order {
			if segIdx < 0 || segIdx >= len(cb.Segments) {
				return fmt.Errorf("output: interleave order references segment %d, block has %d segments", segIdx, len(cb.Segments))
			}
			rd := cb.Segments[segIdx].Entries()[i]
			if err := writeRecord(w.stream, w.format, rd); err != nil {
				return err
			}
		}
		if err := w.stream.EndUnits(int64(len(w.order))); err != nil {
			return err
		}
	}
	return nil
}

func (w *interleavedWriter) Close() error { return w.stream.Close() }
func (w *interleavedWriter) Paths() []string { return w.stream.Paths() }

func writeRecord(w *Stream, format Format, rd read.Read) error {
	if format == FormatFasta {
		return WriteFastaRecord(w, rd)
	}
	return WriteFastqRecord(w, rd)
}
