package output

import (
	"fmt"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/fqerr"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
)

// ProgramID/ProgramName identify this processor in the BAM header's
// @PG line (§6.2: "BAM header is fixed: version 1.6, sort-order
// unsorted, with a @PG line naming this program").
const (
	ProgramID   = "fqprocd"
	ProgramName = "mbf-fastq-processor-sub001"
)

// bamWriter emits one BAM file containing unaligned records flagged
// per segment position (§4.5: "records flagged SEGMENTED|FIRST/LAST_SEGMENT|MATE_UNMAPPED
// for multi-segment output"). BGZF framing and BAM encoding are
// consumed entirely through biogo/hts/bam, the external collaborator
// named in spec §1 — this package never reimplements BGZF.
type bamWriter struct {
	f   *os.File
	w   *bam.Writer
	cfg Config
}

func newBAMWriter(cfg Config) (Writer, error) {
	if len(cfg.SegmentNames) == 0 {
		return nil, fmt.Errorf("output: BAM mode requires at least one segment")
	}
	base := BaseName(cfg.Dir, cfg.Prefix, cfg.Sep, cfg.Infix, "")
	path := fmt.Sprintf("%s.bam", base)
	f, err := OpenOutputFile(path, cfg.AllowOverwrite, false)
	if err != nil {
		return nil, err
	}

	header, err := sam.NewHeader(nil, nil)
	if err != nil {
		f.Close()
		return nil, &fqerr.OutputError{Path: path, Msg: "building BAM header", Err: err}
	}
	header.Version = "1.6"
	header.SortOrder = sam.Unsorted
	if err := header.AddProgram(&sam.Program{
		ID:      ProgramID,
		Name:    ProgramName,
		Version: ProgramName,
	}); err != nil {
		f.Close()
		return nil, &fqerr.OutputError{Path: path, Msg: "adding @PG header line", Err: err}
	}

	w, err := bam.NewWriter(f, header, 1)
	if err != nil {
		f.Close()
		return nil, &fqerr.OutputError{Path: path, Msg: "opening BAM writer", Err: err}
	}
	return &bamWriter{f: f, w: w, cfg: cfg}, nil
}

// segmentFlags returns the SAM flags describing segIdx's position
// among nSegments unaligned segments, per §4.5/§6.2.
func segmentFlags(segIdx, nSegments int) sam.Flags {
	flags := sam.Unmapped
	if nSegments <= 1 {
		return flags
	}
	flags |= sam.Paired | sam.MateUnmapped
	switch {
	case segIdx == 0:
		flags |= sam.Read1
	case segIdx == nSegments-1:
		flags |= sam.Read2
	default:
		flags |= sam.Read1 | sam.Read2
	}
	return flags
}

// toRecord converts one read into an unaligned sam.Record carrying
// segIdx's flags. Quality bytes are stored by biogo/hts as raw Phred
// scores (0-93); the pipeline's quality bytes are ASCII Phred+33, so
// this reverses the BAM parser's convert() encoding.
func toRecord(rd read.Read, segIdx, nSegments int) (*sam.Record, error) {
	rawQual := make([]byte, rd.Len())
	for i, q := range rd.Qual() {
		if q < 33 {
			rawQual[i] = 0
			continue
		}
		rawQual[i] = q - 33
	}
	rec, err := sam.NewRecord(string(rd.Name()), nil, nil, -1, -1, 0, 255, nil, rd.Seq(), rawQual, nil)
	if err != nil {
		return nil, err
	}
	rec.Flags = segmentFlags(segIdx, nSegments)
	return rec, nil
}

func (w *bamWriter) WriteBlock(cb *read.CombinedBlock) error {
	n := cb.N()
	nSegments := len(cb.Segments)
	for segIdx, seg := range cb.Segments {
		for i := 0; i < n; i++ {
			rec, err := toRecord(seg.Entries()[i], segIdx, nSegments)
			if err != nil {
				return &fqerr.OutputError{Msg: "building BAM record", Err: err}
			}
			if _, err := w.w.Write(rec); err != nil {
				return &fqerr.OutputError{Msg: "writing BAM record", Err: err}
			}
		}
	}
	return nil
}

func (w *bamWriter) Close() error {
	var agg fqerr.Aggregate
	agg.Add(w.w.Close())
	agg.Add(w.f.Close())
	return agg.Err()
}

func (w *bamWriter) Paths() []string {
	return []string{fmt.Sprintf("%s.bam", BaseName(w.cfg.Dir, w.cfg.Prefix, w.cfg.Sep, w.cfg.Infix, ""))}
}
