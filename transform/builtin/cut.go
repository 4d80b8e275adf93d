package builtin

import (
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

// CutStart removes the first N bases (and matching quality bytes) of
// one segment, rewriting any location tag referencing that segment so
// it still points at the surviving bases (scenario S4). Grounded on
// original_source/src/transformations/edits/cut_start.rs, with the
// location-rewrite rule changed from "remove any tag overlapping the
// cut at all" to "truncate a straddling tag to what survives" — the
// original's blunter rule would have discarded tag data the cut only
// partially consumes.
type CutStart struct {
	transform.Base
	N       int
	Segment int
}

func (c *CutStart) Name() string { return "CutStart" }

func (c *CutStart) Apply(block *read.CombinedBlock, input transform.InputSpec, blockNo int64, info *demux.Info) (bool, error) {
	block.ApplyInPlace(c.Segment, func(r read.Read) read.Read {
		n := c.N
		if n > r.Len() {
			n = r.Len()
		}
		return r.WithSeqQual(r.Seq()[n:], r.Qual()[n:])
	}, nil)
	block.FilterTagLocations(c.Segment, read.CutStartLocationTransform(c.N))
	return true, nil
}

// CutEnd removes the last N bases (and matching quality bytes) of one
// segment, rewriting location tags the same way CutStart does.
// Grounded on the same cut_start.rs shape, mirrored to the tail.
type CutEnd struct {
	transform.Base
	N       int
	Segment int
}

func (c *CutEnd) Name() string { return "CutEnd" }

func (c *CutEnd) Apply(block *read.CombinedBlock, input transform.InputSpec, blockNo int64, info *demux.Info) (bool, error) {
	entries := block.Segments[c.Segment].Entries()
	readLen := func(i int) int { return entries[i].Len() }
	block.FilterTagLocations(c.Segment, read.CutEndLocationTransform(c.N, readLen))

	block.ApplyInPlace(c.Segment, func(r read.Read) read.Read {
		newLen := r.Len() - c.N
		if newLen < 0 {
			newLen = 0
		}
		return r.WithSeqQual(r.Seq()[:newLen], r.Qual()[:newLen])
	}, nil)
	return true, nil
}
