package parsers

import (
	"fmt"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/fqerr"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
)

// Combiner zips one Parser per segment into a stream of
// read.CombinedBlock cohorts, assigning a monotonically increasing
// BlockNo starting at 1 (§4.2), used by the scheduler to reconstruct
// output order across parallel stages (§4.4). Grounded on
// blockfmt.MultiWriter's per-stream bookkeeping (multiwriter.go
// singleStream.tid), adapted from "one stream per upload worker" to
// "one stream per input segment, zipped".
type Combiner struct {
	segments []Parser
	nextNo   int64
}

// NewCombiner builds a Combiner over one Parser per segment, in segment
// order.
func NewCombiner(segments []Parser) *Combiner {
	return &Combiner{segments: segments, nextNo: 1}
}

// NextBlockNo returns the BlockNo that the next real block (or the final
// sentinel, if produced before any more real blocks arrive) will carry.
func (c *Combiner) NextBlockNo() int64 { return c.nextNo }

// Close closes every segment parser.
func (c *Combiner) Close() error {
	var agg fqerr.Aggregate
	for _, p := range c.segments {
		agg.Add(p.Close())
	}
	return agg.Err()
}

// Next produces the next combined block. It requires equal entry counts
// across every segment's next block; otherwise it fails with a
// SegmentLengthMismatch-flavored InputError (§4.2).
func (c *Combiner) Next() (*read.CombinedBlock, error) {
	blocks := make([]read.Block, len(c.segments))
	finals := make([]bool, len(c.segments))
	for i, p := range c.segments {
		b, isFinal, err := p.Next()
		if err != nil {
			return nil, err
		}
		blocks[i] = b
		finals[i] = isFinal
	}

	n := -1
	for i := range blocks {
		if n == -1 {
			n = blocks[i].Len()
			continue
		}
		if blocks[i].Len() != n {
			return nil, &fqerr.InputError{Msg: fmt.Sprintf(
				"segment length mismatch: segment 0 has %d reads, segment %d has %d",
				n, i, blocks[i].Len())}
		}
	}

	allFinal := true
	for _, f := range finals {
		if !f {
			allFinal = false
			break
		}
	}
	if allFinal && n <= 0 {
		return &read.CombinedBlock{IsFinal: true, BlockNo: c.nextNo}, nil
	}
	for i, f := range finals {
		if f != allFinal {
			return nil, &fqerr.InputError{Msg: fmt.Sprintf(
				"segment %d reached end of input out of step with its peers", i)}
		}
	}

	cb := &read.CombinedBlock{
		BlockNo:  c.nextNo,
		Segments: blocks,
		IsFinal:  allFinal && n == 0,
	}
	c.nextNo++
	return cb, nil
}
