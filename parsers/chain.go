package parsers

import (
	"math/bits"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
)

// Opener lazily opens the Nth file of a chained input list. Files are
// opened one at a time (not all up front) so a segment with many large
// inputs does not hold every file descriptor open simultaneously.
type Opener func() (Parser, error)

// ChainedParser parses an ordered list of input files back-to-back,
// reporting isFinal=true only after the last file's last block (§4.2).
// Block size is measured in molecules, not bytes, matching every
// concrete Parser's target-reads-per-block contract.
type ChainedParser struct {
	openers []Opener
	idx     int
	cur     Parser

	Estimator *Estimator
}

// NewChainedParser builds a ChainedParser over openers, one per input
// file, applied in order.
func NewChainedParser(openers []Opener, est *Estimator) *ChainedParser {
	return &ChainedParser{openers: openers, Estimator: est}
}

func (c *ChainedParser) Close() error {
	if c.cur != nil {
		return c.cur.Close()
	}
	return nil
}

// Next implements Parser.
func (c *ChainedParser) Next() (read.Block, bool, error) {
	for {
		if c.cur == nil {
			if c.idx >= len(c.openers) {
				var empty read.Block
				return empty, true, nil
			}
			p, err := c.openers[c.idx]()
			if err != nil {
				var empty read.Block
				return empty, false, err
			}
			c.idx++
			c.cur = p
		}
		b, isFinalForFile, err := c.cur.Next()
		if err != nil {
			return b, false, err
		}
		if c.Estimator != nil {
			c.Estimator.Observe(&b)
		}
		lastFile := c.idx >= len(c.openers)
		if isFinalForFile {
			closeErr := c.cur.Close()
			c.cur = nil
			if closeErr != nil && err == nil {
				err = closeErr
			}
			if !lastFile {
				// this file's stream is exhausted but more files remain;
				// don't surface the empty terminal block from this file,
				// just move on to the next one.
				if err != nil {
					return b, false, err
				}
				continue
			}
			return b, true, err
		}
		return b, false, err
	}
}

// Estimator produces a power-of-two estimate of the total molecule count
// across a chained input, generalizing blockfmt.Converter.parallel's
// average-size-based heuristic from bytes-per-CPU to bytes-per-molecule
// (§4.2). The output writer uses this to preallocate chunk-filename
// width (§4.5) and filters use it as a capacity hint.
type Estimator struct {
	// TotalInputBytes is the sum of on-disk input size across every file
	// in the chain (after accounting for compression, see BytesPerBase).
	TotalInputBytes int64
	// BytesPerBase is a parser-family constant: ~1.0 for BAM, ~2.25 for
	// raw FASTQ, ~0.5 for gzip-compressed FASTQ-like text.
	BytesPerBase float64

	// ExactCount, if >0, overrides the heuristic estimate entirely (set
	// when a BAM index sidecar gives us the true record count).
	ExactCount int64

	observedReads  int64
	observedBases  int64
	haveFirstBlock bool
}

// Observe feeds a freshly-parsed block's statistics into the estimator.
// Only the first non-empty block is used to compute the average read
// length, per §4.2.
func (e *Estimator) Observe(b *read.Block) {
	if e.haveFirstBlock || b.Len() == 0 {
		return
	}
	var bases int64
	for _, r := range b.Entries() {
		bases += int64(r.Len())
	}
	e.observedReads = int64(b.Len())
	e.observedBases = bases
	e.haveFirstBlock = true
}

// Estimate returns the power-of-two estimate of total molecule count, or
// ExactCount if it was supplied.
func (e *Estimator) Estimate() int64 {
	if e.ExactCount > 0 {
		return e.ExactCount
	}
	if !e.haveFirstBlock || e.observedReads == 0 || e.observedBases == 0 {
		return 0
	}
	avgReadLen := float64(e.observedBases) / float64(e.observedReads)
	bpb := e.BytesPerBase
	if bpb <= 0 {
		bpb = 1.0
	}
	bytesPerRead := avgReadLen * bpb
	if bytesPerRead <= 0 {
		return 0
	}
	raw := float64(e.TotalInputBytes) / bytesPerRead
	if raw <= 1 {
		return 1
	}
	return nextPowerOfTwo(int64(raw))
}

func nextPowerOfTwo(n int64) int64 {
	if n <= 1 {
		return 1
	}
	return int64(1) << bits.Len64(uint64(n-1))
}

// Parser-family BytesPerBase constants, per §4.2.
const (
	BytesPerBaseBAM       = 1.0
	BytesPerBaseRawFastq  = 2.25
	BytesPerBaseGzipLike  = 0.5
)
