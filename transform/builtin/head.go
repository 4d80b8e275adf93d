package builtin

import (
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

// Head passes through only the first N molecules seen across the
// entire run, then signals premature termination (scenario S3): the
// scheduler stops pulling more blocks from upstream, but steps after
// Head (e.g. a Report with TransmitsPrematureTermination()==false)
// still see every molecule Head emitted and still finalize exactly
// once.
type Head struct {
	transform.Base
	N int64

	seen int64
}

func (h *Head) Name() string { return "Head" }

// NeedsSerial is true: Head counts molecules cumulatively across the
// whole run, so it must see every block exactly once, in order, from a
// single instance — cloned per-worker copies would each count only
// their own share of blocks and never agree on when N has been reached.
func (h *Head) NeedsSerial() bool { return true }

func (h *Head) Apply(block *read.CombinedBlock, input transform.InputSpec, blockNo int64, info *demux.Info) (bool, error) {
	remaining := h.N - h.seen
	if remaining <= 0 {
		block.Filter(make([]bool, block.N()))
		return false, nil
	}
	n := int64(block.N())
	if n <= remaining {
		h.seen += n
		return h.seen < h.N, nil
	}
	keep := make([]bool, n)
	for i := int64(0); i < remaining; i++ {
		keep[i] = true
	}
	block.Filter(keep)
	h.seen = h.N
	return false, nil
}
