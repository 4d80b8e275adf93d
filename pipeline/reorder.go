package pipeline

import "github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"

// reorderBuffer restores block_no order across a stage boundary (§4.4:
// "each parallel stage's output is re-sorted at the next serial stage
// or at the writer via a reorder buffer keyed by block_no"). The
// scheduler runs one after every stage, serial or parallel: a serial
// stage's single worker already emits in order, so its reorder buffer
// degenerates to an immediate pass-through, which costs nothing and
// keeps the wiring between stages uniform instead of conditional on
// the previous stage's parallelism.
type reorderBuffer struct {
	next    int64
	pending map[int64]*read.CombinedBlock
}

func newReorderBuffer(start int64) *reorderBuffer {
	return &reorderBuffer{next: start, pending: make(map[int64]*read.CombinedBlock)}
}

// push records cb and returns every block, in block_no order, that is
// now ready to release — cb itself if it's next, plus any already-held
// blocks that were waiting only on cb.
func (r *reorderBuffer) push(cb *read.CombinedBlock) []*read.CombinedBlock {
	r.pending[cb.BlockNo] = cb
	var ready []*read.CombinedBlock
	for {
		b, ok := r.pending[r.next]
		if !ok {
			break
		}
		ready = append(ready, b)
		delete(r.pending, r.next)
		r.next++
	}
	return ready
}
