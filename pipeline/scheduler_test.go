package pipeline

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/parsers"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform/builtin"
)

// fakeParser replays a fixed slice of blocks, then signals isFinal on a
// trailing empty call, matching FastqParser's own contract.
type fakeParser struct {
	blocks []read.Block
	i      int
}

func (f *fakeParser) Next() (read.Block, bool, error) {
	if f.i >= len(f.blocks) {
		return read.Block{}, true, nil
	}
	b := f.blocks[f.i]
	f.i++
	return b, false, nil
}

func (f *fakeParser) Close() error { return nil }

func mkBlock(t *testing.T, names ...string) read.Block {
	t.Helper()
	var b read.Block
	for _, n := range names {
		r, err := read.New([]byte(n), []byte("ACGT"), []byte("IIII"))
		require.NoError(t, err)
		b.Append(r)
	}
	return b
}

// fakeWriter records every block handed to it, in the order it was
// received.
type fakeWriter struct {
	mu     sync.Mutex
	blocks []int64 // BlockNo of every non-final block written, in arrival order
	total  int
}

func (w *fakeWriter) WriteBlock(cb *read.CombinedBlock) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.blocks = append(w.blocks, cb.BlockNo)
	w.total += cb.N()
	return nil
}

func (w *fakeWriter) Close() error { return nil }

var testInput = transform.InputSpec{SegmentLabels: map[string]int{"read1": 0}, SegmentCount: 1}

func TestSplitStagesGroupsByNeedsSerial(t *testing.T) {
	steps := []transform.Step{
		&builtin.CutStart{}, // parallel
		&builtin.CutEnd{},   // parallel
		&builtin.Head{N: 5}, // serial
		&builtin.Report{Label: "r"},
	}
	stages := SplitStages(steps)
	require.Len(t, stages, 2)
	require.False(t, stages[0].Serial)
	require.Len(t, stages[0].Steps, 2)
	require.True(t, stages[1].Serial)
	require.Len(t, stages[1].Steps, 2)
}

func TestAssignWorkersSplitsBudgetAcrossParallelStages(t *testing.T) {
	stages := []Stage{{Serial: false}, {Serial: true}, {Serial: false}}
	AssignWorkers(stages, 8)
	require.Equal(t, 4, stages[0].Workers)
	require.Equal(t, 1, stages[1].Workers)
	require.Equal(t, 4, stages[2].Workers)
}

// reorderingDelay is a parallel stage step whose processing time
// falls as its block_no grows (20-block_no ms), so worker completion order
// is scrambled relative to arrival order — exercising the scheduler's
// reorder buffer.
type reorderingDelay struct{ transform.Base }

func (reorderingDelay) Name() string { return "reorderingDelay" }

func (reorderingDelay) Apply(block *read.CombinedBlock, input transform.InputSpec, blockNo int64, info *demux.Info) (bool, error) {
	time.Sleep(time.Duration(20-blockNo) * time.Millisecond)
	return true, nil
}

func TestSchedulerPreservesBlockOrderAcrossParallelStage(t *testing.T) {
	var blocks []read.Block
	for i := 0; i < 6; i++ {
		blocks = append(blocks, mkBlock(t, fmt.Sprintf("m%d", i)))
	}
	comb := parsers.NewCombiner([]parsers.Parser{&fakeParser{blocks: blocks}})

	sched := NewScheduler([]transform.Step{&reorderingDelay{}}, 4)
	info := demux.NewInfo()
	require.NoError(t, sched.Init(testInput, "out", t.TempDir(), info, true))

	w := &fakeWriter{}
	require.NoError(t, sched.Run(comb, testInput, info, w))

	require.Equal(t, []int64{1, 2, 3, 4, 5, 6}, w.blocks)
	require.Equal(t, 6, w.total)
}

// TestSchedulerPrematureTermination reproduces scenario S3: a serial
// Head(N=2) truncates the stream after the second molecule, and a
// downstream Report (TransmitsPrematureTermination()==false) still
// finalizes with the truncated count rather than being bypassed.
func TestSchedulerPrematureTermination(t *testing.T) {
	blocks := []read.Block{
		mkBlock(t, "m1"),
		mkBlock(t, "m2"),
		mkBlock(t, "m3"),
		mkBlock(t, "m4"),
	}
	comb := parsers.NewCombiner([]parsers.Parser{&fakeParser{blocks: blocks}})

	head := &builtin.Head{N: 2}
	report := &builtin.Report{Label: "after_head", Count: true}
	sched := NewScheduler([]transform.Step{head, report}, 4)
	info := demux.NewInfo()
	require.NoError(t, sched.Init(testInput, "out", t.TempDir(), info, true))

	w := &fakeWriter{}
	require.NoError(t, sched.Run(comb, testInput, info, w))

	require.Equal(t, 2, w.total)

	frag, order, err := sched.Finalize(info)
	require.NoError(t, err)
	require.Equal(t, []string{"after_head"}, order)
	rep, ok := frag["after_head"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, int64(2), rep["count"])
}

// badWriter always fails, verifying the scheduler drains remaining
// blocks (rather than deadlocking) and reports the error.
type badWriter struct{}

func (badWriter) WriteBlock(cb *read.CombinedBlock) error { return fmt.Errorf("disk full") }
func (badWriter) Close() error                            { return nil }

func TestSchedulerDrainsOnWriterFailure(t *testing.T) {
	var blocks []read.Block
	for i := 0; i < 5; i++ {
		blocks = append(blocks, mkBlock(t, fmt.Sprintf("m%d", i)))
	}
	comb := parsers.NewCombiner([]parsers.Parser{&fakeParser{blocks: blocks}})

	sched := NewScheduler([]transform.Step{&builtin.CutStart{N: 1}}, 2)
	info := demux.NewInfo()
	require.NoError(t, sched.Init(testInput, "out", t.TempDir(), info, true))

	err := sched.Run(comb, testInput, info, badWriter{})
	require.Error(t, err)
}
