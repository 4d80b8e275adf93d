package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/fqerr"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/parsers"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

// queueDepth is the bounded channel capacity between pipeline stages
// (§4.4 "bounded channels, capacity on the order of twice the stage's
// worker count"). A fixed depth keeps the scheduler simple; per-stage
// sizing based on Workers would only matter for throughput tuning,
// which is out of scope here.
const queueDepth = 8

// WriterSink is the narrow interface the scheduler writes finished
// blocks to — satisfied by output.Writer and output.BucketedWriter.
type WriterSink interface {
	WriteBlock(cb *read.CombinedBlock) error
	Close() error
}

// Scheduler runs a configured step list against a Combiner and a
// WriterSink (§4.4). Grounded directly on blockfmt.Converter.runMulti's
// worker-pool-plus-error-channel shape (convert.go), generalized from
// "N parallel upload streams" to "N sequential stages, each internally
// parallel, reordered between stages".
type Scheduler struct {
	stages []Stage
	// workerSteps[i][w] is the step list worker w of stage i runs.
	// Built once at construction so the same instances Init and
	// Finalize touch are the ones Run actually schedules — cloning
	// again inside Run would Apply to instances Init never saw.
	workerSteps [][][]transform.Step

	terminated int32 // atomic; set on premature termination or any error

	errMu  sync.Mutex
	errAgg fqerr.Aggregate
}

// NewScheduler splits steps into stages, assigns each a worker count
// drawn from threadBudget, and clones per-worker step instances for
// every parallel stage up front.
func NewScheduler(steps []transform.Step, threadBudget int) *Scheduler {
	stages := SplitStages(steps)
	AssignWorkers(stages, threadBudget)
	workerSteps := make([][][]transform.Step, len(stages))
	for i, st := range stages {
		workerSteps[i] = cloneStage(st)
	}
	return &Scheduler{stages: stages, workerSteps: workerSteps}
}

// Stages exposes the computed stage list, chiefly for tests and
// diagnostics.
func (s *Scheduler) Stages() []Stage { return s.stages }

// Init runs Init on every step instance scheduled to run — every
// worker's clone, not just one representative — since each clone holds
// its own Init-built state (e.g. a Demultiplex clone's barcode table)
// that its own Apply calls later depend on.
func (s *Scheduler) Init(input transform.InputSpec, outputPrefix, outputDir string, info *demux.Info, allowOverwrite bool) error {
	var agg fqerr.Aggregate
	for _, workers := range s.workerSteps {
		for _, steps := range workers {
			for _, step := range steps {
				if _, err := step.Init(input, outputPrefix, outputDir, info, allowOverwrite); err != nil {
					agg.Add(err)
				}
			}
		}
	}
	return agg.Err()
}

// Finalize runs Finalize on exactly one instance per configured step —
// worker 0's, which cloneStage always leaves uncloned — merging
// non-nil report fragments into one object and recording the order
// fragments were produced in (§4.7's report_order). Calling Finalize
// on every worker clone of a parallel stage would double-count any
// step that (unusually) accumulates state across Finalize calls; the
// builtins don't, but worker 0 is the only instance guaranteed not to
// need a merge step regardless.
func (s *Scheduler) Finalize(info *demux.Info) (report map[string]any, order []string, err error) {
	report = map[string]any{}
	var agg fqerr.Aggregate
	for _, workers := range s.workerSteps {
		if len(workers) == 0 {
			continue
		}
		for _, step := range workers[0] {
			frag, ferr := step.Finalize(info)
			if ferr != nil {
				agg.Add(ferr)
				continue
			}
			for k, v := range frag {
				order = append(order, k)
				report[k] = v
			}
		}
	}
	return report, order, agg.Err()
}

func (s *Scheduler) recordError(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	s.errAgg.Add(err)
	s.errMu.Unlock()
	atomic.StoreInt32(&s.terminated, 1)
}

func (s *Scheduler) isTerminated() bool { return atomic.LoadInt32(&s.terminated) == 1 }

// Run drives blocks from comb through every stage and into writer,
// returning the aggregated error from every worker and the writer
// (§7). It blocks until the run is complete: either comb is exhausted,
// a step declared premature termination (§4.3/§4.4), or a worker or the
// writer failed.
func (s *Scheduler) Run(comb *parsers.Combiner, input transform.InputSpec, info *demux.Info, writer WriterSink) error {
	chans := make([]chan *read.CombinedBlock, len(s.stages)+1)
	for i := range chans {
		chans[i] = make(chan *read.CombinedBlock, queueDepth)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.combinerLoop(comb, chans[0])
	}()

	for i := range s.stages {
		in := chans[i]
		out := chans[i+1]
		rawOut := make(chan *read.CombinedBlock, queueDepth)

		var stageWG sync.WaitGroup
		for _, steps := range s.workerSteps[i] {
			stageWG.Add(1)
			go func(steps []transform.Step) {
				defer stageWG.Done()
				s.runWorker(steps, in, rawOut, input, info)
			}(steps)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			stageWG.Wait()
			close(rawOut)
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.reorderRelay(rawOut, out, 1)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writerLoop(chans[len(s.stages)], writer)
	}()

	wg.Wait()

	if err := writer.Close(); err != nil {
		s.recordError(err)
	}
	return s.errAgg.Err()
}

// combinerLoop feeds out from comb.Next() until exhaustion, an error,
// or the termination flag is observed (§4.4 "upstream stages observe
// the flag ... instead of panicking on a closed channel, they exit
// cleanly"). Once terminated, it synthesizes the final sentinel itself
// rather than pulling more real blocks, so every downstream step still
// observes exactly one terminal cohort regardless of which step
// requested termination.
func (s *Scheduler) combinerLoop(comb *parsers.Combiner, out chan<- *read.CombinedBlock) {
	defer close(out)
	for {
		if s.isTerminated() {
			out <- &read.CombinedBlock{IsFinal: true, BlockNo: comb.NextBlockNo()}
			return
		}
		cb, err := comb.Next()
		if err != nil {
			s.recordError(err)
			return
		}
		out <- cb
		if cb.IsFinal {
			return
		}
	}
}

// runWorker applies steps to every non-final block received from in,
// forwarding each block (including the final sentinel, untouched) to
// out. A block already accepted onto in is always carried all the way
// to the writer — termination only stops the combiner from accepting
// more input, never drops a block already in flight — which is what
// lets a step with TransmitsPrematureTermination()==false observe the
// exact final block regardless of when termination was requested.
func (s *Scheduler) runWorker(steps []transform.Step, in <-chan *read.CombinedBlock, out chan<- *read.CombinedBlock, input transform.InputSpec, info *demux.Info) {
	for cb := range in {
		if !cb.IsFinal {
			for _, step := range steps {
				cont, err := step.Apply(cb, input, cb.BlockNo, info)
				if err != nil {
					s.recordError(err)
					break
				}
				if err := cb.CheckInvariants(); err != nil {
					s.recordError(fmt.Errorf("after %s: %w", step.Name(), err))
					break
				}
				if !cont {
					atomic.StoreInt32(&s.terminated, 1)
				}
			}
		}
		out <- cb
	}
}

// reorderRelay restores block_no order on the way out of one stage.
func (s *Scheduler) reorderRelay(in <-chan *read.CombinedBlock, out chan<- *read.CombinedBlock, start int64) {
	defer close(out)
	buf := newReorderBuffer(start)
	for cb := range in {
		for _, ready := range buf.push(cb) {
			out <- ready
		}
	}
}

// writerLoop hands every non-final block to writer in order. Once
// writer fails, it keeps draining in (without writing) rather than
// returning immediately, so upstream stage workers never block forever
// on a full channel with nobody left to read it — the same consume()
// drain-on-error shape blockfmt.Converter.runMulti uses.
func (s *Scheduler) writerLoop(in <-chan *read.CombinedBlock, writer WriterSink) {
	failed := false
	for cb := range in {
		if failed || cb.IsFinal {
			continue
		}
		if err := writer.WriteBlock(cb); err != nil {
			s.recordError(err)
			failed = true
		}
	}
}
