// Package pipeline implements the scheduler (C4): it splits a step list
// into stages by NeedsSerial, runs each stage as a pool of worker
// goroutines connected by bounded channels, reorders parallel-stage
// output back into block order, and propagates premature termination
// and cancellation through a process-wide atomic flag. Grounded
// directly on blockfmt.Converter.runMulti (convert.go): shared input
// channel, per-worker goroutine, buffered error channel, consume()
// drain-on-error helper, "%w (and %d other errors)" aggregation —
// generalized here from "N parallel upload streams" to "N sequential
// stages, each internally parallel, reordered between stages".
package pipeline

import "github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"

// Stage is a maximal run of consecutive steps sharing the same
// NeedsSerial value, plus the worker count the scheduler assigns it.
type Stage struct {
	Steps   []transform.Step
	Serial  bool
	Workers int
}

// SplitStages groups steps into maximal runs of equal NeedsSerial,
// preserving declaration order (§4.4 "stage splitting"). A serial step
// never shares a stage with a parallel one, even if they're adjacent in
// the configured step list, so stage boundaries alternate strictly
// between the two kinds.
func SplitStages(steps []transform.Step) []Stage {
	if len(steps) == 0 {
		return nil
	}
	var stages []Stage
	start := 0
	for i := 1; i <= len(steps); i++ {
		if i == len(steps) || steps[i].NeedsSerial() != steps[start].NeedsSerial() {
			stages = append(stages, Stage{
				Steps:  steps[start:i],
				Serial: steps[start].NeedsSerial(),
			})
			start = i
		}
	}
	return stages
}

// AssignWorkers sets Workers on each stage: 1 for serial stages, and an
// even share of threadBudget (floor 1) split across the parallel
// stages, matching runMulti's "one goroutine per configured worker,
// split across the concurrent streams" allocation.
func AssignWorkers(stages []Stage, threadBudget int) {
	parallelCount := 0
	for _, s := range stages {
		if !s.Serial {
			parallelCount++
		}
	}
	per := 1
	if parallelCount > 0 && threadBudget > parallelCount {
		per = threadBudget / parallelCount
	}
	for i := range stages {
		if stages[i].Serial {
			stages[i].Workers = 1
		} else {
			stages[i].Workers = per
		}
	}
}
