package pipeline

import "github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"

// cloneStep returns an independent copy of s for a parallel stage's
// worker (§4.4 "each worker owns its own instance of each step in its
// stage, cloned at stage start"). Every builtin step is a pointer to a
// plain struct of configuration fields plus private accumulator state
// (Head.seen, Report.count, ...); a shallow field copy behind a new
// pointer gives each worker its own accumulators while sharing nothing
// mutable with its siblings. Steps that aren't pointer-to-struct (none
// in this codebase, but the interface doesn't forbid it) are returned
// as-is: they carry no worker-private state to isolate.
func cloneStep(s transform.Step) transform.Step {
	cloner, ok := s.(interface{ Clone() transform.Step })
	if ok {
		return cloner.Clone()
	}
	return shallowCopy(s)
}

// cloneStage returns one independent []transform.Step per worker of a
// parallel stage. Serial stages (Workers==1) are never cloned: the sole
// worker runs the original instances directly, so Init/Finalize side
// effects (barcode registration, report accumulation) happen exactly
// once.
func cloneStage(stage Stage) [][]transform.Step {
	if stage.Serial || stage.Workers <= 1 {
		return [][]transform.Step{stage.Steps}
	}
	out := make([][]transform.Step, stage.Workers)
	for w := range out {
		steps := make([]transform.Step, len(stage.Steps))
		for i, s := range stage.Steps {
			if w == 0 {
				steps[i] = s
			} else {
				steps[i] = cloneStep(s)
			}
		}
		out[w] = steps
	}
	return out
}
