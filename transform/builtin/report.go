package builtin

import (
	"bytes"
	"fmt"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/logging"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

// Report is a collector sink: it counts molecules and, when enabled,
// accumulates a length distribution and oligo-occurrence counts, then
// emits one JSON fragment on Finalize keyed by Label (§4.7). It does
// not transmit premature termination (scenario S3: a Head upstream
// truncates the stream, but Report still reports the truncated count
// and still runs its finalizer exactly once) — this is the report
// sink's defining property, grounded on
// original_source/src/transformations/reports/report.rs's Report step
// and on report.rs's run-to-completion contract for aggregation steps.
type Report struct {
	transform.Base
	Label string

	Count              bool
	LengthDistribution bool
	CountOligos        []string
	CountOligosSegment int // -1 means "all segments"

	// ProgressEvery, if non-zero, logs "processed N molecules" every
	// time the cumulative count crosses a multiple of it (§4.7
	// "emitting periodic progress lines"). Logger is required when
	// ProgressEvery is non-zero.
	ProgressEvery int64
	Logger        *logging.Logger

	count       int64
	processed   int64 // tracked unconditionally, for ProgressEvery, independent of Count
	lengthDist  map[int]int64
	oligoCounts map[string]int64
}

func (r *Report) Name() string { return r.Label }

func (r *Report) TransmitsPrematureTermination() bool { return false }

// NeedsSerial is true: Report accumulates count/lengthDist/oligoCounts
// across the whole run in a single instance. Cloned per-worker copies
// would each tally only the blocks routed to them, and Finalize has no
// merge step to recombine the shards.
func (r *Report) NeedsSerial() bool { return true }

func (r *Report) ValidateOthers(input transform.InputSpec, output transform.OutputSpec, all []transform.Step, thisIndex int) error {
	if r.Label == "" {
		return fmt.Errorf("Report requires a non-empty label")
	}
	seen := map[string]bool{}
	for _, s := range all {
		rep, ok := s.(*Report)
		if !ok {
			continue
		}
		if seen[rep.Label] {
			return fmt.Errorf("Report labels must be distinct, duplicated: %q", rep.Label)
		}
		seen[rep.Label] = true
	}
	for _, oligo := range r.CountOligos {
		if len(oligo) == 0 {
			return fmt.Errorf("oligo cannot be empty")
		}
	}
	return nil
}

func (r *Report) Apply(block *read.CombinedBlock, input transform.InputSpec, blockNo int64, info *demux.Info) (bool, error) {
	if r.ProgressEvery > 0 && r.Logger != nil {
		before := r.processed
		after := before + int64(block.N())
		if before/r.ProgressEvery != after/r.ProgressEvery {
			r.Logger.Printf("processed %d molecules", (after/r.ProgressEvery)*r.ProgressEvery)
		}
		r.processed = after
	}
	if r.Count {
		r.count += int64(block.N())
	}
	if r.LengthDistribution {
		if r.lengthDist == nil {
			r.lengthDist = make(map[int]int64)
		}
		for _, seg := range block.Segments {
			for _, rd := range seg.Entries() {
				r.lengthDist[rd.Len()]++
			}
		}
	}
	if len(r.CountOligos) > 0 {
		if r.oligoCounts == nil {
			r.oligoCounts = make(map[string]int64, len(r.CountOligos))
		}
		segments := block.Segments
		if r.CountOligosSegment >= 0 && r.CountOligosSegment < len(segments) {
			segments = segments[r.CountOligosSegment : r.CountOligosSegment+1]
		}
		for _, seg := range segments {
			for _, rd := range seg.Entries() {
				for _, oligo := range r.CountOligos {
					r.oligoCounts[oligo] += int64(bytes.Count(rd.Seq(), []byte(oligo)))
				}
			}
		}
	}
	return true, nil
}

func (r *Report) Finalize(info *demux.Info) (map[string]any, error) {
	out := map[string]any{}
	if r.Count {
		out["count"] = r.count
	}
	if r.LengthDistribution {
		dist := make(map[string]int64, len(r.lengthDist))
		for length, n := range r.lengthDist {
			dist[fmt.Sprintf("%d", length)] = n
		}
		out["length_distribution"] = dist
	}
	if len(r.CountOligos) > 0 {
		out["count_oligos"] = r.oligoCounts
	}
	return map[string]any{r.Label: out}, nil
}
