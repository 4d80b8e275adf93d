// Package transform defines the transformation contract (C3): the Step
// interface every pipeline stage implements, the expansion rule that
// lowers a configured step into a sequence of primitive sub-steps, and
// the tag-type checking pass that runs after expansion and before
// scheduling. Grounded on blockfmt.RowFormat's validate-then-run
// interface shape and on plan/pir's multi-pass lowering.
package transform

import (
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
)

// InputSpec describes the segments and their labels available to a step
// at validation and run time.
type InputSpec struct {
	// SegmentLabels maps a user-facing segment label (e.g. "read1",
	// "index2") to its index within a CombinedBlock.Segments.
	SegmentLabels map[string]int
	// SegmentCount is len(SegmentLabels); kept separate so a step can
	// validate an index without a label (e.g. after expansion).
	SegmentCount int
}

// OutputSpec describes the output configuration visible to
// ValidateOthers (file modes, segment selection for interleaving, etc).
// It is intentionally opaque here — concrete fields belong to the
// external configuration collaborator (spec §1); steps receive only
// what they need via the fields already threaded through InputSpec and
// their own configuration.
type OutputSpec struct {
	Mode string // "segmented" | "interleaved" | "bam" | "none"
}

// TagDecl names a tag and the type of value a step will store at that
// name (§4.3 "declares_tag_type").
type TagDecl struct {
	Name read.TagName
	Type read.TagValueType
}

// TagUse names a tag a step reads and the set of types it accepts at
// that name.
type TagUse struct {
	Name          read.TagName
	AllowedTypes  []read.TagValueType
}

// Step is the transformation contract every pipeline stage implements
// (§4.3).
type Step interface {
	// DeclaresTagType returns the name and type of any tag this step
	// produces, or false if it produces none.
	DeclaresTagType() (TagDecl, bool)

	// UsesTags returns the tags this step reads. The pipeline verifies
	// every referenced tag was declared by an earlier step with a
	// compatible type.
	UsesTags() []TagUse

	// ValidateSegments resolves any segment labels this step references
	// against spec, failing on unknown or duplicate labels.
	ValidateSegments(spec InputSpec) error

	// ValidateOthers performs cross-cutting checks that need visibility
	// into the whole pipeline: duplicate tag names, reserved prefixes,
	// numeric ranges, "seed required when false_positive_rate>0", etc.
	ValidateOthers(input InputSpec, output OutputSpec, all []Step, thisIndex int) error

	// Init performs lazy resource acquisition (opening barcode files,
	// output handles for a step-local report, etc). A step may return
	// demultiplex barcodes that the pipeline merges into the run's
	// demux.Info; steps that don't participate in demultiplexing return
	// nil.
	Init(input InputSpec, outputPrefix, outputDir string, info *demux.Info, allowOverwrite bool) (*demux.Barcodes, error)

	// Apply is the hot path: it transforms one combined block.
	// continueFlag=false signals premature termination (§4.3, §4.4):
	// the scheduler will stop asking upstream stages for more blocks,
	// honoring TransmitsPrematureTermination on intervening steps.
	Apply(block *read.CombinedBlock, input InputSpec, blockNo int64, info *demux.Info) (cont bool, err error)

	// Finalize emits final outputs (files, aggregated reports) and may
	// return a JSON fragment merged into the aggregate report (§4.7).
	Finalize(info *demux.Info) (report map[string]any, err error)

	// NeedsSerial declares that instances of this step must run
	// single-threaded and observe blocks in block order.
	NeedsSerial() bool

	// TransmitsPrematureTermination reports whether premature
	// termination declared by an earlier step may propagate past this
	// step without it observing every block up to and including the
	// final real one. Default true; report sinks override to false.
	TransmitsPrematureTermination() bool

	// UsesAllTags reports whether this step needs every tag column
	// serialized (e.g. a table exporter), bypassing the usual
	// UsesTags()-based dependency check.
	UsesAllTags() bool

	// Name identifies the step for diagnostics and report ordering.
	Name() string
}

// Base is embeddable by concrete Step implementations to provide the
// common no-op defaults spec.md describes (no tag declared, no tags
// used, transmits premature termination, not serial, doesn't need all
// tags), so each builtin step only overrides what it actually uses —
// the same "small interface, most methods trivial" shape
// blockfmt.RowFormat implementations share.
type Base struct{}

func (Base) DeclaresTagType() (TagDecl, bool)                  { return TagDecl{}, false }
func (Base) UsesTags() []TagUse                                { return nil }
func (Base) ValidateSegments(InputSpec) error                  { return nil }
func (Base) ValidateOthers(InputSpec, OutputSpec, []Step, int) error { return nil }
func (Base) Init(InputSpec, string, string, *demux.Info, bool) (*demux.Barcodes, error) {
	return nil, nil
}
func (Base) Finalize(*demux.Info) (map[string]any, error) { return nil, nil }
func (Base) NeedsSerial() bool                             { return false }
func (Base) TransmitsPrematureTermination() bool            { return true }
func (Base) UsesAllTags() bool                              { return false }
