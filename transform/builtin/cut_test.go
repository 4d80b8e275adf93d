package builtin

import (
	"testing"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
)

// TestS4CutStart implements scenario S4 exactly.
func TestS4CutStart(t *testing.T) {
	loc1 := read.HitRegion{Start: 1, Len: 4, SegmentIndex: 0}
	loc2 := read.HitRegion{Start: 0, Len: 2, SegmentIndex: 0}
	block := read.CombinedBlock{
		Segments: []read.Block{mkBlock(t, [3]string{"m1", "ACGTACGT", "IIIIIIII"})},
		Tags: map[read.TagName]*read.TagColumn{
			"adapter": {Name: "adapter", Type: read.TagTypeLocation, Values: []read.TagValue{
				read.LocationValue(read.Hits{{Location: &loc1}, {Location: &loc2}}),
			}},
		},
	}
	step := &CutStart{N: 3, Segment: 0}
	info := demux.NewInfo()
	if cont, err := step.Apply(&block, testInput, 1, info); err != nil || !cont {
		t.Fatalf("unexpected result: cont=%v err=%v", cont, err)
	}
	if string(block.Segments[0].Entries()[0].Seq()) != "TACGT" {
		t.Fatalf("expected trimmed seq TACGT, got %s", block.Segments[0].Entries()[0].Seq())
	}
	hits := block.Tags["adapter"].Values[0].Hits
	if len(hits) != 1 {
		t.Fatalf("expected 1 surviving hit, got %d", len(hits))
	}
	if hits[0].Location.Start != 0 || hits[0].Location.Len != 2 {
		t.Fatalf("expected (0,2), got (%d,%d)", hits[0].Location.Start, hits[0].Location.Len)
	}
	if err := block.CheckInvariants(); err != nil {
		t.Fatalf("invariants broken: %v", err)
	}
}

func TestCutEndTrimsPerReadLength(t *testing.T) {
	block := read.CombinedBlock{
		Segments: []read.Block{mkBlock(t,
			[3]string{"m1", "ACGTACGT", "IIIIIIII"},
			[3]string{"m2", "AC", "II"},
		)},
	}
	step := &CutEnd{N: 3, Segment: 0}
	info := demux.NewInfo()
	if _, err := step.Apply(&block, testInput, 1, info); err != nil {
		t.Fatal(err)
	}
	if string(block.Segments[0].Entries()[0].Seq()) != "ACGTA" {
		t.Fatalf("expected ACGTA, got %s", block.Segments[0].Entries()[0].Seq())
	}
	if string(block.Segments[0].Entries()[1].Seq()) != "" {
		t.Fatalf("expected empty result for a read shorter than the cut, got %q", block.Segments[0].Entries()[1].Seq())
	}
}
