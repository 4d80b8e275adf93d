package builtin

import (
	"testing"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

// TestS2SpotCheckReadPairing implements scenario S2: two-segment
// interleaved FASTQ input with two molecules; "m1/1" & "m1/2" pass,
// "m1/1" & "m2/2" fail with a name-mismatch error naming molecule
// index 0... here expressed as two separate blocks (pass, then fail)
// to isolate each case.
func TestS2SpotCheckReadPairing(t *testing.T) {
	step := &SpotCheckReadPairing{ReadnameEndChar: ' '}
	info := demux.NewInfo()

	passing := read.CombinedBlock{
		Segments: []read.Block{
			mkBlock(t, [3]string{"m1/1", "ACGT", "IIII"}),
			mkBlock(t, [3]string{"m1/2", "ACGT", "IIII"}),
		},
	}
	if cont, err := step.Apply(&passing, testInput, 1, info); err != nil || !cont {
		t.Fatalf("expected matching mate names to pass, got cont=%v err=%v", cont, err)
	}

	failing := read.CombinedBlock{
		Segments: []read.Block{
			mkBlock(t, [3]string{"m1/1", "ACGT", "IIII"}),
			mkBlock(t, [3]string{"m2/2", "ACGT", "IIII"}),
		},
	}
	_, err := step.Apply(&failing, testInput, 1, info)
	if err == nil {
		t.Fatal("expected name-mismatch error")
	}
}

func TestValidateNameRequiresMultipleSegments(t *testing.T) {
	v := &ValidateName{}
	if err := v.ValidateSegments(transform.InputSpec{SegmentCount: 1}); err == nil {
		t.Fatal("expected error for single-segment input")
	}
}

func TestValidateNameExpandsToSpotCheck(t *testing.T) {
	v := &ValidateName{ReadnameEndChar: ' '}
	expanded := v.Expand()
	if len(expanded) != 1 {
		t.Fatalf("expected 1 expanded step, got %d", len(expanded))
	}
	if _, ok := expanded[0].(*SpotCheckReadPairing); !ok {
		t.Fatalf("expected *SpotCheckReadPairing, got %T", expanded[0])
	}
}
