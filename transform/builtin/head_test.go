package builtin

import (
	"testing"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
)

func mkNBlock(t *testing.T, n int) read.CombinedBlock {
	t.Helper()
	var seg read.Block
	for i := 0; i < n; i++ {
		seg.Append(mkRead(t, "r", "A", "I"))
	}
	return read.CombinedBlock{Segments: []read.Block{seg}}
}

// TestS3Head implements scenario S3: Head(n=5) over more reads than
// that truncates to exactly 5 and signals premature termination.
func TestS3Head(t *testing.T) {
	step := &Head{N: 5}
	info := demux.NewInfo()

	block := mkNBlock(t, 3)
	cont, err := step.Apply(&block, testInput, 1, info)
	if err != nil || !cont {
		t.Fatalf("expected to continue after 3/5, got cont=%v err=%v", cont, err)
	}
	if block.N() != 3 {
		t.Fatalf("expected all 3 reads to pass through, got %d", block.N())
	}

	block2 := mkNBlock(t, 10)
	cont, err = step.Apply(&block2, testInput, 2, info)
	if err != nil {
		t.Fatal(err)
	}
	if cont {
		t.Fatal("expected premature termination once N is reached")
	}
	if block2.N() != 2 {
		t.Fatalf("expected exactly 2 more reads (5 total), got %d", block2.N())
	}

	block3 := mkNBlock(t, 4)
	cont, err = step.Apply(&block3, testInput, 3, info)
	if err != nil {
		t.Fatal(err)
	}
	if cont {
		t.Fatal("expected continued premature termination")
	}
	if block3.N() != 0 {
		t.Fatalf("expected 0 reads once quota is exhausted, got %d", block3.N())
	}
}
