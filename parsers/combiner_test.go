package parsers

import (
	"strings"
	"testing"
)

func TestCombinerZipsSegmentsInLockstep(t *testing.T) {
	r1 := NewFastqParser(strings.NewReader("@a\nAC\n+\nII\n@b\nGT\n+\nII\n"), nopCloser{}, "r1.fastq", 10)
	r2 := NewFastqParser(strings.NewReader("@a\nTT\n+\nII\n@b\nCC\n+\nII\n"), nopCloser{}, "r2.fastq", 10)
	c := NewCombiner([]Parser{r1, r2})

	cb, err := c.Next()
	if err != nil {
		t.Fatal(err)
	}
	if cb.BlockNo != 1 {
		t.Fatalf("expected BlockNo 1, got %d", cb.BlockNo)
	}
	if len(cb.Segments) != 2 || cb.Segments[0].Len() != 2 || cb.Segments[1].Len() != 2 {
		t.Fatalf("unexpected combined block shape: %+v", cb)
	}
	if err := cb.CheckInvariants(); err != nil {
		t.Fatalf("invariants failed: %v", err)
	}

	cb2, err := c.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !cb2.IsFinal {
		t.Fatal("expected final sentinel after both segments exhausted")
	}
}

func TestCombinerRejectsSegmentLengthMismatch(t *testing.T) {
	r1 := NewFastqParser(strings.NewReader("@a\nAC\n+\nII\n@b\nGT\n+\nII\n"), nopCloser{}, "r1.fastq", 10)
	r2 := NewFastqParser(strings.NewReader("@a\nTT\n+\nII\n"), nopCloser{}, "r2.fastq", 10)
	c := NewCombiner([]Parser{r1, r2})

	_, err := c.Next()
	if err == nil {
		t.Fatal("expected segment length mismatch error")
	}
}

func TestCombinerRejectsSegmentsEndingOutOfStep(t *testing.T) {
	r1 := NewFastqParser(strings.NewReader("@a\nAC\n+\nII\n"), nopCloser{}, "r1.fastq", 1)
	r2 := NewFastqParser(strings.NewReader("@a\nTT\n+\nII\n@b\nCC\n+\nII\n"), nopCloser{}, "r2.fastq", 1)
	c := NewCombiner([]Parser{r1, r2})

	if _, err := c.Next(); err != nil {
		t.Fatal(err)
	}
	_, err := c.Next()
	if err == nil {
		t.Fatal("expected error when segments disagree about end of input")
	}
}
