package builtin

import (
	"testing"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

func mkRead(t *testing.T, name, seq, qual string) read.Read {
	t.Helper()
	r, err := read.New([]byte(name), []byte(seq), []byte(qual))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func mkBlock(t *testing.T, reads ...[3]string) read.Block {
	t.Helper()
	var b read.Block
	for _, r := range reads {
		b.Append(mkRead(t, r[0], r[1], r[2]))
	}
	return b
}

var testInput = transform.InputSpec{SegmentCount: 2}
