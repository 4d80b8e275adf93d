package builtin

import (
	"testing"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

func TestConvertSangerToIllumina13(t *testing.T) {
	block := read.CombinedBlock{
		Segments: []read.Block{mkBlock(t, [3]string{"m1", "AC", "!I"})}, // '!'=33, 'I'=73
	}
	step := &Convert{From: Sanger, To: Illumina13}
	info := demux.NewInfo()
	if _, err := step.Apply(&block, testInput, 1, info); err != nil {
		t.Fatal(err)
	}
	qual := block.Segments[0].Entries()[0].Qual()
	// 33 + 31 = 64 ('@'); 73 + 31 = 104 ('h')
	if qual[0] != 64 || qual[1] != 104 {
		t.Fatalf("unexpected converted quality bytes: %v", qual)
	}
}

func TestValidatePhredRejectsOutOfRange(t *testing.T) {
	block := read.CombinedBlock{
		Segments: []read.Block{mkBlock(t, [3]string{"m1", "A", string([]byte{10})})},
	}
	step := &ValidatePhred{Encoding: Sanger}
	info := demux.NewInfo()
	_, err := step.Apply(&block, testInput, 1, info)
	if err == nil {
		t.Fatal("expected error for byte below Sanger's valid range")
	}
}

func TestConvertQualityExpandsToValidateThenConvert(t *testing.T) {
	c := &ConvertQuality{From: Sanger, To: Illumina13}
	expanded := c.Expand()
	if len(expanded) != 2 {
		t.Fatalf("expected 2 expanded steps, got %d", len(expanded))
	}
	if _, ok := expanded[0].(*ValidatePhred); !ok {
		t.Fatalf("expected first step *ValidatePhred, got %T", expanded[0])
	}
	if _, ok := expanded[1].(*Convert); !ok {
		t.Fatalf("expected second step *Convert, got %T", expanded[1])
	}
}

func TestConvertQualityRejectsIdentityConversion(t *testing.T) {
	c := &ConvertQuality{From: Sanger, To: Sanger}
	if err := c.ValidateOthers(testInput, transform.OutputSpec{}, nil, 0); err == nil {
		t.Fatal("expected error for identical from/to encodings")
	}
}
