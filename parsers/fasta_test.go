package parsers

import (
	"strings"
	"testing"
)

func TestFastaSynthesizesQuality(t *testing.T) {
	data := ">r1\nACGT\n>r2 some comment\nNN\nNN\n"
	p, err := NewFastaParser(strings.NewReader(data), nopCloser{}, "test.fasta", 10, 'I')
	if err != nil {
		t.Fatal(err)
	}
	b, isFinal, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	if isFinal {
		t.Fatal("expected non-final block with data")
	}
	if b.Len() != 2 {
		t.Fatalf("expected 2 reads, got %d", b.Len())
	}
	r0 := b.Entries()[0]
	if string(r0.Name()) != "r1" || string(r0.Seq()) != "ACGT" || string(r0.Qual()) != "IIII" {
		t.Fatalf("read 0 wrong: %+v", r0)
	}
	r1 := b.Entries()[1]
	if string(r1.Name()) != "r2 some comment" || string(r1.Seq()) != "NNNN" || string(r1.Qual()) != "IIII" {
		t.Fatalf("read 1 wrong: %+v", r1)
	}
	_, isFinal, err = p.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !isFinal {
		t.Fatal("expected final sentinel on second call")
	}
}

func TestFastaRejectsBadFakeQuality(t *testing.T) {
	_, err := NewFastaParser(strings.NewReader(">r1\nACGT\n"), nopCloser{}, "test.fasta", 10, 0)
	if err == nil {
		t.Fatal("expected error for out-of-range fake quality byte")
	}
}

func TestFastaRejectsMissingMarker(t *testing.T) {
	p, err := NewFastaParser(strings.NewReader("r1\nACGT\n"), nopCloser{}, "bad.fasta", 10, 'I')
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = p.Next()
	if err == nil {
		t.Fatal("expected error for missing '>' marker")
	}
}
