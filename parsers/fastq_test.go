package parsers

import (
	"io"
	"strings"
	"testing"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// TestS1RoundTrip exercises scenario S1: a single-segment raw FASTQ file
// with three reads, parsed back out byte-identically.
func TestS1RoundTrip(t *testing.T) {
	data := "@r1\nACGT\n+\nIIII\n@r2\nNNNN\n+\n!!!!\n@r3\nAA\n+\nII\n"
	p := NewFastqParser(strings.NewReader(data), nopCloser{}, "test.fastq", 10)
	b, isFinal, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	if isFinal {
		t.Fatal("expected non-final block with data")
	}
	if b.Len() != 3 {
		t.Fatalf("expected 3 reads, got %d", b.Len())
	}
	want := []struct{ name, seq, qual string }{
		{"r1", "ACGT", "IIII"},
		{"r2", "NNNN", "!!!!"},
		{"r3", "AA", "II"},
	}
	for i, w := range want {
		r := b.Entries()[i]
		if string(r.Name()) != w.name || string(r.Seq()) != w.seq || string(r.Qual()) != w.qual {
			t.Fatalf("read %d: got (%s,%s,%s), want (%s,%s,%s)",
				i, r.Name(), r.Seq(), r.Qual(), w.name, w.seq, w.qual)
		}
	}
	_, isFinal, err = p.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !isFinal {
		t.Fatal("expected final sentinel on second call")
	}
}

func TestFastqRejectsMissingMarker(t *testing.T) {
	data := "r1\nACGT\n+\nIIII\n"
	p := NewFastqParser(strings.NewReader(data), nopCloser{}, "bad.fastq", 10)
	_, _, err := p.Next()
	if err == nil {
		t.Fatal("expected error for missing '@' marker")
	}
}

func TestFastqRejectsTruncatedRecord(t *testing.T) {
	data := "@r1\nACGT\n+\nII"
	p := NewFastqParser(strings.NewReader(data), nopCloser{}, "trunc.fastq", 10)
	_, _, err := p.Next()
	if err == nil {
		t.Fatal("expected error for truncated final record")
	}
}

func TestFastqCRLF(t *testing.T) {
	data := "@r1\r\nACGT\r\n+\r\nIIII\r\n"
	p := NewFastqParser(strings.NewReader(data), nopCloser{}, "crlf.fastq", 10)
	b, _, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 1 || string(b.Entries()[0].Seq()) != "ACGT" {
		t.Fatalf("CRLF parse failed: %+v", b.Entries())
	}
}

var _ io.Closer = nopCloser{}
