package read

import "testing"

func mkRead(t *testing.T, name, seq, qual string) Read {
	t.Helper()
	r, err := New([]byte(name), []byte(seq), []byte(qual))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestBlockAppendAndSplit(t *testing.T) {
	var b Block
	b.Append(mkRead(t, "m1", "ACGT", "IIII"))
	b.Append(mkRead(t, "m2", "NNNN", "!!!!"))
	b.Append(mkRead(t, "m3", "AA", "II"))

	if b.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", b.Len())
	}
	if err := b.CheckBufferOwnership(); err != nil {
		t.Fatalf("unexpected ownership violation: %v", err)
	}

	head, tail := b.SplitAt(1)
	if head.Len() != 1 || tail.Len() != 2 {
		t.Fatalf("expected split 1/2, got %d/%d", head.Len(), tail.Len())
	}
	if string(head.Entries()[0].Name()) != "m1" {
		t.Fatalf("head entry mismatch: %s", head.Entries()[0].Name())
	}
	if string(tail.Entries()[0].Name()) != "m2" || string(tail.Entries()[1].Name()) != "m3" {
		t.Fatalf("tail entries mismatch")
	}
}

func TestBlockSplitSharesBuffer(t *testing.T) {
	var b Block
	b.Append(mkRead(t, "m1", "ACGT", "IIII"))
	b.Append(mkRead(t, "m2", "TTTT", "JJJJ"))
	head, tail := b.SplitAt(1)
	if &head.buffer[0] != &b.buffer[0] {
		t.Fatal("expected head to share backing buffer")
	}
	if &tail.buffer[0] != &b.buffer[0] {
		t.Fatal("expected tail to share backing buffer")
	}
}
