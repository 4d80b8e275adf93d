package read

import "testing"

func TestNewRejectsLengthMismatch(t *testing.T) {
	_, err := New([]byte("m1"), []byte("ACGT"), []byte("III"))
	if err == nil {
		t.Fatal("expected error for mismatched seq/qual length")
	}
	var ir *InvalidRead
	if _, ok := err.(*InvalidRead); !ok {
		t.Fatalf("expected *InvalidRead, got %T", err)
	}
	_ = ir
}

func TestNewAccepts(t *testing.T) {
	r, err := New([]byte("m1"), []byte("ACGT"), []byte("IIII"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len() != 4 {
		t.Fatalf("expected length 4, got %d", r.Len())
	}
	if string(r.Name()) != "m1" {
		t.Fatalf("expected name m1, got %s", r.Name())
	}
}
