package demux

import "testing"

func TestHammingDistanceExact(t *testing.T) {
	cases := []struct {
		ref, query string
		want       int
	}{
		{"AGCT", "AGCT", 0},
		{"AGCT", "AGCA", 1},
		{"AGCT", "AGCG", 1},
		{"NGCC", "AGCC", 0},
		{"NGCC", "AGCT", 1},
		{"NGCC", "cGCT", 1},
		{"AGKC", "agKc", 0},
		{"AGKC", "agkc", 1},
	}
	for _, c := range cases {
		got := HammingDistance([]byte(c.ref), []byte(c.query))
		if got != c.want {
			t.Errorf("HammingDistance(%q,%q) = %d, want %d", c.ref, c.query, got, c.want)
		}
	}
}

func TestHammingDistanceAmbiguityTable(t *testing.T) {
	// each entry: iupac letter, then whether it mismatches against A,C,G,T
	table := []struct {
		letter   byte
		mismatch [4]bool // vs A, C, G, T
	}{
		{'R', [4]bool{false, true, false, true}},
		{'Y', [4]bool{true, false, true, false}},
		{'S', [4]bool{true, false, false, true}},
		{'W', [4]bool{false, true, true, false}},
		{'K', [4]bool{true, true, false, false}},
		{'M', [4]bool{false, false, true, true}},
		{'B', [4]bool{true, false, false, false}},
		{'D', [4]bool{false, true, false, false}},
		{'H', [4]bool{false, false, true, false}},
		{'V', [4]bool{false, false, false, true}},
		{'N', [4]bool{false, false, false, false}},
	}
	bases := []byte{'A', 'C', 'G', 'T'}
	for _, row := range table {
		for i, base := range bases {
			got := HammingDistance([]byte{row.letter}, []byte{base})
			want := 0
			if row.mismatch[i] {
				want = 1
			}
			if got != want {
				t.Errorf("%c vs %c: got %d, want %d", row.letter, base, got, want)
			}
		}
	}
}

func TestContainsAmbiguous(t *testing.T) {
	if ContainsAmbiguous([]byte("ACGT")) {
		t.Fatal("ACGT should not be flagged ambiguous")
	}
	if !ContainsAmbiguous([]byte("ACGN")) {
		t.Fatal("ACGN should be flagged ambiguous")
	}
}

func TestFindBest(t *testing.T) {
	ref := []byte("TTTTACGTTTTT")
	pos := FindBest([]byte("ACGT"), ref, 0)
	if pos != 4 {
		t.Fatalf("expected position 4, got %d", pos)
	}
	if FindBest([]byte("GGGG"), ref, 0) != -1 {
		t.Fatal("expected no match within tolerance")
	}
}

func TestBarcodesClassify(t *testing.T) {
	bc, err := NewBarcodes(1, 1, []BarcodeEntry{
		{Sequence: []byte("ACGT"), Name: "sample_a"},
		{Sequence: []byte("TTTT"), Name: "sample_b"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if name, ok := bc.Classify([]byte("ACGT")); !ok || name != "sample_a" {
		t.Fatalf("expected exact match sample_a, got (%q,%v)", name, ok)
	}
	if name, ok := bc.Classify([]byte("ACGA")); !ok || name != "sample_a" {
		t.Fatalf("expected 1-mismatch match sample_a, got (%q,%v)", name, ok)
	}
	if _, ok := bc.Classify([]byte("GGGG")); ok {
		t.Fatal("expected no classification for unrelated sequence")
	}
}

func TestInfoBucketRegistry(t *testing.T) {
	info := NewInfo()
	if info.Bucket(DefaultBucketName) != DefaultBucketID {
		t.Fatal("expected default bucket to already be registered at id 0")
	}
	id1 := info.Bucket("sample_a")
	id2 := info.Bucket("sample_a")
	if id1 != id2 {
		t.Fatal("expected stable id for repeated lookups")
	}
	id3 := info.Bucket("sample_b")
	if id3 == id1 {
		t.Fatal("expected distinct ids for distinct bucket names")
	}
	buckets := info.Buckets()
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	for i := 1; i < len(buckets); i++ {
		if buckets[i-1].Name >= buckets[i].Name {
			t.Fatal("expected buckets sorted by name")
		}
	}
}
