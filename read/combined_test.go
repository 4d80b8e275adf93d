package read

import "testing"

func mkBlock(t *testing.T, reads ...[3]string) Block {
	t.Helper()
	var b Block
	for _, r := range reads {
		b.Append(mkRead(t, r[0], r[1], r[2]))
	}
	return b
}

func TestCheckInvariantsSegmentLengthMismatch(t *testing.T) {
	seg0 := mkBlock(t, [3]string{"m1", "ACGT", "IIII"})
	seg1 := mkBlock(t, [3]string{"m1", "AC", "II"}, [3]string{"m2", "AC", "II"})
	cb := CombinedBlock{Segments: []Block{seg0, seg1}}
	if err := cb.CheckInvariants(); err == nil {
		t.Fatal("expected segment length mismatch error")
	}
}

func TestFilterPreservesAlignment(t *testing.T) {
	seg0 := mkBlock(t, [3]string{"m1", "A", "I"}, [3]string{"m2", "C", "I"}, [3]string{"m3", "G", "I"})
	seg1 := mkBlock(t, [3]string{"m1", "T", "I"}, [3]string{"m2", "T", "I"}, [3]string{"m3", "T", "I"})
	cb := CombinedBlock{
		Segments: []Block{seg0, seg1},
		Tags: map[TagName]*TagColumn{
			"len": {Name: "len", Type: TagTypeNumeric, Values: []TagValue{
				NumericValue(1), NumericValue(1), NumericValue(1),
			}},
		},
	}
	cb.Filter([]bool{true, false, true})
	if cb.N() != 2 {
		t.Fatalf("expected 2 molecules after filter, got %d", cb.N())
	}
	if err := cb.CheckInvariants(); err != nil {
		t.Fatalf("invariants broken after filter: %v", err)
	}
	if string(cb.Segments[0].Entries()[1].Name()) != "m3" {
		t.Fatalf("expected m3 to survive filter, got %s", cb.Segments[0].Entries()[1].Name())
	}
}

func TestFilterTagLocationsCutStart(t *testing.T) {
	// S4: CutStart(n=3) on ACGTACGT/IIIIIIII with tag (start=1,len=4) ->
	// (start=0,len=2); tag (start=0,len=2) is removed.
	seg0 := mkBlock(t, [3]string{"m1", "ACGTACGT", "IIIIIIII"})
	loc1 := HitRegion{Start: 1, Len: 4, SegmentIndex: 0}
	loc2 := HitRegion{Start: 0, Len: 2, SegmentIndex: 0}
	cb := CombinedBlock{
		Segments: []Block{seg0},
		Tags: map[TagName]*TagColumn{
			"adapter": {Name: "adapter", Type: TagTypeLocation, Values: []TagValue{
				LocationValue(Hits{{Location: &loc1}, {Location: &loc2}}),
			}},
		},
	}
	const n = 3
	cb.ApplyInPlace(0, func(r Read) Read {
		return r.WithSeqQual(r.Seq()[n:], r.Qual()[n:])
	}, nil)
	cb.FilterTagLocations(0, CutStartLocationTransform(n))

	hits := cb.Tags["adapter"].Values[0].Hits
	if len(hits) != 1 {
		t.Fatalf("expected 1 surviving hit, got %d", len(hits))
	}
	got := *hits[0].Location
	if got.Start != 0 || got.Len != 2 {
		t.Fatalf("expected (0,2), got (%d,%d)", got.Start, got.Len)
	}
	if err := cb.CheckInvariants(); err != nil {
		t.Fatalf("invariants broken: %v", err)
	}
}
