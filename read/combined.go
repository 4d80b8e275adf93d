package read

import "fmt"

// CombinedBlock represents one aligned cohort of molecules across S>=1
// segments (§3.3): one Block per segment (each with the same entry
// count N), a column-oriented tag map, and an optional demultiplex
// bucket assignment per molecule.
type CombinedBlock struct {
	// BlockNo is the monotonically increasing (from 1) sequence number
	// assigned by the Combiner, used by the scheduler to reconstruct
	// output order across parallel stages.
	BlockNo int64

	Segments []Block
	Tags     map[TagName]*TagColumn

	// OutputTags assigns each molecule to a demultiplex bucket. Nil means
	// every molecule belongs to the single default bucket.
	OutputTags []uint64

	// IsFinal marks the terminal sentinel cohort; asserted true on
	// exactly one CombinedBlock per run, after the last real cohort.
	IsFinal bool
}

// N returns the molecule count of the block (the common entry count
// across all segments), or 0 for an empty/sentinel block.
func (c *CombinedBlock) N() int {
	if len(c.Segments) == 0 {
		return 0
	}
	return c.Segments[0].Len()
}

// CheckInvariants verifies the four invariants listed in §3.3:
//  1. every segment has N entries
//  2. every tag column has length N
//  3. OutputTags, if present, has length N
//  4. every location tag value references a valid in-bounds region
//
// It is called by the scheduler after every step's Apply (§4.4) and
// should be treated as a correctness bug (read.InvariantError) if it
// ever fails outside of a test harness intentionally corrupting state.
func (c *CombinedBlock) CheckInvariants() error {
	if len(c.Segments) == 0 {
		return nil
	}
	n := c.Segments[0].Len()
	for s := 1; s < len(c.Segments); s++ {
		if c.Segments[s].Len() != n {
			return &InvariantError{Msg: fmt.Sprintf(
				"segment %d has %d entries, segment 0 has %d", s, c.Segments[s].Len(), n)}
		}
	}
	for name, col := range c.Tags {
		if len(col.Values) != n {
			return &InvariantError{Msg: fmt.Sprintf(
				"tag %q has %d values, expected %d", name, len(col.Values), n)}
		}
	}
	if c.OutputTags != nil && len(c.OutputTags) != n {
		return &InvariantError{Msg: fmt.Sprintf(
			"output_tags has %d entries, expected %d", len(c.OutputTags), n)}
	}
	for name, col := range c.Tags {
		if col.Type != TagTypeLocation {
			continue
		}
		for i, v := range col.Values {
			if v.Type != TagTypeLocation {
				continue
			}
			for _, hit := range v.Hits {
				if hit.Location == nil {
					continue
				}
				loc := *hit.Location
				if loc.SegmentIndex < 0 || loc.SegmentIndex >= len(c.Segments) {
					return &InvariantError{Msg: fmt.Sprintf(
						"tag %q[%d]: segment_index %d out of range [0,%d)",
						name, i, loc.SegmentIndex, len(c.Segments))}
				}
				seglen := c.Segments[loc.SegmentIndex].Entries()[i].Len()
				if loc.End() > seglen {
					return &InvariantError{Msg: fmt.Sprintf(
						"tag %q[%d]: location [%d,%d) exceeds segment %d sequence length %d",
						name, i, loc.Start, loc.End(), loc.SegmentIndex, seglen)}
				}
			}
		}
	}
	return nil
}

// ApplyInPlace mutates every read in one segment via f, optionally
// restricted to the reads for which mask[i] is true (mask may be nil,
// meaning "apply to all").
func (c *CombinedBlock) ApplyInPlace(segment int, f func(Read) Read, mask []bool) {
	entries := c.Segments[segment].entries
	for i := range entries {
		if mask != nil && !mask[i] {
			continue
		}
		entries[i] = f(entries[i])
	}
}

// Filter retains only the molecules for which keep[i] is true, across
// every segment and every tag column simultaneously, preserving the
// invariants in CheckInvariants.
func (c *CombinedBlock) Filter(keep []bool) {
	for s := range c.Segments {
		c.Segments[s].entries = filterReads(c.Segments[s].entries, keep)
	}
	for _, col := range c.Tags {
		col.Values = filterValues(col.Values, keep)
	}
	if c.OutputTags != nil {
		c.OutputTags = filterUint64(c.OutputTags, keep)
	}
}

func filterReads(in []Read, keep []bool) []Read {
	out := in[:0]
	for i, r := range in {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

func filterValues(in []TagValue, keep []bool) []TagValue {
	out := in[:0]
	for i, v := range in {
		if keep[i] {
			out = append(out, v)
		}
	}
	return out
}

func filterUint64(in []uint64, keep []bool) []uint64 {
	out := in[:0]
	for i, v := range in {
		if keep[i] {
			out = append(out, v)
		}
	}
	return out
}

// LocationAction is the verdict a FilterTagLocations transform function
// returns for a given location tag value.
type LocationAction int

const (
	// LocationKeep leaves the location unchanged.
	LocationKeep LocationAction = iota
	// LocationRemove drops the hit entirely.
	LocationRemove
	// LocationReplace substitutes a new HitRegion for the hit.
	LocationReplace
)

// LocationVerdict is returned by a FilterTagLocations transform function.
type LocationVerdict struct {
	Action      LocationAction
	NewRegion   HitRegion // meaningful only when Action == LocationReplace
}

// FilterTagLocations rewrites or removes every location-tag hit whose
// region lies in the given segment, according to transformFn. transformFn
// receives the molecule index alongside the region so a step like CutEnd,
// whose cut point depends on each read's own (pre-cut) length, can vary
// its verdict per molecule. This is how a length-changing step keeps
// existing location tags valid (§8 property 3, scenario S4).
func (c *CombinedBlock) FilterTagLocations(segment int, transformFn func(int, HitRegion) LocationVerdict) {
	for _, col := range c.Tags {
		if col.Type != TagTypeLocation {
			continue
		}
		for i := range col.Values {
			v := &col.Values[i]
			if v.Type != TagTypeLocation {
				continue
			}
			kept := v.Hits[:0]
			for _, hit := range v.Hits {
				if hit.Location == nil || hit.Location.SegmentIndex != segment {
					kept = append(kept, hit)
					continue
				}
				switch verdict := transformFn(i, *hit.Location); verdict.Action {
				case LocationKeep:
					kept = append(kept, hit)
				case LocationReplace:
					region := verdict.NewRegion
					hit.Location = &region
					kept = append(kept, hit)
				case LocationRemove:
					// dropped
				}
			}
			v.Hits = kept
		}
	}
}
