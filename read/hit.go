package read

import "math"

// HitRegion is a 0-based, half-open [Start, Start+Len) region within one
// segment's sequence. Len==0 is a legal empty region. Position arithmetic
// on HitRegion saturates rather than wrapping around (§4.1), matching
// original_source/src/dna.rs's explicit saturating-arithmetic helpers.
type HitRegion struct {
	Start        int
	Len          int
	SegmentIndex int
}

// End returns Start+Len, the exclusive end of the region.
func (h HitRegion) End() int { return h.Start + h.Len }

// saturatingAdd adds b to a, clamping to math.MaxInt on overflow and to 0
// on underflow, per §4.1's "position arithmetic saturates" rule.
func saturatingAdd(a, b int) int {
	sum := a + b
	if b > 0 && sum < a {
		return math.MaxInt
	}
	if b < 0 && sum > a {
		return 0
	}
	if sum < 0 {
		return 0
	}
	return sum
}

// saturatingSub subtracts b from a, clamping at 0.
func saturatingSub(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}

// ShiftedBy returns a copy of h with Start adjusted by delta using
// saturating arithmetic; Len is unchanged.
func (h HitRegion) ShiftedBy(delta int) HitRegion {
	if delta >= 0 {
		h.Start = saturatingAdd(h.Start, delta)
	} else {
		h.Start = saturatingSub(h.Start, -delta)
	}
	return h
}

// TruncatedLen returns a copy of h with Len clamped so that End() does not
// exceed maxLen; if Start already exceeds maxLen, Len becomes 0.
func (h HitRegion) TruncatedLen(maxLen int) HitRegion {
	if h.Start >= maxLen {
		h.Len = 0
		return h
	}
	if h.End() > maxLen {
		h.Len = maxLen - h.Start
	}
	return h
}

// CutStartLocationTransform returns the FilterTagLocations transform
// function for removing n bases from the start of a segment (§4.1,
// scenario S4): regions fully consumed by the cut are removed, regions
// straddling the cut boundary are truncated to what remains, and
// unaffected regions are shifted left by n.
func CutStartLocationTransform(n int) func(int, HitRegion) LocationVerdict {
	return func(_ int, h HitRegion) LocationVerdict {
		switch {
		case h.End() <= n:
			return LocationVerdict{Action: LocationRemove}
		case h.Start < n:
			return LocationVerdict{Action: LocationReplace, NewRegion: HitRegion{
				Start: 0, Len: h.End() - n, SegmentIndex: h.SegmentIndex,
			}}
		default:
			return LocationVerdict{Action: LocationReplace, NewRegion: h.ShiftedBy(-n)}
		}
	}
}

// CutEndLocationTransform returns the FilterTagLocations transform
// function for removing n bases from the end of a segment, given
// readLen(i) — the pre-cut sequence length of molecule i, since reads
// within a segment need not share a length: regions fully beyond the
// new end are removed, regions straddling the new end are truncated,
// and unaffected regions are left unchanged.
func CutEndLocationTransform(n int, readLen func(int) int) func(int, HitRegion) LocationVerdict {
	return func(i int, h HitRegion) LocationVerdict {
		newLen := readLen(i) - n
		if newLen < 0 {
			newLen = 0
		}
		switch {
		case h.Start >= newLen:
			return LocationVerdict{Action: LocationRemove}
		case h.End() > newLen:
			return LocationVerdict{Action: LocationReplace, NewRegion: HitRegion{
				Start: h.Start, Len: newLen - h.Start, SegmentIndex: h.SegmentIndex,
			}}
		default:
			return LocationVerdict{Action: LocationKeep}
		}
	}
}

// Hit is one located match: an optional region (absent once a step has
// consumed the position information, e.g. after trimming) plus the
// matched sequence bytes.
type Hit struct {
	Location *HitRegion
	Sequence []byte
}

// Hits is an ordered list of Hit values; it is the payload of a
// TagTypeLocation tag value.
type Hits []Hit
