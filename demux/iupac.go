// Package demux implements barcode-based output routing (§4.6): an
// IUPAC-aware Hamming distance classifier assigns each molecule's
// barcode read to a named bucket, and Info/Barcodes carry that mapping
// through to the output writer. Grounded on
// original_source/src/dna.rs's iupac_hamming_distance and
// contains_iupac_ambigous, re-expressed as Go byte-table lookups in the
// style of compr's small const lookup tables.
package demux

// iupacCompat[a] is the bitmask of ATCG bases base a is compatible
// with, for a an IUPAC ambiguity code (upper or lower case). Bit 0=A,
// 1=C, 2=G, 3=T/U. Exact bases (A/C/G/T/U, case-insensitive) are
// handled separately in distanceOne since they also match their own
// case-insensitive identity.
var iupacCompat = buildIupacCompat()

const (
	bitA = 1 << 0
	bitC = 1 << 1
	bitG = 1 << 2
	bitT = 1 << 3
)

func buildIupacCompat() [256]uint8 {
	var t [256]uint8
	set := func(c byte, mask uint8) {
		t[c] = mask
		if c >= 'A' && c <= 'Z' {
			t[c+32] = mask
		}
	}
	set('A', bitA)
	set('C', bitC)
	set('G', bitG)
	set('T', bitT)
	set('U', bitT)
	set('R', bitA|bitG)
	set('Y', bitC|bitT)
	set('S', bitG|bitC)
	set('W', bitA|bitT)
	set('K', bitG|bitT)
	set('M', bitA|bitC)
	set('B', bitC|bitG|bitT)
	set('D', bitA|bitG|bitT)
	set('H', bitA|bitC|bitT)
	set('V', bitA|bitC|bitG)
	set('N', bitA|bitC|bitG|bitT)
	return t
}

func baseMask(c byte) uint8 {
	switch c {
	case 'A', 'a':
		return bitA
	case 'C', 'c':
		return bitC
	case 'G', 'g':
		return bitG
	case 'T', 't', 'U', 'u':
		return bitT
	default:
		return 0
	}
}

// HammingDistance counts mismatches between an IUPAC-ambiguity
// reference sequence and a plain ATCG query of the same length,
// treating an ambiguity code as a match against any base in its set
// (N matches anything). Case is ignored on both sides. Panics if the
// two sequences differ in length, matching the original's same-length
// assertion.
func HammingDistance(iupacReference, atcgQuery []byte) int {
	if len(iupacReference) != len(atcgQuery) {
		panic("demux: reference and query must have same length")
	}
	dist := 0
	for i, r := range iupacReference {
		q := atcgQuery[i]
		rm := iupacCompat[r]
		qm := baseMask(q)
		if rm == 0 || qm == 0 {
			if r != q {
				dist++
			}
			continue
		}
		if rm&qm == 0 {
			dist++
		}
	}
	return dist
}

// ContainsAmbiguous reports whether input contains any IUPAC ambiguity
// code beyond plain A/C/G/T/U.
func ContainsAmbiguous(input []byte) bool {
	for _, c := range input {
		switch c {
		case 'R', 'Y', 'S', 'W', 'K', 'M', 'B', 'V', 'D', 'H', 'N',
			'r', 'y', 's', 'w', 'k', 'm', 'b', 'v', 'd', 'h', 'n':
			return true
		}
	}
	return false
}

// FindBest returns the offset of the best (fewest-mismatch) occurrence
// of an IUPAC query within reference, scanning left to right and
// preferring earlier positions on ties; -1 if no position is within
// maxMismatches.
func FindBest(query, reference []byte, maxMismatches int) int {
	qlen := len(query)
	if qlen > len(reference) {
		return -1
	}
	bestPos := -1
	bestSoFar := maxMismatches + 1
	for start := 0; start+qlen <= len(reference); start++ {
		hd := HammingDistance(query, reference[start:start+qlen])
		if hd == 0 {
			return start
		}
		if hd < bestSoFar {
			bestSoFar = hd
			bestPos = start
		}
	}
	return bestPos
}

// barcodeMatch reports whether candidate (an exact-base read sequence)
// is within maxMismatches of barcode (an IUPAC reference sequence of
// the same length). Even at maxMismatches==0, an ambiguity code in
// barcode (e.g. N) must match any base it's compatible with, so this
// always goes through the IUPAC-aware HammingDistance rather than a
// byte-equality fast path.
func barcodeMatch(barcode, candidate []byte, maxMismatches int) bool {
	if len(barcode) != len(candidate) {
		return false
	}
	return HammingDistance(barcode, candidate) <= maxMismatches
}
